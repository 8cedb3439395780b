// Package cli wires the brandcatalog command tree: the API server, schema
// migrations and a terminal client for the API.
package cli

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"

	"brandcatalog/internal/client"
)

const defaultServerURL = "http://localhost:5000"

type options struct {
	serverURL   string
	sessionPath string
}

// NewRootCommand builds the command tree. out receives command output.
func NewRootCommand(out io.Writer) *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "brandcatalog",
		Short:         "Brand catalog API server and client",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)

	serverURL := os.Getenv("BRANDCATALOG_URL")
	if serverURL == "" {
		serverURL = defaultServerURL
	}
	root.PersistentFlags().StringVar(&opts.serverURL, "server", serverURL, "API base URL (env BRANDCATALOG_URL)")
	root.PersistentFlags().StringVar(&opts.sessionPath, "session", "", "session file (default: user config dir)")

	root.AddCommand(
		newServeCommand(),
		newMigrateCommand(),
		newLoginCommand(opts),
		newRegisterCommand(opts),
		newLogoutCommand(opts),
		newWhoamiCommand(opts),
		newBrandsCommand(opts),
	)
	return root
}

func Execute(ctx context.Context) error {
	return NewRootCommand(os.Stdout).ExecuteContext(ctx)
}

func (o *options) client() (*client.Client, error) {
	path := o.sessionPath
	if path == "" {
		var err error
		if path, err = client.DefaultSessionPath(); err != nil {
			return nil, err
		}
	}
	return client.New(o.serverURL, client.NewFileStore(path))
}

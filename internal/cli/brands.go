package cli

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"brandcatalog/internal/app"
	"brandcatalog/internal/client"
	"brandcatalog/internal/model"
)

func newBrandsCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "brands",
		Aliases: []string{"brand"},
		Short:   "Manage brands",
	}
	cmd.AddCommand(
		newBrandsListCommand(opts),
		newBrandsGetCommand(opts),
		newBrandsCreateCommand(opts),
		newBrandsUpdateCommand(opts),
		newBrandsDeleteCommand(opts),
	)
	return cmd
}

func newBrandsListCommand(opts *options) *cobra.Command {
	var page, limit int
	var search string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List brands, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.client()
			if err != nil {
				return err
			}
			result, err := c.ListBrands(cmd.Context(), client.ListParams{Page: page, Limit: limit, Search: search})
			if err != nil {
				return err
			}
			writeBrandTable(cmd.OutOrStdout(), result)
			return nil
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&limit, "limit", app.DefaultPageSize, "brands per page")
	cmd.Flags().StringVarP(&search, "search", "s", "", "filter by name or description")
	return cmd
}

func newBrandsGetCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one brand",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			c, err := opts.client()
			if err != nil {
				return err
			}
			brand, err := c.GetBrand(cmd.Context(), id)
			if err != nil {
				return err
			}
			writeBrand(cmd.OutOrStdout(), brand)
			return nil
		},
	}
}

func newBrandsCreateCommand(opts *options) *cobra.Command {
	fields := &brandFlags{}
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a brand",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.client()
			if err != nil {
				return err
			}
			brand, err := c.CreateBrand(cmd.Context(), fields.input(cmd))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created brand %d\n", brand.ID)
			writeBrand(cmd.OutOrStdout(), brand)
			return nil
		},
	}
	fields.bind(cmd)
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newBrandsUpdateCommand(opts *options) *cobra.Command {
	fields := &brandFlags{}
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Replace a brand's fields",
		Long:  "Replace a brand's fields. Optional fields that are not given are cleared.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			c, err := opts.client()
			if err != nil {
				return err
			}
			brand, err := c.UpdateBrand(cmd.Context(), id, fields.input(cmd))
			if err != nil {
				return err
			}
			writeBrand(cmd.OutOrStdout(), brand)
			return nil
		},
	}
	fields.bind(cmd)
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newBrandsDeleteCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a brand",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			c, err := opts.client()
			if err != nil {
				return err
			}
			if err := c.DeleteBrand(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted brand %d\n", id)
			return nil
		},
	}
}

type brandFlags struct {
	name        string
	description string
	logoURL     string
	website     string
	foundedYear int
	country     string
	industry    string
}

func (f *brandFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "brand name")
	cmd.Flags().StringVar(&f.description, "description", "", "description")
	cmd.Flags().StringVar(&f.logoURL, "logo-url", "", "logo URL")
	cmd.Flags().StringVar(&f.website, "website", "", "website URL")
	cmd.Flags().IntVar(&f.foundedYear, "founded-year", 0, "year founded")
	cmd.Flags().StringVar(&f.country, "country", "", "country")
	cmd.Flags().StringVar(&f.industry, "industry", "", "industry")
}

// input maps only the flags that were set, so unset optional fields are sent as null.
func (f *brandFlags) input(cmd *cobra.Command) app.BrandInput {
	flags := cmd.Flags()
	str := func(name, v string) *string {
		if !flags.Changed(name) {
			return nil
		}
		return &v
	}
	in := app.BrandInput{
		Name:        f.name,
		Description: str("description", f.description),
		LogoURL:     str("logo-url", f.logoURL),
		Website:     str("website", f.website),
		Country:     str("country", f.country),
		Industry:    str("industry", f.industry),
	}
	if flags.Changed("founded-year") {
		year := f.foundedYear
		in.FoundedYear = &year
	}
	return in
}

func parseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid brand id %q", raw)
	}
	return uint(id), nil
}

func writeBrandTable(w io.Writer, page *app.BrandPage) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tINDUSTRY\tCOUNTRY\tFOUNDED")
	for _, b := range page.Brands {
		founded := "-"
		if b.FoundedYear != nil {
			founded = strconv.Itoa(*b.FoundedYear)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", b.ID, b.Name, orDash(b.Industry), orDash(b.Country), founded)
	}
	_ = tw.Flush()
	fmt.Fprintf(w, "page %d of %d, %d brand(s)\n", page.Page, page.TotalPages, page.Total)
}

func writeBrand(w io.Writer, b *model.Brand) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "ID\t%d\n", b.ID)
	fmt.Fprintf(tw, "Name\t%s\n", b.Name)
	fmt.Fprintf(tw, "Description\t%s\n", orDash(b.Description))
	fmt.Fprintf(tw, "Industry\t%s\n", orDash(b.Industry))
	fmt.Fprintf(tw, "Country\t%s\n", orDash(b.Country))
	if b.FoundedYear != nil {
		fmt.Fprintf(tw, "Founded\t%d\n", *b.FoundedYear)
	} else {
		fmt.Fprintln(tw, "Founded\t-")
	}
	fmt.Fprintf(tw, "Website\t%s\n", orDash(b.Website))
	fmt.Fprintf(tw, "Logo\t%s\n", orDash(b.LogoURL))
	fmt.Fprintf(tw, "Updated\t%s\n", b.UpdatedAt.Format("2006-01-02 15:04"))
	_ = tw.Flush()
}

func orDash(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}

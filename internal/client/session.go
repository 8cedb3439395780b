package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"brandcatalog/internal/model"
)

// Session is what the client remembers between runs: the bearer token and
// the user it was issued to.
type Session struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

// IsAuthenticated reports whether a user is held. The token is not checked
// locally; the server rejects it once it expires.
func (s Session) IsAuthenticated() bool {
	return s.User != nil && s.Token != ""
}

// FileStore persists a Session as JSON readable only by the owner.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// DefaultSessionPath is ~/.config/brandcatalog/session.json or the
// platform equivalent.
func DefaultSessionPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir failed: %w", err)
	}
	return filepath.Join(dir, "brandcatalog", "session.json"), nil
}

// Load returns the stored session, or an empty one when nothing is stored.
func (f *FileStore) Load() (Session, error) {
	raw, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Session{}, nil
		}
		return Session{}, fmt.Errorf("read session failed: %w", err)
	}
	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return Session{}, fmt.Errorf("decode session failed: %w", err)
	}
	return s, nil
}

func (f *FileStore) Save(s Session) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session failed: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("create session dir failed: %w", err)
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("write session failed: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("write session failed: %w", err)
	}
	return nil
}

func (f *FileStore) Clear() error {
	if err := os.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove session failed: %w", err)
	}
	return nil
}

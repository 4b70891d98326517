// Package credentials persists the Owner API tokens as two plaintext files
// in the application's private data directory.
package credentials

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
)

const (
	AppName          = "uttesla.ulrichard"
	AccessTokenFile  = "tesla_access_token.txt"
	RefreshTokenFile = "tesla_refresh_token.txt"
)

// Store reads and writes token files below a single directory.
type Store struct {
	dir string
}

// DefaultDir returns $XDG_DATA_HOME/uttesla.ulrichard.
func DefaultDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// NewStore creates a Store rooted at dir. An empty dir selects DefaultDir.
// No I/O is performed; call EnsureDir before writing.
func NewStore(dir string) *Store {
	if dir == "" {
		dir = DefaultDir()
	}
	return &Store{dir: dir}
}

func (s *Store) Dir() string { return s.dir }

func (s *Store) AccessTokenPath() string { return filepath.Join(s.dir, AccessTokenFile) }

func (s *Store) RefreshTokenPath() string { return filepath.Join(s.dir, RefreshTokenFile) }

// EnsureDir creates the data directory if it is missing.
func (s *Store) EnsureDir() error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("credentials: create app data directory %s: %w", s.dir, err)
	}
	return nil
}

// ReadAccessToken returns the trimmed access token. ok is false when the
// file does not exist.
func (s *Store) ReadAccessToken() (token string, ok bool, err error) {
	return readToken(s.AccessTokenPath())
}

// ReadRefreshToken returns the trimmed refresh token. ok is false when the
// file does not exist.
func (s *Store) ReadRefreshToken() (token string, ok bool, err error) {
	return readToken(s.RefreshTokenPath())
}

func (s *Store) WriteAccessToken(token string) error {
	return writeToken(s.AccessTokenPath(), token)
}

func (s *Store) WriteRefreshToken(token string) error {
	return writeToken(s.RefreshTokenPath(), token)
}

func readToken(path string) (string, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("credentials: read %s: %w", path, err)
	}
	return strings.TrimSpace(string(data)), true, nil
}

// writeToken stores token verbatim.
func writeToken(path, token string) error {
	if err := os.WriteFile(path, []byte(token), 0o600); err != nil {
		return fmt.Errorf("credentials: write %s: %w", path, err)
	}
	return nil
}

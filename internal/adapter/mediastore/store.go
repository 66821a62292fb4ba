// Package mediastore persists card media (audio, images) on the local
// filesystem and hands out the public base URL used when rendering.
package mediastore

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/tsuyanki/tsuyanki-backend/internal/config"
)

// Store writes media files into a flat directory. File names are
// taken as-is after path sanitization; duplicate names overwrite,
// which matches how legacy packages reference media by bare name.
type Store struct {
	dir     string
	baseURL string
}

// New creates the media directory if needed and returns a Store.
func New(cfg config.MediaConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create media dir %s: %w", cfg.Dir, err)
	}
	return &Store{
		dir:     cfg.Dir,
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
	}, nil
}

// BaseURL returns the public prefix media references resolve against,
// without a trailing slash.
func (s *Store) BaseURL() string {
	return s.baseURL
}

// Save writes the reader's contents under the given file name. The
// name is reduced to its base component so archive entries cannot
// escape the media directory.
func (s *Store) Save(name string, r io.Reader) error {
	base := filepath.Base(filepath.Clean(name))
	if base == "." || base == ".." || base == string(filepath.Separator) {
		return fmt.Errorf("save media: invalid file name %q", name)
	}

	dst := filepath.Join(s.dir, base)
	f, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("save media %s: %w", base, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(dst)
		return fmt.Errorf("save media %s: %w", base, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("save media %s: %w", base, err)
	}
	return nil
}

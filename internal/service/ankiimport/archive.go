package ankiimport

import (
	"archive/zip"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/tsuyanki/tsuyanki-backend/internal/domain"
)

// collectionFile is the embedded SQLite database inside every package.
const collectionFile = "collection.anki2"

// manifestFile maps archive entry names to original media file names.
const manifestFile = "media"

// prepareWorkspace creates the per-import scratch directory.
func (s *Service) prepareWorkspace(sess *session) error {
	if err := os.MkdirAll(s.cfg.WorkDir, 0o755); err != nil {
		return fmt.Errorf("create work dir: %w", err)
	}

	dir := filepath.Join(s.cfg.WorkDir, uuid.New().String())
	if err := os.Mkdir(dir, 0o755); err != nil {
		return fmt.Errorf("create scratch dir: %w", err)
	}

	sess.dir = dir
	return nil
}

// extractArchive unpacks the package into the scratch directory. The
// declared uncompressed size is checked against the configured cap
// before anything is written; entry names are confined to the scratch
// directory.
func (s *Service) extractArchive(archivePath string, sess *session) error {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("%w: open archive: %v", domain.ErrFormat, err)
	}
	defer r.Close()

	if s.cfg.MaxArchiveBytes > 0 {
		var total uint64
		for _, f := range r.File {
			total += f.UncompressedSize64
		}
		if total > uint64(s.cfg.MaxArchiveBytes) {
			return fmt.Errorf("%w: archive exceeds %d bytes uncompressed", domain.ErrValidation, s.cfg.MaxArchiveBytes)
		}
	}

	for _, f := range r.File {
		if err := extractEntry(f, sess.dir); err != nil {
			return err
		}
	}

	return nil
}

func extractEntry(f *zip.File, dir string) error {
	if f.FileInfo().IsDir() {
		return nil
	}

	// Flatten: legacy packages are flat archives, and an entry name
	// with path components must never escape the scratch directory.
	name := filepath.Base(filepath.Clean(f.Name))
	if name == "." || name == ".." || strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: archive entry %q", domain.ErrFormat, f.Name)
	}

	src, err := f.Open()
	if err != nil {
		return fmt.Errorf("%w: read archive entry %q: %v", domain.ErrFormat, f.Name, err)
	}
	defer src.Close()

	dst, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return fmt.Errorf("extract %q: %w", name, err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return fmt.Errorf("extract %q: %w", name, err)
	}
	return dst.Close()
}

// loadManifest reads the media manifest. Packages without media ship
// no manifest; that is not an error.
func (s *Service) loadManifest(sess *session) error {
	data, err := os.ReadFile(filepath.Join(sess.dir, manifestFile))
	if errors.Is(err, fs.ErrNotExist) {
		sess.manifest = map[string]string{}
		return nil
	}
	if err != nil {
		return fmt.Errorf("read media manifest: %w", err)
	}

	if err := json.Unmarshal(data, &sess.manifest); err != nil {
		return fmt.Errorf("%w: media manifest: %v", domain.ErrFormat, err)
	}
	return nil
}

// copyMedia stores extracted media files under their original names.
// Failures are logged and skipped; media never fails an import that
// has already committed.
func (s *Service) copyMedia(sess *session) {
	for entry, name := range sess.manifest {
		if err := s.copyOneMedia(sess.dir, entry, name); err != nil {
			s.log.Warn("skipping media file",
				"entry", entry,
				"name", name,
				"error", err,
			)
		}
	}
}

func (s *Service) copyOneMedia(dir, entry, name string) error {
	f, err := os.Open(filepath.Join(dir, filepath.Base(entry)))
	if err != nil {
		return err
	}
	defer f.Close()

	return s.media.Save(name, f)
}

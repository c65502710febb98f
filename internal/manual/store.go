package manual

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/morbeth/home-assistant-pdf-manuals/internal/infrastructure/config"
	"github.com/morbeth/home-assistant-pdf-manuals/internal/infrastructure/logging"
)

// DeviceUnlinker clears manual references from devices. Satisfied by the
// device repository.
type DeviceUnlinker interface {
	ClearManual(ctx context.Context, filename string) (int, error)
}

// Store manages PDF files in a single directory.
type Store struct {
	dir     string
	devices DeviceUnlinker
	logger  *logging.Logger
}

// NewStore creates the manuals directory if needed and returns a store.
func NewStore(cfg config.ManualsConfig, devices DeviceUnlinker, logger *logging.Logger) (*Store, error) {
	if err := os.MkdirAll(cfg.Dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating manuals directory %s: %w", cfg.Dir, err)
	}
	return &Store{
		dir:     cfg.Dir,
		devices: devices,
		logger:  logger.With("component", "manuals"),
	}, nil
}

// List returns all stored manuals, newest first.
func (s *Store) List() ([]Manual, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("reading manuals directory: %w", err)
	}

	manuals := []Manual{}
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		manuals = append(manuals, Manual{
			Name:       entry.Name(),
			Size:       info.Size(),
			Pages:      s.countPages(entry.Name()),
			UploadedAt: info.ModTime().UTC(),
		})
	}

	sort.Slice(manuals, func(i, j int) bool {
		return manuals[i].UploadedAt.After(manuals[j].UploadedAt)
	})
	return manuals, nil
}

// Save stores an uploaded PDF under a sanitized version of filename and
// returns the stored manual. Duplicates and non-PDF content are rejected.
func (s *Store) Save(filename string, r io.Reader) (*Manual, error) {
	name, err := SanitizeFilename(filename)
	if err != nil {
		return nil, err
	}

	path := filepath.Join(s.dir, name)
	if _, err := os.Stat(path); err == nil {
		return nil, ErrDuplicate
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("checking for existing manual %s: %w", name, err)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading upload: %w", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		return nil, ErrNotPDF
	}

	if err := os.WriteFile(path, data, 0o640); err != nil {
		return nil, fmt.Errorf("writing manual %s: %w", name, err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stating manual %s: %w", name, err)
	}

	s.logger.Info("manual stored", "name", name, "size", info.Size())
	return &Manual{
		Name:       name,
		Size:       info.Size(),
		Pages:      countPagesIn(data),
		UploadedAt: info.ModTime().UTC(),
	}, nil
}

// Open returns a reader for the named manual. The caller closes it.
func (s *Store) Open(name string) (io.ReadSeekCloser, os.FileInfo, error) {
	clean, err := SanitizeFilename(name)
	if err != nil {
		return nil, nil, err
	}

	f, err := os.Open(filepath.Join(s.dir, clean))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("opening manual %s: %w", clean, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close() //nolint:errcheck
		return nil, nil, fmt.Errorf("stating manual %s: %w", clean, err)
	}
	return f, info, nil
}

// Delete removes the named manual and clears its reference from any device.
// Returns the number of devices that were unlinked.
func (s *Store) Delete(ctx context.Context, name string) (int, error) {
	clean, err := SanitizeFilename(name)
	if err != nil {
		return 0, err
	}

	path := filepath.Join(s.dir, clean)
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("deleting manual %s: %w", clean, err)
	}

	unlinked := 0
	if s.devices != nil {
		unlinked, err = s.devices.ClearManual(ctx, clean)
		if err != nil {
			return 0, fmt.Errorf("clearing device references to %s: %w", clean, err)
		}
	}

	s.logger.Info("manual deleted", "name", clean, "devices_unlinked", unlinked)
	return unlinked, nil
}

// Count returns the number of stored manuals.
func (s *Store) Count() (int, error) {
	manuals, err := s.List()
	if err != nil {
		return 0, err
	}
	return len(manuals), nil
}

// Exists reports whether the named manual is stored.
func (s *Store) Exists(name string) bool {
	clean, err := SanitizeFilename(name)
	if err != nil {
		return false
	}
	_, statErr := os.Stat(filepath.Join(s.dir, clean))
	return statErr == nil
}

func (s *Store) countPages(name string) int {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		return 0
	}
	return countPagesIn(data)
}

// unsafeChars matches everything not allowed in a stored filename.
var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// SanitizeFilename reduces an uploaded filename to a safe basename:
// path components stripped, unsafe characters replaced with underscores,
// .pdf extension required (case-insensitive, normalized to lowercase).
func SanitizeFilename(filename string) (string, error) {
	name := filepath.Base(strings.TrimSpace(filename))
	if name == "" || name == "." || name == ".." {
		return "", ErrInvalidFilename
	}

	ext := filepath.Ext(name)
	if !strings.EqualFold(ext, ".pdf") {
		return "", fmt.Errorf("%w: only .pdf files are accepted", ErrInvalidFilename)
	}

	stem := unsafeChars.ReplaceAllString(strings.TrimSuffix(name, ext), "_")
	stem = strings.Trim(stem, "._")
	if stem == "" {
		return "", ErrInvalidFilename
	}
	return stem + ".pdf", nil
}

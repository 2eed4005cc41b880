// Package uploads stores product images in a local directory.
package uploads

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// ErrUnsupportedType is returned when the uploaded file extension is not allowed.
var ErrUnsupportedType = errors.New("uploads: unsupported file type")

// allowed is the set of accepted image file extensions.
var allowed = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// A Store writes and removes uploaded files inside a single base directory.
type Store struct {
	dir string
}

// NewStore returns a new Store rooted at dir, creating it if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "could not create uploads directory")
	}
	return &Store{dir: dir}, nil
}

// Dir returns the base directory of the store.
func (s *Store) Dir() string {
	return s.dir
}

// Save sanitizes filename, checks its extension and writes the content of r
// under the store directory. It returns the name under which the file has
// been stored. When the name is already taken, a timestamp prefix is added
// so concurrent uploads cannot overwrite each other.
func (s *Store) Save(filename string, r io.Reader) (string, error) {
	name := SanitizeFilename(filename)
	if !allowed[strings.ToLower(filepath.Ext(name))] {
		return "", ErrUnsupportedType
	}

	dst, err := s.join(name)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(dst); err == nil {
		name = fmt.Sprintf("%d_%s", time.Now().UnixNano(), name)
		if dst, err = s.join(name); err != nil {
			return "", err
		}
	}

	f, err := os.Create(dst)
	if err != nil {
		return "", errors.Wrap(err, "could not create upload file")
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(dst)
		return "", errors.Wrap(err, "could not write upload file")
	}
	if err := f.Close(); err != nil {
		os.Remove(dst)
		return "", errors.Wrap(err, "could not close upload file")
	}

	return name, nil
}

// Remove deletes the given stored file. Removing a missing file is not an error.
func (s *Store) Remove(filename string) error {
	path, err := s.join(filename)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "could not remove upload file")
	}
	return nil
}

// join resolves filename inside the store directory and rejects traversal attempts.
func (s *Store) join(filename string) (string, error) {
	base, err := filepath.Abs(s.dir)
	if err != nil {
		return "", errors.Wrap(err, "invalid uploads directory")
	}

	path, err := filepath.Abs(filepath.Join(s.dir, filename))
	if err != nil {
		return "", errors.Wrap(err, "invalid upload filename")
	}

	if !strings.HasPrefix(path, base+string(filepath.Separator)) {
		return "", errors.New("uploads: path traversal attempt")
	}
	return path, nil
}

// SanitizeFilename strips any path component from name and replaces every
// character outside [A-Za-z0-9._-] by an underscore.
func SanitizeFilename(name string) string {
	name = filepath.Base(filepath.ToSlash(name))
	name = unsafeChars.ReplaceAllString(name, "_")
	return strings.Trim(name, "._")
}

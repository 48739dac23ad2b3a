// Package storage keeps uploaded files on local disk.
package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
)

var (
	ErrTooLarge    = errors.New("file exceeds upload limit")
	ErrInvalidPath = errors.New("invalid stored file path")
)

// Local stores files below a root directory
type Local struct {
	root     string
	maxBytes int64
}

// NewLocal creates the root directory if needed
func NewLocal(root string, maxBytes int64) (*Local, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	return &Local{root: root, maxBytes: maxBytes}, nil
}

// MaxBytes returns the upload limit
func (l *Local) MaxBytes() int64 {
	return l.maxBytes
}

// Save writes r to <dir>/<uuid><ext of name> and returns the path relative
// to the root with the number of bytes written.
func (l *Local) Save(dir, name string, r io.Reader) (string, int64, error) {
	ext := strings.ToLower(filepath.Ext(name))
	rel := filepath.ToSlash(filepath.Join(dir, uuid.NewString()+ext))
	full := filepath.Join(l.root, filepath.FromSlash(rel))

	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", 0, fmt.Errorf("failed to create dir: %w", err)
	}
	f, err := os.OpenFile(full, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create file: %w", err)
	}

	n, err := io.Copy(f, io.LimitReader(r, l.maxBytes+1))
	closeErr := f.Close()
	if err == nil && n > l.maxBytes {
		err = fmt.Errorf("%w (%s)", ErrTooLarge, humanize.Bytes(uint64(l.maxBytes)))
	}
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(full)
		return "", 0, err
	}
	return rel, n, nil
}

// Path resolves a stored relative path, refusing paths that leave the root
func (l *Local) Path(rel string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(rel))
	if clean == "." || filepath.IsAbs(clean) || strings.HasPrefix(clean, "..") {
		return "", ErrInvalidPath
	}
	return filepath.Join(l.root, clean), nil
}

// Remove deletes a stored file; a missing file is not an error
func (l *Local) Remove(rel string) error {
	full, err := l.Path(rel)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Package photostore keeps proof-of-delivery photos as files in a local directory.
package photostore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"parceldesk/internal/core/ports"
	"parceldesk/internal/pkg/errs"
)

// MaxPhotoSize is the largest photo Save accepts.
const MaxPhotoSize int64 = 10 << 20

// ErrPhotoTooLarge unwraps to errs.ErrValueIsOutOfRange.
var ErrPhotoTooLarge error = errs.NewValueIsOutOfRangeError("photo size", "larger", 0, MaxPhotoSize)

var _ ports.PhotoStore = (*Store)(nil)

// Store writes photos into dir under random names.
type Store struct {
	dir string
}

// New creates dir if needed and returns a Store rooted at it.
func New(dir string) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errs.NewValueIsRequiredError("dir")
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create photo dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the directory photos are written to.
func (s *Store) Dir() string {
	return s.dir
}

// Save copies content into a new file and returns its name as the reference.
// Only the extension of filename is kept.
func (s *Store) Save(ctx context.Context, filename string, content io.Reader) (string, error) {
	if content == nil {
		return "", errs.NewValueIsRequiredError("content")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	ref := uuid.NewString() + strings.ToLower(filepath.Ext(filename))
	path := filepath.Join(s.dir, ref)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o640)
	if err != nil {
		return "", fmt.Errorf("create photo: %w", err)
	}

	n, err := io.Copy(f, io.LimitReader(content, MaxPhotoSize+1))
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err == nil && n > MaxPhotoSize {
		err = ErrPhotoTooLarge
	}
	if err != nil {
		_ = os.Remove(path)
		if errors.Is(err, ErrPhotoTooLarge) {
			return "", err
		}
		return "", fmt.Errorf("write photo: %w", err)
	}

	return ref, nil
}

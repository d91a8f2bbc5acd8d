package assets

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// LocalAssets implements AssetStore on the local filesystem. This is the
// default for development and doubles as the test fake.
type LocalAssets struct {
	basePath string
}

// NewLocalAssets creates a filesystem-backed asset store rooted at basePath.
func NewLocalAssets(basePath string) (*LocalAssets, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create asset directory: %w", err)
	}
	return &LocalAssets{basePath: basePath}, nil
}

// Put stores the blob under a UUID-prefixed key and returns the key as the
// reference.
func (l *LocalAssets) Put(ctx context.Context, name, contentType string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	ref := objectKey(name)
	destPath := filepath.Join(l.basePath, filepath.FromSlash(ref))

	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return "", fmt.Errorf("%w: %v", ErrPutFailed, err)
	}

	dst, err := os.Create(destPath)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrPutFailed, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, r); err != nil {
		os.Remove(destPath)
		return "", fmt.Errorf("%w: %v", ErrPutFailed, err)
	}

	return ref, nil
}

// Delete removes the blob for ref. Missing blobs are ignored.
func (l *LocalAssets) Delete(ctx context.Context, ref string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.Remove(filepath.Join(l.basePath, filepath.FromSlash(ref))); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrDeleteFailed, err)
	}
	return nil
}

// objectKey derives the storage key for an upload: a UUID to guarantee
// uniqueness plus a sanitized form of the original filename for operator
// readability.
func objectKey(name string) string {
	base := filepath.Base(name)
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.' || r == '-' || r == '_':
			return r
		default:
			return '-'
		}
	}, base)
	if base == "" || base == "." {
		base = "upload"
	}
	return fmt.Sprintf("posters/%s-%s", uuid.New().String(), base)
}

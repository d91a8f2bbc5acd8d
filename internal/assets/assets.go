// Package assets provides the asset store abstraction for uploaded event
// images. Implementations include S3 and the local filesystem.
package assets

import (
	"context"
	"errors"
	"io"
)

// Common errors for asset operations.
var (
	ErrPutFailed    = errors.New("asset upload failed")
	ErrDeleteFailed = errors.New("asset delete failed")
)

// AssetStore accepts a binary blob and returns a durable reference usable as
// an event's image field. Delete exists only so a failed event insert can
// roll its upload back; nothing in the read path ever deletes.
type AssetStore interface {
	// Put stores the blob read from r under a store-chosen key derived from
	// name and returns the durable reference.
	Put(ctx context.Context, name, contentType string, r io.Reader) (string, error)

	// Delete removes a previously stored blob by its reference. Deleting a
	// reference that no longer exists is not an error.
	Delete(ctx context.Context, ref string) error
}

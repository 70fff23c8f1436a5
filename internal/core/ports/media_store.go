package ports

import (
	"context"
	"io"
)

// MediaObject is a file handed to the remote media host.
type MediaObject struct {
	Folder      string
	Format      string
	ContentType string
	Size        int64
	Body        io.Reader
}

// MediaStore is the remote media host: upload by bytes, destroy by identifier.
type MediaStore interface {
	// Upload stores the object and returns its public URL.
	Upload(ctx context.Context, obj MediaObject) (string, error)
	// Destroy deletes the asset with the given identifier.
	Destroy(ctx context.Context, assetID string) error
	// AssetID derives the identifier of a previously uploaded asset from its
	// public URL. It is deterministic and performs no I/O.
	AssetID(url string) (string, error)
}

package ports

import (
	"context"
	"io"
)

// PhotoStore keeps proof-of-delivery photos outside the core.
// Save returns an opaque reference; the core never inspects the content.
type PhotoStore interface {
	Save(ctx context.Context, filename string, content io.Reader) (ref string, err error)
}

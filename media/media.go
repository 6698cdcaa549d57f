package media

import (
	"context"
	"mime/multipart"
)

// Store persists uploaded attachments and returns an opaque reference the
// client can later fetch. There is no deletion API; orphaned uploads are
// reclaimed by the sweeper.
type Store interface {
	Save(ctx context.Context, fh *multipart.FileHeader) (string, error)
}

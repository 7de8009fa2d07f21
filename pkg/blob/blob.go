package blob

import "context"

// Store is the storage boundary for opaque artifacts such as interview
// recordings. Upload returns an opaque reference that can later be resolved
// to a public URL.
type Store interface {
	Upload(ctx context.Context, key string, body []byte, contentType string) (string, error)
	PublicURL(ref string) string
}

// Package mediahost pushes uploaded binaries to an external media host and
// returns their public URLs.
package mediahost

import "context"

// Uploader stores a binary blob and returns its public URL
type Uploader interface {
	Upload(ctx context.Context, data []byte, filename string) (string, error)
}

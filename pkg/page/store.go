package page

import "context"

// Store is the page cache backing a single session's backtracking
// history. Implementations must be safe for concurrent use.
type Store interface {
	// Fetch retrieves a page by id.
	// Returns (nil, nil) if the page doesn't exist or has expired.
	Fetch(ctx context.Context, id string) (*Page, error)

	// Put records a page, overwriting any page under the same id.
	Put(ctx context.Context, p *Page) error

	// Delete removes a page. Missing pages are not an error.
	Delete(ctx context.Context, id string) error

	// Close releases resources held by the store.
	Close() error
}

// ErrStoreClosed is returned when operations are attempted on a
// closed store.
type ErrStoreClosed struct{}

func (e ErrStoreClosed) Error() string {
	return "page store is closed"
}

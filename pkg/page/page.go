package page

import (
	"time"

	"github.com/weft-dev/weft/pkg/weft"
)

// Page pairs a state snapshot with the callback registry that was
// active when the view was rendered. Restoring the snapshot and
// dispatching against the registry reproduces the view's behavior
// even after the application has moved on.
type Page struct {
	// ID is the opaque identifier the client carries in the
	// page_id request field.
	ID string

	// Snapshot is the replay log of component and decoration state
	// at render time.
	Snapshot *weft.Snapshot

	// Registry holds the callbacks registered while this view was
	// rendered. It is replaced wholesale on re-render.
	Registry *weft.Registry

	// CreatedAt is when the page was recorded, used for expiry.
	CreatedAt time.Time
}

// New records a page under the given id.
func New(id string, snap *weft.Snapshot, reg *weft.Registry) *Page {
	return &Page{
		ID:        id,
		Snapshot:  snap,
		Registry:  reg,
		CreatedAt: time.Now(),
	}
}

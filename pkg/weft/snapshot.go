package weft

import "reflect"

// Restorer is implemented by every type with backtrackable state.
//
// CaptureSlot returns the current slot value; RestoreSlot writes a
// previously captured value back. Slot values must be comparable (wrap
// funcs, maps and slices in a pointer cell) so snapshots can be
// compared entry for entry.
//
// Capture granularity is deliberately shallow: only decoration-chain
// slots are captured by default. A component whose own fields must
// backtrack implements Restorer and opts in through Preserve, trading
// capture cost for fidelity explicitly.
type Restorer interface {
	CaptureSlot() any
	RestoreSlot(v any)
}

type stateEntry struct {
	owner Restorer
	value any
}

// Snapshot is an ordered, immutable log of captured slot values.
// Replaying it reconstructs the decoration-chain state of the tree as
// of capture time.
type Snapshot struct {
	entries []stateEntry
}

// Len returns the number of captured entries.
func (s *Snapshot) Len() int { return len(s.entries) }

// Restore replays the log in original order, writing each recorded
// value back to its owner.
func (s *Snapshot) Restore() {
	for _, e := range s.entries {
		e.owner.RestoreSlot(e.value)
	}
}

// Equal reports whether two snapshots captured the same owners with
// the same values in the same order. Values of non-comparable type
// never compare equal.
func (s *Snapshot) Equal(o *Snapshot) bool {
	if s == nil || o == nil {
		return s == o
	}
	if len(s.entries) != len(o.entries) {
		return false
	}
	for i, e := range s.entries {
		oe := o.entries[i]
		if e.owner != oe.owner {
			return false
		}
		if !slotEqual(e.value, oe.value) {
			return false
		}
	}
	return true
}

func slotEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == b
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || !ta.Comparable() {
		return false
	}
	return a == b
}

// Collector accumulates slot values during one capture pass.
type Collector struct {
	entries []stateEntry
}

// Visit records r's current slot value.
func (col *Collector) Visit(r Restorer) {
	col.entries = append(col.entries, stateEntry{owner: r, value: r.CaptureSlot()})
}

// Capture walks the tree rooted at root depth-first, collecting one
// entry per backtrackable slot along each component's decoration
// chain. The result is frozen on return.
func Capture(root Component) *Snapshot {
	col := &Collector{}
	captureComponent(root, col)
	return &Snapshot{entries: col.entries}
}

func captureComponent(c Component, col *Collector) {
	core := ensureChain(c)
	col.Visit(core)
	core.head.CaptureState(col)
}

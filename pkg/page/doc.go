// Package page stores rendered page state for backtracking.
//
// Every rendered view is recorded as a Page: a snapshot of the
// component tree's mutable state plus the callback registry that was
// live when the view was produced. Pages are held under opaque ids so
// that a later request carrying an old id can restore exactly the
// state the user was looking at, including requests replayed through
// the browser's back button.
//
// Pages hold live object references (components, callbacks), so they
// are kept in process memory and never serialized. Cross-restart
// continuity is handled separately by the persist package.
package page

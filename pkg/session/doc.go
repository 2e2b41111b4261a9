// Package session orchestrates request processing for one user's
// component tree.
//
// A Session owns the root component, the page store recording every
// rendered view, and the page id sequence. Each request resolves to a
// stored page, optionally backtracks the tree to that page's state,
// then either re-renders the view or dispatches the submitted
// callbacks. State-changing requests rotate the page id and redirect,
// so a browser reload never replays an action.
package session

// Package weft implements the component core of the framework: the
// component/decoration tree, per-page callback registries, backtracking
// snapshots, and the call/answer delegation mechanism.
//
// A component tree renders through ordered decoration chains, the
// single extension point for cross-cutting behavior (document shells,
// form scoping, modal delegation). Every render registers fresh
// callback ids in a Registry; an incoming request's fields are matched
// against that registry through a Stream and dispatched in a fixed
// order: all inputs, then at most one action, then at most one live
// update. Snapshots capture decoration-chain state as an ordered log
// that can be replayed to reconstruct a prior page.
//
// Call/answer is not a suspended goroutine. A call installs a
// decoration carrying an explicit resumption value; across requests
// that decoration travels inside the snapshot and is resumed at most
// once when the callee answers.
package weft

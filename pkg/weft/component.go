package weft

import "github.com/weft-dev/weft/pkg/render"

// Component is a node in the UI tree. Implementations embed Core and
// provide their own view logic; children are shared references the
// component does not own.
//
// RenderContent must produce output only through the renderer and the
// callback registry on the Context. State that should survive
// backtracking belongs in decoration-chain slots (or in a type
// implementing Restorer that the component's chain visits).
type Component interface {
	// Base returns the framework-owned state embedded in the component.
	Base() *Core

	// RenderContent emits the component's own view. Children render
	// where the component places them, via Render.
	RenderContent(ctx *Context, r render.Renderer)

	// Children returns child components in declared order.
	Children() []Component
}

// Core holds the framework state of one component: the head of its
// decoration chain and, while the component is the target of a pending
// call, the decoration that will receive its answer.
//
// The zero value is ready to use; embed it by value:
//
//	type Counter struct {
//	    weft.Core
//	    count int
//	}
type Core struct {
	head   Decoration
	answer *CallDecoration
}

// Base returns the core itself, satisfying Component for embedders.
func (c *Core) Base() *Core { return c }

// Children returns no children; components with children override it.
func (c *Core) Children() []Component { return nil }

// Decoration returns the head of the decoration chain, or nil if the
// component has never been decorated or traversed.
func (c *Core) Decoration() Decoration { return c.head }

// coreState is the Core's backtrackable slot: the chain head pointer
// and the pending answer target. Restoring it re-links any decorations
// that were installed or removed after capture.
type coreState struct {
	head   Decoration
	answer *CallDecoration
}

// CaptureSlot implements Restorer.
func (c *Core) CaptureSlot() any {
	return coreState{head: c.head, answer: c.answer}
}

// RestoreSlot implements Restorer.
func (c *Core) RestoreSlot(v any) {
	st, ok := v.(coreState)
	if !ok {
		return
	}
	c.head = st.head
	c.answer = st.answer
}

// ensureChain lazily terminates c's decoration chain and returns its
// core. Every traversal entry point goes through here so that a bare,
// undecorated component still has a chain to walk.
func ensureChain(c Component) *Core {
	core := c.Base()
	if core.head == nil {
		core.head = &terminus{owner: c}
	}
	return core
}

// Decorate pushes d onto the front of c's decoration chain. The new
// link intercepts render, callback and state traffic before every link
// installed earlier.
func Decorate(c Component, d Decoration) {
	core := ensureChain(c)
	d.SetNext(core.head)
	core.head = d
}

// Undecorate removes d from c's chain if present.
func Undecorate(c Component, d Decoration) {
	core := ensureChain(c)
	if core.head == d {
		core.head = d.Next()
		return
	}
	for link := core.head; link != nil; link = link.Next() {
		if link.Next() == d {
			link.SetNext(d.Next())
			return
		}
	}
}

// Render draws c through its decoration chain into r.
func Render(ctx *Context, r render.Renderer, c Component) {
	ensureChain(c).head.RenderOn(ctx, r)
}

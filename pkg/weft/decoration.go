package weft

import "github.com/weft-dev/weft/pkg/render"

// Decoration is one link in a component's decoration chain: a singly
// linked, acyclic, forward-only list ending in the component itself.
// Each link may intercept or pass through the three operations.
type Decoration interface {
	// RenderOn renders the decorated target through this link.
	RenderOn(ctx *Context, r render.Renderer)

	// ProcessCallbacks runs one dispatch phase through this link.
	ProcessCallbacks(ctx *Context, p *Pass) error

	// CaptureState contributes this link's backtrackable slots to the
	// collector, then continues down the chain.
	CaptureState(col *Collector)

	// Next returns the next link, or nil past the end of the chain.
	Next() Decoration

	// SetNext re-links the chain. Called by Decorate and by snapshot
	// restore; not intended for direct use.
	SetNext(d Decoration)
}

// Chain is the base pass-through link. Concrete decorations embed it
// and override the operations they intercept. Its backtrackable slot
// is the next pointer, so chain re-linking (a call answered, a
// decoration removed) is undone by restore.
type Chain struct {
	next Decoration
}

// Next returns the next link.
func (c *Chain) Next() Decoration { return c.next }

// SetNext re-links the chain.
func (c *Chain) SetNext(d Decoration) { c.next = d }

// RenderOn passes through to the next link.
func (c *Chain) RenderOn(ctx *Context, r render.Renderer) {
	c.next.RenderOn(ctx, r)
}

// ProcessCallbacks passes through to the next link.
func (c *Chain) ProcessCallbacks(ctx *Context, p *Pass) error {
	return c.next.ProcessCallbacks(ctx, p)
}

// CaptureState records the link pointer and continues down the chain.
func (c *Chain) CaptureState(col *Collector) {
	col.Visit(c)
	c.next.CaptureState(col)
}

// CaptureSlot implements Restorer.
func (c *Chain) CaptureSlot() any { return c.next }

// RestoreSlot implements Restorer.
func (c *Chain) RestoreSlot(v any) {
	if d, ok := v.(Decoration); ok {
		c.next = d
	}
}

// Document wraps the decorated component in a document shell. Install
// it on the root component of a page.
type Document struct {
	Chain
	Title string
}

// NewDocument creates a document-scoping decoration.
func NewDocument(title string) *Document {
	return &Document{Title: title}
}

// RenderOn wraps the inner output in the document shell.
func (d *Document) RenderOn(ctx *Context, r render.Renderer) {
	r.OpenDocument(d.Title)
	d.next.RenderOn(ctx, r)
	r.CloseDocument()
}

// Form wraps the decorated component in a form that posts back to the
// page being rendered, scoping every field emitted inside it.
type Form struct {
	Chain
}

// NewForm creates a form-scoping decoration.
func NewForm() *Form {
	return &Form{}
}

// RenderOn wraps the inner output in the form element.
func (f *Form) RenderOn(ctx *Context, r render.Renderer) {
	r.OpenForm(ctx.SubmitURL())
	f.next.RenderOn(ctx, r)
	r.CloseForm()
}

// State is a decoration whose only job is to widen capture to one
// extra slot, typically the owning component itself. Install it with
// Preserve.
type State struct {
	Chain
	Slot Restorer
}

// CaptureState records the link pointer and the extra slot, then
// continues down the chain.
func (s *State) CaptureState(col *Collector) {
	col.Visit(s)
	col.Visit(s.Slot)
	s.next.CaptureState(col)
}

// Preserve opts a component's own fields into backtracking: slot
// (usually the component itself) is captured and restored with every
// snapshot of the tree.
func Preserve(c Component, slot Restorer) {
	Decorate(c, &State{Slot: slot})
}

// terminus ends every decoration chain. It dispatches render to the
// component's own view logic, callback passes to the component's
// registrations and children, and state capture into the children.
type terminus struct {
	owner Component
}

func (t *terminus) Next() Decoration   { return nil }
func (t *terminus) SetNext(Decoration) {}

func (t *terminus) RenderOn(ctx *Context, r render.Renderer) {
	t.owner.RenderContent(ctx, r)
}

func (t *terminus) ProcessCallbacks(ctx *Context, p *Pass) error {
	if p.kind == KindInput {
		// Inputs fire for self before recursing, every match invoked.
		for _, tr := range p.stream.Triggered(t.owner, KindInput) {
			if err := tr.Input(ctx, tr.Value); err != nil {
				return err
			}
		}
		for _, child := range t.owner.Children() {
			if err := processChain(ctx, child, p); err != nil {
				return err
			}
		}
		return nil
	}

	// Action and live-update candidates: children before self, and the
	// pass aborts as soon as a second candidate surfaces anywhere.
	for _, child := range t.owner.Children() {
		if err := processChain(ctx, child, p); err != nil {
			return err
		}
	}
	for _, tr := range p.stream.Triggered(t.owner, p.kind) {
		if err := p.add(tr); err != nil {
			return err
		}
	}
	return nil
}

func (t *terminus) CaptureState(col *Collector) {
	for _, child := range t.owner.Children() {
		captureComponent(child, col)
	}
}

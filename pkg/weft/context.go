package weft

import "context"

// phase tracks which part of request processing is executing, so the
// core can reject operations that are illegal in the current phase.
type phase int

const (
	phaseRender phase = iota
	phaseInput
	phaseAction
	phaseLiveUpdate
)

// Context is the request-scoped state threaded through every render
// and dispatch operation. Nothing ambient lives on the session: a
// handler or component sees exactly one Context per request.
type Context struct {
	std      context.Context
	req      Request
	registry *Registry
	pageID   string
	phase    phase
	values   map[string]any
}

// NewContext creates the context for one request against one page.
// The registry is the one callbacks register into during render, or
// the page's existing registry during callback dispatch.
func NewContext(std context.Context, req Request, reg *Registry, pageID string) *Context {
	if std == nil {
		std = context.Background()
	}
	return &Context{
		std:      std,
		req:      req,
		registry: reg,
		pageID:   pageID,
	}
}

// StdContext returns the underlying context.Context for downstream
// calls (deadlines, tracing).
func (c *Context) StdContext() context.Context { return c.std }

// Request returns the request being processed.
func (c *Context) Request() Request { return c.req }

// Registry returns the callback registry of the page being processed.
func (c *Context) Registry() *Registry { return c.registry }

// PageID returns the id of the page being rendered or dispatched.
func (c *Context) PageID() string { return c.pageID }

// RegisterInput binds an input handler and returns its field id.
func (c *Context) RegisterInput(owner Component, fn InputFunc) string {
	return c.registry.RegisterInput(owner, fn)
}

// RegisterAction binds an action handler and returns its field id.
func (c *Context) RegisterAction(owner Component, fn ActionFunc) string {
	return c.registry.RegisterAction(owner, fn)
}

// RegisterLiveUpdate binds a live-update handler and returns its field id.
func (c *Context) RegisterLiveUpdate(owner Component, fn ActionFunc) string {
	return c.registry.RegisterLiveUpdate(owner, fn)
}

// SubmitURL returns the URL a form on the current page posts back to.
func (c *Context) SubmitURL() string {
	return c.req.BuildURL(map[string]string{PageIDParam: c.pageID})
}

// ActionURL returns a URL that triggers the given field id on the
// current page, for use in anchors.
func (c *Context) ActionURL(fieldID string) string {
	return c.req.BuildURL(map[string]string{
		PageIDParam: c.pageID,
		fieldID:     "",
	})
}

// SetValue stores a request-scoped value.
func (c *Context) SetValue(key string, v any) {
	if c.values == nil {
		c.values = make(map[string]any)
	}
	c.values[key] = v
}

// Value returns a request-scoped value, or nil.
func (c *Context) Value(key string) any {
	return c.values[key]
}

// Package wtest provides testing helpers for weft components.
//
// The wtest package reduces boilerplate when testing components by
// providing request doubles, a render-and-submit harness, and HTML
// assertions.
//
// # Quick Start
//
//	func TestGreeting(t *testing.T) {
//	    wtest.ExpectContains(t, NewGreeting("Ada"), "Hello, Ada")
//	}
//
// # Request Doubles
//
// Build transport-neutral requests without an HTTP server:
//
//	req := wtest.NewRequest().
//	    WithPageID("1").
//	    WithField(fieldID, "42").
//	    Build()
//
// or use the shorthands FreshRequest, RenderRequest, and
// CallbackRequest.
//
// # Render-and-Submit Harness
//
// Exercise a component's callbacks directly:
//
//	html, reg := wtest.Render(comp)
//	id := wtest.FieldIDs(html)[0]
//	resp, err := wtest.Submit(comp, reg, map[string]string{id: ""})
package wtest

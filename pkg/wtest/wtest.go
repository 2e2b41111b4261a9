package wtest

import (
	"context"
	"regexp"
	"strings"
	"testing"

	"github.com/weft-dev/weft/pkg/render"
	"github.com/weft-dev/weft/pkg/weft"
)

// Render renders the component with a fresh registry and returns the
// HTML along with the registry the render registered callbacks into.
// Pass the registry to Submit to exercise those callbacks.
func Render(c weft.Component) (string, *weft.Registry) {
	reg := weft.NewRegistry()
	ctx := weft.NewContext(context.Background(), RenderRequest("1"), reg, "1")
	r := render.NewHTML()
	weft.Render(ctx, r, c)
	return string(r.Bytes()), reg
}

// RenderToString renders a component and returns the HTML string.
// This is useful for asserting on rendered output.
//
// Example:
//
//	html := wtest.RenderToString(NewGreeting("Ada"))
//	if !strings.Contains(html, "Hello, Ada") {
//	    t.Error("missing greeting")
//	}
func RenderToString(c weft.Component) string {
	html, _ := Render(c)
	return html
}

// Submit dispatches the submitted fields against callbacks registered
// in reg, the registry a prior Render returned. A premature response
// comes back as the response value; any other error is returned as-is.
func Submit(c weft.Component, reg *weft.Registry, fields map[string]string) (weft.Response, error) {
	req := CallbackRequest("1", fields)
	ctx := weft.NewContext(context.Background(), req, reg, "1")
	st := weft.NewStream(reg, fields)

	err := weft.ProcessCallbacks(ctx, c, st)
	if pr, ok := weft.AsPremature(err); ok {
		return pr.Resp, nil
	}
	return nil, err
}

var fieldIDPattern = regexp.MustCompile(`name="(k[0-9]+-[0-9]+)"`)

// FieldIDs extracts the callback field ids from rendered HTML, in
// document order.
func FieldIDs(html string) []string {
	var ids []string
	for _, m := range fieldIDPattern.FindAllStringSubmatch(html, -1) {
		ids = append(ids, m[1])
	}
	return ids
}

// ExpectContains asserts that rendered output contains expected substring.
//
// Example:
//
//	wtest.ExpectContains(t, comp, "Welcome Admin")
func ExpectContains(t *testing.T, c weft.Component, expected string) {
	t.Helper()
	html := RenderToString(c)
	if !strings.Contains(html, expected) {
		t.Errorf("expected rendered output to contain %q, got:\n%s", expected, truncate(html, 500))
	}
}

// ExpectNotContains asserts that rendered output does not contain substring.
//
// Example:
//
//	wtest.ExpectNotContains(t, comp, "Error")
func ExpectNotContains(t *testing.T, c weft.Component, unexpected string) {
	t.Helper()
	html := RenderToString(c)
	if strings.Contains(html, unexpected) {
		t.Errorf("expected rendered output to NOT contain %q, got:\n%s", unexpected, truncate(html, 500))
	}
}

// ExpectElement asserts that rendered output contains a specific tag.
//
// Example:
//
//	wtest.ExpectElement(t, comp, "button")
func ExpectElement(t *testing.T, c weft.Component, tag string) {
	t.Helper()
	html := RenderToString(c)
	if !strings.Contains(html, "<"+tag) {
		t.Errorf("expected rendered output to contain <%s> element, got:\n%s", tag, truncate(html, 500))
	}
}

// truncate truncates a string to max length with ellipsis.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

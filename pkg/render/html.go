package render

import (
	"fmt"
	"strings"
)

// HTML is a Renderer that accumulates an HTML document in memory.
// The zero value is ready to use. It is not safe for concurrent use;
// one request owns one renderer.
type HTML struct {
	b strings.Builder
}

// NewHTML creates a new HTML renderer.
func NewHTML() *HTML {
	return &HTML{}
}

// Text writes escaped text content.
func (h *HTML) Text(s string) {
	h.b.WriteString(escape(s))
}

// Raw writes markup without escaping.
func (h *HTML) Raw(markup string) {
	h.b.WriteString(markup)
}

// Heading writes an escaped heading. Levels outside 1-6 are clamped.
func (h *HTML) Heading(level int, s string) {
	if level < 1 {
		level = 1
	}
	if level > 6 {
		level = 6
	}
	fmt.Fprintf(&h.b, "<h%d>%s</h%d>", level, escape(s), level)
}

// OpenDocument begins the document shell.
func (h *HTML) OpenDocument(title string) {
	h.b.WriteString("<!DOCTYPE html><html><head><title>")
	h.b.WriteString(escape(title))
	h.b.WriteString("</title></head><body>")
}

// CloseDocument ends the document shell.
func (h *HTML) CloseDocument() {
	h.b.WriteString("</body></html>")
}

// OpenForm begins a form posting back to action.
func (h *HTML) OpenForm(action string) {
	fmt.Fprintf(&h.b, `<form method="post" action="%s">`, escapeAttr(action))
}

// CloseForm ends the current form.
func (h *HTML) CloseForm() {
	h.b.WriteString("</form>")
}

// TextInput emits a text field bound to a callback field id.
func (h *HTML) TextInput(fieldID, value string) {
	fmt.Fprintf(&h.b, `<input type="text" name="%s" value="%s"/>`,
		escapeAttr(fieldID), escapeAttr(value))
}

// Button emits a submit button bound to a callback field id.
func (h *HTML) Button(fieldID, label string) {
	fmt.Fprintf(&h.b, `<button type="submit" name="%s" value="">%s</button>`,
		escapeAttr(fieldID), escape(label))
}

// Anchor emits a link.
func (h *HTML) Anchor(href, label string) {
	fmt.Fprintf(&h.b, `<a href="%s">%s</a>`, escapeAttr(href), escape(label))
}

// Bytes returns the document emitted so far.
func (h *HTML) Bytes() []byte {
	return []byte(h.b.String())
}

// String returns the document emitted so far.
func (h *HTML) String() string {
	return h.b.String()
}

package render

// Renderer is the output sink consumed during render.
//
// Field-emitting methods take a field id previously obtained from the
// callback registry; submitting a form (or following an anchor) with
// that id triggers the registered handler on the next request.
type Renderer interface {
	// Text writes escaped text content.
	Text(s string)

	// Raw writes markup without escaping.
	Raw(markup string)

	// Heading writes an escaped heading at the given level (1-6).
	Heading(level int, s string)

	// OpenDocument begins the document shell with the given title.
	OpenDocument(title string)

	// CloseDocument ends the document shell.
	CloseDocument()

	// OpenForm begins a form posting back to the given URL.
	OpenForm(action string)

	// CloseForm ends the current form.
	CloseForm()

	// TextInput emits a text field bound to a callback field id.
	TextInput(fieldID, value string)

	// Button emits a submit button bound to a callback field id.
	Button(fieldID, label string)

	// Anchor emits a link with an escaped label.
	Anchor(href, label string)

	// Bytes returns everything emitted so far.
	Bytes() []byte
}

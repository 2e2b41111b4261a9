package main

import (
	"fmt"

	"github.com/weft-dev/weft/pkg/render"
	"github.com/weft-dev/weft/pkg/weft"
)

// counterApp is the demo root: a counter with an increment button, a
// live-updating note field, and a reset guarded by a confirmation
// dialog.
type counterApp struct {
	weft.Core
	n    int
	note string
}

func newCounterApp(title string) *counterApp {
	c := &counterApp{}
	weft.Preserve(c, c)
	weft.Decorate(c, weft.NewForm())
	weft.Decorate(c, weft.NewDocument(title))
	return c
}

type counterState struct {
	n    int
	note string
}

func (c *counterApp) CaptureSlot() any { return counterState{n: c.n, note: c.note} }

func (c *counterApp) RestoreSlot(v any) {
	if st, ok := v.(counterState); ok {
		c.n = st.n
		c.note = st.note
	}
}

func (c *counterApp) RenderContent(ctx *weft.Context, r render.Renderer) {
	r.Heading(1, "Counter")
	r.Text(fmt.Sprintf("The count is %d.", c.n))
	if c.note != "" {
		r.Text(" Note: " + c.note)
	}

	inc := ctx.RegisterAction(c, func(*weft.Context) error {
		c.n++
		return nil
	})
	r.Button(inc, "+1")

	reset := ctx.RegisterAction(c, c.confirmReset)
	r.Button(reset, "Reset")

	// The note edits live over the websocket channel, no rotation.
	var note string
	note = ctx.RegisterLiveUpdate(c, func(ctx *weft.Context) error {
		c.note = ctx.Request().Fields()[note]
		return nil
	})
	r.TextInput(note, c.note)
}

// confirmReset delegates to a dialog; the counter only resets when the
// dialog answers true.
func (c *counterApp) confirmReset(ctx *weft.Context) error {
	dialog := newConfirmDialog("Reset the counter to zero?")
	return weft.Call(ctx, c, dialog, func(_ *weft.Context, value any) error {
		if ok, _ := value.(bool); ok {
			c.n = 0
		}
		return nil
	})
}

// confirmDialog asks a yes/no question and answers with a bool. It
// carries its own document shell because a call from the root replaces
// the whole page.
type confirmDialog struct {
	weft.Core
	question string
}

func newConfirmDialog(question string) *confirmDialog {
	d := &confirmDialog{question: question}
	weft.Decorate(d, weft.NewForm())
	weft.Decorate(d, weft.NewDocument("Confirm"))
	return d
}

func (d *confirmDialog) RenderContent(ctx *weft.Context, r render.Renderer) {
	r.Heading(1, "Confirm")
	r.Text(d.question)

	yes := ctx.RegisterAction(d, func(ctx *weft.Context) error {
		return weft.Answer(ctx, d, true)
	})
	no := ctx.RegisterAction(d, func(ctx *weft.Context) error {
		return weft.Answer(ctx, d, false)
	})
	r.Button(yes, "Yes")
	r.Button(no, "No")
}

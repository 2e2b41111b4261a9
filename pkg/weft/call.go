package weft

import "github.com/weft-dev/weft/pkg/render"

// AnswerFunc receives the value a callee answered with. It is the
// caller's resumption point: ordinary captured state, not a suspended
// execution frame.
type AnswerFunc func(ctx *Context, value any) error

// resumption is a stable cell around the resumption function so the
// decoration's captured slot stays comparable.
type resumption struct {
	fn AnswerFunc
}

// CallDecoration delegates rendering and callback processing from a
// caller to a callee until the callee answers. While installed, the
// callee is the active target; the chain below the decoration is
// bypassed but keeps its state.
type CallDecoration struct {
	Chain
	caller   Component
	callee   Component
	resume   *resumption
	answered bool
}

// Callee returns the component currently delegated to.
func (d *CallDecoration) Callee() Component { return d.callee }

// callState is the decoration's backtrackable slot. Restoring it
// re-arms an answered call exactly as it was at capture time, so a
// backtracked page can be answered again.
type callState struct {
	next     Decoration
	callee   Component
	resume   *resumption
	answered bool
}

// CaptureSlot implements Restorer.
func (d *CallDecoration) CaptureSlot() any {
	return callState{
		next:     d.next,
		callee:   d.callee,
		resume:   d.resume,
		answered: d.answered,
	}
}

// RestoreSlot implements Restorer.
func (d *CallDecoration) RestoreSlot(v any) {
	st, ok := v.(callState)
	if !ok {
		return
	}
	d.next = st.next
	d.callee = st.callee
	d.resume = st.resume
	d.answered = st.answered
}

// RenderOn renders the callee instead of the chain below.
func (d *CallDecoration) RenderOn(ctx *Context, r render.Renderer) {
	Render(ctx, r, d.callee)
}

// ProcessCallbacks dispatches into the callee's tree instead of the
// chain below.
func (d *CallDecoration) ProcessCallbacks(ctx *Context, p *Pass) error {
	return processChain(ctx, d.callee, p)
}

// CaptureState records the decoration, the callee's subtree, and the
// bypassed remainder of the caller's chain. The remainder must stay in
// the log: it becomes active again the moment the call is answered.
func (d *CallDecoration) CaptureState(col *Collector) {
	col.Visit(d)
	captureComponent(d.callee, col)
	d.next.CaptureState(col)
}

// Call delegates from caller to callee. The callee becomes the active
// render and callback target of caller's position in the tree; when it
// answers, onAnswer receives the answer value and caller resumes.
//
// A call may span any number of requests; the pending delegation and
// the resumption travel inside snapshots, never on a goroutine.
//
// Input callbacks run before any action is known and must stay
// side-effect-local, so calling from one fails with ErrCallDuringInput.
// A callee with an unanswered call pending is rejected with
// ErrPendingCall.
func Call(ctx *Context, caller, callee Component, onAnswer AnswerFunc) error {
	if ctx != nil && ctx.phase == phaseInput {
		return ErrCallDuringInput
	}
	if callee.Base().answer != nil {
		return ErrPendingCall
	}
	d := &CallDecoration{
		caller: caller,
		callee: callee,
		resume: &resumption{fn: onAnswer},
	}
	Decorate(caller, d)
	callee.Base().answer = d
	return nil
}

// Answer completes the pending call on callee: the delegation is
// removed from the caller's chain, the caller becomes active again,
// and value is delivered to the stored resumption, exactly once.
//
// Fails with *InvalidAnswerError if callee has no pending call or the
// call was already answered.
func Answer(ctx *Context, callee Component, value any) error {
	core := callee.Base()
	d := core.answer
	if d == nil {
		return &InvalidAnswerError{Reason: "no pending call"}
	}
	if d.answered {
		return &InvalidAnswerError{Reason: "call already answered"}
	}

	Undecorate(d.caller, d)
	d.answered = true
	core.answer = nil

	if d.resume.fn == nil {
		return nil
	}
	return d.resume.fn(ctx, value)
}

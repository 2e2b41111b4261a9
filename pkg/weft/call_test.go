package weft

import (
	"errors"
	"strings"
	"testing"

	"github.com/weft-dev/weft/pkg/render"
)

// confirm is a minimal modal callee: it renders a message and answers
// true or false through registered actions.
type confirm struct {
	Core
	message string
}

func (c *confirm) RenderContent(ctx *Context, r render.Renderer) {
	r.Text(c.message)
	yes := ctx.RegisterAction(c, func(actx *Context) error {
		return Answer(actx, c, true)
	})
	no := ctx.RegisterAction(c, func(actx *Context) error {
		return Answer(actx, c, false)
	})
	r.Button(yes, "Yes")
	r.Button(no, "No")
}

func TestCallMakesCalleeActive(t *testing.T) {
	caller := &label{text: "caller view"}
	callee := &confirm{message: "sure?"}

	if err := Call(testCtx(NewRegistry()), caller, callee, nil); err != nil {
		t.Fatalf("Call failed: %v", err)
	}

	got := renderToString(t, caller)
	if strings.Contains(got, "caller view") {
		t.Errorf("caller still rendered during call: %s", got)
	}
	if !strings.Contains(got, "sure?") {
		t.Errorf("callee not rendered during call: %s", got)
	}
}

func TestAnswerRestoresCallerAndDelivers(t *testing.T) {
	caller := &label{text: "caller view"}
	callee := &confirm{message: "sure?"}

	var got any
	err := Call(testCtx(NewRegistry()), caller, callee, func(_ *Context, v any) error {
		got = v
		return nil
	})
	if err != nil {
		t.Fatalf("Call failed: %v", err)
	}

	if err := Answer(testCtx(NewRegistry()), callee, true); err != nil {
		t.Fatalf("Answer failed: %v", err)
	}
	if got != true {
		t.Errorf("resumption got %v, want true", got)
	}

	out := renderToString(t, caller)
	if !strings.Contains(out, "caller view") {
		t.Errorf("caller not restored after answer: %s", out)
	}
}

func TestAnswerWithoutCall(t *testing.T) {
	callee := &confirm{message: "m"}

	err := Answer(testCtx(NewRegistry()), callee, 1)
	var invalid *InvalidAnswerError
	if !errors.As(err, &invalid) {
		t.Fatalf("got %v, want InvalidAnswerError", err)
	}
}

func TestDoubleAnswer(t *testing.T) {
	caller := &label{text: "a"}
	callee := &confirm{message: "m"}

	if err := Call(testCtx(NewRegistry()), caller, callee, nil); err != nil {
		t.Fatalf("Call failed: %v", err)
	}
	if err := Answer(testCtx(NewRegistry()), callee, 1); err != nil {
		t.Fatalf("first Answer failed: %v", err)
	}

	err := Answer(testCtx(NewRegistry()), callee, 2)
	var invalid *InvalidAnswerError
	if !errors.As(err, &invalid) {
		t.Fatalf("got %v, want InvalidAnswerError on second answer", err)
	}
}

func TestSequentialCallsDoNotReplayEarlierResumption(t *testing.T) {
	caller := &label{text: "a"}
	callee := &confirm{}

	var first, second int
	callee.message = "A"
	if err := Call(testCtx(NewRegistry()), caller, callee, func(*Context, any) error {
		first++
		return nil
	}); err != nil {
		t.Fatalf("first Call failed: %v", err)
	}
	if err := Answer(testCtx(NewRegistry()), callee, true); err != nil {
		t.Fatalf("first Answer failed: %v", err)
	}

	callee.message = "B"
	if err := Call(testCtx(NewRegistry()), caller, callee, func(*Context, any) error {
		second++
		return nil
	}); err != nil {
		t.Fatalf("second Call failed: %v", err)
	}
	if err := Answer(testCtx(NewRegistry()), callee, true); err != nil {
		t.Fatalf("second Answer failed: %v", err)
	}

	if first != 1 || second != 1 {
		t.Errorf("resumptions fired first=%d second=%d, want 1 and 1", first, second)
	}
}

func TestCallFromInputCallbackRejected(t *testing.T) {
	caller := &label{text: "a"}
	callee := &confirm{message: "m"}

	reg := NewRegistry()
	var callErr error
	inID := reg.RegisterInput(caller, func(ictx *Context, _ string) error {
		callErr = Call(ictx, caller, callee, nil)
		return callErr
	})

	st := NewStream(reg, map[string]string{inID: "v"})
	err := ProcessCallbacks(testCtx(reg), caller, st)
	if !errors.Is(err, ErrCallDuringInput) {
		t.Fatalf("dispatch returned %v, want ErrCallDuringInput", err)
	}
	if !errors.Is(callErr, ErrCallDuringInput) {
		t.Fatalf("Call returned %v, want ErrCallDuringInput", callErr)
	}
}

func TestCallBusyCalleeRejected(t *testing.T) {
	callerA := &label{text: "a"}
	callerB := &label{text: "b"}
	callee := &confirm{message: "m"}

	if err := Call(testCtx(NewRegistry()), callerA, callee, nil); err != nil {
		t.Fatalf("first Call failed: %v", err)
	}
	if err := Call(testCtx(NewRegistry()), callerB, callee, nil); !errors.Is(err, ErrPendingCall) {
		t.Fatalf("got %v, want ErrPendingCall", err)
	}
}

func TestCallbackDispatchTargetsCallee(t *testing.T) {
	// While a call is active, the caller's position dispatches into
	// the callee's registrations.
	caller := &label{text: "a"}
	callee := &confirm{message: "m"}

	var answered any
	if err := Call(testCtx(NewRegistry()), caller, callee, func(_ *Context, v any) error {
		answered = v
		return nil
	}); err != nil {
		t.Fatalf("Call failed: %v", err)
	}

	// Render the callee through the caller's chain, registering its
	// yes/no actions.
	reg := NewRegistry()
	r := render.NewHTML()
	Render(NewContext(nil, &testRequest{page: "p"}, reg, "p"), r, caller)

	// Trigger the "Yes" action (first registered for the callee).
	yes := reg.entries[0]
	st := NewStream(reg, map[string]string{yes.id: ""})
	if err := ProcessCallbacks(testCtx(reg), caller, st); err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}
	if answered != true {
		t.Errorf("resumption got %v, want true", answered)
	}
}

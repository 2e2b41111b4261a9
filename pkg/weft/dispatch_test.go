package weft

import (
	"errors"
	"testing"

	"github.com/weft-dev/weft/pkg/render"
)

// recorder registers one input and one action and appends to a shared
// trace when they fire.
type recorder struct {
	Core
	name     string
	trace    *[]string
	children []Component
	inputID  string
	actionID string
}

func (c *recorder) Children() []Component { return c.children }

func (c *recorder) register(reg *Registry) {
	c.inputID = reg.RegisterInput(c, func(_ *Context, v string) error {
		*c.trace = append(*c.trace, "input:"+c.name+"="+v)
		return nil
	})
	c.actionID = reg.RegisterAction(c, func(*Context) error {
		*c.trace = append(*c.trace, "action:"+c.name)
		return nil
	})
	for _, ch := range c.children {
		ch.(*recorder).register(reg)
	}
}

func (c *recorder) RenderContent(ctx *Context, r render.Renderer) {
	r.Text(c.name)
}

func TestAllInputsRunBeforeAnyAction(t *testing.T) {
	var trace []string
	child1 := &recorder{name: "child1", trace: &trace}
	child2 := &recorder{name: "child2", trace: &trace}
	root := &recorder{name: "root", trace: &trace, children: []Component{child1, child2}}

	reg := NewRegistry()
	root.register(reg)

	st := NewStream(reg, map[string]string{
		root.inputID:   "r",
		child1.inputID: "c1",
		child2.inputID: "c2",
		root.actionID:  "",
	})

	if err := ProcessCallbacks(testCtx(reg), root, st); err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}

	want := []string{"input:root=r", "input:child1=c1", "input:child2=c2", "action:root"}
	if len(trace) != len(want) {
		t.Fatalf("trace %v, want %v", trace, want)
	}
	for i := range want {
		if trace[i] != want[i] {
			t.Fatalf("trace %v, want %v", trace, want)
		}
	}
}

func TestChildActionBeatsParentAction(t *testing.T) {
	// Only one action id submitted, but precedence is still
	// child-before-self when picking the candidate.
	var trace []string
	child := &recorder{name: "child", trace: &trace}
	root := &recorder{name: "root", trace: &trace, children: []Component{child}}

	reg := NewRegistry()
	root.register(reg)

	st := NewStream(reg, map[string]string{child.actionID: ""})
	if err := ProcessCallbacks(testCtx(reg), root, st); err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}
	if len(trace) != 1 || trace[0] != "action:child" {
		t.Errorf("trace %v, want [action:child]", trace)
	}
}

func TestMultipleActionCallbacks(t *testing.T) {
	var trace []string
	child := &recorder{name: "child", trace: &trace}
	root := &recorder{name: "root", trace: &trace, children: []Component{child}}

	reg := NewRegistry()
	root.register(reg)

	st := NewStream(reg, map[string]string{
		root.actionID:  "",
		child.actionID: "",
	})

	err := ProcessCallbacks(testCtx(reg), root, st)
	var multi *MultipleActionCallbacksError
	if !errors.As(err, &multi) {
		t.Fatalf("got %v, want MultipleActionCallbacksError", err)
	}
	if len(multi.IDs) != 2 {
		t.Errorf("got ids %v, want 2 entries", multi.IDs)
	}
	if len(trace) != 0 {
		t.Errorf("handlers ran before the failure: %v", trace)
	}
}

func TestDuplicateActionCallback(t *testing.T) {
	// A shared child reachable through two parents surfaces the same
	// triggered action twice in one pass.
	var trace []string
	shared := &recorder{name: "shared", trace: &trace}
	left := &recorder{name: "left", trace: &trace, children: []Component{shared}}
	right := &recorder{name: "right", trace: &trace, children: []Component{shared}}
	root := &recorder{name: "root", trace: &trace, children: []Component{left, right}}

	reg := NewRegistry()
	root.register(reg)

	st := NewStream(reg, map[string]string{shared.actionID: ""})
	err := ProcessCallbacks(testCtx(reg), root, st)

	var dup *DuplicateActionCallbackError
	if !errors.As(err, &dup) {
		t.Fatalf("got %v, want DuplicateActionCallbackError", err)
	}
	for _, entry := range trace {
		if entry == "action:shared" {
			t.Errorf("action ran despite duplicate candidates: %v", trace)
		}
	}
}

func TestLiveUpdateRunsAfterAction(t *testing.T) {
	var trace []string
	c := &recorder{name: "c", trace: &trace}

	reg := NewRegistry()
	c.register(reg)
	liveID := reg.RegisterLiveUpdate(c, func(*Context) error {
		trace = append(trace, "live:c")
		return nil
	})

	st := NewStream(reg, map[string]string{c.actionID: "", liveID: ""})
	if err := ProcessCallbacks(testCtx(reg), c, st); err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}
	if len(trace) != 2 || trace[0] != "action:c" || trace[1] != "live:c" {
		t.Errorf("trace %v, want [action:c live:c]", trace)
	}
}

func TestPrematureResponseStopsLaterPhases(t *testing.T) {
	var trace []string
	c := &recorder{name: "c", trace: &trace}

	reg := NewRegistry()
	c.register(reg)
	downloadID := reg.RegisterInput(c, func(*Context, string) error {
		return Respond(HTMLResponse([]byte("early")))
	})

	st := NewStream(reg, map[string]string{downloadID: "x", c.actionID: ""})
	err := ProcessCallbacks(testCtx(reg), c, st)

	pr, ok := AsPremature(err)
	if !ok {
		t.Fatalf("got %v, want premature response", err)
	}
	content, ok := pr.Resp.(*ContentResponse)
	if !ok || string(content.Body) != "early" {
		t.Errorf("wrong carried response: %#v", pr.Resp)
	}
	for _, entry := range trace {
		if entry == "action:c" {
			t.Errorf("action ran after premature response: %v", trace)
		}
	}
}

func TestHandlerErrorAbortsDispatch(t *testing.T) {
	boom := errors.New("boom")
	c := &recorder{name: "c", trace: new([]string)}

	reg := NewRegistry()
	failID := reg.RegisterInput(c, func(*Context, string) error { return boom })
	c.register(reg)

	st := NewStream(reg, map[string]string{failID: "v", c.actionID: ""})
	if err := ProcessCallbacks(testCtx(reg), c, st); !errors.Is(err, boom) {
		t.Fatalf("got %v, want boom", err)
	}
	if len(*c.trace) != 0 {
		t.Errorf("later handlers ran after failure: %v", *c.trace)
	}
}

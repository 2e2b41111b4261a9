package weft

// Pass carries one dispatch phase through the decoration chains.
type Pass struct {
	stream *Stream
	kind   Kind
	found  []Triggered
}

// add records an action or live-update candidate in discovery order.
// A second candidate anywhere in the pass aborts dispatch: picking one
// arbitrarily would hide a structural bug in the tree.
func (p *Pass) add(tr Triggered) error {
	p.found = append(p.found, tr)
	if len(p.found) > 1 {
		return &DuplicateActionCallbackError{
			Kind:   p.kind,
			First:  p.found[0].ID,
			Second: tr.ID,
		}
	}
	return nil
}

// processChain enters c's decoration chain for the current pass.
func processChain(ctx *Context, c Component, p *Pass) error {
	return ensureChain(c).head.ProcessCallbacks(ctx, p)
}

// ProcessCallbacks runs the fixed three-phase dispatch for one request
// against the tree rooted at root:
//
//  1. every triggered input callback, across the whole tree, with its
//     submitted value;
//  2. at most the first triggered action callback in child-before-self
//     order;
//  3. at most the first triggered live-update callback, same rule.
//
// If the submitted fields map to more than one registered action id,
// dispatch fails with *MultipleActionCallbacksError before any handler
// runs. A premature response (see Respond) from any phase stops the
// remaining phases; it propagates as the error return and is a
// successful outcome for the caller to unwrap.
func ProcessCallbacks(ctx *Context, root Component, st *Stream) error {
	if ids := st.TriggeredIDs(KindAction); len(ids) > 1 {
		return &MultipleActionCallbacksError{IDs: ids}
	}

	ctx.phase = phaseInput
	defer func() { ctx.phase = phaseRender }()

	p := &Pass{stream: st, kind: KindInput}
	if err := processChain(ctx, root, p); err != nil {
		return err
	}

	ctx.phase = phaseAction
	p = &Pass{stream: st, kind: KindAction}
	if err := processChain(ctx, root, p); err != nil {
		return err
	}
	if len(p.found) == 1 {
		if err := p.found[0].Action(ctx); err != nil {
			return err
		}
	}

	ctx.phase = phaseLiveUpdate
	p = &Pass{stream: st, kind: KindLiveUpdate}
	if err := processChain(ctx, root, p); err != nil {
		return err
	}
	if len(p.found) == 1 {
		return p.found[0].Action(ctx)
	}
	return nil
}

package weft

import (
	"fmt"
	"sync/atomic"
)

// Kind partitions callback registrations.
type Kind int

const (
	// KindInput callbacks receive a submitted field value. Every
	// triggered input fires, across the whole tree, before any action.
	KindInput Kind = iota

	// KindAction callbacks fire at most once per request, chosen by
	// child-before-self precedence.
	KindAction

	// KindLiveUpdate callbacks fire at most once per request, after
	// the action phase, with the same precedence rule.
	KindLiveUpdate
)

// String returns the kind name for logging and metrics.
func (k Kind) String() string {
	switch k {
	case KindInput:
		return "input"
	case KindAction:
		return "action"
	case KindLiveUpdate:
		return "live_update"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// InputFunc handles a submitted input value.
type InputFunc func(ctx *Context, value string) error

// ActionFunc handles an action or live-update trigger.
type ActionFunc func(ctx *Context) error

// registrySeq distinguishes registry instances so that ids minted by
// one page's registry can never collide with another's.
var registrySeq atomic.Uint64

// Registry records the callback bindings of one rendered page. Ids are
// opaque, unique within the registry, and never reused across pages.
// A Registry is owned by exactly one Page and is not safe for
// concurrent use.
type Registry struct {
	id      uint64
	seq     uint64
	entries []*registration
	byID    map[string]*registration
}

type registration struct {
	id     string
	owner  Component
	kind   Kind
	input  InputFunc
	action ActionFunc
}

// NewRegistry creates an empty callback registry.
func NewRegistry() *Registry {
	return &Registry{
		id:   registrySeq.Add(1),
		byID: make(map[string]*registration),
	}
}

func (r *Registry) register(owner Component, kind Kind, in InputFunc, act ActionFunc) string {
	r.seq++
	reg := &registration{
		id:     fmt.Sprintf("k%d-%d", r.id, r.seq),
		owner:  owner,
		kind:   kind,
		input:  in,
		action: act,
	}
	r.entries = append(r.entries, reg)
	r.byID[reg.id] = reg
	return reg.id
}

// RegisterInput binds an input handler for owner and returns its field id.
func (r *Registry) RegisterInput(owner Component, fn InputFunc) string {
	return r.register(owner, KindInput, fn, nil)
}

// RegisterAction binds an action handler for owner and returns its field id.
func (r *Registry) RegisterAction(owner Component, fn ActionFunc) string {
	return r.register(owner, KindAction, nil, fn)
}

// RegisterLiveUpdate binds a live-update handler for owner and returns
// its field id.
func (r *Registry) RegisterLiveUpdate(owner Component, fn ActionFunc) string {
	return r.register(owner, KindLiveUpdate, nil, fn)
}

// Len returns the number of registrations.
func (r *Registry) Len() int { return len(r.entries) }

package weft

// Stream matches one request's submitted fields against a page's
// callback registry. It is transient: built for one dispatch and
// discarded with the request.
type Stream struct {
	reg    *Registry
	fields map[string]string
}

// NewStream builds a stream from the registry of the page the request
// addresses and the request's submitted field values.
func NewStream(reg *Registry, fields map[string]string) *Stream {
	return &Stream{reg: reg, fields: fields}
}

// Triggered describes one registration matched by a submitted field.
type Triggered struct {
	// ID is the registered field id.
	ID string

	// Value is the submitted value. Meaningful for input callbacks;
	// action and live-update triggers carry the field's presence only.
	Value string

	// Input is set for KindInput registrations.
	Input InputFunc

	// Action is set for KindAction and KindLiveUpdate registrations.
	Action ActionFunc
}

// Triggered returns the registrations of the given kind, for the given
// component, whose ids appear in the submitted fields, in registration
// order.
func (s *Stream) Triggered(owner Component, kind Kind) []Triggered {
	var out []Triggered
	for _, reg := range s.reg.entries {
		if reg.owner != owner || reg.kind != kind {
			continue
		}
		value, ok := s.fields[reg.id]
		if !ok {
			continue
		}
		out = append(out, Triggered{
			ID:     reg.id,
			Value:  value,
			Input:  reg.input,
			Action: reg.action,
		})
	}
	return out
}

// TriggeredIDs returns the distinct registered ids of the given kind
// present in the submitted fields, in registration order.
func (s *Stream) TriggeredIDs(kind Kind) []string {
	var out []string
	for _, reg := range s.reg.entries {
		if reg.kind != kind {
			continue
		}
		if _, ok := s.fields[reg.id]; ok {
			out = append(out, reg.id)
		}
	}
	return out
}

package weft

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for illegal call/answer use.
var (
	// ErrCallDuringInput is returned when a modal call is initiated
	// from an input callback. Inputs run before any action is known
	// and must stay side-effect-local.
	ErrCallDuringInput = errors.New("weft: call initiated from an input callback")

	// ErrPendingCall is returned when a component is called while it
	// still has an unanswered call pending.
	ErrPendingCall = errors.New("weft: component already has a pending call")
)

// ConfigurationError reports an invalid construction, such as a
// session built without a root component or page store. Fatal at
// construction; never recovered internally.
type ConfigurationError struct {
	Reason string
}

// Error returns the error message.
func (e *ConfigurationError) Error() string {
	return "weft: configuration: " + e.Reason
}

// DuplicateActionCallbackError reports that more than one action (or
// live-update) candidate was discovered while traversing a single
// dispatch pass. The request aborts before either handler runs.
type DuplicateActionCallbackError struct {
	Kind   Kind
	First  string
	Second string
}

// Error returns the error message.
func (e *DuplicateActionCallbackError) Error() string {
	return fmt.Sprintf("weft: duplicate %s callback candidates in one dispatch pass: %s, %s",
		e.Kind, e.First, e.Second)
}

// MultipleActionCallbacksError reports that the submitted fields map
// to more than one registered action id. Dispatch fails before any
// handler runs and the page store is left untouched.
type MultipleActionCallbacksError struct {
	IDs []string
}

// Error returns the error message.
func (e *MultipleActionCallbacksError) Error() string {
	return "weft: request submitted multiple action callbacks: " + strings.Join(e.IDs, ", ")
}

// InvalidAnswerError reports an answer on a component with no pending
// call, or on a call that was already answered.
type InvalidAnswerError struct {
	Reason string
}

// Error returns the error message.
func (e *InvalidAnswerError) Error() string {
	return "weft: invalid answer: " + e.Reason
}

// AsPremature unwraps a premature response from a dispatch error.
// The second return is false when err is absent or a real failure.
func AsPremature(err error) (*PrematureResponse, bool) {
	var pr *PrematureResponse
	if errors.As(err, &pr) {
		return pr, true
	}
	return nil, false
}

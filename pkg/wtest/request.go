package wtest

import (
	"net/url"

	"github.com/weft-dev/weft/pkg/weft"
)

// RequestBuilder allows fluent construction of test requests.
type RequestBuilder struct {
	path   string
	pageID string
	fields map[string]string
}

// NewRequest creates a new request builder.
//
// Example:
//
//	req := wtest.NewRequest().
//	    WithPageID("1").
//	    WithField(id, "42").
//	    Build()
func NewRequest() *RequestBuilder {
	return &RequestBuilder{
		path:   "/",
		fields: make(map[string]string),
	}
}

// WithPath sets the request path. Default: "/".
func (b *RequestBuilder) WithPath(path string) *RequestBuilder {
	b.path = path
	return b
}

// WithPageID sets the submitted page id.
func (b *RequestBuilder) WithPageID(id string) *RequestBuilder {
	b.pageID = id
	return b
}

// WithField adds a submitted field value. A request carrying any field
// is a callback request, not a render request.
func (b *RequestBuilder) WithField(id, value string) *RequestBuilder {
	b.fields[id] = value
	return b
}

// Build returns the final request for use in tests.
func (b *RequestBuilder) Build() weft.Request {
	fields := make(map[string]string, len(b.fields))
	for k, v := range b.fields {
		fields[k] = v
	}
	return &fakeRequest{path: b.path, pageID: b.pageID, fields: fields}
}

// FreshRequest is a shorthand for a request carrying no page id.
func FreshRequest() weft.Request {
	return NewRequest().Build()
}

// RenderRequest is a shorthand for a pure view request against a page.
func RenderRequest(pageID string) weft.Request {
	return NewRequest().WithPageID(pageID).Build()
}

// CallbackRequest is a shorthand for a field submission against a page.
func CallbackRequest(pageID string, fields map[string]string) weft.Request {
	b := NewRequest().WithPageID(pageID)
	for id, v := range fields {
		b.WithField(id, v)
	}
	return b.Build()
}

type fakeRequest struct {
	path   string
	pageID string
	fields map[string]string
}

func (r *fakeRequest) PageID() string { return r.pageID }

func (r *fakeRequest) IsRenderRequest() bool { return len(r.fields) == 0 }

func (r *fakeRequest) Fields() map[string]string { return r.fields }

func (r *fakeRequest) BuildURL(params map[string]string) string {
	q := url.Values{}
	for k, v := range params {
		q.Set(k, v)
	}
	if len(q) == 0 {
		return r.path
	}
	return r.path + "?" + q.Encode()
}

package server

import (
	"net/http"
	"net/url"

	"github.com/weft-dev/weft/pkg/weft"
)

// httpRequest adapts an *http.Request to the transport-neutral
// request the session layer consumes.
type httpRequest struct {
	path   string
	pageID string
	fields map[string]string
}

// newHTTPRequest parses form and query parameters into callback
// fields. The page id parameter is carried separately and never
// appears as a field.
func newHTTPRequest(r *http.Request) (*httpRequest, error) {
	if err := r.ParseForm(); err != nil {
		return nil, err
	}

	fields := make(map[string]string)
	for key, values := range r.Form {
		if key == weft.PageIDParam {
			continue
		}
		if len(values) > 0 {
			fields[key] = values[0]
		} else {
			fields[key] = ""
		}
	}

	return &httpRequest{
		path:   r.URL.Path,
		pageID: r.Form.Get(weft.PageIDParam),
		fields: fields,
	}, nil
}

func (h *httpRequest) PageID() string            { return h.pageID }
func (h *httpRequest) IsRenderRequest() bool     { return len(h.fields) == 0 }
func (h *httpRequest) Fields() map[string]string { return h.fields }

// BuildURL builds a URL to the same path carrying the given
// parameters.
func (h *httpRequest) BuildURL(params map[string]string) string {
	v := url.Values{}
	for k, val := range params {
		v.Set(k, val)
	}
	path := h.path
	if path == "" {
		path = "/"
	}
	if len(v) == 0 {
		return path
	}
	return path + "?" + v.Encode()
}

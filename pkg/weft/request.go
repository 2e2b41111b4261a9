package weft

import "fmt"

// PageIDParam is the request parameter carrying the page id.
const PageIDParam = "page_id"

// Request is the transport-neutral view of one incoming browser
// request. The HTTP adapter (or a test double) implements it.
type Request interface {
	// PageID returns the submitted page id, or "" if absent.
	PageID() string

	// IsRenderRequest reports whether this is a pure view request,
	// carrying no submitted callback fields.
	IsRenderRequest() bool

	// Fields returns the submitted field values keyed by field id,
	// excluding the page id parameter.
	Fields() map[string]string

	// BuildURL builds a URL to the same resource carrying the given
	// parameters.
	BuildURL(params map[string]string) string
}

// Response is what one processed request produces: either content or
// a redirect.
type Response interface {
	response()
}

// ContentResponse carries a rendered body.
type ContentResponse struct {
	ContentType string
	Body        []byte
}

func (*ContentResponse) response() {}

// HTMLResponse creates a content response with an HTML body.
func HTMLResponse(body []byte) *ContentResponse {
	return &ContentResponse{ContentType: "text/html; charset=utf-8", Body: body}
}

// RedirectResponse redirects the browser to a target URL.
type RedirectResponse struct {
	Location string
}

func (*RedirectResponse) response() {}

// Redirect creates a redirect response.
func Redirect(location string) *RedirectResponse {
	return &RedirectResponse{Location: location}
}

// PrematureResponse is the one intentional non-local exit: a handler
// short-circuits the remaining dispatch phases for this request and
// the carried response is sent immediately. It implements error so it
// can travel up through ordinary returns, but it is a successful
// outcome, not a failure.
type PrematureResponse struct {
	Resp Response
}

// Error implements error.
func (e *PrematureResponse) Error() string {
	return fmt.Sprintf("weft: premature response (%T)", e.Resp)
}

// Respond returns the premature-response exit carrying resp. Use it as
// the return value of a callback handler:
//
//	func (c *Exporter) download(ctx *weft.Context) error {
//	    return weft.Respond(&weft.ContentResponse{
//	        ContentType: "text/csv",
//	        Body:        c.csv(),
//	    })
//	}
func Respond(resp Response) error {
	return &PrematureResponse{Resp: resp}
}

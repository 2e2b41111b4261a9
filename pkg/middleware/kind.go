package middleware

import "github.com/weft-dev/weft/pkg/weft"

// requestKind buckets a request for metric and span labels.
func requestKind(req weft.Request) string {
	switch {
	case req.PageID() == "":
		return "fresh"
	case req.IsRenderRequest():
		return "render"
	default:
		return "callback"
	}
}

package session

// InvalidPageIDError reports a request carrying a page id the store
// cannot resolve: expired, evicted, forged, or minted before a server
// restart. The transport layer decides how to present it; the session
// never guesses at a fallback page.
type InvalidPageIDError struct {
	PageID string
}

// Error returns the error message.
func (e *InvalidPageIDError) Error() string {
	return "session: unknown page id: " + e.PageID
}

// Package server binds sessions to HTTP.
//
// The Handler adapts incoming requests to the transport-neutral
// request cycle: it identifies the browser by session cookie, hands
// the request to that browser's Session, and translates the outcome
// back to HTTP (content, 303 redirect for page rotation, 404 for
// expired pages). A Manager owns the live sessions, sweeps idle ones,
// and round-trips continuity records through a persist.Store across
// restarts. A websocket endpoint carries live-update callbacks
// without full page loads.
package server

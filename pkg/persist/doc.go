// Package persist stores session continuity metadata across restarts.
//
// Page state itself lives in process memory and cannot survive a
// restart, but the small facts that let a session resume gracefully
// can: which session this is, which page id was current, and where
// the page id sequence left off. Persisting those means a restarted
// server rejects stale page ids deterministically instead of reusing
// ids, and can route a returning client to a fresh view of its old
// session rather than a brand new session.
//
// Backends: in-memory (default), Redis, SQL (PostgreSQL or SQLite)
// and Bolt. All operate on the serialized State envelope.
package persist

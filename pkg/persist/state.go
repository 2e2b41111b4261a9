package persist

import (
	"encoding/json"
	"fmt"
	"time"
)

// CurrentVersion is the serialization format version.
const CurrentVersion = 1

// State is the continuity record for one session. It carries only
// what a restarted server needs: live pages are gone, but the id
// sequence must not restart from the beginning or old ids would be
// reissued to new pages.
type State struct {
	// SessionID identifies the session the record belongs to.
	SessionID string `json:"session_id"`

	// CurrentPageID is the page id that was current when the state
	// was saved.
	CurrentPageID string `json:"current_page_id"`

	// NextPageSeq is where the page id sequence resumes.
	NextPageSeq uint64 `json:"next_page_seq"`

	// LastActive is when the session last processed a request.
	LastActive time.Time `json:"last_active"`

	// Version is the serialization format version.
	Version int `json:"version"`
}

// Marshal serializes the state for storage.
func (s *State) Marshal() ([]byte, error) {
	s.Version = CurrentVersion
	return json.Marshal(s)
}

// UnmarshalState deserializes a stored continuity record.
func UnmarshalState(data []byte) (*State, error) {
	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("unmarshal session state: %w", err)
	}
	if s.Version > CurrentVersion {
		return nil, fmt.Errorf("unsupported session state version %d", s.Version)
	}
	return &s, nil
}

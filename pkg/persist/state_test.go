package persist

import (
	"testing"
	"time"
)

func TestStateRoundTrip(t *testing.T) {
	orig := &State{
		SessionID:     "sess-1",
		CurrentPageID: "17",
		NextPageSeq:   18,
		LastActive:    time.Now().UTC().Truncate(time.Second),
	}

	data, err := orig.Marshal()
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	got, err := UnmarshalState(data)
	if err != nil {
		t.Fatalf("UnmarshalState failed: %v", err)
	}

	if got.SessionID != orig.SessionID {
		t.Errorf("SessionID = %q, want %q", got.SessionID, orig.SessionID)
	}
	if got.CurrentPageID != orig.CurrentPageID {
		t.Errorf("CurrentPageID = %q, want %q", got.CurrentPageID, orig.CurrentPageID)
	}
	if got.NextPageSeq != orig.NextPageSeq {
		t.Errorf("NextPageSeq = %d, want %d", got.NextPageSeq, orig.NextPageSeq)
	}
	if !got.LastActive.Equal(orig.LastActive) {
		t.Errorf("LastActive = %v, want %v", got.LastActive, orig.LastActive)
	}
	if got.Version != CurrentVersion {
		t.Errorf("Version = %d, want %d", got.Version, CurrentVersion)
	}
}

func TestUnmarshalStateRejectsGarbage(t *testing.T) {
	if _, err := UnmarshalState([]byte("not json")); err == nil {
		t.Error("UnmarshalState accepted garbage")
	}
}

func TestUnmarshalStateRejectsFutureVersion(t *testing.T) {
	if _, err := UnmarshalState([]byte(`{"session_id":"s","version":99}`)); err == nil {
		t.Error("UnmarshalState accepted a future format version")
	}
}

package store

import "testing"

func TestDedupe(t *testing.T) {
	msgs := []*TrackedMessage{
		{MessageID: "1", Score: 1},
		nil,
		{MessageID: "2", Score: 2},
		{MessageID: "1", Score: 5},
	}

	got := Dedupe(msgs)
	if len(got) != 2 {
		t.Fatalf("len(Dedupe()) = %d, want 2", len(got))
	}

	if got[0].MessageID != "2" || got[1].MessageID != "1" {
		t.Errorf("unexpected order: %s, %s", got[0].MessageID, got[1].MessageID)
	}

	if got[1].Score != 5 {
		t.Errorf("last write should win, got score %d", got[1].Score)
	}
}

func TestDedupeEmpty(t *testing.T) {
	if got := Dedupe(nil); len(got) != 0 {
		t.Errorf("Dedupe(nil) = %v", got)
	}
}

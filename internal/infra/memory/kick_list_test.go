package memory

import "testing"

func TestKickListIsIdempotent(t *testing.T) {
	list := NewKickList()

	if list.Contains("u1") {
		t.Fatalf("expected empty list")
	}
	if !list.Add("u1") {
		t.Fatalf("expected first add to report new entry")
	}
	if list.Add("u1") {
		t.Fatalf("expected second add to be a no-op")
	}
	if !list.Contains("u1") {
		t.Fatalf("expected u1 to be kicked")
	}
}

package ids

import "testing"

func TestNewIsUniqueAndSortable(t *testing.T) {
	prev := New()
	for i := 0; i < 100; i++ {
		next := New()
		if next == prev {
			t.Fatalf("duplicate id %s", next)
		}
		if next < prev {
			t.Fatalf("ids not monotonic: %s after %s", next, prev)
		}
		prev = next
	}
	if len(prev) != 26 {
		t.Fatalf("unexpected id length %d", len(prev))
	}
}

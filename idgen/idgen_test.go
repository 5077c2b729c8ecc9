package idgen

import (
	"strings"
	"testing"
)

func TestNanoID_Length(t *testing.T) {
	for _, length := range []int{8, 12, 24} {
		id := NanoID(length)()
		if len(id) != length {
			t.Fatalf("NanoID(%d): got length %d", length, len(id))
		}
	}
}

func TestNanoID_Alphabet(t *testing.T) {
	id := NanoID(100)()
	for _, c := range id {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'z')) {
			t.Fatalf("NanoID: unexpected character %q in %q", c, id)
		}
	}
}

func TestUUIDv7_Unique(t *testing.T) {
	gen := UUIDv7()
	seen := make(map[string]struct{}, 1000)
	for range 1000 {
		id := gen()
		if _, dup := seen[id]; dup {
			t.Fatalf("UUIDv7: duplicate id %q", id)
		}
		seen[id] = struct{}{}
	}
}

func TestPrefixed(t *testing.T) {
	id := Prefixed("rep_", UUIDv7())()
	if !strings.HasPrefix(id, "rep_") {
		t.Errorf("Prefixed: got %q, want rep_ prefix", id)
	}
	if len(id) <= len("rep_") {
		t.Errorf("Prefixed: suffix missing in %q", id)
	}
}

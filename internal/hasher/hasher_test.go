package hasher

import "testing"

func TestContentHash(t *testing.T) {
	data := []byte("iroawase test payload")

	full := ContentHash(data, 0)
	if len(full) != 16 {
		t.Fatalf("full hash length = %d, want 16", len(full))
	}
	if ContentHash(data, 0) != full {
		t.Error("hash not deterministic")
	}

	short := ContentHash(data, 8)
	if len(short) != 8 || short != full[:8] {
		t.Errorf("truncated hash %q is not a prefix of %q", short, full)
	}

	if ContentHash([]byte("other payload"), 0) == full {
		t.Error("distinct payloads collided")
	}
}

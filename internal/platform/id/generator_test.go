package id

import "testing"

func TestUUIDGenerator_NewID(t *testing.T) {
	gen := NewUUIDGenerator()

	first, err := gen.NewID()
	if err != nil {
		t.Fatalf("NewID error: %v", err)
	}
	second, err := gen.NewID()
	if err != nil {
		t.Fatalf("NewID error: %v", err)
	}

	if first == second {
		t.Fatalf("expected distinct ids, got %s twice", first)
	}
	if !Valid(first) {
		t.Fatalf("expected generated id to be valid: %s", first)
	}
	if Valid("not-a-uuid") {
		t.Fatalf("expected garbage to be rejected")
	}
}

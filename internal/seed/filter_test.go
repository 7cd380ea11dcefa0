package seed

import "testing"

func TestIDSet(t *testing.T) {
	s := NewIDSet(1, 2, 3)

	if s.Len() != 3 {
		t.Errorf("Len() = %d, want 3", s.Len())
	}
	if !s.Has(2) {
		t.Error("Has(2) = false, want true")
	}
	if s.Has(4) {
		t.Error("Has(4) = true, want false")
	}

	s.Add(4)
	if !s.Has(4) {
		t.Error("Has(4) = false after Add")
	}

	// Adding an existing id is a no-op
	s.Add(1)
	if s.Len() != 4 {
		t.Errorf("Len() = %d, want 4", s.Len())
	}
}

package domain

import (
	"reflect"
	"testing"
)

func TestErrorSetDedupsPreservingOrder(t *testing.T) {
	s := NewErrorSet()
	s.Add("'barcode' is missing", "'user_id' is empty")
	s.Add("'barcode' is missing")
	s.Add("", "'run_id' is not an integer")

	got := s.List()
	want := []string{"'barcode' is missing", "'user_id' is empty", "'run_id' is not an integer"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("List() = %v, want %v", got, want)
	}
	if s.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", s.Len())
	}
}

func TestErrorSetMerge(t *testing.T) {
	a := NewErrorSet("first", "second")
	b := NewErrorSet("second", "third")
	a.Merge(b)
	want := []string{"first", "second", "third"}
	if got := a.List(); !reflect.DeepEqual(got, want) {
		t.Fatalf("List() = %v, want %v", got, want)
	}
	a.Merge(nil)
	if a.Len() != 3 {
		t.Fatalf("Len() after nil merge = %d, want 3", a.Len())
	}
}

func TestErrorSetEmpty(t *testing.T) {
	s := NewErrorSet()
	if !s.Empty() {
		t.Fatal("new set should be empty")
	}
	if s.List() != nil {
		t.Fatalf("List() on empty set = %v, want nil", s.List())
	}
	s.Add("problem")
	if s.Empty() {
		t.Fatal("set with one message should not be empty")
	}
}

func TestErrorSetListReturnsCopy(t *testing.T) {
	s := NewErrorSet("only")
	list := s.List()
	list[0] = "mutated"
	if got := s.List()[0]; got != "only" {
		t.Fatalf("set leaked internal slice, got %q", got)
	}
}

package permission

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestSetHasAndLen(t *testing.T) {
	set := NewSet("documents.read", "queries.run", "documents.read")

	if set.Len() != 2 {
		t.Fatalf("expected deduplicated length 2, got %d", set.Len())
	}
	if !set.Has("documents.read") {
		t.Fatal("expected documents.read to be present")
	}
	if set.Has("documents.write") {
		t.Fatal("expected documents.write to be absent")
	}
}

func TestSetZeroValueIsEmpty(t *testing.T) {
	var set Set
	if set.Has("anything") {
		t.Fatal("zero-value set should hold nothing")
	}
	if set.Len() != 0 {
		t.Fatalf("zero-value set length = %d, want 0", set.Len())
	}
	if got := set.List(); len(got) != 0 {
		t.Fatalf("zero-value set list = %v, want empty", got)
	}
}

func TestSetListSorted(t *testing.T) {
	set := NewSet("c.perm", "a.perm", "b.perm")
	want := []string{"a.perm", "b.perm", "c.perm"}

	if got := set.List(); !reflect.DeepEqual(got, want) {
		t.Fatalf("List() = %v, want %v", got, want)
	}
}

func TestSetJSONRoundTrip(t *testing.T) {
	original := NewSet("documents.read", "analytics.view")

	raw, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded Set
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if !reflect.DeepEqual(original.List(), decoded.List()) {
		t.Fatalf("round trip mismatch: %v vs %v", original.List(), decoded.List())
	}
}

func TestSetMarshalDeterministic(t *testing.T) {
	set := NewSet("b", "a", "c")

	first, err := json.Marshal(set)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	for i := 0; i < 16; i++ {
		next, err := json.Marshal(set)
		if err != nil {
			t.Fatalf("marshal failed: %v", err)
		}
		if string(next) != string(first) {
			t.Fatalf("marshal output not deterministic: %s vs %s", first, next)
		}
	}
	if string(first) != `["a","b","c"]` {
		t.Fatalf("expected sorted array, got %s", first)
	}
}

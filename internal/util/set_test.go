package util

import (
	"reflect"
	"testing"
)

func TestIntersectCommutes(t *testing.T) {
	a := NewSet[int64](10, 20, 30)
	b := NewSet[int64](20, 40)
	ab := Sorted(Intersect(a, b))
	ba := Sorted(Intersect(b, a))
	if !reflect.DeepEqual(ab, []int64{20}) {
		t.Fatalf("unexpected intersection %v", ab)
	}
	if !reflect.DeepEqual(ab, ba) {
		t.Fatalf("intersection not symmetric: %v vs %v", ab, ba)
	}
}

func TestUnionAndEmpty(t *testing.T) {
	u := NewSet("go").Union(NewSet("rust", "go"))
	if got := Sorted(u); !reflect.DeepEqual(got, []string{"go", "rust"}) {
		t.Fatalf("unexpected union %v", got)
	}
	if n := Intersect(NewSet[string](), u).Len(); n != 0 {
		t.Fatalf("expected empty intersection, got %d", n)
	}
	if !u.Has("rust") || u.Has("zig") {
		t.Fatalf("membership mismatch")
	}
}

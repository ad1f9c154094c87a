package geo

import "testing"

func TestCyclicReorderPreservesOrder(t *testing.T) {
	tr := Triplet{A: 3, B: 7, C: 9}
	cases := []struct {
		first uint32
		want  Triplet
	}{
		{3, Triplet{3, 7, 9}},
		{7, Triplet{7, 9, 3}},
		{9, Triplet{9, 3, 7}},
	}
	for _, c := range cases {
		got, err := tr.CyclicReorder(c.first)
		if err != nil {
			t.Fatalf("unexpected error for %d: %v", c.first, err)
		}
		if got != c.want {
			t.Errorf("CyclicReorder(%d) = %v, want %v", c.first, got, c.want)
		}
	}
}

func TestCyclicReorderRejectsForeignIndex(t *testing.T) {
	tr := Triplet{A: 0, B: 1, C: 2}
	if _, err := tr.CyclicReorder(5); err == nil {
		t.Fatal("expected an error for an index outside the triplet")
	}
}

func TestSharedCount(t *testing.T) {
	a := Triplet{0, 1, 2}
	if n := a.SharedCount(Triplet{3, 4, 5}); n != 0 {
		t.Errorf("disjoint: got %d shared", n)
	}
	if n := a.SharedCount(Triplet{2, 3, 4}); n != 1 {
		t.Errorf("shared vertex: got %d shared", n)
	}
	if n := a.SharedCount(Triplet{1, 2, 5}); n != 2 {
		t.Errorf("shared edge: got %d shared", n)
	}
	if n := a.SharedCount(Triplet{2, 0, 1}); n != 3 {
		t.Errorf("identical: got %d shared", n)
	}
}

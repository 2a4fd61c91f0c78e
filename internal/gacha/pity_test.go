package gacha

import "testing"

func TestPitySystem(t *testing.T) {
	// every roll is a D, so only pity can lift the grade
	e, err := NewEngine(testCatalog, WithRandomSource(NewSequenceRNG([]float64{99}, nil)))
	if err != nil {
		t.Fatal(err)
	}
	pity, err := NewPityState(10)
	if err != nil {
		t.Fatal(err)
	}

	// first 9 draws should not hit
	for i := 0; i < 9; i++ {
		out, next, err := e.DrawOne(pity)
		if err != nil {
			t.Fatal(err)
		}
		if out.ForcedByPity || out.Grade != GradeD {
			t.Fatalf("should not hit before pity, i=%d: %+v", i, out)
		}
		pity = next
	}
	// the 10th draw should be guaranteed by pity
	out, next, err := e.DrawOne(pity)
	if err != nil {
		t.Fatal(err)
	}
	if !out.ForcedByPity || out.Grade != PityGrade {
		t.Fatalf("expected pity hit at 10th draw, got %+v", out)
	}
	if next.Counter != 0 {
		t.Fatalf("count should reset after pity hit; got %d", next.Counter)
	}
}

func TestProgressProjection(t *testing.T) {
	cases := []struct {
		pity      PityState
		fraction  float64
		remaining int
	}{
		{PityState{Counter: 0, Threshold: 100}, 0, 101},
		{PityState{Counter: 50, Threshold: 100}, 0.5, 51},
		{PityState{Counter: 100, Threshold: 100}, 1, 1},
		{PityState{Counter: 104, Threshold: 100}, 1, 1},
	}
	for _, c := range cases {
		p := c.pity.Progress()
		if p.Current != c.pity.Counter || p.Max != c.pity.Threshold {
			t.Fatalf("projection mismatch: %+v from %+v", p, c.pity)
		}
		if p.Fraction() != c.fraction {
			t.Fatalf("fraction for %+v: got %v want %v", c.pity, p.Fraction(), c.fraction)
		}
		if p.Remaining() != c.remaining {
			t.Fatalf("remaining for %+v: got %d want %d", c.pity, p.Remaining(), c.remaining)
		}
	}
	if (Progress{}).Fraction() != 0 {
		t.Fatalf("zero max must not divide by zero")
	}
}

package gacha

import (
	"errors"
	"math"
	"testing"
)

func TestCalcStats(t *testing.T) {
	s := calcStats([]int{4, 1, 3, 2, 5})
	if s.Mean != 3 || s.Var != 2 {
		t.Fatalf("mean/var: %+v", s)
	}
	if s.P50 != 3 || math.Abs(s.P90-4.6) > 1e-9 {
		t.Fatalf("percentiles: %+v", s)
	}
	if empty := calcStats(nil); empty.Mean != 0 || empty.Samples != nil {
		t.Fatalf("empty samples should give zero stats")
	}
}

func TestMonteCarloFirstHighBoundedByPity(t *testing.T) {
	e, err := NewEngine(testCatalog, WithRandomSource(NewSeededRNG(7)))
	if err != nil {
		t.Fatal(err)
	}
	p := SimParams{Threshold: 100, BatchSize: BatchSingle}
	stats, err := RunMonteCarlo(e, p, GoalFirstHighGrade, 2000)
	if err != nil {
		t.Fatal(err)
	}
	for _, v := range stats.Samples {
		if v < 1 || v > 101 {
			t.Fatalf("pity should bound first A within 101 single draws, got %d", v)
		}
	}
	// 5% natural rate: mean is close to 1/0.05 with a small pity tail
	if stats.Mean < 17 || stats.Mean > 21 {
		t.Fatalf("mean draws to first A looks off: %.2f", stats.Mean)
	}
}

func TestMonteCarloForcedRate(t *testing.T) {
	e, err := NewEngine(testCatalog, WithRandomSource(NewSeededRNG(9)))
	if err != nil {
		t.Fatal(err)
	}
	// budget of 200 ten-pulls from zero: the guarantee fires at draw 101 and 201
	stats, err := RunMonteCarlo(e, SimParams{Threshold: 100, BatchSize: BatchTen, Budget: 200}, GoalForcedRate, 50)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Mean != 1 {
		t.Fatalf("expected exactly one forced draw per 200-draw budget, got mean %.2f", stats.Mean)
	}
}

func TestMonteCarloRejectsBadParams(t *testing.T) {
	e, _ := NewEngine(testCatalog, WithRandomSource(NewSeededRNG(1)))
	if _, err := RunMonteCarlo(e, SimParams{Threshold: 100, BatchSize: 3}, GoalFixedBudget, 1); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("batch size 3 must error, got %v", err)
	}
	if _, err := RunMonteCarlo(e, SimParams{Threshold: 100}, TrialGoal("nope"), 1); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("unknown goal must error, got %v", err)
	}
}

func TestGradeHistogramFrequencies(t *testing.T) {
	e, err := NewEngine(testCatalog, WithRandomSource(NewSeededRNG(42)))
	if err != nil {
		t.Fatal(err)
	}
	hist, forced, err := GradeHistogram(e, PityState{Threshold: 100}, 10000, BatchTen)
	if err != nil {
		t.Fatal(err)
	}
	total := 0
	for _, n := range hist {
		total += n
	}
	if total != 100000 {
		t.Fatalf("histogram total %d", total)
	}
	// should be a little under 50% D, forced draws take roughly 1% of the slots
	if freq := float64(hist[GradeD]) / float64(total); freq < 0.48 || freq > 0.51 {
		t.Fatalf("D frequency %.4f not close to 0.5", freq)
	}
	if forced == 0 {
		t.Fatalf("100k draws at threshold 100 must trigger pity")
	}
}

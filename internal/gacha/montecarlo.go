package gacha

import (
	"fmt"
	"math"
	"sort"
)

// TrialGoal selects what the simulation measures per trial.
type TrialGoal string

const (
	// Draws until the first grade of A or better, natural or forced.
	GoalFirstHighGrade TrialGoal = "first_high"
	// Draws until the first S.
	GoalFirstS TrialGoal = "first_s"
	// Given a fixed budget, count A-or-better outcomes.
	GoalFixedBudget TrialGoal = "fixed_budget"
	// Given a fixed budget, count pity-forced outcomes.
	GoalForcedRate TrialGoal = "forced_rate"
)

// maxTrialDraws bounds open-ended goals; S has no guarantee so a trial could otherwise spin.
const maxTrialDraws = 1_000_000

// SimParams describes the mechanics for one simulation run.
type SimParams struct {
	Threshold    int // pity threshold
	StartCounter int // carried-over pity progress at trial start
	BatchSize    int // 1 or 10; every trial pulls in whole batches
	Budget       int // draws per trial for the budget goals
}

func (p SimParams) normalize() (SimParams, error) {
	if p.BatchSize == 0 {
		p.BatchSize = BatchTen
	}
	if err := validateBatch(p.BatchSize); err != nil {
		return p, err
	}
	if p.StartCounter < 0 {
		p.StartCounter = 0
	}
	if p.StartCounter > p.Threshold {
		p.StartCounter = p.Threshold
	}
	if err := validatePity(PityState{Counter: p.StartCounter, Threshold: p.Threshold}); err != nil {
		return p, err
	}
	return p, nil
}

// Stats summarizes simulation results.
type Stats struct {
	Mean   float64
	Var    float64
	StdDev float64
	P50    float64
	P90    float64
	P99    float64
	// Optional: raw samples if caller needs histograms/exports
	Samples []int `json:"-"`
}

// calcStats computes mean/variance/percentiles for integer samples.
func calcStats(xs []int) Stats {
	n := len(xs)
	if n == 0 {
		return Stats{}
	}
	var sum float64
	for _, v := range xs {
		sum += float64(v)
	}
	mean := sum / float64(n)

	// population variance
	var acc float64
	for _, v := range xs {
		d := float64(v) - mean
		acc += d * d
	}
	variance := acc / float64(n)

	sorted := append([]int(nil), xs...)
	sort.Ints(sorted)

	return Stats{
		Mean:    mean,
		Var:     variance,
		StdDev:  math.Sqrt(variance),
		P50:     percentile(sorted, 0.50),
		P90:     percentile(sorted, 0.90),
		P99:     percentile(sorted, 0.99),
		Samples: xs,
	}
}

// percentile interpolates linearly between closest ranks of sorted.
func percentile(sorted []int, p float64) float64 {
	n := len(sorted)
	switch {
	case n == 1 || p <= 0:
		return float64(sorted[0])
	case p >= 1:
		return float64(sorted[n-1])
	}
	pos := p * float64(n-1)
	i := int(math.Floor(pos))
	f := pos - float64(i)
	if i+1 >= n {
		return float64(sorted[i])
	}
	return float64(sorted[i])*(1-f) + float64(sorted[i+1])*f
}

// simulateOne returns the primary metric for one trial depending on the goal.
func simulateOne(e *Engine, p SimParams, goal TrialGoal) (int, error) {
	pity := PityState{Counter: p.StartCounter, Threshold: p.Threshold}

	switch goal {
	case GoalFirstHighGrade, GoalFirstS:
		floor := GradeA
		if goal == GoalFirstS {
			floor = GradeS
		}
		draws := 0
		for draws < maxTrialDraws {
			outs, next, err := e.DrawBatch(pity, p.BatchSize)
			if err != nil {
				return 0, err
			}
			pity = next
			for _, o := range outs {
				draws++
				if o.Grade >= floor {
					return draws, nil
				}
			}
		}
		return draws, nil

	case GoalFixedBudget, GoalForcedRate:
		count := 0
		for done := 0; done < p.Budget; done += p.BatchSize {
			outs, next, err := e.DrawBatch(pity, p.BatchSize)
			if err != nil {
				return 0, err
			}
			pity = next
			for i, o := range outs {
				if done+i >= p.Budget {
					break
				}
				if goal == GoalForcedRate && o.ForcedByPity {
					count++
				}
				if goal == GoalFixedBudget && o.Grade >= GradeA {
					count++
				}
			}
		}
		return count, nil
	}

	return 0, fmt.Errorf("%w: unknown trial goal %q", ErrInvalidArgument, goal)
}

// RunMonteCarlo repeats trials and returns summary stats.
// goal determines what metric is recorded per trial.
func RunMonteCarlo(e *Engine, p SimParams, goal TrialGoal, trials int) (Stats, error) {
	if trials <= 0 {
		return Stats{}, nil
	}
	p, err := p.normalize()
	if err != nil {
		return Stats{}, err
	}
	samples := make([]int, trials)
	for i := 0; i < trials; i++ {
		v, err := simulateOne(e, p, goal)
		if err != nil {
			return Stats{}, err
		}
		samples[i] = v
	}
	return calcStats(samples), nil
}

// GradeHistogram pulls batches back to back from pity and counts grades.
// Forced draws are counted under their grade and again in forced.
func GradeHistogram(e *Engine, pity PityState, batches, batchSize int) (hist map[Grade]int, forced int, err error) {
	hist = make(map[Grade]int, len(gradeNames))
	for b := 0; b < batches; b++ {
		outs, next, err := e.DrawBatch(pity, batchSize)
		if err != nil {
			return nil, 0, err
		}
		pity = next
		for _, o := range outs {
			hist[o.Grade]++
			if o.ForcedByPity {
				forced++
			}
		}
	}
	return hist, forced, nil
}

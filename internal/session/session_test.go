package session

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xtding233/capsule-gacha/internal/gacha"
	"github.com/xtding233/capsule-gacha/internal/game"
	"github.com/xtding233/capsule-gacha/internal/pricing"
	"github.com/xtding233/capsule-gacha/internal/reveal"
	"github.com/xtding233/capsule-gacha/internal/token"
)

func testParams() game.Params {
	return game.Params{
		Threshold:       100,
		Catalog:         []gacha.Reward{"char_snow", "char_egg", "char_ghost"},
		Capsules:        []string{"Capsule_Yellow", "Capsule_Green", "Capsule_Red"},
		Cost:            token.Token{Name: "coin", PerDraw: 100, PerTenDraw: 900},
		StartingBalance: 2000,
		Shop: pricing.Shop{Currency: "USD", Bundles: []pricing.Bundle{
			{ID: "pouch", Name: "Coin Pouch", Coins: 100, PriceCents: 99},
			{ID: "chest", Name: "Coin Chest", Coins: 1000, Bonus: 100, FirstTimeX2: true, PriceCents: 899},
		}},
	}
}

func newTestSession(t *testing.T, rng gacha.RandomSource, opts ...Option) *Session {
	t.Helper()
	p := testParams()
	e, err := p.NewEngine(gacha.WithRandomSource(rng))
	require.NoError(t, err)
	s, err := New(e, p, opts...)
	require.NoError(t, err)
	return s
}

func TestPullTenStepByStep(t *testing.T) {
	var progress []gacha.Progress
	s := newTestSession(t, gacha.NewSeededRNG(5), WithProgressListener(func(p gacha.Progress) {
		progress = append(progress, p)
	}))

	outs, err := s.Pull(gacha.BatchTen)
	require.NoError(t, err)
	require.Len(t, outs, 10)
	assert.Equal(t, 1100, s.Balance())
	assert.Equal(t, []gacha.Progress{{Current: 10, Max: 100}}, progress)
	assert.Equal(t, reveal.StatePresenting, s.RevealState())

	// pulling again before the reveal is dismissed is refused and costs nothing
	_, err = s.Pull(gacha.BatchSingle)
	require.ErrorIs(t, err, gacha.ErrInvalidState)
	assert.Equal(t, 1100, s.Balance())

	step, err := s.CurrentStep()
	require.NoError(t, err)
	assert.Equal(t, outs[0], step.Outcome)
	assert.Equal(t, reveal.PhaseContainer, step.Phase)

	for i := 0; i < 2*len(outs); i++ {
		s.Advance()
	}
	assert.Equal(t, reveal.StateSummarizing, s.RevealState())
	summary, err := s.Summary()
	require.NoError(t, err)
	assert.Equal(t, outs, summary)
	require.NoError(t, s.Finish())

	_, err = s.Pull(gacha.BatchSingle)
	require.NoError(t, err)
	assert.Equal(t, 1000, s.Balance())
	assert.Equal(t, 11, s.Pity().Counter)
}

func TestPullSkipMode(t *testing.T) {
	s := newTestSession(t, gacha.NewSeededRNG(1))
	s.SetSkip(true)
	outs, err := s.Pull(gacha.BatchTen)
	require.NoError(t, err)
	assert.Equal(t, reveal.StateSummarizing, s.RevealState())
	summary, err := s.Summary()
	require.NoError(t, err)
	assert.Equal(t, outs, summary)
	require.NoError(t, s.Finish())
}

func TestPullRejects(t *testing.T) {
	s := newTestSession(t, gacha.NewSeededRNG(1))
	_, err := s.Pull(3)
	require.ErrorIs(t, err, gacha.ErrInvalidArgument)
	assert.Equal(t, 2000, s.Balance())

	s.SetSkip(true)
	for i := 0; i < 2; i++ {
		_, err = s.Pull(gacha.BatchTen)
		require.NoError(t, err)
		require.NoError(t, s.Finish())
	}
	assert.Equal(t, 200, s.Balance())
	_, err = s.Pull(gacha.BatchTen)
	require.ErrorIs(t, err, token.ErrInsufficientFunds)
	assert.Equal(t, 20, s.Pity().Counter, "refused pull must not draw")

	s.Credit(700)
	_, err = s.Pull(gacha.BatchTen)
	require.NoError(t, err)
	assert.Zero(t, s.Balance())
}

func TestPityCarriesAcrossPulls(t *testing.T) {
	// all D rolls, so only pity produces an A
	s := newTestSession(t, gacha.NewSequenceRNG([]float64{80}, []int{0, 1, 2}))
	s.SetSkip(true)
	s.Credit(100000)

	forced := 0
	for i := 0; i < 11; i++ {
		outs, err := s.Pull(gacha.BatchTen)
		require.NoError(t, err)
		for _, o := range outs {
			if o.ForcedByPity {
				forced++
				assert.Equal(t, gacha.GradeA, o.Grade)
			}
		}
		require.NoError(t, s.Finish())
	}
	assert.Equal(t, 1, forced)
	assert.Equal(t, 9, s.Pity().Counter)
}

func TestCollection(t *testing.T) {
	// rolls: S, D, A; picks alternate reward / capsule
	s := newTestSession(t, gacha.NewSequenceRNG([]float64{0.1, 70, 2}, []int{1, 0, 0, 0, 1, 0}))
	s.SetSkip(true)
	for i := 0; i < 3; i++ {
		_, err := s.Pull(gacha.BatchSingle)
		require.NoError(t, err)
		require.NoError(t, s.Finish())
	}

	acquired := s.Collection(OrderAcquired)
	require.Len(t, acquired, 2)
	assert.Equal(t, gacha.Reward("char_egg"), acquired[0].Reward)
	assert.Equal(t, 2, acquired[0].Count)
	assert.Equal(t, gacha.GradeS, acquired[0].BestGrade)
	assert.Equal(t, gacha.Reward("char_snow"), acquired[1].Reward)
	assert.Equal(t, gacha.GradeD, acquired[1].BestGrade)

	byRank := s.Collection(OrderRank)
	assert.Equal(t, gacha.Reward("char_egg"), byRank[0].Reward)

	snap := s.Snapshot()
	assert.Equal(t, 2, snap.Owned)
	assert.Equal(t, gacha.Progress{Current: 3, Max: 100}, snap.Pity)
	assert.Equal(t, 98, snap.Remaining)
}

func TestStore(t *testing.T) {
	f, err := NewFactory(testParams(), gacha.WithRandomSource(gacha.NewSeededRNG(3)))
	require.NoError(t, err)
	st := NewStore(f)

	id := uuid.New()
	s, err := st.Create(WithID(id))
	require.NoError(t, err)
	assert.Equal(t, id, s.ID())
	assert.Equal(t, 1, st.Len())

	err = st.With(id, func(s *Session) error {
		_, err := s.Pull(gacha.BatchSingle)
		return err
	})
	require.NoError(t, err)

	err = st.With(uuid.New(), func(*Session) error { return nil })
	require.ErrorIs(t, err, ErrNotFound)

	p := testParams()
	p.Threshold = 7
	f2, err := NewFactory(p)
	require.NoError(t, err)
	st.SetFactory(f2)
	s2, err := st.Create()
	require.NoError(t, err)
	assert.Equal(t, 7, s2.Pity().Threshold)

	require.NoError(t, st.Delete(id))
	require.ErrorIs(t, st.Delete(id), ErrNotFound)
	assert.Equal(t, 1, st.Len())
}

func TestTopUp(t *testing.T) {
	s := newTestSession(t, gacha.NewSeededRNG(8))

	plan, err := s.TopUpPlan(gacha.BatchTen, 1)
	require.NoError(t, err)
	assert.Empty(t, plan.Purchases, "balance already covers one ten-pull")

	plan, err = s.TopUpPlan(gacha.BatchTen, 3)
	require.NoError(t, err)
	assert.Equal(t, 693, plan.TotalCents)
	assert.Equal(t, 700, plan.TotalCoins)

	_, err = s.TopUpPlan(3, 1)
	require.ErrorIs(t, err, gacha.ErrInvalidArgument)
	_, err = s.TopUpPlan(gacha.BatchSingle, 0)
	require.ErrorIs(t, err, gacha.ErrInvalidArgument)

	got, err := s.TopUp("chest")
	require.NoError(t, err)
	assert.Equal(t, 2100, got, "first purchase is doubled")
	got, err = s.TopUp("chest")
	require.NoError(t, err)
	assert.Equal(t, 1100, got)
	assert.Equal(t, 5200, s.Balance())

	_, err = s.TopUp("vault")
	require.ErrorIs(t, err, gacha.ErrInvalidArgument)
	assert.Equal(t, 5200, s.Balance())
}

func TestTopUpPlanBounds(t *testing.T) {
	s := newTestSession(t, gacha.NewSeededRNG(8))

	_, err := s.TopUpPlan(gacha.BatchTen, 100_000_000_000)
	require.ErrorIs(t, err, gacha.ErrInvalidArgument)
	_, err = s.TopUpPlan(gacha.BatchTen, MaxPlanPulls+1)
	require.ErrorIs(t, err, gacha.ErrInvalidArgument)

	plan, err := s.TopUpPlan(gacha.BatchTen, MaxPlanPulls)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, plan.TotalCoins, 900*MaxPlanPulls-2000)

	// a price near MaxInt must not wrap into a negative shortfall
	p := testParams()
	p.Cost.PerTenDraw = math.MaxInt / 2
	e, err := p.NewEngine(gacha.WithRandomSource(gacha.NewSeededRNG(8)))
	require.NoError(t, err)
	pricey, err := New(e, p)
	require.NoError(t, err)
	_, err = pricey.TopUpPlan(gacha.BatchTen, 3)
	require.ErrorIs(t, err, gacha.ErrInvalidArgument)
	_, err = pricey.TopUpPlan(gacha.BatchTen, 1)
	require.ErrorIs(t, err, gacha.ErrInvalidArgument, "shortfall above the plan ceiling")
}

func TestSnapshotDecodes(t *testing.T) {
	s := newTestSession(t, gacha.NewSeededRNG(4))
	_, err := s.Pull(gacha.BatchSingle)
	require.NoError(t, err)

	b, err := json.Marshal(s.Snapshot())
	require.NoError(t, err)
	var back Snapshot
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, s.Snapshot(), back)
	assert.Equal(t, reveal.StatePresenting, back.Reveal)
}

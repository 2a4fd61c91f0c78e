package reveal

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xtding233/capsule-gacha/internal/gacha"
)

func outcomes(n int) []gacha.Outcome {
	out := make([]gacha.Outcome, n)
	for i := range out {
		out[i] = gacha.Outcome{Grade: gacha.GradeD, Reward: gacha.Reward("r" + string(rune('a'+i)))}
	}
	return out
}

func TestSequencerExhaustion(t *testing.T) {
	for _, n := range []int{1, 2, 10} {
		t.Run(fmt.Sprintf("len=%d", n), func(t *testing.T) {
			s := NewSequencer()
			require.NoError(t, s.Start(outcomes(n), false))
			require.Equal(t, StatePresenting, s.State())

			step, err := s.CurrentStep()
			require.NoError(t, err)
			assert.Equal(t, Step{Index: 0, Total: n, Phase: PhaseContainer, Outcome: outcomes(n)[0]}, step)

			calls := 0
			for s.State() == StatePresenting {
				s.Advance()
				calls++
				require.LessOrEqual(t, calls, 2*n)
			}
			assert.Equal(t, 2*n, calls)
			assert.Equal(t, StateSummarizing, s.State())

			require.NoError(t, s.Finish())
			assert.Equal(t, StateIdle, s.State())
			assert.Zero(t, s.Len())
		})
	}
}

func TestSequencerPhaseOrder(t *testing.T) {
	s := NewSequencer()
	require.NoError(t, s.Start(outcomes(2), false))

	step, ok := s.Advance()
	require.True(t, ok)
	assert.Equal(t, 0, step.Index)
	assert.Equal(t, PhaseReward, step.Phase)

	step, ok = s.Advance()
	require.True(t, ok)
	assert.Equal(t, 1, step.Index)
	assert.Equal(t, PhaseContainer, step.Phase)
	assert.Equal(t, gacha.Reward("rb"), step.Outcome.Reward)

	step, ok = s.Advance()
	require.True(t, ok)
	assert.Equal(t, PhaseReward, step.Phase)

	_, ok = s.Advance()
	assert.False(t, ok)
	assert.Equal(t, StateSummarizing, s.State())

	cur, err := s.CurrentStep()
	require.NoError(t, err)
	assert.Equal(t, PhaseSummary, cur.Phase)
}

func TestSequencerSkipMode(t *testing.T) {
	s := NewSequencer()
	want := outcomes(10)
	require.NoError(t, s.Start(want, true))
	assert.Equal(t, StateSummarizing, s.State())
	assert.True(t, s.Skipped())

	got, err := s.Summary()
	require.NoError(t, err)
	assert.Equal(t, want, got)

	// advance is a no-op in Summarizing
	_, ok := s.Advance()
	assert.False(t, ok)
	assert.Equal(t, StateSummarizing, s.State())

	require.NoError(t, s.Finish())
}

func TestSequencerInvalidState(t *testing.T) {
	s := NewSequencer()

	_, err := s.CurrentStep()
	require.ErrorIs(t, err, gacha.ErrInvalidState)
	require.ErrorIs(t, s.Finish(), gacha.ErrInvalidState)
	_, err = s.Summary()
	require.ErrorIs(t, err, gacha.ErrInvalidState)

	_, ok := s.Advance()
	assert.False(t, ok, "advance while idle is a no-op")
	assert.Equal(t, StateIdle, s.State())

	require.ErrorIs(t, s.Start(nil, false), gacha.ErrInvalidArgument)

	require.NoError(t, s.Start(outcomes(3), false))
	require.ErrorIs(t, s.Start(outcomes(3), false), gacha.ErrInvalidState)
	require.ErrorIs(t, s.Finish(), gacha.ErrInvalidState)
	_, err = s.Summary()
	require.ErrorIs(t, err, gacha.ErrInvalidState)
}

func TestSequencerOwnsItsCopy(t *testing.T) {
	in := outcomes(2)
	s := NewSequencer()
	require.NoError(t, s.Start(in, true))
	in[0].Reward = "mutated"

	got, err := s.Summary()
	require.NoError(t, err)
	assert.Equal(t, gacha.Reward("ra"), got[0].Reward)
}

func TestStepJSONRoundTrip(t *testing.T) {
	s := NewSequencer()
	require.NoError(t, s.Start(outcomes(2), false))
	step, ok := s.Advance()
	require.True(t, ok)

	b, err := json.Marshal(step)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"phase":"reward"`)
	var back Step
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, step, back)

	var st State
	require.NoError(t, st.UnmarshalText([]byte("summarizing")))
	assert.Equal(t, StateSummarizing, st)
	require.ErrorIs(t, st.UnmarshalText([]byte("paused")), gacha.ErrInvalidArgument)
	var ph Phase
	require.ErrorIs(t, ph.UnmarshalText([]byte("Reward")), gacha.ErrInvalidArgument)
}

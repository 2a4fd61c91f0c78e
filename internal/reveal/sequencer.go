// Package reveal sequences the presentation of one pulled batch.
//
// Every outcome is shown in two phases, the closed capsule and then the reward
// inside it. The renderer pulls steps with Advance; nothing here runs on a timer.
package reveal

import (
	"fmt"

	"github.com/xtding233/capsule-gacha/internal/gacha"
)

type State int

const (
	StateIdle State = iota
	StatePresenting
	StateSummarizing
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePresenting:
		return "presenting"
	case StateSummarizing:
		return "summarizing"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *State) UnmarshalText(b []byte) error {
	for _, v := range []State{StateIdle, StatePresenting, StateSummarizing} {
		if v.String() == string(b) {
			*s = v
			return nil
		}
	}
	return fmt.Errorf("%w: unknown reveal state %q", gacha.ErrInvalidArgument, b)
}

type Phase int

const (
	PhaseContainer Phase = iota
	PhaseReward
	PhaseSummary
)

func (p Phase) String() string {
	switch p {
	case PhaseContainer:
		return "container"
	case PhaseReward:
		return "reward"
	case PhaseSummary:
		return "summary"
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

func (p Phase) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

func (p *Phase) UnmarshalText(b []byte) error {
	for _, v := range []Phase{PhaseContainer, PhaseReward, PhaseSummary} {
		if v.String() == string(b) {
			*p = v
			return nil
		}
	}
	return fmt.Errorf("%w: unknown reveal phase %q", gacha.ErrInvalidArgument, b)
}

// Step is what the renderer should show next.
type Step struct {
	Index   int           `json:"index"`
	Total   int           `json:"total"`
	Phase   Phase         `json:"phase"`
	Outcome gacha.Outcome `json:"outcome"`
}

// Sequencer is a state machine over one reveal session.
// It is driven by a single caller and is not safe for concurrent use.
type Sequencer struct {
	state    State
	outcomes []gacha.Outcome
	cursor   int
	phase    Phase
	skip     bool
}

func NewSequencer() *Sequencer {
	return &Sequencer{}
}

// Start opens a session over outcomes. With skip set the session goes straight
// to the summary; otherwise the first capsule is presented.
func (s *Sequencer) Start(outcomes []gacha.Outcome, skip bool) error {
	if s.state != StateIdle {
		return fmt.Errorf("%w: reveal already %s", gacha.ErrInvalidState, s.state)
	}
	if len(outcomes) == 0 {
		return fmt.Errorf("%w: no outcomes to reveal", gacha.ErrInvalidArgument)
	}
	s.outcomes = append([]gacha.Outcome(nil), outcomes...)
	s.cursor = 0
	s.phase = PhaseContainer
	s.skip = skip
	if skip {
		s.state = StateSummarizing
		s.phase = PhaseSummary
		return nil
	}
	s.state = StatePresenting
	return nil
}

// Advance acknowledges the current step. The capsule phase opens into the reward
// phase of the same index; the reward phase moves on to the next capsule, or to
// the summary after the last one. It reports false when no step follows, and is
// a no-op outside Presenting.
func (s *Sequencer) Advance() (Step, bool) {
	if s.state != StatePresenting {
		return Step{}, false
	}
	if s.phase == PhaseContainer {
		s.phase = PhaseReward
		return s.step(), true
	}
	if s.cursor+1 >= len(s.outcomes) {
		s.state = StateSummarizing
		s.phase = PhaseSummary
		return Step{}, false
	}
	s.cursor++
	s.phase = PhaseContainer
	return s.step(), true
}

// CurrentStep returns the step on display. In Summarizing the step carries
// PhaseSummary and no outcome.
func (s *Sequencer) CurrentStep() (Step, error) {
	switch s.state {
	case StateIdle:
		return Step{}, fmt.Errorf("%w: no reveal in progress", gacha.ErrInvalidState)
	case StateSummarizing:
		return Step{Index: len(s.outcomes), Total: len(s.outcomes), Phase: PhaseSummary}, nil
	}
	return s.step(), nil
}

// Summary returns every outcome of the session once it is summarizing.
func (s *Sequencer) Summary() ([]gacha.Outcome, error) {
	if s.state != StateSummarizing {
		return nil, fmt.Errorf("%w: summary not available while %s", gacha.ErrInvalidState, s.state)
	}
	return append([]gacha.Outcome(nil), s.outcomes...), nil
}

// Finish dismisses the summary and releases the session.
func (s *Sequencer) Finish() error {
	if s.state != StateSummarizing {
		return fmt.Errorf("%w: cannot finish while %s", gacha.ErrInvalidState, s.state)
	}
	*s = Sequencer{}
	return nil
}

func (s *Sequencer) State() State { return s.state }

// Skipped reports whether the current session was started in skip mode.
func (s *Sequencer) Skipped() bool { return s.skip }

// Len is the number of outcomes in the current session.
func (s *Sequencer) Len() int { return len(s.outcomes) }

func (s *Sequencer) step() Step {
	return Step{
		Index:   s.cursor,
		Total:   len(s.outcomes),
		Phase:   s.phase,
		Outcome: s.outcomes[s.cursor],
	}
}

package gacha

import "fmt"

// Batch sizes offered by the levers.
const (
	BatchSingle = 1
	BatchTen    = 10
)

// Reward identifies one entry of the character catalog.
type Reward string

// Outcome is one draw's result. Reward is picked independently of Grade.
type Outcome struct {
	Grade        Grade  `json:"grade"`
	Reward       Reward `json:"reward"`
	Capsule      string `json:"capsule,omitempty"`
	ForcedByPity bool   `json:"forced_by_pity"`
}

// Engine computes draws. It holds no pity state of its own.
type Engine struct {
	catalog  []Reward
	capsules []string
	rng      RandomSource
}

type Option func(*Engine)

// WithRandomSource replaces the default crypto-backed source.
func WithRandomSource(rng RandomSource) Option {
	return func(e *Engine) {
		if rng != nil {
			e.rng = rng
		}
	}
}

// WithCapsules sets the container colours shown before a reward is revealed.
func WithCapsules(capsules []string) Option {
	return func(e *Engine) {
		e.capsules = append([]string(nil), capsules...)
	}
}

// NewEngine creates an engine sampling uniformly from catalog.
func NewEngine(catalog []Reward, opts ...Option) (*Engine, error) {
	if len(catalog) == 0 {
		return nil, fmt.Errorf("%w: reward catalog is empty", ErrInvalidArgument)
	}
	e := &Engine{
		catalog: append([]Reward(nil), catalog...),
		rng:     DefaultRNG(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Catalog returns a copy of the reward catalog.
func (e *Engine) Catalog() []Reward {
	return append([]Reward(nil), e.catalog...)
}

// draw performs one draw. A forced draw takes PityGrade and resets the counter;
// anything else rolls the grade table and advances the counter by one.
func (e *Engine) draw(pity PityState, forced bool, grade Grade) (Outcome, PityState) {
	out := Outcome{ForcedByPity: forced}
	if forced {
		out.Grade = grade
		pity.Counter = 0
	} else {
		out.Grade = GradeFor(e.rng.Roll())
		pity.Counter++
	}
	out.Reward = e.catalog[e.rng.IntN(len(e.catalog))]
	if len(e.capsules) > 0 {
		out.Capsule = e.capsules[e.rng.IntN(len(e.capsules))]
	}
	return out, pity
}

// DrawOne performs a single draw. If this draw completes the threshold
// (Counter+1 >= Threshold) it is forced to PityGrade.
func (e *Engine) DrawOne(pity PityState) (Outcome, PityState, error) {
	if err := validatePity(pity); err != nil {
		return Outcome{}, pity, err
	}
	if pity.Counter+1 >= pity.Threshold {
		out, next := e.draw(pity, true, PityGrade)
		return out, next, nil
	}
	out, next := e.draw(pity, false, 0)
	return out, next, nil
}

// DrawForced performs a single draw with a caller-chosen grade, as a pity trigger.
func (e *Engine) DrawForced(pity PityState, grade Grade) (Outcome, PityState, error) {
	if err := validatePity(pity); err != nil {
		return Outcome{}, pity, err
	}
	if !grade.Valid() {
		return Outcome{}, pity, fmt.Errorf("%w: grade %d out of range", ErrInvalidArgument, int(grade))
	}
	out, next := e.draw(pity, true, grade)
	return out, next, nil
}

// DrawBatch performs count draws (1 or 10). Draw i is forced when the guarantee
// has not fired yet in this batch and pity.Counter+i >= pity.Threshold, measured
// from the counter at batch start. At most one draw per batch is forced.
//
// The returned counter is count-1-k when the draw at offset k was forced, and
// min(Counter+count, Threshold) otherwise.
func (e *Engine) DrawBatch(pity PityState, count int) ([]Outcome, PityState, error) {
	if err := validatePity(pity); err != nil {
		return nil, pity, err
	}
	if err := validateBatch(count); err != nil {
		return nil, pity, err
	}

	outcomes := make([]Outcome, 0, count)
	running := pity
	guaranteeUsed := false
	for i := 0; i < count; i++ {
		forced := !guaranteeUsed && pity.Counter+i >= pity.Threshold
		out, next := e.draw(running, forced, PityGrade)
		if forced {
			guaranteeUsed = true
		} else if !guaranteeUsed && next.Counter > pity.Threshold {
			next.Counter = pity.Threshold
		}
		outcomes = append(outcomes, out)
		running = next
	}
	return outcomes, running, nil
}

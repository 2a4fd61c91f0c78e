package gacha

// DefaultPityThreshold is how many draws it takes to earn a guaranteed A.
const DefaultPityThreshold = 100

// PityState is threaded through every draw call; the engine never keeps a copy.
type PityState struct {
	Counter   int `json:"counter"`   // draws since the last pity trigger
	Threshold int `json:"threshold"` // counter value at which the guarantee fires
}

// NewPityState returns a fresh state with a zero counter.
func NewPityState(threshold int) (PityState, error) {
	p := PityState{Threshold: threshold}
	if err := validatePity(p); err != nil {
		return PityState{}, err
	}
	return p, nil
}

// Progress projects the state for a progress-bar renderer.
func (p PityState) Progress() Progress {
	return Progress{Current: p.Counter, Max: p.Threshold}
}

// Progress is the read-only view re-emitted after every draw call.
type Progress struct {
	Current int `json:"current"`
	Max     int `json:"max"`
}

// Fraction is the bar fill in [0, 1].
func (p Progress) Fraction() float64 {
	if p.Max <= 0 {
		return 0
	}
	f := float64(p.Current) / float64(p.Max)
	if f > 1 {
		f = 1
	}
	if f < 0 {
		f = 0
	}
	return f
}

// Remaining is the number of draws left until the guarantee, never below 1.
func (p Progress) Remaining() int {
	r := p.Max - p.Current + 1
	if r < 1 {
		r = 1
	}
	return r
}

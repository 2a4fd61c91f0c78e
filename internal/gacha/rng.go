package gacha

import (
	cryptoRand "crypto/rand"
	"encoding/binary"
	"math"
	"math/rand/v2"
)

// RandomSource feeds the engine: Roll picks the grade, IntN picks catalog entries.
type RandomSource interface {
	Roll() float64  // [0, 100)
	IntN(n int) int // [0, n)
}

// largest float64 below 100
var maxRoll = math.Nextafter(100, 0)

func scaleRoll(u float64) float64 {
	v := u * 100
	if v >= 100 {
		v = maxRoll
	}
	return v
}

func scaleIndex(u float64, n int) int {
	if n <= 1 {
		return 0
	}
	i := int(u * float64(n))
	if i >= n {
		i = n - 1
	}
	return i
}

// crypto random : default generation method
type cryptoRNG struct{}

func (cryptoRNG) unit() float64 {
	var buf [8]byte
	if _, err := cryptoRand.Read(buf[:]); err != nil {
		return rand.Float64()
	}
	u := binary.BigEndian.Uint64(buf[:]) >> 11 // 53 bits
	return float64(u) / (1 << 53)
}

func (c cryptoRNG) Roll() float64  { return scaleRoll(c.unit()) }
func (c cryptoRNG) IntN(n int) int { return scaleIndex(c.unit(), n) }

func DefaultRNG() RandomSource { return cryptoRNG{} }

// Replicable RNG (e.g. Monte Carlo)
type seededRNG struct{ r *rand.Rand }

func NewSeededRNG(seed uint64) RandomSource {
	return &seededRNG{r: rand.New(rand.NewPCG(seed, 0))}
}

func (s *seededRNG) Roll() float64 { return scaleRoll(s.r.Float64()) }

func (s *seededRNG) IntN(n int) int {
	if n <= 1 {
		return 0
	}
	return s.r.IntN(n)
}

// SequenceRNG replays fixed rolls and picks in order, wrapping around when exhausted.
// Out-of-range picks are reduced modulo n.
type SequenceRNG struct {
	rolls []float64
	picks []int
	ri    int
	pi    int
}

func NewSequenceRNG(rolls []float64, picks []int) *SequenceRNG {
	return &SequenceRNG{rolls: rolls, picks: picks}
}

func (s *SequenceRNG) Roll() float64 {
	if len(s.rolls) == 0 {
		return 0
	}
	v := s.rolls[s.ri%len(s.rolls)]
	s.ri++
	return v
}

func (s *SequenceRNG) IntN(n int) int {
	if len(s.picks) == 0 || n <= 1 {
		return 0
	}
	v := s.picks[s.pi%len(s.picks)]
	s.pi++
	if v < 0 {
		v = -v
	}
	return v % n
}

// Rolls reports how many rolls have been consumed.
func (s *SequenceRNG) Rolls() int { return s.ri }

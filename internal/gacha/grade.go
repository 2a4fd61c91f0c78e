package gacha

import (
	"fmt"
	"strings"
)

// Grade is the rarity rank of one draw, ordered worst to best.
type Grade int

const (
	GradeD Grade = iota
	GradeC
	GradeB
	GradeA
	GradeS
)

// PityGrade is the floor grade a pity trigger forces.
const PityGrade = GradeA

var gradeNames = [...]string{GradeD: "D", GradeC: "C", GradeB: "B", GradeA: "A", GradeS: "S"}

func (g Grade) String() string {
	if g < GradeD || g > GradeS {
		return fmt.Sprintf("Grade(%d)", int(g))
	}
	return gradeNames[g]
}

func (g Grade) Valid() bool { return g >= GradeD && g <= GradeS }

// ParseGrade accepts "S", "a", " b " and so on.
func ParseGrade(s string) (Grade, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	for g, n := range gradeNames {
		if n == name {
			return Grade(g), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown grade %q", ErrInvalidArgument, s)
}

func (g Grade) MarshalText() ([]byte, error) {
	if !g.Valid() {
		return nil, fmt.Errorf("%w: grade %d out of range", ErrInvalidArgument, int(g))
	}
	return []byte(g.String()), nil
}

func (g *Grade) UnmarshalText(b []byte) error {
	v, err := ParseGrade(string(b))
	if err != nil {
		return err
	}
	*g = v
	return nil
}

// gradeCutoffs is the cumulative table over [0, 100), best grade first.
// A roll below upper (exclusive) lands on grade; anything past the last cutoff is D.
var gradeCutoffs = [...]struct {
	upper float64
	grade Grade
}{
	{0.8, GradeS},
	{5, GradeA},
	{19, GradeB},
	{50, GradeC},
}

// GradeFor maps a roll in [0, 100) onto the grade table.
func GradeFor(roll float64) Grade {
	for _, c := range gradeCutoffs {
		if roll < c.upper {
			return c.grade
		}
	}
	return GradeD
}

// GradeOdds returns the percentage chance of each grade on an un-forced draw.
func GradeOdds() map[Grade]float64 {
	odds := make(map[Grade]float64, len(gradeNames))
	lower := 0.0
	for _, c := range gradeCutoffs {
		odds[c.grade] = c.upper - lower
		lower = c.upper
	}
	odds[GradeD] = 100 - lower
	return odds
}

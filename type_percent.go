package wealth

import (
	"math"
	"strconv"
)

// Percent is a percentage, 12.5 means 12.5%. Returns and allocations are
// computed with decimals and only become a Percent at the end.
type Percent float64

// Equal compares up to the fourth decimal.
func (p Percent) Equal(q Percent) bool { return math.Abs(float64(p-q)) < 1e-4 }

// Round returns p rounded to the two decimals reports show.
func (p Percent) Round() Percent { return Percent(math.Round(float64(p)*100) / 100) }

func (p Percent) String() string { return strconv.FormatFloat(float64(p), 'f', 2, 64) + "%" }

// SignedString returns p with its sign. A percentage rounding to zero is "-".
func (p Percent) SignedString() string {
	switch r := p.Round(); {
	case r == 0:
		return "-"
	case r > 0:
		return "+" + r.String()
	default:
		return r.String()
	}
}

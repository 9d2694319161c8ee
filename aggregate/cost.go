package aggregate

import (
	"errors"
	"math"
	"math/big"
	"strconv"
	"strings"
)

// Cost is a drug cost amount. It is whole until a fractional value is
// folded into it, after which it stays fractional:
//
//	whole + whole           → whole
//	whole + fractional      → fractional
//	FloorDiv on fractional  → fractional (floored, e.g. 7.0)
//
// Whole values are unbounded: arithmetic that leaves the int64 range moves
// to a big.Int. The zero value is whole 0.
type Cost struct {
	whole      int64
	big        *big.Int // set only when the whole value does not fit int64; never mutated
	frac       float64
	fractional bool
}

// Whole returns a whole-number cost.
func Whole(v int64) Cost { return Cost{whole: v} }

// WholeBig returns a whole-number cost of arbitrary size.
func WholeBig(v *big.Int) Cost { return normBig(new(big.Int).Set(v)) }

// Fractional returns a fractional cost.
func Fractional(v float64) Cost { return Cost{frac: v, fractional: true} }

// normBig takes ownership of b.
func normBig(b *big.Int) Cost {
	if b.IsInt64() {
		return Whole(b.Int64())
	}
	return Cost{big: b}
}

func (c Cost) bigInt() *big.Int {
	if c.big != nil {
		return c.big
	}
	return big.NewInt(c.whole)
}

// ParseCost interprets a raw drug_cost field. Values containing '.' are
// parsed as decimals, everything else as whole numbers of any size.
// Surrounding whitespace is ignored. ok is false for empty, non-numeric,
// non-finite or out-of-range decimal input; callers treat that as a null
// cost.
func ParseCost(s string) (c Cost, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Cost{}, false
	}
	if strings.Contains(s, ".") {
		// strconv accepts hex floats; a drug_cost never is one.
		if strings.ContainsAny(s, "xX") {
			return Cost{}, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
			return Cost{}, false
		}
		return Fractional(f), true
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err == nil {
		return Whole(v), true
	}
	if !errors.Is(err, strconv.ErrRange) {
		return Cost{}, false
	}
	b, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return Cost{}, false
	}
	return normBig(b), true
}

// IsFractional reports whether c carries a fractional value.
func (c Cost) IsFractional() bool { return c.fractional }

// Float64 returns c as a float64. Whole values too large for a float64
// become ±Inf.
func (c Cost) Float64() float64 {
	if c.fractional {
		return c.frac
	}
	if c.big != nil {
		f, _ := new(big.Float).SetInt(c.big).Float64()
		return f
	}
	return float64(c.whole)
}

// Add returns c + o.
func (c Cost) Add(o Cost) Cost {
	if c.fractional || o.fractional {
		return Fractional(c.Float64() + o.Float64())
	}
	if c.big == nil && o.big == nil {
		s := c.whole + o.whole
		// Overflow flips the sign away from both operands.
		if (c.whole >= 0) == (o.whole >= 0) && (s >= 0) != (c.whole >= 0) {
			return normBig(new(big.Int).Add(big.NewInt(c.whole), big.NewInt(o.whole)))
		}
		return Whole(s)
	}
	return normBig(new(big.Int).Add(c.bigInt(), o.bigInt()))
}

// Mul returns c * n.
func (c Cost) Mul(n int64) Cost {
	if c.fractional {
		return Fractional(c.frac * float64(n))
	}
	if c.big == nil {
		if c.whole == 0 || n == 0 {
			return Whole(0)
		}
		p := c.whole * n
		if p/n == c.whole && !(c.whole == -1 && n == math.MinInt64) && !(n == -1 && c.whole == math.MinInt64) {
			return Whole(p)
		}
	}
	return normBig(new(big.Int).Mul(c.bigInt(), big.NewInt(n)))
}

// FloorDiv returns floor(c / n). n must be positive.
func (c Cost) FloorDiv(n int64) Cost {
	if c.fractional {
		return Fractional(math.Floor(c.frac / float64(n)))
	}
	if c.big != nil {
		// Euclidean division floors for a positive divisor.
		return normBig(new(big.Int).Div(c.big, big.NewInt(n)))
	}
	q := c.whole / n
	if c.whole%n != 0 && c.whole < 0 {
		q--
	}
	return Whole(q)
}

// Cmp compares the numeric values of c and o and returns -1, 0 or +1.
// A whole and a fractional cost with the same value compare equal; the
// comparison is exact for whole values of any size. NaN sorts below every
// number and equal to itself, keeping the order total.
func (c Cost) Cmp(o Cost) int {
	cNaN := c.fractional && math.IsNaN(c.frac)
	oNaN := o.fractional && math.IsNaN(o.frac)
	switch {
	case cNaN && oNaN:
		return 0
	case cNaN:
		return -1
	case oNaN:
		return 1
	}

	if !c.fractional && !o.fractional {
		if c.big == nil && o.big == nil {
			switch {
			case c.whole < o.whole:
				return -1
			case c.whole > o.whole:
				return 1
			}
			return 0
		}
		return c.bigInt().Cmp(o.bigInt())
	}
	if c.fractional && o.fractional {
		switch {
		case c.frac < o.frac:
			return -1
		case c.frac > o.frac:
			return 1
		}
		return 0
	}
	return c.bigFloat().Cmp(o.bigFloat())
}

// bigFloat returns the exact value of a non-NaN cost.
func (c Cost) bigFloat() *big.Float {
	if c.fractional {
		return new(big.Float).SetFloat64(c.frac)
	}
	return new(big.Float).SetInt(c.bigInt())
}

// Equal reports whether c and o are identical: same kind and same value.
// NaN is identical to NaN.
func (c Cost) Equal(o Cost) bool {
	if c.fractional != o.fractional {
		return false
	}
	if c.fractional {
		return c.frac == o.frac || (math.IsNaN(c.frac) && math.IsNaN(o.frac))
	}
	if c.big == nil && o.big == nil {
		return c.whole == o.whole
	}
	return c.bigInt().Cmp(o.bigInt()) == 0
}

// String renders c for the report. Whole costs print as plain digits.
// Fractional costs print in shortest round-trip form and always carry a
// decimal point or an exponent: 300.0, 12.5, 1e+16, 1e-05. Non-finite
// values print as inf, -inf and nan.
func (c Cost) String() string {
	if !c.fractional {
		if c.big != nil {
			return c.big.String()
		}
		return strconv.FormatInt(c.whole, 10)
	}
	f := c.frac
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	if abs := math.Abs(f); abs != 0 && (abs >= 1e16 || abs < 1e-4) {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// Decimal renders c as plain decimal text without an exponent, suitable for
// a SQL numeric column. Non-finite values render as NaN, Infinity and
// -Infinity, the PostgreSQL numeric spellings.
func (c Cost) Decimal() string {
	if !c.fractional {
		return c.String()
	}
	switch {
	case math.IsNaN(c.frac):
		return "NaN"
	case math.IsInf(c.frac, 1):
		return "Infinity"
	case math.IsInf(c.frac, -1):
		return "-Infinity"
	}
	return big.NewFloat(c.frac).Text('f', -1)
}

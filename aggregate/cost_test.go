package aggregate

import (
	"math"
	"math/big"
	"testing"
)

func TestParseCost(t *testing.T) {
	tests := []struct {
		in         string
		ok         bool
		fractional bool
		want       string
	}{
		{"12", true, false, "12"},
		{"12.5", true, true, "12.5"},
		{"  40 ", true, false, "40"},
		{"-7", true, false, "-7"},
		{"+3", true, false, "3"},
		{"100.", true, true, "100.0"},
		{".25", true, true, "0.25"},
		{"1.5e3", true, true, "1500.0"},
		{"", false, false, ""},
		{"   ", false, false, ""},
		{"x", false, false, ""},
		{"bad", false, false, ""},
		{"1e3", false, false, ""},
		{"12.5.1", false, false, ""},
		{"0x1.8p1", false, false, ""},
		{"99999999999999999999", true, false, "99999999999999999999"},
		{"-99999999999999999999", true, false, "-99999999999999999999"},
		{"1.7e308", true, true, "1.7e+308"},
		{"1e400.", false, false, ""},
		{"$12", false, false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			c, ok := ParseCost(tt.in)
			if ok != tt.ok {
				t.Fatalf("ParseCost(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			}
			if !ok {
				return
			}
			if c.IsFractional() != tt.fractional {
				t.Errorf("ParseCost(%q).IsFractional() = %v, want %v", tt.in, c.IsFractional(), tt.fractional)
			}
			if got := c.String(); got != tt.want {
				t.Errorf("ParseCost(%q).String() = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCostAddPromotes(t *testing.T) {
	sum := Whole(10).Add(Whole(20))
	if sum.IsFractional() {
		t.Fatalf("whole + whole should stay whole, got %s", sum)
	}
	sum = sum.Add(Fractional(12.5))
	if !sum.IsFractional() {
		t.Fatalf("whole + fractional should be fractional, got %s", sum)
	}
	if sum.String() != "42.5" {
		t.Errorf("sum = %s, want 42.5", sum)
	}
}

func TestCostFloorDiv(t *testing.T) {
	tests := []struct {
		name string
		c    Cost
		n    int64
		want Cost
	}{
		{"exact", Whole(30), 3, Whole(10)},
		{"truncates", Whole(31), 3, Whole(10)},
		{"negative floors down", Whole(-7), 2, Whole(-4)},
		{"negative exact", Whole(-6), 2, Whole(-3)},
		{"zero", Whole(0), 2, Whole(0)},
		{"fractional", Fractional(22.5), 3, Fractional(7)},
		{"fractional negative", Fractional(-1.5), 2, Fractional(-1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.c.FloorDiv(tt.n); !got.Equal(tt.want) {
				t.Errorf("%s.FloorDiv(%d) = %s, want %s", tt.c, tt.n, got, tt.want)
			}
		})
	}
}

func TestCostCmp(t *testing.T) {
	if Whole(300).Cmp(Fractional(300)) != 0 {
		t.Error("300 and 300.0 should compare equal")
	}
	if Whole(300).Equal(Fractional(300)) {
		t.Error("300 and 300.0 should not be identical")
	}
	if Whole(5).Cmp(Fractional(5.5)) != -1 {
		t.Error("5 < 5.5")
	}
	if Fractional(-1).Cmp(Whole(-2)) != 1 {
		t.Error("-1.0 > -2")
	}
}

func TestCostString(t *testing.T) {
	tests := []struct {
		c    Cost
		want string
	}{
		{Whole(0), "0"},
		{Whole(-15), "-15"},
		{Fractional(0), "0.0"},
		{Fractional(300), "300.0"},
		{Fractional(0.1 + 0.2), "0.30000000000000004"},
		{Fractional(1e16), "1e+16"},
		{Fractional(0.00001), "1e-05"},
		{Fractional(0.0001), "0.0001"},
	}
	for _, tt := range tests {
		if got := tt.c.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestCostDecimal(t *testing.T) {
	if got := Fractional(1e16).Decimal(); got != "10000000000000000" {
		t.Errorf("Decimal() = %q", got)
	}
	if got := Fractional(12.5).Decimal(); got != "12.5" {
		t.Errorf("Decimal() = %q", got)
	}
	if got := Whole(42).Decimal(); got != "42" {
		t.Errorf("Decimal() = %q", got)
	}
}

func TestCostWholeOverflowGoesBig(t *testing.T) {
	sum := Whole(math.MaxInt64).Add(Whole(1))
	if got := sum.String(); got != "9223372036854775808" {
		t.Fatalf("MaxInt64 + 1 = %s", got)
	}
	if sum.IsFractional() {
		t.Error("overflowed sum should stay whole")
	}
	if sum.Cmp(Whole(math.MaxInt64)) != 1 {
		t.Error("MaxInt64 + 1 should compare above MaxInt64")
	}

	neg := Whole(math.MinInt64).Add(Whole(-1))
	if got := neg.String(); got != "-9223372036854775809" {
		t.Errorf("MinInt64 - 1 = %s", got)
	}

	// Back inside int64 range.
	if back := sum.Add(Whole(-1)); !back.Equal(Whole(math.MaxInt64)) {
		t.Errorf("(MaxInt64 + 1) - 1 = %s", back)
	}

	prod := Whole(math.MaxInt64).Mul(3)
	want, _ := new(big.Int).SetString("27670116110564327421", 10)
	if !prod.Equal(WholeBig(want)) {
		t.Errorf("MaxInt64 * 3 = %s", prod)
	}
	if got := Whole(math.MinInt64).Mul(-1).String(); got != "9223372036854775808" {
		t.Errorf("MinInt64 * -1 = %s", got)
	}

	if got := prod.FloorDiv(3); !got.Equal(Whole(math.MaxInt64)) {
		t.Errorf("FloorDiv = %s", got)
	}
	negBig, _ := new(big.Int).SetString("-27670116110564327421", 10)
	if got := WholeBig(negBig).FloorDiv(2).String(); got != "-13835058055282163711" {
		t.Errorf("negative big FloorDiv = %s", got)
	}
	if got := prod.Decimal(); got != "27670116110564327421" {
		t.Errorf("Decimal = %s", got)
	}
}

func TestCostCmpExactAcrossKinds(t *testing.T) {
	if c := Whole(9007199254740993).Cmp(Fractional(9007199254740992)); c != 1 {
		t.Errorf("2^53+1 vs 2^53.0 = %d, want 1", c)
	}
	if c := Fractional(9007199254740992).Cmp(Whole(9007199254740993)); c != -1 {
		t.Errorf("2^53.0 vs 2^53+1 = %d, want -1", c)
	}
	huge, _ := new(big.Int).SetString("100000000000000000000000", 10)
	if c := WholeBig(huge).Cmp(Fractional(1e23)); c != 1 {
		// float64(1e23) is 99999999999999991611392
		t.Errorf("10^23 vs 1e23 = %d, want 1", c)
	}
	if c := WholeBig(huge).Cmp(Fractional(math.Inf(1))); c != -1 {
		t.Errorf("10^23 vs +inf = %d, want -1", c)
	}
}

func TestCostNonFinite(t *testing.T) {
	inf := Fractional(1.7e308).Add(Fractional(1.7e308))
	nan := Fractional(math.NaN())
	tests := []struct {
		c       Cost
		str     string
		decimal string
	}{
		{inf, "inf", "Infinity"},
		{Fractional(math.Inf(-1)), "-inf", "-Infinity"},
		{nan, "nan", "NaN"},
	}
	for _, tt := range tests {
		if got := tt.c.String(); got != tt.str {
			t.Errorf("String() = %q, want %q", got, tt.str)
		}
		if got := tt.c.Decimal(); got != tt.decimal {
			t.Errorf("Decimal() = %q, want %q", got, tt.decimal)
		}
	}

	if nan.Cmp(nan) != 0 || !nan.Equal(nan) {
		t.Error("NaN should compare equal to itself")
	}
	if nan.Cmp(Fractional(math.Inf(-1))) != -1 || Whole(0).Cmp(nan) != 1 {
		t.Error("NaN should sort below every number")
	}
	if inf.Cmp(Whole(math.MaxInt64)) != 1 {
		t.Error("inf should exceed any whole cost")
	}
}

package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIntLiteralRoundTripsThroughClassifyLiteral(t *testing.T) {
	cases := []int64{0, 1, 42, -7, 9223372036854775807, -9223372036854775807}
	for _, v := range cases {
		lit := IntLiteral(v)
		tok := lit
		if v < 0 {
			tok = lit[1:] // the grammar's int_literal has no leading sign; unary minus is a separate token.
		}
		assert.Equal(t, Int, ClassifyLiteral(tok), "literal %q for value %d", tok, v)
	}
}

func TestFloatLiteralRoundTripsThroughClassifyLiteral(t *testing.T) {
	cases := []float64{0, 1.5, 3.14159, 1000000.0001}
	for _, v := range cases {
		lit := FloatLiteral(v)
		assert.Equal(t, Float, ClassifyLiteral(lit), "literal %q for value %g", lit, v)
	}
}

func TestCastLegal(t *testing.T) {
	tests := []struct {
		name     string
		from, to Type
		want     bool
	}{
		{"int-to-float", DefaultInt, DefaultFloat, true},
		{"int widen", Type{Kind: Int, Size: 32, IsSigned: true}, Type{Kind: Int, Size: 64, IsSigned: true}, true},
		{"int sign+size change rejected", Type{Kind: Int, Size: 32, IsSigned: true}, Type{Kind: Int, Size: 64, IsSigned: false}, false},
		{"float-to-bool rejected", DefaultFloat, DefaultBool, false},
		{"bool-to-int", DefaultBool, DefaultInt, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CastLegal(tc.from, tc.to))
		})
	}
}

func TestCheckIntRangeRejectsOverflow(t *testing.T) {
	assert.NoError(t, CheckIntRange("255", Type{Kind: Int, Size: 8, IsSigned: false}))
	assert.Error(t, CheckIntRange("256", Type{Kind: Int, Size: 8, IsSigned: false}))
}

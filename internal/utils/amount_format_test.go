package utils

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoundAmount(t *testing.T) {
	assert.Equal(t, 242.86, RoundAmount(242.857142))
	assert.Equal(t, 1700.0, RoundAmount(1700))
	assert.Equal(t, -0.5, RoundAmount(-0.499))
}

func TestRoundAmountNonFinite(t *testing.T) {
	// decimal.NewFromFloat panics on NaN/Inf; these must come back as 0.
	assert.Equal(t, 0.0, RoundAmount(math.NaN()))
	assert.Equal(t, 0.0, RoundAmount(math.Inf(1)))
	assert.Equal(t, 0.0, RoundAmount(math.Inf(-1)))
}

func TestRoundAmountWithPrecision(t *testing.T) {
	assert.Equal(t, 7.2346, RoundAmountWithPrecision(7.234567, 4))
	assert.Equal(t, 7.0, RoundAmountWithPrecision(7.234567, 0))
	assert.Equal(t, 0.0, RoundAmountWithPrecision(math.NaN(), 4))
}

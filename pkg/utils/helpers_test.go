package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoundTo(t *testing.T) {
	assert.Equal(t, 1.23, RoundTo(1.2344, 2))
	assert.Equal(t, 1.24, RoundTo(1.2361, 2))
	assert.InDelta(t, -31.420101, RoundTo(-31.4201009, 6), 1e-9)
	assert.Equal(t, 2.0, RoundTo(1.5, 0))
}

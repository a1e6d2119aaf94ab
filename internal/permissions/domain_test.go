package permissions

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func ptr(v float64) *float64 { return &v }

func TestRangeFromValue(t *testing.T) {
	ranges := []ProfileRange{
		{Label: "<$1M", Max: ptr(1_000_000)},
		{Label: "$1M-$5M", Min: ptr(1_000_000), Max: ptr(5_000_000)},
		{Label: "$5M+", Min: ptr(5_000_000)},
	}
	assert.Equal(t, "<$1M", RangeFromValue(250_000, ranges))
	assert.Equal(t, "$1M-$5M", RangeFromValue(1_000_000, ranges))
	assert.Equal(t, "$5M+", RangeFromValue(5_000_000, ranges))
	assert.Equal(t, NotApplicable, RangeFromValue(10, nil))
}

func TestDisplayLabelFromBounds(t *testing.T) {
	assert.Equal(t, "1,000-5,000", ProfileRange{Min: ptr(1000), Max: ptr(5000)}.DisplayLabel())
	assert.Equal(t, "5,000+", ProfileRange{Min: ptr(5000)}.DisplayLabel())
	assert.Equal(t, "<1,000", ProfileRange{Max: ptr(1000)}.DisplayLabel())
	assert.Equal(t, NotApplicable, ProfileRange{}.DisplayLabel())
}

func TestAnonymizedName(t *testing.T) {
	assert.Equal(t, "a1b2-xxxx", AnonymizedName("a1b2c3d4"))
	assert.Equal(t, "7-xxxx", AnonymizedName("7"))
}

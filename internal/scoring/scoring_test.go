package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOffsetBelow(t *testing.T) {
	assert.Equal(t, Offsets{}, OffsetBelow(1), "nothing exists below the floor group")

	o := OffsetBelow(2)
	assert.Equal(t, 4, o.Total)
	assert.Equal(t, 3, o.Receptive)
	assert.Equal(t, 2, o.Expressive)

	// A perfect pass of the top group alone credits all 44 points of
	// the groups below it.
	assert.Equal(t, 44, OffsetBelow(GroupCount).Total)
}

func TestOffsetBelow_Monotonic(t *testing.T) {
	prev := Offsets{}
	for g := 1; g <= GroupCount; g++ {
		o := OffsetBelow(g)
		require.GreaterOrEqual(t, o.Total, prev.Total, "group %d", g)
		require.GreaterOrEqual(t, o.Receptive, prev.Receptive, "group %d", g)
		require.GreaterOrEqual(t, o.Expressive, prev.Expressive, "group %d", g)
		prev = o
	}
}

func TestMaxComposite(t *testing.T) {
	assert.Equal(t, 53, MaxComposite())
}

func TestMinAgeMonths(t *testing.T) {
	assert.Equal(t, 0, MinAgeMonths(1))
	assert.Equal(t, 33, MinAgeMonths(GroupCount))
	assert.Equal(t, -1, MinAgeMonths(0))
	assert.Equal(t, -1, MinAgeMonths(GroupCount+1))
}

func TestBandFor(t *testing.T) {
	tests := []struct {
		name      string
		group     int
		composite int
		want      Band
	}{
		{"zero score floor group", 1, 0, BandBelow5th},
		{"at 5th cut belongs above it", 1, 1, Band5thTo25th},
		{"average mid group", 5, 20, BandAverage},
		{"at 75th cut still average", 5, 24, BandAverage},
		{"between 75th and 90th", 5, 26, Band75thTo90th},
		{"above 90th", 5, 30, BandAbove90th},
		{"top group perfect walk", 9, 53, BandAbove90th},
		{"top group below fifth", 9, 20, BandBelow5th},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BandFor(tt.group, tt.composite)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBandFor_GroupOutOfRange(t *testing.T) {
	_, err := BandFor(0, 10)
	assert.Error(t, err)
	_, err = BandFor(GroupCount+1, 10)
	assert.Error(t, err)
}

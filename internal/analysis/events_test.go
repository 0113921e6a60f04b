package analysis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ctview/pkg/contracts/domain"
)

func secondTimestamps(n int) []time.Time {
	base := time.Date(2023, 5, 12, 10, 30, 0, 0, time.UTC)
	out := make([]time.Time, n)
	for i := range out {
		out[i] = base.Add(time.Duration(i) * time.Second)
	}
	return out
}

func TestExtractIntervals(t *testing.T) {
	stamps := secondTimestamps(6)

	tests := []struct {
		name   string
		values []float64
		want   [][2]int // start and end as indexes into stamps
	}{
		{
			name:   "high at both boundaries",
			values: []float64{1, 1, 0, 0, 1, 1},
			want:   [][2]int{{0, 2}, {4, 5}},
		},
		{
			name:   "single pulse",
			values: []float64{0, 1, 1, 0, 0, 0},
			want:   [][2]int{{1, 3}},
		},
		{
			name:   "always low",
			values: []float64{0, 0, 0, 0, 0, 0},
			want:   nil,
		},
		{
			name:   "always high spans whole series",
			values: []float64{1, 1, 1, 1, 1, 1},
			want:   [][2]int{{0, 5}},
		},
		{
			name:   "one sample wide pulses",
			values: []float64{0, 1, 0, 1, 0, 1},
			want:   [][2]int{{1, 2}, {3, 4}, {5, 5}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractIntervals("TRIP", stamps, tt.values)
			require.Len(t, got, len(tt.want))

			for k, w := range tt.want {
				assert.Equal(t, "TRIP", got[k].Signal)
				assert.Equal(t, stamps[w[0]], got[k].Start, "interval %d start", k)
				assert.Equal(t, stamps[w[1]], got[k].End, "interval %d end", k)
			}
		})
	}
}

func TestExtractIntervals_Ordered(t *testing.T) {
	stamps := secondTimestamps(12)
	values := []float64{0, 1, 0, 0, 1, 1, 0, 1, 1, 1, 0, 1}

	got := ExtractIntervals("BRK", stamps, values)
	require.NotEmpty(t, got)

	for k, iv := range got {
		assert.False(t, iv.End.Before(iv.Start), "interval %d inverted", k)
		if k > 0 {
			assert.True(t, iv.Start.After(got[k-1].End), "interval %d overlaps previous", k)
		}
	}
}

func TestExtractIntervals_Degenerate(t *testing.T) {
	assert.Nil(t, ExtractIntervals("X", nil, nil))
	assert.Nil(t, ExtractIntervals("X", secondTimestamps(2), []float64{0, 1, 0}))

	got := ExtractIntervals("X", secondTimestamps(1), []float64{1})
	require.Len(t, got, 1)
	assert.Equal(t, got[0].Start, got[0].End)
}

func TestExtractIntervals_CopiesNoState(t *testing.T) {
	stamps := secondTimestamps(6)
	values := []float64{1, 1, 0, 0, 1, 1}

	first := ExtractIntervals("TRIP", stamps, values)
	second := ExtractIntervals("TRIP", stamps, values)

	assert.Equal(t, first, second)
}

func TestExtractIntervals_UsesDomainInterval(t *testing.T) {
	stamps := secondTimestamps(3)
	got := ExtractIntervals("52A", stamps, []float64{0, 1, 0})

	require.Len(t, got, 1)
	assert.Equal(t, domain.Interval{Signal: "52A", Start: stamps[1], End: stamps[2]}, got[0])
}

package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEqualSplit(t *testing.T) {
	tests := []struct {
		name          string
		total         int64
		count         int
		wantShare     int64
		wantRemainder int64
		wantErr       error
	}{
		{name: "100 by 3", total: 100, count: 3, wantShare: 33, wantRemainder: 1},
		{name: "90 by 3 no remainder", total: 90, count: 3, wantShare: 30, wantRemainder: 0},
		{name: "1 by 2", total: 1, count: 2, wantShare: 0, wantRemainder: 1},
		{name: "single participant", total: 12345, count: 1, wantShare: 12345, wantRemainder: 0},
		{name: "zero count", total: 100, count: 0, wantErr: ErrInvalidInput},
		{name: "negative count", total: 100, count: -2, wantErr: ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			share, remainder, err := EqualSplit(tt.total, tt.count)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantShare, share)
			assert.Equal(t, tt.wantRemainder, remainder)
			// Remainder convention reconstructs the total exactly.
			assert.Equal(t, tt.total, share*int64(tt.count)+remainder)
		})
	}
}

func TestPercentageSplit(t *testing.T) {
	tests := []struct {
		name        string
		total       int64
		percentages []float64
		want        []int64
		wantErr     error
	}{
		{
			name:        "thirds of 100",
			total:       100,
			percentages: []float64{33.33, 33.33, 33.34},
			want:        []int64{34, 33, 33},
		},
		{
			name:        "50/50",
			total:       1000,
			percentages: []float64{50, 50},
			want:        []int64{500, 500},
		},
		{
			name:        "uneven weights",
			total:       999,
			percentages: []float64{70, 20, 10},
			want:        []int64{700, 199, 99}, // floor(699.3)=699 +1 remainder
		},
		{
			name:        "sum under 100",
			total:       100,
			percentages: []float64{50, 40},
			wantErr:     ErrInvalidSplit,
		},
		{
			name:        "sum over 100",
			total:       100,
			percentages: []float64{60, 50},
			wantErr:     ErrInvalidSplit,
		},
		{
			name:        "within tolerance",
			total:       100,
			percentages: []float64{50.005, 50},
			want:        []int64{50, 50},
		},
		{
			name:        "negative percentage",
			total:       100,
			percentages: []float64{110, -10},
			wantErr:     ErrInvalidInput,
		},
		{
			name:        "empty",
			total:       100,
			percentages: nil,
			wantErr:     ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shares, err := PercentageSplit(tt.total, tt.percentages)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, shares)
			assert.Equal(t, tt.total, sum(shares))
		})
	}
}

func TestCustomSplit(t *testing.T) {
	tests := []struct {
		name    string
		total   int64
		amounts []int64
		wantErr error
	}{
		{name: "exact sum", total: 100, amounts: []int64{40, 30, 30}},
		{name: "over by one", total: 100, amounts: []int64{40, 30, 31}, wantErr: ErrInvalidSplit},
		{name: "under", total: 100, amounts: []int64{40, 30}, wantErr: ErrInvalidSplit},
		{name: "zero share allowed", total: 100, amounts: []int64{100, 0}},
		{name: "negative share", total: 100, amounts: []int64{150, -50}, wantErr: ErrInvalidInput},
		{name: "empty", total: 100, amounts: nil, wantErr: ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shares, err := CustomSplit(tt.total, tt.amounts)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.amounts, shares)
		})
	}
}

func TestFullSplit(t *testing.T) {
	shares, err := FullSplit(100, 3)
	require.NoError(t, err)
	assert.Equal(t, []int64{100, 0, 0}, shares)

	shares, err = FullSplit(55, 1)
	require.NoError(t, err)
	assert.Equal(t, []int64{55}, shares)

	_, err = FullSplit(100, 0)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestComputeShares(t *testing.T) {
	specs := func(n int) []ShareSpec { return make([]ShareSpec, n) }

	t.Run("equal distributes remainder to first", func(t *testing.T) {
		shares, err := ComputeShares("equal", 100, specs(3))
		require.NoError(t, err)
		assert.Equal(t, []int64{34, 33, 33}, shares)
	})

	t.Run("percentage", func(t *testing.T) {
		shares, err := ComputeShares("percentage", 100, []ShareSpec{
			{Percentage: 33.33}, {Percentage: 33.33}, {Percentage: 33.34},
		})
		require.NoError(t, err)
		assert.Equal(t, int64(100), sum(shares))
		assert.Equal(t, []int64{34, 33, 33}, shares)
	})

	t.Run("custom", func(t *testing.T) {
		shares, err := ComputeShares("custom", 100, []ShareSpec{
			{Amount: 60}, {Amount: 40},
		})
		require.NoError(t, err)
		assert.Equal(t, []int64{60, 40}, shares)
	})

	t.Run("full", func(t *testing.T) {
		shares, err := ComputeShares("full", 100, specs(3))
		require.NoError(t, err)
		assert.Equal(t, []int64{100, 0, 0}, shares)
	})

	t.Run("unknown method", func(t *testing.T) {
		_, err := ComputeShares("shares", 100, specs(2))
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("no participants", func(t *testing.T) {
		_, err := ComputeShares("equal", 100, nil)
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}

// Every policy must conserve the total exactly for any input shape.
func TestShareConservation(t *testing.T) {
	totals := []int64{1, 2, 3, 7, 99, 100, 101, 999, 1000, 12345, 999999}
	counts := []int{1, 2, 3, 4, 5, 7, 11}

	for _, total := range totals {
		for _, count := range counts {
			specs := make([]ShareSpec, count)
			for i := range specs {
				specs[i].Percentage = 100 / float64(count)
			}
			// Percentage sums can drift past tolerance for counts that do
			// not divide 100 cleanly; pin the last entry to close the gap.
			var pctSum float64
			for _, s := range specs[:count-1] {
				pctSum += s.Percentage
			}
			specs[count-1].Percentage = 100 - pctSum

			for _, method := range []string{"equal", "percentage", "full"} {
				shares, err := ComputeShares(method, total, specs)
				require.NoError(t, err, "method=%s total=%d count=%d", method, total, count)
				assert.Equal(t, total, sum(shares), "method=%s total=%d count=%d", method, total, count)
				assert.Len(t, shares, count)
			}
		}
	}
}

func sum(values []int64) int64 {
	var s int64
	for _, v := range values {
		s += v
	}
	return s
}

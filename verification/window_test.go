package verification

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitwit/stablepay/types"
)

func TestParseTimeWindow(t *testing.T) {
	valid := map[string]time.Duration{
		"24h":   24 * time.Hour,
		"7d":    7 * 24 * time.Hour,
		"30m":   30 * time.Minute,
		"1h":    time.Hour,
		" 12H ": 12 * time.Hour,
		"2D":    48 * time.Hour,
		"0m":    0,
	}
	for in, want := range valid {
		got, err := ParseTimeWindow(in)
		require.NoError(t, err, "window %q", in)
		assert.Equal(t, want, got, "window %q", in)
	}

	invalid := []string{"24", "h24", "24x", "", "1.5h", "-1h", "24hh", "1w", "99999999999999999999d", "9999999999999d"}
	for _, in := range invalid {
		_, err := ParseTimeWindow(in)
		require.Error(t, err, "window %q", in)
		assert.Equal(t, types.ErrInvalidTimeWindow, types.ErrorCode(err), "window %q", in)
	}
}

func TestEstimateBlocks(t *testing.T) {
	assert.Equal(t, uint64(1800), EstimateBlocks(time.Hour, 2.0))
	assert.Equal(t, uint64(300), EstimateBlocks(time.Hour, 12.0))
	assert.Equal(t, uint64(345600), EstimateBlocks(24*time.Hour, 0.25))
	assert.Equal(t, uint64(1), EstimateBlocks(100*time.Millisecond, 2.0))
	assert.Equal(t, uint64(1), EstimateBlocks(0, 2.0))
	assert.Equal(t, uint64(1), EstimateBlocks(time.Hour, 0))
}

func u64(v uint64) *uint64 { return &v }

func TestResolveBlockRange(t *testing.T) {
	tests := []struct {
		name     string
		window   string
		from, to *uint64
		tip      uint64
		want     types.BlockRange
		wantCode string
	}{
		{name: "window", window: "1h", tip: 1_000_000, want: types.BlockRange{From: 998_200, To: 1_000_000}},
		{name: "window before genesis", window: "24h", tip: 100, want: types.BlockRange{From: 0, To: 100}},
		{name: "explicit from", from: u64(999_000), tip: 1_000_000, want: types.BlockRange{From: 999_000, To: 1_000_000}},
		{name: "explicit bounds", from: u64(10), to: u64(20), tip: 1_000_000, want: types.BlockRange{From: 10, To: 20}},
		{name: "from overrides window", window: "bogus", from: u64(5), tip: 50, want: types.BlockRange{From: 5, To: 50}},
		{name: "at ceiling", from: u64(0), to: u64(MaxBlockRange), tip: 1_000_000, want: types.BlockRange{From: 0, To: MaxBlockRange}},
		{name: "too large", from: u64(0), tip: 200_000, wantCode: types.ErrRangeTooLarge},
		{name: "window too large", window: "7d", tip: 10_000_000, wantCode: types.ErrRangeTooLarge},
		{name: "inverted", from: u64(50), to: u64(10), tip: 100, wantCode: types.ErrInvalidInput},
		{name: "bad window", window: "24", tip: 100, wantCode: types.ErrInvalidTimeWindow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := types.NewVerifyRequest(testReceiver, 1)
			req.TimeWindow = tt.window
			req.FromBlock = tt.from
			req.ToBlock = tt.to

			got, err := ResolveBlockRange(req, 2.0, tt.tip)
			if tt.wantCode != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, types.ErrorCode(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveBlockRangeMessageCarriesRange(t *testing.T) {
	req := types.NewVerifyRequest(testReceiver, 1)
	req.FromBlock = u64(1)

	_, err := ResolveBlockRange(req, 2.0, 300_002)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "300001 blocks")
	assert.Contains(t, err.Error(), "1 to 300002")
}

package verification

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitwit/stablepay/types"
)

func TestNormalizeRequest(t *testing.T) {
	req := types.VerifyRequest{
		Address:          " 0x742d35Cc6634C0532925a3b844Bc454e4438f44e ",
		Amount:           10,
		Token:            "usdc",
		Chain:            " Polygon",
		Sender:           "0xABCDEFabcdefABCDEFabcdefABCDEFabcdefABCD",
		MinConfirmations: 3,
		Tolerance:        0,
	}

	got, err := NormalizeRequest(req)
	require.NoError(t, err)
	assert.Equal(t, testReceiver, got.Address)
	assert.Equal(t, "0xabcdefabcdefabcdefabcdefabcdefabcdefabcd", got.Sender)
	assert.Equal(t, "USDC", got.Token)
	assert.Equal(t, "polygon", got.Chain)
	assert.Equal(t, types.DefaultTimeWindow, got.TimeWindow)
	assert.Equal(t, uint64(3), got.MinConfirmations)

	// the input is left untouched
	assert.Equal(t, "usdc", req.Token)

	again, err := NormalizeRequest(got)
	require.NoError(t, err)
	assert.Equal(t, got, again)
}

func TestNormalizeRequestExplicitBlocks(t *testing.T) {
	req := types.NewVerifyRequest(testReceiver, 1)
	req.TimeWindow = ""
	req.FromBlock = u64(10)

	got, err := NormalizeRequest(req)
	require.NoError(t, err)
	assert.Empty(t, got.TimeWindow)

	req.ToBlock = u64(5)
	_, err = NormalizeRequest(req)
	require.Error(t, err)
	assert.Equal(t, types.ErrInvalidInput, types.ErrorCode(err))
	assert.Contains(t, err.Error(), "from block 10")
}

func TestNormalizeRequestRejects(t *testing.T) {
	tests := map[string]func(*types.VerifyRequest){
		"missing address": func(r *types.VerifyRequest) { r.Address = "" },
		"no prefix":       func(r *types.VerifyRequest) { r.Address = "742d35cc6634c0532925a3b844bc454e4438f44e" },
		"negative amount": func(r *types.VerifyRequest) { r.Amount = -1 },
		"nan amount":      func(r *types.VerifyRequest) { r.Amount = math.NaN() },
		"inf amount":      func(r *types.VerifyRequest) { r.Amount = math.Inf(1) },
		"tolerance":       func(r *types.VerifyRequest) { r.Tolerance = -0.1 },
		"rpc":             func(r *types.VerifyRequest) { r.RPC = "not a url" },
		"empty token":     func(r *types.VerifyRequest) { r.Token = "  " },
	}

	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			req := types.NewVerifyRequest(testReceiver, 1)
			mutate(&req)
			_, err := NormalizeRequest(req)
			require.Error(t, err)
			assert.Equal(t, types.ErrInvalidInput, types.ErrorCode(err))
		})
	}
}

package stablepay

import (
	"context"
	"math/big"
	"testing"
	"time"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitwit/stablepay/clients"
	"github.com/vitwit/stablepay/config"
	"github.com/vitwit/stablepay/types"
	"github.com/vitwit/stablepay/verification"
)

const receiver = "0x742d35cc6634c0532925a3b844bc454e4438f44e"

// stubLedger returns one confirmed 100 USDC transfer on base
type stubLedger struct{}

func (stubLedger) TipBlock(context.Context) (uint64, error) { return 2000, nil }

func (stubLedger) TransferLogs(_ context.Context, q ethereum.FilterQuery) ([]ethtypes.Log, error) {
	return []ethtypes.Log{{
		Address:     q.Addresses[0],
		Topics:      []common.Hash{verification.TransferEventSignature, common.HexToHash("0x01"), q.Topics[2][0]},
		Data:        common.LeftPadBytes(big.NewInt(100_000_000).Bytes(), 32),
		BlockNumber: 1500,
		TxHash:      common.HexToHash("0xabc"),
	}}, nil
}

func (stubLedger) TransactionStatus(context.Context, common.Hash) (uint64, error) { return 1, nil }
func (stubLedger) BlockTimestamp(context.Context, uint64) (uint64, error)         { return 1_700_000_000, nil }
func (stubLedger) Close()                                                         {}

func recordingFactory(urls *[]string) clients.Factory {
	return func(_ context.Context, cfg clients.Config) (clients.Ledger, error) {
		*urls = append(*urls, cfg.RPCURL)
		return stubLedger{}, nil
	}
}

func TestVerifier(t *testing.T) {
	var urls []string
	v := New(
		WithLedgerFactory(recordingFactory(&urls)),
		WithTimeout(time.Second),
		WithRPC("Base", "https://base.example"),
	)

	req := types.NewVerifyRequest(receiver, 100)
	req.Chain = "base"

	res, err := v.Verify(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, types.StatusPaid, res.Status)
	assert.Equal(t, "base", res.Chain)
	assert.Equal(t, uint64(500), res.Confirmations)
	assert.Equal(t, []string{"https://base.example"}, urls)
}

func TestBatchVerify(t *testing.T) {
	var urls []string
	v := New(WithLedgerFactory(recordingFactory(&urls)), WithWorkers(1))

	ok := types.NewVerifyRequest(receiver, 100)
	bad := types.NewVerifyRequest(receiver, 100)
	bad.Chain = "tron"
	short := types.NewVerifyRequest(receiver, 500)

	out := v.BatchVerify(context.Background(), []types.VerifyRequest{ok, bad, short})
	require.Len(t, out, 3)

	require.NoError(t, out[0].Err)
	assert.Equal(t, types.StatusPaid, out[0].Result.Status)

	assert.Equal(t, types.ErrUnsupportedChain, types.ErrorCode(out[1].Err))
	assert.Nil(t, out[1].Result)

	require.NoError(t, out[2].Err)
	assert.Equal(t, types.StatusPartial, out[2].Result.Status)
}

func TestNewFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.RPC["polygon"] = "https://polygon.example"
	cfg.Chains = []types.ChainConfig{{
		Key:        "sepolia",
		Name:       "Sepolia",
		ChainID:    11155111,
		DefaultRPC: "https://sepolia.example",
		BlockTime:  12,
	}}
	cfg.Tokens = map[string][]types.TokenConfig{
		"sepolia": {{Symbol: "USDC", Address: "0x1c7D4B196Cb0C7B01d743Fbc6116a902379C7238", Decimals: 6}},
	}

	var urls []string
	v, err := NewFromConfig(cfg, WithLedgerFactory(recordingFactory(&urls)))
	require.NoError(t, err)

	var keys []string
	for _, c := range v.SupportedChains() {
		keys = append(keys, c.Key)
	}
	assert.Equal(t, []string{"polygon", "ethereum", "arbitrum", "base", "optimism", "sepolia"}, keys)

	_, err = v.Verify(context.Background(), types.NewVerifyRequest(receiver, 1))
	require.NoError(t, err)

	req := types.NewVerifyRequest(receiver, 1)
	req.Chain = "sepolia"
	_, err = v.Verify(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, []string{"https://polygon.example", "https://sepolia.example"}, urls)
}

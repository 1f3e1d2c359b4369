package types

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewVerifyRequestDefaults(t *testing.T) {
	req := NewVerifyRequest("0x742d35cc6634c0532925a3b844bc454e4438f44e", 100)

	assert.Equal(t, DefaultToken, req.Token)
	assert.Equal(t, DefaultChain, req.Chain)
	assert.Equal(t, DefaultTimeWindow, req.TimeWindow)
	assert.Equal(t, uint64(DefaultMinConfirmations), req.MinConfirmations)
	assert.InDelta(t, DefaultTolerance, req.Tolerance, 1e-12)
	assert.Nil(t, req.FromBlock)
	assert.InDelta(t, 99.0, req.MinAcceptable(), 1e-9)
}

func TestPaymentResultDerivedFields(t *testing.T) {
	tests := []struct {
		name      string
		result    PaymentResult
		shortfall float64
		paid      bool
	}{
		{"paid in full", PaymentResult{Status: StatusPaid, ExpectedAmount: 100, MatchedAmount: 100}, 0, true},
		{"overpaid", PaymentResult{Status: StatusPaid, ExpectedAmount: 100, MatchedAmount: 150}, 0, true},
		{"partial", PaymentResult{Status: StatusPartial, ExpectedAmount: 100, MatchedAmount: 40}, 60, false},
		{"nothing", PaymentResult{Status: StatusNotPaid, ExpectedAmount: 25}, 25, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.shortfall, tt.result.Shortfall(), 1e-9)
			assert.Equal(t, tt.paid, tt.result.IsPaid())
		})
	}
}

func TestChainTxURL(t *testing.T) {
	c := ChainConfig{ExplorerURL: "https://polygonscan.com/"}
	assert.Equal(t, "https://polygonscan.com/tx/0xabc", c.TxURL("0xabc"))
	assert.Empty(t, ChainConfig{}.TxURL("0xabc"))
	assert.Empty(t, c.TxURL(""))
}

func TestBlockRangeSize(t *testing.T) {
	assert.Equal(t, uint64(100), BlockRange{From: 10, To: 110}.Size())
	assert.Equal(t, uint64(0), BlockRange{From: 10, To: 10}.Size())
	assert.Equal(t, uint64(0), BlockRange{From: 20, To: 10}.Size())
}

func TestVerifyError(t *testing.T) {
	cause := context.DeadlineExceeded
	err := WrapError(ErrRPCQuery, cause, "failed to get current block number")
	wrapped := fmt.Errorf("verify: %w", err)

	assert.Equal(t, ErrRPCQuery, ErrorCode(wrapped))
	assert.True(t, errors.Is(wrapped, context.DeadlineExceeded))
	assert.True(t, errors.Is(wrapped, &VerifyError{Code: ErrRPCQuery}))
	assert.False(t, errors.Is(wrapped, &VerifyError{Code: ErrRateLimited}))
	assert.True(t, IsRPCError(wrapped))
	assert.False(t, IsInputError(wrapped))
	assert.Contains(t, err.Error(), "context deadline exceeded")

	plain := NewError(ErrInvalidTimeWindow, "invalid time window %q", "24x")
	assert.Equal(t, `invalid time window "24x"`, plain.Error())
	assert.True(t, IsInputError(plain))

	require.Equal(t, ErrUnknown, ErrorCode(errors.New("boom")))
}

package types

import (
	"math"
	"math/big"
	"strings"
	"time"
)

// PaymentStatus represents the verdict of a payment verification
type PaymentStatus string

const (
	StatusPaid    PaymentStatus = "PAID"
	StatusNotPaid PaymentStatus = "NOT_PAID"
	StatusPartial PaymentStatus = "PARTIAL"
	StatusPending PaymentStatus = "PENDING"
)

func (s PaymentStatus) String() string {
	return string(s)
}

// Request defaults
const (
	DefaultToken            = "USDC"
	DefaultChain            = "polygon"
	DefaultTimeWindow       = "24h"
	DefaultMinConfirmations = 12
	DefaultTolerance        = 0.01
)

// ChainConfig describes a supported EVM network
type ChainConfig struct {
	// Key is the lowercase identifier used for lookups (e.g. "polygon").
	Key string `json:"key" toml:"key" yaml:"key" validate:"required"`

	// Name is the human readable network name.
	Name string `json:"name" toml:"name" yaml:"name" validate:"required"`

	ChainID    uint64 `json:"chainId" toml:"chain_id" yaml:"chain_id" validate:"required"`
	DefaultRPC string `json:"defaultRpc" toml:"rpc" yaml:"rpc" validate:"required,url"`

	// BlockTime is the average block time in seconds.
	BlockTime float64 `json:"blockTime" toml:"block_time" yaml:"block_time" validate:"gt=0"`

	ExplorerURL string `json:"explorerUrl,omitempty" toml:"explorer" yaml:"explorer" validate:"omitempty,url"`
}

// TxURL returns the explorer link of a transaction, or "" when the chain
// has no explorer configured.
func (c ChainConfig) TxURL(txHash string) string {
	if c.ExplorerURL == "" || txHash == "" {
		return ""
	}
	return strings.TrimRight(c.ExplorerURL, "/") + "/tx/" + txHash
}

// TokenConfig describes an ERC-20 token deployed on a chain
type TokenConfig struct {
	Symbol   string `json:"symbol" toml:"symbol" yaml:"symbol" validate:"required"`
	Name     string `json:"name" toml:"name" yaml:"name"`
	Address  string `json:"address" toml:"address" yaml:"address" validate:"required,eth_addr"`
	Decimals int    `json:"decimals" toml:"decimals" yaml:"decimals" validate:"gte=0,lte=36"`
}

// VerifyRequest describes the payment a caller expects to have received.
// A request is never mutated once built; normalization returns a copy.
type VerifyRequest struct {
	// Receiver wallet address.
	Address string `json:"address" validate:"required,eth_addr"`

	// Expected payment amount in token units (not smallest units).
	Amount float64 `json:"amount" validate:"gt=0"`

	Token string `json:"token" validate:"required"`
	Chain string `json:"chain" validate:"required"`

	// RPC overrides the chain's default endpoint when set.
	RPC string `json:"rpc,omitempty" validate:"omitempty,url"`

	// Sender restricts matching transfers to a single payer when set.
	Sender string `json:"sender,omitempty" validate:"omitempty,eth_addr"`

	// TimeWindow is a relative window such as "1h", "24h" or "7d".
	// Ignored when FromBlock is set.
	TimeWindow string `json:"timeWindow,omitempty"`

	FromBlock *uint64 `json:"fromBlock,omitempty"`
	ToBlock   *uint64 `json:"toBlock,omitempty"`

	MinConfirmations uint64  `json:"minConfirmations"`
	Tolerance        float64 `json:"tolerance" validate:"gte=0,lte=1"`
}

// NewVerifyRequest returns a request for the given receiver and amount with
// every other field set to its default.
func NewVerifyRequest(address string, amount float64) VerifyRequest {
	return VerifyRequest{
		Address:          address,
		Amount:           amount,
		Token:            DefaultToken,
		Chain:            DefaultChain,
		TimeWindow:       DefaultTimeWindow,
		MinConfirmations: DefaultMinConfirmations,
		Tolerance:        DefaultTolerance,
	}
}

// MinAcceptable is the lowest confirmed amount accepted as full payment
func (r VerifyRequest) MinAcceptable() float64 {
	return r.Amount * (1 - r.Tolerance)
}

// Transfer is a single decoded ERC-20 Transfer event addressed to the receiver
type Transfer struct {
	TxHash      string     `json:"txHash"`
	BlockNumber uint64     `json:"blockNumber"`
	LogIndex    uint       `json:"logIndex"`
	Sender      string     `json:"sender"`
	Receiver    string     `json:"receiver"`
	Amount      float64    `json:"amount"`
	RawAmount   *big.Int   `json:"rawAmount"`
	Timestamp   *time.Time `json:"timestamp,omitempty"`

	// Confirmations is relative to the tip observed when the transfer
	// was decoded and is never updated afterwards.
	Confirmations uint64 `json:"confirmations"`
	Confirmed     bool   `json:"confirmed"`
}

// BlockRange is an inclusive block interval
type BlockRange struct {
	From uint64 `json:"from"`
	To   uint64 `json:"to"`
}

// Size returns the distance between both bounds
func (b BlockRange) Size() uint64 {
	if b.To < b.From {
		return 0
	}
	return b.To - b.From
}

// PaymentResult is the terminal output of one verification
type PaymentResult struct {
	Status         PaymentStatus `json:"status"`
	ExpectedAmount float64       `json:"expectedAmount"`
	MatchedAmount  float64       `json:"matchedAmount"`
	PendingAmount  float64       `json:"pendingAmount"`

	// Representative confirmed transfer (latest block), if any.
	TxHash        string     `json:"txHash,omitempty"`
	BlockNumber   *uint64    `json:"blockNumber,omitempty"`
	Timestamp     *time.Time `json:"timestamp,omitempty"`
	Confirmations uint64     `json:"confirmations"`
	Sender        string     `json:"sender,omitempty"`

	Receiver string `json:"receiver"`
	Token    string `json:"token"`
	Chain    string `json:"chain"`

	Range    BlockRange `json:"range"`
	TipBlock uint64     `json:"tipBlock"`

	Transfers []Transfer `json:"transfers"`
	Error     string     `json:"error,omitempty"`
}

// IsPaid reports whether the payment was verified
func (r *PaymentResult) IsPaid() bool {
	return r.Status == StatusPaid
}

// Shortfall is the amount still missing to reach the expected amount
func (r *PaymentResult) Shortfall() float64 {
	return math.Max(0, r.ExpectedAmount-r.MatchedAmount)
}

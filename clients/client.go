package clients

import (
	"context"
	"time"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"

	"github.com/vitwit/stablepay/logger"
)

// Ledger is the read-only view of an EVM node needed to verify payments
type Ledger interface {
	// TipBlock returns the latest block number.
	TipBlock(ctx context.Context) (uint64, error)

	// TransferLogs returns the event logs matching q.
	TransferLogs(ctx context.Context, q ethereum.FilterQuery) ([]ethtypes.Log, error)

	// TransactionStatus returns the receipt status of a transaction,
	// 1 for success. A missing receipt is reported as ethereum.NotFound.
	TransactionStatus(ctx context.Context, txHash common.Hash) (uint64, error)

	// BlockTimestamp returns the unix timestamp of a block.
	BlockTimestamp(ctx context.Context, number uint64) (uint64, error)

	Close()
}

// Config describes how to reach a node
type Config struct {
	RPCURL string

	// ChainID is the chain id the endpoint is expected to serve. Zero
	// skips the check.
	ChainID uint64

	// RequestsPerSecond throttles outgoing requests when positive.
	RequestsPerSecond float64

	Logger logger.Logger
}

// Factory opens a Ledger. The context bounds the connection attempt only.
type Factory func(ctx context.Context, cfg Config) (Ledger, error)

// DialTimeout is used when callers do not bound the connection attempt
const DialTimeout = 30 * time.Second

// DefaultFactory dials an EVMClient
func DefaultFactory(ctx context.Context, cfg Config) (Ledger, error) {
	return DialEVM(ctx, cfg)
}

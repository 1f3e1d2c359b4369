package clients

import (
	"context"
	"fmt"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"golang.org/x/time/rate"

	"github.com/vitwit/stablepay/logger"
)

var _ Ledger = (*EVMClient)(nil)

// EVMClient talks to an EVM JSON-RPC endpoint
type EVMClient struct {
	rpc     *rpc.Client
	client  *ethclient.Client
	limiter *rate.Limiter
	log     logger.Logger
}

// DialEVM connects to cfg.RPCURL and checks that the endpoint answers
// eth_chainId. A chain id different from cfg.ChainID is logged, not
// rejected.
func DialEVM(ctx context.Context, cfg Config) (*EVMClient, error) {
	log := cfg.Logger
	if log == nil {
		log = logger.NoopLogger{}
	}

	rc, err := rpc.DialContext(ctx, cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.RPCURL, err)
	}

	c := &EVMClient{
		rpc:    rc,
		client: ethclient.NewClient(rc),
		log:    log,
	}
	if cfg.RequestsPerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}

	chainID, err := c.ChainID(ctx)
	if err != nil {
		rc.Close()
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.RPCURL, err)
	}
	if cfg.ChainID != 0 && chainID != cfg.ChainID {
		log.Warn("rpc endpoint serves an unexpected chain", map[string]any{
			"rpc":      cfg.RPCURL,
			"expected": cfg.ChainID,
			"actual":   chainID,
		})
	}

	return c, nil
}

// ChainID returns the chain id reported by the endpoint
func (c *EVMClient) ChainID(ctx context.Context) (uint64, error) {
	if err := c.wait(ctx); err != nil {
		return 0, err
	}
	id, err := c.client.ChainID(ctx)
	if err != nil {
		return 0, err
	}
	return id.Uint64(), nil
}

func (c *EVMClient) TipBlock(ctx context.Context) (uint64, error) {
	if err := c.wait(ctx); err != nil {
		return 0, err
	}
	return c.client.BlockNumber(ctx)
}

func (c *EVMClient) TransferLogs(ctx context.Context, q ethereum.FilterQuery) ([]ethtypes.Log, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	return c.client.FilterLogs(ctx, q)
}

// TransactionStatus only decodes the status field of the receipt so that
// receipts carrying chain specific fields are accepted.
func (c *EVMClient) TransactionStatus(ctx context.Context, txHash common.Hash) (uint64, error) {
	if err := c.wait(ctx); err != nil {
		return 0, err
	}

	var receipt *struct {
		Status hexutil.Uint64 `json:"status"`
	}
	if err := c.rpc.CallContext(ctx, &receipt, "eth_getTransactionReceipt", txHash); err != nil {
		return 0, err
	}
	if receipt == nil {
		return 0, ethereum.NotFound
	}
	return uint64(receipt.Status), nil
}

// BlockTimestamp fetches the block header without transactions and reads
// its timestamp.
func (c *EVMClient) BlockTimestamp(ctx context.Context, number uint64) (uint64, error) {
	if err := c.wait(ctx); err != nil {
		return 0, err
	}

	var block *struct {
		Timestamp hexutil.Uint64 `json:"timestamp"`
	}
	if err := c.rpc.CallContext(ctx, &block, "eth_getBlockByNumber", hexutil.EncodeUint64(number), false); err != nil {
		return 0, err
	}
	if block == nil {
		return 0, ethereum.NotFound
	}
	return uint64(block.Timestamp), nil
}

func (c *EVMClient) Close() {
	c.rpc.Close()
}

func (c *EVMClient) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	return c.limiter.Wait(ctx)
}

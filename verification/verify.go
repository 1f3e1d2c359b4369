// Package verification resolves a payment request against on-chain
// ERC-20 Transfer events and classifies the evidence.
package verification

import (
	"context"
	"math/big"
	"sort"
	"strings"
	"time"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/google/uuid"

	"github.com/vitwit/stablepay/chains"
	"github.com/vitwit/stablepay/clients"
	"github.com/vitwit/stablepay/logger"
	"github.com/vitwit/stablepay/metrics"
	"github.com/vitwit/stablepay/types"
)

const (
	DefaultTimeout = 30 * time.Second
	DefaultWorkers = 4
)

// Config wires a Service. Zero values fall back to defaults.
type Config struct {
	Registry *chains.Registry
	Dial     clients.Factory
	Logger   logger.Logger
	Metrics  metrics.Recorder

	// Timeout bounds every single call to the node.
	Timeout time.Duration

	// Workers bounds concurrent receipt and timestamp lookups.
	Workers int

	// RPCOverrides maps chain keys to endpoints used instead of the
	// chain default. A request's own RPC still wins.
	RPCOverrides map[string]string

	RequestsPerSecond float64
}

// Service verifies payments. It holds no per-request state and is safe
// for concurrent use.
type Service struct {
	registry     *chains.Registry
	dial         clients.Factory
	log          logger.Logger
	metrics      metrics.Recorder
	timeout      time.Duration
	workers      int
	rpcOverrides map[string]string
	rps          float64
}

func NewService(cfg Config) *Service {
	s := &Service{
		registry:     cfg.Registry,
		dial:         cfg.Dial,
		log:          cfg.Logger,
		metrics:      cfg.Metrics,
		timeout:      cfg.Timeout,
		workers:      cfg.Workers,
		rpcOverrides: make(map[string]string, len(cfg.RPCOverrides)),
		rps:          cfg.RequestsPerSecond,
	}
	if s.registry == nil {
		s.registry = chains.Default()
	}
	if s.dial == nil {
		s.dial = clients.DefaultFactory
	}
	if s.log == nil {
		s.log = logger.NoopLogger{}
	}
	if s.metrics == nil {
		s.metrics = metrics.NoopRecorder{}
	}
	if s.timeout <= 0 {
		s.timeout = DefaultTimeout
	}
	if s.workers <= 0 {
		s.workers = DefaultWorkers
	}
	for k, v := range cfg.RPCOverrides {
		s.rpcOverrides[strings.ToLower(strings.TrimSpace(k))] = v
	}
	return s
}

// Registry returns the chain and token table the service resolves against
func (s *Service) Registry() *chains.Registry {
	return s.registry
}

// Verify checks whether the payment described by req was received. Any
// returned error is a *types.VerifyError; on error no result is returned.
func (s *Service) Verify(ctx context.Context, req types.VerifyRequest) (*types.PaymentResult, error) {
	start := time.Now()
	log := logger.With(s.log, map[string]any{"request_id": uuid.NewString()})

	res, err := s.verify(ctx, log, req)

	chain := s.chainLabel(req.Chain)
	if err != nil {
		s.metrics.IncCounter(metrics.VerificationErrors, map[string]string{"chain": chain, "outcome": types.ErrorCode(err)})
		log.Error("verification failed", map[string]any{
			"chain": chain,
			"code":  types.ErrorCode(err),
			"error": err.Error(),
		})
		return nil, err
	}

	s.metrics.IncCounter(metrics.Verifications, map[string]string{"chain": chain, "outcome": res.Status.String()})
	s.metrics.ObserveLatency(metrics.VerifyLatency, time.Since(start), map[string]string{"chain": chain})
	log.Info("verification complete", map[string]any{
		"chain":     res.Chain,
		"token":     res.Token,
		"status":    res.Status.String(),
		"matched":   res.MatchedAmount,
		"pending":   res.PendingAmount,
		"transfers": len(res.Transfers),
		"duration":  time.Since(start).String(),
	})
	return res, nil
}

func (s *Service) verify(ctx context.Context, log logger.Logger, req types.VerifyRequest) (*types.PaymentResult, error) {
	req, err := NormalizeRequest(req)
	if err != nil {
		return nil, err
	}

	chain, ok := s.registry.Chain(req.Chain)
	if !ok {
		return nil, types.NewError(types.ErrUnsupportedChain,
			"chain %q is not supported; supported chains: %s", req.Chain, strings.Join(s.registry.Chains(), ", "))
	}
	token, ok := s.registry.Token(chain.Key, req.Token)
	if !ok {
		return nil, types.NewError(types.ErrUnsupportedToken,
			"token %q is not supported on %s; supported tokens: %s",
			req.Token, chain.Key, strings.Join(s.registry.Tokens(chain.Key), ", "))
	}

	rpcURL := s.endpoint(req, chain)
	fields := map[string]any{
		"chain":    chain.Key,
		"token":    token.Symbol,
		"receiver": req.Address,
	}
	log.Debug("verifying payment", fields)

	dialCtx, cancel := context.WithTimeout(ctx, s.timeout)
	ledger, err := s.dial(dialCtx, clients.Config{
		RPCURL:            rpcURL,
		ChainID:           chain.ChainID,
		RequestsPerSecond: s.rps,
		Logger:            log,
	})
	cancel()
	if err != nil {
		return nil, types.WrapError(types.ErrRPCConnection, err, "failed to connect to RPC endpoint %s for %s", rpcURL, chain.Key)
	}
	defer ledger.Close()

	rpcStart := time.Now()
	tip, err := withTimeout(ctx, s.timeout, ledger.TipBlock)
	if err != nil {
		return nil, types.WrapError(types.ErrRPCQuery, err, "failed to get current block number on %s", chain.Key)
	}
	s.metrics.ObserveLatency(metrics.RPCLatency, time.Since(rpcStart), map[string]string{"chain": chain.Key})

	rng, err := ResolveBlockRange(req, chain.BlockTime, tip)
	if err != nil {
		return nil, err
	}
	fields["from_block"], fields["to_block"], fields["tip"] = rng.From, rng.To, tip

	q := transferQuery(token, req, rng)
	logs, err := withTimeout(ctx, s.timeout, func(ctx context.Context) ([]ethtypes.Log, error) {
		return ledger.TransferLogs(ctx, q)
	})
	if err != nil {
		if ctx.Err() == nil && clients.IsRateLimited(err) {
			return nil, types.WrapError(types.ErrRateLimited, err,
				"RPC rate limit exceeded on %s; try again later or use a custom RPC endpoint", chain.Key)
		}
		return nil, types.WrapError(types.ErrRPCQuery, err,
			"failed to fetch transfer events for blocks %d-%d on %s", rng.From, rng.To, chain.Key)
	}
	fields["logs"] = len(logs)
	log.Debug("fetched transfer logs", fields)

	outcomes, err := s.resolve(ctx, ledger, logs, q, token, req.MinConfirmations, tip)
	if err != nil {
		return nil, types.WrapError(types.ErrRPCQuery, err,
			"verification aborted while checking transfers on %s", chain.Key)
	}

	t := fold(outcomes)
	for _, o := range outcomes {
		if o.kind == discarded {
			s.metrics.IncCounter(metrics.TransfersDiscarded, map[string]string{"chain": chain.Key, "outcome": o.reason})
			log.Debug("discarded transfer", map[string]any{
				"tx":     o.transfer.TxHash,
				"reason": o.reason,
			})
		}
	}

	res := &types.PaymentResult{
		Status:         Classify(t.confirmed, t.pending, req.MinAcceptable()),
		ExpectedAmount: req.Amount,
		MatchedAmount:  t.confirmed,
		PendingAmount:  t.pending,
		Receiver:       req.Address,
		Token:          token.Symbol,
		Chain:          chain.Key,
		Range:          rng,
		TipBlock:       tip,
		Transfers:      t.transfers,
	}
	if rep := t.representative; rep != nil {
		block := rep.BlockNumber
		res.TxHash = rep.TxHash
		res.BlockNumber = &block
		res.Timestamp = rep.Timestamp
		res.Confirmations = rep.Confirmations
		res.Sender = rep.Sender
	}
	return res, nil
}

// Classify turns confirmed and pending totals into a status. Confirmed
// value always takes priority over pending value.
func Classify(confirmed, pending, minAcceptable float64) types.PaymentStatus {
	switch {
	case confirmed >= minAcceptable:
		return types.StatusPaid
	case confirmed > 0:
		return types.StatusPartial
	case pending >= minAcceptable:
		return types.StatusPending
	default:
		return types.StatusNotPaid
	}
}

func (s *Service) endpoint(req types.VerifyRequest, chain types.ChainConfig) string {
	if req.RPC != "" {
		return req.RPC
	}
	if url := s.rpcOverrides[chain.Key]; url != "" {
		return url
	}
	return chain.DefaultRPC
}

func (s *Service) chainLabel(name string) string {
	if c, ok := s.registry.Chain(name); ok {
		return c.Key
	}
	return "unknown"
}

func transferQuery(token types.TokenConfig, req types.VerifyRequest, rng types.BlockRange) ethereum.FilterQuery {
	var senders []common.Hash
	if req.Sender != "" {
		senders = []common.Hash{addressTopic(req.Sender)}
	}
	return ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(rng.From),
		ToBlock:   new(big.Int).SetUint64(rng.To),
		Addresses: []common.Address{common.HexToAddress(token.Address)},
		Topics: [][]common.Hash{
			{TransferEventSignature},
			senders,
			{addressTopic(req.Address)},
		},
	}
}

func withTimeout[T any](ctx context.Context, d time.Duration, fn func(context.Context) (T, error)) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()
	return fn(ctx)
}

// sortLogs returns a copy of logs ordered by block number, then log index
func sortLogs(logs []ethtypes.Log) []ethtypes.Log {
	out := append([]ethtypes.Log(nil), logs...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].BlockNumber != out[j].BlockNumber {
			return out[i].BlockNumber < out[j].BlockNumber
		}
		return out[i].Index < out[j].Index
	})
	return out
}

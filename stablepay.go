// Package stablepay verifies that a stablecoin payment of at least a given
// amount reached an address on an EVM chain, with enough confirmations to
// be trusted.
package stablepay

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vitwit/stablepay/chains"
	"github.com/vitwit/stablepay/clients"
	"github.com/vitwit/stablepay/config"
	"github.com/vitwit/stablepay/logger"
	"github.com/vitwit/stablepay/metrics"
	"github.com/vitwit/stablepay/types"
	"github.com/vitwit/stablepay/verification"
)

// Version of the library and CLI
const Version = "1.0.0"

// Verifier is the entry point of the library
type Verifier struct {
	service *verification.Service

	registry *chains.Registry
	dial     clients.Factory
	logger   logger.Logger
	metrics  metrics.Recorder
	timeout  time.Duration
	workers  int
	rpc      map[string]string
	rps      float64
}

// New creates a Verifier over the built-in chains and tokens
func New(opts ...Option) *Verifier {
	v := &Verifier{
		registry: chains.Default(),
		dial:     clients.DefaultFactory,
		logger:   logger.NoopLogger{},
		metrics:  metrics.NoopRecorder{},
		timeout:  verification.DefaultTimeout,
		workers:  verification.DefaultWorkers,
		rpc:      map[string]string{},
	}
	for _, opt := range opts {
		opt(v)
	}

	v.service = verification.NewService(verification.Config{
		Registry:          v.registry,
		Dial:              v.dial,
		Logger:            v.logger,
		Metrics:           v.metrics,
		Timeout:           v.timeout,
		Workers:           v.workers,
		RPCOverrides:      v.rpc,
		RequestsPerSecond: v.rps,
	})
	return v
}

// NewFromConfig creates a Verifier from a loaded configuration. Options
// are applied after the configuration and take precedence.
func NewFromConfig(cfg *config.Config, opts ...Option) (*Verifier, error) {
	reg, err := cfg.Registry(chains.Default())
	if err != nil {
		return nil, err
	}

	base := []Option{
		WithRegistry(reg),
		WithRequestsPerSecond(cfg.RequestsPerSecond),
	}
	if t := cfg.Timeout(); t > 0 {
		base = append(base, WithTimeout(t))
	}
	if cfg.Workers > 0 {
		base = append(base, WithWorkers(cfg.Workers))
	}
	for chain, url := range cfg.RPC {
		base = append(base, WithRPC(chain, url))
	}

	return New(append(base, opts...)...), nil
}

// Verify runs a single verification. Errors are *types.VerifyError.
func (v *Verifier) Verify(ctx context.Context, req types.VerifyRequest) (*types.PaymentResult, error) {
	return v.service.Verify(ctx, req)
}

// BatchResult pairs the outcome of one request of a batch with its error
type BatchResult struct {
	Result *types.PaymentResult
	Err    error
}

// BatchVerify verifies independent requests concurrently. Results are in
// request order; a failing request does not affect the others.
func (v *Verifier) BatchVerify(ctx context.Context, reqs []types.VerifyRequest) []BatchResult {
	out := make([]BatchResult, len(reqs))

	limit := v.workers
	if limit <= 0 {
		limit = verification.DefaultWorkers
	}

	var g errgroup.Group
	g.SetLimit(limit)
	for i, req := range reqs {
		g.Go(func() error {
			res, err := v.service.Verify(ctx, req)
			out[i] = BatchResult{Result: res, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	return out
}

// Registry returns the chains and tokens this Verifier accepts
func (v *Verifier) Registry() *chains.Registry {
	return v.service.Registry()
}

// SupportedChains lists the configured chains in registry order
func (v *Verifier) SupportedChains() []types.ChainConfig {
	reg := v.Registry()
	keys := reg.Chains()
	out := make([]types.ChainConfig, 0, len(keys))
	for _, k := range keys {
		if c, ok := reg.Chain(k); ok {
			out = append(out, c)
		}
	}
	return out
}

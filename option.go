package stablepay

import (
	"strings"
	"time"

	"github.com/vitwit/stablepay/chains"
	"github.com/vitwit/stablepay/clients"
	"github.com/vitwit/stablepay/logger"
	"github.com/vitwit/stablepay/metrics"
)

type Option func(*Verifier)

func WithLogger(l logger.Logger) Option {
	return func(v *Verifier) {
		v.logger = l
	}
}

func WithMetrics(r metrics.Recorder) Option {
	return func(v *Verifier) {
		v.metrics = r
	}
}

// WithTimeout bounds every individual RPC call
func WithTimeout(t time.Duration) Option {
	return func(v *Verifier) {
		v.timeout = t
	}
}

// WithWorkers bounds concurrent receipt lookups within one verification
func WithWorkers(n int) Option {
	return func(v *Verifier) {
		v.workers = n
	}
}

func WithRegistry(r *chains.Registry) Option {
	return func(v *Verifier) {
		v.registry = r
	}
}

// WithLedgerFactory replaces the go-ethereum client, mostly for tests
func WithLedgerFactory(f clients.Factory) Option {
	return func(v *Verifier) {
		v.dial = f
	}
}

// WithRPC sets the endpoint used for chain instead of its default
func WithRPC(chain, url string) Option {
	return func(v *Verifier) {
		v.rpc[strings.ToLower(chain)] = url
	}
}

// WithRequestsPerSecond throttles requests sent to each endpoint
func WithRequestsPerSecond(rps float64) Option {
	return func(v *Verifier) {
		v.rps = rps
	}
}

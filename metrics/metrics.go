// Package metrics records verification outcomes and latencies.
package metrics

import "time"

// Metric names
const (
	Verifications      = "verifications"
	VerificationErrors = "verification_errors"
	TransfersDiscarded = "transfers_discarded"
	VerifyLatency      = "verify"
	RPCLatency         = "rpc"
)

type Recorder interface {
	IncCounter(name string, labels map[string]string)
	ObserveLatency(name string, duration time.Duration, labels map[string]string)
}

// NoopRecorder drops every observation
type NoopRecorder struct{}

func (NoopRecorder) IncCounter(string, map[string]string)                    {}
func (NoopRecorder) ObserveLatency(string, time.Duration, map[string]string) {}

package verification

import (
	"context"
	"time"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"golang.org/x/sync/errgroup"

	"github.com/vitwit/stablepay/clients"
	"github.com/vitwit/stablepay/types"
)

type outcomeKind int

const (
	discarded outcomeKind = iota
	unconfirmed
	confirmed
)

// Discard reasons, also used as metric labels
const (
	reasonRemoved            = "removed"
	reasonForeignLog         = "foreign_log"
	reasonMalformed          = "malformed"
	reasonFailedTx           = "failed_tx"
	reasonReceiptUnavailable = "receipt_unavailable"
)

// outcome is the verdict on a single log
type outcome struct {
	kind     outcomeKind
	transfer types.Transfer
	reason   string
}

type tally struct {
	confirmed      float64
	pending        float64
	transfers      []types.Transfer
	representative *types.Transfer
}

// resolve turns logs into outcomes ordered by block number and log index.
// Receipt and timestamp lookups only happen for transfers at or beyond
// minConfirmations and run on at most s.workers goroutines. The only
// error returned is a cancellation of ctx.
func (s *Service) resolve(
	ctx context.Context,
	ledger clients.Ledger,
	logs []ethtypes.Log,
	q ethereum.FilterQuery,
	token types.TokenConfig,
	minConfirmations uint64,
	tip uint64,
) ([]outcome, error) {
	sorted := sortLogs(logs)
	outcomes := make([]outcome, len(sorted))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for i, l := range sorted {
		tr, reason := screen(l, q, token, tip)
		if reason != "" {
			outcomes[i] = outcome{kind: discarded, transfer: tr, reason: reason}
			continue
		}
		if tr.Confirmations < minConfirmations {
			outcomes[i] = outcome{kind: unconfirmed, transfer: tr}
			continue
		}

		g.Go(func() error {
			o, err := s.confirm(gctx, ledger, tr)
			if err != nil {
				return err
			}
			outcomes[i] = o
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return outcomes, nil
}

// screen checks that l is a Transfer of the queried token to the queried
// receiver before decoding it. Nodes are not trusted to honour the filter.
func screen(l ethtypes.Log, q ethereum.FilterQuery, token types.TokenConfig, tip uint64) (types.Transfer, string) {
	stub := types.Transfer{TxHash: l.TxHash.Hex(), BlockNumber: l.BlockNumber, LogIndex: l.Index}

	if l.Removed {
		return stub, reasonRemoved
	}
	if l.Address != common.HexToAddress(token.Address) || !matchTopics(l.Topics, q.Topics) {
		return stub, reasonForeignLog
	}

	tr, err := DecodeTransfer(l, token.Decimals, tip)
	if err != nil {
		return stub, reasonMalformed
	}
	return tr, ""
}

// matchTopics applies the filter semantics of eth_getLogs: an empty
// position matches anything, otherwise one of the listed hashes must match.
func matchTopics(topics []common.Hash, filter [][]common.Hash) bool {
	if len(topics) < len(filter) {
		return false
	}
	for i, want := range filter {
		if len(want) == 0 {
			continue
		}
		found := false
		for _, h := range want {
			if topics[i] == h {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// confirm looks up the receipt and block time of a confirmed-depth
// transfer. Lookup failures discard the transfer; only a cancelled ctx is
// returned as an error.
func (s *Service) confirm(ctx context.Context, ledger clients.Ledger, tr types.Transfer) (outcome, error) {
	status, err := withTimeout(ctx, s.timeout, func(ctx context.Context) (uint64, error) {
		return ledger.TransactionStatus(ctx, common.HexToHash(tr.TxHash))
	})
	if err != nil {
		if ctx.Err() != nil {
			return outcome{}, ctx.Err()
		}
		return outcome{kind: discarded, transfer: tr, reason: reasonReceiptUnavailable}, nil
	}
	if status != ethtypes.ReceiptStatusSuccessful {
		return outcome{kind: discarded, transfer: tr, reason: reasonFailedTx}, nil
	}

	ts, err := withTimeout(ctx, s.timeout, func(ctx context.Context) (uint64, error) {
		return ledger.BlockTimestamp(ctx, tr.BlockNumber)
	})
	switch {
	case err == nil:
		t := time.Unix(int64(ts), 0).UTC()
		tr.Timestamp = &t
	case ctx.Err() != nil:
		return outcome{}, ctx.Err()
	}

	tr.Confirmed = true
	return outcome{kind: confirmed, transfer: tr}, nil
}

// fold reduces ordered outcomes into totals. The representative is the
// confirmed transfer with the highest block, the first one on ties.
func fold(outcomes []outcome) tally {
	t := tally{transfers: make([]types.Transfer, 0, len(outcomes))}
	for i := range outcomes {
		o := &outcomes[i]
		switch o.kind {
		case confirmed:
			t.confirmed += o.transfer.Amount
			t.transfers = append(t.transfers, o.transfer)
			if t.representative == nil || o.transfer.BlockNumber > t.representative.BlockNumber {
				t.representative = &o.transfer
			}
		case unconfirmed:
			t.pending += o.transfer.Amount
			t.transfers = append(t.transfers, o.transfer)
		}
	}
	return t
}

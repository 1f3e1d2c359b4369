package verification

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"time"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"

	"github.com/vitwit/stablepay/clients"
)

const (
	testReceiver = "0x742d35cc6634c0532925a3b844bc454e4438f44e"
	testSender   = "0x1111111111111111111111111111111111111111"
	polygonUSDC  = "0x3c499c542cef5e3811e1192ce70d8cc03d5c3359"
)

// transferLog builds a USDC Transfer log on polygon to testReceiver
func transferLog(block uint64, index uint, from string, raw int64, tx byte) ethtypes.Log {
	return ethtypes.Log{
		Address: common.HexToAddress(polygonUSDC),
		Topics: []common.Hash{
			TransferEventSignature,
			addressTopic(from),
			addressTopic(testReceiver),
		},
		Data:        common.LeftPadBytes(big.NewInt(raw).Bytes(), 32),
		BlockNumber: block,
		Index:       index,
		TxHash:      common.BytesToHash([]byte{tx}),
	}
}

// fakeLedger is an in-memory clients.Ledger
type fakeLedger struct {
	mu sync.Mutex

	tip     uint64
	tipErr  error
	logs    []ethtypes.Log
	logsErr error

	// receipt status per tx; missing entries succeed
	status     map[common.Hash]uint64
	receiptErr map[common.Hash]error
	// block timestamps; missing entries fail
	timestamps map[uint64]uint64

	onReceipt func(ctx context.Context) error
	delay     time.Duration

	query        ethereum.FilterQuery
	receipts     []common.Hash
	timestampsAt []uint64
	inFlight     int
	maxInFlight  int
	closed       bool
}

var _ clients.Ledger = (*fakeLedger)(nil)

func newFakeLedger(tip uint64, logs ...ethtypes.Log) *fakeLedger {
	return &fakeLedger{
		tip:        tip,
		logs:       logs,
		status:     map[common.Hash]uint64{},
		receiptErr: map[common.Hash]error{},
		timestamps: map[uint64]uint64{},
	}
}

func (f *fakeLedger) factory(dials *int) clients.Factory {
	return func(ctx context.Context, cfg clients.Config) (clients.Ledger, error) {
		if dials != nil {
			*dials++
		}
		return f, nil
	}
}

func (f *fakeLedger) TipBlock(ctx context.Context) (uint64, error) {
	return f.tip, f.tipErr
}

func (f *fakeLedger) TransferLogs(ctx context.Context, q ethereum.FilterQuery) ([]ethtypes.Log, error) {
	f.mu.Lock()
	f.query = q
	f.mu.Unlock()
	if f.logsErr != nil {
		return nil, f.logsErr
	}
	return f.logs, nil
}

func (f *fakeLedger) TransactionStatus(ctx context.Context, tx common.Hash) (uint64, error) {
	f.mu.Lock()
	f.receipts = append(f.receipts, tx)
	f.inFlight++
	if f.inFlight > f.maxInFlight {
		f.maxInFlight = f.inFlight
	}
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.inFlight--
		f.mu.Unlock()
	}()

	if f.onReceipt != nil {
		if err := f.onReceipt(ctx); err != nil {
			return 0, err
		}
	}
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.receiptErr[tx]; err != nil {
		return 0, err
	}
	if s, ok := f.status[tx]; ok {
		return s, nil
	}
	return ethtypes.ReceiptStatusSuccessful, nil
}

func (f *fakeLedger) BlockTimestamp(ctx context.Context, number uint64) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.timestampsAt = append(f.timestampsAt, number)
	ts, ok := f.timestamps[number]
	if !ok {
		return 0, errors.New("header not found")
	}
	return ts, nil
}

func (f *fakeLedger) Close() {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
}

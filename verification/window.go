package verification

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/vitwit/stablepay/types"
)

// MaxBlockRange is the widest block range a single verification may scan
const MaxBlockRange = 100000

var windowPattern = regexp.MustCompile(`^(\d+)([hdm])$`)

// ParseTimeWindow parses a relative window such as "30m", "24h" or "7d".
// Parsing is case-insensitive and ignores surrounding whitespace.
func ParseTimeWindow(window string) (time.Duration, error) {
	m := windowPattern.FindStringSubmatch(strings.ToLower(strings.TrimSpace(window)))
	if m == nil {
		return 0, types.NewError(types.ErrInvalidTimeWindow,
			"invalid time window %q: use a number followed by m, h or d (e.g. 30m, 24h, 7d)", window)
	}

	var unit time.Duration
	switch m[2] {
	case "m":
		unit = time.Minute
	case "h":
		unit = time.Hour
	case "d":
		unit = 24 * time.Hour
	}

	n, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil || n > int64(math.MaxInt64/unit) {
		return 0, types.NewError(types.ErrInvalidTimeWindow, "time window %q is too large", window)
	}
	return time.Duration(n) * unit, nil
}

// EstimateBlocks estimates how many blocks are produced in d. The result
// is never below one block.
func EstimateBlocks(d time.Duration, blockTime float64) uint64 {
	if blockTime <= 0 {
		return 1
	}
	blocks := math.Floor(d.Seconds() / blockTime)
	if blocks < 1 {
		return 1
	}
	return uint64(blocks)
}

// ResolveBlockRange turns the request's window or explicit bounds into an
// inclusive block range. tip is the latest block observed for this call.
func ResolveBlockRange(req types.VerifyRequest, blockTime float64, tip uint64) (types.BlockRange, error) {
	var r types.BlockRange

	if req.FromBlock != nil {
		r.From = *req.FromBlock
	} else {
		d, err := ParseTimeWindow(req.TimeWindow)
		if err != nil {
			return r, err
		}
		if est := EstimateBlocks(d, blockTime); est < tip {
			r.From = tip - est
		}
	}

	r.To = tip
	if req.ToBlock != nil {
		r.To = *req.ToBlock
	}

	if r.From > r.To {
		return r, types.NewError(types.ErrInvalidInput,
			"invalid block range: from block %d is after to block %d", r.From, r.To)
	}
	if r.Size() > MaxBlockRange {
		return r, types.NewError(types.ErrRangeTooLarge,
			"block range too large (%d blocks, %d to %d); maximum is %d blocks, narrow your search",
			r.Size(), r.From, r.To, MaxBlockRange)
	}
	return r, nil
}

package verification

import (
	"math"
	"strings"

	"github.com/vitwit/stablepay/types"
	"github.com/vitwit/stablepay/utils"
)

// NormalizeRequest validates req and returns a normalized copy: lowercase
// addresses and chain, uppercase token, default time window. Every input
// error is reported here, before any network call.
func NormalizeRequest(req types.VerifyRequest) (types.VerifyRequest, error) {
	req.Address = strings.TrimSpace(req.Address)
	req.Sender = strings.TrimSpace(req.Sender)
	req.RPC = strings.TrimSpace(req.RPC)
	req.Token = strings.ToUpper(strings.TrimSpace(req.Token))
	req.Chain = strings.ToLower(strings.TrimSpace(req.Chain))
	req.TimeWindow = strings.TrimSpace(req.TimeWindow)

	if req.FromBlock == nil && req.TimeWindow == "" {
		req.TimeWindow = types.DefaultTimeWindow
	}

	if math.IsInf(req.Amount, 0) || math.IsNaN(req.Amount) {
		return req, types.NewError(types.ErrInvalidInput, "invalid amount %v", req.Amount)
	}
	if err := utils.ValidateStruct(&req); err != nil {
		return req, types.WrapError(types.ErrInvalidInput, err, "invalid verification request")
	}

	addr, err := utils.NormalizeAddress(req.Address)
	if err != nil {
		return req, types.WrapError(types.ErrInvalidInput, err, "invalid receiver address")
	}
	req.Address = addr

	if req.Sender != "" {
		sender, err := utils.NormalizeAddress(req.Sender)
		if err != nil {
			return req, types.WrapError(types.ErrInvalidInput, err, "invalid sender address")
		}
		req.Sender = sender
	}

	if req.FromBlock == nil {
		if _, err := ParseTimeWindow(req.TimeWindow); err != nil {
			return req, err
		}
	}
	if req.FromBlock != nil && req.ToBlock != nil && *req.FromBlock > *req.ToBlock {
		return req, types.NewError(types.ErrInvalidInput,
			"invalid block range: from block %d is after to block %d", *req.FromBlock, *req.ToBlock)
	}

	return req, nil
}

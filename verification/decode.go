package verification

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/vitwit/stablepay/types"
	"github.com/vitwit/stablepay/utils"
)

// TransferEventSignature is keccak256("Transfer(address,address,uint256)")
var TransferEventSignature = crypto.Keccak256Hash([]byte("Transfer(address,address,uint256)"))

var errMalformedLog = errors.New("malformed transfer log")

// DecodeTransfer decodes an ERC-20 Transfer log. Confirmations are counted
// against tip and saturate at zero for logs above it.
func DecodeTransfer(log ethtypes.Log, decimals int, tip uint64) (types.Transfer, error) {
	if len(log.Topics) != 3 {
		return types.Transfer{}, fmt.Errorf("%w: expected 3 topics, got %d", errMalformedLog, len(log.Topics))
	}
	if len(log.Data) == 0 || len(log.Data) > common.HashLength {
		return types.Transfer{}, fmt.Errorf("%w: unexpected data length %d", errMalformedLog, len(log.Data))
	}

	raw := new(big.Int).SetBytes(log.Data)

	var confirmations uint64
	if tip > log.BlockNumber {
		confirmations = tip - log.BlockNumber
	}

	return types.Transfer{
		TxHash:        log.TxHash.Hex(),
		BlockNumber:   log.BlockNumber,
		LogIndex:      log.Index,
		Sender:        topicAddress(log.Topics[1]),
		Receiver:      topicAddress(log.Topics[2]),
		Amount:        utils.ToHuman(raw, decimals),
		RawAmount:     raw,
		Confirmations: confirmations,
	}, nil
}

// topicAddress strips the left padding of an indexed address topic
func topicAddress(topic common.Hash) string {
	return strings.ToLower(common.BytesToAddress(topic.Bytes()).Hex())
}

// addressTopic left-pads an address to a 32 byte topic
func addressTopic(addr string) common.Hash {
	return common.BytesToHash(common.HexToAddress(addr).Bytes())
}

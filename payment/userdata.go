package payment

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/openvend/openvend/types"
)

// Swap-derived purchases carry the caller's input cap and deadline inside
// the request's opaque userData, as two big-endian 32-byte words.
const swapParamsLen = 2 * common.HashLength

// EncodeSwapParams packs maxIn and a unix-second deadline into userData.
func EncodeSwapParams(maxIn *big.Int, deadline time.Time) []byte {
	out := make([]byte, 0, swapParamsLen)
	out = append(out, common.BigToHash(maxIn).Bytes()...)
	out = append(out, common.BigToHash(big.NewInt(deadline.Unix())).Bytes()...)
	return out
}

// DecodeSwapParams unpacks what EncodeSwapParams produced.
func DecodeSwapParams(userData []byte) (*big.Int, time.Time, error) {
	if len(userData) != swapParamsLen {
		return nil, time.Time{}, &types.Error{
			Code:    types.ErrInvalidUserData,
			Message: "swap purchase userData must hold maxIn and deadline words",
		}
	}
	maxIn := new(big.Int).SetBytes(userData[:common.HashLength])
	deadline := new(big.Int).SetBytes(userData[common.HashLength:])
	return maxIn, time.Unix(deadline.Int64(), 0).UTC(), nil
}

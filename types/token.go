package types

import (
	"math"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// NativeToken is the conventional sentinel address that identifies the
// native currency in price tables and purchase requests, so one address
// type spans both payment media.
var NativeToken = common.HexToAddress("0xEeeeeEeeeEeEeeEeEeEeeEEEeeeeEeeeeeeeEEeE")

// AskStrategyPrice is the unit-price sentinel (max uint256). A price table
// entry holding this value means "ask the SKU's pricing strategy" for that
// token rather than charging a fixed unit price.
var AskStrategyPrice = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

// RateScale is the fixed-point scale of conversion and swap rates (1e18).
var RateScale = big.NewInt(1_000_000_000_000_000_000)

// UnlimitedSupply marks a counter-backed SKU whose supply is never decremented.
const UnlimitedSupply uint64 = math.MaxUint64

// NotificationAck is the acknowledgment value a notification target must
// return for the purchase to commit.
var NotificationAck = [4]byte{0x6f, 0x76, 0x61, 0x6b}

// IsNative reports whether token is the native-currency sentinel.
func IsNative(token common.Address) bool {
	return token == NativeToken
}

// IsAskStrategy reports whether price is the ask-the-strategy sentinel.
func IsAskStrategy(price *big.Int) bool {
	return price != nil && price.Cmp(AskStrategyPrice) == 0
}

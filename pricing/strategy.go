// Package pricing computes purchase totals. Three strategies share one
// contract: given a unit price, a payment token and a quantity, produce a
// total in that token plus opaque words recording the rate used. Strategies
// never mutate state; a quote is produced fresh per request.
package pricing

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/openvend/openvend/types"
)

// Query carries the inputs of one pricing computation. For fixed pricing
// ReferencePrice is the token's own unit price; for oracle and swap pricing
// it is the SKU's canonical price in ReferenceToken units.
type Query struct {
	ReferenceToken common.Address
	ReferencePrice *big.Int
	Token          common.Address
	Quantity       uint64
	UserData       []byte
}

// Strategy is the contract shared by all pricing variants.
type Strategy interface {
	Quote(ctx context.Context, q Query) (*types.PriceQuote, error)
}

// RateOracle supplies conversion rates between tokens as fixed-point values
// scaled by 1e18. It is an external collaborator; a missing pair must
// surface as a zero rate or an error.
type RateOracle interface {
	ConversionRate(ctx context.Context, from, to common.Address) (*big.Int, error)
}

// SwapVenue is an external swap/liquidity venue. QuoteRate reports the
// current from→to rate scaled by 1e18; SwapToExact swaps the payer's `from`
// balance into exactly amountOut of `to`, spending at most maxIn, and
// returns the input amount actually consumed.
type SwapVenue interface {
	QuoteRate(ctx context.Context, from, to common.Address) (*big.Int, error)
	SwapToExact(ctx context.Context, payer common.Address, from, to common.Address, amountOut, maxIn *big.Int, deadline time.Time) (*big.Int, error)
}

// convert computes referencePrice × quantity × 1e18 / rate. The division
// truncates toward zero; that floor is observed behavior and must not be
// re-rounded.
func convert(referencePrice *big.Int, quantity uint64, rate *big.Int) *big.Int {
	total := new(big.Int).Mul(referencePrice, new(big.Int).SetUint64(quantity))
	total.Mul(total, types.RateScale)
	return total.Quo(total, rate)
}

func undefinedRate(from, to common.Address) error {
	return &types.Error{
		Code:    types.ErrUndefinedRate,
		Message: "no conversion rate defined for pair",
		Data:    map[string]string{"from": from.Hex(), "to": to.Hex()},
	}
}

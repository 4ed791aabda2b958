package pricing

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/openvend/openvend/types"
)

// SwapDerived prices like OracleConverted but sources the rate from a swap
// venue. Its auxiliary data carries the ask-the-strategy unit-price
// sentinel alongside the rate, one word more than the other variants, so a
// replayer can tell swap-derived totals apart.
type SwapDerived struct {
	venue SwapVenue
}

func NewSwapDerived(venue SwapVenue) *SwapDerived {
	return &SwapDerived{venue: venue}
}

func (s *SwapDerived) Quote(ctx context.Context, q Query) (*types.PriceQuote, error) {
	rate, err := s.venue.QuoteRate(ctx, q.Token, q.ReferenceToken)
	if err != nil {
		return nil, &types.Error{
			Code:    types.ErrUndefinedRate,
			Message: fmt.Sprintf("swap rate lookup failed: %v", err),
		}
	}
	if rate == nil || rate.Sign() <= 0 {
		return nil, undefinedRate(q.Token, q.ReferenceToken)
	}

	return &types.PriceQuote{
		TotalPrice: convert(q.ReferencePrice, q.Quantity, rate),
		PricingData: []common.Hash{
			common.BigToHash(types.AskStrategyPrice),
			common.BigToHash(rate),
		},
	}, nil
}

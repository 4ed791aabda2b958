package pricing

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/openvend/openvend/types"
)

// OracleConverted prices a SKU stored in a reference currency by converting
// through an external rate oracle:
//
//	total = referencePrice × quantity × 1e18 / rate(token→reference)
//
// with floor division. The rate used is recorded as one auxiliary word for
// audit and replay.
type OracleConverted struct {
	oracle RateOracle
}

func NewOracleConverted(oracle RateOracle) *OracleConverted {
	return &OracleConverted{oracle: oracle}
}

func (o *OracleConverted) Quote(ctx context.Context, q Query) (*types.PriceQuote, error) {
	rate, err := o.oracle.ConversionRate(ctx, q.Token, q.ReferenceToken)
	if err != nil {
		return nil, &types.Error{
			Code:    types.ErrUndefinedRate,
			Message: fmt.Sprintf("oracle rate lookup failed: %v", err),
		}
	}
	if rate == nil || rate.Sign() <= 0 {
		return nil, undefinedRate(q.Token, q.ReferenceToken)
	}

	return &types.PriceQuote{
		TotalPrice:  convert(q.ReferencePrice, q.Quantity, rate),
		PricingData: []common.Hash{common.BigToHash(rate)},
	}, nil
}

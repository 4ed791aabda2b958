package pricing

import (
	"context"
	"math/big"

	"github.com/openvend/openvend/types"
)

// Fixed multiplies the token's unit price by the quantity. It needs no
// external collaborator and records no auxiliary data.
type Fixed struct{}

func NewFixed() Fixed {
	return Fixed{}
}

func (Fixed) Quote(_ context.Context, q Query) (*types.PriceQuote, error) {
	if q.ReferencePrice == nil || q.ReferencePrice.Sign() <= 0 {
		return nil, &types.Error{Code: types.ErrUnsupportedToken, Message: "token has no unit price"}
	}
	total := new(big.Int).Mul(q.ReferencePrice, new(big.Int).SetUint64(q.Quantity))
	return &types.PriceQuote{TotalPrice: total}, nil
}

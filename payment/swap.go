package payment

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/openvend/openvend/pricing"
	"github.com/openvend/openvend/types"
)

// Swap collects a payment token and swaps it into the reference currency
// before forwarding. The caller bounds the market-determined input with a
// maximum and a deadline, both carried in the request's userData; the input
// actually consumed is returned as the receipt's auxiliary word.
type Swap struct {
	token     Token
	reference Token
	venue     pricing.SwapVenue
	payout    common.Address
	operator  common.Address
}

func NewSwap(token, reference Token, venue pricing.SwapVenue, payout, operator common.Address) *Swap {
	return &Swap{token: token, reference: reference, venue: venue, payout: payout, operator: operator}
}

func (h *Swap) Collect(ctx context.Context, order *Order) (*types.PaymentReceipt, Undo, error) {
	if err := rejectAttached(order); err != nil {
		return nil, nil, err
	}

	maxIn, deadline, err := DecodeSwapParams(order.UserData)
	if err != nil {
		return nil, nil, err
	}

	// pull the caller's full input budget, swap, then return the unused part
	if err := h.token.TransferFrom(h.operator, order.Purchaser, h.operator, maxIn); err != nil {
		return nil, nil, err
	}

	amountIn, err := h.venue.SwapToExact(ctx, h.operator, order.Token, order.ReferenceToken, order.ReferenceTotal, maxIn, deadline)
	if err != nil {
		if refundErr := h.token.Transfer(h.operator, order.Purchaser, maxIn); refundErr == nil {
			restoreAllowance(h.token, order.Purchaser, h.operator, maxIn)
		}
		return nil, nil, err
	}

	leftover := new(big.Int).Sub(maxIn, amountIn)
	if leftover.Sign() > 0 {
		if err := h.token.Transfer(h.operator, order.Purchaser, leftover); err != nil {
			return nil, nil, err
		}
	}

	if err := h.reference.Transfer(h.operator, h.payout, order.ReferenceTotal); err != nil {
		return nil, nil, err
	}

	receipt := &types.PaymentReceipt{Words: []common.Hash{common.BigToHash(amountIn)}}
	undo := func() error {
		// the swap itself cannot be reversed; the compensation returns the
		// reference-currency value to the purchaser
		return h.reference.Transfer(h.payout, order.Purchaser, order.ReferenceTotal)
	}
	return receipt, undo, nil
}

package payment

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/openvend/openvend/types"
)

// Native collects native currency. The caller may attach more than the
// total; the handler moves the attached amount into its escrow, forwards
// exactly the total to the payout destination, and refunds the difference
// to the purchaser before returning.
type Native struct {
	bank   NativeBank
	payout common.Address
	escrow common.Address
}

func NewNative(bank NativeBank, payout, escrow common.Address) *Native {
	return &Native{bank: bank, payout: payout, escrow: escrow}
}

func (h *Native) Collect(_ context.Context, order *Order) (*types.PaymentReceipt, Undo, error) {
	attached := attachedOf(order)
	if attached.Cmp(order.Total) < 0 {
		return nil, nil, &types.Error{
			Code:    types.ErrInsufficientPayment,
			Message: "attached native amount below total price",
			Data:    map[string]string{"attached": attached.String(), "total": order.Total.String()},
		}
	}

	if err := h.bank.Transfer(order.Purchaser, h.escrow, attached); err != nil {
		return nil, nil, err
	}
	if err := h.bank.Transfer(h.escrow, h.payout, order.Total); err != nil {
		// return the escrowed funds before surfacing the failure
		_ = h.bank.Transfer(h.escrow, order.Purchaser, attached)
		return nil, nil, err
	}

	refund := new(big.Int).Sub(attached, order.Total)
	if refund.Sign() > 0 {
		if err := h.bank.Transfer(h.escrow, order.Purchaser, refund); err != nil {
			return nil, nil, err
		}
	}

	receipt := &types.PaymentReceipt{Words: []common.Hash{
		common.BigToHash(order.Total),
		common.BigToHash(refund),
	}}
	undo := func() error {
		return h.bank.Transfer(h.payout, order.Purchaser, order.Total)
	}
	return receipt, undo, nil
}

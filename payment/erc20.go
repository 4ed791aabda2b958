package payment

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"github.com/openvend/openvend/types"
)

// ERC20 collects an external token. The purchaser must have pre-approved
// at least the total to the handler's operator address; the handler pulls
// exactly the total via transfer-from, directly to the payout destination.
// Native currency in the same call is rejected outright.
type ERC20 struct {
	token    Token
	payout   common.Address
	operator common.Address
}

func NewERC20(token Token, payout, operator common.Address) *ERC20 {
	return &ERC20{token: token, payout: payout, operator: operator}
}

func (h *ERC20) Collect(_ context.Context, order *Order) (*types.PaymentReceipt, Undo, error) {
	if err := rejectAttached(order); err != nil {
		return nil, nil, err
	}

	// allowance/balance failures from the token pass through unchanged
	if err := h.token.TransferFrom(h.operator, order.Purchaser, h.payout, order.Total); err != nil {
		return nil, nil, err
	}

	receipt := &types.PaymentReceipt{Words: []common.Hash{common.BigToHash(order.Total)}}
	undo := func() error {
		if err := h.token.Transfer(h.payout, order.Purchaser, order.Total); err != nil {
			return err
		}
		restoreAllowance(h.token, order.Purchaser, h.operator, order.Total)
		return nil
	}
	return receipt, undo, nil
}

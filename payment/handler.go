// Package payment collects purchase funds. Handlers share one contract:
// pull exactly the total from the purchaser and forward it to the payout
// destination, returning receipt words plus an undo capability the
// lifecycle journal consumes if a later stage fails. Two structurally
// different media (native currency, external tokens with allowances) and a
// swap-forwarding variant implement the same interface.
package payment

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/openvend/openvend/types"
)

// Order is the payment side of one purchase invocation.
type Order struct {
	Purchaser common.Address
	Token     common.Address

	// Total is the quoted price in Token units.
	Total *big.Int

	// ReferenceToken and ReferenceTotal describe the forwarding target for
	// the swap handler; other handlers ignore them.
	ReferenceToken common.Address
	ReferenceTotal *big.Int

	// Attached is the native currency accompanying the call, if any.
	Attached *big.Int

	UserData []byte
}

// Undo compensates a completed collection, returning the collected funds
// to the purchaser. It runs only within the same lifecycle invocation.
type Undo func() error

// Handler is the contract shared by all payment variants.
type Handler interface {
	Collect(ctx context.Context, order *Order) (*types.PaymentReceipt, Undo, error)
}

func attachedOf(order *Order) *big.Int {
	if order.Attached == nil {
		return new(big.Int)
	}
	return order.Attached
}

// restoreAllowance re-grants the allowance a reversed pull consumed, so an
// unwound purchase leaves the purchaser's approval exactly as it was.
func restoreAllowance(token Token, owner, spender common.Address, amount *big.Int) {
	granted := token.Allowance(owner, spender)
	token.Approve(owner, spender, granted.Add(granted, amount))
}

func rejectAttached(order *Order) error {
	if order.Attached != nil && order.Attached.Sign() > 0 {
		return &types.Error{
			Code:    types.ErrUnexpectedNativeAmount,
			Message: "token payment must not carry native currency",
		}
	}
	return nil
}

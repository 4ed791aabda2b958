// Package supply implements the delivery side of a purchase: verifying
// availability, atomically reserving supply, and describing the goods
// handed over. Three ledger variants exist: a fungible counter, a
// fixed-order identifier list, and a combined fungible+non-fungible lot.
package supply

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/openvend/openvend/types"
)

// Undo reverses a delivery. The lifecycle calls it, in reverse order of the
// journal, when a later stage of the same invocation fails.
type Undo func()

// Ledger is the contract shared by all supply variants. Deliver verifies
// availability against live state, decrements it, and returns the delivery
// receipt plus an undo closure.
type Ledger interface {
	Total() uint64
	Available() uint64
	Deliver(recipient common.Address, quantity uint64) (*types.DeliveryReceipt, Undo, error)
}

// Grower is implemented by ledgers that allow additive supply growth.
type Grower interface {
	Grow(additional uint64) error
}

// Appender is implemented by ledgers backed by non-fungible identifier
// lists that may grow.
type Appender interface {
	Append(ids []common.Hash) error
}

func insufficient(want, have uint64) error {
	return &types.Error{
		Code:    types.ErrInsufficientSupply,
		Message: "insufficient supply",
		Data:    map[string]uint64{"requested": want, "available": have},
	}
}

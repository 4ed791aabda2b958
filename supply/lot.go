package supply

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/openvend/openvend/types"
)

// Lot combines a shrinking pool of non-fungible identifiers with a fixed
// fungible amount per unit. Identifiers are delivered from the tail of the
// list inward (most recently added available first); delivering quantity q
// yields q identifiers plus q × perUnit fungible units.
type Lot struct {
	items        []common.Hash
	numAvailable uint64
	perUnit      *big.Int
}

func NewLot(items []common.Hash, perUnit *big.Int) (*Lot, error) {
	if perUnit == nil || perUnit.Sign() < 0 {
		return nil, &types.Error{Code: types.ErrInvalidLot, Message: "fungible amount per unit must be a non-negative integer"}
	}
	pool := make([]common.Hash, len(items))
	copy(pool, items)
	return &Lot{
		items:        pool,
		numAvailable: uint64(len(pool)),
		perUnit:      new(big.Int).Set(perUnit),
	}, nil
}

func (l *Lot) Total() uint64 {
	return uint64(len(l.items))
}

func (l *Lot) Available() uint64 {
	return l.numAvailable
}

// FungiblePerUnit returns the fungible amount delivered with each unit.
func (l *Lot) FungiblePerUnit() *big.Int {
	return new(big.Int).Set(l.perUnit)
}

// PeekAvailable returns up to min(count, numAvailable) identifiers in
// delivery order without mutating state. Callers use it to preview what a
// purchase would yield.
func (l *Lot) PeekAvailable(count uint64) []common.Hash {
	if count > l.numAvailable {
		count = l.numAvailable
	}
	out := make([]common.Hash, 0, count)
	for i := uint64(0); i < count; i++ {
		out = append(out, l.items[l.numAvailable-1-i])
	}
	return out
}

// Append adds identifiers to the available pool. New items slot in just
// below the delivered tail, so they are the next delivered.
func (l *Lot) Append(ids []common.Hash) error {
	if len(ids) == 0 {
		return &types.Error{Code: types.ErrEmptyAddition, Message: "no identifiers to append"}
	}
	grown := make([]common.Hash, 0, len(l.items)+len(ids))
	grown = append(grown, l.items[:l.numAvailable]...)
	grown = append(grown, ids...)
	grown = append(grown, l.items[l.numAvailable:]...)
	l.items = grown
	l.numAvailable += uint64(len(ids))
	return nil
}

func (l *Lot) Deliver(_ common.Address, quantity uint64) (*types.DeliveryReceipt, Undo, error) {
	if quantity > l.numAvailable {
		return nil, nil, insufficient(quantity, l.numAvailable)
	}
	words := make([]common.Hash, 0, quantity+1)
	for i := uint64(0); i < quantity; i++ {
		words = append(words, l.items[l.numAvailable-1-i])
	}
	fungible := new(big.Int).Mul(l.perUnit, new(big.Int).SetUint64(quantity))
	words = append(words, common.BigToHash(fungible))

	l.numAvailable -= quantity
	return &types.DeliveryReceipt{Words: words}, func() { l.numAvailable += quantity }, nil
}

package supply

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/openvend/openvend/types"
)

// Counter is the simplest ledger: a decrementing remaining-supply count.
// Goods are implicit, so the delivery receipt carries no words. A total of
// types.UnlimitedSupply is exempt from decrement.
type Counter struct {
	total     uint64
	remaining uint64
}

func NewCounter(total uint64) *Counter {
	return &Counter{total: total, remaining: total}
}

func (c *Counter) Total() uint64 {
	return c.total
}

func (c *Counter) Available() uint64 {
	return c.remaining
}

// Grow adds supply additively. Growing an unlimited counter is rejected;
// it has nothing to grow.
func (c *Counter) Grow(additional uint64) error {
	if additional == 0 {
		return &types.Error{Code: types.ErrEmptyAddition, Message: "supply addition must be greater than 0"}
	}
	if c.total == types.UnlimitedSupply {
		return &types.Error{Code: types.ErrEmptyAddition, Message: "cannot grow unlimited supply"}
	}
	// the sum must stay below the unlimited sentinel
	if additional > types.UnlimitedSupply-1-c.total {
		return &types.Error{Code: types.ErrSupplyCapExceeded, Message: "supply addition exceeds the representable maximum"}
	}
	c.total += additional
	c.remaining += additional
	return nil
}

func (c *Counter) Deliver(_ common.Address, quantity uint64) (*types.DeliveryReceipt, Undo, error) {
	if c.total == types.UnlimitedSupply {
		return &types.DeliveryReceipt{}, func() {}, nil
	}
	if quantity > c.remaining {
		return nil, nil, insufficient(quantity, c.remaining)
	}
	c.remaining -= quantity
	return &types.DeliveryReceipt{}, func() { c.remaining += quantity }, nil
}

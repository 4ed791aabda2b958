package supply

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/openvend/openvend/types"
)

// FixedOrderList delivers non-fungible identifiers in list order: a
// monotonically increasing cursor marks the next undelivered item, and
// delivering quantity q hands over ids [cursor, cursor+q) and advances the
// cursor by q. Already-delivered items are never reordered or removed.
type FixedOrderList struct {
	items  []common.Hash
	cursor uint64

	// capacity caps list growth; 0 means unbounded.
	capacity uint64
}

func NewFixedOrderList(items []common.Hash, capacity uint64) (*FixedOrderList, error) {
	if len(items) == 0 {
		return nil, &types.Error{Code: types.ErrEmptyAddition, Message: "fixed-order list needs at least one item"}
	}
	if capacity > 0 && uint64(len(items)) > capacity {
		return nil, &types.Error{Code: types.ErrSupplyCapExceeded, Message: "initial items exceed list capacity"}
	}
	list := make([]common.Hash, len(items))
	copy(list, items)
	return &FixedOrderList{items: list, capacity: capacity}, nil
}

func (l *FixedOrderList) Total() uint64 {
	return uint64(len(l.items))
}

func (l *FixedOrderList) Available() uint64 {
	return uint64(len(l.items)) - l.cursor
}

// Cursor returns the index of the next identifier to be delivered.
func (l *FixedOrderList) Cursor() uint64 {
	return l.cursor
}

// Append grows the list past the cursor. Growth is append-only: it never
// touches delivered items and fails once the capacity is exhausted.
func (l *FixedOrderList) Append(ids []common.Hash) error {
	if len(ids) == 0 {
		return &types.Error{Code: types.ErrEmptyAddition, Message: "no identifiers to append"}
	}
	if l.capacity > 0 && uint64(len(l.items))+uint64(len(ids)) > l.capacity {
		return &types.Error{
			Code:    types.ErrSupplyCapExceeded,
			Message: "append would exceed list capacity",
			Data:    map[string]uint64{"capacity": l.capacity, "size": uint64(len(l.items)), "adding": uint64(len(ids))},
		}
	}
	l.items = append(l.items, ids...)
	return nil
}

func (l *FixedOrderList) Deliver(_ common.Address, quantity uint64) (*types.DeliveryReceipt, Undo, error) {
	available := l.Available()
	if quantity > available {
		return nil, nil, insufficient(quantity, available)
	}
	words := make([]common.Hash, quantity)
	copy(words, l.items[l.cursor:l.cursor+quantity])
	l.cursor += quantity
	return &types.DeliveryReceipt{Words: words}, func() { l.cursor -= quantity }, nil
}

package payment

import (
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/openvend/openvend/types"
)

// NativeBank is the port through which native currency moves. The host
// execution environment owns the real balances; an in-memory bank ships
// here for wiring and tests.
type NativeBank interface {
	BalanceOf(addr common.Address) *big.Int
	Transfer(from, to common.Address, amount *big.Int) error
}

// InMemoryBank is a NativeBank backed by a balance map.
type InMemoryBank struct {
	mu       sync.Mutex
	balances map[common.Address]*big.Int
}

func NewInMemoryBank() *InMemoryBank {
	return &InMemoryBank{balances: make(map[common.Address]*big.Int)}
}

// Mint credits an account out of thin air. Test and example setup only.
func (b *InMemoryBank) Mint(addr common.Address, amount *big.Int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.credit(addr, amount)
}

func (b *InMemoryBank) BalanceOf(addr common.Address) *big.Int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if bal, ok := b.balances[addr]; ok {
		return new(big.Int).Set(bal)
	}
	return new(big.Int)
}

func (b *InMemoryBank) Transfer(from, to common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return &types.Error{Code: types.ErrInsufficientPayment, Message: "transfer amount must be non-negative"}
	}
	if amount.Sign() == 0 {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	bal, ok := b.balances[from]
	if !ok || bal.Cmp(amount) < 0 {
		return &types.Error{Code: types.ErrBalanceExceeded, Message: "native balance exceeded"}
	}
	bal.Sub(bal, amount)
	b.credit(to, amount)
	return nil
}

func (b *InMemoryBank) credit(addr common.Address, amount *big.Int) {
	if bal, ok := b.balances[addr]; ok {
		bal.Add(bal, amount)
		return
	}
	b.balances[addr] = new(big.Int).Set(amount)
}

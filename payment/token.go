package payment

import (
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/openvend/openvend/types"
)

// Token mirrors the standard approve/transferFrom/transfer contract of an
// external token. TransferFrom spends the allowance the owner granted to
// the spender; its errors pass through the engine unreinterpreted.
type Token interface {
	BalanceOf(owner common.Address) *big.Int
	Allowance(owner, spender common.Address) *big.Int
	Approve(owner, spender common.Address, amount *big.Int)
	Transfer(from, to common.Address, amount *big.Int) error
	TransferFrom(spender, from, to common.Address, amount *big.Int) error
}

// InMemoryToken is a Token backed by balance and allowance maps.
type InMemoryToken struct {
	mu         sync.Mutex
	balances   map[common.Address]*big.Int
	allowances map[common.Address]map[common.Address]*big.Int
}

func NewInMemoryToken() *InMemoryToken {
	return &InMemoryToken{
		balances:   make(map[common.Address]*big.Int),
		allowances: make(map[common.Address]map[common.Address]*big.Int),
	}
}

// Mint credits an account out of thin air. Test and example setup only.
func (t *InMemoryToken) Mint(owner common.Address, amount *big.Int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.credit(owner, amount)
}

func (t *InMemoryToken) BalanceOf(owner common.Address) *big.Int {
	t.mu.Lock()
	defer t.mu.Unlock()
	if bal, ok := t.balances[owner]; ok {
		return new(big.Int).Set(bal)
	}
	return new(big.Int)
}

func (t *InMemoryToken) Allowance(owner, spender common.Address) *big.Int {
	t.mu.Lock()
	defer t.mu.Unlock()
	if granted, ok := t.allowances[owner][spender]; ok {
		return new(big.Int).Set(granted)
	}
	return new(big.Int)
}

func (t *InMemoryToken) Approve(owner, spender common.Address, amount *big.Int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.allowances[owner] == nil {
		t.allowances[owner] = make(map[common.Address]*big.Int)
	}
	t.allowances[owner][spender] = new(big.Int).Set(amount)
}

func (t *InMemoryToken) Transfer(from, to common.Address, amount *big.Int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.move(from, to, amount)
}

func (t *InMemoryToken) TransferFrom(spender, from, to common.Address, amount *big.Int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	granted := t.allowances[from][spender]
	if granted == nil || granted.Cmp(amount) < 0 {
		return &types.Error{Code: types.ErrAllowanceExceeded, Message: "allowance exceeded"}
	}
	if err := t.move(from, to, amount); err != nil {
		return err
	}
	granted.Sub(granted, amount)
	return nil
}

func (t *InMemoryToken) move(from, to common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return &types.Error{Code: types.ErrBalanceExceeded, Message: "transfer amount must be non-negative"}
	}
	if amount.Sign() == 0 {
		return nil
	}
	bal, ok := t.balances[from]
	if !ok || bal.Cmp(amount) < 0 {
		return &types.Error{Code: types.ErrBalanceExceeded, Message: "token balance exceeded"}
	}
	bal.Sub(bal, amount)
	t.credit(to, amount)
	return nil
}

func (t *InMemoryToken) credit(owner common.Address, amount *big.Int) {
	if bal, ok := t.balances[owner]; ok {
		bal.Add(bal, amount)
		return
	}
	t.balances[owner] = new(big.Int).Set(amount)
}

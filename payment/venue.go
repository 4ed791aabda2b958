package payment

import (
	"context"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/openvend/openvend/types"
)

// ConstantRateVenue is an in-process swap venue trading two token ledgers
// at a fixed rate. It implements pricing.SwapVenue for examples and tests;
// a production deployment points the engine at a real liquidity venue
// instead.
type ConstantRateVenue struct {
	mu      sync.RWMutex
	rates   map[[2]common.Address]*big.Int
	ledgers map[common.Address]Token
	pool    common.Address
	now     func() time.Time
}

func NewConstantRateVenue(pool common.Address) *ConstantRateVenue {
	return &ConstantRateVenue{
		rates:   make(map[[2]common.Address]*big.Int),
		ledgers: make(map[common.Address]Token),
		pool:    pool,
		now:     time.Now,
	}
}

// SetRate fixes the from→to rate, scaled by 1e18.
func (v *ConstantRateVenue) SetRate(from, to common.Address, rate *big.Int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.rates[[2]common.Address{from, to}] = new(big.Int).Set(rate)
}

// AddLedger registers the ledger backing a token address.
func (v *ConstantRateVenue) AddLedger(token common.Address, ledger Token) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.ledgers[token] = ledger
}

// SetClock overrides the deadline clock. Tests only.
func (v *ConstantRateVenue) SetClock(now func() time.Time) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.now = now
}

func (v *ConstantRateVenue) QuoteRate(_ context.Context, from, to common.Address) (*big.Int, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if rate, ok := v.rates[[2]common.Address{from, to}]; ok {
		return new(big.Int).Set(rate), nil
	}
	return new(big.Int), nil
}

// SwapToExact spends the payer's `from` balance to produce exactly
// amountOut of `to`. The input charged is amountOut × 1e18 / rate rounded
// up; the deadline and maxIn bounds are enforced before any movement.
func (v *ConstantRateVenue) SwapToExact(
	ctx context.Context,
	payer common.Address,
	from, to common.Address,
	amountOut, maxIn *big.Int,
	deadline time.Time,
) (*big.Int, error) {
	v.mu.RLock()
	rate := v.rates[[2]common.Address{from, to}]
	fromLedger := v.ledgers[from]
	toLedger := v.ledgers[to]
	now := v.now
	v.mu.RUnlock()

	if !deadline.IsZero() && now().After(deadline) {
		return nil, &types.Error{Code: types.ErrDeadlineExceeded, Message: "swap deadline exceeded"}
	}
	if rate == nil || rate.Sign() <= 0 {
		return nil, &types.Error{Code: types.ErrUndefinedRate, Message: "no swap rate defined for pair"}
	}
	if fromLedger == nil || toLedger == nil {
		return nil, &types.Error{Code: types.ErrConfigError, Message: "venue has no ledger for pair"}
	}

	// ceiling division: the market charges the input up
	amountIn := new(big.Int).Mul(amountOut, types.RateScale)
	amountIn.Add(amountIn, new(big.Int).Sub(rate, big.NewInt(1)))
	amountIn.Quo(amountIn, rate)

	if maxIn != nil && amountIn.Cmp(maxIn) > 0 {
		return nil, &types.Error{
			Code:    types.ErrExcessiveInputAmount,
			Message: "required input exceeds caller maximum",
			Data:    map[string]string{"required": amountIn.String(), "max": maxIn.String()},
		}
	}

	if err := fromLedger.Transfer(payer, v.pool, amountIn); err != nil {
		return nil, err
	}
	if err := toLedger.Transfer(v.pool, payer, amountOut); err != nil {
		_ = fromLedger.Transfer(v.pool, payer, amountIn)
		return nil, err
	}
	return amountIn, nil
}

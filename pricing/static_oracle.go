package pricing

import (
	"context"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// StaticOracle is a RateOracle backed by an in-memory pair table. It stands
// in for the external oracle in examples and tests; missing pairs report a
// zero rate, which strategies reject as undefined.
type StaticOracle struct {
	mu    sync.RWMutex
	rates map[[2]common.Address]*big.Int
}

func NewStaticOracle() *StaticOracle {
	return &StaticOracle{rates: make(map[[2]common.Address]*big.Int)}
}

// SetRate fixes the from→to rate, scaled by 1e18.
func (o *StaticOracle) SetRate(from, to common.Address, rate *big.Int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.rates[[2]common.Address{from, to}] = new(big.Int).Set(rate)
}

func (o *StaticOracle) ConversionRate(_ context.Context, from, to common.Address) (*big.Int, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if rate, ok := o.rates[[2]common.Address{from, to}]; ok {
		return new(big.Int).Set(rate), nil
	}
	return new(big.Int), nil
}

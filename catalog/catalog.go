// Package catalog owns the SKU registry: per-SKU supply ledgers, price
// tables, pricing/delivery kinds, and notification targets. The registry is
// passed explicitly into lifecycle operations; there is no ambient state.
package catalog

import (
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/openvend/openvend/supply"
	"github.com/openvend/openvend/types"
)

// Catalog is an owned arena of SKUs keyed by id.
type Catalog struct {
	mu       sync.RWMutex
	capacity int
	skus     map[common.Hash]*Sku
}

// New creates an empty catalog. capacity caps the number of supported
// payment tokens per SKU; 0 selects types.DefaultPriceTableCapacity.
func New(capacity int) *Catalog {
	if capacity <= 0 {
		capacity = types.DefaultPriceTableCapacity
	}
	return &Catalog{capacity: capacity, skus: make(map[common.Hash]*Sku)}
}

// CreateSku registers a new SKU and builds its supply ledger. A SKU is
// created once and never deleted; supply may only grow additively later.
func (c *Catalog) CreateSku(cfg *types.SkuConfig) error {
	if cfg.ID == (common.Hash{}) {
		return &types.Error{Code: types.ErrConfigError, Message: "sku id is required"}
	}
	if cfg.MaxQuantityPerPurchase == 0 {
		return &types.Error{Code: types.ErrConfigError, Message: "maxQuantityPerPurchase must be greater than 0"}
	}
	if cfg.Pricing != types.PricingFixed && cfg.ReferenceToken == (common.Address{}) {
		return &types.Error{Code: types.ErrConfigError, Message: fmt.Sprintf("%s pricing requires a reference token", cfg.Pricing)}
	}

	ledger, err := buildLedger(cfg)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.skus[cfg.ID]; exists {
		return &types.Error{Code: types.ErrConfigError, Message: "sku already exists", Data: cfg.ID.Hex()}
	}
	c.skus[cfg.ID] = &Sku{
		id:             cfg.ID,
		maxPerPurchase: cfg.MaxQuantityPerPurchase,
		pricing:        cfg.Pricing,
		delivery:       cfg.Delivery,
		referenceToken: cfg.ReferenceToken,
		prices:         make(map[common.Address]*big.Int),
		ledger:         ledger,
	}
	return nil
}

func buildLedger(cfg *types.SkuConfig) (supply.Ledger, error) {
	switch cfg.Delivery {
	case types.DeliveryCounter:
		return supply.NewCounter(cfg.TotalSupply), nil
	case types.DeliveryFixedOrder:
		return supply.NewFixedOrderList(cfg.Items, cfg.TotalSupply)
	case types.DeliveryLot:
		return supply.NewLot(cfg.Items, cfg.FungiblePerUnit)
	default:
		return nil, &types.Error{Code: types.ErrConfigError, Message: fmt.Sprintf("unknown delivery kind %q", cfg.Delivery)}
	}
}

// Sku looks up a SKU by id.
func (c *Catalog) Sku(id common.Hash) (*Sku, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	sku, ok := c.skus[id]
	if !ok {
		return nil, &types.Error{Code: types.ErrUnknownSku, Message: "unknown sku", Data: id.Hex()}
	}
	return sku, nil
}

// SetPrices updates the price table pairwise: a price of 0 removes the
// token from the supported set, a non-zero price adds or updates it. The
// whole update is applied atomically or not at all. A table that would
// exceed the capacity fails PRICE_TABLE_TOO_LARGE; a SKU left with
// non-zero prices but no reference-currency entry fails
// MISSING_REFERENCE_TOKEN, so every conversion-based price stays
// expressible.
func (c *Catalog) SetPrices(id common.Hash, tokens []common.Address, prices []*big.Int) error {
	if len(tokens) != len(prices) {
		return &types.Error{Code: types.ErrConfigError, Message: "tokens and prices length mismatch"}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	sku, ok := c.skus[id]
	if !ok {
		return &types.Error{Code: types.ErrUnknownSku, Message: "unknown sku", Data: id.Hex()}
	}

	next := make(map[common.Address]*big.Int, len(sku.prices)+len(tokens))
	for token, price := range sku.prices {
		next[token] = price
	}
	for i, token := range tokens {
		if token == (common.Address{}) {
			return &types.Error{Code: types.ErrInvalidToken, Message: "token must not be the zero address"}
		}
		price := prices[i]
		if price == nil || price.Sign() == 0 {
			delete(next, token)
			continue
		}
		if price.Sign() < 0 {
			return &types.Error{Code: types.ErrConfigError, Message: "unit price must not be negative"}
		}
		// swap settlement swaps an external token into the reference
		// currency; native currency has no port into a venue
		if sku.pricing == types.PricingSwap && types.IsNative(token) && types.IsAskStrategy(price) {
			return &types.Error{
				Code:    types.ErrConfigError,
				Message: "swap-priced sku cannot defer native currency to the venue; use a concrete native price",
			}
		}
		next[token] = new(big.Int).Set(price)
	}

	if len(next) > c.capacity {
		return &types.Error{
			Code:    types.ErrPriceTableTooLarge,
			Message: "supported token count exceeds price table capacity",
			Data:    map[string]int{"capacity": c.capacity, "size": len(next)},
		}
	}
	if sku.referenceToken != (common.Address{}) && len(next) > 0 {
		if _, ok := next[sku.referenceToken]; !ok {
			return &types.Error{
				Code:    types.ErrMissingReferenceToken,
				Message: "price table would lose its reference-currency entry",
			}
		}
	}

	sku.setPrices(next)
	return nil
}

// SetNotificationTarget attaches (or clears, with nil) the target invoked
// on every successful purchase of the SKU.
func (c *Catalog) SetNotificationTarget(id common.Hash, target types.NotificationTarget) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	sku, ok := c.skus[id]
	if !ok {
		return &types.Error{Code: types.ErrUnknownSku, Message: "unknown sku", Data: id.Hex()}
	}
	sku.setNotification(target)
	return nil
}

// GrowSupply adds supply to a counter-backed SKU.
func (c *Catalog) GrowSupply(id common.Hash, additional uint64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	sku, ok := c.skus[id]
	if !ok {
		return &types.Error{Code: types.ErrUnknownSku, Message: "unknown sku", Data: id.Hex()}
	}
	grower, ok := sku.ledger.(supply.Grower)
	if !ok {
		return &types.Error{Code: types.ErrInvalidLot, Message: fmt.Sprintf("%s delivery does not grow by count", sku.delivery)}
	}
	return grower.Grow(additional)
}

// AppendItems grows a list-backed SKU with more non-fungible identifiers.
func (c *Catalog) AppendItems(id common.Hash, ids []common.Hash) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	sku, ok := c.skus[id]
	if !ok {
		return &types.Error{Code: types.ErrUnknownSku, Message: "unknown sku", Data: id.Hex()}
	}
	appender, ok := sku.ledger.(supply.Appender)
	if !ok {
		return &types.Error{Code: types.ErrInvalidLot, Message: fmt.Sprintf("%s delivery has no identifier list", sku.delivery)}
	}
	return appender.Append(ids)
}

// GetInfo returns the read-only view of a SKU.
func (c *Catalog) GetInfo(id common.Hash) (*types.SkuInfo, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	sku, ok := c.skus[id]
	if !ok {
		return nil, &types.Error{Code: types.ErrUnknownSku, Message: "unknown sku", Data: id.Hex()}
	}

	tokens := make([]common.Address, 0, len(sku.prices))
	for token := range sku.prices {
		tokens = append(tokens, token)
	}
	sortAddresses(tokens)
	prices := make([]*big.Int, len(tokens))
	for i, token := range tokens {
		prices[i] = new(big.Int).Set(sku.prices[token])
	}

	return &types.SkuInfo{
		ID:                     sku.id,
		TotalSupply:            sku.ledger.Total(),
		RemainingSupply:        sku.ledger.Available(),
		MaxQuantityPerPurchase: sku.maxPerPurchase,
		Pricing:                sku.pricing,
		Delivery:               sku.delivery,
		HasNotificationTarget:  sku.notification != nil,
		Tokens:                 tokens,
		Prices:                 prices,
	}, nil
}

func sortAddresses(addrs []common.Address) {
	for i := 1; i < len(addrs); i++ {
		for j := i; j > 0 && addrs[j].Cmp(addrs[j-1]) < 0; j-- {
			addrs[j], addrs[j-1] = addrs[j-1], addrs[j]
		}
	}
}

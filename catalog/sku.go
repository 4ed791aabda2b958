package catalog

import (
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/openvend/openvend/supply"
	"github.com/openvend/openvend/types"
)

// Sku is one catalog entry. Pricing and delivery kinds are resolved once at
// creation; the lifecycle dispatches on them instead of comparing sentinel
// prices. The id, kinds, reference token and ledger are immutable after
// creation; the price table and notification target may be updated by
// catalog admin calls concurrently with purchases, so those fields carry
// their own lock.
type Sku struct {
	id             common.Hash
	maxPerPurchase uint64
	pricing        types.PricingKind
	delivery       types.DeliveryKind
	referenceToken common.Address
	ledger         supply.Ledger

	mu           sync.RWMutex
	notification types.NotificationTarget
	prices       map[common.Address]*big.Int
}

func (s *Sku) ID() common.Hash                 { return s.id }
func (s *Sku) MaxQuantityPerPurchase() uint64  { return s.maxPerPurchase }
func (s *Sku) Pricing() types.PricingKind      { return s.pricing }
func (s *Sku) Delivery() types.DeliveryKind    { return s.delivery }
func (s *Sku) ReferenceToken() common.Address  { return s.referenceToken }
func (s *Sku) Ledger() supply.Ledger           { return s.ledger }

// NotificationTarget returns the attached target, or nil.
func (s *Sku) NotificationTarget() types.NotificationTarget {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.notification
}

// UnitPrice returns the table entry for token; ok is false when the token
// is unsupported.
func (s *Sku) UnitPrice(token common.Address) (*big.Int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.priceOf(token)
}

// ReferencePrice returns the SKU's canonical price in its reference
// currency.
func (s *Sku) ReferencePrice() (*big.Int, bool) {
	if s.referenceToken == (common.Address{}) {
		return nil, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.priceOf(s.referenceToken)
}

func (s *Sku) priceOf(token common.Address) (*big.Int, bool) {
	price, ok := s.prices[token]
	if !ok {
		return nil, false
	}
	return new(big.Int).Set(price), true
}

func (s *Sku) setPrices(next map[common.Address]*big.Int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prices = next
}

func (s *Sku) setNotification(target types.NotificationTarget) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notification = target
}

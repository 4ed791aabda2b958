// Package types holds the data model of the purchasing engine: SKUs,
// purchase requests, quotes, receipts and the stable error taxonomy.
package types

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
)

// PricingKind selects the pricing strategy a SKU resolves to. The choice is
// an explicit tagged variant fixed at SKU creation, never inferred from
// sentinel comparisons inside the lifecycle.
type PricingKind string

const (
	PricingFixed  PricingKind = "fixed"
	PricingOracle PricingKind = "oracle"
	PricingSwap   PricingKind = "swap"
)

// DeliveryKind selects the supply ledger variant backing a SKU.
type DeliveryKind string

const (
	DeliveryCounter    DeliveryKind = "counter"
	DeliveryFixedOrder DeliveryKind = "fixed-order"
	DeliveryLot        DeliveryKind = "lot"
)

// NotificationTarget is invoked synchronously after a successful purchase.
// It must return NotificationAck or the whole purchase unwinds. The
// callback runs inside the purchase's atomic boundary, with the engine's
// purchase lock held: the target must not call back into Estimate or
// PurchaseFor, or the invocation deadlocks.
type NotificationTarget interface {
	OnPurchaseNotificationReceived(ctx context.Context, record *PurchaseRecord) ([4]byte, error)
}

// Finalizer is an extension point that runs after delivery and before
// notification. The default is a no-op; a failing finalizer aborts the
// purchase.
type Finalizer interface {
	Finalize(ctx context.Context, record *PurchaseRecord) error
}

// SkuConfig describes a SKU at creation time. Supply is fixed here (or
// grown additively before sale start); a SKU is never deleted.
type SkuConfig struct {
	ID                     common.Hash  `json:"id" validate:"required"`
	TotalSupply            uint64       `json:"totalSupply"`
	MaxQuantityPerPurchase uint64       `json:"maxQuantityPerPurchase" validate:"required,gt=0"`
	Pricing                PricingKind  `json:"pricing" validate:"required,oneof=fixed oracle swap"`
	Delivery               DeliveryKind `json:"delivery" validate:"required,oneof=counter fixed-order lot"`

	// ReferenceToken is the currency the canonical price is expressed in.
	// Required for oracle and swap pricing.
	ReferenceToken common.Address `json:"referenceToken,omitempty"`

	// Items seeds a fixed-order or lot ledger with non-fungible identifiers.
	Items []common.Hash `json:"items,omitempty"`

	// FungiblePerUnit is the fungible amount delivered per unit for lot SKUs.
	FungiblePerUnit *big.Int `json:"fungiblePerUnit,omitempty"`
}

// SkuInfo is the read-only view returned by GetInfo.
type SkuInfo struct {
	ID                     common.Hash      `json:"id"`
	TotalSupply            uint64           `json:"totalSupply"`
	RemainingSupply        uint64           `json:"remainingSupply"`
	MaxQuantityPerPurchase uint64           `json:"maxQuantityPerPurchase"`
	Pricing                PricingKind      `json:"pricing"`
	Delivery               DeliveryKind     `json:"delivery"`
	HasNotificationTarget  bool             `json:"hasNotificationTarget"`
	Tokens                 []common.Address `json:"tokens"`
	Prices                 []*big.Int       `json:"prices"`
}

// PurchaseRequest is one purchase of one SKU in one token. It is immutable
// once constructed and consumed once per lifecycle invocation.
type PurchaseRequest struct {
	Purchaser common.Address `json:"purchaser" validate:"required"`
	Recipient common.Address `json:"recipient" validate:"required"`
	Token     common.Address `json:"token" validate:"required"`
	SkuID     common.Hash    `json:"skuId" validate:"required"`
	Quantity  uint64         `json:"quantity" validate:"required,gt=0"`
	UserData  []byte         `json:"userData,omitempty"`

	// AttachedNative is the native currency accompanying the call. Only
	// native-currency purchases may carry it; the handler refunds any excess
	// over the total price.
	AttachedNative *big.Int `json:"attachedNative,omitempty"`
}

// Validate checks the request's shape against the error taxonomy. Semantic
// checks (supply, supported token) happen against live catalog state.
func (r *PurchaseRequest) Validate() error {
	if r.Recipient == (common.Address{}) {
		return &Error{Code: ErrInvalidRecipient, Message: "recipient must not be the zero address"}
	}
	if r.Token == (common.Address{}) {
		return &Error{Code: ErrInvalidToken, Message: "token must not be the zero address"}
	}
	if r.Quantity == 0 {
		return &Error{Code: ErrInvalidQuantity, Message: "quantity must be greater than 0"}
	}
	return nil
}

// PriceQuote is the result of the pricing stage: a total price in the
// request's token plus opaque words recording which rate/strategy was used.
// Produced fresh per request, never cached.
type PriceQuote struct {
	TotalPrice  *big.Int      `json:"totalPrice"`
	PricingData []common.Hash `json:"pricingData,omitempty"`
}

// PaymentReceipt describes the amounts actually moved by a payment handler.
// The lifecycle never reinterprets the words; they feed the notification.
type PaymentReceipt struct {
	Words []common.Hash `json:"words,omitempty"`
}

// DeliveryReceipt describes the goods actually handed over by a supply
// ledger: token identifiers and/or fungible amounts, as opaque words.
type DeliveryReceipt struct {
	Words []common.Hash `json:"words,omitempty"`
}

// PurchaseRecord is the externally observable record of one committed
// purchase, passed to the notification target with full context.
type PurchaseRecord struct {
	ID           uuid.UUID      `json:"id"`
	Purchaser    common.Address `json:"purchaser"`
	Recipient    common.Address `json:"recipient"`
	Token        common.Address `json:"token"`
	SkuID        common.Hash    `json:"skuId"`
	Quantity     uint64         `json:"quantity"`
	UserData     []byte         `json:"userData,omitempty"`
	TotalPrice   *big.Int       `json:"totalPrice"`
	PricingData  []common.Hash  `json:"pricingData,omitempty"`
	PaymentData  []common.Hash  `json:"paymentData,omitempty"`
	DeliveryData []common.Hash  `json:"deliveryData,omitempty"`
	Timestamp    time.Time      `json:"timestamp"`
}

// Config contains global configuration for the engine.
type Config struct {
	PayoutDestination common.Address `json:"payoutDestination" validate:"required"`

	// Operator is the engine's own account: the spender purchasers approve
	// for token pulls and the escrow native payments pass through.
	Operator common.Address `json:"operator" validate:"required"`

	LogLevel      string `json:"logLevel,omitempty"`
	EnableMetrics bool   `json:"enableMetrics,omitempty"`

	// PriceTableCapacity caps the number of supported tokens per SKU.
	// Zero selects DefaultPriceTableCapacity.
	PriceTableCapacity int `json:"priceTableCapacity,omitempty"`
}

// DefaultPriceTableCapacity is the fixed price-table capacity used when the
// config does not override it.
const DefaultPriceTableCapacity = 16

// Validate checks that the Config contains all required fields.
func (c *Config) Validate() error {
	if c.PayoutDestination == (common.Address{}) {
		return &Error{Code: ErrConfigError, Message: "payoutDestination is required"}
	}
	if c.Operator == (common.Address{}) {
		return &Error{Code: ErrConfigError, Message: "operator is required"}
	}
	if c.PriceTableCapacity < 0 {
		return &Error{Code: ErrConfigError, Message: fmt.Sprintf("priceTableCapacity must not be negative, got %d", c.PriceTableCapacity)}
	}
	return nil
}

// Capacity returns the effective price-table capacity.
func (c *Config) Capacity() int {
	if c.PriceTableCapacity > 0 {
		return c.PriceTableCapacity
	}
	return DefaultPriceTableCapacity
}

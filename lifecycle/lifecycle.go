// Package lifecycle orchestrates one purchase as an indivisible unit of
// work: validate → price → pay → deliver → finalize → notify. Internal
// bookkeeping (the supply decrement) commits before any external transfer
// runs; every mutation is journaled and unwinds on failure.
package lifecycle

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"

	"github.com/openvend/openvend/catalog"
	"github.com/openvend/openvend/logger"
	"github.com/openvend/openvend/metrics"
	"github.com/openvend/openvend/payment"
	"github.com/openvend/openvend/pricing"
	"github.com/openvend/openvend/types"
)

// Lifecycle runs purchases against a catalog. Invocations are serialized:
// one purchase mutates the shared counters at a time, and supply is always
// re-validated against live state, never against a cached quote.
type Lifecycle struct {
	mu      sync.Mutex
	catalog *catalog.Catalog

	strategies    map[types.PricingKind]pricing.Strategy
	nativeHandler payment.Handler
	tokenHandlers map[common.Address]payment.Handler
	swapHandlers  map[common.Address]payment.Handler

	finalizer types.Finalizer
	log       logger.Logger
	metrics   metrics.Recorder
	clock     func() time.Time

	records []*types.PurchaseRecord
}

func New(cat *catalog.Catalog, log logger.Logger, rec metrics.Recorder, clock func() time.Time) *Lifecycle {
	if clock == nil {
		clock = time.Now
	}
	return &Lifecycle{
		catalog:       cat,
		strategies:    map[types.PricingKind]pricing.Strategy{types.PricingFixed: pricing.NewFixed()},
		tokenHandlers: make(map[common.Address]payment.Handler),
		swapHandlers:  make(map[common.Address]payment.Handler),
		log:           log,
		metrics:       rec,
		clock:         clock,
	}
}

// SetStrategy attaches the pricing strategy for a kind.
func (l *Lifecycle) SetStrategy(kind types.PricingKind, s pricing.Strategy) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.strategies[kind] = s
}

// SetNativeHandler attaches the native-currency payment handler.
func (l *Lifecycle) SetNativeHandler(h payment.Handler) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.nativeHandler = h
}

// SetTokenHandler attaches the payment handler for an external token.
func (l *Lifecycle) SetTokenHandler(token common.Address, h payment.Handler) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.tokenHandlers[token] = h
}

// SetSwapHandler attaches the swap-forwarding handler used when a SKU's
// price is swap-derived and paid in the given token.
func (l *Lifecycle) SetSwapHandler(token common.Address, h payment.Handler) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.swapHandlers[token] = h
}

// SetFinalizer attaches the bookkeeping hook that runs after delivery and
// before notification. nil restores the no-op default.
func (l *Lifecycle) SetFinalizer(f types.Finalizer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.finalizer = f
}

// Estimate runs validation and pricing only. It is pure and repeatable;
// the quote can go stale, so PurchaseFor re-validates everything.
func (l *Lifecycle) Estimate(ctx context.Context, req *types.PurchaseRequest) (*types.PriceQuote, error) {
	start := l.clock()
	l.mu.Lock()
	defer l.mu.Unlock()

	sku, err := l.validate(req)
	if err != nil {
		return nil, err
	}
	unit, _ := sku.UnitPrice(req.Token)
	kind := types.PricingFixed
	if types.IsAskStrategy(unit) {
		kind = sku.Pricing()
	}
	quote, err := l.price(ctx, sku, req, kind, unit)
	l.metrics.ObserveLatency("estimate", l.clock().Sub(start), map[string]string{"token": req.Token.Hex()})
	return quote, err
}

// PurchaseFor runs all six stages and returns the committed purchase
// record. Any failure unwinds every prior mutation of this invocation.
func (l *Lifecycle) PurchaseFor(ctx context.Context, req *types.PurchaseRequest) (*types.PurchaseRecord, error) {
	start := l.clock()
	l.mu.Lock()
	defer l.mu.Unlock()

	record, err := l.purchase(ctx, req)
	token := map[string]string{"token": req.Token.Hex()}
	if err != nil {
		l.metrics.IncCounter("purchase_failed", token)
		l.log.Warn("purchase failed", map[string]any{
			"sku":   req.SkuID.Hex(),
			"code":  types.CodeOf(err),
			"error": err.Error(),
		})
		return nil, err
	}
	l.metrics.IncCounter("purchase_succeeded", token)
	l.metrics.ObserveLatency("purchase_for", l.clock().Sub(start), token)
	l.log.Info("purchase completed", map[string]any{
		"record":    record.ID.String(),
		"sku":       req.SkuID.Hex(),
		"quantity":  req.Quantity,
		"token":     req.Token.Hex(),
		"total":     record.TotalPrice.String(),
		"recipient": req.Recipient.Hex(),
	})
	return record, nil
}

func (l *Lifecycle) purchase(ctx context.Context, req *types.PurchaseRequest) (*types.PurchaseRecord, error) {
	// stage 1: validate, against live state
	sku, err := l.validate(req)
	if err != nil {
		return nil, err
	}

	// A concrete table entry is charged as a fixed price; the
	// ask-the-strategy sentinel routes pricing and payment to the SKU's
	// strategy kind. This is the single dispatch point on the sentinel.
	unit, _ := sku.UnitPrice(req.Token)
	kind := types.PricingFixed
	if types.IsAskStrategy(unit) {
		kind = sku.Pricing()
	}

	// stage 2: price, fresh per request
	quote, err := l.price(ctx, sku, req, kind, unit)
	if err != nil {
		return nil, err
	}

	handler, err := l.resolveHandler(kind, req.Token)
	if err != nil {
		return nil, err
	}

	journal := newJournal(l.log)

	// stage 4 bookkeeping runs before the external payment call: all
	// internal state settles before anything can re-enter
	delivery, deliveryUndo, err := sku.Ledger().Deliver(req.Recipient, req.Quantity)
	if err != nil {
		return nil, err
	}
	journal.add(func() error { deliveryUndo(); return nil })

	// stage 3: payment, the external side effect
	order := &payment.Order{
		Purchaser:      req.Purchaser,
		Token:          req.Token,
		Total:          quote.TotalPrice,
		ReferenceToken: sku.ReferenceToken(),
		Attached:       req.AttachedNative,
		UserData:       req.UserData,
	}
	if kind == types.PricingSwap {
		refPrice, ok := sku.ReferencePrice()
		if !ok {
			journal.unwind()
			return nil, &types.Error{Code: types.ErrMissingReferenceToken, Message: "sku has no reference-currency entry"}
		}
		order.ReferenceTotal = new(big.Int).Mul(refPrice, new(big.Int).SetUint64(req.Quantity))
	}
	payReceipt, payUndo, err := handler.Collect(ctx, order)
	if err != nil {
		journal.unwind()
		return nil, err
	}
	journal.add(payUndo)

	record := &types.PurchaseRecord{
		ID:           uuid.New(),
		Purchaser:    req.Purchaser,
		Recipient:    req.Recipient,
		Token:        req.Token,
		SkuID:        req.SkuID,
		Quantity:     req.Quantity,
		UserData:     req.UserData,
		TotalPrice:   quote.TotalPrice,
		PricingData:  quote.PricingData,
		PaymentData:  payReceipt.Words,
		DeliveryData: delivery.Words,
		Timestamp:    l.clock(),
	}

	// stage 5: finalize hook
	if l.finalizer != nil {
		if err := l.finalizer.Finalize(ctx, record); err != nil {
			journal.unwind()
			return nil, err
		}
	}

	// stage 6: notify, inside the same atomic boundary
	if target := sku.NotificationTarget(); target != nil {
		ack, err := target.OnPurchaseNotificationReceived(ctx, record)
		if err != nil || ack != types.NotificationAck {
			journal.unwind()
			msg := "notification target did not acknowledge"
			if err != nil {
				msg = fmt.Sprintf("notification target failed: %v", err)
			}
			return nil, &types.Error{Code: types.ErrNotificationRejected, Message: msg}
		}
	}

	l.records = append(l.records, record)
	return record, nil
}

// validate is the first stage: fail fast with a specific taxonomy error
// and zero mutation.
func (l *Lifecycle) validate(req *types.PurchaseRequest) (*catalog.Sku, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	sku, err := l.catalog.Sku(req.SkuID)
	if err != nil {
		return nil, err
	}
	if req.Quantity > sku.MaxQuantityPerPurchase() {
		return nil, &types.Error{
			Code:    types.ErrQuantityOverMax,
			Message: "quantity exceeds per-purchase maximum",
			Data:    map[string]uint64{"quantity": req.Quantity, "max": sku.MaxQuantityPerPurchase()},
		}
	}
	if available := sku.Ledger().Available(); req.Quantity > available {
		return nil, &types.Error{
			Code:    types.ErrInsufficientSupply,
			Message: "insufficient supply",
			Data:    map[string]uint64{"requested": req.Quantity, "available": available},
		}
	}
	if _, ok := sku.UnitPrice(req.Token); !ok {
		return nil, &types.Error{Code: types.ErrUnsupportedToken, Message: "token not supported by sku", Data: req.Token.Hex()}
	}
	return sku, nil
}

// price is the second stage, pure.
func (l *Lifecycle) price(ctx context.Context, sku *catalog.Sku, req *types.PurchaseRequest, kind types.PricingKind, unit *big.Int) (*types.PriceQuote, error) {
	if kind == types.PricingFixed {
		if types.IsAskStrategy(unit) {
			return nil, &types.Error{Code: types.ErrConfigError, Message: "fixed-priced sku carries the ask-strategy sentinel"}
		}
		return l.strategies[types.PricingFixed].Quote(ctx, pricing.Query{
			ReferencePrice: unit,
			Token:          req.Token,
			Quantity:       req.Quantity,
			UserData:       req.UserData,
		})
	}

	strategy, ok := l.strategies[kind]
	if !ok {
		return nil, &types.Error{Code: types.ErrConfigError, Message: fmt.Sprintf("no %s pricing strategy configured", kind)}
	}
	refPrice, ok := sku.ReferencePrice()
	if !ok {
		return nil, &types.Error{Code: types.ErrMissingReferenceToken, Message: "sku has no reference-currency entry"}
	}
	return strategy.Quote(ctx, pricing.Query{
		ReferenceToken: sku.ReferenceToken(),
		ReferencePrice: refPrice,
		Token:          req.Token,
		Quantity:       req.Quantity,
		UserData:       req.UserData,
	})
}

func (l *Lifecycle) resolveHandler(kind types.PricingKind, token common.Address) (payment.Handler, error) {
	if kind == types.PricingSwap {
		if types.IsNative(token) {
			return nil, &types.Error{Code: types.ErrConfigError, Message: "swap settlement cannot source native currency"}
		}
		if h, ok := l.swapHandlers[token]; ok {
			return h, nil
		}
		return nil, &types.Error{Code: types.ErrConfigError, Message: "no swap handler configured for token", Data: token.Hex()}
	}
	if types.IsNative(token) {
		if l.nativeHandler == nil {
			return nil, &types.Error{Code: types.ErrConfigError, Message: "no native-currency handler configured"}
		}
		return l.nativeHandler, nil
	}
	if h, ok := l.tokenHandlers[token]; ok {
		return h, nil
	}
	return nil, &types.Error{Code: types.ErrConfigError, Message: "no payment handler configured for token", Data: token.Hex()}
}

// Records returns a copy of the purchase records emitted so far.
func (l *Lifecycle) Records() []*types.PurchaseRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]*types.PurchaseRecord, len(l.records))
	copy(out, l.records)
	return out
}

// DrainRecords returns the emitted records and clears the sink.
func (l *Lifecycle) DrainRecords() []*types.PurchaseRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := l.records
	l.records = nil
	return out
}

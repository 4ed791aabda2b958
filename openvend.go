// Package openvend is a transactional purchasing engine: a catalog of
// priced SKUs, pluggable pricing strategies and payment media, and a
// purchase lifecycle that commits fully or not at all.
package openvend

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/openvend/openvend/catalog"
	"github.com/openvend/openvend/lifecycle"
	"github.com/openvend/openvend/logger"
	"github.com/openvend/openvend/metrics"
	"github.com/openvend/openvend/payment"
	"github.com/openvend/openvend/pricing"
	"github.com/openvend/openvend/supply"
	"github.com/openvend/openvend/types"
)

// Vendor is the main struct wiring the catalog, the pricing strategies,
// the payment handlers and the purchase lifecycle together.
type Vendor struct {
	config    *types.Config
	catalog   *catalog.Catalog
	lifecycle *lifecycle.Lifecycle

	log     logger.Logger
	metrics metrics.Recorder
	clock   func() time.Time

	tokens map[common.Address]payment.Token
	venue  pricing.SwapVenue
}

// New creates a Vendor from the given configuration.
func New(config *types.Config, opts ...Option) (*Vendor, error) {
	if config == nil {
		return nil, &types.Error{Code: types.ErrConfigError, Message: "config is required"}
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	v := &Vendor{
		config: config,
		clock:  time.Now,
		tokens: make(map[common.Address]payment.Token),
	}
	if config.LogLevel != "" {
		v.log = logger.NewZapLogger(config.LogLevel)
	} else {
		v.log = logger.NoopLogger{}
	}
	if config.EnableMetrics {
		v.metrics = metrics.NewPrometheusRecorder()
	} else {
		v.metrics = metrics.NoopRecorder{}
	}
	for _, opt := range opts {
		opt(v)
	}

	v.catalog = catalog.New(config.Capacity())
	v.lifecycle = lifecycle.New(v.catalog, v.log, v.metrics, v.clock)
	return v, nil
}

// UseNativeBank attaches the native-currency port and enables native
// payments. The configured operator account acts as the payment escrow.
func (v *Vendor) UseNativeBank(bank payment.NativeBank) {
	v.lifecycle.SetNativeHandler(payment.NewNative(bank, v.config.PayoutDestination, v.config.Operator))
}

// RegisterToken attaches an external token port and enables payments in it.
// Purchasers approve the configured operator for the pull.
func (v *Vendor) RegisterToken(addr common.Address, port payment.Token) {
	v.tokens[addr] = port
	v.lifecycle.SetTokenHandler(addr, payment.NewERC20(port, v.config.PayoutDestination, v.config.Operator))
}

// RegisterOracle enables oracle-converted pricing.
func (v *Vendor) RegisterOracle(oracle pricing.RateOracle) {
	v.lifecycle.SetStrategy(types.PricingOracle, pricing.NewOracleConverted(oracle))
}

// RegisterSwapVenue enables swap-derived pricing. Pairs still need
// EnableSwapPair before purchases in them can settle.
func (v *Vendor) RegisterSwapVenue(venue pricing.SwapVenue) {
	v.venue = venue
	v.lifecycle.SetStrategy(types.PricingSwap, pricing.NewSwapDerived(venue))
}

// EnableSwapPair wires the swap payment handler for purchases paid in
// `token` against a SKU priced in `reference`. Both token ports must be
// registered, and a venue attached, first.
func (v *Vendor) EnableSwapPair(token, reference common.Address) error {
	if v.venue == nil {
		return &types.Error{Code: types.ErrConfigError, Message: "no swap venue registered"}
	}
	tokenPort, ok := v.tokens[token]
	if !ok {
		return &types.Error{Code: types.ErrConfigError, Message: "token port not registered", Data: token.Hex()}
	}
	refPort, ok := v.tokens[reference]
	if !ok {
		return &types.Error{Code: types.ErrConfigError, Message: "reference token port not registered", Data: reference.Hex()}
	}
	v.lifecycle.SetSwapHandler(token, payment.NewSwap(tokenPort, refPort, v.venue, v.config.PayoutDestination, v.config.Operator))
	return nil
}

// SetFinalizer attaches the bookkeeping hook run after delivery and before
// notification.
func (v *Vendor) SetFinalizer(f types.Finalizer) {
	v.lifecycle.SetFinalizer(f)
}

// CreateSku registers a new SKU.
func (v *Vendor) CreateSku(cfg *types.SkuConfig) error {
	return v.catalog.CreateSku(cfg)
}

// SetPrices updates a SKU's price table pairwise; 0 removes a token.
func (v *Vendor) SetPrices(id common.Hash, tokens []common.Address, prices []*big.Int) error {
	return v.catalog.SetPrices(id, tokens, prices)
}

// SetNotificationTarget attaches the per-SKU purchase notification target.
func (v *Vendor) SetNotificationTarget(id common.Hash, target types.NotificationTarget) error {
	return v.catalog.SetNotificationTarget(id, target)
}

// GrowSupply adds supply to a counter-backed SKU before sale start.
func (v *Vendor) GrowSupply(id common.Hash, additional uint64) error {
	return v.catalog.GrowSupply(id, additional)
}

// AppendItems grows a list-backed SKU with more identifiers.
func (v *Vendor) AppendItems(id common.Hash, ids []common.Hash) error {
	return v.catalog.AppendItems(id, ids)
}

// GetInfo returns the read-only view of a SKU.
func (v *Vendor) GetInfo(id common.Hash) (*types.SkuInfo, error) {
	return v.catalog.GetInfo(id)
}

// Estimate validates and prices a request without side effects. The quote
// can drift for rate-based pricing; PurchaseFor re-validates everything.
func (v *Vendor) Estimate(ctx context.Context, req *types.PurchaseRequest) (*types.PriceQuote, error) {
	return v.lifecycle.Estimate(ctx, req)
}

// PurchaseFor runs the full purchase lifecycle and returns the committed
// record, or an error with no effect at all.
func (v *Vendor) PurchaseFor(ctx context.Context, req *types.PurchaseRequest) (*types.PurchaseRecord, error) {
	return v.lifecycle.PurchaseFor(ctx, req)
}

// PeekLot previews up to count identifiers a lot-backed SKU would deliver
// next, without mutating state.
func (v *Vendor) PeekLot(id common.Hash, count uint64) ([]common.Hash, error) {
	sku, err := v.catalog.Sku(id)
	if err != nil {
		return nil, err
	}
	lot, ok := sku.Ledger().(*supply.Lot)
	if !ok {
		return nil, &types.Error{Code: types.ErrInvalidLot, Message: "sku is not lot-backed", Data: id.Hex()}
	}
	return lot.PeekAvailable(count), nil
}

// Records returns a copy of the purchase records emitted so far.
func (v *Vendor) Records() []*types.PurchaseRecord {
	return v.lifecycle.Records()
}

// DrainRecords returns the emitted records and clears the sink.
func (v *Vendor) DrainRecords() []*types.PurchaseRecord {
	return v.lifecycle.DrainRecords()
}

// Close flushes buffered log output. The engine holds no external
// connections of its own; the injected ports stay owned by the caller.
func (v *Vendor) Close() {
	if s, ok := v.log.(interface{ Sync() error }); ok {
		_ = s.Sync()
	}
}

// Version information
const Version = "1.0.0"

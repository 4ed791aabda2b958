package openvend

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openvend/openvend/payment"
	"github.com/openvend/openvend/pricing"
	"github.com/openvend/openvend/types"
)

var (
	payout    = common.HexToAddress("0x00000000000000000000000000000000000000b1")
	operator  = common.HexToAddress("0x00000000000000000000000000000000000000b2")
	pool      = common.HexToAddress("0x00000000000000000000000000000000000000b3")
	purchaser = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	recipient = common.HexToAddress("0x00000000000000000000000000000000000000a2")
	payTok    = common.HexToAddress("0x00000000000000000000000000000000000000c1")
	refTok    = common.HexToAddress("0x00000000000000000000000000000000000000c2")
	skuID     = common.HexToHash("0x01")
)

func newVendor(t *testing.T) *Vendor {
	t.Helper()
	v, err := New(&types.Config{PayoutDestination: payout, Operator: operator})
	require.NoError(t, err)
	return v
}

func TestNewValidatesConfig(t *testing.T) {
	_, err := New(nil)
	assert.Equal(t, types.ErrConfigError, types.CodeOf(err))

	_, err = New(&types.Config{Operator: operator})
	assert.Equal(t, types.ErrConfigError, types.CodeOf(err))

	_, err = New(&types.Config{PayoutDestination: payout})
	assert.Equal(t, types.ErrConfigError, types.CodeOf(err))
}

func TestNativePurchaseThroughFacade(t *testing.T) {
	v := newVendor(t)
	bank := payment.NewInMemoryBank()
	bank.Mint(purchaser, big.NewInt(1000))
	v.UseNativeBank(bank)

	require.NoError(t, v.CreateSku(&types.SkuConfig{
		ID:                     skuID,
		TotalSupply:            5,
		MaxQuantityPerPurchase: 2,
		Pricing:                types.PricingFixed,
		Delivery:               types.DeliveryCounter,
	}))
	require.NoError(t, v.SetPrices(skuID,
		[]common.Address{types.NativeToken}, []*big.Int{big.NewInt(100)}))

	record, err := v.PurchaseFor(context.Background(), &types.PurchaseRequest{
		Purchaser:      purchaser,
		Recipient:      recipient,
		Token:          types.NativeToken,
		SkuID:          skuID,
		Quantity:       2,
		AttachedNative: big.NewInt(250),
	})
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(200), record.TotalPrice)
	assert.Equal(t, big.NewInt(200), bank.BalanceOf(payout))
	assert.Equal(t, big.NewInt(800), bank.BalanceOf(purchaser))

	info, err := v.GetInfo(skuID)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), info.RemainingSupply)
}

func TestSwapPurchaseEndToEnd(t *testing.T) {
	v := newVendor(t)

	pay := payment.NewInMemoryToken()
	ref := payment.NewInMemoryToken()
	pay.Mint(purchaser, big.NewInt(1000))
	pay.Approve(purchaser, operator, big.NewInt(1000))
	ref.Mint(pool, big.NewInt(1_000_000))

	venue := payment.NewConstantRateVenue(pool)
	venue.AddLedger(payTok, pay)
	venue.AddLedger(refTok, ref)
	// 1 payment token buys 2 reference tokens
	venue.SetRate(payTok, refTok, new(big.Int).Mul(big.NewInt(2), types.RateScale))

	v.RegisterToken(payTok, pay)
	v.RegisterToken(refTok, ref)
	v.RegisterSwapVenue(venue)
	require.NoError(t, v.EnableSwapPair(payTok, refTok))

	require.NoError(t, v.CreateSku(&types.SkuConfig{
		ID:                     skuID,
		TotalSupply:            5,
		MaxQuantityPerPurchase: 2,
		Pricing:                types.PricingSwap,
		Delivery:               types.DeliveryCounter,
		ReferenceToken:         refTok,
	}))
	require.NoError(t, v.SetPrices(skuID,
		[]common.Address{refTok, payTok},
		[]*big.Int{big.NewInt(100), types.AskStrategyPrice},
	))

	req := &types.PurchaseRequest{
		Purchaser: purchaser,
		Recipient: recipient,
		Token:     payTok,
		SkuID:     skuID,
		Quantity:  1,
		UserData:  payment.EncodeSwapParams(big.NewInt(80), time.Now().Add(time.Hour)),
	}

	quote, err := v.Estimate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(50), quote.TotalPrice)

	record, err := v.PurchaseFor(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(50), record.TotalPrice)

	// 50 of the 80-token budget swapped, the rest returned
	assert.Equal(t, big.NewInt(950), pay.BalanceOf(purchaser))
	assert.Equal(t, big.NewInt(100), ref.BalanceOf(payout))
	assert.Equal(t, big.NewInt(0), pay.BalanceOf(operator))
}

func TestEnableSwapPairRequiresPorts(t *testing.T) {
	v := newVendor(t)

	err := v.EnableSwapPair(payTok, refTok)
	assert.Equal(t, types.ErrConfigError, types.CodeOf(err))

	v.RegisterSwapVenue(payment.NewConstantRateVenue(pool))
	err = v.EnableSwapPair(payTok, refTok)
	assert.Equal(t, types.ErrConfigError, types.CodeOf(err))

	v.RegisterToken(payTok, payment.NewInMemoryToken())
	err = v.EnableSwapPair(payTok, refTok)
	assert.Equal(t, types.ErrConfigError, types.CodeOf(err))

	v.RegisterToken(refTok, payment.NewInMemoryToken())
	assert.NoError(t, v.EnableSwapPair(payTok, refTok))
}

func TestPeekLot(t *testing.T) {
	v := newVendor(t)
	items := []common.Hash{common.HexToHash("0x0a"), common.HexToHash("0x0b"), common.HexToHash("0x0c")}
	require.NoError(t, v.CreateSku(&types.SkuConfig{
		ID:                     skuID,
		MaxQuantityPerPurchase: 2,
		Pricing:                types.PricingFixed,
		Delivery:               types.DeliveryLot,
		Items:                  items,
		FungiblePerUnit:        big.NewInt(10),
	}))

	peek, err := v.PeekLot(skuID, 2)
	require.NoError(t, err)
	assert.Equal(t, []common.Hash{items[2], items[1]}, peek)

	counterSku := common.HexToHash("0x02")
	require.NoError(t, v.CreateSku(&types.SkuConfig{
		ID:                     counterSku,
		TotalSupply:            1,
		MaxQuantityPerPurchase: 1,
		Pricing:                types.PricingFixed,
		Delivery:               types.DeliveryCounter,
	}))
	_, err = v.PeekLot(counterSku, 1)
	assert.Equal(t, types.ErrInvalidLot, types.CodeOf(err))
}

func TestOraclePurchaseThroughFacade(t *testing.T) {
	v := newVendor(t)

	tok := payment.NewInMemoryToken()
	tok.Mint(purchaser, big.NewInt(1000))
	tok.Approve(purchaser, operator, big.NewInt(1000))
	v.RegisterToken(payTok, tok)

	oracle := pricing.NewStaticOracle()
	oracle.SetRate(payTok, refTok, new(big.Int).Mul(big.NewInt(4), types.RateScale))
	v.RegisterOracle(oracle)

	require.NoError(t, v.CreateSku(&types.SkuConfig{
		ID:                     skuID,
		TotalSupply:            5,
		MaxQuantityPerPurchase: 5,
		Pricing:                types.PricingOracle,
		Delivery:               types.DeliveryCounter,
		ReferenceToken:         refTok,
	}))
	require.NoError(t, v.SetPrices(skuID,
		[]common.Address{refTok, payTok},
		[]*big.Int{big.NewInt(100), types.AskStrategyPrice},
	))

	record, err := v.PurchaseFor(context.Background(), &types.PurchaseRequest{
		Purchaser: purchaser,
		Recipient: recipient,
		Token:     payTok,
		SkuID:     skuID,
		Quantity:  4,
	})
	require.NoError(t, err)
	// 100 reference per unit, 4 reference per payment token
	assert.Equal(t, big.NewInt(100), record.TotalPrice)
	assert.Equal(t, big.NewInt(100), tok.BalanceOf(payout))
}

func TestRecordsDrain(t *testing.T) {
	v := newVendor(t)
	bank := payment.NewInMemoryBank()
	bank.Mint(purchaser, big.NewInt(1000))
	v.UseNativeBank(bank)

	require.NoError(t, v.CreateSku(&types.SkuConfig{
		ID:                     skuID,
		TotalSupply:            5,
		MaxQuantityPerPurchase: 2,
		Pricing:                types.PricingFixed,
		Delivery:               types.DeliveryCounter,
	}))
	require.NoError(t, v.SetPrices(skuID,
		[]common.Address{types.NativeToken}, []*big.Int{big.NewInt(10)}))

	_, err := v.PurchaseFor(context.Background(), &types.PurchaseRequest{
		Purchaser:      purchaser,
		Recipient:      recipient,
		Token:          types.NativeToken,
		SkuID:          skuID,
		Quantity:       1,
		AttachedNative: big.NewInt(10),
	})
	require.NoError(t, err)

	require.Len(t, v.Records(), 1)
	assert.Len(t, v.DrainRecords(), 1)
	assert.Empty(t, v.Records())
}

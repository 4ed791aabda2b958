package catalog

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openvend/openvend/types"
)

var (
	skuID    = common.HexToHash("0x01")
	refToken = common.HexToAddress("0x0000000000000000000000000000000000000001")
	altToken = common.HexToAddress("0x0000000000000000000000000000000000000002")
)

func newCounterSku(t *testing.T, c *Catalog) {
	t.Helper()
	require.NoError(t, c.CreateSku(&types.SkuConfig{
		ID:                     skuID,
		TotalSupply:            10,
		MaxQuantityPerPurchase: 5,
		Pricing:                types.PricingFixed,
		Delivery:               types.DeliveryCounter,
	}))
}

func TestCreateSkuAndGetInfo(t *testing.T) {
	c := New(0)
	newCounterSku(t, c)

	info, err := c.GetInfo(skuID)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), info.TotalSupply)
	assert.Equal(t, uint64(10), info.RemainingSupply)
	assert.Equal(t, uint64(5), info.MaxQuantityPerPurchase)
	assert.False(t, info.HasNotificationTarget)
	assert.Empty(t, info.Tokens)
}

func TestCreateSkuRejectsDuplicate(t *testing.T) {
	c := New(0)
	newCounterSku(t, c)

	err := c.CreateSku(&types.SkuConfig{
		ID:                     skuID,
		MaxQuantityPerPurchase: 1,
		Pricing:                types.PricingFixed,
		Delivery:               types.DeliveryCounter,
	})
	assert.Equal(t, types.ErrConfigError, types.CodeOf(err))
}

func TestCreateSkuRequiresReferenceTokenForOracle(t *testing.T) {
	c := New(0)
	err := c.CreateSku(&types.SkuConfig{
		ID:                     skuID,
		MaxQuantityPerPurchase: 1,
		Pricing:                types.PricingOracle,
		Delivery:               types.DeliveryCounter,
	})
	assert.Equal(t, types.ErrConfigError, types.CodeOf(err))
}

func TestUnknownSku(t *testing.T) {
	c := New(0)

	_, err := c.GetInfo(skuID)
	assert.Equal(t, types.ErrUnknownSku, types.CodeOf(err))
	_, err = c.Sku(skuID)
	assert.Equal(t, types.ErrUnknownSku, types.CodeOf(err))
	err = c.SetPrices(skuID, nil, nil)
	assert.Equal(t, types.ErrUnknownSku, types.CodeOf(err))
}

func TestSetPricesAddsAndRemoves(t *testing.T) {
	c := New(0)
	newCounterSku(t, c)

	require.NoError(t, c.SetPrices(skuID,
		[]common.Address{refToken, altToken},
		[]*big.Int{big.NewInt(100), big.NewInt(200)},
	))
	info, err := c.GetInfo(skuID)
	require.NoError(t, err)
	assert.Len(t, info.Tokens, 2)

	// a zero price removes the token from the supported set
	require.NoError(t, c.SetPrices(skuID, []common.Address{altToken}, []*big.Int{big.NewInt(0)}))
	info, err = c.GetInfo(skuID)
	require.NoError(t, err)
	assert.Equal(t, []common.Address{refToken}, info.Tokens)
	assert.Equal(t, big.NewInt(100), info.Prices[0])
}

func TestSetPricesCapacity(t *testing.T) {
	c := New(2)
	newCounterSku(t, c)

	tokens := make([]common.Address, 3)
	prices := make([]*big.Int, 3)
	for i := range tokens {
		tokens[i] = common.BigToAddress(big.NewInt(int64(i + 1)))
		prices[i] = big.NewInt(10)
	}
	err := c.SetPrices(skuID, tokens, prices)
	assert.Equal(t, types.ErrPriceTableTooLarge, types.CodeOf(err))

	// nothing of the rejected update applied
	info, err2 := c.GetInfo(skuID)
	require.NoError(t, err2)
	assert.Empty(t, info.Tokens)
}

func TestReferenceTokenCannotBeRemoved(t *testing.T) {
	c := New(0)
	require.NoError(t, c.CreateSku(&types.SkuConfig{
		ID:                     skuID,
		TotalSupply:            10,
		MaxQuantityPerPurchase: 5,
		Pricing:                types.PricingOracle,
		Delivery:               types.DeliveryCounter,
		ReferenceToken:         refToken,
	}))
	require.NoError(t, c.SetPrices(skuID,
		[]common.Address{refToken, altToken},
		[]*big.Int{big.NewInt(100), types.AskStrategyPrice},
	))

	err := c.SetPrices(skuID, []common.Address{refToken}, []*big.Int{big.NewInt(0)})
	assert.Equal(t, types.ErrMissingReferenceToken, types.CodeOf(err))

	// removing everything at once is fine: no non-zero price remains
	require.NoError(t, c.SetPrices(skuID,
		[]common.Address{refToken, altToken},
		[]*big.Int{big.NewInt(0), big.NewInt(0)},
	))
}

func TestSwapSkuRejectsNativeAskEntry(t *testing.T) {
	c := New(0)
	require.NoError(t, c.CreateSku(&types.SkuConfig{
		ID:                     skuID,
		TotalSupply:            10,
		MaxQuantityPerPurchase: 5,
		Pricing:                types.PricingSwap,
		Delivery:               types.DeliveryCounter,
		ReferenceToken:         refToken,
	}))

	// native currency cannot be swapped into the reference currency
	err := c.SetPrices(skuID,
		[]common.Address{refToken, types.NativeToken},
		[]*big.Int{big.NewInt(100), types.AskStrategyPrice},
	)
	assert.Equal(t, types.ErrConfigError, types.CodeOf(err))

	// a concrete native price is fine: it is charged fixed
	require.NoError(t, c.SetPrices(skuID,
		[]common.Address{refToken, types.NativeToken},
		[]*big.Int{big.NewInt(100), big.NewInt(40)},
	))
}

func TestGrowSupply(t *testing.T) {
	c := New(0)
	newCounterSku(t, c)

	require.NoError(t, c.GrowSupply(skuID, 5))
	info, err := c.GetInfo(skuID)
	require.NoError(t, err)
	assert.Equal(t, uint64(15), info.TotalSupply)

	// list growth does not apply to counters
	err = c.AppendItems(skuID, []common.Hash{common.HexToHash("0x0a")})
	assert.Equal(t, types.ErrInvalidLot, types.CodeOf(err))
}

func TestAppendItemsOnFixedOrder(t *testing.T) {
	c := New(0)
	require.NoError(t, c.CreateSku(&types.SkuConfig{
		ID:                     skuID,
		MaxQuantityPerPurchase: 2,
		Pricing:                types.PricingFixed,
		Delivery:               types.DeliveryFixedOrder,
		Items:                  []common.Hash{common.HexToHash("0x0a")},
	}))

	require.NoError(t, c.AppendItems(skuID, []common.Hash{common.HexToHash("0x0b")}))
	info, err := c.GetInfo(skuID)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), info.TotalSupply)

	err = c.GrowSupply(skuID, 1)
	assert.Equal(t, types.ErrInvalidLot, types.CodeOf(err))
}

func TestSetNotificationTarget(t *testing.T) {
	c := New(0)
	newCounterSku(t, c)

	require.NoError(t, c.SetNotificationTarget(skuID, ackTarget{}))
	info, err := c.GetInfo(skuID)
	require.NoError(t, err)
	assert.True(t, info.HasNotificationTarget)
}

type ackTarget struct{}

func (ackTarget) OnPurchaseNotificationReceived(_ context.Context, _ *types.PurchaseRecord) ([4]byte, error) {
	return types.NotificationAck, nil
}

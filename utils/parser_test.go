package utils

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openvend/openvend/types"
)

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig([]byte(`{
		"payoutDestination": "0x00000000000000000000000000000000000000b1",
		"operator": "0x00000000000000000000000000000000000000b2",
		"logLevel": "debug",
		"priceTableCapacity": 4
	}`))
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 4, cfg.Capacity())
}

func TestParseConfigRejectsMissingOperator(t *testing.T) {
	_, err := ParseConfig([]byte(`{
		"payoutDestination": "0x00000000000000000000000000000000000000b1"
	}`))
	assert.Equal(t, types.ErrConfigError, types.CodeOf(err))
}

func TestParseConfigRejectsBadJSON(t *testing.T) {
	_, err := ParseConfig([]byte(`{`))
	assert.Equal(t, types.ErrConfigError, types.CodeOf(err))
}

func TestParseSkuConfig(t *testing.T) {
	cfg, err := ParseSkuConfig([]byte(`{
		"id": "0x0000000000000000000000000000000000000000000000000000000000000001",
		"totalSupply": 10,
		"maxQuantityPerPurchase": 2,
		"pricing": "fixed",
		"delivery": "counter"
	}`))
	require.NoError(t, err)
	assert.Equal(t, uint64(10), cfg.TotalSupply)
	assert.Equal(t, types.PricingFixed, cfg.Pricing)
	assert.Equal(t, types.DeliveryCounter, cfg.Delivery)
}

func TestParsePurchaseRequest(t *testing.T) {
	req, err := ParsePurchaseRequest([]byte(`{
		"purchaser": "0x00000000000000000000000000000000000000a1",
		"recipient": "0x00000000000000000000000000000000000000a2",
		"token": "0x00000000000000000000000000000000000000c1",
		"skuId": "0x0000000000000000000000000000000000000000000000000000000000000001",
		"quantity": 2
	}`))
	require.NoError(t, err)
	assert.Equal(t, uint64(2), req.Quantity)
}

func TestParsePurchaseRequestValidates(t *testing.T) {
	_, err := ParsePurchaseRequest([]byte(`{
		"purchaser": "0x00000000000000000000000000000000000000a1",
		"recipient": "0x00000000000000000000000000000000000000a2",
		"token": "0x00000000000000000000000000000000000000c1",
		"skuId": "0x0000000000000000000000000000000000000000000000000000000000000001",
		"quantity": 0
	}`))
	assert.Equal(t, types.ErrInvalidQuantity, types.CodeOf(err))

	_, err = ParsePurchaseRequest([]byte(`not json`))
	assert.Equal(t, types.ErrInvalidUserData, types.CodeOf(err))
}

func TestParseAmount(t *testing.T) {
	got, err := ParseAmount("1.5", 18)
	require.NoError(t, err)
	want, _ := new(big.Int).SetString("1500000000000000000", 10)
	assert.Equal(t, want, got)

	got, err = ParseAmount("250", 6)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(250_000_000), got)
}

func TestParseAmountRejectsBadInput(t *testing.T) {
	_, err := ParseAmount("-1", 18)
	assert.Equal(t, types.ErrConfigError, types.CodeOf(err))

	_, err = ParseAmount("0.1234567", 6)
	assert.Equal(t, types.ErrConfigError, types.CodeOf(err))

	_, err = ParseAmount("abc", 18)
	assert.Equal(t, types.ErrConfigError, types.CodeOf(err))
}

func TestFormatAmount(t *testing.T) {
	v, _ := new(big.Int).SetString("1500000000000000000", 10)
	assert.Equal(t, "1.5", FormatAmount(v, 18))
	assert.Equal(t, "0.25", FormatAmount(big.NewInt(250_000), 6))
}

package pricing

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openvend/openvend/types"
)

var (
	refToken = common.HexToAddress("0x0000000000000000000000000000000000000001")
	payToken = common.HexToAddress("0x0000000000000000000000000000000000000002")
)

func TestFixedTotalIsUnitTimesQuantity(t *testing.T) {
	quote, err := NewFixed().Quote(context.Background(), Query{
		ReferencePrice: big.NewInt(250),
		Token:          payToken,
		Quantity:       4,
	})
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(1000), quote.TotalPrice)
	assert.Empty(t, quote.PricingData)
}

func TestFixedRejectsMissingPrice(t *testing.T) {
	_, err := NewFixed().Quote(context.Background(), Query{Quantity: 1})
	assert.Equal(t, types.ErrUnsupportedToken, types.CodeOf(err))
}

func TestOracleOneToOneRateIsExact(t *testing.T) {
	oracle := NewStaticOracle()
	oracle.SetRate(payToken, refToken, types.RateScale)

	refPrice := big.NewInt(123_456_789)
	quote, err := NewOracleConverted(oracle).Quote(context.Background(), Query{
		ReferenceToken: refToken,
		ReferencePrice: refPrice,
		Token:          payToken,
		Quantity:       3,
	})
	require.NoError(t, err)
	// rate of exactly 1e18 converts with zero rounding loss
	assert.Equal(t, new(big.Int).Mul(refPrice, big.NewInt(3)), quote.TotalPrice)
	require.Len(t, quote.PricingData, 1)
	assert.Equal(t, common.BigToHash(types.RateScale), quote.PricingData[0])
}

func TestOracleConversionFloors(t *testing.T) {
	oracle := NewStaticOracle()
	// 3e18: 100/3 truncates to 33
	oracle.SetRate(payToken, refToken, new(big.Int).Mul(big.NewInt(3), types.RateScale))

	quote, err := NewOracleConverted(oracle).Quote(context.Background(), Query{
		ReferenceToken: refToken,
		ReferencePrice: big.NewInt(100),
		Token:          payToken,
		Quantity:       1,
	})
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(33), quote.TotalPrice)
}

func TestOracleUndefinedRate(t *testing.T) {
	strategy := NewOracleConverted(NewStaticOracle())

	_, err := strategy.Quote(context.Background(), Query{
		ReferenceToken: refToken,
		ReferencePrice: big.NewInt(100),
		Token:          payToken,
		Quantity:       1,
	})
	assert.Equal(t, types.ErrUndefinedRate, types.CodeOf(err))
}

type staticVenue struct {
	rate *big.Int
}

func (v staticVenue) QuoteRate(context.Context, common.Address, common.Address) (*big.Int, error) {
	return v.rate, nil
}

func (v staticVenue) SwapToExact(context.Context, common.Address, common.Address, common.Address, *big.Int, *big.Int, time.Time) (*big.Int, error) {
	return nil, nil
}

func TestSwapDerivedCarriesSentinelAndRate(t *testing.T) {
	rate := new(big.Int).Mul(big.NewInt(2), types.RateScale)
	quote, err := NewSwapDerived(staticVenue{rate: rate}).Quote(context.Background(), Query{
		ReferenceToken: refToken,
		ReferencePrice: big.NewInt(500),
		Token:          payToken,
		Quantity:       2,
	})
	require.NoError(t, err)
	// 500 × 2 at a 2:1 rate halves in payment-token units
	assert.Equal(t, big.NewInt(500), quote.TotalPrice)
	// one more auxiliary word than the other variants
	require.Len(t, quote.PricingData, 2)
	assert.Equal(t, common.BigToHash(types.AskStrategyPrice), quote.PricingData[0])
	assert.Equal(t, common.BigToHash(rate), quote.PricingData[1])
}

func TestSwapDerivedUndefinedRate(t *testing.T) {
	_, err := NewSwapDerived(staticVenue{rate: new(big.Int)}).Quote(context.Background(), Query{
		ReferenceToken: refToken,
		ReferencePrice: big.NewInt(1),
		Token:          payToken,
		Quantity:       1,
	})
	assert.Equal(t, types.ErrUndefinedRate, types.CodeOf(err))
}

// Package utils provides JSON parsing with struct-tag validation for the
// engine's configuration surfaces and helpers for converting between
// human-readable and atomic token amounts.
package utils

import (
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/openvend/openvend/types"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// ParseConfig parses and validates an engine Config from JSON.
func ParseConfig(data []byte) (*types.Config, error) {
	var config types.Config

	if err := json.Unmarshal(data, &config); err != nil {
		return nil, &types.Error{
			Code:    types.ErrConfigError,
			Message: fmt.Sprintf("failed to parse config: %v", err),
		}
	}

	if err := validate.Struct(&config); err != nil {
		return nil, &types.Error{
			Code:    types.ErrConfigError,
			Message: fmt.Sprintf("validation failed: %v", err),
		}
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// ParseSkuConfig parses and validates a SkuConfig from JSON.
func ParseSkuConfig(data []byte) (*types.SkuConfig, error) {
	var cfg types.SkuConfig

	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, &types.Error{
			Code:    types.ErrConfigError,
			Message: fmt.Sprintf("failed to parse sku config: %v", err),
		}
	}

	if err := validate.Struct(&cfg); err != nil {
		return nil, &types.Error{
			Code:    types.ErrConfigError,
			Message: fmt.Sprintf("validation failed: %v", err),
		}
	}

	return &cfg, nil
}

// ParsePurchaseRequest parses a PurchaseRequest from JSON and checks its
// shape against the validation taxonomy.
func ParsePurchaseRequest(data []byte) (*types.PurchaseRequest, error) {
	var req types.PurchaseRequest

	if err := json.Unmarshal(data, &req); err != nil {
		return nil, &types.Error{
			Code:    types.ErrInvalidUserData,
			Message: fmt.Sprintf("failed to parse purchase request: %v", err),
		}
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}

	return &req, nil
}

// SerializeRecord converts a PurchaseRecord to JSON.
func SerializeRecord(record *types.PurchaseRecord) ([]byte, error) {
	return json.Marshal(record)
}

// ParseAmount converts a human-readable decimal string into atomic units
// with the given number of decimals. "1.5" at 18 decimals becomes
// 1500000000000000000.
func ParseAmount(s string, decimals int32) (*big.Int, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, &types.Error{
			Code:    types.ErrConfigError,
			Message: fmt.Sprintf("invalid amount %q: %v", s, err),
		}
	}
	if d.IsNegative() {
		return nil, &types.Error{Code: types.ErrConfigError, Message: fmt.Sprintf("amount %q must not be negative", s)}
	}
	shifted := d.Shift(decimals)
	if !shifted.IsInteger() {
		return nil, &types.Error{
			Code:    types.ErrConfigError,
			Message: fmt.Sprintf("amount %q has more than %d decimals", s, decimals),
		}
	}
	return shifted.BigInt(), nil
}

// FormatAmount renders atomic units as a human-readable decimal string.
func FormatAmount(amount *big.Int, decimals int32) string {
	return decimal.NewFromBigInt(amount, -decimals).String()
}

package types

import "errors"

// Error is the engine's error type. Code is a stable, machine-checkable
// reason string; client tooling may branch on it across versions.
type Error struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func (e *Error) Error() string {
	return e.Message
}

// Validation error codes.
const (
	ErrInvalidRecipient   = "INVALID_RECIPIENT"
	ErrInvalidToken       = "INVALID_TOKEN"
	ErrInvalidQuantity    = "INVALID_QUANTITY"
	ErrUnknownSku         = "UNKNOWN_SKU"
	ErrQuantityOverMax    = "QUANTITY_OVER_MAX"
	ErrInsufficientSupply = "INSUFFICIENT_SUPPLY"
	ErrUnsupportedToken   = "UNSUPPORTED_TOKEN"
)

// Catalog and pricing error codes.
const (
	ErrPriceTableTooLarge    = "PRICE_TABLE_TOO_LARGE"
	ErrMissingReferenceToken = "MISSING_REFERENCE_TOKEN"
	ErrUndefinedRate         = "UNDEFINED_RATE"
)

// Payment error codes.
const (
	ErrInsufficientPayment    = "INSUFFICIENT_PAYMENT"
	ErrAllowanceExceeded      = "ALLOWANCE_EXCEEDED"
	ErrBalanceExceeded        = "BALANCE_EXCEEDED"
	ErrExcessiveInputAmount   = "EXCESSIVE_INPUT_AMOUNT"
	ErrUnexpectedNativeAmount = "UNEXPECTED_NATIVE_AMOUNT"
	ErrDeadlineExceeded       = "DEADLINE_EXCEEDED"
	ErrInvalidUserData        = "INVALID_USER_DATA"
)

// Supply, notification and configuration error codes.
const (
	ErrInvalidLot           = "INVALID_LOT"
	ErrEmptyAddition        = "EMPTY_ADDITION"
	ErrSupplyCapExceeded    = "SUPPLY_CAP_EXCEEDED"
	ErrNotificationRejected = "NOTIFICATION_REJECTED"
	ErrConfigError          = "CONFIG_ERROR"
)

// CodeOf extracts the stable error code from err, unwrapping as needed.
// It returns "" when err carries no engine code.
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsCode reports whether err carries the given engine error code.
func IsCode(err error, code string) bool {
	return CodeOf(err) == code
}

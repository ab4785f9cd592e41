package service

import "errors"

var (
	// ErrMissingField is returned when a required field is absent.
	// Wrapped with the field name at the call site.
	ErrMissingField = errors.New("missing required field")

	// ErrInvalidAmount is returned when the payment amount is not positive.
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrInvalidMethod is returned when the payment method is not supported.
	ErrInvalidMethod = errors.New("invalid payment method")

	// ErrOrderNotFound is returned when the referenced order does not exist.
	ErrOrderNotFound = errors.New("order not found")

	// ErrInvalidPhoneFormat is returned when a phone number does not
	// normalize to a valid Ugandan mobile number.
	ErrInvalidPhoneFormat = errors.New("invalid phone number format")

	// ErrMethodPhoneMismatch is returned when the phone's operator
	// prefix does not belong to the selected mobile-money network.
	ErrMethodPhoneMismatch = errors.New("phone number does not match payment method")

	// ErrAlreadyPaid is returned when initiating a payment against an
	// order that is already paid.
	ErrAlreadyPaid = errors.New("order already paid")

	// ErrPaymentInProgress is returned when another initiation holds
	// the order's payment lock.
	ErrPaymentInProgress = errors.New("payment already in progress for this order")

	// ErrGatewayError is returned when the external payment provider
	// call fails. The payment row is rolled to failed on this path.
	ErrGatewayError = errors.New("payment gateway error")

	// ErrInvalidPaymentID is returned when payment ID is empty.
	ErrInvalidPaymentID = errors.New("invalid payment id")

	// ErrInvalidOrderID is returned when order ID is empty.
	ErrInvalidOrderID = errors.New("invalid order id")

	// ErrNotRefundable is returned when refunding a payment that is
	// not in completed state.
	ErrNotRefundable = errors.New("only completed payments can be refunded")

	// ErrEmptyCart is returned when submitting an order with no items.
	ErrEmptyCart = errors.New("order must contain at least one item")

	// ErrNotReconcilable is returned when reconciling a payment that
	// has no gateway tracking id.
	ErrNotReconcilable = errors.New("payment has no gateway tracking id")

	// ErrReceiptUnavailable is returned when generating a receipt for
	// an order without a completed payment.
	ErrReceiptUnavailable = errors.New("receipt requires a completed payment")
)

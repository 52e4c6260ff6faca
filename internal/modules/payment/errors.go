package payment

import "errors"

var (
	ErrNotFound           = errors.New("payment not found")
	ErrBookingNotFound    = errors.New("booking not found")
	ErrForbidden          = errors.New("not allowed to access this payment")
	ErrAlreadyPaid        = errors.New("booking is already paid")
	ErrBookingNotPayable  = errors.New("booking cannot be paid in its current state")
	ErrInvalidPhone       = errors.New("phone number must be a valid Safaricom number")
	ErrNotRefundable      = errors.New("only completed payments can be refunded")
	ErrReasonRequired     = errors.New("refund reason is required")
	ErrGatewayUnreachable = errors.New("payment gateway unreachable")
)

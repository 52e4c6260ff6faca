package booking

import "errors"

var (
	ErrNotFound          = errors.New("booking not found")
	ErrRoomNotFound      = errors.New("room not found")
	ErrForbidden         = errors.New("not allowed to access this booking")
	ErrRoomInactive      = errors.New("room is not open for booking")
	ErrInvalidDateRange  = errors.New("check-out date must be after check-in date")
	ErrCheckInPast       = errors.New("check-in date cannot be in the past")
	ErrCapacityExceeded  = errors.New("guest count exceeds room capacity")
	ErrRoomUnavailable   = errors.New("room is not available for the selected dates")
	ErrNotPending        = errors.New("only pending bookings can be modified")
	ErrInvalidTransition = errors.New("booking status does not allow this action")
	ErrReasonRequired    = errors.New("cancellation reason is required")
	ErrValidation        = errors.New("validation error")
)

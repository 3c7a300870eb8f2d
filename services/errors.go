package services

import "errors"

// Business rejections surfaced directly to the caller with no retry.
var (
	ErrTicketNotFound      = errors.New("ticket not found")
	ErrTicketNotActive     = errors.New("ticket is not active")
	ErrTicketExpired       = errors.New("ticket has expired")
	ErrInsufficientBalance = errors.New("ticket has no remaining uses")

	ErrScheduleNotFound = errors.New("schedule not found")
	ErrScheduleCanceled = errors.New("schedule has been canceled")
	ErrSchedulePast     = errors.New("schedule has already started")
	ErrCapacityFull     = errors.New("schedule is fully booked")
	ErrDuplicateBooking = errors.New("user already has a booking for this schedule")
	ErrNoUsableTicket   = errors.New("no usable ticket for this class")
	ErrBookingNotFound  = errors.New("booking not found")
	ErrInvalidStatus    = errors.New("invalid booking status")

	ErrClassNotFound         = errors.New("class not found")
	ErrDiscountInvalid       = errors.New("discount cannot be applied")
	ErrOrderNotFound         = errors.New("order not found")
	ErrOrderAlreadyProcessed = errors.New("order has already been processed")
)

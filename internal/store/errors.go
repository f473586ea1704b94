package store

import "errors"

var (
	ErrInvalidPhone     = errors.New("phone must contain exactly 4 digits")
	ErrNoValidPhones    = errors.New("no valid phone numbers in input")
	ErrInvalidTimeRange = errors.New("start time must be before end time")
	ErrMissingProcedure = errors.New("procedure is required")
	ErrUnknownService   = errors.New("unknown service type")
	ErrSlotTaken        = errors.New("time slot is already booked")
	ErrBookingNotFound  = errors.New("booking not found")
	ErrClientNotFound   = errors.New("client not found")
	ErrBreakNotFound    = errors.New("break not found")
)

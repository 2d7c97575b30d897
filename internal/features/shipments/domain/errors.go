package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrShipmentNotFound is returned when a shipment reference resolves to nothing.
	ErrShipmentNotFound = errors.New("shipment not found")
	// ErrInvalidStatus is returned for values outside the status enumeration.
	ErrInvalidStatus = errors.New("invalid shipment status")
	// ErrInvalidOutcome is returned for values outside the attempt outcome enumeration.
	ErrInvalidOutcome = errors.New("invalid attempt outcome")

	ErrMissingFailureReason  = errors.New("failure reason is required for a FAILED attempt")
	ErrInvalidFailureReason  = errors.New("invalid failure reason")
	ErrUnexpectedFailure     = errors.New("failure reason is only allowed on a FAILED attempt")
	ErrMissingRecipient      = errors.New("recipient name is required for a SUCCESS attempt")
	ErrUnexpectedRecipient   = errors.New("recipient details are only allowed on a SUCCESS attempt")
	ErrInvalidGeolocation    = errors.New("latitude must be within [-90, 90] and longitude within [-180, 180]")
	ErrMissingActor          = errors.New("actor is required")
	ErrMissingTrackingNumber = errors.New("tracking number is required")
	ErrMissingAgency         = errors.New("origin and destination agencies are required")
)

// IllegalTransitionError reports a status change that the transition table
// does not allow from the shipment's current status.
type IllegalTransitionError struct {
	From   ShipmentStatus
	To     ShipmentStatus
	Reason string
}

func (e *IllegalTransitionError) Error() string {
	msg := fmt.Sprintf("illegal transition from %s to %s", e.From, e.To)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

// IsIllegalTransition reports whether err is (or wraps) an IllegalTransitionError.
func IsIllegalTransition(err error) bool {
	var target *IllegalTransitionError
	return errors.As(err, &target)
}

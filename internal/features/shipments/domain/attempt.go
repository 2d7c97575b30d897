package domain

import (
	"fmt"
	"strings"
	"time"
)

// AttemptOutcome is the result of a physical delivery attempt.
type AttemptOutcome string

const (
	OutcomeSuccess AttemptOutcome = "SUCCESS"
	OutcomeFailed  AttemptOutcome = "FAILED"
	OutcomePending AttemptOutcome = "PENDING"
)

// IsValid reports whether the value is a known AttemptOutcome.
func (o AttemptOutcome) IsValid() bool {
	return o == OutcomeSuccess || o == OutcomeFailed || o == OutcomePending
}

// DerivedStatus maps an outcome to the shipment status it leads to.
func (o AttemptOutcome) DerivedStatus() ShipmentStatus {
	switch o {
	case OutcomeSuccess:
		return StatusDelivered
	case OutcomeFailed:
		return StatusFailedDelivery
	default:
		return StatusOutForDelivery
	}
}

// FailureReason explains a FAILED attempt.
type FailureReason string

const (
	ReasonAbsent         FailureReason = "ABSENT"
	ReasonRefused        FailureReason = "REFUSED"
	ReasonWrongAddress   FailureReason = "WRONG_ADDRESS"
	ReasonBusinessClosed FailureReason = "BUSINESS_CLOSED"
	ReasonOther          FailureReason = "OTHER"
)

// IsValid reports whether the value is a known FailureReason.
func (r FailureReason) IsValid() bool {
	switch r {
	case ReasonAbsent, ReasonRefused, ReasonWrongAddress, ReasonBusinessClosed, ReasonOther:
		return true
	}
	return false
}

func (r FailureReason) label() string {
	switch r {
	case ReasonAbsent:
		return "recipient absent"
	case ReasonRefused:
		return "refused by recipient"
	case ReasonWrongAddress:
		return "wrong address"
	case ReasonBusinessClosed:
		return "business closed"
	default:
		return "other reason"
	}
}

// Recipient identifies who accepted a delivered shipment.
type Recipient struct {
	Name         string `json:"name"`
	Relationship string `json:"relationship,omitempty"`
	IDType       string `json:"id_type,omitempty"`
	IDNumber     string `json:"id_number,omitempty"`
}

// GeoPoint is a WGS84 coordinate.
type GeoPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// AttemptDetails carries the outcome-dependent fields of an attempt.
type AttemptDetails struct {
	FailureReason FailureReason `json:"failure_reason,omitempty"`
	Recipient     *Recipient    `json:"recipient,omitempty"`
	Location      *GeoPoint     `json:"location,omitempty"`
	ProofRefs     []string      `json:"proof_refs"`
	Notes         string        `json:"notes,omitempty"`
}

// Validate checks the details against the outcome: FAILED requires a reason
// from the closed set, SUCCESS requires at least a recipient name, and each
// of those fields is rejected on the other outcomes.
func (d AttemptDetails) Validate(outcome AttemptOutcome) error {
	if !outcome.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidOutcome, outcome)
	}

	if outcome == OutcomeFailed {
		if d.FailureReason == "" {
			return ErrMissingFailureReason
		}
		if !d.FailureReason.IsValid() {
			return fmt.Errorf("%w: %q", ErrInvalidFailureReason, d.FailureReason)
		}
	} else if d.FailureReason != "" {
		return ErrUnexpectedFailure
	}

	if outcome == OutcomeSuccess {
		if d.Recipient == nil || strings.TrimSpace(d.Recipient.Name) == "" {
			return ErrMissingRecipient
		}
	} else if d.Recipient != nil {
		return ErrUnexpectedRecipient
	}

	if p := d.Location; p != nil {
		if p.Latitude < -90 || p.Latitude > 90 || p.Longitude < -180 || p.Longitude > 180 {
			return ErrInvalidGeolocation
		}
	}
	return nil
}

// AttemptInput records one delivery attempt.
type AttemptInput struct {
	ShipmentID string
	Outcome    AttemptOutcome
	Details    AttemptDetails
	ActorID    string
}

// DeliveryAttempt is an immutable record of one physical delivery attempt.
type DeliveryAttempt struct {
	ID            string         `json:"id"`
	ShipmentID    string         `json:"shipment_id"`
	AttemptNumber int            `json:"attempt_number"`
	Outcome       AttemptOutcome `json:"outcome"`
	AttemptDetails
	ActorID   string    `json:"actor_id"`
	CreatedAt time.Time `json:"created_at"`
}

// NewDeliveryAttempt builds attempt number `number` from a validated input.
func NewDeliveryAttempt(id string, number int, in AttemptInput, now time.Time) *DeliveryAttempt {
	details := in.Details
	if details.ProofRefs == nil {
		details.ProofRefs = []string{}
	}
	return &DeliveryAttempt{
		ID:             id,
		ShipmentID:     in.ShipmentID,
		AttemptNumber:  number,
		Outcome:        in.Outcome,
		AttemptDetails: details,
		ActorID:        in.ActorID,
		CreatedAt:      now,
	}
}

// Summary is the public event description of the attempt,
// e.g. "Attempt #2: Delivery failed (recipient absent)".
func (a *DeliveryAttempt) Summary() string {
	var msg string
	switch a.Outcome {
	case OutcomeSuccess:
		msg = "Delivered"
		if a.Recipient != nil && a.Recipient.Name != "" {
			msg += " to " + a.Recipient.Name
		}
	case OutcomeFailed:
		msg = fmt.Sprintf("Delivery failed (%s)", a.FailureReason.label())
	default:
		msg = "Delivery pending"
	}
	return fmt.Sprintf("Attempt #%d: %s", a.AttemptNumber, msg)
}

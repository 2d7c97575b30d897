package handler

import (
	"shipment-tracker/internal/features/shipments/domain"
)

// ErrorResponse represents an error response with Ray ID.
type ErrorResponse struct {
	// Message is the error description.
	Message string `json:"message"`
	// Code is the machine-readable error code, e.g. ILLEGAL_TRANSITION.
	Code string `json:"code"`
	// RayID is the unique request identifier for tracing.
	RayID string `json:"ray_id,omitempty"`
	// Details carries structured context such as the rejected transition.
	Details any `json:"details,omitempty"`
}

// CreateShipmentRequest registers a shipment.
type CreateShipmentRequest struct {
	TrackingNumber      string `json:"tracking_number" validate:"required,max=64"`
	OriginAgencyID      string `json:"origin_agency_id" validate:"required"`
	DestinationAgencyID string `json:"destination_agency_id" validate:"required"`
	ActorID             string `json:"actor_id" validate:"required"`
}

// TransitionRequest moves a shipment to a new status.
type TransitionRequest struct {
	Status           string `json:"status" validate:"required"`
	LocationAgencyID string `json:"location_agency_id"`
	ActorID          string `json:"actor_id" validate:"required"`
	Description      string `json:"description" validate:"max=500"`
	Notes            string `json:"notes" validate:"max=2000"`
}

// ScanRequest reports a status scanned at an agency.
type ScanRequest struct {
	TrackingNumber   string `json:"tracking_number" validate:"required"`
	Status           string `json:"status" validate:"required"`
	LocationAgencyID string `json:"location_agency_id" validate:"required"`
	ActorID          string `json:"actor_id" validate:"required"`
	Notes            string `json:"notes" validate:"max=2000"`
}

// ActorRequest identifies who performs a parameterless action.
type ActorRequest struct {
	ActorID string `json:"actor_id" validate:"required"`
}

// RecipientRequest identifies who accepted a delivery.
type RecipientRequest struct {
	Name         string `json:"name" validate:"required"`
	Relationship string `json:"relationship"`
	IDType       string `json:"id_type"`
	IDNumber     string `json:"id_number"`
}

// GeoPointRequest is where the attempt took place.
type GeoPointRequest struct {
	Latitude  float64 `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64 `json:"longitude" validate:"gte=-180,lte=180"`
}

// AttemptRequest records a delivery attempt.
type AttemptRequest struct {
	Outcome       string            `json:"outcome" validate:"required,oneof=SUCCESS FAILED PENDING"`
	FailureReason string            `json:"failure_reason" validate:"omitempty,oneof=ABSENT REFUSED WRONG_ADDRESS BUSINESS_CLOSED OTHER"`
	Recipient     *RecipientRequest `json:"recipient"`
	Location      *GeoPointRequest  `json:"location"`
	ProofRefs     []string          `json:"proof_refs" validate:"max=20"`
	Notes         string            `json:"notes" validate:"max=2000"`
	ActorID       string            `json:"actor_id" validate:"required"`
}

func (r AttemptRequest) toInput(shipmentID string) domain.AttemptInput {
	details := domain.AttemptDetails{
		FailureReason: domain.FailureReason(r.FailureReason),
		ProofRefs:     r.ProofRefs,
		Notes:         r.Notes,
	}
	if r.Recipient != nil {
		details.Recipient = &domain.Recipient{
			Name:         r.Recipient.Name,
			Relationship: r.Recipient.Relationship,
			IDType:       r.Recipient.IDType,
			IDNumber:     r.Recipient.IDNumber,
		}
	}
	if r.Location != nil {
		details.Location = &domain.GeoPoint{Latitude: r.Location.Latitude, Longitude: r.Location.Longitude}
	}
	return domain.AttemptInput{
		ShipmentID: shipmentID,
		Outcome:    domain.AttemptOutcome(r.Outcome),
		Details:    details,
		ActorID:    r.ActorID,
	}
}

// AppendEventRequest adds a free-standing event to a timeline.
type AppendEventRequest struct {
	Status           string `json:"status" validate:"required"`
	LocationAgencyID string `json:"location_agency_id"`
	Description      string `json:"description" validate:"max=500"`
	Notes            string `json:"notes" validate:"max=2000"`
	ActorID          string `json:"actor_id" validate:"required"`
}

// PublicTrackingResponse is the unauthenticated tracking view.
type PublicTrackingResponse struct {
	Reference     string                `json:"reference"`
	CurrentStatus domain.ShipmentStatus `json:"current_status"`
	Events        []domain.PublicEvent  `json:"events"`
}

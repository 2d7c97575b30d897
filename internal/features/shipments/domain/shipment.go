package domain

import (
	"strings"
	"time"
)

// Shipment is a parcel moving through the postal network.
type Shipment struct {
	// ID is the opaque, stable identifier.
	ID string `json:"id"`
	// TrackingNumber is the unique human-readable reference, immutable after intake.
	TrackingNumber string `json:"tracking_number"`
	// Status is the current lifecycle state.
	Status ShipmentStatus `json:"status"`
	// HeldFromStatus is the status the shipment left when it entered ON_HOLD.
	HeldFromStatus ShipmentStatus `json:"held_from_status,omitempty"`
	// CurrentLocationAgencyID is the agency where the shipment was last scanned.
	CurrentLocationAgencyID string `json:"current_location_agency_id,omitempty"`
	// OriginAgencyID is the agency where the shipment was registered.
	OriginAgencyID string `json:"origin_agency_id"`
	// DestinationAgencyID is the agency responsible for final delivery.
	DestinationAgencyID string `json:"destination_agency_id"`
	// Version increments on every state write; used for optimistic concurrency.
	Version int64 `json:"version"`
	// ArchivedAt is set once the shipment is removed from active views.
	ArchivedAt *time.Time `json:"archived_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// IntakeInput registers a new shipment.
type IntakeInput struct {
	TrackingNumber      string
	OriginAgencyID      string
	DestinationAgencyID string
	ActorID             string
}

// Validate checks the required intake fields.
func (in IntakeInput) Validate() error {
	if strings.TrimSpace(in.TrackingNumber) == "" {
		return ErrMissingTrackingNumber
	}
	if strings.TrimSpace(in.OriginAgencyID) == "" || strings.TrimSpace(in.DestinationAgencyID) == "" {
		return ErrMissingAgency
	}
	if strings.TrimSpace(in.ActorID) == "" {
		return ErrMissingActor
	}
	return nil
}

// NewShipment builds a CREATED shipment located at its origin agency.
func NewShipment(id string, in IntakeInput, now time.Time) *Shipment {
	return &Shipment{
		ID:                      id,
		TrackingNumber:          strings.TrimSpace(in.TrackingNumber),
		Status:                  StatusCreated,
		CurrentLocationAgencyID: in.OriginAgencyID,
		OriginAgencyID:          in.OriginAgencyID,
		DestinationAgencyID:     in.DestinationAgencyID,
		Version:                 1,
		CreatedAt:               now,
		UpdatedAt:               now,
	}
}

// StateChange is a conditional write against the shipments table: it only
// applies while the stored row still has ExpectedStatus and ExpectedVersion.
type StateChange struct {
	ShipmentID      string
	ExpectedStatus  ShipmentStatus
	ExpectedVersion int64
	Status          ShipmentStatus
	HeldFromStatus  ShipmentStatus
	LocationID      string
	At              time.Time
}

// Transition validates a move to `to` and returns the resulting shipment
// together with the conditional write that persists it. s is not modified.
// An empty location keeps the current location.
func (s *Shipment) Transition(to ShipmentStatus, location string, at time.Time) (*Shipment, StateChange, error) {
	if err := CheckTransition(s.Status, to, s.HeldFromStatus); err != nil {
		return nil, StateChange{}, err
	}

	heldFrom := s.HeldFromStatus
	switch {
	case to == StatusOnHold:
		heldFrom = s.Status
	case s.Status == StatusOnHold:
		heldFrom = ""
	}

	return s.apply(to, heldFrom, location, at)
}

// Touch returns a write that keeps the status but bumps the version, so a
// status-preserving event (such as a PENDING attempt) still serializes
// against concurrent writers.
func (s *Shipment) Touch(location string, at time.Time) (*Shipment, StateChange, error) {
	return s.apply(s.Status, s.HeldFromStatus, location, at)
}

func (s *Shipment) apply(to, heldFrom ShipmentStatus, location string, at time.Time) (*Shipment, StateChange, error) {
	if location == "" {
		location = s.CurrentLocationAgencyID
	}

	next := *s
	next.Status = to
	next.HeldFromStatus = heldFrom
	next.CurrentLocationAgencyID = location
	next.Version = s.Version + 1
	next.UpdatedAt = at

	change := StateChange{
		ShipmentID:      s.ID,
		ExpectedStatus:  s.Status,
		ExpectedVersion: s.Version,
		Status:          to,
		HeldFromStatus:  heldFrom,
		LocationID:      location,
		At:              at,
	}
	return &next, change, nil
}

// CanArchive reports whether the shipment may be soft-archived.
func (s *Shipment) CanArchive() error {
	if !s.Status.IsTerminal() {
		return &IllegalTransitionError{From: s.Status, To: s.Status, Reason: "only terminal shipments can be archived"}
	}
	return nil
}

// TransitionInput requests a status change through the transition engine.
type TransitionInput struct {
	ShipmentID       string
	Status           ShipmentStatus
	LocationAgencyID string
	ActorID          string
	// Description overrides the default public event text.
	Description string
	// Notes are stored on the event as internal notes.
	Notes string
}

// ScanInput is a status change reported by a scanning agent.
type ScanInput struct {
	TrackingNumber   string
	Status           ShipmentStatus
	LocationAgencyID string
	ActorID          string
	Notes            string
}

package domain

import (
	"strings"
	"time"
)

// SortOrder selects the direction of a timeline.
type SortOrder string

const (
	// Descending lists the most recent event first (display order).
	Descending SortOrder = "desc"
	// Ascending lists the oldest event first (replay/audit order).
	Ascending SortOrder = "asc"
)

// ParseSortOrder accepts "asc"/"desc" in any case; empty means Descending.
func ParseSortOrder(value string) (SortOrder, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "desc":
		return Descending, true
	case "asc":
		return Ascending, true
	default:
		return "", false
	}
}

// TrackingEvent is an immutable entry in a shipment's history.
type TrackingEvent struct {
	ID         string         `json:"id"`
	ShipmentID string         `json:"shipment_id"`
	Status     ShipmentStatus `json:"status"`
	// PreviousStatus is the status before the write that produced the event.
	// On a hold event it is the status the shipment will resume to.
	PreviousStatus   ShipmentStatus `json:"previous_status,omitempty"`
	LocationAgencyID string         `json:"location_agency_id,omitempty"`
	// Description is public, human-readable text.
	Description string `json:"description,omitempty"`
	// Notes are internal and never shown to unauthenticated callers.
	Notes     string    `json:"notes,omitempty"`
	ActorID   string    `json:"actor_id"`
	CreatedAt time.Time `json:"created_at"`
}

// EventInput appends a free-standing event without touching shipment state.
type EventInput struct {
	ShipmentID       string
	Status           ShipmentStatus
	LocationAgencyID string
	Description      string
	Notes            string
	ActorID          string
}

// PublicEvent is the projection of a TrackingEvent that is safe to show to
// unauthenticated callers: no actor identity and no internal notes.
type PublicEvent struct {
	Status           ShipmentStatus `json:"status"`
	LocationAgencyID string         `json:"location_agency_id,omitempty"`
	Description      string         `json:"description,omitempty"`
	Timestamp        time.Time      `json:"timestamp"`
}

// PublicTimeline projects events for public display, keeping their order.
func PublicTimeline(events []TrackingEvent) []PublicEvent {
	out := make([]PublicEvent, 0, len(events))
	for _, e := range events {
		out = append(out, PublicEvent{
			Status:           e.Status,
			LocationAgencyID: e.LocationAgencyID,
			Description:      e.Description,
			Timestamp:        e.CreatedAt,
		})
	}
	return out
}

// DescribeTransition is the default public description of a status change.
func DescribeTransition(from, to ShipmentStatus) string {
	switch to {
	case StatusCreated:
		return "Shipment registered"
	case StatusReceived:
		return "Shipment received at agency"
	case StatusInTransit:
		return "Shipment in transit"
	case StatusArrived:
		return "Shipment arrived at destination agency"
	case StatusOutForDelivery:
		if from == StatusFailedDelivery {
			return "Out for redelivery"
		}
		if from == StatusOnHold {
			return "Hold released, out for delivery"
		}
		return "Out for delivery"
	case StatusDelivered:
		return "Shipment delivered"
	case StatusFailedDelivery:
		return "Delivery attempt failed"
	case StatusReturned:
		return "Shipment returned to sender"
	case StatusCancelled:
		return "Shipment cancelled"
	case StatusOnHold:
		return "Shipment placed on hold"
	}
	return string(to)
}

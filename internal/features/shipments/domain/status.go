package domain

import "fmt"

// ShipmentStatus is the lifecycle state of a shipment.
type ShipmentStatus string

const (
	// StatusCreated is the intake state.
	StatusCreated ShipmentStatus = "CREATED"
	// StatusReceived means the shipment was accepted at an agency counter.
	StatusReceived ShipmentStatus = "RECEIVED"
	// StatusInTransit means the shipment left an agency towards the next hop.
	StatusInTransit ShipmentStatus = "IN_TRANSIT"
	// StatusArrived means the shipment reached the destination agency.
	StatusArrived ShipmentStatus = "ARRIVED"
	// StatusOutForDelivery means a courier is carrying the shipment.
	StatusOutForDelivery ShipmentStatus = "OUT_FOR_DELIVERY"
	// StatusDelivered is terminal: the recipient took the shipment.
	StatusDelivered ShipmentStatus = "DELIVERED"
	// StatusFailedDelivery means the last delivery attempt failed.
	StatusFailedDelivery ShipmentStatus = "FAILED_DELIVERY"
	// StatusReturned is terminal: the shipment went back to the sender.
	StatusReturned ShipmentStatus = "RETURNED"
	// StatusCancelled is terminal: the shipment was withdrawn before transit.
	StatusCancelled ShipmentStatus = "CANCELLED"
	// StatusOnHold suspends the lifecycle; the held-from status is tracked.
	StatusOnHold ShipmentStatus = "ON_HOLD"
)

var allStatuses = []ShipmentStatus{
	StatusCreated,
	StatusReceived,
	StatusInTransit,
	StatusArrived,
	StatusOutForDelivery,
	StatusDelivered,
	StatusFailedDelivery,
	StatusReturned,
	StatusCancelled,
	StatusOnHold,
}

// AllStatuses returns every status in lifecycle order.
func AllStatuses() []ShipmentStatus {
	out := make([]ShipmentStatus, len(allStatuses))
	copy(out, allStatuses)
	return out
}

// String implements fmt.Stringer.
func (s ShipmentStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ShipmentStatus.
func (s ShipmentStatus) IsValid() bool {
	for _, candidate := range allStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no transition may leave s.
func (s ShipmentStatus) IsTerminal() bool {
	return s == StatusDelivered || s == StatusReturned || s == StatusCancelled
}

// ParseShipmentStatus converts raw input into a ShipmentStatus.
func ParseShipmentStatus(value string) (ShipmentStatus, error) {
	for _, candidate := range allStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, value)
}

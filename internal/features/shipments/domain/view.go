package domain

// ShipmentView is the read-side aggregate for timeline displays. Events and
// attempts are ordered most recent first.
type ShipmentView struct {
	Shipment *Shipment         `json:"shipment"`
	Events   []TrackingEvent   `json:"events"`
	Attempts []DeliveryAttempt `json:"attempts"`
}

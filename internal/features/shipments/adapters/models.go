package adapters

import (
	"time"

	"shipment-tracker/internal/features/shipments/domain"
)

// shipmentModel maps the shipments table.
type shipmentModel struct {
	ID                      string     `gorm:"column:id;primaryKey"`
	TrackingNumber          string     `gorm:"column:tracking_number;not null;uniqueIndex:shipments_tracking_number_key"`
	Status                  string     `gorm:"column:status;not null"`
	HeldFromStatus          *string    `gorm:"column:held_from_status"`
	CurrentLocationAgencyID *string    `gorm:"column:current_location_agency_id"`
	OriginAgencyID          string     `gorm:"column:origin_agency_id;not null"`
	DestinationAgencyID     string     `gorm:"column:destination_agency_id;not null"`
	Version                 int64      `gorm:"column:version;not null;default:1"`
	ArchivedAt              *time.Time `gorm:"column:archived_at"`
	CreatedAt               time.Time  `gorm:"column:created_at;not null"`
	UpdatedAt               time.Time  `gorm:"column:updated_at;not null"`
}

func (shipmentModel) TableName() string { return "shipments" }

// trackingEventModel maps the append-only tracking_events table.
type trackingEventModel struct {
	ID               string    `gorm:"column:id;primaryKey"`
	ShipmentID       string    `gorm:"column:shipment_id;not null;index:tracking_events_shipment_created_idx,priority:1"`
	Status           string    `gorm:"column:status;not null"`
	PreviousStatus   *string   `gorm:"column:previous_status"`
	LocationAgencyID *string   `gorm:"column:location_agency_id"`
	Description      *string   `gorm:"column:description"`
	Notes            *string   `gorm:"column:notes"`
	ActorID          string    `gorm:"column:actor_id;not null"`
	CreatedAt        time.Time `gorm:"column:created_at;not null;index:tracking_events_shipment_created_idx,priority:2"`
}

func (trackingEventModel) TableName() string { return "tracking_events" }

// deliveryAttemptModel maps the delivery_attempts table.
type deliveryAttemptModel struct {
	ID                    string    `gorm:"column:id;primaryKey"`
	ShipmentID            string    `gorm:"column:shipment_id;not null;uniqueIndex:delivery_attempts_shipment_number_key,priority:1"`
	AttemptNumber         int       `gorm:"column:attempt_number;not null;uniqueIndex:delivery_attempts_shipment_number_key,priority:2"`
	Outcome               string    `gorm:"column:outcome;not null"`
	FailureReason         *string   `gorm:"column:failure_reason"`
	RecipientName         *string   `gorm:"column:recipient_name"`
	RecipientRelationship *string   `gorm:"column:recipient_relationship"`
	RecipientIDType       *string   `gorm:"column:recipient_id_type"`
	RecipientIDNumber     *string   `gorm:"column:recipient_id_number"`
	Latitude              *float64  `gorm:"column:latitude"`
	Longitude             *float64  `gorm:"column:longitude"`
	ProofRefs             []string  `gorm:"column:proof_refs;serializer:json;not null"`
	Notes                 *string   `gorm:"column:notes"`
	ActorID               string    `gorm:"column:actor_id;not null"`
	CreatedAt             time.Time `gorm:"column:created_at;not null"`
}

func (deliveryAttemptModel) TableName() string { return "delivery_attempts" }

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func toShipmentModel(s *domain.Shipment) *shipmentModel {
	return &shipmentModel{
		ID:                      s.ID,
		TrackingNumber:          s.TrackingNumber,
		Status:                  string(s.Status),
		HeldFromStatus:          nullable(string(s.HeldFromStatus)),
		CurrentLocationAgencyID: nullable(s.CurrentLocationAgencyID),
		OriginAgencyID:          s.OriginAgencyID,
		DestinationAgencyID:     s.DestinationAgencyID,
		Version:                 s.Version,
		ArchivedAt:              s.ArchivedAt,
		CreatedAt:               s.CreatedAt.UTC(),
		UpdatedAt:               s.UpdatedAt.UTC(),
	}
}

func (m *shipmentModel) toDomain() *domain.Shipment {
	var archivedAt *time.Time
	if m.ArchivedAt != nil {
		at := m.ArchivedAt.UTC()
		archivedAt = &at
	}
	return &domain.Shipment{
		ID:                      m.ID,
		TrackingNumber:          m.TrackingNumber,
		Status:                  domain.ShipmentStatus(m.Status),
		HeldFromStatus:          domain.ShipmentStatus(deref(m.HeldFromStatus)),
		CurrentLocationAgencyID: deref(m.CurrentLocationAgencyID),
		OriginAgencyID:          m.OriginAgencyID,
		DestinationAgencyID:     m.DestinationAgencyID,
		Version:                 m.Version,
		ArchivedAt:              archivedAt,
		CreatedAt:               m.CreatedAt.UTC(),
		UpdatedAt:               m.UpdatedAt.UTC(),
	}
}

func toEventModel(e *domain.TrackingEvent) *trackingEventModel {
	return &trackingEventModel{
		ID:               e.ID,
		ShipmentID:       e.ShipmentID,
		Status:           string(e.Status),
		PreviousStatus:   nullable(string(e.PreviousStatus)),
		LocationAgencyID: nullable(e.LocationAgencyID),
		Description:      nullable(e.Description),
		Notes:            nullable(e.Notes),
		ActorID:          e.ActorID,
		CreatedAt:        e.CreatedAt.UTC(),
	}
}

func (m *trackingEventModel) toDomain() domain.TrackingEvent {
	return domain.TrackingEvent{
		ID:               m.ID,
		ShipmentID:       m.ShipmentID,
		Status:           domain.ShipmentStatus(m.Status),
		PreviousStatus:   domain.ShipmentStatus(deref(m.PreviousStatus)),
		LocationAgencyID: deref(m.LocationAgencyID),
		Description:      deref(m.Description),
		Notes:            deref(m.Notes),
		ActorID:          m.ActorID,
		CreatedAt:        m.CreatedAt.UTC(),
	}
}

func toAttemptModel(a *domain.DeliveryAttempt) *deliveryAttemptModel {
	m := &deliveryAttemptModel{
		ID:            a.ID,
		ShipmentID:    a.ShipmentID,
		AttemptNumber: a.AttemptNumber,
		Outcome:       string(a.Outcome),
		FailureReason: nullable(string(a.FailureReason)),
		ProofRefs:     a.ProofRefs,
		Notes:         nullable(a.Notes),
		ActorID:       a.ActorID,
		CreatedAt:     a.CreatedAt.UTC(),
	}
	if m.ProofRefs == nil {
		m.ProofRefs = []string{}
	}
	if r := a.Recipient; r != nil {
		m.RecipientName = nullable(r.Name)
		m.RecipientRelationship = nullable(r.Relationship)
		m.RecipientIDType = nullable(r.IDType)
		m.RecipientIDNumber = nullable(r.IDNumber)
	}
	if p := a.Location; p != nil {
		lat, lng := p.Latitude, p.Longitude
		m.Latitude = &lat
		m.Longitude = &lng
	}
	return m
}

func (m *deliveryAttemptModel) toDomain() domain.DeliveryAttempt {
	details := domain.AttemptDetails{
		FailureReason: domain.FailureReason(deref(m.FailureReason)),
		ProofRefs:     m.ProofRefs,
		Notes:         deref(m.Notes),
	}
	if details.ProofRefs == nil {
		details.ProofRefs = []string{}
	}
	if m.RecipientName != nil {
		details.Recipient = &domain.Recipient{
			Name:         *m.RecipientName,
			Relationship: deref(m.RecipientRelationship),
			IDType:       deref(m.RecipientIDType),
			IDNumber:     deref(m.RecipientIDNumber),
		}
	}
	if m.Latitude != nil && m.Longitude != nil {
		details.Location = &domain.GeoPoint{Latitude: *m.Latitude, Longitude: *m.Longitude}
	}
	return domain.DeliveryAttempt{
		ID:             m.ID,
		ShipmentID:     m.ShipmentID,
		AttemptNumber:  m.AttemptNumber,
		Outcome:        domain.AttemptOutcome(m.Outcome),
		AttemptDetails: details,
		ActorID:        m.ActorID,
		CreatedAt:      m.CreatedAt.UTC(),
	}
}

package ports

import (
	"context"
	"errors"
	"time"

	"shipment-tracker/internal/features/shipments/domain"
)

var (
	// ErrStaleWrite is returned when a conditional shipment update matched no
	// row because the status or version changed since it was read.
	ErrStaleWrite = errors.New("shipment changed since it was read")
	// ErrDuplicateKey is returned when an insert violates a unique constraint
	// (tracking number, attempt number).
	ErrDuplicateKey = errors.New("duplicate key")
)

// ShipmentService defines the primary port for the shipment lifecycle.
type ShipmentService interface {
	CreateShipment(ctx context.Context, in domain.IntakeInput) (*domain.Shipment, error)
	ArchiveShipment(ctx context.Context, shipmentID, actorID string) (*domain.Shipment, error)

	ApplyTransition(ctx context.Context, in domain.TransitionInput) (*domain.Shipment, error)
	Scan(ctx context.Context, in domain.ScanInput) (*domain.Shipment, error)
	MarkReturned(ctx context.Context, shipmentID, actorID string) (*domain.Shipment, error)
	RecordAttempt(ctx context.Context, in domain.AttemptInput) (*domain.DeliveryAttempt, error)

	AppendEvent(ctx context.Context, in domain.EventInput) (*domain.TrackingEvent, error)
	ListEvents(ctx context.Context, shipmentID string, order domain.SortOrder) ([]domain.TrackingEvent, error)

	GetShipmentWithHistory(ctx context.Context, ref string) (*domain.ShipmentView, error)
	GetTrackingHistory(ctx context.Context, ref string) ([]domain.TrackingEvent, error)
}

// ShipmentRepository defines the secondary port for shipment storage.
// Lookups return domain.ErrShipmentNotFound when nothing matches.
type ShipmentRepository interface {
	// Atomic runs fn with a repository bound to a single transaction. Nested
	// calls reuse the outer transaction.
	Atomic(ctx context.Context, fn func(repo ShipmentRepository) error) error

	CreateShipment(ctx context.Context, shipment *domain.Shipment) error
	FindShipmentByID(ctx context.Context, id string) (*domain.Shipment, error)
	FindShipmentByTrackingNumber(ctx context.Context, trackingNumber string) (*domain.Shipment, error)
	// UpdateShipmentState applies change only if the stored status and version
	// still match; otherwise it returns ErrStaleWrite.
	UpdateShipmentState(ctx context.Context, change domain.StateChange) error
	ArchiveShipment(ctx context.Context, id string, at time.Time) error

	InsertEvent(ctx context.Context, event *domain.TrackingEvent) error
	ListEvents(ctx context.Context, shipmentID string, order domain.SortOrder) ([]domain.TrackingEvent, error)

	MaxAttemptNumber(ctx context.Context, shipmentID string) (int, error)
	InsertAttempt(ctx context.Context, attempt *domain.DeliveryAttempt) error
	ListAttempts(ctx context.Context, shipmentID string) ([]domain.DeliveryAttempt, error)

	Ping(ctx context.Context) error
}

// ViewCache stores assembled shipment views. Implementations return
// (nil, nil) on a miss.
type ViewCache interface {
	Get(ctx context.Context, ref string) (*domain.ShipmentView, error)
	Set(ctx context.Context, view *domain.ShipmentView) error
	// Invalidate drops every cached key of the shipment.
	Invalidate(ctx context.Context, shipment *domain.Shipment) error
}

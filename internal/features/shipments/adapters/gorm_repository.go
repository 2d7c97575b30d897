package adapters

import (
	"context"
	"fmt"
	"time"

	"shipment-tracker/internal/core/database"
	"shipment-tracker/internal/features/shipments/domain"
	"shipment-tracker/internal/features/shipments/ports"

	"gorm.io/gorm"
)

// GormShipmentRepository implements ports.ShipmentRepository on top of GORM.
// It works against PostgreSQL in production and SQLite in tests.
type GormShipmentRepository struct {
	client *database.Client
	db     *gorm.DB
	inTx   bool
}

// NewGormShipmentRepository creates a repository bound to the shared connection.
func NewGormShipmentRepository(client *database.Client) *GormShipmentRepository {
	return &GormShipmentRepository{client: client, db: client.DB()}
}

// Atomic runs fn inside a transaction. Calls made on a transactional
// repository join the existing transaction.
func (r *GormShipmentRepository) Atomic(ctx context.Context, fn func(repo ports.ShipmentRepository) error) error {
	if r.inTx {
		return fn(r)
	}
	return r.client.WithTx(ctx, func(tx *gorm.DB) error {
		return fn(&GormShipmentRepository{client: r.client, db: tx, inTx: true})
	})
}

func (r *GormShipmentRepository) CreateShipment(ctx context.Context, shipment *domain.Shipment) error {
	if err := r.db.WithContext(ctx).Create(toShipmentModel(shipment)).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return fmt.Errorf("%w: tracking number %s", ports.ErrDuplicateKey, shipment.TrackingNumber)
		}
		return fmt.Errorf("insert shipment: %w", err)
	}
	return nil
}

func (r *GormShipmentRepository) FindShipmentByID(ctx context.Context, id string) (*domain.Shipment, error) {
	return r.findShipment(ctx, "id = ?", id)
}

func (r *GormShipmentRepository) FindShipmentByTrackingNumber(ctx context.Context, trackingNumber string) (*domain.Shipment, error) {
	return r.findShipment(ctx, "tracking_number = ?", trackingNumber)
}

func (r *GormShipmentRepository) findShipment(ctx context.Context, query string, arg string) (*domain.Shipment, error) {
	var m shipmentModel
	if err := r.db.WithContext(ctx).Where(query, arg).Take(&m).Error; err != nil {
		if database.IsNotFound(err) {
			return nil, fmt.Errorf("%w: %s", domain.ErrShipmentNotFound, arg)
		}
		return nil, fmt.Errorf("load shipment: %w", err)
	}
	return m.toDomain(), nil
}

// UpdateShipmentState performs the conditional write described by change.
func (r *GormShipmentRepository) UpdateShipmentState(ctx context.Context, change domain.StateChange) error {
	res := r.db.WithContext(ctx).
		Model(&shipmentModel{}).
		Where("id = ? AND status = ? AND version = ?", change.ShipmentID, string(change.ExpectedStatus), change.ExpectedVersion).
		Updates(map[string]any{
			"status":                     string(change.Status),
			"held_from_status":           nullable(string(change.HeldFromStatus)),
			"current_location_agency_id": nullable(change.LocationID),
			"version":                    gorm.Expr("version + 1"),
			"updated_at":                 change.At.UTC(),
		})
	if res.Error != nil {
		return fmt.Errorf("update shipment %s: %w", change.ShipmentID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s at version %d", ports.ErrStaleWrite, change.ShipmentID, change.ExpectedVersion)
	}
	return nil
}

// ArchiveShipment stamps archived_at once. A shipment that is already
// archived (or missing) yields ErrStaleWrite so the caller re-reads it.
func (r *GormShipmentRepository) ArchiveShipment(ctx context.Context, id string, at time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&shipmentModel{}).
		Where("id = ? AND archived_at IS NULL", id).
		Updates(map[string]any{
			"archived_at": at.UTC(),
			"updated_at":  at.UTC(),
		})
	if res.Error != nil {
		return fmt.Errorf("archive shipment %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s already archived", ports.ErrStaleWrite, id)
	}
	return nil
}

func (r *GormShipmentRepository) InsertEvent(ctx context.Context, event *domain.TrackingEvent) error {
	if err := r.db.WithContext(ctx).Create(toEventModel(event)).Error; err != nil {
		return fmt.Errorf("insert tracking event: %w", err)
	}
	return nil
}

// ListEvents returns the events of a shipment ordered by creation time, with
// the event id as a tiebreaker.
func (r *GormShipmentRepository) ListEvents(ctx context.Context, shipmentID string, order domain.SortOrder) ([]domain.TrackingEvent, error) {
	orderBy := "created_at DESC, id DESC"
	if order == domain.Ascending {
		orderBy = "created_at ASC, id ASC"
	}

	var rows []trackingEventModel
	if err := r.db.WithContext(ctx).Where("shipment_id = ?", shipmentID).Order(orderBy).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list tracking events: %w", err)
	}

	events := make([]domain.TrackingEvent, 0, len(rows))
	for i := range rows {
		events = append(events, rows[i].toDomain())
	}
	return events, nil
}

func (r *GormShipmentRepository) MaxAttemptNumber(ctx context.Context, shipmentID string) (int, error) {
	var highest int
	err := r.db.WithContext(ctx).
		Model(&deliveryAttemptModel{}).
		Where("shipment_id = ?", shipmentID).
		Select("COALESCE(MAX(attempt_number), 0)").
		Scan(&highest).Error
	if err != nil {
		return 0, fmt.Errorf("read attempt counter: %w", err)
	}
	return highest, nil
}

func (r *GormShipmentRepository) InsertAttempt(ctx context.Context, attempt *domain.DeliveryAttempt) error {
	if err := r.db.WithContext(ctx).Create(toAttemptModel(attempt)).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return fmt.Errorf("%w: attempt #%d of %s", ports.ErrDuplicateKey, attempt.AttemptNumber, attempt.ShipmentID)
		}
		return fmt.Errorf("insert delivery attempt: %w", err)
	}
	return nil
}

// ListAttempts returns the attempts of a shipment, most recent first.
func (r *GormShipmentRepository) ListAttempts(ctx context.Context, shipmentID string) ([]domain.DeliveryAttempt, error) {
	var rows []deliveryAttemptModel
	if err := r.db.WithContext(ctx).Where("shipment_id = ?", shipmentID).Order("attempt_number DESC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list delivery attempts: %w", err)
	}

	attempts := make([]domain.DeliveryAttempt, 0, len(rows))
	for i := range rows {
		attempts = append(attempts, rows[i].toDomain())
	}
	return attempts, nil
}

func (r *GormShipmentRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx)
}

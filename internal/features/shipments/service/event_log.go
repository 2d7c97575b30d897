package service

import (
	"context"
	"fmt"

	"shipment-tracker/internal/core/apperror"
	"shipment-tracker/internal/features/shipments/domain"
	"shipment-tracker/internal/features/shipments/ports"
)

// AppendEvent records a free-standing event (for example a note scanned at an
// agency) without touching the shipment's state.
func (s *ShipmentServiceImpl) AppendEvent(ctx context.Context, in domain.EventInput) (*domain.TrackingEvent, error) {
	if err := requireActor(in.ActorID); err != nil {
		return nil, translate(err)
	}
	if !in.Status.IsValid() {
		return nil, translate(fmt.Errorf("%w: %q", domain.ErrInvalidStatus, in.Status))
	}

	var (
		event    *domain.TrackingEvent
		shipment *domain.Shipment
	)
	err := s.repo.Atomic(ctx, func(repo ports.ShipmentRepository) error {
		var err error
		shipment, err = repo.FindShipmentByID(ctx, in.ShipmentID)
		if err != nil {
			return err
		}

		event = &domain.TrackingEvent{
			ID:               s.newEventID(),
			ShipmentID:       shipment.ID,
			Status:           in.Status,
			LocationAgencyID: in.LocationAgencyID,
			Description:      in.Description,
			Notes:            in.Notes,
			ActorID:          in.ActorID,
			CreatedAt:        s.now(),
		}
		return repo.InsertEvent(ctx, event)
	})
	if err != nil {
		return nil, translate(err)
	}

	s.invalidate(ctx, shipment)
	return event, nil
}

// ListEvents returns the timeline of a shipment. An existing shipment
// without events yields an empty slice.
func (s *ShipmentServiceImpl) ListEvents(ctx context.Context, shipmentID string, order domain.SortOrder) ([]domain.TrackingEvent, error) {
	switch order {
	case "":
		order = domain.Descending
	case domain.Ascending, domain.Descending:
	default:
		return nil, apperror.Newf(apperror.CodeValidation, "unknown sort order %q", order)
	}

	var events []domain.TrackingEvent
	err := s.repo.Atomic(ctx, func(repo ports.ShipmentRepository) error {
		if _, err := repo.FindShipmentByID(ctx, shipmentID); err != nil {
			return err
		}
		var err error
		events, err = repo.ListEvents(ctx, shipmentID, order)
		return err
	})
	if err != nil {
		return nil, translate(err)
	}
	return events, nil
}

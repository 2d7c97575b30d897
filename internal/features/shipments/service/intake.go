package service

import (
	"context"
	"errors"

	"shipment-tracker/internal/core/apperror"
	"shipment-tracker/internal/features/shipments/domain"
	"shipment-tracker/internal/features/shipments/ports"

	"go.uber.org/zap"
)

// CreateShipment registers a shipment in CREATED status at its origin agency
// and appends the first event.
func (s *ShipmentServiceImpl) CreateShipment(ctx context.Context, in domain.IntakeInput) (*domain.Shipment, error) {
	if err := in.Validate(); err != nil {
		return nil, translate(err)
	}

	shipment := domain.NewShipment(s.newID(), in, s.now())
	err := s.repo.Atomic(ctx, func(repo ports.ShipmentRepository) error {
		if err := repo.CreateShipment(ctx, shipment); err != nil {
			return err
		}
		return repo.InsertEvent(ctx, &domain.TrackingEvent{
			ID:               s.newEventID(),
			ShipmentID:       shipment.ID,
			Status:           shipment.Status,
			LocationAgencyID: shipment.OriginAgencyID,
			Description:      domain.DescribeTransition("", shipment.Status),
			ActorID:          in.ActorID,
			CreatedAt:        shipment.CreatedAt,
		})
	})
	if errors.Is(err, ports.ErrDuplicateKey) {
		return nil, apperror.Wrap(apperror.CodeConflict, err, "tracking number is already registered").
			WithDetails(map[string]string{"tracking_number": shipment.TrackingNumber})
	}
	if err != nil {
		return nil, translate(err)
	}

	s.log.Info("Shipment registered",
		zap.String("shipment_id", shipment.ID),
		zap.String("tracking_number", shipment.TrackingNumber),
		zap.String("actor_id", in.ActorID),
	)
	return shipment, nil
}

// ArchiveShipment soft-archives a shipment in a terminal status. Archiving
// an archived shipment returns it unchanged.
func (s *ShipmentServiceImpl) ArchiveShipment(ctx context.Context, shipmentID, actorID string) (*domain.Shipment, error) {
	if err := requireActor(actorID); err != nil {
		return nil, translate(err)
	}

	var archived *domain.Shipment
	wrote := false
	err := s.withConflictRetry(ctx, "archive", func() error {
		return s.repo.Atomic(ctx, func(repo ports.ShipmentRepository) error {
			current, err := repo.FindShipmentByID(ctx, shipmentID)
			if err != nil {
				return err
			}
			if current.ArchivedAt != nil {
				archived, wrote = current, false
				return nil
			}
			if err := current.CanArchive(); err != nil {
				return err
			}

			at := s.now()
			if err := repo.ArchiveShipment(ctx, current.ID, at); err != nil {
				return err
			}
			next := *current
			next.ArchivedAt = &at
			next.UpdatedAt = at
			archived, wrote = &next, true
			return nil
		})
	})
	if err != nil {
		return nil, translate(err)
	}

	if wrote {
		s.invalidate(ctx, archived)
		s.log.Info("Shipment archived",
			zap.String("shipment_id", archived.ID),
			zap.String("actor_id", actorID),
		)
	}
	return archived, nil
}

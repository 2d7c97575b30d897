package service

import (
	"context"

	"shipment-tracker/internal/features/shipments/domain"
	"shipment-tracker/internal/features/shipments/ports"

	"go.uber.org/zap"
)

// RecordAttempt stores the next numbered delivery attempt and moves the
// shipment to the status its outcome implies. A PENDING attempt keeps the
// status but still bumps the version and appends an event.
func (s *ShipmentServiceImpl) RecordAttempt(ctx context.Context, in domain.AttemptInput) (*domain.DeliveryAttempt, error) {
	if err := requireActor(in.ActorID); err != nil {
		return nil, translate(err)
	}
	if err := in.Details.Validate(in.Outcome); err != nil {
		return nil, translate(err)
	}

	var (
		recorded *domain.DeliveryAttempt
		from     domain.ShipmentStatus
		updated  *domain.Shipment
	)
	err := s.withConflictRetry(ctx, "record_attempt", func() error {
		return s.repo.Atomic(ctx, func(repo ports.ShipmentRepository) error {
			current, err := repo.FindShipmentByID(ctx, in.ShipmentID)
			if err != nil {
				return err
			}
			from = current.Status
			if err := domain.CheckAttemptAllowed(current.Status, in.Outcome); err != nil {
				return err
			}

			last, err := repo.MaxAttemptNumber(ctx, current.ID)
			if err != nil {
				return err
			}
			at := s.now()
			attempt := domain.NewDeliveryAttempt(s.newID(), last+1, in, at)
			if err := repo.InsertAttempt(ctx, attempt); err != nil {
				return err
			}

			var (
				next   *domain.Shipment
				change domain.StateChange
			)
			if derived := in.Outcome.DerivedStatus(); derived == current.Status {
				next, change, err = current.Touch("", at)
			} else {
				next, change, err = current.Transition(derived, "", at)
			}
			if err != nil {
				return err
			}
			if err := s.write(ctx, repo, current, next, change, attempt.Summary(), in.Details.Notes, in.ActorID); err != nil {
				return err
			}

			recorded = attempt
			updated = next
			return nil
		})
	})
	if err != nil {
		err = translate(err)
		s.metrics.ObserveTransition(string(from), string(in.Outcome.DerivedStatus()), resultLabel(err))
		return nil, err
	}

	s.metrics.IncAttempt(string(in.Outcome))
	if updated.Status != from {
		s.metrics.ObserveTransition(string(from), string(updated.Status), resultLabel(nil))
	}
	s.invalidate(ctx, updated)
	s.log.Info("Delivery attempt recorded",
		zap.String("shipment_id", updated.ID),
		zap.Int("attempt_number", recorded.AttemptNumber),
		zap.String("outcome", string(recorded.Outcome)),
		zap.String("status", string(updated.Status)),
		zap.String("actor_id", in.ActorID),
	)
	return recorded, nil
}

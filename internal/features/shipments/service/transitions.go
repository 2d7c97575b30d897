package service

import (
	"context"
	"fmt"
	"strings"

	"shipment-tracker/internal/features/shipments/domain"
	"shipment-tracker/internal/features/shipments/ports"

	"go.uber.org/zap"
)

// transitionRequest is a status change against a shipment resolved by load.
type transitionRequest struct {
	op          string
	load        func(ctx context.Context, repo ports.ShipmentRepository) (*domain.Shipment, error)
	to          domain.ShipmentStatus
	location    string
	actorID     string
	description string
	notes       string
}

// ApplyTransition moves a shipment to a new status and appends the matching
// event in the same transaction.
func (s *ShipmentServiceImpl) ApplyTransition(ctx context.Context, in domain.TransitionInput) (*domain.Shipment, error) {
	return s.transition(ctx, transitionRequest{
		op: "apply_transition",
		load: func(ctx context.Context, repo ports.ShipmentRepository) (*domain.Shipment, error) {
			return repo.FindShipmentByID(ctx, in.ShipmentID)
		},
		to:          in.Status,
		location:    in.LocationAgencyID,
		actorID:     in.ActorID,
		description: in.Description,
		notes:       in.Notes,
	})
}

// Scan applies a status change reported at an agency, resolving the shipment
// by tracking number.
func (s *ShipmentServiceImpl) Scan(ctx context.Context, in domain.ScanInput) (*domain.Shipment, error) {
	trackingNumber := strings.TrimSpace(in.TrackingNumber)
	if trackingNumber == "" {
		return nil, translate(domain.ErrMissingTrackingNumber)
	}
	return s.transition(ctx, transitionRequest{
		op: "scan",
		load: func(ctx context.Context, repo ports.ShipmentRepository) (*domain.Shipment, error) {
			return repo.FindShipmentByTrackingNumber(ctx, trackingNumber)
		},
		to:       in.Status,
		location: in.LocationAgencyID,
		actorID:  in.ActorID,
		notes:    in.Notes,
	})
}

// MarkReturned sends a shipment back to its sender.
func (s *ShipmentServiceImpl) MarkReturned(ctx context.Context, shipmentID, actorID string) (*domain.Shipment, error) {
	return s.transition(ctx, transitionRequest{
		op: "mark_returned",
		load: func(ctx context.Context, repo ports.ShipmentRepository) (*domain.Shipment, error) {
			return repo.FindShipmentByID(ctx, shipmentID)
		},
		to:      domain.StatusReturned,
		actorID: actorID,
	})
}

func (s *ShipmentServiceImpl) transition(ctx context.Context, req transitionRequest) (*domain.Shipment, error) {
	if err := requireActor(req.actorID); err != nil {
		return nil, translate(err)
	}
	if !req.to.IsValid() {
		err := translate(fmt.Errorf("%w: %q", domain.ErrInvalidStatus, req.to))
		s.metrics.ObserveTransition("", string(req.to), resultLabel(err))
		return nil, err
	}

	var from domain.ShipmentStatus
	var updated *domain.Shipment
	err := s.withConflictRetry(ctx, req.op, func() error {
		return s.repo.Atomic(ctx, func(repo ports.ShipmentRepository) error {
			current, err := req.load(ctx, repo)
			if err != nil {
				return err
			}
			from = current.Status

			next, change, err := current.Transition(req.to, req.location, s.now())
			if err != nil {
				return err
			}

			description := req.description
			if description == "" {
				description = domain.DescribeTransition(current.Status, req.to)
			}
			if err := s.write(ctx, repo, current, next, change, description, req.notes, req.actorID); err != nil {
				return err
			}
			updated = next
			return nil
		})
	})
	if err != nil {
		err = translate(err)
		s.metrics.ObserveTransition(string(from), string(req.to), resultLabel(err))
		return nil, err
	}

	s.metrics.ObserveTransition(string(from), string(req.to), resultLabel(nil))
	s.invalidate(ctx, updated)
	s.log.Info("Shipment status changed",
		zap.String("shipment_id", updated.ID),
		zap.String("tracking_number", updated.TrackingNumber),
		zap.String("from", string(from)),
		zap.String("to", string(updated.Status)),
		zap.String("actor_id", req.actorID),
	)
	return updated, nil
}

// write is the single write path for shipment state: the conditional update
// followed by the event describing it. It must run inside repo.Atomic.
func (s *ShipmentServiceImpl) write(
	ctx context.Context,
	repo ports.ShipmentRepository,
	current, next *domain.Shipment,
	change domain.StateChange,
	description, notes, actorID string,
) error {
	if err := repo.UpdateShipmentState(ctx, change); err != nil {
		return err
	}
	return repo.InsertEvent(ctx, &domain.TrackingEvent{
		ID:               s.newEventID(),
		ShipmentID:       next.ID,
		Status:           next.Status,
		PreviousStatus:   current.Status,
		LocationAgencyID: next.CurrentLocationAgencyID,
		Description:      description,
		Notes:            notes,
		ActorID:          actorID,
		CreatedAt:        change.At,
	})
}

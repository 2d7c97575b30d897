package service

import (
	"context"
	"strings"

	"shipment-tracker/internal/core/apperror"
	"shipment-tracker/internal/features/shipments/domain"
	"shipment-tracker/internal/features/shipments/ports"

	"go.uber.org/zap"
)

// GetShipmentWithHistory returns the shipment referenced by id or tracking
// number together with its events and attempts, most recent first.
func (s *ShipmentServiceImpl) GetShipmentWithHistory(ctx context.Context, ref string) (*domain.ShipmentView, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, apperror.New(apperror.CodeValidation, "shipment reference is required")
	}

	if view := s.cachedView(ctx, ref); view != nil {
		return view, nil
	}

	view := &domain.ShipmentView{}
	err := s.repo.Atomic(ctx, func(repo ports.ShipmentRepository) error {
		shipment, err := findByRef(ctx, repo, ref)
		if err != nil {
			return err
		}
		events, err := repo.ListEvents(ctx, shipment.ID, domain.Descending)
		if err != nil {
			return err
		}
		attempts, err := repo.ListAttempts(ctx, shipment.ID)
		if err != nil {
			return err
		}
		view.Shipment, view.Events, view.Attempts = shipment, events, attempts
		return nil
	})
	if err != nil {
		return nil, translate(err)
	}

	if s.views != nil && s.stillCurrent(ctx, view.Shipment) {
		if err := s.views.Set(ctx, view); err != nil {
			s.log.Warn("Failed to cache shipment view", zap.String("ref", ref), zap.Error(err))
		}
	}
	return view, nil
}

// stillCurrent reports whether no write committed since shipment was read.
// A view read before a concurrent write must not be cached after that
// write's invalidation.
func (s *ShipmentServiceImpl) stillCurrent(ctx context.Context, shipment *domain.Shipment) bool {
	latest, err := s.repo.FindShipmentByID(ctx, shipment.ID)
	if err != nil {
		s.log.Warn("Skipping view cache write", zap.String("shipment_id", shipment.ID), zap.Error(err))
		return false
	}
	if latest.Version != shipment.Version || (latest.ArchivedAt == nil) != (shipment.ArchivedAt == nil) {
		s.log.Debug("Shipment changed while its view was read, not caching",
			zap.String("shipment_id", shipment.ID),
			zap.Int64("read_version", shipment.Version),
			zap.Int64("latest_version", latest.Version),
		)
		return false
	}
	return true
}

// GetTrackingHistory returns the events of the referenced shipment, most
// recent first.
func (s *ShipmentServiceImpl) GetTrackingHistory(ctx context.Context, ref string) ([]domain.TrackingEvent, error) {
	view, err := s.GetShipmentWithHistory(ctx, ref)
	if err != nil {
		return nil, err
	}
	return view.Events, nil
}

func (s *ShipmentServiceImpl) cachedView(ctx context.Context, ref string) *domain.ShipmentView {
	if s.views == nil {
		return nil
	}
	view, err := s.views.Get(ctx, ref)
	switch {
	case err != nil:
		s.metrics.ObserveViewCache("error")
		s.log.Warn("Shipment view cache unavailable", zap.String("ref", ref), zap.Error(err))
		return nil
	case view == nil:
		s.metrics.ObserveViewCache("miss")
		return nil
	default:
		s.metrics.ObserveViewCache("hit")
		return view
	}
}

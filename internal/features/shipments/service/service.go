package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"shipment-tracker/internal/core/apperror"
	"shipment-tracker/internal/core/logger"
	"shipment-tracker/internal/core/metrics"
	"shipment-tracker/internal/features/shipments/domain"
	"shipment-tracker/internal/features/shipments/ports"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ShipmentServiceImpl implements ports.ShipmentService.
type ShipmentServiceImpl struct {
	repo    ports.ShipmentRepository
	views   ports.ViewCache
	metrics *metrics.Lifecycle
	retries int
	log     *zap.Logger

	now        func() time.Time
	newID      func() string
	newEventID func() string
}

// NewShipmentService creates a new ShipmentServiceImpl. views and m may be
// nil. A conflicting write is retried conflictRetries times with a fresh
// read before it is reported to the caller.
func NewShipmentService(repo ports.ShipmentRepository, views ports.ViewCache, m *metrics.Lifecycle, conflictRetries int) *ShipmentServiceImpl {
	if conflictRetries < 0 {
		conflictRetries = 0
	}
	return &ShipmentServiceImpl{
		repo:    repo,
		views:   views,
		metrics: m,
		retries: conflictRetries,
		log:     logger.Named("shipments"),
		now: func() time.Time {
			return time.Now().UTC()
		},
		newID: uuid.NewString,
		newEventID: func() string {
			return uuid.Must(uuid.NewV7()).String()
		},
	}
}

// withConflictRetry runs fn until it succeeds, fails with a non-conflict
// error, or the retry budget is spent.
func (s *ShipmentServiceImpl) withConflictRetry(ctx context.Context, op string, fn func() error) error {
	for attempt := 0; ; attempt++ {
		err := fn()
		if !isConflict(err) {
			return err
		}
		s.metrics.IncConflict(op)
		if attempt >= s.retries {
			s.log.Warn("Conflict retries exhausted", zap.String("operation", op), zap.Error(err))
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		s.log.Debug("Retrying after conflict", zap.String("operation", op), zap.Int("attempt", attempt+1), zap.Error(err))
	}
}

func isConflict(err error) bool {
	return errors.Is(err, ports.ErrStaleWrite) || errors.Is(err, ports.ErrDuplicateKey)
}

var validationErrors = []error{
	domain.ErrInvalidOutcome,
	domain.ErrMissingFailureReason,
	domain.ErrInvalidFailureReason,
	domain.ErrUnexpectedFailure,
	domain.ErrMissingRecipient,
	domain.ErrUnexpectedRecipient,
	domain.ErrInvalidGeolocation,
	domain.ErrMissingActor,
	domain.ErrMissingTrackingNumber,
	domain.ErrMissingAgency,
}

// translate maps domain and storage failures onto the apperror taxonomy.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if typed := apperror.As(err); typed != nil {
		return typed
	}

	var illegal *domain.IllegalTransitionError
	switch {
	case errors.Is(err, domain.ErrShipmentNotFound):
		return apperror.Wrap(apperror.CodeNotFound, err, err.Error())
	case errors.Is(err, domain.ErrInvalidStatus):
		return apperror.Wrap(apperror.CodeInvalidStatus, err, err.Error())
	case errors.As(err, &illegal):
		details := map[string]string{
			"from": string(illegal.From),
			"to":   string(illegal.To),
		}
		if illegal.Reason != "" {
			details["reason"] = illegal.Reason
		}
		return apperror.Wrap(apperror.CodeIllegalTransition, err, illegal.Error()).WithDetails(details)
	case isConflict(err):
		return apperror.Wrap(apperror.CodeConflict, err, "shipment was modified concurrently, please refresh and retry")
	}

	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return apperror.Wrap(apperror.CodeValidation, err, err.Error())
		}
	}
	return apperror.Wrap(apperror.CodeInternal, err, "unexpected storage failure")
}

// resultLabel is the metrics label of an operation result.
func resultLabel(err error) string {
	if err == nil {
		return "ok"
	}
	return strings.ToLower(string(apperror.CodeOf(err)))
}

// findByRef resolves a reference as a shipment id when it parses as a UUID,
// falling back to a tracking number.
func findByRef(ctx context.Context, repo ports.ShipmentRepository, ref string) (*domain.Shipment, error) {
	if _, err := uuid.Parse(ref); err == nil {
		shipment, err := repo.FindShipmentByID(ctx, ref)
		if !errors.Is(err, domain.ErrShipmentNotFound) {
			return shipment, err
		}
	}
	return repo.FindShipmentByTrackingNumber(ctx, ref)
}

// invalidate drops cached views after a write. Failures are logged only.
func (s *ShipmentServiceImpl) invalidate(ctx context.Context, shipment *domain.Shipment) {
	if s.views == nil || shipment == nil {
		return
	}
	if err := s.views.Invalidate(ctx, shipment); err != nil {
		s.log.Warn("Failed to invalidate shipment view",
			zap.String("shipment_id", shipment.ID),
			zap.Error(err),
		)
	}
}

func requireActor(actorID string) error {
	if strings.TrimSpace(actorID) == "" {
		return domain.ErrMissingActor
	}
	return nil
}

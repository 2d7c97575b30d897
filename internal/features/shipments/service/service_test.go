package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"shipment-tracker/internal/core/apperror"
	"shipment-tracker/internal/core/database/dbtest"
	"shipment-tracker/internal/core/metrics"
	"shipment-tracker/internal/features/shipments/adapters"
	"shipment-tracker/internal/features/shipments/domain"
	"shipment-tracker/internal/features/shipments/ports"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clock hands out strictly increasing timestamps.
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

type fixture struct {
	svc  *ShipmentServiceImpl
	repo *adapters.GormShipmentRepository
	reg  *prometheus.Registry
}

func newFixture(t *testing.T, views ports.ViewCache) *fixture {
	t.Helper()
	repo := adapters.NewGormShipmentRepository(dbtest.New(t))
	return newFixtureWithRepo(t, repo, repo, views, 1)
}

func newFixtureWithRepo(t *testing.T, base *adapters.GormShipmentRepository, repo ports.ShipmentRepository, views ports.ViewCache, retries int) *fixture {
	t.Helper()
	reg := prometheus.NewRegistry()
	svc := NewShipmentService(repo, views, metrics.NewLifecycle(reg), retries)
	c := &clock{now: time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)}
	svc.now = c.Now
	return &fixture{svc: svc, repo: base, reg: reg}
}

func (f *fixture) create(t *testing.T, tn string) *domain.Shipment {
	t.Helper()
	s, err := f.svc.CreateShipment(context.Background(), domain.IntakeInput{
		TrackingNumber:      tn,
		OriginAgencyID:      "AG-ORIGIN",
		DestinationAgencyID: "AG-DEST",
		ActorID:             "clerk-1",
	})
	require.NoError(t, err)
	return s
}

func (f *fixture) move(t *testing.T, id string, statuses ...domain.ShipmentStatus) *domain.Shipment {
	t.Helper()
	var s *domain.Shipment
	for _, st := range statuses {
		var err error
		s, err = f.svc.ApplyTransition(context.Background(), domain.TransitionInput{
			ShipmentID: id,
			Status:     st,
			ActorID:    "agent-1",
		})
		require.NoError(t, err, "moving to %s", st)
	}
	return s
}

func (f *fixture) load(t *testing.T, id string) *domain.Shipment {
	t.Helper()
	s, err := f.repo.FindShipmentByID(context.Background(), id)
	require.NoError(t, err)
	return s
}

func assertCode(t *testing.T, err error, code apperror.Code) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, code, apperror.CodeOf(err), "error: %v", err)
}

// racingRepo injects a competing write inside the transaction right before
// the service's own conditional update. staleMax makes MaxAttemptNumber
// answer as if the latest attempt had not been committed yet.
type racingRepo struct {
	ports.ShipmentRepository
	mu       sync.Mutex
	races    int
	updates  int
	staleMax int
	inserts  int
}

func (r *racingRepo) Atomic(ctx context.Context, fn func(repo ports.ShipmentRepository) error) error {
	return r.ShipmentRepository.Atomic(ctx, func(tx ports.ShipmentRepository) error {
		return fn(&racingTx{ShipmentRepository: tx, parent: r})
	})
}

type racingTx struct {
	ports.ShipmentRepository
	parent *racingRepo
}

func (tx *racingTx) UpdateShipmentState(ctx context.Context, change domain.StateChange) error {
	tx.parent.mu.Lock()
	tx.parent.updates++
	race := tx.parent.races > 0
	if race {
		tx.parent.races--
	}
	tx.parent.mu.Unlock()

	if race {
		competing := change
		competing.Status = change.ExpectedStatus
		competing.At = change.At.Add(-time.Millisecond)
		if err := tx.ShipmentRepository.UpdateShipmentState(ctx, competing); err != nil {
			return err
		}
	}
	return tx.ShipmentRepository.UpdateShipmentState(ctx, change)
}

func (tx *racingTx) MaxAttemptNumber(ctx context.Context, shipmentID string) (int, error) {
	highest, err := tx.ShipmentRepository.MaxAttemptNumber(ctx, shipmentID)
	if err != nil {
		return 0, err
	}
	tx.parent.mu.Lock()
	defer tx.parent.mu.Unlock()
	if tx.parent.staleMax > 0 && highest > 0 {
		tx.parent.staleMax--
		return highest - 1, nil
	}
	return highest, nil
}

func (tx *racingTx) InsertAttempt(ctx context.Context, attempt *domain.DeliveryAttempt) error {
	tx.parent.mu.Lock()
	tx.parent.inserts++
	tx.parent.mu.Unlock()
	return tx.ShipmentRepository.InsertAttempt(ctx, attempt)
}

// interleavingRepo runs afterCommit once, right after the next transaction
// commits and before the caller continues.
type interleavingRepo struct {
	ports.ShipmentRepository
	afterCommit func()
}

func (r *interleavingRepo) Atomic(ctx context.Context, fn func(repo ports.ShipmentRepository) error) error {
	if err := r.ShipmentRepository.Atomic(ctx, fn); err != nil {
		return err
	}
	if hook := r.afterCommit; hook != nil {
		r.afterCommit = nil
		hook()
	}
	return nil
}

const conflictsHelp = `
# HELP lifecycle_conflicts_total Optimistic concurrency conflicts by operation.
# TYPE lifecycle_conflicts_total counter
`

func TestShipmentService_ConflictRetry(t *testing.T) {
	ctx := context.Background()

	t.Run("RetriedOnceThenSucceeds", func(t *testing.T) {
		base := adapters.NewGormShipmentRepository(dbtest.New(t))
		racing := &racingRepo{ShipmentRepository: base, races: 1}
		f := newFixtureWithRepo(t, base, racing, nil, 1)
		s := f.create(t, "TN-RACE-1")

		updated, err := f.svc.ApplyTransition(ctx, domain.TransitionInput{
			ShipmentID: s.ID, Status: domain.StatusReceived, ActorID: "agent-1",
		})
		require.NoError(t, err)
		assert.Equal(t, domain.StatusReceived, updated.Status)
		assert.Equal(t, 2, racing.updates, "one failed write and one retry")

		stored := f.load(t, s.ID)
		assert.Equal(t, domain.StatusReceived, stored.Status)
		assert.Equal(t, int64(2), stored.Version)

		events, err := f.svc.ListEvents(ctx, s.ID, domain.Ascending)
		require.NoError(t, err)
		require.Len(t, events, 2)
		assert.Equal(t, domain.StatusReceived, events[1].Status)

		expected := conflictsHelp + `lifecycle_conflicts_total{operation="apply_transition"} 1` + "\n"
		assert.NoError(t, testutil.GatherAndCompare(f.reg, strings.NewReader(expected), "lifecycle_conflicts_total"))
	})

	t.Run("SurfacedWhenRetriesExhausted", func(t *testing.T) {
		base := adapters.NewGormShipmentRepository(dbtest.New(t))
		racing := &racingRepo{ShipmentRepository: base, races: 2}
		f := newFixtureWithRepo(t, base, racing, nil, 1)
		s := f.create(t, "TN-RACE-2")

		_, err := f.svc.ApplyTransition(ctx, domain.TransitionInput{
			ShipmentID: s.ID, Status: domain.StatusReceived, ActorID: "agent-1",
		})
		assertCode(t, err, apperror.CodeConflict)
		assert.True(t, errors.Is(err, ports.ErrStaleWrite))
		assert.True(t, apperror.MetadataFor(apperror.CodeOf(err)).Retryable)

		stored := f.load(t, s.ID)
		assert.Equal(t, domain.StatusCreated, stored.Status)
		assert.Equal(t, int64(1), stored.Version)

		events, err := f.svc.ListEvents(ctx, s.ID, domain.Descending)
		require.NoError(t, err)
		assert.Len(t, events, 1)
	})

	t.Run("NoRetryBudget", func(t *testing.T) {
		base := adapters.NewGormShipmentRepository(dbtest.New(t))
		racing := &racingRepo{ShipmentRepository: base, races: 1}
		f := newFixtureWithRepo(t, base, racing, nil, 0)
		s := f.create(t, "TN-RACE-3")

		_, err := f.svc.ApplyTransition(ctx, domain.TransitionInput{
			ShipmentID: s.ID, Status: domain.StatusReceived, ActorID: "agent-1",
		})
		assertCode(t, err, apperror.CodeConflict)
	})

	t.Run("AttemptRetried", func(t *testing.T) {
		base := adapters.NewGormShipmentRepository(dbtest.New(t))
		racing := &racingRepo{ShipmentRepository: base}
		f := newFixtureWithRepo(t, base, racing, nil, 1)
		s := f.create(t, "TN-RACE-4")
		f.move(t, s.ID, domain.StatusReceived, domain.StatusInTransit, domain.StatusArrived, domain.StatusOutForDelivery)

		racing.races = 1
		attempt, err := f.svc.RecordAttempt(ctx, domain.AttemptInput{
			ShipmentID: s.ID,
			Outcome:    domain.OutcomeFailed,
			Details:    domain.AttemptDetails{FailureReason: domain.ReasonRefused},
			ActorID:    "courier-1",
		})
		require.NoError(t, err)
		assert.Equal(t, 1, attempt.AttemptNumber)

		attempts, err := base.ListAttempts(ctx, s.ID)
		require.NoError(t, err)
		assert.Len(t, attempts, 1, "the rolled back attempt must not survive")
	})

	t.Run("AttemptNumberCollisionRetried", func(t *testing.T) {
		base := adapters.NewGormShipmentRepository(dbtest.New(t))
		racing := &racingRepo{ShipmentRepository: base}
		f := newFixtureWithRepo(t, base, racing, nil, 1)
		s := f.create(t, "TN-RACE-5")
		f.move(t, s.ID, domain.StatusReceived, domain.StatusInTransit, domain.StatusArrived, domain.StatusOutForDelivery)

		pending := domain.AttemptInput{ShipmentID: s.ID, Outcome: domain.OutcomePending, ActorID: "courier-1"}
		first, err := f.svc.RecordAttempt(ctx, pending)
		require.NoError(t, err)
		assert.Equal(t, 1, first.AttemptNumber)

		racing.staleMax = 1
		racing.inserts = 0
		second, err := f.svc.RecordAttempt(ctx, pending)
		require.NoError(t, err)
		assert.Equal(t, 2, second.AttemptNumber)
		assert.Equal(t, 2, racing.inserts, "one colliding insert and one retry")

		attempts, err := base.ListAttempts(ctx, s.ID)
		require.NoError(t, err)
		numbers := make([]int, 0, len(attempts))
		for _, a := range attempts {
			numbers = append(numbers, a.AttemptNumber)
		}
		assert.ElementsMatch(t, []int{1, 2}, numbers)

		// create + four moves + two pending attempts
		assert.Equal(t, int64(7), f.load(t, s.ID).Version)

		expected := conflictsHelp + `lifecycle_conflicts_total{operation="record_attempt"} 1` + "\n"
		assert.NoError(t, testutil.GatherAndCompare(f.reg, strings.NewReader(expected), "lifecycle_conflicts_total"))
	})

	t.Run("AttemptNumberCollisionExhausted", func(t *testing.T) {
		base := adapters.NewGormShipmentRepository(dbtest.New(t))
		racing := &racingRepo{ShipmentRepository: base}
		f := newFixtureWithRepo(t, base, racing, nil, 0)
		s := f.create(t, "TN-RACE-6")
		f.move(t, s.ID, domain.StatusReceived, domain.StatusInTransit, domain.StatusArrived, domain.StatusOutForDelivery)

		pending := domain.AttemptInput{ShipmentID: s.ID, Outcome: domain.OutcomePending, ActorID: "courier-1"}
		_, err := f.svc.RecordAttempt(ctx, pending)
		require.NoError(t, err)

		racing.staleMax = 1
		_, err = f.svc.RecordAttempt(ctx, pending)
		assertCode(t, err, apperror.CodeConflict)
		assert.True(t, errors.Is(err, ports.ErrDuplicateKey))

		attempts, err := base.ListAttempts(ctx, s.ID)
		require.NoError(t, err)
		assert.Len(t, attempts, 1)
		assert.Equal(t, int64(6), f.load(t, s.ID).Version)
	})
}

func TestTranslate(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code apperror.Code
	}{
		{"NotFound", domain.ErrShipmentNotFound, apperror.CodeNotFound},
		{"InvalidStatus", domain.ErrInvalidStatus, apperror.CodeInvalidStatus},
		{"Illegal", &domain.IllegalTransitionError{From: domain.StatusCreated, To: domain.StatusDelivered}, apperror.CodeIllegalTransition},
		{"Stale", ports.ErrStaleWrite, apperror.CodeConflict},
		{"Duplicate", ports.ErrDuplicateKey, apperror.CodeConflict},
		{"Validation", domain.ErrMissingRecipient, apperror.CodeValidation},
		{"Actor", domain.ErrMissingActor, apperror.CodeValidation},
		{"Unknown", errors.New("disk on fire"), apperror.CodeInternal},
		{"AlreadyCoded", apperror.New(apperror.CodeValidation, "bad"), apperror.CodeValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertCode(t, translate(tt.err), tt.code)
		})
	}

	assert.NoError(t, translate(nil))

	illegal := apperror.As(translate(&domain.IllegalTransitionError{
		From: domain.StatusDelivered, To: domain.StatusInTransit, Reason: "shipment is in a terminal state",
	}))
	require.NotNil(t, illegal)
	assert.Equal(t, map[string]string{
		"from":   "DELIVERED",
		"to":     "IN_TRANSIT",
		"reason": "shipment is in a terminal state",
	}, illegal.Details())
}

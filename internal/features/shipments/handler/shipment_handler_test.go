package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"shipment-tracker/internal/core/apperror"
	"shipment-tracker/internal/features/shipments/domain"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockShipmentService is a mock implementation of ports.ShipmentService
type MockShipmentService struct {
	mock.Mock
}

func (m *MockShipmentService) CreateShipment(ctx context.Context, in domain.IntakeInput) (*domain.Shipment, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Shipment), args.Error(1)
}

func (m *MockShipmentService) ArchiveShipment(ctx context.Context, shipmentID, actorID string) (*domain.Shipment, error) {
	args := m.Called(ctx, shipmentID, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Shipment), args.Error(1)
}

func (m *MockShipmentService) ApplyTransition(ctx context.Context, in domain.TransitionInput) (*domain.Shipment, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Shipment), args.Error(1)
}

func (m *MockShipmentService) Scan(ctx context.Context, in domain.ScanInput) (*domain.Shipment, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Shipment), args.Error(1)
}

func (m *MockShipmentService) MarkReturned(ctx context.Context, shipmentID, actorID string) (*domain.Shipment, error) {
	args := m.Called(ctx, shipmentID, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Shipment), args.Error(1)
}

func (m *MockShipmentService) RecordAttempt(ctx context.Context, in domain.AttemptInput) (*domain.DeliveryAttempt, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DeliveryAttempt), args.Error(1)
}

func (m *MockShipmentService) AppendEvent(ctx context.Context, in domain.EventInput) (*domain.TrackingEvent, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TrackingEvent), args.Error(1)
}

func (m *MockShipmentService) ListEvents(ctx context.Context, shipmentID string, order domain.SortOrder) ([]domain.TrackingEvent, error) {
	args := m.Called(ctx, shipmentID, order)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TrackingEvent), args.Error(1)
}

func (m *MockShipmentService) GetShipmentWithHistory(ctx context.Context, ref string) (*domain.ShipmentView, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ShipmentView), args.Error(1)
}

func (m *MockShipmentService) GetTrackingHistory(ctx context.Context, ref string) ([]domain.TrackingEvent, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TrackingEvent), args.Error(1)
}

func setupApp(service *MockShipmentService) *fiber.App {
	app := fiber.New()
	app.Use(requestid.New(requestid.Config{Header: "X-Ray-ID"}))
	NewShipmentHandler(service).Register(app)
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func decodeError(t *testing.T, data []byte) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(data, &resp))
	return resp
}

var sampleShipment = &domain.Shipment{
	ID:             "7c9e6679-7425-40de-944b-e07fc1f90ae7",
	TrackingNumber: "TN-100",
	Status:         domain.StatusReceived,
	Version:        2,
	CreatedAt:      time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC),
	UpdatedAt:      time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC),
}

func TestShipmentHandler_CreateShipment(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockService := new(MockShipmentService)
		app := setupApp(mockService)

		in := domain.IntakeInput{TrackingNumber: "TN-100", OriginAgencyID: "A", DestinationAgencyID: "B", ActorID: "clerk"}
		mockService.On("CreateShipment", mock.Anything, in).Return(sampleShipment, nil).Once()

		resp, _ := doJSON(t, app, http.MethodPost, "/shipments", CreateShipmentRequest{
			TrackingNumber: "TN-100", OriginAgencyID: "A", DestinationAgencyID: "B", ActorID: "clerk",
		})
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		mockService.AssertExpectations(t)
	})

	t.Run("ValidationFailure", func(t *testing.T) {
		mockService := new(MockShipmentService)
		app := setupApp(mockService)

		resp, data := doJSON(t, app, http.MethodPost, "/shipments", CreateShipmentRequest{OriginAgencyID: "A"})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		body := decodeError(t, data)
		assert.Equal(t, "VALIDATION_ERROR", body.Code)
		assert.NotEmpty(t, body.RayID)
		assert.Equal(t, resp.Header.Get("X-Ray-ID"), body.RayID)
		details, ok := body.Details.(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "is required", details["tracking_number"])
		assert.Equal(t, "is required", details["actor_id"])
		mockService.AssertNotCalled(t, "CreateShipment", mock.Anything, mock.Anything)
	})

	t.Run("MalformedBody", func(t *testing.T) {
		mockService := new(MockShipmentService)
		app := setupApp(mockService)

		req := httptest.NewRequest(http.MethodPost, "/shipments", bytes.NewReader([]byte("{")))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("DuplicateTrackingNumber", func(t *testing.T) {
		mockService := new(MockShipmentService)
		app := setupApp(mockService)

		mockService.On("CreateShipment", mock.Anything, mock.Anything).
			Return(nil, apperror.New(apperror.CodeConflict, "tracking number is already registered")).Once()

		resp, data := doJSON(t, app, http.MethodPost, "/shipments", CreateShipmentRequest{
			TrackingNumber: "TN-100", OriginAgencyID: "A", DestinationAgencyID: "B", ActorID: "clerk",
		})
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		assert.Equal(t, "CONFLICT", decodeError(t, data).Code)
	})
}

func TestShipmentHandler_ApplyTransition(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockService := new(MockShipmentService)
		app := setupApp(mockService)

		in := domain.TransitionInput{
			ShipmentID:       sampleShipment.ID,
			Status:           domain.StatusInTransit,
			LocationAgencyID: "AG-2",
			ActorID:          "agent",
			Notes:            "loaded on truck 4",
		}
		mockService.On("ApplyTransition", mock.Anything, in).Return(sampleShipment, nil).Once()

		resp, data := doJSON(t, app, http.MethodPost, "/shipments/"+sampleShipment.ID+"/transitions", TransitionRequest{
			Status: "IN_TRANSIT", LocationAgencyID: "AG-2", ActorID: "agent", Notes: "loaded on truck 4",
		})
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var got domain.Shipment
		require.NoError(t, json.Unmarshal(data, &got))
		assert.Equal(t, sampleShipment.ID, got.ID)
		mockService.AssertExpectations(t)
	})

	t.Run("IllegalTransition", func(t *testing.T) {
		mockService := new(MockShipmentService)
		app := setupApp(mockService)

		err := apperror.New(apperror.CodeIllegalTransition, "illegal transition from DELIVERED to IN_TRANSIT").
			WithDetails(map[string]string{"from": "DELIVERED", "to": "IN_TRANSIT"})
		mockService.On("ApplyTransition", mock.Anything, mock.Anything).Return(nil, err).Once()

		resp, data := doJSON(t, app, http.MethodPost, "/shipments/x/transitions", TransitionRequest{Status: "IN_TRANSIT", ActorID: "agent"})
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

		body := decodeError(t, data)
		assert.Equal(t, "ILLEGAL_TRANSITION", body.Code)
		assert.Equal(t, map[string]any{"from": "DELIVERED", "to": "IN_TRANSIT"}, body.Details)
	})

	t.Run("InternalErrorIsMasked", func(t *testing.T) {
		mockService := new(MockShipmentService)
		app := setupApp(mockService)

		err := apperror.Wrap(apperror.CodeInternal, assert.AnError, "unexpected storage failure")
		mockService.On("ApplyTransition", mock.Anything, mock.Anything).Return(nil, err).Once()

		resp, data := doJSON(t, app, http.MethodPost, "/shipments/x/transitions", TransitionRequest{Status: "IN_TRANSIT", ActorID: "agent"})
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

		body := decodeError(t, data)
		assert.Equal(t, "internal server error", body.Message)
		assert.Nil(t, body.Details)
	})
}

func TestShipmentHandler_RecordAttempt(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockService := new(MockShipmentService)
		app := setupApp(mockService)

		attempt := &domain.DeliveryAttempt{ID: "a-1", ShipmentID: "s-1", AttemptNumber: 1, Outcome: domain.OutcomeSuccess}
		mockService.On("RecordAttempt", mock.Anything, mock.MatchedBy(func(in domain.AttemptInput) bool {
			return in.ShipmentID == "s-1" &&
				in.Outcome == domain.OutcomeSuccess &&
				in.Details.Recipient != nil && in.Details.Recipient.Name == "Ana" &&
				in.Details.Location != nil && in.Details.Location.Latitude == 4.6
		})).Return(attempt, nil).Once()

		resp, _ := doJSON(t, app, http.MethodPost, "/shipments/s-1/attempts", AttemptRequest{
			Outcome:   "SUCCESS",
			Recipient: &RecipientRequest{Name: "Ana"},
			Location:  &GeoPointRequest{Latitude: 4.6, Longitude: -74.1},
			ActorID:   "courier",
		})
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		mockService.AssertExpectations(t)
	})

	t.Run("RejectsUnknownOutcome", func(t *testing.T) {
		mockService := new(MockShipmentService)
		app := setupApp(mockService)

		resp, data := doJSON(t, app, http.MethodPost, "/shipments/s-1/attempts", AttemptRequest{Outcome: "LOST", ActorID: "courier"})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		details := decodeError(t, data).Details.(map[string]any)
		assert.Equal(t, "must be one of SUCCESS FAILED PENDING", details["outcome"])
	})

	t.Run("RejectsOutOfRangeLocation", func(t *testing.T) {
		mockService := new(MockShipmentService)
		app := setupApp(mockService)

		resp, _ := doJSON(t, app, http.MethodPost, "/shipments/s-1/attempts", AttemptRequest{
			Outcome:  "PENDING",
			Location: &GeoPointRequest{Latitude: 120, Longitude: 0},
			ActorID:  "courier",
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestShipmentHandler_Events(t *testing.T) {
	events := []domain.TrackingEvent{
		{ID: "e2", Status: domain.StatusReceived, Notes: "internal", ActorID: "agent-7", Description: "Shipment received at agency"},
		{ID: "e1", Status: domain.StatusCreated, ActorID: "clerk-1", Description: "Shipment registered"},
	}

	t.Run("ListAscending", func(t *testing.T) {
		mockService := new(MockShipmentService)
		app := setupApp(mockService)
		mockService.On("ListEvents", mock.Anything, "s-1", domain.Ascending).Return(events, nil).Once()

		resp, _ := doJSON(t, app, http.MethodGet, "/shipments/s-1/events?order=ASC", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		mockService.AssertExpectations(t)
	})

	t.Run("ListBadOrder", func(t *testing.T) {
		mockService := new(MockShipmentService)
		app := setupApp(mockService)

		resp, _ := doJSON(t, app, http.MethodGet, "/shipments/s-1/events?order=up", nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("Append", func(t *testing.T) {
		mockService := new(MockShipmentService)
		app := setupApp(mockService)
		in := domain.EventInput{ShipmentID: "s-1", Status: domain.StatusReceived, Description: "Label reprinted", ActorID: "clerk"}
		mockService.On("AppendEvent", mock.Anything, in).Return(&events[0], nil).Once()

		resp, _ := doJSON(t, app, http.MethodPost, "/shipments/s-1/events", AppendEventRequest{
			Status: "RECEIVED", Description: "Label reprinted", ActorID: "clerk",
		})
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		mockService.AssertExpectations(t)
	})

	t.Run("PublicTrackingHidesInternals", func(t *testing.T) {
		mockService := new(MockShipmentService)
		app := setupApp(mockService)
		shipment := *sampleShipment
		shipment.Status = domain.StatusInTransit
		view := &domain.ShipmentView{Shipment: &shipment, Events: events, Attempts: []domain.DeliveryAttempt{}}
		mockService.On("GetShipmentWithHistory", mock.Anything, "TN-100").Return(view, nil).Once()

		resp, data := doJSON(t, app, http.MethodGet, "/tracking/TN-100", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body PublicTrackingResponse
		require.NoError(t, json.Unmarshal(data, &body))
		assert.Equal(t, "TN-100", body.Reference)
		assert.Equal(t, domain.StatusInTransit, body.CurrentStatus, "status comes from the shipment, not the newest event")
		assert.Len(t, body.Events, 2)
		assert.NotContains(t, string(data), "agent-7")
		assert.NotContains(t, string(data), "internal")
	})
}

func TestShipmentHandler_GetShipment(t *testing.T) {
	t.Run("Found", func(t *testing.T) {
		mockService := new(MockShipmentService)
		app := setupApp(mockService)
		view := &domain.ShipmentView{Shipment: sampleShipment, Events: []domain.TrackingEvent{}, Attempts: []domain.DeliveryAttempt{}}
		mockService.On("GetShipmentWithHistory", mock.Anything, "TN-100").Return(view, nil).Once()

		resp, data := doJSON(t, app, http.MethodGet, "/shipments/TN-100", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, string(data), `"events":[]`)
	})

	t.Run("NotFound", func(t *testing.T) {
		mockService := new(MockShipmentService)
		app := setupApp(mockService)
		mockService.On("GetShipmentWithHistory", mock.Anything, "TN-404").
			Return(nil, apperror.New(apperror.CodeNotFound, "shipment not found: TN-404")).Once()

		resp, data := doJSON(t, app, http.MethodGet, "/shipments/TN-404", nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "NOT_FOUND", decodeError(t, data).Code)
	})
}

func TestShipmentHandler_ScanReturnArchive(t *testing.T) {
	mockService := new(MockShipmentService)
	app := setupApp(mockService)

	mockService.On("Scan", mock.Anything, domain.ScanInput{
		TrackingNumber: "TN-100", Status: domain.StatusReceived, LocationAgencyID: "AG-1", ActorID: "scanner",
	}).Return(sampleShipment, nil).Once()
	mockService.On("MarkReturned", mock.Anything, "s-1", "agent").Return(sampleShipment, nil).Once()
	mockService.On("ArchiveShipment", mock.Anything, "s-1", "agent").Return(sampleShipment, nil).Once()

	resp, _ := doJSON(t, app, http.MethodPost, "/scans", ScanRequest{
		TrackingNumber: "TN-100", Status: "RECEIVED", LocationAgencyID: "AG-1", ActorID: "scanner",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodPost, "/shipments/s-1/return", ActorRequest{ActorID: "agent"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodPost, "/shipments/s-1/archive", ActorRequest{ActorID: "agent"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodPost, "/shipments/s-1/archive", ActorRequest{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	mockService.AssertExpectations(t)
}

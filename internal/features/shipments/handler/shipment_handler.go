package handler

import (
	"shipment-tracker/internal/core/apperror"
	"shipment-tracker/internal/core/logger"
	"shipment-tracker/internal/features/shipments/domain"
	"shipment-tracker/internal/features/shipments/ports"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ShipmentHandler handles HTTP requests for the shipment lifecycle.
type ShipmentHandler struct {
	service ports.ShipmentService
}

// NewShipmentHandler creates a new ShipmentHandler.
func NewShipmentHandler(service ports.ShipmentService) *ShipmentHandler {
	return &ShipmentHandler{
		service: service,
	}
}

// Register mounts the shipment routes on router.
func (h *ShipmentHandler) Register(router fiber.Router) {
	router.Post("/shipments", h.CreateShipment)
	router.Get("/shipments/:ref", h.GetShipment)
	router.Post("/shipments/:id/transitions", h.ApplyTransition)
	router.Post("/shipments/:id/attempts", h.RecordAttempt)
	router.Post("/shipments/:id/return", h.MarkReturned)
	router.Post("/shipments/:id/archive", h.ArchiveShipment)
	router.Post("/shipments/:id/events", h.AppendEvent)
	router.Get("/shipments/:id/events", h.ListEvents)
	router.Post("/scans", h.Scan)
	router.Get("/tracking/:ref", h.GetPublicTracking)
}

// CreateShipment godoc
// @Summary Register a shipment
// @Description Creates a shipment in CREATED status at its origin agency.
// @Tags shipments
// @Accept json
// @Produce json
// @Param shipment body CreateShipmentRequest true "Shipment intake"
// @Success 201 {object} domain.Shipment
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /shipments [post]
func (h *ShipmentHandler) CreateShipment(c *fiber.Ctx) error {
	var req CreateShipmentRequest
	if err := parseBody(c, &req); err != nil {
		return writeError(c, err)
	}

	shipment, err := h.service.CreateShipment(c.UserContext(), domain.IntakeInput{
		TrackingNumber:      req.TrackingNumber,
		OriginAgencyID:      req.OriginAgencyID,
		DestinationAgencyID: req.DestinationAgencyID,
		ActorID:             req.ActorID,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(shipment)
}

// GetShipment godoc
// @Summary Get a shipment with its history
// @Description Resolves the reference as a shipment id, then as a tracking number, and returns the shipment with its events and delivery attempts (most recent first).
// @Tags shipments
// @Produce json
// @Param ref path string true "Shipment id or tracking number"
// @Success 200 {object} domain.ShipmentView
// @Failure 404 {object} ErrorResponse
// @Router /shipments/{ref} [get]
func (h *ShipmentHandler) GetShipment(c *fiber.Ctx) error {
	view, err := h.service.GetShipmentWithHistory(c.UserContext(), c.Params("ref"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(view)
}

// ApplyTransition godoc
// @Summary Change the status of a shipment
// @Tags shipments
// @Accept json
// @Produce json
// @Param id path string true "Shipment id"
// @Param transition body TransitionRequest true "Target status"
// @Success 200 {object} domain.Shipment
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /shipments/{id}/transitions [post]
func (h *ShipmentHandler) ApplyTransition(c *fiber.Ctx) error {
	var req TransitionRequest
	if err := parseBody(c, &req); err != nil {
		return writeError(c, err)
	}

	shipment, err := h.service.ApplyTransition(c.UserContext(), domain.TransitionInput{
		ShipmentID:       c.Params("id"),
		Status:           domain.ShipmentStatus(req.Status),
		LocationAgencyID: req.LocationAgencyID,
		ActorID:          req.ActorID,
		Description:      req.Description,
		Notes:            req.Notes,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(shipment)
}

// RecordAttempt godoc
// @Summary Record a delivery attempt
// @Description Stores the next numbered attempt and moves the shipment to DELIVERED, FAILED_DELIVERY or keeps OUT_FOR_DELIVERY for PENDING.
// @Tags shipments
// @Accept json
// @Produce json
// @Param id path string true "Shipment id"
// @Param attempt body AttemptRequest true "Attempt outcome"
// @Success 201 {object} domain.DeliveryAttempt
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /shipments/{id}/attempts [post]
func (h *ShipmentHandler) RecordAttempt(c *fiber.Ctx) error {
	var req AttemptRequest
	if err := parseBody(c, &req); err != nil {
		return writeError(c, err)
	}

	attempt, err := h.service.RecordAttempt(c.UserContext(), req.toInput(c.Params("id")))
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(attempt)
}

// MarkReturned godoc
// @Summary Return a shipment to its sender
// @Tags shipments
// @Accept json
// @Produce json
// @Param id path string true "Shipment id"
// @Param actor body ActorRequest true "Actor"
// @Success 200 {object} domain.Shipment
// @Failure 404 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /shipments/{id}/return [post]
func (h *ShipmentHandler) MarkReturned(c *fiber.Ctx) error {
	var req ActorRequest
	if err := parseBody(c, &req); err != nil {
		return writeError(c, err)
	}

	shipment, err := h.service.MarkReturned(c.UserContext(), c.Params("id"), req.ActorID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(shipment)
}

// ArchiveShipment godoc
// @Summary Archive a terminal shipment
// @Tags shipments
// @Accept json
// @Produce json
// @Param id path string true "Shipment id"
// @Param actor body ActorRequest true "Actor"
// @Success 200 {object} domain.Shipment
// @Failure 404 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /shipments/{id}/archive [post]
func (h *ShipmentHandler) ArchiveShipment(c *fiber.Ctx) error {
	var req ActorRequest
	if err := parseBody(c, &req); err != nil {
		return writeError(c, err)
	}

	shipment, err := h.service.ArchiveShipment(c.UserContext(), c.Params("id"), req.ActorID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(shipment)
}

// AppendEvent godoc
// @Summary Append a tracking event
// @Description Adds an event to the timeline without changing the shipment status.
// @Tags events
// @Accept json
// @Produce json
// @Param id path string true "Shipment id"
// @Param event body AppendEventRequest true "Event"
// @Success 201 {object} domain.TrackingEvent
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /shipments/{id}/events [post]
func (h *ShipmentHandler) AppendEvent(c *fiber.Ctx) error {
	var req AppendEventRequest
	if err := parseBody(c, &req); err != nil {
		return writeError(c, err)
	}

	event, err := h.service.AppendEvent(c.UserContext(), domain.EventInput{
		ShipmentID:       c.Params("id"),
		Status:           domain.ShipmentStatus(req.Status),
		LocationAgencyID: req.LocationAgencyID,
		Description:      req.Description,
		Notes:            req.Notes,
		ActorID:          req.ActorID,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(event)
}

// ListEvents godoc
// @Summary List the events of a shipment
// @Tags events
// @Produce json
// @Param id path string true "Shipment id"
// @Param order query string false "asc or desc (default desc)"
// @Success 200 {array} domain.TrackingEvent
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /shipments/{id}/events [get]
func (h *ShipmentHandler) ListEvents(c *fiber.Ctx) error {
	order, ok := domain.ParseSortOrder(c.Query("order"))
	if !ok {
		return writeError(c, apperror.Newf(apperror.CodeValidation, "order must be asc or desc, got %q", c.Query("order")))
	}

	events, err := h.service.ListEvents(c.UserContext(), c.Params("id"), order)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(events)
}

// Scan godoc
// @Summary Report an agency scan
// @Description Applies a status change to the shipment identified by tracking number.
// @Tags shipments
// @Accept json
// @Produce json
// @Param scan body ScanRequest true "Scan"
// @Success 200 {object} domain.Shipment
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /scans [post]
func (h *ShipmentHandler) Scan(c *fiber.Ctx) error {
	var req ScanRequest
	if err := parseBody(c, &req); err != nil {
		return writeError(c, err)
	}

	shipment, err := h.service.Scan(c.UserContext(), domain.ScanInput{
		TrackingNumber:   req.TrackingNumber,
		Status:           domain.ShipmentStatus(req.Status),
		LocationAgencyID: req.LocationAgencyID,
		ActorID:          req.ActorID,
		Notes:            req.Notes,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(shipment)
}

// GetPublicTracking godoc
// @Summary Public tracking timeline
// @Description Returns the current status and timeline of a shipment without actor identities or internal notes.
// @Tags tracking
// @Produce json
// @Param ref path string true "Tracking number or shipment id"
// @Success 200 {object} PublicTrackingResponse
// @Failure 404 {object} ErrorResponse
// @Router /tracking/{ref} [get]
func (h *ShipmentHandler) GetPublicTracking(c *fiber.Ctx) error {
	view, err := h.service.GetShipmentWithHistory(c.UserContext(), c.Params("ref"))
	if err != nil {
		return writeError(c, err)
	}

	// Appended events may carry any status; the shipment holds the current one.
	return c.JSON(PublicTrackingResponse{
		Reference:     view.Shipment.TrackingNumber,
		CurrentStatus: view.Shipment.Status,
		Events:        domain.PublicTimeline(view.Events),
	})
}

// writeError renders err using the apperror taxonomy. Internal details are
// only logged.
func writeError(c *fiber.Ctx, err error) error {
	appErr := apperror.As(err)
	if appErr == nil {
		appErr = apperror.Wrap(apperror.CodeInternal, err, "unexpected error")
	}
	meta := apperror.MetadataFor(appErr.Code())

	resp := ErrorResponse{
		Message: meta.PublicMessage,
		Code:    string(appErr.Code()),
		RayID:   rayID(c),
	}
	if meta.DetailsAllowed {
		resp.Message = appErr.Message()
		resp.Details = appErr.Details()
	}

	fields := []zap.Field{
		zap.String("code", string(appErr.Code())),
		zap.String("ray_id", resp.RayID),
		zap.String("path", c.Path()),
		zap.Error(err),
	}
	if meta.HTTPStatus >= fiber.StatusInternalServerError {
		logger.Get().Error("Request failed", fields...)
	} else {
		logger.Get().Debug("Request rejected", fields...)
	}
	return c.Status(meta.HTTPStatus).JSON(resp)
}

func rayID(c *fiber.Ctx) string {
	id, _ := c.Locals("requestid").(string)
	return id
}

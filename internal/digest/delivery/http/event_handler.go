package http

import (
	"errors"
	"net/http"
	"strconv"

	"sf-weekly-pulse/internal/digest/dto"
	"sf-weekly-pulse/internal/digest/repository"
	"sf-weekly-pulse/internal/digest/service"
	"sf-weekly-pulse/pkg/logger"

	"github.com/labstack/echo/v4"
)

// EventHandler handles HTTP requests for timeline events and voting.
type EventHandler struct {
	eventRepo   repository.TimelineEventRepository
	voteService service.VoteService
	logger      *logger.Logger
}

// NewEventHandler creates a new EventHandler.
func NewEventHandler(eventRepo repository.TimelineEventRepository, voteService service.VoteService, logger *logger.Logger) *EventHandler {
	return &EventHandler{eventRepo: eventRepo, voteService: voteService, logger: logger}
}

// RegisterRoutes registers the event routes to the Echo group.
func (h *EventHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/latest", h.GetLatest)
	g.GET("/recent", h.GetRecent)
	g.GET("/:id", h.GetByID)
	g.POST("/:id/vote", h.Vote)
}

// GetLatest godoc
// @Summary Get the latest timeline event
// @Description Get the most recent social narrative timeline event
// @Tags events
// @Produce  json
// @Success 200 {object} dto.APIResponse
// @Failure 404 {object} dto.APIResponse
// @Router /api/events/latest [get]
func (h *EventHandler) GetLatest(c echo.Context) error {
	event, err := h.eventRepo.FindLatest(c.Request().Context())
	if err != nil {
		h.logger.Error("Failed to get latest event", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, dto.APIResponse{Success: false, Error: "Failed to get latest event"})
	}
	if event == nil {
		return c.JSON(http.StatusNotFound, dto.APIResponse{Success: false, Error: "No events yet"})
	}
	return c.JSON(http.StatusOK, dto.APIResponse{Success: true, Data: event})
}

// GetRecent godoc
// @Summary List recent timeline events
// @Description List recent timeline events, newest week first
// @Tags events
// @Produce  json
// @Param   limit  query   int false   "Maximum events to return (default 9)"
// @Success 200 {object} dto.APIResponse
// @Router /api/events/recent [get]
func (h *EventHandler) GetRecent(c echo.Context) error {
	limit := 9
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 52 {
			return c.JSON(http.StatusBadRequest, dto.APIResponse{Success: false, Error: "Invalid limit"})
		}
		limit = parsed
	}

	events, err := h.eventRepo.FindRecent(c.Request().Context(), limit)
	if err != nil {
		h.logger.Error("Failed to list recent events", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, dto.APIResponse{Success: false, Error: "Failed to list events"})
	}
	return c.JSON(http.StatusOK, dto.APIResponse{Success: true, Data: events})
}

// GetByID godoc
// @Summary Get a timeline event by ID
// @Description Get a single timeline event with its evidence and sentiment
// @Tags events
// @Produce  json
// @Param   id  path    int true    "Event ID"
// @Success 200 {object} dto.APIResponse
// @Failure 400 {object} dto.APIResponse
// @Failure 404 {object} dto.APIResponse
// @Router /api/events/{id} [get]
func (h *EventHandler) GetByID(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.APIResponse{Success: false, Error: "Invalid event ID"})
	}

	event, err := h.eventRepo.FindByID(c.Request().Context(), uint(id))
	if err != nil {
		h.logger.Error("Failed to get event", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, dto.APIResponse{Success: false, Error: "Failed to get event"})
	}
	if event == nil {
		return c.JSON(http.StatusNotFound, dto.APIResponse{Success: false, Error: "Event not found"})
	}
	return c.JSON(http.StatusOK, dto.APIResponse{Success: true, Data: event})
}

// Vote godoc
// @Summary Vote on a timeline event
// @Description Record a hype/backlash vote and return the updated community sentiment
// @Tags events
// @Accept  json
// @Produce  json
// @Param   id    path    int             true    "Event ID"
// @Param   vote  body    dto.VoteRequest true    "Vote percentages"
// @Success 200 {object} dto.APIResponse
// @Failure 400 {object} dto.APIResponse
// @Failure 404 {object} dto.APIResponse
// @Router /api/events/{id}/vote [post]
func (h *EventHandler) Vote(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.APIResponse{Success: false, Error: "Invalid event ID"})
	}

	var req dto.VoteRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.APIResponse{Success: false, Error: "Invalid request payload"})
	}

	sentiment, err := h.voteService.RecordVote(c.Request().Context(), uint(id), &req, c.RealIP(), c.Request().UserAgent())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidVote):
			return c.JSON(http.StatusBadRequest, dto.APIResponse{Success: false, Error: err.Error()})
		case errors.Is(err, service.ErrEventNotFound):
			return c.JSON(http.StatusNotFound, dto.APIResponse{Success: false, Error: "Event not found"})
		default:
			h.logger.Error("Failed to record vote", logger.ErrorField(err))
			return c.JSON(http.StatusInternalServerError, dto.APIResponse{Success: false, Error: "Failed to record vote"})
		}
	}

	return c.JSON(http.StatusOK, dto.APIResponse{Success: true, Data: sentiment})
}

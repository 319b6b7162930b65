package http

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"sf-weekly-pulse/internal/digest/config"
	"sf-weekly-pulse/internal/digest/dto"
	"sf-weekly-pulse/internal/digest/service"
	"sf-weekly-pulse/pkg/logger"

	"github.com/labstack/echo/v4"
)

// TriggerHandler handles authenticated pipeline trigger requests.
type TriggerHandler struct {
	cfg           *config.Config
	aggregator    service.AggregatorService
	socialService service.SocialService
	logger        *logger.Logger
}

// NewTriggerHandler creates a new TriggerHandler.
func NewTriggerHandler(cfg *config.Config, aggregator service.AggregatorService, socialService service.SocialService, logger *logger.Logger) *TriggerHandler {
	return &TriggerHandler{cfg: cfg, aggregator: aggregator, socialService: socialService, logger: logger}
}

// RegisterRoutes registers the trigger routes to the Echo group.
func (h *TriggerHandler) RegisterRoutes(g *echo.Group) {
	g.Use(h.requireSecret)
	g.POST("/weekly-news", h.TriggerWeeklyNews)
	g.POST("/weekly-topics", h.TriggerWeeklyTopics)
}

// requireSecret guards trigger routes with a bearer token compared in
// constant time. An unset secret disables the routes entirely.
func (h *TriggerHandler) requireSecret(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		secret := h.cfg.Trigger.Secret
		if secret == "" {
			return c.JSON(http.StatusUnauthorized, dto.APIResponse{Success: false, Error: "Trigger secret not configured"})
		}

		auth := c.Request().Header.Get("Authorization")
		token, ok := strings.CutPrefix(auth, "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(token), []byte(secret)) != 1 {
			return c.JSON(http.StatusUnauthorized, dto.APIResponse{Success: false, Error: "Unauthorized"})
		}
		return next(c)
	}
}

// TriggerWeeklyNews godoc
// @Summary Trigger the weekly news aggregation
// @Description Run the weekly digest pipeline now. Pass week=YYYY-MM-DD to rebuild a past week.
// @Tags trigger
// @Produce  json
// @Security BearerAuth
// @Param   week  query   string  false   "Target week (YYYY-MM-DD)"
// @Success 200 {object} dto.APIResponse
// @Failure 400 {object} dto.APIResponse
// @Failure 401 {object} dto.APIResponse
// @Failure 502 {object} dto.APIResponse
// @Router /api/trigger/weekly-news [post]
func (h *TriggerHandler) TriggerWeeklyNews(c echo.Context) error {
	var targetWeek *time.Time
	if raw := c.QueryParam("week"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, dto.APIResponse{Success: false, Error: "Invalid week date, expected YYYY-MM-DD"})
		}
		targetWeek = &parsed
	}

	report, err := h.aggregator.RunWeekly(c.Request().Context(), targetWeek)
	if err != nil {
		h.logger.Error("Weekly news trigger failed", logger.ErrorField(err))
		return c.JSON(http.StatusBadGateway, dto.APIResponse{Success: false, Error: err.Error()})
	}
	return c.JSON(http.StatusOK, dto.APIResponse{Success: true, Data: report})
}

// TriggerWeeklyTopics godoc
// @Summary Trigger the weekly social topic analysis
// @Description Run the social narrative pipeline for all configured topics now
// @Tags trigger
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse
// @Failure 401 {object} dto.APIResponse
// @Failure 502 {object} dto.APIResponse
// @Router /api/trigger/weekly-topics [post]
func (h *TriggerHandler) TriggerWeeklyTopics(c echo.Context) error {
	report, err := h.socialService.ProcessWeeklyTopics(c.Request().Context(), h.cfg.Aggregator.Topics)
	if err != nil {
		h.logger.Error("Weekly topics trigger failed", logger.ErrorField(err))
		return c.JSON(http.StatusBadGateway, dto.APIResponse{Success: false, Error: err.Error()})
	}
	return c.JSON(http.StatusOK, dto.APIResponse{Success: true, Data: report})
}

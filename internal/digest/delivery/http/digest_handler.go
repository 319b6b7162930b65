package http

import (
	"net/http"
	"strconv"
	"time"

	"sf-weekly-pulse/internal/digest/dto"
	"sf-weekly-pulse/internal/digest/repository"
	"sf-weekly-pulse/pkg/logger"
	"sf-weekly-pulse/pkg/utils"

	"github.com/labstack/echo/v4"
)

// DigestHandler handles HTTP requests for weekly news digests.
type DigestHandler struct {
	newsRepo repository.WeeklyNewsRepository
	logger   *logger.Logger
}

// NewDigestHandler creates a new DigestHandler.
func NewDigestHandler(newsRepo repository.WeeklyNewsRepository, logger *logger.Logger) *DigestHandler {
	return &DigestHandler{newsRepo: newsRepo, logger: logger}
}

// RegisterRoutes registers the digest routes to the Echo group.
func (h *DigestHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/latest", h.GetLatest)
	g.GET("/recent", h.GetRecent)
	g.GET("/:week", h.GetByWeek)
}

// GetLatest godoc
// @Summary Get the latest weekly digest
// @Description Get the most recently published weekly news digest
// @Tags digests
// @Produce  json
// @Success 200 {object} dto.APIResponse
// @Failure 404 {object} dto.APIResponse
// @Router /api/news/latest [get]
func (h *DigestHandler) GetLatest(c echo.Context) error {
	news, err := h.newsRepo.FindLatest(c.Request().Context())
	if err != nil {
		h.logger.Error("Failed to get latest digest", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, dto.APIResponse{Success: false, Error: "Failed to get latest digest"})
	}
	if news == nil {
		return c.JSON(http.StatusNotFound, dto.APIResponse{Success: false, Error: "No digest published yet"})
	}
	return c.JSON(http.StatusOK, dto.APIResponse{Success: true, Data: news})
}

// GetRecent godoc
// @Summary List recent weekly digests
// @Description List recent weekly digests, newest first
// @Tags digests
// @Produce  json
// @Param   limit  query   int false   "Maximum digests to return (default 8)"
// @Success 200 {object} dto.APIResponse
// @Router /api/news/recent [get]
func (h *DigestHandler) GetRecent(c echo.Context) error {
	limit := 8
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 52 {
			return c.JSON(http.StatusBadRequest, dto.APIResponse{Success: false, Error: "Invalid limit"})
		}
		limit = parsed
	}

	digests, err := h.newsRepo.FindRecent(c.Request().Context(), limit)
	if err != nil {
		h.logger.Error("Failed to list recent digests", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, dto.APIResponse{Success: false, Error: "Failed to list digests"})
	}
	return c.JSON(http.StatusOK, dto.APIResponse{Success: true, Data: digests})
}

// GetByWeek godoc
// @Summary Get a digest by week
// @Description Get the digest for the week containing the given date (YYYY-MM-DD)
// @Tags digests
// @Produce  json
// @Param   week  path    string  true    "Any date within the week (YYYY-MM-DD)"
// @Success 200 {object} dto.APIResponse
// @Failure 400 {object} dto.APIResponse
// @Failure 404 {object} dto.APIResponse
// @Router /api/news/{week} [get]
func (h *DigestHandler) GetByWeek(c echo.Context) error {
	parsed, err := time.Parse("2006-01-02", c.Param("week"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.APIResponse{Success: false, Error: "Invalid week date, expected YYYY-MM-DD"})
	}
	weekOf := utils.WeekKey(parsed)

	news, err := h.newsRepo.FindByWeek(c.Request().Context(), weekOf)
	if err != nil {
		h.logger.Error("Failed to get digest by week", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, dto.APIResponse{Success: false, Error: "Failed to get digest"})
	}
	if news == nil {
		return c.JSON(http.StatusNotFound, dto.APIResponse{Success: false, Error: "No digest for that week"})
	}
	return c.JSON(http.StatusOK, dto.APIResponse{Success: true, Data: news})
}

package http

import (
	"errors"
	"net/http"

	"sf-weekly-pulse/internal/digest/dto"
	"sf-weekly-pulse/internal/digest/service"
	"sf-weekly-pulse/pkg/logger"

	"github.com/labstack/echo/v4"
)

// ChatHandler handles HTTP requests for digest Q&A.
type ChatHandler struct {
	chatService service.ChatService
	logger      *logger.Logger
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(chatService service.ChatService, logger *logger.Logger) *ChatHandler {
	return &ChatHandler{chatService: chatService, logger: logger}
}

// RegisterRoutes registers the chat routes to the Echo group.
func (h *ChatHandler) RegisterRoutes(g *echo.Group) {
	g.POST("", h.Chat)
}

// Chat godoc
// @Summary Ask a question about the latest digest
// @Description Answer a free-form question grounded in the latest weekly digest
// @Tags chat
// @Accept  json
// @Produce  json
// @Param   chat  body    dto.ChatRequest true    "Conversation messages"
// @Success 200 {object} dto.APIResponse
// @Failure 400 {object} dto.APIResponse
// @Failure 502 {object} dto.APIResponse
// @Router /api/chat [post]
func (h *ChatHandler) Chat(c echo.Context) error {
	var req dto.ChatRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.APIResponse{Success: false, Error: "Invalid request payload"})
	}

	resp, err := h.chatService.Chat(c.Request().Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrEmptyChat) {
			return c.JSON(http.StatusBadRequest, dto.APIResponse{Success: false, Error: err.Error()})
		}
		h.logger.Error("Chat completion failed", logger.ErrorField(err))
		return c.JSON(http.StatusBadGateway, dto.APIResponse{Success: false, Error: "Chat provider unavailable"})
	}

	return c.JSON(http.StatusOK, dto.APIResponse{Success: true, Data: resp})
}

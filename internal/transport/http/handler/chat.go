package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"chemsite/internal/ai"
	"chemsite/internal/app"
	"chemsite/internal/transport/http/response"
)

type ChatHandler struct {
	chatService *app.ChatService
}

// ChatRequest keeps messages raw so a missing field and a non-array value can
// be told apart.
type ChatRequest struct {
	Messages json.RawMessage `json:"messages"`
}

func NewChatHandler(chatService *app.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

func (h *ChatHandler) Send(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	var transcript []ai.ChatMessage
	raw := bytes.TrimSpace(req.Messages)
	if len(raw) > 0 && !bytes.Equal(raw, []byte("null")) {
		if raw[0] != '[' {
			response.Error(c, http.StatusBadRequest, "Messages array is required")
			return
		}
		if err := json.Unmarshal(raw, &transcript); err != nil {
			response.Error(c, http.StatusBadRequest, "Invalid messages format")
			return
		}
	}

	payload, err := h.chatService.Proxy(c.Request.Context(), transcript)
	if err != nil {
		var upstreamErr *ai.UpstreamError
		switch {
		case errors.Is(err, app.ErrBadRequest):
			if transcript == nil {
				response.Error(c, http.StatusBadRequest, "Messages array is required")
			} else {
				response.Error(c, http.StatusBadRequest, "Invalid messages format")
			}
		case errors.Is(err, app.ErrLLMConfig):
			response.Error(c, http.StatusInternalServerError, "AI service is not configured")
		case errors.As(err, &upstreamErr):
			response.ErrorWithDetails(c, upstreamStatus(upstreamErr.Status), "AI service error", upstreamDetails(upstreamErr.Body))
		default:
			response.Error(c, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	c.Data(http.StatusOK, "application/json; charset=utf-8", payload)
}

func upstreamStatus(status int) int {
	if status < http.StatusBadRequest || status > 599 {
		return http.StatusBadGateway
	}
	return status
}

// upstreamDetails embeds a JSON error body as is and anything else as a string.
func upstreamDetails(body []byte) any {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil
	}
	if json.Valid(trimmed) {
		return json.RawMessage(trimmed)
	}
	return string(trimmed)
}

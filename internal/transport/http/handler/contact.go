package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"chemsite/internal/app"
	"chemsite/internal/transport/http/response"
)

type ContactHandler struct {
	contactService *app.ContactService
}

type ContactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

func NewContactHandler(contactService *app.ContactService) *ContactHandler {
	return &ContactHandler{contactService: contactService}
}

func (h *ContactHandler) Submit(c *gin.Context) {
	var req ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "Validation failed", []string{"request body must be a JSON object"})
		return
	}

	msg, err := h.contactService.Submit(c.Request.Context(), app.ContactInput{
		Name:    req.Name,
		Email:   req.Email,
		Subject: req.Subject,
		Message: req.Message,
	})
	if err != nil {
		var validationErr *app.ValidationError
		switch {
		case errors.As(err, &validationErr):
			response.ErrorWithDetails(c, http.StatusBadRequest, "Validation failed", validationErr.Details)
		default:
			response.ErrorWithMessage(c, http.StatusInternalServerError, "Internal server error", "Failed to submit contact form")
		}
		return
	}

	response.Created(c, gin.H{
		"message": "Message sent successfully",
		"id":      msg.ID,
	})
}

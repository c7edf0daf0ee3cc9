package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"chemsite/internal/app"
	"chemsite/internal/transport/http/response"
)

type AdminHandler struct {
	adminService   *app.AdminService
	contactService *app.ContactService
}

type LoginRequest struct {
	Username string `json:"username" binding:"required,max=64"`
	Password string `json:"password" binding:"required,max=128"`
}

func NewAdminHandler(adminService *app.AdminService, contactService *app.ContactService) *AdminHandler {
	return &AdminHandler{
		adminService:   adminService,
		contactService: contactService,
	}
}

func (h *AdminHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request payload")
		return
	}

	result, err := h.adminService.Login(app.LoginInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, app.ErrInvalidCredential):
			response.Error(c, http.StatusUnauthorized, err.Error())
		case errors.Is(err, app.ErrAdminDisabled):
			response.Error(c, http.StatusServiceUnavailable, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, "login failed")
		}
		return
	}

	response.OK(c, result)
}

func (h *AdminHandler) ListContacts(c *gin.Context) {
	limit, okLimit := queryInt(c, "limit")
	offset, okOffset := queryInt(c, "offset")
	if !okLimit || !okOffset {
		response.Error(c, http.StatusBadRequest, "limit and offset must be non-negative integers")
		return
	}

	page, err := h.contactService.List(c.Request.Context(), limit, offset)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, "limit and offset must be non-negative integers")
		default:
			response.Error(c, http.StatusInternalServerError, "list contact messages failed")
		}
		return
	}

	response.OK(c, page)
}

func (h *AdminHandler) GetContact(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		response.Error(c, http.StatusBadRequest, "invalid contact id")
		return
	}

	msg, err := h.contactService.Get(c.Request.Context(), uint(id))
	if err != nil {
		switch {
		case errors.Is(err, app.ErrContactNotFound):
			response.Error(c, http.StatusNotFound, err.Error())
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, "invalid contact id")
		default:
			response.Error(c, http.StatusInternalServerError, "get contact message failed")
		}
		return
	}

	response.OK(c, msg)
}

// queryInt reads an optional non-negative integer query parameter. Absent means 0.
func queryInt(c *gin.Context, name string) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}

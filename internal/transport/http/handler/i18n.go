package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"chemsite/internal/i18n"
	"chemsite/internal/platform/logging"
	"chemsite/internal/transport/http/middleware"
	"chemsite/internal/transport/http/response"
)

type I18nHandler struct {
	bundle      *i18n.Bundle
	preferences *i18n.Preferences
}

type PreferenceRequest struct {
	Language string `json:"language" binding:"required"`
}

func NewI18nHandler(bundle *i18n.Bundle, preferences *i18n.Preferences) *I18nHandler {
	return &I18nHandler{bundle: bundle, preferences: preferences}
}

func (h *I18nHandler) Languages(c *gin.Context) {
	response.OK(c, gin.H{
		"default":   h.bundle.Fallback(),
		"languages": h.bundle.Supported(),
	})
}

func (h *I18nHandler) Translations(c *gin.Context) {
	lang := strings.ToLower(c.Param("lang"))
	if !h.bundle.IsSupported(lang) {
		response.Error(c, http.StatusNotFound, "Unsupported language")
		return
	}
	response.OK(c, gin.H{
		"language":     lang,
		"translations": h.bundle.Table(lang),
	})
}

// Translate looks up one key. Unknown languages and keys fall back like the table does.
func (h *I18nHandler) Translate(c *gin.Context) {
	lang, key := strings.ToLower(c.Param("lang")), c.Param("key")
	response.OK(c, gin.H{
		"language": lang,
		"key":      key,
		"value":    h.bundle.T(lang, key),
	})
}

func (h *I18nHandler) GetPreference(c *gin.Context) {
	lang, err := h.preferences.Current(c.Request.Context(), middleware.VisitorID(c))
	if err != nil {
		logging.FromContext(c.Request.Context()).Error("load language preference failed", zap.Error(err))
		response.Error(c, http.StatusInternalServerError, "Internal server error")
		return
	}
	response.OK(c, gin.H{
		"language":  lang,
		"suggested": h.bundle.Resolve(c.GetHeader("Accept-Language")),
	})
}

func (h *I18nHandler) SetPreference(c *gin.Context) {
	var req PreferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "language is required")
		return
	}

	lang, err := h.preferences.Select(c.Request.Context(), middleware.VisitorID(c), req.Language)
	if err != nil {
		switch {
		case errors.Is(err, i18n.ErrUnsupportedLanguage):
			response.ErrorWithDetails(c, http.StatusBadRequest, "Unsupported language", h.bundle.Supported())
		default:
			logging.FromContext(c.Request.Context()).Error("save language preference failed", zap.Error(err))
			response.Error(c, http.StatusInternalServerError, "Internal server error")
		}
		return
	}
	response.OK(c, gin.H{"language": lang})
}

// ResetPreference forgets the visitor's selection so the primary language applies again.
func (h *I18nHandler) ResetPreference(c *gin.Context) {
	if err := h.preferences.Reset(c.Request.Context(), middleware.VisitorID(c)); err != nil {
		logging.FromContext(c.Request.Context()).Error("reset language preference failed", zap.Error(err))
		response.Error(c, http.StatusInternalServerError, "Internal server error")
		return
	}
	response.OK(c, gin.H{"language": h.bundle.Fallback()})
}

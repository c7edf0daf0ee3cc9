package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"chemsite/internal/catalog"
	"chemsite/internal/transport/http/response"
)

type CatalogHandler struct {
	catalog *catalog.Catalog
}

func NewCatalogHandler(c *catalog.Catalog) *CatalogHandler {
	return &CatalogHandler{catalog: c}
}

func (h *CatalogHandler) List(c *gin.Context) {
	response.OK(c, gin.H{"categories": h.catalog.Categories()})
}

func (h *CatalogHandler) Get(c *gin.Context) {
	category, err := h.catalog.Category(c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, catalog.ErrCategoryNotFound):
			response.Error(c, http.StatusNotFound, "Product category not found")
		default:
			response.Error(c, http.StatusInternalServerError, "Internal server error")
		}
		return
	}
	response.OK(c, category)
}

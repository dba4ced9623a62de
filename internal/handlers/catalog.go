package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"product-studio-backend/internal/models"
	"product-studio-backend/internal/services"
	"product-studio-backend/internal/workflow"
)

type CatalogHandler struct {
	service *services.ProjectService
}

func NewCatalogHandler(service *services.ProjectService) *CatalogHandler {
	return &CatalogHandler{service: service}
}

// ListManufacturers godoc
// @Summary     Manufacturer quotes for a project
// @Tags        catalog
// @Produce     json
// @Security    Bearer
// @Param       project_id query string true "Project ID (UUID)"
// @Success     200 {object} models.ManufacturerListResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /catalog/manufacturers [get]
func (h *CatalogHandler) ListManufacturers(c *gin.Context) {
	if h.service == nil {
		serviceUnavailable(c)
		return
	}
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	projectID, err := uuid.Parse(c.Query("project_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid project id"})
		return
	}

	list, err := h.service.Manufacturers(c.Request.Context(), actor, projectID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.ManufacturerListResponse{Manufacturers: list})
}

// ListPackages godoc
// @Summary     Photography or marketing packages
// @Tags        catalog
// @Produce     json
// @Security    Bearer
// @Param       module path string true "photography or marketing"
// @Success     200 {object} models.PackageListResponse
// @Failure     400 {object} models.ErrorResponse
// @Router      /catalog/packages/{module} [get]
func (h *CatalogHandler) ListPackages(c *gin.Context) {
	if h.service == nil {
		serviceUnavailable(c)
		return
	}
	if _, ok := actorFromContext(c); !ok {
		return
	}

	list, err := h.service.Packages(c.Request.Context(), workflow.Module(c.Param("module")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.PackageListResponse{Packages: list})
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"product-studio-backend/internal/models"
	"product-studio-backend/internal/services"
)

type StatusHandler struct {
	service *services.ProjectService
}

func NewStatusHandler(service *services.ProjectService) *StatusHandler {
	return &StatusHandler{
		service: service,
	}
}

// GetStatus godoc
// @Summary     Project progress
// @Description Returns the status, progress percent, customer step and module access.
// @Tags        projects
// @Produce     json
// @Security    Bearer
// @Param       project_id path string true "Project ID (UUID)"
// @Success     200 {object} models.StatusResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /projects/{project_id}/status [get]
func (h *StatusHandler) GetStatus(c *gin.Context) {
	if h.service == nil {
		serviceUnavailable(c)
		return
	}
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	projectID, ok := projectIDParam(c)
	if !ok {
		return
	}

	res, err := h.service.Get(c.Request.Context(), actor, projectID)
	if err != nil {
		respondError(c, err)
		return
	}

	modules := make(map[string]bool, len(res.Modules))
	for m, open := range res.Modules {
		modules[string(m)] = open
	}

	c.JSON(http.StatusOK, models.StatusResponse{
		ProjectID:       projectID.String(),
		Status:          res.Project.Status,
		Progress:        res.Progress.Percent,
		CustomerStep:    res.Progress.CustomerStep,
		PrototypeStatus: res.Project.PrototypeStatus,
		Modules:         modules,
		UpdatedAt:       res.Project.UpdatedAt,
	})
}

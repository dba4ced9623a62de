package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"product-studio-backend/internal/models"
	"product-studio-backend/internal/services"
	"product-studio-backend/internal/workflow"
)

type ProjectsHandler struct {
	service *services.ProjectService
}

func NewProjectsHandler(service *services.ProjectService) *ProjectsHandler {
	return &ProjectsHandler{service: service}
}

// CreateProject godoc
// @Summary     Create a project
// @Description Creates a draft project owned by the caller.
// @Tags        projects
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       request body models.CreateProjectRequest true "Project name"
// @Success     201 {object} workflow.Result
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Router      /projects [post]
func (h *ProjectsHandler) CreateProject(c *gin.Context) {
	if h.service == nil {
		serviceUnavailable(c)
		return
	}
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	var req models.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	res, err := h.service.Create(c.Request.Context(), actor, req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

// ListProjects godoc
// @Summary     List projects
// @Description Admins see every project; customers see their own.
// @Tags        projects
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.ProjectListResponse
// @Router      /projects [get]
func (h *ProjectsHandler) ListProjects(c *gin.Context) {
	if h.service == nil {
		serviceUnavailable(c)
		return
	}
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	projects, err := h.service.List(c.Request.Context(), actor)
	if err != nil {
		respondError(c, err)
		return
	}

	summaries := make([]models.ProjectSummary, len(projects))
	for i, p := range projects {
		summaries[i] = summarize(p)
	}
	c.JSON(http.StatusOK, models.ProjectListResponse{Projects: summaries})
}

func (h *ProjectsHandler) GetProject(c *gin.Context) {
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
	c.JSON(http.StatusOK, res)
}

func (h *ProjectsHandler) DeleteProject(c *gin.Context) {
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

	if err := h.service.Delete(c.Request.Context(), actor, projectID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.DeleteResponse{ID: projectID.String(), Deleted: true})
}

// Transition godoc
// @Summary     Change project status
// @Description Direct status change. Admins may move to any status; customers get 403.
// @Tags        projects
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       project_id path string true "Project ID (UUID)"
// @Param       request body models.TransitionRequest true "Target status"
// @Success     200 {object} workflow.Result
// @Failure     400 {object} models.ErrorResponse
// @Failure     403 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /projects/{project_id}/transition [post]
func (h *ProjectsHandler) Transition(c *gin.Context) {
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

	var req models.TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	res, err := h.service.Transition(c.Request.Context(), actor, projectID, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// SubmitBrief godoc
// @Summary     Submit the product brief
// @Description Stores the brief and moves a draft project into prototyping.
// @Tags        projects
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       project_id path string true "Project ID (UUID)"
// @Param       request body models.BriefRequest true "Brief"
// @Success     200 {object} workflow.Result
// @Failure     400 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Router      /projects/{project_id}/brief [put]
func (h *ProjectsHandler) SubmitBrief(c *gin.Context) {
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

	var req models.BriefRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	res, err := h.service.SubmitBrief(c.Request.Context(), actor, projectID, req.Brief())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *ProjectsHandler) SelectManufacturer(c *gin.Context) {
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

	var req models.SelectManufacturerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	res, err := h.service.SelectManufacturer(c.Request.Context(), actor, projectID, req.ManufacturerID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *ProjectsHandler) SelectPackage(c *gin.Context) {
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

	var req models.SelectPackageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	module := workflow.Module(c.Param("module"))
	res, err := h.service.SelectPackage(c.Request.Context(), actor, projectID, module, req.PackageID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// UpdatePricing godoc
// @Summary     Update pricing inputs (admin)
// @Tags        admin
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       project_id path string true "Project ID (UUID)"
// @Param       request body models.PricingRequest true "Fields to change"
// @Success     200 {object} workflow.Result
// @Failure     400 {object} models.ErrorResponse
// @Failure     403 {object} models.ErrorResponse
// @Router      /projects/{project_id}/pricing [patch]
func (h *ProjectsHandler) UpdatePricing(c *gin.Context) {
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

	var req models.PricingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	res, err := h.service.UpdatePricing(c.Request.Context(), actor, projectID, workflow.PricingUpdate{
		StarterFee:  req.StarterFee,
		QCCost:      req.QCCost,
		FreightCost: req.FreightCost,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *ProjectsHandler) SetUnlocks(c *gin.Context) {
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

	var req models.UnlocksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	res, err := h.service.SetUnlocks(c.Request.Context(), actor, projectID, req.Photography, req.Marketing)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

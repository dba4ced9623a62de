package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"product-studio-backend/internal/middleware"
	"product-studio-backend/internal/models"
	"product-studio-backend/internal/workflow"
)

// actorFromContext builds the caller from the auth middleware's values. It
// writes the error response itself and reports false on failure.
func actorFromContext(c *gin.Context) (workflow.Actor, bool) {
	userIDStr, exists := c.Get(middleware.UserIDKey)
	if !exists {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "user id not found"})
		return workflow.Actor{}, false
	}

	userID, err := uuid.Parse(userIDStr.(string))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid user id"})
		return workflow.Actor{}, false
	}

	if c.GetString(middleware.RoleKey) == middleware.RoleAdmin {
		return workflow.Admin(userID), true
	}
	return workflow.Customer(userID), true
}

func projectIDParam(c *gin.Context) (uuid.UUID, bool) {
	projectID, err := uuid.Parse(c.Param("project_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid project id"})
		return uuid.Nil, false
	}
	return projectID, true
}

// statusFor maps a workflow error kind to its HTTP status.
func statusFor(err error) int {
	switch workflow.KindOf(err) {
	case workflow.KindNotFound:
		return http.StatusNotFound
	case workflow.KindForbidden:
		return http.StatusForbidden
	case workflow.KindValidation:
		return http.StatusBadRequest
	case workflow.KindPreconditionFailed:
		return http.StatusConflict
	case workflow.KindPayment:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func respondError(c *gin.Context, err error) {
	code := "internal_error"
	var we *workflow.Error
	if errors.As(err, &we) {
		code = we.ErrorKind()
	}
	c.JSON(statusFor(err), models.ErrorResponse{
		Error:   code,
		Message: err.Error(),
	})
}

func bindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Error:   "invalid request body",
		Message: err.Error(),
	})
}

func serviceUnavailable(c *gin.Context) {
	c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "project service not available"})
}

func summarize(rec models.ProjectRecord) models.ProjectSummary {
	p := workflow.ProgressOf(rec)
	return models.ProjectSummary{
		ID:           rec.ID.String(),
		Name:         rec.Name,
		Status:       rec.Status,
		Progress:     p.Percent,
		CustomerStep: p.CustomerStep,
		CreatedAt:    rec.CreatedAt,
		UpdatedAt:    rec.UpdatedAt,
	}
}

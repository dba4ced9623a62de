package handlers

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"product-studio-backend/internal/models"
	"product-studio-backend/internal/services"
	"product-studio-backend/internal/workflow"
)

const (
	maxFeedbackForm  = 32 << 20
	maxFeedbackImage = 10 << 20
	maxFeedbackFiles = 10
)

type PrototypeHandler struct {
	service *services.ProjectService
}

func NewPrototypeHandler(service *services.ProjectService) *PrototypeHandler {
	return &PrototypeHandler{service: service}
}

// AdvancePrototype godoc
// @Summary     Update the sample (admin)
// @Description Sets the prototype sub-status. Moving to shipping requires a tracking number.
// @Tags        prototype
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       project_id path string true "Project ID (UUID)"
// @Param       request body models.PrototypeUpdateRequest true "Prototype update"
// @Success     200 {object} workflow.Result
// @Failure     400 {object} models.ErrorResponse
// @Failure     403 {object} models.ErrorResponse
// @Router      /projects/{project_id}/prototype [post]
func (h *PrototypeHandler) AdvancePrototype(c *gin.Context) {
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

	var req models.PrototypeUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	res, err := h.service.AdvancePrototype(c.Request.Context(), actor, projectID, workflow.PrototypeUpdate{
		Status:            req.Status,
		TrackingNumber:    req.TrackingNumber,
		EstimatedDelivery: req.EstimatedDelivery,
		AdminNotes:        req.AdminNotes,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// SubmitFeedback godoc
// @Summary     Submit sample feedback
// @Description Accepts multipart (feedback field plus images files) or JSON with image_urls.
// @Description Feedback can be given once per sample, after delivery.
// @Tags        prototype
// @Accept      multipart/form-data
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       project_id path string true "Project ID (UUID)"
// @Param       feedback formData string true "Feedback text"
// @Param       images formData file false "Photos of the sample (multiple files allowed)"
// @Success     200 {object} workflow.Result
// @Failure     400 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Router      /projects/{project_id}/feedback [post]
func (h *PrototypeHandler) SubmitFeedback(c *gin.Context) {
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

	var in workflow.FeedbackInput
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		parsed, err := readFeedbackForm(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:   "failed to parse multipart form",
				Message: err.Error(),
			})
			return
		}
		in = parsed
	} else {
		var req models.FeedbackRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}
		in = workflow.FeedbackInput{Text: req.Feedback, ImageURLs: req.ImageURLs}
	}

	res, err := h.service.SubmitFeedback(c.Request.Context(), actor, projectID, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func readFeedbackForm(c *gin.Context) (workflow.FeedbackInput, error) {
	if err := c.Request.ParseMultipartForm(maxFeedbackForm); err != nil {
		return workflow.FeedbackInput{}, err
	}
	form := c.Request.MultipartForm
	if form == nil {
		return workflow.FeedbackInput{}, fmt.Errorf("multipart form is nil")
	}

	in := workflow.FeedbackInput{
		Text:      c.PostForm("feedback"),
		ImageURLs: form.Value["image_urls"],
	}

	var files []*multipart.FileHeader
	for _, fieldName := range []string{"images", "image"} {
		if f := form.File[fieldName]; len(f) > 0 {
			files = f
			break
		}
	}
	if len(files) > maxFeedbackFiles {
		return workflow.FeedbackInput{}, fmt.Errorf("at most %d images per feedback", maxFeedbackFiles)
	}

	for _, fh := range files {
		if fh.Size > maxFeedbackImage {
			return workflow.FeedbackInput{}, fmt.Errorf("%s is larger than %d bytes", fh.Filename, maxFeedbackImage)
		}
		data, err := readFormFile(fh)
		if err != nil {
			return workflow.FeedbackInput{}, fmt.Errorf("failed to read %s: %w", fh.Filename, err)
		}
		contentType := fh.Header.Get("Content-Type")
		if contentType == "" || contentType == "application/octet-stream" {
			contentType = http.DetectContentType(data)
		}
		if !strings.HasPrefix(contentType, "image/") {
			return workflow.FeedbackInput{}, fmt.Errorf("%s is not an image (%s)", fh.Filename, contentType)
		}
		in.Images = append(in.Images, workflow.ImageUpload{
			Filename:    fh.Filename,
			ContentType: contentType,
			Data:        data,
		})
	}
	return in, nil
}

func readFormFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(io.LimitReader(f, maxFeedbackImage+1))
}

func (h *PrototypeHandler) Approve(c *gin.Context) {
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

	res, err := h.service.Approve(c.Request.Context(), actor, projectID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *PrototypeHandler) RequestNewSample(c *gin.Context) {
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

	// The reason is optional, so an empty body is fine.
	var req models.NewSampleRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}
	}

	res, err := h.service.RequestNewSample(c.Request.Context(), actor, projectID, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"product-studio-backend/internal/models"
	"product-studio-backend/internal/realtime"
	"product-studio-backend/internal/services"
)

const keepAliveInterval = 15 * time.Second

type EventsHandler struct {
	service *services.ProjectService
}

func NewEventsHandler(service *services.ProjectService) *EventsHandler {
	return &EventsHandler{service: service}
}

// Stream godoc
// @Summary     Project change events
// @Description Server-sent events for one project. The first event is a snapshot of the current status.
// @Tags        projects
// @Produce     text/event-stream
// @Security    Bearer
// @Param       project_id path string true "Project ID (UUID)"
// @Success     200 {string} string "event stream"
// @Failure     404 {object} models.ErrorResponse
// @Router      /projects/{project_id}/events [get]
func (h *EventsHandler) Stream(c *gin.Context) {
	if h.service == nil || h.service.Broker() == nil {
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

	ctx := c.Request.Context()
	res, err := h.service.Get(ctx, actor, projectID)
	if err != nil {
		respondError(c, err)
		return
	}

	events, err := h.service.Broker().Subscribe(ctx, projectID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to subscribe",
			Message: err.Error(),
		})
		return
	}

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "streaming unsupported"})
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	snapshot := realtime.NewEvent("snapshot", res.Project,
		realtime.StatusPayload(res.Project, res.Progress.Percent, res.Progress.CustomerStep))
	writeEvent(c, snapshot)
	flusher.Flush()

	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fmt.Fprint(c.Writer, ": keep-alive\n\n")
			flusher.Flush()
		case ev, ok := <-events:
			if !ok {
				return
			}
			writeEvent(c, ev)
			flusher.Flush()
		}
	}
}

func writeEvent(c *gin.Context, ev realtime.Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", ev.Type, data)
}

package realtime

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"product-studio-backend/internal/models"
)

const (
	EventProjectCreated    = "project.created"
	EventProjectDeleted    = "project.deleted"
	EventStatusChanged     = "project.status_changed"
	EventBriefSubmitted    = "project.brief_submitted"
	EventSelectionChanged  = "project.selection_changed"
	EventPrototypeUpdated  = "prototype.updated"
	EventFeedbackSubmitted = "prototype.feedback_submitted"
	EventSampleApproved    = "prototype.sample_approved"
	EventSampleRequested   = "prototype.sample_requested"
	EventPaymentRecorded   = "payment.recorded"
	EventSettingsChanged   = "project.settings_changed"
)

// Event is one change notification for a project.
type Event struct {
	Type      string                 `json:"type"`
	ProjectID string                 `json:"project_id"`
	Version   int64                  `json:"version"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
	At        time.Time              `json:"at"`
}

// Broker fans project events out to subscribers.
type Broker interface {
	Publish(ctx context.Context, ev Event) error
	// Subscribe streams events for one project until ctx ends. The returned
	// channel is closed when the subscription stops.
	Subscribe(ctx context.Context, projectID uuid.UUID) (<-chan Event, error)
}

// Channel is the pub/sub channel name for a project.
func Channel(projectID string) string {
	return fmt.Sprintf("project:events:%s", projectID)
}

func NewEvent(eventType string, rec models.ProjectRecord, payload map[string]interface{}) Event {
	return Event{
		Type:      eventType,
		ProjectID: rec.ID.String(),
		Version:   rec.Version,
		Payload:   payload,
		At:        time.Now().UTC(),
	}
}

// Event payloads
func StatusPayload(rec models.ProjectRecord, progress, customerStep int) map[string]interface{} {
	return map[string]interface{}{
		"project_id":       rec.ID.String(),
		"status":           rec.Status,
		"progress":         progress,
		"customer_step":    customerStep,
		"prototype_status": rec.PrototypeStatus,
	}
}

func PrototypePayload(rec models.ProjectRecord) map[string]interface{} {
	p := map[string]interface{}{
		"project_id":            rec.ID.String(),
		"prototype_status":      rec.PrototypeStatus,
		"sample_revision_count": rec.SampleRevisionCount,
		"sample_approved":       rec.SampleApproved,
	}
	if rec.TrackingNumber != nil {
		p["tracking_number"] = *rec.TrackingNumber
	}
	if rec.EstimatedDelivery != nil {
		p["estimated_delivery"] = *rec.EstimatedDelivery
	}
	return p
}

func FeedbackPayload(rec models.ProjectRecord) map[string]interface{} {
	return map[string]interface{}{
		"project_id":  rec.ID.String(),
		"image_count": len(rec.FeedbackImages),
	}
}

func PaymentPayload(rec models.ProjectRecord, t models.PaymentType) map[string]interface{} {
	flag := rec.Payments.Flag(t)
	p := map[string]interface{}{
		"project_id":   rec.ID.String(),
		"payment_type": t,
		"paid":         flag.Paid,
		"status":       rec.Status,
	}
	if flag.Reference != nil {
		p["reference"] = *flag.Reference
	}
	return p
}

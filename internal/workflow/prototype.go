package workflow

import (
	"strings"
	"time"

	"product-studio-backend/internal/models"
)

// PrototypeUpdate is an admin edit of the sample sub-workflow.
type PrototypeUpdate struct {
	Status            models.PrototypeStatus
	TrackingNumber    *string
	EstimatedDelivery *string
	AdminNotes        *string
}

// AdvancePrototype sets the sample sub-status. Any of the four values may be
// chosen, backwards included. Estimated delivery and notes are written as given.
func AdvancePrototype(r models.ProjectRecord, actor Actor, u PrototypeUpdate) (*models.Patch, error) {
	const op = "advance prototype"
	if !actor.IsAdmin() {
		return nil, forbidden(op, "only admins update the sample status")
	}
	if !u.Status.Valid() {
		return nil, invalid(op, "unknown prototype status %q", u.Status)
	}
	tracking := trimmed(u.TrackingNumber)
	if u.Status == models.PrototypeShipping && tracking == nil {
		return nil, invalid(op, "tracking number is required when the sample ships")
	}

	p := models.NewPatch().
		SetPrototypeStatus(u.Status).
		SetEstimatedDelivery(u.EstimatedDelivery).
		SetAdminNotes(u.AdminNotes)
	if tracking != nil {
		p.SetTrackingNumber(tracking)
	}
	return p, nil
}

// CanSubmitFeedback reports whether a new feedback may be written now. One
// feedback per sample cycle: it stays locked until an admin resolves it.
func CanSubmitFeedback(r models.ProjectRecord) error {
	const op = "submit feedback"
	if r.Status != models.StatusPrototyping {
		return precondition(op, "project is %s, not prototyping", r.Status)
	}
	if r.PrototypeStatus != models.PrototypeDelivered && r.PrototypeStatus != models.PrototypeFeedback {
		return precondition(op, "sample is %s, feedback opens once it is delivered", r.PrototypeStatus)
	}
	if r.CustomerFeedback != nil {
		return precondition(op, "feedback for this sample was already submitted")
	}
	return nil
}

// SubmitFeedback records the customer's verdict on the delivered sample. It
// does not move the sub-status; only an admin does that.
func SubmitFeedback(r models.ProjectRecord, actor Actor, text string, imageURLs []string) (*models.Patch, error) {
	const op = "submit feedback"
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, invalid(op, "feedback text is required")
	}
	if err := CanSubmitFeedback(r); err != nil {
		return nil, err
	}
	images := make([]string, len(imageURLs))
	copy(images, imageURLs)
	return models.NewPatch().SetFeedback(&text, images), nil
}

// pendingDecision guards Approve and RequestNewSample. Both consume the
// current feedback, so once either fired the other is no longer legal.
func pendingDecision(op string, r models.ProjectRecord) error {
	if r.CustomerFeedback == nil {
		return precondition(op, "no sample feedback awaiting a decision")
	}
	if r.SampleApproved {
		return precondition(op, "sample was already approved")
	}
	return nil
}

// Approve accepts the sample and opens sourcing. Feedback is kept as history.
func Approve(r models.ProjectRecord, actor Actor, now time.Time) (*models.Patch, error) {
	if err := pendingDecision("approve sample", r); err != nil {
		return nil, err
	}
	return models.NewPatch().
		SetStatus(models.StatusSourcing).
		SetSampleApproved(now), nil
}

// RequestNewSample rejects the current sample and restarts production of a new
// one. The outer status is left alone.
func RequestNewSample(r models.ProjectRecord, actor Actor, reason string) (*models.Patch, error) {
	if err := pendingDecision("request new sample", r); err != nil {
		return nil, err
	}
	note := "[New sample requested]"
	if reason = strings.TrimSpace(reason); reason != "" {
		note = "[New sample requested: " + reason + "]"
	}
	notes := note
	if r.AdminNotes != nil && *r.AdminNotes != "" {
		notes = *r.AdminNotes + "\n" + note
	}
	return models.NewPatch().
		SetPrototypeStatus(models.PrototypeProducing).
		SetTrackingNumber(nil).
		SetEstimatedDelivery(nil).
		SetAdminNotes(&notes).
		SetFeedback(nil, nil).
		SetSampleRevisionCount(r.SampleRevisionCount + 1), nil
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

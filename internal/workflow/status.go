package workflow

import (
	"math"

	"product-studio-backend/internal/models"
)

// StatusIndex returns the position of s in the lifecycle order, or -1.
func StatusIndex(s models.ProjectStatus) int {
	for i, v := range models.ProjectStatuses {
		if v == s {
			return i
		}
	}
	return -1
}

// ProgressPercent is index/(N-1)*100, rounded.
func ProgressPercent(s models.ProjectStatus) int {
	idx := StatusIndex(s)
	if idx < 0 {
		return 0
	}
	n := len(models.ProjectStatuses)
	return int(math.Round(float64(idx) / float64(n-1) * 100))
}

// CustomerStep maps a status onto the step shown to customers. The mapping
// folds payment/production/shipping into step 3 and jumps to 5 on completion;
// step 4 is never shown.
func CustomerStep(s models.ProjectStatus) int {
	switch s {
	case models.StatusDraft, models.StatusDetails:
		return 0
	case models.StatusPrototyping:
		return 1
	case models.StatusSourcing:
		return 2
	case models.StatusPayment, models.StatusProduction, models.StatusShipping:
		return 3
	case models.StatusCompleted:
		return 5
	}
	return 0
}

type Progress struct {
	Status       models.ProjectStatus `json:"status"`
	Percent      int                  `json:"percent"`
	CustomerStep int                  `json:"customer_step"`
}

func ProgressOf(r models.ProjectRecord) Progress {
	return Progress{
		Status:       r.Status,
		Percent:      ProgressPercent(r.Status),
		CustomerStep: CustomerStep(r.Status),
	}
}

// Transition validates a direct status change. Admins may move to any status,
// including backwards. Customers never change status directly; their
// transitions happen only as side effects of gating commands.
func Transition(r models.ProjectRecord, actor Actor, target models.ProjectStatus) (*models.Patch, error) {
	const op = "transition"
	if !target.Valid() {
		return nil, invalid(op, "unknown status %q", target)
	}
	if !actor.IsAdmin() {
		return nil, forbidden(op, "customers cannot set status to %s", target)
	}
	return models.NewPatch().SetStatus(target), nil
}

// promoteTo moves the record forward to target as a command side effect. It
// never moves a record backwards, so an admin who already pushed the project
// further along is not overridden.
func promoteTo(r models.ProjectRecord, target models.ProjectStatus, p *models.Patch) {
	if StatusIndex(r.Status) < StatusIndex(target) {
		p.SetStatus(target)
	}
}

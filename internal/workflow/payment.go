package workflow

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"product-studio-backend/internal/models"
)

// DepositPercent is the share of the manufacturing total due up front.
const DepositPercent = 30

// Amounts are display values in currency units. The manufacturing total is
// split in whole cents, so DepositCents+RemainingCents == TotalCents always.
type Amounts struct {
	Total          float64 `json:"total"`
	Deposit        float64 `json:"deposit"`
	Remaining      float64 `json:"remaining"`
	TotalCents     int64   `json:"total_cents"`
	DepositCents   int64   `json:"deposit_cents"`
	RemainingCents int64   `json:"remaining_cents"`
	Freight        float64 `json:"freight"`
	StarterFee     float64 `json:"starter_fee"`
	QCCost         float64 `json:"qc_cost"`
	Photography    float64 `json:"photography"`
	Marketing      float64 `json:"marketing"`
}

// CalculatePaymentAmounts derives every amount from the record. The deposit
// is rounded half up to the cent and the remaining balance takes the rest.
func CalculatePaymentAmounts(r models.ProjectRecord) Amounts {
	var a Amounts
	if m := r.SelectedManufacturer; m != nil {
		a.TotalCents = ToCents(float64(m.MinOrderQuantity) * m.Price)
	}
	a.DepositCents = (a.TotalCents*DepositPercent + 50) / 100
	a.RemainingCents = a.TotalCents - a.DepositCents
	a.Total = FromCents(a.TotalCents)
	a.Deposit = FromCents(a.DepositCents)
	a.Remaining = FromCents(a.RemainingCents)
	a.Freight = r.FreightCost
	a.StarterFee = r.StarterFee
	a.QCCost = r.QCCost
	if p := r.SelectedPhotographyPackage; p != nil {
		a.Photography = p.Price
	}
	if p := r.SelectedMarketingPackage; p != nil {
		a.Marketing = p.Price
	}
	return a
}

// ChargeCents returns what a charge of type t costs right now, in cents.
// QC is billed together with the balance.
func ChargeCents(r models.ProjectRecord, t models.PaymentType) (int64, error) {
	const op = "payment amount"
	a := CalculatePaymentAmounts(r)
	switch t {
	case models.PaymentDeposit, models.PaymentRemaining:
		if r.SelectedManufacturer == nil {
			return 0, precondition(op, "no manufacturer selected")
		}
		if t == models.PaymentDeposit {
			return a.DepositCents, nil
		}
		return a.RemainingCents + ToCents(a.QCCost), nil
	case models.PaymentFreight:
		return ToCents(a.Freight), nil
	case models.PaymentStarterFee, models.PaymentSample:
		return ToCents(a.StarterFee), nil
	case models.PaymentPhotography:
		if r.SelectedPhotographyPackage == nil {
			return 0, precondition(op, "no photography package selected")
		}
		return ToCents(a.Photography), nil
	case models.PaymentMarketing:
		if r.SelectedMarketingPackage == nil {
			return 0, precondition(op, "no marketing package selected")
		}
		return ToCents(a.Marketing), nil
	}
	return 0, invalid(op, "unknown payment type %q", t)
}

// AmountFor is ChargeCents in currency units.
func AmountFor(r models.ProjectRecord, t models.PaymentType) (float64, error) {
	cents, err := ChargeCents(r, t)
	if err != nil {
		return 0, err
	}
	return FromCents(cents), nil
}

// ToCents converts a money amount for the gateway.
func ToCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

func FromCents(cents int64) float64 {
	return float64(cents) / 100
}

// IdempotencyKey names the gateway charge for one payment type of one project.
func IdempotencyKey(projectID uuid.UUID, t models.PaymentType) string {
	return fmt.Sprintf("%s:%s", projectID, t.FlagKey())
}

// GetPaymentStatus is a read-only copy of every payment flag.
func GetPaymentStatus(r models.ProjectRecord) models.Payments {
	return r.Clone().Payments
}

// RecordPayment marks t as paid. Recording an already paid type is accepted
// and changes nothing: the first paid-at and reference are kept.
func RecordPayment(r models.ProjectRecord, t models.PaymentType, reference string, now time.Time) (*models.Patch, error) {
	const op = "record payment"
	if !t.Valid() {
		return nil, invalid(op, "unknown payment type %q", t)
	}
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, invalid(op, "payment reference is required")
	}
	if r.Payments.Flag(t).Paid {
		return models.NewPatch(), nil
	}
	paidAt := now.UTC()
	return models.NewPatch().SetPayment(t, models.PaymentFlag{
		Paid:      true,
		PaidAt:    &paidAt,
		Reference: &reference,
	}), nil
}

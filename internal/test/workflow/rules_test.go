package workflow_test

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"product-studio-backend/internal/models"
	"product-studio-backend/internal/workflow"
)

var (
	adminActor    = workflow.Admin(uuid.New())
	customerActor = workflow.Customer(uuid.New())
)

func strPtr(s string) *string { return &s }

func record(status models.ProjectStatus) models.ProjectRecord {
	rec := models.NewProjectRecord(customerActor.UserID, "Ceramic mug")
	rec.Status = status
	return rec
}

func TestProgressPercent(t *testing.T) {
	cases := map[models.ProjectStatus]int{
		models.StatusDraft:       0,
		models.StatusDetails:     14,
		models.StatusPrototyping: 29,
		models.StatusSourcing:    43,
		models.StatusPayment:     57,
		models.StatusProduction:  71,
		models.StatusShipping:    86,
		models.StatusCompleted:   100,
	}
	for status, want := range cases {
		assert.Equal(t, want, workflow.ProgressPercent(status), status)
	}
	assert.Equal(t, 0, workflow.ProgressPercent("archived"))
}

func TestCustomerStep(t *testing.T) {
	cases := map[models.ProjectStatus]int{
		models.StatusDraft:       0,
		models.StatusDetails:     0,
		models.StatusPrototyping: 1,
		models.StatusSourcing:    2,
		models.StatusPayment:     3,
		models.StatusProduction:  3,
		models.StatusShipping:    3,
		models.StatusCompleted:   5,
	}
	for status, want := range cases {
		assert.Equal(t, want, workflow.CustomerStep(status), status)
	}
}

func TestTransition(t *testing.T) {
	rec := record(models.StatusDraft)

	patch, err := workflow.Transition(rec, adminActor, models.StatusProduction)
	require.NoError(t, err)
	patch.Apply(&rec)
	assert.Equal(t, models.StatusProduction, rec.Status)

	// Admins may go backwards too.
	patch, err = workflow.Transition(rec, adminActor, models.StatusDetails)
	require.NoError(t, err)
	patch.Apply(&rec)
	assert.Equal(t, models.StatusDetails, rec.Status)

	_, err = workflow.Transition(rec, customerActor, models.StatusPrototyping)
	assert.True(t, errors.Is(err, workflow.ErrForbidden))

	_, err = workflow.Transition(rec, adminActor, "archived")
	assert.Equal(t, workflow.KindValidation, workflow.KindOf(err))
}

func TestModuleAccess(t *testing.T) {
	tests := []struct {
		status models.ProjectStatus
		want   map[workflow.Module]bool
	}{
		{models.StatusDraft, map[workflow.Module]bool{
			workflow.ModuleBrief: true, workflow.ModulePrototyping: false, workflow.ModuleSourcing: false,
			workflow.ModuleOrder: false, workflow.ModulePhotography: false, workflow.ModuleMarketing: false,
		}},
		{models.StatusDetails, map[workflow.Module]bool{
			workflow.ModuleBrief: true, workflow.ModulePrototyping: true, workflow.ModuleSourcing: false,
			workflow.ModuleOrder: false, workflow.ModulePhotography: false, workflow.ModuleMarketing: false,
		}},
		{models.StatusSourcing, map[workflow.Module]bool{
			workflow.ModuleBrief: true, workflow.ModulePrototyping: true, workflow.ModuleSourcing: true,
			workflow.ModuleOrder: false, workflow.ModulePhotography: false, workflow.ModuleMarketing: false,
		}},
		{models.StatusPayment, map[workflow.Module]bool{
			workflow.ModuleBrief: true, workflow.ModulePrototyping: true, workflow.ModuleSourcing: true,
			workflow.ModuleOrder: true, workflow.ModulePhotography: false, workflow.ModuleMarketing: false,
		}},
		{models.StatusProduction, map[workflow.Module]bool{
			workflow.ModuleBrief: true, workflow.ModulePrototyping: true, workflow.ModuleSourcing: true,
			workflow.ModuleOrder: true, workflow.ModulePhotography: true, workflow.ModuleMarketing: true,
		}},
		{models.StatusCompleted, map[workflow.Module]bool{
			workflow.ModuleBrief: true, workflow.ModulePrototyping: true, workflow.ModuleSourcing: true,
			workflow.ModuleOrder: true, workflow.ModulePhotography: true, workflow.ModuleMarketing: true,
		}},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.want, workflow.ModuleAccess(record(tt.status)))
		})
	}
}

func TestModuleAccess_Unlocks(t *testing.T) {
	rec := record(models.StatusDraft)
	rec.PhotographyUnlocked = true

	access := workflow.ModuleAccess(rec)
	assert.True(t, access[workflow.ModulePhotography])
	assert.False(t, access[workflow.ModuleMarketing])
	assert.False(t, access[workflow.ModuleSourcing])
}

func TestCalculatePaymentAmounts(t *testing.T) {
	rec := record(models.StatusPayment)
	rec.SelectedManufacturer = &models.ManufacturerSnapshot{ID: "m1", Price: 12.50, MinOrderQuantity: 200}
	rec.SelectedPhotographyPackage = &models.PackageSnapshot{ID: "p1", Price: 450}

	a := workflow.CalculatePaymentAmounts(rec)
	assert.Equal(t, 2500.0, a.Total)
	assert.Equal(t, 750.0, a.Deposit)
	assert.Equal(t, 1750.0, a.Remaining)
	assert.Equal(t, int64(250000), a.TotalCents)
	assert.Equal(t, int64(75000), a.DepositCents)
	assert.Equal(t, int64(175000), a.RemainingCents)
	assert.Equal(t, models.DefaultFreightCost, a.Freight)
	assert.Equal(t, models.DefaultStarterFee, a.StarterFee)
	assert.Equal(t, 450.0, a.Photography)
	assert.Zero(t, a.Marketing)
}

func TestCalculatePaymentAmounts_PartitionIsExact(t *testing.T) {
	rec := record(models.StatusPayment)
	for i := 1; i <= 20000; i++ {
		price := float64(i) / 100
		for _, qty := range []int{1, 3, 7, 50, 101, 200, 999} {
			rec.SelectedManufacturer = &models.ManufacturerSnapshot{Price: price, MinOrderQuantity: qty}
			a := workflow.CalculatePaymentAmounts(rec)

			if a.DepositCents+a.RemainingCents != a.TotalCents {
				t.Fatalf("price %v qty %d: %d + %d != %d", price, qty, a.DepositCents, a.RemainingCents, a.TotalCents)
			}
			if workflow.ToCents(a.Deposit)+workflow.ToCents(a.Remaining) != workflow.ToCents(a.Total) {
				t.Fatalf("price %v qty %d: display amounts %v + %v != %v", price, qty, a.Deposit, a.Remaining, a.Total)
			}

			deposit, err := workflow.ChargeCents(rec, models.PaymentDeposit)
			require.NoError(t, err)
			remaining, err := workflow.ChargeCents(rec, models.PaymentRemaining)
			require.NoError(t, err)
			if deposit+remaining != a.TotalCents {
				t.Fatalf("price %v qty %d: charged %d + %d, total %d", price, qty, deposit, remaining, a.TotalCents)
			}
		}
	}
}

func TestCalculatePaymentAmounts_SmallTotals(t *testing.T) {
	tests := []struct {
		price                     float64
		qty                       int
		total, deposit, remaining int64
	}{
		{0.05, 1, 5, 2, 3},
		{0.07, 50, 350, 105, 245},
		{0.01, 1, 1, 0, 1},
		{0.01, 5, 5, 2, 3},
	}
	for _, tt := range tests {
		rec := record(models.StatusPayment)
		rec.SelectedManufacturer = &models.ManufacturerSnapshot{Price: tt.price, MinOrderQuantity: tt.qty}
		a := workflow.CalculatePaymentAmounts(rec)
		assert.Equal(t, tt.total, a.TotalCents, "price %v qty %d", tt.price, tt.qty)
		assert.Equal(t, tt.deposit, a.DepositCents, "price %v qty %d", tt.price, tt.qty)
		assert.Equal(t, tt.remaining, a.RemainingCents, "price %v qty %d", tt.price, tt.qty)
	}
}

func TestCalculatePaymentAmounts_NoManufacturer(t *testing.T) {
	a := workflow.CalculatePaymentAmounts(record(models.StatusSourcing))
	assert.Zero(t, a.Total)
	assert.Zero(t, a.Deposit)
	assert.Zero(t, a.Remaining)
}

func TestAmountFor(t *testing.T) {
	rec := record(models.StatusPayment)

	_, err := workflow.AmountFor(rec, models.PaymentDeposit)
	assert.Equal(t, workflow.KindPreconditionFailed, workflow.KindOf(err))

	rec.SelectedManufacturer = &models.ManufacturerSnapshot{Price: 10, MinOrderQuantity: 100}
	rec.QCCost = 80

	deposit, err := workflow.AmountFor(rec, models.PaymentDeposit)
	require.NoError(t, err)
	assert.Equal(t, 300.0, deposit)

	remaining, err := workflow.AmountFor(rec, models.PaymentRemaining)
	require.NoError(t, err)
	assert.Equal(t, 780.0, remaining)

	remainingCents, err := workflow.ChargeCents(rec, models.PaymentRemaining)
	require.NoError(t, err)
	assert.Equal(t, int64(78000), remainingCents)

	starter, err := workflow.AmountFor(rec, models.PaymentStarterFee)
	require.NoError(t, err)
	sample, err := workflow.AmountFor(rec, models.PaymentSample)
	require.NoError(t, err)
	assert.Equal(t, starter, sample)

	_, err = workflow.AmountFor(rec, models.PaymentMarketing)
	assert.Equal(t, workflow.KindPreconditionFailed, workflow.KindOf(err))

	_, err = workflow.AmountFor(rec, "tip")
	assert.Equal(t, workflow.KindValidation, workflow.KindOf(err))
}

func TestIdempotencyKey(t *testing.T) {
	id := uuid.MustParse("5b0e8f5e-58a1-4a4b-9a56-1f3c0c6d2e11")
	assert.Equal(t, "5b0e8f5e-58a1-4a4b-9a56-1f3c0c6d2e11:deposit", workflow.IdempotencyKey(id, models.PaymentDeposit))
	assert.Equal(t, workflow.IdempotencyKey(id, models.PaymentSample), workflow.IdempotencyKey(id, models.PaymentStarterFee))
}

func TestToCents(t *testing.T) {
	assert.Equal(t, int64(75000), workflow.ToCents(750))
	assert.Equal(t, int64(1999), workflow.ToCents(19.99))
	assert.Equal(t, int64(30), workflow.ToCents(0.1+0.2))
}

func TestRecordPayment_Idempotent(t *testing.T) {
	rec := record(models.StatusPayment)
	first := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	patch, err := workflow.RecordPayment(rec, models.PaymentFreight, "ch_1", first)
	require.NoError(t, err)
	patch.Apply(&rec)

	require.True(t, rec.Payments.Freight.Paid)
	assert.Equal(t, first, *rec.Payments.Freight.PaidAt)
	assert.Equal(t, "ch_1", *rec.Payments.Freight.Reference)

	again, err := workflow.RecordPayment(rec, models.PaymentFreight, "ch_2", first.Add(time.Hour))
	require.NoError(t, err)
	assert.True(t, again.Empty())

	again.Apply(&rec)
	assert.Equal(t, "ch_1", *rec.Payments.Freight.Reference)
	assert.Equal(t, first, *rec.Payments.Freight.PaidAt)
}

func TestRecordPayment_StarterFeeSetsSampleFlag(t *testing.T) {
	rec := record(models.StatusPrototyping)

	patch, err := workflow.RecordPayment(rec, models.PaymentStarterFee, "ch_starter", time.Now())
	require.NoError(t, err)
	patch.Apply(&rec)

	assert.True(t, rec.Payments.Sample.Paid)
	assert.True(t, workflow.GetPaymentStatus(rec).Flag(models.PaymentStarterFee).Paid)

	again, err := workflow.RecordPayment(rec, models.PaymentSample, "ch_sample", time.Now())
	require.NoError(t, err)
	assert.True(t, again.Empty())
}

func TestRecordPayment_Validation(t *testing.T) {
	rec := record(models.StatusPayment)

	_, err := workflow.RecordPayment(rec, models.PaymentDeposit, "  ", time.Now())
	assert.Equal(t, workflow.KindValidation, workflow.KindOf(err))

	_, err = workflow.RecordPayment(rec, "tip", "ch_1", time.Now())
	assert.Equal(t, workflow.KindValidation, workflow.KindOf(err))
}

func TestAdvancePrototype(t *testing.T) {
	rec := record(models.StatusPrototyping)

	_, err := workflow.AdvancePrototype(rec, customerActor, workflow.PrototypeUpdate{Status: models.PrototypeShipping})
	assert.Equal(t, workflow.KindForbidden, workflow.KindOf(err))

	_, err = workflow.AdvancePrototype(rec, adminActor, workflow.PrototypeUpdate{Status: models.PrototypeShipping})
	assert.Equal(t, workflow.KindValidation, workflow.KindOf(err))

	_, err = workflow.AdvancePrototype(rec, adminActor, workflow.PrototypeUpdate{Status: models.PrototypeShipping, TrackingNumber: strPtr("   ")})
	assert.Equal(t, workflow.KindValidation, workflow.KindOf(err))

	_, err = workflow.AdvancePrototype(rec, adminActor, workflow.PrototypeUpdate{Status: "lost"})
	assert.Equal(t, workflow.KindValidation, workflow.KindOf(err))

	patch, err := workflow.AdvancePrototype(rec, adminActor, workflow.PrototypeUpdate{
		Status:            models.PrototypeShipping,
		TrackingNumber:    strPtr(" 1Z999AA1 "),
		EstimatedDelivery: strPtr("2026-04-02"),
	})
	require.NoError(t, err)
	patch.Apply(&rec)

	assert.Equal(t, models.PrototypeShipping, rec.PrototypeStatus)
	assert.Equal(t, "1Z999AA1", *rec.TrackingNumber)
	assert.Equal(t, "2026-04-02", *rec.EstimatedDelivery)
	assert.Equal(t, models.StatusPrototyping, rec.Status)
}

func deliveredSample() models.ProjectRecord {
	rec := record(models.StatusPrototyping)
	rec.PrototypeStatus = models.PrototypeDelivered
	rec.TrackingNumber = strPtr("1Z999AA1")
	return rec
}

func TestSubmitFeedback_SingleShot(t *testing.T) {
	rec := deliveredSample()

	patch, err := workflow.SubmitFeedback(rec, customerActor, "Handle is too thin", []string{"https://img/1.jpg"})
	require.NoError(t, err)
	patch.Apply(&rec)

	assert.Equal(t, "Handle is too thin", *rec.CustomerFeedback)
	assert.Equal(t, []string{"https://img/1.jpg"}, rec.FeedbackImages)
	assert.Equal(t, models.PrototypeDelivered, rec.PrototypeStatus)

	_, err = workflow.SubmitFeedback(rec, customerActor, "Second thoughts", nil)
	assert.True(t, errors.Is(err, workflow.ErrPreconditionFailed))
}

func TestCanSubmitFeedback(t *testing.T) {
	rec := record(models.StatusPrototyping)
	assert.Error(t, workflow.CanSubmitFeedback(rec), "sample still producing")

	rec.PrototypeStatus = models.PrototypeFeedback
	assert.NoError(t, workflow.CanSubmitFeedback(rec))

	rec.Status = models.StatusSourcing
	assert.Error(t, workflow.CanSubmitFeedback(rec))
}

func TestSubmitFeedback_EmptyText(t *testing.T) {
	_, err := workflow.SubmitFeedback(deliveredSample(), customerActor, "  ", nil)
	assert.Equal(t, workflow.KindValidation, workflow.KindOf(err))
}

func TestApprove(t *testing.T) {
	rec := deliveredSample()
	_, err := workflow.Approve(rec, customerActor, time.Now())
	assert.Equal(t, workflow.KindPreconditionFailed, workflow.KindOf(err), "no feedback yet")

	rec.CustomerFeedback = strPtr("Looks great")
	at := time.Date(2026, 4, 5, 9, 0, 0, 0, time.UTC)
	patch, err := workflow.Approve(rec, customerActor, at)
	require.NoError(t, err)
	patch.Apply(&rec)

	assert.True(t, rec.SampleApproved)
	assert.Equal(t, at, *rec.SampleApprovedAt)
	assert.Equal(t, models.StatusSourcing, rec.Status)
	assert.Equal(t, "Looks great", *rec.CustomerFeedback)
	assert.True(t, workflow.ModuleAccess(rec)[workflow.ModuleSourcing])

	_, err = workflow.Approve(rec, customerActor, at)
	assert.Equal(t, workflow.KindPreconditionFailed, workflow.KindOf(err))
	_, err = workflow.RequestNewSample(rec, customerActor, "changed my mind")
	assert.Equal(t, workflow.KindPreconditionFailed, workflow.KindOf(err))
}

func TestRequestNewSample(t *testing.T) {
	rec := deliveredSample()
	rec.SampleRevisionCount = 2
	rec.AdminNotes = strPtr("Glaze batch B")
	rec.CustomerFeedback = strPtr("Color is off")
	rec.FeedbackImages = []string{"https://img/1.jpg"}
	rec.EstimatedDelivery = strPtr("2026-04-02")

	patch, err := workflow.RequestNewSample(rec, customerActor, "wrong color")
	require.NoError(t, err)
	patch.Apply(&rec)

	assert.Equal(t, 3, rec.SampleRevisionCount)
	assert.Equal(t, models.PrototypeProducing, rec.PrototypeStatus)
	assert.Nil(t, rec.TrackingNumber)
	assert.Nil(t, rec.EstimatedDelivery)
	assert.Nil(t, rec.CustomerFeedback)
	assert.Empty(t, rec.FeedbackImages)
	assert.Contains(t, *rec.AdminNotes, "Glaze batch B")
	assert.Contains(t, *rec.AdminNotes, "wrong color")
	assert.Equal(t, models.StatusPrototyping, rec.Status)

	// Feedback reopens for the next sample once it is delivered.
	rec.PrototypeStatus = models.PrototypeDelivered
	assert.NoError(t, workflow.CanSubmitFeedback(rec))
}

func TestRequestNewSample_NoFeedback(t *testing.T) {
	_, err := workflow.RequestNewSample(deliveredSample(), customerActor, "")
	assert.Equal(t, workflow.KindPreconditionFailed, workflow.KindOf(err))
}

func TestError_Format(t *testing.T) {
	err := &workflow.Error{Kind: workflow.KindPersistence, Op: "pay", Msg: "store write failed", Err: errors.New("conn reset")}
	assert.Equal(t, "pay: store write failed: conn reset", err.Error())
	assert.True(t, errors.Is(err, workflow.ErrPersistence))
	assert.False(t, errors.Is(err, workflow.ErrNotFound))
	assert.Equal(t, workflow.Kind(""), workflow.KindOf(errors.New("plain")))
}

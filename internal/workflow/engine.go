package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"product-studio-backend/internal/models"
)

// Result is what every command returns: the stored record after the command
// plus the entitlements recomputed from it.
type Result struct {
	Project  models.ProjectRecord `json:"project"`
	Modules  map[Module]bool      `json:"modules"`
	Progress Progress             `json:"progress"`
}

func newResult(r models.ProjectRecord) *Result {
	return &Result{
		Project:  r,
		Modules:  ModuleAccess(r),
		Progress: ProgressOf(r),
	}
}

// Engine validates commands against the current record and writes their
// effects as one partial patch. It keeps no state of its own.
type Engine struct {
	store   ProjectStore
	gateway PaymentGateway
	blobs   BlobStore
	catalog Catalog

	now               func() time.Time
	optimisticLocking bool
}

type Option func(*Engine)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithOptimisticLocking makes every patch carry the version it was computed
// from, so a concurrent write turns into PreconditionFailed instead of being
// silently overwritten.
func WithOptimisticLocking(enabled bool) Option {
	return func(e *Engine) { e.optimisticLocking = enabled }
}

func NewEngine(store ProjectStore, gateway PaymentGateway, blobs BlobStore, catalog Catalog, opts ...Option) *Engine {
	e := &Engine{
		store:   store,
		gateway: gateway,
		blobs:   blobs,
		catalog: catalog,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// load fetches the record and hides other customers' projects.
func (e *Engine) load(ctx context.Context, op string, actor Actor, id uuid.UUID) (models.ProjectRecord, error) {
	rec, err := e.store.Get(ctx, id)
	if err != nil {
		return models.ProjectRecord{}, wrapStore(op, err)
	}
	if !actor.IsAdmin() && rec.UserID != actor.UserID {
		return models.ProjectRecord{}, &Error{Kind: KindNotFound, Op: op, Msg: fmt.Sprintf("project %s not found", id)}
	}
	return *rec, nil
}

func (e *Engine) commit(ctx context.Context, op string, rec models.ProjectRecord, patch *models.Patch) (*Result, error) {
	if patch == nil || patch.Empty() {
		return newResult(rec), nil
	}
	if e.optimisticLocking {
		patch.ExpectVersion(rec.Version)
	}
	updated, err := e.store.Patch(ctx, rec.ID, patch)
	if err != nil {
		return nil, wrapStore(op, err)
	}
	return newResult(*updated), nil
}

// Get returns the record with its entitlements.
func (e *Engine) Get(ctx context.Context, actor Actor, id uuid.UUID) (*Result, error) {
	rec, err := e.load(ctx, "get project", actor, id)
	if err != nil {
		return nil, err
	}
	return newResult(rec), nil
}

// Transition is a direct status change. Only admins get through.
func (e *Engine) Transition(ctx context.Context, actor Actor, id uuid.UUID, target models.ProjectStatus) (*Result, error) {
	const op = "transition"
	rec, err := e.load(ctx, op, actor, id)
	if err != nil {
		return nil, err
	}
	patch, err := Transition(rec, actor, target)
	if err != nil {
		return nil, err
	}
	return e.commit(ctx, op, rec, patch)
}

// SubmitBrief stores the product brief and moves the project into prototyping.
func (e *Engine) SubmitBrief(ctx context.Context, actor Actor, id uuid.UUID, brief models.Brief) (*Result, error) {
	const op = "submit brief"
	brief.ProductType = strings.TrimSpace(brief.ProductType)
	brief.Description = strings.TrimSpace(brief.Description)
	if brief.ProductType == "" || brief.Description == "" {
		return nil, invalid(op, "product type and description are required")
	}
	if brief.TargetQuantity < 0 || brief.Budget < 0 {
		return nil, invalid(op, "quantity and budget cannot be negative")
	}
	rec, err := e.load(ctx, op, actor, id)
	if err != nil {
		return nil, err
	}
	if rec.Status != models.StatusDraft && rec.Status != models.StatusDetails {
		return nil, precondition(op, "brief is locked once the project is %s", rec.Status)
	}
	patch := models.NewPatch().SetBrief(brief)
	promoteTo(rec, models.StatusPrototyping, patch)
	return e.commit(ctx, op, rec, patch)
}

// SelectManufacturer snapshots a catalog quote into the record. Status stays
// where it is; only the deposit moves the project on.
func (e *Engine) SelectManufacturer(ctx context.Context, actor Actor, id uuid.UUID, manufacturerID string) (*Result, error) {
	const op = "select manufacturer"
	if strings.TrimSpace(manufacturerID) == "" {
		return nil, invalid(op, "manufacturer id is required")
	}
	rec, err := e.load(ctx, op, actor, id)
	if err != nil {
		return nil, err
	}
	if !IsAvailable(ModuleSourcing, rec) {
		return nil, precondition(op, "sourcing opens after the sample is approved")
	}
	if rec.Payments.Deposit.Paid {
		return nil, precondition(op, "the deposit is paid, the manufacturer can no longer change")
	}
	m, err := e.catalog.Manufacturer(ctx, rec.ID, manufacturerID)
	if err != nil {
		return nil, wrapStore(op, err)
	}
	snap := *m
	snap.Advantages = append([]string(nil), m.Advantages...)
	snap.Disadvantages = append([]string(nil), m.Disadvantages...)
	snap.SelectedAt = e.now().UTC()
	return e.commit(ctx, op, rec, models.NewPatch().SetManufacturer(&snap))
}

// SelectPackage snapshots a photography or marketing package.
func (e *Engine) SelectPackage(ctx context.Context, actor Actor, id uuid.UUID, module Module, packageID string) (*Result, error) {
	const op = "select package"
	if module != ModulePhotography && module != ModuleMarketing {
		return nil, invalid(op, "packages exist for photography and marketing only, not %q", module)
	}
	if strings.TrimSpace(packageID) == "" {
		return nil, invalid(op, "package id is required")
	}
	rec, err := e.load(ctx, op, actor, id)
	if err != nil {
		return nil, err
	}
	if !IsAvailable(module, rec) {
		return nil, forbidden(op, "%s is not available for this project yet", module)
	}
	if rec.Payments.Flag(models.PaymentType(module)).Paid {
		return nil, precondition(op, "the %s package is already paid", module)
	}
	pkg, err := e.catalog.Package(ctx, module, packageID)
	if err != nil {
		return nil, wrapStore(op, err)
	}
	snap := *pkg
	snap.Deliverables = append([]string(nil), pkg.Deliverables...)
	snap.SelectedAt = e.now().UTC()

	patch := models.NewPatch()
	if module == ModulePhotography {
		patch.SetPhotographyPackage(&snap)
	} else {
		patch.SetMarketingPackage(&snap)
	}
	return e.commit(ctx, op, rec, patch)
}

// AdvancePrototype applies an admin edit of the sample sub-status.
func (e *Engine) AdvancePrototype(ctx context.Context, actor Actor, id uuid.UUID, u PrototypeUpdate) (*Result, error) {
	const op = "advance prototype"
	rec, err := e.load(ctx, op, actor, id)
	if err != nil {
		return nil, err
	}
	patch, err := AdvancePrototype(rec, actor, u)
	if err != nil {
		return nil, err
	}
	return e.commit(ctx, op, rec, patch)
}

// ImageUpload is one feedback photo to push through the BlobStore.
type ImageUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}

type FeedbackInput struct {
	Text string
	// ImageURLs are images already uploaded elsewhere; they come first.
	ImageURLs []string
	Images    []ImageUpload
}

// SubmitFeedback uploads the images, then writes text and URLs in one patch.
// Preconditions are checked before anything is uploaded.
func (e *Engine) SubmitFeedback(ctx context.Context, actor Actor, id uuid.UUID, in FeedbackInput) (*Result, error) {
	const op = "submit feedback"
	if strings.TrimSpace(in.Text) == "" {
		return nil, invalid(op, "feedback text is required")
	}
	rec, err := e.load(ctx, op, actor, id)
	if err != nil {
		return nil, err
	}
	if err := CanSubmitFeedback(rec); err != nil {
		return nil, err
	}

	urls := append([]string(nil), in.ImageURLs...)
	for _, img := range in.Images {
		if len(img.Data) == 0 {
			return nil, invalid(op, "image %q is empty", img.Filename)
		}
		url, err := e.blobs.Put(ctx, rec.ID, img.Filename, img.ContentType, img.Data)
		if err != nil {
			return nil, &Error{Kind: KindPersistence, Op: op, Msg: "image upload failed", Err: err}
		}
		urls = append(urls, url)
	}

	patch, err := SubmitFeedback(rec, actor, in.Text, urls)
	if err != nil {
		return nil, err
	}
	return e.commit(ctx, op, rec, patch)
}

// Approve accepts the delivered sample.
func (e *Engine) Approve(ctx context.Context, actor Actor, id uuid.UUID) (*Result, error) {
	const op = "approve sample"
	rec, err := e.load(ctx, op, actor, id)
	if err != nil {
		return nil, err
	}
	patch, err := Approve(rec, actor, e.now().UTC())
	if err != nil {
		return nil, err
	}
	return e.commit(ctx, op, rec, patch)
}

// RequestNewSample rejects the delivered sample and starts another revision.
func (e *Engine) RequestNewSample(ctx context.Context, actor Actor, id uuid.UUID, reason string) (*Result, error) {
	const op = "request new sample"
	rec, err := e.load(ctx, op, actor, id)
	if err != nil {
		return nil, err
	}
	patch, err := RequestNewSample(rec, actor, reason)
	if err != nil {
		return nil, err
	}
	return e.commit(ctx, op, rec, patch)
}

// RecordPayment stores a confirmed payment reference. Customers pay through
// Pay; recording is for admins and gateway confirmations.
func (e *Engine) RecordPayment(ctx context.Context, actor Actor, id uuid.UUID, t models.PaymentType, reference string) (*Result, error) {
	const op = "record payment"
	if !actor.IsAdmin() {
		return nil, forbidden(op, "payments are recorded by admins or the gateway")
	}
	rec, err := e.load(ctx, op, actor, id)
	if err != nil {
		return nil, err
	}
	patch, err := e.paymentPatch(rec, t, reference)
	if err != nil {
		return nil, err
	}
	return e.commit(ctx, op, rec, patch)
}

// paymentPatch records the payment and, for a first deposit, promotes the
// project to production.
func (e *Engine) paymentPatch(rec models.ProjectRecord, t models.PaymentType, reference string) (*models.Patch, error) {
	patch, err := RecordPayment(rec, t, reference, e.now())
	if err != nil {
		return nil, err
	}
	if t == models.PaymentDeposit && !patch.Empty() {
		promoteTo(rec, models.StatusProduction, patch)
	}
	return patch, nil
}

// Pay charges the amount due for t through the gateway and records it.
func (e *Engine) Pay(ctx context.Context, actor Actor, id uuid.UUID, t models.PaymentType) (*Result, error) {
	const op = "pay"
	if !t.Valid() {
		return nil, invalid(op, "unknown payment type %q", t)
	}
	rec, err := e.load(ctx, op, actor, id)
	if err != nil {
		return nil, err
	}
	if rec.Payments.Flag(t).Paid {
		return nil, precondition(op, "%s is already paid", t)
	}
	if t == models.PaymentPhotography || t == models.PaymentMarketing {
		if !IsAvailable(Module(t), rec) {
			return nil, forbidden(op, "%s is not available for this project yet", t)
		}
	}
	cents, err := ChargeCents(rec, t)
	if err != nil {
		return nil, err
	}
	if cents <= 0 {
		return nil, precondition(op, "nothing is due for %s", t)
	}

	desc := fmt.Sprintf("%s payment for project %s", t, rec.ID)
	reference, err := e.gateway.Charge(ctx, cents, desc, IdempotencyKey(rec.ID, t))
	if err != nil {
		return nil, &Error{Kind: KindPayment, Op: op, Msg: "charge failed", Err: err}
	}

	patch, err := e.paymentPatch(rec, t, reference)
	if err != nil {
		return nil, err
	}
	res, err := e.commit(ctx, op, rec, patch)
	if err != nil {
		var we *Error
		if errors.As(err, &we) {
			we.Msg = fmt.Sprintf("%s (charged, reference %s)", we.Msg, reference)
		}
		return nil, err
	}
	return res, nil
}

type PricingUpdate struct {
	StarterFee  *float64
	QCCost      *float64
	FreightCost *float64
}

// UpdatePricing changes the admin-set money inputs. Only the given fields are written.
func (e *Engine) UpdatePricing(ctx context.Context, actor Actor, id uuid.UUID, u PricingUpdate) (*Result, error) {
	const op = "update pricing"
	if !actor.IsAdmin() {
		return nil, forbidden(op, "only admins change pricing")
	}
	patch := models.NewPatch()
	for _, f := range []struct {
		name string
		v    *float64
		set  func(float64) *models.Patch
	}{
		{"starter fee", u.StarterFee, patch.SetStarterFee},
		{"qc cost", u.QCCost, patch.SetQCCost},
		{"freight cost", u.FreightCost, patch.SetFreightCost},
	} {
		if f.v == nil {
			continue
		}
		if *f.v < 0 {
			return nil, invalid(op, "%s cannot be negative", f.name)
		}
		f.set(*f.v)
	}
	if patch.Empty() {
		return nil, invalid(op, "nothing to update")
	}
	rec, err := e.load(ctx, op, actor, id)
	if err != nil {
		return nil, err
	}
	return e.commit(ctx, op, rec, patch)
}

// SetUnlocks is the admin override opening photography or marketing early.
func (e *Engine) SetUnlocks(ctx context.Context, actor Actor, id uuid.UUID, photography, marketing *bool) (*Result, error) {
	const op = "set unlocks"
	if !actor.IsAdmin() {
		return nil, forbidden(op, "only admins unlock modules")
	}
	patch := models.NewPatch()
	if photography != nil {
		patch.SetPhotographyUnlocked(*photography)
	}
	if marketing != nil {
		patch.SetMarketingUnlocked(*marketing)
	}
	if patch.Empty() {
		return nil, invalid(op, "nothing to update")
	}
	rec, err := e.load(ctx, op, actor, id)
	if err != nil {
		return nil, err
	}
	return e.commit(ctx, op, rec, patch)
}

package models

import (
	"strings"
	"time"
)

// Column names of the projects table that a Patch may touch.
const (
	ColName                       = "name"
	ColStatus                     = "status"
	ColProductType                = "product_type"
	ColDescription                = "description"
	ColTargetQuantity             = "target_quantity"
	ColBudget                     = "budget"
	ColReferenceImages            = "reference_images"
	ColPhotographyUnlocked        = "photography_unlocked"
	ColMarketingUnlocked          = "marketing_unlocked"
	ColPrototypeStatus            = "prototype_status"
	ColTrackingNumber             = "tracking_number"
	ColEstimatedDelivery          = "estimated_delivery"
	ColAdminNotes                 = "admin_notes"
	ColSampleRevisionCount        = "sample_revision_count"
	ColCustomerFeedback           = "customer_feedback"
	ColFeedbackImages             = "feedback_images"
	ColSampleApproved             = "sample_approved"
	ColSampleApprovedAt           = "sample_approved_at"
	ColSelectedManufacturer       = "selected_manufacturer"
	ColSelectedPhotographyPackage = "selected_photography_package"
	ColSelectedMarketingPackage   = "selected_marketing_package"
	ColStarterFee                 = "starter_fee"
	ColQCCost                     = "qc_cost"
	ColFreightCost                = "freight_cost"
)

// Payment triples are stored as <key>_paid, <key>_paid_at and <key>_reference.
const (
	paidSuffix      = "_paid"
	paidAtSuffix    = "_paid_at"
	referenceSuffix = "_reference"
)

// Patch is a partial update of a ProjectRecord: only the columns that were
// set are written. Setting the same column twice keeps the last value.
type Patch struct {
	columns       []string
	values        map[string]any
	expectVersion *int64
}

func NewPatch() *Patch {
	return &Patch{values: make(map[string]any)}
}

func (p *Patch) set(col string, v any) *Patch {
	if _, ok := p.values[col]; !ok {
		p.columns = append(p.columns, col)
	}
	p.values[col] = v
	return p
}

// Columns returns the touched columns in the order they were first set.
func (p *Patch) Columns() []string {
	out := make([]string, len(p.columns))
	copy(out, p.columns)
	return out
}

func (p *Patch) Value(col string) (any, bool) {
	v, ok := p.values[col]
	return v, ok
}

func (p *Patch) Has(col string) bool {
	_, ok := p.values[col]
	return ok
}

func (p *Patch) Len() int { return len(p.columns) }

func (p *Patch) Empty() bool { return len(p.columns) == 0 }

// ExpectVersion makes the store reject the patch when the stored version differs.
func (p *Patch) ExpectVersion(v int64) *Patch {
	p.expectVersion = &v
	return p
}

func (p *Patch) ExpectedVersion() (int64, bool) {
	if p.expectVersion == nil {
		return 0, false
	}
	return *p.expectVersion, true
}

// Merge copies every column of other into p.
func (p *Patch) Merge(other *Patch) *Patch {
	if other == nil {
		return p
	}
	for _, col := range other.columns {
		p.set(col, other.values[col])
	}
	return p
}

func (p *Patch) SetName(name string) *Patch { return p.set(ColName, name) }

func (p *Patch) SetStatus(s ProjectStatus) *Patch { return p.set(ColStatus, s) }

func (p *Patch) SetBrief(b Brief) *Patch {
	refs := b.ReferenceImages
	if refs == nil {
		refs = []string{}
	}
	p.set(ColProductType, b.ProductType)
	p.set(ColDescription, b.Description)
	p.set(ColTargetQuantity, b.TargetQuantity)
	p.set(ColBudget, b.Budget)
	return p.set(ColReferenceImages, refs)
}

func (p *Patch) SetPhotographyUnlocked(v bool) *Patch { return p.set(ColPhotographyUnlocked, v) }

func (p *Patch) SetMarketingUnlocked(v bool) *Patch { return p.set(ColMarketingUnlocked, v) }

func (p *Patch) SetPrototypeStatus(s PrototypeStatus) *Patch { return p.set(ColPrototypeStatus, s) }

func (p *Patch) SetTrackingNumber(v *string) *Patch { return p.set(ColTrackingNumber, v) }

func (p *Patch) SetEstimatedDelivery(v *string) *Patch { return p.set(ColEstimatedDelivery, v) }

func (p *Patch) SetAdminNotes(v *string) *Patch { return p.set(ColAdminNotes, v) }

func (p *Patch) SetSampleRevisionCount(n int) *Patch { return p.set(ColSampleRevisionCount, n) }

// SetFeedback writes the feedback text and its images together. A nil text
// clears both.
func (p *Patch) SetFeedback(text *string, images []string) *Patch {
	if text == nil || images == nil {
		images = []string{}
	}
	p.set(ColCustomerFeedback, text)
	return p.set(ColFeedbackImages, images)
}

func (p *Patch) SetSampleApproved(at time.Time) *Patch {
	p.set(ColSampleApproved, true)
	return p.set(ColSampleApprovedAt, &at)
}

func (p *Patch) SetManufacturer(m *ManufacturerSnapshot) *Patch {
	return p.set(ColSelectedManufacturer, m)
}

func (p *Patch) SetPhotographyPackage(pkg *PackageSnapshot) *Patch {
	return p.set(ColSelectedPhotographyPackage, pkg)
}

func (p *Patch) SetMarketingPackage(pkg *PackageSnapshot) *Patch {
	return p.set(ColSelectedMarketingPackage, pkg)
}

func (p *Patch) SetPayment(t PaymentType, f PaymentFlag) *Patch {
	key := t.FlagKey()
	p.set(key+paidSuffix, f.Paid)
	p.set(key+paidAtSuffix, f.PaidAt)
	return p.set(key+referenceSuffix, f.Reference)
}

func (p *Patch) SetStarterFee(v float64) *Patch { return p.set(ColStarterFee, v) }

func (p *Patch) SetQCCost(v float64) *Patch { return p.set(ColQCCost, v) }

func (p *Patch) SetFreightCost(v float64) *Patch { return p.set(ColFreightCost, v) }

// Apply writes the patch onto r in place.
func (p *Patch) Apply(r *ProjectRecord) {
	for _, col := range p.columns {
		v := p.values[col]
		switch col {
		case ColName:
			r.Name = v.(string)
		case ColStatus:
			r.Status = v.(ProjectStatus)
		case ColProductType:
			r.Brief.ProductType = v.(string)
		case ColDescription:
			r.Brief.Description = v.(string)
		case ColTargetQuantity:
			r.Brief.TargetQuantity = v.(int)
		case ColBudget:
			r.Brief.Budget = v.(float64)
		case ColReferenceImages:
			r.Brief.ReferenceImages = cloneStrings(v.([]string))
		case ColPhotographyUnlocked:
			r.PhotographyUnlocked = v.(bool)
		case ColMarketingUnlocked:
			r.MarketingUnlocked = v.(bool)
		case ColPrototypeStatus:
			r.PrototypeStatus = v.(PrototypeStatus)
		case ColTrackingNumber:
			r.TrackingNumber = cloneString(v.(*string))
		case ColEstimatedDelivery:
			r.EstimatedDelivery = cloneString(v.(*string))
		case ColAdminNotes:
			r.AdminNotes = cloneString(v.(*string))
		case ColSampleRevisionCount:
			r.SampleRevisionCount = v.(int)
		case ColCustomerFeedback:
			r.CustomerFeedback = cloneString(v.(*string))
		case ColFeedbackImages:
			r.FeedbackImages = cloneStrings(v.([]string))
		case ColSampleApproved:
			r.SampleApproved = v.(bool)
		case ColSampleApprovedAt:
			r.SampleApprovedAt = v.(*time.Time)
		case ColSelectedManufacturer:
			r.SelectedManufacturer = v.(*ManufacturerSnapshot)
		case ColSelectedPhotographyPackage:
			r.SelectedPhotographyPackage = v.(*PackageSnapshot)
		case ColSelectedMarketingPackage:
			r.SelectedMarketingPackage = v.(*PackageSnapshot)
		case ColStarterFee:
			r.StarterFee = v.(float64)
		case ColQCCost:
			r.QCCost = v.(float64)
		case ColFreightCost:
			r.FreightCost = v.(float64)
		default:
			applyPaymentColumn(r, col, v)
		}
	}
}

func applyPaymentColumn(r *ProjectRecord, col string, v any) {
	switch {
	case strings.HasSuffix(col, paidAtSuffix):
		if f := r.Payments.flagPtr(strings.TrimSuffix(col, paidAtSuffix)); f != nil {
			f.PaidAt = v.(*time.Time)
		}
	case strings.HasSuffix(col, referenceSuffix):
		if f := r.Payments.flagPtr(strings.TrimSuffix(col, referenceSuffix)); f != nil {
			f.Reference = cloneString(v.(*string))
		}
	case strings.HasSuffix(col, paidSuffix):
		if f := r.Payments.flagPtr(strings.TrimSuffix(col, paidSuffix)); f != nil {
			f.Paid = v.(bool)
		}
	}
}

// PaymentColumns returns the three stored column names for a flag key.
func PaymentColumns(key string) (paid, paidAt, reference string) {
	return key + paidSuffix, key + paidAtSuffix, key + referenceSuffix
}

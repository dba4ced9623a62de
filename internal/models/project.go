package models

import (
	"time"

	"github.com/google/uuid"
)

type ProjectStatus string

const (
	StatusDraft       ProjectStatus = "draft"
	StatusDetails     ProjectStatus = "details"
	StatusPrototyping ProjectStatus = "prototyping"
	StatusSourcing    ProjectStatus = "sourcing"
	StatusPayment     ProjectStatus = "payment"
	StatusProduction  ProjectStatus = "production"
	StatusShipping    ProjectStatus = "shipping"
	StatusCompleted   ProjectStatus = "completed"
)

// ProjectStatuses lists every primary status in lifecycle order.
var ProjectStatuses = []ProjectStatus{
	StatusDraft,
	StatusDetails,
	StatusPrototyping,
	StatusSourcing,
	StatusPayment,
	StatusProduction,
	StatusShipping,
	StatusCompleted,
}

func (s ProjectStatus) Valid() bool {
	for _, v := range ProjectStatuses {
		if v == s {
			return true
		}
	}
	return false
}

type PrototypeStatus string

const (
	PrototypeProducing PrototypeStatus = "producing"
	PrototypeShipping  PrototypeStatus = "shipping"
	PrototypeDelivered PrototypeStatus = "delivered"
	PrototypeFeedback  PrototypeStatus = "feedback"
)

var PrototypeStatuses = []PrototypeStatus{
	PrototypeProducing,
	PrototypeShipping,
	PrototypeDelivered,
	PrototypeFeedback,
}

func (s PrototypeStatus) Valid() bool {
	for _, v := range PrototypeStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// PaymentFlag is one independently tracked payment. Paid never goes back to false.
type PaymentFlag struct {
	Paid      bool       `json:"paid"`
	PaidAt    *time.Time `json:"paid_at,omitempty"`
	Reference *string    `json:"reference,omitempty"`
}

type Payments struct {
	Deposit     PaymentFlag `json:"deposit"`
	Remaining   PaymentFlag `json:"remaining"`
	Freight     PaymentFlag `json:"freight"`
	Photography PaymentFlag `json:"photography"`
	Marketing   PaymentFlag `json:"marketing"`
	Sample      PaymentFlag `json:"sample"`
}

// ManufacturerSnapshot is a copy of a catalog quote taken when the customer
// picks it. Later catalog edits do not touch it.
type ManufacturerSnapshot struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Price            float64   `json:"price"`
	MinOrderQuantity int       `json:"minOrderQuantity"`
	LeadTime         string    `json:"leadTime"`
	Advantages       []string  `json:"advantages"`
	Disadvantages    []string  `json:"disadvantages"`
	SelectedAt       time.Time `json:"selectedAt"`
}

// PackageSnapshot is the photography/marketing counterpart of ManufacturerSnapshot.
type PackageSnapshot struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Price        float64   `json:"price"`
	Description  string    `json:"description,omitempty"`
	Deliverables []string  `json:"deliverables,omitempty"`
	SelectedAt   time.Time `json:"selectedAt"`
}

type Brief struct {
	ProductType     string   `json:"product_type"`
	Description     string   `json:"description"`
	TargetQuantity  int      `json:"target_quantity"`
	Budget          float64  `json:"budget"`
	ReferenceImages []string `json:"reference_images"`
}

const (
	DefaultStarterFee  = 399.0
	DefaultQCCost      = 0.0
	DefaultFreightCost = 500.0
)

type ProjectRecord struct {
	ID     uuid.UUID     `json:"id"`
	UserID uuid.UUID     `json:"user_id"`
	Name   string        `json:"name"`
	Status ProjectStatus `json:"status"`
	Brief  Brief         `json:"brief"`

	PhotographyUnlocked bool `json:"photography_unlocked"`
	MarketingUnlocked   bool `json:"marketing_unlocked"`

	PrototypeStatus     PrototypeStatus `json:"prototype_status"`
	TrackingNumber      *string         `json:"tracking_number,omitempty"`
	EstimatedDelivery   *string         `json:"estimated_delivery,omitempty"`
	AdminNotes          *string         `json:"admin_notes,omitempty"`
	SampleRevisionCount int             `json:"sample_revision_count"`
	CustomerFeedback    *string         `json:"customer_feedback,omitempty"`
	FeedbackImages      []string        `json:"feedback_images"`
	SampleApproved      bool            `json:"sample_approved"`
	SampleApprovedAt    *time.Time      `json:"sample_approved_at,omitempty"`

	SelectedManufacturer       *ManufacturerSnapshot `json:"selected_manufacturer,omitempty"`
	SelectedPhotographyPackage *PackageSnapshot      `json:"selected_photography_package,omitempty"`
	SelectedMarketingPackage   *PackageSnapshot      `json:"selected_marketing_package,omitempty"`

	Payments    Payments `json:"payments"`
	StarterFee  float64  `json:"starter_fee"`
	QCCost      float64  `json:"qc_cost"`
	FreightCost float64  `json:"freight_cost"`

	Version   int64      `json:"version"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// NewProjectRecord returns a draft owned by userID with default pricing.
func NewProjectRecord(userID uuid.UUID, name string) ProjectRecord {
	now := time.Now().UTC()
	return ProjectRecord{
		ID:              uuid.New(),
		UserID:          userID,
		Name:            name,
		Status:          StatusDraft,
		PrototypeStatus: PrototypeProducing,
		FeedbackImages:  []string{},
		StarterFee:      DefaultStarterFee,
		QCCost:          DefaultQCCost,
		FreightCost:     DefaultFreightCost,
		Version:         1,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// Clone returns a deep copy: no slice, snapshot or pointer field is shared.
func (r ProjectRecord) Clone() ProjectRecord {
	out := r
	out.Brief.ReferenceImages = cloneStrings(r.Brief.ReferenceImages)
	out.FeedbackImages = cloneStrings(r.FeedbackImages)
	out.TrackingNumber = cloneString(r.TrackingNumber)
	out.EstimatedDelivery = cloneString(r.EstimatedDelivery)
	out.AdminNotes = cloneString(r.AdminNotes)
	out.CustomerFeedback = cloneString(r.CustomerFeedback)
	out.SampleApprovedAt = cloneTime(r.SampleApprovedAt)
	out.DeletedAt = cloneTime(r.DeletedAt)
	for _, f := range []*PaymentFlag{
		&out.Payments.Deposit, &out.Payments.Remaining, &out.Payments.Freight,
		&out.Payments.Photography, &out.Payments.Marketing, &out.Payments.Sample,
	} {
		f.PaidAt = cloneTime(f.PaidAt)
		f.Reference = cloneString(f.Reference)
	}
	if r.SelectedManufacturer != nil {
		m := *r.SelectedManufacturer
		m.Advantages = cloneStrings(m.Advantages)
		m.Disadvantages = cloneStrings(m.Disadvantages)
		out.SelectedManufacturer = &m
	}
	out.SelectedPhotographyPackage = clonePackage(r.SelectedPhotographyPackage)
	out.SelectedMarketingPackage = clonePackage(r.SelectedMarketingPackage)
	return out
}

func clonePackage(p *PackageSnapshot) *PackageSnapshot {
	if p == nil {
		return nil
	}
	c := *p
	c.Deliverables = cloneStrings(p.Deliverables)
	return &c
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

package models

type CreateProjectRequest struct {
	Name string `json:"name" binding:"required" example:"Ceramic mug"`
}

type TransitionRequest struct {
	Status ProjectStatus `json:"status" binding:"required" example:"production"`
}

type BriefRequest struct {
	ProductType     string   `json:"product_type" binding:"required" example:"mug"`
	Description     string   `json:"description" binding:"required"`
	TargetQuantity  int      `json:"target_quantity" example:"500"`
	Budget          float64  `json:"budget" example:"4000"`
	ReferenceImages []string `json:"reference_images,omitempty"`
}

func (r BriefRequest) Brief() Brief {
	return Brief{
		ProductType:     r.ProductType,
		Description:     r.Description,
		TargetQuantity:  r.TargetQuantity,
		Budget:          r.Budget,
		ReferenceImages: r.ReferenceImages,
	}
}

type SelectManufacturerRequest struct {
	ManufacturerID string `json:"manufacturer_id" binding:"required"`
}

type SelectPackageRequest struct {
	PackageID string `json:"package_id" binding:"required"`
}

// PrototypeUpdateRequest is the admin edit of the sample. Omitted optional
// fields clear the stored value, except tracking_number which is kept.
type PrototypeUpdateRequest struct {
	Status            PrototypeStatus `json:"status" binding:"required" example:"shipping"`
	TrackingNumber    *string         `json:"tracking_number,omitempty" example:"1Z999"`
	EstimatedDelivery *string         `json:"estimated_delivery,omitempty" example:"2025-03-01"`
	AdminNotes        *string         `json:"admin_notes,omitempty"`
}

// FeedbackRequest is the JSON form of feedback; multipart uploads use the
// "feedback" field and "images" files instead.
type FeedbackRequest struct {
	Feedback  string   `json:"feedback" binding:"required"`
	ImageURLs []string `json:"image_urls,omitempty"`
}

type NewSampleRequest struct {
	Reason string `json:"reason,omitempty" example:"wrong color"`
}

type RecordPaymentRequest struct {
	Reference string `json:"reference" binding:"required" example:"pi_3Nabc"`
}

type PricingRequest struct {
	StarterFee  *float64 `json:"starter_fee,omitempty"`
	QCCost      *float64 `json:"qc_cost,omitempty"`
	FreightCost *float64 `json:"freight_cost,omitempty"`
}

type UnlocksRequest struct {
	Photography *bool `json:"photography_unlocked,omitempty"`
	Marketing   *bool `json:"marketing_unlocked,omitempty"`
}

// PaymentWebhookRequest is the gateway's confirmation of a charge.
type PaymentWebhookRequest struct {
	Event       string      `json:"event" example:"payment.succeeded"`
	ProjectID   string      `json:"project_id"`
	PaymentType PaymentType `json:"payment_type"`
	Reference   string      `json:"reference"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

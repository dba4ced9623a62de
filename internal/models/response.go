package models

import "time"

type ProjectSummary struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Status       ProjectStatus `json:"status"`
	Progress     int           `json:"progress"`
	CustomerStep int           `json:"customer_step"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

type ProjectListResponse struct {
	Projects []ProjectSummary `json:"projects"`
}

type StatusResponse struct {
	ProjectID       string          `json:"project_id"`
	Status          ProjectStatus   `json:"status"`
	Progress        int             `json:"progress"`
	CustomerStep    int             `json:"customer_step"`
	PrototypeStatus PrototypeStatus `json:"prototype_status"`
	Modules         map[string]bool `json:"modules"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

type PaymentSummaryResponse struct {
	ProjectID      string   `json:"project_id"`
	Total          float64  `json:"total"`
	Deposit        float64  `json:"deposit"`
	Remaining      float64  `json:"remaining"`
	TotalCents     int64    `json:"total_cents"`
	DepositCents   int64    `json:"deposit_cents"`
	RemainingCents int64    `json:"remaining_cents"`
	Freight        float64  `json:"freight"`
	StarterFee     float64  `json:"starter_fee"`
	QCCost         float64  `json:"qc_cost"`
	Photography    float64  `json:"photography"`
	Marketing      float64  `json:"marketing"`
	Payments       Payments `json:"payments"`
}

type ManufacturerListResponse struct {
	Manufacturers []ManufacturerSnapshot `json:"manufacturers"`
}

type PackageListResponse struct {
	Packages []PackageSnapshot `json:"packages"`
}

type DeleteResponse struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}

type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database,omitempty"`
	Redis    string `json:"redis,omitempty"`
}

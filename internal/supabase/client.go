package supabase

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/supabase-community/postgrest-go"
	"github.com/supabase-community/supabase-go"
	"product-studio-backend/internal/config"
	"product-studio-backend/internal/models"
	"product-studio-backend/internal/workflow"
)

var _ workflow.Catalog = (*CatalogClient)(nil)

// CatalogClient reads manufacturer quotes and service packages over PostgREST.
type CatalogClient struct {
	Supabase *supabase.Client
}

func NewClient(cfg *config.Config) (*CatalogClient, error) {
	client, err := supabase.NewClient(cfg.SupabaseURL, cfg.SupabasePublishableKey, nil)
	if err != nil {
		return nil, err
	}

	return &CatalogClient{Supabase: client}, nil
}

type manufacturerRow struct {
	ID               string   `json:"id"`
	ProjectID        string   `json:"project_id"`
	Name             string   `json:"name"`
	Price            float64  `json:"price"`
	MinOrderQuantity int      `json:"min_order_quantity"`
	LeadTime         string   `json:"lead_time"`
	Advantages       []string `json:"advantages"`
	Disadvantages    []string `json:"disadvantages"`
}

func (r manufacturerRow) snapshot() models.ManufacturerSnapshot {
	return models.ManufacturerSnapshot{
		ID:               r.ID,
		Name:             r.Name,
		Price:            r.Price,
		MinOrderQuantity: r.MinOrderQuantity,
		LeadTime:         r.LeadTime,
		Advantages:       nonNil(r.Advantages),
		Disadvantages:    nonNil(r.Disadvantages),
	}
}

type packageRow struct {
	ID           string   `json:"id"`
	Module       string   `json:"module"`
	Name         string   `json:"name"`
	Price        float64  `json:"price"`
	Description  string   `json:"description"`
	Deliverables []string `json:"deliverables"`
}

func (r packageRow) snapshot() models.PackageSnapshot {
	return models.PackageSnapshot{
		ID:           r.ID,
		Name:         r.Name,
		Price:        r.Price,
		Description:  r.Description,
		Deliverables: nonNil(r.Deliverables),
	}
}

// ListManufacturers returns the quotes gathered for a project, cheapest first.
func (c *CatalogClient) ListManufacturers(ctx context.Context, projectID uuid.UUID) ([]models.ManufacturerSnapshot, error) {
	var rows []manufacturerRow
	_, err := c.Supabase.From("manufacturer_quotes").
		Select("*", "", false).
		Eq("project_id", projectID.String()).
		Order("price", &postgrest.OrderOpts{Ascending: true}).
		ExecuteTo(&rows)
	if err != nil {
		return nil, fmt.Errorf("failed to list manufacturer quotes: %w", err)
	}
	out := make([]models.ManufacturerSnapshot, len(rows))
	for i, r := range rows {
		out[i] = r.snapshot()
	}
	return out, nil
}

func (c *CatalogClient) Manufacturer(ctx context.Context, projectID uuid.UUID, manufacturerID string) (*models.ManufacturerSnapshot, error) {
	var rows []manufacturerRow
	_, err := c.Supabase.From("manufacturer_quotes").
		Select("*", "", false).
		Eq("id", manufacturerID).
		Eq("project_id", projectID.String()).
		ExecuteTo(&rows)
	if err != nil {
		return nil, fmt.Errorf("failed to get manufacturer quote: %w", err)
	}
	if len(rows) == 0 {
		return nil, workflow.NotFoundf("manufacturer %s not found for project %s", manufacturerID, projectID)
	}
	snap := rows[0].snapshot()
	return &snap, nil
}

// ListPackages returns the active packages of one module in display order.
func (c *CatalogClient) ListPackages(ctx context.Context, module workflow.Module) ([]models.PackageSnapshot, error) {
	var rows []packageRow
	_, err := c.Supabase.From("service_packages").
		Select("*", "", false).
		Eq("module", string(module)).
		Eq("active", "true").
		Order("sort_order", &postgrest.OrderOpts{Ascending: true}).
		ExecuteTo(&rows)
	if err != nil {
		return nil, fmt.Errorf("failed to list packages: %w", err)
	}
	out := make([]models.PackageSnapshot, len(rows))
	for i, r := range rows {
		out[i] = r.snapshot()
	}
	return out, nil
}

func (c *CatalogClient) Package(ctx context.Context, module workflow.Module, packageID string) (*models.PackageSnapshot, error) {
	var rows []packageRow
	_, err := c.Supabase.From("service_packages").
		Select("*", "", false).
		Eq("id", packageID).
		Eq("module", string(module)).
		ExecuteTo(&rows)
	if err != nil {
		return nil, fmt.Errorf("failed to get package: %w", err)
	}
	if len(rows) == 0 {
		return nil, workflow.NotFoundf("%s package %s not found", module, packageID)
	}
	snap := rows[0].snapshot()
	return &snap, nil
}

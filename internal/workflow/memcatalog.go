package workflow

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"product-studio-backend/internal/models"
)

var _ Catalog = (*MemoryCatalog)(nil)

// MemoryCatalog is an in-process Catalog for tests and local runs.
type MemoryCatalog struct {
	mu            sync.RWMutex
	manufacturers map[uuid.UUID][]models.ManufacturerSnapshot
	packages      map[Module][]models.PackageSnapshot
}

func NewMemoryCatalog() *MemoryCatalog {
	return &MemoryCatalog{
		manufacturers: make(map[uuid.UUID][]models.ManufacturerSnapshot),
		packages:      make(map[Module][]models.PackageSnapshot),
	}
}

func (c *MemoryCatalog) AddManufacturer(projectID uuid.UUID, m models.ManufacturerSnapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.manufacturers[projectID] = append(c.manufacturers[projectID], m)
}

func (c *MemoryCatalog) AddPackage(module Module, p models.PackageSnapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.packages[module] = append(c.packages[module], p)
}

// ListManufacturers returns a project's quotes, cheapest first.
func (c *MemoryCatalog) ListManufacturers(ctx context.Context, projectID uuid.UUID) ([]models.ManufacturerSnapshot, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := append([]models.ManufacturerSnapshot(nil), c.manufacturers[projectID]...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Price < out[j].Price })
	return out, nil
}

func (c *MemoryCatalog) Manufacturer(ctx context.Context, projectID uuid.UUID, manufacturerID string) (*models.ManufacturerSnapshot, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, m := range c.manufacturers[projectID] {
		if m.ID == manufacturerID {
			out := m
			out.Advantages = append([]string(nil), m.Advantages...)
			out.Disadvantages = append([]string(nil), m.Disadvantages...)
			return &out, nil
		}
	}
	return nil, NotFoundf("manufacturer %s not found for project %s", manufacturerID, projectID)
}

func (c *MemoryCatalog) ListPackages(ctx context.Context, module Module) ([]models.PackageSnapshot, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]models.PackageSnapshot(nil), c.packages[module]...), nil
}

func (c *MemoryCatalog) Package(ctx context.Context, module Module, packageID string) (*models.PackageSnapshot, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, p := range c.packages[module] {
		if p.ID == packageID {
			out := p
			out.Deliverables = append([]string(nil), p.Deliverables...)
			return &out, nil
		}
	}
	return nil, NotFoundf("%s package %s not found", module, packageID)
}

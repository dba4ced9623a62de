package workflow

import (
	"context"

	"github.com/google/uuid"
	"product-studio-backend/internal/models"
)

// ProjectStore is the remote record store. Every write is a partial patch.
type ProjectStore interface {
	Get(ctx context.Context, id uuid.UUID) (*models.ProjectRecord, error)
	Patch(ctx context.Context, id uuid.UUID, patch *models.Patch) (*models.ProjectRecord, error)
}

// PaymentGateway charges money and hands back a reference to persist.
type PaymentGateway interface {
	Charge(ctx context.Context, amountCents int64, description, idempotencyKey string) (string, error)
}

// BlobStore keeps feedback images and returns their public URL.
type BlobStore interface {
	Put(ctx context.Context, projectID uuid.UUID, filename, contentType string, data []byte) (string, error)
}

// Catalog serves the offers a customer picks from. Returned values are fresh
// copies the engine snapshots into the record.
type Catalog interface {
	Manufacturer(ctx context.Context, projectID uuid.UUID, manufacturerID string) (*models.ManufacturerSnapshot, error)
	Package(ctx context.Context, module Module, packageID string) (*models.PackageSnapshot, error)
}

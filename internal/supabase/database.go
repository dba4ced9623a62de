package supabase

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"product-studio-backend/internal/models"
	"product-studio-backend/internal/workflow"
)

var _ workflow.ProjectStore = (*DatabaseClient)(nil)

// paymentKeys is the column order of the stored payment triples.
var paymentKeys = []string{"deposit", "remaining", "freight", "photography", "marketing", "sample"}

// ProjectColumns is the column list every projects query returns, in scan order.
var ProjectColumns = func() []string {
	cols := []string{
		"id", "user_id", models.ColName, models.ColStatus,
		models.ColProductType, models.ColDescription, models.ColTargetQuantity, models.ColBudget, models.ColReferenceImages,
		models.ColPhotographyUnlocked, models.ColMarketingUnlocked,
		models.ColPrototypeStatus, models.ColTrackingNumber, models.ColEstimatedDelivery, models.ColAdminNotes,
		models.ColSampleRevisionCount, models.ColCustomerFeedback, models.ColFeedbackImages,
		models.ColSampleApproved, models.ColSampleApprovedAt,
		models.ColSelectedManufacturer, models.ColSelectedPhotographyPackage, models.ColSelectedMarketingPackage,
	}
	for _, key := range paymentKeys {
		paid, paidAt, ref := models.PaymentColumns(key)
		cols = append(cols, paid, paidAt, ref)
	}
	return append(cols,
		models.ColStarterFee, models.ColQCCost, models.ColFreightCost,
		"version", "created_at", "updated_at", "deleted_at",
	)
}()

var selectColumns = strings.Join(ProjectColumns, ", ")

// patchable is every column a Patch may write; anything else is rejected
// before it reaches SQL.
var patchable = func() map[string]bool {
	m := make(map[string]bool, len(ProjectColumns))
	for _, c := range ProjectColumns {
		switch c {
		case "id", "user_id", "version", "created_at", "updated_at", "deleted_at":
			continue
		}
		m[c] = true
	}
	return m
}()

// DatabaseClient is the Postgres-backed ProjectStore.
type DatabaseClient struct {
	db *sql.DB
}

func NewDatabaseClient(connectionString string) (*DatabaseClient, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DatabaseClient{db: db}, nil
}

// NewDatabaseClientFromDB wraps an already opened handle.
func NewDatabaseClientFromDB(db *sql.DB) *DatabaseClient {
	return &DatabaseClient{db: db}
}

func (d *DatabaseClient) Create(ctx context.Context, userID uuid.UUID, name string) (*models.ProjectRecord, error) {
	rec := models.NewProjectRecord(userID, name)
	row := d.db.QueryRowContext(ctx, `
		INSERT INTO projects (id, user_id, name, status, prototype_status, starter_fee, qc_cost, freight_cost)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+selectColumns,
		rec.ID, rec.UserID, rec.Name, string(rec.Status), string(rec.PrototypeStatus),
		rec.StarterFee, rec.QCCost, rec.FreightCost,
	)
	out, err := scanProject(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}
	return out, nil
}

func (d *DatabaseClient) Get(ctx context.Context, id uuid.UUID) (*models.ProjectRecord, error) {
	row := d.db.QueryRowContext(ctx, `
		SELECT `+selectColumns+`
		FROM projects
		WHERE id = $1 AND deleted_at IS NULL
	`, id)
	rec, err := scanProject(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, workflow.NotFoundf("project %s not found", id)
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return rec, nil
}

// Patch writes only the patch's columns in a single UPDATE and bumps version.
func (d *DatabaseClient) Patch(ctx context.Context, id uuid.UUID, patch *models.Patch) (*models.ProjectRecord, error) {
	if patch == nil || patch.Empty() {
		return d.Get(ctx, id)
	}

	cols := patch.Columns()
	sets := make([]string, 0, len(cols)+2)
	args := make([]any, 0, len(cols)+2)
	for _, col := range cols {
		if !patchable[col] {
			return nil, fmt.Errorf("column %q cannot be patched", col)
		}
		v, _ := patch.Value(col)
		enc, err := encodeValue(v)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s: %w", col, err)
		}
		args = append(args, enc)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	sets = append(sets, "version = version + 1", "updated_at = now()")

	args = append(args, id)
	where := fmt.Sprintf("id = $%d AND deleted_at IS NULL", len(args))
	expected, checkVersion := patch.ExpectedVersion()
	if checkVersion {
		args = append(args, expected)
		where += fmt.Sprintf(" AND version = $%d", len(args))
	}

	query := "UPDATE projects SET " + strings.Join(sets, ", ") + " WHERE " + where + " RETURNING " + selectColumns
	rec, err := scanProject(d.db.QueryRowContext(ctx, query, args...))
	if err == nil {
		return rec, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to patch project: %w", err)
	}
	if !checkVersion {
		return nil, workflow.NotFoundf("project %s not found", id)
	}

	var current int64
	err = d.db.QueryRowContext(ctx, `SELECT version FROM projects WHERE id = $1 AND deleted_at IS NULL`, id).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, workflow.NotFoundf("project %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to check project version: %w", err)
	}
	return nil, workflow.StaleVersionError(id, expected)
}

// List returns live projects, newest first. A nil userID lists everyone's.
func (d *DatabaseClient) List(ctx context.Context, userID *uuid.UUID) ([]models.ProjectRecord, error) {
	query := `SELECT ` + selectColumns + ` FROM projects WHERE deleted_at IS NULL`
	var args []any
	if userID != nil {
		query += ` AND user_id = $1`
		args = append(args, *userID)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	projects := make([]models.ProjectRecord, 0, 16)
	for rows.Next() {
		rec, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, nil
}

// SoftDelete hides a project; rows are kept for retention.
func (d *DatabaseClient) SoftDelete(ctx context.Context, id uuid.UUID) (bool, error) {
	result, err := d.db.ExecContext(ctx, `
		UPDATE projects
		SET deleted_at = now(), updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL
	`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete project: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (d *DatabaseClient) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

func (d *DatabaseClient) Close() error {
	return d.db.Close()
}

func encodeValue(v any) (any, error) {
	switch x := v.(type) {
	case models.ProjectStatus:
		return string(x), nil
	case models.PrototypeStatus:
		return string(x), nil
	case []string:
		return pq.Array(x), nil
	case *string:
		if x == nil {
			return nil, nil
		}
		return *x, nil
	case *time.Time:
		if x == nil {
			return nil, nil
		}
		return *x, nil
	case *models.ManufacturerSnapshot:
		if x == nil {
			return nil, nil
		}
		return json.Marshal(x)
	case *models.PackageSnapshot:
		if x == nil {
			return nil, nil
		}
		return json.Marshal(x)
	}
	return v, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (*models.ProjectRecord, error) {
	var (
		rec                                  models.ProjectRecord
		status, prototypeStatus              string
		tracking, eta, notes, feedback       sql.NullString
		approvedAt, deletedAt                sql.NullTime
		manufacturer, photoPkg, marketingPkg []byte
		refs, images                         []string
		paid                                 = make([]bool, len(paymentKeys))
		paidAt                               = make([]sql.NullTime, len(paymentKeys))
		reference                            = make([]sql.NullString, len(paymentKeys))
	)

	dest := []any{
		&rec.ID, &rec.UserID, &rec.Name, &status,
		&rec.Brief.ProductType, &rec.Brief.Description, &rec.Brief.TargetQuantity, &rec.Brief.Budget, pq.Array(&refs),
		&rec.PhotographyUnlocked, &rec.MarketingUnlocked,
		&prototypeStatus, &tracking, &eta, &notes,
		&rec.SampleRevisionCount, &feedback, pq.Array(&images),
		&rec.SampleApproved, &approvedAt,
		&manufacturer, &photoPkg, &marketingPkg,
	}
	for i := range paymentKeys {
		dest = append(dest, &paid[i], &paidAt[i], &reference[i])
	}
	dest = append(dest,
		&rec.StarterFee, &rec.QCCost, &rec.FreightCost,
		&rec.Version, &rec.CreatedAt, &rec.UpdatedAt, &deletedAt,
	)

	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	rec.Status = models.ProjectStatus(status)
	rec.PrototypeStatus = models.PrototypeStatus(prototypeStatus)
	rec.TrackingNumber = nullString(tracking)
	rec.EstimatedDelivery = nullString(eta)
	rec.AdminNotes = nullString(notes)
	rec.CustomerFeedback = nullString(feedback)
	rec.SampleApprovedAt = nullTime(approvedAt)
	rec.DeletedAt = nullTime(deletedAt)
	rec.Brief.ReferenceImages = nonNil(refs)
	rec.FeedbackImages = nonNil(images)

	if len(manufacturer) > 0 {
		rec.SelectedManufacturer = &models.ManufacturerSnapshot{}
		if err := json.Unmarshal(manufacturer, rec.SelectedManufacturer); err != nil {
			return nil, fmt.Errorf("failed to decode selected_manufacturer: %w", err)
		}
	}
	var err error
	if rec.SelectedPhotographyPackage, err = decodePackage(photoPkg); err != nil {
		return nil, err
	}
	if rec.SelectedMarketingPackage, err = decodePackage(marketingPkg); err != nil {
		return nil, err
	}

	flags := []*models.PaymentFlag{
		&rec.Payments.Deposit, &rec.Payments.Remaining, &rec.Payments.Freight,
		&rec.Payments.Photography, &rec.Payments.Marketing, &rec.Payments.Sample,
	}
	for i, f := range flags {
		f.Paid = paid[i]
		f.PaidAt = nullTime(paidAt[i])
		f.Reference = nullString(reference[i])
	}
	return &rec, nil
}

func decodePackage(raw []byte) (*models.PackageSnapshot, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var pkg models.PackageSnapshot
	if err := json.Unmarshal(raw, &pkg); err != nil {
		return nil, fmt.Errorf("failed to decode package: %w", err)
	}
	return &pkg, nil
}

func nullString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

func nullTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

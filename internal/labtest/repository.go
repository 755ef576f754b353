package labtest

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"labtest-be/internal/logger"

	"go.uber.org/zap"
)

type Repository interface {
	GetByID(ctx context.Context, id string, onlyActive bool) (*Test, error)
	List(ctx context.Context, filter ListFilter) ([]Test, error)
	Update(ctx context.Context, id string, params UpdateParams) (*Test, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const testColumns = `id, name, lab, price, description, status, created_at, updated_at`

func scanTest(row interface{ Scan(...any) error }) (*Test, error) {
	var t Test
	if err := row.Scan(
		&t.ID, &t.Name, &t.Lab, &t.Price, &t.Description, &t.Status, &t.CreatedAt, &t.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &t, nil
}

// GetByID returns nil, nil when the test does not exist.
func (r *repository) GetByID(ctx context.Context, id string, onlyActive bool) (*Test, error) {
	query := `SELECT ` + testColumns + ` FROM lab_tests WHERE id = $1`
	if onlyActive {
		query += ` AND status = 'active'`
	}

	t, err := scanTest(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		logger.FromCtx(ctx).Error("failed to get lab test",
			zap.String("layer", "repository"),
			zap.String("test_id", id),
			zap.Error(err),
		)
		return nil, err
	}
	return t, nil
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]Test, error) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.OnlyActive {
		where = append(where, "status = 'active'")
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		where = append(where, "name ILIKE "+arg("%"+s+"%"))
	}
	if l := strings.TrimSpace(filter.Lab); l != "" {
		where = append(where, "lab = "+arg(l))
	}

	query := `SELECT ` + testColumns + ` FROM lab_tests`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY name ASC"
	if filter.Limit > 0 {
		query += " LIMIT " + arg(filter.Limit) + " OFFSET " + arg(filter.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to list lab tests", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	tests := []Test{}
	for rows.Next() {
		t, err := scanTest(rows)
		if err != nil {
			return nil, err
		}
		tests = append(tests, *t)
	}
	return tests, rows.Err()
}

// Update applies the non-nil fields. Orders keep their own snapshot, so
// a price change here never reaches an existing order.
func (r *repository) Update(ctx context.Context, id string, params UpdateParams) (*Test, error) {
	var (
		sets []string
		args []any
	)
	set := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if params.Name != nil {
		set("name", *params.Name)
	}
	if params.Lab != nil {
		set("lab", *params.Lab)
	}
	if params.Price != nil {
		set("price", *params.Price)
	}
	if params.Description != nil {
		set("description", *params.Description)
	}
	if params.Status != nil {
		set("status", *params.Status)
	}
	if len(sets) == 0 {
		return nil, ErrNoUpdateField
	}

	args = append(args, id)
	query := fmt.Sprintf(
		`UPDATE lab_tests SET %s, updated_at = NOW() WHERE id = $%d RETURNING `+testColumns,
		strings.Join(sets, ", "), len(args),
	)

	t, err := scanTest(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTestNotFound
	}
	if err != nil {
		logger.FromCtx(ctx).Error("failed to update lab test",
			zap.String("layer", "repository"),
			zap.String("test_id", id),
			zap.Error(err),
		)
		return nil, err
	}
	return t, nil
}

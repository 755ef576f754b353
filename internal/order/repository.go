package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"labtest-be/internal/logger"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

type Repository interface {
	// Create inserts the order and its items. An active order already
	// holding the same slot yields ErrSlotConflict.
	Create(ctx context.Context, o *Order) error
	// GetByID returns nil, nil when the order does not exist.
	GetByID(ctx context.Context, id string) (*Order, error)
	// UpdateStatus applies upd only if the stored status equals upd.From,
	// otherwise ErrStaleWrite.
	UpdateStatus(ctx context.Context, upd StatusUpdate) (*Order, error)
	ListByOwner(ctx context.Context, q OwnerQuery) ([]Order, error)
	List(ctx context.Context, f ListFilter) ([]Order, error)
	Count(ctx context.Context, f ListFilter) (int, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func isActiveSlotViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) &&
		string(pqErr.Code) == PgUniqueViolation &&
		pqErr.Constraint == activeSlotIndex
}

func (r *repository) Create(ctx context.Context, o *Order) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "Create"),
		zap.String("order_id", o.ID),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("failed to begin transaction", zap.Error(err))
		return err
	}

	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				log.Error("failed to rollback transaction", zap.Error(rbErr))
			}
		}
	}()

	placeholders := make([]string, len(orderColumnNames))
	for i := range placeholders {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	insertOrder := `INSERT INTO orders (` + orderColumns + `) VALUES (` + strings.Join(placeholders, ", ") + `)`

	if _, err := tx.ExecContext(ctx, insertOrder, orderArgs(o)...); err != nil {
		if isActiveSlotViolation(err) {
			log.Info("slot already committed",
				zap.String("date", o.Appointment.Date),
				zap.String("window", o.Appointment.TimeWindow),
				zap.String("area", o.Appointment.ServiceArea),
			)
			return ErrSlotConflict
		}
		log.Error("failed to insert order", zap.Error(err))
		return fmt.Errorf("insert order: %w", err)
	}

	for i, it := range o.Items {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO order_items (order_id, position, test_id, test_name, lab, price, quantity)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, o.ID, i, it.TestID, it.TestName, it.Lab, it.Price, it.Quantity); err != nil {
			log.Error("failed to insert order item", zap.String("test_id", it.TestID), zap.Error(err))
			return fmt.Errorf("insert order item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		log.Error("failed to commit order transaction", zap.Error(err))
		return err
	}
	committed = true

	log.Info("order created", zap.Int("items", len(o.Items)))
	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Order, error) {
	row, err := scanOrderRow(r.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		logger.FromCtx(ctx).Error("failed to get order",
			zap.String("layer", "repository"),
			zap.String("order_id", id),
			zap.Error(err),
		)
		return nil, err
	}

	o := row.toOrder()
	if err := r.attachItems(ctx, []*Order{&o}); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *repository) UpdateStatus(ctx context.Context, upd StatusUpdate) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "UpdateStatus"),
		zap.String("order_id", upd.ID),
		zap.String("from", string(upd.From)),
		zap.String("to", string(upd.To)),
	)

	var reportURL, reportFile sql.NullString
	if upd.Report != nil {
		reportURL = nullString(upd.Report.URL)
		reportFile = nullString(upd.Report.Filename)
	}

	row, err := scanOrderRow(r.db.QueryRowContext(ctx, `
		UPDATE orders
		SET status = $1,
			technician_notes = $2,
			decided_by = COALESCE($3, decided_by),
			decided_at = COALESCE($4, decided_at),
			report_url = COALESCE($5, report_url),
			report_filename = COALESCE($6, report_filename),
			updated_at = $7
		WHERE id = $8 AND status = $9
		RETURNING `+orderColumns,
		string(upd.To), upd.Notes, nullString(upd.DecidedBy), nullTime(upd.DecidedAt),
		reportURL, reportFile, upd.At, upd.ID, string(upd.From),
	))
	if errors.Is(err, sql.ErrNoRows) {
		log.Info("conditional status update matched no row")
		return nil, ErrStaleWrite
	}
	if err != nil {
		log.Error("failed to update order status", zap.Error(err))
		return nil, fmt.Errorf("update order status: %w", err)
	}

	o := row.toOrder()
	if err := r.attachItems(ctx, []*Order{&o}); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *repository) ListByOwner(ctx context.Context, q OwnerQuery) ([]Order, error) {
	if q.UserID == "" && q.Email == "" {
		return []Order{}, nil
	}

	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE (
			($1 <> '' AND user_id = $1)
			OR ($2 <> '' AND (LOWER(user_email) = LOWER($2) OR LOWER(patient_email) = LOWER($2)))
		)`
	if q.ExcludeSelf {
		query += ` AND relation <> 'self'`
	}
	query += ` ORDER BY created_at DESC`

	return r.queryOrders(ctx, query, q.UserID, q.Email)
}

func buildListWhere(f ListFilter) (string, []any) {
	where := " WHERE 1=1"
	args := []any{}
	argIndex := 1

	if len(f.Statuses) > 0 {
		statuses := make([]string, len(f.Statuses))
		for i, s := range f.Statuses {
			statuses[i] = string(s)
		}
		where += fmt.Sprintf(" AND status = ANY($%d)", argIndex)
		args = append(args, pq.Array(statuses))
		argIndex++
	}

	if f.ExcludeStatus != "" {
		where += fmt.Sprintf(" AND status <> $%d", argIndex)
		args = append(args, string(f.ExcludeStatus))
		argIndex++
	}

	if f.From != nil {
		where += fmt.Sprintf(" AND created_at >= $%d", argIndex)
		args = append(args, *f.From)
		argIndex++
	}

	if f.To != nil {
		where += fmt.Sprintf(" AND created_at <= $%d", argIndex)
		args = append(args, *f.To)
	}

	return where, args
}

func (r *repository) List(ctx context.Context, f ListFilter) ([]Order, error) {
	where, args := buildListWhere(f)
	query := `SELECT ` + orderColumns + ` FROM orders` + where + ` ORDER BY created_at DESC`
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
		args = append(args, f.Limit, f.Offset())
	}
	return r.queryOrders(ctx, query, args...)
}

func (r *repository) Count(ctx context.Context, f ListFilter) (int, error) {
	where, args := buildListWhere(f)

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders`+where, args...).Scan(&total); err != nil {
		logger.FromCtx(ctx).Error("failed to count orders", zap.Error(err))
		return 0, err
	}
	return total, nil
}

func (r *repository) queryOrders(ctx context.Context, query string, args ...any) ([]Order, error) {
	log := logger.FromCtx(ctx).With(zap.String("layer", "repository"))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query orders", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	orders := []Order{}
	for rows.Next() {
		row, err := scanOrderRow(rows)
		if err != nil {
			log.Error("failed to scan order row", zap.Error(err))
			return nil, err
		}
		orders = append(orders, row.toOrder())
	}
	if err := rows.Err(); err != nil {
		log.Error("rows iteration error", zap.Error(err))
		return nil, err
	}

	ptrs := make([]*Order, len(orders))
	for i := range orders {
		ptrs[i] = &orders[i]
	}
	if err := r.attachItems(ctx, ptrs); err != nil {
		return nil, err
	}
	return orders, nil
}

// attachItems loads the item snapshots of all orders in one query.
func (r *repository) attachItems(ctx context.Context, orders []*Order) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]string, len(orders))
	byID := make(map[string]*Order, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
		byID[o.ID] = o
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT order_id, test_id, test_name, lab, price, quantity
		FROM order_items
		WHERE order_id = ANY($1::uuid[])
		ORDER BY order_id, position
	`, pq.Array(ids))
	if err != nil {
		logger.FromCtx(ctx).Error("failed to fetch order items", zap.Error(err))
		return fmt.Errorf("fetch order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			orderID string
			it      Item
		)
		if err := rows.Scan(&orderID, &it.TestID, &it.TestName, &it.Lab, &it.Price, &it.Quantity); err != nil {
			return err
		}
		if o, ok := byID[orderID]; ok {
			o.Items = append(o.Items, it)
		}
	}
	return rows.Err()
}

package slot

import (
	"context"
	"database/sql"
	"fmt"

	"labtest-be/internal/logger"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

// Repository reads slot commitments implied by active orders.
type Repository interface {
	BookedWindows(ctx context.Context, date, serviceArea string) ([]string, error)
	IsCommitted(ctx context.Context, s Slot) (bool, error)
}

type repository struct {
	db     *sql.DB
	active []string
}

// NewRepository builds the Postgres repository. active lists the order
// statuses that hold a slot.
func NewRepository(db *sql.DB, active []string) Repository {
	return &repository{db: db, active: active}
}

func (r *repository) BookedWindows(ctx context.Context, date, serviceArea string) ([]string, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "BookedWindows"),
	)

	rows, err := r.db.QueryContext(ctx, `
		SELECT DISTINCT time_window
		FROM orders
		WHERE appointment_date = $1
		  AND service_area = $2
		  AND status = ANY($3)
		ORDER BY time_window
	`, date, serviceArea, pq.Array(r.active))
	if err != nil {
		log.Error("failed to query booked windows", zap.Error(err))
		return nil, fmt.Errorf("query booked windows: %w", err)
	}
	defer rows.Close()

	var windows []string
	for rows.Next() {
		var w string
		if err := rows.Scan(&w); err != nil {
			return nil, err
		}
		windows = append(windows, w)
	}
	return windows, rows.Err()
}

func (r *repository) IsCommitted(ctx context.Context, s Slot) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM orders
			WHERE appointment_date = $1
			  AND time_window = $2
			  AND service_area = $3
			  AND status = ANY($4)
		)
	`, s.Date, s.TimeWindow, s.ServiceArea, pq.Array(r.active)).Scan(&exists)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to check slot commitment",
			zap.String("layer", "repository"),
			zap.String("date", s.Date),
			zap.String("window", s.TimeWindow),
			zap.Error(err),
		)
		return false, fmt.Errorf("check slot: %w", err)
	}
	return exists, nil
}

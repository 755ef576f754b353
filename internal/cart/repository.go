package cart

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"labtest-be/internal/logger"

	"go.uber.org/zap"
)

type Repository interface {
	// Get returns nil, nil when the user has no cart.
	Get(ctx context.Context, userID string) (*Cart, error)
	// AddItem creates the cart on first use. An existing line gains quantity.
	AddItem(ctx context.Context, userID string, item Item) (*Cart, error)
	UpdateQuantity(ctx context.Context, userID, testID string, quantity int) error
	RemoveItem(ctx context.Context, userID, testID string) error
	// Clear deletes the cart and its items.
	Clear(ctx context.Context, userID string) error
	// Consume subtracts ordered quantities from the cart, drops lines that
	// reach zero and deletes the cart once it has no lines left.
	Consume(ctx context.Context, userID string, items []Item) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Get(ctx context.Context, userID string) (*Cart, error) {
	var c Cart
	err := r.db.QueryRowContext(ctx,
		`SELECT user_id, created_at, updated_at FROM carts WHERE user_id = $1`,
		userID,
	).Scan(&c.UserID, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		logger.FromCtx(ctx).Error("failed to get cart",
			zap.String("layer", "repository"),
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT test_id, name, lab, price, quantity
		FROM cart_items
		WHERE user_id = $1
		ORDER BY added_at ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("query cart items: %w", err)
	}
	defer rows.Close()

	c.Items = []Item{}
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.TestID, &it.Name, &it.Lab, &it.Price, &it.Quantity); err != nil {
			return nil, err
		}
		c.Items = append(c.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *repository) AddItem(ctx context.Context, userID string, item Item) (*Cart, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "AddItem"),
		zap.String("user_id", userID),
		zap.String("test_id", item.TestID),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("failed to begin transaction", zap.Error(err))
		return nil, err
	}

	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				log.Error("failed to rollback transaction", zap.Error(rbErr))
			}
		}
	}()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO carts (user_id) VALUES ($1)
		ON CONFLICT (user_id) DO UPDATE SET updated_at = NOW()
	`, userID); err != nil {
		log.Error("failed to upsert cart", zap.Error(err))
		return nil, err
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO cart_items (user_id, test_id, name, lab, price, quantity)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, test_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity
	`, userID, item.TestID, item.Name, item.Lab, item.Price, item.Quantity); err != nil {
		log.Error("failed to upsert cart item", zap.Error(err))
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		log.Error("failed to commit cart transaction", zap.Error(err))
		return nil, err
	}
	committed = true

	return r.Get(ctx, userID)
}

func (r *repository) UpdateQuantity(ctx context.Context, userID, testID string, quantity int) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE cart_items
		SET quantity = $1
		WHERE user_id = $2 AND test_id = $3
	`, quantity, userID, testID)
	if err != nil {
		return err
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrCartItemNotFound
	}
	return nil
}

func (r *repository) RemoveItem(ctx context.Context, userID, testID string) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM cart_items
		WHERE user_id = $1 AND test_id = $2
	`, userID, testID)
	if err != nil {
		return err
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrCartItemNotFound
	}
	return nil
}

func (r *repository) Clear(ctx context.Context, userID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM carts WHERE user_id = $1`, userID)
	if err != nil {
		return err
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrCartNotFound
	}
	return nil
}

func (r *repository) Consume(ctx context.Context, userID string, items []Item) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "Consume"),
		zap.String("user_id", userID),
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

	for _, it := range items {
		if _, err := tx.ExecContext(ctx, `
			DELETE FROM cart_items
			WHERE user_id = $1 AND test_id = $2 AND quantity <= $3
		`, userID, it.TestID, it.Quantity); err != nil {
			log.Error("failed to drop ordered cart item", zap.String("test_id", it.TestID), zap.Error(err))
			return fmt.Errorf("consume cart item: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `
			UPDATE cart_items
			SET quantity = quantity - $3
			WHERE user_id = $1 AND test_id = $2
		`, userID, it.TestID, it.Quantity); err != nil {
			log.Error("failed to reduce ordered cart item", zap.String("test_id", it.TestID), zap.Error(err))
			return fmt.Errorf("consume cart item: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM carts
		WHERE user_id = $1
		  AND NOT EXISTS (SELECT 1 FROM cart_items WHERE user_id = $1)
	`, userID); err != nil {
		log.Error("failed to delete empty cart", zap.Error(err))
		return fmt.Errorf("delete empty cart: %w", err)
	}

	if err := tx.Commit(); err != nil {
		log.Error("failed to commit cart transaction", zap.Error(err))
		return err
	}
	committed = true
	return nil
}

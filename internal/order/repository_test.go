package order

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"labtest-be/internal/slot"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const repoOrderID = "3f1c2a4e-8a65-4a8f-9f8e-5a1f0d6c2b11"

func orderRows() *sqlmock.Rows {
	return sqlmock.NewRows(orderColumnNames)
}

func addOrderRow(rows *sqlmock.Rows, id string, status Status) *sqlmock.Rows {
	now := time.Date(2025, 1, 5, 9, 0, 0, 0, time.UTC)
	date := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	return rows.AddRow(
		id, "Jane", "jane@example.com", "9999999999", "", int64(34),
		"female", "self", "12 MG Road", "Bengaluru", "KA", "560001", "",
		"user-1", "jane@example.com", date, "08:00-09:00", "560001",
		500, 0, 500, string(status), "COD",
		"Pending", nil, nil, "",
		nil, nil, now, now,
	)
}

func itemRows(orderID string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"order_id", "test_id", "test_name", "lab", "price", "quantity"}).
		AddRow(orderID, "t1", "CBC", "City Lab", 500, 1)
}

func newRepoOrder() *Order {
	age := 34
	now := time.Now()
	return &Order{
		ID:          repoOrderID,
		Patient:     PatientInfo{Name: "Jane", Email: "jane@example.com", Age: &age, Relation: RelationSelf, UserID: "user-1", UserEmail: "jane@example.com"},
		Appointment: slot.Slot{Date: "2025-01-10", TimeWindow: "08:00-09:00", ServiceArea: "560001"},
		Items: []Item{
			{TestID: "t1", TestName: "CBC", Lab: "City Lab", Price: 300, Quantity: 1},
			{TestID: "t2", TestName: "Lipid Profile", Lab: "City Lab", Price: 200, Quantity: 1},
		},
		Pricing:       Pricing{Subtotal: 500, Total: 500},
		Status:        StatusPending,
		PaymentMethod: PaymentCOD,
		PaymentStatus: PaymentPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func TestRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		o := newRepoOrder()

		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO orders").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO order_items").
			WithArgs(repoOrderID, 0, "t1", "CBC", "City Lab", 300, 1).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO order_items").
			WithArgs(repoOrderID, 1, "t2", "Lipid Profile", "City Lab", 200, 1).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, repo.Create(ctx, o))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ActiveSlotTaken", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO orders").
			WillReturnError(&pq.Error{Code: "23505", Constraint: "orders_active_slot_key"})
		mock.ExpectRollback()

		err := repo.Create(ctx, newRepoOrder())
		assert.ErrorIs(t, err, ErrSlotConflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("OtherUniqueViolation", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO orders").
			WillReturnError(&pq.Error{Code: "23505", Constraint: "orders_pkey"})
		mock.ExpectRollback()

		err := repo.Create(ctx, newRepoOrder())
		assert.Error(t, err)
		assert.False(t, errors.Is(err, ErrSlotConflict))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ItemInsertFails", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO orders").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO order_items").WillReturnError(errors.New("db down"))
		mock.ExpectRollback()

		err := repo.Create(ctx, newRepoOrder())
		assert.ErrorContains(t, err, "insert order item")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRepository_GetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	ctx := context.Background()

	t.Run("Found", func(t *testing.T) {
		mock.ExpectQuery(`SELECT .* FROM orders WHERE id = \$1`).
			WithArgs(repoOrderID).
			WillReturnRows(addOrderRow(orderRows(), repoOrderID, StatusPending))
		mock.ExpectQuery("FROM order_items").
			WithArgs(sqlmock.AnyArg()).
			WillReturnRows(itemRows(repoOrderID))

		o, err := repo.GetByID(ctx, repoOrderID)
		require.NoError(t, err)
		require.NotNil(t, o)
		assert.Equal(t, "2025-01-10", o.Appointment.Date)
		assert.Equal(t, StatusPending, o.Status)
		require.NotNil(t, o.Patient.Age)
		assert.Equal(t, 34, *o.Patient.Age)
		assert.Nil(t, o.Report)
		assert.Nil(t, o.DecidedAt)
		require.Len(t, o.Items, 1)
		assert.Equal(t, "CBC", o.Items[0].TestName)
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectQuery(`SELECT .* FROM orders WHERE id = \$1`).
			WithArgs(repoOrderID).
			WillReturnError(sql.ErrNoRows)

		o, err := repo.GetByID(ctx, repoOrderID)
		assert.NoError(t, err)
		assert.Nil(t, o)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_UpdateStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	ctx := context.Background()

	t.Run("Applied", func(t *testing.T) {
		now := time.Now()
		mock.ExpectQuery(`UPDATE orders SET status = \$1`).
			WithArgs("approved", "Order approved by admin", sqlmock.AnyArg(), sqlmock.AnyArg(),
				sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), repoOrderID, "pending").
			WillReturnRows(addOrderRow(orderRows(), repoOrderID, StatusApproved))
		mock.ExpectQuery("FROM order_items").WillReturnRows(itemRows(repoOrderID))

		o, err := repo.UpdateStatus(ctx, StatusUpdate{
			ID: repoOrderID, From: StatusPending, To: StatusApproved,
			Notes: "Order approved by admin", DecidedBy: "admin-1", DecidedAt: &now, At: now,
		})
		require.NoError(t, err)
		assert.Equal(t, StatusApproved, o.Status)
	})

	t.Run("StatusMoved", func(t *testing.T) {
		mock.ExpectQuery(`UPDATE orders SET status = \$1`).WillReturnError(sql.ErrNoRows)

		_, err := repo.UpdateStatus(ctx, StatusUpdate{ID: repoOrderID, From: StatusPending, To: StatusDenied, At: time.Now()})
		assert.ErrorIs(t, err, ErrStaleWrite)
	})

	t.Run("DBError", func(t *testing.T) {
		mock.ExpectQuery(`UPDATE orders SET status = \$1`).WillReturnError(errors.New("db down"))

		_, err := repo.UpdateStatus(ctx, StatusUpdate{ID: repoOrderID, From: StatusPending, To: StatusDenied, At: time.Now()})
		assert.Error(t, err)
		assert.False(t, errors.Is(err, ErrStaleWrite))
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_ListByOwner(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	ctx := context.Background()

	t.Run("ExcludeSelf", func(t *testing.T) {
		mock.ExpectQuery(`FROM orders WHERE .* AND relation <> 'self' ORDER BY created_at DESC`).
			WithArgs("user-1", "jane@example.com").
			WillReturnRows(addOrderRow(orderRows(), repoOrderID, StatusCompleted))
		mock.ExpectQuery("FROM order_items").WillReturnRows(itemRows(repoOrderID))

		orders, err := repo.ListByOwner(ctx, OwnerQuery{UserID: "user-1", Email: "jane@example.com", ExcludeSelf: true})
		require.NoError(t, err)
		require.Len(t, orders, 1)
		assert.Len(t, orders[0].Items, 1)
	})

	t.Run("NoKeys", func(t *testing.T) {
		orders, err := repo.ListByOwner(ctx, OwnerQuery{})
		require.NoError(t, err)
		assert.Empty(t, orders)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_ListAndCount(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	ctx := context.Background()
	f := ListFilter{Statuses: []Status{StatusPending}, Page: 2, Limit: 10}

	mock.ExpectQuery(`FROM orders WHERE 1=1 AND status = ANY\(\$1\) ORDER BY created_at DESC LIMIT \$2 OFFSET \$3`).
		WithArgs(sqlmock.AnyArg(), 10, 10).
		WillReturnRows(orderRows())

	orders, err := repo.List(ctx, f)
	require.NoError(t, err)
	assert.Empty(t, orders)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM orders WHERE 1=1 AND status = ANY\(\$1\)`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(11))

	total, err := repo.Count(ctx, f)
	require.NoError(t, err)
	assert.Equal(t, 11, total)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBuildListWhere(t *testing.T) {
	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	where, args := buildListWhere(ListFilter{ExcludeStatus: StatusPending, From: &from})

	assert.Equal(t, " WHERE 1=1 AND status <> $1 AND created_at >= $2", where)
	assert.Equal(t, []any{"pending", from}, args)
}

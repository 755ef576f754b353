package order

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"labtest-be/internal/auth"
	"labtest-be/internal/blob"
	"labtest-be/internal/cart"
	"labtest-be/internal/metrics"
	"labtest-be/internal/notification"
	"labtest-be/internal/slot"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- Mocks ---

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, o *Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockRepository) GetByID(ctx context.Context, id string) (*Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Order), args.Error(1)
}

func (m *MockRepository) UpdateStatus(ctx context.Context, upd StatusUpdate) (*Order, error) {
	args := m.Called(ctx, upd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Order), args.Error(1)
}

func (m *MockRepository) ListByOwner(ctx context.Context, q OwnerQuery) ([]Order, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Order), args.Error(1)
}

func (m *MockRepository) List(ctx context.Context, f ListFilter) ([]Order, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Order), args.Error(1)
}

func (m *MockRepository) Count(ctx context.Context, f ListFilter) (int, error) {
	args := m.Called(ctx, f)
	return args.Int(0), args.Error(1)
}

type MockLedger struct {
	mock.Mock
}

func (m *MockLedger) Validate(s slot.Slot) error {
	return m.Called(s).Error(0)
}

func (m *MockLedger) IsAvailable(ctx context.Context, s slot.Slot) (bool, error) {
	args := m.Called(ctx, s)
	return args.Bool(0), args.Error(1)
}

type MockCarts struct {
	mock.Mock
}

func (m *MockCarts) GetCart(ctx context.Context, userID string) (*cart.Cart, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cart.Cart), args.Error(1)
}

func (m *MockCarts) ConsumeOrdered(ctx context.Context, userID string, items []cart.Item) error {
	return m.Called(ctx, userID, items).Error(0)
}

type recordingNotifier struct {
	mu   sync.Mutex
	msgs []notification.Message
}

func (n *recordingNotifier) Notify(ctx context.Context, msg notification.Message) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.msgs = append(n.msgs, msg)
}

func (n *recordingNotifier) kinds() []notification.Kind {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]notification.Kind, len(n.msgs))
	for i, m := range n.msgs {
		out[i] = m.Kind
	}
	return out
}

// fakeBlobs is an in-memory blob.Store with switchable failures.
type fakeBlobs struct {
	mu        sync.Mutex
	objects   map[string][]byte
	putErr    error
	missing   bool
	deleteErr error
	deleted   []string
}

func newFakeBlobs() *fakeBlobs {
	return &fakeBlobs{objects: map[string][]byte{}}
}

func (f *fakeBlobs) Put(ctx context.Context, category, name string, body io.Reader, contentType string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	if f.putErr != nil {
		// partial write
		f.objects[name] = data[:len(data)/2]
		return f.putErr
	}
	f.objects[name] = data
	return nil
}

func (f *fakeBlobs) Exists(ctx context.Context, category, name string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.missing {
		return false, nil
	}
	_, ok := f.objects[name]
	return ok, nil
}

func (f *fakeBlobs) Delete(ctx context.Context, category, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, name)
	delete(f.objects, name)
	return nil
}

func (f *fakeBlobs) List(ctx context.Context, category string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []string{}
	for k := range f.objects {
		out = append(out, k)
	}
	return out, nil
}

func (f *fakeBlobs) URL(category, name string) string {
	return "http://localhost:8080/uploads/" + category + "/" + name
}

var _ blob.Store = (*fakeBlobs)(nil)

type fixture struct {
	repo     *MockRepository
	ledger   *MockLedger
	carts    *MockCarts
	blobs    *fakeBlobs
	notifier *recordingNotifier
	stats    *metrics.Workflow
	svc      *service
}

func newFixture() *fixture {
	f := &fixture{
		repo:     new(MockRepository),
		ledger:   new(MockLedger),
		carts:    new(MockCarts),
		blobs:    newFakeBlobs(),
		notifier: &recordingNotifier{},
		stats:    metrics.NewWorkflow(),
	}
	f.svc = NewService(Deps{
		Repo:             f.repo,
		Ledger:           f.ledger,
		Carts:            f.carts,
		Blobs:            f.blobs,
		Notifier:         f.notifier,
		Metrics:          f.stats,
		CollectionCharge: 100,
	}).(*service)
	f.svc.now = func() time.Time { return time.Date(2025, 1, 5, 9, 0, 0, 0, time.UTC) }
	return f
}

var testAppointment = slot.Slot{Date: "2025-01-10", TimeWindow: "08:00-09:00", ServiceArea: "560001"}

func filledCart() *cart.Cart {
	return &cart.Cart{UserID: customer.ID, Items: []cart.Item{
		{TestID: "t1", Name: "CBC", Lab: "City Lab", Price: 300, Quantity: 1},
		{TestID: "t2", Name: "Lipid Profile", Lab: "City Lab", Price: 200, Quantity: 1},
	}}
}

func checkoutInput() CheckoutInput {
	return CheckoutInput{
		Patient:     PatientInfo{Name: " Jane "},
		Appointment: testAppointment,
	}
}

// --- Checkout ---

func TestService_Checkout(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		f := newFixture()
		f.carts.On("GetCart", ctx, customer.ID).Return(filledCart(), nil)
		f.ledger.On("Validate", testAppointment).Return(nil)
		f.ledger.On("IsAvailable", ctx, testAppointment).Return(true, nil)
		f.repo.On("Create", ctx, mock.AnythingOfType("*order.Order")).Return(nil)
		f.carts.On("ConsumeOrdered", ctx, customer.ID, filledCart().Items).Return(nil)

		o, err := f.svc.Checkout(ctx, customer, checkoutInput())
		require.NoError(t, err)

		assert.Equal(t, StatusPending, o.Status)
		assert.Equal(t, 500, o.Pricing.Subtotal)
		assert.Equal(t, 0, o.Pricing.CollectionCharge)
		assert.Equal(t, 500, o.Pricing.Total)
		assert.Equal(t, PaymentCOD, o.PaymentMethod)
		assert.Equal(t, PaymentPending, o.PaymentStatus)
		assert.Equal(t, "Jane", o.Patient.Name)
		assert.Equal(t, RelationSelf, o.Patient.Relation)
		assert.Equal(t, customer.Email, o.Patient.Email)
		assert.Equal(t, customer.ID, o.Patient.UserID)
		require.Len(t, o.Items, 2)
		assert.Equal(t, "Lipid Profile", o.Items[1].TestName)
		assert.Equal(t, []notification.Kind{notification.KindOrderConfirmation}, f.notifier.kinds())
		assert.Equal(t, uint64(1), f.stats.OrdersCreated.Load())
		f.repo.AssertExpectations(t)
		f.carts.AssertExpectations(t)
	})

	t.Run("HomeCollectionAddsCharge", func(t *testing.T) {
		f := newFixture()
		f.carts.On("GetCart", ctx, customer.ID).Return(filledCart(), nil)
		f.ledger.On("Validate", testAppointment).Return(nil)
		f.ledger.On("IsAvailable", ctx, testAppointment).Return(true, nil)
		f.repo.On("Create", ctx, mock.Anything).Return(nil)
		f.carts.On("ConsumeOrdered", ctx, customer.ID, mock.Anything).Return(errors.New("db down"))

		in := checkoutInput()
		in.Patient.Address = "12 MG Road"
		in.PaymentMethod = PaymentOnline

		o, err := f.svc.Checkout(ctx, customer, in)
		require.NoError(t, err)
		assert.Equal(t, 600, o.Pricing.Total)
		assert.Equal(t, PaymentPaid, o.PaymentStatus)
	})

	t.Run("EmptyCart", func(t *testing.T) {
		f := newFixture()
		f.carts.On("GetCart", ctx, customer.ID).Return(&cart.Cart{UserID: customer.ID}, nil)

		_, err := f.svc.Checkout(ctx, customer, checkoutInput())
		assert.ErrorIs(t, err, ErrInvalidInput)
		f.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("MissingPatientName", func(t *testing.T) {
		f := newFixture()
		f.carts.On("GetCart", ctx, customer.ID).Return(filledCart(), nil)

		in := checkoutInput()
		in.Patient.Name = "  "
		_, err := f.svc.Checkout(ctx, customer, in)
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("AgeOutOfRange", func(t *testing.T) {
		f := newFixture()
		f.carts.On("GetCart", ctx, customer.ID).Return(filledCart(), nil)

		age := 151
		in := checkoutInput()
		in.Patient.Age = &age
		_, err := f.svc.Checkout(ctx, customer, in)
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("InvalidSlot", func(t *testing.T) {
		f := newFixture()
		f.carts.On("GetCart", ctx, customer.ID).Return(filledCart(), nil)
		f.ledger.On("Validate", testAppointment).Return(slot.ErrInvalidSlot)

		_, err := f.svc.Checkout(ctx, customer, checkoutInput())
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("UnknownPaymentMethod", func(t *testing.T) {
		f := newFixture()
		f.carts.On("GetCart", ctx, customer.ID).Return(filledCart(), nil)
		f.ledger.On("Validate", testAppointment).Return(nil)

		in := checkoutInput()
		in.PaymentMethod = "Barter"
		_, err := f.svc.Checkout(ctx, customer, in)
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("SlotAlreadyBooked", func(t *testing.T) {
		f := newFixture()
		f.carts.On("GetCart", ctx, customer.ID).Return(filledCart(), nil)
		f.ledger.On("Validate", testAppointment).Return(nil)
		f.ledger.On("IsAvailable", ctx, testAppointment).Return(false, nil)

		_, err := f.svc.Checkout(ctx, customer, checkoutInput())
		assert.ErrorIs(t, err, ErrSlotConflict)
		assert.Empty(t, f.notifier.kinds())
	})

	t.Run("SlotTakenAtInsert", func(t *testing.T) {
		f := newFixture()
		f.carts.On("GetCart", ctx, customer.ID).Return(filledCart(), nil)
		f.ledger.On("Validate", testAppointment).Return(nil)
		f.ledger.On("IsAvailable", ctx, testAppointment).Return(true, nil)
		f.repo.On("Create", ctx, mock.Anything).Return(ErrSlotConflict)

		_, err := f.svc.Checkout(ctx, customer, checkoutInput())
		assert.ErrorIs(t, err, ErrSlotConflict)
		f.carts.AssertNotCalled(t, "ConsumeOrdered", mock.Anything, mock.Anything, mock.Anything)
		assert.Equal(t, uint64(1), f.stats.SlotConflicts.Load())
	})

	t.Run("Anonymous", func(t *testing.T) {
		f := newFixture()
		_, err := f.svc.Checkout(ctx, auth.Identity{Email: customer.Email, Role: auth.RoleCustomer}, checkoutInput())
		assert.ErrorIs(t, err, ErrForbidden)
	})
}

// --- Reads ---

func TestService_GetOrder(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	o := orderIn(StatusPending)
	f.repo.On("GetByID", ctx, o.ID).Return(o, nil)

	got, err := f.svc.GetOrder(ctx, o.ID, customer)
	require.NoError(t, err)
	assert.Equal(t, o.ID, got.ID)

	_, err = f.svc.GetOrder(ctx, o.ID, labtech)
	assert.NoError(t, err)

	_, err = f.svc.GetOrder(ctx, o.ID, stranger)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.GetOrder(ctx, "not-a-uuid", admin)
	assert.ErrorIs(t, err, ErrNotFound)

	missing := "0b7d9c1e-1111-4a8f-9f8e-5a1f0d6c2b11"
	f.repo.On("GetByID", ctx, missing).Return(nil, nil)
	_, err = f.svc.GetOrder(ctx, missing, admin)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestService_ListOrders(t *testing.T) {
	ctx := context.Background()

	t.Run("DefaultsAndCap", func(t *testing.T) {
		f := newFixture()
		want := ListFilter{Statuses: []Status{StatusPending}, Page: 1, Limit: 100}
		f.repo.On("List", ctx, want).Return([]Order{*orderIn(StatusPending)}, nil)
		f.repo.On("Count", ctx, want).Return(1, nil)

		page, err := f.svc.ListPending(ctx, admin, 0, 500)
		require.NoError(t, err)
		assert.Equal(t, 1, page.Total)
		assert.Equal(t, 100, page.Limit)
		assert.Len(t, page.Orders, 1)
	})

	t.Run("WorkingExcludesPending", func(t *testing.T) {
		f := newFixture()
		want := ListFilter{ExcludeStatus: StatusPending, Page: 1, Limit: 20}
		f.repo.On("List", ctx, want).Return([]Order{}, nil)
		f.repo.On("Count", ctx, want).Return(0, nil)

		page, err := f.svc.ListWorking(ctx, labtech, 0, 0)
		require.NoError(t, err)
		assert.Equal(t, 20, page.Limit)
	})

	t.Run("CustomerForbidden", func(t *testing.T) {
		f := newFixture()
		_, err := f.svc.ListOrders(ctx, customer, ListFilter{})
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("UnknownStatus", func(t *testing.T) {
		f := newFixture()
		_, err := f.svc.ListOrders(ctx, admin, ListFilter{Statuses: []Status{"lost"}})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestService_ListMine(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.repo.On("ListByOwner", ctx, OwnerQuery{UserID: customer.ID, Email: customer.Email}).
		Return([]Order{*orderIn(StatusPending)}, nil)

	orders, err := f.svc.ListMine(ctx, customer)
	require.NoError(t, err)
	assert.Len(t, orders, 1)

	_, err = f.svc.ListMine(ctx, auth.Identity{Role: auth.RoleCustomer})
	assert.ErrorIs(t, err, ErrForbidden)
}

// --- Transitions ---

func TestService_Approve(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	o := orderIn(StatusPending)
	approved := orderIn(StatusApproved)

	f.repo.On("GetByID", ctx, o.ID).Return(o, nil)
	f.repo.On("UpdateStatus", ctx, mock.MatchedBy(func(u StatusUpdate) bool {
		return u.From == StatusPending && u.To == StatusApproved &&
			u.DecidedBy == admin.ID && u.DecidedAt != nil &&
			u.Notes == "Order approved by admin"
	})).Return(approved, nil)

	got, err := f.svc.Approve(ctx, o.ID, admin, "")
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, got.Status)
	assert.Equal(t, []notification.Kind{notification.KindApproval}, f.notifier.kinds())
	assert.Equal(t, "jane@example.com", f.notifier.msgs[0].Recipient)
	assert.Equal(t, "Jane", f.notifier.msgs[0].Params["name"])
}

func TestService_Transition_Rejections(t *testing.T) {
	ctx := context.Background()

	t.Run("DenyAfterApprove", func(t *testing.T) {
		f := newFixture()
		o := orderIn(StatusApproved)
		f.repo.On("GetByID", ctx, o.ID).Return(o, nil)

		_, err := f.svc.Deny(ctx, o.ID, admin, "")
		assert.ErrorIs(t, err, ErrInvalidTransition)
		f.repo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything)
	})

	t.Run("UnknownTarget", func(t *testing.T) {
		f := newFixture()
		o := orderIn(StatusPending)
		f.repo.On("GetByID", ctx, o.ID).Return(o, nil)

		_, err := f.svc.Transition(ctx, o.ID, "shipped", admin, "")
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})

	t.Run("CancelApproved", func(t *testing.T) {
		f := newFixture()
		o := orderIn(StatusApproved)
		f.repo.On("GetByID", ctx, o.ID).Return(o, nil)

		_, err := f.svc.Cancel(ctx, o.ID, customer)
		assert.ErrorIs(t, err, ErrInvalidState)
	})

	t.Run("CancelOthersOrder", func(t *testing.T) {
		f := newFixture()
		o := orderIn(StatusPending)
		f.repo.On("GetByID", ctx, o.ID).Return(o, nil)

		_, err := f.svc.Cancel(ctx, o.ID, stranger)
		assert.ErrorIs(t, err, ErrForbidden)
	})
}

func TestService_Transition_LostRace(t *testing.T) {
	ctx := context.Background()

	t.Run("StatusMovedIsConflict", func(t *testing.T) {
		f := newFixture()
		o := orderIn(StatusPending)
		f.repo.On("GetByID", ctx, o.ID).Return(o, nil).Once()
		f.repo.On("UpdateStatus", ctx, mock.Anything).Return(nil, ErrStaleWrite)
		f.repo.On("GetByID", ctx, o.ID).Return(orderIn(StatusDenied), nil).Once()

		_, err := f.svc.Approve(ctx, o.ID, admin, "")
		assert.ErrorIs(t, err, ErrConflict)
		assert.Equal(t, uint64(1), f.stats.TransitionConflicts.Load())
		assert.Empty(t, f.notifier.kinds())
	})

	t.Run("OrderGoneIsNotFound", func(t *testing.T) {
		f := newFixture()
		o := orderIn(StatusPending)
		f.repo.On("GetByID", ctx, o.ID).Return(o, nil).Once()
		f.repo.On("UpdateStatus", ctx, mock.Anything).Return(nil, ErrStaleWrite)
		f.repo.On("GetByID", ctx, o.ID).Return(nil, nil).Once()

		_, err := f.svc.Cancel(ctx, o.ID, customer)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

// --- Reports ---

func upload(name string) ReportUpload {
	return ReportUpload{Filename: name, ContentType: "application/pdf", Body: strings.NewReader("%PDF-1.4 report")}
}

func TestService_AttachReport(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		f := newFixture()
		o := orderIn(StatusProcessing)
		submitted := orderIn(StatusReportSubmitted)
		submitted.Report = &ReportReference{URL: f.blobs.URL(blob.CategoryReports, "r.pdf"), Filename: "r.pdf"}

		f.repo.On("GetByID", ctx, o.ID).Return(o, nil)
		f.repo.On("UpdateStatus", ctx, mock.MatchedBy(func(u StatusUpdate) bool {
			return u.From == StatusProcessing && u.To == StatusReportSubmitted &&
				u.Report != nil && u.Report.Filename == "r.pdf" &&
				u.Notes == "Report uploaded"
		})).Return(submitted, nil)

		got, err := f.svc.AttachReport(ctx, o.ID, upload("r.pdf"), labtech)
		require.NoError(t, err)
		assert.Equal(t, StatusReportSubmitted, got.Status)
		assert.Contains(t, f.blobs.objects, "r.pdf")
		assert.Empty(t, f.blobs.deleted)
		assert.Equal(t, []notification.Kind{notification.KindReportReady}, f.notifier.kinds())
		assert.Equal(t, uint64(1), f.stats.ReportsAttached.Load())
	})

	t.Run("CustomerForbidden", func(t *testing.T) {
		f := newFixture()
		_, err := f.svc.AttachReport(ctx, repoOrderID, upload("r.pdf"), customer)
		assert.ErrorIs(t, err, ErrForbidden)
		assert.Empty(t, f.blobs.objects)
	})

	t.Run("MissingFile", func(t *testing.T) {
		f := newFixture()
		_, err := f.svc.AttachReport(ctx, repoOrderID, ReportUpload{}, labtech)
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("WrongStatusRemovesBlob", func(t *testing.T) {
		f := newFixture()
		o := orderIn(StatusApproved)
		f.repo.On("GetByID", ctx, o.ID).Return(o, nil)

		_, err := f.svc.AttachReport(ctx, o.ID, upload("r.pdf"), labtech)
		assert.ErrorIs(t, err, ErrInvalidTransition)
		assert.Empty(t, f.blobs.objects)
		assert.Equal(t, []string{"r.pdf"}, f.blobs.deleted)
		assert.Equal(t, uint64(1), f.stats.BlobCleanups.Load())
	})

	t.Run("UnknownOrderRemovesBlob", func(t *testing.T) {
		f := newFixture()
		missing := "0b7d9c1e-1111-4a8f-9f8e-5a1f0d6c2b11"
		f.repo.On("GetByID", ctx, missing).Return(nil, nil)

		_, err := f.svc.AttachReport(ctx, missing, upload("r.pdf"), labtech)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.Empty(t, f.blobs.objects)
	})

	t.Run("PartialWriteRemoved", func(t *testing.T) {
		f := newFixture()
		f.blobs.putErr = errors.New("disk full")

		_, err := f.svc.AttachReport(ctx, repoOrderID, upload("r.pdf"), labtech)
		assert.ErrorIs(t, err, ErrUploadFailed)
		assert.Empty(t, f.blobs.objects)
		f.repo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})

	t.Run("UnverifiedWriteRemoved", func(t *testing.T) {
		f := newFixture()
		f.blobs.missing = true

		_, err := f.svc.AttachReport(ctx, repoOrderID, upload("r.pdf"), labtech)
		assert.ErrorIs(t, err, ErrUploadFailed)
		assert.Equal(t, []string{"r.pdf"}, f.blobs.deleted)
	})

	t.Run("LostRaceRemovesBlob", func(t *testing.T) {
		f := newFixture()
		o := orderIn(StatusProcessing)
		f.repo.On("GetByID", ctx, o.ID).Return(o, nil).Once()
		f.repo.On("UpdateStatus", ctx, mock.Anything).Return(nil, ErrStaleWrite)
		f.repo.On("GetByID", ctx, o.ID).Return(orderIn(StatusReportSubmitted), nil).Once()

		_, err := f.svc.AttachReport(ctx, o.ID, upload("r.pdf"), labtech)
		assert.ErrorIs(t, err, ErrConflict)
		assert.Empty(t, f.blobs.objects)
	})

	t.Run("CleanupFailureKeepsOriginalError", func(t *testing.T) {
		f := newFixture()
		o := orderIn(StatusApproved)
		f.repo.On("GetByID", ctx, o.ID).Return(o, nil)
		f.blobs.deleteErr = errors.New("permission denied")

		_, err := f.svc.AttachReport(ctx, o.ID, upload("r.pdf"), labtech)
		assert.ErrorIs(t, err, ErrInvalidTransition)
		assert.Equal(t, uint64(0), f.stats.BlobCleanups.Load())
	})
}

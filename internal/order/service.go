package order

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"labtest-be/internal/access"
	"labtest-be/internal/auth"
	"labtest-be/internal/blob"
	"labtest-be/internal/cart"
	"labtest-be/internal/logger"
	"labtest-be/internal/metrics"
	"labtest-be/internal/notification"
	"labtest-be/internal/slot"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// Ledger is the slot check used at checkout.
type Ledger interface {
	Validate(s slot.Slot) error
	IsAvailable(ctx context.Context, s slot.Slot) (bool, error)
}

// Carts is the part of the cart service checkout needs.
type Carts interface {
	GetCart(ctx context.Context, userID string) (*cart.Cart, error)
	ConsumeOrdered(ctx context.Context, userID string, items []cart.Item) error
}

// Notifier sends best-effort messages without blocking.
type Notifier interface {
	Notify(ctx context.Context, msg notification.Message)
}

type Service interface {
	Checkout(ctx context.Context, actor auth.Identity, in CheckoutInput) (*Order, error)
	GetOrder(ctx context.Context, id string, actor auth.Identity) (*Order, error)
	ListMine(ctx context.Context, actor auth.Identity) ([]Order, error)
	ListOrders(ctx context.Context, actor auth.Identity, f ListFilter) (*OrderPage, error)
	ListPending(ctx context.Context, actor auth.Identity, page, limit int) (*OrderPage, error)
	ListWorking(ctx context.Context, actor auth.Identity, page, limit int) (*OrderPage, error)

	Transition(ctx context.Context, id string, target Status, actor auth.Identity, notes string) (*Order, error)
	Approve(ctx context.Context, id string, actor auth.Identity, notes string) (*Order, error)
	Deny(ctx context.Context, id string, actor auth.Identity, notes string) (*Order, error)
	Cancel(ctx context.Context, id string, actor auth.Identity) (*Order, error)

	AttachReport(ctx context.Context, id string, upload ReportUpload, actor auth.Identity) (*Order, error)
	ListFamily(ctx context.Context, actor auth.Identity) ([]FamilyMember, error)
}

type Deps struct {
	Repo             Repository
	Ledger           Ledger
	Carts            Carts
	Blobs            blob.Store
	Notifier         Notifier
	Metrics          *metrics.Workflow
	CollectionCharge int
}

type service struct {
	repo             Repository
	ledger           Ledger
	carts            Carts
	blobs            blob.Store
	notifier         Notifier
	stats            *metrics.Workflow
	collectionCharge int
	now              func() time.Time
}

func NewService(d Deps) Service {
	stats := d.Metrics
	if stats == nil {
		stats = metrics.NewWorkflow()
	}
	return &service{
		repo:             d.Repo,
		ledger:           d.Ledger,
		carts:            d.Carts,
		blobs:            d.Blobs,
		notifier:         d.Notifier,
		stats:            stats,
		collectionCharge: d.CollectionCharge,
		now:              func() time.Time { return time.Now().UTC() },
	}
}

// load fetches an order, mapping malformed ids to ErrNotFound.
func (s *service) load(ctx context.Context, id string) (*Order, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, ErrNotFound
	}
	return o, nil
}

func (s *service) Checkout(ctx context.Context, actor auth.Identity, in CheckoutInput) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Checkout"),
		zap.String("user_id", actor.ID),
	)

	if actor.ID == "" || !actor.Role.Valid() {
		return nil, ErrForbidden
	}

	c, err := s.carts.GetCart(ctx, actor.ID)
	if err != nil {
		log.Error("failed to load cart", zap.Error(err))
		return nil, err
	}
	if c.IsEmpty() {
		return nil, fmt.Errorf("%w: cart is empty", ErrInvalidInput)
	}

	patient, err := normalizePatient(in.Patient, actor)
	if err != nil {
		return nil, err
	}

	appt := in.Appointment.Normalize()
	if err := s.ledger.Validate(appt); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	method := in.PaymentMethod
	if method == "" {
		method = PaymentCOD
	}
	if !method.Valid() {
		return nil, fmt.Errorf("%w: unknown payment method %q", ErrInvalidInput, method)
	}

	// Fast path only. The insert below is what actually guards the slot.
	free, err := s.ledger.IsAvailable(ctx, appt)
	if err != nil {
		log.Error("slot availability check failed", zap.Error(err))
		return nil, err
	}
	if !free {
		s.stats.SlotConflicts.Inc()
		return nil, ErrSlotConflict
	}

	items := make([]Item, 0, len(c.Items))
	subtotal := 0
	for _, ci := range c.Items {
		items = append(items, Item{
			TestID:   ci.TestID,
			TestName: ci.Name,
			Lab:      ci.Lab,
			Price:    ci.Price,
			Quantity: ci.Quantity,
		})
		subtotal += ci.Price * ci.Quantity
	}

	charge := 0
	if patient.HasCollectionAddress() {
		charge = s.collectionCharge
	}

	now := s.now()
	o := &Order{
		ID:          uuid.NewString(),
		Patient:     patient,
		Appointment: appt,
		Items:       items,
		Pricing: Pricing{
			Subtotal:         subtotal,
			CollectionCharge: charge,
			Total:            subtotal + charge,
		},
		Status:        StatusPending,
		PaymentMethod: method,
		PaymentStatus: method.InitialStatus(),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Create(ctx, o); err != nil {
		if errors.Is(err, ErrSlotConflict) {
			s.stats.SlotConflicts.Inc()
			log.Info("slot taken by a concurrent checkout")
			return nil, ErrSlotConflict
		}
		log.Error("failed to create order", zap.Error(err))
		return nil, err
	}
	s.stats.OrdersCreated.Inc()

	if err := s.carts.ConsumeOrdered(ctx, actor.ID, c.Items); err != nil {
		log.Warn("failed to release ordered cart items", zap.String("order_id", o.ID), zap.Error(err))
	}

	s.notify(ctx, notification.KindOrderConfirmation, o, map[string]string{
		"orderId":    o.ID,
		"date":       o.Appointment.Date,
		"timeWindow": o.Appointment.TimeWindow,
		"total":      strconv.Itoa(o.Pricing.Total),
	})

	log.Info("checkout completed",
		zap.String("order_id", o.ID),
		zap.Int("total", o.Pricing.Total),
	)
	return o, nil
}

func normalizePatient(p PatientInfo, actor auth.Identity) (PatientInfo, error) {
	p.Name = strings.TrimSpace(p.Name)
	p.Email = strings.TrimSpace(p.Email)
	p.Phone = strings.TrimSpace(p.Phone)
	p.Relation = strings.ToLower(strings.TrimSpace(p.Relation))
	p.Address = strings.TrimSpace(p.Address)
	p.MemberID = strings.TrimSpace(p.MemberID)

	if p.Name == "" {
		return p, fmt.Errorf("%w: patient name is required", ErrInvalidInput)
	}
	if p.Age != nil && (*p.Age < 0 || *p.Age > 150) {
		return p, fmt.Errorf("%w: patient age out of range", ErrInvalidInput)
	}
	if p.Email == "" {
		p.Email = actor.Email
	}
	if p.Relation == "" {
		p.Relation = RelationSelf
	}

	p.UserID = actor.ID
	p.UserEmail = actor.Email
	return p, nil
}

func (s *service) GetOrder(ctx context.Context, id string, actor auth.Identity) (*Order, error) {
	o, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !access.CanAccess(o.OwnerKeys(), actor) {
		return nil, ErrForbidden
	}
	return o, nil
}

func (s *service) ListMine(ctx context.Context, actor auth.Identity) ([]Order, error) {
	if actor.ID == "" && actor.Email == "" {
		return nil, ErrForbidden
	}
	return s.repo.ListByOwner(ctx, OwnerQuery{UserID: actor.ID, Email: actor.Email})
}

func (s *service) ListOrders(ctx context.Context, actor auth.Identity, f ListFilter) (*OrderPage, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "ListOrders"),
	)

	if !actor.IsStaff() {
		return nil, ErrForbidden
	}
	for _, st := range f.Statuses {
		if !st.Valid() {
			return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, st)
		}
	}
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit <= 0 {
		f.Limit = defaultPageLimit
	}
	if f.Limit > maxPageLimit {
		f.Limit = maxPageLimit
	}

	orders, err := s.repo.List(ctx, f)
	if err != nil {
		log.Error("failed to list orders", zap.Error(err))
		return nil, err
	}
	total, err := s.repo.Count(ctx, f)
	if err != nil {
		log.Error("failed to count orders", zap.Error(err))
		return nil, err
	}

	return &OrderPage{Orders: orders, Total: total, Page: f.Page, Limit: f.Limit}, nil
}

func (s *service) ListPending(ctx context.Context, actor auth.Identity, page, limit int) (*OrderPage, error) {
	return s.ListOrders(ctx, actor, ListFilter{Statuses: []Status{StatusPending}, Page: page, Limit: limit})
}

// ListWorking lists every order that has left pending.
func (s *service) ListWorking(ctx context.Context, actor auth.Identity, page, limit int) (*OrderPage, error) {
	return s.ListOrders(ctx, actor, ListFilter{ExcludeStatus: StatusPending, Page: page, Limit: limit})
}

func (s *service) Transition(ctx context.Context, id string, target Status, actor auth.Identity, notes string) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Transition"),
		zap.String("order_id", id),
		zap.String("target", string(target)),
		zap.String("actor", actor.ID),
	)

	o, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !target.Valid() {
		return nil, ErrInvalidTransition
	}
	if err := checkTransition(o, target, actor); err != nil {
		log.Info("transition rejected", zap.String("from", string(o.Status)), zap.Error(err))
		return nil, err
	}

	now := s.now()
	upd := StatusUpdate{
		ID:    o.ID,
		From:  o.Status,
		To:    target,
		Notes: notesFor(target, strings.TrimSpace(notes)),
		At:    now,
	}
	if target == StatusApproved || target == StatusDenied {
		upd.DecidedBy = actor.ID
		upd.DecidedAt = &now
	}

	updated, err := s.repo.UpdateStatus(ctx, upd)
	if err != nil {
		if errors.Is(err, ErrStaleWrite) {
			return nil, s.resolveStale(ctx, o.ID)
		}
		log.Error("failed to update status", zap.Error(err))
		return nil, err
	}
	s.stats.Transitions.Inc()

	if target == StatusApproved {
		s.notify(ctx, notification.KindApproval, updated, map[string]string{
			"orderId":    updated.ID,
			"date":       updated.Appointment.Date,
			"timeWindow": updated.Appointment.TimeWindow,
		})
	}

	log.Info("order transitioned", zap.String("from", string(o.Status)))
	return updated, nil
}

// resolveStale explains a lost conditional update.
func (s *service) resolveStale(ctx context.Context, id string) error {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if current == nil {
		return ErrNotFound
	}
	s.stats.TransitionConflicts.Inc()
	logger.FromCtx(ctx).Info("lost concurrent status update",
		zap.String("order_id", id),
		zap.String("status", string(current.Status)),
	)
	return ErrConflict
}

func (s *service) Approve(ctx context.Context, id string, actor auth.Identity, notes string) (*Order, error) {
	return s.Transition(ctx, id, StatusApproved, actor, notes)
}

func (s *service) Deny(ctx context.Context, id string, actor auth.Identity, notes string) (*Order, error) {
	return s.Transition(ctx, id, StatusDenied, actor, notes)
}

func (s *service) Cancel(ctx context.Context, id string, actor auth.Identity) (*Order, error) {
	return s.Transition(ctx, id, StatusCancelled, actor, "")
}

// notify hands a message to the notifier. It never fails the caller.
func (s *service) notify(ctx context.Context, kind notification.Kind, o *Order, params map[string]string) {
	if s.notifier == nil {
		return
	}
	recipient := o.Patient.Email
	if recipient == "" {
		recipient = o.Patient.UserEmail
	}
	params["name"] = o.Patient.Name
	s.notifier.Notify(ctx, notification.Message{Recipient: recipient, Kind: kind, Params: params})
}

package service

import (
	"context"
	"errors"
	"hash/fnv"
	"sync"
	"time"

	checkouterrors "bookmyworkspace/internal/checkout/errors"
	"bookmyworkspace/internal/checkout/repository"
	"bookmyworkspace/pkg/checkout"
	"bookmyworkspace/pkg/client"
	"bookmyworkspace/pkg/config"
	apperrors "bookmyworkspace/pkg/errors"
	"bookmyworkspace/pkg/events"
	"bookmyworkspace/pkg/model"
	"bookmyworkspace/pkg/validation"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const (
	dateLayout   = "2006-01-02"
	lockStripes  = 64
	recordFailed = "We could not record your booking. Please try again."

	// adoptGrace is how long past its deadline a processing payment with no
	// local timer waits before this process finishes it.
	adoptGrace = 2 * time.Second
)

type CheckoutService interface {
	Open(ctx context.Context, userID, email string, req *model.CreateCheckoutRequest) (*model.CheckoutSession, error)
	Get(ctx context.Context, userID, id string) (*model.CheckoutSession, error)
	UpdateSelection(ctx context.Context, userID, id string, req *model.UpdateSelectionRequest) (*model.CheckoutSession, error)
	SelectPaymentMethod(ctx context.Context, userID, id string, req *model.PaymentMethodRequest) (*model.CheckoutSession, error)
	Confirm(ctx context.Context, userID, id string) (*model.CheckoutSession, error)
	Close(ctx context.Context, userID, id string) error
	Watch(ctx context.Context, userID, id string) (<-chan *model.CheckoutSession, func(), error)
	Shutdown()
}

// WorkspaceCatalog resolves the listing and plans a dialog is opened for.
type WorkspaceCatalog interface {
	GetByID(ctx context.Context, id string) (*model.Workspace, error)
}

// BookingRecorder persists a confirmed booking.
type BookingRecorder interface {
	Create(ctx context.Context, booking *model.Booking) error
}

type pendingPayment struct {
	timer *time.Timer
	token uint64
}

type checkoutService struct {
	sessions  repository.SessionRepository
	catalog   WorkspaceCatalog
	recorder  BookingRecorder
	publisher events.Publisher
	broker    *Broker
	validate  *validator.Validate
	ids       *checkout.IDGenerator
	now       checkout.Clock
	cfg       *config.Config

	locks [lockStripes]sync.Mutex

	pmu       sync.Mutex
	pending   map[string]pendingPayment
	nextToken uint64
}

func NewCheckoutService(
	sessions repository.SessionRepository,
	catalog WorkspaceCatalog,
	recorder BookingRecorder,
	publisher events.Publisher,
	broker *Broker,
	now checkout.Clock,
	cfg *config.Config,
) (CheckoutService, error) {
	v, err := validation.New()
	if err != nil {
		return nil, err
	}
	if now == nil {
		now = time.Now
	}
	return &checkoutService{
		sessions:  sessions,
		catalog:   catalog,
		recorder:  recorder,
		publisher: publisher,
		broker:    broker,
		validate:  v,
		ids:       checkout.NewIDGenerator(now),
		now:       now,
		cfg:       cfg,
		pending:   make(map[string]pendingPayment),
	}, nil
}

func (s *checkoutService) Open(ctx context.Context, userID, email string, req *model.CreateCheckoutRequest) (*model.CheckoutSession, error) {
	if err := validation.Struct(s.validate, req); err != nil {
		return nil, validationError("Invalid checkout request", err)
	}

	ws, err := s.catalog.GetByID(ctx, req.WorkspaceID)
	if err != nil {
		if errors.Is(err, client.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Workspace", req.WorkspaceID)
		}
		s.cfg.Log.Error("Failed to load workspace for checkout",
			"workspace_id", req.WorkspaceID,
			"error", err,
		)
		return nil, apperrors.Unavailable("workspaces service")
	}

	plan, ok := ws.Plan(req.PlanID)
	if !ok {
		return nil, apperrors.NotFoundWithID("Plan", req.PlanID)
	}

	now := s.now().UTC()
	session := &model.CheckoutSession{
		ID:            uuid.NewString(),
		UserID:        userID,
		UserEmail:     email,
		WorkspaceID:   ws.ID,
		WorkspaceName: ws.Name,
		Plan:          plan,
		CreatedAt:     now,
	}
	s.refresh(session, checkout.NewConfigurator(plan, s.now), checkout.NewPaymentFlow(s.ids, s.now))

	if err := s.sessions.Save(ctx, session); err != nil {
		s.cfg.Log.Error("Failed to save checkout session", "workspace_id", ws.ID, "error", err)
		return nil, apperrors.Persistence("open checkout", err)
	}

	s.cfg.Log.Info("Checkout opened",
		"session_id", session.ID,
		"workspace_id", ws.ID,
		"plan_id", plan.ID,
		"user_id", userID,
	)
	return session, nil
}

func (s *checkoutService) Get(ctx context.Context, userID, id string) (*model.CheckoutSession, error) {
	unlock := s.lock(id)
	defer unlock()
	return s.current(ctx, userID, id)
}

// UpdateSelection applies absolute values first, then steps. Out-of-range
// numbers are clamped; a past date or an unknown slot leaves the field as is.
func (s *checkoutService) UpdateSelection(ctx context.Context, userID, id string, req *model.UpdateSelectionRequest) (*model.CheckoutSession, error) {
	if err := validation.Struct(s.validate, req); err != nil {
		return nil, validationError("Invalid selection", err)
	}

	unlock := s.lock(id)
	defer unlock()

	session, err := s.current(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	flow := checkout.RestorePaymentFlow(session.Payment, s.ids, s.now)
	if err := checkEditable(flow); err != nil {
		return nil, err
	}

	cfgr := checkout.RestoreConfigurator(session.Plan, session.Selection, s.now)
	if req.Duration != nil {
		cfgr.SetDuration(*req.Duration)
	}
	if req.PartySize != nil {
		cfgr.SetPartySize(*req.PartySize)
	}
	if req.Date != nil {
		d, err := time.ParseInLocation(dateLayout, *req.Date, s.now().Location())
		if err != nil {
			return nil, apperrors.InvalidInput("date must be formatted as YYYY-MM-DD")
		}
		cfgr.SetDate(d)
	}
	if req.Time != nil {
		cfgr.SetTime(*req.Time)
	}
	if req.DurationDelta != nil {
		cfgr.StepDuration(*req.DurationDelta)
	}
	if req.PartySizeDelta != nil {
		cfgr.StepPartySize(*req.PartySizeDelta)
	}

	s.refresh(session, cfgr, flow)
	if err := s.save(ctx, session); err != nil {
		return nil, err
	}
	s.broker.Publish(session)
	return session, nil
}

func (s *checkoutService) SelectPaymentMethod(ctx context.Context, userID, id string, req *model.PaymentMethodRequest) (*model.CheckoutSession, error) {
	unlock := s.lock(id)
	defer unlock()

	session, err := s.current(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	flow := checkout.RestorePaymentFlow(session.Payment, s.ids, s.now)
	if err := flow.SelectMethod(checkout.PaymentMethod(req.Method)); err != nil {
		return nil, flowError(err)
	}

	s.refresh(session, checkout.RestoreConfigurator(session.Plan, session.Selection, s.now), flow)
	if err := s.save(ctx, session); err != nil {
		return nil, err
	}
	s.broker.Publish(session)
	return session, nil
}

// Confirm submits the payment. Pay at venue is recorded immediately; gateway
// methods return in processing state and resolve after the configured delay.
func (s *checkoutService) Confirm(ctx context.Context, userID, id string) (*model.CheckoutSession, error) {
	unlock := s.lock(id)
	defer unlock()

	session, err := s.current(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	cfgr := checkout.RestoreConfigurator(session.Plan, session.Selection, s.now)
	flow := checkout.RestorePaymentFlow(session.Payment, s.ids, s.now)

	if cfgr.Stale() && flow.State() != checkout.Confirmed {
		return nil, apperrors.Validation("The selected date has passed", map[string]any{
			"date": "must be today or later",
		})
	}

	state, err := flow.Submit(cfgr.Quote().Total)
	if err != nil {
		return nil, flowError(err)
	}

	session.LastError = ""
	s.refresh(session, cfgr, flow)

	if state == checkout.Processing {
		session.ProcessingUntil = s.now().UTC().Add(s.cfg.PaymentProcessingDelay)
		if err := s.save(ctx, session); err != nil {
			return nil, err
		}
		s.schedule(id, s.cfg.PaymentProcessingDelay)
		s.broker.Publish(session)
		s.cfg.Log.Info("Payment processing",
			"session_id", id,
			"method", flow.Method(),
			"amount", session.Quote.Total,
		)
		return session, nil
	}

	if err := s.finalize(ctx, session, cfgr, flow); err != nil {
		return nil, err
	}
	return session, nil
}

// Close discards the session. A payment still processing is abandoned and
// its timer, if it fires later, has no effect.
func (s *checkoutService) Close(ctx context.Context, userID, id string) error {
	unlock := s.lock(id)
	defer unlock()

	session, err := s.load(ctx, userID, id)
	if err != nil {
		return err
	}

	abandoned := s.cancelPending(id)

	if err := s.sessions.Delete(ctx, id); err != nil && !errors.Is(err, checkouterrors.ErrSessionNotFound) {
		s.cfg.Log.Error("Failed to delete checkout session", "session_id", id, "error", err)
		return apperrors.Persistence("close checkout", err)
	}

	session.Closed = true
	s.broker.Publish(session)
	s.broker.Close(id)

	s.cfg.Log.Info("Checkout closed",
		"session_id", id,
		"user_id", userID,
		"abandoned_payment", abandoned,
	)
	return nil
}

func (s *checkoutService) Watch(ctx context.Context, userID, id string) (<-chan *model.CheckoutSession, func(), error) {
	unlock := s.lock(id)
	_, err := s.current(ctx, userID, id)
	unlock()
	if err != nil {
		return nil, nil, err
	}
	ch, cancel := s.broker.Subscribe(id)
	return ch, cancel, nil
}

// Shutdown stops every pending payment timer.
func (s *checkoutService) Shutdown() {
	s.pmu.Lock()
	defer s.pmu.Unlock()
	for id, p := range s.pending {
		p.timer.Stop()
		delete(s.pending, id)
	}
}

func (s *checkoutService) schedule(id string, delay time.Duration) {
	s.pmu.Lock()
	defer s.pmu.Unlock()

	if p, ok := s.pending[id]; ok {
		p.timer.Stop()
	}
	s.nextToken++
	token := s.nextToken
	s.pending[id] = pendingPayment{
		token: token,
		timer: time.AfterFunc(delay, func() { s.resolve(id, token) }),
	}
}

func (s *checkoutService) hasPending(id string) bool {
	s.pmu.Lock()
	defer s.pmu.Unlock()
	_, ok := s.pending[id]
	return ok
}

func (s *checkoutService) cancelPending(id string) bool {
	s.pmu.Lock()
	defer s.pmu.Unlock()

	p, ok := s.pending[id]
	if !ok {
		return false
	}
	p.timer.Stop()
	delete(s.pending, id)
	return true
}

// takePending claims the pending payment for a firing timer. It fails when
// the payment was abandoned or superseded.
func (s *checkoutService) takePending(id string, token uint64) bool {
	s.pmu.Lock()
	defer s.pmu.Unlock()

	p, ok := s.pending[id]
	if !ok || p.token != token {
		return false
	}
	delete(s.pending, id)
	return true
}

func (s *checkoutService) resolve(id string, token uint64) {
	unlock := s.lock(id)
	defer unlock()

	if !s.takePending(id, token) {
		s.cfg.Log.Debug("Ignoring stale payment timer", "session_id", id)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.WriteTimeout)
	defer cancel()

	session, err := s.sessions.FindByID(ctx, id)
	if err != nil {
		s.cfg.Log.Warn("Payment resolved for missing session", "session_id", id, "error", err)
		return
	}
	if session.Closed {
		return
	}

	flow := checkout.RestorePaymentFlow(session.Payment, s.ids, s.now)
	if _, err := flow.Complete(); err != nil {
		s.cfg.Log.Warn("Payment timer fired outside processing", "session_id", id, "state", flow.State())
		return
	}

	cfgr := checkout.RestoreConfigurator(session.Plan, session.Selection, s.now)
	if err := s.finalize(ctx, session, cfgr, flow); err != nil {
		s.cfg.Log.Warn("Processed payment could not be recorded", "session_id", id, "error", err)
	}
}

// finalize records the booking for a confirmed flow. When the store rejects
// it the confirmation is withdrawn and the session keeps its selection.
func (s *checkoutService) finalize(ctx context.Context, session *model.CheckoutSession, cfgr *checkout.Configurator, flow *checkout.PaymentFlow) error {
	conf := flow.Confirmation()
	booking := bookingFor(session, cfgr, conf)

	if err := s.recorder.Create(ctx, booking); err != nil {
		s.cfg.Log.Error("Failed to record booking",
			"session_id", session.ID,
			"reference", conf.BookingID,
			"error", err,
		)
		flow.Revert()
		session.LastError = recordFailed
		s.refresh(session, cfgr, flow)
		if saveErr := s.save(ctx, session); saveErr != nil {
			s.cfg.Log.Warn("Failed to save reverted session", "session_id", session.ID, "error", saveErr)
		}
		s.broker.Publish(session)
		if apperrors.IsAppError(err) {
			return err
		}
		return apperrors.Persistence("record booking", err)
	}

	session.BookingID = booking.ID
	s.refresh(session, cfgr, flow)
	if err := s.save(ctx, session); err != nil {
		s.cfg.Log.Warn("Booking recorded but session not updated", "session_id", session.ID, "error", err)
	}
	s.broker.Publish(session)

	if err := s.publisher.PublishBooking(ctx, events.TypeBookingConfirmed, events.BookingEvent{
		BookingID:     booking.ID,
		Reference:     booking.Reference,
		WorkspaceID:   booking.WorkspaceID,
		WorkspaceName: session.WorkspaceName,
		UserID:        booking.UserID,
		UserEmail:     session.UserEmail,
		PlanName:      booking.PlanName,
		PartySize:     booking.PartySize,
		StartDate:     booking.StartDate,
		EndDate:       booking.EndDate,
		TotalAmount:   booking.TotalAmount,
		PaymentMethod: booking.PaymentMethod,
		PaymentStatus: booking.PaymentStatus,
		Status:        booking.Status,
	}); err != nil {
		s.cfg.Log.Warn("Failed to publish booking event",
			"event_type", events.TypeBookingConfirmed,
			"reference", booking.Reference,
			"error", err,
		)
	}

	s.cfg.Log.Info("Booking confirmed",
		"session_id", session.ID,
		"booking_id", booking.ID,
		"reference", booking.Reference,
		"method", booking.PaymentMethod,
		"total_amount", booking.TotalAmount,
	)
	return nil
}

func bookingFor(session *model.CheckoutSession, cfgr *checkout.Configurator, conf *checkout.Confirmation) *model.Booking {
	start, end := cfgr.Period()
	sel := cfgr.Selection()
	return &model.Booking{
		WorkspaceID:   session.WorkspaceID,
		UserID:        session.UserID,
		BookingType:   session.Plan.BillingUnit.BookingType(),
		StartDate:     start.UTC(),
		EndDate:       end.UTC(),
		TotalAmount:   conf.TotalAmount,
		Status:        model.BookingStatusConfirmed,
		Reference:     conf.BookingID,
		PaymentMethod: string(conf.PaymentMethod),
		PaymentStatus: string(conf.PaymentStatus),
		PlanID:        session.Plan.ID,
		PlanName:      session.Plan.Name,
		PartySize:     sel.PartySize,
	}
}

func (s *checkoutService) refresh(session *model.CheckoutSession, cfgr *checkout.Configurator, flow *checkout.PaymentFlow) {
	session.Selection = cfgr.Selection()
	session.Quote = cfgr.Quote()
	session.Payment = flow.Snapshot()
	session.Status = string(flow.Status())
	session.UpdatedAt = s.now().UTC()
	if flow.State() != checkout.Processing {
		session.ProcessingUntil = time.Time{}
	}
}

// current loads the session and finishes a payment left processing by a
// process that is gone: no local timer holds it and its deadline is past.
// Callers hold the session lock.
func (s *checkoutService) current(ctx context.Context, userID, id string) (*model.CheckoutSession, error) {
	session, err := s.load(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if session.Payment.State != checkout.Processing || s.hasPending(id) {
		return session, nil
	}
	if s.now().Before(session.ProcessingUntil.Add(adoptGrace)) {
		return session, nil
	}

	flow := checkout.RestorePaymentFlow(session.Payment, s.ids, s.now)
	if _, err := flow.Complete(); err != nil {
		return session, nil
	}
	s.cfg.Log.Info("Resuming orphaned payment",
		"session_id", id,
		"processing_until", session.ProcessingUntil,
	)
	cfgr := checkout.RestoreConfigurator(session.Plan, session.Selection, s.now)
	if err := s.finalize(ctx, session, cfgr, flow); err != nil {
		s.cfg.Log.Warn("Orphaned payment could not be recorded", "session_id", id, "error", err)
	}
	return session, nil
}

func (s *checkoutService) load(ctx context.Context, userID, id string) (*model.CheckoutSession, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Checkout session ID cannot be empty")
	}
	session, err := s.sessions.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, checkouterrors.ErrSessionNotFound) {
			return nil, apperrors.NotFoundWithID("Checkout session", id)
		}
		s.cfg.Log.Error("Failed to load checkout session", "session_id", id, "error", err)
		return nil, apperrors.Persistence("load checkout", err)
	}
	if session.UserID != userID {
		return nil, apperrors.Forbidden("This checkout belongs to another user")
	}
	return session, nil
}

func (s *checkoutService) save(ctx context.Context, session *model.CheckoutSession) error {
	if err := s.sessions.Save(ctx, session); err != nil {
		s.cfg.Log.Error("Failed to save checkout session", "session_id", session.ID, "error", err)
		return apperrors.Persistence("save checkout", err)
	}
	return nil
}

func (s *checkoutService) lock(id string) func() {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	m := &s.locks[h.Sum32()%lockStripes]
	m.Lock()
	return m.Unlock
}

func checkEditable(flow *checkout.PaymentFlow) error {
	switch flow.State() {
	case checkout.Processing:
		return apperrors.Conflict("Payment is processing; the selection can no longer change")
	case checkout.Confirmed:
		return apperrors.Conflict("Booking is already confirmed")
	}
	return nil
}

func flowError(err error) error {
	switch {
	case errors.Is(err, checkout.ErrNoPaymentMethod):
		return apperrors.Validation(checkout.MessageSelectMethod, map[string]any{
			"payment_method": "payment_method is required",
		})
	case errors.Is(err, checkout.ErrInvalidPaymentMethod):
		return apperrors.Validation("Unsupported payment method", map[string]any{
			"payment_method": "must be one of: online upi pay_at_venue wallet",
		})
	case errors.Is(err, checkout.ErrPaymentInProgress):
		return apperrors.Conflict("Payment is already processing")
	case errors.Is(err, checkout.ErrAlreadyConfirmed):
		return apperrors.Conflict("Booking is already confirmed")
	default:
		return apperrors.Internal("Checkout failed", err)
	}
}

func validationError(message string, err error) error {
	var verrs validation.ValidationErrors
	if errors.As(err, &verrs) {
		return apperrors.Validation(message, verrs.Details())
	}
	return apperrors.Validation(message, map[string]any{"error": err.Error()})
}

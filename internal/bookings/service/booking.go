package service

import (
	"context"
	"errors"
	"sync"

	bookingserrors "bookmyworkspace/internal/bookings/errors"
	"bookmyworkspace/internal/bookings/repository"
	"bookmyworkspace/internal/bookings/validator"
	"bookmyworkspace/pkg/client"
	"bookmyworkspace/pkg/config"
	apperrors "bookmyworkspace/pkg/errors"
	"bookmyworkspace/pkg/events"
	"bookmyworkspace/pkg/model"
	"bookmyworkspace/pkg/querycache"
	"bookmyworkspace/pkg/validation"

	"go.mongodb.org/mongo-driver/mongo"
)

const cacheKind = "bookings"

type BookingService interface {
	Create(ctx context.Context, booking *model.Booking) error
	GetByID(ctx context.Context, actorID, id string) (*model.Booking, error)
	ListMine(ctx context.Context, userID string, limit int, offset int64) ([]*model.Booking, int64, error)
	UpdateStatus(ctx context.Context, actorID, id string, update *model.BookingUpdate) (*model.Booking, error)
	Cancel(ctx context.Context, actorID, id string) (*model.Booking, error)
	Invoice(ctx context.Context, actorID, id string) (*Invoice, error)
}

// WorkspaceLookup resolves the listing a booking belongs to.
type WorkspaceLookup interface {
	GetByID(ctx context.Context, id string) (*model.Workspace, error)
}

type bookingService struct {
	repo       repository.BookingRepository
	validator  *validator.BookingValidator
	workspaces WorkspaceLookup
	cache      *querycache.Cache
	publisher  events.Publisher
	cfg        *config.Config
}

func NewBookingService(
	repo repository.BookingRepository,
	validator *validator.BookingValidator,
	workspaces WorkspaceLookup,
	cache *querycache.Cache,
	publisher events.Publisher,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:       repo,
		validator:  validator,
		workspaces: workspaces,
		cache:      cache,
		publisher:  publisher,
		cfg:        cfg,
	}
}

func (s *bookingService) Create(ctx context.Context, booking *model.Booking) error {
	s.applyDefaults(booking)

	if err := s.validator.Validate(booking); err != nil {
		s.cfg.Log.Warn("Booking validation failed",
			"workspace_id", booking.WorkspaceID,
			"user_id", booking.UserID,
			"error", err,
		)
		return validationError(err)
	}

	if err := s.repo.Create(ctx, booking); err != nil {
		s.cfg.Log.ErrorContext(ctx, "Failed to create booking",
			"workspace_id", booking.WorkspaceID,
			"user_id", booking.UserID,
			"reference", booking.Reference,
			"error", err,
		)
		return apperrors.Persistence("create booking", err)
	}

	s.cache.Invalidate(cacheKind)
	// a booking recorded as confirmed is announced by its confirmation
	if booking.Status != model.BookingStatusConfirmed {
		s.publish(ctx, events.TypeBookingCreated, booking)
	}

	s.cfg.Log.Info("Booking created successfully",
		"id", booking.ID,
		"reference", booking.Reference,
		"workspace_id", booking.WorkspaceID,
		"user_id", booking.UserID,
		"total_amount", booking.TotalAmount,
	)
	return nil
}

func (s *bookingService) GetByID(ctx context.Context, actorID, id string) (*model.Booking, error) {
	booking, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, actorID, booking, true); err != nil {
		return nil, err
	}
	return booking, nil
}

// ListMine returns the user's bookings, most recent first.
func (s *bookingService) ListMine(ctx context.Context, userID string, limit int, offset int64) ([]*model.Booking, int64, error) {
	if userID == "" {
		return nil, 0, apperrors.Unauthorized("Authentication required")
	}
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	type page struct {
		items []*model.Booking
		total int64
	}

	key := querycache.NewKey(cacheKind, "user", userID, limit, offset)
	result, err := querycache.Load(ctx, s.cache, key, func(ctx context.Context) (page, error) {
		var p page
		var errCount, errFind error
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			p.total, errCount = s.repo.CountByUser(ctx, userID)
		}()
		go func() {
			defer wg.Done()
			p.items, errFind = s.repo.ListByUser(ctx, userID, limit, offset)
		}()
		wg.Wait()
		return p, errors.Join(errCount, errFind)
	})
	if err != nil {
		s.cfg.Log.ErrorContext(ctx, "Failed to list bookings",
			"user_id", userID,
			"limit", limit,
			"offset", offset,
			"error", err,
		)
		return nil, 0, apperrors.Persistence("retrieve bookings", err)
	}

	return result.items, result.total, nil
}

// UpdateStatus moves a booking along its lifecycle. Only the workspace owner
// may confirm or complete; the guest may only cancel.
func (s *bookingService) UpdateStatus(ctx context.Context, actorID, id string, update *model.BookingUpdate) (*model.Booking, error) {
	if update == nil || (update.Status == "" && update.PaymentStatus == "") {
		return nil, apperrors.InvalidInput("status or payment_status is required")
	}
	if err := s.validator.ValidateUpdate(update); err != nil {
		return nil, validationError(err)
	}

	var updated *model.Booking
	err := s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		booking, err := s.find(sessCtx, id)
		if err != nil {
			return err
		}

		guestCancel := update.Status == model.BookingStatusCancelled && update.PaymentStatus == ""
		if err := s.authorize(sessCtx, actorID, booking, guestCancel); err != nil {
			return err
		}

		if update.Status != "" && update.Status != booking.Status {
			if !validator.CanTransition(booking.Status, update.Status) {
				return apperrors.Conflict("cannot change booking from " + booking.Status + " to " + update.Status)
			}
			booking.Status = update.Status
		}
		if update.PaymentStatus != "" {
			booking.PaymentStatus = update.PaymentStatus
		}

		if err := s.repo.UpdateStatus(sessCtx, id, update); err != nil {
			return s.mapRepoError(err, id, "update booking")
		}
		updated = booking
		return nil
	})
	if err != nil {
		if !apperrors.IsAppError(err) {
			s.cfg.Log.ErrorContext(ctx, "Failed to update booking", "id", id, "error", err)
			return nil, apperrors.Persistence("update booking", err)
		}
		return nil, err
	}

	s.cache.Invalidate(cacheKind)
	if update.Status == model.BookingStatusCancelled {
		s.publish(ctx, events.TypeBookingCancelled, updated)
	}

	s.cfg.Log.Info("Booking updated successfully",
		"id", id,
		"status", updated.Status,
		"payment_status", updated.PaymentStatus,
		"actor_id", actorID,
	)
	return updated, nil
}

func (s *bookingService) Cancel(ctx context.Context, actorID, id string) (*model.Booking, error) {
	return s.UpdateStatus(ctx, actorID, id, &model.BookingUpdate{Status: model.BookingStatusCancelled})
}

func (s *bookingService) find(ctx context.Context, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}
	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err, id, "retrieve booking")
	}
	return booking, nil
}

// authorize lets the guest through when guestAllowed, and the owner of the
// booked workspace always.
func (s *bookingService) authorize(ctx context.Context, actorID string, booking *model.Booking, guestAllowed bool) error {
	if actorID == "" {
		return apperrors.Unauthorized("Authentication required")
	}
	if guestAllowed && booking.UserID == actorID {
		return nil
	}

	ws, err := s.workspaces.GetByID(ctx, booking.WorkspaceID)
	if err != nil {
		if errors.Is(err, client.ErrNotFound) {
			return apperrors.Forbidden("You do not have access to this booking")
		}
		s.cfg.Log.ErrorContext(ctx, "Failed to resolve booking workspace",
			"booking_id", booking.ID,
			"workspace_id", booking.WorkspaceID,
			"error", err,
		)
		return apperrors.Unavailable("workspaces service")
	}
	if ws.OwnerID != actorID {
		return apperrors.Forbidden("You do not have access to this booking")
	}
	return nil
}

func (s *bookingService) mapRepoError(err error, id, operation string) error {
	switch {
	case errors.Is(err, bookingserrors.ErrNotFound):
		return apperrors.NotFoundWithID("Booking", id)
	case errors.Is(err, bookingserrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid booking ID format")
	default:
		s.cfg.Log.Error("Booking store failure",
			"id", id,
			"operation", operation,
			"error", err,
		)
		return apperrors.Persistence(operation, err)
	}
}

func (s *bookingService) publish(ctx context.Context, eventType string, b *model.Booking) {
	err := s.publisher.PublishBooking(ctx, eventType, events.BookingEvent{
		BookingID:     b.ID,
		Reference:     b.Reference,
		WorkspaceID:   b.WorkspaceID,
		UserID:        b.UserID,
		PlanName:      b.PlanName,
		PartySize:     b.PartySize,
		StartDate:     b.StartDate,
		EndDate:       b.EndDate,
		TotalAmount:   b.TotalAmount,
		PaymentMethod: b.PaymentMethod,
		PaymentStatus: b.PaymentStatus,
		Status:        b.Status,
	})
	if err != nil {
		s.cfg.Log.WarnContext(ctx, "Failed to publish booking event",
			"event_type", eventType,
			"booking_id", b.ID,
			"error", err,
		)
	}
}

func (s *bookingService) applyDefaults(booking *model.Booking) {
	if booking.Status == "" {
		booking.Status = model.BookingStatusPending
	}
	if booking.PartySize == 0 {
		booking.PartySize = 1
	}
	if booking.EndDate.IsZero() {
		booking.EndDate = booking.StartDate
	}
}

func validationError(err error) error {
	var verrs validation.ValidationErrors
	if errors.As(err, &verrs) {
		return apperrors.Validation("Booking validation failed", verrs.Details())
	}
	return apperrors.Validation("Booking validation failed", map[string]any{"error": err.Error()})
}

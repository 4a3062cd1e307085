package service

import (
	"context"
	"errors"
	"strings"
	"sync"

	workspaceserrors "bookmyworkspace/internal/workspaces/errors"
	"bookmyworkspace/internal/workspaces/repository"
	"bookmyworkspace/internal/workspaces/validator"
	"bookmyworkspace/pkg/checkout"
	"bookmyworkspace/pkg/config"
	apperrors "bookmyworkspace/pkg/errors"
	"bookmyworkspace/pkg/events"
	"bookmyworkspace/pkg/model"
	"bookmyworkspace/pkg/querycache"
	"bookmyworkspace/pkg/sanitizer"
	"bookmyworkspace/pkg/validation"

	"go.mongodb.org/mongo-driver/mongo"
)

const (
	searchKind           = "workspaces"
	itemKind             = "workspace"
	ownerKind            = "workspaces.owner"
	featuredLimit        = 6
	dashboardRecentLimit = 10
)

func itemKey(id string) querycache.Key       { return querycache.NewKey(itemKind, id) }
func ownerKey(ownerID string) querycache.Key { return querycache.NewKey(ownerKind, ownerID) }

type WorkspaceService interface {
	Create(ctx context.Context, ownerID string, ws *model.Workspace) error
	GetByID(ctx context.Context, id string) (*model.Workspace, error)
	Search(ctx context.Context, filter model.WorkspaceFilter, limit int, offset int64) ([]*model.Workspace, int64, error)
	Featured(ctx context.Context) ([]*model.Workspace, error)
	ListMine(ctx context.Context, ownerID string) ([]*model.Workspace, error)
	Plans(ctx context.Context, id string) ([]checkout.Plan, error)
	Update(ctx context.Context, ownerID, id string, updates *model.WorkspaceUpdate) (*model.Workspace, error)
	Delete(ctx context.Context, ownerID, id string) error
	Dashboard(ctx context.Context, ownerID string) (*model.Dashboard, error)
	WatchDashboard(ctx context.Context, ownerID string) (<-chan *model.Dashboard, func(), error)
}

// BookingReader is the slice of the bookings store the owner dashboard needs.
type BookingReader interface {
	FindByWorkspaceIDs(ctx context.Context, workspaceIDs []string, limit int) ([]*model.Booking, error)
	StatsByWorkspaceIDs(ctx context.Context, workspaceIDs []string) (*model.BookingStats, error)
}

type workspaceService struct {
	repo      repository.WorkspaceRepository
	bookings  BookingReader
	validator *validator.WorkspaceValidator
	cache     *querycache.Cache
	publisher events.Publisher
	cfg       *config.Config
}

func NewWorkspaceService(
	repo repository.WorkspaceRepository,
	bookings BookingReader,
	validator *validator.WorkspaceValidator,
	cache *querycache.Cache,
	publisher events.Publisher,
	cfg *config.Config,
) WorkspaceService {
	return &workspaceService{
		repo:      repo,
		bookings:  bookings,
		validator: validator,
		cache:     cache,
		publisher: publisher,
		cfg:       cfg,
	}
}

func (s *workspaceService) Create(ctx context.Context, ownerID string, ws *model.Workspace) error {
	if ownerID == "" {
		return apperrors.Unauthorized("Authentication required")
	}
	ws.OwnerID = ownerID

	s.sanitize(ws)
	s.applyDefaultsForNewWorkspace(ws)

	if err := s.validator.Validate(ws); err != nil {
		s.cfg.Log.Warn("Workspace validation failed",
			"name", ws.Name,
			"owner_id", ownerID,
			"error", err,
		)
		return validationError("Workspace validation failed", err)
	}

	if err := s.repo.Create(ctx, ws); err != nil {
		s.cfg.Log.ErrorContext(ctx, "Failed to create workspace",
			"name", ws.Name,
			"owner_id", ownerID,
			"error", err,
		)
		return apperrors.Persistence("create workspace", err)
	}

	s.invalidate(ownerID)

	s.cfg.Log.Info("Workspace created successfully",
		"id", ws.ID,
		"name", ws.Name,
		"city", ws.City,
		"owner_id", ownerID,
		"plans", len(ws.Plans),
	)

	return nil
}

func (s *workspaceService) GetByID(ctx context.Context, id string) (*model.Workspace, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Workspace ID cannot be empty")
	}

	ws, err := querycache.Load(ctx, s.cache, itemKey(id), func(ctx context.Context) (*model.Workspace, error) {
		return s.repo.FindByID(ctx, id)
	})
	if err != nil {
		return nil, s.mapRepoError(err, id, "retrieve workspace")
	}

	return ws, nil
}

func (s *workspaceService) Search(ctx context.Context, filter model.WorkspaceFilter, limit int, offset int64) ([]*model.Workspace, int64, error) {
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	filter, err := s.normalizeFilter(filter)
	if err != nil {
		return nil, 0, err
	}

	type page struct {
		items []*model.Workspace
		total int64
	}

	key := querycache.NewKey(searchKind,
		filter.Location, strings.Join(filter.Amenities, ","),
		fmtPtr(filter.MinPrice), fmtPtr(filter.MaxPrice), fmtPtr(filter.Premium),
		filter.OwnerID, filter.Sort, limit, offset,
	)

	result, err := querycache.Load(ctx, s.cache, key, func(ctx context.Context) (page, error) {
		var p page
		var errCount, errFind error
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			p.total, errCount = s.repo.Count(ctx, filter)
		}()
		go func() {
			defer wg.Done()
			p.items, errFind = s.repo.Search(ctx, filter, limit, offset)
		}()
		wg.Wait()
		return p, errors.Join(errCount, errFind)
	})
	if err != nil {
		s.cfg.Log.ErrorContext(ctx, "Failed to search workspaces",
			"location", filter.Location,
			"amenities", filter.Amenities,
			"limit", limit,
			"offset", offset,
			"error", err,
		)
		return nil, 0, apperrors.Persistence("search workspaces", err)
	}

	s.cfg.Log.Debug("Workspace search completed",
		"location", filter.Location,
		"amenities", filter.Amenities,
		"results_count", len(result.items),
		"total", result.total,
	)

	return result.items, result.total, nil
}

func (s *workspaceService) Featured(ctx context.Context) ([]*model.Workspace, error) {
	premium := true
	items, _, err := s.Search(ctx, model.WorkspaceFilter{Premium: &premium, Sort: model.SortByRating}, featuredLimit, 0)
	return items, err
}

func (s *workspaceService) ListMine(ctx context.Context, ownerID string) ([]*model.Workspace, error) {
	if ownerID == "" {
		return nil, apperrors.Unauthorized("Authentication required")
	}

	items, err := querycache.Load(ctx, s.cache, ownerKey(ownerID), s.fetchOwned(ownerID))
	if err != nil {
		s.cfg.Log.ErrorContext(ctx, "Failed to list owner workspaces", "owner_id", ownerID, "error", err)
		return nil, apperrors.Persistence("retrieve workspaces", err)
	}
	return items, nil
}

func (s *workspaceService) fetchOwned(ownerID string) func(ctx context.Context) ([]*model.Workspace, error) {
	return func(ctx context.Context) ([]*model.Workspace, error) {
		return s.repo.FindByOwner(ctx, ownerID)
	}
}

func (s *workspaceService) Plans(ctx context.Context, id string) ([]checkout.Plan, error) {
	ws, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return ws.Plans, nil
}

func (s *workspaceService) Update(ctx context.Context, ownerID, id string, updates *model.WorkspaceUpdate) (*model.Workspace, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Workspace ID cannot be empty")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err, id, "check workspace existence")
	}
	if existing.OwnerID != ownerID {
		return nil, apperrors.Forbidden("Only the owner can edit this workspace")
	}

	s.sanitizeUpdate(updates)
	if err := s.validator.ValidateUpdate(updates); err != nil {
		return nil, validationError("Workspace validation failed", err)
	}

	merged := mergeWorkspaceUpdates(existing, updates)
	if err := s.validator.Validate(merged); err != nil {
		s.cfg.Log.Warn("Workspace validation failed",
			"id", id,
			"name", merged.Name,
			"error", err,
		)
		return nil, validationError("Workspace validation failed", err)
	}

	if err := s.repo.Update(ctx, id, updates); err != nil {
		if errors.Is(err, workspaceserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Workspace", id)
		}
		s.cfg.Log.ErrorContext(ctx, "Failed to update workspace",
			"id", id,
			"error", err,
		)
		return nil, apperrors.Persistence("update workspace", err)
	}

	s.invalidate(ownerID, id)

	s.cfg.Log.Info("Workspace updated successfully",
		"id", id,
		"name", merged.Name,
	)

	return merged, nil
}

// Delete removes the listing only once the store confirms it. Any failure
// leaves the listing, the cache and subscribers untouched.
func (s *workspaceService) Delete(ctx context.Context, ownerID, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Workspace ID cannot be empty")
	}

	var deleted *model.Workspace
	err := s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		existing, err := s.repo.FindByID(sessCtx, id)
		if err != nil {
			return err
		}
		if existing.OwnerID != ownerID {
			return apperrors.Forbidden("Only the owner can delete this workspace")
		}
		if err := s.repo.Delete(sessCtx, id); err != nil {
			return err
		}
		deleted = existing
		return nil
	})
	if err != nil {
		if apperrors.IsAppError(err) {
			return err
		}
		mapped := s.mapRepoError(err, id, "delete workspace")
		s.cfg.Log.ErrorContext(ctx, "Failed to delete workspace",
			"id", id,
			"owner_id", ownerID,
			"error", err,
		)
		return mapped
	}

	s.invalidate(deleted.OwnerID, id)

	if err := s.publisher.PublishWorkspace(ctx, events.TypeWorkspaceDeleted, events.WorkspaceEvent{
		WorkspaceID: deleted.ID,
		OwnerID:     deleted.OwnerID,
		Name:        deleted.Name,
		City:        deleted.City,
	}); err != nil {
		s.cfg.Log.WarnContext(ctx, "Failed to publish workspace event",
			"event_type", events.TypeWorkspaceDeleted,
			"id", id,
			"error", err,
		)
	}

	s.cfg.Log.Info("Workspace deleted successfully", "id", id, "owner_id", ownerID)

	return nil
}

func (s *workspaceService) Dashboard(ctx context.Context, ownerID string) (*model.Dashboard, error) {
	workspaces, err := s.ListMine(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	dashboard := &model.Dashboard{
		TotalWorkspaces: len(workspaces),
		Workspaces:      workspaces,
		RecentBookings:  []*model.Booking{},
	}

	ids := make([]string, 0, len(workspaces))
	for _, ws := range workspaces {
		ids = append(ids, ws.ID)
		dashboard.TotalViews += int64(ws.ReviewCount)
	}
	if len(ids) == 0 {
		return dashboard, nil
	}

	var recent []*model.Booking
	var stats *model.BookingStats
	var errRecent, errStats error
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		recent, errRecent = s.bookings.FindByWorkspaceIDs(ctx, ids, dashboardRecentLimit)
	}()
	go func() {
		defer wg.Done()
		stats, errStats = s.bookings.StatsByWorkspaceIDs(ctx, ids)
	}()
	wg.Wait()

	if err := errors.Join(errRecent, errStats); err != nil {
		s.cfg.Log.ErrorContext(ctx, "Failed to load dashboard bookings",
			"owner_id", ownerID,
			"workspaces", len(ids),
			"error", err,
		)
		return nil, apperrors.Persistence("load dashboard", err)
	}

	dashboard.RecentBookings = recent
	dashboard.ApplyStats(stats)

	return dashboard, nil
}

// WatchDashboard sends the owner's dashboard now and again each time the
// owner's listings are fetched afresh, e.g. after one of them changes. The
// channel closes when ctx ends or stop is called.
func (s *workspaceService) WatchDashboard(ctx context.Context, ownerID string) (<-chan *model.Dashboard, func(), error) {
	first, err := s.Dashboard(ctx, ownerID)
	if err != nil {
		return nil, nil, err
	}

	changed := make(chan struct{}, 1)
	unsubscribe := s.cache.Subscribe(ownerKey(ownerID), func(_ any, err error) {
		if err != nil {
			return
		}
		select {
		case changed <- struct{}{}:
		default:
		}
	})

	done := make(chan struct{})
	var once sync.Once
	stop := func() {
		once.Do(func() {
			unsubscribe()
			close(done)
		})
	}

	out := make(chan *model.Dashboard, 1)
	out <- first
	go func() {
		defer close(out)
		defer stop()
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case <-changed:
			}

			d, err := s.Dashboard(ctx, ownerID)
			if err != nil {
				s.cfg.Log.WarnContext(ctx, "Failed to rebuild dashboard", "owner_id", ownerID, "error", err)
				continue
			}
			select {
			case out <- d:
			case <-done:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, stop, nil
}

// invalidate drops cached searches and the owner's listings after a write.
// Watched owner listings are fetched again so dashboards see the change.
func (s *workspaceService) invalidate(ownerID string, ids ...string) {
	s.cache.Invalidate(searchKind)
	for _, id := range ids {
		s.cache.InvalidateKey(itemKey(id))
	}

	key := ownerKey(ownerID)
	s.cache.InvalidateKey(key)
	if s.cache.Subscribers(key) == 0 {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ReadTimeout)
		defer cancel()
		if _, err := querycache.Refetch(ctx, s.cache, key, s.fetchOwned(ownerID)); err != nil {
			s.cfg.Log.Warn("Failed to refresh watched listings", "owner_id", ownerID, "error", err)
		}
	}()
}

func (s *workspaceService) mapRepoError(err error, id, operation string) error {
	switch {
	case errors.Is(err, workspaceserrors.ErrNotFound):
		return apperrors.NotFoundWithID("Workspace", id)
	case errors.Is(err, workspaceserrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid workspace ID format")
	default:
		s.cfg.Log.Error("Workspace store failure",
			"id", id,
			"operation", operation,
			"error", err,
		)
		return apperrors.Persistence(operation, err)
	}
}

func (s *workspaceService) normalizeFilter(f model.WorkspaceFilter) (model.WorkspaceFilter, error) {
	f.Location = sanitizer.TrimAndNormalize(f.Location)
	f.Amenities = sanitizer.NormalizeAmenities(f.Amenities)
	for _, a := range f.Amenities {
		if !isKnownAmenity(a) {
			return f, apperrors.InvalidInput("unknown amenity: " + a)
		}
	}
	if f.MinPrice != nil && f.MaxPrice != nil && *f.MinPrice > *f.MaxPrice {
		return f, apperrors.InvalidInput("min_price cannot exceed max_price")
	}
	switch f.Sort {
	case "", model.SortByCreatedAt, model.SortByRating:
	default:
		return f, apperrors.InvalidInput("sort must be one of: rating created_at")
	}
	return f, nil
}

func (s *workspaceService) sanitize(ws *model.Workspace) {
	ws.Name = sanitizer.NormalizeName(ws.Name)
	ws.City = sanitizer.NormalizeCity(ws.City)
	ws.Area = sanitizer.TrimAndNormalize(ws.Area)
	ws.Address = sanitizer.TrimAndNormalize(ws.Address)
	ws.Description = strings.TrimSpace(ws.Description)
	ws.Amenities = sanitizer.NormalizeAmenities(ws.Amenities)
	ws.Images = sanitizer.NormalizeImages(ws.Images)
	ws.Rating = sanitizer.NormalizeRating(ws.Rating)
	ws.ContactEmail = sanitizer.NormalizeEmail(ws.ContactEmail)
	ws.ContactPhone = s.normalizePhone(ws.ContactPhone)
}

func (s *workspaceService) sanitizeUpdate(updates *model.WorkspaceUpdate) {
	if updates.Name != "" {
		updates.Name = sanitizer.NormalizeName(updates.Name)
	}
	if updates.City != "" {
		updates.City = sanitizer.NormalizeCity(updates.City)
	}
	if updates.Area != "" {
		updates.Area = sanitizer.TrimAndNormalize(updates.Area)
	}
	if updates.Address != "" {
		updates.Address = sanitizer.TrimAndNormalize(updates.Address)
	}
	if updates.Amenities != nil {
		normalized := sanitizer.NormalizeAmenities(*updates.Amenities)
		updates.Amenities = &normalized
	}
	if updates.Images != nil {
		normalized := sanitizer.NormalizeImages(*updates.Images)
		updates.Images = &normalized
	}
	if updates.ContactEmail != nil {
		normalized := sanitizer.NormalizeEmail(*updates.ContactEmail)
		updates.ContactEmail = &normalized
	}
	if updates.ContactPhone != nil {
		normalized := s.normalizePhone(*updates.ContactPhone)
		updates.ContactPhone = &normalized
	}
}

// normalizePhone keeps unparseable input so e164 validation reports it.
func (s *workspaceService) normalizePhone(phone string) string {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return ""
	}
	if normalized := sanitizer.NormalizePhone(phone, s.cfg.DefaultPhoneRegion); normalized != "" {
		return normalized
	}
	return phone
}

func (s *workspaceService) applyDefaultsForNewWorkspace(ws *model.Workspace) {
	if ws.Amenities == nil {
		ws.Amenities = []string{}
	}
	if ws.Images == nil {
		ws.Images = []string{}
	}
	if len(ws.Plans) == 0 {
		ws.Plans = DefaultPlans(ws)
	}
}

func validationError(message string, err error) error {
	var verrs validation.ValidationErrors
	if errors.As(err, &verrs) {
		return apperrors.Validation(message, verrs.Details())
	}
	return apperrors.Validation(message, map[string]any{"error": err.Error()})
}

func isKnownAmenity(a string) bool {
	for _, known := range validation.Amenities {
		if a == known {
			return true
		}
	}
	return false
}

func fmtPtr[T any](p *T) any {
	if p == nil {
		return "-"
	}
	return *p
}

func mergeWorkspaceUpdates(existing *model.Workspace, updates *model.WorkspaceUpdate) *model.Workspace {
	merged := *existing

	if updates.Name != "" {
		merged.Name = updates.Name
	}
	if updates.City != "" {
		merged.City = updates.City
	}
	if updates.Area != "" {
		merged.Area = updates.Area
	}
	if updates.Address != "" {
		merged.Address = updates.Address
	}
	if updates.Description != nil {
		merged.Description = *updates.Description
	}
	if updates.PricePerHour != nil {
		merged.PricePerHour = updates.PricePerHour
	}
	if updates.PricePerDay != nil {
		merged.PricePerDay = *updates.PricePerDay
	}
	if updates.PricePerWeek != nil {
		merged.PricePerWeek = updates.PricePerWeek
	}
	if updates.PricePerMonth != nil {
		merged.PricePerMonth = updates.PricePerMonth
	}
	if updates.Capacity != nil {
		merged.Capacity = *updates.Capacity
	}
	if updates.Amenities != nil {
		merged.Amenities = *updates.Amenities
	}
	if updates.Images != nil {
		merged.Images = *updates.Images
	}
	if updates.IsPremium != nil {
		merged.IsPremium = *updates.IsPremium
	}
	if updates.HasVideoTour != nil {
		merged.HasVideoTour = *updates.HasVideoTour
	}
	if updates.ContactEmail != nil {
		merged.ContactEmail = *updates.ContactEmail
	}
	if updates.ContactPhone != nil {
		merged.ContactPhone = *updates.ContactPhone
	}

	merged.ID = existing.ID
	merged.OwnerID = existing.OwnerID
	merged.CreatedAt = existing.CreatedAt

	return &merged
}

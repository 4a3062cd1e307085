package service

import (
	"context"
	"errors"
	"strings"

	profileserrors "bookmyworkspace/internal/profiles/errors"
	"bookmyworkspace/internal/profiles/repository"
	"bookmyworkspace/pkg/auth"
	"bookmyworkspace/pkg/config"
	apperrors "bookmyworkspace/pkg/errors"
	"bookmyworkspace/pkg/model"
	"bookmyworkspace/pkg/sanitizer"
	"bookmyworkspace/pkg/validation"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const invalidCredentials = "Invalid email or password"

type ProfileService interface {
	Signup(ctx context.Context, req *model.SignupRequest) (*model.AuthResponse, error)
	Login(ctx context.Context, req *model.LoginRequest) (*model.AuthResponse, error)
	Logout(ctx context.Context, claims *auth.Claims) error
	Get(ctx context.Context, userID string) (*model.Profile, error)
	Update(ctx context.Context, userID string, updates *model.ProfileUpdate) (*model.Profile, error)
}

// TokenRevoker invalidates a session token before it expires.
type TokenRevoker interface {
	Revoke(ctx context.Context, claims *auth.Claims) error
}

type profileService struct {
	repo       repository.ProfileRepository
	issuer     *auth.Issuer
	revoker    TokenRevoker
	validate   *validator.Validate
	cfg        *config.Config
	bcryptCost int
}

func NewProfileService(repo repository.ProfileRepository, issuer *auth.Issuer, revoker TokenRevoker, cfg *config.Config) (ProfileService, error) {
	v, err := validation.New()
	if err != nil {
		return nil, err
	}
	return &profileService{
		repo:       repo,
		issuer:     issuer,
		revoker:    revoker,
		validate:   v,
		cfg:        cfg,
		bcryptCost: bcrypt.DefaultCost,
	}, nil
}

func (s *profileService) Signup(ctx context.Context, req *model.SignupRequest) (*model.AuthResponse, error) {
	req.FullName = sanitizer.NormalizeName(req.FullName)
	req.Email = sanitizer.NormalizeEmail(req.Email)
	req.Phone = s.normalizePhone(req.Phone)

	if err := validation.Struct(s.validate, req); err != nil {
		return nil, validationError("Invalid signup request", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, apperrors.Internal("Failed to secure password", err)
	}

	profile := &model.Profile{
		ID:           uuid.NewString(),
		FullName:     req.FullName,
		Email:        req.Email,
		Phone:        req.Phone,
		PasswordHash: string(hash),
	}
	if err := s.repo.Create(ctx, profile); err != nil {
		if errors.Is(err, profileserrors.ErrEmailTaken) {
			return nil, apperrors.Conflict("An account with this email already exists")
		}
		s.cfg.Log.ErrorContext(ctx, "Failed to create profile", "email", profile.Email, "error", err)
		return nil, apperrors.Persistence("create profile", err)
	}

	s.cfg.Log.Info("Profile created", "id", profile.ID, "email", profile.Email)
	return s.session(profile)
}

// Login fails the same way for an unknown email and a wrong password.
func (s *profileService) Login(ctx context.Context, req *model.LoginRequest) (*model.AuthResponse, error) {
	req.Email = sanitizer.NormalizeEmail(req.Email)
	if err := validation.Struct(s.validate, req); err != nil {
		return nil, validationError("Invalid login request", err)
	}

	profile, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, profileserrors.ErrNotFound) {
			return nil, apperrors.Unauthorized(invalidCredentials)
		}
		s.cfg.Log.ErrorContext(ctx, "Failed to load profile for login", "email", req.Email, "error", err)
		return nil, apperrors.Persistence("login", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(req.Password)); err != nil {
		s.cfg.Log.Debug("Login rejected", "email", req.Email)
		return nil, apperrors.Unauthorized(invalidCredentials)
	}

	return s.session(profile)
}

func (s *profileService) Logout(ctx context.Context, claims *auth.Claims) error {
	if err := s.revoker.Revoke(ctx, claims); err != nil {
		if errors.Is(err, auth.ErrInvalidToken) {
			return apperrors.Unauthorized("Invalid session")
		}
		s.cfg.Log.ErrorContext(ctx, "Failed to revoke token", "user_id", claims.UserID, "error", err)
		return apperrors.Unavailable("session store")
	}
	s.cfg.Log.Info("Profile logged out", "id", claims.UserID)
	return nil
}

func (s *profileService) Get(ctx context.Context, userID string) (*model.Profile, error) {
	profile, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, s.mapRepoError(err, userID, "get profile")
	}
	return profile, nil
}

func (s *profileService) Update(ctx context.Context, userID string, updates *model.ProfileUpdate) (*model.Profile, error) {
	if updates.FullName == nil && updates.Phone == nil && updates.AvatarURL == nil {
		return nil, apperrors.InvalidInput("No fields to update")
	}
	if updates.FullName != nil {
		name := sanitizer.NormalizeName(*updates.FullName)
		updates.FullName = &name
	}
	if updates.Phone != nil {
		phone := s.normalizePhone(*updates.Phone)
		updates.Phone = &phone
	}
	if updates.AvatarURL != nil {
		url := sanitizer.NormalizeURL(*updates.AvatarURL)
		if url == "" && strings.TrimSpace(*updates.AvatarURL) != "" {
			return nil, apperrors.Validation("Invalid profile update", map[string]any{"avatar_url": "must be an http(s) URL"})
		}
		updates.AvatarURL = &url
	}

	if err := validation.Struct(s.validate, updates); err != nil {
		return nil, validationError("Invalid profile update", err)
	}

	if err := s.repo.Update(ctx, userID, updates); err != nil {
		return nil, s.mapRepoError(err, userID, "update profile")
	}
	return s.Get(ctx, userID)
}

func (s *profileService) session(profile *model.Profile) (*model.AuthResponse, error) {
	token, expiresAt, err := s.issuer.Issue(profile.ID, profile.Email)
	if err != nil {
		return nil, apperrors.Internal("Failed to issue session", err)
	}
	return &model.AuthResponse{Token: token, ExpiresAt: expiresAt, Profile: profile}, nil
}

// normalizePhone keeps unparseable input so validation reports it.
func (s *profileService) normalizePhone(phone string) string {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return ""
	}
	if normalized := sanitizer.NormalizePhone(phone, s.cfg.DefaultPhoneRegion); normalized != "" {
		return normalized
	}
	return phone
}

func (s *profileService) mapRepoError(err error, id, operation string) error {
	if errors.Is(err, profileserrors.ErrNotFound) {
		return apperrors.NotFoundWithID("Profile", id)
	}
	s.cfg.Log.Error("Profile repository failure", "operation", operation, "id", id, "error", err)
	return apperrors.Persistence(operation, err)
}

func validationError(message string, err error) error {
	var verrs validation.ValidationErrors
	if errors.As(err, &verrs) {
		return apperrors.Validation(message, verrs.Details())
	}
	return apperrors.Validation(message, map[string]any{"error": err.Error()})
}

package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	profileserrors "bookmyworkspace/internal/profiles/errors"
	"bookmyworkspace/pkg/auth"
	"bookmyworkspace/pkg/config"
	apperrors "bookmyworkspace/pkg/errors"
	"bookmyworkspace/pkg/logger"
	"bookmyworkspace/pkg/model"

	"golang.org/x/crypto/bcrypt"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type memoryProfileRepository struct {
	byID    map[string]*model.Profile
	failErr error
}

func newMemoryProfileRepository() *memoryProfileRepository {
	return &memoryProfileRepository{byID: make(map[string]*model.Profile)}
}

func (m *memoryProfileRepository) Create(_ context.Context, p *model.Profile) error {
	if m.failErr != nil {
		return m.failErr
	}
	for _, existing := range m.byID {
		if existing.Email == p.Email {
			return fmt.Errorf("%w: %s", profileserrors.ErrEmailTaken, p.Email)
		}
	}
	cp := *p
	m.byID[p.ID] = &cp
	return nil
}

func (m *memoryProfileRepository) FindByID(_ context.Context, id string) (*model.Profile, error) {
	p, ok := m.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", profileserrors.ErrNotFound, id)
	}
	cp := *p
	return &cp, nil
}

func (m *memoryProfileRepository) FindByEmail(_ context.Context, email string) (*model.Profile, error) {
	if m.failErr != nil {
		return nil, m.failErr
	}
	for _, p := range m.byID {
		if p.Email == email {
			cp := *p
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", profileserrors.ErrNotFound, email)
}

func (m *memoryProfileRepository) Update(_ context.Context, id string, u *model.ProfileUpdate) error {
	p, ok := m.byID[id]
	if !ok {
		return fmt.Errorf("%w: %s", profileserrors.ErrNotFound, id)
	}
	if u.FullName != nil {
		p.FullName = *u.FullName
	}
	if u.Phone != nil {
		p.Phone = *u.Phone
	}
	if u.AvatarURL != nil {
		p.AvatarURL = *u.AvatarURL
	}
	return nil
}

type mockRevoker struct {
	revokeFunc func(ctx context.Context, claims *auth.Claims) error
}

func (m *mockRevoker) Revoke(ctx context.Context, claims *auth.Claims) error {
	return m.revokeFunc(ctx, claims)
}

func newTestService(t *testing.T, repo *memoryProfileRepository, revoker TokenRevoker) (ProfileService, *auth.Issuer) {
	t.Helper()
	issuer, err := auth.NewIssuer(testSecret, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	cfg := &config.Config{Log: logger.Discard(), DefaultPhoneRegion: "IN"}
	svc, err := NewProfileService(repo, issuer, revoker, cfg)
	if err != nil {
		t.Fatalf("NewProfileService: %v", err)
	}
	svc.(*profileService).bcryptCost = bcrypt.MinCost
	return svc, issuer
}

func signupRequest() *model.SignupRequest {
	return &model.SignupRequest{
		FullName: "  Asha   Rao ",
		Email:    "Asha@Example.com ",
		Password: "correct horse",
		Phone:    "081234 56789",
	}
}

func TestSignup(t *testing.T) {
	repo := newMemoryProfileRepository()
	svc, issuer := newTestService(t, repo, nil)

	resp, err := svc.Signup(context.Background(), signupRequest())
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}
	p := resp.Profile
	if p.FullName != "Asha Rao" || p.Email != "asha@example.com" {
		t.Errorf("expected sanitized profile, got %+v", p)
	}
	if p.Phone != "+918123456789" {
		t.Errorf("expected E.164 phone, got %q", p.Phone)
	}
	if p.PasswordHash == "" || p.PasswordHash == "correct horse" {
		t.Error("expected hashed password")
	}

	claims, err := issuer.Parse(resp.Token)
	if err != nil {
		t.Fatalf("issued token does not parse: %v", err)
	}
	if claims.UserID != p.ID || claims.Email != p.Email {
		t.Errorf("unexpected claims %+v", claims)
	}
}

func TestSignup_Errors(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*model.SignupRequest)
		repoErr  error
		wantCode string
	}{
		{"short password", func(r *model.SignupRequest) { r.Password = "short" }, nil, apperrors.CodeValidation},
		{"bad email", func(r *model.SignupRequest) { r.Email = "not-an-email" }, nil, apperrors.CodeValidation},
		{"bad phone", func(r *model.SignupRequest) { r.Phone = "12" }, nil, apperrors.CodeValidation},
		{"store down", func(*model.SignupRequest) {}, errors.New("connection refused"), apperrors.CodePersistence},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMemoryProfileRepository()
			repo.failErr = tt.repoErr
			svc, _ := newTestService(t, repo, nil)
			req := signupRequest()
			tt.mutate(req)
			_, err := svc.Signup(context.Background(), req)
			if !apperrors.HasCode(err, tt.wantCode) {
				t.Fatalf("expected %s, got %v", tt.wantCode, err)
			}
		})
	}
}

func TestSignup_DuplicateEmail(t *testing.T) {
	svc, _ := newTestService(t, newMemoryProfileRepository(), nil)
	if _, err := svc.Signup(context.Background(), signupRequest()); err != nil {
		t.Fatal(err)
	}
	_, err := svc.Signup(context.Background(), signupRequest())
	if !apperrors.HasCode(err, apperrors.CodeConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestLogin(t *testing.T) {
	svc, _ := newTestService(t, newMemoryProfileRepository(), nil)
	if _, err := svc.Signup(context.Background(), signupRequest()); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  bool
	}{
		{"ok, email case folded", "ASHA@example.com", "correct horse", false},
		{"wrong password", "asha@example.com", "wrong horse", true},
		{"unknown email", "nobody@example.com", "correct horse", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := svc.Login(context.Background(), &model.LoginRequest{Email: tt.email, Password: tt.password})
			if tt.wantErr {
				if !apperrors.HasCode(err, apperrors.CodeUnauthorized) {
					t.Fatalf("expected unauthorized, got %v", err)
				}
				if apperrors.AsAppError(err).Message != invalidCredentials {
					t.Errorf("expected uniform message, got %q", apperrors.AsAppError(err).Message)
				}
				return
			}
			if err != nil {
				t.Fatalf("Login: %v", err)
			}
			if resp.Token == "" {
				t.Error("expected token")
			}
		})
	}
}

func TestLogout(t *testing.T) {
	claims := &auth.Claims{UserID: "u1"}
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{"ok", nil, ""},
		{"invalid token", auth.ErrInvalidToken, apperrors.CodeUnauthorized},
		{"store down", errors.New("redis: connection refused"), apperrors.CodeUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got *auth.Claims
			revoker := &mockRevoker{revokeFunc: func(_ context.Context, c *auth.Claims) error {
				got = c
				return tt.err
			}}
			svc, _ := newTestService(t, newMemoryProfileRepository(), revoker)
			err := svc.Logout(context.Background(), claims)
			if tt.wantCode == "" {
				if err != nil {
					t.Fatalf("unexpected error %v", err)
				}
				if got != claims {
					t.Error("expected claims passed to revoker")
				}
				return
			}
			if !apperrors.HasCode(err, tt.wantCode) {
				t.Fatalf("expected %s, got %v", tt.wantCode, err)
			}
		})
	}
}

func TestUpdate(t *testing.T) {
	svc, _ := newTestService(t, newMemoryProfileRepository(), nil)
	resp, err := svc.Signup(context.Background(), signupRequest())
	if err != nil {
		t.Fatal(err)
	}
	id := resp.Profile.ID

	name := " Asha  R. "
	got, err := svc.Update(context.Background(), id, &model.ProfileUpdate{FullName: &name})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.FullName != "Asha R." {
		t.Errorf("expected sanitized name, got %q", got.FullName)
	}

	if _, err := svc.Update(context.Background(), id, &model.ProfileUpdate{}); !apperrors.HasCode(err, apperrors.CodeInvalidInput) {
		t.Errorf("expected invalid input for empty update, got %v", err)
	}

	if _, err := svc.Update(context.Background(), "missing", &model.ProfileUpdate{FullName: &name}); !apperrors.HasCode(err, apperrors.CodeNotFound) {
		t.Errorf("expected not found, got %v", err)
	}

	avatar := "cdn.example.com/Asha.png"
	got, err = svc.Update(context.Background(), id, &model.ProfileUpdate{AvatarURL: &avatar})
	if err != nil {
		t.Fatalf("Update avatar: %v", err)
	}
	if got.AvatarURL != "https://cdn.example.com/Asha.png" {
		t.Errorf("expected normalized avatar, got %q", got.AvatarURL)
	}

	bad := "javascript:alert(1)"
	if _, err := svc.Update(context.Background(), id, &model.ProfileUpdate{AvatarURL: &bad}); !apperrors.HasCode(err, apperrors.CodeValidation) {
		t.Errorf("expected validation error for non-web avatar, got %v", err)
	}
}

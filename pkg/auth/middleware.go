package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	apperrors "bookmyworkspace/pkg/errors"
	httputil "bookmyworkspace/pkg/http"
	"bookmyworkspace/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
)

type contextKey string

const claimsKey contextKey = "auth_claims"

// Authenticator guards httprouter handles with bearer tokens.
type Authenticator struct {
	issuer  *Issuer
	revoked RevocationStore
	log     *logger.Logger
}

func NewAuthenticator(issuer *Issuer, revoked RevocationStore, log *logger.Logger) *Authenticator {
	return &Authenticator{issuer: issuer, revoked: revoked, log: log}
}

func (a *Authenticator) Issuer() *Issuer {
	return a.issuer
}

// Require rejects requests without a valid, unrevoked token.
func (a *Authenticator) Require(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		claims, err := a.Authenticate(r)
		if err != nil {
			a.log.Debug("request not authenticated", "path", r.URL.Path, "error", err)
			if writeErr := httputil.WriteError(w, apperrors.Unauthorized(unauthorizedMessage(err))); writeErr != nil {
				a.log.Error("failed to write unauthorized response", "error", writeErr)
			}
			return
		}
		next(w, r.WithContext(WithClaims(r.Context(), claims)), ps)
	}
}

// Optional attaches claims when a valid token is present and never rejects.
func (a *Authenticator) Optional(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		if claims, err := a.Authenticate(r); err == nil {
			r = r.WithContext(WithClaims(r.Context(), claims))
		}
		next(w, r, ps)
	}
}

func (a *Authenticator) Authenticate(r *http.Request) (*Claims, error) {
	token := BearerToken(r)
	if token == "" {
		return nil, ErrInvalidToken
	}

	claims, err := a.issuer.Parse(token)
	if err != nil {
		return nil, err
	}

	revoked, err := a.revoked.IsRevoked(r.Context(), claims.ID)
	if err != nil {
		a.log.Error("failed to check token revocation", "error", err)
		return nil, err
	}
	if revoked {
		return nil, ErrRevokedToken
	}
	return claims, nil
}

// Revoke invalidates the token until its natural expiry.
func (a *Authenticator) Revoke(ctx context.Context, claims *Claims) error {
	if claims == nil || claims.ExpiresAt == nil {
		return ErrInvalidToken
	}
	return a.revoked.Revoke(ctx, claims.ID, claims.ExpiresAt.Time)
}

// BearerToken reads the Authorization header. Browsers cannot set headers
// on websocket handshakes, so upgrades may pass ?token= instead.
func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	if websocket.IsWebSocketUpgrade(r) {
		return r.URL.Query().Get("token")
	}
	return ""
}

func unauthorizedMessage(err error) string {
	switch {
	case errors.Is(err, ErrExpiredToken):
		return "Token expired"
	case errors.Is(err, ErrRevokedToken):
		return "Token revoked"
	case errors.Is(err, ErrInvalidToken):
		return "Missing or invalid token"
	default:
		return "Unable to verify token"
	}
}

func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*Claims)
	return claims, ok && claims != nil
}

func UserIDFromContext(ctx context.Context) (string, bool) {
	claims, ok := ClaimsFromContext(ctx)
	if !ok || claims.UserID == "" {
		return "", false
	}
	return claims.UserID, true
}

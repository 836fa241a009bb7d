package auth

import (
	"context"
	"fmt"
	"net/http"

	"github.com/coreos/go-oidc/v3/oidc"

	"ms-engagement/internal/apperrors"
	"ms-engagement/internal/config"
	"ms-engagement/internal/logger"
	"ms-engagement/internal/utils"
)

type contextKey string

const userIDKey contextKey = "user_id"

// Authenticator resolves the caller from a locally issued JWT and, when an issuer is
// configured, from an OIDC ID token.
type Authenticator struct {
	secret     string
	cookieName string
	verifier   *oidc.IDTokenVerifier
	logger     *logger.Logger
}

func NewAuthenticator(ctx context.Context, cfg config.AuthConfig, log *logger.Logger) (*Authenticator, error) {
	a := &Authenticator{
		secret:     cfg.JWTSecret,
		cookieName: cfg.CookieName,
		logger:     log,
	}

	if cfg.OIDCIssuer != "" {
		provider, err := oidc.NewProvider(ctx, cfg.OIDCIssuer)
		if err != nil {
			return nil, fmt.Errorf("failed to create OIDC provider: %w", err)
		}
		a.verifier = provider.Verifier(&oidc.Config{SkipClientIDCheck: true})
		log.Info("AUTH", fmt.Sprintf("OIDC verification enabled for issuer %s", cfg.OIDCIssuer))
	}

	return a, nil
}

func (a *Authenticator) CookieName() string {
	return a.cookieName
}

func (a *Authenticator) resolve(r *http.Request) (string, error) {
	raw, err := ExtractTokenFromRequest(r, a.cookieName)
	if err != nil {
		return "", fmt.Errorf("%v: %w", err, apperrors.ErrUnauthorized)
	}

	userID, err := ParseToken(a.secret, raw)
	if err == nil {
		return userID, nil
	}

	if a.verifier != nil {
		idToken, verr := a.verifier.Verify(r.Context(), raw)
		if verr == nil {
			var claims struct {
				Sub string `json:"sub"`
			}
			if cerr := idToken.Claims(&claims); cerr == nil && claims.Sub != "" {
				return claims.Sub, nil
			}
		}
	}

	return "", err
}

// Require rejects requests without a valid token with 401.
func (a *Authenticator) Require() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := a.resolve(r)
			if err != nil {
				a.logger.LogSecurity("AUTH_REJECTED", fmt.Sprintf("%s %s: %v", r.Method, r.URL.Path, err))
				utils.WriteError(w, "Unauthorized - Invalid or missing token", err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}

func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// Helper to extract user ID in handlers
func UserID(ctx context.Context) string {
	if uid, ok := ctx.Value(userIDKey).(string); ok {
		return uid
	}
	return ""
}

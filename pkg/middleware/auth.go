package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
)

// TokenVerifier validates a raw bearer token. *oidc.IDTokenVerifier satisfies it.
type TokenVerifier interface {
	Verify(ctx context.Context, rawToken string) (*oidc.IDToken, error)
}

type subjectKey struct{}

// NewVerifier discovers the issuer's OIDC configuration and returns a verifier
// for tokens issued to cfg.ClientID.
func NewVerifier(ctx context.Context, cfg *AuthConfig) (*oidc.IDTokenVerifier, error) {
	provider, err := oidc.NewProvider(ctx, cfg.IssuerURL)
	if err != nil {
		return nil, fmt.Errorf("oidc provider %s: %w", cfg.IssuerURL, err)
	}
	return provider.Verifier(&oidc.Config{ClientID: cfg.ClientID}), nil
}

// Auth returns middleware that requires a valid "Authorization: Bearer" token.
// Preflight requests pass through. The token subject is available to handlers
// through Subject.
func Auth(verifier TokenVerifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || raw == "" {
				unauthorized(w, "missing bearer token")
				return
			}

			token, err := verifier.Verify(r.Context(), raw)
			if err != nil {
				logger.Warn("token rejected", "error", err, "uri", r.URL.RequestURI())
				unauthorized(w, "invalid bearer token")
				return
			}

			ctx := context.WithValue(r.Context(), subjectKey{}, token.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Subject returns the authenticated token subject, or "" when auth is disabled.
func Subject(ctx context.Context) string {
	s, _ := ctx.Value(subjectKey{}).(string)
	return s
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", "Bearer")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

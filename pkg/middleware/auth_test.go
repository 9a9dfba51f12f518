package middleware_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/coreos/go-oidc/v3/oidc"

	"github.com/JaimeStill/actigraphy/pkg/middleware"
)

type fakeVerifier struct {
	tokens map[string]string
}

func (f fakeVerifier) Verify(ctx context.Context, raw string) (*oidc.IDToken, error) {
	sub, ok := f.tokens[raw]
	if !ok {
		return nil, errors.New("signature mismatch")
	}
	return &oidc.IDToken{Subject: sub}, nil
}

func TestAuth(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	verifier := fakeVerifier{tokens: map[string]string{"good": "reviewer-1"}}

	var gotSubject string
	handler := middleware.Auth(verifier, logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSubject = middleware.Subject(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name        string
		method      string
		header      string
		wantStatus  int
		wantSubject string
	}{
		{name: "valid token", method: "GET", header: "Bearer good", wantStatus: http.StatusOK, wantSubject: "reviewer-1"},
		{name: "missing header", method: "GET", wantStatus: http.StatusUnauthorized},
		{name: "wrong scheme", method: "GET", header: "Basic good", wantStatus: http.StatusUnauthorized},
		{name: "rejected token", method: "GET", header: "Bearer bad", wantStatus: http.StatusUnauthorized},
		{name: "preflight passes", method: "OPTIONS", wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotSubject = ""
			req := httptest.NewRequest(tt.method, "/subjects", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status: got %d, want %d", rec.Code, tt.wantStatus)
			}
			if gotSubject != tt.wantSubject {
				t.Errorf("subject: got %q, want %q", gotSubject, tt.wantSubject)
			}
			if tt.wantStatus == http.StatusUnauthorized && rec.Header().Get("WWW-Authenticate") != "Bearer" {
				t.Error("missing WWW-Authenticate header")
			}
		})
	}
}

func TestAuthConfigFinalize(t *testing.T) {
	disabled := middleware.AuthConfig{}
	if err := disabled.Finalize(nil); err != nil {
		t.Errorf("disabled auth: unexpected error %v", err)
	}

	missing := middleware.AuthConfig{Enabled: true, ClientID: "actigraphy"}
	if err := missing.Finalize(nil); err == nil {
		t.Error("enabled auth without issuer should fail validation")
	}

	t.Setenv("TEST_AUTH_ENABLED", "true")
	t.Setenv("TEST_AUTH_ISSUER", "https://login.example.com")
	t.Setenv("TEST_AUTH_CLIENT", "actigraphy")

	cfg := middleware.AuthConfig{}
	err := cfg.Finalize(&middleware.AuthEnv{
		Enabled:   "TEST_AUTH_ENABLED",
		IssuerURL: "TEST_AUTH_ISSUER",
		ClientID:  "TEST_AUTH_CLIENT",
	})
	if err != nil {
		t.Fatalf("finalize failed: %v", err)
	}
	if !cfg.Enabled || cfg.IssuerURL != "https://login.example.com" || cfg.ClientID != "actigraphy" {
		t.Errorf("env overrides not applied: %+v", cfg)
	}
}

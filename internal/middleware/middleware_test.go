package middleware

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"vantage/internal/domain"
	"vantage/internal/domain/models"
	"vantage/internal/httputil"
)

type stubVerifier struct {
	valid map[string]string // token -> user ID
}

func (v *stubVerifier) VerifyToken(token string) (*models.SupabaseClaims, error) {
	userID, ok := v.valid[token]
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	claims := &models.SupabaseClaims{Role: "authenticated"}
	claims.Subject = userID
	return claims, nil
}

func (v *stubVerifier) Close() error { return nil }

func TestAuthMiddleware(t *testing.T) {
	verifier := &stubVerifier{valid: map[string]string{"good": "user-1"}}
	var seen string
	handler := AuthMiddleware(verifier)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = httputil.GetUserID(r)
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name       string
		path       string
		header     string
		wantStatus int
		wantUser   string
	}{
		{"valid token", "/api/companies/1/tree", "Bearer good", http.StatusNoContent, "user-1"},
		{"lowercase scheme", "/api/companies/1/tree", "bearer good", http.StatusNoContent, "user-1"},
		{"missing header", "/api/companies/1/tree", "", http.StatusUnauthorized, ""},
		{"wrong scheme", "/api/companies/1/tree", "Basic good", http.StatusUnauthorized, ""},
		{"bad token", "/api/companies/1/tree", "Bearer bad", http.StatusUnauthorized, ""},
		{"public path", "/health", "", http.StatusNoContent, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = ""
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if seen != tt.wantUser {
				t.Errorf("user = %q, want %q", seen, tt.wantUser)
			}
		})
	}
}

func TestRecovery(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := Recovery(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(errors.New("boom"))
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestMetrics_RecordsStatus(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/companies/{id}/tree", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	rec := httptest.NewRecorder()
	Metrics(mux).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/companies/7/tree", nil))
	if rec.Code != http.StatusTeapot {
		t.Errorf("status = %d, want 418", rec.Code)
	}
}

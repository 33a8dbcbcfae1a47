package middleware

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"achievements/internal/domain/models"
	"achievements/internal/httputil"
)

type stubVerifier struct {
	valid map[string]string // token -> user id
}

func (v *stubVerifier) VerifyToken(token string) (*models.SupabaseClaims, error) {
	userID, ok := v.valid[token]
	if !ok {
		return nil, errors.New("bad token")
	}
	claims := &models.SupabaseClaims{Role: "authenticated"}
	claims.Subject = userID
	return claims, nil
}

func (v *stubVerifier) Close() error { return nil }

func echoUser() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, httputil.GetUserID(r))
	})
}

func TestAuthMiddleware(t *testing.T) {
	verifier := &stubVerifier{valid: map[string]string{"good": "user-1"}}
	handler := AuthMiddleware(verifier, "/health", "/uploads/")(echoUser())

	tests := []struct {
		name       string
		method     string
		path       string
		authHeader string
		wantStatus int
		wantBody   string
	}{
		{"valid token", http.MethodPost, "/api/uploads/images", "Bearer good", http.StatusOK, "user-1"},
		{"missing header", http.MethodPost, "/api/uploads/images", "", http.StatusUnauthorized, ""},
		{"wrong scheme", http.MethodPost, "/api/uploads/images", "Basic good", http.StatusUnauthorized, ""},
		{"bad token", http.MethodPost, "/api/uploads/images", "Bearer bad", http.StatusUnauthorized, ""},
		{"public exact", http.MethodGet, "/health", "", http.StatusOK, ""},
		{"public prefix", http.MethodGet, "/uploads/a.png", "", http.StatusOK, ""},
		{"exact is not a prefix", http.MethodGet, "/healthz", "", http.StatusUnauthorized, ""},
		{"preflight", http.MethodOptions, "/api/uploads/images", "", http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, tt.wantBody, rec.Body.String())
			} else {
				assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
			}
		})
	}
}

func TestRecovery(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := Recovery(logger)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "internal server error")
}

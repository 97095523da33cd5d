package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ersha-ecosystem/storefront/pkg/backend"
)

func mintTestToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("backend-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

type seen struct {
	token, userID, sessionKey string
}

func authProbe(got *seen) http.Handler {
	return Auth(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.token = backend.TokenFromContext(r.Context())
		got.userID = UserIDFromContext(r.Context())
		got.sessionKey = SessionKeyFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))
}

func TestAuthRejectsMissingToken(t *testing.T) {
	for _, header := range []string{"", "Bearer ", "bearer    "} {
		var got seen
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		resp := httptest.NewRecorder()
		authProbe(&got).ServeHTTP(resp, req)
		if resp.Code != http.StatusUnauthorized {
			t.Fatalf("%q: expected 401 got %d", header, resp.Code)
		}
		if !strings.Contains(resp.Body.String(), "UNAUTHORIZED") {
			t.Fatalf("expected error envelope, got %s", resp.Body.String())
		}
	}
}

func TestAuthForwardsJWTAndExtractsUserID(t *testing.T) {
	token := mintTestToken(t, jwt.MapClaims{"user_id": float64(42), "token_type": "access"})
	var got seen
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	authProbe(&got).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if got.token != token {
		t.Fatalf("expected token forwarded to backend context")
	}
	if got.userID != "42" {
		t.Fatalf("expected user id 42 got %q", got.userID)
	}
	if got.sessionKey != "user:42" {
		t.Fatalf("unexpected session key %q", got.sessionKey)
	}
}

func TestAuthFallsBackToSubject(t *testing.T) {
	token := mintTestToken(t, jwt.MapClaims{"sub": "abc-123"})
	var got seen
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	authProbe(&got).ServeHTTP(httptest.NewRecorder(), req)
	if got.userID != "abc-123" {
		t.Fatalf("expected sub claim, got %q", got.userID)
	}
}

func TestAuthAcceptsOpaqueToken(t *testing.T) {
	var got seen
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer opaque-value")
	resp := httptest.NewRecorder()
	authProbe(&got).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if got.token != "opaque-value" {
		t.Fatalf("unexpected token %q", got.token)
	}
	if got.userID != "" {
		t.Fatalf("opaque token must not yield a user id")
	}
	if !strings.HasPrefix(got.sessionKey, "token:") {
		t.Fatalf("expected hashed token session key, got %q", got.sessionKey)
	}
}

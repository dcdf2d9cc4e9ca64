package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret"

func signed(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func protected(t *testing.T) (http.Handler, *UserClaims) {
	var seen UserClaims
	h := Auth(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := GetUserFromContext(r)
		if !ok {
			t.Fatal("claims missing from context")
		}
		seen = user
		w.WriteHeader(http.StatusNoContent)
	}))
	return h, &seen
}

func TestAuthAcceptsBearerToken(t *testing.T) {
	h, seen := protected(t)
	tok := signed(t, testSecret, jwt.MapClaims{
		"email": "jefe@example.com",
		"role":  "supervisor",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})

	req := httptest.NewRequest(http.MethodPost, "/entrada", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if seen.Email != "jefe@example.com" || seen.Role != "supervisor" {
		t.Fatalf("unexpected claims: %+v", seen)
	}
}

func TestAuthAcceptsCookie(t *testing.T) {
	h, _ := protected(t)
	tok := signed(t, testSecret, jwt.MapClaims{"email": "jefe@example.com"})

	req := httptest.NewRequest(http.MethodPost, "/salida", nil)
	req.AddCookie(&http.Cookie{Name: TokenCookie, Value: tok})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
}

func TestAuthRejects(t *testing.T) {
	h, _ := protected(t)
	cases := map[string]string{
		"missing":      "",
		"wrong scheme": "Token abc",
		"bad secret":   "Bearer " + signed(t, "other", jwt.MapClaims{"email": "x@y.z"}),
		"expired":      "Bearer " + signed(t, testSecret, jwt.MapClaims{"email": "x@y.z", "exp": time.Now().Add(-time.Hour).Unix()}),
		"no email":     "Bearer " + signed(t, testSecret, jwt.MapClaims{"role": "supervisor"}),
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/entrada", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rec.Code)
			}
		})
	}
}

func TestOptionalAuth(t *testing.T) {
	var got []string
	h := OptionalAuth(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := GetUserFromContext(r)
		if ok {
			got = append(got, user.Email)
		} else {
			got = append(got, "")
		}
		w.WriteHeader(http.StatusNoContent)
	}))

	good := httptest.NewRequest(http.MethodGet, "/ws", nil)
	good.AddCookie(&http.Cookie{Name: TokenCookie, Value: signed(t, testSecret, jwt.MapClaims{"email": "jefe@example.com"})})
	bad := httptest.NewRequest(http.MethodGet, "/ws", nil)
	bad.Header.Set("Authorization", "Bearer "+signed(t, "other", jwt.MapClaims{"email": "x@y.z"}))
	none := httptest.NewRequest(http.MethodGet, "/ws", nil)

	for _, req := range []*http.Request{good, bad, none} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d", rec.Code)
		}
	}
	if len(got) != 3 || got[0] != "jefe@example.com" || got[1] != "" || got[2] != "" {
		t.Fatalf("unexpected viewers: %v", got)
	}
}

package middleware_test

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ErlanBelekov/contacts-api/internal/auth/token"
	"github.com/ErlanBelekov/contacts-api/internal/identity"
	"github.com/ErlanBelekov/contacts-api/internal/transport/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const testKey = "middleware-test-secret-32-chars!!"

func init() {
	gin.SetMode(gin.TestMode)
}

func newTokens(t *testing.T) *token.Service {
	t.Helper()
	s, err := token.NewService([]byte(testKey))
	if err != nil {
		t.Fatalf("token service: %v", err)
	}
	return s
}

// newEngine builds a minimal gin engine with the Auth middleware protecting GET /protected.
// The handler writes the account ID from context so we can assert it was set.
func newEngine(t *testing.T) *gin.Engine {
	r := gin.New()
	r.GET("/protected", middleware.Auth(newTokens(t), slog.Default()), func(c *gin.Context) {
		id, _ := identity.FromContext(c.Request.Context())
		c.String(http.StatusOK, "%s|%s", id.AccountID, id.Email)
	})
	return r
}

func makeJWT(t *testing.T, key []byte, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
	if err != nil {
		t.Fatalf("sign jwt: %v", err)
	}
	return s
}

func get(t *testing.T, authorization string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	newEngine(t).ServeHTTP(w, req)
	return w
}

func messageOf(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body %q: %v", w.Body.String(), err)
	}
	return body.Message
}

func validToken(t *testing.T) string {
	t.Helper()
	raw, _, err := newTokens(t).Issue("acc-1", "a@b.com", time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	return raw
}

func TestAuth_MissingHeader_Returns401(t *testing.T) {
	w := get(t, "")

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
	if got := messageOf(t, w); got != "Token missing" {
		t.Errorf("message = %q, want Token missing", got)
	}
	if w.Header().Get("WWW-Authenticate") != "Bearer" {
		t.Error("missing WWW-Authenticate challenge")
	}
}

func TestAuth_MalformedHeader_ReturnsTokenMissing(t *testing.T) {
	tok := validToken(t)
	for _, h := range []string{
		"Basic dXNlcjpwYXNz",
		"Bearer",
		"Bearer ",
		tok,
		"Bearer  " + tok,
		"Bearer " + tok + " extra",
		"Token " + tok,
	} {
		w := get(t, h)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("%q: status = %d, want 401", h, w.Code)
			continue
		}
		if got := messageOf(t, w); got != "Token missing" {
			t.Errorf("%q: message = %q, want Token missing", h, got)
		}
	}
}

func TestAuth_SchemeIsCaseInsensitive(t *testing.T) {
	tok := validToken(t)
	for _, scheme := range []string{"bearer", "BEARER", "BeArEr"} {
		if w := get(t, scheme+" "+tok); w.Code != http.StatusOK {
			t.Errorf("%s: status = %d, want 200", scheme, w.Code)
		}
	}
}

func TestAuth_InvalidToken_Returns401(t *testing.T) {
	w := get(t, "Bearer not.a.jwt")

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
	if got := messageOf(t, w); got != "Token invalid" {
		t.Errorf("message = %q, want Token invalid", got)
	}
}

func TestAuth_TamperedToken_Returns401(t *testing.T) {
	tok := []byte(validToken(t))
	i := len(tok) - 5
	if tok[i] == 'A' {
		tok[i] = 'B'
	} else {
		tok[i] = 'A'
	}

	if w := get(t, "Bearer "+string(tok)); w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestAuth_ExpiredToken_Returns401(t *testing.T) {
	tok := makeJWT(t, []byte(testKey), jwt.MapClaims{
		"sub": "user-1",
		"exp": time.Now().Add(-time.Hour).Unix(),
		"iat": time.Now().Add(-2 * time.Hour).Unix(),
	})

	if w := get(t, "Bearer "+tok); w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestAuth_WrongSigningKey_Returns401(t *testing.T) {
	tok := makeJWT(t, []byte("different-key-that-is-32-chars!!"), jwt.MapClaims{
		"sub": "user-1",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	if w := get(t, "Bearer "+tok); w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestAuth_ValidToken_PassesAndSetsIdentity(t *testing.T) {
	w := get(t, "Bearer "+validToken(t))

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
	if got := w.Body.String(); got != "acc-1|a@b.com" {
		t.Errorf("body = %q, want acc-1|a@b.com", got)
	}
}

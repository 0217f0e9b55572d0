package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/Nikocoro/prubas123/internal/models"
	"github.com/Nikocoro/prubas123/internal/security"
)

type stubVerifier map[string]security.AccessClaims

func (s stubVerifier) Verify(token string) (*security.AccessClaims, error) {
	claims, ok := s[token]
	if !ok {
		return nil, security.ErrInvalidToken
	}
	return &claims, nil
}

func claimsFor(username string, role models.UserRole) security.AccessClaims {
	return security.AccessClaims{Username: username, Role: string(role), RegisteredClaims: jwt.RegisteredClaims{Subject: username}}
}

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	verifier := stubVerifier{
		"admin-token":  claimsFor("ana", models.RoleAdmin),
		"member-token": claimsFor("bea", models.RoleMember),
	}

	r := gin.New()
	r.Use(RequestID(), CORS(nil))
	ok := func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) }
	r.GET("/read", Auth(verifier), ok)
	r.POST("/write", Auth(verifier), RequireRoles(models.RoleAdmin), ok)
	return r
}

func do(r http.Handler, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthAndRoles(t *testing.T) {
	r := newRouter()

	tests := []struct {
		method, path, token string
		want                int
	}{
		{http.MethodGet, "/read", "", http.StatusUnauthorized},
		{http.MethodGet, "/read", "garbage", http.StatusUnauthorized},
		{http.MethodGet, "/read", "member-token", http.StatusOK},
		{http.MethodGet, "/read", "admin-token", http.StatusOK},
		{http.MethodPost, "/write", "", http.StatusUnauthorized},
		{http.MethodPost, "/write", "member-token", http.StatusForbidden},
		{http.MethodPost, "/write", "admin-token", http.StatusOK},
	}

	for _, tt := range tests {
		w := do(r, tt.method, tt.path, tt.token)
		assert.Equal(t, tt.want, w.Code, "%s %s token=%q", tt.method, tt.path, tt.token)
	}
}

func TestPreflight(t *testing.T) {
	r := newRouter()

	w := do(r, http.MethodOptions, "/write", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Authorization")
}

func TestCORSAllowList(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORS([]string{"https://gallery.example.com"}))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://gallery.example.com")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "https://gallery.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequireConfigured(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequireConfigured(errors.New("no dsn")))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := do(r, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"server configuration error"}`, w.Body.String())
}

func TestRequestIDIsEchoed(t *testing.T) {
	r := newRouter()

	req := httptest.NewRequest(http.MethodGet, "/read", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(requestIDHeader))

	w = do(r, http.MethodGet, "/read", "")
	assert.Len(t, w.Header().Get(requestIDHeader), 36)
}

func TestRecoveryAnswers500(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Recovery(zerolog.Nop()))
	r.GET("/boom", func(*gin.Context) { panic("boom") })

	w := do(r, http.MethodGet, "/boom", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, w.Body.String())
}

package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"product-studio-backend/internal/config"
	"product-studio-backend/internal/middleware"
)

const testSecret = "test-secret-key-for-jwt-signing-must-be-long-enough"

func signed(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString([]byte(testSecret))
	assert.NoError(t, err)
	return s
}

func newRouter(handler gin.HandlerFunc, extra ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{SupabaseJWTSecret: testSecret}
	router := gin.New()
	router.Use(middleware.AuthMiddleware(cfg))
	router.Use(extra...)
	router.GET("/test", handler)
	return router
}

func ok(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) }

func TestAuthMiddleware_NoToken(t *testing.T) {
	router := newRouter(ok)

	req, _ := http.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_BadHeaderFormat(t *testing.T) {
	router := newRouter(ok)

	req, _ := http.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Token abc")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "invalid authorization header format")
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	router := newRouter(ok)

	req, _ := http.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer invalid-token")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_WrongSecret(t *testing.T) {
	router := newRouter(ok)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "user-123"})
	tokenString, _ := token.SignedString([]byte("some-other-secret"))

	req, _ := http.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer "+tokenString)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "signature is invalid")
}

func TestAuthMiddleware_Expired(t *testing.T) {
	router := newRouter(ok)

	tokenString := signed(t, jwt.MapClaims{
		"sub": "user-123",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})

	req, _ := http.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer "+tokenString)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "token has expired")
}

func TestAuthMiddleware_MissingSubject(t *testing.T) {
	router := newRouter(ok)

	tokenString := signed(t, jwt.MapClaims{"email": "a@example.com"})

	req, _ := http.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer "+tokenString)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	router := newRouter(func(c *gin.Context) {
		userID, exists := c.Get(middleware.UserIDKey)
		assert.True(t, exists)
		assert.Equal(t, "user-123", userID)
		assert.Equal(t, middleware.RoleCustomer, c.GetString(middleware.RoleKey))
		ok(c)
	})

	req, _ := http.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer "+signed(t, jwt.MapClaims{"sub": "user-123", "role": "authenticated"}))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthMiddleware_AdminRole(t *testing.T) {
	router := newRouter(func(c *gin.Context) {
		assert.Equal(t, middleware.RoleAdmin, c.GetString(middleware.RoleKey))
		ok(c)
	})

	tokenString := signed(t, jwt.MapClaims{
		"sub":          "admin-1",
		"app_metadata": map[string]interface{}{"role": "admin"},
	})

	req, _ := http.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer "+tokenString)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRoleFromClaims(t *testing.T) {
	tests := []struct {
		name   string
		claims jwt.MapClaims
		want   string
	}{
		{"no role", jwt.MapClaims{}, middleware.RoleCustomer},
		{"supabase default role", jwt.MapClaims{"role": "authenticated"}, middleware.RoleCustomer},
		{"top-level admin is ignored", jwt.MapClaims{"role": "admin"}, middleware.RoleCustomer},
		{"app_metadata admin", jwt.MapClaims{"app_metadata": map[string]interface{}{"role": "admin"}}, middleware.RoleAdmin},
		{"app_metadata other", jwt.MapClaims{"app_metadata": map[string]interface{}{"role": "staff"}}, middleware.RoleCustomer},
		{"user_role admin", jwt.MapClaims{"user_role": "admin"}, middleware.RoleAdmin},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, middleware.RoleFromClaims(tt.claims))
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	customer := newRouter(ok, middleware.RequireAdmin())
	req, _ := http.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer "+signed(t, jwt.MapClaims{"sub": "user-123"}))
	w := httptest.NewRecorder()
	customer.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	admin := newRouter(ok, middleware.RequireAdmin())
	req, _ = http.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer "+signed(t, jwt.MapClaims{
		"sub":          "admin-1",
		"app_metadata": map[string]interface{}{"role": "admin"},
	}))
	w = httptest.NewRecorder()
	admin.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

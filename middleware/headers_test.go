package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestSecurityHeaders(t *testing.T) {
	e := echo.New()
	e.Use(SecurityHeadersWithConfig(SecurityConfig{AllowedDomains: []string{"https://admin.skillnera.com"}}))
	e.GET("/", okHandler)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Contains(t, rec.Header().Get("Content-Security-Policy"), "connect-src 'self' https://admin.skillnera.com")
	assert.Contains(t, rec.Header().Get("Content-Security-Policy"), "script-src 'self'")
}

func TestCORSAllowsConfiguredOrigins(t *testing.T) {
	e := echo.New()
	e.Use(CORSWithConfig(NewCORSConfig([]string{"https://shop.skillnera.com"})))
	e.GET("/", okHandler)

	call := func(origin string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(echo.HeaderOrigin, origin)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec
	}

	rec := call("https://shop.skillnera.com")
	assert.Equal(t, "https://shop.skillnera.com", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
	assert.Equal(t, "true", rec.Header().Get(echo.HeaderAccessControlAllowCredentials))

	assert.Equal(t, "http://localhost:3001", call("http://localhost:3001").Header().Get(echo.HeaderAccessControlAllowOrigin))
	assert.Empty(t, call("https://evil.example.com").Header().Get(echo.HeaderAccessControlAllowOrigin))
}

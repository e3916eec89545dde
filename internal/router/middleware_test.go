package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cuentaflix/cuentaflix/internal/config"
	"github.com/cuentaflix/cuentaflix/internal/models"
	"github.com/cuentaflix/cuentaflix/internal/service"

	"github.com/gin-gonic/gin"
)

func TestResolveAllowedOrigin(t *testing.T) {
	cases := []struct {
		name             string
		origin           string
		allowed          []string
		allowCredentials bool
		want             string
	}{
		{"comodin sin credenciales", "https://a.example", []string{"*"}, false, "*"},
		{"comodin con credenciales refleja el origen", "https://a.example", []string{"*"}, true, "https://a.example"},
		{"origen en lista", "https://a.example", []string{"https://a.example"}, false, "https://a.example"},
		{"origen fuera de lista", "https://evil.example", []string{"https://a.example"}, false, ""},
		{"sin origen con lista cerrada", "", []string{"https://a.example"}, false, ""},
		{"lista vacía", "https://a.example", nil, false, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := resolveAllowedOrigin(tc.origin, tc.allowed, tc.allowCredentials)
			if got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestRequestIDMiddlewareGeneraYPropaga(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, getRequestID(c))
	})

	// sin header: se genera uno
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	r.ServeHTTP(w, req)
	if w.Header().Get("X-Request-ID") == "" || w.Body.String() == "" {
		t.Fatalf("expected request id generado")
	}

	// con header: se respeta
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-ID", "req-123")
	r.ServeHTTP(w, req)
	if w.Body.String() != "req-123" {
		t.Fatalf("expected req-123, got %q", w.Body.String())
	}
}

func TestJWTAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{}
	cfg.JWT.SecretKey = "una-clave-de-pruebas-suficientemente-larga"
	cfg.JWT.ExpireHours = 1
	auth := service.NewAuthService(cfg, nil)

	token, _, err := auth.GenerateJWT(&models.Admin{ID: 7, Username: "operador"})
	if err != nil {
		t.Fatalf("GenerateJWT error: %v", err)
	}

	r := gin.New()
	r.Use(JWTAuthMiddleware(cfg.JWT.SecretKey, nil))
	r.GET("/privado", func(c *gin.Context) {
		adminID, _ := c.Get("admin_id")
		c.JSON(http.StatusOK, gin.H{"admin_id": adminID})
	})

	// sin token
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/privado", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("unexpected http status: %d", w.Code)
	}
	if body := w.Body.String(); !strings.Contains(body, `"status_code":401`) {
		t.Fatalf("expected 401 de negocio, got %s", body)
	}

	// token inválido
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/privado", nil)
	req.Header.Set("Authorization", "Bearer no-es-un-token")
	r.ServeHTTP(w, req)
	if body := w.Body.String(); !strings.Contains(body, `"status_code":401`) {
		t.Fatalf("expected 401 de negocio, got %s", body)
	}

	// token válido
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/privado", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)
	if body := w.Body.String(); !strings.Contains(body, `"admin_id":7`) {
		t.Fatalf("expected admin_id en la respuesta, got %s", body)
	}
}

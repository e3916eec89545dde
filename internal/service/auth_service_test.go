package service

import (
	"errors"
	"testing"

	"github.com/cuentaflix/cuentaflix/internal/models"
	"github.com/cuentaflix/cuentaflix/internal/repository"
)

func seedAdmin(t *testing.T, env *testEnv, auth *AuthService, username, password string) *models.Admin {
	t.Helper()
	hash, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	admin := &models.Admin{Username: username, PasswordHash: hash}
	if err := env.db.Create(admin).Error; err != nil {
		t.Fatalf("create admin failed: %v", err)
	}
	return admin
}

func TestLoginEmiteToken(t *testing.T) {
	env := newTestEnv(t, "auth_login")
	auth := NewAuthService(env.cfg, repository.NewAdminRepository(env.db))
	seedAdmin(t, env, auth, "operador", "clave-correcta")

	admin, token, expiresAt, err := auth.Login("operador", "clave-correcta")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}
	if token == "" || expiresAt.IsZero() {
		t.Fatalf("token o vencimiento vacíos")
	}
	if admin.LastLoginAt == nil {
		t.Fatalf("expected last_login_at actualizado")
	}

	claims, err := auth.ParseJWT(token)
	if err != nil {
		t.Fatalf("ParseJWT error: %v", err)
	}
	if claims.AdminID != admin.ID || claims.Username != "operador" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestLoginRechazaCredencialesInvalidas(t *testing.T) {
	env := newTestEnv(t, "auth_rechazo")
	auth := NewAuthService(env.cfg, repository.NewAdminRepository(env.db))
	seedAdmin(t, env, auth, "operador", "clave-correcta")

	if _, _, _, err := auth.Login("operador", "clave-mala"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got: %v", err)
	}
	if _, _, _, err := auth.Login("nadie", "clave-correcta"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got: %v", err)
	}
}

func TestParseJWTRechazaOtraFirma(t *testing.T) {
	env := newTestEnv(t, "auth_firma")
	auth := NewAuthService(env.cfg, nil)

	otraCfg := *env.cfg
	otraCfg.JWT.SecretKey = "otra-clave-igual-de-larga-pero-distinta"
	otro := NewAuthService(&otraCfg, nil)

	token, _, err := otro.GenerateJWT(&models.Admin{ID: 1, Username: "x"})
	if err != nil {
		t.Fatalf("GenerateJWT error: %v", err)
	}
	if _, err := auth.ParseJWT(token); err == nil {
		t.Fatalf("expected error con firma ajena")
	}
}

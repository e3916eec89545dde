package service

import (
	"errors"
	"testing"

	"github.com/cuentaflix/cuentaflix/internal/constants"
	"github.com/cuentaflix/cuentaflix/internal/models"
	"github.com/cuentaflix/cuentaflix/internal/vault"
)

func newInventoryService(t *testing.T, env *testEnv) *InventoryService {
	t.Helper()
	v, err := vault.New("clave-de-vault-para-pruebas")
	if err != nil {
		t.Fatalf("vault.New error: %v", err)
	}
	return NewInventoryService(env.credRepo, env.planRepo, v)
}

func TestLoadCifraYReveal(t *testing.T) {
	env := newTestEnv(t, "inv_load")
	plan := env.seedPlan(t, "Netflix 1 pantalla", 0, 1)
	inventory := newInventoryService(t, env)

	created, err := inventory.Load(plan.ID, []CredencialInput{
		{Correo: "cuenta1@proveedor.example.com", Clave: "secreta-1", Pin: "4321", Perfil: "Perfil 1"},
		{Correo: "cuenta2@proveedor.example.com", Clave: "secreta-2"},
	})
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if created != 2 {
		t.Fatalf("expected 2 credenciales, got %d", created)
	}

	var creds []models.Credencial
	if err := env.db.Order("id asc").Find(&creds).Error; err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if len(creds) != 2 {
		t.Fatalf("expected 2 filas, got %d", len(creds))
	}
	for _, cred := range creds {
		if cred.Estado != constants.CredencialDisponible {
			t.Fatalf("expected disponible, got %s", cred.Estado)
		}
		// nunca en claro en la base
		if cred.CorreoCifrado == "cuenta1@proveedor.example.com" || cred.ClaveCifrada == "secreta-1" || cred.PinCifrado == "4321" {
			t.Fatalf("credencial guardada sin cifrar")
		}
	}

	correo, clave, pin, err := inventory.Reveal(&creds[0])
	if err != nil {
		t.Fatalf("Reveal error: %v", err)
	}
	if correo != "cuenta1@proveedor.example.com" || clave != "secreta-1" || pin != "4321" {
		t.Fatalf("round trip fallido: %s / %s / %s", correo, clave, pin)
	}

	// sin pin: se queda vacío, no se cifra un string vacío
	if creds[1].PinCifrado != "" {
		t.Fatalf("pin cifrado inesperado: %q", creds[1].PinCifrado)
	}
	if _, _, pin, err = inventory.Reveal(&creds[1]); err != nil || pin != "" {
		t.Fatalf("expected pin vacío, got %q (err %v)", pin, err)
	}
}

func TestLoadPlanInexistente(t *testing.T) {
	env := newTestEnv(t, "inv_sin_plan")
	inventory := newInventoryService(t, env)

	_, err := inventory.Load(99, []CredencialInput{{Correo: "a@b.c", Clave: "x"}})
	if !errors.Is(err, ErrPlanNotFound) {
		t.Fatalf("expected ErrPlanNotFound, got: %v", err)
	}
}

func TestReleaseSoloCredencialesAsignadas(t *testing.T) {
	env := newTestEnv(t, "inv_release")
	plan := env.seedPlan(t, "Netflix 1 pantalla", 0, 1)
	cliente := env.seedCliente(t, "Hugo", "")
	creds := env.seedCredenciales(t, plan.ID, 2)
	inventory := newInventoryService(t, env)

	if _, err := env.subscriptions.Crear(CrearInput{ClienteID: cliente.ID, PlanID: plan.ID}); err != nil {
		t.Fatalf("Crear error: %v", err)
	}

	// la asignada se libera y vuelve al pool
	if err := inventory.Release(creds[0].ID); err != nil {
		t.Fatalf("Release error: %v", err)
	}
	stock, err := inventory.Stock(plan.ID)
	if err != nil {
		t.Fatalf("Stock error: %v", err)
	}
	if stock.Disponibles != 2 || stock.Asignadas != 0 {
		t.Fatalf("unexpected stock: %+v", stock)
	}

	// una disponible no se puede liberar
	if err := inventory.Release(creds[1].ID); !errors.Is(err, ErrCredencialNoLiberable) {
		t.Fatalf("expected ErrCredencialNoLiberable, got: %v", err)
	}
	// inexistente
	if err := inventory.Release(12345); !errors.Is(err, ErrCredencialNotFound) {
		t.Fatalf("expected ErrCredencialNotFound, got: %v", err)
	}
}

func TestMarkMantenimientoRetiraDelPool(t *testing.T) {
	env := newTestEnv(t, "inv_mantenimiento")
	plan := env.seedPlan(t, "Netflix 1 pantalla", 0, 1)
	cliente := env.seedCliente(t, "Inés", "")
	creds := env.seedCredenciales(t, plan.ID, 2)
	inventory := newInventoryService(t, env)

	if err := inventory.MarkMantenimiento(creds[0].ID); err != nil {
		t.Fatalf("MarkMantenimiento error: %v", err)
	}

	// la retirada no se asigna: la suscripción toma la otra
	suscripcion, err := env.subscriptions.Crear(CrearInput{ClienteID: cliente.ID, PlanID: plan.ID})
	if err != nil {
		t.Fatalf("Crear error: %v", err)
	}
	if *suscripcion.CredencialID != creds[1].ID {
		t.Fatalf("se asignó la credencial en mantenimiento")
	}

	// una asignada no pasa a mantenimiento
	if err := inventory.MarkMantenimiento(creds[1].ID); !errors.Is(err, ErrInvalidStateTransition) {
		t.Fatalf("expected ErrInvalidStateTransition, got: %v", err)
	}
}

package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cuentaflix/cuentaflix/internal/constants"
	"github.com/cuentaflix/cuentaflix/internal/models"
)

func (e *testEnv) crearConVencimiento(t *testing.T, planID, clienteID uint, inicio time.Time, autoRenovar bool) *models.Suscripcion {
	t.Helper()
	e.subscriptions.SetNow(fixedNow(inicio))
	suscripcion, err := e.subscriptions.Crear(CrearInput{ClienteID: clienteID, PlanID: planID, AutoRenovar: autoRenovar})
	if err != nil {
		t.Fatalf("Crear error: %v", err)
	}
	return suscripcion
}

func TestRunVenceLasAtrasadas(t *testing.T) {
	env := newTestEnv(t, "engine_vencer")
	plan := env.seedPlan(t, "Netflix 1 pantalla", 30, 0)
	cliente := env.seedCliente(t, "Tomás", "")
	env.seedCredenciales(t, plan.ID, 1)

	inicio := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	suscripcion := env.crearConVencimiento(t, plan.ID, cliente.ID, inicio, false)

	env.engine.SetNow(fixedNow(suscripcion.FechaVencimiento.AddDate(0, 0, 1)))
	summary, err := env.engine.Run(context.Background())
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if summary.Expired != 1 || summary.Renewed != 0 {
		t.Fatalf("unexpected summary: %+v", summary)
	}

	vencida, err := env.subscriptions.GetByID(suscripcion.ID)
	if err != nil {
		t.Fatalf("GetByID error: %v", err)
	}
	if vencida.Estado != constants.SuscripcionVencida {
		t.Fatalf("expected vencida, got %s", vencida.Estado)
	}
	if env.avisos.porResultado(constants.ResultadoVencida) != 1 {
		t.Fatalf("expected 1 aviso de vencida, got %+v", env.avisos.avisos)
	}

	// un segundo barrido no tiene nada que hacer
	summary, err = env.engine.Run(context.Background())
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if summary.Expired != 0 || summary.Checked != 0 {
		t.Fatalf("segundo barrido volvió a procesar: %+v", summary)
	}
}

func TestRunAutoRenuevaLasMarcadas(t *testing.T) {
	env := newTestEnv(t, "engine_auto")
	plan := env.seedPlan(t, "Netflix 1 pantalla", 30, 0)
	cliente := env.seedCliente(t, "Vera", "")
	env.seedCredenciales(t, plan.ID, 1)

	inicio := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	suscripcion := env.crearConVencimiento(t, plan.ID, cliente.ID, inicio, true)

	hoy := suscripcion.FechaVencimiento.AddDate(0, 0, 2)
	env.engine.SetNow(fixedNow(hoy))
	summary, err := env.engine.Run(context.Background())
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if summary.Renewed != 1 || summary.Expired != 0 {
		t.Fatalf("unexpected summary: %+v", summary)
	}

	renovada, err := env.subscriptions.GetByID(suscripcion.ID)
	if err != nil {
		t.Fatalf("GetByID error: %v", err)
	}
	if renovada.Estado != constants.SuscripcionActiva {
		t.Fatalf("expected activa, got %s", renovada.Estado)
	}
	// renovación tardía: el período corre desde hoy
	if !timesClose(renovada.FechaVencimiento, hoy.AddDate(0, 0, 30)) {
		t.Fatalf("unexpected vencimiento: %v", renovada.FechaVencimiento)
	}
	if renovada.Renovaciones != 1 {
		t.Fatalf("expected 1 renovación, got %d", renovada.Renovaciones)
	}
	if env.avisos.porResultado(constants.ResultadoRenovada) != 1 {
		t.Fatalf("expected 1 aviso de renovada, got %+v", env.avisos.avisos)
	}
}

func TestRunAislaFallosPorSuscripcion(t *testing.T) {
	env := newTestEnv(t, "engine_aislamiento")
	planOK := env.seedPlan(t, "Netflix 1 pantalla", 30, 0)
	planRoto := env.seedPlan(t, "Plan borrado", 30, 0)
	cliente := env.seedCliente(t, "Ana", "")
	env.seedCredenciales(t, planOK.ID, 1)
	env.seedCredenciales(t, planRoto.ID, 1)

	inicio := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	rota := env.crearConVencimiento(t, planRoto.ID, cliente.ID, inicio, true)
	sana := env.crearConVencimiento(t, planOK.ID, cliente.ID, inicio, false)

	// la renovación de la primera falla porque su plan ya no existe
	if err := env.db.Unscoped().Delete(&models.Plan{}, planRoto.ID).Error; err != nil {
		t.Fatalf("delete plan failed: %v", err)
	}

	env.engine.SetNow(fixedNow(inicio.AddDate(0, 0, 31)))
	summary, err := env.engine.Run(context.Background())
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if summary.Errored == 0 {
		t.Fatalf("expected al menos un error, got %+v", summary)
	}
	if summary.Expired != 1 {
		t.Fatalf("el fallo de una suscripción frenó a la otra: %+v", summary)
	}

	vencida, err := env.subscriptions.GetByID(sana.ID)
	if err != nil {
		t.Fatalf("GetByID error: %v", err)
	}
	if vencida.Estado != constants.SuscripcionVencida {
		t.Fatalf("expected sana vencida, got %s", vencida.Estado)
	}

	// el fallo se avisa al cliente, distinto del aviso de renovación
	if env.avisos.porResultado(constants.ResultadoRenovacionFallida) != 1 {
		t.Fatalf("expected 1 aviso de renovación fallida, got %+v", env.avisos.avisos)
	}
	if env.avisos.porResultado(constants.ResultadoRenovada) != 0 {
		t.Fatalf("la renovación fallida avisó éxito: %+v", env.avisos.avisos)
	}
	_ = rota
}

func TestRunDespachaAvisosAlDia(t *testing.T) {
	env := newTestEnv(t, "engine_avisos")
	plan := env.seedPlan(t, "Netflix 1 pantalla", 0, 1)
	cliente := env.seedCliente(t, "Luz", "+5215511112222")
	env.seedCredenciales(t, plan.ID, 1)

	inicio := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	suscripcion := env.crearConVencimiento(t, plan.ID, cliente.ID, inicio, false)

	env.engine.SetNow(fixedNow(suscripcion.FechaVencimiento.AddDate(0, 0, -7).Add(time.Hour)))
	summary, err := env.engine.Run(context.Background())
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if summary.Notified != 1 {
		t.Fatalf("expected 1 aviso, got %+v", summary)
	}
	if env.notifier.sentCount() != 1 {
		t.Fatalf("expected 1 envío, got %d", env.notifier.sentCount())
	}

	// repetir el barrido no duplica avisos
	summary, err = env.engine.Run(context.Background())
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if summary.Notified != 0 || env.notifier.sentCount() != 1 {
		t.Fatalf("barrido repetido duplicó avisos: %+v", summary)
	}
}

type busyLock struct{}

func (busyLock) Acquire(context.Context) (bool, error) { return false, nil }
func (busyLock) Release(context.Context)               {}

func TestRunConCandadoOcupado(t *testing.T) {
	env := newTestEnv(t, "engine_candado")
	engine := NewRenewalEngine(env.susRepo, env.subscriptions, env.scheduler, busyLock{}, env.avisos, 0)

	summary, err := engine.Run(context.Background())
	if !errors.Is(err, ErrTransientLock) {
		t.Fatalf("expected ErrTransientLock, got: %v", err)
	}
	if !summary.Skipped {
		t.Fatalf("expected summary salteado: %+v", summary)
	}
}

func TestRunAutoRenovacionAnticipada(t *testing.T) {
	env := newTestEnv(t, "engine_lookahead")
	plan := env.seedPlan(t, "Netflix 1 pantalla", 30, 0)
	cliente := env.seedCliente(t, "Elsa", "")
	env.seedCredenciales(t, plan.ID, 1)

	inicio := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	suscripcion := env.crearConVencimiento(t, plan.ID, cliente.ID, inicio, true)

	engine := NewRenewalEngine(env.susRepo, env.subscriptions, env.scheduler, nil, env.avisos, 7)
	// faltan 3 días para el vencimiento, dentro de la ventana de 7
	engine.SetNow(fixedNow(suscripcion.FechaVencimiento.AddDate(0, 0, -3)))
	summary, err := engine.Run(context.Background())
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if summary.Renewed != 1 {
		t.Fatalf("expected renovación anticipada, got %+v", summary)
	}

	renovada, err := env.subscriptions.GetByID(suscripcion.ID)
	if err != nil {
		t.Fatalf("GetByID error: %v", err)
	}
	// renovación temprana: el período se suma al vencimiento vigente
	if !timesClose(renovada.FechaVencimiento, suscripcion.FechaVencimiento.AddDate(0, 0, 30)) {
		t.Fatalf("unexpected vencimiento: %v", renovada.FechaVencimiento)
	}
}

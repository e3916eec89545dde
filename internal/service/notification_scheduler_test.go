package service

import (
	"context"
	"testing"
	"time"

	"github.com/cuentaflix/cuentaflix/internal/constants"
	"github.com/cuentaflix/cuentaflix/internal/models"
)

func TestRegenerateOmiteUmbralesPasados(t *testing.T) {
	env := newTestEnv(t, "avisos_pasados")
	plan := env.seedPlan(t, "Netflix 1 pantalla", 30, 0)
	cliente := env.seedCliente(t, "Clara", "")
	env.seedCredenciales(t, plan.ID, 1)

	now := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	env.subscriptions.SetNow(fixedNow(now))
	suscripcion, err := env.subscriptions.Crear(CrearInput{ClienteID: cliente.ID, PlanID: plan.ID})
	if err != nil {
		t.Fatalf("Crear error: %v", err)
	}

	// quedan 2 días de vigencia: los umbrales de 7 y 3 días ya pasaron
	suscripcion.FechaVencimiento = now.AddDate(0, 0, 2)
	err = env.scheduler.Regenerate(env.db, suscripcion, now)
	if err != nil {
		t.Fatalf("Regenerate error: %v", err)
	}

	avisos, err := env.avisoRepo.ListBySuscripcion(suscripcion.ID)
	if err != nil {
		t.Fatalf("list avisos failed: %v", err)
	}
	if len(avisos) != 2 {
		t.Fatalf("expected 2 avisos (1 día y vencimiento), got %d", len(avisos))
	}
	umbrales := map[string]bool{}
	for _, aviso := range avisos {
		umbrales[aviso.Umbral] = true
	}
	if !umbrales[constants.AvisoPrevio1Dia] || !umbrales[constants.AvisoVencimiento] {
		t.Fatalf("unexpected umbrales: %v", umbrales)
	}
}

func TestDispatchDueALoSumoUnaVez(t *testing.T) {
	env := newTestEnv(t, "avisos_dedup")
	plan := env.seedPlan(t, "Netflix 1 pantalla", 0, 1)
	cliente := env.seedCliente(t, "Diego", "+5491155554444")
	env.seedCredenciales(t, plan.ID, 1)

	now := time.Date(2026, 7, 1, 10, 0, 0, 0, time.UTC)
	env.subscriptions.SetNow(fixedNow(now))
	suscripcion, err := env.subscriptions.Crear(CrearInput{ClienteID: cliente.ID, PlanID: plan.ID})
	if err != nil {
		t.Fatalf("Crear error: %v", err)
	}

	// ya llegó la fecha del aviso de 7 días
	despues := suscripcion.FechaVencimiento.AddDate(0, 0, -7).Add(time.Hour)
	sent, failed, err := env.scheduler.DispatchDue(context.Background(), despues)
	if err != nil {
		t.Fatalf("DispatchDue error: %v", err)
	}
	if sent != 1 || failed != 0 {
		t.Fatalf("expected 1 enviado, got sent=%d failed=%d", sent, failed)
	}

	// repetir el barrido no duplica el aviso
	for i := 0; i < 3; i++ {
		sent, failed, err = env.scheduler.DispatchDue(context.Background(), despues)
		if err != nil {
			t.Fatalf("DispatchDue error: %v", err)
		}
		if sent != 0 || failed != 0 {
			t.Fatalf("barrido repetido reenvió avisos: sent=%d failed=%d", sent, failed)
		}
	}
	if env.notifier.sentCount() != 1 {
		t.Fatalf("expected exactamente 1 envío, got %d", env.notifier.sentCount())
	}
}

func TestDispatchDueEnvioFallidoNoSeRepite(t *testing.T) {
	env := newTestEnv(t, "avisos_fallo")
	plan := env.seedPlan(t, "Netflix 1 pantalla", 0, 1)
	cliente := env.seedCliente(t, "Nora", "")
	env.seedCredenciales(t, plan.ID, 1)

	now := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	env.subscriptions.SetNow(fixedNow(now))
	suscripcion, err := env.subscriptions.Crear(CrearInput{ClienteID: cliente.ID, PlanID: plan.ID})
	if err != nil {
		t.Fatalf("Crear error: %v", err)
	}

	despues := suscripcion.FechaVencimiento.AddDate(0, 0, -7).Add(time.Hour)
	env.notifier.failSend = true
	sent, failed, err := env.scheduler.DispatchDue(context.Background(), despues)
	if err != nil {
		t.Fatalf("DispatchDue error: %v", err)
	}
	if sent != 0 || failed != 1 {
		t.Fatalf("expected 1 fallo, got sent=%d failed=%d", sent, failed)
	}

	// el registro quedó marcado: ni con el canal recuperado se reenvía solo
	env.notifier.failSend = false
	sent, failed, err = env.scheduler.DispatchDue(context.Background(), despues)
	if err != nil {
		t.Fatalf("DispatchDue error: %v", err)
	}
	if sent != 0 || failed != 0 {
		t.Fatalf("aviso fallido reenviado: sent=%d failed=%d", sent, failed)
	}
}

func TestDispatchDueNoConsumeAvisosDeSuscripcionPausada(t *testing.T) {
	env := newTestEnv(t, "avisos_pausada")
	plan := env.seedPlan(t, "Netflix 1 pantalla", 0, 1)
	cliente := env.seedCliente(t, "Saúl", "")
	env.seedCredenciales(t, plan.ID, 1)

	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	env.subscriptions.SetNow(fixedNow(now))
	suscripcion, err := env.subscriptions.Crear(CrearInput{ClienteID: cliente.ID, PlanID: plan.ID})
	if err != nil {
		t.Fatalf("Crear error: %v", err)
	}
	if err := env.subscriptions.Pausar(suscripcion.ID); err != nil {
		t.Fatalf("Pausar error: %v", err)
	}

	// pausada: el umbral de 7 días llegó pero no se envía ni se consume
	despues := suscripcion.FechaVencimiento.AddDate(0, 0, -7).Add(time.Hour)
	sent, failed, err := env.scheduler.DispatchDue(context.Background(), despues)
	if err != nil {
		t.Fatalf("DispatchDue error: %v", err)
	}
	if sent != 0 || failed != 0 {
		t.Fatalf("suscripción pausada notificada: sent=%d failed=%d", sent, failed)
	}
	var pendientes int64
	if err := env.db.Model(&models.NotificationRecord{}).
		Where("suscripcion_id = ? AND enviado = ?", suscripcion.ID, false).
		Count(&pendientes).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if pendientes != 4 {
		t.Fatalf("la pausa consumió avisos: quedan %d pendientes", pendientes)
	}

	// al reanudar, el mismo barrido entrega el aviso retenido
	if err := env.subscriptions.Reanudar(suscripcion.ID); err != nil {
		t.Fatalf("Reanudar error: %v", err)
	}
	sent, failed, err = env.scheduler.DispatchDue(context.Background(), despues)
	if err != nil {
		t.Fatalf("DispatchDue error: %v", err)
	}
	if sent != 1 || failed != 0 {
		t.Fatalf("expected 1 enviado tras reanudar, got sent=%d failed=%d", sent, failed)
	}
	if env.notifier.sentCount() != 1 {
		t.Fatalf("expected 1 envío, got %d", env.notifier.sentCount())
	}
}

func TestDispatchDueRetiraAvisosDeSuscripcionVencida(t *testing.T) {
	env := newTestEnv(t, "avisos_vencida")
	plan := env.seedPlan(t, "Netflix 1 pantalla", 0, 1)
	cliente := env.seedCliente(t, "Olga", "")
	env.seedCredenciales(t, plan.ID, 1)

	now := time.Date(2026, 10, 1, 10, 0, 0, 0, time.UTC)
	env.subscriptions.SetNow(fixedNow(now))
	suscripcion, err := env.subscriptions.Crear(CrearInput{ClienteID: cliente.ID, PlanID: plan.ID})
	if err != nil {
		t.Fatalf("Crear error: %v", err)
	}
	if _, err := env.subscriptions.MarcarVencida(suscripcion.ID); err != nil {
		t.Fatalf("MarcarVencida error: %v", err)
	}

	despues := suscripcion.FechaVencimiento.Add(time.Hour)
	sent, failed, err := env.scheduler.DispatchDue(context.Background(), despues)
	if err != nil {
		t.Fatalf("DispatchDue error: %v", err)
	}
	if sent != 0 || failed != 0 {
		t.Fatalf("suscripción vencida notificada: sent=%d failed=%d", sent, failed)
	}

	// los registros quedan retirados, no pendientes
	var pendientes int64
	if err := env.db.Model(&models.NotificationRecord{}).
		Where("suscripcion_id = ? AND enviado = ?", suscripcion.ID, false).
		Count(&pendientes).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if pendientes != 0 {
		t.Fatalf("expected 0 avisos pendientes, got %d", pendientes)
	}
}

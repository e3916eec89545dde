package models

import (
	"testing"
	"time"
)

func TestPlanDuracionPrefiereDias(t *testing.T) {
	base := time.Date(2026, 1, 31, 12, 0, 0, 0, time.UTC)

	plan := Plan{DuracionDias: 30, DuracionMeses: 2}
	if got := plan.Duracion(base); !got.Equal(base.AddDate(0, 0, 30)) {
		t.Fatalf("expected base+30d, got %v", got)
	}
}

func TestPlanDuracionMesesCalendario(t *testing.T) {
	base := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)

	plan := Plan{DuracionMeses: 1}
	if got := plan.Duracion(base); !got.Equal(base.AddDate(0, 1, 0)) {
		t.Fatalf("expected base+1mes, got %v", got)
	}
}

func TestPlanDuracionDefaultUnMes(t *testing.T) {
	base := time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC)

	plan := Plan{}
	if got := plan.Duracion(base); !got.Equal(base.AddDate(0, 1, 0)) {
		t.Fatalf("expected base+1mes por defecto, got %v", got)
	}
}

package service

import (
	"context"
	"sync"
	"time"

	"github.com/cuentaflix/cuentaflix/internal/constants"
	"github.com/cuentaflix/cuentaflix/internal/logger"
	"github.com/cuentaflix/cuentaflix/internal/repository"
)

// RunLocker garantiza un solo barrido a la vez entre procesos
type RunLocker interface {
	Acquire(ctx context.Context) (bool, error)
	Release(ctx context.Context)
}

// LocalRunLock candado en memoria; se usa cuando no hay redis
type LocalRunLock struct {
	mu sync.Mutex
}

// Acquire intenta tomar el candado sin bloquear
func (l *LocalRunLock) Acquire(_ context.Context) (bool, error) {
	return l.mu.TryLock(), nil
}

// Release libera el candado
func (l *LocalRunLock) Release(_ context.Context) {
	l.mu.Unlock()
}

// AvisoEnqueuer encola el aviso con el resultado de una renovación; el
// cliente se entera también cuando la renovación falla
type AvisoEnqueuer interface {
	EnqueueSuscripcionAviso(suscripcionID uint, resultado string) error
}

// RunSummary resultado de un barrido
type RunSummary struct {
	Checked  int  `json:"checked"`
	Expired  int  `json:"expired"`
	Notified int  `json:"notified"`
	Renewed  int  `json:"renewed"`
	Errored  int  `json:"errored"`
	Skipped  bool `json:"skipped"` // otro barrido estaba en curso
}

// RenewalEngine barrido periódico: despacha avisos al día, vence las
// suscripciones atrasadas y auto-renueva las marcadas
type RenewalEngine struct {
	suscripcionRepo repository.SuscripcionRepository
	subscriptions   *SubscriptionService
	scheduler       *NotificationScheduler
	locker          RunLocker
	avisos          AvisoEnqueuer // opcional
	lookaheadDays   int

	now func() time.Time
}

// NewRenewalEngine crea el motor de renovación
func NewRenewalEngine(
	suscripcionRepo repository.SuscripcionRepository,
	subscriptions *SubscriptionService,
	scheduler *NotificationScheduler,
	locker RunLocker,
	avisos AvisoEnqueuer,
	lookaheadDays int,
) *RenewalEngine {
	if locker == nil {
		locker = &LocalRunLock{}
	}
	return &RenewalEngine{
		suscripcionRepo: suscripcionRepo,
		subscriptions:   subscriptions,
		scheduler:       scheduler,
		locker:          locker,
		avisos:          avisos,
		lookaheadDays:   lookaheadDays,
		now:             time.Now,
	}
}

// notificarResultado encola el aviso de resultado; si encolar falla el
// barrido sigue, el resultado ya quedó firme en la base
func (e *RenewalEngine) notificarResultado(suscripcionID uint, resultado string) {
	if e.avisos == nil {
		return
	}
	if err := e.avisos.EnqueueSuscripcionAviso(suscripcionID, resultado); err != nil {
		logger.Warnw("renewal_notice_enqueue_failed",
			"suscripcion_id", suscripcionID,
			"resultado", resultado,
			"error", err,
		)
	}
}

// SetNow reemplaza el reloj; solo para pruebas
func (e *RenewalEngine) SetNow(now func() time.Time) {
	if now != nil {
		e.now = now
		e.subscriptions.SetNow(now)
	}
}

// Run ejecuta un barrido completo. Un fallo en una suscripción se registra
// y no frena el resto. Si ya hay un barrido en curso devuelve
// ErrTransientLock con el resumen marcado como salteado.
func (e *RenewalEngine) Run(ctx context.Context) (RunSummary, error) {
	var summary RunSummary

	ok, err := e.locker.Acquire(ctx)
	if err != nil {
		return summary, err
	}
	if !ok {
		summary.Skipped = true
		logger.Warnw("renewal_run_skipped", "reason", "lock_busy")
		return summary, ErrTransientLock
	}
	defer e.locker.Release(ctx)

	now := e.now()
	started := time.Now()

	// 1. avisos cuya fecha programada ya llegó
	sent, failed, err := e.scheduler.DispatchDue(ctx, now)
	if err != nil {
		logger.Errorw("renewal_dispatch_failed", "error", err)
		summary.Errored++
	}
	summary.Notified = sent
	summary.Errored += failed

	// 2. atrasadas: auto-renovar las marcadas, vencer el resto
	vencidas, err := e.suscripcionRepo.FindVencidas(now)
	if err != nil {
		logger.Errorw("renewal_overdue_query_failed", "error", err)
		summary.Errored++
	}
	for _, suscripcion := range vencidas {
		summary.Checked++
		if suscripcion.AutoRenovar {
			if _, err := e.subscriptions.Renovar(suscripcion.ID); err != nil {
				logger.Errorw("renewal_auto_renew_failed",
					"suscripcion_id", suscripcion.ID,
					"error", err,
				)
				summary.Errored++
				e.notificarResultado(suscripcion.ID, constants.ResultadoRenovacionFallida)
				continue
			}
			summary.Renewed++
			e.notificarResultado(suscripcion.ID, constants.ResultadoRenovada)
			continue
		}
		expired, err := e.subscriptions.MarcarVencida(suscripcion.ID)
		if err != nil {
			logger.Errorw("renewal_expire_failed",
				"suscripcion_id", suscripcion.ID,
				"error", err,
			)
			summary.Errored++
			continue
		}
		if expired {
			summary.Expired++
			logger.Infow("subscription_expired",
				"suscripcion_id", suscripcion.ID,
				"vencimiento", suscripcion.FechaVencimiento,
			)
			e.notificarResultado(suscripcion.ID, constants.ResultadoVencida)
		}
	}

	// 3. ventana de auto-renovación anticipada
	if e.lookaheadDays > 0 {
		hasta := now.AddDate(0, 0, e.lookaheadDays)
		porVencer, err := e.suscripcionRepo.FindPorVencer(now, hasta)
		if err != nil {
			logger.Errorw("renewal_lookahead_query_failed", "error", err)
			summary.Errored++
		}
		for _, suscripcion := range porVencer {
			summary.Checked++
			if !suscripcion.AutoRenovar {
				continue
			}
			if _, err := e.subscriptions.Renovar(suscripcion.ID); err != nil {
				logger.Errorw("renewal_auto_renew_failed",
					"suscripcion_id", suscripcion.ID,
					"error", err,
				)
				summary.Errored++
				e.notificarResultado(suscripcion.ID, constants.ResultadoRenovacionFallida)
				continue
			}
			summary.Renewed++
			e.notificarResultado(suscripcion.ID, constants.ResultadoRenovada)
		}
	}

	logger.Infow("renewal_run_finished",
		"checked", summary.Checked,
		"expired", summary.Expired,
		"notified", summary.Notified,
		"renewed", summary.Renewed,
		"errored", summary.Errored,
		"duration_ms", time.Since(started).Milliseconds(),
	)
	return summary, nil
}

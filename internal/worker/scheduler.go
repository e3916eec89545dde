package worker

import (
	"context"
	"errors"
	"strings"

	"github.com/cuentaflix/cuentaflix/internal/config"
	"github.com/cuentaflix/cuentaflix/internal/logger"
	"github.com/cuentaflix/cuentaflix/internal/queue"

	"github.com/hibiken/asynq"
)

// SchedulerService registra los barridos periódicos: el diario completo y
// el de corto plazo. Las entradas encolan TaskVencimientoCheck; el trabajo
// real lo hace el worker, así el candado single-flight aplica igual.
type SchedulerService struct {
	name      string
	scheduler *asynq.Scheduler
}

// NewSchedulerService crea el planificador periódico
func NewSchedulerService(queueCfg *config.QueueConfig, renewalCfg *config.RenewalConfig) (*SchedulerService, error) {
	if queueCfg == nil || !queueCfg.Enabled {
		return nil, errors.New("queue disabled")
	}

	opt, _ := queue.BuildServerConfig(queueCfg)
	scheduler := asynq.NewScheduler(opt, &asynq.SchedulerOpts{})

	dailyTask, err := queue.NewVencimientoCheckTask(queue.VencimientoCheckPayload{Trigger: "cron_daily"})
	if err != nil {
		return nil, err
	}
	nearTask, err := queue.NewVencimientoCheckTask(queue.VencimientoCheckPayload{Trigger: "cron_near_term"})
	if err != nil {
		return nil, err
	}

	dailyCron := strings.TrimSpace(renewalCfg.DailyCron)
	if dailyCron == "" {
		dailyCron = "0 9 * * *"
	}
	if _, err := scheduler.Register(dailyCron, dailyTask, asynq.Queue(queue.DefaultQueue)); err != nil {
		return nil, err
	}

	interval := strings.TrimSpace(renewalCfg.NearTermInterval)
	if interval == "" {
		interval = "6h"
	}
	if _, err := scheduler.Register("@every "+interval, nearTask, asynq.Queue(queue.DefaultQueue)); err != nil {
		return nil, err
	}

	logger.Infow("scheduler_registered",
		"daily_cron", dailyCron,
		"near_term_interval", interval,
	)
	return &SchedulerService{name: "scheduler", scheduler: scheduler}, nil
}

// Name nombre del servicio
func (s *SchedulerService) Name() string {
	if s == nil || s.name == "" {
		return "scheduler"
	}
	return s.name
}

// Start arranca el planificador
func (s *SchedulerService) Start(ctx context.Context) error {
	if s == nil || s.scheduler == nil {
		return errors.New("scheduler not initialized")
	}
	return s.scheduler.Run()
}

// Stop detiene el planificador
func (s *SchedulerService) Stop(ctx context.Context) error {
	if s == nil || s.scheduler == nil {
		return nil
	}
	_ = ctx
	s.scheduler.Shutdown()
	return nil
}

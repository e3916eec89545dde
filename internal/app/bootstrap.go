package app

import (
	"context"
	"fmt"
	"net"
	"os/signal"

	"github.com/cuentaflix/cuentaflix/internal/logger"
	"github.com/cuentaflix/cuentaflix/internal/provider"
	"github.com/cuentaflix/cuentaflix/internal/router"
	"github.com/cuentaflix/cuentaflix/internal/worker"

	"gorm.io/gorm"
)

// BuildRunner arma el contenedor y los servicios según el modo
func BuildRunner(opts Options, db *gorm.DB) (*Runner, error) {
	opts = normalizeOptions(opts)
	if opts.Config == nil {
		return nil, fmt.Errorf("config es nil")
	}
	if !ValidMode(opts.Mode) {
		return nil, fmt.Errorf("modo desconocido: %s", opts.Mode)
	}

	container := provider.NewContainer(opts.Config, db)

	var services []Service

	if opts.Mode == ModeAll || opts.Mode == ModeAPI {
		engine := router.SetupRouter(opts.Config, container)
		addr := net.JoinHostPort(opts.Config.Server.Host, opts.Config.Server.Port)
		services = append(services, NewHTTPService(addr, engine))
	}

	if opts.Mode == ModeAll || opts.Mode == ModeWorker {
		if opts.Config.Queue.Enabled {
			consumer := worker.NewConsumer(container)
			workerSvc, err := worker.NewService(&opts.Config.Queue, consumer)
			if err != nil {
				return nil, fmt.Errorf("worker: %w", err)
			}
			services = append(services, workerSvc)

			schedulerSvc, err := worker.NewSchedulerService(&opts.Config.Queue, &opts.Config.Renewal)
			if err != nil {
				return nil, fmt.Errorf("scheduler: %w", err)
			}
			services = append(services, schedulerSvc)
		} else {
			logger.Warnw("worker_disabled", "reason", "queue.enabled=false")
		}
	}

	if len(services) == 0 {
		return nil, fmt.Errorf("ningún servicio habilitado para el modo %s", opts.Mode)
	}

	return NewRunner(opts.ShutdownTimeout, services...), nil
}

// Run arma y ejecuta la aplicación hasta recibir una señal de apagado
func Run(opts Options, db *gorm.DB) error {
	opts = normalizeOptions(opts)

	runner, err := BuildRunner(opts, db)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), opts.Signals...)
	defer stop()

	logger.Infow("app_starting", "mode", opts.Mode)
	return runner.Run(ctx)
}

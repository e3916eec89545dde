package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cuentaflix/cuentaflix/internal/logger"
)

// Service unidad arrancable con ciclo de vida propio
type Service interface {
	Name() string
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// Runner coordina el arranque y apagado de los servicios
type Runner struct {
	services    []Service
	stopTimeout time.Duration
}

// NewRunner crea un runner
func NewRunner(stopTimeout time.Duration, services ...Service) *Runner {
	if stopTimeout <= 0 {
		stopTimeout = 15 * time.Second
	}
	return &Runner{
		services:    services,
		stopTimeout: stopTimeout,
	}
}

// Run arranca todos los servicios y espera a que el contexto termine o
// a que alguno falle. Al salir detiene todo en orden inverso.
func (r *Runner) Run(ctx context.Context) error {
	if r == nil || len(r.services) == 0 {
		return fmt.Errorf("no hay servicios para arrancar")
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, len(r.services))
	var wg sync.WaitGroup

	for _, svc := range r.services {
		svc := svc
		wg.Add(1)
		go func() {
			defer wg.Done()
			logger.Infow("service_starting", "service", svc.Name())
			if err := svc.Start(runCtx); err != nil {
				errCh <- fmt.Errorf("%s: %w", svc.Name(), err)
			}
		}()
	}

	var runErr error
	select {
	case <-runCtx.Done():
	case err := <-errCh:
		runErr = err
		logger.Errorw("service_failed", "error", err)
	}

	cancel()
	r.stopAll()
	wg.Wait()

	return runErr
}

func (r *Runner) stopAll() {
	stopCtx, cancel := context.WithTimeout(context.Background(), r.stopTimeout)
	defer cancel()

	for i := len(r.services) - 1; i >= 0; i-- {
		svc := r.services[i]
		if err := svc.Stop(stopCtx); err != nil {
			logger.Warnw("service_stop_failed", "service", svc.Name(), "error", err)
			continue
		}
		logger.Infow("service_stopped", "service", svc.Name())
	}
}

package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cuentaflix/cuentaflix/internal/constants"
	"github.com/cuentaflix/cuentaflix/internal/logger"
	"github.com/cuentaflix/cuentaflix/internal/notifier"
	"github.com/cuentaflix/cuentaflix/internal/provider"
	"github.com/cuentaflix/cuentaflix/internal/queue"
	"github.com/cuentaflix/cuentaflix/internal/service"
	"github.com/cuentaflix/cuentaflix/internal/vault"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// Consumer consumidor de tareas asíncronas
type Consumer struct {
	*provider.Container
}

// NewConsumer crea el consumidor
func NewConsumer(container *provider.Container) *Consumer {
	return &Consumer{Container: container}
}

// Register registra los handlers en el mux
func (c *Consumer) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(queue.TaskVencimientoCheck, c.HandleVencimientoCheck)
	mux.HandleFunc(queue.TaskCredencialEntrega, c.HandleCredencialEntrega)
	mux.HandleFunc(queue.TaskSuscripcionAviso, c.HandleSuscripcionAviso)
}

// HandleVencimientoCheck corre un barrido de renovación
func (c *Consumer) HandleVencimientoCheck(ctx context.Context, t *asynq.Task) error {
	var payload queue.VencimientoCheckPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		logger.Errorw("worker_vencimiento_payload_invalid", "error", err)
		return fmt.Errorf("payload inválido: %v: %w", err, asynq.SkipRetry)
	}

	summary, err := c.RenewalEngine.Run(ctx)
	if err != nil {
		if errors.Is(err, service.ErrTransientLock) {
			// otro proceso ya está barriendo; no se reintenta
			logger.Infow("worker_vencimiento_skipped", "trigger", payload.Trigger)
			return nil
		}
		return err
	}

	logger.Infow("worker_vencimiento_done",
		"trigger", payload.Trigger,
		"checked", summary.Checked,
		"expired", summary.Expired,
		"notified", summary.Notified,
		"renewed", summary.Renewed,
		"errored", summary.Errored,
	)
	return nil
}

// HandleCredencialEntrega entrega la credencial asignada de un item. Un
// fallo del canal reintenta la entrega; la asignación nunca se revierte.
func (c *Consumer) HandleCredencialEntrega(ctx context.Context, t *asynq.Task) error {
	var payload queue.CredencialEntregaPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		logger.Errorw("worker_entrega_payload_invalid", "error", err)
		return fmt.Errorf("payload inválido: %v: %w", err, asynq.SkipRetry)
	}

	item, err := c.OrderRepo.GetItemByID(payload.OrderItemID)
	if err != nil {
		return err
	}
	if item == nil || item.SuscripcionID == nil {
		logger.Warnw("worker_entrega_item_missing", "order_item_id", payload.OrderItemID)
		return nil
	}

	suscripcion, err := c.SuscripcionRepo.GetByID(*item.SuscripcionID)
	if err != nil {
		return err
	}
	if suscripcion == nil || suscripcion.Credencial == nil {
		logger.Warnw("worker_entrega_suscripcion_missing",
			"order_item_id", payload.OrderItemID,
			"suscripcion_id", item.SuscripcionID,
		)
		return nil
	}

	correo, clave, pin, err := c.InventoryService.Reveal(suscripcion.Credencial)
	if err != nil {
		logger.Errorw("worker_entrega_decrypt_failed",
			"credencial_id", suscripcion.Credencial.ID,
			"error", err,
		)
		if errors.Is(err, vault.ErrDecryptFailed) {
			// clave de vault incorrecta o dato corrupto; reintentar no ayuda
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		return err
	}

	delivery := notifier.CredentialDelivery{
		MessageID:     uuid.NewString(),
		SuscripcionID: suscripcion.ID,
		Correo:        correo,
		Clave:         clave,
		Pin:           pin,
		Perfil:        suscripcion.Credencial.Perfil,
		Vencimiento:   suscripcion.FechaVencimiento.Format(time.RFC3339),
	}
	if suscripcion.Cliente != nil {
		delivery.ClienteNombre = suscripcion.Cliente.Nombre
		if suscripcion.Cliente.Telefono != "" {
			delivery.Canal = constants.CanalWhatsApp
			delivery.Destino = suscripcion.Cliente.Telefono
		} else {
			delivery.Canal = constants.CanalEmail
			delivery.Destino = suscripcion.Cliente.Email
		}
	}
	if suscripcion.Plan != nil {
		delivery.PlanNombre = suscripcion.Plan.Nombre
	}

	if err := c.Notifier.DeliverCredential(ctx, delivery); err != nil {
		logger.Warnw("worker_entrega_send_failed",
			"order_item_id", payload.OrderItemID,
			"suscripcion_id", suscripcion.ID,
			"error", err,
		)
		return err
	}

	logger.Infow("worker_entrega_done",
		"order_item_id", payload.OrderItemID,
		"suscripcion_id", suscripcion.ID,
	)
	return nil
}

// HandleSuscripcionAviso notifica al cliente el resultado de una renovación
func (c *Consumer) HandleSuscripcionAviso(ctx context.Context, t *asynq.Task) error {
	var payload queue.SuscripcionAvisoPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		logger.Errorw("worker_aviso_payload_invalid", "error", err)
		return fmt.Errorf("payload inválido: %v: %w", err, asynq.SkipRetry)
	}

	suscripcion, err := c.SuscripcionRepo.GetByID(payload.SuscripcionID)
	if err != nil {
		return err
	}
	if suscripcion == nil {
		logger.Warnw("worker_aviso_suscripcion_missing", "suscripcion_id", payload.SuscripcionID)
		return nil
	}

	reminder := notifier.Reminder{
		MessageID:     uuid.NewString(),
		SuscripcionID: suscripcion.ID,
		Umbral:        payload.Resultado,
		Vencimiento:   suscripcion.FechaVencimiento.Format(time.RFC3339),
	}
	if suscripcion.Cliente != nil {
		reminder.ClienteNombre = suscripcion.Cliente.Nombre
		if suscripcion.Cliente.Telefono != "" {
			reminder.Canal = constants.CanalWhatsApp
			reminder.Destino = suscripcion.Cliente.Telefono
		} else {
			reminder.Canal = constants.CanalEmail
			reminder.Destino = suscripcion.Cliente.Email
		}
	}
	if suscripcion.Plan != nil {
		reminder.PlanNombre = suscripcion.Plan.Nombre
	}
	switch payload.Resultado {
	case constants.ResultadoRenovada:
		reminder.Mensaje = "Tu plan " + reminder.PlanNombre + " fue renovado"
	case constants.ResultadoVencida:
		reminder.Mensaje = "Tu plan " + reminder.PlanNombre + " venció"
	case constants.ResultadoRenovacionFallida:
		reminder.Mensaje = "No pudimos renovar tu plan " + reminder.PlanNombre + ", contactanos para regularizarlo"
	}

	if err := c.Notifier.SendReminder(ctx, reminder); err != nil {
		logger.Warnw("worker_aviso_send_failed",
			"suscripcion_id", suscripcion.ID,
			"resultado", payload.Resultado,
			"error", err,
		)
		return err
	}
	return nil
}

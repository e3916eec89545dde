package queue

import (
	"encoding/json"

	"github.com/cuentaflix/cuentaflix/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskVencimientoCheck barrido de vencimientos y renovaciones
	TaskVencimientoCheck = constants.TaskVencimientoCheck
	// TaskCredencialEntrega entrega de credencial tras la asignación
	TaskCredencialEntrega = constants.TaskCredencialEntrega
	// TaskSuscripcionAviso notificación de resultado de renovación
	TaskSuscripcionAviso = constants.TaskSuscripcionAviso
)

// VencimientoCheckPayload carga del barrido (vacía, el barrido es global)
type VencimientoCheckPayload struct {
	Trigger string `json:"trigger"` // cron / manual
}

// CredencialEntregaPayload carga de la entrega de credencial
type CredencialEntregaPayload struct {
	OrderItemID uint `json:"order_item_id"`
}

// SuscripcionAvisoPayload carga del aviso de renovación
type SuscripcionAvisoPayload struct {
	SuscripcionID uint   `json:"suscripcion_id"`
	Resultado     string `json:"resultado"` // renovada / vencida / renovacion_fallida
}

// NewVencimientoCheckTask crea la tarea de barrido
func NewVencimientoCheckTask(payload VencimientoCheckPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskVencimientoCheck, body), nil
}

// NewCredencialEntregaTask crea la tarea de entrega
func NewCredencialEntregaTask(payload CredencialEntregaPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCredencialEntrega, body), nil
}

// NewSuscripcionAvisoTask crea la tarea de aviso
func NewSuscripcionAvisoTask(payload SuscripcionAvisoPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskSuscripcionAviso, body), nil
}

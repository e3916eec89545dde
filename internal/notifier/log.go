package notifier

import (
	"context"

	"github.com/cuentaflix/cuentaflix/internal/logger"
)

// LogNotifier escribe los mensajes al log; para desarrollo y pruebas
type LogNotifier struct{}

// NewLogNotifier crea el notificador de log
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

// SendReminder registra el aviso en el log
func (n *LogNotifier) SendReminder(_ context.Context, r Reminder) error {
	logger.Infow("notifier_reminder",
		"message_id", r.MessageID,
		"suscripcion_id", r.SuscripcionID,
		"canal", r.Canal,
		"umbral", r.Umbral,
		"vencimiento", r.Vencimiento,
	)
	return nil
}

// DeliverCredential registra la entrega en el log, sin exponer la clave
func (n *LogNotifier) DeliverCredential(_ context.Context, d CredentialDelivery) error {
	logger.Infow("notifier_credential_delivery",
		"message_id", d.MessageID,
		"suscripcion_id", d.SuscripcionID,
		"canal", d.Canal,
		"plan", d.PlanNombre,
	)
	return nil
}

package notifier

import "context"

// Reminder aviso de vencimiento a despachar
type Reminder struct {
	MessageID     string `json:"message_id"`
	SuscripcionID uint   `json:"suscripcion_id"`
	ClienteNombre string `json:"cliente_nombre"`
	Destino       string `json:"destino"` // teléfono o email según canal
	Canal         string `json:"canal"`
	Umbral        string `json:"umbral"`
	PlanNombre    string `json:"plan_nombre"`
	Vencimiento   string `json:"vencimiento"` // RFC3339
	Mensaje       string `json:"mensaje"`
}

// CredentialDelivery entrega de credencial al comprador
type CredentialDelivery struct {
	MessageID     string `json:"message_id"`
	SuscripcionID uint   `json:"suscripcion_id"`
	ClienteNombre string `json:"cliente_nombre"`
	Destino       string `json:"destino"`
	Canal         string `json:"canal"`
	PlanNombre    string `json:"plan_nombre"`
	Correo        string `json:"correo"` // ya descifrado
	Clave         string `json:"clave"`
	Pin           string `json:"pin,omitempty"`
	Perfil        string `json:"perfil,omitempty"`
	Vencimiento   string `json:"vencimiento"`
}

// Notifier canal de salida de mensajes al cliente. La plataforma no habla
// con WhatsApp ni SMTP directamente; eso vive detrás de esta interfaz.
type Notifier interface {
	SendReminder(ctx context.Context, r Reminder) error
	DeliverCredential(ctx context.Context, d CredentialDelivery) error
}

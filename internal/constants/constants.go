package constants

// Estados de credencial en inventario
const (
	CredencialDisponible    = "disponible"    // en stock, lista para asignar
	CredencialAsignada      = "asignada"      // entregada a una suscripción u orden
	CredencialMantenimiento = "mantenimiento" // retirada temporalmente (cambio de clave, cuenta caída)
)

// Estados de orden
const (
	OrderPendientePago = "pendiente_pago"
	OrderPagada        = "pagada"
	OrderEnProceso     = "en_proceso"
	OrderEntregada     = "entregada"
	OrderCancelada     = "cancelada"
)

// Estados de item de orden
const (
	OrderItemPendiente = "pendiente"
	OrderItemAsignada  = "asignada"
	OrderItemEntregada = "entregada"
)

// Estados de suscripción
const (
	SuscripcionActiva    = "activa"
	SuscripcionPausada   = "pausada"
	SuscripcionCancelada = "cancelada"
	SuscripcionVencida   = "vencida"
)

// Umbrales de aviso de vencimiento
const (
	AvisoPrevio7Dias = "previo_7_dias"
	AvisoPrevio3Dias = "previo_3_dias"
	AvisoPrevio1Dia  = "previo_1_dia"
	AvisoVencimiento = "vencimiento"
)

// Resultados de renovación que se avisan al cliente
const (
	ResultadoRenovada          = "renovada"
	ResultadoVencida           = "vencida"
	ResultadoRenovacionFallida = "renovacion_fallida"
)

// Canales de notificación
const (
	CanalWhatsApp = "whatsapp"
	CanalEmail    = "email"
)

// Tareas asíncronas
const (
	TaskVencimientoCheck  = "suscripcion:vencimiento_check"
	TaskCredencialEntrega = "credencial:entrega"
	TaskSuscripcionAviso  = "suscripcion:aviso"
)

// Colas asynq
const (
	QueueDefault  = "default"
	QueueCritical = "critical"
)

// Prefijo de número de orden
const OrderNoPrefix = "CF"

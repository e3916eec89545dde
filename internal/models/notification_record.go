package models

import (
	"time"
)

// NotificationRecord aviso programado de vencimiento. Por vigencia existe un
// registro por umbral; el barrido lo marca enviado con un update condicionado,
// el mismo registro nunca se despacha dos veces.
type NotificationRecord struct {
	ID              uint       `gorm:"primarykey" json:"id"`
	SuscripcionID   uint       `gorm:"index:idx_aviso_suscripcion_umbral;not null" json:"suscripcion_id"`
	Umbral          string     `gorm:"index:idx_aviso_suscripcion_umbral;not null" json:"umbral"` // previo_7_dias/previo_3_dias/previo_1_dia/vencimiento
	FechaProgramada time.Time  `gorm:"index;not null" json:"fecha_programada"`
	Canal           string     `gorm:"not null" json:"canal"` // whatsapp/email
	Enviado         bool       `gorm:"index;not null;default:false" json:"enviado"`
	EnviadoAt       *time.Time `json:"enviado_at"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// TableName nombre de tabla
func (NotificationRecord) TableName() string {
	return "avisos_vencimiento"
}

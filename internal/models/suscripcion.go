package models

import (
	"time"

	"gorm.io/gorm"
)

// Suscripcion vigencia de un cliente sobre un plan, respaldada por una
// credencial asignada. FechaVencimiento solo avanza (renovar nunca la acorta).
type Suscripcion struct {
	ID               uint           `gorm:"primarykey" json:"id"`
	ClienteID        uint           `gorm:"index;not null" json:"cliente_id"`
	PlanID           uint           `gorm:"index;not null" json:"plan_id"`
	CredencialID     *uint          `gorm:"index" json:"credencial_id,omitempty"`
	Estado           string         `gorm:"index;not null" json:"estado"` // activa/pausada/cancelada/vencida
	FechaInicio      time.Time      `gorm:"not null" json:"fecha_inicio"`
	FechaVencimiento time.Time      `gorm:"index;not null" json:"fecha_vencimiento"`
	AutoRenovar      bool           `gorm:"not null;default:false" json:"auto_renovar"`
	Renovaciones     int            `gorm:"not null;default:0" json:"renovaciones"`
	Notas            string         `gorm:"type:text" json:"notas,omitempty"`
	PausadaAt        *time.Time     `json:"pausada_at"`
	CanceladaAt      *time.Time     `json:"cancelada_at"`
	CreatedAt        time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`

	Cliente    *Cliente             `gorm:"foreignKey:ClienteID" json:"cliente,omitempty"`
	Plan       *Plan                `gorm:"foreignKey:PlanID" json:"plan,omitempty"`
	Credencial *Credencial          `gorm:"foreignKey:CredencialID" json:"credencial,omitempty"`
	Avisos     []NotificationRecord `gorm:"foreignKey:SuscripcionID" json:"avisos,omitempty"`
}

// TableName nombre de tabla
func (Suscripcion) TableName() string {
	return "suscripciones"
}

package models

import (
	"time"

	"gorm.io/gorm"
)

// Credencial cuenta en inventario. Correo y clave se guardan cifrados
// (AES-GCM, base64); solo el vault los abre.
type Credencial struct {
	ID            uint           `gorm:"primarykey" json:"id"`
	PlanID        uint           `gorm:"index;not null" json:"plan_id"`
	CorreoCifrado string         `gorm:"type:text;not null" json:"-"`
	ClaveCifrada  string         `gorm:"type:text;not null" json:"-"`
	PinCifrado    string         `gorm:"type:text" json:"-"` // PIN de perfil, opcional
	Estado        string         `gorm:"index;not null" json:"estado"` // disponible/asignada/mantenimiento
	Perfil        string         `gorm:"type:varchar(50)" json:"perfil,omitempty"`
	SuscripcionID *uint          `gorm:"index" json:"suscripcion_id,omitempty"`
	AsignadaAt    *time.Time     `gorm:"index" json:"asignada_at"`
	Notas         string         `gorm:"type:text" json:"notas,omitempty"`
	CreatedAt     time.Time      `gorm:"index" json:"created_at"` // orden FIFO de asignación
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	Plan *Plan `gorm:"foreignKey:PlanID" json:"plan,omitempty"`
}

// TableName nombre de tabla
func (Credencial) TableName() string {
	return "credenciales"
}

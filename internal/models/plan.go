package models

import (
	"time"

	"gorm.io/gorm"
)

// Plan plan de suscripción a la venta (Netflix 1 pantalla, Disney+ familiar, ...)
type Plan struct {
	ID            uint           `gorm:"primarykey" json:"id"`
	Nombre        string         `gorm:"not null" json:"nombre"`                             // nombre comercial
	Servicio      string         `gorm:"index;not null" json:"servicio"`                     // netflix / disney / hbo / ...
	Costo         Money          `gorm:"type:decimal(20,2);not null;default:0" json:"costo"` // costo del proveedor
	PrecioVenta   Money          `gorm:"type:decimal(20,2);not null;default:0" json:"precio_venta"`
	DuracionDias  int            `gorm:"not null;default:0" json:"duracion_dias"`  // tiene prioridad sobre meses
	DuracionMeses int            `gorm:"not null;default:0" json:"duracion_meses"` // calendario (AddDate)
	Perfiles      int            `gorm:"not null;default:1" json:"perfiles"`       // perfiles por credencial
	Activo        bool           `gorm:"index;not null;default:true" json:"activo"`
	Descripcion   string         `gorm:"type:text" json:"descripcion,omitempty"`
	CreatedAt     time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName nombre de tabla
func (Plan) TableName() string {
	return "planes"
}

// Duracion devuelve la duración como función sobre una fecha base.
// Los días tienen prioridad cuando el plan define ambos.
func (p Plan) Duracion(from time.Time) time.Time {
	if p.DuracionDias > 0 {
		return from.AddDate(0, 0, p.DuracionDias)
	}
	if p.DuracionMeses > 0 {
		return from.AddDate(0, p.DuracionMeses, 0)
	}
	// plan sin duración configurada: un mes calendario
	return from.AddDate(0, 1, 0)
}

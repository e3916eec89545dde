package models

import (
	"time"

	"gorm.io/gorm"
)

// OrderItem renglón de orden: un plan a entregar. Al asignar inventario se
// enlaza la credencial y la suscripción creada.
type OrderItem struct {
	ID            uint           `gorm:"primarykey" json:"id"`
	OrderID       uint           `gorm:"index;not null" json:"order_id"`
	PlanID        uint           `gorm:"index;not null" json:"plan_id"`
	PlanNombre    string         `gorm:"not null" json:"plan_nombre"` // snapshot
	UnitPrice     Money          `gorm:"type:decimal(20,2);not null;default:0" json:"unit_price"`
	UnitCost      Money          `gorm:"type:decimal(20,2);not null;default:0" json:"unit_cost"` // costo del plan al momento de la compra
	Quantity      int            `gorm:"not null;default:1" json:"quantity"`
	TotalPrice    Money          `gorm:"type:decimal(20,2);not null;default:0" json:"total_price"`
	Estado        string         `gorm:"index;not null" json:"estado"` // pendiente/asignada/entregada
	CredencialID  *uint          `gorm:"index" json:"credencial_id,omitempty"`
	SuscripcionID *uint          `gorm:"index" json:"suscripcion_id,omitempty"`
	EntregadaAt   *time.Time     `json:"entregada_at"`
	CreatedAt     time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	Plan *Plan `gorm:"foreignKey:PlanID" json:"plan,omitempty"`
}

// TableName nombre de tabla
func (OrderItem) TableName() string {
	return "order_items"
}

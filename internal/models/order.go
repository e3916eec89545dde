package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Order orden de compra. El pago es por transferencia y lo confirma un operador.
type Order struct {
	ID          uint           `gorm:"primarykey" json:"id"`
	OrderNo     string         `gorm:"uniqueIndex;not null" json:"order_no"`
	ClienteID   uint           `gorm:"index;not null" json:"cliente_id"`
	Status      string         `gorm:"index;not null" json:"status"` // pendiente_pago/pagada/en_proceso/entregada/cancelada
	Currency    string         `gorm:"not null" json:"currency"`
	TotalAmount Money          `gorm:"type:decimal(20,2);not null;default:0" json:"total_amount"`
	ExpiresAt   *time.Time     `gorm:"index" json:"expires_at"` // límite para confirmar el pago
	PaidAt      *time.Time     `gorm:"index" json:"paid_at"`
	CanceledAt  *time.Time     `gorm:"index" json:"canceled_at"`
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	Cliente  *Cliente    `gorm:"foreignKey:ClienteID" json:"cliente,omitempty"`
	Items    []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"`
	Ganancia *Money      `gorm:"-" json:"ganancia,omitempty"` // solo en vistas del panel
}

// TableName nombre de tabla
func (Order) TableName() string {
	return "orders"
}

// CalcularGanancia margen de la orden: precio de venta menos costo,
// sumado sobre los items
func (o *Order) CalcularGanancia() Money {
	ganancia := decimal.Zero
	for _, item := range o.Items {
		qty := int64(item.Quantity)
		if qty <= 0 {
			qty = 1
		}
		margen := item.UnitPrice.Decimal.Sub(item.UnitCost.Decimal).Mul(decimal.NewFromInt(qty))
		ganancia = ganancia.Add(margen)
	}
	return NewMoneyFromDecimal(ganancia)
}

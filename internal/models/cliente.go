package models

import (
	"time"

	"gorm.io/gorm"
)

// Cliente comprador registrado por el operador
type Cliente struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	Nombre    string         `gorm:"not null" json:"nombre"`
	Telefono  string         `gorm:"index" json:"telefono,omitempty"` // WhatsApp
	Email     string         `gorm:"index" json:"email,omitempty"`
	Notas     string         `gorm:"type:text" json:"notas,omitempty"`
	CreatedAt time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName nombre de tabla
func (Cliente) TableName() string {
	return "clientes"
}

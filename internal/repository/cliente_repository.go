package repository

import (
	"errors"

	"github.com/cuentaflix/cuentaflix/internal/models"

	"gorm.io/gorm"
)

// ClienteRepository acceso a clientes
type ClienteRepository interface {
	Create(cliente *models.Cliente) error
	Update(cliente *models.Cliente) error
	GetByID(id uint) (*models.Cliente, error)
	GetByTelefono(telefono string) (*models.Cliente, error)
	List(page, pageSize int) ([]models.Cliente, int64, error)
	WithTx(tx *gorm.DB) *GormClienteRepository
}

// GormClienteRepository implementación GORM
type GormClienteRepository struct {
	db *gorm.DB
}

// NewClienteRepository crea el repositorio de clientes
func NewClienteRepository(db *gorm.DB) *GormClienteRepository {
	return &GormClienteRepository{db: db}
}

// WithTx enlaza una transacción
func (r *GormClienteRepository) WithTx(tx *gorm.DB) *GormClienteRepository {
	if tx == nil {
		return r
	}
	return &GormClienteRepository{db: tx}
}

// Create crea un cliente
func (r *GormClienteRepository) Create(cliente *models.Cliente) error {
	return r.db.Create(cliente).Error
}

// Update actualiza un cliente
func (r *GormClienteRepository) Update(cliente *models.Cliente) error {
	return r.db.Save(cliente).Error
}

// GetByID busca un cliente por ID
func (r *GormClienteRepository) GetByID(id uint) (*models.Cliente, error) {
	var cliente models.Cliente
	if err := r.db.First(&cliente, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cliente, nil
}

// GetByTelefono busca un cliente por teléfono
func (r *GormClienteRepository) GetByTelefono(telefono string) (*models.Cliente, error) {
	if telefono == "" {
		return nil, nil
	}
	var cliente models.Cliente
	if err := r.db.Where("telefono = ?", telefono).First(&cliente).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cliente, nil
}

// List lista clientes
func (r *GormClienteRepository) List(page, pageSize int) ([]models.Cliente, int64, error) {
	query := r.db.Model(&models.Cliente{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, page, pageSize)

	var items []models.Cliente
	if err := query.Order("id asc").Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

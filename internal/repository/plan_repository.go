package repository

import (
	"errors"

	"github.com/cuentaflix/cuentaflix/internal/models"

	"gorm.io/gorm"
)

// PlanRepository acceso a planes
type PlanRepository interface {
	Create(plan *models.Plan) error
	Update(plan *models.Plan) error
	Delete(id uint) error
	GetByID(id uint) (*models.Plan, error)
	List(servicio string, soloActivos bool, page, pageSize int) ([]models.Plan, int64, error)
	ListByIDs(ids []uint) ([]models.Plan, error)
	WithTx(tx *gorm.DB) *GormPlanRepository
}

// GormPlanRepository implementación GORM
type GormPlanRepository struct {
	db *gorm.DB
}

// NewPlanRepository crea el repositorio de planes
func NewPlanRepository(db *gorm.DB) *GormPlanRepository {
	return &GormPlanRepository{db: db}
}

// WithTx enlaza una transacción
func (r *GormPlanRepository) WithTx(tx *gorm.DB) *GormPlanRepository {
	if tx == nil {
		return r
	}
	return &GormPlanRepository{db: tx}
}

// Create crea un plan
func (r *GormPlanRepository) Create(plan *models.Plan) error {
	return r.db.Create(plan).Error
}

// Update actualiza un plan
func (r *GormPlanRepository) Update(plan *models.Plan) error {
	return r.db.Save(plan).Error
}

// Delete borra (soft delete) un plan
func (r *GormPlanRepository) Delete(id uint) error {
	return r.db.Delete(&models.Plan{}, id).Error
}

// GetByID busca un plan por ID
func (r *GormPlanRepository) GetByID(id uint) (*models.Plan, error) {
	var plan models.Plan
	if err := r.db.First(&plan, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &plan, nil
}

// List lista planes con filtros opcionales
func (r *GormPlanRepository) List(servicio string, soloActivos bool, page, pageSize int) ([]models.Plan, int64, error) {
	query := r.db.Model(&models.Plan{})
	if servicio != "" {
		query = query.Where("servicio = ?", servicio)
	}
	if soloActivos {
		query = query.Where("activo = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, page, pageSize)

	var items []models.Plan
	if err := query.Order("id asc").Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// ListByIDs busca planes por lista de IDs
func (r *GormPlanRepository) ListByIDs(ids []uint) ([]models.Plan, error) {
	if len(ids) == 0 {
		return []models.Plan{}, nil
	}
	var items []models.Plan
	if err := r.db.Where("id IN ?", ids).Order("id asc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

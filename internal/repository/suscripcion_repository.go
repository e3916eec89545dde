package repository

import (
	"errors"
	"time"

	"github.com/cuentaflix/cuentaflix/internal/constants"
	"github.com/cuentaflix/cuentaflix/internal/models"

	"gorm.io/gorm"
)

// SuscripcionRepository acceso a suscripciones
type SuscripcionRepository interface {
	Create(s *models.Suscripcion) error
	Update(s *models.Suscripcion) error
	GetByID(id uint) (*models.Suscripcion, error)
	List(estado string, clienteID uint, page, pageSize int) ([]models.Suscripcion, int64, error)
	FindActivas() ([]models.Suscripcion, error)
	FindVencidas(at time.Time) ([]models.Suscripcion, error)
	FindPorVencer(desde, hasta time.Time) ([]models.Suscripcion, error)
	UpdateEstado(id uint, fromEstados []string, toEstado string, updates map[string]interface{}) (int64, error)
	WithTx(tx *gorm.DB) *GormSuscripcionRepository
}

// GormSuscripcionRepository implementación GORM
type GormSuscripcionRepository struct {
	db *gorm.DB
}

// NewSuscripcionRepository crea el repositorio de suscripciones
func NewSuscripcionRepository(db *gorm.DB) *GormSuscripcionRepository {
	return &GormSuscripcionRepository{db: db}
}

// WithTx enlaza una transacción
func (r *GormSuscripcionRepository) WithTx(tx *gorm.DB) *GormSuscripcionRepository {
	if tx == nil {
		return r
	}
	return &GormSuscripcionRepository{db: tx}
}

// Create crea una suscripción
func (r *GormSuscripcionRepository) Create(s *models.Suscripcion) error {
	return r.db.Create(s).Error
}

// Update actualiza una suscripción
func (r *GormSuscripcionRepository) Update(s *models.Suscripcion) error {
	return r.db.Save(s).Error
}

// GetByID busca una suscripción con sus relaciones
func (r *GormSuscripcionRepository) GetByID(id uint) (*models.Suscripcion, error) {
	var s models.Suscripcion
	if err := r.db.Preload("Cliente").Preload("Plan").Preload("Credencial").
		First(&s, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

// List lista suscripciones con filtros opcionales
func (r *GormSuscripcionRepository) List(estado string, clienteID uint, page, pageSize int) ([]models.Suscripcion, int64, error) {
	query := r.db.Model(&models.Suscripcion{}).Preload("Cliente").Preload("Plan")
	if estado != "" {
		query = query.Where("estado = ?", estado)
	}
	if clienteID > 0 {
		query = query.Where("cliente_id = ?", clienteID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, page, pageSize)

	var items []models.Suscripcion
	if err := query.Order("fecha_vencimiento asc").Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// FindActivas todas las suscripciones activas
func (r *GormSuscripcionRepository) FindActivas() ([]models.Suscripcion, error) {
	var items []models.Suscripcion
	if err := r.db.Preload("Cliente").Preload("Plan").
		Where("estado = ?", constants.SuscripcionActiva).
		Order("fecha_vencimiento asc").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// FindVencidas activas cuya fecha de vencimiento ya pasó
func (r *GormSuscripcionRepository) FindVencidas(at time.Time) ([]models.Suscripcion, error) {
	var items []models.Suscripcion
	if err := r.db.Preload("Cliente").Preload("Plan").
		Where("estado = ? AND fecha_vencimiento < ?", constants.SuscripcionActiva, at).
		Order("fecha_vencimiento asc").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// FindPorVencer activas que vencen dentro de la ventana [desde, hasta]
func (r *GormSuscripcionRepository) FindPorVencer(desde, hasta time.Time) ([]models.Suscripcion, error) {
	var items []models.Suscripcion
	if err := r.db.Preload("Cliente").Preload("Plan").
		Where("estado = ? AND fecha_vencimiento >= ? AND fecha_vencimiento <= ?",
			constants.SuscripcionActiva, desde, hasta).
		Order("fecha_vencimiento asc").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// UpdateEstado transición de estado condicionada al estado origen
func (r *GormSuscripcionRepository) UpdateEstado(id uint, fromEstados []string, toEstado string, updates map[string]interface{}) (int64, error) {
	if id == 0 || len(fromEstados) == 0 {
		return 0, nil
	}
	if updates == nil {
		updates = map[string]interface{}{}
	}
	updates["estado"] = toEstado
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now()
	}
	result := r.db.Model(&models.Suscripcion{}).
		Where("id = ? AND estado IN ?", id, fromEstados).
		Updates(updates)
	return result.RowsAffected, result.Error
}

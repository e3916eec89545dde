package repository

import (
	"errors"
	"time"

	"github.com/cuentaflix/cuentaflix/internal/models"

	"gorm.io/gorm"
)

// NotificationRepository acceso a avisos de vencimiento
type NotificationRepository interface {
	CreateBatch(records []models.NotificationRecord) error
	DeleteUnsentBySuscripcion(suscripcionID uint) (int64, error)
	ListBySuscripcion(suscripcionID uint) ([]models.NotificationRecord, error)
	FindDue(at time.Time) ([]models.NotificationRecord, error)
	WasSent(suscripcionID uint, umbral string) (bool, error)
	MarkSent(id uint, sentAt time.Time) (int64, error)
	WithTx(tx *gorm.DB) *GormNotificationRepository
}

// GormNotificationRepository implementación GORM
type GormNotificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository crea el repositorio de avisos
func NewNotificationRepository(db *gorm.DB) *GormNotificationRepository {
	return &GormNotificationRepository{db: db}
}

// WithTx enlaza una transacción
func (r *GormNotificationRepository) WithTx(tx *gorm.DB) *GormNotificationRepository {
	if tx == nil {
		return r
	}
	return &GormNotificationRepository{db: tx}
}

// CreateBatch crea avisos programados
func (r *GormNotificationRepository) CreateBatch(records []models.NotificationRecord) error {
	if len(records) == 0 {
		return nil
	}
	return r.db.Create(&records).Error
}

// DeleteUnsentBySuscripcion borra los avisos pendientes de una suscripción.
// Los ya enviados se conservan como historial y como guarda de duplicados.
func (r *GormNotificationRepository) DeleteUnsentBySuscripcion(suscripcionID uint) (int64, error) {
	if suscripcionID == 0 {
		return 0, nil
	}
	result := r.db.
		Where("suscripcion_id = ? AND enviado = ?", suscripcionID, false).
		Delete(&models.NotificationRecord{})
	return result.RowsAffected, result.Error
}

// ListBySuscripcion avisos de una suscripción
func (r *GormNotificationRepository) ListBySuscripcion(suscripcionID uint) ([]models.NotificationRecord, error) {
	var records []models.NotificationRecord
	if err := r.db.Where("suscripcion_id = ?", suscripcionID).
		Order("fecha_programada asc").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// FindDue avisos no enviados cuya fecha programada ya llegó
func (r *GormNotificationRepository) FindDue(at time.Time) ([]models.NotificationRecord, error) {
	var records []models.NotificationRecord
	if err := r.db.
		Where("enviado = ? AND fecha_programada <= ?", false, at).
		Order("fecha_programada asc").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// WasSent indica si el umbral ya fue notificado para la suscripción
func (r *GormNotificationRepository) WasSent(suscripcionID uint, umbral string) (bool, error) {
	var record models.NotificationRecord
	err := r.db.
		Where("suscripcion_id = ? AND umbral = ? AND enviado = ?", suscripcionID, umbral, true).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// MarkSent marca un aviso como enviado. Update condicionado a enviado=false:
// si devuelve 0 filas, otro barrido ya lo envió.
func (r *GormNotificationRepository) MarkSent(id uint, sentAt time.Time) (int64, error) {
	if id == 0 {
		return 0, nil
	}
	result := r.db.Model(&models.NotificationRecord{}).
		Where("id = ? AND enviado = ?", id, false).
		Updates(map[string]interface{}{
			"enviado":    true,
			"enviado_at": sentAt,
			"updated_at": sentAt,
		})
	return result.RowsAffected, result.Error
}

package repository

import (
	"errors"
	"time"

	"github.com/cuentaflix/cuentaflix/internal/constants"
	"github.com/cuentaflix/cuentaflix/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrClaimContention la credencial elegida se perdió repetidamente contra
// otras transacciones; es transitorio, el llamador puede reintentar
var ErrClaimContention = errors.New("inventario en disputa, reintente")

// CredencialRepository acceso al inventario de credenciales
type CredencialRepository interface {
	CreateBatch(items []models.Credencial) error
	GetByID(id uint) (*models.Credencial, error)
	Update(credencial *models.Credencial) error
	List(planID uint, estado string, page, pageSize int) ([]models.Credencial, int64, error)
	ClaimOldestAvailable(planID, suscripcionID uint, asignadaAt time.Time) (*models.Credencial, error)
	Release(id uint, releasedAt time.Time) (int64, error)
	MarkMantenimiento(id uint, at time.Time) (int64, error)
	CountByPlan(planID uint) (StockCount, error)
	CountDisponiblesByPlanIDs(planIDs []uint) (map[uint]int64, error)
	WithTx(tx *gorm.DB) *GormCredencialRepository
}

// StockCount existencias por estado
type StockCount struct {
	Total         int64 `json:"total"`
	Disponibles   int64 `json:"disponibles"`
	Asignadas     int64 `json:"asignadas"`
	Mantenimiento int64 `json:"mantenimiento"`
}

// GormCredencialRepository implementación GORM
type GormCredencialRepository struct {
	db *gorm.DB
}

// NewCredencialRepository crea el repositorio de inventario
func NewCredencialRepository(db *gorm.DB) *GormCredencialRepository {
	return &GormCredencialRepository{db: db}
}

// WithTx enlaza una transacción
func (r *GormCredencialRepository) WithTx(tx *gorm.DB) *GormCredencialRepository {
	if tx == nil {
		return r
	}
	return &GormCredencialRepository{db: tx}
}

// CreateBatch carga credenciales al inventario
func (r *GormCredencialRepository) CreateBatch(items []models.Credencial) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.Create(&items).Error
}

// GetByID busca una credencial por ID
func (r *GormCredencialRepository) GetByID(id uint) (*models.Credencial, error) {
	var credencial models.Credencial
	if err := r.db.First(&credencial, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &credencial, nil
}

// Update actualiza una credencial
func (r *GormCredencialRepository) Update(credencial *models.Credencial) error {
	return r.db.Save(credencial).Error
}

// List lista inventario con filtros opcionales
func (r *GormCredencialRepository) List(planID uint, estado string, page, pageSize int) ([]models.Credencial, int64, error) {
	query := r.db.Model(&models.Credencial{}).Preload("Plan")
	if planID > 0 {
		query = query.Where("plan_id = ?", planID)
	}
	if estado != "" {
		query = query.Where("estado = ?", estado)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, page, pageSize)

	var items []models.Credencial
	if err := query.Order("created_at asc, id asc").Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// ClaimOldestAvailable toma la credencial disponible más antigua del plan
// (FIFO por created_at) y la marca asignada. El update está condicionado al
// estado, así el mismo registro nunca se asigna dos veces aunque compitan
// varias transacciones. Devuelve nil sin error cuando no hay stock.
func (r *GormCredencialRepository) ClaimOldestAvailable(planID, suscripcionID uint, asignadaAt time.Time) (*models.Credencial, error) {
	if planID == 0 {
		return nil, errors.New("invalid plan id")
	}

	for attempt := 0; attempt < 5; attempt++ {
		var credencial models.Credencial
		err := r.db.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("plan_id = ? AND estado = ?", planID, constants.CredencialDisponible).
			Order("created_at asc, id asc").
			First(&credencial).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, nil
			}
			return nil, err
		}

		result := r.db.Model(&models.Credencial{}).
			Where("id = ? AND estado = ?", credencial.ID, constants.CredencialDisponible).
			Updates(map[string]interface{}{
				"estado":         constants.CredencialAsignada,
				"suscripcion_id": suscripcionID,
				"asignada_at":    asignadaAt,
				"updated_at":     asignadaAt,
			})
		if result.Error != nil {
			return nil, result.Error
		}
		if result.RowsAffected == 1 {
			credencial.Estado = constants.CredencialAsignada
			credencial.SuscripcionID = &suscripcionID
			credencial.AsignadaAt = &asignadaAt
			return &credencial, nil
		}
		// otra transacción ganó el registro, se reintenta con el siguiente
	}
	return nil, ErrClaimContention
}

// Release devuelve una credencial asignada al pool. Update condicionado:
// solo libera si sigue asignada.
func (r *GormCredencialRepository) Release(id uint, releasedAt time.Time) (int64, error) {
	if id == 0 {
		return 0, nil
	}
	result := r.db.Model(&models.Credencial{}).
		Where("id = ? AND estado = ?", id, constants.CredencialAsignada).
		Updates(map[string]interface{}{
			"estado":         constants.CredencialDisponible,
			"suscripcion_id": nil,
			"asignada_at":    nil,
			"updated_at":     releasedAt,
		})
	return result.RowsAffected, result.Error
}

// MarkMantenimiento retira una credencial del pool disponible
func (r *GormCredencialRepository) MarkMantenimiento(id uint, at time.Time) (int64, error) {
	if id == 0 {
		return 0, nil
	}
	result := r.db.Model(&models.Credencial{}).
		Where("id = ? AND estado = ?", id, constants.CredencialDisponible).
		Updates(map[string]interface{}{
			"estado":     constants.CredencialMantenimiento,
			"updated_at": at,
		})
	return result.RowsAffected, result.Error
}

// CountByPlan existencias por estado de un plan
func (r *GormCredencialRepository) CountByPlan(planID uint) (StockCount, error) {
	var count StockCount
	if planID == 0 {
		return count, errors.New("invalid plan id")
	}

	type row struct {
		Estado string
		Total  int64
	}
	var rows []row
	if err := r.db.Model(&models.Credencial{}).
		Select("estado, COUNT(*) as total").
		Where("plan_id = ?", planID).
		Group("estado").
		Scan(&rows).Error; err != nil {
		return count, err
	}

	for _, rw := range rows {
		count.Total += rw.Total
		switch rw.Estado {
		case constants.CredencialDisponible:
			count.Disponibles = rw.Total
		case constants.CredencialAsignada:
			count.Asignadas = rw.Total
		case constants.CredencialMantenimiento:
			count.Mantenimiento = rw.Total
		}
	}
	return count, nil
}

// CountDisponiblesByPlanIDs stock disponible por plan
func (r *GormCredencialRepository) CountDisponiblesByPlanIDs(planIDs []uint) (map[uint]int64, error) {
	result := make(map[uint]int64)
	if len(planIDs) == 0 {
		return result, nil
	}

	type row struct {
		PlanID uint
		Total  int64
	}
	var rows []row
	if err := r.db.Model(&models.Credencial{}).
		Select("plan_id, COUNT(*) as total").
		Where("plan_id IN ? AND estado = ?", planIDs, constants.CredencialDisponible).
		Group("plan_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	for _, rw := range rows {
		result[rw.PlanID] = rw.Total
	}
	return result, nil
}

package repository

import (
	"errors"
	"time"

	"github.com/cuentaflix/cuentaflix/internal/constants"
	"github.com/cuentaflix/cuentaflix/internal/models"

	"gorm.io/gorm"
)

// OrderRepository acceso a órdenes y sus items
type OrderRepository interface {
	Create(order *models.Order) error
	GetByID(id uint) (*models.Order, error)
	GetByOrderNo(orderNo string) (*models.Order, error)
	List(status string, clienteID uint, page, pageSize int) ([]models.Order, int64, error)
	Update(order *models.Order) error
	UpdateStatus(id uint, fromStatuses []string, toStatus string, updates map[string]interface{}) (int64, error)
	GetItemByID(id uint) (*models.OrderItem, error)
	UpdateItem(item *models.OrderItem) error
	UpdateItemEstado(id uint, fromEstado, toEstado string, updates map[string]interface{}) (int64, error)
	CountPendingItems(orderID uint) (int64, error)
	WithTx(tx *gorm.DB) *GormOrderRepository
}

// GormOrderRepository implementación GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository crea el repositorio de órdenes
func NewOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// WithTx enlaza una transacción
func (r *GormOrderRepository) WithTx(tx *gorm.DB) *GormOrderRepository {
	if tx == nil {
		return r
	}
	return &GormOrderRepository{db: tx}
}

// Create crea la orden junto con sus items
func (r *GormOrderRepository) Create(order *models.Order) error {
	return r.db.Create(order).Error
}

// GetByID busca una orden con items y cliente
func (r *GormOrderRepository) GetByID(id uint) (*models.Order, error) {
	var order models.Order
	if err := r.db.Preload("Items").Preload("Cliente").First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// GetByOrderNo busca una orden por número
func (r *GormOrderRepository) GetByOrderNo(orderNo string) (*models.Order, error) {
	var order models.Order
	if err := r.db.Preload("Items").Preload("Cliente").
		Where("order_no = ?", orderNo).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// List lista órdenes con filtros opcionales
func (r *GormOrderRepository) List(status string, clienteID uint, page, pageSize int) ([]models.Order, int64, error) {
	query := r.db.Model(&models.Order{}).Preload("Items").Preload("Cliente")
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if clienteID > 0 {
		query = query.Where("cliente_id = ?", clienteID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, page, pageSize)

	var items []models.Order
	if err := query.Order("id desc").Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// Update actualiza una orden
func (r *GormOrderRepository) Update(order *models.Order) error {
	return r.db.Save(order).Error
}

// UpdateStatus transición de estado condicionada al estado origen
func (r *GormOrderRepository) UpdateStatus(id uint, fromStatuses []string, toStatus string, updates map[string]interface{}) (int64, error) {
	if id == 0 || len(fromStatuses) == 0 {
		return 0, nil
	}
	if updates == nil {
		updates = map[string]interface{}{}
	}
	updates["status"] = toStatus
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now()
	}
	result := r.db.Model(&models.Order{}).
		Where("id = ? AND status IN ?", id, fromStatuses).
		Updates(updates)
	return result.RowsAffected, result.Error
}

// GetItemByID busca un item de orden
func (r *GormOrderRepository) GetItemByID(id uint) (*models.OrderItem, error) {
	var item models.OrderItem
	if err := r.db.Preload("Plan").First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// UpdateItem actualiza un item de orden
func (r *GormOrderRepository) UpdateItem(item *models.OrderItem) error {
	return r.db.Save(item).Error
}

// UpdateItemEstado transición de estado del item condicionada al estado origen
func (r *GormOrderRepository) UpdateItemEstado(id uint, fromEstado, toEstado string, updates map[string]interface{}) (int64, error) {
	if id == 0 {
		return 0, nil
	}
	if updates == nil {
		updates = map[string]interface{}{}
	}
	updates["estado"] = toEstado
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now()
	}
	result := r.db.Model(&models.OrderItem{}).
		Where("id = ? AND estado = ?", id, fromEstado).
		Updates(updates)
	return result.RowsAffected, result.Error
}

// CountPendingItems items de la orden que aún no fueron entregados
func (r *GormOrderRepository) CountPendingItems(orderID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.OrderItem{}).
		Where("order_id = ? AND estado <> ?", orderID, constants.OrderItemEntregada).
		Count(&count).Error
	return count, err
}

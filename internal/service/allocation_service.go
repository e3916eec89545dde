package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/cuentaflix/cuentaflix/internal/constants"
	"github.com/cuentaflix/cuentaflix/internal/logger"
	"github.com/cuentaflix/cuentaflix/internal/models"
	"github.com/cuentaflix/cuentaflix/internal/repository"

	"gorm.io/gorm"
)

// DeliveryEnqueuer encola la entrega de credencial al worker; la entrega
// nunca revierte la asignación
type DeliveryEnqueuer interface {
	EnqueueCredencialEntrega(orderItemID uint) error
}

// AllocationService asigna credenciales del inventario a items de orden
// pagados, creando la suscripción en la misma transacción
type AllocationService struct {
	db              *gorm.DB
	orderRepo       repository.OrderRepository
	suscripcionRepo repository.SuscripcionRepository
	credencialRepo  repository.CredencialRepository
	planRepo        repository.PlanRepository
	clienteRepo     repository.ClienteRepository
	scheduler       *NotificationScheduler
	enqueuer        DeliveryEnqueuer // opcional

	now func() time.Time
}

// NewAllocationService crea el servicio de asignación
func NewAllocationService(
	db *gorm.DB,
	orderRepo repository.OrderRepository,
	suscripcionRepo repository.SuscripcionRepository,
	credencialRepo repository.CredencialRepository,
	planRepo repository.PlanRepository,
	clienteRepo repository.ClienteRepository,
	scheduler *NotificationScheduler,
	enqueuer DeliveryEnqueuer,
) *AllocationService {
	return &AllocationService{
		db:              db,
		orderRepo:       orderRepo,
		suscripcionRepo: suscripcionRepo,
		credencialRepo:  credencialRepo,
		planRepo:        planRepo,
		clienteRepo:     clienteRepo,
		scheduler:       scheduler,
		enqueuer:        enqueuer,
		now:             time.Now,
	}
}

// SetNow reemplaza el reloj; solo para pruebas
func (s *AllocationService) SetNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// AsignarItem toma la credencial disponible más antigua del plan y la asigna
// al item, creando la suscripción. Todo dentro de una transacción: si no hay
// stock no queda nada a medias. El item pasa pendiente -> asignada con un
// update condicionado, dos operadores no asignan el mismo item dos veces.
func (s *AllocationService) AsignarItem(itemID uint) (*models.Suscripcion, error) {
	item, err := s.orderRepo.GetItemByID(itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrOrderItemNotFound
	}
	if item.Estado != constants.OrderItemPendiente {
		return nil, ErrAlreadyAllocated
	}

	order, err := s.orderRepo.GetByID(item.OrderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if order.Status != constants.OrderPagada && order.Status != constants.OrderEnProceso {
		return nil, fmt.Errorf("%w: la orden está %s, se asigna con pago confirmado", ErrInvalidStateTransition, order.Status)
	}

	plan, err := s.planRepo.GetByID(item.PlanID)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, ErrPlanNotFound
	}
	cliente, err := s.clienteRepo.GetByID(order.ClienteID)
	if err != nil {
		return nil, err
	}
	if cliente == nil {
		return nil, ErrClienteNotFound
	}

	now := s.now()
	suscripcion := &models.Suscripcion{
		ClienteID:        order.ClienteID,
		PlanID:           item.PlanID,
		Estado:           constants.SuscripcionActiva,
		FechaInicio:      now,
		FechaVencimiento: plan.Duracion(now),
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		orderRepo := s.orderRepo.WithTx(tx)
		suscripcionRepo := s.suscripcionRepo.WithTx(tx)
		credencialRepo := s.credencialRepo.WithTx(tx)

		if err := suscripcionRepo.Create(suscripcion); err != nil {
			return err
		}

		credencial, err := credencialRepo.ClaimOldestAvailable(item.PlanID, suscripcion.ID, now)
		if err != nil {
			if errors.Is(err, repository.ErrClaimContention) {
				return fmt.Errorf("%w: %v", ErrTransientLock, err)
			}
			return err
		}
		if credencial == nil {
			return ErrOutOfStock
		}
		suscripcion.CredencialID = &credencial.ID
		if err := suscripcionRepo.Update(suscripcion); err != nil {
			return err
		}

		rows, err := orderRepo.UpdateItemEstado(itemID,
			constants.OrderItemPendiente,
			constants.OrderItemAsignada,
			map[string]interface{}{
				"credencial_id":  credencial.ID,
				"suscripcion_id": suscripcion.ID,
			},
		)
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrAlreadyAllocated
		}

		// primer item asignado mueve la orden a en_proceso; si ya lo está,
		// el update condicionado simplemente no toca filas
		if _, err := orderRepo.UpdateStatus(item.OrderID,
			[]string{constants.OrderPagada},
			constants.OrderEnProceso,
			nil,
		); err != nil {
			return err
		}

		suscripcion.Cliente = cliente
		suscripcion.Plan = plan
		return s.scheduler.Regenerate(tx, suscripcion, now)
	})
	if err != nil {
		return nil, err
	}

	logger.Infow("allocation_done",
		"order_item_id", itemID,
		"order_id", item.OrderID,
		"suscripcion_id", suscripcion.ID,
		"credencial_id", *suscripcion.CredencialID,
		"vencimiento", suscripcion.FechaVencimiento,
	)

	// la entrega viaja por la cola; si encolar falla la asignación queda firme
	if s.enqueuer != nil {
		if err := s.enqueuer.EnqueueCredencialEntrega(itemID); err != nil {
			logger.Warnw("delivery_enqueue_failed", "order_item_id", itemID, "error", err)
		}
	}
	return suscripcion, nil
}

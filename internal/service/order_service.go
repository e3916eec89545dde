package service

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/cuentaflix/cuentaflix/internal/config"
	"github.com/cuentaflix/cuentaflix/internal/constants"
	"github.com/cuentaflix/cuentaflix/internal/logger"
	"github.com/cuentaflix/cuentaflix/internal/models"
	"github.com/cuentaflix/cuentaflix/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// allowedTransitions máquina de estados de la orden
var allowedTransitions = map[string][]string{
	constants.OrderPendientePago: {constants.OrderPagada, constants.OrderCancelada},
	constants.OrderPagada:        {constants.OrderEnProceso, constants.OrderCancelada},
	constants.OrderEnProceso:     {constants.OrderEntregada, constants.OrderCancelada},
	constants.OrderEntregada:     {},
	constants.OrderCancelada:     {},
}

func isTransitionAllowed(from, to string) bool {
	for _, allowed := range allowedTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// OrderService órdenes de compra y su máquina de estados
type OrderService struct {
	db          *gorm.DB
	cfg         *config.Config
	orderRepo   repository.OrderRepository
	planRepo    repository.PlanRepository
	clienteRepo repository.ClienteRepository
}

// NewOrderService crea el servicio de órdenes
func NewOrderService(db *gorm.DB, cfg *config.Config, orderRepo repository.OrderRepository, planRepo repository.PlanRepository, clienteRepo repository.ClienteRepository) *OrderService {
	return &OrderService{
		db:          db,
		cfg:         cfg,
		orderRepo:   orderRepo,
		planRepo:    planRepo,
		clienteRepo: clienteRepo,
	}
}

// CreateOrderItemInput renglón del checkout
type CreateOrderItemInput struct {
	PlanID   uint `json:"plan_id" binding:"required"`
	Quantity int  `json:"quantity"`
}

// CreateOrderInput datos del checkout
type CreateOrderInput struct {
	ClienteID       uint                   `json:"cliente_id"`
	ClienteNombre   string                 `json:"cliente_nombre"`
	ClienteTelefono string                 `json:"cliente_telefono"`
	ClienteEmail    string                 `json:"cliente_email"`
	Items           []CreateOrderItemInput `json:"items" binding:"required"`
}

// Create crea una orden pendiente de pago
func (s *OrderService) Create(input CreateOrderInput) (*models.Order, error) {
	if len(input.Items) == 0 {
		return nil, fmt.Errorf("%w: la orden no tiene items", ErrInvalidStateTransition)
	}

	var order *models.Order
	err := s.db.Transaction(func(tx *gorm.DB) error {
		clienteRepo := s.clienteRepo.WithTx(tx)
		planRepo := s.planRepo.WithTx(tx)
		orderRepo := s.orderRepo.WithTx(tx)

		cliente, err := s.resolveCliente(clienteRepo, input)
		if err != nil {
			return err
		}

		planIDs := make([]uint, 0, len(input.Items))
		for _, item := range input.Items {
			planIDs = append(planIDs, item.PlanID)
		}
		planes, err := planRepo.ListByIDs(planIDs)
		if err != nil {
			return err
		}
		planByID := make(map[uint]models.Plan, len(planes))
		for _, p := range planes {
			planByID[p.ID] = p
		}

		total := decimal.Zero
		items := make([]models.OrderItem, 0, len(input.Items))
		for _, in := range input.Items {
			plan, ok := planByID[in.PlanID]
			if !ok || !plan.Activo {
				return ErrPlanNotFound
			}
			quantity := in.Quantity
			if quantity <= 0 {
				quantity = 1
			}
			// cada unidad es un item aparte: un item recibe exactamente
			// una credencial, así comprar 2 entrega 2
			for q := 0; q < quantity; q++ {
				total = total.Add(plan.PrecioVenta.Decimal)
				items = append(items, models.OrderItem{
					PlanID:     plan.ID,
					PlanNombre: plan.Nombre,
					UnitPrice:  plan.PrecioVenta,
					UnitCost:   plan.Costo,
					Quantity:   1,
					TotalPrice: plan.PrecioVenta,
					Estado:     constants.OrderItemPendiente,
				})
			}
		}

		expiresAt := time.Now().Add(time.Duration(s.cfg.Order.PaymentExpireMinutes) * time.Minute)
		order = &models.Order{
			OrderNo:     generateOrderNo(),
			ClienteID:   cliente.ID,
			Status:      constants.OrderPendientePago,
			Currency:    "USD",
			TotalAmount: models.NewMoneyFromDecimal(total),
			ExpiresAt:   &expiresAt,
			Items:       items,
		}
		return orderRepo.Create(order)
	})
	if err != nil {
		return nil, err
	}

	logger.Infow("order_created",
		"order_no", order.OrderNo,
		"cliente_id", order.ClienteID,
		"total", order.TotalAmount.String(),
		"items", len(order.Items),
	)
	return order, nil
}

func (s *OrderService) resolveCliente(clienteRepo *repository.GormClienteRepository, input CreateOrderInput) (*models.Cliente, error) {
	if input.ClienteID > 0 {
		cliente, err := clienteRepo.GetByID(input.ClienteID)
		if err != nil {
			return nil, err
		}
		if cliente == nil {
			return nil, ErrClienteNotFound
		}
		return cliente, nil
	}

	// sin ID: se reusa por teléfono o se registra
	if input.ClienteTelefono != "" {
		cliente, err := clienteRepo.GetByTelefono(input.ClienteTelefono)
		if err != nil {
			return nil, err
		}
		if cliente != nil {
			return cliente, nil
		}
	}
	if input.ClienteNombre == "" {
		return nil, ErrClienteNotFound
	}
	cliente := &models.Cliente{
		Nombre:   input.ClienteNombre,
		Telefono: input.ClienteTelefono,
		Email:    input.ClienteEmail,
	}
	if err := clienteRepo.Create(cliente); err != nil {
		return nil, err
	}
	return cliente, nil
}

// GetByID busca una orden
func (s *OrderService) GetByID(id uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// GetByOrderNo busca una orden por número
func (s *OrderService) GetByOrderNo(orderNo string) (*models.Order, error) {
	order, err := s.orderRepo.GetByOrderNo(orderNo)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// List lista órdenes
func (s *OrderService) List(status string, clienteID uint, page, pageSize int) ([]models.Order, int64, error) {
	return s.orderRepo.List(status, clienteID, page, pageSize)
}

// ConfirmarPago registra la confirmación manual de la transferencia
func (s *OrderService) ConfirmarPago(id uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if !isTransitionAllowed(order.Status, constants.OrderPagada) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidStateTransition, order.Status, constants.OrderPagada)
	}

	now := time.Now()
	rows, err := s.orderRepo.UpdateStatus(id,
		[]string{constants.OrderPendientePago},
		constants.OrderPagada,
		map[string]interface{}{"paid_at": now},
	)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, fmt.Errorf("%w: la orden cambió de estado", ErrInvalidStateTransition)
	}

	logger.Infow("order_paid", "order_no", order.OrderNo, "order_id", id)
	return s.orderRepo.GetByID(id)
}

// Cancelar cancela una orden aún no entregada. Las credenciales ya
// asignadas no se liberan; eso es una acción explícita del operador.
func (s *OrderService) Cancelar(id uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if !isTransitionAllowed(order.Status, constants.OrderCancelada) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidStateTransition, order.Status, constants.OrderCancelada)
	}

	now := time.Now()
	rows, err := s.orderRepo.UpdateStatus(id,
		[]string{constants.OrderPendientePago, constants.OrderPagada, constants.OrderEnProceso},
		constants.OrderCancelada,
		map[string]interface{}{"canceled_at": now},
	)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, fmt.Errorf("%w: la orden cambió de estado", ErrInvalidStateTransition)
	}

	logger.Infow("order_canceled", "order_no", order.OrderNo, "order_id", id)
	return s.orderRepo.GetByID(id)
}

// EntregarItem marca un item como entregado y cierra la orden cuando no
// quedan items pendientes
func (s *OrderService) EntregarItem(itemID uint) error {
	item, err := s.orderRepo.GetItemByID(itemID)
	if err != nil {
		return err
	}
	if item == nil {
		return ErrOrderItemNotFound
	}

	now := time.Now()
	return s.db.Transaction(func(tx *gorm.DB) error {
		orderRepo := s.orderRepo.WithTx(tx)

		rows, err := orderRepo.UpdateItemEstado(itemID,
			constants.OrderItemAsignada,
			constants.OrderItemEntregada,
			map[string]interface{}{"entregada_at": now},
		)
		if err != nil {
			return err
		}
		if rows == 0 {
			return fmt.Errorf("%w: el item no está asignado", ErrInvalidStateTransition)
		}

		pending, err := orderRepo.CountPendingItems(item.OrderID)
		if err != nil {
			return err
		}
		if pending == 0 {
			if _, err := orderRepo.UpdateStatus(item.OrderID,
				[]string{constants.OrderEnProceso},
				constants.OrderEntregada,
				nil,
			); err != nil {
				return err
			}
			logger.Infow("order_delivered", "order_id", item.OrderID)
		}
		return nil
	})
}

// generateOrderNo número de orden: CF + timestamp + sufijo aleatorio
func generateOrderNo() string {
	return fmt.Sprintf("%s%s%s",
		constants.OrderNoPrefix,
		time.Now().Format("20060102150405"),
		randNumeric(6),
	)
}

func randNumeric(n int) string {
	digits := make([]byte, n)
	for i := range digits {
		v, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			digits[i] = '0'
			continue
		}
		digits[i] = byte('0' + v.Int64())
	}
	return string(digits)
}

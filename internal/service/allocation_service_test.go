package service

import (
	"errors"
	"sync"
	"testing"

	"github.com/cuentaflix/cuentaflix/internal/constants"
	"github.com/cuentaflix/cuentaflix/internal/models"
)

func (e *testEnv) checkoutPagado(t *testing.T, planID uint, items int) *models.Order {
	t.Helper()
	inputs := make([]CreateOrderItemInput, 0, items)
	for i := 0; i < items; i++ {
		inputs = append(inputs, CreateOrderItemInput{PlanID: planID, Quantity: 1})
	}
	order, err := e.orders.Create(CreateOrderInput{
		ClienteNombre:   "Cliente Checkout",
		ClienteTelefono: "+5491100000000",
		Items:           inputs,
	})
	if err != nil {
		t.Fatalf("Create order error: %v", err)
	}
	if _, err := e.orders.ConfirmarPago(order.ID); err != nil {
		t.Fatalf("ConfirmarPago error: %v", err)
	}
	pagada, err := e.orders.GetByID(order.ID)
	if err != nil {
		t.Fatalf("GetByID error: %v", err)
	}
	return pagada
}

func TestAsignarYEntregarItem(t *testing.T) {
	env := newTestEnv(t, "alloc_flujo")
	plan := env.seedPlan(t, "Netflix 1 pantalla", 0, 1)
	creds := env.seedCredenciales(t, plan.ID, 1)

	order := env.checkoutPagado(t, plan.ID, 1)
	item := order.Items[0]

	suscripcion, err := env.allocation.AsignarItem(item.ID)
	if err != nil {
		t.Fatalf("AsignarItem error: %v", err)
	}
	if suscripcion.CredencialID == nil || *suscripcion.CredencialID != creds[0].ID {
		t.Fatalf("expected credencial %d, got %v", creds[0].ID, suscripcion.CredencialID)
	}

	asignado, err := env.orderRepo.GetItemByID(item.ID)
	if err != nil {
		t.Fatalf("GetItemByID error: %v", err)
	}
	if asignado.Estado != constants.OrderItemAsignada {
		t.Fatalf("expected item asignada, got %s", asignado.Estado)
	}
	if asignado.SuscripcionID == nil || *asignado.SuscripcionID != suscripcion.ID {
		t.Fatalf("item sin enlace a la suscripción: %+v", asignado)
	}

	enProceso, err := env.orders.GetByID(order.ID)
	if err != nil {
		t.Fatalf("GetByID error: %v", err)
	}
	if enProceso.Status != constants.OrderEnProceso {
		t.Fatalf("expected orden en_proceso, got %s", enProceso.Status)
	}

	if err := env.orders.EntregarItem(item.ID); err != nil {
		t.Fatalf("EntregarItem error: %v", err)
	}
	entregada, err := env.orders.GetByID(order.ID)
	if err != nil {
		t.Fatalf("GetByID error: %v", err)
	}
	if entregada.Status != constants.OrderEntregada {
		t.Fatalf("expected orden entregada al cerrar el último item, got %s", entregada.Status)
	}
}

func TestAsignarItemExactamenteUnaVezPorCredencial(t *testing.T) {
	env := newTestEnv(t, "alloc_exacto")
	plan := env.seedPlan(t, "Disney+ familiar", 0, 1)
	creds := env.seedCredenciales(t, plan.ID, 2)

	order := env.checkoutPagado(t, plan.ID, 3)
	if len(order.Items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(order.Items))
	}

	asignadas := make(map[uint]uint) // credencial -> item
	var sinStock int
	for _, item := range order.Items {
		suscripcion, err := env.allocation.AsignarItem(item.ID)
		if err != nil {
			if errors.Is(err, ErrOutOfStock) {
				sinStock++
				continue
			}
			t.Fatalf("AsignarItem error: %v", err)
		}
		credID := *suscripcion.CredencialID
		if prev, dup := asignadas[credID]; dup {
			t.Fatalf("credencial %d asignada a los items %d y %d", credID, prev, item.ID)
		}
		asignadas[credID] = item.ID
	}

	if len(asignadas) != 2 || sinStock != 1 {
		t.Fatalf("expected 2 asignaciones y 1 sin stock, got %d y %d", len(asignadas), sinStock)
	}
	// FIFO: las dos credenciales más antiguas, en orden
	if _, ok := asignadas[creds[0].ID]; !ok {
		t.Fatalf("la credencial más antigua no fue asignada")
	}
	if _, ok := asignadas[creds[1].ID]; !ok {
		t.Fatalf("la segunda credencial no fue asignada")
	}

	// el fallo por stock no deja suscripción a medias
	var count int64
	if err := env.db.Model(&models.Suscripcion{}).Count(&count).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 suscripciones, got %d", count)
	}
}

func TestAsignarItemsEnParaleloSinDobleEntrega(t *testing.T) {
	env := newTestEnv(t, "alloc_paralelo")
	plan := env.seedPlan(t, "Disney+ familiar", 0, 1)
	env.seedCredenciales(t, plan.ID, 2)

	// una sola conexión: las transacciones compiten por turno en vez de
	// tropezar con el candado del archivo sqlite
	sqlDB, err := env.db.DB()
	if err != nil {
		t.Fatalf("db handle failed: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	order := env.checkoutPagado(t, plan.ID, 4)

	var wg sync.WaitGroup
	var mu sync.Mutex
	asignadas := make(map[uint]uint) // credencial -> item
	var exitos, sinStock int
	for _, item := range order.Items {
		wg.Add(1)
		go func(itemID uint) {
			defer wg.Done()
			suscripcion, err := env.allocation.AsignarItem(itemID)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if errors.Is(err, ErrOutOfStock) || errors.Is(err, ErrTransientLock) {
					sinStock++
					return
				}
				t.Errorf("AsignarItem %d error: %v", itemID, err)
				return
			}
			exitos++
			credID := *suscripcion.CredencialID
			if prev, dup := asignadas[credID]; dup {
				t.Errorf("credencial %d entregada a los items %d y %d", credID, prev, itemID)
			}
			asignadas[credID] = itemID
		}(item.ID)
	}
	wg.Wait()

	if exitos != 2 || sinStock != 2 {
		t.Fatalf("expected 2 asignaciones y 2 rechazos, got %d y %d", exitos, sinStock)
	}

	// el estado persistido coincide: cada item asignado con credencial propia
	var items []models.OrderItem
	if err := env.db.Where("order_id = ?", order.ID).Find(&items).Error; err != nil {
		t.Fatalf("find items failed: %v", err)
	}
	vistas := make(map[uint]bool)
	for _, it := range items {
		if it.Estado != constants.OrderItemAsignada {
			continue
		}
		if it.CredencialID == nil || vistas[*it.CredencialID] {
			t.Fatalf("item %d con credencial repetida o vacía: %+v", it.ID, it)
		}
		vistas[*it.CredencialID] = true
	}
	if len(vistas) != 2 {
		t.Fatalf("expected 2 credenciales asignadas en la base, got %d", len(vistas))
	}
}

func TestAsignarItemDosVeces(t *testing.T) {
	env := newTestEnv(t, "alloc_repetido")
	plan := env.seedPlan(t, "Netflix 1 pantalla", 0, 1)
	env.seedCredenciales(t, plan.ID, 2)

	order := env.checkoutPagado(t, plan.ID, 1)
	item := order.Items[0]

	if _, err := env.allocation.AsignarItem(item.ID); err != nil {
		t.Fatalf("AsignarItem error: %v", err)
	}
	if _, err := env.allocation.AsignarItem(item.ID); !errors.Is(err, ErrAlreadyAllocated) {
		t.Fatalf("expected ErrAlreadyAllocated, got: %v", err)
	}

	// la segunda credencial sigue disponible
	stock, err := env.credRepo.CountByPlan(plan.ID)
	if err != nil {
		t.Fatalf("CountByPlan error: %v", err)
	}
	if stock.Disponibles != 1 || stock.Asignadas != 1 {
		t.Fatalf("unexpected stock: %+v", stock)
	}
}

func TestAsignarItemRequierePagoConfirmado(t *testing.T) {
	env := newTestEnv(t, "alloc_sin_pago")
	plan := env.seedPlan(t, "Netflix 1 pantalla", 0, 1)
	env.seedCredenciales(t, plan.ID, 1)

	order, err := env.orders.Create(CreateOrderInput{
		ClienteNombre:   "Sin Pago",
		ClienteTelefono: "+5491100000001",
		Items:           []CreateOrderItemInput{{PlanID: plan.ID, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("Create order error: %v", err)
	}
	pendiente, err := env.orders.GetByID(order.ID)
	if err != nil {
		t.Fatalf("GetByID error: %v", err)
	}

	if _, err := env.allocation.AsignarItem(pendiente.Items[0].ID); !errors.Is(err, ErrInvalidStateTransition) {
		t.Fatalf("expected ErrInvalidStateTransition, got: %v", err)
	}
}

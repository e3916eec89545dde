package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/cuentaflix/cuentaflix/internal/config"
	"github.com/cuentaflix/cuentaflix/internal/constants"
	"github.com/cuentaflix/cuentaflix/internal/models"
	"github.com/cuentaflix/cuentaflix/internal/notifier"
	"github.com/cuentaflix/cuentaflix/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// capturingNotifier acumula los envíos; puede fallar a demanda
type capturingNotifier struct {
	mu         sync.Mutex
	reminders  []notifier.Reminder
	deliveries []notifier.CredentialDelivery
	failSend   bool
}

func (n *capturingNotifier) SendReminder(ctx context.Context, r notifier.Reminder) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.failSend {
		return fmt.Errorf("envío simulado fallido")
	}
	n.reminders = append(n.reminders, r)
	return nil
}

func (n *capturingNotifier) DeliverCredential(ctx context.Context, d notifier.CredentialDelivery) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.failSend {
		return fmt.Errorf("entrega simulada fallida")
	}
	n.deliveries = append(n.deliveries, d)
	return nil
}

func (n *capturingNotifier) sentCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.reminders)
}

// capturingAvisoEnqueuer acumula los avisos de resultado de renovación
type capturingAvisoEnqueuer struct {
	mu     sync.Mutex
	avisos []avisoEncolado
}

type avisoEncolado struct {
	SuscripcionID uint
	Resultado     string
}

func (q *capturingAvisoEnqueuer) EnqueueSuscripcionAviso(suscripcionID uint, resultado string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.avisos = append(q.avisos, avisoEncolado{SuscripcionID: suscripcionID, Resultado: resultado})
	return nil
}

func (q *capturingAvisoEnqueuer) porResultado(resultado string) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	count := 0
	for _, aviso := range q.avisos {
		if aviso.Resultado == resultado {
			count++
		}
	}
	return count
}

type testEnv struct {
	db            *gorm.DB
	cfg           *config.Config
	notifier      *capturingNotifier
	avisos        *capturingAvisoEnqueuer
	planRepo      repository.PlanRepository
	clienteRepo   repository.ClienteRepository
	credRepo      repository.CredencialRepository
	orderRepo     repository.OrderRepository
	susRepo       repository.SuscripcionRepository
	avisoRepo     repository.NotificationRepository
	scheduler     *NotificationScheduler
	orders        *OrderService
	subscriptions *SubscriptionService
	allocation    *AllocationService
	engine        *RenewalEngine
}

func newTestEnv(t *testing.T, name string) *testEnv {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}

	cfg := &config.Config{}
	cfg.Order.PaymentExpireMinutes = 60
	cfg.JWT.SecretKey = "test-secret-key-test-secret-key-00"
	cfg.JWT.ExpireHours = 1

	n := &capturingNotifier{}
	env := &testEnv{
		db:          db,
		cfg:         cfg,
		notifier:    n,
		avisos:      &capturingAvisoEnqueuer{},
		planRepo:    repository.NewPlanRepository(db),
		clienteRepo: repository.NewClienteRepository(db),
		credRepo:    repository.NewCredencialRepository(db),
		orderRepo:   repository.NewOrderRepository(db),
		susRepo:     repository.NewSuscripcionRepository(db),
		avisoRepo:   repository.NewNotificationRepository(db),
	}
	env.scheduler = NewNotificationScheduler(db, env.avisoRepo, env.susRepo, n)
	env.orders = NewOrderService(db, cfg, env.orderRepo, env.planRepo, env.clienteRepo)
	env.subscriptions = NewSubscriptionService(db, env.susRepo, env.credRepo, env.planRepo, env.clienteRepo, env.avisoRepo, env.scheduler)
	env.allocation = NewAllocationService(db, env.orderRepo, env.susRepo, env.credRepo, env.planRepo, env.clienteRepo, env.scheduler, nil)
	env.engine = NewRenewalEngine(env.susRepo, env.subscriptions, env.scheduler, nil, env.avisos, 0)
	return env
}

func (e *testEnv) seedPlan(t *testing.T, nombre string, dias, meses int) *models.Plan {
	t.Helper()
	plan := &models.Plan{
		Nombre:        nombre,
		Servicio:      "netflix",
		Costo:         models.NewMoneyFromDecimal(decimal.NewFromFloat(2.50)),
		PrecioVenta:   models.NewMoneyFromDecimal(decimal.NewFromFloat(4.99)),
		DuracionDias:  dias,
		DuracionMeses: meses,
		Perfiles:      1,
		Activo:        true,
	}
	if err := e.db.Create(plan).Error; err != nil {
		t.Fatalf("create plan failed: %v", err)
	}
	return plan
}

func (e *testEnv) seedCliente(t *testing.T, nombre, telefono string) *models.Cliente {
	t.Helper()
	cliente := &models.Cliente{Nombre: nombre, Telefono: telefono}
	if err := e.db.Create(cliente).Error; err != nil {
		t.Fatalf("create cliente failed: %v", err)
	}
	return cliente
}

func (e *testEnv) seedCredenciales(t *testing.T, planID uint, count int) []models.Credencial {
	t.Helper()
	creds := make([]models.Credencial, 0, count)
	base := time.Now().Add(-time.Duration(count) * time.Minute)
	for i := 0; i < count; i++ {
		cred := models.Credencial{
			PlanID:        planID,
			CorreoCifrado: fmt.Sprintf("cifrado-correo-%d", i+1),
			ClaveCifrada:  fmt.Sprintf("cifrado-clave-%d", i+1),
			Estado:        constants.CredencialDisponible,
			CreatedAt:     base.Add(time.Duration(i) * time.Minute),
		}
		if err := e.db.Create(&cred).Error; err != nil {
			t.Fatalf("create credencial failed: %v", err)
		}
		creds = append(creds, cred)
	}
	return creds
}

func fixedNow(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

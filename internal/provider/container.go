package provider

import (
	"time"

	"github.com/cuentaflix/cuentaflix/internal/cache"
	"github.com/cuentaflix/cuentaflix/internal/config"
	"github.com/cuentaflix/cuentaflix/internal/logger"
	"github.com/cuentaflix/cuentaflix/internal/notifier"
	"github.com/cuentaflix/cuentaflix/internal/queue"
	"github.com/cuentaflix/cuentaflix/internal/repository"
	"github.com/cuentaflix/cuentaflix/internal/service"
	"github.com/cuentaflix/cuentaflix/internal/vault"

	"gorm.io/gorm"
)

// Container contenedor de dependencias
type Container struct {
	Config      *config.Config
	DB          *gorm.DB
	QueueClient *queue.Client
	Vault       *vault.Vault
	Notifier    notifier.Notifier

	// Repositorios
	AdminRepo        repository.AdminRepository
	PlanRepo         repository.PlanRepository
	ClienteRepo      repository.ClienteRepository
	CredencialRepo   repository.CredencialRepository
	OrderRepo        repository.OrderRepository
	SuscripcionRepo  repository.SuscripcionRepository
	NotificationRepo repository.NotificationRepository

	// Servicios
	AuthService         *service.AuthService
	PlanService         *service.PlanService
	InventoryService    *service.InventoryService
	OrderService        *service.OrderService
	AllocationService   *service.AllocationService
	SubscriptionService *service.SubscriptionService
	Scheduler           *service.NotificationScheduler
	RenewalEngine       *service.RenewalEngine
}

// NewContainer arma el contenedor; el handle de base de datos viene inyectado
func NewContainer(cfg *config.Config, db *gorm.DB) *Container {
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	v, err := vault.New(cfg.Vault.Key)
	if err != nil {
		logger.Errorw("provider_init_vault_failed", "error", err)
		panic(err)
	}

	c := &Container{
		Config:      cfg,
		DB:          db,
		QueueClient: queueClient,
		Vault:       v,
		Notifier:    buildNotifier(cfg),
	}

	c.initRepositories()
	c.initServices()
	return c
}

func buildNotifier(cfg *config.Config) notifier.Notifier {
	if cfg.Notifier.Mode == "webhook" && cfg.Notifier.WebhookURL != "" {
		return notifier.NewWebhookNotifier(
			cfg.Notifier.WebhookURL,
			time.Duration(cfg.Notifier.TimeoutSeconds)*time.Second,
		)
	}
	return notifier.NewLogNotifier()
}

func (c *Container) initRepositories() {
	c.AdminRepo = repository.NewAdminRepository(c.DB)
	c.PlanRepo = repository.NewPlanRepository(c.DB)
	c.ClienteRepo = repository.NewClienteRepository(c.DB)
	c.CredencialRepo = repository.NewCredencialRepository(c.DB)
	c.OrderRepo = repository.NewOrderRepository(c.DB)
	c.SuscripcionRepo = repository.NewSuscripcionRepository(c.DB)
	c.NotificationRepo = repository.NewNotificationRepository(c.DB)
}

func (c *Container) initServices() {
	c.AuthService = service.NewAuthService(c.Config, c.AdminRepo)
	c.PlanService = service.NewPlanService(c.PlanRepo, c.CredencialRepo)
	c.InventoryService = service.NewInventoryService(c.CredencialRepo, c.PlanRepo, c.Vault)
	c.OrderService = service.NewOrderService(c.DB, c.Config, c.OrderRepo, c.PlanRepo, c.ClienteRepo)
	c.Scheduler = service.NewNotificationScheduler(c.DB, c.NotificationRepo, c.SuscripcionRepo, c.Notifier)
	c.SubscriptionService = service.NewSubscriptionService(
		c.DB, c.SuscripcionRepo, c.CredencialRepo, c.PlanRepo, c.ClienteRepo, c.NotificationRepo, c.Scheduler,
	)

	var enqueuer service.DeliveryEnqueuer
	if c.QueueClient.Enabled() {
		enqueuer = c.QueueClient
	}
	c.AllocationService = service.NewAllocationService(
		c.DB, c.OrderRepo, c.SuscripcionRepo, c.CredencialRepo, c.PlanRepo, c.ClienteRepo, c.Scheduler, enqueuer,
	)

	var locker service.RunLocker
	if cache.Enabled() {
		locker = cache.NewRedisRunLock(time.Duration(c.Config.Renewal.LockTTLSeconds) * time.Second)
	}
	var avisos service.AvisoEnqueuer
	if c.QueueClient.Enabled() {
		avisos = c.QueueClient
	}
	c.RenewalEngine = service.NewRenewalEngine(
		c.SuscripcionRepo, c.SubscriptionService, c.Scheduler, locker, avisos, c.Config.Renewal.LookaheadDays,
	)
}

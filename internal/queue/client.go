package queue

import (
	"fmt"
	"strings"

	"github.com/cuentaflix/cuentaflix/internal/config"
	"github.com/cuentaflix/cuentaflix/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// DefaultQueue cola por defecto
	DefaultQueue = constants.QueueDefault
)

// Client cliente de la cola
type Client struct {
	client       *asynq.Client
	enabled      bool
	defaultQueue string
}

// NewClient crea el cliente de la cola
func NewClient(cfg *config.QueueConfig) (*Client, error) {
	if cfg == nil || !cfg.Enabled {
		return &Client{enabled: false, defaultQueue: DefaultQueue}, nil
	}
	opt := buildRedisOpt(cfg)
	client := asynq.NewClient(opt)
	return &Client{
		client:       client,
		enabled:      true,
		defaultQueue: DefaultQueue,
	}, nil
}

// Enabled indica si la cola está habilitada
func (c *Client) Enabled() bool {
	return c != nil && c.enabled && c.client != nil
}

// Close cierra el cliente
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// EnqueueVencimientoCheck encola un barrido de vencimientos
func (c *Client) EnqueueVencimientoCheck(payload VencimientoCheckPayload, opts ...asynq.Option) error {
	if !c.Enabled() {
		return nil
	}
	task, err := NewVencimientoCheckTask(payload)
	if err != nil {
		return err
	}
	options := append([]asynq.Option{asynq.Queue(c.defaultQueue)}, opts...)
	_, err = c.client.Enqueue(task, options...)
	return err
}

// EnqueueCredencialEntrega encola la entrega de credencial de un item
func (c *Client) EnqueueCredencialEntrega(orderItemID uint) error {
	if !c.Enabled() {
		return nil
	}
	task, err := NewCredencialEntregaTask(CredencialEntregaPayload{OrderItemID: orderItemID})
	if err != nil {
		return err
	}
	_, err = c.client.Enqueue(task, asynq.Queue(c.defaultQueue))
	return err
}

// EnqueueSuscripcionAviso encola un aviso de resultado de renovación
func (c *Client) EnqueueSuscripcionAviso(suscripcionID uint, resultado string) error {
	if !c.Enabled() {
		return nil
	}
	task, err := NewSuscripcionAvisoTask(SuscripcionAvisoPayload{
		SuscripcionID: suscripcionID,
		Resultado:     resultado,
	})
	if err != nil {
		return err
	}
	_, err = c.client.Enqueue(task, asynq.Queue(c.defaultQueue))
	return err
}

// BuildServerConfig configuración del servidor de la cola
func BuildServerConfig(cfg *config.QueueConfig) (asynq.RedisClientOpt, asynq.Config) {
	opt := buildRedisOpt(cfg)
	concurrency := 10
	if cfg != nil && cfg.Concurrency > 0 {
		concurrency = cfg.Concurrency
	}
	queues := map[string]int{DefaultQueue: 1}
	if cfg != nil && len(cfg.Queues) > 0 {
		queues = cfg.Queues
	}
	return opt, asynq.Config{
		Concurrency: concurrency,
		Queues:      queues,
	}
}

func buildRedisOpt(cfg *config.QueueConfig) asynq.RedisClientOpt {
	host := "127.0.0.1"
	port := 6379
	password := ""
	db := 0
	if cfg != nil {
		if strings.TrimSpace(cfg.Host) != "" {
			host = strings.TrimSpace(cfg.Host)
		}
		if cfg.Port > 0 {
			port = cfg.Port
		}
		password = cfg.Password
		db = cfg.DB
	}
	return asynq.RedisClientOpt{
		Addr:     fmt.Sprintf("%s:%d", host, port),
		Password: password,
		DB:       db,
	}
}

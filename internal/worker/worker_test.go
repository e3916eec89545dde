package worker

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/cuentaflix/cuentaflix/internal/constants"
	"github.com/cuentaflix/cuentaflix/internal/models"
	"github.com/cuentaflix/cuentaflix/internal/notifier"
	"github.com/cuentaflix/cuentaflix/internal/provider"
	"github.com/cuentaflix/cuentaflix/internal/queue"
	"github.com/cuentaflix/cuentaflix/internal/repository"
	"github.com/cuentaflix/cuentaflix/internal/service"
	"github.com/cuentaflix/cuentaflix/internal/vault"

	"github.com/glebarez/sqlite"
	"github.com/hibiken/asynq"
	"gorm.io/gorm"
)

type fakeNotifier struct {
	reminders  []notifier.Reminder
	deliveries []notifier.CredentialDelivery
}

func (n *fakeNotifier) SendReminder(_ context.Context, r notifier.Reminder) error {
	n.reminders = append(n.reminders, r)
	return nil
}

func (n *fakeNotifier) DeliverCredential(_ context.Context, d notifier.CredentialDelivery) error {
	n.deliveries = append(n.deliveries, d)
	return nil
}

func newWorkerConsumer(t *testing.T, name string) (*Consumer, *gorm.DB, *vault.Vault, *fakeNotifier) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}

	v, err := vault.New("clave-de-vault-para-pruebas")
	if err != nil {
		t.Fatalf("vault.New error: %v", err)
	}

	n := &fakeNotifier{}
	credRepo := repository.NewCredencialRepository(db)
	planRepo := repository.NewPlanRepository(db)
	container := &provider.Container{
		DB:               db,
		Vault:            v,
		Notifier:         n,
		OrderRepo:        repository.NewOrderRepository(db),
		SuscripcionRepo:  repository.NewSuscripcionRepository(db),
		CredencialRepo:   credRepo,
		PlanRepo:         planRepo,
		InventoryService: service.NewInventoryService(credRepo, planRepo, v),
	}
	return NewConsumer(container), db, v, n
}

func TestHandleCredencialEntregaPayloadInvalido(t *testing.T) {
	consumer, _, _, _ := newWorkerConsumer(t, "worker_payload")

	task := asynq.NewTask(queue.TaskCredencialEntrega, []byte("{no es json"))
	err := consumer.HandleCredencialEntrega(context.Background(), task)
	if !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("expected SkipRetry, got: %v", err)
	}
}

func TestHandleCredencialEntregaItemInexistente(t *testing.T) {
	consumer, _, _, n := newWorkerConsumer(t, "worker_item")

	task, err := queue.NewCredencialEntregaTask(queue.CredencialEntregaPayload{OrderItemID: 404})
	if err != nil {
		t.Fatalf("NewCredencialEntregaTask error: %v", err)
	}
	// un item borrado no debe reintentarse ni entregar nada
	if err := consumer.HandleCredencialEntrega(context.Background(), task); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(n.deliveries) != 0 {
		t.Fatalf("expected 0 entregas, got %d", len(n.deliveries))
	}
}

func TestHandleCredencialEntregaDescifraYEnvia(t *testing.T) {
	consumer, db, v, n := newWorkerConsumer(t, "worker_entrega")

	plan := models.Plan{Nombre: "Netflix 1 pantalla", Servicio: "netflix", Activo: true}
	if err := db.Create(&plan).Error; err != nil {
		t.Fatalf("create plan failed: %v", err)
	}
	cliente := models.Cliente{Nombre: "Rita", Telefono: "+5215511112222"}
	if err := db.Create(&cliente).Error; err != nil {
		t.Fatalf("create cliente failed: %v", err)
	}

	correo, _ := v.Encrypt("cuenta@proveedor.example.com")
	clave, _ := v.Encrypt("clave-compartida")
	pin, _ := v.Encrypt("7788")
	cred := models.Credencial{
		PlanID:        plan.ID,
		CorreoCifrado: correo,
		ClaveCifrada:  clave,
		PinCifrado:    pin,
		Estado:        constants.CredencialAsignada,
		Perfil:        "Perfil 2",
	}
	if err := db.Create(&cred).Error; err != nil {
		t.Fatalf("create credencial failed: %v", err)
	}

	suscripcion := models.Suscripcion{
		ClienteID:        cliente.ID,
		PlanID:           plan.ID,
		CredencialID:     &cred.ID,
		Estado:           constants.SuscripcionActiva,
		FechaInicio:      time.Now(),
		FechaVencimiento: time.Now().AddDate(0, 1, 0),
	}
	if err := db.Create(&suscripcion).Error; err != nil {
		t.Fatalf("create suscripcion failed: %v", err)
	}
	item := models.OrderItem{
		OrderID:       1,
		PlanID:        plan.ID,
		PlanNombre:    plan.Nombre,
		Estado:        constants.OrderItemAsignada,
		SuscripcionID: &suscripcion.ID,
	}
	if err := db.Create(&item).Error; err != nil {
		t.Fatalf("create item failed: %v", err)
	}

	task, err := queue.NewCredencialEntregaTask(queue.CredencialEntregaPayload{OrderItemID: item.ID})
	if err != nil {
		t.Fatalf("NewCredencialEntregaTask error: %v", err)
	}
	if err := consumer.HandleCredencialEntrega(context.Background(), task); err != nil {
		t.Fatalf("HandleCredencialEntrega error: %v", err)
	}

	if len(n.deliveries) != 1 {
		t.Fatalf("expected 1 entrega, got %d", len(n.deliveries))
	}
	entrega := n.deliveries[0]
	if entrega.Correo != "cuenta@proveedor.example.com" || entrega.Clave != "clave-compartida" || entrega.Pin != "7788" {
		t.Fatalf("credencial mal descifrada: %+v", entrega)
	}
	if entrega.Canal != constants.CanalWhatsApp || entrega.Destino != cliente.Telefono {
		t.Fatalf("canal equivocado: %+v", entrega)
	}
	if entrega.PlanNombre != plan.Nombre || entrega.Perfil != "Perfil 2" {
		t.Fatalf("datos incompletos: %+v", entrega)
	}
}

func TestHandleSuscripcionAvisoInexistente(t *testing.T) {
	consumer, _, _, n := newWorkerConsumer(t, "worker_aviso")

	task, err := queue.NewSuscripcionAvisoTask(queue.SuscripcionAvisoPayload{SuscripcionID: 404, Resultado: "renovada"})
	if err != nil {
		t.Fatalf("NewSuscripcionAvisoTask error: %v", err)
	}
	if err := consumer.HandleSuscripcionAviso(context.Background(), task); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(n.reminders) != 0 {
		t.Fatalf("expected 0 avisos, got %d", len(n.reminders))
	}
}

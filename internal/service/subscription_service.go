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

// SubscriptionService ciclo de vida de suscripciones
type SubscriptionService struct {
	db               *gorm.DB
	suscripcionRepo  repository.SuscripcionRepository
	credencialRepo   repository.CredencialRepository
	planRepo         repository.PlanRepository
	clienteRepo      repository.ClienteRepository
	notificationRepo repository.NotificationRepository
	scheduler        *NotificationScheduler

	now func() time.Time // inyectable para pruebas con reloj virtual
}

// NewSubscriptionService crea el servicio de suscripciones
func NewSubscriptionService(
	db *gorm.DB,
	suscripcionRepo repository.SuscripcionRepository,
	credencialRepo repository.CredencialRepository,
	planRepo repository.PlanRepository,
	clienteRepo repository.ClienteRepository,
	notificationRepo repository.NotificationRepository,
	scheduler *NotificationScheduler,
) *SubscriptionService {
	return &SubscriptionService{
		db:               db,
		suscripcionRepo:  suscripcionRepo,
		credencialRepo:   credencialRepo,
		planRepo:         planRepo,
		clienteRepo:      clienteRepo,
		notificationRepo: notificationRepo,
		scheduler:        scheduler,
		now:              time.Now,
	}
}

// SetNow reemplaza el reloj; solo para pruebas
func (s *SubscriptionService) SetNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// CrearInput alta manual de suscripción
type CrearInput struct {
	ClienteID   uint `json:"cliente_id" binding:"required"`
	PlanID      uint `json:"plan_id" binding:"required"`
	AutoRenovar bool `json:"auto_renovar"`
}

// Crear da de alta una suscripción asignando credencial del inventario.
// Todo o nada: sin stock no queda suscripción a medias.
func (s *SubscriptionService) Crear(input CrearInput) (*models.Suscripcion, error) {
	cliente, err := s.clienteRepo.GetByID(input.ClienteID)
	if err != nil {
		return nil, err
	}
	if cliente == nil {
		return nil, ErrClienteNotFound
	}
	plan, err := s.planRepo.GetByID(input.PlanID)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, ErrPlanNotFound
	}

	now := s.now()
	suscripcion := &models.Suscripcion{
		ClienteID:        input.ClienteID,
		PlanID:           input.PlanID,
		Estado:           constants.SuscripcionActiva,
		FechaInicio:      now,
		FechaVencimiento: plan.Duracion(now),
		AutoRenovar:      input.AutoRenovar,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		suscripcionRepo := s.suscripcionRepo.WithTx(tx)
		credencialRepo := s.credencialRepo.WithTx(tx)

		if err := suscripcionRepo.Create(suscripcion); err != nil {
			return err
		}

		credencial, err := credencialRepo.ClaimOldestAvailable(input.PlanID, suscripcion.ID, now)
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

		suscripcion.Cliente = cliente
		suscripcion.Plan = plan
		return s.scheduler.Regenerate(tx, suscripcion, now)
	})
	if err != nil {
		return nil, err
	}

	logger.Infow("subscription_created",
		"suscripcion_id", suscripcion.ID,
		"cliente_id", input.ClienteID,
		"plan_id", input.PlanID,
		"vencimiento", suscripcion.FechaVencimiento,
	)
	return suscripcion, nil
}

// GetByID busca una suscripción
func (s *SubscriptionService) GetByID(id uint) (*models.Suscripcion, error) {
	suscripcion, err := s.suscripcionRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if suscripcion == nil {
		return nil, ErrSuscripcionNotFound
	}
	return suscripcion, nil
}

// List lista suscripciones
func (s *SubscriptionService) List(estado string, clienteID uint, page, pageSize int) ([]models.Suscripcion, int64, error) {
	return s.suscripcionRepo.List(estado, clienteID, page, pageSize)
}

// ActualizarInput campos editables de la suscripción
type ActualizarInput struct {
	AutoRenovar      *bool      `json:"auto_renovar"`
	Notas            *string    `json:"notas"`
	FechaVencimiento *time.Time `json:"fecha_vencimiento"`
}

// Actualizar edita los campos administrativos de la suscripción. Un ajuste
// manual del vencimiento solo puede extenderlo; al moverse la fecha, los
// avisos pendientes se rehacen en la misma transacción.
func (s *SubscriptionService) Actualizar(id uint, input ActualizarInput) (*models.Suscripcion, error) {
	var suscripcion *models.Suscripcion
	err := s.db.Transaction(func(tx *gorm.DB) error {
		suscripcionRepo := s.suscripcionRepo.WithTx(tx)

		var err error
		suscripcion, err = suscripcionRepo.GetByID(id)
		if err != nil {
			return err
		}
		if suscripcion == nil {
			return ErrSuscripcionNotFound
		}

		if input.AutoRenovar != nil {
			suscripcion.AutoRenovar = *input.AutoRenovar
		}
		if input.Notas != nil {
			suscripcion.Notas = *input.Notas
		}
		cambioVencimiento := false
		if input.FechaVencimiento != nil {
			if !input.FechaVencimiento.After(suscripcion.FechaVencimiento) {
				return fmt.Errorf("%w: el vencimiento solo se puede extender", ErrInvalidStateTransition)
			}
			suscripcion.FechaVencimiento = *input.FechaVencimiento
			cambioVencimiento = true
		}

		if err := suscripcionRepo.Update(suscripcion); err != nil {
			return err
		}
		if cambioVencimiento {
			return s.scheduler.Regenerate(tx, suscripcion, s.now())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return suscripcion, nil
}

// Renovar extiende la vigencia: max(hoy, vencimiento) + duración del plan.
// La fecha solo avanza; renovar tarde regala el período completo desde hoy
// en vez de castigar al cliente. Una suscripción vencida se reactiva.
func (s *SubscriptionService) Renovar(id uint) (*models.Suscripcion, error) {
	var suscripcion *models.Suscripcion
	err := s.db.Transaction(func(tx *gorm.DB) error {
		suscripcionRepo := s.suscripcionRepo.WithTx(tx)

		var err error
		suscripcion, err = suscripcionRepo.GetByID(id)
		if err != nil {
			return err
		}
		if suscripcion == nil {
			return ErrSuscripcionNotFound
		}
		if suscripcion.Estado != constants.SuscripcionActiva && suscripcion.Estado != constants.SuscripcionVencida {
			return fmt.Errorf("%w: no se renueva una suscripción %s", ErrInvalidStateTransition, suscripcion.Estado)
		}
		if suscripcion.Plan == nil {
			return ErrPlanNotFound
		}

		now := s.now()
		base := suscripcion.FechaVencimiento
		if now.After(base) {
			base = now
		}
		suscripcion.FechaVencimiento = suscripcion.Plan.Duracion(base)
		suscripcion.Estado = constants.SuscripcionActiva
		suscripcion.Renovaciones++
		if err := suscripcionRepo.Update(suscripcion); err != nil {
			return err
		}

		// la vigencia cambió: el calendario de avisos se rehace aquí mismo
		return s.scheduler.Regenerate(tx, suscripcion, now)
	})
	if err != nil {
		return nil, err
	}

	logger.Infow("subscription_renewed",
		"suscripcion_id", id,
		"vencimiento", suscripcion.FechaVencimiento,
		"renovaciones", suscripcion.Renovaciones,
	)
	return suscripcion, nil
}

// Pausar detiene temporalmente una suscripción activa
func (s *SubscriptionService) Pausar(id uint) error {
	now := s.now()
	rows, err := s.suscripcionRepo.UpdateEstado(id,
		[]string{constants.SuscripcionActiva},
		constants.SuscripcionPausada,
		map[string]interface{}{"pausada_at": now},
	)
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("%w: solo se pausa una suscripción activa", ErrInvalidStateTransition)
	}
	logger.Infow("subscription_paused", "suscripcion_id", id)
	return nil
}

// Reanudar reactiva una suscripción pausada
func (s *SubscriptionService) Reanudar(id uint) error {
	rows, err := s.suscripcionRepo.UpdateEstado(id,
		[]string{constants.SuscripcionPausada},
		constants.SuscripcionActiva,
		map[string]interface{}{"pausada_at": nil},
	)
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("%w: solo se reanuda una suscripción pausada", ErrInvalidStateTransition)
	}
	logger.Infow("subscription_resumed", "suscripcion_id", id)
	return nil
}

// Cancelar termina la suscripción y descarta los avisos pendientes. La
// credencial no vuelve al pool automáticamente: puede seguir en manos del
// cliente hasta que el operador la libere.
func (s *SubscriptionService) Cancelar(id uint) error {
	now := s.now()
	return s.db.Transaction(func(tx *gorm.DB) error {
		suscripcionRepo := s.suscripcionRepo.WithTx(tx)
		notificationRepo := s.notificationRepo.WithTx(tx)

		rows, err := suscripcionRepo.UpdateEstado(id,
			[]string{constants.SuscripcionActiva, constants.SuscripcionPausada},
			constants.SuscripcionCancelada,
			map[string]interface{}{"cancelada_at": now},
		)
		if err != nil {
			return err
		}
		if rows == 0 {
			return fmt.Errorf("%w: la suscripción no está activa ni pausada", ErrInvalidStateTransition)
		}

		if _, err := notificationRepo.DeleteUnsentBySuscripcion(id); err != nil {
			return err
		}
		logger.Infow("subscription_canceled", "suscripcion_id", id)
		return nil
	})
}

// MarcarVencida pasa una suscripción activa a vencida; update condicionado,
// dos barridos simultáneos no la vencen dos veces
func (s *SubscriptionService) MarcarVencida(id uint) (bool, error) {
	rows, err := s.suscripcionRepo.UpdateEstado(id,
		[]string{constants.SuscripcionActiva},
		constants.SuscripcionVencida,
		nil,
	)
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

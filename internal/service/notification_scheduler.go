package service

import (
	"context"
	"time"

	"github.com/cuentaflix/cuentaflix/internal/constants"
	"github.com/cuentaflix/cuentaflix/internal/logger"
	"github.com/cuentaflix/cuentaflix/internal/models"
	"github.com/cuentaflix/cuentaflix/internal/notifier"
	"github.com/cuentaflix/cuentaflix/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// umbralOffset días antes del vencimiento por umbral, en orden de creación
var umbralOffsets = []struct {
	Umbral string
	Dias   int
}{
	{constants.AvisoPrevio7Dias, 7},
	{constants.AvisoPrevio3Dias, 3},
	{constants.AvisoPrevio1Dia, 1},
	{constants.AvisoVencimiento, 0},
}

// NotificationScheduler genera el calendario de avisos de una suscripción y
// despacha los que ya están al día
type NotificationScheduler struct {
	db               *gorm.DB
	notificationRepo repository.NotificationRepository
	suscripcionRepo  repository.SuscripcionRepository
	notifier         notifier.Notifier
}

// NewNotificationScheduler crea el planificador de avisos
func NewNotificationScheduler(db *gorm.DB, notificationRepo repository.NotificationRepository, suscripcionRepo repository.SuscripcionRepository, n notifier.Notifier) *NotificationScheduler {
	return &NotificationScheduler{
		db:               db,
		notificationRepo: notificationRepo,
		suscripcionRepo:  suscripcionRepo,
		notifier:         n,
	}
}

// Regenerate reemplaza los avisos pendientes por el calendario de la
// vigencia actual. Los umbrales cuya fecha ya pasó no se crean; los avisos
// ya enviados se conservan como historial. Corre dentro de la transacción
// que movió la fecha de vencimiento.
func (s *NotificationScheduler) Regenerate(tx *gorm.DB, suscripcion *models.Suscripcion, now time.Time) error {
	repo := s.notificationRepo.WithTx(tx)

	if _, err := repo.DeleteUnsentBySuscripcion(suscripcion.ID); err != nil {
		return err
	}

	canal := constants.CanalEmail
	if suscripcion.Cliente != nil && suscripcion.Cliente.Telefono != "" {
		canal = constants.CanalWhatsApp
	}

	records := make([]models.NotificationRecord, 0, len(umbralOffsets))
	for _, u := range umbralOffsets {
		fecha := suscripcion.FechaVencimiento.AddDate(0, 0, -u.Dias)
		if fecha.Before(now) {
			continue
		}
		records = append(records, models.NotificationRecord{
			SuscripcionID:   suscripcion.ID,
			Umbral:          u.Umbral,
			FechaProgramada: fecha,
			Canal:           canal,
		})
	}
	if err := repo.CreateBatch(records); err != nil {
		return err
	}

	logger.Debugw("notification_schedule_regenerated",
		"suscripcion_id", suscripcion.ID,
		"vencimiento", suscripcion.FechaVencimiento,
		"records", len(records),
	)
	return nil
}

// DispatchDue despacha los avisos vencidos. El registro se marca enviado
// antes de intentar el envío: si el canal falla, el umbral no se repite
// (a lo sumo una vez gana sobre la entrega garantizada) y queda el log
// para reenvío manual. Un fallo por aviso no frena al resto.
func (s *NotificationScheduler) DispatchDue(ctx context.Context, now time.Time) (sent, failed int, err error) {
	due, err := s.notificationRepo.FindDue(now)
	if err != nil {
		return 0, 0, err
	}

	for _, record := range due {
		suscripcion, err := s.suscripcionRepo.GetByID(record.SuscripcionID)
		if err != nil {
			logger.Errorw("notification_lookup_failed",
				"record_id", record.ID,
				"suscripcion_id", record.SuscripcionID,
				"error", err,
			)
			failed++
			continue
		}
		if suscripcion == nil || suscripcion.Estado == constants.SuscripcionCancelada || suscripcion.Estado == constants.SuscripcionVencida {
			// la suscripción se canceló o venció entre la programación y hoy
			if _, err := s.notificationRepo.MarkSent(record.ID, now); err != nil {
				logger.Warnw("notification_skip_mark_failed", "record_id", record.ID, "error", err)
			}
			continue
		}
		if suscripcion.Estado != constants.SuscripcionActiva {
			// pausada: el aviso queda pendiente y se entrega al reanudar
			continue
		}

		rows, err := s.notificationRepo.MarkSent(record.ID, now)
		if err != nil {
			logger.Errorw("notification_mark_failed", "record_id", record.ID, "error", err)
			failed++
			continue
		}
		if rows == 0 {
			// otro barrido ya lo tomó
			continue
		}

		reminder := s.buildReminder(record, suscripcion)
		if err := s.notifier.SendReminder(ctx, reminder); err != nil {
			logger.Warnw("notification_send_failed",
				"record_id", record.ID,
				"suscripcion_id", record.SuscripcionID,
				"umbral", record.Umbral,
				"error", err,
			)
			failed++
			continue
		}
		sent++
		logger.Infow("notification_sent",
			"suscripcion_id", record.SuscripcionID,
			"umbral", record.Umbral,
			"canal", record.Canal,
		)
	}
	return sent, failed, nil
}

func (s *NotificationScheduler) buildReminder(record models.NotificationRecord, suscripcion *models.Suscripcion) notifier.Reminder {
	destino := ""
	clienteNombre := ""
	if suscripcion.Cliente != nil {
		clienteNombre = suscripcion.Cliente.Nombre
		if record.Canal == constants.CanalWhatsApp {
			destino = suscripcion.Cliente.Telefono
		} else {
			destino = suscripcion.Cliente.Email
		}
	}
	planNombre := ""
	if suscripcion.Plan != nil {
		planNombre = suscripcion.Plan.Nombre
	}
	return notifier.Reminder{
		MessageID:     uuid.NewString(),
		SuscripcionID: suscripcion.ID,
		ClienteNombre: clienteNombre,
		Destino:       destino,
		Canal:         record.Canal,
		Umbral:        record.Umbral,
		PlanNombre:    planNombre,
		Vencimiento:   suscripcion.FechaVencimiento.Format(time.RFC3339),
		Mensaje:       reminderMessage(record.Umbral, planNombre),
	}
}

func reminderMessage(umbral, planNombre string) string {
	switch umbral {
	case constants.AvisoPrevio7Dias:
		return "Tu plan " + planNombre + " vence en 7 días"
	case constants.AvisoPrevio3Dias:
		return "Tu plan " + planNombre + " vence en 3 días"
	case constants.AvisoPrevio1Dia:
		return "Tu plan " + planNombre + " vence mañana"
	case constants.AvisoVencimiento:
		return "Tu plan " + planNombre + " vence hoy"
	}
	return "Tu plan " + planNombre + " está por vencer"
}

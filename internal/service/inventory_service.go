package service

import (
	"time"

	"github.com/cuentaflix/cuentaflix/internal/constants"
	"github.com/cuentaflix/cuentaflix/internal/logger"
	"github.com/cuentaflix/cuentaflix/internal/models"
	"github.com/cuentaflix/cuentaflix/internal/repository"
	"github.com/cuentaflix/cuentaflix/internal/vault"
)

// InventoryService carga y administración del inventario de credenciales
type InventoryService struct {
	credencialRepo repository.CredencialRepository
	planRepo       repository.PlanRepository
	vault          *vault.Vault
}

// NewInventoryService crea el servicio de inventario
func NewInventoryService(credencialRepo repository.CredencialRepository, planRepo repository.PlanRepository, v *vault.Vault) *InventoryService {
	return &InventoryService{
		credencialRepo: credencialRepo,
		planRepo:       planRepo,
		vault:          v,
	}
}

// CredencialInput credencial en claro para cargar al inventario
type CredencialInput struct {
	Correo string `json:"correo" binding:"required"`
	Clave  string `json:"clave" binding:"required"`
	Pin    string `json:"pin"` // PIN de perfil, opcional
	Perfil string `json:"perfil"`
	Notas  string `json:"notas"`
}

// Load cifra y carga credenciales al inventario del plan
func (s *InventoryService) Load(planID uint, inputs []CredencialInput) (int, error) {
	plan, err := s.planRepo.GetByID(planID)
	if err != nil {
		return 0, err
	}
	if plan == nil {
		return 0, ErrPlanNotFound
	}

	items := make([]models.Credencial, 0, len(inputs))
	for _, in := range inputs {
		correo, err := s.vault.Encrypt(in.Correo)
		if err != nil {
			return 0, err
		}
		clave, err := s.vault.Encrypt(in.Clave)
		if err != nil {
			return 0, err
		}
		pin := ""
		if in.Pin != "" {
			if pin, err = s.vault.Encrypt(in.Pin); err != nil {
				return 0, err
			}
		}
		items = append(items, models.Credencial{
			PlanID:        planID,
			CorreoCifrado: correo,
			ClaveCifrada:  clave,
			PinCifrado:    pin,
			Estado:        constants.CredencialDisponible,
			Perfil:        in.Perfil,
			Notas:         in.Notas,
		})
	}

	if err := s.credencialRepo.CreateBatch(items); err != nil {
		return 0, err
	}
	logger.Infow("inventory_loaded", "plan_id", planID, "count", len(items))
	return len(items), nil
}

// List lista inventario
func (s *InventoryService) List(planID uint, estado string, page, pageSize int) ([]models.Credencial, int64, error) {
	return s.credencialRepo.List(planID, estado, page, pageSize)
}

// Stock existencias por estado de un plan
func (s *InventoryService) Stock(planID uint) (repository.StockCount, error) {
	return s.credencialRepo.CountByPlan(planID)
}

// Release devuelve una credencial asignada al pool. Nunca es automático:
// una credencial entregada puede seguir en manos del comprador.
func (s *InventoryService) Release(id uint) error {
	credencial, err := s.credencialRepo.GetByID(id)
	if err != nil {
		return err
	}
	if credencial == nil {
		return ErrCredencialNotFound
	}

	rows, err := s.credencialRepo.Release(id, time.Now())
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrCredencialNoLiberable
	}
	logger.Infow("credential_released", "credencial_id", id)
	return nil
}

// MarkMantenimiento retira una credencial disponible del pool
func (s *InventoryService) MarkMantenimiento(id uint) error {
	credencial, err := s.credencialRepo.GetByID(id)
	if err != nil {
		return err
	}
	if credencial == nil {
		return ErrCredencialNotFound
	}

	rows, err := s.credencialRepo.MarkMantenimiento(id, time.Now())
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrInvalidStateTransition
	}
	logger.Infow("credential_maintenance", "credencial_id", id)
	return nil
}

// Reveal descifra una credencial para entrega o revisión del operador
func (s *InventoryService) Reveal(credencial *models.Credencial) (correo, clave, pin string, err error) {
	correo, err = s.vault.Decrypt(credencial.CorreoCifrado)
	if err != nil {
		return "", "", "", err
	}
	clave, err = s.vault.Decrypt(credencial.ClaveCifrada)
	if err != nil {
		return "", "", "", err
	}
	if credencial.PinCifrado != "" {
		if pin, err = s.vault.Decrypt(credencial.PinCifrado); err != nil {
			return "", "", "", err
		}
	}
	return correo, clave, pin, nil
}

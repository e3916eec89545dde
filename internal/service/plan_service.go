package service

import (
	"github.com/cuentaflix/cuentaflix/internal/models"
	"github.com/cuentaflix/cuentaflix/internal/repository"
)

// PlanService gestión del catálogo de planes
type PlanService struct {
	planRepo       repository.PlanRepository
	credencialRepo repository.CredencialRepository
}

// NewPlanService crea el servicio de planes
func NewPlanService(planRepo repository.PlanRepository, credencialRepo repository.CredencialRepository) *PlanService {
	return &PlanService{
		planRepo:       planRepo,
		credencialRepo: credencialRepo,
	}
}

// PlanConStock plan con stock disponible para el catálogo
type PlanConStock struct {
	models.Plan
	StockDisponible int64 `json:"stock_disponible"`
}

// Create crea un plan
func (s *PlanService) Create(plan *models.Plan) error {
	return s.planRepo.Create(plan)
}

// Update actualiza un plan
func (s *PlanService) Update(plan *models.Plan) error {
	existing, err := s.planRepo.GetByID(plan.ID)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrPlanNotFound
	}
	return s.planRepo.Update(plan)
}

// Delete borra un plan
func (s *PlanService) Delete(id uint) error {
	existing, err := s.planRepo.GetByID(id)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrPlanNotFound
	}
	return s.planRepo.Delete(id)
}

// GetByID busca un plan
func (s *PlanService) GetByID(id uint) (*models.Plan, error) {
	plan, err := s.planRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, ErrPlanNotFound
	}
	return plan, nil
}

// List lista planes con su stock disponible
func (s *PlanService) List(servicio string, soloActivos bool, page, pageSize int) ([]PlanConStock, int64, error) {
	planes, total, err := s.planRepo.List(servicio, soloActivos, page, pageSize)
	if err != nil {
		return nil, 0, err
	}

	ids := make([]uint, 0, len(planes))
	for _, p := range planes {
		ids = append(ids, p.ID)
	}
	stock, err := s.credencialRepo.CountDisponiblesByPlanIDs(ids)
	if err != nil {
		return nil, 0, err
	}

	result := make([]PlanConStock, 0, len(planes))
	for _, p := range planes {
		result = append(result, PlanConStock{Plan: p, StockDisponible: stock[p.ID]})
	}
	return result, total, nil
}

package admin

import (
	"errors"
	"strings"

	handlershared "github.com/cuentaflix/cuentaflix/internal/http/handlers/shared"
	"github.com/cuentaflix/cuentaflix/internal/http/response"
	"github.com/cuentaflix/cuentaflix/internal/models"
	"github.com/cuentaflix/cuentaflix/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// PlanRequest alta o edición de plan
type PlanRequest struct {
	Nombre        string `json:"nombre" binding:"required"`
	Servicio      string `json:"servicio" binding:"required"`
	Costo         string `json:"costo"`
	PrecioVenta   string `json:"precio_venta" binding:"required"`
	DuracionDias  int    `json:"duracion_dias"`
	DuracionMeses int    `json:"duracion_meses"`
	Perfiles      int    `json:"perfiles"`
	Activo        *bool  `json:"activo"`
	Descripcion   string `json:"descripcion"`
}

func (r PlanRequest) apply(plan *models.Plan) error {
	precio, err := decimal.NewFromString(strings.TrimSpace(r.PrecioVenta))
	if err != nil || precio.IsNegative() {
		return errors.New("precio_venta inválido")
	}
	costo := decimal.Zero
	if strings.TrimSpace(r.Costo) != "" {
		costo, err = decimal.NewFromString(strings.TrimSpace(r.Costo))
		if err != nil || costo.IsNegative() {
			return errors.New("costo inválido")
		}
	}

	plan.Nombre = strings.TrimSpace(r.Nombre)
	plan.Servicio = strings.ToLower(strings.TrimSpace(r.Servicio))
	plan.Costo = models.NewMoneyFromDecimal(costo)
	plan.PrecioVenta = models.NewMoneyFromDecimal(precio)
	plan.DuracionDias = r.DuracionDias
	plan.DuracionMeses = r.DuracionMeses
	if r.Perfiles > 0 {
		plan.Perfiles = r.Perfiles
	} else if plan.Perfiles == 0 {
		plan.Perfiles = 1
	}
	if r.Activo != nil {
		plan.Activo = *r.Activo
	}
	plan.Descripcion = strings.TrimSpace(r.Descripcion)
	return nil
}

// CreatePlan crea un plan
func (h *Handler) CreatePlan(c *gin.Context) {
	var req PlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "solicitud inválida", err)
		return
	}

	plan := models.Plan{Activo: true}
	if err := req.apply(&plan); err != nil {
		respondError(c, response.CodeBadRequest, err.Error(), nil)
		return
	}
	if err := h.PlanService.Create(&plan); err != nil {
		respondError(c, response.CodeInternal, "no se pudo crear el plan", err)
		return
	}
	response.Success(c, plan)
}

// UpdatePlan edita un plan
func (h *Handler) UpdatePlan(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req PlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "solicitud inválida", err)
		return
	}

	plan, err := h.PlanService.GetByID(id)
	if err != nil {
		if errors.Is(err, service.ErrPlanNotFound) {
			respondError(c, response.CodeNotFound, "plan no encontrado", nil)
			return
		}
		respondError(c, response.CodeInternal, "no se pudo cargar el plan", err)
		return
	}
	if err := req.apply(plan); err != nil {
		respondError(c, response.CodeBadRequest, err.Error(), nil)
		return
	}
	if err := h.PlanService.Update(plan); err != nil {
		respondError(c, response.CodeInternal, "no se pudo actualizar el plan", err)
		return
	}
	response.Success(c, plan)
}

// DeletePlan borra (lógicamente) un plan
func (h *Handler) DeletePlan(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.PlanService.Delete(id); err != nil {
		if errors.Is(err, service.ErrPlanNotFound) {
			respondError(c, response.CodeNotFound, "plan no encontrado", nil)
			return
		}
		respondError(c, response.CodeInternal, "no se pudo borrar el plan", err)
		return
	}
	response.Success(c, nil)
}

// GetPlan devuelve un plan
func (h *Handler) GetPlan(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	plan, err := h.PlanService.GetByID(id)
	if err != nil {
		if errors.Is(err, service.ErrPlanNotFound) {
			respondError(c, response.CodeNotFound, "plan no encontrado", nil)
			return
		}
		respondError(c, response.CodeInternal, "no se pudo cargar el plan", err)
		return
	}
	response.Success(c, plan)
}

// ListPlanes lista planes con stock disponible
func (h *Handler) ListPlanes(c *gin.Context) {
	page, pageSize := handlershared.ParsePagination(c)
	servicio := strings.TrimSpace(c.Query("servicio"))
	soloActivos := c.Query("activos") == "true"

	planes, total, err := h.PlanService.List(servicio, soloActivos, page, pageSize)
	if err != nil {
		respondError(c, response.CodeInternal, "no se pudieron listar los planes", err)
		return
	}
	response.SuccessWithPage(c, planes, handlershared.BuildPagination(page, pageSize, total))
}

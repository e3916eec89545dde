package admin

import (
	"errors"
	"strconv"
	"strings"

	handlershared "github.com/cuentaflix/cuentaflix/internal/http/handlers/shared"
	"github.com/cuentaflix/cuentaflix/internal/http/response"
	"github.com/cuentaflix/cuentaflix/internal/service"

	"github.com/gin-gonic/gin"
)

// LoadCredencialesRequest carga de credenciales al inventario
type LoadCredencialesRequest struct {
	PlanID       uint                      `json:"plan_id" binding:"required"`
	Credenciales []service.CredencialInput `json:"credenciales" binding:"required"`
}

// LoadCredenciales carga credenciales cifradas al inventario de un plan
func (h *Handler) LoadCredenciales(c *gin.Context) {
	var req LoadCredencialesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "solicitud inválida", err)
		return
	}

	created, err := h.InventoryService.Load(req.PlanID, req.Credenciales)
	if err != nil {
		if errors.Is(err, service.ErrPlanNotFound) {
			respondError(c, response.CodeNotFound, "plan no encontrado", nil)
			return
		}
		respondError(c, response.CodeInternal, "no se pudieron cargar las credenciales", err)
		return
	}

	requestLog(c).Infow("inventario_cargado", "plan_id", req.PlanID, "created", created)
	response.Success(c, gin.H{"created": created})
}

// ListInventario lista credenciales filtrando por plan y estado
func (h *Handler) ListInventario(c *gin.Context) {
	page, pageSize := handlershared.ParsePagination(c)
	planID, _ := strconv.ParseUint(c.Query("plan_id"), 10, 64)
	estado := strings.TrimSpace(c.Query("estado"))

	items, total, err := h.InventoryService.List(uint(planID), estado, page, pageSize)
	if err != nil {
		respondError(c, response.CodeInternal, "no se pudo listar el inventario", err)
		return
	}
	response.SuccessWithPage(c, items, handlershared.BuildPagination(page, pageSize, total))
}

// GetStock devuelve las existencias por estado de un plan
func (h *Handler) GetStock(c *gin.Context) {
	planID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	stock, err := h.InventoryService.Stock(planID)
	if err != nil {
		respondError(c, response.CodeInternal, "no se pudo consultar el stock", err)
		return
	}
	response.Success(c, stock)
}

// LiberarCredencial devuelve una credencial asignada al inventario
func (h *Handler) LiberarCredencial(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.InventoryService.Release(id); err != nil {
		switch {
		case errors.Is(err, service.ErrCredencialNotFound):
			respondError(c, response.CodeNotFound, "credencial no encontrada", nil)
		case errors.Is(err, service.ErrCredencialNoLiberable):
			respondError(c, response.CodeBadRequest, "la credencial no está asignada", nil)
		default:
			respondError(c, response.CodeInternal, "no se pudo liberar la credencial", err)
		}
		return
	}
	requestLog(c).Infow("credencial_liberada", "credencial_id", id)
	response.Success(c, nil)
}

// MantenimientoCredencial retira una credencial disponible a mantenimiento
func (h *Handler) MantenimientoCredencial(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.InventoryService.MarkMantenimiento(id); err != nil {
		switch {
		case errors.Is(err, service.ErrCredencialNotFound):
			respondError(c, response.CodeNotFound, "credencial no encontrada", nil)
		case errors.Is(err, service.ErrInvalidStateTransition):
			respondError(c, response.CodeBadRequest, "la credencial no está disponible", nil)
		default:
			respondError(c, response.CodeInternal, "no se pudo retirar la credencial", err)
		}
		return
	}
	requestLog(c).Infow("credencial_mantenimiento", "credencial_id", id)
	response.Success(c, nil)
}

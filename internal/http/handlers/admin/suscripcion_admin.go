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

// CrearSuscripcion alta manual de suscripción con credencial del inventario
func (h *Handler) CrearSuscripcion(c *gin.Context) {
	var req service.CrearInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "solicitud inválida", err)
		return
	}

	suscripcion, err := h.SubscriptionService.Crear(req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrClienteNotFound):
			respondError(c, response.CodeNotFound, "cliente no encontrado", nil)
		case errors.Is(err, service.ErrPlanNotFound):
			respondError(c, response.CodeNotFound, "plan no encontrado", nil)
		case errors.Is(err, service.ErrOutOfStock):
			respondError(c, response.CodeConflict, "sin stock disponible para el plan", nil)
		case errors.Is(err, service.ErrTransientLock):
			respondError(c, response.CodeConflict, "el inventario está en disputa, reintente", nil)
		default:
			respondError(c, response.CodeInternal, "no se pudo crear la suscripción", err)
		}
		return
	}

	requestLog(c).Infow("suscripcion_creada",
		"suscripcion_id", suscripcion.ID,
		"cliente_id", suscripcion.ClienteID,
		"plan_id", suscripcion.PlanID,
	)
	response.Success(c, suscripcion)
}

// GetSuscripcion devuelve una suscripción con su historial de avisos
func (h *Handler) GetSuscripcion(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	suscripcion, err := h.SubscriptionService.GetByID(id)
	if err != nil {
		if errors.Is(err, service.ErrSuscripcionNotFound) {
			respondError(c, response.CodeNotFound, "suscripción no encontrada", nil)
			return
		}
		respondError(c, response.CodeInternal, "no se pudo cargar la suscripción", err)
		return
	}
	response.Success(c, suscripcion)
}

// ListSuscripciones lista suscripciones filtrando por estado y cliente
func (h *Handler) ListSuscripciones(c *gin.Context) {
	page, pageSize := handlershared.ParsePagination(c)
	estado := strings.TrimSpace(c.Query("estado"))
	clienteID, _ := strconv.ParseUint(c.Query("cliente_id"), 10, 64)

	items, total, err := h.SubscriptionService.List(estado, uint(clienteID), page, pageSize)
	if err != nil {
		respondError(c, response.CodeInternal, "no se pudieron listar las suscripciones", err)
		return
	}
	response.SuccessWithPage(c, items, handlershared.BuildPagination(page, pageSize, total))
}

// UpdateSuscripcion edita los campos administrativos
func (h *Handler) UpdateSuscripcion(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req service.ActualizarInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "solicitud inválida", err)
		return
	}
	suscripcion, err := h.SubscriptionService.Actualizar(id, req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSuscripcionNotFound):
			respondError(c, response.CodeNotFound, "suscripción no encontrada", nil)
		case errors.Is(err, service.ErrInvalidStateTransition):
			respondError(c, response.CodeBadRequest, "el vencimiento solo se puede extender", nil)
		default:
			respondError(c, response.CodeInternal, "no se pudo actualizar la suscripción", err)
		}
		return
	}
	response.Success(c, suscripcion)
}

// RenovarSuscripcion extiende el vencimiento un período del plan
func (h *Handler) RenovarSuscripcion(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	suscripcion, err := h.SubscriptionService.Renovar(id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSuscripcionNotFound):
			respondError(c, response.CodeNotFound, "suscripción no encontrada", nil)
		case errors.Is(err, service.ErrInvalidStateTransition):
			respondError(c, response.CodeBadRequest, "la suscripción no se puede renovar en su estado actual", nil)
		default:
			respondError(c, response.CodeInternal, "no se pudo renovar la suscripción", err)
		}
		return
	}
	requestLog(c).Infow("suscripcion_renovada",
		"suscripcion_id", suscripcion.ID,
		"fecha_vencimiento", suscripcion.FechaVencimiento,
	)
	response.Success(c, suscripcion)
}

// PausarSuscripcion pausa una suscripción activa
func (h *Handler) PausarSuscripcion(c *gin.Context) {
	h.cambiarEstado(c, h.SubscriptionService.Pausar, "suscripcion_pausada", "la suscripción no está activa")
}

// ReanudarSuscripcion reactiva una suscripción pausada
func (h *Handler) ReanudarSuscripcion(c *gin.Context) {
	h.cambiarEstado(c, h.SubscriptionService.Reanudar, "suscripcion_reanudada", "la suscripción no está pausada")
}

// CancelarSuscripcion cancela una suscripción; la credencial se libera a mano
func (h *Handler) CancelarSuscripcion(c *gin.Context) {
	h.cambiarEstado(c, h.SubscriptionService.Cancelar, "suscripcion_cancelada", "la suscripción no se puede cancelar en su estado actual")
}

func (h *Handler) cambiarEstado(c *gin.Context, op func(uint) error, event, transitionMsg string) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := op(id); err != nil {
		switch {
		case errors.Is(err, service.ErrSuscripcionNotFound):
			respondError(c, response.CodeNotFound, "suscripción no encontrada", nil)
		case errors.Is(err, service.ErrInvalidStateTransition):
			respondError(c, response.CodeBadRequest, transitionMsg, nil)
		default:
			respondError(c, response.CodeInternal, "no se pudo actualizar la suscripción", err)
		}
		return
	}
	requestLog(c).Infow(event, "suscripcion_id", id)
	response.Success(c, nil)
}

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

// ListOrdenes lista órdenes filtrando por estado y cliente
func (h *Handler) ListOrdenes(c *gin.Context) {
	page, pageSize := handlershared.ParsePagination(c)
	status := strings.TrimSpace(c.Query("status"))
	clienteID, _ := strconv.ParseUint(c.Query("cliente_id"), 10, 64)

	orders, total, err := h.OrderService.List(status, uint(clienteID), page, pageSize)
	if err != nil {
		respondError(c, response.CodeInternal, "no se pudieron listar las órdenes", err)
		return
	}
	for i := range orders {
		ganancia := orders[i].CalcularGanancia()
		orders[i].Ganancia = &ganancia
	}
	response.SuccessWithPage(c, orders, handlershared.BuildPagination(page, pageSize, total))
}

// GetOrden devuelve una orden con sus items
func (h *Handler) GetOrden(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	order, err := h.OrderService.GetByID(id)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			respondError(c, response.CodeNotFound, "orden no encontrada", nil)
			return
		}
		respondError(c, response.CodeInternal, "no se pudo cargar la orden", err)
		return
	}
	ganancia := order.CalcularGanancia()
	order.Ganancia = &ganancia
	response.Success(c, order)
}

// ConfirmarPago marca una orden como pagada
func (h *Handler) ConfirmarPago(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	order, err := h.OrderService.ConfirmarPago(id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			respondError(c, response.CodeNotFound, "orden no encontrada", nil)
		case errors.Is(err, service.ErrInvalidStateTransition):
			respondError(c, response.CodeBadRequest, "la orden no está pendiente de pago", nil)
		default:
			respondError(c, response.CodeInternal, "no se pudo confirmar el pago", err)
		}
		return
	}
	requestLog(c).Infow("orden_pagada", "order_id", order.ID, "order_no", order.OrderNo)
	response.Success(c, order)
}

// CancelarOrden cancela una orden
func (h *Handler) CancelarOrden(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	order, err := h.OrderService.Cancelar(id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			respondError(c, response.CodeNotFound, "orden no encontrada", nil)
		case errors.Is(err, service.ErrInvalidStateTransition):
			respondError(c, response.CodeBadRequest, "la orden no se puede cancelar en su estado actual", nil)
		default:
			respondError(c, response.CodeInternal, "no se pudo cancelar la orden", err)
		}
		return
	}
	requestLog(c).Infow("orden_cancelada", "order_id", order.ID, "order_no", order.OrderNo)
	response.Success(c, order)
}

// AsignarItem asigna una credencial del inventario a un item pagado
func (h *Handler) AsignarItem(c *gin.Context) {
	itemID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	suscripcion, err := h.AllocationService.AsignarItem(itemID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderItemNotFound):
			respondError(c, response.CodeNotFound, "item no encontrado", nil)
		case errors.Is(err, service.ErrAlreadyAllocated):
			respondError(c, response.CodeConflict, "el item ya fue asignado", nil)
		case errors.Is(err, service.ErrOutOfStock):
			respondError(c, response.CodeConflict, "sin stock disponible para el plan", nil)
		case errors.Is(err, service.ErrTransientLock):
			respondError(c, response.CodeConflict, "el inventario está en disputa, reintente", nil)
		case errors.Is(err, service.ErrInvalidStateTransition):
			respondError(c, response.CodeBadRequest, "la orden no está pagada", nil)
		default:
			respondError(c, response.CodeInternal, "no se pudo asignar el item", err)
		}
		return
	}
	requestLog(c).Infow("item_asignado",
		"order_item_id", itemID,
		"suscripcion_id", suscripcion.ID,
	)
	response.Success(c, suscripcion)
}

// EntregarItem marca un item asignado como entregado
func (h *Handler) EntregarItem(c *gin.Context) {
	itemID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.OrderService.EntregarItem(itemID); err != nil {
		switch {
		case errors.Is(err, service.ErrOrderItemNotFound):
			respondError(c, response.CodeNotFound, "item no encontrado", nil)
		case errors.Is(err, service.ErrInvalidStateTransition):
			respondError(c, response.CodeBadRequest, "el item no está asignado", nil)
		default:
			respondError(c, response.CodeInternal, "no se pudo entregar el item", err)
		}
		return
	}
	requestLog(c).Infow("item_entregado", "order_item_id", itemID)
	response.Success(c, nil)
}

package public

import (
	"errors"
	"strings"

	"github.com/cuentaflix/cuentaflix/internal/http/response"
	"github.com/cuentaflix/cuentaflix/internal/service"

	"github.com/gin-gonic/gin"
)

// CreateOrder checkout público: datos del cliente + items de planes
func (h *Handler) CreateOrder(c *gin.Context) {
	var req service.CreateOrderInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "solicitud inválida", err)
		return
	}

	order, err := h.OrderService.Create(req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPlanNotFound):
			respondError(c, response.CodeNotFound, "plan no encontrado o inactivo", nil)
		case errors.Is(err, service.ErrClienteNotFound):
			respondError(c, response.CodeBadRequest, "datos del cliente incompletos", nil)
		case errors.Is(err, service.ErrInvalidStateTransition):
			respondError(c, response.CodeBadRequest, "la orden no tiene items", nil)
		default:
			respondError(c, response.CodeInternal, "no se pudo crear la orden", err)
		}
		return
	}

	requestLog(c).Infow("orden_creada",
		"order_id", order.ID,
		"order_no", order.OrderNo,
		"total", order.TotalAmount.String(),
	)
	response.Success(c, order)
}

// GetOrder consulta una orden por número
func (h *Handler) GetOrder(c *gin.Context) {
	orderNo := strings.TrimSpace(c.Param("order_no"))
	if orderNo == "" {
		respondError(c, response.CodeBadRequest, "número de orden inválido", nil)
		return
	}

	order, err := h.OrderService.GetByOrderNo(orderNo)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			respondError(c, response.CodeNotFound, "orden no encontrada", nil)
			return
		}
		respondError(c, response.CodeInternal, "no se pudo cargar la orden", err)
		return
	}
	response.Success(c, order)
}

package public

import (
	"strings"

	handlershared "github.com/cuentaflix/cuentaflix/internal/http/handlers/shared"
	"github.com/cuentaflix/cuentaflix/internal/http/response"

	"github.com/gin-gonic/gin"
)

// GetPlanes lista los planes activos con stock disponible
func (h *Handler) GetPlanes(c *gin.Context) {
	page, pageSize := handlershared.ParsePagination(c)
	servicio := strings.TrimSpace(c.Query("servicio"))

	planes, total, err := h.PlanService.List(servicio, true, page, pageSize)
	if err != nil {
		respondError(c, response.CodeInternal, "no se pudieron listar los planes", err)
		return
	}
	response.SuccessWithPage(c, planes, handlershared.BuildPagination(page, pageSize, total))
}

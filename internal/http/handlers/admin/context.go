package admin

import (
	"strconv"
	"strings"

	handlershared "github.com/cuentaflix/cuentaflix/internal/http/handlers/shared"
	"github.com/cuentaflix/cuentaflix/internal/http/response"

	"github.com/gin-gonic/gin"
)

func getAdminID(c *gin.Context) (uint, bool) {
	return handlershared.GetContextUint(c, "admin_id")
}

// parseIDParam lee un :id de la ruta; responde el error si es inválido
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	raw := strings.TrimSpace(c.Param(name))
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "identificador inválido", nil)
		return 0, false
	}
	return uint(id), true
}

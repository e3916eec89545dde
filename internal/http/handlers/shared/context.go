package shared

import (
	"github.com/cuentaflix/cuentaflix/internal/http/response"

	"github.com/gin-gonic/gin"
)

// GetContextUint lee un uint del contexto con respuesta de error unificada
func GetContextUint(c *gin.Context, key string) (uint, bool) {
	value, exists := c.Get(key)
	if !exists {
		RespondError(c, response.CodeUnauthorized, "no autorizado", nil)
		return 0, false
	}

	switch v := value.(type) {
	case uint:
		return v, true
	case int:
		if v < 0 {
			RespondError(c, response.CodeBadRequest, "identificador inválido", nil)
			return 0, false
		}
		return uint(v), true
	case float64:
		if v < 0 {
			RespondError(c, response.CodeBadRequest, "identificador inválido", nil)
			return 0, false
		}
		return uint(v), true
	default:
		RespondError(c, response.CodeInternal, "tipo de identificador inválido", nil)
		return 0, false
	}
}

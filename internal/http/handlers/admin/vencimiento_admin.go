package admin

import (
	"errors"

	"github.com/cuentaflix/cuentaflix/internal/http/response"
	"github.com/cuentaflix/cuentaflix/internal/service"

	"github.com/gin-gonic/gin"
)

// VerificarVencimientos dispara un barrido de vencimientos a pedido
func (h *Handler) VerificarVencimientos(c *gin.Context) {
	summary, err := h.RenewalEngine.Run(c.Request.Context())
	if err != nil {
		if errors.Is(err, service.ErrTransientLock) {
			respondError(c, response.CodeConflict, "ya hay un barrido en curso", nil)
			return
		}
		respondError(c, response.CodeInternal, "el barrido de vencimientos falló", err)
		return
	}
	requestLog(c).Infow("barrido_manual",
		"checked", summary.Checked,
		"expired", summary.Expired,
		"renewed", summary.Renewed,
		"notified", summary.Notified,
		"errored", summary.Errored,
	)
	response.Success(c, summary)
}

package admin

import "github.com/cuentaflix/cuentaflix/internal/provider"

// Handler punto de entrada de los endpoints del panel
type Handler struct {
	*provider.Container
}

// New crea el handler del panel
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}

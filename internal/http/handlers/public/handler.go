package public

import "github.com/cuentaflix/cuentaflix/internal/provider"

// Handler punto de entrada de los endpoints públicos
type Handler struct {
	*provider.Container
}

// New crea el handler público
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}

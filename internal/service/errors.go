package service

import "errors"

// Errores de dominio; se comparan con errors.Is
var (
	ErrNotFound               = errors.New("registro no encontrado")
	ErrPlanNotFound           = errors.New("plan no encontrado")
	ErrClienteNotFound        = errors.New("cliente no encontrado")
	ErrOrderNotFound          = errors.New("orden no encontrada")
	ErrOrderItemNotFound      = errors.New("item de orden no encontrado")
	ErrSuscripcionNotFound    = errors.New("suscripción no encontrada")
	ErrCredencialNotFound     = errors.New("credencial no encontrada")
	ErrOutOfStock             = errors.New("sin stock disponible para el plan")
	ErrAlreadyAllocated       = errors.New("el item ya tiene credencial asignada")
	ErrInvalidStateTransition = errors.New("transición de estado no permitida")
	ErrTransientLock          = errors.New("recurso tomado por otra operación, reintente")
	ErrCredencialNoLiberable  = errors.New("la credencial no está asignada")
	ErrInvalidCredentials     = errors.New("usuario o contraseña incorrectos")
	ErrInvalidPassword        = errors.New("contraseña incorrecta")
)

package domain

import (
	"errors"
	"strings"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrCompanyNotFound    = errors.New("empresa no encontrada")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrConflict           = errors.New("conflicto con el estado actual")
	ErrNoFieldsToUpdate   = errors.New("no hay campos válidos para actualizar")
)

// ValidationError agrupa los motivos de rechazo de una validación de entrada.
// El mensaje visible al usuario (en árabe, como toda la interfaz del sistema)
// concatena los motivos con ", " bajo un prefijo común.
type ValidationError struct {
	Reasons []string
}

func (e *ValidationError) Error() string {
	return "خطأ في التحقق من البيانات: " + strings.Join(e.Reasons, ", ")
}

// NewValidationError construye el error solo si hay motivos; nil si la lista está vacía.
func NewValidationError(reasons []string) error {
	if len(reasons) == 0 {
		return nil
	}
	return &ValidationError{Reasons: reasons}
}

// IsValidation indica si err es (o envuelve) un ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

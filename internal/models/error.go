package models

import "fmt"

// ErrorCode representa el código de error
type ErrorCode string

const (
	ErrorCodeInvalidRequest  ErrorCode = "INVALID_REQUEST"
	ErrorCodeUnauthorized    ErrorCode = "UNAUTHORIZED"
	ErrorCodeNotFound        ErrorCode = "NOT_FOUND"
	ErrorCodeConflict        ErrorCode = "CONFLICT"
	ErrorCodeStateTransition ErrorCode = "STATE_TRANSITION"
	ErrorCodeInternal        ErrorCode = "INTERNAL"
)

// ValidationError indica un campo requerido ausente o inválido
type ValidationError struct {
	Campo   string
	Detalle string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validación fallida en %s: %s", e.Campo, e.Detalle)
}

// NewValidationFieldError crea un error de validación de campo
func NewValidationFieldError(campo, detalle string) error {
	return &ValidationError{Campo: campo, Detalle: detalle}
}

// StateTransitionError indica una operación ilegal desde el estado actual
type StateTransitionError struct {
	Entidad   string
	Estado    string
	Operacion string
}

func (e *StateTransitionError) Error() string {
	return fmt.Sprintf("%s en estado %s no admite la operación %s", e.Entidad, e.Estado, e.Operacion)
}

// NewStateTransitionError crea un error de transición de estado
func NewStateTransitionError(entidad, estado, operacion string) error {
	return &StateTransitionError{Entidad: entidad, Estado: estado, Operacion: operacion}
}

// ConflictError indica un conflicto de negocio legítimo: doble intento de
// pago sin servicios pendientes, o eliminación bloqueada por servicios activos
type ConflictError struct {
	Motivo           string
	ServiciosActivos int
}

func (e *ConflictError) Error() string {
	if e.ServiciosActivos > 0 {
		return fmt.Sprintf("%s (%d servicios activos)", e.Motivo, e.ServiciosActivos)
	}
	return e.Motivo
}

// NewConflictoError crea un error de conflicto de negocio
func NewConflictoError(motivo string) error {
	return &ConflictError{Motivo: motivo}
}

// NotFoundError indica un identificador desconocido
type NotFoundError struct {
	Entidad string
	ID      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s no encontrado: %s", e.Entidad, e.ID)
}

// NewNotFoundEntityError crea un error de entidad no encontrada
func NewNotFoundEntityError(entidad, id string) error {
	return &NotFoundError{Entidad: entidad, ID: id}
}

// ErrorDetail representa un detalle específico del error
type ErrorDetail struct {
	Field string `json:"field"`
	Issue string `json:"issue"`
}

// ErrorResponse representa la respuesta de error estandarizada
type ErrorResponse struct {
	Error ErrorInfo `json:"error"`
}

// ErrorInfo representa la información del error
type ErrorInfo struct {
	Code             string        `json:"code"`
	Message          string        `json:"message"`
	Details          []ErrorDetail `json:"details,omitempty"`
	ServiciosActivos *int          `json:"servicios_activos,omitempty"`
}

// NewErrorResponse crea una nueva respuesta de error
func NewErrorResponse(code ErrorCode, message string) ErrorResponse {
	return ErrorResponse{
		Error: ErrorInfo{
			Code:    string(code),
			Message: message,
		},
	}
}

// NewValidationError crea un error de validación con detalles
func NewValidationError(message string, details []ErrorDetail) ErrorResponse {
	return ErrorResponse{
		Error: ErrorInfo{
			Code:    string(ErrorCodeInvalidRequest),
			Message: message,
			Details: details,
		},
	}
}

// NewConflictError crea un error de conflicto; el conteo de servicios activos
// viaja en la respuesta para que la consola pueda mostrarlo
func NewConflictError(message string, serviciosActivos int) ErrorResponse {
	info := ErrorInfo{
		Code:    string(ErrorCodeConflict),
		Message: message,
	}
	if serviciosActivos > 0 {
		info.ServiciosActivos = &serviciosActivos
	}
	return ErrorResponse{Error: info}
}

// NewUnauthorizedError crea un error de autenticación
func NewUnauthorizedError(message string) ErrorResponse {
	return ErrorResponse{
		Error: ErrorInfo{
			Code:    string(ErrorCodeUnauthorized),
			Message: message,
		},
	}
}

// NewNotFoundError crea un error de recurso no encontrado
func NewNotFoundError(message string) ErrorResponse {
	return ErrorResponse{
		Error: ErrorInfo{
			Code:    string(ErrorCodeNotFound),
			Message: message,
		},
	}
}

// NewStateTransitionErrorResponse crea un error de transición ilegal
func NewStateTransitionErrorResponse(message string) ErrorResponse {
	return ErrorResponse{
		Error: ErrorInfo{
			Code:    string(ErrorCodeStateTransition),
			Message: message,
		},
	}
}

// NewInternalError crea un error interno del servidor
func NewInternalError(message string) ErrorResponse {
	return ErrorResponse{
		Error: ErrorInfo{
			Code:    string(ErrorCodeInternal),
			Message: message,
		},
	}
}

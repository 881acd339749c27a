package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EstadoVerificacion representa el estado de verificación de un gruero
type EstadoVerificacion string

const (
	VerificacionPendiente EstadoVerificacion = "PENDIENTE"
	VerificacionAprobado  EstadoVerificacion = "APROBADO"
	VerificacionRechazado EstadoVerificacion = "RECHAZADO"
)

// TipoVehiculo representa un tipo de grúa/auxilio atendido
type TipoVehiculo string

const (
	TipoGruaPlataforma TipoVehiculo = "GRUA_PLATAFORMA"
	TipoGruaArrastre   TipoVehiculo = "GRUA_ARRASTRE"
	TipoGruaPesada     TipoVehiculo = "GRUA_PESADA"
	TipoAuxilioVial    TipoVehiculo = "AUXILIO_VIAL"
)

// EsValido retorna true si el tipo de vehículo es uno de los conocidos
func (t TipoVehiculo) EsValido() bool {
	switch t {
	case TipoGruaPlataforma, TipoGruaArrastre, TipoGruaPesada, TipoAuxilioVial:
		return true
	}
	return false
}

// ParseTiposVehiculo decodifica la lista JSON de tipos atendidos y descarta
// los valores desconocidos. Ante entrada malformada retorna el conjunto vacío.
func ParseTiposVehiculo(raw string) []TipoVehiculo {
	if raw == "" {
		return []TipoVehiculo{}
	}
	var crudos []string
	if err := json.Unmarshal([]byte(raw), &crudos); err != nil {
		return []TipoVehiculo{}
	}
	tipos := make([]TipoVehiculo, 0, len(crudos))
	vistos := make(map[TipoVehiculo]bool)
	for _, c := range crudos {
		t := TipoVehiculo(c)
		if t.EsValido() && !vistos[t] {
			tipos = append(tipos, t)
			vistos[t] = true
		}
	}
	return tipos
}

// DatosBancarios representa la foto bancaria del gruero usada al momento del pago
type DatosBancarios struct {
	Banco         string `json:"banco" db:"banco"`
	TipoCuenta    string `json:"tipo_cuenta" db:"tipo_cuenta"`
	NumeroCuenta  string `json:"numero_cuenta" db:"numero_cuenta"`
	TitularNombre string `json:"titular_nombre" db:"titular_nombre"`
	TitularCedula string `json:"titular_cedula" db:"titular_cedula"`
}

// Gruero representa la cuenta de un operador de grúa
type Gruero struct {
	ID       uuid.UUID `json:"id" db:"id"`
	Nombre   string    `json:"nombre" db:"nombre"`
	Email    string    `json:"email" db:"email"`
	Telefono string    `json:"telefono" db:"telefono"`

	Verificacion     EstadoVerificacion `json:"verificacion" db:"verificacion"`
	MotivoRechazo    *string            `json:"motivo_rechazo,omitempty" db:"motivo_rechazo"`
	CuentaSuspendida bool               `json:"cuenta_suspendida" db:"cuenta_suspendida"`
	MotivoSuspension *string            `json:"motivo_suspension,omitempty" db:"motivo_suspension"`

	TiposVehiculo []TipoVehiculo `json:"tipos_vehiculo"`
	Bancarios     DatosBancarios `json:"datos_bancarios"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Cliente representa la cuenta de un cliente del marketplace
type Cliente struct {
	ID       uuid.UUID `json:"id" db:"id"`
	Nombre   string    `json:"nombre" db:"nombre"`
	Email    string    `json:"email" db:"email"`
	Telefono string    `json:"telefono" db:"telefono"`

	CuentaSuspendida bool    `json:"cuenta_suspendida" db:"cuenta_suspendida"`
	MotivoSuspension *string `json:"motivo_suspension,omitempty" db:"motivo_suspension"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// MotivoRequest representa el request de las operaciones que exigen un motivo
type MotivoRequest struct {
	Motivo string `json:"motivo" binding:"required"`
}

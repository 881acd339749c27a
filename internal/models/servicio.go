package models

import (
	"time"

	"github.com/google/uuid"
)

// EstadoServicio representa el estado del ciclo de vida de un servicio de grúa
type EstadoServicio string

const (
	EstadoServicioSolicitado EstadoServicio = "SOLICITADO"
	EstadoServicioAceptado   EstadoServicio = "ACEPTADO"
	EstadoServicioEnCamino   EstadoServicio = "EN_CAMINO"
	EstadoServicioEnSitio    EstadoServicio = "EN_SITIO"
	EstadoServicioCompletado EstadoServicio = "COMPLETADO"
	EstadoServicioCancelado  EstadoServicio = "CANCELADO"
)

// transicionesServicio es la tabla exhaustiva de transiciones permitidas.
// COMPLETADO y CANCELADO son terminales y no tienen salidas.
var transicionesServicio = map[EstadoServicio][]EstadoServicio{
	EstadoServicioSolicitado: {EstadoServicioAceptado, EstadoServicioCancelado},
	EstadoServicioAceptado:   {EstadoServicioEnCamino, EstadoServicioCancelado},
	EstadoServicioEnCamino:   {EstadoServicioEnSitio, EstadoServicioCancelado},
	EstadoServicioEnSitio:    {EstadoServicioCompletado, EstadoServicioCancelado},
	EstadoServicioCompletado: {},
	EstadoServicioCancelado:  {},
}

// EsValido retorna true si el estado es uno de los estados conocidos
func (e EstadoServicio) EsValido() bool {
	_, ok := transicionesServicio[e]
	return ok
}

// EsTerminal retorna true si el estado no admite más transiciones
func (e EstadoServicio) EsTerminal() bool {
	return e == EstadoServicioCompletado || e == EstadoServicioCancelado
}

// PuedeTransicionar verifica la tabla de transiciones del servicio
func PuedeTransicionar(desde, hacia EstadoServicio) bool {
	for _, s := range transicionesServicio[desde] {
		if s == hacia {
			return true
		}
	}
	return false
}

// Servicio representa un servicio de grúa y su resultado financiero
type Servicio struct {
	ID           uuid.UUID      `json:"id" db:"id"`
	ClienteID    uuid.UUID      `json:"cliente_id" db:"cliente_id"`
	GrueroID     *uuid.UUID     `json:"gruero_id,omitempty" db:"gruero_id"`
	Estado       EstadoServicio `json:"estado" db:"estado"`
	TipoVehiculo TipoVehiculo   `json:"tipo_vehiculo" db:"tipo_vehiculo"`

	// Trayecto
	DireccionOrigen  string  `json:"direccion_origen" db:"direccion_origen"`
	DireccionDestino string  `json:"direccion_destino" db:"direccion_destino"`
	DistanciaKm      float64 `json:"distancia_km" db:"distancia_km"`

	// Montos en pesos enteros; sin acumulación en punto flotante
	TotalCliente       int64 `json:"total_cliente" db:"total_cliente"`
	TotalGruero        int64 `json:"total_gruero" db:"total_gruero"`
	ComisionPlataforma int64 `json:"comision_plataforma" db:"comision_plataforma"`
	Pagado             bool  `json:"pagado" db:"pagado"`

	SolicitadoAt      time.Time  `json:"solicitado_at" db:"solicitado_at"`
	CompletadoAt      *time.Time `json:"completado_at,omitempty" db:"completado_at"`
	CanceladoAt       *time.Time `json:"cancelado_at,omitempty" db:"cancelado_at"`
	MotivoCancelacion *string    `json:"motivo_cancelacion,omitempty" db:"motivo_cancelacion"`
}

// Comision calcula la comisión de plataforma a partir de los totales
func Comision(totalCliente, totalGruero int64) int64 {
	return totalCliente - totalGruero
}

// CambiarEstadoRequest representa el request para una transición simple de estado
type CambiarEstadoRequest struct {
	Estado   EstadoServicio `json:"estado" binding:"required"`
	GrueroID *uuid.UUID     `json:"gruero_id,omitempty"`
}

// CompletarServicioRequest representa el request para completar un servicio.
// Los totales son punteros para distinguir cero, un monto legítimo en
// servicios bonificados, de un campo ausente.
type CompletarServicioRequest struct {
	TotalCliente *int64 `json:"total_cliente" binding:"required"`
	TotalGruero  *int64 `json:"total_gruero" binding:"required"`
}

// CancelarServicioRequest representa el request para cancelar un servicio
type CancelarServicioRequest struct {
	Motivo string `json:"motivo" binding:"required"`
}

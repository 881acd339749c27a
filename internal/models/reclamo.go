package models

import (
	"time"

	"github.com/google/uuid"
)

// EstadoReclamo representa el estado de un reclamo
type EstadoReclamo string

const (
	ReclamoPendiente  EstadoReclamo = "PENDIENTE"
	ReclamoEnRevision EstadoReclamo = "EN_REVISION"
	ReclamoResuelto   EstadoReclamo = "RESUELTO"
	ReclamoRechazado  EstadoReclamo = "RECHAZADO"
)

// transicionesReclamo es la tabla exhaustiva de transiciones permitidas.
// RESUELTO y RECHAZADO son terminales; un reclamo puede rechazarse
// directamente desde PENDIENTE sin pasar por revisión.
var transicionesReclamo = map[EstadoReclamo][]EstadoReclamo{
	ReclamoPendiente:  {ReclamoEnRevision, ReclamoResuelto, ReclamoRechazado},
	ReclamoEnRevision: {ReclamoResuelto, ReclamoRechazado},
	ReclamoResuelto:   {},
	ReclamoRechazado:  {},
}

// EsTerminal retorna true si el estado no admite más transiciones
func (e EstadoReclamo) EsTerminal() bool {
	return e == ReclamoResuelto || e == ReclamoRechazado
}

// PuedeTransicionarReclamo verifica la tabla de transiciones del reclamo
func PuedeTransicionarReclamo(desde, hacia EstadoReclamo) bool {
	for _, s := range transicionesReclamo[desde] {
		if s == hacia {
			return true
		}
	}
	return false
}

// TipoReclamo representa el tipo de problema reportado
type TipoReclamo string

const (
	ReclamoProblemaServicio TipoReclamo = "PROBLEMA_SERVICIO"
	ReclamoProblemaPago     TipoReclamo = "PROBLEMA_PAGO"
	ReclamoMaltrato         TipoReclamo = "MALTRATO"
	ReclamoOtro             TipoReclamo = "OTRO"
)

// PrioridadReclamo representa la prioridad asignada al crear el reclamo; no cambia
type PrioridadReclamo string

const (
	PrioridadBaja  PrioridadReclamo = "BAJA"
	PrioridadMedia PrioridadReclamo = "MEDIA"
	PrioridadAlta  PrioridadReclamo = "ALTA"
)

// RolReportante representa quién levantó el reclamo
type RolReportante string

const (
	ReportanteCliente RolReportante = "CLIENTE"
	ReportanteGruero  RolReportante = "GRUERO"
)

// Reclamo representa un ticket de disputa asociado a un servicio
type Reclamo struct {
	ID         uuid.UUID        `json:"id" db:"id"`
	ServicioID uuid.UUID        `json:"servicio_id" db:"servicio_id"`
	Tipo       TipoReclamo      `json:"tipo" db:"tipo"`
	Reportante RolReportante    `json:"reportante" db:"reportante"`
	Prioridad  PrioridadReclamo `json:"prioridad" db:"prioridad"`
	Estado     EstadoReclamo    `json:"estado" db:"estado"`

	Descripcion   string     `json:"descripcion" db:"descripcion"`
	Resolucion    *string    `json:"resolucion,omitempty" db:"resolucion"`
	ResueltoAt    *time.Time `json:"resuelto_at,omitempty" db:"resuelto_at"`
	ResueltoBy    *string    `json:"resuelto_by,omitempty" db:"resuelto_by"`
	NotasInternas *string    `json:"notas_internas,omitempty" db:"notas_internas"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// ResolverReclamoRequest representa el request para resolver un reclamo
type ResolverReclamoRequest struct {
	Resolucion string `json:"resolucion" binding:"required"`
}

// NotasReclamoRequest representa el request para actualizar notas internas
type NotasReclamoRequest struct {
	Notas string `json:"notas" binding:"required"`
}

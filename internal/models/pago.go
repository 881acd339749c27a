package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MetodoPago representa el método con el que se liquidó a un gruero
type MetodoPago string

const (
	MetodoPagoTransferencia MetodoPago = "TRANSFERENCIA"
	MetodoPagoEfectivo      MetodoPago = "EFECTIVO"
)

// EsValido retorna true si el método de pago es uno de los conocidos
func (m MetodoPago) EsValido() bool {
	return m == MetodoPagoTransferencia || m == MetodoPagoEfectivo
}

// PeriodoLiquidacion representa una ventana de liquidación semi-abierta [Inicio, Fin)
type PeriodoLiquidacion struct {
	Inicio time.Time `json:"inicio"`
	Fin    time.Time `json:"fin"`
}

// SemanaActual retorna el período por defecto de la consola: la semana en
// curso, de lunes 00:00 a lunes siguiente (exclusivo).
func SemanaActual(ahora time.Time) PeriodoLiquidacion {
	dia := int(ahora.Weekday())
	if dia == 0 {
		dia = 7 // domingo cuenta como fin de semana
	}
	inicio := time.Date(ahora.Year(), ahora.Month(), ahora.Day(), 0, 0, 0, 0, ahora.Location()).
		AddDate(0, 0, -(dia - 1))
	return PeriodoLiquidacion{Inicio: inicio, Fin: inicio.AddDate(0, 0, 7)}
}

// Contiene verifica pertenencia al intervalo semi-abierto
func (p PeriodoLiquidacion) Contiene(t time.Time) bool {
	return !t.Before(p.Inicio) && t.Before(p.Fin)
}

// Etiqueta retorna una representación estable del período, usada como clave de caché
func (p PeriodoLiquidacion) Etiqueta() string {
	return fmt.Sprintf("%s_%s", p.Inicio.UTC().Format("20060102"), p.Fin.UTC().Format("20060102"))
}

// Pago representa una liquidación registrada a un gruero. Es un registro
// inmutable: nunca se actualiza ni se elimina una vez escrito.
type Pago struct {
	ID           uuid.UUID   `json:"id" db:"id"`
	GrueroID     uuid.UUID   `json:"gruero_id" db:"gruero_id"`
	InicioSemana time.Time   `json:"inicio_semana" db:"inicio_semana"`
	FinSemana    time.Time   `json:"fin_semana" db:"fin_semana"`
	ServicioIDs  []uuid.UUID `json:"servicio_ids"`
	MontoTotal   int64       `json:"monto_total" db:"monto_total"`
	MetodoPago   MetodoPago  `json:"metodo_pago" db:"metodo_pago"`
	Comprobante  string      `json:"numero_comprobante" db:"numero_comprobante"`
	NotasAdmin   *string     `json:"notas_admin,omitempty" db:"notas_admin"`
	RegistradoBy string      `json:"registrado_by" db:"registrado_by"`
	CreatedAt    time.Time   `json:"created_at" db:"created_at"`
}

// ServicioPendiente representa un servicio incluido en la propuesta de liquidación
type ServicioPendiente struct {
	ID           uuid.UUID `json:"id"`
	CompletadoAt time.Time `json:"completado_at"`
	TotalGruero  int64     `json:"total_gruero"`
	DistanciaKm  float64   `json:"distancia_km"`
}

// GrupoLiquidacion representa los servicios pendientes de pago de un gruero
type GrupoLiquidacion struct {
	GrueroID       uuid.UUID           `json:"gruero_id"`
	GrueroNombre   string              `json:"gruero_nombre"`
	MontoTotal     int64               `json:"monto_total"`
	TotalServicios int                 `json:"total_servicios"`
	Servicios      []ServicioPendiente `json:"servicios"`
	Bancarios      DatosBancarios      `json:"datos_bancarios"`
}

// LiquidacionPendienteResponse representa la propuesta de liquidación de un período
type LiquidacionPendienteResponse struct {
	Periodo           string             `json:"periodo"`
	InicioSemana      time.Time          `json:"inicio_semana"`
	FinSemana         time.Time          `json:"fin_semana"`
	Grueros           []GrupoLiquidacion `json:"grueros"`
	TotalGrueros      int                `json:"total_grueros"`
	MontoTotalGeneral int64              `json:"monto_total_general"`
}

// RegistrarPagoRequest representa el request para marcar pagada una liquidación
type RegistrarPagoRequest struct {
	GrueroID          uuid.UUID  `json:"gruero_id" binding:"required"`
	MetodoPago        MetodoPago `json:"metodo_pago" binding:"required"`
	NumeroComprobante string     `json:"numero_comprobante" binding:"required"`
	NotasAdmin        *string    `json:"notas_admin,omitempty"`
	Inicio            *time.Time `json:"inicio,omitempty"`
	Fin               *time.Time `json:"fin,omitempty"`
}

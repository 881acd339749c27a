package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/alexitico1989/gruapp-sub002/internal/models"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ServicioRepository maneja las operaciones de base de datos para Servicio
type ServicioRepository struct {
	db     *DB
	logger *logrus.Logger
}

// NewServicioRepository crea una nueva instancia del repositorio
func NewServicioRepository(db *DB, logger *logrus.Logger) *ServicioRepository {
	return &ServicioRepository{
		db:     db,
		logger: logger,
	}
}

const servicioColumns = `
	id, cliente_id, gruero_id, estado, tipo_vehiculo,
	direccion_origen, direccion_destino, distancia_km,
	total_cliente, total_gruero, comision_plataforma, pagado,
	solicitado_at, completado_at, cancelado_at, motivo_cancelacion
`

func scanServicio(row interface {
	Scan(dest ...interface{}) error
}) (*models.Servicio, error) {
	var s models.Servicio
	err := row.Scan(
		&s.ID, &s.ClienteID, &s.GrueroID, &s.Estado, &s.TipoVehiculo,
		&s.DireccionOrigen, &s.DireccionDestino, &s.DistanciaKm,
		&s.TotalCliente, &s.TotalGruero, &s.ComisionPlataforma, &s.Pagado,
		&s.SolicitadoAt, &s.CompletadoAt, &s.CanceladoAt, &s.MotivoCancelacion,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// GetByID obtiene un servicio por ID
func (r *ServicioRepository) GetByID(id uuid.UUID) (*models.Servicio, error) {
	query := `SELECT ` + servicioColumns + ` FROM servicios WHERE id = $1`

	s, err := scanServicio(r.db.QueryRowWithTimeout(query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.NewNotFoundEntityError("servicio", id.String())
		}
		return nil, fmt.Errorf("error querying servicio: %w", err)
	}
	return s, nil
}

// CambiarEstado aplica una transición no terminal con guarda del estado de
// origen (compare-and-set). Retorna StateTransitionError si otro admin ya
// movió el servicio.
func (r *ServicioRepository) CambiarEstado(id uuid.UUID, desde, hacia models.EstadoServicio, grueroID *uuid.UUID) error {
	query := `
		UPDATE servicios
		SET estado = $1, gruero_id = COALESCE($2, gruero_id)
		WHERE id = $3 AND estado = $4
	`

	result, err := r.db.ExecWithTimeout(query, hacia, grueroID, id, desde)
	if err != nil {
		return fmt.Errorf("error updating servicio estado: %w", err)
	}

	return r.verificarAfectado(result, id, string(desde), string(hacia))
}

// Completar marca el servicio COMPLETADO: fija los totales, calcula y
// almacena la comisión de plataforma, estampa completado_at e inicializa
// pagado en false. Solo procede desde EN_SITIO.
func (r *ServicioRepository) Completar(id uuid.UUID, totalCliente, totalGruero int64, completadoAt time.Time) error {
	query := `
		UPDATE servicios
		SET estado = $1, total_cliente = $2, total_gruero = $3,
		    comision_plataforma = $4, pagado = false, completado_at = $5
		WHERE id = $6 AND estado = $7
	`

	result, err := r.db.ExecWithTimeout(query,
		models.EstadoServicioCompletado, totalCliente, totalGruero,
		models.Comision(totalCliente, totalGruero), completadoAt,
		id, models.EstadoServicioEnSitio,
	)
	if err != nil {
		return fmt.Errorf("error completing servicio: %w", err)
	}

	return r.verificarAfectado(result, id, string(models.EstadoServicioEnSitio), "completar")
}

// Cancelar marca el servicio CANCELADO con su motivo; la guarda de estado de
// origen garantiza que nunca se cancele un servicio ya terminal
func (r *ServicioRepository) Cancelar(id uuid.UUID, desde models.EstadoServicio, motivo string, canceladoAt time.Time) error {
	query := `
		UPDATE servicios
		SET estado = $1, motivo_cancelacion = $2, cancelado_at = $3
		WHERE id = $4 AND estado = $5
	`

	result, err := r.db.ExecWithTimeout(query,
		models.EstadoServicioCancelado, motivo, canceladoAt, id, desde,
	)
	if err != nil {
		return fmt.Errorf("error cancelling servicio: %w", err)
	}

	return r.verificarAfectado(result, id, string(desde), "cancelar")
}

func (r *ServicioRepository) verificarAfectado(result sql.Result, id uuid.UUID, desde, operacion string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		// O el servicio no existe, o su estado ya no es el esperado
		actual, err := r.GetByID(id)
		if err != nil {
			return err
		}
		r.logger.WithFields(logrus.Fields{
			"servicio_id": id,
			"esperado":    desde,
			"actual":      actual.Estado,
		}).Warn("Transición de servicio rechazada por estado concurrente")
		return models.NewStateTransitionError("servicio", string(actual.Estado), operacion)
	}

	return nil
}

// PendientesDeLiquidacion selecciona los servicios COMPLETADO y no pagados de
// un período [inicio, fin). Es una lectura pura y repetible; el agrupamiento
// por gruero lo hace el servicio de liquidación.
func (r *ServicioRepository) PendientesDeLiquidacion(periodo models.PeriodoLiquidacion) ([]models.Servicio, error) {
	query := `
		SELECT ` + servicioColumns + `
		FROM servicios
		WHERE estado = $1 AND pagado = false
		  AND completado_at >= $2 AND completado_at < $3
		ORDER BY completado_at
	`

	rows, err := r.db.QueryWithTimeout(query, models.EstadoServicioCompletado, periodo.Inicio, periodo.Fin)
	if err != nil {
		return nil, fmt.Errorf("error querying servicios pendientes: %w", err)
	}
	defer rows.Close()

	var servicios []models.Servicio
	for rows.Next() {
		s, err := scanServicio(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning servicio: %w", err)
		}
		servicios = append(servicios, *s)
	}

	return servicios, rows.Err()
}

// List obtiene servicios para las tablas de la consola, más recientes primero
func (r *ServicioRepository) List(limit, offset int) ([]models.Servicio, error) {
	query := `
		SELECT ` + servicioColumns + `
		FROM servicios
		ORDER BY solicitado_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.QueryWithTimeout(query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("error listing servicios: %w", err)
	}
	defer rows.Close()

	var servicios []models.Servicio
	for rows.Next() {
		s, err := scanServicio(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning servicio: %w", err)
		}
		servicios = append(servicios, *s)
	}

	return servicios, rows.Err()
}

package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/alexitico1989/gruapp-sub002/internal/models"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ReclamoRepository maneja las operaciones de base de datos para Reclamo
type ReclamoRepository struct {
	db     *DB
	logger *logrus.Logger
}

// NewReclamoRepository crea una nueva instancia del repositorio
func NewReclamoRepository(db *DB, logger *logrus.Logger) *ReclamoRepository {
	return &ReclamoRepository{
		db:     db,
		logger: logger,
	}
}

const reclamoColumns = `
	id, servicio_id, tipo, reportante, prioridad, estado,
	descripcion, resolucion, resuelto_at, resuelto_by, notas_internas,
	created_at, updated_at
`

func scanReclamo(row interface {
	Scan(dest ...interface{}) error
}) (*models.Reclamo, error) {
	var rec models.Reclamo
	err := row.Scan(
		&rec.ID, &rec.ServicioID, &rec.Tipo, &rec.Reportante, &rec.Prioridad, &rec.Estado,
		&rec.Descripcion, &rec.Resolucion, &rec.ResueltoAt, &rec.ResueltoBy, &rec.NotasInternas,
		&rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// GetByID obtiene un reclamo por ID
func (r *ReclamoRepository) GetByID(id uuid.UUID) (*models.Reclamo, error) {
	query := `SELECT ` + reclamoColumns + ` FROM reclamos WHERE id = $1`

	rec, err := scanReclamo(r.db.QueryRowWithTimeout(query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.NewNotFoundEntityError("reclamo", id.String())
		}
		return nil, fmt.Errorf("error querying reclamo: %w", err)
	}
	return rec, nil
}

// MarcarEnRevision pasa el reclamo a revisión; solo procede desde PENDIENTE
func (r *ReclamoRepository) MarcarEnRevision(id uuid.UUID) error {
	query := `
		UPDATE reclamos
		SET estado = $1, updated_at = $2
		WHERE id = $3 AND estado = $4
	`

	result, err := r.db.ExecWithTimeout(query,
		models.ReclamoEnRevision, time.Now(), id, models.ReclamoPendiente,
	)
	if err != nil {
		return fmt.Errorf("error marking reclamo en revision: %w", err)
	}

	return r.verificarAfectado(result, id, "marcar en revisión")
}

// Cerrar lleva el reclamo a un estado terminal (RESUELTO o RECHAZADO)
// estampando resolución, momento y admin actuante. La guarda sobre los
// estados de origen hace la escritura un compare-and-set de una sola fila.
func (r *ReclamoRepository) Cerrar(id uuid.UUID, estado models.EstadoReclamo, resolucion, adminID string, resueltoAt time.Time) error {
	query := `
		UPDATE reclamos
		SET estado = $1, resolucion = $2, resuelto_at = $3, resuelto_by = $4, updated_at = $3
		WHERE id = $5 AND estado IN ($6, $7)
	`

	result, err := r.db.ExecWithTimeout(query,
		estado, resolucion, resueltoAt, adminID,
		id, models.ReclamoPendiente, models.ReclamoEnRevision,
	)
	if err != nil {
		return fmt.Errorf("error closing reclamo: %w", err)
	}

	return r.verificarAfectado(result, id, "cerrar")
}

// ActualizarNotas actualiza las notas internas; las notas siguen siendo
// mutables aun con el reclamo en estado terminal
func (r *ReclamoRepository) ActualizarNotas(id uuid.UUID, notas string) error {
	query := `
		UPDATE reclamos
		SET notas_internas = $1, updated_at = $2
		WHERE id = $3
	`

	result, err := r.db.ExecWithTimeout(query, notas, time.Now(), id)
	if err != nil {
		return fmt.Errorf("error updating reclamo notas: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return models.NewNotFoundEntityError("reclamo", id.String())
	}

	return nil
}

func (r *ReclamoRepository) verificarAfectado(result sql.Result, id uuid.UUID, operacion string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		actual, err := r.GetByID(id)
		if err != nil {
			return err
		}
		return models.NewStateTransitionError("reclamo", string(actual.Estado), operacion)
	}

	return nil
}

// List obtiene reclamos para la tabla de la consola, más recientes primero
func (r *ReclamoRepository) List(limit, offset int) ([]models.Reclamo, error) {
	query := `
		SELECT ` + reclamoColumns + `
		FROM reclamos
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.QueryWithTimeout(query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("error listing reclamos: %w", err)
	}
	defer rows.Close()

	var reclamos []models.Reclamo
	for rows.Next() {
		rec, err := scanReclamo(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning reclamo: %w", err)
		}
		reclamos = append(reclamos, *rec)
	}

	return reclamos, rows.Err()
}

package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/alexitico1989/gruapp-sub002/internal/models"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

// GrueroRepository maneja las operaciones de base de datos para Gruero
type GrueroRepository struct {
	db     *DB
	logger *logrus.Logger
}

// NewGrueroRepository crea una nueva instancia del repositorio
func NewGrueroRepository(db *DB, logger *logrus.Logger) *GrueroRepository {
	return &GrueroRepository{
		db:     db,
		logger: logger,
	}
}

const grueroColumns = `
	id, nombre, email, telefono, verificacion, motivo_rechazo,
	cuenta_suspendida, motivo_suspension, tipos_vehiculo,
	banco, tipo_cuenta, numero_cuenta, titular_nombre, titular_cedula,
	created_at, updated_at
`

func scanGruero(row interface {
	Scan(dest ...interface{}) error
}) (*models.Gruero, error) {
	var g models.Gruero
	var tiposRaw sql.NullString
	err := row.Scan(
		&g.ID, &g.Nombre, &g.Email, &g.Telefono, &g.Verificacion, &g.MotivoRechazo,
		&g.CuentaSuspendida, &g.MotivoSuspension, &tiposRaw,
		&g.Bancarios.Banco, &g.Bancarios.TipoCuenta, &g.Bancarios.NumeroCuenta,
		&g.Bancarios.TitularNombre, &g.Bancarios.TitularCedula,
		&g.CreatedAt, &g.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	// El campo viene como JSON libre desde el registro móvil; ante entrada
	// malformada se degrada al conjunto vacío
	g.TiposVehiculo = models.ParseTiposVehiculo(tiposRaw.String)
	return &g, nil
}

// GetByID obtiene un gruero por ID
func (r *GrueroRepository) GetByID(id uuid.UUID) (*models.Gruero, error) {
	query := `SELECT ` + grueroColumns + ` FROM grueros WHERE id = $1`

	g, err := scanGruero(r.db.QueryRowWithTimeout(query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.NewNotFoundEntityError("gruero", id.String())
		}
		return nil, fmt.Errorf("error querying gruero: %w", err)
	}
	return g, nil
}

// GetByIDs obtiene varios grueros indexados por ID, para adjuntar la foto
// bancaria a los grupos de liquidación
func (r *GrueroRepository) GetByIDs(ids []uuid.UUID) (map[uuid.UUID]*models.Gruero, error) {
	grueros := make(map[uuid.UUID]*models.Gruero, len(ids))
	if len(ids) == 0 {
		return grueros, nil
	}

	query := `SELECT ` + grueroColumns + ` FROM grueros WHERE id = ANY($1)`

	rows, err := r.db.QueryWithTimeout(query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("error querying grueros: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		g, err := scanGruero(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning gruero: %w", err)
		}
		grueros[g.ID] = g
	}

	return grueros, rows.Err()
}

// Aprobar aprueba la verificación de un gruero; solo procede desde PENDIENTE
func (r *GrueroRepository) Aprobar(id uuid.UUID) error {
	query := `
		UPDATE grueros
		SET verificacion = $1, updated_at = $2
		WHERE id = $3 AND verificacion = $4
	`

	result, err := r.db.ExecWithTimeout(query,
		models.VerificacionAprobado, time.Now(), id, models.VerificacionPendiente,
	)
	if err != nil {
		return fmt.Errorf("error approving gruero: %w", err)
	}

	return r.verificarAfectado(result, id, "aprobar")
}

// Rechazar rechaza la verificación con motivo; solo procede desde PENDIENTE
func (r *GrueroRepository) Rechazar(id uuid.UUID, motivo string) error {
	query := `
		UPDATE grueros
		SET verificacion = $1, motivo_rechazo = $2, updated_at = $3
		WHERE id = $4 AND verificacion = $5
	`

	result, err := r.db.ExecWithTimeout(query,
		models.VerificacionRechazado, motivo, time.Now(), id, models.VerificacionPendiente,
	)
	if err != nil {
		return fmt.Errorf("error rejecting gruero: %w", err)
	}

	return r.verificarAfectado(result, id, "rechazar")
}

// Suspender suspende una cuenta aprobada y no suspendida
func (r *GrueroRepository) Suspender(id uuid.UUID, motivo string) error {
	query := `
		UPDATE grueros
		SET cuenta_suspendida = true, motivo_suspension = $1, updated_at = $2
		WHERE id = $3 AND verificacion = $4 AND cuenta_suspendida = false
	`

	result, err := r.db.ExecWithTimeout(query, motivo, time.Now(), id, models.VerificacionAprobado)
	if err != nil {
		return fmt.Errorf("error suspending gruero: %w", err)
	}

	return r.verificarAfectado(result, id, "suspender")
}

// Reactivar levanta la suspensión y limpia el motivo
func (r *GrueroRepository) Reactivar(id uuid.UUID) error {
	query := `
		UPDATE grueros
		SET cuenta_suspendida = false, motivo_suspension = NULL, updated_at = $1
		WHERE id = $2 AND cuenta_suspendida = true
	`

	result, err := r.db.ExecWithTimeout(query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("error reactivating gruero: %w", err)
	}

	return r.verificarAfectado(result, id, "reactivar")
}

func (r *GrueroRepository) verificarAfectado(result sql.Result, id uuid.UUID, operacion string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		actual, err := r.GetByID(id)
		if err != nil {
			return err
		}
		estado := string(actual.Verificacion)
		if actual.CuentaSuspendida {
			estado += "_SUSPENDIDA"
		}
		return models.NewStateTransitionError("gruero", estado, operacion)
	}

	return nil
}

// Delete elimina de forma irreversible la cuenta con sus servicios, reclamos
// y calificaciones en una sola transacción. La guarda de servicios activos
// corre dentro de la misma transacción, bloqueando las filas contadas: un
// servicio aceptado en paralelo hace fallar la eliminación con el conteo
// exacto. El ledger de pagos no se toca; un pago registrado es inmutable y
// conserva los IDs de los servicios liquidados.
func (r *GrueroRepository) Delete(id uuid.UUID) error {
	return r.db.WithTransaction(func(tx *sql.Tx) error {
		var activos int
		err := tx.QueryRow(`
			SELECT COUNT(*) FROM (
				SELECT 1 FROM servicios
				WHERE gruero_id = $1 AND estado NOT IN ($2, $3)
				FOR UPDATE
			) activos
		`, id, models.EstadoServicioCompletado, models.EstadoServicioCancelado).Scan(&activos)
		if err != nil {
			return fmt.Errorf("error counting servicios activos: %w", err)
		}
		if activos > 0 {
			return &models.ConflictError{
				Motivo:           "no se puede eliminar una cuenta con servicios activos",
				ServiciosActivos: activos,
			}
		}

		dependientes := []string{
			`DELETE FROM calificaciones WHERE servicio_id IN (SELECT id FROM servicios WHERE gruero_id = $1)`,
			`DELETE FROM reclamos WHERE servicio_id IN (SELECT id FROM servicios WHERE gruero_id = $1)`,
			`DELETE FROM servicios WHERE gruero_id = $1`,
		}
		for _, q := range dependientes {
			if _, err := tx.Exec(q, id); err != nil {
				return fmt.Errorf("error deleting gruero dependents: %w", err)
			}
		}

		result, err := tx.Exec(`DELETE FROM grueros WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("error deleting gruero: %w", err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("error getting rows affected: %w", err)
		}
		if rowsAffected == 0 {
			return models.NewNotFoundEntityError("gruero", id.String())
		}

		return nil
	})
}

// List obtiene grueros para la tabla de la consola
func (r *GrueroRepository) List(limit, offset int) ([]models.Gruero, error) {
	query := `
		SELECT ` + grueroColumns + `
		FROM grueros
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.QueryWithTimeout(query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("error listing grueros: %w", err)
	}
	defer rows.Close()

	var grueros []models.Gruero
	for rows.Next() {
		g, err := scanGruero(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning gruero: %w", err)
		}
		grueros = append(grueros, *g)
	}

	return grueros, rows.Err()
}

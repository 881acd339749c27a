package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/alexitico1989/gruapp-sub002/internal/models"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ClienteRepository maneja las operaciones de base de datos para Cliente
type ClienteRepository struct {
	db     *DB
	logger *logrus.Logger
}

// NewClienteRepository crea una nueva instancia del repositorio
func NewClienteRepository(db *DB, logger *logrus.Logger) *ClienteRepository {
	return &ClienteRepository{
		db:     db,
		logger: logger,
	}
}

const clienteColumns = `
	id, nombre, email, telefono, cuenta_suspendida, motivo_suspension,
	created_at, updated_at
`

// GetByID obtiene un cliente por ID
func (r *ClienteRepository) GetByID(id uuid.UUID) (*models.Cliente, error) {
	query := `SELECT ` + clienteColumns + ` FROM clientes WHERE id = $1`

	var c models.Cliente
	err := r.db.QueryRowWithTimeout(query, id).Scan(
		&c.ID, &c.Nombre, &c.Email, &c.Telefono,
		&c.CuentaSuspendida, &c.MotivoSuspension,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.NewNotFoundEntityError("cliente", id.String())
		}
		return nil, fmt.Errorf("error querying cliente: %w", err)
	}
	return &c, nil
}

// Suspender suspende una cuenta de cliente no suspendida
func (r *ClienteRepository) Suspender(id uuid.UUID, motivo string) error {
	query := `
		UPDATE clientes
		SET cuenta_suspendida = true, motivo_suspension = $1, updated_at = $2
		WHERE id = $3 AND cuenta_suspendida = false
	`

	result, err := r.db.ExecWithTimeout(query, motivo, time.Now(), id)
	if err != nil {
		return fmt.Errorf("error suspending cliente: %w", err)
	}

	return r.verificarAfectado(result, id, "suspender")
}

// Reactivar levanta la suspensión y limpia el motivo
func (r *ClienteRepository) Reactivar(id uuid.UUID) error {
	query := `
		UPDATE clientes
		SET cuenta_suspendida = false, motivo_suspension = NULL, updated_at = $1
		WHERE id = $2 AND cuenta_suspendida = true
	`

	result, err := r.db.ExecWithTimeout(query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("error reactivating cliente: %w", err)
	}

	return r.verificarAfectado(result, id, "reactivar")
}

func (r *ClienteRepository) verificarAfectado(result sql.Result, id uuid.UUID, operacion string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		actual, err := r.GetByID(id)
		if err != nil {
			return err
		}
		estado := "ACTIVA"
		if actual.CuentaSuspendida {
			estado = "SUSPENDIDA"
		}
		return models.NewStateTransitionError("cliente", estado, operacion)
	}

	return nil
}

// Delete elimina de forma irreversible la cuenta del cliente y todos sus
// registros dependientes en una sola transacción. La guarda de servicios
// activos corre dentro de la misma transacción, igual que en la eliminación
// de grueros.
func (r *ClienteRepository) Delete(id uuid.UUID) error {
	return r.db.WithTransaction(func(tx *sql.Tx) error {
		var activos int
		err := tx.QueryRow(`
			SELECT COUNT(*) FROM (
				SELECT 1 FROM servicios
				WHERE cliente_id = $1 AND estado NOT IN ($2, $3)
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
			`DELETE FROM calificaciones WHERE servicio_id IN (SELECT id FROM servicios WHERE cliente_id = $1)`,
			`DELETE FROM reclamos WHERE servicio_id IN (SELECT id FROM servicios WHERE cliente_id = $1)`,
			`DELETE FROM servicios WHERE cliente_id = $1`,
		}
		for _, q := range dependientes {
			if _, err := tx.Exec(q, id); err != nil {
				return fmt.Errorf("error deleting cliente dependents: %w", err)
			}
		}

		result, err := tx.Exec(`DELETE FROM clientes WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("error deleting cliente: %w", err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("error getting rows affected: %w", err)
		}
		if rowsAffected == 0 {
			return models.NewNotFoundEntityError("cliente", id.String())
		}

		return nil
	})
}

// List obtiene clientes para la tabla de la consola
func (r *ClienteRepository) List(limit, offset int) ([]models.Cliente, error) {
	query := `
		SELECT ` + clienteColumns + `
		FROM clientes
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.QueryWithTimeout(query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("error listing clientes: %w", err)
	}
	defer rows.Close()

	var clientes []models.Cliente
	for rows.Next() {
		var c models.Cliente
		err := rows.Scan(
			&c.ID, &c.Nombre, &c.Email, &c.Telefono,
			&c.CuentaSuspendida, &c.MotivoSuspension,
			&c.CreatedAt, &c.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning cliente: %w", err)
		}
		clientes = append(clientes, c)
	}

	return clientes, rows.Err()
}

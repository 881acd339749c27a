package database

import (
	"database/sql"
	"fmt"

	"github.com/alexitico1989/gruapp-sub002/internal/models"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

// PagoRepository maneja las operaciones de base de datos para Pago.
// Los pagos son un ledger append-only: nunca se actualizan ni se eliminan.
type PagoRepository struct {
	db     *DB
	logger *logrus.Logger
}

// NewPagoRepository crea una nueva instancia del repositorio
func NewPagoRepository(db *DB, logger *logrus.Logger) *PagoRepository {
	return &PagoRepository{
		db:     db,
		logger: logger,
	}
}

// RegistrarPago ejecuta la sección crítica del procesador de pagos en una
// sola transacción: re-selecciona los servicios pendientes del gruero en el
// período con bloqueo de fila, marca cada uno como pagado e inserta el pago
// con exactamente esos servicios. Si la re-selección queda vacía (otro admin
// ya liquidó) retorna ConflictError sin ningún efecto.
func (r *PagoRepository) RegistrarPago(pago *models.Pago) (*models.Pago, error) {
	err := r.db.WithTransaction(func(tx *sql.Tx) error {
		// Re-seleccionar al momento del commit, no sobre una propuesta vieja.
		// FOR UPDATE serializa dos admins compitiendo por el mismo gruero.
		rows, err := tx.Query(`
			SELECT id, total_gruero
			FROM servicios
			WHERE gruero_id = $1 AND estado = $2 AND pagado = false
			  AND completado_at >= $3 AND completado_at < $4
			ORDER BY id
			FOR UPDATE
		`, pago.GrueroID, models.EstadoServicioCompletado, pago.InicioSemana, pago.FinSemana)
		if err != nil {
			return fmt.Errorf("error selecting servicios pendientes: %w", err)
		}

		var ids []uuid.UUID
		var montoTotal int64
		for rows.Next() {
			var id uuid.UUID
			var totalGruero int64
			if err := rows.Scan(&id, &totalGruero); err != nil {
				rows.Close()
				return fmt.Errorf("error scanning servicio pendiente: %w", err)
			}
			ids = append(ids, id)
			montoTotal += totalGruero
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return fmt.Errorf("error iterating servicios pendientes: %w", err)
		}

		if len(ids) == 0 {
			return models.NewConflictoError("el gruero no tiene servicios pendientes de pago en el período")
		}

		result, err := tx.Exec(`
			UPDATE servicios SET pagado = true WHERE id = ANY($1)
		`, pq.Array(ids))
		if err != nil {
			return fmt.Errorf("error marking servicios pagados: %w", err)
		}
		afectados, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("error getting rows affected: %w", err)
		}
		if int(afectados) != len(ids) {
			return fmt.Errorf("expected %d servicios updated, got %d", len(ids), afectados)
		}

		_, err = tx.Exec(`
			INSERT INTO pagos (
				id, gruero_id, inicio_semana, fin_semana, monto_total,
				metodo_pago, numero_comprobante, notas_admin, registrado_by, created_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`,
			pago.ID, pago.GrueroID, pago.InicioSemana, pago.FinSemana, montoTotal,
			pago.MetodoPago, pago.Comprobante, pago.NotasAdmin, pago.RegistradoBy, pago.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("error inserting pago: %w", err)
		}

		for _, servicioID := range ids {
			_, err = tx.Exec(`
				INSERT INTO pago_servicios (pago_id, servicio_id) VALUES ($1, $2)
			`, pago.ID, servicioID)
			if err != nil {
				return fmt.Errorf("error inserting pago servicio: %w", err)
			}
		}

		pago.ServicioIDs = ids
		pago.MontoTotal = montoTotal
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.logger.WithFields(logrus.Fields{
		"pago_id":     pago.ID,
		"gruero_id":   pago.GrueroID,
		"monto_total": pago.MontoTotal,
		"servicios":   len(pago.ServicioIDs),
	}).Info("Pago registrado")

	return pago, nil
}

const pagoColumns = `
	id, gruero_id, inicio_semana, fin_semana, monto_total,
	metodo_pago, numero_comprobante, notas_admin, registrado_by, created_at
`

func scanPago(row interface {
	Scan(dest ...interface{}) error
}) (*models.Pago, error) {
	var p models.Pago
	err := row.Scan(
		&p.ID, &p.GrueroID, &p.InicioSemana, &p.FinSemana, &p.MontoTotal,
		&p.MetodoPago, &p.Comprobante, &p.NotasAdmin, &p.RegistradoBy, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetByID obtiene un pago con sus servicios incluidos
func (r *PagoRepository) GetByID(id uuid.UUID) (*models.Pago, error) {
	query := `SELECT ` + pagoColumns + ` FROM pagos WHERE id = $1`

	p, err := scanPago(r.db.QueryRowWithTimeout(query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.NewNotFoundEntityError("pago", id.String())
		}
		return nil, fmt.Errorf("error querying pago: %w", err)
	}

	ids, err := r.getServicioIDs(id)
	if err != nil {
		return nil, err
	}
	p.ServicioIDs = ids

	return p, nil
}

func (r *PagoRepository) getServicioIDs(pagoID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.db.QueryWithTimeout(`
		SELECT servicio_id FROM pago_servicios WHERE pago_id = $1 ORDER BY servicio_id
	`, pagoID)
	if err != nil {
		return nil, fmt.Errorf("error querying pago servicios: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("error scanning pago servicio: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// List obtiene el historial de pagos, más recientes primero
func (r *PagoRepository) List(limit, offset int) ([]models.Pago, error) {
	query := `
		SELECT ` + pagoColumns + `
		FROM pagos
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.QueryWithTimeout(query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("error listing pagos: %w", err)
	}
	defer rows.Close()

	var pagos []models.Pago
	for rows.Next() {
		p, err := scanPago(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning pago: %w", err)
		}
		pagos = append(pagos, *p)
	}

	return pagos, rows.Err()
}

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/alexitico1989/gruapp-sub002/internal/config"
	_ "github.com/lib/pq"
)

// DB representa la conexión a la base de datos
type DB struct {
	*sql.DB
}

// Connect establece la conexión a PostgreSQL
func Connect(cfg *config.Config) (*DB, error) {
	dsn := cfg.GetDSN()

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	// Configurar pool de conexiones
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(10 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	// Verificar conexión
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("error pinging database: %w", err)
	}

	return &DB{db}, nil
}

// Close cierra la conexión a la base de datos
func (db *DB) Close() error {
	return db.DB.Close()
}

// HealthCheck verifica la salud de la base de datos
func (db *DB) HealthCheck() error {
	if err := db.Ping(); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var uno int
	if err := db.QueryRowContext(ctx, "SELECT 1").Scan(&uno); err != nil {
		return fmt.Errorf("database query test failed: %w", err)
	}

	return nil
}

// Rows envuelve sql.Rows y libera el contexto de la consulta al cerrarse.
// El timeout sigue vigente mientras el llamador itera.
type Rows struct {
	*sql.Rows
	cancel context.CancelFunc
}

// Close cierra las filas y libera el contexto de la consulta
func (r *Rows) Close() error {
	defer r.cancel()
	return r.Rows.Close()
}

// Row envuelve sql.Row y libera el contexto de la consulta al escanear
type Row struct {
	row    *sql.Row
	cancel context.CancelFunc
}

// Scan copia la fila en dest y libera el contexto de la consulta
func (r *Row) Scan(dest ...interface{}) error {
	defer r.cancel()
	return r.row.Scan(dest...)
}

// ExecWithTimeout ejecuta una query con timeout
func (db *DB) ExecWithTimeout(query string, args ...interface{}) (sql.Result, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return db.ExecContext(ctx, query, args...)
}

// QueryWithTimeout ejecuta una query de lectura con timeout. El contexto vive
// hasta que el llamador cierra las filas; cancelarlo antes interrumpiría el
// consumo de las filas a mitad de camino.
func (db *DB) QueryWithTimeout(query string, args ...interface{}) (*Rows, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		cancel()
		return nil, err
	}
	return &Rows{Rows: rows, cancel: cancel}, nil
}

// QueryRowWithTimeout ejecuta una query de una fila con timeout; el contexto
// se libera en el Scan
func (db *DB) QueryRowWithTimeout(query string, args ...interface{}) *Row {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	return &Row{row: db.QueryRowContext(ctx, query, args...), cancel: cancel}
}

// WithTransaction ejecuta una función dentro de una transacción.
// Todas las escrituras del core son todo-o-nada: ante cualquier error la
// transacción se revierte y el store queda exactamente como estaba.
func (db *DB) WithTransaction(fn func(*sql.Tx) error) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("error beginning transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("error rolling back transaction: %w, original error: %w", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing transaction: %w", err)
	}

	return nil
}

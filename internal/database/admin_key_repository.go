package database

import (
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/alexitico1989/gruapp-sub002/internal/models"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// AdminKeyRepository maneja las operaciones de base de datos para las
// credenciales de administrador de la consola
type AdminKeyRepository struct {
	db     *DB
	logger *logrus.Logger
}

// NewAdminKeyRepository crea una nueva instancia del repositorio
func NewAdminKeyRepository(db *DB, logger *logrus.Logger) *AdminKeyRepository {
	return &AdminKeyRepository{
		db:     db,
		logger: logger,
	}
}

// Create crea una nueva credencial; la clave en claro solo se retorna aquí
func (r *AdminKeyRepository) Create(nombre string) (*models.AdminKey, string, error) {
	apiKey, err := r.generateAPIKey()
	if err != nil {
		return nil, "", fmt.Errorf("error generating API key: %w", err)
	}

	adminKey := &models.AdminKey{
		ID:        uuid.New(),
		Nombre:    nombre,
		KeyHash:   r.HashAPIKey(apiKey),
		IsActive:  true,
		CreatedAt: time.Now(),
	}

	query := `
		INSERT INTO admin_keys (id, nombre, key_hash, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err = r.db.ExecWithTimeout(query,
		adminKey.ID, adminKey.Nombre, adminKey.KeyHash, adminKey.IsActive, adminKey.CreatedAt,
	)
	if err != nil {
		return nil, "", fmt.Errorf("error creating admin key: %w", err)
	}

	return adminKey, apiKey, nil
}

// GetByHash obtiene una credencial activa por su hash
func (r *AdminKeyRepository) GetByHash(hash string) (*models.AdminKey, error) {
	query := `
		SELECT id, nombre, key_hash, is_active, created_at, last_used_at
		FROM admin_keys
		WHERE key_hash = $1 AND is_active = true
	`

	var adminKey models.AdminKey
	err := r.db.QueryRowWithTimeout(query, hash).Scan(
		&adminKey.ID, &adminKey.Nombre, &adminKey.KeyHash,
		&adminKey.IsActive, &adminKey.CreatedAt, &adminKey.LastUsedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("admin key not found or inactive")
		}
		return nil, fmt.Errorf("error querying admin key: %w", err)
	}

	return &adminKey, nil
}

// UpdateLastUsed actualiza la última vez que se usó la credencial
func (r *AdminKeyRepository) UpdateLastUsed(id uuid.UUID) error {
	query := `
		UPDATE admin_keys
		SET last_used_at = $1
		WHERE id = $2
	`

	_, err := r.db.ExecWithTimeout(query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("error updating admin key last used: %w", err)
	}

	return nil
}

// Deactivate desactiva una credencial
func (r *AdminKeyRepository) Deactivate(id uuid.UUID) error {
	query := `
		UPDATE admin_keys
		SET is_active = false
		WHERE id = $1
	`

	result, err := r.db.ExecWithTimeout(query, id)
	if err != nil {
		return fmt.Errorf("error deactivating admin key: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return models.NewNotFoundEntityError("admin key", id.String())
	}

	return nil
}

// generateAPIKey genera una API key aleatoria de 64 caracteres hex
func (r *AdminKeyRepository) generateAPIKey() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// HashAPIKey genera el hash SHA-256 de la API key
func (r *AdminKeyRepository) HashAPIKey(apiKey string) string {
	hash := sha256.Sum256([]byte(apiKey))
	return fmt.Sprintf("%x", hash)
}

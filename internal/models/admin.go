package models

import (
	"time"

	"github.com/google/uuid"
)

// AdminKey representa una credencial de administrador de la consola.
// La identidad del admin viaja explícitamente en cada operación del core;
// el core no lee estado de sesión ambiente.
type AdminKey struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	Nombre     string     `json:"nombre" db:"nombre"`
	KeyHash    string     `json:"key_hash" db:"key_hash"`
	IsActive   bool       `json:"is_active" db:"is_active"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty" db:"last_used_at"`
}

// CreateAdminKeyRequest representa el request para emitir una credencial
type CreateAdminKeyRequest struct {
	Nombre string `json:"nombre" binding:"required"`
}

// CreateAdminKeyResponse retorna la clave en claro una única vez
type CreateAdminKeyResponse struct {
	ID     uuid.UUID `json:"id"`
	Nombre string    `json:"nombre"`
	APIKey string    `json:"api_key"`
}

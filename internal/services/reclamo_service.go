package services

import (
	"strings"
	"time"

	"github.com/alexitico1989/gruapp-sub002/internal/models"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ReclamoStore define la persistencia del flujo de resolución de reclamos
type ReclamoStore interface {
	GetByID(id uuid.UUID) (*models.Reclamo, error)
	MarcarEnRevision(id uuid.UUID) error
	Cerrar(id uuid.UUID, estado models.EstadoReclamo, resolucion, adminID string, resueltoAt time.Time) error
	ActualizarNotas(id uuid.UUID, notas string) error
	List(limit, offset int) ([]models.Reclamo, error)
}

// ReclamoService gobierna el flujo de resolución de reclamos
type ReclamoService struct {
	store  ReclamoStore
	logger *logrus.Logger
}

// NewReclamoService crea una nueva instancia del servicio
func NewReclamoService(store ReclamoStore, logger *logrus.Logger) *ReclamoService {
	return &ReclamoService{
		store:  store,
		logger: logger,
	}
}

// GetReclamo obtiene un reclamo por ID
func (s *ReclamoService) GetReclamo(id uuid.UUID) (*models.Reclamo, error) {
	return s.store.GetByID(id)
}

// ListReclamos obtiene reclamos para la tabla de la consola
func (s *ReclamoService) ListReclamos(limit, offset int) ([]models.Reclamo, error) {
	return s.store.List(limit, offset)
}

// MarcarEnRevision pasa el reclamo a EN_REVISION; solo procede desde PENDIENTE
func (s *ReclamoService) MarcarEnRevision(id uuid.UUID, adminID string) (*models.Reclamo, error) {
	if err := s.store.MarcarEnRevision(id); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"reclamo_id": id,
		"admin":      adminID,
	}).Info("Reclamo en revisión")

	return s.store.GetByID(id)
}

// Resolver cierra el reclamo como RESUELTO con texto de resolución
// obligatorio; permitido desde PENDIENTE o EN_REVISION
func (s *ReclamoService) Resolver(id uuid.UUID, resolucion, adminID string) (*models.Reclamo, error) {
	if strings.TrimSpace(resolucion) == "" {
		return nil, models.NewValidationFieldError("resolucion", "resolver requiere el texto de resolución")
	}

	if err := s.store.Cerrar(id, models.ReclamoResuelto, resolucion, adminID, time.Now()); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"reclamo_id": id,
		"admin":      adminID,
	}).Info("Reclamo resuelto")

	return s.store.GetByID(id)
}

// Rechazar cierra el reclamo como RECHAZADO; el motivo se guarda en el campo
// resolución para uniformidad de auditoría
func (s *ReclamoService) Rechazar(id uuid.UUID, motivo, adminID string) (*models.Reclamo, error) {
	if strings.TrimSpace(motivo) == "" {
		return nil, models.NewValidationFieldError("motivo", "el rechazo requiere un motivo")
	}

	if err := s.store.Cerrar(id, models.ReclamoRechazado, motivo, adminID, time.Now()); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"reclamo_id": id,
		"admin":      adminID,
	}).Info("Reclamo rechazado")

	return s.store.GetByID(id)
}

// ActualizarNotas actualiza las notas internas; es la única mutación
// permitida sobre un reclamo terminal
func (s *ReclamoService) ActualizarNotas(id uuid.UUID, notas, adminID string) (*models.Reclamo, error) {
	if strings.TrimSpace(notas) == "" {
		return nil, models.NewValidationFieldError("notas", "las notas no pueden quedar vacías")
	}

	if err := s.store.ActualizarNotas(id, notas); err != nil {
		return nil, err
	}

	return s.store.GetByID(id)
}

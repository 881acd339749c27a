package services

import (
	"strings"
	"time"

	"github.com/alexitico1989/gruapp-sub002/internal/models"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ServicioStore define las operaciones de persistencia que necesita la
// máquina de estados del servicio. Las escrituras llevan guarda del estado de
// origen: la precondición y la escritura van en una sola sentencia.
type ServicioStore interface {
	GetByID(id uuid.UUID) (*models.Servicio, error)
	CambiarEstado(id uuid.UUID, desde, hacia models.EstadoServicio, grueroID *uuid.UUID) error
	Completar(id uuid.UUID, totalCliente, totalGruero int64, completadoAt time.Time) error
	Cancelar(id uuid.UUID, desde models.EstadoServicio, motivo string, canceladoAt time.Time) error
	List(limit, offset int) ([]models.Servicio, error)
}

// ServicioService gobierna el ciclo de vida de los servicios de grúa
type ServicioService struct {
	store  ServicioStore
	logger *logrus.Logger
}

// NewServicioService crea una nueva instancia del servicio
func NewServicioService(store ServicioStore, logger *logrus.Logger) *ServicioService {
	return &ServicioService{
		store:  store,
		logger: logger,
	}
}

// GetServicio obtiene un servicio por ID
func (s *ServicioService) GetServicio(id uuid.UUID) (*models.Servicio, error) {
	return s.store.GetByID(id)
}

// ListServicios obtiene servicios para las tablas de la consola
func (s *ServicioService) ListServicios(limit, offset int) ([]models.Servicio, error) {
	return s.store.List(limit, offset)
}

// CambiarEstado aplica una transición intermedia del ciclo de vida
// (ACEPTADO, EN_CAMINO, EN_SITIO). Los estados terminales tienen operaciones
// dedicadas porque estampan campos adicionales.
func (s *ServicioService) CambiarEstado(id uuid.UUID, hacia models.EstadoServicio, grueroID *uuid.UUID) (*models.Servicio, error) {
	if !hacia.EsValido() {
		return nil, models.NewValidationFieldError("estado", "estado de servicio desconocido")
	}
	if hacia.EsTerminal() {
		return nil, models.NewValidationFieldError("estado", "COMPLETADO y CANCELADO usan sus operaciones dedicadas")
	}

	servicio, err := s.store.GetByID(id)
	if err != nil {
		return nil, err
	}

	if !models.PuedeTransicionar(servicio.Estado, hacia) {
		return nil, models.NewStateTransitionError("servicio", string(servicio.Estado), "pasar a "+string(hacia))
	}

	// Aceptar exige el gruero asignado; el resto de las transiciones no lo tocan
	if hacia == models.EstadoServicioAceptado && grueroID == nil {
		return nil, models.NewValidationFieldError("gruero_id", "aceptar un servicio requiere el gruero asignado")
	}

	if err := s.store.CambiarEstado(id, servicio.Estado, hacia, grueroID); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"servicio_id": id,
		"desde":       servicio.Estado,
		"hacia":       hacia,
	}).Info("Servicio transicionado")

	return s.store.GetByID(id)
}

// Completar lleva el servicio a COMPLETADO: exige ambos totales no negativos,
// calcula y almacena la comisión de plataforma, estampa completado_at e
// inicializa pagado en false
func (s *ServicioService) Completar(id uuid.UUID, totalCliente, totalGruero int64) (*models.Servicio, error) {
	if totalCliente < 0 {
		return nil, models.NewValidationFieldError("total_cliente", "debe ser no negativo")
	}
	if totalGruero < 0 {
		return nil, models.NewValidationFieldError("total_gruero", "debe ser no negativo")
	}

	servicio, err := s.store.GetByID(id)
	if err != nil {
		return nil, err
	}

	if !models.PuedeTransicionar(servicio.Estado, models.EstadoServicioCompletado) {
		return nil, models.NewStateTransitionError("servicio", string(servicio.Estado), "completar")
	}

	if err := s.store.Completar(id, totalCliente, totalGruero, time.Now()); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"servicio_id":   id,
		"total_cliente": totalCliente,
		"total_gruero":  totalGruero,
		"comision":      models.Comision(totalCliente, totalGruero),
	}).Info("Servicio completado")

	return s.store.GetByID(id)
}

// Cancelar lleva el servicio a CANCELADO con motivo obligatorio; no se
// registran montos (valen cero para cualquier agregación futura)
func (s *ServicioService) Cancelar(id uuid.UUID, motivo string) (*models.Servicio, error) {
	if strings.TrimSpace(motivo) == "" {
		return nil, models.NewValidationFieldError("motivo", "la cancelación requiere un motivo")
	}

	servicio, err := s.store.GetByID(id)
	if err != nil {
		return nil, err
	}

	if !models.PuedeTransicionar(servicio.Estado, models.EstadoServicioCancelado) {
		return nil, models.NewStateTransitionError("servicio", string(servicio.Estado), "cancelar")
	}

	if err := s.store.Cancelar(id, servicio.Estado, motivo, time.Now()); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"servicio_id": id,
		"motivo":      motivo,
	}).Info("Servicio cancelado")

	return s.store.GetByID(id)
}

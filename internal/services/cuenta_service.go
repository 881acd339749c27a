package services

import (
	"strings"

	"github.com/alexitico1989/gruapp-sub002/internal/models"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// GrueroStore define la persistencia del ciclo de vida de la cuenta de un
// gruero. Cada escritura es un compare-and-set de una sola fila: la guarda
// del estado de origen y la escritura van juntas.
type GrueroStore interface {
	GetByID(id uuid.UUID) (*models.Gruero, error)
	Aprobar(id uuid.UUID) error
	Rechazar(id uuid.UUID, motivo string) error
	Suspender(id uuid.UUID, motivo string) error
	Reactivar(id uuid.UUID) error
	Delete(id uuid.UUID) error
	List(limit, offset int) ([]models.Gruero, error)
}

// ClienteStore define la persistencia de cuentas de cliente (solo suspensión)
type ClienteStore interface {
	GetByID(id uuid.UUID) (*models.Cliente, error)
	Suspender(id uuid.UUID, motivo string) error
	Reactivar(id uuid.UUID) error
	Delete(id uuid.UUID) error
	List(limit, offset int) ([]models.Cliente, error)
}

// CuentaService gobierna la verificación, suspensión y eliminación de cuentas
type CuentaService struct {
	grueros  GrueroStore
	clientes ClienteStore
	logger   *logrus.Logger
}

// NewCuentaService crea una nueva instancia del servicio
func NewCuentaService(grueros GrueroStore, clientes ClienteStore, logger *logrus.Logger) *CuentaService {
	return &CuentaService{
		grueros:  grueros,
		clientes: clientes,
		logger:   logger,
	}
}

// GetGruero obtiene un gruero por ID
func (s *CuentaService) GetGruero(id uuid.UUID) (*models.Gruero, error) {
	return s.grueros.GetByID(id)
}

// ListGrueros obtiene grueros para la tabla de la consola
func (s *CuentaService) ListGrueros(limit, offset int) ([]models.Gruero, error) {
	return s.grueros.List(limit, offset)
}

// GetCliente obtiene un cliente por ID
func (s *CuentaService) GetCliente(id uuid.UUID) (*models.Cliente, error) {
	return s.clientes.GetByID(id)
}

// ListClientes obtiene clientes para la tabla de la consola
func (s *CuentaService) ListClientes(limit, offset int) ([]models.Cliente, error) {
	return s.clientes.List(limit, offset)
}

// AprobarGruero aprueba la verificación; solo procede desde PENDIENTE
func (s *CuentaService) AprobarGruero(id uuid.UUID, adminID string) (*models.Gruero, error) {
	if err := s.grueros.Aprobar(id); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"gruero_id": id,
		"admin":     adminID,
	}).Info("Gruero aprobado")

	return s.grueros.GetByID(id)
}

// RechazarGruero rechaza la verificación con motivo; solo procede desde PENDIENTE
func (s *CuentaService) RechazarGruero(id uuid.UUID, motivo, adminID string) (*models.Gruero, error) {
	if strings.TrimSpace(motivo) == "" {
		return nil, models.NewValidationFieldError("motivo", "el rechazo requiere un motivo")
	}

	if err := s.grueros.Rechazar(id, motivo); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"gruero_id": id,
		"motivo":    motivo,
		"admin":     adminID,
	}).Info("Gruero rechazado")

	return s.grueros.GetByID(id)
}

// SuspenderGruero suspende una cuenta aprobada; una cuenta nunca aprobada no
// puede suspenderse, solo rechazarse
func (s *CuentaService) SuspenderGruero(id uuid.UUID, motivo, adminID string) (*models.Gruero, error) {
	if strings.TrimSpace(motivo) == "" {
		return nil, models.NewValidationFieldError("motivo", "la suspensión requiere un motivo")
	}

	if err := s.grueros.Suspender(id, motivo); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"gruero_id": id,
		"motivo":    motivo,
		"admin":     adminID,
	}).Info("Gruero suspendido")

	return s.grueros.GetByID(id)
}

// ReactivarGruero levanta la suspensión de una cuenta suspendida
func (s *CuentaService) ReactivarGruero(id uuid.UUID, adminID string) (*models.Gruero, error) {
	if err := s.grueros.Reactivar(id); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"gruero_id": id,
		"admin":     adminID,
	}).Info("Gruero reactivado")

	return s.grueros.GetByID(id)
}

// SuspenderCliente suspende una cuenta de cliente
func (s *CuentaService) SuspenderCliente(id uuid.UUID, motivo, adminID string) (*models.Cliente, error) {
	if strings.TrimSpace(motivo) == "" {
		return nil, models.NewValidationFieldError("motivo", "la suspensión requiere un motivo")
	}

	if err := s.clientes.Suspender(id, motivo); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"cliente_id": id,
		"motivo":     motivo,
		"admin":      adminID,
	}).Info("Cliente suspendido")

	return s.clientes.GetByID(id)
}

// ReactivarCliente levanta la suspensión de un cliente
func (s *CuentaService) ReactivarCliente(id uuid.UUID, adminID string) (*models.Cliente, error) {
	if err := s.clientes.Reactivar(id); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"cliente_id": id,
		"admin":      adminID,
	}).Info("Cliente reactivado")

	return s.clientes.GetByID(id)
}

// EliminarGruero elimina la cuenta y su historial de servicios de forma
// irreversible; los pagos liquidados se conservan. El almacén falla con
// ConflictError, con el conteo exacto, si la cuenta tiene servicios en
// estado no terminal.
func (s *CuentaService) EliminarGruero(id uuid.UUID, adminID string) error {
	if _, err := s.grueros.GetByID(id); err != nil {
		return err
	}

	if err := s.grueros.Delete(id); err != nil {
		return err
	}

	s.logger.WithFields(logrus.Fields{
		"gruero_id": id,
		"admin":     adminID,
	}).Info("Cuenta de gruero eliminada")

	return nil
}

// EliminarCliente elimina la cuenta del cliente con la misma guarda de
// servicios activos
func (s *CuentaService) EliminarCliente(id uuid.UUID, adminID string) error {
	if _, err := s.clientes.GetByID(id); err != nil {
		return err
	}

	if err := s.clientes.Delete(id); err != nil {
		return err
	}

	s.logger.WithFields(logrus.Fields{
		"cliente_id": id,
		"admin":      adminID,
	}).Info("Cuenta de cliente eliminada")

	return nil
}

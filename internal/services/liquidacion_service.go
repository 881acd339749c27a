package services

import (
	"bytes"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/alexitico1989/gruapp-sub002/internal/models"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// PendientesStore define la selección plana de servicios liquidables
type PendientesStore interface {
	PendientesDeLiquidacion(periodo models.PeriodoLiquidacion) ([]models.Servicio, error)
}

// GrueroLector define las lecturas de grueros que necesita la liquidación
type GrueroLector interface {
	GetByID(id uuid.UUID) (*models.Gruero, error)
	GetByIDs(ids []uuid.UUID) (map[uuid.UUID]*models.Gruero, error)
}

// PagoStore define la persistencia del ledger de pagos. RegistrarPago debe
// ejecutar la re-selección, el volteo de pagado y la inserción del pago como
// una unidad atómica, y retornar ConflictError si la re-selección queda vacía.
type PagoStore interface {
	RegistrarPago(pago *models.Pago) (*models.Pago, error)
	GetByID(id uuid.UUID) (*models.Pago, error)
	List(limit, offset int) ([]models.Pago, error)
}

// Cache es la interfaz mínima de caché para la propuesta de liquidación.
// La satisface *database.Redis; puede ser nil y el servicio sigue operando.
type Cache interface {
	Get(key string) (string, error)
	SetWithTTL(key string, value interface{}, ttl time.Duration) error
	Delete(key string) error
}

// LiquidacionService implementa el agrupador de liquidación (lectura pura) y
// el procesador de pagos (sección crítica)
type LiquidacionService struct {
	servicios PendientesStore
	grueros   GrueroLector
	pagos     PagoStore
	cache     Cache
	cacheTTL  time.Duration
	logger    *logrus.Logger
}

// NewLiquidacionService crea una nueva instancia del servicio
func NewLiquidacionService(servicios PendientesStore, grueros GrueroLector, pagos PagoStore, cache Cache, cacheTTL time.Duration, logger *logrus.Logger) *LiquidacionService {
	return &LiquidacionService{
		servicios: servicios,
		grueros:   grueros,
		pagos:     pagos,
		cache:     cache,
		cacheTTL:  cacheTTL,
		logger:    logger,
	}
}

func cacheKeyPendientes(periodo models.PeriodoLiquidacion) string {
	return "liquidacion:pendientes:" + periodo.Etiqueta()
}

// PendientesDeLiquidacion arma la propuesta de liquidación de un período:
// agrupa por gruero los servicios COMPLETADO no pagados con completado_at en
// [inicio, fin), suma total_gruero por grupo y adjunta la foto bancaria
// vigente. Un gruero sin servicios liquidables no emite grupo. Es una lectura
// repetible sin efectos, por eso se cachea brevemente.
func (s *LiquidacionService) PendientesDeLiquidacion(periodo models.PeriodoLiquidacion) (*models.LiquidacionPendienteResponse, error) {
	if cached := s.leerCache(periodo); cached != nil {
		return cached, nil
	}

	pendientes, err := s.servicios.PendientesDeLiquidacion(periodo)
	if err != nil {
		return nil, err
	}

	grupos := make(map[uuid.UUID]*models.GrupoLiquidacion)
	for _, servicio := range pendientes {
		if servicio.GrueroID == nil {
			// Un servicio COMPLETADO siempre tiene gruero asignado
			continue
		}
		grueroID := *servicio.GrueroID
		grupo, ok := grupos[grueroID]
		if !ok {
			grupo = &models.GrupoLiquidacion{GrueroID: grueroID}
			grupos[grueroID] = grupo
		}
		grupo.MontoTotal += servicio.TotalGruero
		grupo.TotalServicios++
		grupo.Servicios = append(grupo.Servicios, models.ServicioPendiente{
			ID:           servicio.ID,
			CompletadoAt: *servicio.CompletadoAt,
			TotalGruero:  servicio.TotalGruero,
			DistanciaKm:  servicio.DistanciaKm,
		})
	}

	ids := make([]uuid.UUID, 0, len(grupos))
	for id := range grupos {
		ids = append(ids, id)
	}
	datosGrueros, err := s.grueros.GetByIDs(ids)
	if err != nil {
		return nil, err
	}

	response := &models.LiquidacionPendienteResponse{
		Periodo:      periodo.Etiqueta(),
		InicioSemana: periodo.Inicio,
		FinSemana:    periodo.Fin,
		Grueros:      make([]models.GrupoLiquidacion, 0, len(grupos)),
	}
	for _, grupo := range grupos {
		if gruero, ok := datosGrueros[grupo.GrueroID]; ok {
			grupo.GrueroNombre = gruero.Nombre
			grupo.Bancarios = gruero.Bancarios
		}
		response.Grueros = append(response.Grueros, *grupo)
		response.MontoTotalGeneral += grupo.MontoTotal
	}
	response.TotalGrueros = len(response.Grueros)

	// Orden determinista: monto descendente, desempate por ID ascendente
	sort.Slice(response.Grueros, func(i, j int) bool {
		a, b := response.Grueros[i], response.Grueros[j]
		if a.MontoTotal != b.MontoTotal {
			return a.MontoTotal > b.MontoTotal
		}
		return bytes.Compare(a.GrueroID[:], b.GrueroID[:]) < 0
	})

	s.escribirCache(periodo, response)

	return response, nil
}

// RegistrarPago registra la liquidación de un gruero para un período. La
// selección se re-ejecuta dentro de la transacción del store: si dos admins
// compiten, el segundo encuentra el conjunto vacío y recibe ConflictError en
// lugar de crear un pago en cero.
func (s *LiquidacionService) RegistrarPago(grueroID uuid.UUID, periodo models.PeriodoLiquidacion, metodo models.MetodoPago, comprobante string, notas *string, adminID string) (*models.Pago, error) {
	if strings.TrimSpace(comprobante) == "" {
		return nil, models.NewValidationFieldError("numero_comprobante", "el comprobante de pago es obligatorio")
	}
	if !metodo.EsValido() {
		return nil, models.NewValidationFieldError("metodo_pago", "debe ser TRANSFERENCIA o EFECTIVO")
	}

	gruero, err := s.grueros.GetByID(grueroID)
	if err != nil {
		return nil, err
	}

	pago := &models.Pago{
		ID:           uuid.New(),
		GrueroID:     grueroID,
		InicioSemana: periodo.Inicio,
		FinSemana:    periodo.Fin,
		MetodoPago:   metodo,
		Comprobante:  strings.TrimSpace(comprobante),
		NotasAdmin:   notas,
		RegistradoBy: adminID,
		CreatedAt:    time.Now(),
	}

	registrado, err := s.pagos.RegistrarPago(pago)
	if err != nil {
		return nil, err
	}

	// La propuesta cacheada quedó obsoleta para este período
	if s.cache != nil {
		if err := s.cache.Delete(cacheKeyPendientes(periodo)); err != nil {
			s.logger.Warnf("Error invalidating liquidacion cache: %v", err)
		}
	}

	s.logger.WithFields(logrus.Fields{
		"pago_id":     registrado.ID,
		"gruero_id":   grueroID,
		"gruero":      gruero.Nombre,
		"monto_total": registrado.MontoTotal,
		"servicios":   len(registrado.ServicioIDs),
		"registrado":  adminID,
	}).Info("Liquidación registrada")

	return registrado, nil
}

// GetPago obtiene un pago por ID
func (s *LiquidacionService) GetPago(id uuid.UUID) (*models.Pago, error) {
	return s.pagos.GetByID(id)
}

// ListPagos obtiene el historial de pagos
func (s *LiquidacionService) ListPagos(limit, offset int) ([]models.Pago, error) {
	return s.pagos.List(limit, offset)
}

func (s *LiquidacionService) leerCache(periodo models.PeriodoLiquidacion) *models.LiquidacionPendienteResponse {
	if s.cache == nil {
		return nil
	}
	raw, err := s.cache.Get(cacheKeyPendientes(periodo))
	if err != nil || raw == "" {
		return nil
	}
	var response models.LiquidacionPendienteResponse
	if err := json.Unmarshal([]byte(raw), &response); err != nil {
		return nil
	}
	return &response
}

func (s *LiquidacionService) escribirCache(periodo models.PeriodoLiquidacion, response *models.LiquidacionPendienteResponse) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(response)
	if err != nil {
		return
	}
	if err := s.cache.SetWithTTL(cacheKeyPendientes(periodo), string(raw), s.cacheTTL); err != nil {
		s.logger.Warnf("Error caching liquidacion pendiente: %v", err)
	}
}

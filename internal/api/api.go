package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/alexitico1989/gruapp-sub002/internal/database"
	"github.com/alexitico1989/gruapp-sub002/internal/models"
	"github.com/alexitico1989/gruapp-sub002/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// API maneja todos los endpoints de la consola de administración
type API struct {
	servicioService    *services.ServicioService
	liquidacionService *services.LiquidacionService
	cuentaService      *services.CuentaService
	reclamoService     *services.ReclamoService
	adminKeyRepo       *database.AdminKeyRepository
	logger             *logrus.Logger
}

// NewAPI crea una nueva instancia de la API
func NewAPI(
	servicioService *services.ServicioService,
	liquidacionService *services.LiquidacionService,
	cuentaService *services.CuentaService,
	reclamoService *services.ReclamoService,
	adminKeyRepo *database.AdminKeyRepository,
	logger *logrus.Logger,
) *API {
	return &API{
		servicioService:    servicioService,
		liquidacionService: liquidacionService,
		cuentaService:      cuentaService,
		reclamoService:     reclamoService,
		adminKeyRepo:       adminKeyRepo,
		logger:             logger,
	}
}

// AdminAuthMiddleware valida la credencial X-API-Key y deja la identidad del
// admin en el contexto; los handlers la pasan explícitamente al core
func (api *API) AdminAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		apiKey := c.GetHeader("X-API-Key")
		if apiKey == "" {
			c.JSON(http.StatusUnauthorized, models.NewUnauthorizedError("API key required"))
			c.Abort()
			return
		}

		adminKey, err := api.adminKeyRepo.GetByHash(api.adminKeyRepo.HashAPIKey(apiKey))
		if err != nil {
			c.JSON(http.StatusUnauthorized, models.NewUnauthorizedError("Invalid API key"))
			c.Abort()
			return
		}

		if err := api.adminKeyRepo.UpdateLastUsed(adminKey.ID); err != nil {
			api.logger.Warnf("Error updating admin key last used: %v", err)
		}

		c.Set("admin_id", adminKey.Nombre)
		c.Next()
	}
}

// adminID retorna la identidad del admin autenticado
func adminID(c *gin.Context) string {
	return c.GetString("admin_id")
}

// responderError mapea la taxonomía de errores del core a respuestas HTTP
func (api *API) responderError(c *gin.Context, err error, contexto string) {
	var validacion *models.ValidationError
	var transicion *models.StateTransitionError
	var conflicto *models.ConflictError
	var noEncontrado *models.NotFoundError

	switch {
	case errors.As(err, &validacion):
		c.JSON(http.StatusBadRequest, models.NewValidationError(validacion.Error(), []models.ErrorDetail{
			{Field: validacion.Campo, Issue: validacion.Detalle},
		}))
	case errors.As(err, &noEncontrado):
		c.JSON(http.StatusNotFound, models.NewNotFoundError(noEncontrado.Error()))
	case errors.As(err, &transicion):
		c.JSON(http.StatusConflict, models.NewStateTransitionErrorResponse(transicion.Error()))
	case errors.As(err, &conflicto):
		c.JSON(http.StatusConflict, models.NewConflictError(conflicto.Motivo, conflicto.ServiciosActivos))
	default:
		api.logger.WithError(err).Error(contexto)
		c.JSON(http.StatusInternalServerError, models.NewInternalError(contexto))
	}
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.NewValidationError("Invalid ID", []models.ErrorDetail{
			{Field: "id", Issue: "Must be a valid UUID"},
		}))
		return uuid.Nil, false
	}
	return id, true
}

func parsePaging(c *gin.Context) (limit, offset int) {
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// parsePeriodo arma el período de liquidación desde los query params
// inicio/fin (RFC 3339); sin parámetros usa la semana en curso
func (api *API) parsePeriodo(c *gin.Context) (models.PeriodoLiquidacion, bool) {
	inicioStr := c.Query("inicio")
	finStr := c.Query("fin")
	if inicioStr == "" && finStr == "" {
		return models.SemanaActual(time.Now()), true
	}

	inicio, err := time.Parse(time.RFC3339, inicioStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.NewValidationError("Invalid periodo", []models.ErrorDetail{
			{Field: "inicio", Issue: "Must be RFC 3339"},
		}))
		return models.PeriodoLiquidacion{}, false
	}
	fin, err := time.Parse(time.RFC3339, finStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.NewValidationError("Invalid periodo", []models.ErrorDetail{
			{Field: "fin", Issue: "Must be RFC 3339"},
		}))
		return models.PeriodoLiquidacion{}, false
	}
	if !inicio.Before(fin) {
		c.JSON(http.StatusBadRequest, models.NewValidationError("Invalid periodo", []models.ErrorDetail{
			{Field: "fin", Issue: "Must be after inicio"},
		}))
		return models.PeriodoLiquidacion{}, false
	}

	return models.PeriodoLiquidacion{Inicio: inicio, Fin: fin}, true
}

// GetPagosPendientes retorna la propuesta de liquidación del período
func (api *API) GetPagosPendientes(c *gin.Context) {
	periodo, ok := api.parsePeriodo(c)
	if !ok {
		return
	}

	response, err := api.liquidacionService.PendientesDeLiquidacion(periodo)
	if err != nil {
		api.responderError(c, err, "Error retrieving pagos pendientes")
		return
	}

	c.JSON(http.StatusOK, response)
}

// MarcarPagado registra la liquidación de un gruero
func (api *API) MarcarPagado(c *gin.Context) {
	var req models.RegistrarPagoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.logger.WithError(err).Error("Error binding registrar pago request")
		c.JSON(http.StatusBadRequest, models.NewValidationError("Invalid request format", []models.ErrorDetail{
			{Field: "body", Issue: err.Error()},
		}))
		return
	}

	if (req.Inicio == nil) != (req.Fin == nil) {
		c.JSON(http.StatusBadRequest, models.NewValidationError("Invalid periodo", []models.ErrorDetail{
			{Field: "periodo", Issue: "Inicio and fin must be supplied together"},
		}))
		return
	}

	periodo := models.SemanaActual(time.Now())
	if req.Inicio != nil && req.Fin != nil {
		if !req.Inicio.Before(*req.Fin) {
			c.JSON(http.StatusBadRequest, models.NewValidationError("Invalid periodo", []models.ErrorDetail{
				{Field: "fin", Issue: "Must be after inicio"},
			}))
			return
		}
		periodo = models.PeriodoLiquidacion{Inicio: *req.Inicio, Fin: *req.Fin}
	}

	pago, err := api.liquidacionService.RegistrarPago(
		req.GrueroID, periodo, req.MetodoPago, req.NumeroComprobante, req.NotasAdmin, adminID(c),
	)
	if err != nil {
		api.responderError(c, err, "Error registering pago")
		return
	}

	c.JSON(http.StatusCreated, pago)
}

// GetPago obtiene un pago del historial
func (api *API) GetPago(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	pago, err := api.liquidacionService.GetPago(id)
	if err != nil {
		api.responderError(c, err, "Error retrieving pago")
		return
	}

	c.JSON(http.StatusOK, pago)
}

// ListPagos obtiene el historial de pagos
func (api *API) ListPagos(c *gin.Context) {
	limit, offset := parsePaging(c)

	pagos, err := api.liquidacionService.ListPagos(limit, offset)
	if err != nil {
		api.responderError(c, err, "Error listing pagos")
		return
	}

	c.JSON(http.StatusOK, gin.H{"pagos": pagos})
}

// GetGruero obtiene un gruero
func (api *API) GetGruero(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	gruero, err := api.cuentaService.GetGruero(id)
	if err != nil {
		api.responderError(c, err, "Error retrieving gruero")
		return
	}

	c.JSON(http.StatusOK, gruero)
}

// ListGrueros obtiene grueros para la tabla de la consola
func (api *API) ListGrueros(c *gin.Context) {
	limit, offset := parsePaging(c)

	grueros, err := api.cuentaService.ListGrueros(limit, offset)
	if err != nil {
		api.responderError(c, err, "Error listing grueros")
		return
	}

	c.JSON(http.StatusOK, gin.H{"grueros": grueros})
}

// AprobarGruero aprueba la verificación de un gruero
func (api *API) AprobarGruero(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	gruero, err := api.cuentaService.AprobarGruero(id, adminID(c))
	if err != nil {
		api.responderError(c, err, "Error approving gruero")
		return
	}

	c.JSON(http.StatusOK, gruero)
}

// RechazarGruero rechaza la verificación de un gruero
func (api *API) RechazarGruero(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req models.MotivoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.NewValidationError("Invalid request format", []models.ErrorDetail{
			{Field: "motivo", Issue: "Required"},
		}))
		return
	}

	gruero, err := api.cuentaService.RechazarGruero(id, req.Motivo, adminID(c))
	if err != nil {
		api.responderError(c, err, "Error rejecting gruero")
		return
	}

	c.JSON(http.StatusOK, gruero)
}

// SuspenderGruero suspende la cuenta de un gruero aprobado
func (api *API) SuspenderGruero(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req models.MotivoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.NewValidationError("Invalid request format", []models.ErrorDetail{
			{Field: "motivo", Issue: "Required"},
		}))
		return
	}

	gruero, err := api.cuentaService.SuspenderGruero(id, req.Motivo, adminID(c))
	if err != nil {
		api.responderError(c, err, "Error suspending gruero")
		return
	}

	c.JSON(http.StatusOK, gruero)
}

// ReactivarGruero levanta la suspensión de un gruero
func (api *API) ReactivarGruero(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	gruero, err := api.cuentaService.ReactivarGruero(id, adminID(c))
	if err != nil {
		api.responderError(c, err, "Error reactivating gruero")
		return
	}

	c.JSON(http.StatusOK, gruero)
}

// EliminarGruero elimina la cuenta de un gruero y su historial
func (api *API) EliminarGruero(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := api.cuentaService.EliminarGruero(id, adminID(c)); err != nil {
		api.responderError(c, err, "Error deleting gruero")
		return
	}

	c.Status(http.StatusNoContent)
}

// GetCliente obtiene un cliente
func (api *API) GetCliente(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	cliente, err := api.cuentaService.GetCliente(id)
	if err != nil {
		api.responderError(c, err, "Error retrieving cliente")
		return
	}

	c.JSON(http.StatusOK, cliente)
}

// ListClientes obtiene clientes para la tabla de la consola
func (api *API) ListClientes(c *gin.Context) {
	limit, offset := parsePaging(c)

	clientes, err := api.cuentaService.ListClientes(limit, offset)
	if err != nil {
		api.responderError(c, err, "Error listing clientes")
		return
	}

	c.JSON(http.StatusOK, gin.H{"clientes": clientes})
}

// SuspenderCliente suspende la cuenta de un cliente
func (api *API) SuspenderCliente(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req models.MotivoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.NewValidationError("Invalid request format", []models.ErrorDetail{
			{Field: "motivo", Issue: "Required"},
		}))
		return
	}

	cliente, err := api.cuentaService.SuspenderCliente(id, req.Motivo, adminID(c))
	if err != nil {
		api.responderError(c, err, "Error suspending cliente")
		return
	}

	c.JSON(http.StatusOK, cliente)
}

// ReactivarCliente levanta la suspensión de un cliente
func (api *API) ReactivarCliente(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	cliente, err := api.cuentaService.ReactivarCliente(id, adminID(c))
	if err != nil {
		api.responderError(c, err, "Error reactivating cliente")
		return
	}

	c.JSON(http.StatusOK, cliente)
}

// EliminarCliente elimina la cuenta de un cliente y su historial
func (api *API) EliminarCliente(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := api.cuentaService.EliminarCliente(id, adminID(c)); err != nil {
		api.responderError(c, err, "Error deleting cliente")
		return
	}

	c.Status(http.StatusNoContent)
}

// GetServicio obtiene un servicio
func (api *API) GetServicio(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	servicio, err := api.servicioService.GetServicio(id)
	if err != nil {
		api.responderError(c, err, "Error retrieving servicio")
		return
	}

	c.JSON(http.StatusOK, servicio)
}

// ListServicios obtiene servicios para la tabla de la consola
func (api *API) ListServicios(c *gin.Context) {
	limit, offset := parsePaging(c)

	servicios, err := api.servicioService.ListServicios(limit, offset)
	if err != nil {
		api.responderError(c, err, "Error listing servicios")
		return
	}

	c.JSON(http.StatusOK, gin.H{"servicios": servicios})
}

// CambiarEstadoServicio aplica una transición intermedia del ciclo de vida
func (api *API) CambiarEstadoServicio(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req models.CambiarEstadoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.NewValidationError("Invalid request format", []models.ErrorDetail{
			{Field: "estado", Issue: "Required"},
		}))
		return
	}

	servicio, err := api.servicioService.CambiarEstado(id, req.Estado, req.GrueroID)
	if err != nil {
		api.responderError(c, err, "Error updating servicio estado")
		return
	}

	c.JSON(http.StatusOK, servicio)
}

// CompletarServicio completa un servicio con sus totales
func (api *API) CompletarServicio(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req models.CompletarServicioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.NewValidationError("Invalid request format", []models.ErrorDetail{
			{Field: "body", Issue: err.Error()},
		}))
		return
	}

	servicio, err := api.servicioService.Completar(id, *req.TotalCliente, *req.TotalGruero)
	if err != nil {
		api.responderError(c, err, "Error completing servicio")
		return
	}

	c.JSON(http.StatusOK, servicio)
}

// CancelarServicio cancela un servicio con motivo
func (api *API) CancelarServicio(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req models.CancelarServicioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.NewValidationError("Invalid request format", []models.ErrorDetail{
			{Field: "motivo", Issue: "Required"},
		}))
		return
	}

	servicio, err := api.servicioService.Cancelar(id, req.Motivo)
	if err != nil {
		api.responderError(c, err, "Error cancelling servicio")
		return
	}

	c.JSON(http.StatusOK, servicio)
}

// GetReclamo obtiene un reclamo
func (api *API) GetReclamo(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	reclamo, err := api.reclamoService.GetReclamo(id)
	if err != nil {
		api.responderError(c, err, "Error retrieving reclamo")
		return
	}

	c.JSON(http.StatusOK, reclamo)
}

// ListReclamos obtiene reclamos para la tabla de la consola
func (api *API) ListReclamos(c *gin.Context) {
	limit, offset := parsePaging(c)

	reclamos, err := api.reclamoService.ListReclamos(limit, offset)
	if err != nil {
		api.responderError(c, err, "Error listing reclamos")
		return
	}

	c.JSON(http.StatusOK, gin.H{"reclamos": reclamos})
}

// MarcarReclamoEnRevision pasa un reclamo pendiente a revisión
func (api *API) MarcarReclamoEnRevision(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	reclamo, err := api.reclamoService.MarcarEnRevision(id, adminID(c))
	if err != nil {
		api.responderError(c, err, "Error updating reclamo estado")
		return
	}

	c.JSON(http.StatusOK, reclamo)
}

// ResolverReclamo cierra un reclamo como RESUELTO
func (api *API) ResolverReclamo(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req models.ResolverReclamoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.NewValidationError("Invalid request format", []models.ErrorDetail{
			{Field: "resolucion", Issue: "Required"},
		}))
		return
	}

	reclamo, err := api.reclamoService.Resolver(id, req.Resolucion, adminID(c))
	if err != nil {
		api.responderError(c, err, "Error resolving reclamo")
		return
	}

	c.JSON(http.StatusOK, reclamo)
}

// RechazarReclamo cierra un reclamo como RECHAZADO
func (api *API) RechazarReclamo(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req models.MotivoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.NewValidationError("Invalid request format", []models.ErrorDetail{
			{Field: "motivo", Issue: "Required"},
		}))
		return
	}

	reclamo, err := api.reclamoService.Rechazar(id, req.Motivo, adminID(c))
	if err != nil {
		api.responderError(c, err, "Error rejecting reclamo")
		return
	}

	c.JSON(http.StatusOK, reclamo)
}

// ActualizarNotasReclamo actualiza las notas internas de un reclamo
func (api *API) ActualizarNotasReclamo(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req models.NotasReclamoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.NewValidationError("Invalid request format", []models.ErrorDetail{
			{Field: "notas", Issue: "Required"},
		}))
		return
	}

	reclamo, err := api.reclamoService.ActualizarNotas(id, req.Notas, adminID(c))
	if err != nil {
		api.responderError(c, err, "Error updating reclamo notas")
		return
	}

	c.JSON(http.StatusOK, reclamo)
}

// CreateAdminKey emite una nueva credencial de administrador
func (api *API) CreateAdminKey(c *gin.Context) {
	var req models.CreateAdminKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.NewValidationError("Invalid request format", []models.ErrorDetail{
			{Field: "nombre", Issue: "Required"},
		}))
		return
	}

	adminKey, apiKey, err := api.adminKeyRepo.Create(req.Nombre)
	if err != nil {
		api.logger.WithError(err).Error("Error creating admin key")
		c.JSON(http.StatusInternalServerError, models.NewInternalError("Error creating admin key"))
		return
	}

	c.JSON(http.StatusCreated, models.CreateAdminKeyResponse{
		ID:     adminKey.ID,
		Nombre: adminKey.Nombre,
		APIKey: apiKey,
	})
}

// RevokeAdminKey desactiva una credencial de administrador
func (api *API) RevokeAdminKey(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := api.adminKeyRepo.Deactivate(id); err != nil {
		api.responderError(c, err, "Error revoking admin key")
		return
	}

	c.Status(http.StatusNoContent)
}

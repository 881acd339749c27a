package services

import (
	"errors"
	"io"
	"sync"
	"time"

	"github.com/alexitico1989/gruapp-sub002/internal/models"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// fakeStore guarda en memoria el estado compartido por los fakes de cada
// repositorio. Los adaptadores fakeServicios, fakeGrueros, etc. comparten
// el mismo mutex y los mismos mapas, igual que los repositorios reales
// comparten la base de datos.
type fakeStore struct {
	mu        sync.Mutex
	servicios map[uuid.UUID]*models.Servicio
	grueros   map[uuid.UUID]*models.Gruero
	clientes  map[uuid.UUID]*models.Cliente
	reclamos  map[uuid.UUID]*models.Reclamo
	pagos     []*models.Pago
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		servicios: make(map[uuid.UUID]*models.Servicio),
		grueros:   make(map[uuid.UUID]*models.Gruero),
		clientes:  make(map[uuid.UUID]*models.Cliente),
		reclamos:  make(map[uuid.UUID]*models.Reclamo),
	}
}

func (f *fakeStore) addServicio(s models.Servicio) uuid.UUID {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	f.servicios[s.ID] = &s
	return s.ID
}

func (f *fakeStore) addGruero(g models.Gruero) uuid.UUID {
	f.mu.Lock()
	defer f.mu.Unlock()
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	f.grueros[g.ID] = &g
	return g.ID
}

func (f *fakeStore) addCliente(c models.Cliente) uuid.UUID {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	f.clientes[c.ID] = &c
	return c.ID
}

func (f *fakeStore) addReclamo(r models.Reclamo) uuid.UUID {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	f.reclamos[r.ID] = &r
	return r.ID
}

// servicio devuelve el puntero interno para inspección directa en tests.
func (f *fakeStore) servicio(id uuid.UUID) *models.Servicio {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.servicios[id]
}

func (f *fakeStore) gruero(id uuid.UUID) *models.Gruero {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.grueros[id]
}

func (f *fakeStore) cliente(id uuid.UUID) *models.Cliente {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.clientes[id]
}

func (f *fakeStore) reclamo(id uuid.UUID) *models.Reclamo {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reclamos[id]
}

func (f *fakeStore) pendientesLocked(grueroID *uuid.UUID, periodo models.PeriodoLiquidacion) []models.Servicio {
	var out []models.Servicio
	for _, s := range f.servicios {
		if s.Estado != models.EstadoServicioCompletado || s.Pagado || s.CompletadoAt == nil {
			continue
		}
		if !periodo.Contiene(*s.CompletadoAt) {
			continue
		}
		if grueroID != nil && (s.GrueroID == nil || *s.GrueroID != *grueroID) {
			continue
		}
		out = append(out, *s)
	}
	return out
}

// fakeServicios implementa ServicioStore y PendientesStore.
type fakeServicios struct{ *fakeStore }

func (f fakeServicios) GetByID(id uuid.UUID) (*models.Servicio, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.servicios[id]
	if !ok {
		return nil, models.NewNotFoundEntityError("servicio", id.String())
	}
	copia := *s
	return &copia, nil
}

func (f fakeServicios) CambiarEstado(id uuid.UUID, desde, hacia models.EstadoServicio, grueroID *uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.servicios[id]
	if !ok {
		return models.NewNotFoundEntityError("servicio", id.String())
	}
	if s.Estado != desde {
		return models.NewStateTransitionError("servicio", string(s.Estado), "pasar a "+string(hacia))
	}
	s.Estado = hacia
	if grueroID != nil {
		s.GrueroID = grueroID
	}
	return nil
}

func (f fakeServicios) Completar(id uuid.UUID, totalCliente, totalGruero int64, completadoAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.servicios[id]
	if !ok {
		return models.NewNotFoundEntityError("servicio", id.String())
	}
	if s.Estado != models.EstadoServicioEnSitio {
		return models.NewStateTransitionError("servicio", string(s.Estado), "completar")
	}
	s.Estado = models.EstadoServicioCompletado
	s.TotalCliente = totalCliente
	s.TotalGruero = totalGruero
	s.ComisionPlataforma = models.Comision(totalCliente, totalGruero)
	s.Pagado = false
	s.CompletadoAt = &completadoAt
	return nil
}

func (f fakeServicios) Cancelar(id uuid.UUID, desde models.EstadoServicio, motivo string, canceladoAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.servicios[id]
	if !ok {
		return models.NewNotFoundEntityError("servicio", id.String())
	}
	if s.Estado != desde {
		return models.NewStateTransitionError("servicio", string(s.Estado), "cancelar")
	}
	s.Estado = models.EstadoServicioCancelado
	s.MotivoCancelacion = &motivo
	s.CanceladoAt = &canceladoAt
	return nil
}

func (f fakeServicios) List(limit, offset int) ([]models.Servicio, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Servicio
	for _, s := range f.servicios {
		out = append(out, *s)
	}
	return out, nil
}

func (f fakeServicios) PendientesDeLiquidacion(periodo models.PeriodoLiquidacion) ([]models.Servicio, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pendientesLocked(nil, periodo), nil
}

// fakeGrueros implementa GrueroStore y GrueroLector.
type fakeGrueros struct{ *fakeStore }

func (f fakeGrueros) grueroLocked(id uuid.UUID) (*models.Gruero, error) {
	g, ok := f.grueros[id]
	if !ok {
		return nil, models.NewNotFoundEntityError("gruero", id.String())
	}
	return g, nil
}

func (f fakeGrueros) GetByID(id uuid.UUID) (*models.Gruero, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	g, err := f.grueroLocked(id)
	if err != nil {
		return nil, err
	}
	copia := *g
	return &copia, nil
}

func (f fakeGrueros) GetByIDs(ids []uuid.UUID) (map[uuid.UUID]*models.Gruero, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[uuid.UUID]*models.Gruero, len(ids))
	for _, id := range ids {
		if g, ok := f.grueros[id]; ok {
			copia := *g
			out[id] = &copia
		}
	}
	return out, nil
}

func (f fakeGrueros) Aprobar(id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	g, err := f.grueroLocked(id)
	if err != nil {
		return err
	}
	if g.Verificacion != models.VerificacionPendiente {
		return models.NewStateTransitionError("gruero", string(g.Verificacion), "aprobar")
	}
	g.Verificacion = models.VerificacionAprobado
	return nil
}

func (f fakeGrueros) Rechazar(id uuid.UUID, motivo string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	g, err := f.grueroLocked(id)
	if err != nil {
		return err
	}
	if g.Verificacion != models.VerificacionPendiente {
		return models.NewStateTransitionError("gruero", string(g.Verificacion), "rechazar")
	}
	g.Verificacion = models.VerificacionRechazado
	g.MotivoRechazo = &motivo
	return nil
}

func (f fakeGrueros) Suspender(id uuid.UUID, motivo string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	g, err := f.grueroLocked(id)
	if err != nil {
		return err
	}
	if g.Verificacion != models.VerificacionAprobado || g.CuentaSuspendida {
		return models.NewStateTransitionError("gruero", string(g.Verificacion), "suspender")
	}
	g.CuentaSuspendida = true
	g.MotivoSuspension = &motivo
	return nil
}

func (f fakeGrueros) Reactivar(id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	g, err := f.grueroLocked(id)
	if err != nil {
		return err
	}
	if !g.CuentaSuspendida {
		return models.NewStateTransitionError("gruero", string(g.Verificacion), "reactivar")
	}
	g.CuentaSuspendida = false
	g.MotivoSuspension = nil
	return nil
}

// Delete aplica la misma guarda que el repositorio real: cuenta los
// servicios no terminales bajo el lock y elimina en el mismo paso. Los
// pagos registrados se conservan.
func (f fakeGrueros) Delete(id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.grueros[id]; !ok {
		return models.NewNotFoundEntityError("gruero", id.String())
	}
	activos := 0
	for _, s := range f.servicios {
		if s.GrueroID != nil && *s.GrueroID == id && !s.Estado.EsTerminal() {
			activos++
		}
	}
	if activos > 0 {
		return &models.ConflictError{
			Motivo:           "no se puede eliminar una cuenta con servicios activos",
			ServiciosActivos: activos,
		}
	}
	delete(f.grueros, id)
	for sid, s := range f.servicios {
		if s.GrueroID != nil && *s.GrueroID == id {
			delete(f.servicios, sid)
		}
	}
	return nil
}

func (f fakeGrueros) List(limit, offset int) ([]models.Gruero, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Gruero
	for _, g := range f.grueros {
		out = append(out, *g)
	}
	return out, nil
}

// fakeClientes implementa ClienteStore.
type fakeClientes struct{ *fakeStore }

func (f fakeClientes) GetByID(id uuid.UUID) (*models.Cliente, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.clientes[id]
	if !ok {
		return nil, models.NewNotFoundEntityError("cliente", id.String())
	}
	copia := *c
	return &copia, nil
}

func (f fakeClientes) Suspender(id uuid.UUID, motivo string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.clientes[id]
	if !ok {
		return models.NewNotFoundEntityError("cliente", id.String())
	}
	if c.CuentaSuspendida {
		return models.NewStateTransitionError("cliente", "SUSPENDIDA", "suspender")
	}
	c.CuentaSuspendida = true
	c.MotivoSuspension = &motivo
	return nil
}

func (f fakeClientes) Reactivar(id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.clientes[id]
	if !ok {
		return models.NewNotFoundEntityError("cliente", id.String())
	}
	if !c.CuentaSuspendida {
		return models.NewStateTransitionError("cliente", "ACTIVA", "reactivar")
	}
	c.CuentaSuspendida = false
	c.MotivoSuspension = nil
	return nil
}

func (f fakeClientes) Delete(id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.clientes[id]; !ok {
		return models.NewNotFoundEntityError("cliente", id.String())
	}
	activos := 0
	for _, s := range f.servicios {
		if s.ClienteID == id && !s.Estado.EsTerminal() {
			activos++
		}
	}
	if activos > 0 {
		return &models.ConflictError{
			Motivo:           "no se puede eliminar una cuenta con servicios activos",
			ServiciosActivos: activos,
		}
	}
	delete(f.clientes, id)
	for sid, s := range f.servicios {
		if s.ClienteID == id {
			delete(f.servicios, sid)
		}
	}
	return nil
}

func (f fakeClientes) List(limit, offset int) ([]models.Cliente, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Cliente
	for _, c := range f.clientes {
		out = append(out, *c)
	}
	return out, nil
}

// fakePagos implementa PagoStore con la misma sección crítica del
// repositorio real: re-selecciona los pendientes bajo el lock, rechaza
// el conjunto vacío y marca pagado en el mismo paso.
type fakePagos struct{ *fakeStore }

func (f fakePagos) RegistrarPago(pago *models.Pago) (*models.Pago, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	periodo := models.PeriodoLiquidacion{Inicio: pago.InicioSemana, Fin: pago.FinSemana}
	pendientes := f.pendientesLocked(&pago.GrueroID, periodo)
	if len(pendientes) == 0 {
		return nil, models.NewConflictoError("el gruero no tiene servicios pendientes de pago en el período")
	}

	var ids []uuid.UUID
	var monto int64
	for _, s := range pendientes {
		f.servicios[s.ID].Pagado = true
		ids = append(ids, s.ID)
		monto += s.TotalGruero
	}
	pago.ServicioIDs = ids
	pago.MontoTotal = monto

	copia := *pago
	f.pagos = append(f.pagos, &copia)
	return pago, nil
}

func (f fakePagos) GetByID(id uuid.UUID) (*models.Pago, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.pagos {
		if p.ID == id {
			copia := *p
			return &copia, nil
		}
	}
	return nil, models.NewNotFoundEntityError("pago", id.String())
}

func (f fakePagos) List(limit, offset int) ([]models.Pago, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Pago
	for _, p := range f.pagos {
		out = append(out, *p)
	}
	return out, nil
}

// fakeReclamos implementa ReclamoStore.
type fakeReclamos struct{ *fakeStore }

func (f fakeReclamos) GetByID(id uuid.UUID) (*models.Reclamo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reclamos[id]
	if !ok {
		return nil, models.NewNotFoundEntityError("reclamo", id.String())
	}
	copia := *r
	return &copia, nil
}

func (f fakeReclamos) MarcarEnRevision(id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reclamos[id]
	if !ok {
		return models.NewNotFoundEntityError("reclamo", id.String())
	}
	if r.Estado != models.ReclamoPendiente {
		return models.NewStateTransitionError("reclamo", string(r.Estado), "marcar en revisión")
	}
	r.Estado = models.ReclamoEnRevision
	return nil
}

func (f fakeReclamos) Cerrar(id uuid.UUID, estado models.EstadoReclamo, resolucion, adminID string, resueltoAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reclamos[id]
	if !ok {
		return models.NewNotFoundEntityError("reclamo", id.String())
	}
	if r.Estado != models.ReclamoPendiente && r.Estado != models.ReclamoEnRevision {
		return models.NewStateTransitionError("reclamo", string(r.Estado), "cerrar")
	}
	r.Estado = estado
	r.Resolucion = &resolucion
	r.ResueltoAt = &resueltoAt
	r.ResueltoBy = &adminID
	return nil
}

func (f fakeReclamos) ActualizarNotas(id uuid.UUID, notas string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reclamos[id]
	if !ok {
		return models.NewNotFoundEntityError("reclamo", id.String())
	}
	r.NotasInternas = &notas
	return nil
}

func (f fakeReclamos) List(limit, offset int) ([]models.Reclamo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Reclamo
	for _, r := range f.reclamos {
		out = append(out, *r)
	}
	return out, nil
}

// fakeCache implementa Cache sobre un mapa. errCacheMiss imita el
// redis.Nil que devuelve el cliente real cuando la clave no existe.
var errCacheMiss = errors.New("cache: clave no encontrada")

type fakeCache struct {
	mu       sync.Mutex
	datos    map[string]string
	escritos int
	borrados int
}

func newFakeCache() *fakeCache {
	return &fakeCache{datos: make(map[string]string)}
}

func (c *fakeCache) Get(key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.datos[key]
	if !ok {
		return "", errCacheMiss
	}
	return v, nil
}

func (c *fakeCache) SetWithTTL(key string, value interface{}, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if s, ok := value.(string); ok {
		c.datos[key] = s
	}
	c.escritos++
	return nil
}

func (c *fakeCache) Delete(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.datos, key)
	c.borrados++
	return nil
}

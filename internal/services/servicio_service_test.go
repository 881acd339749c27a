package services

import (
	"errors"
	"testing"

	"github.com/alexitico1989/gruapp-sub002/internal/models"
	"github.com/google/uuid"
)

func newServicioService(store *fakeStore) *ServicioService {
	return NewServicioService(fakeServicios{store}, testLogger())
}

func TestCicloDeVidaCompleto(t *testing.T) {
	store := newFakeStore()
	grueroID := store.addGruero(models.Gruero{Nombre: "Carlos Medina", Verificacion: models.VerificacionAprobado})
	id := store.addServicio(models.Servicio{ClienteID: uuid.New(), Estado: models.EstadoServicioSolicitado})

	svc := newServicioService(store)

	servicio, err := svc.CambiarEstado(id, models.EstadoServicioAceptado, &grueroID)
	if err != nil {
		t.Fatalf("aceptar: %v", err)
	}
	if servicio.GrueroID == nil || *servicio.GrueroID != grueroID {
		t.Fatalf("aceptar debe asignar el gruero")
	}

	if _, err := svc.CambiarEstado(id, models.EstadoServicioEnCamino, nil); err != nil {
		t.Fatalf("en_camino: %v", err)
	}
	if _, err := svc.CambiarEstado(id, models.EstadoServicioEnSitio, nil); err != nil {
		t.Fatalf("en_sitio: %v", err)
	}

	servicio, err = svc.Completar(id, 50000, 38500)
	if err != nil {
		t.Fatalf("completar: %v", err)
	}
	if servicio.Estado != models.EstadoServicioCompletado {
		t.Errorf("Estado = %s, esperado COMPLETADO", servicio.Estado)
	}
	if servicio.ComisionPlataforma != 11500 {
		t.Errorf("ComisionPlataforma = %d, esperado 11500", servicio.ComisionPlataforma)
	}
	if servicio.Pagado {
		t.Error("un servicio recién completado no debe estar pagado")
	}
	if servicio.CompletadoAt == nil {
		t.Error("completar debe estampar completado_at")
	}
	// El gruero asignado en la aceptación se conserva
	if servicio.GrueroID == nil || *servicio.GrueroID != grueroID {
		t.Error("el gruero asignado debe conservarse hasta el final")
	}
}

func TestCambiarEstadoRechazaSaltos(t *testing.T) {
	store := newFakeStore()
	grueroID := uuid.New()

	tests := []struct {
		name  string
		desde models.EstadoServicio
		hacia models.EstadoServicio
	}{
		{"solicitado no salta a en_camino", models.EstadoServicioSolicitado, models.EstadoServicioEnCamino},
		{"solicitado no salta a en_sitio", models.EstadoServicioSolicitado, models.EstadoServicioEnSitio},
		{"aceptado no retrocede", models.EstadoServicioAceptado, models.EstadoServicioSolicitado},
		{"en_sitio no retrocede", models.EstadoServicioEnSitio, models.EstadoServicioEnCamino},
	}

	svc := newServicioService(store)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := store.addServicio(models.Servicio{ClienteID: uuid.New(), GrueroID: &grueroID, Estado: tt.desde})
			_, err := svc.CambiarEstado(id, tt.hacia, &grueroID)
			var ste *models.StateTransitionError
			if !errors.As(err, &ste) {
				t.Fatalf("esperado StateTransitionError, got %v", err)
			}
			if store.servicio(id).Estado != tt.desde {
				t.Error("el estado no debe cambiar ante transición inválida")
			}
		})
	}
}

func TestCambiarEstadoValidaciones(t *testing.T) {
	store := newFakeStore()
	id := store.addServicio(models.Servicio{ClienteID: uuid.New(), Estado: models.EstadoServicioSolicitado})
	svc := newServicioService(store)

	var ve *models.ValidationError
	if _, err := svc.CambiarEstado(id, models.EstadoServicio("PERDIDO"), nil); !errors.As(err, &ve) {
		t.Errorf("estado desconocido debe fallar con ValidationError, got %v", err)
	}
	if _, err := svc.CambiarEstado(id, models.EstadoServicioCompletado, nil); !errors.As(err, &ve) {
		t.Errorf("COMPLETADO por CambiarEstado debe fallar con ValidationError, got %v", err)
	}
	if _, err := svc.CambiarEstado(id, models.EstadoServicioCancelado, nil); !errors.As(err, &ve) {
		t.Errorf("CANCELADO por CambiarEstado debe fallar con ValidationError, got %v", err)
	}
	if _, err := svc.CambiarEstado(id, models.EstadoServicioAceptado, nil); !errors.As(err, &ve) {
		t.Errorf("aceptar sin gruero debe fallar con ValidationError, got %v", err)
	}
}

func TestCompletarValidaMontos(t *testing.T) {
	store := newFakeStore()
	grueroID := uuid.New()
	id := store.addServicio(models.Servicio{ClienteID: uuid.New(), GrueroID: &grueroID, Estado: models.EstadoServicioEnSitio})
	svc := newServicioService(store)

	var ve *models.ValidationError
	if _, err := svc.Completar(id, -1, 38500); !errors.As(err, &ve) {
		t.Errorf("total_cliente negativo debe fallar, got %v", err)
	}
	if _, err := svc.Completar(id, 50000, -1); !errors.As(err, &ve) {
		t.Errorf("total_gruero negativo debe fallar, got %v", err)
	}
	if store.servicio(id).Estado != models.EstadoServicioEnSitio {
		t.Error("el estado no debe cambiar ante validación fallida")
	}

	// Montos en cero son legítimos (p. ej. cortesía)
	servicio, err := svc.Completar(id, 0, 0)
	if err != nil {
		t.Fatalf("completar con montos en cero: %v", err)
	}
	if servicio.ComisionPlataforma != 0 {
		t.Errorf("ComisionPlataforma = %d, esperado 0", servicio.ComisionPlataforma)
	}
}

func TestCompletarSoloDesdeEnSitio(t *testing.T) {
	store := newFakeStore()
	grueroID := uuid.New()
	svc := newServicioService(store)

	for _, desde := range []models.EstadoServicio{
		models.EstadoServicioSolicitado,
		models.EstadoServicioAceptado,
		models.EstadoServicioEnCamino,
		models.EstadoServicioCompletado,
		models.EstadoServicioCancelado,
	} {
		id := store.addServicio(models.Servicio{ClienteID: uuid.New(), GrueroID: &grueroID, Estado: desde})
		_, err := svc.Completar(id, 50000, 38500)
		var ste *models.StateTransitionError
		if !errors.As(err, &ste) {
			t.Errorf("completar desde %s debe fallar con StateTransitionError, got %v", desde, err)
		}
	}
}

func TestCancelarDesdeCualquierEstadoActivo(t *testing.T) {
	store := newFakeStore()
	grueroID := uuid.New()
	svc := newServicioService(store)

	for _, desde := range []models.EstadoServicio{
		models.EstadoServicioSolicitado,
		models.EstadoServicioAceptado,
		models.EstadoServicioEnCamino,
		models.EstadoServicioEnSitio,
	} {
		id := store.addServicio(models.Servicio{ClienteID: uuid.New(), GrueroID: &grueroID, Estado: desde})
		servicio, err := svc.Cancelar(id, "cliente desistió")
		if err != nil {
			t.Fatalf("cancelar desde %s: %v", desde, err)
		}
		if servicio.Estado != models.EstadoServicioCancelado {
			t.Errorf("Estado = %s, esperado CANCELADO", servicio.Estado)
		}
		if servicio.MotivoCancelacion == nil || *servicio.MotivoCancelacion != "cliente desistió" {
			t.Errorf("MotivoCancelacion = %v", servicio.MotivoCancelacion)
		}
		if servicio.CanceladoAt == nil {
			t.Error("cancelar debe estampar cancelado_at")
		}
		// Los montos quedan en cero
		if servicio.TotalCliente != 0 || servicio.TotalGruero != 0 || servicio.ComisionPlataforma != 0 {
			t.Error("un servicio cancelado no debe registrar montos")
		}
	}
}

func TestCancelarGuardas(t *testing.T) {
	store := newFakeStore()
	grueroID := uuid.New()
	svc := newServicioService(store)

	id := store.addServicio(models.Servicio{ClienteID: uuid.New(), GrueroID: &grueroID, Estado: models.EstadoServicioEnCamino})
	var ve *models.ValidationError
	if _, err := svc.Cancelar(id, "   "); !errors.As(err, &ve) {
		t.Errorf("cancelar sin motivo debe fallar con ValidationError, got %v", err)
	}

	// Un servicio terminal no se cancela
	for _, desde := range []models.EstadoServicio{models.EstadoServicioCompletado, models.EstadoServicioCancelado} {
		id := store.addServicio(models.Servicio{ClienteID: uuid.New(), GrueroID: &grueroID, Estado: desde})
		_, err := svc.Cancelar(id, "tarde")
		var ste *models.StateTransitionError
		if !errors.As(err, &ste) {
			t.Errorf("cancelar desde %s debe fallar con StateTransitionError, got %v", desde, err)
		}
	}
}

func TestGetServicioInexistente(t *testing.T) {
	svc := newServicioService(newFakeStore())
	var nf *models.NotFoundError
	if _, err := svc.GetServicio(uuid.New()); !errors.As(err, &nf) {
		t.Errorf("esperado NotFoundError, got %v", err)
	}
}

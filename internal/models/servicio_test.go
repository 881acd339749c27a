package models

import "testing"

func TestPuedeTransicionarServicio(t *testing.T) {
	tests := []struct {
		name     string
		desde    EstadoServicio
		hacia    EstadoServicio
		esperado bool
	}{
		{"solicitado a aceptado", EstadoServicioSolicitado, EstadoServicioAceptado, true},
		{"solicitado a cancelado", EstadoServicioSolicitado, EstadoServicioCancelado, true},
		{"solicitado a en_camino salta etapa", EstadoServicioSolicitado, EstadoServicioEnCamino, false},
		{"solicitado a completado salta etapas", EstadoServicioSolicitado, EstadoServicioCompletado, false},
		{"aceptado a en_camino", EstadoServicioAceptado, EstadoServicioEnCamino, true},
		{"aceptado a cancelado", EstadoServicioAceptado, EstadoServicioCancelado, true},
		{"aceptado a solicitado retrocede", EstadoServicioAceptado, EstadoServicioSolicitado, false},
		{"en_camino a en_sitio", EstadoServicioEnCamino, EstadoServicioEnSitio, true},
		{"en_camino a cancelado", EstadoServicioEnCamino, EstadoServicioCancelado, true},
		{"en_camino a completado salta etapa", EstadoServicioEnCamino, EstadoServicioCompletado, false},
		{"en_sitio a completado", EstadoServicioEnSitio, EstadoServicioCompletado, true},
		{"en_sitio a cancelado", EstadoServicioEnSitio, EstadoServicioCancelado, true},
		{"en_sitio a en_camino retrocede", EstadoServicioEnSitio, EstadoServicioEnCamino, false},
		{"completado no sale", EstadoServicioCompletado, EstadoServicioCancelado, false},
		{"completado no reabre", EstadoServicioCompletado, EstadoServicioEnSitio, false},
		{"cancelado no sale", EstadoServicioCancelado, EstadoServicioSolicitado, false},
		{"cancelado no completa", EstadoServicioCancelado, EstadoServicioCompletado, false},
		{"estado desconocido no transiciona", EstadoServicio("PERDIDO"), EstadoServicioAceptado, false},
		{"hacia estado desconocido", EstadoServicioSolicitado, EstadoServicio("PERDIDO"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PuedeTransicionar(tt.desde, tt.hacia); got != tt.esperado {
				t.Errorf("PuedeTransicionar(%s, %s) = %v, esperado %v", tt.desde, tt.hacia, got, tt.esperado)
			}
		})
	}
}

func TestEstadoServicioEsTerminal(t *testing.T) {
	terminales := map[EstadoServicio]bool{
		EstadoServicioSolicitado: false,
		EstadoServicioAceptado:   false,
		EstadoServicioEnCamino:   false,
		EstadoServicioEnSitio:    false,
		EstadoServicioCompletado: true,
		EstadoServicioCancelado:  true,
	}
	for estado, esperado := range terminales {
		if got := estado.EsTerminal(); got != esperado {
			t.Errorf("%s.EsTerminal() = %v, esperado %v", estado, got, esperado)
		}
	}
}

func TestEstadoServicioEsValido(t *testing.T) {
	for _, estado := range []EstadoServicio{
		EstadoServicioSolicitado, EstadoServicioAceptado, EstadoServicioEnCamino,
		EstadoServicioEnSitio, EstadoServicioCompletado, EstadoServicioCancelado,
	} {
		if !estado.EsValido() {
			t.Errorf("%s.EsValido() = false, esperado true", estado)
		}
	}
	if EstadoServicio("PERDIDO").EsValido() {
		t.Error("un estado desconocido no debe ser válido")
	}
}

func TestComision(t *testing.T) {
	tests := []struct {
		name         string
		totalCliente int64
		totalGruero  int64
		esperado     int64
	}{
		{"comision positiva", 50000, 38500, 11500},
		{"sin margen", 40000, 40000, 0},
		{"montos en cero", 0, 0, 0},
		{"margen negativo se conserva", 30000, 32000, -2000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Comision(tt.totalCliente, tt.totalGruero); got != tt.esperado {
				t.Errorf("Comision(%d, %d) = %d, esperado %d", tt.totalCliente, tt.totalGruero, got, tt.esperado)
			}
		})
	}
}

package entity

import (
	"time"
)

// Estados de un servicio. Single source for validation and display.
const (
	EstadoPendiente  = "Pendiente"
	EstadoProduccion = "En producción"
	EstadoGarantia   = "Garantía"
	EstadoEntregado  = "Entregado"
)

// Estados lists every valid estado, in display order.
var Estados = []string{EstadoPendiente, EstadoProduccion, EstadoGarantia, EstadoEntregado}

// Prioridades lists every valid prioridad. Advisory only, nothing schedules off it.
var Prioridades = []string{"24h", "48h", "72h", "Normal"}

// Materiales lists every valid material.
var Materiales = []string{"Oro de 10k", "Oro de 14k", "Oro de 18k", "Plata", "Otro"}

// Servicio is one repair/fabrication job.
//
// Code is the human-facing identifier, assigned by the store on create and
// immutable afterwards. Estado has no enforced transition order: staff may set
// any value directly.
type Servicio struct {
	ID   string `json:"id" gorm:"primaryKey;size:32"`
	Code string `json:"code" gorm:"size:32;uniqueIndex;not null"`

	Cliente  string `json:"cliente" gorm:"size:500;not null"`
	Telefono string `json:"telefono" gorm:"size:50;not null"`
	Maquina  string `json:"maquina" gorm:"size:500;not null"`
	Agente   string `json:"agente" gorm:"size:500;not null"`
	Almacen  string `json:"almacen" gorm:"size:500;not null"`

	Fecha string `json:"fecha" gorm:"size:10;not null"` // YYYY-MM-DD
	Hora  string `json:"hora" gorm:"size:8;not null"`   // HH:MM or HH:MM:SS

	Estado    string `json:"estado" gorm:"size:20;not null;default:Pendiente"`
	Prioridad string `json:"prioridad" gorm:"size:10;not null;default:Normal"`

	Descripcion string `json:"descripcion" gorm:"type:text;not null"`
	Material    string `json:"material" gorm:"size:50;not null"`

	Abono      float64 `json:"abono" gorm:"type:decimal(14,2);not null;default:0"`
	CostoFinal float64 `json:"costo_final" gorm:"type:decimal(14,2);not null;default:0"`

	AbonoPagado      bool `json:"abono_pagado" gorm:"not null;default:false"`
	CostoFinalPagado bool `json:"costo_final_pagado" gorm:"not null;default:false"`

	CotizacionURL string `json:"cotizacion_url" gorm:"size:512"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Servicio) TableName() string {
	return "servicios"
}

// PagoFinal derives the remaining payment. Not persisted, always recomputed.
func (s *Servicio) PagoFinal() float64 {
	return s.CostoFinal - s.Abono
}

// EstadoValido reports whether v is a member of Estados.
func EstadoValido(v string) bool { return contains(Estados, v) }

// PrioridadValida reports whether v is a member of Prioridades.
func PrioridadValida(v string) bool { return contains(Prioridades, v) }

// MaterialValido reports whether v is a member of Materiales.
func MaterialValido(v string) bool { return contains(Materiales, v) }

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

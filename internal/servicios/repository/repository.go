package repository

import (
	"context"
	"errors"

	"github.com/JulianAgudelo12/Servicio-de-facturaci-n/internal/servicios/entity"
)

var (
	ErrNotFound = errors.New("record not found")
)

// MaxLimit caps how many rows a single list call may return.
const MaxLimit = 500

// DefaultLimit applies when the caller does not ask for one.
const DefaultLimit = 100

// Filtro carries the list parameters. Q matches case-insensitively across
// code, cliente, telefono, maquina, descripcion, material, agente and almacen
// with OR semantics; every other filter narrows the result (AND).
type Filtro struct {
	Q         string
	Estado    string
	Maquina   string
	Prioridad string
	Agente    string
	Almacen   string

	Desde string // fecha >= Desde (YYYY-MM-DD)
	Hasta string // fecha <= Hasta

	AbonoMin      *float64
	AbonoMax      *float64
	CostoFinalMin *float64
	CostoFinalMax *float64

	AbonoPagado      *bool
	CostoFinalPagado *bool

	Limit  int
	Offset int

	OrderField string // member of OrderFields; defaults to created_at
	OrderDesc  bool
}

// OrderFields is the sort-field allow-list.
var OrderFields = map[string]bool{
	"created_at":  true,
	"fecha":       true,
	"cliente":     true,
	"costo_final": true,
	"abono":       true,
	"estado":      true,
	"prioridad":   true,
}

// ServicioRepo is the persistence surface for service records.
type ServicioRepo interface {
	List(ctx context.Context, f Filtro) ([]entity.Servicio, error)
	// FindByCode resolves by exact code first, then falls back to a
	// case-insensitive match. ErrNotFound when neither resolves.
	FindByCode(ctx context.Context, code string) (*entity.Servicio, error)
	Create(ctx context.Context, s *entity.Servicio) error
	// Update persists every field (full replace).
	Update(ctx context.Context, s *entity.Servicio) error
	// DeleteByCodes removes all matching rows in one statement and reports
	// how many actually existed.
	DeleteByCodes(ctx context.Context, codes []string) (int64, error)
	// NextCode returns the next store-assigned service code.
	NextCode(ctx context.Context) (string, error)
}

// Clamp normalizes limit/offset and the sort field.
func (f *Filtro) Clamp() {
	if f.Limit <= 0 {
		f.Limit = DefaultLimit
	}
	if f.Limit > MaxLimit {
		f.Limit = MaxLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	if !OrderFields[f.OrderField] {
		f.OrderField = "created_at"
		f.OrderDesc = true
	}
}

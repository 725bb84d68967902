package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/JulianAgudelo12/Servicio-de-facturaci-n/internal/servicios/entity"
)

// MemoryServicioRepo is an in-memory ServicioRepo with the same observable
// semantics as the Postgres one. Handler and service tests run against it.
type MemoryServicioRepo struct {
	mu       sync.RWMutex
	byID     map[string]entity.Servicio
	nextCode int64
}

func NewMemoryServicioRepo() *MemoryServicioRepo {
	return &MemoryServicioRepo{byID: make(map[string]entity.Servicio)}
}

func (r *MemoryServicioRepo) List(ctx context.Context, f Filtro) ([]entity.Servicio, error) {
	f.Clamp()

	r.mu.RLock()
	items := make([]entity.Servicio, 0, len(r.byID))
	for _, s := range r.byID {
		if matches(s, f) {
			items = append(items, s)
		}
	}
	r.mu.RUnlock()

	sortItems(items, f.OrderField, f.OrderDesc)

	if f.Offset >= len(items) {
		return []entity.Servicio{}, nil
	}
	items = items[f.Offset:]
	if len(items) > f.Limit {
		items = items[:f.Limit]
	}
	return items, nil
}

func matches(s entity.Servicio, f Filtro) bool {
	if f.Q != "" {
		q := strings.ToLower(f.Q)
		hit := false
		for _, field := range []string{s.Code, s.Cliente, s.Telefono, s.Maquina, s.Descripcion, s.Material, s.Agente, s.Almacen} {
			if strings.Contains(strings.ToLower(field), q) {
				hit = true
				break
			}
		}
		if !hit {
			return false
		}
	}
	if f.Estado != "" && s.Estado != f.Estado {
		return false
	}
	if f.Maquina != "" && s.Maquina != f.Maquina {
		return false
	}
	if f.Prioridad != "" && s.Prioridad != f.Prioridad {
		return false
	}
	if f.Agente != "" && s.Agente != f.Agente {
		return false
	}
	if f.Almacen != "" && s.Almacen != f.Almacen {
		return false
	}
	if f.Desde != "" && s.Fecha < f.Desde {
		return false
	}
	if f.Hasta != "" && s.Fecha > f.Hasta {
		return false
	}
	if f.AbonoMin != nil && s.Abono < *f.AbonoMin {
		return false
	}
	if f.AbonoMax != nil && s.Abono > *f.AbonoMax {
		return false
	}
	if f.CostoFinalMin != nil && s.CostoFinal < *f.CostoFinalMin {
		return false
	}
	if f.CostoFinalMax != nil && s.CostoFinal > *f.CostoFinalMax {
		return false
	}
	if f.AbonoPagado != nil && s.AbonoPagado != *f.AbonoPagado {
		return false
	}
	if f.CostoFinalPagado != nil && s.CostoFinalPagado != *f.CostoFinalPagado {
		return false
	}
	return true
}

func sortItems(items []entity.Servicio, field string, desc bool) {
	less := func(a, b entity.Servicio) bool {
		switch field {
		case "fecha":
			return a.Fecha < b.Fecha
		case "cliente":
			return a.Cliente < b.Cliente
		case "costo_final":
			return a.CostoFinal < b.CostoFinal
		case "abono":
			return a.Abono < b.Abono
		case "estado":
			return a.Estado < b.Estado
		case "prioridad":
			return a.Prioridad < b.Prioridad
		default:
			return a.CreatedAt.Before(b.CreatedAt)
		}
	}
	sort.SliceStable(items, func(i, j int) bool {
		if desc {
			return less(items[j], items[i])
		}
		return less(items[i], items[j])
	})
}

func (r *MemoryServicioRepo) FindByCode(ctx context.Context, code string) (*entity.Servicio, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, s := range r.byID {
		if s.Code == code {
			out := s
			return &out, nil
		}
	}
	for _, s := range r.byID {
		if strings.EqualFold(s.Code, code) {
			out := s
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryServicioRepo) Create(ctx context.Context, s *entity.Servicio) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now()
	}
	s.UpdatedAt = time.Now()
	r.byID[s.ID] = *s
	return nil
}

func (r *MemoryServicioRepo) Update(ctx context.Context, s *entity.Servicio) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s.UpdatedAt = time.Now()
	r.byID[s.ID] = *s
	return nil
}

func (r *MemoryServicioRepo) DeleteByCodes(ctx context.Context, codes []string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	set := make(map[string]bool, len(codes))
	for _, c := range codes {
		set[c] = true
	}

	var deleted int64
	for id, s := range r.byID {
		if set[s.Code] {
			delete(r.byID, id)
			deleted++
		}
	}
	return deleted, nil
}

func (r *MemoryServicioRepo) NextCode(ctx context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextCode++
	return fmt.Sprintf("S-%06d", r.nextCode), nil
}

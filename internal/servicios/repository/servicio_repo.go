package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/JulianAgudelo12/Servicio-de-facturaci-n/internal/servicios/entity"
)

// GormServicioRepo persists service records in Postgres.
type GormServicioRepo struct {
	db *gorm.DB
}

func NewGormServicioRepo(db *gorm.DB) *GormServicioRepo {
	return &GormServicioRepo{db: db}
}

// Migrate creates the table and the code sequence.
func (r *GormServicioRepo) Migrate() error {
	if err := r.db.AutoMigrate(&entity.Servicio{}); err != nil {
		return fmt.Errorf("migrate servicios: %w", err)
	}
	if err := r.db.Exec("CREATE SEQUENCE IF NOT EXISTS servicio_code_seq START 1").Error; err != nil {
		return fmt.Errorf("create code sequence: %w", err)
	}
	return nil
}

func (r *GormServicioRepo) List(ctx context.Context, f Filtro) ([]entity.Servicio, error) {
	f.Clamp()

	query := r.db.WithContext(ctx).Model(&entity.Servicio{})

	if f.Q != "" {
		like := "%" + f.Q + "%"
		query = query.Where(
			"code ILIKE ? OR cliente ILIKE ? OR telefono ILIKE ? OR maquina ILIKE ? OR descripcion ILIKE ? OR material ILIKE ? OR agente ILIKE ? OR almacen ILIKE ?",
			like, like, like, like, like, like, like, like)
	}
	if f.Estado != "" {
		query = query.Where("estado = ?", f.Estado)
	}
	if f.Maquina != "" {
		query = query.Where("maquina = ?", f.Maquina)
	}
	if f.Prioridad != "" {
		query = query.Where("prioridad = ?", f.Prioridad)
	}
	if f.Agente != "" {
		query = query.Where("agente = ?", f.Agente)
	}
	if f.Almacen != "" {
		query = query.Where("almacen = ?", f.Almacen)
	}
	if f.Desde != "" {
		query = query.Where("fecha >= ?", f.Desde)
	}
	if f.Hasta != "" {
		query = query.Where("fecha <= ?", f.Hasta)
	}
	if f.AbonoMin != nil {
		query = query.Where("abono >= ?", *f.AbonoMin)
	}
	if f.AbonoMax != nil {
		query = query.Where("abono <= ?", *f.AbonoMax)
	}
	if f.CostoFinalMin != nil {
		query = query.Where("costo_final >= ?", *f.CostoFinalMin)
	}
	if f.CostoFinalMax != nil {
		query = query.Where("costo_final <= ?", *f.CostoFinalMax)
	}
	if f.AbonoPagado != nil {
		query = query.Where("abono_pagado = ?", *f.AbonoPagado)
	}
	if f.CostoFinalPagado != nil {
		query = query.Where("costo_final_pagado = ?", *f.CostoFinalPagado)
	}

	direction := "ASC"
	if f.OrderDesc {
		direction = "DESC"
	}

	var items []entity.Servicio
	err := query.
		Order(f.OrderField + " " + direction).
		Offset(f.Offset).
		Limit(f.Limit).
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("list servicios: %w", err)
	}
	return items, nil
}

func (r *GormServicioRepo) FindByCode(ctx context.Context, code string) (*entity.Servicio, error) {
	var s entity.Servicio
	err := r.db.WithContext(ctx).Where("code = ?", code).First(&s).Error
	if err == nil {
		return &s, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("find servicio: %w", err)
	}

	// Exact match missed: case-insensitive fallback.
	err = r.db.WithContext(ctx).Where("LOWER(code) = LOWER(?)", code).First(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find servicio: %w", err)
	}
	return &s, nil
}

func (r *GormServicioRepo) Create(ctx context.Context, s *entity.Servicio) error {
	if err := r.db.WithContext(ctx).Create(s).Error; err != nil {
		return fmt.Errorf("create servicio: %w", err)
	}
	return nil
}

func (r *GormServicioRepo) Update(ctx context.Context, s *entity.Servicio) error {
	if err := r.db.WithContext(ctx).Save(s).Error; err != nil {
		return fmt.Errorf("update servicio: %w", err)
	}
	return nil
}

func (r *GormServicioRepo) DeleteByCodes(ctx context.Context, codes []string) (int64, error) {
	res := r.db.WithContext(ctx).Where("code IN ?", codes).Delete(&entity.Servicio{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete servicios: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *GormServicioRepo) NextCode(ctx context.Context) (string, error) {
	var n int64
	err := r.db.WithContext(ctx).Raw("SELECT nextval('servicio_code_seq')").Scan(&n).Error
	if err != nil {
		return "", fmt.Errorf("next servicio code: %w", err)
	}
	return fmt.Sprintf("S-%06d", n), nil
}

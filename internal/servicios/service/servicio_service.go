package service

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/JulianAgudelo12/Servicio-de-facturaci-n/internal/servicios/entity"
	"github.com/JulianAgudelo12/Servicio-de-facturaci-n/internal/servicios/repository"
	"github.com/JulianAgudelo12/Servicio-de-facturaci-n/internal/storage"
)

// Adjunto is a validated quotation attachment ready to upload. The service
// closes Reader once the upload path is done with it; large multipart bodies
// spill to a temp file whose descriptor would otherwise leak.
type Adjunto struct {
	Reader      io.ReadCloser
	Filename    string
	Size        int64
	ContentType string
}

// ServicioService orchestrates record persistence and attachment storage.
// A create that uploads a file and inserts a record is two external calls
// with no transaction between them: on insert failure the staged object is
// removed best-effort, and a cleanup failure is logged as a warning distinct
// from the primary error.
type ServicioService struct {
	repo   repository.ServicioRepo
	store  storage.Store
	logger *zap.Logger
}

func NewServicioService(repo repository.ServicioRepo, store storage.Store, logger *zap.Logger) *ServicioService {
	return &ServicioService{repo: repo, store: store, logger: logger}
}

func (s *ServicioService) List(ctx context.Context, f repository.Filtro) ([]entity.Servicio, error) {
	return s.repo.List(ctx, f)
}

func (s *ServicioService) Get(ctx context.Context, code string) (*entity.Servicio, error) {
	return s.repo.FindByCode(ctx, code)
}

// objectName builds a collision-resistant storage key scoped by year.
func objectName(filename string) string {
	return fmt.Sprintf("cotizaciones/%d/%s%s",
		time.Now().Year(), uuid.New().String()[:8], filepath.Ext(filename))
}

// Create assigns the store-generated code, uploads the optional attachment
// and inserts the record.
func (s *ServicioService) Create(ctx context.Context, sv *entity.Servicio, file *Adjunto) (*entity.Servicio, error) {
	if file != nil {
		defer file.Reader.Close()
	}

	code, err := s.repo.NextCode(ctx)
	if err != nil {
		return nil, fmt.Errorf("assign code: %w", err)
	}
	sv.ID = uuid.New().String()[:32]
	sv.Code = code

	staged := ""
	if file != nil {
		url, err := s.store.Upload(ctx, objectName(file.Filename), file.Reader, file.Size, file.ContentType)
		if err != nil {
			return nil, fmt.Errorf("upload cotización: %w", err)
		}
		sv.CotizacionURL = url
		staged = url
	}

	if err := s.repo.Create(ctx, sv); err != nil {
		if staged != "" {
			if cleanupErr := s.store.Remove(ctx, staged); cleanupErr != nil {
				s.logger.Warn("Failed to clean up staged cotización after insert failure",
					zap.String("object_url", staged),
					zap.Error(cleanupErr))
			}
		}
		return nil, err
	}
	return sv, nil
}

// Update resolves the target, replaces every editable field and persists.
// A new attachment replaces the stored one; the previous object is deleted
// best-effort after the record is saved, tolerating "already gone".
func (s *ServicioService) Update(ctx context.Context, code string, campos *entity.Servicio, file *Adjunto) (*entity.Servicio, error) {
	if file != nil {
		defer file.Reader.Close()
	}

	existing, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	previous := existing.CotizacionURL
	staged := ""
	if file != nil {
		url, err := s.store.Upload(ctx, objectName(file.Filename), file.Reader, file.Size, file.ContentType)
		if err != nil {
			return nil, fmt.Errorf("upload cotización: %w", err)
		}
		existing.CotizacionURL = url
		staged = url
	}

	existing.Cliente = campos.Cliente
	existing.Telefono = campos.Telefono
	existing.Maquina = campos.Maquina
	existing.Agente = campos.Agente
	existing.Almacen = campos.Almacen
	existing.Fecha = campos.Fecha
	existing.Hora = campos.Hora
	existing.Estado = campos.Estado
	existing.Prioridad = campos.Prioridad
	existing.Descripcion = campos.Descripcion
	existing.Material = campos.Material
	existing.Abono = campos.Abono
	existing.CostoFinal = campos.CostoFinal
	existing.AbonoPagado = campos.AbonoPagado
	existing.CostoFinalPagado = campos.CostoFinalPagado

	if err := s.repo.Update(ctx, existing); err != nil {
		if staged != "" {
			if cleanupErr := s.store.Remove(ctx, staged); cleanupErr != nil {
				s.logger.Warn("Failed to clean up staged cotización after update failure",
					zap.String("object_url", staged),
					zap.Error(cleanupErr))
			}
		}
		return nil, err
	}

	// The record owns its attachment: once the replace is persisted the old
	// object has no referent left.
	if staged != "" && previous != "" && previous != staged {
		if cleanupErr := s.store.Remove(ctx, previous); cleanupErr != nil {
			s.logger.Warn("Failed to delete replaced cotización",
				zap.String("object_url", previous),
				zap.Error(cleanupErr))
		}
	}

	return existing, nil
}

// Delete removes all records matching the given codes in one operation and
// returns the requested count. Codes that did not exist still count — the
// response reports intent, not verified rows.
func (s *ServicioService) Delete(ctx context.Context, codes []string) (int, error) {
	deleted, err := s.repo.DeleteByCodes(ctx, codes)
	if err != nil {
		return 0, err
	}
	if int(deleted) != len(codes) {
		s.logger.Info("Bulk delete matched fewer rows than requested",
			zap.Int("requested", len(codes)),
			zap.Int64("deleted", deleted))
	}
	return len(codes), nil
}

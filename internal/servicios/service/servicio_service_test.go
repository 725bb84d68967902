package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/JulianAgudelo12/Servicio-de-facturaci-n/internal/servicios/entity"
	"github.com/JulianAgudelo12/Servicio-de-facturaci-n/internal/servicios/repository"
	"github.com/JulianAgudelo12/Servicio-de-facturaci-n/internal/servicios/testutil"
)

// failingRepo wraps the memory repo and lets a test fail the next write.
type failingRepo struct {
	*repository.MemoryServicioRepo
	failCreate bool
	failUpdate bool
}

var errInjected = errors.New("injected database failure")

func (r *failingRepo) Create(ctx context.Context, s *entity.Servicio) error {
	if r.failCreate {
		return errInjected
	}
	return r.MemoryServicioRepo.Create(ctx, s)
}

func (r *failingRepo) Update(ctx context.Context, s *entity.Servicio) error {
	if r.failUpdate {
		return errInjected
	}
	return r.MemoryServicioRepo.Update(ctx, s)
}

func sample() *entity.Servicio {
	return &entity.Servicio{
		Cliente:     "Ana",
		Telefono:    "300-123-4567",
		Maquina:     "Laser1",
		Fecha:       "2024-01-15",
		Hora:        "13:00",
		Estado:      entity.EstadoPendiente,
		Prioridad:   "Normal",
		Descripcion: "x",
		Material:    "Oro de 14k",
		Agente:      "Luis",
		Almacen:     "A1",
		CostoFinal:  100000,
	}
}

// trackedReader records whether the attachment stream was closed.
type trackedReader struct {
	io.Reader
	closed bool
}

func (r *trackedReader) Close() error {
	r.closed = true
	return nil
}

func adjunto(content string) *Adjunto {
	return &Adjunto{
		Reader:      &trackedReader{Reader: strings.NewReader(content)},
		Filename:    "cotizacion.pdf",
		Size:        int64(len(content)),
		ContentType: "application/pdf",
	}
}

func TestCreateCleansUpStagedObjectOnInsertFailure(t *testing.T) {
	repo := &failingRepo{MemoryServicioRepo: repository.NewMemoryServicioRepo(), failCreate: true}
	store := testutil.NewFakeStore()
	svc := NewServicioService(repo, store, zap.NewNop())

	_, err := svc.Create(context.Background(), sample(), adjunto("%PDF-1.4"))
	require.ErrorIs(t, err, errInjected)

	// The staged object was removed again: exactly one upload, one removal,
	// and the removed URL points at the uploaded object.
	require.Len(t, store.Objects, 1)
	require.Len(t, store.Removed, 1)
	for name := range store.Objects {
		assert.True(t, strings.HasSuffix(store.Removed[0], name))
	}
}

func TestCreateWithoutAttachmentNeverTouchesStorage(t *testing.T) {
	repo := &failingRepo{MemoryServicioRepo: repository.NewMemoryServicioRepo()}
	store := testutil.NewFakeStore()
	svc := NewServicioService(repo, store, zap.NewNop())

	created, err := svc.Create(context.Background(), sample(), nil)
	require.NoError(t, err)
	assert.Equal(t, "S-000001", created.Code)
	assert.Empty(t, created.CotizacionURL)
	assert.Empty(t, store.Objects)
}

func TestCreateCleanupFailureDoesNotMaskInsertError(t *testing.T) {
	repo := &failingRepo{MemoryServicioRepo: repository.NewMemoryServicioRepo(), failCreate: true}
	store := testutil.NewFakeStore()
	store.FailRemove = true
	svc := NewServicioService(repo, store, zap.NewNop())

	_, err := svc.Create(context.Background(), sample(), adjunto("%PDF-1.4"))
	require.ErrorIs(t, err, errInjected, "caller sees the insert failure, not the cleanup one")
}

func TestUpdateCleansUpStagedObjectOnSaveFailure(t *testing.T) {
	repo := &failingRepo{MemoryServicioRepo: repository.NewMemoryServicioRepo()}
	store := testutil.NewFakeStore()
	svc := NewServicioService(repo, store, zap.NewNop())

	created, err := svc.Create(context.Background(), sample(), adjunto("v1"))
	require.NoError(t, err)
	originalURL := created.CotizacionURL

	repo.failUpdate = true
	_, err = svc.Update(context.Background(), created.Code, sample(), adjunto("v2"))
	require.ErrorIs(t, err, errInjected)

	// Only the staged v2 object was removed; v1 stays referenced.
	require.Len(t, store.Removed, 1)
	assert.NotEqual(t, originalURL, store.Removed[0])

	got, err := svc.Get(context.Background(), created.Code)
	require.NoError(t, err)
	assert.Equal(t, originalURL, got.CotizacionURL)
}

func TestAttachmentReaderIsClosed(t *testing.T) {
	repo := &failingRepo{MemoryServicioRepo: repository.NewMemoryServicioRepo()}
	store := testutil.NewFakeStore()
	svc := NewServicioService(repo, store, zap.NewNop())

	// Success path.
	file := adjunto("v1")
	created, err := svc.Create(context.Background(), sample(), file)
	require.NoError(t, err)
	assert.True(t, file.Reader.(*trackedReader).closed)

	// Update path.
	file = adjunto("v2")
	_, err = svc.Update(context.Background(), created.Code, sample(), file)
	require.NoError(t, err)
	assert.True(t, file.Reader.(*trackedReader).closed)

	// Failure before the upload still closes the stream.
	repo.failCreate = true
	file = adjunto("v3")
	_, err = svc.Create(context.Background(), sample(), file)
	require.Error(t, err)
	assert.True(t, file.Reader.(*trackedReader).closed)
}

func TestUpdateUnknownCodeDoesNotUpload(t *testing.T) {
	repo := &failingRepo{MemoryServicioRepo: repository.NewMemoryServicioRepo()}
	store := testutil.NewFakeStore()
	svc := NewServicioService(repo, store, zap.NewNop())

	_, err := svc.Update(context.Background(), "S-404404", sample(), adjunto("v1"))
	require.ErrorIs(t, err, repository.ErrNotFound)
	assert.Empty(t, store.Objects, "resolution happens before any upload")
}

package invoice

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/JulianAgudelo12/Servicio-de-facturaci-n/internal/config"
	"github.com/JulianAgudelo12/Servicio-de-facturaci-n/internal/servicios/entity"
)

func projectRoot() string {
	_, filename, _, _ := runtime.Caller(0)
	dir := filepath.Dir(filename)
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// testRenderer skips the test when the font assets are not checked out.
func testRenderer(t *testing.T) *Renderer {
	t.Helper()
	root := projectRoot()
	cfg := config.InvoiceConfig{
		FontRegular: filepath.Join(root, "assets", "fonts", "Montserrat-Regular.ttf"),
		FontBold:    filepath.Join(root, "assets", "fonts", "Montserrat-Bold.ttf"),
		LogoPath:    filepath.Join(root, "assets", "logo.png"),
	}
	if _, err := os.Stat(cfg.FontRegular); err != nil {
		t.Skipf("font assets not available: %v", err)
	}
	if _, err := os.Stat(cfg.FontBold); err != nil {
		t.Skipf("font assets not available: %v", err)
	}
	return NewRenderer(cfg, zap.NewNop())
}

func sampleServicio() *entity.Servicio {
	return &entity.Servicio{
		Code:        "S-000042",
		Cliente:     "Ana María Restrepo",
		Telefono:    "300-123-4567",
		Maquina:     "Laser1",
		Agente:      "Luis",
		Almacen:     "A1",
		Fecha:       "2024-01-15",
		Hora:        "13:00",
		Estado:      entity.EstadoPendiente,
		Prioridad:   "Normal",
		Descripcion: "Pulir anillo y ajustar talla",
		Material:    "Oro de 14k",
		Abono:       50000,
		CostoFinal:  250000,
	}
}

func TestRenderProducesPDF(t *testing.T) {
	r := testRenderer(t)

	for _, paper := range []Paper{PaperA4, PaperLetter} {
		out, err := r.Render(sampleServicio(), paper)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(string(out), "%PDF"), "output must be a PDF document")
	}
}

func TestRenderMissingFontIsTerminal(t *testing.T) {
	r := testRenderer(t)
	r.cfg.FontBold = filepath.Join(t.TempDir(), "missing.ttf")

	_, err := r.Render(sampleServicio(), PaperA4)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load invoice fonts")
}

func TestRenderMissingLogoIsNotFatal(t *testing.T) {
	r := testRenderer(t)
	r.cfg.LogoPath = filepath.Join(t.TempDir(), "missing.png")

	out, err := r.Render(sampleServicio(), PaperA4)
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}

func TestObservationsNeverOverlapDescription(t *testing.T) {
	r := testRenderer(t)

	s := sampleServicio()
	s.Descripcion = strings.Repeat("reparación de engaste con revisión de uñas y rodio ", 60)
	require.Greater(t, len(s.Descripcion), 3000)

	doc, err := r.build(s, PaperA4)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, doc.obsStart, doc.descEnd,
		"observations must start at or below the measured end of the description")
}

func TestParsePaper(t *testing.T) {
	assert.Equal(t, PaperA4, ParsePaper(""))
	assert.Equal(t, PaperA4, ParsePaper("a4"))
	assert.Equal(t, PaperLetter, ParsePaper("letter"))
	assert.Equal(t, PaperA4, ParsePaper("legal"))
}

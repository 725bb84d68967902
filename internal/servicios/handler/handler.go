package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/JulianAgudelo12/Servicio-de-facturaci-n/internal/auth"
	"github.com/JulianAgudelo12/Servicio-de-facturaci-n/internal/config"
	"github.com/JulianAgudelo12/Servicio-de-facturaci-n/internal/servicios/invoice"
	"github.com/JulianAgudelo12/Servicio-de-facturaci-n/internal/servicios/service"
)

// Handlers groups every HTTP handler of the API.
type Handlers struct {
	Servicio *ServicioHandler
	Invoice  *InvoiceHandler
	Pages    *PagesHandler
}

func NewHandlers(svc *service.ServicioService, renderer *invoice.Renderer, authClient *auth.Client, cfg *config.Config, logger *zap.Logger) *Handlers {
	dev := cfg.Server.Development()
	return &Handlers{
		Servicio: &ServicioHandler{svc: svc, logger: logger, dev: dev},
		Invoice:  &InvoiceHandler{svc: svc, renderer: renderer, logger: logger, dev: dev},
		Pages:    &PagesHandler{authClient: authClient},
	}
}

// Every error body has the same shape: {"error": message}.

// Fail responds with a caller-specified status and message (validation
// failures, not-found, and the like).
func Fail(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

// Internal responds 500. The underlying failure is surfaced only in
// development mode; production callers get the generic fallback.
func Internal(c *gin.Context, logger *zap.Logger, dev bool, err error, fallback string) {
	logger.Error("Handler failure",
		zap.String("path", c.FullPath()),
		zap.String("request_id", c.GetString("request_id")),
		zap.Error(err))

	msg := fallback
	if dev && err != nil {
		msg = err.Error()
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
}

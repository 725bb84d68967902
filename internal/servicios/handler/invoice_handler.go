package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/JulianAgudelo12/Servicio-de-facturaci-n/internal/servicios/invoice"
	"github.com/JulianAgudelo12/Servicio-de-facturaci-n/internal/servicios/repository"
	"github.com/JulianAgudelo12/Servicio-de-facturaci-n/internal/servicios/service"
)

// InvoiceHandler serves the printable PDF for a service record.
type InvoiceHandler struct {
	svc      *service.ServicioService
	renderer *invoice.Renderer
	logger   *zap.Logger
	dev      bool
}

// Get handles GET /services/:code/invoice?paper=a4|letter.
// Failures return the usual JSON error body, never a truncated PDF.
func (h *InvoiceHandler) Get(c *gin.Context) {
	code := c.Param("code")
	if code == "" || len(code) > maxCodeLen {
		Fail(c, http.StatusBadRequest, "Código de servicio inválido")
		return
	}

	sv, err := h.svc.Get(c.Request.Context(), code)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			Fail(c, http.StatusNotFound, msgNotFound)
			return
		}
		Internal(c, h.logger, h.dev, err, "No se pudo generar la factura")
		return
	}

	paper := invoice.ParsePaper(c.Query("paper"))
	pdf, err := h.renderer.Render(sv, paper)
	if err != nil {
		Internal(c, h.logger, h.dev, err, "No se pudo generar la factura")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", sv.Code+".pdf"))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "application/pdf", pdf)
}

package handler

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/JulianAgudelo12/Servicio-de-facturaci-n/internal/servicios/entity"
	"github.com/JulianAgudelo12/Servicio-de-facturaci-n/internal/servicios/repository"
	"github.com/JulianAgudelo12/Servicio-de-facturaci-n/internal/servicios/service"
	"github.com/JulianAgudelo12/Servicio-de-facturaci-n/internal/servicios/validate"
)

const (
	maxCodeLen    = 100
	maxBulkDelete = 100

	msgNotFound     = "Servicio no encontrado"
	msgGetFailed    = "No se pudo obtener el servicio"
	msgListFailed   = "No se pudo obtener la lista de servicios"
	msgCreateFailed = "No se pudo crear el servicio"
	msgUpdateFailed = "No se pudo actualizar el servicio"
	msgDeleteFailed = "No se pudieron eliminar los servicios"
)

// ServicioHandler translates HTTP requests into validated operations on the
// service layer.
type ServicioHandler struct {
	svc    *service.ServicioService
	logger *zap.Logger
	dev    bool
}

// List handles GET /services.
func (h *ServicioHandler) List(c *gin.Context) {
	f, errMsg := parseFiltro(c)
	if errMsg != "" {
		Fail(c, http.StatusBadRequest, errMsg)
		return
	}

	items, err := h.svc.List(c.Request.Context(), f)
	if err != nil {
		Internal(c, h.logger, h.dev, err, msgListFailed)
		return
	}
	c.JSON(http.StatusOK, gin.H{"services": items})
}

// parseFiltro validates and assembles the list filter. Returns a non-empty
// message on the first invalid parameter.
func parseFiltro(c *gin.Context) (repository.Filtro, string) {
	f := repository.Filtro{
		Q:         validate.Sanitize(c.Query("q"), 0),
		Estado:    c.Query("estado"),
		Maquina:   validate.Sanitize(c.Query("maquina"), 0),
		Prioridad: c.Query("prioridad"),
		Agente:    validate.Sanitize(c.Query("agente"), 0),
		Almacen:   validate.Sanitize(c.Query("almacen"), 0),
	}

	if desde := c.Query("desde"); desde != "" {
		if err := validate.Fecha(desde, "La fecha inicial"); err != nil {
			return f, err.Error()
		}
		f.Desde = desde
	}
	if hasta := c.Query("hasta"); hasta != "" {
		if err := validate.Fecha(hasta, "La fecha final"); err != nil {
			return f, err.Error()
		}
		f.Hasta = hasta
	}

	moneyParams := []struct {
		key   string
		label string
		dst   **float64
	}{
		{"abono_min", "El abono mínimo", &f.AbonoMin},
		{"abono_max", "El abono máximo", &f.AbonoMax},
		{"costo_final_min", "El costo final mínimo", &f.CostoFinalMin},
		{"costo_final_max", "El costo final máximo", &f.CostoFinalMax},
	}
	for _, p := range moneyParams {
		amount, ok, err := validate.Monto(c.Query(p.key), p.label, true)
		if err != nil {
			return f, err.Error()
		}
		if ok {
			v := amount
			*p.dst = &v
		}
	}

	if raw := c.Query("abono_pagado"); raw != "" {
		v := raw == "true"
		f.AbonoPagado = &v
	}
	if raw := c.Query("costo_final_pagado"); raw != "" {
		v := raw == "true"
		f.CostoFinalPagado = &v
	}

	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			f.Limit = n
		}
	}
	if raw := c.Query("offset"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			f.Offset = n
		}
	}

	// order=campo.desc | campo.asc; anything outside the allow-list falls
	// back to created_at descending.
	if raw := c.Query("order"); raw != "" {
		field, dir, found := strings.Cut(raw, ".")
		f.OrderField = field
		f.OrderDesc = !found || dir == "desc"
	} else {
		f.OrderField = "created_at"
		f.OrderDesc = true
	}

	return f, ""
}

// Get handles GET /services/:code.
func (h *ServicioHandler) Get(c *gin.Context) {
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
		Internal(c, h.logger, h.dev, err, msgGetFailed)
		return
	}
	c.JSON(http.StatusOK, gin.H{"service": sv})
}

// Create handles POST /services (multipart form).
func (h *ServicioHandler) Create(c *gin.Context) {
	campos, adjunto, errMsg := h.parseForm(c)
	if errMsg != "" {
		Fail(c, http.StatusBadRequest, errMsg)
		return
	}

	sv, err := h.svc.Create(c.Request.Context(), campos, adjunto)
	if err != nil {
		Internal(c, h.logger, h.dev, err, msgCreateFailed)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"service": sv})
}

// Update handles PUT /services/:code (multipart form, full replace).
func (h *ServicioHandler) Update(c *gin.Context) {
	code := c.Param("code")
	if code == "" || len(code) > maxCodeLen {
		Fail(c, http.StatusBadRequest, "Código de servicio inválido")
		return
	}

	campos, adjunto, errMsg := h.parseForm(c)
	if errMsg != "" {
		Fail(c, http.StatusBadRequest, errMsg)
		return
	}

	sv, err := h.svc.Update(c.Request.Context(), code, campos, adjunto)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			Fail(c, http.StatusNotFound, msgNotFound)
			return
		}
		Internal(c, h.logger, h.dev, err, msgUpdateFailed)
		return
	}
	c.JSON(http.StatusOK, gin.H{"service": sv})
}

type deleteRequest struct {
	Codes []string `json:"codes"`
}

// Delete handles DELETE /services (bulk, JSON body).
func (h *ServicioHandler) Delete(c *gin.Context) {
	var req deleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, http.StatusBadRequest, "Cuerpo de la petición inválido")
		return
	}
	if len(req.Codes) == 0 {
		Fail(c, http.StatusBadRequest, "Debe indicar al menos un código")
		return
	}
	if len(req.Codes) > maxBulkDelete {
		Fail(c, http.StatusBadRequest, "No se pueden eliminar más de 100 servicios por petición")
		return
	}
	for _, code := range req.Codes {
		if strings.TrimSpace(code) == "" {
			Fail(c, http.StatusBadRequest, "Todos los códigos deben ser cadenas no vacías")
			return
		}
	}

	deleted, err := h.svc.Delete(c.Request.Context(), req.Codes)
	if err != nil {
		Internal(c, h.logger, h.dev, err, msgDeleteFailed)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "deleted": deleted})
}

// parseForm extracts, sanitizes and validates every field of the multipart
// submission. Validation is eager and exhaustive per field before any
// external call; the first failure wins.
func (h *ServicioHandler) parseForm(c *gin.Context) (*entity.Servicio, *service.Adjunto, string) {
	cliente := validate.Sanitize(c.PostForm("cliente"), 0)
	telefono := validate.Sanitize(c.PostForm("telefono"), 0)
	maquina := validate.Sanitize(c.PostForm("maquina"), 0)
	fecha := validate.Sanitize(c.PostForm("fecha"), 0)
	hora := validate.Sanitize(c.PostForm("hora"), 0)
	estado := validate.Sanitize(c.PostForm("estado"), 0)
	descripcion := validate.Sanitize(c.PostForm("descripcion"), validate.MaxDescripcion)
	material := validate.Sanitize(c.PostForm("material"), 0)
	agente := validate.Sanitize(c.PostForm("agente"), 0)
	almacen := validate.Sanitize(c.PostForm("almacen"), 0)
	prioridad := validate.Sanitize(c.PostForm("prioridad"), 0)

	if err := validate.Texto(cliente, "El cliente", 0, false); err != nil {
		return nil, nil, err.Error()
	}
	if err := validate.Telefono(telefono, "El teléfono"); err != nil {
		return nil, nil, err.Error()
	}
	if err := validate.Texto(maquina, "La máquina", 0, false); err != nil {
		return nil, nil, err.Error()
	}
	if err := validate.Fecha(fecha, "La fecha"); err != nil {
		return nil, nil, err.Error()
	}
	if err := validate.Hora(hora, "La hora"); err != nil {
		return nil, nil, err.Error()
	}
	if err := validate.Enum(estado, "El estado", entity.Estados); err != nil {
		return nil, nil, err.Error()
	}
	if err := validate.Texto(descripcion, "La descripción", validate.MaxDescripcion, false); err != nil {
		return nil, nil, err.Error()
	}
	if err := validate.Enum(material, "El material", entity.Materiales); err != nil {
		return nil, nil, err.Error()
	}
	if err := validate.Texto(agente, "El agente", 0, false); err != nil {
		return nil, nil, err.Error()
	}
	if err := validate.Texto(almacen, "El almacén", 0, false); err != nil {
		return nil, nil, err.Error()
	}
	if err := validate.Enum(prioridad, "La prioridad", entity.Prioridades); err != nil {
		return nil, nil, err.Error()
	}

	abono, _, err := validate.Monto(c.PostForm("abono"), "El abono", false)
	if err != nil {
		return nil, nil, err.Error()
	}
	costoFinal, _, err := validate.Monto(c.PostForm("costo_final"), "El costo final", false)
	if err != nil {
		return nil, nil, err.Error()
	}
	if abono > costoFinal {
		return nil, nil, "El abono no puede ser mayor que el costo final"
	}

	adjunto, errMsg := h.parseAdjunto(c)
	if errMsg != "" {
		return nil, nil, errMsg
	}

	campos := &entity.Servicio{
		Cliente:          cliente,
		Telefono:         telefono,
		Maquina:          maquina,
		Agente:           agente,
		Almacen:          almacen,
		Fecha:            fecha,
		Hora:             hora,
		Estado:           estado,
		Prioridad:        prioridad,
		Descripcion:      descripcion,
		Material:         material,
		Abono:            abono,
		CostoFinal:       costoFinal,
		AbonoPagado:      c.PostForm("abono_pagado") == "true",
		CostoFinalPagado: c.PostForm("costo_final_pagado") == "true",
	}
	return campos, adjunto, ""
}

// parseAdjunto validates and opens the optional quotation file.
func (h *ServicioHandler) parseAdjunto(c *gin.Context) (*service.Adjunto, string) {
	fh, err := c.FormFile("cotizacionFile")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, ""
		}
		return nil, "No se pudo leer el archivo adjunto"
	}
	return h.openAdjunto(fh)
}

func (h *ServicioHandler) openAdjunto(fh *multipart.FileHeader) (*service.Adjunto, string) {
	if err := validate.Archivo(fh); err != nil {
		return nil, err.Error()
	}
	f, err := fh.Open()
	if err != nil {
		return nil, "No se pudo leer el archivo adjunto"
	}
	return &service.Adjunto{
		Reader:      f,
		Filename:    fh.Filename,
		Size:        fh.Size,
		ContentType: fh.Header.Get("Content-Type"),
	}, ""
}

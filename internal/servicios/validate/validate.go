// Package validate holds the pure field validators used by the HTTP handlers.
// Validators never panic and never mutate their input: they return nil when
// the value is acceptable and an error carrying the user-facing message
// otherwise.
package validate

import (
	"fmt"
	"math"
	"mime/multipart"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	// MaxTexto is the default bound for free-text fields.
	MaxTexto = 500
	// MaxDescripcion bounds descripcion and material notes.
	MaxDescripcion = 2000
	// MaxMonto is the ceiling for any monetary value.
	MaxMonto = 1_000_000_000
	// MaxArchivo is the attachment size limit.
	MaxArchivo = 10 << 20 // 10 MiB
)

var (
	fechaRe    = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	horaRe     = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d(:[0-5]\d)?$`)
	telefonoRe = regexp.MustCompile(`^[0-9 ()+\-]+$`)
)

// TiposArchivo are the accepted attachment content types.
var TiposArchivo = map[string]bool{
	"application/pdf": true,
	"image/png":       true,
	"image/jpeg":      true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
}

// Fecha accepts YYYY-MM-DD strings that are real calendar dates.
func Fecha(value, label string) error {
	if !fechaRe.MatchString(value) {
		return fmt.Errorf("%s debe tener el formato AAAA-MM-DD", label)
	}
	if _, err := time.Parse("2006-01-02", value); err != nil {
		return fmt.Errorf("%s no es una fecha válida", label)
	}
	return nil
}

// Hora accepts 24-hour HH:MM or HH:MM:SS strings.
func Hora(value, label string) error {
	if !horaRe.MatchString(value) {
		return fmt.Errorf("%s debe tener el formato HH:MM (24 horas)", label)
	}
	return nil
}

// Telefono accepts non-empty values of up to 50 characters composed of
// digits, spaces, '+', '-' and parentheses.
func Telefono(value, label string) error {
	if value == "" {
		return fmt.Errorf("%s es obligatorio", label)
	}
	if utf8.RuneCountInString(value) > 50 {
		return fmt.Errorf("%s no puede superar 50 caracteres", label)
	}
	if !telefonoRe.MatchString(value) {
		return fmt.Errorf("%s solo puede contener dígitos, espacios y + - ( )", label)
	}
	return nil
}

// Texto enforces presence (unless optional) and a maximum length. The bound
// counts characters, not bytes: accented text is not penalized.
func Texto(value, label string, max int, optional bool) error {
	if value == "" {
		if optional {
			return nil
		}
		return fmt.Errorf("%s es obligatorio", label)
	}
	if max <= 0 {
		max = MaxTexto
	}
	if utf8.RuneCountInString(value) > max {
		return fmt.Errorf("%s no puede superar %d caracteres", label, max)
	}
	return nil
}

// Enum checks membership in a fixed value set. The rejection message lists
// the allowed values.
func Enum(value, label string, allowed []string) error {
	for _, v := range allowed {
		if v == value {
			return nil
		}
	}
	return fmt.Errorf("%s debe ser uno de: %s", label, strings.Join(allowed, ", "))
}

// Monto parses a monetary value. The decimal separator may be ',' or '.',
// surrounding whitespace is ignored. An empty string on an optional field
// reports ok=false with no error — "no value" is distinct from zero.
func Monto(value, label string, optional bool) (amount float64, ok bool, err error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		if optional {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("%s es obligatorio", label)
	}
	normalized := strings.ReplaceAll(strings.ReplaceAll(trimmed, " ", ""), ",", ".")
	amount, parseErr := strconv.ParseFloat(normalized, 64)
	if parseErr != nil || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0, false, fmt.Errorf("%s no es un valor numérico válido", label)
	}
	if amount < 0 {
		return 0, false, fmt.Errorf("%s no puede ser negativo", label)
	}
	if amount > MaxMonto {
		return 0, false, fmt.Errorf("%s supera el valor máximo permitido", label)
	}
	return amount, true, nil
}

// Archivo validates an optional attachment: size and declared content type.
// A nil header always passes.
func Archivo(fh *multipart.FileHeader) error {
	if fh == nil {
		return nil
	}
	if fh.Size > MaxArchivo {
		return fmt.Errorf("el archivo no puede superar 10 MB")
	}
	contentType := fh.Header.Get("Content-Type")
	if !TiposArchivo[contentType] {
		return fmt.Errorf("tipo de archivo no permitido: solo PDF, PNG, JPEG, DOC o DOCX")
	}
	return nil
}

// Sanitize trims the value, strips '<' and '>' and truncates to max
// characters, the same count Texto enforces, so sanitized output always
// passes the length check. This defuses the obvious markup injection; it is
// not a full HTML encoder.
func Sanitize(value string, max int) string {
	if max <= 0 {
		max = MaxTexto
	}
	s := strings.TrimSpace(value)
	s = strings.ReplaceAll(s, "<", "")
	s = strings.ReplaceAll(s, ">", "")
	if utf8.RuneCountInString(s) > max {
		runes := []rune(s)
		s = string(runes[:max])
	}
	return s
}

// Package testutil wires handler tests: a fake auth provider, an in-memory
// object store and multipart request helpers. No live Postgres or MinIO is
// needed; the repository side is covered by repository.MemoryServicioRepo.
package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/JulianAgudelo12/Servicio-de-facturaci-n/internal/auth"
	"github.com/JulianAgudelo12/Servicio-de-facturaci-n/internal/config"
	"github.com/JulianAgudelo12/Servicio-de-facturaci-n/internal/middleware"
)

// Token accepted by the fake auth provider.
const Token = "test-session-token"

// AuthClient starts a fake auth provider for the test's lifetime and returns
// a client pointed at it. Only Token resolves; everything else is 401.
func AuthClient(t *testing.T) *auth.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/v1/user" {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("Authorization") != "Bearer "+Token {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":           "test-user-001",
			"email":        "admin@taller.co",
			"role":         "authenticated",
			"app_metadata": map[string]string{"role": "admin"},
		})
	}))
	t.Cleanup(srv.Close)

	return auth.NewClient(config.AuthConfig{
		BaseURL: srv.URL,
		APIKey:  "test-api-key",
		Timeout: 2 * time.Second,
	})
}

// FakeStore is an in-memory storage.Store with failure injection.
type FakeStore struct {
	mu         sync.Mutex
	Objects    map[string][]byte
	Removed    []string
	FailPut    bool
	FailRemove bool
}

func NewFakeStore() *FakeStore {
	return &FakeStore{Objects: make(map[string][]byte)}
}

func (f *FakeStore) Upload(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailPut {
		return "", errors.New("injected upload failure")
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	f.Objects[objectName] = data
	return "https://storage.test/cotizaciones-bucket/" + objectName, nil
}

func (f *FakeStore) Remove(ctx context.Context, publicURL string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailRemove {
		return errors.New("injected remove failure")
	}
	f.Removed = append(f.Removed, publicURL)
	return nil
}

// SetupRouter returns a quiet gin engine for tests.
func SetupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(gin.Recovery())
	return r
}

// MultipartForm builds a multipart body. contentType of "" omits the file.
func MultipartForm(t *testing.T, fields map[string]string, fileField, filename, fileContentType string, fileContent []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for k, v := range fields {
		if err := writer.WriteField(k, v); err != nil {
			t.Fatalf("write field %s: %v", k, err)
		}
	}
	if fileField != "" {
		h := textproto.MIMEHeader{}
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, fileField, filename))
		h.Set("Content-Type", fileContentType)
		part, err := writer.CreatePart(h)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := part.Write(fileContent); err != nil {
			t.Fatalf("write file content: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	return body, writer.FormDataContentType()
}

// DoRequest executes a request against the router. A non-empty token is sent
// as the session cookie the auth gate reads.
func DoRequest(r *gin.Engine, method, path string, body io.Reader, contentType, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: token})
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// ParseJSON decodes the response body into a generic map.
func ParseJSON(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("parse response %q: %v", w.Body.String(), err)
	}
	return out
}

// ServicioForm returns the valid baseline form fields for create/update.
func ServicioForm() map[string]string {
	return map[string]string{
		"cliente":            "Ana",
		"telefono":           "300-123-4567",
		"maquina":            "Laser1",
		"fecha":              "2024-01-15",
		"hora":               "13:00",
		"estado":             "Pendiente",
		"descripcion":        "x",
		"material":           "Oro de 14k",
		"agente":             "Luis",
		"almacen":            "A1",
		"prioridad":          "Normal",
		"abono":              "0",
		"costo_final":        "100000",
		"abono_pagado":       "false",
		"costo_final_pagado": "false",
	}
}

package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/wasifahmed1991/pc-auction-system/internal/models"
	"github.com/wasifahmed1991/pc-auction-system/internal/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubResolver struct {
	identity services.Identity
	err      error
}

func (s stubResolver) Resolve(ctx context.Context, token string) (services.Identity, error) {
	if s.err != nil {
		return services.Identity{}, s.err
	}
	return s.identity, nil
}

// setIdentity injects a caller identity the way AuthRequired would,
// without needing a token.
func setIdentity(identity services.Identity) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.Set(identityKey, identity)
		ctx.Next()
	}
}

func clientTestIdentity() services.Identity {
	return services.Identity{
		UserID:        "client-1",
		Email:         "client@example.com",
		Role:          models.RoleClient,
		DepositStatus: models.DepositOnFile,
		IsActive:      true,
	}
}

func adminTestIdentity() services.Identity {
	return services.Identity{
		UserID:   "admin-1",
		Email:    "admin@example.com",
		Role:     models.RoleAdmin,
		IsActive: true,
	}
}

func performRequest(t *testing.T, router *gin.Engine, method string, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func performUpload(t *testing.T, router *gin.Engine, path string, filename string, content []byte) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func decodeBody(t *testing.T, recorder *httptest.ResponseRecorder, out interface{}) {
	t.Helper()

	if err := json.Unmarshal(recorder.Body.Bytes(), out); err != nil {
		t.Fatalf("decode response %q: %v", recorder.Body.String(), err)
	}
}

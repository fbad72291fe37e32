package errors

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"enrdash/internal/middleware"
)

func newTestErrorHandler() *ErrorHandler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewErrorHandler(logger, false)
}

func decodeProblem(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHandleError(t *testing.T) {
	h := newTestErrorHandler()

	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantType    string
		wantErrType string
	}{
		{"load error", NewLoadError("source missing", nil), http.StatusServiceUnavailable, TypeSourceLoad, "LOAD"},
		{"format error", NewFormatError("bad encoding", nil), http.StatusServiceUnavailable, TypeSourceFormat, "FORMAT"},
		{"schema error", NewSchemaError("missing column"), http.StatusServiceUnavailable, TypeSourceSchema, "SCHEMA"},
		{"validation error", NewValidationError("negative value"), http.StatusServiceUnavailable, TypeDataViolation, "VALIDATION"},
		{"geometry error", NewGeoParseError("53", nil), http.StatusUnprocessableEntity, TypeGeometryParse, "GEO_PARSE"},
		{"not found error", NewNotFoundError("region"), http.StatusNotFound, TypeNotFound, "NOT_FOUND"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/data/observations", nil)

			h.HandleError(rec, req, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Header().Get("Content-Type"), "application/problem+json")

			body := decodeProblem(t, rec)
			assert.Equal(t, tt.wantType, body["type"])
			assert.Equal(t, tt.wantErrType, body["error_type"])
			assert.Equal(t, "/api/data/observations", body["instance"])
		})
	}

	t.Run("unknown error maps to internal", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/data/summary", nil)

		h.HandleError(rec, req, stderrors.New("boom"))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		body := decodeProblem(t, rec)
		assert.Equal(t, TypeInternal, body["type"])
		assert.NotContains(t, body, "stack")
	})

	t.Run("deadline exceeded maps to timeout", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/data/pivot", nil)

		h.HandleError(rec, req, context.DeadlineExceeded)

		assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
		body := decodeProblem(t, rec)
		assert.Equal(t, TypeTimeout, body["type"])
	})

	t.Run("error context surfaces as extension", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/data/observations", nil)

		h.HandleError(rec, req, NewValidationError("year gap").WithContext("year", 2019))

		body := decodeProblem(t, rec)
		ctx, ok := body["context"].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, float64(2019), ctx["year"])
	})

	t.Run("nil error writes nothing", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)

		h.HandleError(rec, req, nil)

		assert.Empty(t, rec.Body.String())
	})
}

func TestHandleErrorCarriesRequestID(t *testing.T) {
	h := newTestErrorHandler()

	handler := middleware.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.HandleError(w, r, NewSchemaError("missing column"))
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/data/observations", nil)
	req.Header.Set("X-Request-ID", "req-123")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	body := decodeProblem(t, rec)
	assert.Equal(t, "req-123", body["trace_id"])
}

func TestBadRequest(t *testing.T) {
	h := newTestErrorHandler()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/data/filter", nil)

	h.BadRequest(rec, req, "year_min", "year_min must not exceed year_max")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeProblem(t, rec)
	assert.Equal(t, TypeValidation, body["type"])
	assert.Equal(t, "year_min", body["field"])
	assert.Equal(t, "year_min must not exceed year_max", body["detail"])
}

func TestNotFoundHandler(t *testing.T) {
	h := newTestErrorHandler()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/nope", nil)

	h.NotFound(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	body := decodeProblem(t, rec)
	assert.Equal(t, TypeNotFound, body["type"])
	assert.Equal(t, "/api/nope", body["instance"])
}

func TestMethodNotAllowedHandler(t *testing.T) {
	h := newTestErrorHandler()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/api/data/observations", nil)

	h.MethodNotAllowed(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	body := decodeProblem(t, rec)
	assert.Contains(t, body["detail"], "DELETE")
}

func TestProblemDetailsMarshalJSON(t *testing.T) {
	pd := NewProblemDetails(http.StatusBadRequest, TypeValidation, "Validation Failed", "bad input", "/api/data/filter").
		WithExtension("trace_id", "abc-123")

	raw, err := json.Marshal(pd)
	require.NoError(t, err)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, "abc-123", body["trace_id"])
	assert.Equal(t, float64(http.StatusBadRequest), body["status"])
	assert.Equal(t, "bad input", body["detail"])
}

package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"enrdash/internal/aggregate"
	"enrdash/internal/dataset"
	apierrors "enrdash/internal/errors"
	"enrdash/internal/exporter"
	"enrdash/internal/middleware"
	"enrdash/internal/services"
)

// DataHandler handles dataset HTTP requests with RFC 7807 compliance
type DataHandler struct {
	service      DataServiceInterface
	exporter     *exporter.Exporter
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
	validate     *validator.Validate
}

// NewDataHandler creates a new data handler with RFC 7807 error handling
func NewDataHandler(service DataServiceInterface, exp *exporter.Exporter, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DataHandler {
	return &DataHandler{
		service:      service,
		exporter:     exp,
		logger:       logger.With(slog.String("component", "data_handler")),
		errorHandler: errorHandler,
		validate:     validator.New(),
	}
}

// Routes returns the data routes with proper Chi patterns
func (h *DataHandler) Routes() chi.Router {
	r := chi.NewRouter()

	// Use render for consistent JSON responses
	r.Use(render.SetContentType(render.ContentTypeJSON))

	// Read-only dataset resources
	r.Get("/observations", h.GetObservations)
	r.Get("/regions", h.GetRegions)
	r.Get("/energy-types", h.GetEnergyTypes)
	r.Get("/summary", h.GetSummary)

	// Aggregation queries carry a filter spec in the body
	r.Post("/filter", h.Filter)
	r.Post("/totals", h.Totals)
	r.Post("/growth", h.Growth)
	r.Post("/pivot", h.Pivot)
	r.Post("/export", h.Export)

	// Rebuilds the snapshot from the source file
	r.Post("/reload", h.Reload)

	return r
}

// GetObservations handles GET /api/data/observations
func (h *DataHandler) GetObservations(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	h.logger.InfoContext(r.Context(), "fetching observations",
		slog.String("request_id", reqID),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
	)

	observations, err := h.service.Observations(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to get observations",
			slog.String("error", err.Error()),
			slog.String("request_id", reqID),
		)
		h.handleServiceError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   observations,
		"count":  len(observations),
	})
}

// GetRegions handles GET /api/data/regions
func (h *DataHandler) GetRegions(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	h.logger.InfoContext(r.Context(), "fetching regions",
		slog.String("request_id", reqID),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
	)

	regions, err := h.service.Regions(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to get regions",
			slog.String("error", err.Error()),
			slog.String("request_id", reqID),
		)
		h.handleServiceError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   regions,
		"count":  len(regions.Regions),
	})
}

// GetEnergyTypes handles GET /api/data/energy-types
func (h *DataHandler) GetEnergyTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.service.EnergyTypes(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   types,
		"count":  len(types),
	})
}

// GetSummary handles GET /api/data/summary
func (h *DataHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	summary, err := h.service.Summary(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to build summary",
			slog.String("error", err.Error()),
			slog.String("request_id", reqID),
		)
		h.handleServiceError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   summary,
	})
}

// Filter handles POST /api/data/filter
func (h *DataHandler) Filter(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	spec, ok := h.decodeFilterSpec(w, r)
	if !ok {
		return
	}

	h.logger.InfoContext(r.Context(), "filtering observations",
		slog.String("request_id", reqID),
		slog.String("cache_key", spec.CacheKey()),
	)

	view, err := h.service.Filter(r.Context(), spec)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   view.Rows,
		"count":  len(view.Rows),
		"filter": view.Spec,
	})
}

// TotalsRequest selects which axis POST /api/data/totals sums over.
type TotalsRequest struct {
	Filter aggregate.FilterSpec `json:"filter"`
	By     string               `json:"by" validate:"required,oneof=region energy_type"`
}

// Totals handles POST /api/data/totals
func (h *DataHandler) Totals(w http.ResponseWriter, r *http.Request) {
	var req TotalsRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.errorHandler.BadRequest(w, r, "body", "Invalid request body")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		h.errorHandler.BadRequest(w, r, "by", "Field 'by' must be one of: region, energy_type")
		return
	}

	view, err := h.service.Filter(r.Context(), req.Filter)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	var data interface{}
	switch req.By {
	case "region":
		data = view.TotalByRegion()
	case "energy_type":
		data = view.TotalByEnergyType()
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"by":     req.By,
		"data":   data,
		"filter": view.Spec,
	})
}

// GrowthRequest asks for year-over-year growth of one series.
type GrowthRequest struct {
	Filter     aggregate.FilterSpec `json:"filter"`
	EnergyType string               `json:"energy_type" validate:"required"`
	Region     string               `json:"region" validate:"required"`
}

// Growth handles POST /api/data/growth
func (h *DataHandler) Growth(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	var req GrowthRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.errorHandler.BadRequest(w, r, "body", "Invalid request body")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		h.errorHandler.BadRequest(w, r, "body", "Fields 'energy_type' and 'region' are required")
		return
	}

	h.logger.InfoContext(r.Context(), "computing growth series",
		slog.String("request_id", reqID),
		slog.String("energy_type", req.EnergyType),
		slog.String("region", req.Region),
	)

	points, err := h.service.Growth(r.Context(), req.Filter, dataset.EnergyType(req.EnergyType), req.Region)
	if err != nil {
		if errors.Is(err, services.ErrRegionNotFound) {
			h.errorHandler.HandleError(w, r, apierrors.NewNotFoundError(
				fmt.Sprintf("region %q", req.Region)))
			return
		}
		h.handleServiceError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status":      "success",
		"data":        points,
		"energy_type": req.EnergyType,
		"region":      req.Region,
	})
}

// PivotRequest names the two axes of the pivot matrix.
type PivotRequest struct {
	Filter aggregate.FilterSpec `json:"filter"`
	Rows   string               `json:"rows" validate:"required,oneof=year region energy_type"`
	Cols   string               `json:"cols" validate:"required,oneof=year region energy_type"`
}

// Pivot handles POST /api/data/pivot
func (h *DataHandler) Pivot(w http.ResponseWriter, r *http.Request) {
	var req PivotRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.errorHandler.BadRequest(w, r, "body", "Invalid request body")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		h.errorHandler.BadRequest(w, r, "rows", "Axes must be one of: year, region, energy_type")
		return
	}
	if req.Rows == req.Cols {
		h.errorHandler.BadRequest(w, r, "cols", "Row and column axes must differ")
		return
	}

	matrix, err := h.service.Pivot(r.Context(), req.Filter, aggregate.Dimension(req.Rows), aggregate.Dimension(req.Cols))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   matrix,
	})
}

// ExportRequest selects the output format for a filtered export.
type ExportRequest struct {
	Filter aggregate.FilterSpec `json:"filter"`
	Format string               `json:"format" validate:"required,oneof=csv xlsx"`
}

// Export handles POST /api/data/export. The response body is the file
// itself, not a JSON envelope.
func (h *DataHandler) Export(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	var req ExportRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.errorHandler.BadRequest(w, r, "body", "Invalid request body")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		h.errorHandler.BadRequest(w, r, "format", "Format must be one of: csv, xlsx")
		return
	}

	view, err := h.service.Filter(r.Context(), req.Filter)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "exporting filtered view",
		slog.String("request_id", reqID),
		slog.String("format", req.Format),
		slog.Int("rows", len(view.Rows)),
	)

	filename := h.exporter.Filename(req.Format)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	switch req.Format {
	case "csv":
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		err = h.exporter.WriteCSV(w, view)
	case "xlsx":
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		err = h.exporter.WriteXLSX(w, view)
	}

	if err != nil {
		// Headers may already be sent, log and give up on the body
		h.logger.ErrorContext(r.Context(), "export failed",
			slog.String("error", err.Error()),
			slog.String("request_id", reqID),
			slog.String("format", req.Format),
		)
	}
}

// Reload handles POST /api/data/reload
func (h *DataHandler) Reload(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	h.logger.InfoContext(r.Context(), "reloading dataset",
		slog.String("request_id", reqID),
	)

	if err := h.service.Reload(r.Context()); err != nil {
		h.logger.ErrorContext(r.Context(), "reload failed",
			slog.String("error", err.Error()),
			slog.String("request_id", reqID),
		)
		h.errorHandler.HandleError(w, r, err)
		return
	}

	summary, err := h.service.Summary(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   summary,
	})
}

// decodeFilterSpec reads and validates a filter spec body. Returns false
// when the request was rejected and a response already written.
func (h *DataHandler) decodeFilterSpec(w http.ResponseWriter, r *http.Request) (aggregate.FilterSpec, bool) {
	var spec aggregate.FilterSpec
	if err := render.DecodeJSON(r.Body, &spec); err != nil {
		h.errorHandler.BadRequest(w, r, "body", "Invalid request body")
		return spec, false
	}
	if err := h.validate.Struct(&spec); err != nil {
		h.errorHandler.BadRequest(w, r, "year_min", "Year bounds must be 1900 or later")
		return spec, false
	}
	return spec, true
}

// handleServiceError maps sentinel service errors to API errors before
// falling back to the generic handler.
func (h *DataHandler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrDatasetNotLoaded):
		h.errorHandler.HandleError(w, r, apierrors.NewLoadError("Dataset is not loaded yet", err))
	case errors.Is(err, services.ErrNoObservations):
		h.errorHandler.HandleError(w, r, apierrors.NewNotFoundError("observations matching the filter"))
	case errors.Is(err, services.ErrRegionNotFound):
		h.errorHandler.HandleError(w, r, apierrors.NewNotFoundError("region"))
	default:
		h.errorHandler.HandleError(w, r, err)
	}
}

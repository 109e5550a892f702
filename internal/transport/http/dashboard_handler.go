package http

import (
	"errors"
	"log/slog"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"odpulse/internal/analytics"
	apierrors "odpulse/internal/errors"
)

// QueryRequest is the body of POST /api/dashboard/query and
// /api/dashboard/export. Year bounds of zero mean unbounded; an empty
// states or drug_types list selects nothing.
type QueryRequest struct {
	States    []string `json:"states" validate:"max=60,dive,min=1"`
	YearFrom  int      `json:"year_from" validate:"omitempty,min=1900,max=2200"`
	YearTo    int      `json:"year_to" validate:"omitempty,min=1900,max=2200,gtefield=YearFrom"`
	DrugTypes []string `json:"drug_types" validate:"max=50,dive,min=1"`
}

// ExportResponse reports where an exported workbook was written.
type ExportResponse struct {
	File string `json:"file"`
	Path string `json:"path"`
}

// DashboardHandler serves the dashboard API with RFC 7807 errors.
type DashboardHandler struct {
	service      DashboardServiceInterface
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
	validate     *validator.Validate
}

// NewDashboardHandler creates a new dashboard handler.
func NewDashboardHandler(service DashboardServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DashboardHandler {
	return &DashboardHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "dashboard_handler")),
		errorHandler: errorHandler,
		validate:     validator.New(),
	}
}

// Routes returns the dashboard routes.
func (h *DashboardHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/options", h.GetOptions)
	r.Post("/query", h.Query)
	r.Post("/export", h.Export)

	return r
}

// DatasetRoutes returns the dataset maintenance routes.
func (h *DashboardHandler) DatasetRoutes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))
	r.Post("/reload", h.Reload)
	return r
}

// GetOptions handles GET /api/dashboard/options
func (h *DashboardHandler) GetOptions(w http.ResponseWriter, r *http.Request) {
	opts, err := h.service.Options(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, opts)
}

// Query handles POST /api/dashboard/query
func (h *DashboardHandler) Query(w http.ResponseWriter, r *http.Request) {
	criteria, ok := h.decodeCriteria(w, r)
	if !ok {
		return
	}

	result, err := h.service.Query(r.Context(), criteria)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, result)
}

// Export handles POST /api/dashboard/export
func (h *DashboardHandler) Export(w http.ResponseWriter, r *http.Request) {
	criteria, ok := h.decodeCriteria(w, r)
	if !ok {
		return
	}

	path, err := h.service.Export(r.Context(), criteria)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "report exported",
		slog.String("path", path))

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, ExportResponse{
		File: filepath.Base(path),
		Path: path,
	})
}

// Reload handles POST /api/dataset/reload
func (h *DashboardHandler) Reload(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Reload(r.Context()); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]string{"status": "reloaded"})
}

// decodeCriteria decodes and validates the query body, writing the
// problem response itself on failure.
func (h *DashboardHandler) decodeCriteria(w http.ResponseWriter, r *http.Request) (analytics.Criteria, bool) {
	var req QueryRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return analytics.Criteria{}, false
	}

	if err := h.validate.Struct(&req); err != nil {
		h.errorHandler.HandleError(w, r, validationError(err))
		return analytics.Criteria{}, false
	}

	return analytics.Criteria{
		States:    req.States,
		YearFrom:  req.YearFrom,
		YearTo:    req.YearTo,
		DrugTypes: req.DrugTypes,
	}, true
}

// validationError converts validator errors to the API's validation
// error shape, one entry per failed field.
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apierrors.InvalidRequestWithError(err)
	}

	fields := make([]apierrors.ValidationError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, apierrors.ValidationError{
			Field:   fe.Field(),
			Message: "failed " + fe.Tag() + " validation",
		})
	}
	return apierrors.NewValidationErrors(fields)
}

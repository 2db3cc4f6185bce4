package http

import (
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	apierrors "github.com/Zeyna175/data-processor-app/internal/errors"
	"github.com/Zeyna175/data-processor-app/internal/files"
	"github.com/Zeyna175/data-processor-app/internal/infrastructure"
	appmiddleware "github.com/Zeyna175/data-processor-app/internal/middleware"
	"github.com/Zeyna175/data-processor-app/internal/services"
	"github.com/Zeyna175/data-processor-app/internal/validation"
	"github.com/Zeyna175/data-processor-app/pkg/contracts/domain"
)

// multipartMemory is how much of a multipart body is buffered in memory
// before spilling to temporary files
const multipartMemory = 8 << 20

// CleaningHandlerConfig wires a CleaningHandler
type CleaningHandlerConfig struct {
	Service CleaningServiceInterface
	Files   *files.Manager
	// Defaults apply to uploads and to keys a process request leaves out
	Defaults     domain.Options
	OutputFormat string
	// MaxBodyBytes caps multipart request bodies; <= 0 disables the cap
	MaxBodyBytes int64
	ErrorHandler *apierrors.ErrorHandler
	Logger       *slog.Logger
}

// CleaningHandler serves upload, analysis, processing and download
type CleaningHandler struct {
	service      CleaningServiceInterface
	files        *files.Manager
	validator    *validation.FileValidator
	defaults     domain.Options
	outputFormat string
	maxBody      int64
	errorHandler *apierrors.ErrorHandler
	logger       *slog.Logger
}

// ProcessRequest is the POST /api/process body
type ProcessRequest struct {
	Filename     string                 `json:"filename"`
	Options      map[string]interface{} `json:"options"`
	OutputFormat string                 `json:"output_format"`
}

// Bind implements render.Binder
func (p *ProcessRequest) Bind(r *http.Request) error {
	if p.Filename == "" {
		return apierrors.ErrValidation("filename", "filename is required")
	}
	return nil
}

// UploadResponse is returned by POST /api/upload
type UploadResponse struct {
	Message       string        `json:"message"`
	Filename      string        `json:"filename"`
	ProcessedFile string        `json:"processed_file"`
	Rows          int           `json:"rows"`
	Columns       int           `json:"columns"`
	Stats         *domain.Stats `json:"stats"`
}

// ProcessResponse is returned by POST /api/process
type ProcessResponse struct {
	Message string `json:"message"`
	*services.ProcessResult
}

// FilesResponse is returned by GET /api/files
type FilesResponse struct {
	Files  []files.FileInfo `json:"files"`
	Latest *files.FileInfo  `json:"latest,omitempty"`
}

// NewCleaningHandler creates a cleaning handler
func NewCleaningHandler(cfg CleaningHandlerConfig) *CleaningHandler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	errorHandler := cfg.ErrorHandler
	if errorHandler == nil {
		errorHandler = apierrors.NewErrorHandler(logger, false)
	}
	return &CleaningHandler{
		service:      cfg.Service,
		files:        cfg.Files,
		validator:    validation.NewFileValidator(logger),
		defaults:     cfg.Defaults,
		outputFormat: cfg.OutputFormat,
		maxBody:      cfg.MaxBodyBytes,
		errorHandler: errorHandler,
		logger:       infrastructure.WithComponent(logger, "cleaning_handler"),
	}
}

// RegisterRoutes adds the cleaning routes to r
func (h *CleaningHandler) RegisterRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		if h.maxBody > 0 {
			r.Use(appmiddleware.LimitBody(h.maxBody))
		}
		r.Post("/upload", h.Upload)
		r.Post("/analyze", h.Analyze)
	})
	r.Post("/process", h.Process)
	r.Get("/files", h.ListFiles)
	r.Route("/download/{filename}", func(r chi.Router) {
		r.Use(h.FilenameCtx)
		r.Get("/", h.Download)
	})
}

// Routes returns the cleaning routes as a standalone router
func (h *CleaningHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))
	h.RegisterRoutes(r)
	return r
}

// FilenameCtx rejects download names that are not plain file names
func (h *CleaningHandler) FilenameCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		filename := chi.URLParam(r, "filename")
		if filename == "" {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("filename", "Filename is required"))
			return
		}
		if filename != filepath.Base(filename) || filename == "." || filename == ".." {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("filename", "Invalid filename"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Upload handles POST /api/upload: store the file and clean it with the
// configured defaults
func (h *CleaningHandler) Upload(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	stored, fileType, err := h.receive(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	path, err := h.files.UploadPath(stored)
	if err != nil {
		h.errorHandler.HandleError(w, r, fileError(err, stored))
		return
	}

	result, err := h.service.Process(r.Context(), services.ProcessRequest{
		Path:         path,
		FileType:     fileType,
		Options:      h.defaults,
		OutputFormat: h.outputFormat,
	})
	if err != nil {
		h.logger.ErrorContext(r.Context(), "upload processing failed",
			slog.String("request_id", reqID),
			slog.String("file", stored),
			slog.String("error", err.Error()))
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "upload processed",
		slog.String("request_id", reqID),
		slog.String("file", stored),
		slog.String("processed_file", result.OutputFile))

	render.JSON(w, r, UploadResponse{
		Message:       "File processed successfully",
		Filename:      stored,
		ProcessedFile: result.OutputFile,
		Rows:          result.Rows,
		Columns:       result.Columns,
		Stats:         result.Stats,
	})
}

// Analyze handles POST /api/analyze: store the file and report on it
func (h *CleaningHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	stored, fileType, err := h.receive(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	path, err := h.files.UploadPath(stored)
	if err != nil {
		h.errorHandler.HandleError(w, r, fileError(err, stored))
		return
	}

	report, err := h.service.Analyze(r.Context(), path, fileType)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	report.Filename = stored
	render.JSON(w, r, report)
}

// Process handles POST /api/process: clean a previously uploaded file
func (h *CleaningHandler) Process(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	var req ProcessRequest
	if err := render.Bind(r, &req); err != nil {
		var apiErr *apierrors.APIError
		if errors.As(err, &apiErr) {
			h.errorHandler.HandleError(w, r, apiErr)
			return
		}
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}

	opts, err := validation.ParseOptionsOver(h.defaults, req.Options)
	if err != nil {
		h.errorHandler.HandleError(w, r, optionsError(err))
		return
	}
	outputFormat := req.OutputFormat
	if outputFormat == "" {
		outputFormat = h.outputFormat
	}

	path, err := h.files.UploadPath(req.Filename)
	if err != nil {
		h.errorHandler.HandleError(w, r, fileError(err, req.Filename))
		return
	}

	h.logger.InfoContext(r.Context(), "processing file",
		slog.String("request_id", reqID),
		slog.String("file", req.Filename),
		slog.String("output_format", outputFormat))

	result, err := h.service.Process(r.Context(), services.ProcessRequest{
		Path:         path,
		Options:      opts,
		OutputFormat: outputFormat,
	})
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, ProcessResponse{
		Message:       "File processed successfully",
		ProcessResult: result,
	})
}

// ListFiles handles GET /api/files: the processed outputs, newest first
func (h *CleaningHandler) ListFiles(w http.ResponseWriter, r *http.Request) {
	list, err := h.files.ListProcessed()
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.NewStorageError("failed to list processed files", err))
		return
	}
	resp := FilesResponse{Files: list}
	if latest, ok := files.GetLatestFile(list); ok {
		resp.Latest = &latest
	}
	render.JSON(w, r, resp)
}

// Download handles GET /api/download/{filename}
func (h *CleaningHandler) Download(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")

	path, err := h.files.ProcessedPath(filename)
	if err != nil {
		h.errorHandler.HandleError(w, r, fileError(err, filename))
		return
	}

	h.logger.InfoContext(r.Context(), "downloading file",
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("filename", filename))

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Type", "application/octet-stream")
	http.ServeFile(w, r, path)
}

// receive reads the "file" form field, validates its name and stores it.
// It returns the stored name and the declared file type.
func (h *CleaningHandler) receive(r *http.Request) (string, domain.FileType, error) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return "", "", apierrors.ErrPayloadTooLarge
		}
		if errors.Is(err, http.ErrNotMultipart) {
			return "", "", apierrors.ErrValidation("file", "Request must be multipart/form-data")
		}
		return "", "", apierrors.InvalidRequestWithError(err)
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return "", "", apierrors.ErrNoFileSelected
		}
		return "", "", apierrors.InvalidRequestWithError(err)
	}
	defer file.Close()

	return h.store(file, header)
}

func (h *CleaningHandler) store(file multipart.File, header *multipart.FileHeader) (string, domain.FileType, error) {
	if header.Filename == "" {
		return "", "", apierrors.ErrNoFileSelected
	}
	fileType, err := h.validator.ValidateUploadName(header.Filename)
	if err != nil {
		return "", "", apierrors.ErrValidation("file", err.Error())
	}

	stored, err := h.files.SaveUpload(header.Filename, file)
	switch {
	case errors.Is(err, files.ErrTooLarge):
		return "", "", apierrors.ErrPayloadTooLarge
	case errors.Is(err, files.ErrInvalidName):
		return "", "", apierrors.ErrValidation("file", err.Error())
	case err != nil:
		return "", "", apierrors.NewStorageError("failed to store upload", err)
	}
	return stored, fileType, nil
}

// fileError maps storage lookups onto API errors
func fileError(err error, name string) error {
	switch {
	case errors.Is(err, files.ErrNotFound):
		return apierrors.FileNotFoundError(name)
	case errors.Is(err, files.ErrInvalidName):
		return apierrors.ErrValidation("filename", err.Error())
	}
	return apierrors.NewStorageError("file lookup failed", err)
}

// optionsError lists every offending option field
func optionsError(err error) error {
	var oe *validation.OptionsError
	if !errors.As(err, &oe) {
		return apierrors.ErrValidation("options", err.Error())
	}
	fields := make([]apierrors.ValidationError, len(oe.Fields))
	for i, f := range oe.Fields {
		fields[i] = apierrors.ValidationError{Field: f.Field, Message: f.Message}
	}
	return apierrors.NewValidationErrors(fields)
}

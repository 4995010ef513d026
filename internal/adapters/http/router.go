package httpadapter

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/kirillkom/exam-lab-uploader/internal/config"
	"github.com/kirillkom/exam-lab-uploader/internal/core/domain"
	"github.com/kirillkom/exam-lab-uploader/internal/core/ports"
	"github.com/kirillkom/exam-lab-uploader/internal/observability/metrics"
)

const (
	serviceName   = "labserver"
	uploadsPrefix = "/api/laboratory/uploads/"
)

type Router struct {
	cfg      config.Config
	ingestUC ports.UploadIngestor
	uploads  ports.UploadReader
	metrics  *metrics.HTTPServerMetrics
}

func NewRouter(
	cfg config.Config,
	ingestUC ports.UploadIngestor,
	uploads ports.UploadReader,
	serverMetrics *metrics.HTTPServerMetrics,
) *Router {
	if serverMetrics == nil {
		serverMetrics = metrics.NewHTTPServerMetrics(serviceName)
	}
	return &Router{
		cfg:      cfg,
		ingestUC: ingestUC,
		uploads:  uploads,
		metrics:  serverMetrics,
	}
}

func (rt *Router) Handler() http.Handler {
	route := rt.cfg.LabUploadRoute
	if route == "" {
		route = "/api/laboratory/upload"
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.Handle("/metrics", rt.metrics.Handler())
	mux.Handle(route, rateLimitMiddleware(http.HandlerFunc(rt.uploadExam), rt.cfg.LabRateLimitRPS, rt.cfg.LabRateLimitBurst))
	mux.HandleFunc(uploadsPrefix, rt.getUploadByID)

	var handler http.Handler = mux
	handler = rt.metrics.Middleware(serviceName, handler)
	handler = accessLogMiddleware(handler)
	handler = requestIDMiddleware(handler)
	return handler
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) uploadExam(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMessage(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	start := time.Now()

	if rt.cfg.LabMaxUploadBytes > 0 {
		// Leave headroom for multipart framing around the file part.
		r.Body = http.MaxBytesReader(w, r.Body, rt.cfg.LabMaxUploadBytes+64<<10)
	}
	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			rt.metrics.RecordUpload(serviceName, "too_large", 0, 0, time.Since(start))
			writeMessage(w, http.StatusRequestEntityTooLarge, "file exceeds upload limit")
			return
		}
		rt.metrics.RecordUpload(serviceName, "invalid", 0, 0, time.Since(start))
		writeMessage(w, http.StatusBadRequest, "multipart field 'file' is required")
		return
	}
	defer file.Close()

	record, err := rt.ingestUC.Ingest(
		r.Context(),
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		file,
	)
	if err != nil {
		status := mapErrorToHTTPStatus(err)
		rt.metrics.RecordUpload(serviceName, uploadResult(err), 0, 0, time.Since(start))
		slog.Warn("upload_rejected",
			"request_id", requestIDFromContext(r.Context()),
			"filename", fileHeader.Filename,
			"status", status,
			"error", err,
		)
		writeMessage(w, status, publicMessage(status, err))
		return
	}

	rt.metrics.RecordUpload(serviceName, "accepted", record.SizeBytes, record.Pages, time.Since(start))
	slog.Info("upload_accepted",
		"request_id", requestIDFromContext(r.Context()),
		"upload_id", record.ID,
		"filename", record.Filename,
		"pages", record.Pages,
		"size_bytes", record.SizeBytes,
	)
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": domain.MessageUploaded,
		"upload":  record,
	})
}

func (rt *Router) getUploadByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMessage(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	id := strings.TrimPrefix(r.URL.Path, uploadsPrefix)
	if id == "" || strings.Contains(id, "/") {
		writeMessage(w, http.StatusBadRequest, "upload id is required")
		return
	}

	record, err := rt.uploads.GetByID(r.Context(), id)
	if err != nil {
		status := mapErrorToHTTPStatus(err)
		writeMessage(w, status, publicMessage(status, err))
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

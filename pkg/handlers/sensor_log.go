package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/ongchi/insitu-logger/pkg/apperrors"
	"github.com/ongchi/insitu-logger/pkg/insitu"
	"github.com/ongchi/insitu-logger/pkg/models"
	"github.com/ongchi/insitu-logger/pkg/services"
)

// ============================================================================
// Request/Response Types
// ============================================================================

// InsertedResponse reports how many sensor records a request stored.
type InsertedResponse struct {
	Inserted int64 `json:"inserted"`
}

// DeletedResponse reports how many sensor records a request removed.
type DeletedResponse struct {
	Deleted int64 `json:"deleted"`
}

// LatestResponse carries the newest record time of a series, null when empty.
type LatestResponse struct {
	DateTime *models.Timestamp `json:"datetime"`
}

// ImportResponse for POST /api/sensor_log/{task_id}/import
type ImportResponse struct {
	FileName string        `json:"file_name"`
	Format   insitu.Format `json:"format"`
	Readings int           `json:"readings"`
	Inserted int64         `json:"inserted"`
}

// ============================================================================
// Handler
// ============================================================================

// SensorLogHandler serves the sensor series of a task and log uploads.
type SensorLogHandler struct {
	sensorService  services.SensorSeriesService
	ingestService  services.IngestService
	maxUploadBytes int64
	logger         *zap.Logger
}

// NewSensorLogHandler creates a new sensor log handler.
func NewSensorLogHandler(
	sensorService services.SensorSeriesService,
	ingestService services.IngestService,
	maxUploadBytes int64,
	logger *zap.Logger,
) *SensorLogHandler {
	return &SensorLogHandler{
		sensorService:  sensorService,
		ingestService:  ingestService,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// RegisterRoutes registers the sensor log handler's routes on the given mux.
func (h *SensorLogHandler) RegisterRoutes(mux *http.ServeMux) {
	base := "/api/sensor_log"

	mux.HandleFunc("POST "+base+"/upload", h.Upload)
	mux.HandleFunc("GET "+base+"/{task_id}", h.List)
	mux.HandleFunc("PUT "+base+"/{task_id}", h.Insert)
	mux.HandleFunc("DELETE "+base+"/{task_id}", h.Clear)
	mux.HandleFunc("GET "+base+"/{task_id}/latest", h.Latest)
	mux.HandleFunc("GET "+base+"/{task_id}/stability", h.Stability)
	mux.HandleFunc("POST "+base+"/{task_id}/import", h.Import)
}

// List handles GET /api/sensor_log/{task_id}
func (h *SensorLogHandler) List(w http.ResponseWriter, r *http.Request) {
	taskID, ok := ParseTaskID(w, r, h.logger)
	if !ok {
		return
	}

	records, err := h.sensorService.List(r.Context(), taskID)
	if err != nil {
		writeError(w, h.logger, "Failed to list sensor data", err)
		return
	}
	if records == nil {
		records = []*models.SensorRecord{}
	}

	writeData(w, h.logger, http.StatusOK, records)
}

// Insert handles PUT /api/sensor_log/{task_id}
// The body is a JSON array of sensor records, each tagged with task_id.
func (h *SensorLogHandler) Insert(w http.ResponseWriter, r *http.Request) {
	taskID, ok := ParseTaskID(w, r, h.logger)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	var records []*models.SensorRecord
	if err := json.NewDecoder(r.Body).Decode(&records); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			writeError(w, h.logger, "Sensor batch too large", err)
			return
		}
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Request body must be an array of sensor records"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	n, err := h.sensorService.InsertBatch(r.Context(), taskID, records)
	if err != nil {
		writeError(w, h.logger, "Failed to insert sensor data", err)
		return
	}

	writeData(w, h.logger, http.StatusOK, InsertedResponse{Inserted: n})
}

// Clear handles DELETE /api/sensor_log/{task_id}
func (h *SensorLogHandler) Clear(w http.ResponseWriter, r *http.Request) {
	taskID, ok := ParseTaskID(w, r, h.logger)
	if !ok {
		return
	}

	n, err := h.sensorService.Clear(r.Context(), taskID)
	if err != nil {
		writeError(w, h.logger, "Failed to clear sensor data", err)
		return
	}

	writeData(w, h.logger, http.StatusOK, DeletedResponse{Deleted: n})
}

// Latest handles GET /api/sensor_log/{task_id}/latest
func (h *SensorLogHandler) Latest(w http.ResponseWriter, r *http.Request) {
	taskID, ok := ParseTaskID(w, r, h.logger)
	if !ok {
		return
	}

	ts, err := h.sensorService.LatestTimestamp(r.Context(), taskID)
	if err != nil {
		writeError(w, h.logger, "Failed to get latest sensor timestamp", err)
		return
	}

	writeData(w, h.logger, http.StatusOK, LatestResponse{DateTime: ts})
}

// Stability handles GET /api/sensor_log/{task_id}/stability?window=<seconds>
func (h *SensorLogHandler) Stability(w http.ResponseWriter, r *http.Request) {
	taskID, ok := ParseTaskID(w, r, h.logger)
	if !ok {
		return
	}

	window := services.DefaultStabilityWindow
	if raw := r.URL.Query().Get("window"); raw != "" {
		seconds, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			writeError(w, h.logger, "Invalid stability window", &apperrors.InvalidValueError{Name: "window", Value: raw, Err: err})
			return
		}
		window = time.Duration(seconds * float64(time.Second))
	}

	report, err := h.sensorService.Stability(r.Context(), taskID, window)
	if err != nil {
		writeError(w, h.logger, "Failed to assess stability", err)
		return
	}

	writeData(w, h.logger, http.StatusOK, report)
}

// Upload handles POST /api/sensor_log/upload
// The first multipart file part is parsed and the decoded log returned. Nothing
// is stored in the sensor series.
func (h *SensorLogHandler) Upload(w http.ResponseWriter, r *http.Request) {
	fileName, data, err := h.readUpload(w, r)
	if err != nil {
		writeError(w, h.logger, "Failed to read upload", err)
		return
	}

	log, err := h.ingestService.Ingest(r.Context(), fileName, data)
	if err != nil {
		writeError(w, h.logger, "Failed to ingest log", err)
		return
	}

	writeData(w, h.logger, http.StatusOK, log)
}

// Import handles POST /api/sensor_log/{task_id}/import
// Parses the uploaded log, then stores its readings under task_id.
func (h *SensorLogHandler) Import(w http.ResponseWriter, r *http.Request) {
	taskID, ok := ParseTaskID(w, r, h.logger)
	if !ok {
		return
	}

	fileName, data, err := h.readUpload(w, r)
	if err != nil {
		writeError(w, h.logger, "Failed to read upload", err)
		return
	}

	log, err := h.ingestService.Ingest(r.Context(), fileName, data)
	if err != nil {
		writeError(w, h.logger, "Failed to ingest log", err)
		return
	}

	n, err := h.sensorService.Import(r.Context(), taskID, log)
	if err != nil {
		writeError(w, h.logger, "Failed to import log", err)
		return
	}

	h.logger.Info("Log imported",
		zap.Int64("task_id", taskID),
		zap.String("file_name", fileName),
		zap.Int64("inserted", n))

	writeData(w, h.logger, http.StatusOK, ImportResponse{
		FileName: fileName,
		Format:   log.Format,
		Readings: len(log.Readings),
		Inserted: n,
	})
}

// readUpload returns the name and content of the first file part of a
// multipart body, capped at maxUploadBytes.
func (h *SensorLogHandler) readUpload(w http.ResponseWriter, r *http.Request) (string, []byte, error) {
	if r.ContentLength > h.maxUploadBytes {
		return "", nil, &http.MaxBytesError{Limit: h.maxUploadBytes}
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	mr, err := r.MultipartReader()
	if err != nil {
		return "", nil, &apperrors.InvalidValueError{Name: "body", Value: "not multipart", Err: err}
	}

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return "", nil, &apperrors.InvalidValueError{Name: "file", Value: "missing"}
		}
		if err != nil {
			var maxBytes *http.MaxBytesError
			if errors.As(err, &maxBytes) {
				return "", nil, err
			}
			return "", nil, &apperrors.InvalidValueError{Name: "body", Value: "malformed multipart", Err: err}
		}

		fileName := part.FileName()
		if fileName == "" {
			_ = part.Close()
			continue
		}

		data, err := io.ReadAll(part)
		_ = part.Close()
		if err != nil {
			return "", nil, fmt.Errorf("read %s: %w", fileName, err)
		}
		return fileName, data, nil
	}
}

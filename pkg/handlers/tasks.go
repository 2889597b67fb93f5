package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/ongchi/insitu-logger/pkg/apperrors"
	"github.com/ongchi/insitu-logger/pkg/jsonutil"
	"github.com/ongchi/insitu-logger/pkg/models"
	"github.com/ongchi/insitu-logger/pkg/services"
)

// CreatedResponse carries the id the store assigned to a new row.
type CreatedResponse struct {
	ID int64 `json:"id"`
}

// TaskHandler handles task, field update and sample set requests.
type TaskHandler struct {
	taskService        services.TaskService
	fieldUpdateService services.FieldUpdateService
	sampleSetService   services.SampleSetService
	logger             *zap.Logger
}

// NewTaskHandler creates a new task handler.
func NewTaskHandler(
	taskService services.TaskService,
	fieldUpdateService services.FieldUpdateService,
	sampleSetService services.SampleSetService,
	logger *zap.Logger,
) *TaskHandler {
	return &TaskHandler{
		taskService:        taskService,
		fieldUpdateService: fieldUpdateService,
		sampleSetService:   sampleSetService,
		logger:             logger,
	}
}

// RegisterRoutes registers the task handler's routes on the given mux.
func (h *TaskHandler) RegisterRoutes(mux *http.ServeMux) {
	base := "/api/tasks"

	mux.HandleFunc("GET "+base, h.List)
	mux.HandleFunc("POST "+base, h.Create)
	mux.HandleFunc("GET "+base+"/{task_id}", h.Get)
	mux.HandleFunc("PATCH "+base+"/{task_id}", h.Update)
	mux.HandleFunc("DELETE "+base+"/{task_id}", h.Delete)
	mux.HandleFunc("GET "+base+"/{task_id}/sample_set", h.GetSampleSet)
	mux.HandleFunc("PUT "+base+"/{task_id}/sample_set", h.ReconcileSampleSet)
}

// List handles GET /api/tasks
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.taskService.List(r.Context())
	if err != nil {
		writeError(w, h.logger, "Failed to list tasks", err)
		return
	}
	if tasks == nil {
		tasks = []*models.TaskSummary{}
	}

	writeData(w, h.logger, http.StatusOK, tasks)
}

// Create handles POST /api/tasks
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.NewTask
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	id, err := h.taskService.Create(r.Context(), &req)
	if err != nil {
		writeError(w, h.logger, "Failed to create task", err)
		return
	}

	writeData(w, h.logger, http.StatusCreated, CreatedResponse{ID: id})
}

// Get handles GET /api/tasks/{task_id}
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	taskID, ok := ParseTaskID(w, r, h.logger)
	if !ok {
		return
	}

	task, err := h.taskService.Get(r.Context(), taskID)
	if err != nil {
		writeError(w, h.logger, "Failed to get task", err)
		return
	}

	writeData(w, h.logger, http.StatusOK, task)
}

// Update handles PATCH /api/tasks/{task_id}
// Fields are applied in the order they appear in the body.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	taskID, ok := ParseTaskID(w, r, h.logger)
	if !ok {
		return
	}

	fields, ok := decodePatch(w, r, h.logger)
	if !ok {
		return
	}

	if err := h.fieldUpdateService.UpdateTask(r.Context(), taskID, fields); err != nil {
		writeError(w, h.logger, "Failed to update task", err)
		return
	}

	writeData(w, h.logger, http.StatusOK, nil)
}

// Delete handles DELETE /api/tasks/{task_id}
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	taskID, ok := ParseTaskID(w, r, h.logger)
	if !ok {
		return
	}

	if err := h.taskService.Delete(r.Context(), taskID); err != nil {
		writeError(w, h.logger, "Failed to delete task", err)
		return
	}

	writeData(w, h.logger, http.StatusOK, nil)
}

// GetSampleSet handles GET /api/tasks/{task_id}/sample_set
func (h *TaskHandler) GetSampleSet(w http.ResponseWriter, r *http.Request) {
	taskID, ok := ParseTaskID(w, r, h.logger)
	if !ok {
		return
	}

	entries, err := h.sampleSetService.Get(r.Context(), taskID)
	if err != nil {
		writeError(w, h.logger, "Failed to get sample set", err)
		return
	}
	if entries == nil {
		entries = []models.SampleSetEntry{}
	}

	writeData(w, h.logger, http.StatusOK, entries)
}

// ReconcileSampleSet handles PUT /api/tasks/{task_id}/sample_set
// The body is an array of {id, qty}; qty 0 removes the entry.
func (h *TaskHandler) ReconcileSampleSet(w http.ResponseWriter, r *http.Request) {
	taskID, ok := ParseTaskID(w, r, h.logger)
	if !ok {
		return
	}

	var deltas []models.SampleSetEntry
	if err := json.NewDecoder(r.Body).Decode(&deltas); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Request body must be an array of {id, qty}"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := h.sampleSetService.Reconcile(r.Context(), taskID, deltas); err != nil {
		writeError(w, h.logger, "Failed to reconcile sample set", err)
		return
	}

	writeData(w, h.logger, http.StatusOK, nil)
}

// decodePatch reads an order-preserving JSON object from the request body.
// A body that is not an object is rejected as ErrInvalidPayload.
func decodePatch(w http.ResponseWriter, r *http.Request, logger *zap.Logger) ([]jsonutil.Field, bool) {
	fields, err := jsonutil.DecodeObject(r.Body)
	if err != nil {
		if errors.Is(err, jsonutil.ErrNotObject) {
			err = apperrors.ErrInvalidPayload
		} else {
			err = &apperrors.InvalidValueError{Name: "body", Value: "malformed JSON", Err: err}
		}
		writeError(w, logger, "Invalid patch payload", err)
		return nil, false
	}
	return fields, true
}

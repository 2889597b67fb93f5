package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/ongchi/insitu-logger/pkg/models"
	"github.com/ongchi/insitu-logger/pkg/services"
)

// LastSamplingTimeResponse for GET /api/task_info/last_sampling_time
type LastSamplingTimeResponse struct {
	SamplingTime *models.Timestamp `json:"sampling_time"`
}

// TaskInfoHandler handles task-info rows and their people relations.
type TaskInfoHandler struct {
	taskInfoService    services.TaskInfoService
	fieldUpdateService services.FieldUpdateService
	logger             *zap.Logger
}

// NewTaskInfoHandler creates a new task-info handler.
func NewTaskInfoHandler(
	taskInfoService services.TaskInfoService,
	fieldUpdateService services.FieldUpdateService,
	logger *zap.Logger,
) *TaskInfoHandler {
	return &TaskInfoHandler{
		taskInfoService:    taskInfoService,
		fieldUpdateService: fieldUpdateService,
		logger:             logger,
	}
}

// RegisterRoutes registers the task-info handler's routes on the given mux.
func (h *TaskInfoHandler) RegisterRoutes(mux *http.ServeMux) {
	base := "/api/tasks/{task_id}/info"

	mux.HandleFunc("GET "+base, h.List)
	mux.HandleFunc("POST "+base, h.Create)
	mux.HandleFunc("PATCH "+base+"/{info_id}", h.Update)
	mux.HandleFunc("DELETE "+base+"/{info_id}", h.Delete)

	for _, kind := range []models.RelationKind{models.RelationMinutedBy, models.RelationSampledBy} {
		rel := base + "/{info_id}/" + string(kind)
		mux.HandleFunc("GET "+rel, h.listPeople(kind))
		mux.HandleFunc("POST "+rel, h.addPerson(kind))
		mux.HandleFunc("DELETE "+rel+"/{people_id}", h.removePerson(kind))
	}

	mux.HandleFunc("GET /api/task_info/last_sampling_time", h.LastSamplingTime)
}

// List handles GET /api/tasks/{task_id}/info
func (h *TaskInfoHandler) List(w http.ResponseWriter, r *http.Request) {
	taskID, ok := ParseTaskID(w, r, h.logger)
	if !ok {
		return
	}

	infos, err := h.taskInfoService.List(r.Context(), taskID)
	if err != nil {
		writeError(w, h.logger, "Failed to list task info", err)
		return
	}
	if infos == nil {
		infos = []*models.TaskInfo{}
	}

	writeData(w, h.logger, http.StatusOK, infos)
}

// Create handles POST /api/tasks/{task_id}/info
func (h *TaskInfoHandler) Create(w http.ResponseWriter, r *http.Request) {
	taskID, ok := ParseTaskID(w, r, h.logger)
	if !ok {
		return
	}

	var req models.NewTaskInfo
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	id, err := h.taskInfoService.Create(r.Context(), taskID, &req)
	if err != nil {
		writeError(w, h.logger, "Failed to create task info", err)
		return
	}

	writeData(w, h.logger, http.StatusCreated, CreatedResponse{ID: id})
}

// Update handles PATCH /api/tasks/{task_id}/info/{info_id}
func (h *TaskInfoHandler) Update(w http.ResponseWriter, r *http.Request) {
	if _, ok := ParseTaskID(w, r, h.logger); !ok {
		return
	}
	infoID, ok := ParseTaskInfoID(w, r, h.logger)
	if !ok {
		return
	}

	fields, ok := decodePatch(w, r, h.logger)
	if !ok {
		return
	}

	if err := h.fieldUpdateService.UpdateTaskInfo(r.Context(), infoID, fields); err != nil {
		writeError(w, h.logger, "Failed to update task info", err)
		return
	}

	writeData(w, h.logger, http.StatusOK, nil)
}

// Delete handles DELETE /api/tasks/{task_id}/info/{info_id}
func (h *TaskInfoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if _, ok := ParseTaskID(w, r, h.logger); !ok {
		return
	}
	infoID, ok := ParseTaskInfoID(w, r, h.logger)
	if !ok {
		return
	}

	if err := h.taskInfoService.Delete(r.Context(), infoID); err != nil {
		writeError(w, h.logger, "Failed to delete task info", err)
		return
	}

	writeData(w, h.logger, http.StatusOK, nil)
}

// LastSamplingTime handles GET /api/task_info/last_sampling_time
func (h *TaskInfoHandler) LastSamplingTime(w http.ResponseWriter, r *http.Request) {
	ts, err := h.taskInfoService.LastSamplingTime(r.Context())
	if err != nil {
		writeError(w, h.logger, "Failed to get last sampling time", err)
		return
	}

	writeData(w, h.logger, http.StatusOK, LastSamplingTimeResponse{SamplingTime: ts})
}

func (h *TaskInfoHandler) listPeople(kind models.RelationKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		infoID, ok := ParseTaskInfoID(w, r, h.logger)
		if !ok {
			return
		}

		links, err := h.taskInfoService.ListPeople(r.Context(), kind, infoID)
		if err != nil {
			writeError(w, h.logger, "Failed to list "+string(kind), err)
			return
		}
		if links == nil {
			links = []*models.PersonRelation{}
		}

		writeData(w, h.logger, http.StatusOK, links)
	}
}

func (h *TaskInfoHandler) addPerson(kind models.RelationKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		infoID, ok := ParseTaskInfoID(w, r, h.logger)
		if !ok {
			return
		}

		var ref models.PeopleRef
		if err := json.NewDecoder(r.Body).Decode(&ref); err != nil || ref.ID <= 0 {
			if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Request body must be {\"id\": <people id>}"); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return
		}

		if err := h.taskInfoService.AddPerson(r.Context(), kind, infoID, ref.ID); err != nil {
			writeError(w, h.logger, "Failed to add "+string(kind), err)
			return
		}

		writeData(w, h.logger, http.StatusCreated, nil)
	}
}

func (h *TaskInfoHandler) removePerson(kind models.RelationKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		infoID, ok := ParseTaskInfoID(w, r, h.logger)
		if !ok {
			return
		}
		peopleID, ok := ParsePeopleID(w, r, h.logger)
		if !ok {
			return
		}

		if err := h.taskInfoService.RemovePerson(r.Context(), kind, infoID, peopleID); err != nil {
			writeError(w, h.logger, "Failed to remove "+string(kind), err)
			return
		}

		writeData(w, h.logger, http.StatusOK, nil)
	}
}

package handlers

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"
)

// ParseTaskID extracts and validates the task ID from the request path.
// Returns the parsed ID and true on success, or 0 and false on error
// (after writing an error response).
// Expects path parameter: task_id
func ParseTaskID(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (int64, bool) {
	return parseID(w, r, "task_id", "invalid_task_id", "Invalid task ID", logger)
}

// ParseTaskInfoID extracts and validates the task-info ID from the request path.
// Expects path parameter: info_id
func ParseTaskInfoID(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (int64, bool) {
	return parseID(w, r, "info_id", "invalid_task_info_id", "Invalid task info ID", logger)
}

// ParsePeopleID extracts and validates the person ID from the request path.
// Expects path parameter: people_id
func ParsePeopleID(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (int64, bool) {
	return parseID(w, r, "people_id", "invalid_people_id", "Invalid people ID", logger)
}

// parseID is the internal helper that does the actual parsing work. Store
// identifiers are positive.
func parseID(w http.ResponseWriter, r *http.Request, pathParam, errorCode, errorMessage string, logger *zap.Logger) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(pathParam), 10, 64)
	if err != nil || id <= 0 {
		if err := ErrorResponse(w, http.StatusBadRequest, errorCode, errorMessage); err != nil {
			logger.Error("Failed to write error response", zap.Error(err))
		}
		return 0, false
	}
	return id, true
}

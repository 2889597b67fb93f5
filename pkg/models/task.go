package models

// Task is a single field-sampling visit tied to a well.
type Task struct {
	ID      int64   `json:"id"`
	WellID  int64   `json:"well_id"`
	Depth   string  `json:"depth"`
	Done    bool    `json:"done"`
	Serial  *string `json:"serial"`
	Comment *string `json:"comment"`
}

// NewTask is the payload accepted when creating a task.
type NewTask struct {
	WellID int64  `json:"well_id"`
	Depth  string `json:"depth"`
}

// TaskSummary is one row of the task overview table.
type TaskSummary struct {
	ID           int64            `json:"id"`
	Done         bool             `json:"done"`
	Serial       *string          `json:"serial"`
	WellID       int64            `json:"well_id"`
	Depth        string           `json:"depth"`
	SampleSet    []SampleSetEntry `json:"sample_set"`
	SamplingTime *Timestamp       `json:"sampling_time"`
	Comment      *string          `json:"comment"`
}

// EntityKind selects the whitelist used for partial updates.
type EntityKind string

const (
	EntityTask     EntityKind = "task"
	EntityTaskInfo EntityKind = "task_info"
)

// Table returns the table that stores rows of this kind.
func (k EntityKind) Table() string {
	return string(k)
}

// ColumnUpdate is one point update produced by the field update engine.
// Column is always taken from a static whitelist.
type ColumnUpdate struct {
	Column string
	Value  any
}

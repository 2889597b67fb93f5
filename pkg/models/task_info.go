package models

// TaskInfo is a metadata revision recorded for a task visit.
type TaskInfo struct {
	ID             int64      `json:"id"`
	TaskID         int64      `json:"task_id"`
	Calibration    *string    `json:"calibration"`
	PurgingTime    *Timestamp `json:"purging_time"`
	WaterLevel     *float64   `json:"water_level"`
	PumpID         *int64     `json:"pump_id"`
	PumpDepth      *float64   `json:"pump_depth"`
	PumpFreq       *float64   `json:"pump_freq"`
	PumpRate       *float64   `json:"pump_rate"`
	HoseSetup      *string    `json:"hose_setup"`
	SamplingTime   *Timestamp `json:"sampling_time"`
	SampleWtRadium *float64   `json:"sample_wt_radium"`
	Comment        *string    `json:"comment"`
}

// NewTaskInfo is the payload accepted when creating a task-info row. Every
// field is optional.
type NewTaskInfo struct {
	Calibration    *string    `json:"calibration,omitempty"`
	PurgingTime    *Timestamp `json:"purging_time,omitempty"`
	WaterLevel     *float64   `json:"water_level,omitempty"`
	PumpID         *int64     `json:"pump_id,omitempty"`
	PumpDepth      *float64   `json:"pump_depth,omitempty"`
	PumpFreq       *float64   `json:"pump_freq,omitempty"`
	PumpRate       *float64   `json:"pump_rate,omitempty"`
	HoseSetup      *string    `json:"hose_setup,omitempty"`
	SamplingTime   *Timestamp `json:"sampling_time,omitempty"`
	SampleWtRadium *float64   `json:"sample_wt_radium,omitempty"`
	Comment        *string    `json:"comment,omitempty"`
}

// RelationKind names a task-info to people link table.
type RelationKind string

const (
	RelationMinutedBy RelationKind = "minuted_by"
	RelationSampledBy RelationKind = "sampled_by"
)

// Table returns the link table for the relation.
func (k RelationKind) Table() string {
	return "task_" + string(k)
}

// Valid reports whether k is a known relation.
func (k RelationKind) Valid() bool {
	return k == RelationMinutedBy || k == RelationSampledBy
}

// PersonRelation links a task-info row to a person.
type PersonRelation struct {
	TaskInfoID int64 `json:"task_info_id"`
	PeopleID   int64 `json:"people_id"`
}

// PeopleRef is the payload for adding a relation.
type PeopleRef struct {
	ID int64 `json:"id"`
}

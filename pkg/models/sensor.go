package models

import (
	"bytes"
	"encoding/json"
)

// SensorRecord is one timestamped multi-channel reading tied to a task.
// Channels that every multiparameter sonde reports are plain floats; the
// sensor-dependent ones are optional and stay nil when absent.
type SensorRecord struct {
	TaskID   int64     `json:"task_id"`
	DateTime Timestamp `json:"datetime"`

	Temp      float64  `json:"temp"`
	Temp2     *float64 `json:"temp2"`
	Pres      *float64 `json:"pres"`
	PresBaro  *float64 `json:"pres_baro"`
	Depth     *float64 `json:"depth"`
	Level     *float64 `json:"level"`
	Cndct     float64  `json:"cndct"`
	Spcndct   float64  `json:"spcndct"`
	Sa        *float64 `json:"sa"`
	Tds       *float64 `json:"tds"`
	Resis     *float64 `json:"resis"`
	WtrD      *float64 `json:"wtr_d"`
	Ph        float64  `json:"ph"`
	PhMv      *float64 `json:"ph_mv"`
	Orp       float64  `json:"orp"`
	DoCon     float64  `json:"do_con"`
	DoSat     float64  `json:"do_sat"`
	Ppo2      *float64 `json:"ppo2"`
	Turbidity *float64 `json:"turbidity"`
	Chl       *float64 `json:"chl"`
	Batt      *float64 `json:"batt"`
	V         *float64 `json:"v"`

	// absent lists required fields that were missing or null in the JSON
	// the record was decoded from.
	absent []string
}

// UnmarshalJSON decodes a record and notes which required fields the
// payload left out, since those would otherwise read as zero.
func (r *SensorRecord) UnmarshalJSON(data []byte) error {
	type plain SensorRecord
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*r = SensorRecord(p)
	r.absent = nil
	for _, name := range requiredFields() {
		v, ok := raw[name]
		if !ok || bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
			r.absent = append(r.absent, name)
		}
	}
	return nil
}

// MissingField returns the first required field the record has no value
// for: the timestamp or a required channel.
func (r *SensorRecord) MissingField() (string, bool) {
	if len(r.absent) > 0 {
		return r.absent[0], true
	}
	if r.DateTime.IsZero() {
		return "datetime", true
	}
	return "", false
}

func requiredFields() []string {
	names := []string{"datetime"}
	for _, ch := range SensorChannels {
		if ch.Required {
			names = append(names, ch.Name)
		}
	}
	return names
}

// SensorChannel describes one numeric column of sensor_data.
type SensorChannel struct {
	Name     string
	Required bool
	// Ref returns a scan destination for the channel: *float64 for required
	// channels, **float64 for optional ones.
	Ref func(r *SensorRecord) any
	// Value returns the channel value for writing: float64 or *float64.
	Value func(r *SensorRecord) any
	// Set assigns a reading to the channel.
	Set func(r *SensorRecord, v float64)
	// Get returns the channel value and whether it is present.
	Get func(r *SensorRecord) (float64, bool)
}

func required(name string, field func(r *SensorRecord) *float64) SensorChannel {
	return SensorChannel{
		Name:     name,
		Required: true,
		Ref:      func(r *SensorRecord) any { return field(r) },
		Value:    func(r *SensorRecord) any { return *field(r) },
		Set:      func(r *SensorRecord, v float64) { *field(r) = v },
		Get:      func(r *SensorRecord) (float64, bool) { return *field(r), true },
	}
}

func optional(name string, field func(r *SensorRecord) **float64) SensorChannel {
	return SensorChannel{
		Name:  name,
		Ref:   func(r *SensorRecord) any { return field(r) },
		Value: func(r *SensorRecord) any { return *field(r) },
		Set: func(r *SensorRecord, v float64) {
			*field(r) = &v
		},
		Get: func(r *SensorRecord) (float64, bool) {
			p := *field(r)
			if p == nil {
				return 0, false
			}
			return *p, true
		},
	}
}

// SensorChannels lists the sensor_data channels in column order.
var SensorChannels = []SensorChannel{
	required("temp", func(r *SensorRecord) *float64 { return &r.Temp }),
	optional("temp2", func(r *SensorRecord) **float64 { return &r.Temp2 }),
	optional("pres", func(r *SensorRecord) **float64 { return &r.Pres }),
	optional("pres_baro", func(r *SensorRecord) **float64 { return &r.PresBaro }),
	optional("depth", func(r *SensorRecord) **float64 { return &r.Depth }),
	optional("level", func(r *SensorRecord) **float64 { return &r.Level }),
	required("cndct", func(r *SensorRecord) *float64 { return &r.Cndct }),
	required("spcndct", func(r *SensorRecord) *float64 { return &r.Spcndct }),
	optional("sa", func(r *SensorRecord) **float64 { return &r.Sa }),
	optional("tds", func(r *SensorRecord) **float64 { return &r.Tds }),
	optional("resis", func(r *SensorRecord) **float64 { return &r.Resis }),
	optional("wtr_d", func(r *SensorRecord) **float64 { return &r.WtrD }),
	required("ph", func(r *SensorRecord) *float64 { return &r.Ph }),
	optional("ph_mv", func(r *SensorRecord) **float64 { return &r.PhMv }),
	required("orp", func(r *SensorRecord) *float64 { return &r.Orp }),
	required("do_con", func(r *SensorRecord) *float64 { return &r.DoCon }),
	required("do_sat", func(r *SensorRecord) *float64 { return &r.DoSat }),
	optional("ppo2", func(r *SensorRecord) **float64 { return &r.Ppo2 }),
	optional("turbidity", func(r *SensorRecord) **float64 { return &r.Turbidity }),
	optional("chl", func(r *SensorRecord) **float64 { return &r.Chl }),
	optional("batt", func(r *SensorRecord) **float64 { return &r.Batt }),
	optional("v", func(r *SensorRecord) **float64 { return &r.V }),
}

// SensorChannelByName looks up a channel by column name.
func SensorChannelByName(name string) (SensorChannel, bool) {
	for _, ch := range SensorChannels {
		if ch.Name == name {
			return ch, true
		}
	}
	return SensorChannel{}, false
}

// SensorColumns returns the sensor_data column names in insert order.
func SensorColumns() []string {
	cols := make([]string, 0, len(SensorChannels)+2)
	cols = append(cols, "task_id", "datetime")
	for _, ch := range SensorChannels {
		cols = append(cols, ch.Name)
	}
	return cols
}

// Values returns the record as a row matching SensorColumns.
func (r *SensorRecord) Values() []any {
	vals := make([]any, 0, len(SensorChannels)+2)
	vals = append(vals, r.TaskID, r.DateTime.Time)
	for _, ch := range SensorChannels {
		vals = append(vals, ch.Value(r))
	}
	return vals
}

// ScanTargets returns scan destinations matching SensorColumns.
func (r *SensorRecord) ScanTargets() []any {
	dest := make([]any, 0, len(SensorChannels)+2)
	dest = append(dest, &r.TaskID, &r.DateTime.Time)
	for _, ch := range SensorChannels {
		dest = append(dest, ch.Ref(r))
	}
	return dest
}

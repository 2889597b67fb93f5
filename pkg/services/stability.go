package services

import (
	"math"
	"time"

	"github.com/ongchi/insitu-logger/pkg/models"
)

// DefaultStabilityWindow is used when the caller does not pick a window.
const DefaultStabilityWindow = 5 * time.Minute

// stabilityCriterion bounds how far a channel may stray from its window mean
// during purging. Relative margins are a fraction of the mean.
type stabilityCriterion struct {
	channel  string
	margin   float64
	relative bool
}

var stabilityCriteria = []stabilityCriterion{
	{channel: "temp", margin: 0.2},
	{channel: "temp2", margin: 0.2},
	{channel: "cndct", margin: 0.03, relative: true},
	{channel: "spcndct", margin: 0.03, relative: true},
	{channel: "ph", margin: 0.1},
	{channel: "orp", margin: 50},
	{channel: "do_con", margin: 0.3},
	{channel: "do_sat", margin: 0.10, relative: true},
}

// StabilityWindow is the verdict for one rolling window. Channels missing
// from any reading in the window are left out of Pass.
type StabilityWindow struct {
	Start   models.Timestamp `json:"start"`
	End     models.Timestamp `json:"datetime"`
	Samples int              `json:"samples"`
	Pass    map[string]bool  `json:"pass"`
	Stable  bool             `json:"stable"`
}

// StabilityReport is the purge stabilization assessment of a task.
type StabilityReport struct {
	TaskID        int64             `json:"task_id"`
	WindowSeconds float64           `json:"window"`
	Windows       []StabilityWindow `json:"windows"`
}

// AssessStability slides a time window over records, which must be sorted by
// time, and tests each channel's spread. A window spans the readings in
// [t, t+window); its verdict is reported at the first reading past the window.
func AssessStability(records []*models.SensorRecord, window time.Duration) []StabilityWindow {
	windows := make([]StabilityWindow, 0)
	if window <= 0 {
		return windows
	}

	left, right := 0, 0
	for right < len(records) {
		if records[right].DateTime.Sub(records[left].DateTime.Time) < window {
			right++
			continue
		}
		windows = append(windows, assessWindow(records[left:right], records[right].DateTime))
		left++
	}
	return windows
}

func assessWindow(span []*models.SensorRecord, end models.Timestamp) StabilityWindow {
	w := StabilityWindow{
		Start:   span[0].DateTime,
		End:     end,
		Samples: len(span),
		Pass:    make(map[string]bool, len(stabilityCriteria)),
		Stable:  true,
	}

	values := make([]float64, 0, len(span))
	for _, c := range stabilityCriteria {
		ch, ok := models.SensorChannelByName(c.channel)
		if !ok {
			continue
		}

		values = values[:0]
		for _, rec := range span {
			v, present := ch.Get(rec)
			if !present {
				break
			}
			values = append(values, v)
		}
		if len(values) != len(span) {
			continue
		}

		pass := withinMargin(values, c.margin, c.relative)
		w.Pass[c.channel] = pass
		w.Stable = w.Stable && pass
	}
	return w
}

func withinMargin(values []float64, margin float64, relative bool) bool {
	lo, hi, sum := math.Inf(1), math.Inf(-1), 0.0
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
		sum += v
	}
	mean := sum / float64(len(values))

	above, below := hi-mean, mean-lo
	if relative {
		above, below = above/mean, below/mean
	}
	return above < margin && below < margin
}

package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimestamp(t *testing.T) {
	ts, err := ParseTimestamp("2024-03-05T10:15:30.250+0800")
	require.NoError(t, err)

	want := time.Date(2024, 3, 5, 2, 15, 30, 250_000_000, time.UTC)
	assert.True(t, want.Equal(ts.Time), "got %s", ts.Time)
}

func TestParseTimestamp_RejectsOtherLayouts(t *testing.T) {
	for _, s := range []string{
		"2024-03-05 10:15:30",
		"2024-03-05T10:15:30Z",
		"2024-03-05T10:15:30.250+08:00",
		"",
	} {
		_, err := ParseTimestamp(s)
		assert.Error(t, err, s)
	}
}

func TestTimestamp_JSONUsesLocalZone(t *testing.T) {
	orig := time.Local
	time.Local = time.FixedZone("TST", 8*3600)
	t.Cleanup(func() { time.Local = orig })

	ts := NewTimestamp(time.Date(2024, 3, 5, 2, 15, 30, 250_000_000, time.UTC))
	data, err := json.Marshal(ts)
	require.NoError(t, err)
	assert.Equal(t, `"2024-03-05T10:15:30.250+0800"`, string(data))

	var back Timestamp
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, ts.Equal(back.Time))
}

func TestTimestamp_UnmarshalRejectsNonString(t *testing.T) {
	var ts Timestamp
	assert.Error(t, json.Unmarshal([]byte(`12345`), &ts))
	assert.Error(t, json.Unmarshal([]byte(`null`), &ts))
}

func TestTimestamp_OptionalNull(t *testing.T) {
	var info TaskInfo
	require.NoError(t, json.Unmarshal([]byte(`{"id":1,"task_id":2,"sampling_time":null}`), &info))
	assert.Nil(t, info.SamplingTime)
}

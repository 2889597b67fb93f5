package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ongchi/insitu-logger/pkg/apperrors"
	"github.com/ongchi/insitu-logger/pkg/insitu"
	"github.com/ongchi/insitu-logger/pkg/metrics"
)

func TestFormatFromFileName(t *testing.T) {
	tests := []struct {
		fileName string
		want     insitu.Format
		wantErr  bool
	}{
		{"readings.csv", insitu.FormatCSV, false},
		{"MW-01 2024.03.05.txt", insitu.FormatTXT, false},
		{"report.html.zip", insitu.FormatZippedHTML, false},
		{"readings.CSV", "", true},
		{"readings.bin", "", true},
		{"readings", "", true},
		{"readings.", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.fileName, func(t *testing.T) {
			got, err := FormatFromFileName(tt.fileName)
			if tt.wantErr {
				var unsupported *apperrors.UnsupportedFormatError
				require.ErrorAs(t, err, &unsupported)
				assert.ErrorIs(t, err, apperrors.ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func sampleLog() *insitu.Log {
	return &insitu.Log{
		Format: insitu.FormatCSV,
		Readings: []insitu.Reading{
			{Time: time.Date(2024, 3, 5, 2, 0, 0, 0, time.UTC), Values: map[string]float64{"temp": 18.2}},
		},
	}
}

func TestIngest_DispatchesByExtension(t *testing.T) {
	for _, name := range []string{"a.csv", "a.txt", "a.zip"} {
		parser := &mockParser{log: sampleLog()}
		svc := NewIngestService(parser, nil, nil, zap.NewNop())

		log, err := svc.Ingest(context.Background(), name, []byte("payload"))
		require.NoError(t, err)
		assert.NotEmpty(t, log.Readings)
		assert.Equal(t, name[strings.LastIndexByte(name, '.')+1:], parser.called)
	}
}

func TestIngest_UnsupportedDoesNotInvokeParser(t *testing.T) {
	parser := &mockParser{log: sampleLog()}
	m := metrics.New()
	svc := NewIngestService(parser, nil, m, zap.NewNop())

	_, err := svc.Ingest(context.Background(), "readings.bin", []byte("payload"))

	var unsupported *apperrors.UnsupportedFormatError
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, "bin", unsupported.Tag)
	assert.Empty(t, parser.called)
}

func TestIngest_ParseErrorIsWrappedNotReinterpreted(t *testing.T) {
	parseErr := &insitu.ParseError{Format: insitu.FormatTXT, Line: 7, Msg: "bad reading"}
	parser := &mockParser{err: parseErr}
	store := &mockArchive{}
	svc := NewIngestService(parser, store, nil, zap.NewNop())

	_, err := svc.Ingest(context.Background(), "dump.txt", []byte("payload"))

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrParse)
	var pe *insitu.ParseError
	require.ErrorAs(t, err, &pe)
	assert.Same(t, parseErr, pe)
	assert.Empty(t, store.objects, "failed parses are not archived")
}

func TestIngest_ArchivesRawUpload(t *testing.T) {
	parser := &mockParser{log: sampleLog()}
	store := &mockArchive{}
	svc := NewIngestService(parser, store, nil, zap.NewNop())

	data := []byte("Date/Time,Temp (C)\n2024-03-05 02:00:00,18.2\n")
	_, err := svc.Ingest(context.Background(), "MW-01.csv", data)
	require.NoError(t, err)

	require.Len(t, store.objects, 1)
	obj := store.objects[0]
	assert.True(t, strings.HasPrefix(obj.Key, "uploads/"))
	assert.True(t, strings.HasSuffix(obj.Key, "-MW-01.csv"))
	assert.Equal(t, "text/csv", obj.ContentType)
	assert.Equal(t, "1", obj.Metadata["readings"])
	assert.Equal(t, data, obj.Data)
}

func TestIngest_ArchiveFailureDoesNotFailUpload(t *testing.T) {
	parser := &mockParser{log: sampleLog()}
	store := &mockArchive{err: errors.New("bucket unreachable")}
	svc := NewIngestService(parser, store, nil, zap.NewNop())

	log, err := svc.Ingest(context.Background(), "MW-01.csv", []byte("x"))
	require.NoError(t, err)
	assert.Len(t, log.Readings, 1)
}

func TestIngest_WithRealParser(t *testing.T) {
	svc := NewIngestService(insitu.Parser{}, nil, nil, zap.NewNop())

	payload := "Date/Time,Temp (C),pH (pH)\n2024-03-05 02:00:00,18.25,7.01\n"
	log, err := svc.Ingest(context.Background(), "readings.csv", []byte(payload))
	require.NoError(t, err)
	require.Len(t, log.Readings, 1)
	assert.Equal(t, 7.01, log.Readings[0].Values["ph"])

	_, err = svc.Ingest(context.Background(), "readings.CSV", []byte(payload))
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ongchi/insitu-logger/pkg/apperrors"
	"github.com/ongchi/insitu-logger/pkg/archive"
	"github.com/ongchi/insitu-logger/pkg/insitu"
	"github.com/ongchi/insitu-logger/pkg/logging"
	"github.com/ongchi/insitu-logger/pkg/metrics"
)

// LogParser decodes the three supported export formats. insitu.Parser is the
// production implementation.
type LogParser interface {
	ParseCSV(r io.Reader) (*insitu.Log, error)
	ParseTXT(r io.Reader) (*insitu.Log, error)
	ParseZippedHTML(r io.ReaderAt, size int64) (*insitu.Log, error)
}

var _ LogParser = insitu.Parser{}

// IngestService turns an uploaded instrument log into a parsed log. The
// result is not tied to a task; persisting it is a separate call to
// SensorSeriesService.
type IngestService interface {
	// Ingest selects a parser from the file name extension and decodes data.
	// The whole payload parses or the call fails.
	Ingest(ctx context.Context, fileName string, data []byte) (*insitu.Log, error)
}

// FormatFromFileName returns the format named by the text after the last '.'
// in fileName. Matching is case-sensitive: "log.CSV" is unsupported.
func FormatFromFileName(fileName string) (insitu.Format, error) {
	i := strings.LastIndexByte(fileName, '.')
	if i < 0 {
		return "", &apperrors.UnsupportedFormatError{FileName: fileName}
	}

	tag := fileName[i+1:]
	switch format := insitu.Format(tag); format {
	case insitu.FormatCSV, insitu.FormatTXT, insitu.FormatZippedHTML:
		return format, nil
	default:
		return "", &apperrors.UnsupportedFormatError{FileName: fileName, Tag: tag}
	}
}

type ingestService struct {
	parser  LogParser
	archive archive.Store
	metrics *metrics.Metrics
	logger  *zap.Logger
	now     func() time.Time
}

// NewIngestService creates a new IngestService. store and m may be nil to
// disable archiving and metrics.
func NewIngestService(parser LogParser, store archive.Store, m *metrics.Metrics, logger *zap.Logger) IngestService {
	return &ingestService{
		parser:  parser,
		archive: store,
		metrics: m,
		logger:  logger.Named("ingest"),
		now:     time.Now,
	}
}

var _ IngestService = (*ingestService)(nil)

func (s *ingestService) Ingest(ctx context.Context, fileName string, data []byte) (*insitu.Log, error) {
	format, err := FormatFromFileName(fileName)
	if err != nil {
		s.metrics.ObserveUpload("", metrics.OutcomeUnsupported, 0, 0)
		return nil, err
	}

	start := s.now()
	log, err := s.parse(format, data)
	elapsed := s.now().Sub(start)
	if err != nil {
		s.metrics.ObserveUpload(string(format), metrics.OutcomeParseError, elapsed, 0)
		s.logger.Info("Rejected log upload",
			zap.String("file_name", fileName),
			zap.String("format", string(format)),
			zap.Error(err))
		return nil, fmt.Errorf("parse %s: %w", fileName, err)
	}

	s.metrics.ObserveUpload(string(format), metrics.OutcomeOK, elapsed, len(log.Readings))
	s.logger.Debug("Parsed log upload",
		zap.String("file_name", fileName),
		zap.String("format", string(format)),
		zap.Int("readings", len(log.Readings)),
		zap.Int("bytes", len(data)),
		zap.Duration("elapsed", elapsed))

	s.store(ctx, fileName, format, data, log)
	return log, nil
}

func (s *ingestService) parse(format insitu.Format, data []byte) (*insitu.Log, error) {
	switch format {
	case insitu.FormatCSV:
		return s.parser.ParseCSV(bytes.NewReader(data))
	case insitu.FormatTXT:
		return s.parser.ParseTXT(bytes.NewReader(data))
	case insitu.FormatZippedHTML:
		return s.parser.ParseZippedHTML(bytes.NewReader(data), int64(len(data)))
	default:
		return nil, errors.New("no parser for format " + string(format))
	}
}

// store keeps the raw upload. Archive failures are logged and do not fail
// the upload.
func (s *ingestService) store(ctx context.Context, fileName string, format insitu.Format, data []byte, log *insitu.Log) {
	if s.archive == nil {
		return
	}

	key := archive.UploadKey(s.now(), fileName)
	err := s.archive.Put(ctx, archive.Object{
		Key:         key,
		ContentType: contentTypes[format],
		Metadata: map[string]string{
			"file_name": fileName,
			"format":    string(format),
			"readings":  strconv.Itoa(len(log.Readings)),
		},
		Data: data,
	})
	if err != nil {
		s.logger.Warn("Failed to archive log upload",
			zap.String("file_name", fileName),
			zap.String("driver", string(s.archive.Driver())),
			zap.String("error", logging.SanitizeError(err)))
		return
	}

	s.logger.Debug("Archived log upload", zap.String("key", key))
}

var contentTypes = map[insitu.Format]string{
	insitu.FormatCSV:        "text/csv",
	insitu.FormatTXT:        "text/plain",
	insitu.FormatZippedHTML: "application/zip",
}

package service

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campusops/schedule-api/internal/timetable"
	appErrors "github.com/campusops/schedule-api/pkg/errors"
	"github.com/campusops/schedule-api/pkg/export"
	"github.com/campusops/schedule-api/pkg/storage"
)

// ExportFormat enumerates the supported schedule export formats.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	PDFTitle  string
	ResultTTL time.Duration
}

// ExportResult captures successful generation metadata.
type ExportResult struct {
	RelativePath string       `json:"file"`
	Token        string       `json:"token"`
	Format       ExportFormat `json:"format"`
	ExpiresAt    time.Time    `json:"expires_at"`
}

// ExportService renders the schedule to CSV or PDF files and issues
// signed download tokens for them.
type ExportService struct {
	entries scheduleEntrySource
	storage fileStorage
	csv     csvRenderer
	pdf     pdfRenderer
	signer  *storage.SignedURLSigner
	logger  *zap.Logger
	cfg     ExportConfig
}

// NewExportService constructs an ExportService.
func NewExportService(entries scheduleEntrySource, files fileStorage, signer *storage.SignedURLSigner, cfg ExportConfig, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if cfg.PDFTitle == "" {
		cfg.PDFTitle = "Class Schedule"
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		entries: entries,
		storage: files,
		csv:     csv,
		pdf:     pdf,
		signer:  signer,
		logger:  logger,
		cfg:     cfg,
	}
}

// Generate renders the current schedule, optionally scoped to a section,
// stores the file and returns a signed download token.
func (s *ExportService) Generate(ctx context.Context, format ExportFormat, sectionID string) (*ExportResult, error) {
	dataset, err := s.buildDataset(ctx, sectionID)
	if err != nil {
		return nil, err
	}

	var payload []byte
	switch format {
	case ExportFormatCSV:
		payload, err = s.csv.Render(dataset)
	case ExportFormatPDF:
		payload, err = s.pdf.Render(dataset, s.cfg.PDFTitle)
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render schedule export")
	}

	exportID := uuid.NewString()
	filename := fmt.Sprintf("schedule-%s-%s.%s", time.Now().UTC().Format("20060102-150405"), exportID[:8], format)
	relPath, err := s.storage.Save(filename, payload)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store schedule export")
	}

	token, expiresAt, err := s.signer.Generate(exportID, relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign export download")
	}

	s.logger.Info("schedule export generated",
		zap.String("export_id", exportID),
		zap.String("format", string(format)),
		zap.String("file", relPath))
	return &ExportResult{RelativePath: relPath, Token: token, Format: format, ExpiresAt: expiresAt}, nil
}

// Open validates a download token and returns the stored file.
func (s *ExportService) Open(token string) (*os.File, error) {
	_, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrForbidden.Code, appErrors.ErrForbidden.Status, "invalid export download token")
	}
	file, err := s.storage.Open(relPath)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "export file not found")
	}
	return file, nil
}

// Cleanup removes export files older than the configured TTL.
func (s *ExportService) Cleanup() (int, error) {
	deleted, err := s.storage.CleanupOlderThan(s.cfg.ResultTTL)
	if err != nil {
		return 0, err
	}
	if len(deleted) > 0 {
		s.logger.Info("expired schedule exports removed", zap.Int("count", len(deleted)))
	}
	return len(deleted), nil
}

var exportHeaders = []string{"Subject Code", "Subject", "Section", "Kind", "Days", "Time", "Room", "Instructor"}

func (s *ExportService) buildDataset(ctx context.Context, sectionID string) (export.Dataset, error) {
	records, err := s.entries.ListAll(ctx)
	if err != nil {
		return export.Dataset{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule entries")
	}

	entries := make([]timetable.ScheduleEntry, 0, len(records))
	for _, record := range records {
		if sectionID != "" && record.SectionID != sectionID {
			continue
		}
		entry, err := record.ToTimetable()
		if err != nil {
			s.logger.Warn("skipping unparsable schedule entry", zap.String("entry_id", record.ID), zap.Error(err))
			continue
		}
		entries = append(entries, entry)
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].SubjectCode != entries[j].SubjectCode {
			return entries[i].SubjectCode < entries[j].SubjectCode
		}
		return entries[i].Interval.Start.Minutes() < entries[j].Interval.Start.Minutes()
	})

	rows := make([]map[string]string, 0, len(entries))
	for _, entry := range entries {
		days := make([]string, 0, len(entry.Days))
		for _, day := range entry.Days {
			days = append(days, titleCase(string(day)))
		}
		rows = append(rows, map[string]string{
			"Subject Code": entry.SubjectCode,
			"Subject":      entry.SubjectName,
			"Section":      entry.SectionID,
			"Kind":         string(entry.Kind),
			"Days":         strings.Join(days, ", "),
			"Time":         entry.Interval.String(),
			"Room":         entry.RoomName,
			"Instructor":   entry.InstructorName,
		})
	}

	return export.Dataset{Headers: exportHeaders, Rows: rows}, nil
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

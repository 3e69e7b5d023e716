package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/Zadjehi/satisf-exercice/internal/ids"
	"github.com/Zadjehi/satisf-exercice/internal/models"
)

// ExportArchiver archives a generated export file. Implemented by the minio
// object store; nil when no storage endpoint is configured.
type ExportArchiver interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
}

// ExportService renders surveys and statistics as CSV files for download.
type ExportService struct {
	surveys  SurveyStore
	stats    StatsStore
	archiver ExportArchiver
	auditor  *Auditor
	log      zerolog.Logger
}

func NewExportService(surveys SurveyStore, stats StatsStore, archiver ExportArchiver, auditor *Auditor, log zerolog.Logger) *ExportService {
	return &ExportService{
		surveys:  surveys,
		stats:    stats,
		archiver: archiver,
		auditor:  auditor,
		log:      log,
	}
}

// ExportFile is a rendered download.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

const exportPageSize = 500

var surveyHeader = []string{
	"ID", "VisitDate", "LastName", "FirstName", "Phone", "Email",
	"VisitReason", "Satisfaction", "Department", "Comments", "Recommendations", "SubmittedAt",
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func surveyRow(s models.Survey) []string {
	return []string{
		strconv.FormatInt(s.ID, 10),
		s.VisitedAt.Format("2006-01-02"),
		s.LastName,
		deref(s.FirstName),
		s.Phone,
		deref(s.Email),
		string(s.VisitReason),
		string(s.Satisfaction),
		s.DepartmentName,
		deref(s.Comments),
		deref(s.Recommendations),
		s.CreatedAt.Format(time.RFC3339),
	}
}

// writeSurveys streams every survey matching filter into w, paging through the
// store so an export never loads the whole table at once.
func (s *ExportService) writeSurveys(ctx context.Context, w *csv.Writer, filter models.SurveyFilter) (int, error) {
	if err := w.Write(surveyHeader); err != nil {
		return 0, err
	}

	total := 0
	for offset := 0; ; offset += exportPageSize {
		page, err := s.surveys.List(ctx, filter, exportPageSize, offset)
		if err != nil {
			return 0, err
		}
		for _, survey := range page {
			if err := w.Write(surveyRow(survey)); err != nil {
				return 0, err
			}
		}
		total += len(page)
		if len(page) < exportPageSize {
			return total, nil
		}
	}
}

func (s *ExportService) writeStatistics(ctx context.Context, w *csv.Writer) error {
	overall, err := s.stats.Overall(ctx)
	if err != nil {
		return err
	}
	if err := w.Write([]string{"Section", "Label", "Total", "Satisfied", "Dissatisfied", "SatisfactionRate"}); err != nil {
		return err
	}
	if err := w.Write(statRow("Overall", "All surveys", overall.Total, overall.Satisfied, overall.Dissatisfied, overall.SatisfactionRate)); err != nil {
		return err
	}

	byDepartment, err := s.stats.ByDepartment(ctx)
	if err != nil {
		return err
	}
	for _, d := range byDepartment {
		if err := w.Write(statRow("Department", d.DepartmentName, d.Total, d.Satisfied, d.Dissatisfied, d.SatisfactionRate)); err != nil {
			return err
		}
	}

	byReason, err := s.stats.ByReason(ctx)
	if err != nil {
		return err
	}
	for _, r := range byReason {
		if err := w.Write(statRow("VisitReason", string(r.VisitReason), r.Total, r.Satisfied, r.Dissatisfied, r.SatisfactionRate)); err != nil {
			return err
		}
	}

	monthly, err := s.stats.Monthly(ctx, 6)
	if err != nil {
		return err
	}
	for _, m := range monthly {
		label := fmt.Sprintf("%04d-%02d", m.Year, m.Month)
		if err := w.Write(statRow("Month", label, m.Total, m.Satisfied, m.Dissatisfied, m.SatisfactionRate)); err != nil {
			return err
		}
	}
	return nil
}

func statRow(section, label string, total, satisfied, dissatisfied int64, rate float64) []string {
	return []string{
		section,
		label,
		strconv.FormatInt(total, 10),
		strconv.FormatInt(satisfied, 10),
		strconv.FormatInt(dissatisfied, 10),
		strconv.FormatFloat(rate, 'f', 1, 64),
	}
}

// ExportKind selects what an export contains.
type ExportKind string

const (
	ExportSurveys    ExportKind = "surveys"
	ExportStatistics ExportKind = "statistics"
	ExportCombined   ExportKind = "combined"
)

// Export renders a CSV file of the requested kind, archives it best-effort,
// and records the action.
func (s *ExportService) Export(ctx context.Context, kind ExportKind, filter models.SurveyFilter, actorID int64, ip, userAgent string) (ExportFile, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	switch kind {
	case ExportSurveys:
		if _, err := s.writeSurveys(ctx, w, filter); err != nil {
			return ExportFile{}, fmt.Errorf("export surveys: %w", err)
		}
	case ExportStatistics:
		if err := s.writeStatistics(ctx, w); err != nil {
			return ExportFile{}, fmt.Errorf("export statistics: %w", err)
		}
	case ExportCombined:
		if err := s.writeStatistics(ctx, w); err != nil {
			return ExportFile{}, fmt.Errorf("export statistics: %w", err)
		}
		if err := w.Write([]string{""}); err != nil {
			return ExportFile{}, fmt.Errorf("write csv: %w", err)
		}
		if _, err := s.writeSurveys(ctx, w, filter); err != nil {
			return ExportFile{}, fmt.Errorf("export surveys: %w", err)
		}
	default:
		return ExportFile{}, validationFailed("unknown export kind", nil)
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return ExportFile{}, fmt.Errorf("write csv: %w", err)
	}

	file := ExportFile{
		Filename:    fmt.Sprintf("%s-%s.csv", kind, time.Now().Format("20060102-150405")),
		ContentType: "text/csv",
		Data:        buf.Bytes(),
	}

	s.archive(ctx, file)
	s.auditor.Record(ctx, actorID, "export_data", fmt.Sprintf("%s export generated (%d bytes)", kind, len(file.Data)), ip, userAgent)

	return file, nil
}

// Preview returns the figures an export would contain without rendering it.
func (s *ExportService) Preview(ctx context.Context, filter models.SurveyFilter) (models.SatisfactionStats, int64, error) {
	count, err := s.surveys.Count(ctx, filter)
	if err != nil {
		return models.SatisfactionStats{}, 0, err
	}
	var stats models.SatisfactionStats
	if filter.From != nil && filter.To != nil {
		stats, err = s.stats.OverallBetween(ctx, *filter.From, *filter.To)
	} else {
		stats, err = s.stats.Overall(ctx)
	}
	if err != nil {
		return models.SatisfactionStats{}, 0, err
	}
	return stats, count, nil
}

// archive pushes the file to object storage when configured. Failures are
// logged only; the download must still succeed.
func (s *ExportService) archive(ctx context.Context, file ExportFile) {
	if s.archiver == nil {
		return
	}
	key := ids.NewExportKey("csv")
	if err := s.archiver.Put(ctx, key, file.Data, file.ContentType); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("export archive failed")
	}
}

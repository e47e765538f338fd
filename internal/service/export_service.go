package service

import (
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/study-planner/internal/dto"
	"github.com/noah-isme/study-planner/internal/planner"
	appErrors "github.com/noah-isme/study-planner/pkg/errors"
	"github.com/noah-isme/study-planner/pkg/export"
)

// Supported export formats.
const (
	ExportFormatCSV = "csv"
	ExportFormatPDF = "pdf"
)

type csvRenderer interface {
	Render(records interface{}) ([]byte, error)
}

type pdfRenderer interface {
	Render(doc export.Document) ([]byte, error)
}

// ExportFile is a rendered plan ready to be streamed.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ExportService renders plan results as CSV or PDF documents.
type ExportService struct {
	csv    csvRenderer
	pdf    pdfRenderer
	logger *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{csv: csv, pdf: pdf, logger: logger}
}

// Render produces the export for result. name becomes the file stem.
func (s *ExportService) Render(result *planner.PlanResult, name, format string) (*ExportFile, error) {
	if result == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "plan result missing")
	}
	if format == "" {
		format = ExportFormatCSV
	}
	if name == "" {
		name = "study-plan"
	}

	switch strings.ToLower(format) {
	case ExportFormatCSV:
		data, err := s.csv.Render(PlanRows(result))
		if err != nil {
			s.logger.Error("csv export failed", zap.String("plan", name), zap.Error(err))
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return &ExportFile{Filename: name + ".csv", ContentType: "text/csv", Data: data}, nil
	case ExportFormatPDF:
		data, err := s.pdf.Render(PlanDocument(result, name))
		if err != nil {
			s.logger.Error("pdf export failed", zap.String("plan", name), zap.Error(err))
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return &ExportFile{Filename: name + ".pdf", ContentType: "application/pdf", Data: data}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrUnsupportedFormat, fmt.Sprintf("unsupported export format %q", format))
	}
}

var placementHeaders = []string{"Code", "Name", "Type", "Workload", "Days", "Hours", "Teacher"}

// PlanRows flattens a result into one row per placement followed by the
// unplaced required disciplines.
func PlanRows(result *planner.PlanResult) []dto.PlanRow {
	rows := make([]dto.PlanRow, 0)
	for _, semester := range result.Semesters {
		for _, p := range semester.Placements {
			rows = append(rows, dto.PlanRow{
				Semester: strconv.Itoa(semester.Round),
				Code:     p.Code,
				Name:     p.Name,
				Type:     string(p.Type),
				Workload: p.Workload,
				Days:     strings.Join(p.Timetable.Days, " "),
				Hours:    strings.Join(p.Timetable.Hours, " "),
				Teacher:  p.Timetable.Teacher,
			})
		}
	}
	for _, u := range result.Unplaced {
		rows = append(rows, dto.PlanRow{
			Semester: "unplaced",
			Code:     u.Code,
			Name:     u.Name,
			Type:     string(u.Type),
			Reason:   unplacedReason(u),
		})
	}
	return rows
}

// PlanDocument lays a result out as one table per semester plus an
// "Unplaced" table when required disciplines were left out.
func PlanDocument(result *planner.PlanResult, title string) export.Document {
	doc := export.Document{
		Title: title,
		Subtitle: fmt.Sprintf("Status: %s | Semesters: %d | Strategy: %s | Elective workload remaining: %d",
			result.Status, result.SemesterCount, result.Strategy, result.ElectiveRemaining),
	}
	for _, semester := range result.Semesters {
		table := export.Table{
			Title:   fmt.Sprintf("Semester %d (%dh)", semester.Round, semester.Workload),
			Headers: placementHeaders,
		}
		for _, p := range semester.Placements {
			table.Rows = append(table.Rows, []string{
				p.Code, p.Name, string(p.Type), strconv.Itoa(p.Workload),
				strings.Join(p.Timetable.Days, " "), strings.Join(p.Timetable.Hours, " "), p.Timetable.Teacher,
			})
		}
		doc.Tables = append(doc.Tables, table)
	}
	if len(result.Unplaced) > 0 {
		table := export.Table{Title: "Unplaced", Headers: []string{"Code", "Name", "Reason"}}
		for _, u := range result.Unplaced {
			table.Rows = append(table.Rows, []string{u.Code, u.Name, unplacedReason(u)})
		}
		doc.Tables = append(doc.Tables, table)
	}
	if len(doc.Tables) == 0 {
		doc.Tables = append(doc.Tables, export.Table{Title: "Semesters", Headers: placementHeaders})
	}
	return doc
}

func unplacedReason(u planner.Unplaced) string {
	reason := u.Reason
	if len(u.MissingPrerequisites) > 0 {
		reason += " (" + strings.Join(u.MissingPrerequisites, ", ") + ")"
	}
	if u.Detail != "" {
		reason += " [" + string(u.Detail) + "]"
	}
	return reason
}

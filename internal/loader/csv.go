package loader

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"

	"github.com/noah-isme/study-planner/internal/dto"
)

// csvRow mirrors one curriculum line. Numeric and boolean columns are read as
// text so blank cells and errors can be reported per line.
type csvRow struct {
	Name          string `csv:"name"`
	Code          string `csv:"code"`
	Semester      string `csv:"semester"`
	Workload      string `csv:"workload"`
	Type          string `csv:"type"`
	Attended      string `csv:"attended"`
	Prerequisites string `csv:"prerequisites"`
	Timetables    string `csv:"timetables"`
}

// DecodeCSV reads a curriculum with the columns
// name,code,semester,workload,type,attended,prerequisites,timetables.
// Prerequisites are space separated; timetables are days|hours|teacher
// entries separated by semicolons.
func DecodeCSV(r io.Reader) ([]dto.DisciplineInput, error) {
	var rows []*csvRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, fmt.Errorf("decode csv curriculum: %w", err)
	}

	out := make([]dto.DisciplineInput, 0, len(rows))
	for i, row := range rows {
		line := i + 2
		in, err := row.toInput()
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, in)
	}
	return out, nil
}

func (row *csvRow) toInput() (dto.DisciplineInput, error) {
	semester, err := parseInt(row.Semester, "semester")
	if err != nil {
		return dto.DisciplineInput{}, err
	}
	workload, err := parseInt(row.Workload, "workload")
	if err != nil {
		return dto.DisciplineInput{}, err
	}
	attended, err := parseBool(row.Attended)
	if err != nil {
		return dto.DisciplineInput{}, err
	}
	timetables, err := parseTimetables(row.Timetables)
	if err != nil {
		return dto.DisciplineInput{}, err
	}
	return dto.DisciplineInput{
		Name:          row.Name,
		Code:          row.Code,
		Semester:      semester,
		Workload:      workload,
		Type:          row.Type,
		Attended:      attended,
		Prerequisites: strings.Fields(row.Prerequisites),
		Timetables:    timetables,
	}, nil
}

func parseInt(raw, column string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("column %s: %q is not a number", column, raw)
	}
	return v, nil
}

func parseBool(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "0", "false", "no", "n", "nao", "não":
		return false, nil
	case "1", "true", "yes", "y", "sim", "s":
		return true, nil
	}
	return false, fmt.Errorf("column attended: %q is not a boolean", raw)
}

func parseTimetables(raw string) ([]dto.TimetableInput, error) {
	out := make([]dto.TimetableInput, 0)
	for _, entry := range strings.Split(raw, ";") {
		if strings.TrimSpace(entry) == "" {
			continue
		}
		parts := strings.Split(entry, "|")
		if len(parts) < 2 || len(parts) > 3 {
			return nil, fmt.Errorf("column timetables: %q must be days|hours|teacher", entry)
		}
		t := dto.TimetableInput{Days: strings.TrimSpace(parts[0]), Hours: strings.TrimSpace(parts[1])}
		if len(parts) == 3 {
			t.Teacher = strings.TrimSpace(parts[2])
		}
		out = append(out, t)
	}
	return out, nil
}

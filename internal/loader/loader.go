// Package loader reads curricula from the JSON and CSV formats accepted by
// the HTTP API and the command line tool.
package loader

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/noah-isme/study-planner/internal/dto"
	"github.com/noah-isme/study-planner/internal/planner"
)

// FromInputs converts wire disciplines into engine disciplines. Type aliases
// and timetable strings are parsed here; catalog invariants are left to
// planner.Validate.
func FromInputs(inputs []dto.DisciplineInput) ([]planner.Discipline, error) {
	out := make([]planner.Discipline, 0, len(inputs))
	for i, in := range inputs {
		kind, err := planner.ParseDisciplineType(in.Type)
		if err != nil {
			return nil, fmt.Errorf("discipline %d (%s): %w", i, in.Code, err)
		}
		slots := make([]planner.TimetableSlot, 0, len(in.Timetables))
		for j, t := range in.Timetables {
			slot, err := planner.ParseSlot(t.Days, t.Hours, t.Teacher)
			if err != nil {
				return nil, fmt.Errorf("discipline %s timetable %d: %w", in.Code, j, err)
			}
			slots = append(slots, slot)
		}
		out = append(out, planner.Discipline{
			Name:              strings.TrimSpace(in.Name),
			Code:              strings.TrimSpace(in.Code),
			Semester:          in.Semester,
			Workload:          in.Workload,
			Type:              kind,
			Attended:          in.Attended,
			PrerequisiteCodes: trimAll(in.Prerequisites),
			Timetables:        slots,
		})
	}
	return out, nil
}

// DecodeJSON reads a curriculum given either as a bare array or as an object
// holding a "disciplines" array.
func DecodeJSON(r io.Reader) ([]dto.DisciplineInput, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read curriculum: %w", err)
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, fmt.Errorf("curriculum is empty")
	}

	var inputs []dto.DisciplineInput
	if raw[0] == '[' {
		if err := json.Unmarshal(raw, &inputs); err != nil {
			return nil, fmt.Errorf("decode curriculum: %w", err)
		}
		return inputs, nil
	}

	var wrapped struct {
		Disciplines []dto.DisciplineInput `json:"disciplines"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, fmt.Errorf("decode curriculum: %w", err)
	}
	return wrapped.Disciplines, nil
}

// LoadFile reads a curriculum file, choosing the decoder by extension unless
// format is given.
func LoadFile(path, format string) ([]planner.Discipline, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	}

	var inputs []dto.DisciplineInput
	switch format {
	case "csv":
		inputs, err = DecodeCSV(f)
	case "json", "":
		inputs, err = DecodeJSON(f)
	default:
		return nil, fmt.Errorf("unsupported input format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return FromInputs(inputs)
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

package service

import (
	"go.uber.org/zap"

	"github.com/noah-isme/study-planner/internal/planner"
)

// NewZapObserver forwards the allocation trace to logger at debug level.
func NewZapObserver(logger *zap.Logger) planner.Observer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return planner.ObserverFunc(func(e planner.Event) {
		if ce := logger.Check(zap.DebugLevel, "planner_event"); ce != nil {
			ce.Write(eventFields(e)...)
		}
	})
}

func eventFields(e planner.Event) []zap.Field {
	fields := []zap.Field{zap.String("kind", string(e.Kind))}
	if e.Round > 0 {
		fields = append(fields, zap.Int("round", e.Round))
	}
	if e.Code != "" {
		fields = append(fields, zap.String("code", e.Code))
	}
	if len(e.Codes) > 0 {
		fields = append(fields, zap.Strings("codes", e.Codes))
	}
	if e.Rejection != "" {
		fields = append(fields, zap.String("rejection", string(e.Rejection)))
	}
	if e.Workload > 0 {
		fields = append(fields, zap.Int("workload", e.Workload))
	}
	if e.ElectiveWorkload > 0 {
		fields = append(fields, zap.Int("elective_workload", e.ElectiveWorkload))
	}
	if e.Termination != "" {
		fields = append(fields, zap.String("termination", string(e.Termination)))
	}
	if e.Message != "" {
		fields = append(fields, zap.String("message", e.Message))
	}
	return fields
}

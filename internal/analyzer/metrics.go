package analyzer

import (
	"github.com/ludo-technologies/pyrefactor/domain"
)

// ScanUnit checks one unit against the structural thresholds. A finding
// fires only when the measured value is strictly greater than its threshold.
func ScanUnit(unit *domain.CodeUnit, thresholds domain.Thresholds) []domain.Finding {
	var findings []domain.Finding
	if unit.LineCount() > thresholds.LongMethod {
		findings = append(findings, domain.NewLongMethodFinding(unit, thresholds.LongMethod))
	}
	if unit.ParameterCount() > thresholds.ParamCount {
		findings = append(findings, domain.NewOverloadedParametersFinding(unit, thresholds.ParamCount))
	}
	return findings
}

// MetricsScanner flags long methods and overloaded parameter lists
type MetricsScanner struct {
	thresholds domain.Thresholds
}

// NewMetricsScanner validates the thresholds up front
func NewMetricsScanner(thresholds domain.Thresholds) (*MetricsScanner, error) {
	if err := thresholds.Validate(); err != nil {
		return nil, err
	}
	return &MetricsScanner{thresholds: thresholds}, nil
}

// Scan runs ScanUnit over every unit
func (s *MetricsScanner) Scan(units []*domain.CodeUnit) []domain.Finding {
	findings := make([]domain.Finding, 0)
	for _, u := range units {
		findings = append(findings, ScanUnit(u, s.thresholds)...)
	}
	return findings
}


package validators

import (
	"fmt"
	"strings"

	"github.com/MKhiriev/go-estimate-sync/models"
)

// Severity grades an advisory issue.
type Severity string

const (
	SeverityValid   Severity = "valid"
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
)

func (s Severity) rank() int {
	switch s {
	case SeverityWarning:
		return 2
	case SeverityInfo:
		return 1
	default:
		return 0
	}
}

// MaxLaborHours is the labor time above which a line is flagged for review.
const MaxLaborHours = 40.0

// FieldIssue is an advisory finding about one field of a line. Field is
// models.FieldSequenceNumber for issues about the line's position.
type FieldIssue struct {
	RowID    string
	Field    string
	Severity Severity
	Message  string
}

type lineValidator struct{}

// NewLineValidator returns the advisory line validator.
func NewLineValidator() LineValidator {
	return lineValidator{}
}

// Validate runs every rule over line. Only info and warning findings are
// returned; a line without findings yields nil.
func (lineValidator) Validate(line models.EstimateLine, siblings []models.EstimateLine) []FieldIssue {
	var issues []FieldIssue
	add := func(field string, sev Severity, format string, args ...any) {
		issues = append(issues, FieldIssue{
			RowID:    line.ID,
			Field:    field,
			Severity: sev,
			Message:  fmt.Sprintf(format, args...),
		})
	}

	for _, s := range siblings {
		if s.ID != line.ID && s.SequenceNumber == line.SequenceNumber {
			add(models.FieldSequenceNumber, SeverityWarning, "sequence number %d is also used by line %s", line.SequenceNumber, s.ID)
			break
		}
	}

	for _, field := range []string{models.FieldPartCost, models.FieldLaborHours, models.FieldPaintHours} {
		if f, ok := number(line, field); ok && f < 0 {
			add(field, SeverityWarning, "%s is negative", field)
		}
	}

	if desc, _ := line.Fields[models.FieldDescription].(string); strings.TrimSpace(desc) == "" {
		add(models.FieldDescription, SeverityInfo, "description is empty")
	}

	if hours, ok := number(line, models.FieldLaborHours); ok && hours > MaxLaborHours {
		add(models.FieldLaborHours, SeverityInfo, "labor hours above %.0f", MaxLaborHours)
	}

	if code, ok := line.Fields[models.FieldOperationCode]; ok && code != nil {
		s := fmt.Sprint(models.Normalize(models.FieldOperationCode, code))
		if !isOperationCode(s) {
			add(models.FieldOperationCode, SeverityWarning, "unknown operation code %q", s)
		}
	}

	if cost, ok := number(line, models.FieldPartCost); ok && cost != 0 {
		if pn, _ := line.Fields[models.FieldPartNumber].(string); strings.TrimSpace(pn) == "" {
			add(models.FieldPartNumber, SeverityInfo, "part cost without part number")
		}
	}

	return issues
}

func number(line models.EstimateLine, field string) (float64, bool) {
	f, ok := models.Normalize(field, line.Fields[field]).(float64)
	return f, ok
}

// Worst returns the highest severity reported for field, or SeverityValid.
func Worst(issues []FieldIssue, field string) Severity {
	worst := SeverityValid
	for _, issue := range issues {
		if issue.Field == field && issue.Severity.rank() > worst.rank() {
			worst = issue.Severity
		}
	}
	return worst
}

// ValidateAll validates every line of a document against the others.
func ValidateAll(v LineValidator, lines []models.EstimateLine) map[string][]FieldIssue {
	out := make(map[string][]FieldIssue)
	for _, line := range lines {
		if issues := v.Validate(line, lines); len(issues) > 0 {
			out[line.ID] = issues
		}
	}
	return out
}

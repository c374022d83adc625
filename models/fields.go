package models

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FieldKind describes how a line field value is typed and compared.
type FieldKind string

const (
	KindText     FieldKind = "text"
	KindCurrency FieldKind = "currency"
	KindHours    FieldKind = "hours"
	KindCode     FieldKind = "code"
)

// Priority decides how quickly an edited field is propagated to the sync engine.
type Priority string

const (
	// PriorityImmediate fields bypass debouncing (selection codes).
	PriorityImmediate Priority = "immediate"
	// PriorityStandard fields wait for the standard debounce window.
	PriorityStandard Priority = "standard"
	// PriorityDeferred fields wait for the longer deferred window.
	PriorityDeferred Priority = "deferred"
)

// Line field names known to the editor.
const (
	FieldDescription   = "description"
	FieldPartNumber    = "part_number"
	FieldPartCost      = "part_cost"
	FieldLaborHours    = "labor_hours"
	FieldPaintHours    = "paint_hours"
	FieldOperationCode = "operation_code"
	FieldPartType      = "part_type"
	FieldNotes         = "notes"

	// FieldSequenceNumber names the line position. It is not editable.
	FieldSequenceNumber = "sequence_number"
)

// FieldSpec is the fixed per-field policy of the editor.
type FieldSpec struct {
	Name     string
	Kind     FieldKind
	Priority Priority
}

var fieldCatalogue = map[string]FieldSpec{
	FieldDescription:   {Name: FieldDescription, Kind: KindText, Priority: PriorityStandard},
	FieldPartNumber:    {Name: FieldPartNumber, Kind: KindText, Priority: PriorityStandard},
	FieldPartCost:      {Name: FieldPartCost, Kind: KindCurrency, Priority: PriorityStandard},
	FieldLaborHours:    {Name: FieldLaborHours, Kind: KindHours, Priority: PriorityStandard},
	FieldPaintHours:    {Name: FieldPaintHours, Kind: KindHours, Priority: PriorityStandard},
	FieldOperationCode: {Name: FieldOperationCode, Kind: KindCode, Priority: PriorityImmediate},
	FieldPartType:      {Name: FieldPartType, Kind: KindCode, Priority: PriorityImmediate},
	FieldNotes:         {Name: FieldNotes, Kind: KindText, Priority: PriorityDeferred},
}

// EditableFields lists the catalogue in display order.
var EditableFields = []string{
	FieldOperationCode,
	FieldDescription,
	FieldPartType,
	FieldPartNumber,
	FieldPartCost,
	FieldLaborHours,
	FieldPaintHours,
	FieldNotes,
}

// LookupField returns the policy for field. Unknown fields are treated as
// standard-priority text.
func LookupField(field string) FieldSpec {
	if def, ok := fieldCatalogue[field]; ok {
		return def
	}
	return FieldSpec{Name: field, Kind: KindText, Priority: PriorityStandard}
}

// Normalize converts v into the canonical Go representation for the field's
// kind: string for text and codes, float64 rounded to cents for currency and
// to hundredths for hours. nil stays nil. Values that cannot be converted are
// returned unchanged so that an edit is never rejected at the optimistic write.
// NaN and infinities are never returned: they have no JSON form.
func Normalize(field string, v any) any {
	if v == nil {
		return nil
	}

	switch LookupField(field).Kind {
	case KindCurrency, KindHours:
		return normalizeNumber(v)
	case KindCode:
		if s, ok := v.(string); ok {
			return strings.ToUpper(strings.TrimSpace(s))
		}
		return fmt.Sprint(v)
	default:
		if s, ok := v.(string); ok {
			return s
		}
		return fmt.Sprint(v)
	}
}

// NormalizeFields normalizes every value of fields in place.
func NormalizeFields(fields map[string]any) {
	for k, v := range fields {
		fields[k] = Normalize(k, v)
	}
}

// ValuesEqual reports whether a and b are the same value for field once
// normalized.
func ValuesEqual(field string, a, b any) bool {
	a, b = Normalize(field, a), Normalize(field, b)
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	fa, aNum := a.(float64)
	fb, bNum := b.(float64)
	if aNum && bNum {
		return fa == fb
	}
	if aNum != bNum {
		return false
	}

	sa, aStr := a.(string)
	sb, bStr := b.(string)
	if aStr && bStr {
		return sa == sb
	}

	return fmt.Sprint(a) == fmt.Sprint(b)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, finite(n)
	case float32:
		return float64(n), finite(float64(n))
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil && finite(f)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil && finite(f)
	default:
		return 0, false
	}
}

// normalizeNumber rounds v to hundredths. A value that is not finite before or
// after rounding is kept as text.
func normalizeNumber(v any) any {
	f, ok := toFloat(v)
	if !ok {
		if isNonFinite(v) {
			return fmt.Sprint(v)
		}
		return v
	}
	if r := round(f, 100); finite(r) {
		return r
	}
	if s, isStr := v.(string); isStr {
		return s
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func isNonFinite(v any) bool {
	switch n := v.(type) {
	case float64:
		return !finite(n)
	case float32:
		return !finite(float64(n))
	default:
		return false
	}
}

func round(f float64, scale float64) float64 {
	return math.Round(f*scale) / scale
}

package validators

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-estimate-sync/models"
)

// Scope names accepted by RowUpdateValidator in addition to line field names.
const (
	// ScopeID checks that the row id is present.
	ScopeID = "id"

	// ScopeParentID checks that the parent id is present.
	ScopeParentID = "parentId"

	// ScopeFields checks that the update carries at least one field and
	// validates every value it carries.
	ScopeFields = "fields"

	// ScopeUpdates validates every row of a batch.
	ScopeUpdates = "updates"
)

// RowUpdateValidator rejects row updates the authority cannot apply:
// missing identity, non-numeric or negative amounts and unknown codes.
// Advisory checks belong to LineValidator.
type RowUpdateValidator struct{}

// NewRowUpdateValidator returns a RowUpdateValidator as a Validator.
func NewRowUpdateValidator() Validator {
	return &RowUpdateValidator{}
}

// Validate accepts models.RowUpdate, *models.RowUpdate and []models.RowUpdate.
// Optional fields restrict validation to the named scopes or line fields.
func (v *RowUpdateValidator) Validate(ctx context.Context, obj any, fields ...string) error {
	switch value := obj.(type) {
	case models.RowUpdate:
		return v.validateRowUpdate(ctx, value, fields...)
	case *models.RowUpdate:
		if value == nil {
			return ErrUnsupportedType
		}
		return v.validateRowUpdate(ctx, *value, fields...)
	case []models.RowUpdate:
		return v.validateBatch(ctx, value, fields...)
	default:
		return ErrUnsupportedType
	}
}

func (v *RowUpdateValidator) validateBatch(ctx context.Context, updates []models.RowUpdate, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{ScopeUpdates}
	}

	for _, f := range fields {
		switch f {
		case ScopeUpdates:
			if len(updates) == 0 {
				return ErrEmptyUpdates
			}
			for i, u := range updates {
				if err := v.validateRowUpdate(ctx, u); err != nil {
					return fmt.Errorf("validation error at index %d: %w", i, err)
				}
			}
		default:
			return ErrUnknownField
		}
	}
	return nil
}

func (v *RowUpdateValidator) validateRowUpdate(_ context.Context, update models.RowUpdate, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{ScopeID, ScopeParentID, ScopeFields}
	}

	for _, f := range fields {
		switch f {
		case ScopeID:
			if update.ID == "" {
				return ErrEmptyRowID
			}
		case ScopeParentID:
			if update.ParentID == "" {
				return ErrEmptyParentID
			}
		case ScopeFields:
			if len(update.Fields) == 0 {
				return ErrNoFieldsToUpdate
			}
			for name, value := range update.Fields {
				if err := ValidateValue(name, value); err != nil {
					return err
				}
			}
		default:
			value, ok := update.Fields[f]
			if !ok {
				return ErrUnknownField
			}
			if err := ValidateValue(f, value); err != nil {
				return err
			}
		}
	}
	return nil
}

// ValidateValue checks one field value against the field's kind. nil is an
// explicit clear and always valid.
func ValidateValue(field string, value any) error {
	if value == nil {
		return nil
	}

	switch field {
	case models.FieldOperationCode:
		code, ok := models.Normalize(field, value).(string)
		if !ok || !isOperationCode(code) {
			return fmt.Errorf("%w: %v", ErrInvalidOperationCode, value)
		}
		return nil
	case models.FieldPartType:
		code, ok := models.Normalize(field, value).(string)
		if !ok || !isPartType(code) {
			return fmt.Errorf("%w: %v", ErrInvalidPartType, value)
		}
		return nil
	}

	switch models.LookupField(field).Kind {
	case models.KindCurrency, models.KindHours:
		f, ok := models.Normalize(field, value).(float64)
		if !ok {
			return fmt.Errorf("%s: %w", field, ErrNotANumber)
		}
		if f < 0 {
			return fmt.Errorf("%s: %w", field, ErrNegativeValue)
		}
	case models.KindText:
		if _, ok := value.(string); !ok {
			return fmt.Errorf("%s: %w", field, ErrInvalidText)
		}
	}
	return nil
}

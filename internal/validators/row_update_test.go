package validators

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-estimate-sync/models"
)

func validUpdate() models.RowUpdate {
	return models.RowUpdate{
		ID:       "L1",
		ParentID: "D1",
		Fields: map[string]any{
			models.FieldPartCost:      250.0,
			models.FieldOperationCode: "rpl",
			models.FieldPartType:      "OEM",
			models.FieldNotes:         nil,
		},
	}
}

func TestNewRowUpdateValidator(t *testing.T) {
	require.NotNil(t, NewRowUpdateValidator())
}

// ---------------------------------------------------------------------------
// TestRowUpdateValidator_Dispatch
// ---------------------------------------------------------------------------

func TestRowUpdateValidator_Dispatch(t *testing.T) {
	v := NewRowUpdateValidator()
	ctx := context.Background()
	u := validUpdate()

	assert.NoError(t, v.Validate(ctx, u))
	assert.NoError(t, v.Validate(ctx, &u))
	assert.NoError(t, v.Validate(ctx, []models.RowUpdate{u}))
	assert.ErrorIs(t, v.Validate(ctx, (*models.RowUpdate)(nil)), ErrUnsupportedType)
	assert.ErrorIs(t, v.Validate(ctx, "row"), ErrUnsupportedType)
}

// ---------------------------------------------------------------------------
// TestRowUpdateValidator_RowUpdate
// ---------------------------------------------------------------------------

func TestRowUpdateValidator_RowUpdate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(u *models.RowUpdate)
		fields  []string
		wantErr error
	}{
		{name: "valid", mutate: func(*models.RowUpdate) {}},
		{name: "empty id", mutate: func(u *models.RowUpdate) { u.ID = "" }, wantErr: ErrEmptyRowID},
		{name: "empty parent", mutate: func(u *models.RowUpdate) { u.ParentID = "" }, wantErr: ErrEmptyParentID},
		{name: "no fields", mutate: func(u *models.RowUpdate) { u.Fields = nil }, wantErr: ErrNoFieldsToUpdate},
		{
			name:    "negative cost",
			mutate:  func(u *models.RowUpdate) { u.Fields[models.FieldPartCost] = -1 },
			wantErr: ErrNegativeValue,
		},
		{
			name:    "cost is not a number",
			mutate:  func(u *models.RowUpdate) { u.Fields[models.FieldPartCost] = "abc" },
			wantErr: ErrNotANumber,
		},
		{
			name:    "unknown operation code",
			mutate:  func(u *models.RowUpdate) { u.Fields[models.FieldOperationCode] = "XX" },
			wantErr: ErrInvalidOperationCode,
		},
		{
			name:    "unknown part type",
			mutate:  func(u *models.RowUpdate) { u.Fields[models.FieldPartType] = "GENERIC" },
			wantErr: ErrInvalidPartType,
		},
		{
			name:    "description is not text",
			mutate:  func(u *models.RowUpdate) { u.Fields[models.FieldDescription] = 12 },
			wantErr: ErrInvalidText,
		},
		{
			name:   "scoped to id ignores bad values",
			mutate: func(u *models.RowUpdate) { u.Fields[models.FieldPartCost] = -1 },
			fields: []string{ScopeID},
		},
		{
			name:    "scoped to a line field",
			mutate:  func(u *models.RowUpdate) { u.Fields[models.FieldPartCost] = -1 },
			fields:  []string{models.FieldPartCost},
			wantErr: ErrNegativeValue,
		},
		{
			name:    "scoped to a field the update lacks",
			mutate:  func(*models.RowUpdate) {},
			fields:  []string{models.FieldLaborHours},
			wantErr: ErrUnknownField,
		},
	}

	v := NewRowUpdateValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := validUpdate()
			tt.mutate(&u)

			err := v.Validate(context.Background(), u, tt.fields...)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

// ---------------------------------------------------------------------------
// TestRowUpdateValidator_Batch
// ---------------------------------------------------------------------------

func TestRowUpdateValidator_Batch(t *testing.T) {
	v := NewRowUpdateValidator()
	ctx := context.Background()

	assert.ErrorIs(t, v.Validate(ctx, []models.RowUpdate{}), ErrEmptyUpdates)
	assert.ErrorIs(t, v.Validate(ctx, []models.RowUpdate{validUpdate()}, "other"), ErrUnknownField)

	bad := validUpdate()
	bad.ID = ""
	err := v.Validate(ctx, []models.RowUpdate{validUpdate(), bad})
	assert.ErrorIs(t, err, ErrEmptyRowID)
	assert.Contains(t, err.Error(), "index 1")
}

func TestValidateValue_NilIsAlwaysValid(t *testing.T) {
	for _, f := range models.EditableFields {
		assert.NoError(t, ValidateValue(f, nil), f)
	}
}

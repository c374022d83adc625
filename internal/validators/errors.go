package validators

import "errors"

var (
	ErrUnsupportedType = errors.New("unsupported type for validation")
	ErrUnknownField    = errors.New("unknown field for validation")

	ErrEmptyRowID           = errors.New("row id is required")
	ErrEmptyParentID        = errors.New("parent id is required")
	ErrNoFieldsToUpdate     = errors.New("at least one field must be provided for update")
	ErrEmptyUpdates         = errors.New("updates list cannot be empty")
	ErrNotANumber           = errors.New("value is not a number")
	ErrNegativeValue        = errors.New("value must not be negative")
	ErrInvalidOperationCode = errors.New("invalid operation code")
	ErrInvalidPartType      = errors.New("invalid part type")
	ErrInvalidText          = errors.New("value is not text")
)

package usecase

import "errors"

var (
	ErrRecordNotFound   = errors.New("passenger record not found")
	ErrUnknownField     = errors.New("field is not editable")
	ErrNothingToExport  = errors.New("manifest view is empty")
	ErrInvalidFilter    = errors.New("invalid filter")
	ErrUnsupportedField = errors.New("unsupported sort field")
)

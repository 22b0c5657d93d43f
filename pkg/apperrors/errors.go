package apperrors

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrEmptyWorkbook = errors.New("workbook has no sheets")
	ErrNoInput       = errors.New("no input files provided")
)

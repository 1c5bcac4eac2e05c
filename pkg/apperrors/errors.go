package apperrors

import "errors"

var (
	ErrNotFound            = errors.New("not found")
	ErrConflict            = errors.New("conflict")
	ErrCourseNotFound      = errors.New("course not found")
	ErrPreferencesRequired = errors.New("study preferences required")
)

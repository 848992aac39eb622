package contract

import "errors"

var (
	ErrModelInvoke     = errors.New("model invoke failed")
	ErrSchemaViolation = errors.New("model response violates schema")
	ErrPromptMissing   = errors.New("required prompt is missing")
	ErrValidation      = errors.New("validation failed")

	ErrUnauthorized         = errors.New("unauthorized")
	ErrNoTenant             = errors.New("caller has no company")
	ErrNotFound             = errors.New("record not found")
	ErrForbidden            = errors.New("forbidden")
	ErrCalendarNotConnected = errors.New("calendar not connected")
)

package dto

import (
	"savdo/internal/core/apperror"
	"savdo/internal/core/id"
)

// ParseID parses an id string, reporting the failing field.
func ParseID(field, s string) (id.ID, error) {
	parsed, err := id.Parse(s)
	if err != nil {
		return id.Nil(), apperror.NewValidation("invalid id format").WithDetail("field", field)
	}
	return parsed, nil
}

// ParseOptionalID parses an optional id string, nil when absent.
func ParseOptionalID(field string, s *string) (*id.ID, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	parsed, err := ParseID(field, *s)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

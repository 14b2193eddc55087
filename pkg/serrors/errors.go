package serrors

import (
	"fmt"
	"sort"
	"strings"
)

// BaseError is a coded error shared by all service-level error kinds.
// LocaleKey is optional and points at a translatable message.
type BaseError struct {
	Code      string
	Message   string
	LocaleKey string
}

func (e *BaseError) Error() string {
	return e.Message
}

func NewError(code, message, localeKey string) *BaseError {
	return &BaseError{
		Code:      code,
		Message:   message,
		LocaleKey: localeKey,
	}
}

// ValidationErrors maps a field name to its validation error.
type ValidationErrors map[string]error

func (e ValidationErrors) Error() string {
	fields := make([]string, 0, len(e))
	for field := range e {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, e[field].Error())
	}
	return strings.Join(parts, "; ")
}

// ValidationError signals malformed or incomplete input.
type ValidationError struct {
	*BaseError
	Field string
}

func (e *ValidationError) Unwrap() error {
	return e.BaseError
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		BaseError: NewError("VALIDATION_FAILED", message, ""),
		Field:     field,
	}
}

func NewFieldRequiredError(field, localeKey string) *ValidationError {
	return &ValidationError{
		BaseError: NewError("FIELD_REQUIRED", fmt.Sprintf("%s is required", field), localeKey),
		Field:     field,
	}
}

// NotFoundError signals that a referenced entity does not exist.
type NotFoundError struct {
	*BaseError
	Entity string
}

func (e *NotFoundError) Unwrap() error {
	return e.BaseError
}

func NewNotFoundError(entity, message string) *NotFoundError {
	return &NotFoundError{
		BaseError: NewError("NOT_FOUND", message, ""),
		Entity:    entity,
	}
}

// ConflictError signals an operation that is invalid in the current state,
// e.g. deciding an approval that is no longer pending.
type ConflictError struct {
	*BaseError
}

func (e *ConflictError) Unwrap() error {
	return e.BaseError
}

func NewConflictError(code, message string) *ConflictError {
	return &ConflictError{BaseError: NewError(code, message, "")}
}

// ForbiddenError signals an action by someone other than the actor the
// operation is reserved for.
type ForbiddenError struct {
	*BaseError
}

func (e *ForbiddenError) Unwrap() error {
	return e.BaseError
}

func NewForbiddenError(code, message string) *ForbiddenError {
	return &ForbiddenError{BaseError: NewError(code, message, "")}
}

// OutOfOrderError signals a decision attempted before every earlier
// approval tier has approved.
type OutOfOrderError struct {
	*BaseError
	Role string
}

func (e *OutOfOrderError) Unwrap() error {
	return e.BaseError
}

func NewOutOfOrderError(role, message string) *OutOfOrderError {
	return &OutOfOrderError{
		BaseError: NewError("APPROVAL_OUT_OF_ORDER", message, ""),
		Role:      role,
	}
}

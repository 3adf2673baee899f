package errors

import (
	"errors"
	"fmt"
)

var (
	// Общие
	ErrNotFound = fmt.Errorf("запись не найдена")

	ErrAssetNotFound  = fmt.Errorf("оборудование не найдено: %w", ErrNotFound)
	ErrTicketNotFound = fmt.Errorf("тикет простоя не найден: %w", ErrNotFound)
)

// ValidationError - не заполнено обязательное поле или нарушена уникальность кода.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidationError(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// ComplianceViolationError - заполнены регуляторные поля чужой категории
// (или нарушена политика BLOCK для планируемого оборудования).
type ComplianceViolationError struct {
	Category string
	Field    string
	Message  string
}

func (e *ComplianceViolationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("compliance (%s): %s", e.Category, e.Message)
	}
	return fmt.Sprintf("compliance (%s): %s: %s", e.Category, e.Field, e.Message)
}

func NewComplianceViolation(category, field, format string, args ...interface{}) error {
	return &ComplianceViolationError{Category: category, Field: field, Message: fmt.Sprintf(format, args...)}
}

// InvalidStateError - недопустимая операция для текущего состояния оборудования или тикета.
type InvalidStateError struct {
	Message string
}

func (e *InvalidStateError) Error() string { return e.Message }

func NewInvalidStateError(format string, args ...interface{}) error {
	return &InvalidStateError{Message: fmt.Sprintf(format, args...)}
}

func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

func IsComplianceViolation(err error) bool {
	var target *ComplianceViolationError
	return errors.As(err, &target)
}

func IsInvalidState(err error) bool {
	var target *InvalidStateError
	return errors.As(err, &target)
}

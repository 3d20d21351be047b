// Package errors provides custom error types for valuation-specific errors.
package errors

import (
	"errors"
	"fmt"
)

// Standard sentinel errors
var (
	ErrDomain        = errors.New("input outside formula domain")
	ErrMissingData   = errors.New("required data missing")
	ErrArithmetic    = errors.New("arithmetic error")
	ErrConfigInvalid = errors.New("invalid configuration")
	ErrUnknownMethod = errors.New("unknown valuation method")
	ErrNotFound      = errors.New("not found")
	ErrDatabaseError = errors.New("database error")
)

// DomainError reports an input combination that makes a formula undefined or
// meaningless, e.g. terminal growth at or above the discount rate.
type DomainError struct {
	Model     string
	Parameter string
	Value     float64
	Reason    string
}

func (e *DomainError) Error() string {
	if e.Model == "" {
		return fmt.Sprintf("domain error: %s (%g): %s", e.Parameter, e.Value, e.Reason)
	}
	return fmt.Sprintf("domain error [%s] %s (%g): %s", e.Model, e.Parameter, e.Value, e.Reason)
}

func (e *DomainError) Unwrap() error {
	return ErrDomain
}

// NewDomainError creates a new DomainError.
func NewDomainError(model, parameter string, value float64, reason string) *DomainError {
	return &DomainError{
		Model:     model,
		Parameter: parameter,
		Value:     value,
		Reason:    reason,
	}
}

// MissingDataError reports a required snapshot or assumption field that is absent.
type MissingDataError struct {
	Model string
	Field string
}

func (e *MissingDataError) Error() string {
	if e.Model == "" {
		return fmt.Sprintf("missing data: %s", e.Field)
	}
	return fmt.Sprintf("missing data [%s]: %s", e.Model, e.Field)
}

func (e *MissingDataError) Unwrap() error {
	return ErrMissingData
}

// NewMissingDataError creates a new MissingDataError.
func NewMissingDataError(model, field string) *MissingDataError {
	return &MissingDataError{
		Model: model,
		Field: field,
	}
}

// ArithmeticError reports an operation that would divide by zero or flip sign.
type ArithmeticError struct {
	Operation string
	Reason    string
}

func (e *ArithmeticError) Error() string {
	return fmt.Sprintf("arithmetic error [%s]: %s", e.Operation, e.Reason)
}

func (e *ArithmeticError) Unwrap() error {
	return ErrArithmetic
}

// NewArithmeticError creates a new ArithmeticError.
func NewArithmeticError(operation, reason string) *ArithmeticError {
	return &ArithmeticError{
		Operation: operation,
		Reason:    reason,
	}
}

// ValidationError represents a validation error.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s (%v): %s", e.Field, e.Value, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrConfigInvalid
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// Warning codes.
const (
	WarnWeightsNormalized = "weights_normalized"
	WarnDefaultBeta       = "default_beta"
	WarnDefaultTaxRate    = "default_tax_rate"
	WarnDefaultCostOfDebt = "default_cost_of_debt"
	WarnDefaultWeights    = "default_weights"
	WarnDefaultGrowth     = "default_growth"
	WarnClamped           = "clamped"
	WarnBlendSkipped      = "blend_skipped"
)

// ConfigurationWarning is a non-fatal notice attached to a result. It is never
// returned as an error.
type ConfigurationWarning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (w ConfigurationWarning) String() string {
	return fmt.Sprintf("%s: %s", w.Code, w.Message)
}

// NewWarning creates a ConfigurationWarning with a formatted message.
func NewWarning(code, format string, args ...interface{}) ConfigurationWarning {
	return ConfigurationWarning{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

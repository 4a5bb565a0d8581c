package errors

import "fmt"

type ValidationDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ValidationError struct {
	Message string
	Details []ValidationDetail
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidationError(message string, details ...ValidationDetail) *ValidationError {
	return &ValidationError{
		Message: message,
		Details: details,
	}
}

func IsValidationError(err error) (*ValidationError, bool) {
	if ve, ok := err.(*ValidationError); ok {
		return ve, true
	}
	return nil, false
}

type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string {
	return e.Message
}

func NewNotFoundError(message string) *NotFoundError {
	return &NotFoundError{Message: message}
}

func IsNotFoundError(err error) (*NotFoundError, bool) {
	if nf, ok := err.(*NotFoundError); ok {
		return nf, true
	}
	return nil, false
}

type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

func NewConflictError(message string) *ConflictError {
	return &ConflictError{Message: message}
}

func IsConflictError(err error) (*ConflictError, bool) {
	if ce, ok := err.(*ConflictError); ok {
		return ce, true
	}
	return nil, false
}

// InvalidTransitionError rejects a lifecycle action that matches no edge
// from the order's current status for the acting role.
type InvalidTransitionError struct {
	Status string
	Action string
	Role   string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition: action %q by %s from status %q", e.Action, e.Role, e.Status)
}

func NewInvalidTransitionError(status, action, role string) *InvalidTransitionError {
	return &InvalidTransitionError{Status: status, Action: action, Role: role}
}

func IsInvalidTransitionError(err error) (*InvalidTransitionError, bool) {
	if it, ok := err.(*InvalidTransitionError); ok {
		return it, true
	}
	return nil, false
}

// PaymentRequiredError rejects a delivery attempted before the advance
// payment has settled.
type PaymentRequiredError struct {
	Message string
}

func (e *PaymentRequiredError) Error() string {
	return e.Message
}

func NewPaymentRequiredError(message string) *PaymentRequiredError {
	return &PaymentRequiredError{Message: message}
}

func IsPaymentRequiredError(err error) (*PaymentRequiredError, bool) {
	if pr, ok := err.(*PaymentRequiredError); ok {
		return pr, true
	}
	return nil, false
}

type InternalError struct {
	Message string
	Cause   error
}

func (e *InternalError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *InternalError) Unwrap() error {
	return e.Cause
}

func NewInternalError(message string, cause error) *InternalError {
	return &InternalError{
		Message: message,
		Cause:   cause,
	}
}

func IsInternalError(err error) (*InternalError, bool) {
	if ie, ok := err.(*InternalError); ok {
		return ie, true
	}
	return nil, false
}

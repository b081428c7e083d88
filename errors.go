package moore

import (
	"errors"
	"fmt"
)

// ErrorCode represents specific error conditions in the controller
type ErrorCode int

const (
	// No error occurred
	ErrCodeNone ErrorCode = iota
	// State id is outside the closed state set
	ErrCodeInvalidState
	// Transition table or application config is malformed
	ErrCodeInvalidConfiguration
	// Port read failed
	ErrCodeInputFailed
	// Port write failed
	ErrCodeOutputFailed
	// Timer wait failed
	ErrCodeTimerFailed
)

func (c ErrorCode) String() string {
	switch c {
	case ErrCodeNone:
		return "none"
	case ErrCodeInvalidState:
		return "invalid_state"
	case ErrCodeInvalidConfiguration:
		return "invalid_configuration"
	case ErrCodeInputFailed:
		return "input_failed"
	case ErrCodeOutputFailed:
		return "output_failed"
	case ErrCodeTimerFailed:
		return "timer_failed"
	default:
		return fmt.Sprintf("ErrorCode(%d)", int(c))
	}
}

// ErrHalted is wrapped by every error that stops the control loop
var ErrHalted = errors.New("controller halted")

// StateError represents state-related errors
type StateError struct {
	Code    ErrorCode
	StateID string
	Message string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("state error [%s]: %s", e.StateID, e.Message)
}

// NewInvalidStateError creates a new invalid state error
func NewInvalidStateError(stateID string, reason string) *StateError {
	return &StateError{
		Code:    ErrCodeInvalidState,
		StateID: stateID,
		Message: reason,
	}
}

// ConfigurationError represents a malformed table or config
type ConfigurationError struct {
	Component string
	Issue     string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error in %s: %s", e.Component, e.Issue)
}

// NewConfigurationError creates a new configuration error
func NewConfigurationError(component, issue string) *ConfigurationError {
	return &ConfigurationError{
		Component: component,
		Issue:     issue,
	}
}

// CollaboratorError wraps a failure of the port or the timer
type CollaboratorError struct {
	Code        ErrorCode
	Op          string
	State       StateID
	OriginalErr error
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("%s failed in state '%s': %v", e.Op, e.State, e.OriginalErr)
}

func (e *CollaboratorError) Unwrap() []error {
	return []error{ErrHalted, e.OriginalErr}
}

// NewCollaboratorError creates a new collaborator failure
func NewCollaboratorError(code ErrorCode, op string, state StateID, err error) *CollaboratorError {
	return &CollaboratorError{
		Code:        code,
		Op:          op,
		State:       state,
		OriginalErr: err,
	}
}

// IsStateError checks if an error is a StateError
func IsStateError(err error) bool {
	var e *StateError
	return errors.As(err, &e)
}

// IsConfigurationError checks if an error is a ConfigurationError
func IsConfigurationError(err error) bool {
	var e *ConfigurationError
	return errors.As(err, &e)
}

// IsCollaboratorError checks if an error is a CollaboratorError
func IsCollaboratorError(err error) bool {
	var e *CollaboratorError
	return errors.As(err, &e)
}

// GetErrorCode returns the error code for known error types
func GetErrorCode(err error) ErrorCode {
	var (
		stateErr  *StateError
		configErr *ConfigurationError
		collabErr *CollaboratorError
	)
	switch {
	case err == nil:
		return ErrCodeNone
	case errors.As(err, &stateErr):
		return stateErr.Code
	case errors.As(err, &configErr):
		return ErrCodeInvalidConfiguration
	case errors.As(err, &collabErr):
		return collabErr.Code
	default:
		return ErrCodeNone
	}
}

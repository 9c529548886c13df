package core

import (
	"errors"
	"fmt"
	"time"
)

// ModelError reports a failure of the language-model collaborator behind an
// agent. It is always recoverable at the pool layer: the failing agent's slot
// in the result map records it and sibling agents are unaffected.
type ModelError struct {
	Model   string // provider or model identifier, may be empty
	Message string
	Err     error // underlying cause, optional
}

func (e *ModelError) Error() string {
	if e.Model != "" {
		return fmt.Sprintf("model error (%s): %s", e.Model, e.Message)
	}
	return fmt.Sprintf("model error: %s", e.Message)
}

func (e *ModelError) Unwrap() error { return e.Err }

// NewModelError creates a ModelError wrapping an optional cause.
func NewModelError(model, message string, cause error) *ModelError {
	return &ModelError{Model: model, Message: message, Err: cause}
}

// ToolError reports a failure inside a named tool. Codes categorize the
// failure for uniform downstream handling:
//
//	VALIDATION_ERROR -> argument / schema mismatch
//	EXECUTION_ERROR  -> the underlying operation failed
type ToolError struct {
	Tool    string `json:"tool"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Details any    `json:"details,omitempty"`
}

func (e *ToolError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("tool error [%s] in %s: %s", e.Code, e.Tool, e.Message)
	}
	return fmt.Sprintf("tool error in %s: %s", e.Tool, e.Message)
}

// NewToolError creates a ToolError with the given categorization code.
func NewToolError(tool, message, code string) *ToolError {
	return &ToolError{Tool: tool, Message: message, Code: code}
}

// ConfigError reports an invalid configuration value such as an unknown
// execution mode or role name. It is fatal to the single call that
// triggered it and surfaces directly to the caller.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string { return fmt.Sprintf("config error: %s", e.Message) }

// NewConfigError creates a ConfigError with a formatted message.
func NewConfigError(format string, args ...any) *ConfigError {
	return &ConfigError{Message: fmt.Sprintf(format, args...)}
}

// NotFoundError reports a lookup miss for a named resource (pool, agent, tool).
type NotFoundError struct {
	Resource string // "pool", "agent", "tool", ...
	Name     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.Name)
}

// NewNotFoundError creates a NotFoundError for the given resource kind and name.
func NewNotFoundError(resource, name string) *NotFoundError {
	return &NotFoundError{Resource: resource, Name: name}
}

// TimeoutError reports that an agent exceeded its configured execution
// budget. For logging purposes it behaves like any other failed execution;
// it is kept distinct in the taxonomy for observability.
type TimeoutError struct {
	Agent  string
	Budget time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("agent %q timed out after %s", e.Agent, e.Budget)
}

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

// IsTimeout reports whether err is (or wraps) a TimeoutError.
func IsTimeout(err error) bool {
	var target *TimeoutError
	return errors.As(err, &target)
}

// IsConfigError reports whether err is (or wraps) a ConfigError.
func IsConfigError(err error) bool {
	var target *ConfigError
	return errors.As(err, &target)
}

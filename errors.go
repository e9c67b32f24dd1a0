package authkit

import (
	"errors"
	"fmt"
)

// Sentinel errors for AuthKit operations.
var (
	// ErrNotFound is returned by mutating operations that require an
	// existing item or rule. Read operations report absence with a nil
	// result instead, so access checks can treat "does not exist" the
	// same as "denies".
	ErrNotFound = errors.New("authkit: not found")

	// ErrAlreadyExists is returned when an item or rule name collides.
	ErrAlreadyExists = errors.New("authkit: already exists")

	// ErrInvalidArgument is returned for self-referential edges, edges
	// that would make a permission the parent of a role, and other
	// malformed inputs.
	ErrInvalidArgument = errors.New("authkit: invalid argument")

	// ErrCycleDetected is returned when adding an edge would create a
	// cycle in the item hierarchy.
	ErrCycleDetected = errors.New("authkit: cycle detected")

	// ErrAccessDenied is returned by the HTTP middleware when a check
	// fails. CheckAccess itself reports denial with a false result, not
	// an error.
	ErrAccessDenied = errors.New("authkit: access denied")

	// ErrDatabaseError is returned when a database operation fails.
	ErrDatabaseError = errors.New("authkit: database error")
)

// Error wraps a sentinel error with additional context.
type Error struct {
	Err     error  // Underlying sentinel error
	Message string // Additional context
	Item    string // Item name involved (if applicable)
	Child   string // Child item name for hierarchy errors
	Rule    string // Rule name involved (if applicable)
	UserID  string // User involved (if applicable)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error for errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is checks if the error matches a target error.
func (e *Error) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewError creates a new Error with context.
func NewError(err error, message string) *Error {
	return &Error{
		Err:     err,
		Message: message,
	}
}

// WithItem adds the item name to the error.
func (e *Error) WithItem(name string) *Error {
	e.Item = name
	return e
}

// WithChild adds the child item name to the error.
func (e *Error) WithChild(name string) *Error {
	e.Child = name
	return e
}

// WithRule adds the rule name to the error.
func (e *Error) WithRule(name string) *Error {
	e.Rule = name
	return e
}

// WithUser adds the user ID to the error.
func (e *Error) WithUser(userID string) *Error {
	e.UserID = userID
	return e
}

// IsNotFound checks if an error reports a missing item or rule.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists checks if an error is due to a name collision.
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsInvalidArgument checks if an error is due to a malformed input.
func IsInvalidArgument(err error) bool {
	return errors.Is(err, ErrInvalidArgument)
}

// IsCycleDetected checks if an error is due to a hierarchy cycle.
func IsCycleDetected(err error) bool {
	return errors.Is(err, ErrCycleDetected)
}

// IsAccessDenied checks if an error reports a failed access check.
func IsAccessDenied(err error) bool {
	return errors.Is(err, ErrAccessDenied)
}

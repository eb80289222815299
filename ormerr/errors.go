// Package ormerr defines the error kinds raised by the query, relation and decode layers.
package ormerr

import (
	"errors"
	"fmt"
)

// Error kinds. Every typed error below matches exactly one of these via errors.Is.
var (
	// ErrConfiguration is returned when a query is assembled incorrectly, e.g. the number of
	// placeholders does not match the number of bound arguments.
	ErrConfiguration = errors.New("ormcore: configuration error")

	// ErrProtocol is returned when a decoded row does not follow the eager-join alias protocol.
	ErrProtocol = errors.New("ormcore: protocol error")

	// ErrNotFound is returned when a single-row fetch yields zero rows.
	ErrNotFound = errors.New("ormcore: record not found")

	// ErrConflict is returned when a duplicate-key conflict could not be resolved.
	ErrConflict = errors.New("ormcore: duplicate key conflict")

	// ErrInvariant marks programming errors such as reading an unloaded relation.
	ErrInvariant = errors.New("ormcore: invariant violation")
)

// ConfigurationError reports a query that cannot be rendered.
type ConfigurationError struct {
	Placeholders int
	Arguments    int
	Reason       string
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	if e.Reason != "" {
		return e.Reason
	}
	return fmt.Sprintf("%d %s found, %d %s provided",
		e.Placeholders, plural(e.Placeholders, "placeholder"),
		e.Arguments, plural(e.Arguments, "argument"))
}

// Is reports whether target is ErrConfiguration.
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

// NewConfigurationError creates a configuration error with a free-form reason.
func NewConfigurationError(format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Reason: fmt.Sprintf(format, args...)}
}

// ProtocolError reports an aliased column that matches no known relation.
type ProtocolError struct {
	Alias  string
	Column string
}

// Error implements the error interface.
func (e *ProtocolError) Error() string {
	return fmt.Sprintf("column %q uses alias %q which matches no relation", e.Column, e.Alias)
}

// Is reports whether target is ErrProtocol.
func (e *ProtocolError) Is(target error) bool {
	return target == ErrProtocol
}

// NotFoundError is returned when a record is not found.
type NotFoundError struct {
	Table string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no %s record found", e.Table)
}

// Is reports whether target is ErrNotFound.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// ConflictError is surfaced when a duplicate-key conflict occurred and the fallback fetch of the
// existing row failed as well.
type ConflictError struct {
	Table string
	Cause error
}

// Error implements the error interface.
func (e *ConflictError) Error() string {
	return fmt.Sprintf("duplicate key on %s: %v", e.Table, e.Cause)
}

// Unwrap returns the fallback failure.
func (e *ConflictError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is ErrConflict.
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// QueryError wraps a failure returned by the executor.
type QueryError struct {
	Op    string
	Table string
	Query string
	Cause error
}

// Error implements the error interface.
func (e *QueryError) Error() string {
	if e.Table != "" {
		return fmt.Sprintf("%s on %s: %v", e.Op, e.Table, e.Cause)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Cause)
}

// Unwrap returns the underlying error.
func (e *QueryError) Unwrap() error {
	return e.Cause
}

// NewQueryError creates a new QueryError.
func NewQueryError(op, table, query string, cause error) *QueryError {
	return &QueryError{
		Op:    op,
		Table: table,
		Query: query,
		Cause: cause,
	}
}

// InvariantError is the panic value used when an engine invariant is broken by the caller.
type InvariantError struct {
	Msg string
}

// Error implements the error interface.
func (e *InvariantError) Error() string {
	return "invariant violation: " + e.Msg
}

// Is reports whether target is ErrInvariant.
func (e *InvariantError) Is(target error) bool {
	return target == ErrInvariant
}

// IsConfiguration checks if an error is a configuration error.
func IsConfiguration(err error) bool {
	return errors.Is(err, ErrConfiguration)
}

// IsProtocol checks if an error is a decode protocol error.
func IsProtocol(err error) bool {
	return errors.Is(err, ErrProtocol)
}

// IsNotFound checks if an error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConflict checks if an error is an unresolved duplicate-key conflict.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

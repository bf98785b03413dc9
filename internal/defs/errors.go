package defs

import "fmt"

// ContractError reports a violation of the table's own invariants:
// malformed context strings, bad context paths, or definitions escaping
// their intended namespace during module load. These are programming or
// configuration errors, never normal dispatch traffic - lookup misses
// and classification failures are reported as boolean values instead.
type ContractError struct {
	// Code identifies the violation category.
	Code ContractErrorCode

	// Message is a human-readable description.
	Message string

	// Name is the offending context or symbol name, when applicable.
	Name string
}

// ContractErrorCode categorizes contract violations.
type ContractErrorCode string

const (
	// ErrCodeBadContext indicates a current-context value that is not a
	// well-formed context name.
	ErrCodeBadContext ContractErrorCode = "BAD_CONTEXT"

	// ErrCodeBadContextPath indicates a context path entry that is not a
	// well-formed context name.
	ErrCodeBadContextPath ContractErrorCode = "BAD_CONTEXT_PATH"

	// ErrCodeNamespaceEscape indicates a loaded definition landed in the
	// default user context instead of its module's context.
	ErrCodeNamespaceEscape ContractErrorCode = "NAMESPACE_ESCAPE"
)

// Error implements the error interface.
func (e *ContractError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Name)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// badContext builds the contract error for a malformed context string.
func badContext(code ContractErrorCode, name string) error {
	return &ContractError{
		Code:    code,
		Message: "not a well-formed context name",
		Name:    name,
	}
}

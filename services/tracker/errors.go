package tracker

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrForbidden       = errors.New("forbidden")
	ErrUnauthenticated = errors.New("user is not authenticated")
	ErrDuplicateKey    = errors.New("duplicate key")
)

const (
	CodeInvalidPoints       = "INVALID_POINTS"
	CodeSubmissionSubmitted = "SUBMISSION_ALREADY_SUBMITTED"
	CodeAlreadySubmitted    = "ALREADY_SUBMITTED"
	CodeCannotReopen        = "CANNOT_REOPEN"
	CodeSprintRequired      = "SPRINT_REQUIRED"
	CodeInvalidStatus       = "INVALID_STATUS"
	CodeActiveSprintExists  = "ACTIVE_SPRINT_EXISTS"
	CodeInvalidDates        = "INVALID_DATES"
	CodeSprintActive        = "SPRINT_ACTIVE"
	CodeInvalidRole         = "INVALID_ROLE"
	CodeEmailTaken          = "EMAIL_TAKEN"
	CodeInvalidCredentials  = "INVALID_CREDENTIALS"
	CodeDuplicateResource   = "DUPLICATE_RESOURCE"
	CodeOwnerRemoval        = "OWNER_REMOVAL"
	CodeSprintCompleted     = "SPRINT_COMPLETED"
	CodeInvalidTransition   = "INVALID_STATUS_TRANSITION"
	CodeSelfDeactivation    = "SELF_DEACTIVATION"
)

// BusinessRuleError is a rejected operation carrying a machine-readable code.
type BusinessRuleError struct {
	Code    string
	Message string
}

func (e *BusinessRuleError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func ruleError(code, msg string) error {
	return &BusinessRuleError{Code: code, Message: msg}
}

// UnavailableError wraps a failure of an underlying store.
type UnavailableError struct {
	Op       string
	Resource string
	Err      error
}

func (e *UnavailableError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Resource, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Errors, "; ")
}

// wrapStoreErr passes domain sentinels through and wraps everything else
// as UnavailableError.
func wrapStoreErr(op, resource string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrDuplicateKey) {
		return err
	}
	return &UnavailableError{Op: op, Resource: resource, Err: err}
}

// IsCode reports whether err is a BusinessRuleError with the given code.
func IsCode(err error, code string) bool {
	var br *BusinessRuleError
	return errors.As(err, &br) && br.Code == code
}

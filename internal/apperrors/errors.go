package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrInternal indicates an unexpected failure inside the application.
var ErrInternal = errors.New("internal error")

// ErrImbalanced indicates a voucher whose accounting legs do not sum to zero.
var ErrImbalanced = errors.New("voucher is not balanced")

// ErrMissingHeaderField indicates a voucher header without a mandatory field.
var ErrMissingHeaderField = errors.New("voucher header field missing")

// ErrOrphanLeg indicates a voucher leg that does not belong to the header it was sent with.
var ErrOrphanLeg = errors.New("orphan voucher leg")

// ErrHierarchy indicates unresolved parents or cycles in the master hierarchy.
var ErrHierarchy = errors.New("hierarchy violation")

// ErrStorage indicates a failure of the backing store.
var ErrStorage = errors.New("storage error")

// ErrTenantBusy indicates another sync run holds the tenant lock.
var ErrTenantBusy = errors.New("tenant sync already in progress")

// AppError carries an HTTP status alongside the wrapped error.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates an AppError.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// NewNotFoundError creates a 404 AppError wrapping ErrNotFound.
func NewNotFoundError(message string) *AppError {
	return NewAppError(http.StatusNotFound, message, ErrNotFound)
}

// NewValidationFailure creates a 400 AppError wrapping ErrValidation.
func NewValidationFailure(message string) *AppError {
	return NewAppError(http.StatusBadRequest, message, ErrValidation)
}

// ValidationError reports a field of a row that cannot be stored.
type ValidationError struct {
	Table  string
	GUID   string
	Field  string
	Reason string
}

// NewValidationError creates a ValidationError.
func NewValidationError(table, guid, field, reason string) *ValidationError {
	return &ValidationError{Table: table, GUID: guid, Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	b.WriteString("validation failed")
	if e.Table != "" {
		b.WriteString(" for " + e.Table)
	}
	if e.GUID != "" {
		b.WriteString(" " + e.GUID)
	}
	if e.Field != "" {
		b.WriteString(": field " + e.Field)
	}
	if e.Reason != "" {
		b.WriteString(": " + e.Reason)
	}
	return b.String()
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// ImbalancedVoucherError is returned when Σ amount over the accounting legs exceeds the tolerance.
type ImbalancedVoucherError struct {
	GUID string
	Sum  decimal.Decimal
}

func (e *ImbalancedVoucherError) Error() string {
	return fmt.Sprintf("voucher %s is not balanced: accounting legs sum to %s", e.GUID, e.Sum.String())
}

func (e *ImbalancedVoucherError) Is(target error) bool { return target == ErrImbalanced }

// MissingHeaderFieldError names the header field a voucher was sent without.
type MissingHeaderFieldError struct {
	GUID  string
	Field string
}

func (e *MissingHeaderFieldError) Error() string {
	if e.GUID == "" {
		return fmt.Sprintf("voucher header is missing %s", e.Field)
	}
	return fmt.Sprintf("voucher %s header is missing %s", e.GUID, e.Field)
}

func (e *MissingHeaderFieldError) Is(target error) bool {
	return target == ErrMissingHeaderField || target == ErrValidation
}

// OrphanLegError is returned when a leg carries a guid other than its header's.
type OrphanLegError struct {
	Table      string
	HeaderGUID string
	LegGUID    string
}

func (e *OrphanLegError) Error() string {
	return fmt.Sprintf("%s leg with guid %q does not belong to voucher %s", e.Table, e.LegGUID, e.HeaderGUID)
}

func (e *OrphanLegError) Is(target error) bool { return target == ErrOrphanLeg }

// HierarchyError summarises a failed hierarchy verification.
type HierarchyError struct {
	UnresolvedParents int
	Cycles            int
	DuplicateNames    int
}

func (e *HierarchyError) Error() string {
	return fmt.Sprintf("hierarchy has %d unresolved parents, %d cycles and %d duplicate names",
		e.UnresolvedParents, e.Cycles, e.DuplicateNames)
}

func (e *HierarchyError) Is(target error) bool { return target == ErrHierarchy }

// DuplicateKeyError is returned when a write collides with an existing key.
type DuplicateKeyError struct {
	Table string
	Key   string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("%s already has a row for %s", e.Table, e.Key)
}

func (e *DuplicateKeyError) Is(target error) bool { return target == ErrDuplicate }

// StorageError wraps a failure of the backing store.
type StorageError struct {
	Op  string
	Err error
}

// NewStorageError creates a StorageError.
func NewStorageError(op string, err error) *StorageError {
	return &StorageError{Op: op, Err: err}
}

func (e *StorageError) Error() string {
	if e.Err == nil {
		return "storage: " + e.Op
	}
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func (e *StorageError) Is(target error) bool { return target == ErrStorage }

// Kind classifies err for sync reports.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrImbalanced):
		return "imbalanced_voucher"
	case errors.Is(err, ErrMissingHeaderField):
		return "missing_header_field"
	case errors.Is(err, ErrOrphanLeg):
		return "orphan_leg"
	case errors.Is(err, ErrHierarchy):
		return "hierarchy"
	case errors.Is(err, ErrDuplicate):
		return "duplicate_key"
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrTenantBusy):
		return "tenant_busy"
	case errors.Is(err, ErrStorage):
		return "storage"
	default:
		return "internal"
	}
}

// HTTPStatus maps err to the status code handlers respond with.
func HTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Code != 0 {
		return appErr.Code
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrTenantBusy), errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrHierarchy), errors.Is(err, ErrImbalanced), errors.Is(err, ErrOrphanLeg):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

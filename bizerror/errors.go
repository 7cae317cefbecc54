package bizerror

import (
	"errors"
	"net/http"
)

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrInvalidPassword = errors.New("invalid password")

	// ErrTransactionNotPending guards the single write path of the workflow:
	// a decision may only land on a pending transaction. Covers double
	// submission and stale-client races.
	ErrTransactionNotPending = errors.New("workflow transaction is not pending")

	// ErrStageCatalogMissing is raised when no active stage catalog exists for
	// a site, or a newly materialized pending stage has no resolvable routee.
	ErrStageCatalogMissing = errors.New("no active stage catalog for site")

	ErrEmptyComment  = errors.New("comment is required")
	ErrInvalidAction = errors.New("invalid decision action")

	ErrStageNumberExisted = errors.New("stage number already defined for site")
)

type BizError interface {
	Respond() *BizErrorDetail
}

type BizErrorDetail struct {
	Status  int
	Code    string
	Message string

	Data  interface{}
	Cause error
}

type ErrBadParam struct {
	Cause error
}

func (e *ErrBadParam) Unwrap() error {
	return e.Cause
}
func (e *ErrBadParam) Error() string {
	if e.Cause != nil {
		return e.Cause.Error()
	}
	return "common.bad_param"
}
func (e *ErrBadParam) Respond() *BizErrorDetail {
	message := "common.bad_param"
	if e.Cause != nil {
		message = e.Cause.Error()
	}
	return &BizErrorDetail{Status: http.StatusBadRequest, Code: "common.bad_param", Message: message, Data: nil}
}

package response

import (
	"errors"

	"github.com/fatflowers/quitsmart/pkg/apperr"
)

// APIResponseCode is the envelope status code.
type APIResponseCode int

const (
	APIResponseCodeOK           APIResponseCode = 0
	APIResponseCodeBadRequest   APIResponseCode = 40000
	APIResponseCodeUnauthorized APIResponseCode = 40100
	APIResponseCodeForbidden    APIResponseCode = 40300
	APIResponseCodeNotFound     APIResponseCode = 40400
	APIResponseCodeConflict     APIResponseCode = 40900
	APIResponseCodeTooMany      APIResponseCode = 42900
	APIResponseCodeError        APIResponseCode = 50000
)

var codeToMsg = map[APIResponseCode]string{
	APIResponseCodeOK:           "ok",
	APIResponseCodeBadRequest:   "invalid request",
	APIResponseCodeUnauthorized: "unauthorized",
	APIResponseCodeForbidden:    "forbidden",
	APIResponseCodeNotFound:     "not found",
	APIResponseCodeConflict:     "conflict, retry the request",
	APIResponseCodeTooMany:      "too many requests",
	APIResponseCodeError:        "unexpected error",
}

// APIResponse is the generic response envelope used by HTTP APIs.
// Use OKT / ErrorT helpers to construct instances.
type APIResponse[T any] struct {
	Code    APIResponseCode `json:"code"`
	Message string          `json:"message"`
	Data    T               `json:"data"`
}

// OKT returns a successful response with data.
func OKT[T any](data T) *APIResponse[T] {
	return &APIResponse[T]{Code: APIResponseCodeOK, Message: codeToMsg[APIResponseCodeOK], Data: data}
}

// ErrorT returns an error response with message and optional data.
func ErrorT[T any](code APIResponseCode, data T) *APIResponse[T] {
	return &APIResponse[T]{Code: code, Message: codeToMsg[code], Data: data}
}

// CodeFor maps a service error onto its envelope code.
func CodeFor(err error) APIResponseCode {
	switch {
	case err == nil:
		return APIResponseCodeOK
	case errors.Is(err, apperr.ErrValidation):
		return APIResponseCodeBadRequest
	case errors.Is(err, apperr.ErrEntitlement):
		return APIResponseCodeForbidden
	case errors.Is(err, apperr.ErrNotFound):
		return APIResponseCodeNotFound
	case errors.Is(err, apperr.ErrConflict):
		return APIResponseCodeConflict
	}
	return APIResponseCodeError
}

// FromError builds an error envelope carrying err's message. Unclassified
// errors are reported without detail.
func FromError(err error) *APIResponse[string] {
	code := CodeFor(err)
	if code == APIResponseCodeError {
		return ErrorT(code, "")
	}
	return ErrorT(code, err.Error())
}

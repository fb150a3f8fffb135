package errors

import (
	"errors"
	"fmt"
)

const MsgValueMissing = "Please fill out this field."

// FieldError is a validation failure tied to one form input.
type FieldError struct {
	Field string
	Msg   string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Msg)
}

func NewFieldError(field, msg string) error {
	return &FieldError{Field: field, Msg: msg}
}

func AsFieldError(err error) (*FieldError, bool) {
	var fieldError *FieldError
	ok := errors.As(err, &fieldError)
	return fieldError, ok
}

func IsFieldError(err error) bool {
	_, ok := AsFieldError(err)
	return ok
}

// GenericError carries a message for the visitor with no field attached.
type GenericError struct {
	Msg string
}

func (e *GenericError) Error() string {
	return e.Msg
}

func NewGenericError(msg string) error {
	return &GenericError{Msg: msg}
}

func AsGenericError(err error) (*GenericError, bool) {
	var genericError *GenericError
	ok := errors.As(err, &genericError)
	return genericError, ok
}

func IsGenericError(err error) bool {
	_, ok := AsGenericError(err)
	return ok
}

// ProcessorError is what the payment processor reports: one parameter name in
// its own vocabulary (card[address_zip], bank_account[country], ...) and a
// message.
type ProcessorError struct {
	Param string
	Msg   string
}

func (e *ProcessorError) Error() string {
	if e.Param == "" {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Param, e.Msg)
}

func AsProcessorError(err error) (*ProcessorError, bool) {
	var processorError *ProcessorError
	ok := errors.As(err, &processorError)
	return processorError, ok
}

// BackendError is the structured failure returned by the signup endpoint.
type BackendError struct {
	StatusCode int
	Param      string
	Msg        string
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("backend responded %d: %s", e.StatusCode, e.Msg)
}

func AsBackendError(err error) (*BackendError, bool) {
	var backendError *BackendError
	ok := errors.As(err, &backendError)
	return backendError, ok
}

// MapParam resolves a processor or backend parameter onto a form field, or a
// GenericError when the parameter is unmapped.
func MapParam(params map[string]string, param, msg string) error {
	if field, ok := params[param]; ok {
		return NewFieldError(field, msg)
	}
	return NewGenericError(msg)
}

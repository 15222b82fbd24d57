// Copyright (c) 2026 CloudMine Team
// cmpurge - bulk deletion tool for CloudMine applications
// This source code is licensed under the MIT license found in the LICENSE file.

package cloudmine

import (
	"errors"
	"fmt"
)

// Sentinel errors. Callers classify failures with errors.Is.
var (
	// ErrUsage means a required input (base URL, app id, master key) is missing.
	ErrUsage = errors.New("missing required argument")
	// ErrConnectivity wraps transport-level failures reaching the API host.
	ErrConnectivity = errors.New("api unreachable")
	// ErrResponseParse means a non-empty body was not the JSON we expected.
	ErrResponseParse = errors.New("malformed api response")
	// ErrRemoteFailure means the API answered with a non-2xx status.
	ErrRemoteFailure = errors.New("api reported failure")
)

// Error carries the operation and request context of a failed call.
type Error struct {
	// Op is the client operation, e.g. "delete-account".
	Op     string
	Method string
	// URL is the request URL. It never contains credentials.
	URL    string
	Status int
	Err    error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("cloudmine.%s %s %s: status %d: %v", e.Op, e.Method, e.URL, e.Status, e.Err)
	}
	if e.URL != "" {
		return fmt.Sprintf("cloudmine.%s %s %s: %v", e.Op, e.Method, e.URL, e.Err)
	}
	return fmt.Sprintf("cloudmine.%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(op, method, url string, status int, kind, cause error) *Error {
	err := kind
	if cause != nil && cause != kind {
		err = fmt.Errorf("%w: %v", kind, cause)
	}
	return &Error{Op: op, Method: method, URL: redact(url), Status: status, Err: err}
}

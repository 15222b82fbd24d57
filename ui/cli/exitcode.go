// Copyright (c) 2026 CloudMine Team
// cmpurge - bulk deletion tool for CloudMine applications
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cloudmine/cmpurge/internal/cloudmine"
	"github.com/cloudmine/cmpurge/internal/i18n"
)

// Process exit codes.
const (
	ExitOK           = 0
	ExitFailure      = 1
	ExitUsage        = 2
	ExitConnectivity = 3
	ExitParse        = 4
	ExitRemote       = 5
)

// errAborted is returned when the operator declines the confirmation.
var errAborted = errors.New("aborted by operator")

// reportedError marks an error whose message was already shown to the
// operator, so Execute does not print it again.
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

func reported(err error) error {
	return &reportedError{err: err}
}

func isReported(err error) bool {
	var r *reportedError
	return errors.As(err, &r)
}

func usageError(err error) error {
	if err == nil {
		return cloudmine.ErrUsage
	}
	return fmt.Errorf("%w: %v", cloudmine.ErrUsage, err)
}

// ExitCode maps an error returned by the root command to an exit code.
// Connectivity wins over remote failures when a sweep hit both.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, cloudmine.ErrUsage), isCobraUsage(err):
		return ExitUsage
	case errors.Is(err, cloudmine.ErrConnectivity):
		return ExitConnectivity
	case errors.Is(err, cloudmine.ErrResponseParse):
		return ExitParse
	case errors.Is(err, cloudmine.ErrRemoteFailure):
		return ExitRemote
	default:
		return ExitFailure
	}
}

// isCobraUsage detects the few usage errors cobra returns unwrapped.
func isCobraUsage(err error) bool {
	msg := err.Error()
	return strings.HasPrefix(msg, "unknown command") || strings.HasPrefix(msg, "unknown flag") ||
		strings.HasPrefix(msg, "accepts ") || strings.HasPrefix(msg, "requires ")
}

// describeError renders err for the operator in the configured language.
func describeError(err error) string {
	switch {
	case errors.Is(err, errAborted):
		return i18n.T("error.aborted")
	case errors.Is(err, cloudmine.ErrConnectivity):
		return i18n.T("error.connectivity", err)
	case errors.Is(err, cloudmine.ErrResponseParse):
		return i18n.T("error.parse", err)
	case errors.Is(err, cloudmine.ErrRemoteFailure):
		return i18n.T("error.remote", err)
	default:
		return err.Error()
	}
}

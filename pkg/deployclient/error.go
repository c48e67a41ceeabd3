package deployclient

import (
	"context"
	"errors"
	"fmt"

	"github.com/nais/sitedeploy/pkg/archive"
	"github.com/nais/sitedeploy/pkg/deployment"
	"github.com/nais/sitedeploy/pkg/netlify"
	"github.com/nais/sitedeploy/pkg/session"
)

type ExitCode int

// Keep separate to avoid skewing exit codes
const (
	ExitSuccess ExitCode = iota
	ExitDeploymentError
	ExitNoDeployment
	ExitUnavailable
	ExitInvocationFailure
	ExitInternalError
	ExitTimeout
)

type Error struct {
	Code ExitCode
	Err  error
}

func (err *Error) Error() string {
	return err.Err.Error()
}

func (err *Error) Unwrap() error {
	return err.Err
}

func Errorf(exitCode ExitCode, format string, args ...any) *Error {
	return &Error{
		Code: exitCode,
		Err:  fmt.Errorf(format, args...),
	}
}

func ErrorWrap(exitCode ExitCode, err error) *Error {
	return &Error{
		Code: exitCode,
		Err:  err,
	}
}

func ErrorExitCode(err error) ExitCode {
	if err == nil {
		return ExitSuccess
	}
	e := &Error{}
	if !errors.As(err, &e) {
		return ExitInternalError
	}
	return e.Code
}

// ErrorStatus returns an error for deployments that finished unsuccessfully.
func ErrorStatus(d deployment.Deployment) error {
	switch d.Status {
	default:
		return nil
	case deployment.StatusError:
		return Errorf(ExitDeploymentError, "deployment %s failed", d.DeployID)
	}
}

// deployError assigns an exit code to an error returned when starting a deployment.
func deployError(err error) error {
	var (
		packagingError  = &archive.PackagingError{}
		submissionError = &netlify.SubmissionError{}
	)

	switch {
	case session.IsConfigurationError(err):
		return ErrorWrap(ExitInvocationFailure, err)
	case errors.As(err, &packagingError):
		return ErrorWrap(ExitInternalError, err)
	case errors.Is(err, context.DeadlineExceeded):
		return Errorf(ExitTimeout, "deployment timed out: %w", err)
	case errors.As(err, &submissionError):
		if submissionError.StatusCode == 0 {
			return ErrorWrap(ExitUnavailable, err)
		}
		return ErrorWrap(ExitNoDeployment, err)
	case errors.Is(err, session.ErrConflict):
		return ErrorWrap(ExitNoDeployment, err)
	default:
		return ErrorWrap(ExitInternalError, err)
	}
}

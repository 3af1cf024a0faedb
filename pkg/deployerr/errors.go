// Copyright (c) 2019 Uber Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package deployerr holds the errors a deployment run can end with.
package deployerr

import (
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
)

var (
	// ErrNotReady is returned while a remote service is reachable but not
	// ready to serve. Poll loops absorb it.
	ErrNotReady = errors.New("remote service not ready")

	// ErrAuthenticationMismatch is returned when a remote service rejects
	// the deployment secret. It is never retried.
	ErrAuthenticationMismatch = errors.New("deployment secret rejected by remote service")

	// ErrAccountExists is returned when the account being created is
	// already known to the user directory.
	ErrAccountExists = errors.New("account already exists")
)

// BadConfigurationError lists every problem found in a placement request.
type BadConfigurationError struct {
	Problems []string
}

func (e *BadConfigurationError) Error() string {
	switch len(e.Problems) {
	case 0:
		return "bad configuration"
	case 1:
		return "bad configuration: " + e.Problems[0]
	}
	return fmt.Sprintf("bad configuration: %d problems: %s",
		len(e.Problems), strings.Join(e.Problems, "; "))
}

// NewBadConfiguration returns a BadConfigurationError for the given
// problems.
func NewBadConfiguration(problems ...string) *BadConfigurationError {
	return &BadConfigurationError{Problems: problems}
}

// DeploymentFailureError is returned when a bootstrap step ran out of
// its retry budget or failed outright.
type DeploymentFailureError struct {
	// Step names the bootstrap step that failed.
	Step string
	// Waited is how long the step spent before giving up.
	Waited time.Duration
	// Attempts is the number of attempts made by the step.
	Attempts int
	// Cause is the last error seen, if any.
	Cause error
}

func (e *DeploymentFailureError) Error() string {
	msg := fmt.Sprintf("deployment failed at step %q after %d attempt(s) in %s",
		e.Step, e.Attempts, e.Waited)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the last error seen by the failed step.
func (e *DeploymentFailureError) Unwrap() error {
	return e.Cause
}

// IsNotReady returns true if the cause of err is ErrNotReady.
func IsNotReady(err error) bool {
	return errors.Cause(err) == ErrNotReady
}

// IsAuthenticationMismatch returns true if the cause of err is
// ErrAuthenticationMismatch, including when it is the last error seen by
// a failed step.
func IsAuthenticationMismatch(err error) bool {
	if f, ok := asDeploymentFailure(err); ok {
		return IsAuthenticationMismatch(f.Cause)
	}
	return errors.Cause(err) == ErrAuthenticationMismatch
}

// IsAccountExists returns true if the cause of err is ErrAccountExists.
func IsAccountExists(err error) bool {
	return errors.Cause(err) == ErrAccountExists
}

// IsBadConfiguration returns true if the cause of err is a
// BadConfigurationError.
func IsBadConfiguration(err error) bool {
	_, ok := errors.Cause(err).(*BadConfigurationError)
	return ok
}

// IsDeploymentFailure returns true if the cause of err is a
// DeploymentFailureError.
func IsDeploymentFailure(err error) bool {
	_, ok := asDeploymentFailure(err)
	return ok
}

func asDeploymentFailure(err error) (*DeploymentFailureError, bool) {
	if err == nil {
		return nil, false
	}
	f, ok := errors.Cause(err).(*DeploymentFailureError)
	return f, ok
}

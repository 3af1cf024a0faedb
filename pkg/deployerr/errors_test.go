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

package deployerr

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestBadConfigurationMessage(t *testing.T) {
	assert.Equal(t, "bad configuration", NewBadConfiguration().Error())
	assert.Equal(t,
		"bad configuration: no node has the controller role",
		NewBadConfiguration("no node has the controller role").Error())
	assert.Equal(t,
		"bad configuration: 2 problems: a; b",
		NewBadConfiguration("a", "b").Error())
}

func TestPredicatesSeeThroughWrapping(t *testing.T) {
	assert.True(t, IsNotReady(errors.Wrap(ErrNotReady, "poll")))
	assert.True(t, IsAccountExists(errors.Wrap(ErrAccountExists, "create")))
	assert.True(t, IsAuthenticationMismatch(
		errors.Wrap(ErrAuthenticationMismatch, "call")))
	assert.True(t, IsBadConfiguration(
		errors.Wrap(NewBadConfiguration("x"), "resolve")))

	assert.False(t, IsNotReady(nil))
	assert.False(t, IsAccountExists(ErrNotReady))
	assert.False(t, IsDeploymentFailure(nil))
}

func TestDeploymentFailure(t *testing.T) {
	err := &DeploymentFailureError{
		Step:     "wait for machines",
		Waited:   3 * time.Second,
		Attempts: 4,
		Cause:    ErrNotReady,
	}
	assert.True(t, IsDeploymentFailure(errors.Wrap(err, "bootstrap")))
	assert.False(t, IsAuthenticationMismatch(err))
	assert.Contains(t, err.Error(), "wait for machines")
	assert.Contains(t, err.Error(), "3s")
	assert.Equal(t, ErrNotReady, err.Unwrap())

	err.Cause = ErrAuthenticationMismatch
	assert.True(t, IsAuthenticationMismatch(err))
}

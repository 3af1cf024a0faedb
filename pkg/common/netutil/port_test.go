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

package netutil

import (
	"net"
	"testing"
	"time"

	"github.com/Gigware/appscale-tools/pkg/common/backoff"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func listen(t *testing.T) (net.Listener, int) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	return l, l.Addr().(*net.TCPAddr).Port
}

func TestIsPortOpen(t *testing.T) {
	l, port := listen(t)
	assert.True(t, IsPortOpen("127.0.0.1", port, time.Second))

	l.Close()
	assert.False(t, IsPortOpen("127.0.0.1", port, 100*time.Millisecond))
}

func TestWaitForPortOpen(t *testing.T) {
	l, port := listen(t)
	defer l.Close()

	res, err := WaitForPort("127.0.0.1", port,
		backoff.NewRetryPolicy(3, 10*time.Millisecond))
	assert.NoError(t, err)
	assert.Equal(t, 1, res.Attempts)
}

func TestWaitForPortGivesUp(t *testing.T) {
	l, port := listen(t)
	l.Close()

	res, err := WaitForPort("127.0.0.1", port,
		backoff.NewRetryPolicy(2, time.Millisecond))
	assert.Error(t, err)
	assert.Equal(t, 2, res.Attempts)
}

func TestJoinHostPort(t *testing.T) {
	assert.Equal(t, "10.0.0.1:17443", JoinHostPort("10.0.0.1", 17443))
	assert.Equal(t, "[::1]:22", JoinHostPort("::1", 22))
}

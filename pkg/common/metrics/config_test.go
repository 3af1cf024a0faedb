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

package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitMetricScopeNoop(t *testing.T) {
	scope, closer, err := InitMetricScope(&Config{}, "appscale-tools")
	require.NoError(t, err)
	require.NotNil(t, scope)
	scope.Counter("runs").Inc(1)
	assert.NoError(t, closer.Close())
}

func TestInitMetricScopeNilConfig(t *testing.T) {
	scope, closer, err := InitMetricScope(nil, "tools")
	require.NoError(t, err)
	require.NotNil(t, scope)
	assert.NoError(t, closer.Close())
}

func TestInitMetricScopeStatsd(t *testing.T) {
	cfg := &Config{
		Statsd: &StatsdConfig{
			Enable:   true,
			Endpoint: "127.0.0.1:8125",
		},
	}
	scope, closer, err := InitMetricScope(cfg, "tools")
	require.NoError(t, err)
	scope.Timer("step").Record(0)
	assert.NoError(t, closer.Close())
}

func TestInitMetricScopeReportsThroughStatsd(t *testing.T) {
	scope, closer, err := InitMetricScope(&Config{}, "appscale-tools")
	require.NoError(t, err)
	defer closer.Close()

	assert.True(t, scope.Capabilities().Reporting())
	assert.False(t, scope.Capabilities().Tagging())
}

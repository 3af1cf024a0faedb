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

package bootstrap

import (
	"github.com/uber-go/tally"
)

// Metrics tracks bootstrap runs and their polls.
type Metrics struct {
	Runs        tally.Counter
	RunSuccess  tally.Counter
	RunFail     tally.Counter
	RunDuration tally.Timer

	DirectoryHostPolls tally.Counter
	LoadedPolls        tally.Counter
	AccountExists      tally.Counter

	scope tally.Scope
}

// NewMetrics returns a new Metrics struct, with all metrics initialized
// and rooted at the given tally.Scope
func NewMetrics(scope tally.Scope) *Metrics {
	return &Metrics{
		Runs:        scope.Counter("runs"),
		RunSuccess:  scope.Counter("run_success"),
		RunFail:     scope.Counter("run_fail"),
		RunDuration: scope.Timer("run_duration"),

		DirectoryHostPolls: scope.Counter("directory_host_polls"),
		LoadedPolls:        scope.Counter("loaded_polls"),
		AccountExists:      scope.Counter("account_exists"),

		scope: scope,
	}
}

func (m *Metrics) step(step string) tally.Scope {
	return m.scope.Tagged(map[string]string{"step": step})
}

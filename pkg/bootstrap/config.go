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
	"time"

	"github.com/Gigware/appscale-tools/pkg/common"
)

const (
	_defaultRPCTimeout            = 10 * time.Second
	_defaultDirectoryHostAttempts = 60
	_defaultDirectoryHostInterval = 5 * time.Second
	_defaultDirectoryPortTimeout  = 5 * time.Minute
	_defaultDirectoryPortInterval = 2 * time.Second
	_defaultLoadTimeout           = 2 * time.Hour
	_defaultLoadInterval          = 10 * time.Second
)

// Config bounds every wait of a bootstrap run.
type Config struct {
	ControllerPort int `yaml:"controller_port" validate:"min=0,max=65535"`
	DirectoryPort  int `yaml:"directory_port" validate:"min=0,max=65535"`

	// RPCTimeout bounds a single call to the controller or directory.
	RPCTimeout time.Duration `yaml:"rpc_timeout"`

	// DirectoryHostAttempts is how many times the controller is asked for
	// the directory host before the run fails.
	DirectoryHostAttempts int           `yaml:"directory_host_attempts" validate:"min=0"`
	DirectoryHostInterval time.Duration `yaml:"directory_host_interval"`

	DirectoryPortTimeout  time.Duration `yaml:"directory_port_timeout"`
	DirectoryPortInterval time.Duration `yaml:"directory_port_interval"`

	// LoadTimeout is the elapsed-time budget for every machine to finish
	// loading. Large deployments take a while.
	LoadTimeout  time.Duration `yaml:"load_timeout"`
	LoadInterval time.Duration `yaml:"load_interval"`
}

func (c Config) withDefaults() Config {
	if c.ControllerPort == 0 {
		c.ControllerPort = common.ControllerPort
	}
	if c.DirectoryPort == 0 {
		c.DirectoryPort = common.DirectoryPort
	}
	if c.RPCTimeout == 0 {
		c.RPCTimeout = _defaultRPCTimeout
	}
	if c.DirectoryHostAttempts == 0 {
		c.DirectoryHostAttempts = _defaultDirectoryHostAttempts
	}
	if c.DirectoryHostInterval == 0 {
		c.DirectoryHostInterval = _defaultDirectoryHostInterval
	}
	if c.DirectoryPortTimeout == 0 {
		c.DirectoryPortTimeout = _defaultDirectoryPortTimeout
	}
	if c.DirectoryPortInterval == 0 {
		c.DirectoryPortInterval = _defaultDirectoryPortInterval
	}
	if c.LoadTimeout == 0 {
		c.LoadTimeout = _defaultLoadTimeout
	}
	if c.LoadInterval == 0 {
		c.LoadInterval = _defaultLoadInterval
	}
	return c
}

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

package main

import (
	"path/filepath"

	"github.com/Gigware/appscale-tools/pkg/bootstrap"
	"github.com/Gigware/appscale-tools/pkg/common"
	common_config "github.com/Gigware/appscale-tools/pkg/common/config"
	"github.com/Gigware/appscale-tools/pkg/common/logging"
	"github.com/Gigware/appscale-tools/pkg/common/metrics"
	"github.com/Gigware/appscale-tools/pkg/common/sshutil"
	"github.com/Gigware/appscale-tools/pkg/deploy"
	"github.com/Gigware/appscale-tools/pkg/lock"
	"github.com/Gigware/appscale-tools/pkg/metadata"
	"github.com/Gigware/appscale-tools/pkg/provision"
)

// Config holds all config to run appscale-tools.
type Config struct {
	Bootstrap    bootstrap.Config     `yaml:"bootstrap"`
	Deploy       deploy.Config        `yaml:"deploy"`
	Metadata     metadata.Config      `yaml:"metadata"`
	Lock         lock.Config          `yaml:"lock"`
	Provision    provision.Config     `yaml:"provision"`
	SSH          sshutil.Config       `yaml:"ssh"`
	Metrics      metrics.Config       `yaml:"metrics"`
	SentryConfig logging.SentryConfig `yaml:"sentry"`
}

// loadConfig merges files in order. With no file the defaults of every
// component apply.
func loadConfig(stateDir string, files ...string) (*Config, error) {
	cfg := &Config{}
	if len(files) > 0 {
		if err := common_config.Parse(cfg, files...); err != nil {
			return nil, err
		}
	} else if err := common_config.Validate(cfg); err != nil {
		return nil, err
	}

	if cfg.Metadata.Directory == "" {
		cfg.Metadata.Directory = stateDir
	}
	if cfg.Lock.Directory == "" {
		cfg.Lock.Directory = filepath.Join(stateDir, "locks")
	}
	// the readiness probe waits on the port the ssh client dials
	if cfg.SSH.Port == 0 {
		cfg.SSH.Port = common.SSHPort
	}
	cfg.Provision.SSHPort = cfg.SSH.Port
	return cfg, nil
}

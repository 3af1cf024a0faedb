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
	"io"
	"strings"
	"time"

	"github.com/cactus/go-statsd-client/statsd"
	log "github.com/sirupsen/logrus"
	"github.com/uber-go/tally"
	tallystatsd "github.com/uber-go/tally/statsd"
)

const _defaultFlushInterval = time.Second

// Config is the metrics reporting configuration of the tools.
type Config struct {
	Statsd *StatsdConfig `yaml:"statsd"`

	// FlushInterval is how often the root scope reports. Defaults to 1s.
	FlushInterval time.Duration `yaml:"flush_interval"`
}

// StatsdConfig configures the statsd reporter.
type StatsdConfig struct {
	Enable   bool   `yaml:"enable"`
	Endpoint string `yaml:"endpoint"`
	Prefix   string `yaml:"prefix"`
}

// InitMetricScope initializes a root scope named rootMetricScope and its
// closer. Without a statsd endpoint the scope reports to a no-op client.
// Closing the returned closer flushes pending metrics.
func InitMetricScope(
	cfg *Config,
	rootMetricScope string,
) (tally.Scope, io.Closer, error) {
	var c statsd.Statter
	if cfg != nil && cfg.Statsd != nil && cfg.Statsd.Enable {
		log.WithField("endpoint", cfg.Statsd.Endpoint).
			Info("Metrics configured with statsd endpoint")
		var err error
		c, err = statsd.NewClient(cfg.Statsd.Endpoint, cfg.Statsd.Prefix)
		if err != nil {
			return nil, nil, err
		}
	} else {
		log.Debug("No metrics backends configured, using the statsd.NoopClient")
		c, _ = statsd.NewNoopClient()
	}

	interval := _defaultFlushInterval
	if cfg != nil && cfg.FlushInterval > 0 {
		interval = cfg.FlushInterval
	}

	// tally rejects "-" in scope names
	rootMetricScope = strings.Replace(rootMetricScope, "-", "_", -1)

	scope, closer := tally.NewRootScope(tally.ScopeOptions{
		Prefix:    rootMetricScope,
		Tags:      map[string]string{},
		Reporter:  tallystatsd.NewReporter(c, tallystatsd.Options{}),
		Separator: ".",
	}, interval)
	return scope, closer, nil
}

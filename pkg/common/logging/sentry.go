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

package logging

import (
	"os"

	"github.com/Gigware/appscale-tools/pkg/common"

	"github.com/evalphobia/logrus_sentry"
	log "github.com/sirupsen/logrus"
)

const (
	_deploymentEnv = "APPSCALE_DEPLOYMENT"
	_appTag        = "app"
)

// SentryConfig is sentry logging specific configuration.
type SentryConfig struct {
	Enabled bool `yaml:"enabled"`
	// DSN is the sentry DSN name.
	DSN string `yaml:"dsn"`
	// Tags are forwarded to the raven client, and enables sentry logs to be
	// filtered by the given tags.
	Tags map[string]string `yaml:"tags"`
}

// ConfigureSentry adds a sentry hook to the standard logger. Events carry
// the entry fields, so the run id and deployment name of every bootstrap
// log line reach sentry, with the deployment secret redacted.
func ConfigureSentry(cfg *SentryConfig) {
	if cfg == nil || !cfg.Enabled {
		log.Debug("skip configuring sentry due to not enabled.")
		return
	}
	log.Debug("Adding Sentry hook to logrus")

	hook, err := logrus_sentry.NewWithTagsSentryHook(cfg.DSN, sentryTags(cfg), []log.Level{
		log.PanicLevel,
		log.FatalLevel,
		log.ErrorLevel,
	})
	if err != nil {
		log.WithError(err).Error("Failed to create Sentry hook")
		return
	}

	log.Info("sentry hook added successfully")
	log.AddHook(&RedactingHook{Hook: hook})
}

// sentryTags returns the configured tags plus the tools name and the
// deployment named by the environment, if any.
func sentryTags(cfg *SentryConfig) map[string]string {
	tags := make(map[string]string, len(cfg.Tags)+2)
	for k, v := range cfg.Tags {
		tags[k] = v
	}
	if _, ok := tags[_appTag]; !ok {
		tags[_appTag] = common.ToolsName
	}
	if v := os.Getenv(_deploymentEnv); v != "" {
		log.WithField("deployment_tag", v).Info("tag deployment in sentry event.")
		tags[common.DeploymentLogField] = v
	}
	return tags
}

// RedactingHook hands the wrapped hook a copy of each entry with the
// deployment secret redacted. Hooks fire before formatting, so
// SecretsFormatter alone does not cover them.
type RedactingHook struct {
	log.Hook
}

// Fire redacts a copy of entry and fires the wrapped hook with it.
func (h *RedactingHook) Fire(entry *log.Entry) error {
	e := *entry
	e.Data = make(log.Fields, len(entry.Data))
	for k, v := range entry.Data {
		e.Data[k] = v
	}
	redactSecrets(e.Data)
	return h.Hook.Fire(&e)
}

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

// Package deploy runs a deployment from a placement request to a cluster
// whose machines have all loaded.
package deploy

import (
	"fmt"
	"time"

	"github.com/Gigware/appscale-tools/pkg/auth"
	"github.com/Gigware/appscale-tools/pkg/bootstrap"
	"github.com/Gigware/appscale-tools/pkg/common"
	"github.com/Gigware/appscale-tools/pkg/deployerr"
	"github.com/Gigware/appscale-tools/pkg/layout"
	"github.com/Gigware/appscale-tools/pkg/lock"
	"github.com/Gigware/appscale-tools/pkg/metadata"

	"github.com/pborman/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/uber-go/tally"
	"go.uber.org/multierr"
)

const _defaultWarningPause = time.Second

// Config configures the orchestrator.
type Config struct {
	// WarningPause is how long a run waits after warning about an
	// unsupported layout, giving the user a chance to interrupt.
	WarningPause time.Duration `yaml:"warning_pause"`
}

// Bootstrapper brings up a validated deployment.
type Bootstrapper interface {
	Bootstrap(req bootstrap.Request) (*bootstrap.Result, error)
}

// Orchestrator validates a placement request and drives the bootstrap.
type Orchestrator struct {
	cfg      Config
	helper   Bootstrapper
	store    metadata.Store
	locker   lock.Locker
	prompter Prompter

	newToken func() (auth.SecretToken, error)
	sleep    func(time.Duration)

	runs       tally.Counter
	badConfigs tally.Counter
	failures   tally.Counter
	successes  tally.Counter
}

// NewOrchestrator returns an Orchestrator.
func NewOrchestrator(
	cfg Config,
	helper Bootstrapper,
	store metadata.Store,
	locker lock.Locker,
	prompter Prompter,
	scope tally.Scope,
) *Orchestrator {
	if cfg.WarningPause == 0 {
		cfg.WarningPause = _defaultWarningPause
	}
	scope = scope.SubScope("deploy")
	return &Orchestrator{
		cfg:        cfg,
		helper:     helper,
		store:      store,
		locker:     locker,
		prompter:   prompter,
		newToken:   auth.NewSecretToken,
		sleep:      time.Sleep,
		runs:       scope.Counter("runs"),
		badConfigs: scope.Counter("bad_configuration"),
		failures:   scope.Counter("failures"),
		successes:  scope.Counter("successes"),
	}
}

// Run deploys req. An invalid request fails with a BadConfigurationError
// before anything leaves the machine. Errors from the bootstrap are
// returned as they are, and nothing is rolled back.
func (o *Orchestrator) Run(req layout.PlacementRequest) (err error) {
	o.runs.Inc(1)
	if req.Name == "" {
		req.Name = common.DefaultDeploymentName
	}
	runID := uuid.New()
	logger := log.WithFields(log.Fields{
		common.DeploymentLogField: req.Name,
		common.RunIDLogField:      runID,
	})

	l := layout.Resolve(req)
	if !l.IsValid() {
		o.badConfigs.Inc(1)
		return deployerr.NewBadConfiguration(l.Errors()...)
	}

	o.banner(logger, l)
	if !l.IsSupported() {
		for _, a := range l.Advisories() {
			logger.WithField("advisory", a).Warn("layout is not a supported topology")
		}
		logger.Warnf("continuing with an unsupported layout in %s", o.cfg.WarningPause)
		o.sleep(o.cfg.WarningPause)
	}

	user, password, err := o.credentials(req)
	if err != nil {
		return err
	}

	held, err := o.locker.Acquire(req.Name)
	if err != nil {
		if lock.IsLocked(err) {
			return errors.Wrapf(err, "deployment %s is being started by another run", req.Name)
		}
		return errors.Wrap(err, "failed to lock deployment")
	}
	defer func() {
		err = multierr.Append(err, held.Release())
	}()

	if err := o.checkNotRunning(logger, req); err != nil {
		o.badConfigs.Inc(1)
		return err
	}

	token, err := o.newToken()
	if err != nil {
		return err
	}

	result, err := o.helper.Bootstrap(bootstrap.Request{
		Name:          req.Name,
		RunID:         runID,
		Layout:        l,
		Token:         token,
		AdminUser:     user,
		AdminPassword: password,
		Credentials:   req.Credentials,
		Image:         req.Image,
		InstanceType:  req.InstanceType,
		Zone:          req.Zone,
		KeyName:       req.KeyName,
	})
	if err != nil {
		o.failures.Inc(1)
		return err
	}

	o.successes.Inc(1)
	logger.WithFields(log.Fields{
		"head":       result.Metadata.HeadAddress,
		"status_url": StatusURL(result.Metadata.LoginHost),
	}).Info("deployment is up, view its status at the status url")
	return nil
}

func (o *Orchestrator) banner(logger *log.Entry, l *layout.NodeLayout) {
	infra := l.Infrastructure()
	if infra.IsCloud() {
		logger.WithField("machines", len(l.Nodes())).
			Infof("starting deployment over %s cloud", infra)
		return
	}
	logger.WithField("machines", len(l.Nodes())).
		Info("starting deployment over a virtualized cluster")
}

// credentials picks the admin credentials from the request, the defaults
// or the prompter, in that order.
func (o *Orchestrator) credentials(req layout.PlacementRequest) (string, string, error) {
	switch {
	case req.AdminUser != "" && req.AdminPassword != "":
		return req.AdminUser, req.AdminPassword, nil
	case req.UseDefaults:
		return common.DefaultAdminUser, common.DefaultAdminPassword, nil
	case o.prompter == nil:
		return "", "", deployerr.NewBadConfiguration(
			"admin credentials are required and cannot be prompted for")
	}
	user, password, err := o.prompter.PromptCredentials()
	if err != nil {
		return "", "", errors.Wrap(err, "failed to read admin credentials")
	}
	return user, password, nil
}

// checkNotRunning refuses to start a deployment that already has
// metadata, unless forced.
func (o *Orchestrator) checkNotRunning(logger *log.Entry, req layout.PlacementRequest) error {
	exists, err := o.store.Exists(req.Name)
	if err != nil {
		return errors.Wrap(err, "failed to check for a running deployment")
	}
	if !exists {
		return nil
	}
	if !req.Force {
		return deployerr.NewBadConfiguration(fmt.Sprintf(
			"deployment %s is already running, stop it first or force a new start", req.Name))
	}
	logger.Warn("removing metadata of a previous run")
	return o.store.Remove(req.Name)
}

// StatusURL is where the status page of a deployment is served.
func StatusURL(loginHost string) string {
	return fmt.Sprintf("http://%s/status", loginHost)
}

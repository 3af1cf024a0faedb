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

// Package bootstrap brings a deployment up once its layout is known to be
// valid. Every step runs in order on the calling goroutine and every wait
// is bounded by an attempt count or an elapsed-time budget.
package bootstrap

import (
	"time"

	"github.com/Gigware/appscale-tools/pkg/auth"
	"github.com/Gigware/appscale-tools/pkg/common"
	"github.com/Gigware/appscale-tools/pkg/common/backoff"
	"github.com/Gigware/appscale-tools/pkg/common/netutil"
	"github.com/Gigware/appscale-tools/pkg/controller"
	"github.com/Gigware/appscale-tools/pkg/deployerr"
	"github.com/Gigware/appscale-tools/pkg/directory"
	"github.com/Gigware/appscale-tools/pkg/layout"
	"github.com/Gigware/appscale-tools/pkg/metadata"
	"github.com/Gigware/appscale-tools/pkg/provision"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/uber-go/tally"
)

// Names of the bootstrap steps, as reported by DeploymentFailureError.
const (
	StepProvision      = "provision_head_node"
	StepCheckpoint     = "checkpoint_metadata"
	StepDirectoryHost  = "get_directory_service_host"
	StepDirectoryPort  = "wait_directory_port"
	StepCreateAdmin    = "create_admin_account"
	StepSetAdminRole   = "set_admin_role"
	StepMachinesLoaded = "all_machines_loaded"
)

// Request is everything needed to bring up one deployment.
type Request struct {
	Name   string
	RunID  string
	Layout *layout.NodeLayout
	Token  auth.SecretToken

	AdminUser     string
	AdminPassword string

	Credentials  layout.Credentials
	Image        string
	InstanceType string
	Zone         string
	KeyName      string
}

// Status is how far a run got.
type Status struct {
	ControlPortOpen   bool
	DirectoryPortOpen bool
	AllMachinesLoaded bool
}

// Result is returned by Bootstrap whether it succeeded or not.
type Result struct {
	Metadata *metadata.DeploymentMetadata
	Status   Status
}

// HeadProvisioner starts the head node of a deployment.
type HeadProvisioner interface {
	Provision(req provision.Request) (provision.HeadNode, error)
}

// Checkpointer makes metadata durable locally and on the head node.
type Checkpointer interface {
	Checkpoint(md *metadata.DeploymentMetadata) error
}

// ControllerFactory opens a controller client.
type ControllerFactory func(
	host string, port int, token auth.SecretToken, timeout time.Duration,
) (controller.Client, error)

// DirectoryFactory opens a user directory client.
type DirectoryFactory func(
	host string, port int, token auth.SecretToken, timeout time.Duration,
) (directory.Client, error)

// Helper runs the bootstrap steps.
type Helper struct {
	cfg           Config
	provisioner   HeadProvisioner
	checkpointer  Checkpointer
	newController ControllerFactory
	newDirectory  DirectoryFactory
	metrics       *Metrics
}

// NewHelper returns a Helper talking to the real controller and directory.
func NewHelper(
	cfg Config,
	provisioner HeadProvisioner,
	checkpointer Checkpointer,
	scope tally.Scope,
) *Helper {
	return &Helper{
		cfg:           cfg.withDefaults(),
		provisioner:   provisioner,
		checkpointer:  checkpointer,
		newController: controller.NewClient,
		newDirectory:  directory.NewClient,
		metrics:       NewMetrics(scope.SubScope("bootstrap")),
	}
}

// Bootstrap provisions the head node, hands it the metadata, creates the
// admin account and waits until every machine has loaded. The returned
// Result is never nil and holds the metadata as last checkpointed.
func (h *Helper) Bootstrap(req Request) (*Result, error) {
	h.metrics.Runs.Inc(1)
	sw := h.metrics.RunDuration.Start()
	defer sw.Stop()

	r := &run{
		h:   h,
		req: req,
		md:  metadata.New(req.Name, req.Layout, req.Token),
		log: log.WithFields(log.Fields{
			common.DeploymentLogField: req.Name,
			common.RunIDLogField:      req.RunID,
		}),
	}
	err := r.execute()
	result := &Result{Metadata: r.md, Status: r.status}
	if err != nil {
		h.metrics.RunFail.Inc(1)
		return result, err
	}
	h.metrics.RunSuccess.Inc(1)
	return result, nil
}

type run struct {
	h      *Helper
	req    Request
	md     *metadata.DeploymentMetadata
	status Status
	log    *log.Entry
}

func (r *run) execute() error {
	var head provision.HeadNode
	if err := r.step(StepProvision, once(func() error {
		var err error
		head, err = r.h.provisioner.Provision(provision.Request{
			Name:         r.req.Name,
			Layout:       r.req.Layout,
			Credentials:  r.req.Credentials,
			Image:        r.req.Image,
			InstanceType: r.req.InstanceType,
			Zone:         r.req.Zone,
			KeyName:      r.req.KeyName,
			Token:        r.req.Token,
		})
		return err
	})); err != nil {
		return err
	}
	r.md.SetHead(head.Address, head.InstanceID)
	r.md.LoginHost = loginHost(r.md)
	r.log.WithFields(log.Fields{
		"head":        head.Address,
		"instance_id": head.InstanceID,
	}).Info("head node provisioned")

	if err := r.checkpoint(); err != nil {
		return err
	}

	cc, err := r.h.newController(
		head.Address, r.h.cfg.ControllerPort, r.req.Token, r.h.cfg.RPCTimeout)
	if err != nil {
		return &deployerr.DeploymentFailureError{Step: StepDirectoryHost, Cause: err}
	}
	defer func() {
		if err := cc.Close(); err != nil {
			r.log.WithError(err).Warn("failed to close controller client")
		}
	}()

	var directoryHost string
	if err := r.step(StepDirectoryHost, r.pollDirectoryHost(cc, &directoryHost)); err != nil {
		return err
	}
	r.status.ControlPortOpen = true
	r.md.DirectoryHost = directoryHost

	if err := r.step(StepDirectoryPort, func() (backoff.Result, error) {
		return netutil.WaitForPort(directoryHost, r.h.cfg.DirectoryPort,
			backoff.NewTimeoutPolicy(r.h.cfg.DirectoryPortTimeout, r.h.cfg.DirectoryPortInterval))
	}); err != nil {
		return err
	}
	r.status.DirectoryPortOpen = true

	if err := r.refresh(cc); err != nil {
		return err
	}

	if err := r.createAdmin(cc, directoryHost); err != nil {
		return err
	}

	if err := r.step(StepMachinesLoaded, r.pollMachinesLoaded(cc)); err != nil {
		return err
	}
	r.status.AllMachinesLoaded = true

	return r.refresh(cc)
}

// step runs f and turns its failure into a DeploymentFailureError naming
// the step.
func (r *run) step(name string, f func() (backoff.Result, error)) error {
	scope := r.h.metrics.step(name)
	sw := scope.Timer("duration").Start()
	res, err := f()
	sw.Stop()

	entry := r.log.WithFields(log.Fields{
		"step":     name,
		"attempts": res.Attempts,
		"elapsed":  res.Elapsed,
	})
	if err != nil {
		scope.Counter("failures").Inc(1)
		entry.WithError(err).Error("bootstrap step failed")
		return &deployerr.DeploymentFailureError{
			Step:     name,
			Waited:   res.Elapsed,
			Attempts: res.Attempts,
			Cause:    err,
		}
	}
	entry.Debug("bootstrap step done")
	return nil
}

func once(f func() error) func() (backoff.Result, error) {
	return func() (backoff.Result, error) {
		start := time.Now()
		err := f()
		return backoff.Result{Attempts: 1, Elapsed: time.Since(start)}, err
	}
}

func (r *run) checkpoint() error {
	return r.step(StepCheckpoint, once(func() error {
		return r.h.checkpointer.Checkpoint(r.md)
	}))
}

// refresh replaces the node list with the controller's view and
// checkpoints. A failed refresh keeps the current list.
func (r *run) refresh(cc controller.Client) error {
	nodes, err := cc.GetNodes()
	if err != nil {
		r.log.WithError(err).Warn("failed to refresh node list")
	} else {
		r.md.SetNodes(nodes)
		r.md.LoginHost = loginHost(r.md)
	}
	return r.checkpoint()
}

func (r *run) pollDirectoryHost(
	cc controller.Client,
	host *string,
) func() (backoff.Result, error) {
	return func() (backoff.Result, error) {
		return backoff.Retry(func() error {
			r.h.metrics.DirectoryHostPolls.Inc(1)
			h, err := cc.GetDirectoryServiceHost()
			if err != nil {
				return err
			}
			if h == "" {
				return errors.Wrap(deployerr.ErrNotReady, "directory host not assigned yet")
			}
			*host = h
			return nil
		},
			backoff.NewRetryPolicy(r.h.cfg.DirectoryHostAttempts, r.h.cfg.DirectoryHostInterval),
			deployerr.IsNotReady)
	}
}

func (r *run) pollMachinesLoaded(cc controller.Client) func() (backoff.Result, error) {
	return func() (backoff.Result, error) {
		return backoff.Retry(func() error {
			r.h.metrics.LoadedPolls.Inc(1)
			loaded, err := cc.AllMachinesLoaded()
			if err != nil {
				return err
			}
			if !loaded {
				r.log.Info("waiting for machines to finish loading")
				return errors.Wrap(deployerr.ErrNotReady, "machines still loading")
			}
			return nil
		},
			backoff.NewTimeoutPolicy(r.h.cfg.LoadTimeout, r.h.cfg.LoadInterval),
			deployerr.IsNotReady)
	}
}

// createAdmin creates the admin account and grants it the admin role. An
// existing account is granted the role all the same.
func (r *run) createAdmin(cc controller.Client, directoryHost string) error {
	dc, err := r.h.newDirectory(
		directoryHost, r.h.cfg.DirectoryPort, r.req.Token, r.h.cfg.RPCTimeout)
	if err != nil {
		return &deployerr.DeploymentFailureError{Step: StepCreateAdmin, Cause: err}
	}
	defer func() {
		if err := dc.Close(); err != nil {
			r.log.WithError(err).Warn("failed to close directory client")
		}
	}()

	if err := r.step(StepCreateAdmin, once(func() error {
		err := dc.CreateAccount(r.req.AdminUser, r.req.AdminPassword)
		if deployerr.IsAccountExists(err) {
			r.h.metrics.AccountExists.Inc(1)
			r.log.WithField("user", r.req.AdminUser).
				Warn("admin account already exists, granting admin role anyway")
			return nil
		}
		return err
	})); err != nil {
		return err
	}

	return r.step(StepSetAdminRole, once(func() error {
		return cc.SetAdminRole(r.req.AdminUser)
	}))
}

// loginHost is the first load balancer with an address, or the head node.
func loginHost(md *metadata.DeploymentMetadata) string {
	for _, n := range md.Nodes {
		if n.Address == "" {
			continue
		}
		for _, role := range n.Roles {
			if role == string(layout.LoadBalancer) {
				return n.Address
			}
		}
	}
	return md.HeadAddress
}

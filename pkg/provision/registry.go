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

package provision

import (
	"context"
	"time"

	"github.com/Gigware/appscale-tools/pkg/common/sshutil"
	"github.com/Gigware/appscale-tools/pkg/layout"

	"github.com/pkg/errors"
)

// Registry maps each infrastructure target to its provisioner.
type Registry struct {
	provisioners map[layout.Infrastructure]Provisioner
	timeout      time.Duration
}

// NewRegistry returns a Registry holding the provisioner of every
// supported infrastructure.
func NewRegistry(cfg Config, ssh sshutil.Client, runner CommandRunner) *Registry {
	cfg = cfg.withDefaults()
	r := NewEmptyRegistry()
	r.timeout = cfg.Timeout
	r.Register(layout.Cluster, NewClusterProvisioner(cfg, ssh))
	r.Register(layout.EC2, NewEC2Provisioner(cfg, ssh, runner))
	r.Register(layout.GCE, NewGCEProvisioner(cfg, ssh, runner))
	return r
}

// NewEmptyRegistry returns a Registry with no provisioner.
func NewEmptyRegistry() *Registry {
	return &Registry{
		provisioners: make(map[layout.Infrastructure]Provisioner),
		timeout:      _defaultTimeout,
	}
}

// Register sets the provisioner of infra.
func (r *Registry) Register(infra layout.Infrastructure, p Provisioner) {
	r.provisioners[infra.Normalize()] = p
}

// Get returns the provisioner of infra.
func (r *Registry) Get(infra layout.Infrastructure) (Provisioner, error) {
	p, ok := r.provisioners[infra.Normalize()]
	if !ok {
		return nil, errors.Errorf("no provisioner for infrastructure %q", infra)
	}
	return p, nil
}

// Provision starts the head node of req on the infrastructure of its
// layout, bounded by the configured timeout.
func (r *Registry) Provision(req Request) (HeadNode, error) {
	if req.Layout == nil {
		return HeadNode{}, errors.New("provision request has no layout")
	}
	p, err := r.Get(req.Layout.Infrastructure())
	if err != nil {
		return HeadNode{}, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	return p.ProvisionHeadNode(ctx, req)
}

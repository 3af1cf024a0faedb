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

	"github.com/Gigware/appscale-tools/pkg/common/sshutil"

	"github.com/pborman/uuid"
	"github.com/pkg/errors"
)

// ClusterProvisioner starts the controller on an existing machine of a
// virtualized cluster.
type ClusterProvisioner struct {
	starter headStarter
}

// NewClusterProvisioner returns a ClusterProvisioner.
func NewClusterProvisioner(cfg Config, ssh sshutil.Client) *ClusterProvisioner {
	return &ClusterProvisioner{starter: headStarter{cfg: cfg.withDefaults(), ssh: ssh}}
}

// ProvisionHeadNode starts the controller on the machine the layout gives
// the controller role. The instance id is generated since the machine has
// none.
func (p *ClusterProvisioner) ProvisionHeadNode(ctx context.Context, req Request) (HeadNode, error) {
	head, ok := req.Layout.Head()
	if !ok || head.Address == "" {
		return HeadNode{}, errors.New("layout has no addressable head node")
	}
	if err := p.starter.start(ctx, head.Address, req.Token); err != nil {
		return HeadNode{}, err
	}
	return HeadNode{
		Address:    head.Address,
		InstanceID: "cluster-" + uuid.New(),
	}, nil
}

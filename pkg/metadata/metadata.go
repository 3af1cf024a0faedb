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

// Package metadata keeps the record of a deployment on disk and on its
// head node.
package metadata

import (
	"time"

	"github.com/Gigware/appscale-tools/pkg/auth"
	"github.com/Gigware/appscale-tools/pkg/controller"
	"github.com/Gigware/appscale-tools/pkg/layout"
)

// NodeRecord is one machine of a deployment.
type NodeRecord struct {
	Address string   `yaml:"address"`
	Roles   []string `yaml:"roles"`
}

// DeploymentMetadata is everything known about a deployment so far.
// Fields are filled in as the bootstrap advances.
type DeploymentMetadata struct {
	Name           string               `yaml:"name"`
	Infrastructure layout.Infrastructure `yaml:"infrastructure"`

	HeadAddress   string `yaml:"head_address"`
	InstanceID    string `yaml:"instance_id"`
	DirectoryHost string `yaml:"directory_host,omitempty"`
	LoginHost     string `yaml:"login_host,omitempty"`

	Nodes []NodeRecord `yaml:"nodes"`

	// Secret is kept in the local copy only.
	Secret auth.SecretToken `yaml:"secret,omitempty"`

	UpdatedAt time.Time `yaml:"updated_at"`
}

// New returns the metadata of a deployment about to be provisioned.
func New(name string, l *layout.NodeLayout, secret auth.SecretToken) *DeploymentMetadata {
	md := &DeploymentMetadata{
		Name:           name,
		Infrastructure: l.Infrastructure(),
		Secret:         secret,
	}
	for _, n := range l.Nodes() {
		md.Nodes = append(md.Nodes, NodeRecord{
			Address: n.Address,
			Roles:   n.Roles.Strings(),
		})
	}
	return md
}

// SetHead records the provisioned head node. The head takes the place of
// the controller machine in the node list.
func (md *DeploymentMetadata) SetHead(address string, instanceID string) {
	md.HeadAddress = address
	md.InstanceID = instanceID
	for i, n := range md.Nodes {
		for _, r := range n.Roles {
			if r == string(layout.Controller) {
				md.Nodes[i].Address = address
				return
			}
		}
	}
}

// SetNodes replaces the node list with the one reported by the controller.
// An empty report keeps the current list.
func (md *DeploymentMetadata) SetNodes(nodes []controller.Node) {
	if len(nodes) == 0 {
		return
	}
	md.Nodes = make([]NodeRecord, 0, len(nodes))
	for _, n := range nodes {
		md.Nodes = append(md.Nodes, NodeRecord{
			Address: n.Address,
			Roles:   append([]string(nil), n.Roles...),
		})
	}
}

// Redacted returns a copy without the secret.
func (md *DeploymentMetadata) Redacted() *DeploymentMetadata {
	c := *md
	c.Secret = ""
	c.Nodes = append([]NodeRecord(nil), md.Nodes...)
	return &c
}

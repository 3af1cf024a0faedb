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

// Package layout turns a placement request into the roles each machine of
// a deployment runs.
package layout

// NodeAssignment is one machine of a layout and the roles it runs.
type NodeAssignment struct {
	// Address is empty on cloud targets until the machine is reachable.
	Address string
	Roles   RoleSet
}

// IsHead returns true if the machine runs the controller.
func (n NodeAssignment) IsHead() bool {
	return n.Roles.Has(Controller)
}

// NodeLayout is the resolved form of a placement request.
type NodeLayout struct {
	infrastructure Infrastructure
	nodes          []NodeAssignment
	errors         []string
	advisories     []string
}

// Infrastructure returns the normalized infrastructure target.
func (l *NodeLayout) Infrastructure() Infrastructure {
	return l.infrastructure
}

// Nodes returns a copy of the machine assignments in order.
func (l *NodeLayout) Nodes() []NodeAssignment {
	nodes := make([]NodeAssignment, len(l.nodes))
	copy(nodes, l.nodes)
	return nodes
}

// IsValid returns true if the layout may be provisioned.
func (l *NodeLayout) IsValid() bool {
	return len(l.errors) == 0
}

// Errors returns every validation problem found.
func (l *NodeLayout) Errors() []string {
	return l.errors
}

// IsSupported returns true for known-good topologies. An unsupported
// layout may still be deployed.
func (l *NodeLayout) IsSupported() bool {
	return l.IsValid() && len(l.advisories) == 0
}

// Advisories returns the reasons a valid layout is not supported.
func (l *NodeLayout) Advisories() []string {
	return l.advisories
}

// Head returns the machine running the controller.
func (l *NodeLayout) Head() (NodeAssignment, bool) {
	for _, n := range l.nodes {
		if n.IsHead() {
			return n, true
		}
	}
	return NodeAssignment{}, false
}

// LoginHost returns the address users reach the deployment on: the first
// load balancer, else the head.
func (l *NodeLayout) LoginHost() string {
	for _, n := range l.nodes {
		if n.Roles.Has(LoadBalancer) && n.Address != "" {
			return n.Address
		}
	}
	head, _ := l.Head()
	return head.Address
}

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

package layout

import (
	"fmt"
	"strings"
)

// Resolve expands and validates req. It never fails: problems are
// collected in the returned layout.
func Resolve(req PlacementRequest) *NodeLayout {
	l := &NodeLayout{infrastructure: req.Infrastructure.Normalize()}
	r := &resolver{req: req, layout: l}

	r.checkName()
	r.checkTarget()
	switch r.strategy() {
	case StrategyAll:
		r.expandAll()
	case StrategyExplicit:
		r.expandExplicit()
	default:
		r.errorf("unknown placement strategy %q", req.Strategy)
	}
	r.checkRoles()
	r.checkAddresses()

	if l.IsValid() {
		l.advisories = advise(l.nodes)
	} else {
		l.nodes = nil
	}
	return l
}

type resolver struct {
	req    PlacementRequest
	layout *NodeLayout
}

func (r *resolver) errorf(format string, args ...interface{}) {
	r.layout.errors = append(r.layout.errors, fmt.Sprintf(format, args...))
}

// checkName accepts an empty name, which callers default.
func (r *resolver) checkName() {
	if r.req.Name != "" && !ValidName(r.req.Name) {
		r.errorf("invalid deployment name %q, use letters, digits, '.', '_' and '-'",
			r.req.Name)
	}
}

func (r *resolver) checkTarget() {
	infra := r.layout.infrastructure
	if !infra.IsKnown() {
		r.errorf("unknown infrastructure %q", r.req.Infrastructure)
		return
	}
	if !infra.IsCloud() {
		return
	}

	if r.req.Image == "" {
		r.errorf("a machine image is required when running on %s", infra)
	}
	creds := r.req.Credentials
	switch infra {
	case EC2:
		if creds.AccessKey == "" || creds.SecretKey == "" {
			r.errorf("an access key and secret key are required when running on %s", infra)
		}
	case GCE:
		if creds.Project == "" || creds.CredentialsFile == "" {
			r.errorf("a project and credentials file are required when running on %s", infra)
		}
	}
}

// strategy defaults to explicit when any node lists roles.
func (r *resolver) strategy() Strategy {
	if r.req.Strategy != "" {
		return r.req.Strategy
	}
	for _, n := range r.req.Nodes {
		if len(n.Roles) > 0 {
			return StrategyExplicit
		}
	}
	return StrategyAll
}

func (r *resolver) machineCount() int {
	if r.req.MachineCount > 0 {
		return r.req.MachineCount
	}
	return len(r.req.Nodes)
}

func (r *resolver) address(i int) string {
	if i < len(r.req.Nodes) {
		return strings.TrimSpace(r.req.Nodes[i].Address)
	}
	return ""
}

func (r *resolver) expandAll() {
	count := r.machineCount()
	if count < 1 {
		r.errorf("at least one machine is required")
		return
	}
	if len(r.req.Nodes) > count {
		r.errorf("%d nodes listed for %d machines", len(r.req.Nodes), count)
	}
	for i, n := range r.req.Nodes {
		if len(n.Roles) > 0 {
			r.errorf("node %d lists roles but strategy is %s", i, StrategyAll)
		}
	}
	for i := 0; i < count; i++ {
		roles := NewRoleSet(Database, Compute)
		if i == 0 {
			roles = NewRoleSet(AllRoles...)
		}
		r.layout.nodes = append(r.layout.nodes, NodeAssignment{
			Address: r.address(i),
			Roles:   roles,
		})
	}
}

func (r *resolver) expandExplicit() {
	if len(r.req.Nodes) == 0 {
		r.errorf("at least one machine is required")
		return
	}
	if r.req.MachineCount > 0 && r.req.MachineCount != len(r.req.Nodes) {
		r.errorf("%d machines requested but %d nodes listed",
			r.req.MachineCount, len(r.req.Nodes))
	}

	for i, spec := range r.req.Nodes {
		if len(spec.Roles) == 0 {
			r.errorf("node %d has no roles", i)
		}
		var roles []Role
		for _, keyword := range spec.Roles {
			if strings.ToLower(strings.TrimSpace(keyword)) == allKeyword {
				roles = append(roles, AllRoles...)
				continue
			}
			role, ok := ParseRole(keyword)
			if !ok {
				r.errorf("node %d has unknown role %q", i, keyword)
				continue
			}
			roles = append(roles, role)
		}
		r.layout.nodes = append(r.layout.nodes, NodeAssignment{
			Address: r.address(i),
			Roles:   NewRoleSet(roles...),
		})
	}
}

func (r *resolver) checkRoles() {
	if len(r.layout.nodes) == 0 {
		return
	}
	controllers := 0
	for _, n := range r.layout.nodes {
		if n.Roles.Has(Controller) {
			controllers++
		}
	}
	switch {
	case controllers == 0:
		r.errorf("no node has the %s role", Controller)
	case controllers > 1:
		r.errorf("%d nodes have the %s role, exactly one is required",
			controllers, Controller)
	}
}

func (r *resolver) checkAddresses() {
	infra := r.layout.infrastructure
	if !infra.IsKnown() {
		return
	}

	if infra.IsCloud() {
		for i, spec := range r.req.Nodes {
			if strings.TrimSpace(spec.Address) != "" {
				r.errorf("node %d has address %s but %s assigns addresses",
					i, spec.Address, infra)
			}
		}
		return
	}

	seen := make(map[string]int)
	for i, n := range r.layout.nodes {
		if n.Address == "" {
			r.errorf("node %d needs an address on a virtualized cluster", i)
			continue
		}
		if j, ok := seen[n.Address]; ok {
			r.errorf("nodes %d and %d share address %s", j, i, n.Address)
			continue
		}
		seen[n.Address] = i
	}
}

// advise lists the reasons a valid layout is outside the known-good
// topologies.
func advise(nodes []NodeAssignment) []string {
	var advisories []string
	var database, compute bool
	zookeepers := 0
	for _, n := range nodes {
		database = database || n.Roles.Has(Database)
		compute = compute || n.Roles.Has(Compute)
		if n.Roles.Has(ZooKeeper) {
			zookeepers++
		}
		if n.Roles.Has(LoadBalancer) && !n.IsHead() {
			advisories = append(advisories,
				fmt.Sprintf("load balancer on %q is not on the controller machine", n.Address))
		}
	}
	if !database {
		advisories = append(advisories, "no node has the database role")
	}
	if !compute {
		advisories = append(advisories, "no node has the compute role")
	}
	if zookeepers%2 == 0 && zookeepers > 0 {
		advisories = append(advisories,
			fmt.Sprintf("%d zookeeper nodes cannot form a majority quorum", zookeepers))
	}
	return advisories
}

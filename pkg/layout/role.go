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
	"sort"
	"strings"
)

// Role is an operational role a machine can run.
type Role string

const (
	// Controller runs the control-plane service. Exactly one machine has it.
	Controller = Role("controller")
	// LoadBalancer routes user traffic to compute machines.
	LoadBalancer = Role("load_balancer")
	// Database runs the datastore.
	Database = Role("database")
	// ZooKeeper runs the coordination service.
	ZooKeeper = Role("zookeeper")
	// Compute hosts applications.
	Compute = Role("compute")
)

// allKeyword expands to every role in a role list.
const allKeyword = "all"

// AllRoles lists every role in canonical order.
var AllRoles = []Role{Controller, LoadBalancer, Database, ZooKeeper, Compute}

var roleAliases = map[string]Role{
	"controller":    Controller,
	"master":        Controller,
	"load_balancer": LoadBalancer,
	"loadbalancer":  LoadBalancer,
	"lb":            LoadBalancer,
	"database":      Database,
	"db":            Database,
	"zookeeper":     ZooKeeper,
	"zk":            ZooKeeper,
	"compute":       Compute,
	"appengine":     Compute,
}

func roleRank(r Role) int {
	for i, role := range AllRoles {
		if role == r {
			return i
		}
	}
	return len(AllRoles)
}

// ParseRole returns the role named by keyword, accepting aliases.
func ParseRole(keyword string) (Role, bool) {
	r, ok := roleAliases[strings.ToLower(strings.TrimSpace(keyword))]
	return r, ok
}

// RoleSet is a duplicate-free set of roles kept in canonical order.
type RoleSet []Role

// NewRoleSet returns the canonical set holding roles.
func NewRoleSet(roles ...Role) RoleSet {
	seen := make(map[Role]bool, len(roles))
	set := make(RoleSet, 0, len(roles))
	for _, r := range roles {
		if seen[r] {
			continue
		}
		seen[r] = true
		set = append(set, r)
	}
	sort.SliceStable(set, func(i, j int) bool {
		return roleRank(set[i]) < roleRank(set[j])
	})
	return set
}

// Has returns true if the set contains r.
func (s RoleSet) Has(r Role) bool {
	for _, role := range s {
		if role == r {
			return true
		}
	}
	return false
}

// Strings returns the role names.
func (s RoleSet) Strings() []string {
	out := make([]string, len(s))
	for i, r := range s {
		out[i] = string(r)
	}
	return out
}

func (s RoleSet) String() string {
	return strings.Join(s.Strings(), ",")
}

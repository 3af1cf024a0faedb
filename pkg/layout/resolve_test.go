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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type ResolveTestSuite struct {
	suite.Suite
}

func TestResolveTestSuite(t *testing.T) {
	suite.Run(t, new(ResolveTestSuite))
}

func singleNode(roles ...string) PlacementRequest {
	return PlacementRequest{
		Name:         "bookstore",
		MachineCount: 1,
		Strategy:     StrategyExplicit,
		Nodes: []NodeSpec{
			{Address: "10.0.0.1", Roles: roles},
		},
	}
}

func gceCredentials() Credentials {
	return Credentials{Project: "proj", CredentialsFile: "/tmp/creds.json"}
}

func mentions(errs []string, word string) bool {
	for _, e := range errs {
		if strings.Contains(e, word) {
			return true
		}
	}
	return false
}

func (suite *ResolveTestSuite) TestSingleNodeSupported() {
	l := Resolve(singleNode("controller", "database", "compute"))

	suite.True(l.IsValid(), "%v", l.Errors())
	suite.True(l.IsSupported(), "%v", l.Advisories())
	suite.Equal(Cluster, l.Infrastructure())
	nodes := l.Nodes()
	suite.Require().Len(nodes, 1)
	suite.Equal("10.0.0.1", nodes[0].Address)
	suite.Equal(RoleSet{Controller, Database, Compute}, nodes[0].Roles)

	head, ok := l.Head()
	suite.True(ok)
	suite.Equal("10.0.0.1", head.Address)
	suite.Equal("10.0.0.1", l.LoginHost())
}

func (suite *ResolveTestSuite) TestMissingController() {
	l := Resolve(singleNode("database", "compute"))

	suite.False(l.IsValid())
	suite.False(l.IsSupported())
	suite.True(mentions(l.Errors(), "controller"))
	suite.Empty(l.Nodes())
	_, ok := l.Head()
	suite.False(ok)
}

func (suite *ResolveTestSuite) TestMissingControllerMultiNode() {
	req := PlacementRequest{
		Strategy: StrategyExplicit,
		Nodes: []NodeSpec{
			{Address: "10.0.0.1", Roles: []string{"db"}},
			{Address: "10.0.0.2", Roles: []string{"appengine"}},
		},
	}
	l := Resolve(req)
	suite.False(l.IsValid())
	suite.True(mentions(l.Errors(), "controller"))
}

func (suite *ResolveTestSuite) TestTwoControllers() {
	req := PlacementRequest{
		Strategy: StrategyExplicit,
		Nodes: []NodeSpec{
			{Address: "10.0.0.1", Roles: []string{"master", "db"}},
			{Address: "10.0.0.2", Roles: []string{"controller", "compute"}},
		},
	}
	l := Resolve(req)
	suite.False(l.IsValid())
	suite.True(mentions(l.Errors(), "exactly one"))
}

func (suite *ResolveTestSuite) TestDeterministic() {
	req := PlacementRequest{
		Name:     "bookstore",
		Strategy: StrategyExplicit,
		Nodes: []NodeSpec{
			{Address: "10.0.0.1", Roles: []string{"compute", "master", "zk", "lb"}},
			{Address: "10.0.0.2", Roles: []string{"db", "compute"}},
			{Address: "10.0.0.3", Roles: []string{"database", "appengine"}},
		},
	}
	first := Resolve(req)
	second := Resolve(req)
	suite.True(first.IsValid())
	suite.Equal(first, second)
}

func (suite *ResolveTestSuite) TestAliasesAndAllKeyword() {
	l := Resolve(singleNode("all", "master", "zk"))
	suite.True(l.IsValid())
	suite.Equal(RoleSet(AllRoles), l.Nodes()[0].Roles)
}

func (suite *ResolveTestSuite) TestUnknownAndEmptyRolesAggregated() {
	req := PlacementRequest{
		Strategy: StrategyExplicit,
		Nodes: []NodeSpec{
			{Address: "10.0.0.1", Roles: []string{"controller", "juggler"}},
			{Address: "10.0.0.2"},
		},
	}
	l := Resolve(req)
	suite.False(l.IsValid())
	suite.True(mentions(l.Errors(), "juggler"))
	suite.True(mentions(l.Errors(), "node 1 has no roles"))
}

func (suite *ResolveTestSuite) TestMachineCountMismatch() {
	req := singleNode("controller", "database", "compute")
	req.MachineCount = 3
	l := Resolve(req)
	suite.False(l.IsValid())
	suite.True(mentions(l.Errors(), "3 machines"))
}

func (suite *ResolveTestSuite) TestNoMachines() {
	l := Resolve(PlacementRequest{Strategy: StrategyAll})
	suite.False(l.IsValid())
	suite.True(mentions(l.Errors(), "at least one machine"))
}

func (suite *ResolveTestSuite) TestStrategyAll() {
	req := PlacementRequest{
		Strategy: StrategyAll,
		Nodes: []NodeSpec{
			{Address: "10.0.0.1"},
			{Address: "10.0.0.2"},
			{Address: "10.0.0.3"},
		},
	}
	l := Resolve(req)
	suite.Require().True(l.IsValid(), "%v", l.Errors())
	suite.True(l.IsSupported(), "%v", l.Advisories())

	nodes := l.Nodes()
	suite.Len(nodes, 3)
	suite.Equal(RoleSet(AllRoles), nodes[0].Roles)
	suite.Equal(RoleSet{Database, Compute}, nodes[1].Roles)
	suite.Equal(RoleSet{Database, Compute}, nodes[2].Roles)
}

func (suite *ResolveTestSuite) TestStrategyAllRejectsRoles() {
	l := Resolve(PlacementRequest{
		Strategy: StrategyAll,
		Nodes: []NodeSpec{
			{Address: "10.0.0.1", Roles: []string{"database"}},
			{Address: "10.0.0.2", Roles: []string{"controller"}},
		},
	})
	suite.False(l.IsValid())
	suite.Empty(l.Nodes())
	suite.Contains(l.Errors(), "node 0 lists roles but strategy is all")
	suite.Contains(l.Errors(), "node 1 lists roles but strategy is all")
}

func (suite *ResolveTestSuite) TestInvalidName() {
	for _, name := range []string{"../../escaped", "book store", ".hidden", "a/b"} {
		req := singleNode("controller", "database", "compute")
		req.Name = name
		l := Resolve(req)
		suite.False(l.IsValid(), name)
		suite.True(mentions(l.Errors(), "invalid deployment name"), name)
	}

	req := singleNode("controller", "database", "compute")
	req.Name = ""
	suite.True(Resolve(req).IsValid())
	req.Name = "book_store-2.prod"
	suite.True(Resolve(req).IsValid())
}

func (suite *ResolveTestSuite) TestDefaultStrategy() {
	l := Resolve(PlacementRequest{Nodes: []NodeSpec{{Address: "10.0.0.1"}}})
	suite.True(l.IsValid())
	suite.Equal(RoleSet(AllRoles), l.Nodes()[0].Roles)

	l = Resolve(PlacementRequest{Nodes: []NodeSpec{
		{Address: "10.0.0.1", Roles: []string{"controller", "compute"}},
	}})
	suite.True(l.IsValid())
	suite.Equal(RoleSet{Controller, Compute}, l.Nodes()[0].Roles)
}

func (suite *ResolveTestSuite) TestVirtualizedAddresses() {
	req := PlacementRequest{
		Strategy: StrategyExplicit,
		Nodes: []NodeSpec{
			{Address: "10.0.0.1", Roles: []string{"controller"}},
			{Address: "10.0.0.1", Roles: []string{"compute"}},
			{Roles: []string{"database"}},
		},
	}
	l := Resolve(req)
	suite.False(l.IsValid())
	suite.True(mentions(l.Errors(), "share address"))
	suite.True(mentions(l.Errors(), "node 2 needs an address"))
}

func (suite *ResolveTestSuite) TestCloudWithoutImage() {
	req := singleNode("controller", "database", "compute")
	req.Nodes[0].Address = ""
	req.Infrastructure = GCE
	req.Credentials = gceCredentials()

	l := Resolve(req)
	suite.False(l.IsValid())
	suite.True(mentions(l.Errors(), "image"))
}

func (suite *ResolveTestSuite) TestUnknownInfrastructure() {
	req := singleNode("controller", "database", "compute")
	req.Infrastructure = Infrastructure("cloud-x")

	l := Resolve(req)
	suite.False(l.IsValid())
	suite.True(mentions(l.Errors(), "cloud-x"))
}

func (suite *ResolveTestSuite) TestCloudAggregatesProblems() {
	req := singleNode("controller", "database", "compute")
	req.Infrastructure = EC2

	l := Resolve(req)
	suite.False(l.IsValid())
	suite.True(mentions(l.Errors(), "image"))
	suite.True(mentions(l.Errors(), "secret key"))
	suite.True(mentions(l.Errors(), "assigns addresses"))
}

func (suite *ResolveTestSuite) TestCloudValid() {
	req := PlacementRequest{
		Infrastructure: GCE,
		MachineCount:   2,
		Strategy:       StrategyAll,
		Image:          "appscale-image",
		Credentials:    gceCredentials(),
	}
	l := Resolve(req)
	suite.Require().True(l.IsValid(), "%v", l.Errors())
	for _, n := range l.Nodes() {
		suite.Empty(n.Address)
	}
}

func (suite *ResolveTestSuite) TestUnsupportedLayouts() {
	l := Resolve(singleNode("controller", "compute"))
	suite.True(l.IsValid())
	suite.False(l.IsSupported())
	suite.True(mentions(l.Advisories(), "database"))

	req := PlacementRequest{
		Strategy: StrategyExplicit,
		Nodes: []NodeSpec{
			{Address: "10.0.0.1", Roles: []string{"controller", "db", "zk", "compute"}},
			{Address: "10.0.0.2", Roles: []string{"lb", "zk"}},
		},
	}
	l = Resolve(req)
	suite.True(l.IsValid())
	suite.False(l.IsSupported())
	suite.True(mentions(l.Advisories(), "10.0.0.2"))
	suite.True(mentions(l.Advisories(), "quorum"))
	suite.Equal("10.0.0.2", l.LoginHost())
}

func TestParseRole(t *testing.T) {
	r, ok := ParseRole(" LB ")
	require.True(t, ok)
	assert.Equal(t, LoadBalancer, r)

	_, ok = ParseRole("all")
	assert.False(t, ok)
}

func TestNewRoleSet(t *testing.T) {
	s := NewRoleSet(Compute, Controller, Compute, Database)
	assert.Equal(t, RoleSet{Controller, Database, Compute}, s)
	assert.Equal(t, "controller,database,compute", s.String())
	assert.True(t, s.Has(Database))
	assert.False(t, s.Has(ZooKeeper))
}

func TestCredentialsRedacted(t *testing.T) {
	c := Credentials{AccessKey: "AKIA", SecretKey: "shh"}
	assert.NotContains(t, c.String(), "shh")
	assert.False(t, c.IsZero())
	assert.True(t, Credentials{}.IsZero())
}

func TestValidName(t *testing.T) {
	assert.True(t, ValidName("appscale"))
	assert.True(t, ValidName("Book.store_1-a"))
	assert.False(t, ValidName(""))
	assert.False(t, ValidName("../x"))
	assert.False(t, ValidName("-x"))
}

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

package deploy

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/Gigware/appscale-tools/pkg/auth"
	"github.com/Gigware/appscale-tools/pkg/bootstrap"
	"github.com/Gigware/appscale-tools/pkg/controller"
	"github.com/Gigware/appscale-tools/pkg/deploy/mocks"
	"github.com/Gigware/appscale-tools/pkg/deployerr"
	"github.com/Gigware/appscale-tools/pkg/layout"
	"github.com/Gigware/appscale-tools/pkg/lock"
	"github.com/Gigware/appscale-tools/pkg/metadata"
	metadata_mocks "github.com/Gigware/appscale-tools/pkg/metadata/mocks"
	"github.com/Gigware/appscale-tools/pkg/provision"
	"github.com/Gigware/appscale-tools/pkg/testutil/fakecluster"

	"github.com/golang/mock/gomock"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/suite"
	"github.com/uber-go/tally"
)

const _testSecret = auth.SecretToken("0123456789abcdefghijklmnopqrstuv")

func singleNode(roles ...string) layout.PlacementRequest {
	return layout.PlacementRequest{
		Name:        "bookstore",
		Strategy:    layout.StrategyExplicit,
		Nodes:       []layout.NodeSpec{{Address: "10.0.0.1", Roles: roles}},
		UseDefaults: true,
	}
}

type OrchestratorTestSuite struct {
	suite.Suite

	ctrl     *gomock.Controller
	helper   *mocks.MockBootstrapper
	prompter *mocks.MockPrompter
	store    *metadata.FileStore
	locker   *lock.FileLocker
	lockDir  string
	scope    tally.TestScope
	paused   []time.Duration

	orchestrator *Orchestrator
}

func (suite *OrchestratorTestSuite) SetupTest() {
	suite.ctrl = gomock.NewController(suite.T())
	suite.helper = mocks.NewMockBootstrapper(suite.ctrl)
	suite.prompter = mocks.NewMockPrompter(suite.ctrl)

	var err error
	suite.store, err = metadata.NewFileStore(suite.T().TempDir())
	suite.Require().NoError(err)
	suite.lockDir = suite.T().TempDir()
	suite.locker, err = lock.NewFileLocker(suite.lockDir)
	suite.Require().NoError(err)

	suite.scope = tally.NewTestScope("", nil)
	suite.paused = nil
	suite.orchestrator = NewOrchestrator(Config{}, suite.helper, suite.store,
		suite.locker, suite.prompter, suite.scope)
	suite.orchestrator.newToken = func() (auth.SecretToken, error) {
		return _testSecret, nil
	}
	suite.orchestrator.sleep = func(d time.Duration) {
		suite.paused = append(suite.paused, d)
	}
}

func (suite *OrchestratorTestSuite) TearDownTest() {
	suite.NoError(suite.locker.Close())
	suite.ctrl.Finish()
}

func (suite *OrchestratorTestSuite) succeed() *gomock.Call {
	return suite.helper.EXPECT().Bootstrap(gomock.Any()).
		DoAndReturn(func(req bootstrap.Request) (*bootstrap.Result, error) {
			return &bootstrap.Result{
				Metadata: &metadata.DeploymentMetadata{
					Name:        req.Name,
					HeadAddress: "10.0.0.1",
					LoginHost:   "10.0.0.1",
				},
			}, nil
		})
}

func (suite *OrchestratorTestSuite) requireUnlocked(name string) {
	held, err := suite.locker.Acquire(name)
	suite.Require().NoError(err, "lock must be released once the run is over")
	suite.NoError(held.Release())
}

func (suite *OrchestratorTestSuite) TestMissingController() {
	err := suite.orchestrator.Run(singleNode("database", "compute"))
	suite.True(deployerr.IsBadConfiguration(err))
	suite.Contains(err.Error(), "controller")
	suite.Equal(int64(1), suite.scope.Snapshot().Counters()["deploy.bad_configuration+"].Value())
}

func (suite *OrchestratorTestSuite) TestCloudWithoutImage() {
	err := suite.orchestrator.Run(layout.PlacementRequest{
		Name:           "bookstore",
		Infrastructure: layout.GCE,
		MachineCount:   1,
		Credentials:    layout.Credentials{Project: "p", CredentialsFile: "/tmp/c.json"},
		UseDefaults:    true,
	})
	suite.True(deployerr.IsBadConfiguration(err))
	suite.Contains(err.Error(), "image")
}

func (suite *OrchestratorTestSuite) TestRunWithDefaults() {
	suite.helper.EXPECT().Bootstrap(gomock.Any()).
		DoAndReturn(func(req bootstrap.Request) (*bootstrap.Result, error) {
			suite.Equal("bookstore", req.Name)
			suite.Equal("admin", req.AdminUser)
			suite.Equal("default-password", req.AdminPassword)
			suite.Equal(_testSecret, req.Token)
			suite.NotEmpty(req.RunID)
			suite.True(req.Layout.IsValid())

			_, err := suite.locker.Acquire("bookstore")
			suite.True(lock.IsLocked(err), "lock must be held during the bootstrap")
			return &bootstrap.Result{
				Metadata: &metadata.DeploymentMetadata{HeadAddress: "10.0.0.1"},
			}, nil
		})

	suite.NoError(suite.orchestrator.Run(singleNode("controller", "database", "compute")))
	suite.Empty(suite.paused)
	suite.requireUnlocked("bookstore")
}

func (suite *OrchestratorTestSuite) TestDefaultName() {
	req := singleNode("controller", "database", "compute")
	req.Name = ""
	suite.helper.EXPECT().Bootstrap(gomock.Any()).
		DoAndReturn(func(req bootstrap.Request) (*bootstrap.Result, error) {
			suite.Equal("appscale", req.Name)
			return &bootstrap.Result{Metadata: &metadata.DeploymentMetadata{}}, nil
		})
	suite.NoError(suite.orchestrator.Run(req))
}

func (suite *OrchestratorTestSuite) TestExplicitCredentials() {
	req := singleNode("controller", "database", "compute")
	req.UseDefaults = true
	req.AdminUser = "ops@example.com"
	req.AdminPassword = "hunter22"
	suite.helper.EXPECT().Bootstrap(gomock.Any()).
		DoAndReturn(func(req bootstrap.Request) (*bootstrap.Result, error) {
			suite.Equal("ops@example.com", req.AdminUser)
			suite.Equal("hunter22", req.AdminPassword)
			return &bootstrap.Result{Metadata: &metadata.DeploymentMetadata{}}, nil
		})
	suite.NoError(suite.orchestrator.Run(req))
}

func (suite *OrchestratorTestSuite) TestPromptedCredentials() {
	req := singleNode("controller", "database", "compute")
	req.UseDefaults = false
	gomock.InOrder(
		suite.prompter.EXPECT().PromptCredentials().Return("ops@example.com", "hunter22", nil),
		suite.succeed(),
	)
	suite.NoError(suite.orchestrator.Run(req))
}

func (suite *OrchestratorTestSuite) TestPromptFails() {
	req := singleNode("controller", "database", "compute")
	req.UseDefaults = false
	suite.prompter.EXPECT().PromptCredentials().Return("", "", errors.New("not a terminal"))
	suite.Error(suite.orchestrator.Run(req))
	suite.requireUnlocked("bookstore")
}

func (suite *OrchestratorTestSuite) TestNoPrompter() {
	suite.orchestrator.prompter = nil
	req := singleNode("controller", "database", "compute")
	req.UseDefaults = false
	suite.True(deployerr.IsBadConfiguration(suite.orchestrator.Run(req)))
}

func (suite *OrchestratorTestSuite) TestUnsupportedLayoutPauses() {
	suite.succeed()
	suite.NoError(suite.orchestrator.Run(singleNode("controller")))
	suite.Equal([]time.Duration{time.Second}, suite.paused)
}

func (suite *OrchestratorTestSuite) TestAlreadyRunning() {
	suite.NoError(suite.store.Save(&metadata.DeploymentMetadata{Name: "bookstore"}))

	err := suite.orchestrator.Run(singleNode("controller", "database", "compute"))
	suite.True(deployerr.IsBadConfiguration(err))
	suite.Contains(err.Error(), "already running")
	suite.requireUnlocked("bookstore")
}

func (suite *OrchestratorTestSuite) TestForceRemovesStaleMetadata() {
	suite.NoError(suite.store.Save(&metadata.DeploymentMetadata{Name: "bookstore"}))
	req := singleNode("controller", "database", "compute")
	req.Force = true
	suite.helper.EXPECT().Bootstrap(gomock.Any()).
		DoAndReturn(func(req bootstrap.Request) (*bootstrap.Result, error) {
			exists, err := suite.store.Exists("bookstore")
			suite.NoError(err)
			suite.False(exists)
			return &bootstrap.Result{Metadata: &metadata.DeploymentMetadata{}}, nil
		})
	suite.NoError(suite.orchestrator.Run(req))
}

func (suite *OrchestratorTestSuite) TestStoreFailure() {
	store := metadata_mocks.NewMockStore(suite.ctrl)
	suite.orchestrator.store = store
	store.EXPECT().Exists("bookstore").Return(false, errors.New("permission denied"))

	err := suite.orchestrator.Run(singleNode("controller", "database", "compute"))
	suite.Error(err)
	suite.False(deployerr.IsBadConfiguration(err))
	suite.requireUnlocked("bookstore")
}

func (suite *OrchestratorTestSuite) TestForceRemoveFailure() {
	store := metadata_mocks.NewMockStore(suite.ctrl)
	suite.orchestrator.store = store
	req := singleNode("controller", "database", "compute")
	req.Force = true
	gomock.InOrder(
		store.EXPECT().Exists("bookstore").Return(true, nil),
		store.EXPECT().Remove("bookstore").Return(errors.New("read-only file system")),
	)
	suite.Error(suite.orchestrator.Run(req))
}

func (suite *OrchestratorTestSuite) TestInvalidNameRejectedBeforeLocking() {
	req := singleNode("controller", "database", "compute")
	req.Name = "../../escaped"

	err := suite.orchestrator.Run(req)
	suite.True(deployerr.IsBadConfiguration(err))
	suite.Contains(err.Error(), "invalid deployment name")
	suite.Equal(int64(1), suite.scope.Snapshot().Counters()["deploy.bad_configuration+"].Value())

	entries, err := os.ReadDir(suite.lockDir)
	suite.NoError(err)
	suite.Empty(entries)
}

func (suite *OrchestratorTestSuite) TestLockedByAnotherRun() {
	held, err := suite.locker.Acquire("bookstore")
	suite.Require().NoError(err)
	defer held.Release()

	err = suite.orchestrator.Run(singleNode("controller", "database", "compute"))
	suite.True(lock.IsLocked(err))
}

func (suite *OrchestratorTestSuite) TestBootstrapErrorIsReturnedUnchanged() {
	failure := &deployerr.DeploymentFailureError{
		Step:     bootstrap.StepMachinesLoaded,
		Waited:   time.Hour,
		Attempts: 360,
	}
	suite.helper.EXPECT().Bootstrap(gomock.Any()).
		Return(&bootstrap.Result{Metadata: &metadata.DeploymentMetadata{}}, failure)

	err := suite.orchestrator.Run(singleNode("controller", "database", "compute"))
	suite.Equal(failure, err)
	suite.Equal(int64(1), suite.scope.Snapshot().Counters()["deploy.failures+"].Value())
	suite.requireUnlocked("bookstore")
}

func (suite *OrchestratorTestSuite) TestTokenFailure() {
	suite.orchestrator.newToken = func() (auth.SecretToken, error) {
		return "", errors.New("no entropy")
	}
	suite.Error(suite.orchestrator.Run(singleNode("controller", "database", "compute")))
	suite.requireUnlocked("bookstore")
}

func (suite *OrchestratorTestSuite) TestStatusURL() {
	suite.Equal("http://10.0.0.9/status", StatusURL("10.0.0.9"))
}

func TestOrchestratorTestSuite(t *testing.T) {
	suite.Run(t, new(OrchestratorTestSuite))
}

// headOnFakeCluster provisions by handing the run's secret to the fake
// cluster, the way a real head node receives it.
type headOnFakeCluster struct {
	cluster *fakecluster.Cluster
	calls   int
}

func (p *headOnFakeCluster) ProvisionHeadNode(_ context.Context, req provision.Request) (provision.HeadNode, error) {
	p.calls++
	p.cluster.SetSecret(req.Token)
	return provision.HeadNode{Address: fakecluster.Host, InstanceID: "cluster-e2e"}, nil
}

type EndToEndTestSuite struct {
	suite.Suite

	cluster      *fakecluster.Cluster
	provisioner  *headOnFakeCluster
	store        *metadata.FileStore
	locker       *lock.FileLocker
	orchestrator *Orchestrator
}

func (suite *EndToEndTestSuite) SetupTest() {
	var err error
	suite.cluster, err = fakecluster.Start(_testSecret, fakecluster.Config{
		Nodes: []controller.Node{
			{Address: fakecluster.Host, Roles: []string{"compute", "controller", "database"}},
		},
	})
	suite.Require().NoError(err)
	suite.provisioner = &headOnFakeCluster{cluster: suite.cluster}

	suite.store, err = metadata.NewFileStore(suite.T().TempDir())
	suite.Require().NoError(err)
	suite.locker, err = lock.NewFileLocker(suite.T().TempDir())
	suite.Require().NoError(err)

	registry := provision.NewEmptyRegistry()
	registry.Register(layout.Cluster, suite.provisioner)
	helper := bootstrap.NewHelper(bootstrap.Config{
		ControllerPort:        suite.cluster.ControllerPort(),
		DirectoryPort:         suite.cluster.DirectoryPort(),
		RPCTimeout:            time.Second,
		DirectoryHostAttempts: 3,
		DirectoryHostInterval: time.Millisecond,
		DirectoryPortTimeout:  time.Second,
		DirectoryPortInterval: time.Millisecond,
		LoadTimeout:           time.Second,
		LoadInterval:          time.Millisecond,
	}, registry, metadata.NewCheckpointer(suite.store, nil, 0, tally.NoopScope), tally.NoopScope)

	suite.orchestrator = NewOrchestrator(Config{}, helper, suite.store, suite.locker, nil, tally.NoopScope)
}

func (suite *EndToEndTestSuite) TearDownTest() {
	suite.NoError(suite.cluster.Stop())
	suite.NoError(suite.locker.Close())
}

func (suite *EndToEndTestSuite) TestSingleNodeWithDefaults() {
	req := layout.PlacementRequest{
		Name: "bookstore",
		Nodes: []layout.NodeSpec{
			{Address: fakecluster.Host, Roles: []string{"controller", "database", "compute"}},
		},
		UseDefaults: true,
	}
	suite.Require().NoError(suite.orchestrator.Run(req))

	suite.Equal(1, suite.provisioner.calls)
	suite.Equal(int64(1), suite.cluster.Calls(controller.AllMachinesLoadedProcedure))
	suite.Equal([]string{"admin"}, suite.cluster.Admins())

	md, err := suite.store.Load("bookstore")
	suite.Require().NoError(err)
	suite.Equal(md.HeadAddress, md.DirectoryHost)
	suite.False(md.Secret.IsZero())
}

func (suite *EndToEndTestSuite) TestCloudWithoutImageProvisionsNothing() {
	err := suite.orchestrator.Run(layout.PlacementRequest{
		Name:           "bookstore",
		Infrastructure: layout.GCE,
		MachineCount:   1,
		UseDefaults:    true,
	})
	suite.True(deployerr.IsBadConfiguration(err))
	suite.Equal(0, suite.provisioner.calls)
	suite.Equal(int64(0), suite.cluster.Calls(controller.GetDirectoryServiceHostProcedure))
}

func TestEndToEndTestSuite(t *testing.T) {
	suite.Run(t, new(EndToEndTestSuite))
}

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

// Package fakecluster runs an in-process controller and user directory
// for tests.
package fakecluster

import (
	"context"
	"net"
	"sort"
	"sync"

	"github.com/Gigware/appscale-tools/pkg/auth"
	"github.com/Gigware/appscale-tools/pkg/auth/impl/secret"
	"github.com/Gigware/appscale-tools/pkg/common"
	"github.com/Gigware/appscale-tools/pkg/controller"
	"github.com/Gigware/appscale-tools/pkg/directory"
	"github.com/Gigware/appscale-tools/pkg/rpc"

	"github.com/pkg/errors"
	"go.uber.org/atomic"
	"go.uber.org/multierr"
	"go.uber.org/yarpc"
	"go.uber.org/yarpc/encoding/json"
	"go.uber.org/yarpc/transport/http"
	"go.uber.org/yarpc/yarpcerrors"
)

// Host is the address both services listen on.
const Host = "127.0.0.1"

// Config shapes the behavior of the fake services.
type Config struct {
	// NotReadyCalls is how many GetDirectoryServiceHost calls fail with
	// Unavailable before the controller answers.
	NotReadyCalls int64
	// LoadingCalls is how many AllMachinesLoaded calls report false before
	// reporting true.
	LoadingCalls int64
	// NeverLoaded keeps AllMachinesLoaded false forever.
	NeverLoaded bool
	// DirectoryHost is returned by GetDirectoryServiceHost. Defaults to
	// Host.
	DirectoryHost string
	// Nodes is returned by GetNodes.
	Nodes []controller.Node
}

// Cluster is a running fake controller and directory.
type Cluster struct {
	cfg     Config
	manager *secret.SecurityManager

	controller   *yarpc.Dispatcher
	controllerIn *http.Inbound
	directory    *yarpc.Dispatcher
	directoryIn  *http.Inbound

	calls map[string]*atomic.Int64

	sync.Mutex
	admins   map[string]bool
	accounts map[string]string
}

// Start starts both services. Requests must carry token, which may be
// replaced later with SetSecret.
func Start(token auth.SecretToken, cfg Config) (*Cluster, error) {
	if cfg.DirectoryHost == "" {
		cfg.DirectoryHost = Host
	}
	c := &Cluster{
		cfg:      cfg,
		manager:  secret.NewSecurityManager(token),
		calls:    make(map[string]*atomic.Int64),
		admins:   make(map[string]bool),
		accounts: make(map[string]string),
	}
	for _, p := range []string{
		controller.GetDirectoryServiceHostProcedure,
		controller.SetAdminRoleProcedure,
		controller.AllMachinesLoadedProcedure,
		controller.GetNodesProcedure,
		directory.CreateAccountProcedure,
		directory.DoesUserExistProcedure,
	} {
		c.calls[p] = atomic.NewInt64(0)
	}

	listen := net.JoinHostPort(Host, "0")
	c.controller, c.controllerIn = rpc.NewServerDispatcher(
		common.ControllerService, listen, c.manager)
	c.controller.Register(json.Procedure(
		controller.GetDirectoryServiceHostProcedure, c.getDirectoryServiceHost))
	c.controller.Register(json.Procedure(
		controller.SetAdminRoleProcedure, c.setAdminRole))
	c.controller.Register(json.Procedure(
		controller.AllMachinesLoadedProcedure, c.allMachinesLoaded))
	c.controller.Register(json.Procedure(
		controller.GetNodesProcedure, c.getNodes))

	c.directory, c.directoryIn = rpc.NewServerDispatcher(
		common.DirectoryService, listen, c.manager)
	c.directory.Register(json.Procedure(
		directory.CreateAccountProcedure, c.createAccount))
	c.directory.Register(json.Procedure(
		directory.DoesUserExistProcedure, c.doesUserExist))

	if err := c.controller.Start(); err != nil {
		return nil, errors.Wrap(err, "failed to start fake controller")
	}
	if err := c.directory.Start(); err != nil {
		c.controller.Stop()
		return nil, errors.Wrap(err, "failed to start fake directory")
	}
	return c, nil
}

// Stop stops both services.
func (c *Cluster) Stop() error {
	return multierr.Append(c.controller.Stop(), c.directory.Stop())
}

// SetSecret changes the secret requests must carry.
func (c *Cluster) SetSecret(token auth.SecretToken) {
	c.manager.UpdateSecret(token)
}

// ControllerPort returns the port the controller listens on.
func (c *Cluster) ControllerPort() int {
	return c.controllerIn.Addr().(*net.TCPAddr).Port
}

// DirectoryPort returns the port the directory listens on.
func (c *Cluster) DirectoryPort() int {
	return c.directoryIn.Addr().(*net.TCPAddr).Port
}

// Calls returns how many authenticated calls procedure received.
func (c *Cluster) Calls(procedure string) int64 {
	if n, ok := c.calls[procedure]; ok {
		return n.Load()
	}
	return 0
}

// Admins returns the users holding the admin role.
func (c *Cluster) Admins() []string {
	c.Lock()
	defer c.Unlock()
	admins := make([]string, 0, len(c.admins))
	for u := range c.admins {
		admins = append(admins, u)
	}
	sort.Strings(admins)
	return admins
}

// PasswordHash returns the stored password hash of username.
func (c *Cluster) PasswordHash(username string) (string, bool) {
	c.Lock()
	defer c.Unlock()
	h, ok := c.accounts[username]
	return h, ok
}

func (c *Cluster) getDirectoryServiceHost(
	ctx context.Context,
	req *controller.GetDirectoryServiceHostRequest,
) (*controller.GetDirectoryServiceHostResponse, error) {
	n := c.calls[controller.GetDirectoryServiceHostProcedure].Inc()
	if n <= c.cfg.NotReadyCalls {
		return nil, yarpcerrors.UnavailableErrorf("controller is starting")
	}
	return &controller.GetDirectoryServiceHostResponse{
		Host: c.cfg.DirectoryHost,
	}, nil
}

func (c *Cluster) setAdminRole(
	ctx context.Context,
	req *controller.SetAdminRoleRequest,
) (*controller.SetAdminRoleResponse, error) {
	c.calls[controller.SetAdminRoleProcedure].Inc()
	c.Lock()
	defer c.Unlock()
	if _, ok := c.accounts[req.Username]; !ok {
		return nil, yarpcerrors.NotFoundErrorf("no account for %s", req.Username)
	}
	c.admins[req.Username] = true
	return &controller.SetAdminRoleResponse{}, nil
}

func (c *Cluster) allMachinesLoaded(
	ctx context.Context,
	req *controller.AllMachinesLoadedRequest,
) (*controller.AllMachinesLoadedResponse, error) {
	n := c.calls[controller.AllMachinesLoadedProcedure].Inc()
	return &controller.AllMachinesLoadedResponse{
		Loaded: !c.cfg.NeverLoaded && n > c.cfg.LoadingCalls,
	}, nil
}

func (c *Cluster) getNodes(
	ctx context.Context,
	req *controller.GetNodesRequest,
) (*controller.GetNodesResponse, error) {
	c.calls[controller.GetNodesProcedure].Inc()
	return &controller.GetNodesResponse{Nodes: c.cfg.Nodes}, nil
}

func (c *Cluster) createAccount(
	ctx context.Context,
	req *directory.CreateAccountRequest,
) (*directory.CreateAccountResponse, error) {
	c.calls[directory.CreateAccountProcedure].Inc()
	c.Lock()
	defer c.Unlock()
	if _, ok := c.accounts[req.Username]; ok {
		return nil, yarpcerrors.AlreadyExistsErrorf("account %s exists", req.Username)
	}
	c.accounts[req.Username] = req.PasswordHash
	return &directory.CreateAccountResponse{}, nil
}

func (c *Cluster) doesUserExist(
	ctx context.Context,
	req *directory.DoesUserExistRequest,
) (*directory.DoesUserExistResponse, error) {
	c.calls[directory.DoesUserExistProcedure].Inc()
	c.Lock()
	defer c.Unlock()
	_, ok := c.accounts[req.Username]
	return &directory.DoesUserExistResponse{Exists: ok}, nil
}

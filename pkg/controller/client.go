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

// Package controller is the client of the control-plane service running
// on the head node.
package controller

import (
	"context"
	"time"

	"github.com/Gigware/appscale-tools/pkg/auth"
	"github.com/Gigware/appscale-tools/pkg/common"
	"github.com/Gigware/appscale-tools/pkg/rpc"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"go.uber.org/yarpc"
	"go.uber.org/yarpc/encoding/json"
)

const _defaultRPCTimeout = 10 * time.Second

// Client talks to the controller of one deployment. Errors are mapped to
// deployerr: ErrNotReady while the controller starts and
// ErrAuthenticationMismatch when the secret is rejected.
type Client interface {
	// GetDirectoryServiceHost returns the host running the user directory.
	GetDirectoryServiceHost() (string, error)
	// SetAdminRole grants the admin role to username. Granting it twice is
	// a no-op.
	SetAdminRole(username string) error
	// AllMachinesLoaded returns true once every machine finished loading.
	AllMachinesLoaded() (bool, error)
	// GetNodes returns the machines known to the controller.
	GetNodes() ([]Node, error)
	// Close releases the connection.
	Close() error
}

type client struct {
	dispatcher *yarpc.Dispatcher
	json       json.Client
	timeout    time.Duration
}

// NewClient returns a Client for the controller on host:port. Every call
// carries token and is bounded by timeout.
func NewClient(
	host string,
	port int,
	token auth.SecretToken,
	timeout time.Duration,
) (Client, error) {
	if timeout <= 0 {
		timeout = _defaultRPCTimeout
	}
	d, err := rpc.NewClientDispatcher(
		common.ControllerService, rpc.ServiceURL(host, port), token)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create controller client")
	}
	return &client{
		dispatcher: d,
		json:       json.New(d.ClientConfig(common.ControllerService)),
		timeout:    timeout,
	}, nil
}

func (c *client) call(procedure string, req interface{}, resp interface{}) error {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	err := c.json.Call(ctx, procedure, req, resp)
	if err != nil {
		log.WithField("procedure", procedure).
			WithError(err).
			Debug("controller call failed")
	}
	return rpc.ClassifyError(err, procedure)
}

func (c *client) GetDirectoryServiceHost() (string, error) {
	var resp GetDirectoryServiceHostResponse
	if err := c.call(GetDirectoryServiceHostProcedure,
		&GetDirectoryServiceHostRequest{}, &resp); err != nil {
		return "", err
	}
	return resp.Host, nil
}

func (c *client) SetAdminRole(username string) error {
	var resp SetAdminRoleResponse
	return c.call(SetAdminRoleProcedure,
		&SetAdminRoleRequest{Username: username}, &resp)
}

func (c *client) AllMachinesLoaded() (bool, error) {
	var resp AllMachinesLoadedResponse
	if err := c.call(AllMachinesLoadedProcedure,
		&AllMachinesLoadedRequest{}, &resp); err != nil {
		return false, err
	}
	return resp.Loaded, nil
}

func (c *client) GetNodes() ([]Node, error) {
	var resp GetNodesResponse
	if err := c.call(GetNodesProcedure, &GetNodesRequest{}, &resp); err != nil {
		return nil, err
	}
	return resp.Nodes, nil
}

func (c *client) Close() error {
	return c.dispatcher.Stop()
}

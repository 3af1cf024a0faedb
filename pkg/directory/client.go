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

// Package directory is the client of the user directory service.
package directory

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
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

// Client manages accounts in the user directory. The directory port must
// be open before the first call.
type Client interface {
	// CreateAccount creates an account for username. It returns
	// deployerr.ErrAccountExists if the account is already there.
	CreateAccount(username string, password string) error
	// DoesUserExist returns true if username has an account.
	DoesUserExist(username string) (bool, error)
	// Close releases the connection.
	Close() error
}

type client struct {
	dispatcher *yarpc.Dispatcher
	json       json.Client
	timeout    time.Duration
}

// NewClient returns a Client for the directory on host:port.
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
		common.DirectoryService, rpc.ServiceURL(host, port), token)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create directory client")
	}
	return &client{
		dispatcher: d,
		json:       json.New(d.ClientConfig(common.DirectoryService)),
		timeout:    timeout,
	}, nil
}

// HashPassword returns the form a password is stored in by the directory.
func HashPassword(username string, password string) string {
	sum := sha1.Sum([]byte(username + password))
	return hex.EncodeToString(sum[:])
}

func (c *client) call(procedure string, req interface{}, resp interface{}) error {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	err := c.json.Call(ctx, procedure, req, resp)
	if err != nil {
		log.WithField("procedure", procedure).
			WithError(err).
			Debug("directory call failed")
	}
	return rpc.ClassifyError(err, procedure)
}

func (c *client) CreateAccount(username string, password string) error {
	var resp CreateAccountResponse
	return c.call(CreateAccountProcedure, &CreateAccountRequest{
		Username:     username,
		PasswordHash: HashPassword(username, password),
	}, &resp)
}

func (c *client) DoesUserExist(username string) (bool, error) {
	var resp DoesUserExistResponse
	if err := c.call(DoesUserExistProcedure,
		&DoesUserExistRequest{Username: username}, &resp); err != nil {
		return false, err
	}
	return resp.Exists, nil
}

func (c *client) Close() error {
	return c.dispatcher.Stop()
}

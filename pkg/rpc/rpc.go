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

// Package rpc builds the yarpc dispatchers used to talk to the head node
// services.
package rpc

import (
	"fmt"

	"github.com/Gigware/appscale-tools/pkg/auth"
	"github.com/Gigware/appscale-tools/pkg/auth/impl/secret"
	"github.com/Gigware/appscale-tools/pkg/common"
	"github.com/Gigware/appscale-tools/pkg/deployerr"
	"github.com/Gigware/appscale-tools/pkg/middleware/inbound"
	"github.com/Gigware/appscale-tools/pkg/middleware/outbound"

	"github.com/pkg/errors"
	"go.uber.org/yarpc"
	"go.uber.org/yarpc/api/transport"
	"go.uber.org/yarpc/transport/http"
	"go.uber.org/yarpc/yarpcerrors"
)

// ServiceURL returns the URL a service listening on host:port is called
// at.
func ServiceURL(host string, port int) string {
	return fmt.Sprintf("http://%s:%d", host, port)
}

// NewClientDispatcher returns a started dispatcher with a single outbound
// to service at url. Every call carries the deployment secret.
func NewClientDispatcher(
	service string,
	url string,
	token auth.SecretToken,
) (*yarpc.Dispatcher, error) {
	t := http.NewTransport()
	authOutboundMiddleware := outbound.NewAuthOutboundMiddleware(
		secret.NewSecurityClient(token))

	dispatcher := yarpc.NewDispatcher(yarpc.Config{
		Name: common.ToolsName,
		Outbounds: yarpc.Outbounds{
			service: transport.Outbounds{
				Unary: t.NewSingleOutbound(url),
			},
		},
		OutboundMiddleware: yarpc.OutboundMiddleware{
			Unary:  authOutboundMiddleware,
			Oneway: authOutboundMiddleware,
		},
	})

	if err := dispatcher.Start(); err != nil {
		return nil, errors.Wrapf(err, "unable to start dispatcher for %s", service)
	}
	return dispatcher, nil
}

// NewServerDispatcher returns a dispatcher named service listening on
// address. Requests are rejected unless they carry a token accepted by
// manager. The dispatcher is not started.
func NewServerDispatcher(
	service string,
	address string,
	manager auth.SecurityManager,
) (*yarpc.Dispatcher, *http.Inbound) {
	in := http.NewTransport().NewInbound(address)
	authInboundMiddleware := inbound.NewAuthInboundMiddleware(manager)

	dispatcher := yarpc.NewDispatcher(yarpc.Config{
		Name:     service,
		Inbounds: yarpc.Inbounds{in},
		InboundMiddleware: yarpc.InboundMiddleware{
			Unary:  authInboundMiddleware,
			Oneway: authInboundMiddleware,
		},
	})
	return dispatcher, in
}

// ClassifyError maps the status of a failed call onto the deployment
// error taxonomy. Errors without a known mapping are wrapped unchanged.
func ClassifyError(err error, procedure string) error {
	if err == nil {
		return nil
	}
	switch yarpcerrors.FromError(err).Code() {
	case yarpcerrors.CodeUnauthenticated, yarpcerrors.CodePermissionDenied:
		return errors.Wrapf(deployerr.ErrAuthenticationMismatch, "%s: %v", procedure, err)
	case yarpcerrors.CodeAlreadyExists:
		return errors.Wrapf(deployerr.ErrAccountExists, "%s: %v", procedure, err)
	case yarpcerrors.CodeUnavailable,
		yarpcerrors.CodeDeadlineExceeded,
		yarpcerrors.CodeUnknown,
		yarpcerrors.CodeResourceExhausted,
		yarpcerrors.CodeAborted:
		// the service is starting or the host is not accepting
		// connections yet
		return errors.Wrapf(deployerr.ErrNotReady, "%s: %v", procedure, err)
	}
	return errors.Wrap(err, procedure)
}

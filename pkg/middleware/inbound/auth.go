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

package inbound

import (
	"context"

	"github.com/Gigware/appscale-tools/pkg/auth"

	log "github.com/sirupsen/logrus"
	"go.uber.org/yarpc/api/transport"
	"go.uber.org/yarpc/yarpcerrors"
)

const permissionDeniedErrorStr = "not permitted to call %s in %s"

// AuthInboundMiddleware rejects requests whose headers do not carry a
// token accepted by the SecurityManager.
type AuthInboundMiddleware struct {
	auth.SecurityManager
}

// Handle implements transport.UnaryInboundMiddleware.
func (m *AuthInboundMiddleware) Handle(
	ctx context.Context,
	req *transport.Request,
	resw transport.ResponseWriter,
	h transport.UnaryHandler,
) error {
	if err := m.authorize(req); err != nil {
		return err
	}
	return h.Handle(ctx, req, resw)
}

// HandleOneway implements transport.OnewayInboundMiddleware.
func (m *AuthInboundMiddleware) HandleOneway(
	ctx context.Context,
	req *transport.Request,
	h transport.OnewayHandler,
) error {
	if err := m.authorize(req); err != nil {
		return err
	}
	return h.HandleOneway(ctx, req)
}

func (m *AuthInboundMiddleware) authorize(req *transport.Request) error {
	user, err := m.Authenticate(req.Headers)
	if err != nil {
		log.WithFields(log.Fields{
			"procedure": req.Procedure,
			"caller":    req.Caller,
		}).WithError(err).Debug("request failed authentication")
		return err
	}

	// the secret must not travel further than this middleware
	m.RedactToken(req.Headers)

	if !user.IsPermitted(req.Procedure) {
		log.WithFields(log.Fields{
			"procedure": req.Procedure,
			"service":   req.Service,
			"caller":    req.Caller,
		}).Info("procedure called not permitted for user")
		return yarpcerrors.PermissionDeniedErrorf(
			permissionDeniedErrorStr, req.Procedure, req.Service)
	}
	return nil
}

// NewAuthInboundMiddleware returns an inbound middleware backed by the
// given SecurityManager.
func NewAuthInboundMiddleware(security auth.SecurityManager) *AuthInboundMiddleware {
	return &AuthInboundMiddleware{
		SecurityManager: security,
	}
}

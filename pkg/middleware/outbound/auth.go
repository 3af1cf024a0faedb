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

package outbound

import (
	"context"

	"github.com/Gigware/appscale-tools/pkg/auth"

	"go.uber.org/yarpc/api/transport"
)

// AuthOutboundMiddleware attaches the deployment secret to every
// outgoing request.
type AuthOutboundMiddleware struct {
	auth.SecurityClient
}

// Call implements transport.UnaryOutboundMiddleware.
func (a *AuthOutboundMiddleware) Call(
	ctx context.Context,
	request *transport.Request,
	out transport.UnaryOutbound,
) (*transport.Response, error) {
	request.Headers = withToken(request.Headers, a.GetToken())
	return out.Call(ctx, request)
}

// CallOneway implements transport.OnewayOutboundMiddleware.
func (a *AuthOutboundMiddleware) CallOneway(
	ctx context.Context,
	request *transport.Request,
	out transport.OnewayOutbound,
) (transport.Ack, error) {
	request.Headers = withToken(request.Headers, a.GetToken())
	return out.CallOneway(ctx, request)
}

func withToken(headers transport.Headers, token auth.Token) transport.Headers {
	if token == nil {
		return headers
	}
	for k, v := range token.Items() {
		headers = headers.With(k, v)
	}
	return headers
}

// NewAuthOutboundMiddleware returns an outbound middleware which reads
// the token from the given client on every call.
func NewAuthOutboundMiddleware(security auth.SecurityClient) *AuthOutboundMiddleware {
	return &AuthOutboundMiddleware{
		SecurityClient: security,
	}
}

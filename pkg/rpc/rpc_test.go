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

package rpc

import (
	"context"
	"testing"
	"time"

	"github.com/Gigware/appscale-tools/pkg/auth"
	"github.com/Gigware/appscale-tools/pkg/auth/impl/secret"
	"github.com/Gigware/appscale-tools/pkg/deployerr"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/yarpc/encoding/json"
	"go.uber.org/yarpc/yarpcerrors"
)

type echo struct {
	Value string `json:"value"`
}

func TestClassifyError(t *testing.T) {
	assert.Nil(t, ClassifyError(nil, "p"))
	assert.True(t, deployerr.IsAuthenticationMismatch(
		ClassifyError(yarpcerrors.UnauthenticatedErrorf("bad"), "p")))
	assert.True(t, deployerr.IsAuthenticationMismatch(
		ClassifyError(yarpcerrors.PermissionDeniedErrorf("bad"), "p")))
	assert.True(t, deployerr.IsAccountExists(
		ClassifyError(yarpcerrors.AlreadyExistsErrorf("dup"), "p")))
	assert.True(t, deployerr.IsNotReady(
		ClassifyError(yarpcerrors.UnavailableErrorf("starting"), "p")))
	assert.True(t, deployerr.IsNotReady(
		ClassifyError(yarpcerrors.DeadlineExceededErrorf("slow"), "p")))

	err := ClassifyError(yarpcerrors.InvalidArgumentErrorf("nope"), "p")
	assert.False(t, deployerr.IsNotReady(err))
	assert.Contains(t, err.Error(), "nope")

	assert.True(t, deployerr.IsNotReady(ClassifyError(errors.New("refused"), "p")))
}

func TestServiceURL(t *testing.T) {
	assert.Equal(t, "http://10.0.0.1:17443", ServiceURL("10.0.0.1", 17443))
}

func TestClientServerRoundTrip(t *testing.T) {
	defer goleak.VerifyNone(t,
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"))

	token := auth.SecretToken("0123456789abcdefghijklmnopqrstuv")
	server, in := NewServerDispatcher("echo", "127.0.0.1:0",
		secret.NewSecurityManager(token))
	server.Register(json.Procedure("Echo::Echo",
		func(ctx context.Context, req *echo) (*echo, error) {
			return req, nil
		}))
	require.NoError(t, server.Start())
	defer server.Stop()

	url := "http://" + in.Addr().String()

	d, err := NewClientDispatcher("echo", url, token)
	require.NoError(t, err)
	defer d.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var resp echo
	err = json.New(d.ClientConfig("echo")).Call(
		ctx, "Echo::Echo", &echo{Value: "hi"}, &resp)
	require.NoError(t, err)
	assert.Equal(t, "hi", resp.Value)

	bad, err := NewClientDispatcher("echo", url, "wrong")
	require.NoError(t, err)
	defer bad.Stop()

	err = json.New(bad.ClientConfig("echo")).Call(
		ctx, "Echo::Echo", &echo{Value: "hi"}, &resp)
	require.Error(t, err)
	assert.True(t, deployerr.IsAuthenticationMismatch(ClassifyError(err, "Echo::Echo")))
}

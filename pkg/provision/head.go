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

package provision

import (
	"context"

	"github.com/Gigware/appscale-tools/pkg/auth"
	"github.com/Gigware/appscale-tools/pkg/common/backoff"
	"github.com/Gigware/appscale-tools/pkg/common/netutil"
	"github.com/Gigware/appscale-tools/pkg/common/sshutil"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// headStarter hands the secret to a reachable head node and starts its
// controller. Every provisioner finishes with it.
type headStarter struct {
	cfg Config
	ssh sshutil.Client
}

func (h headStarter) start(ctx context.Context, address string, token auth.SecretToken) error {
	if token.IsZero() {
		return errors.New("no deployment secret to hand to the head node")
	}

	res, err := netutil.WaitForPort(address, h.cfg.SSHPort,
		backoff.NewTimeoutPolicy(h.cfg.SSHTimeout, h.cfg.SSHPollInterval))
	if err != nil {
		return errors.Wrapf(err, "head node %s never accepted ssh after %s",
			address, res.Elapsed)
	}

	if err := h.ssh.WriteFile(ctx, address, h.cfg.SecretPath,
		[]byte(token.Value()), 0600); err != nil {
		return errors.Wrap(err, "failed to write deployment secret")
	}
	if _, err := h.ssh.Run(ctx, address, h.cfg.StartCommand); err != nil {
		return errors.Wrap(err, "failed to start controller")
	}

	log.WithField("address", address).Info("controller started on head node")
	return nil
}

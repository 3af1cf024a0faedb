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

package metadata

import (
	"context"
	"time"

	"github.com/Gigware/appscale-tools/pkg/common"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/uber-go/tally"
)

const _defaultPushTimeout = 30 * time.Second

// Config configures where metadata is kept.
type Config struct {
	// Directory holds the local metadata files.
	Directory string `yaml:"directory"`
	// RemoteDirectory is where metadata is written on the head node.
	RemoteDirectory string `yaml:"remote_directory"`
	// PushTimeout bounds one push to the head node.
	PushTimeout time.Duration `yaml:"push_timeout"`
}

// Checkpointer persists metadata and then pushes it to the head node.
type Checkpointer struct {
	store       Store
	pusher      Pusher
	pushTimeout time.Duration
	now         func() time.Time

	checkpoints tally.Counter
	failures    tally.Counter
}

// NewCheckpointer returns a Checkpointer. A zero pushTimeout uses the
// default.
func NewCheckpointer(
	store Store,
	pusher Pusher,
	pushTimeout time.Duration,
	scope tally.Scope,
) *Checkpointer {
	if pushTimeout <= 0 {
		pushTimeout = _defaultPushTimeout
	}
	return &Checkpointer{
		store:       store,
		pusher:      pusher,
		pushTimeout: pushTimeout,
		now:         time.Now,
		checkpoints: scope.Counter("checkpoints"),
		failures:    scope.Counter("checkpoint_failures"),
	}
}

// Checkpoint saves md locally and, once the head node is known, pushes it
// there. The local write is durable before the push starts. Running it
// again with the same metadata has no further effect.
func (c *Checkpointer) Checkpoint(md *DeploymentMetadata) error {
	md.UpdatedAt = c.now().UTC()
	if err := c.store.Save(md); err != nil {
		c.failures.Inc(1)
		return errors.Wrap(err, "failed to persist deployment metadata")
	}

	if md.HeadAddress != "" && c.pusher != nil {
		ctx, cancel := context.WithTimeout(context.Background(), c.pushTimeout)
		defer cancel()
		if err := c.pusher.Push(ctx, md.HeadAddress, md); err != nil {
			c.failures.Inc(1)
			return err
		}
	}

	c.checkpoints.Inc(1)
	log.WithFields(log.Fields{
		common.DeploymentLogField: md.Name,
		"head":                    md.HeadAddress,
		"nodes":                   len(md.Nodes),
	}).Debug("deployment metadata checkpointed")
	return nil
}

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
	"path"

	"github.com/Gigware/appscale-tools/pkg/common/sshutil"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

const _defaultRemoteDir = "/etc/appscale"

// Pusher copies deployment metadata to a remote machine.
type Pusher interface {
	Push(ctx context.Context, address string, md *DeploymentMetadata) error
}

// SSHPusher writes the metadata over ssh. The secret is never pushed.
type SSHPusher struct {
	client    sshutil.Client
	remoteDir string
}

// NewSSHPusher returns a Pusher writing into remoteDir on the remote host.
func NewSSHPusher(client sshutil.Client, remoteDir string) *SSHPusher {
	if remoteDir == "" {
		remoteDir = _defaultRemoteDir
	}
	return &SSHPusher{client: client, remoteDir: remoteDir}
}

// RemotePath returns where the metadata of deployment name is written.
func (p *SSHPusher) RemotePath(name string) string {
	return path.Join(p.remoteDir, "locations-"+name+".yaml")
}

// Push writes md without its secret to address.
func (p *SSHPusher) Push(ctx context.Context, address string, md *DeploymentMetadata) error {
	data, err := yaml.Marshal(md.Redacted())
	if err != nil {
		return errors.Wrap(err, "failed to marshal deployment metadata")
	}
	if err := p.client.WriteFile(ctx, address, p.RemotePath(md.Name), data, 0600); err != nil {
		return errors.Wrapf(err, "failed to push metadata to %s", address)
	}
	return nil
}

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
	"encoding/json"

	"github.com/Gigware/appscale-tools/pkg/common/sshutil"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// GCEProvisioner launches the head node on GCE with the gcloud CLI.
type GCEProvisioner struct {
	cfg     Config
	runner  CommandRunner
	starter headStarter
}

// NewGCEProvisioner returns a GCEProvisioner.
func NewGCEProvisioner(cfg Config, ssh sshutil.Client, runner CommandRunner) *GCEProvisioner {
	cfg = cfg.withDefaults()
	return &GCEProvisioner{
		cfg:     cfg,
		runner:  runner,
		starter: headStarter{cfg: cfg, ssh: ssh},
	}
}

type gceInstance struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	NetworkInterfaces []struct {
		AccessConfigs []struct {
			NatIP string `json:"natIP"`
		} `json:"accessConfigs"`
	} `json:"networkInterfaces"`
}

func (i gceInstance) publicAddress() string {
	for _, nic := range i.NetworkInterfaces {
		for _, ac := range nic.AccessConfigs {
			if ac.NatIP != "" {
				return ac.NatIP
			}
		}
	}
	return ""
}

// ProvisionHeadNode creates one instance named after the deployment and
// starts the controller on its external address.
func (p *GCEProvisioner) ProvisionHeadNode(ctx context.Context, req Request) (HeadNode, error) {
	env := []string{
		"CLOUDSDK_AUTH_CREDENTIAL_FILE_OVERRIDE=" + req.Credentials.CredentialsFile,
		"CLOUDSDK_CORE_PROJECT=" + req.Credentials.Project,
	}
	args := []string{
		"compute", "instances", "create", req.Name + "-head",
		"--image", req.Image,
		"--labels", "appscale-deployment=" + req.Name,
		"--format", "json",
	}
	if req.InstanceType != "" {
		args = append(args, "--machine-type", req.InstanceType)
	}
	if req.Zone != "" {
		args = append(args, "--zone", req.Zone)
	}

	out, err := p.runner.Run(ctx, env, p.cfg.GCloudCommand, args...)
	if err != nil {
		return HeadNode{}, errors.Wrap(err, "failed to create gce instance")
	}
	var created []gceInstance
	if err := json.Unmarshal(out, &created); err != nil {
		return HeadNode{}, errors.Wrap(err, "failed to parse instances create output")
	}
	if len(created) == 0 {
		return HeadNode{}, errors.New("instances create returned no instance")
	}
	address := created[0].publicAddress()
	if address == "" {
		return HeadNode{}, errors.Errorf("instance %s has no external address", created[0].Name)
	}
	log.WithFields(log.Fields{
		"instance_id": created[0].ID,
		"address":     address,
	}).Info("gce head node launched")

	if err := p.starter.start(ctx, address, req.Token); err != nil {
		return HeadNode{}, err
	}
	return HeadNode{Address: address, InstanceID: created[0].ID}, nil
}

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

// EC2Provisioner launches the head node on EC2 with the aws CLI.
type EC2Provisioner struct {
	cfg     Config
	runner  CommandRunner
	starter headStarter
}

// NewEC2Provisioner returns an EC2Provisioner.
func NewEC2Provisioner(cfg Config, ssh sshutil.Client, runner CommandRunner) *EC2Provisioner {
	cfg = cfg.withDefaults()
	return &EC2Provisioner{
		cfg:     cfg,
		runner:  runner,
		starter: headStarter{cfg: cfg, ssh: ssh},
	}
}

type ec2Instance struct {
	InstanceID      string `json:"InstanceId"`
	PublicIPAddress string `json:"PublicIpAddress"`
}

type ec2RunOutput struct {
	Instances []ec2Instance `json:"Instances"`
}

type ec2DescribeOutput struct {
	Reservations []struct {
		Instances []ec2Instance `json:"Instances"`
	} `json:"Reservations"`
}

func (p *EC2Provisioner) env(req Request) []string {
	env := []string{
		"AWS_ACCESS_KEY_ID=" + req.Credentials.AccessKey,
		"AWS_SECRET_ACCESS_KEY=" + req.Credentials.SecretKey,
	}
	if region := regionOf(req.Zone); region != "" {
		env = append(env, "AWS_DEFAULT_REGION="+region)
	}
	return env
}

// regionOf strips the availability zone letter, us-east-1a -> us-east-1.
func regionOf(zone string) string {
	if len(zone) < 2 {
		return ""
	}
	last := zone[len(zone)-1]
	if last >= 'a' && last <= 'z' {
		return zone[:len(zone)-1]
	}
	return zone
}

// ProvisionHeadNode runs one instance, waits until it is running and
// starts the controller on its public address.
func (p *EC2Provisioner) ProvisionHeadNode(ctx context.Context, req Request) (HeadNode, error) {
	env := p.env(req)
	args := []string{
		"ec2", "run-instances",
		"--image-id", req.Image,
		"--count", "1",
		"--output", "json",
		"--tag-specifications",
		"ResourceType=instance,Tags=[{Key=appscale-deployment,Value=" + req.Name + "}]",
	}
	if req.InstanceType != "" {
		args = append(args, "--instance-type", req.InstanceType)
	}
	if req.KeyName != "" {
		args = append(args, "--key-name", req.KeyName)
	}
	if req.Zone != "" {
		args = append(args, "--placement", "AvailabilityZone="+req.Zone)
	}

	out, err := p.runner.Run(ctx, env, p.cfg.AWSCommand, args...)
	if err != nil {
		return HeadNode{}, errors.Wrap(err, "failed to run ec2 instance")
	}
	var run ec2RunOutput
	if err := json.Unmarshal(out, &run); err != nil {
		return HeadNode{}, errors.Wrap(err, "failed to parse run-instances output")
	}
	if len(run.Instances) == 0 || run.Instances[0].InstanceID == "" {
		return HeadNode{}, errors.New("run-instances returned no instance")
	}
	id := run.Instances[0].InstanceID
	log.WithField("instance_id", id).Info("ec2 head node launched")

	if _, err := p.runner.Run(ctx, env, p.cfg.AWSCommand,
		"ec2", "wait", "instance-running", "--instance-ids", id); err != nil {
		return HeadNode{}, errors.Wrapf(err, "instance %s never reached running", id)
	}

	out, err = p.runner.Run(ctx, env, p.cfg.AWSCommand,
		"ec2", "describe-instances", "--instance-ids", id, "--output", "json")
	if err != nil {
		return HeadNode{}, errors.Wrapf(err, "failed to describe instance %s", id)
	}
	var desc ec2DescribeOutput
	if err := json.Unmarshal(out, &desc); err != nil {
		return HeadNode{}, errors.Wrap(err, "failed to parse describe-instances output")
	}
	if len(desc.Reservations) == 0 || len(desc.Reservations[0].Instances) == 0 ||
		desc.Reservations[0].Instances[0].PublicIPAddress == "" {
		return HeadNode{}, errors.Errorf("instance %s has no public address", id)
	}
	address := desc.Reservations[0].Instances[0].PublicIPAddress

	if err := p.starter.start(ctx, address, req.Token); err != nil {
		return HeadNode{}, err
	}
	return HeadNode{Address: address, InstanceID: id}, nil
}

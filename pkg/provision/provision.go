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

// Package provision starts the head node of a deployment on each supported
// infrastructure.
package provision

import (
	"context"
	"time"

	"github.com/Gigware/appscale-tools/pkg/auth"
	"github.com/Gigware/appscale-tools/pkg/common"
	"github.com/Gigware/appscale-tools/pkg/layout"
)

// Request describes the head node to start.
type Request struct {
	Name   string
	Layout *layout.NodeLayout

	Credentials  layout.Credentials
	Image        string
	InstanceType string
	Zone         string
	KeyName      string

	// Token is written to the head node before its controller starts.
	Token auth.SecretToken
}

// HeadNode is a started head node.
type HeadNode struct {
	Address    string
	InstanceID string
}

// Provisioner starts a head node with its controller running. It may
// retry internally and returns once the outcome is final.
type Provisioner interface {
	ProvisionHeadNode(ctx context.Context, req Request) (HeadNode, error)
}

// Config configures the provisioners.
type Config struct {
	// SecretPath is where the deployment secret is written on the head.
	SecretPath string `yaml:"secret_path"`
	// StartCommand starts the controller on the head node.
	StartCommand string `yaml:"start_command"`

	// SSHTimeout bounds waiting for the head node to accept ssh.
	SSHTimeout time.Duration `yaml:"ssh_timeout"`
	// SSHPollInterval is the delay between ssh port probes.
	SSHPollInterval time.Duration `yaml:"ssh_poll_interval"`
	// SSHPort is the port probed before the head node is started. It is
	// taken from the ssh client config, never read from YAML.
	SSHPort int `yaml:"-"`

	// AWSCommand and GCloudCommand are the provider CLIs, with any
	// leading arguments.
	AWSCommand    string `yaml:"aws_command"`
	GCloudCommand string `yaml:"gcloud_command"`

	// Timeout bounds a whole provisioning call.
	Timeout time.Duration `yaml:"timeout"`
}

const (
	_defaultSecretPath      = "/etc/appscale/secret.key"
	_defaultStartCommand    = "systemctl start appscale-controller"
	_defaultSSHTimeout      = 10 * time.Minute
	_defaultSSHPollInterval = 5 * time.Second
	_defaultTimeout         = 30 * time.Minute
)

func (c Config) withDefaults() Config {
	if c.SecretPath == "" {
		c.SecretPath = _defaultSecretPath
	}
	if c.StartCommand == "" {
		c.StartCommand = _defaultStartCommand
	}
	if c.SSHTimeout == 0 {
		c.SSHTimeout = _defaultSSHTimeout
	}
	if c.SSHPollInterval == 0 {
		c.SSHPollInterval = _defaultSSHPollInterval
	}
	if c.SSHPort == 0 {
		c.SSHPort = common.SSHPort
	}
	if c.AWSCommand == "" {
		c.AWSCommand = "aws"
	}
	if c.GCloudCommand == "" {
		c.GCloudCommand = "gcloud"
	}
	if c.Timeout == 0 {
		c.Timeout = _defaultTimeout
	}
	return c
}

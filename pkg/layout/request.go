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

package layout

import (
	"fmt"
	"regexp"
)

var _validName = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ValidName returns true if name can key a deployment's metadata and lock.
func ValidName(name string) bool {
	return _validName.MatchString(name)
}

// Infrastructure is the target a deployment runs on.
type Infrastructure string

const (
	// Cluster is a virtualized network of machines that already exist.
	Cluster = Infrastructure("cluster")
	// EC2 is Amazon EC2.
	EC2 = Infrastructure("ec2")
	// GCE is Google Compute Engine.
	GCE = Infrastructure("gce")
)

// Normalize maps the empty target onto Cluster.
func (i Infrastructure) Normalize() Infrastructure {
	if i == "" {
		return Cluster
	}
	return i
}

// IsCloud returns true for targets where machines are launched by a
// provider.
func (i Infrastructure) IsCloud() bool {
	switch i.Normalize() {
	case EC2, GCE:
		return true
	}
	return false
}

// IsKnown returns true for supported infrastructure targets.
func (i Infrastructure) IsKnown() bool {
	switch i.Normalize() {
	case Cluster, EC2, GCE:
		return true
	}
	return false
}

// Strategy decides how roles are spread over machines.
type Strategy string

const (
	// StrategyAll runs every role on the first machine and data plus
	// compute roles on the others.
	StrategyAll = Strategy("all")
	// StrategyExplicit takes the role list of every node as given.
	StrategyExplicit = Strategy("explicit")
)

// Credentials are the provider credentials for a cloud target.
type Credentials struct {
	// EC2
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`

	// GCE
	Project         string `yaml:"project"`
	CredentialsFile string `yaml:"credentials_file"`
}

// IsZero returns true if no credential is set.
func (c Credentials) IsZero() bool {
	return c == Credentials{}
}

func (c Credentials) String() string {
	secret := ""
	if c.SecretKey != "" {
		secret = "REDACTED"
	}
	return fmt.Sprintf("{access_key:%s secret_key:%s project:%s credentials_file:%s}",
		c.AccessKey, secret, c.Project, c.CredentialsFile)
}

// NodeSpec is one machine of a placement request.
type NodeSpec struct {
	// Address must be set on virtualized targets and left empty on clouds.
	Address string `yaml:"address"`
	// Roles are role keywords, aliases or "all".
	Roles []string `yaml:"roles"`
}

// PlacementRequest is what the user asks to deploy.
type PlacementRequest struct {
	Name           string         `yaml:"name"`
	Infrastructure Infrastructure `yaml:"infrastructure"`
	MachineCount   int            `yaml:"machines"`
	Strategy       Strategy       `yaml:"strategy"`
	Nodes          []NodeSpec     `yaml:"nodes"`

	Image        string      `yaml:"image"`
	InstanceType string      `yaml:"instance_type"`
	Zone         string      `yaml:"zone"`
	Credentials  Credentials `yaml:"credentials"`
	KeyName      string      `yaml:"keyname"`

	AdminUser     string `yaml:"admin_user"`
	AdminPassword string `yaml:"admin_password"`
	UseDefaults   bool   `yaml:"test"`

	// Force replaces the metadata of a deployment with the same name.
	Force bool `yaml:"force"`
}

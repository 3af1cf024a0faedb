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

package common

const (
	// ToolsName is the name used by the tools as yarpc caller and in logs.
	ToolsName = "appscale-tools"

	// ControllerService is the yarpc service name of the head node controller.
	ControllerService = "appscale-controller"
	// DirectoryService is the yarpc service name of the user directory.
	DirectoryService = "appscale-directory"

	// ControllerPort is the default port the controller listens on.
	ControllerPort = 17443
	// DirectoryPort is the default port the user directory listens on.
	DirectoryPort = 4343
	// SSHPort is the default port used to reach deployment machines.
	SSHPort = 22

	// DefaultDeploymentName names a deployment when none is given.
	DefaultDeploymentName = "appscale"

	// DefaultAdminUser is the admin username used when defaults are requested.
	DefaultAdminUser = "admin"
	// DefaultAdminPassword is the admin password used when defaults are
	// requested.
	DefaultAdminPassword = "default-password"

	// SecretHeaderKey is the rpc header carrying the deployment secret.
	SecretHeaderKey = "secret"
)

const (
	// AppLogField is the log field key for app name
	AppLogField = "app"

	// RunIDLogField is the log field key for the bootstrap run identifier.
	RunIDLogField = "run_id"

	// DeploymentLogField is the log field key for the deployment name.
	DeploymentLogField = "deployment"

	// SecretLogField is the log field key which is always redacted.
	SecretLogField = "secret"
)

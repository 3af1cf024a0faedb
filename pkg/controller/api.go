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

package controller

// Procedure names served by the controller.
const (
	GetDirectoryServiceHostProcedure = "Controller::GetDirectoryServiceHost"
	SetAdminRoleProcedure            = "Controller::SetAdminRole"
	AllMachinesLoadedProcedure       = "Controller::AllMachinesLoaded"
	GetNodesProcedure                = "Controller::GetNodes"
)

// GetDirectoryServiceHostRequest asks where the user directory runs.
type GetDirectoryServiceHostRequest struct{}

// GetDirectoryServiceHostResponse carries the directory host.
type GetDirectoryServiceHostResponse struct {
	Host string `json:"host"`
}

// SetAdminRoleRequest grants the admin role to Username.
type SetAdminRoleRequest struct {
	Username string `json:"username"`
}

// SetAdminRoleResponse acknowledges SetAdminRoleRequest.
type SetAdminRoleResponse struct{}

// AllMachinesLoadedRequest asks whether every machine finished loading.
type AllMachinesLoadedRequest struct{}

// AllMachinesLoadedResponse reports the loading state.
type AllMachinesLoadedResponse struct {
	Loaded bool `json:"loaded"`
}

// GetNodesRequest asks for the machines the controller knows about.
type GetNodesRequest struct{}

// GetNodesResponse lists the machines of the deployment.
type GetNodesResponse struct {
	Nodes []Node `json:"nodes"`
}

// Node is a machine as reported by the controller.
type Node struct {
	Address string   `json:"address"`
	Roles   []string `json:"roles"`
}

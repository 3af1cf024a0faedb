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

package main

import (
	"os"

	"github.com/Gigware/appscale-tools/pkg/layout"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// loadPlacement reads a placement request from a YAML file. Unknown keys
// are rejected so typos do not silently change the layout.
func loadPlacement(path string) (layout.PlacementRequest, error) {
	var req layout.PlacementRequest
	data, err := os.ReadFile(path)
	if err != nil {
		return req, errors.Wrap(err, "failed to read placement file")
	}
	if err := yaml.UnmarshalStrict(data, &req); err != nil {
		return req, errors.Wrapf(err, "failed to parse placement file %s", path)
	}
	return req, nil
}

// upOptions are the flags of the up command which override the placement
// file.
type upOptions struct {
	placement      string
	name           string
	infrastructure string
	machines       int
	image          string
	instanceType   string
	zone           string
	keyName        string
	adminUser      string
	adminPassword  string
	test           bool
	force          bool
}

func (o upOptions) apply(req *layout.PlacementRequest) {
	if o.name != "" {
		req.Name = o.name
	}
	if o.infrastructure != "" {
		req.Infrastructure = layout.Infrastructure(o.infrastructure)
	}
	if o.machines != 0 {
		req.MachineCount = o.machines
	}
	if o.image != "" {
		req.Image = o.image
	}
	if o.instanceType != "" {
		req.InstanceType = o.instanceType
	}
	if o.zone != "" {
		req.Zone = o.zone
	}
	if o.keyName != "" {
		req.KeyName = o.keyName
	}
	if o.adminUser != "" {
		req.AdminUser = o.adminUser
	}
	if o.adminPassword != "" {
		req.AdminPassword = o.adminPassword
	}
	req.UseDefaults = req.UseDefaults || o.test
	req.Force = req.Force || o.force
}

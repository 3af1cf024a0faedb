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
	"os"
	"os/exec"
	"strings"

	"github.com/mattn/go-shellwords"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// CommandRunner runs a local command and returns its standard output.
type CommandRunner interface {
	Run(ctx context.Context, env []string, command string, args ...string) ([]byte, error)
}

// ExecRunner runs commands with os/exec. command may carry leading
// arguments, split with shell rules.
type ExecRunner struct{}

// Run runs command with env added to the current environment.
func (ExecRunner) Run(ctx context.Context, env []string, command string, args ...string) ([]byte, error) {
	argv, err := shellwords.Parse(command)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse command %q", command)
	}
	if len(argv) == 0 {
		return nil, errors.New("empty command")
	}
	argv = append(argv, args...)

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Env = append(os.Environ(), env...)
	var stderr strings.Builder
	cmd.Stderr = &stderr

	log.WithField("command", argv[0]).
		WithField("args", argv[1:]).
		Debug("running provider command")
	out, err := cmd.Output()
	if err != nil {
		return out, errors.Wrapf(err, "%s failed: %s",
			argv[0], strings.TrimSpace(stderr.String()))
	}
	return out, nil
}

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

// Package lock holds the exclusive lock a run takes on a deployment name.
package lock

import (
	"time"

	"github.com/Gigware/appscale-tools/pkg/layout"

	"github.com/pkg/errors"
)

// Backends for the deployment lock.
const (
	FileBackend      = "file"
	ZooKeeperBackend = "zookeeper"
)

// ErrLocked is returned when another run holds the lock.
var ErrLocked = errors.New("deployment is locked by another run")

// Locker hands out exclusive locks keyed by deployment name.
type Locker interface {
	// Acquire takes the lock for name without waiting. It returns
	// ErrLocked if the lock is held elsewhere.
	Acquire(name string) (Lock, error)
	// Close releases resources held by the Locker.
	Close() error
}

// Lock is a held lock.
type Lock interface {
	// Release gives the lock up. Releasing twice is a no-op.
	Release() error
}

// Config selects and configures the lock backend.
type Config struct {
	// Backend is "file" (default) or "zookeeper".
	Backend string `yaml:"backend" validate:"regexp=^(file|zookeeper)?$"`

	// Directory holds lock files for the file backend.
	Directory string `yaml:"directory"`

	// ZKServers is the list of ZK servers for the zookeeper backend.
	ZKServers []string `yaml:"zk_servers"`
	// Root is the ZK path locks are created under.
	Root string `yaml:"root"`
	// ConnectionTimeout bounds connecting to ZK.
	ConnectionTimeout time.Duration `yaml:"connection_timeout"`
}

// New returns the Locker configured by cfg. defaultDir is used by the
// file backend when cfg.Directory is empty.
func New(cfg Config, defaultDir string) (Locker, error) {
	switch cfg.Backend {
	case FileBackend, "":
		dir := cfg.Directory
		if dir == "" {
			dir = defaultDir
		}
		return NewFileLocker(dir)
	case ZooKeeperBackend:
		return NewZKLocker(cfg)
	}
	return nil, errors.Errorf("unknown lock backend %q", cfg.Backend)
}

func checkName(name string) error {
	if !layout.ValidName(name) {
		return errors.Errorf("invalid deployment name %q", name)
	}
	return nil
}

// IsLocked returns true if the cause of err is ErrLocked.
func IsLocked(err error) bool {
	return errors.Cause(err) == ErrLocked
}

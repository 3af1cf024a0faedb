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

package lock

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/atomic"
	"golang.org/x/sys/unix"
)

// FileLocker locks deployments with flock(2) on a file per deployment.
// It only excludes runs on the same machine.
type FileLocker struct {
	dir string
}

// NewFileLocker returns a FileLocker keeping lock files in dir.
func NewFileLocker(dir string) (*FileLocker, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, errors.Wrapf(err, "failed to create lock directory %s", dir)
	}
	return &FileLocker{dir: dir}, nil
}

// Acquire takes the flock on <dir>/<name>.lock.
func (l *FileLocker) Acquire(name string) (Lock, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}
	path := filepath.Join(l.dir, name+".lock")
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0600)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open lock file")
	}

	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		f.Close()
		if err == unix.EWOULDBLOCK {
			return nil, errors.Wrapf(ErrLocked, "lock %s", path)
		}
		return nil, errors.Wrap(err, "failed to lock deployment")
	}

	// informational only, the flock is what excludes other runs
	f.Truncate(0)
	fmt.Fprintf(f, "pid=%d acquired=%s\n", os.Getpid(), time.Now().UTC().Format(time.RFC3339))

	return &fileLock{file: f}, nil
}

// Close is a no-op for the file backend.
func (l *FileLocker) Close() error {
	return nil
}

type fileLock struct {
	file     *os.File
	released atomic.Bool
}

func (l *fileLock) Release() error {
	if l.released.Swap(true) {
		return nil
	}
	err := unix.Flock(int(l.file.Fd()), unix.LOCK_UN)
	if cerr := l.file.Close(); err == nil {
		err = cerr
	}
	return errors.Wrap(err, "failed to release deployment lock")
}

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

package metadata

import (
	"os"
	"path/filepath"

	"github.com/Gigware/appscale-tools/pkg/layout"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

const (
	_fileSuffix = ".yaml"
	_fileMode   = 0600
	_dirMode    = 0700
)

// ErrNotFound is returned when no metadata exists for a deployment.
var ErrNotFound = errors.New("deployment metadata not found")

// Store persists deployment metadata. Save is durable when it returns.
type Store interface {
	Save(md *DeploymentMetadata) error
	Load(name string) (*DeploymentMetadata, error)
	Exists(name string) (bool, error)
	Remove(name string) error
}

// FileStore keeps one YAML file per deployment in a directory.
type FileStore struct {
	dir string
}

// NewFileStore returns a FileStore rooted at dir, creating it if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, _dirMode); err != nil {
		return nil, errors.Wrapf(err, "failed to create metadata directory %s", dir)
	}
	return &FileStore{dir: dir}, nil
}

// Path returns the file holding the metadata of deployment name.
func (s *FileStore) Path(name string) string {
	return filepath.Join(s.dir, name+_fileSuffix)
}

func checkName(name string) error {
	if !layout.ValidName(name) {
		return errors.Errorf("invalid deployment name %q", name)
	}
	return nil
}

// Save writes md to a temporary file, syncs it and renames it into place.
func (s *FileStore) Save(md *DeploymentMetadata) error {
	if err := checkName(md.Name); err != nil {
		return err
	}
	data, err := yaml.Marshal(md)
	if err != nil {
		return errors.Wrap(err, "failed to marshal deployment metadata")
	}

	path := s.Path(md.Name)
	tmp := path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, _fileMode)
	if err != nil {
		return errors.Wrap(err, "failed to create metadata file")
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return errors.Wrap(err, "failed to write metadata file")
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return errors.Wrap(err, "failed to sync metadata file")
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return errors.Wrap(err, "failed to close metadata file")
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return errors.Wrap(err, "failed to move metadata file into place")
	}

	if d, err := os.Open(s.dir); err == nil {
		d.Sync()
		d.Close()
	}
	return nil
}

// Load reads the metadata of deployment name.
func (s *FileStore) Load(name string) (*DeploymentMetadata, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.Path(name))
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to read metadata file")
	}
	md := &DeploymentMetadata{}
	if err := yaml.Unmarshal(data, md); err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s", s.Path(name))
	}
	return md, nil
}

// Exists returns true if metadata for deployment name is on disk.
func (s *FileStore) Exists(name string) (bool, error) {
	if err := checkName(name); err != nil {
		return false, err
	}
	_, err := os.Stat(s.Path(name))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrap(err, "failed to stat metadata file")
	}
	return true, nil
}

// Remove deletes the metadata of deployment name. Removing missing
// metadata is not an error.
func (s *FileStore) Remove(name string) error {
	if err := checkName(name); err != nil {
		return err
	}
	err := os.Remove(s.Path(name))
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "failed to remove metadata file")
	}
	return nil
}

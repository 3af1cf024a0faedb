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
	"path"
	"strings"
	"time"

	"github.com/docker/libkv/store"
	"github.com/docker/libkv/store/zookeeper"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"go.uber.org/atomic"
)

const (
	_defaultZKRoot              = "/appscale/deployments"
	_defaultZKConnectionTimeout = 10 * time.Second
)

// kvStore is the part of store.Store used for locking.
type kvStore interface {
	AtomicPut(key string, value []byte, previous *store.KVPair, options *store.WriteOptions) (bool, *store.KVPair, error)
	AtomicDelete(key string, previous *store.KVPair) (bool, error)
	Close()
}

// ZKLocker locks deployments by creating a znode per deployment, so runs
// from different machines exclude each other.
type ZKLocker struct {
	kv   kvStore
	root string
}

// NewZKLocker connects to the ZK servers in cfg.
func NewZKLocker(cfg Config) (*ZKLocker, error) {
	if len(cfg.ZKServers) == 0 {
		return nil, errors.New("zookeeper lock backend needs zk_servers")
	}
	timeout := cfg.ConnectionTimeout
	if timeout == 0 {
		timeout = _defaultZKConnectionTimeout
	}
	client, err := zookeeper.New(
		cfg.ZKServers,
		&store.Config{ConnectionTimeout: timeout},
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to zookeeper")
	}
	return newZKLocker(client, cfg.Root), nil
}

func newZKLocker(kv kvStore, root string) *ZKLocker {
	if root == "" {
		root = _defaultZKRoot
	}
	return &ZKLocker{kv: kv, root: root}
}

// lockPath returns the znode of deployment name.
func (l *ZKLocker) lockPath(name string) string {
	// NOTE: libkv keys have no leading /.
	return strings.TrimPrefix(path.Join(l.root, name, "lock"), "/")
}

// Acquire creates the lock znode, failing if it exists.
func (l *ZKLocker) Acquire(name string) (Lock, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}
	key := l.lockPath(name)
	host, _ := os.Hostname()
	value := []byte(fmt.Sprintf("host=%s pid=%d acquired=%s",
		host, os.Getpid(), time.Now().UTC().Format(time.RFC3339)))

	_, pair, err := l.kv.AtomicPut(key, value, nil, nil)
	if err == store.ErrKeyExists {
		return nil, errors.Wrapf(ErrLocked, "lock %s", key)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to lock deployment")
	}
	log.WithField("key", key).Debug("deployment lock acquired")
	return &zkLock{kv: l.kv, key: key, pair: pair}, nil
}

// Close closes the ZK connection.
func (l *ZKLocker) Close() error {
	l.kv.Close()
	return nil
}

type zkLock struct {
	kv       kvStore
	key      string
	pair     *store.KVPair
	released atomic.Bool
}

func (l *zkLock) Release() error {
	if l.released.Swap(true) {
		return nil
	}
	_, err := l.kv.AtomicDelete(l.key, l.pair)
	if err == store.ErrKeyNotFound {
		log.WithField("key", l.key).Warn("deployment lock vanished before release")
		return nil
	}
	if err != nil {
		return errors.Wrapf(err, "failed to release deployment lock %s", l.key)
	}
	return nil
}

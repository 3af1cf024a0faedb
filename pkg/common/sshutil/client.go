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

// Package sshutil runs commands and writes files on deployment machines.
package sshutil

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path"
	"strings"
	"time"

	"github.com/Gigware/appscale-tools/pkg/common"
	"github.com/Gigware/appscale-tools/pkg/common/netutil"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
)

const (
	_defaultUser        = "root"
	_defaultDialTimeout = 10 * time.Second
)

// Config describes how to reach deployment machines over ssh.
type Config struct {
	User string `yaml:"user"`
	Port int    `yaml:"port"`

	// KeyFile is the private key used to log in.
	KeyFile string `yaml:"key_file"`

	// KnownHostsFile enables host key checking. Host keys are not verified
	// when it is empty.
	KnownHostsFile string `yaml:"known_hosts_file"`

	DialTimeout time.Duration `yaml:"dial_timeout"`
}

// Client executes work on a remote machine.
type Client interface {
	// Run executes cmd on host and returns its combined output.
	Run(ctx context.Context, host string, cmd string) ([]byte, error)
	// WriteFile writes data to path on host with the given mode, creating
	// parent directories as needed.
	WriteFile(ctx context.Context, host string, path string, data []byte, mode os.FileMode) error
}

type client struct {
	cfg    Config
	config *ssh.ClientConfig
}

// NewClient loads the key and host key settings in cfg and returns a
// Client.
func NewClient(cfg Config) (Client, error) {
	if cfg.User == "" {
		cfg.User = _defaultUser
	}
	if cfg.Port == 0 {
		cfg.Port = common.SSHPort
	}
	if cfg.DialTimeout == 0 {
		cfg.DialTimeout = _defaultDialTimeout
	}

	var auths []ssh.AuthMethod
	if cfg.KeyFile != "" {
		key, err := os.ReadFile(cfg.KeyFile)
		if err != nil {
			return nil, errors.Wrap(err, "failed to read ssh key")
		}
		signer, err := ssh.ParsePrivateKey(key)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to parse ssh key %s", cfg.KeyFile)
		}
		auths = append(auths, ssh.PublicKeys(signer))
	}

	hostKeyCallback := ssh.InsecureIgnoreHostKey()
	if cfg.KnownHostsFile != "" {
		cb, err := knownhosts.New(cfg.KnownHostsFile)
		if err != nil {
			return nil, errors.Wrap(err, "failed to load known hosts")
		}
		hostKeyCallback = cb
	} else {
		log.Warn("ssh host keys are not verified, set known_hosts_file to enable")
	}

	return &client{
		cfg: cfg,
		config: &ssh.ClientConfig{
			User:            cfg.User,
			Auth:            auths,
			HostKeyCallback: hostKeyCallback,
			Timeout:         cfg.DialTimeout,
		},
	}, nil
}

func (c *client) Run(ctx context.Context, host string, cmd string) ([]byte, error) {
	return c.exec(ctx, host, cmd, nil)
}

func (c *client) WriteFile(
	ctx context.Context,
	host string,
	p string,
	data []byte,
	mode os.FileMode,
) error {
	cmd := fmt.Sprintf("umask 077 && mkdir -p %s && cat > %s && chmod %o %s",
		Quote(path.Dir(p)), Quote(p), mode.Perm(), Quote(p))
	_, err := c.exec(ctx, host, cmd, data)
	return err
}

func (c *client) exec(ctx context.Context, host string, cmd string, stdin []byte) ([]byte, error) {
	addr := netutil.JoinHostPort(host, c.cfg.Port)
	conn, err := ssh.Dial("tcp", addr, c.config)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to connect to %s", addr)
	}
	defer conn.Close()

	session, err := conn.NewSession()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open session on %s", addr)
	}
	defer session.Close()

	if stdin != nil {
		session.Stdin = bytes.NewReader(stdin)
	}
	var out bytes.Buffer
	session.Stdout = &out
	session.Stderr = &out

	done := make(chan error, 1)
	go func() {
		done <- session.Run(cmd)
	}()

	select {
	case err = <-done:
	case <-ctx.Done():
		conn.Close()
		<-done
		return out.Bytes(), ctx.Err()
	}
	if err != nil {
		return out.Bytes(), errors.Wrapf(err, "command failed on %s: %s",
			host, strings.TrimSpace(out.String()))
	}
	return out.Bytes(), nil
}

// Quote quotes s for a POSIX shell.
func Quote(s string) string {
	return "'" + strings.Replace(s, "'", `'\''`, -1) + "'"
}

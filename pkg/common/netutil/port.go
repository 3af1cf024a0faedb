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

package netutil

import (
	"net"
	"strconv"
	"time"

	"github.com/Gigware/appscale-tools/pkg/common/backoff"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const _defaultDialTimeout = 2 * time.Second

// IsPortOpen returns true if a TCP connection to host:port can be opened
// within timeout.
func IsPortOpen(host string, port int, timeout time.Duration) bool {
	if timeout <= 0 {
		timeout = _defaultDialTimeout
	}
	conn, err := net.DialTimeout("tcp", JoinHostPort(host, port), timeout)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

// WaitForPort probes host:port according to policy until it accepts a
// connection or the policy gives up.
func WaitForPort(host string, port int, p backoff.RetryPolicy) (backoff.Result, error) {
	addr := JoinHostPort(host, port)
	return backoff.Retry(func() error {
		if IsPortOpen(host, port, _defaultDialTimeout) {
			return nil
		}
		log.WithField("address", addr).Debug("port not open yet")
		return errors.Errorf("port %s not open", addr)
	}, p, nil)
}

// JoinHostPort formats host and port as an address.
func JoinHostPort(host string, port int) string {
	return net.JoinHostPort(host, strconv.Itoa(port))
}

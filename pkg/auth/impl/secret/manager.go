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

package secret

import (
	"bytes"
	"crypto/sha256"
	"crypto/subtle"
	"io"
	"sync"

	"github.com/Gigware/appscale-tools/pkg/auth"
	"github.com/Gigware/appscale-tools/pkg/common"

	"go.uber.org/yarpc/yarpcerrors"
)

// SecurityManager authenticates callers presenting the deployment secret.
// Until a secret is set every call is rejected.
type SecurityManager struct {
	sync.RWMutex
	// store the secret in hashed way,
	// so it is not exposed by mem dump.
	hashedSecret []byte
}

var _ auth.SecurityManager = &SecurityManager{}

// secretHolder is the only user type, it may call every procedure.
type secretHolder struct{}

// IsPermitted always return true for a caller holding the secret
func (u *secretHolder) IsPermitted(procedure string) bool {
	return true
}

// Authenticate checks the secret carried by token.
func (m *SecurityManager) Authenticate(token auth.Token) (auth.User, error) {
	authErr := yarpcerrors.UnauthenticatedErrorf("invalid deployment secret")

	secret, _ := token.Get(common.SecretHeaderKey)
	if len(secret) == 0 {
		return nil, authErr
	}

	m.RLock()
	defer m.RUnlock()

	if len(m.hashedSecret) == 0 {
		return nil, authErr
	}

	if !compareHashedSecret(m.hashedSecret, secret) {
		return nil, authErr
	}
	return &secretHolder{}, nil
}

// RedactToken removes secret info from the token
func (m *SecurityManager) RedactToken(token auth.Token) {
	token.Del(common.SecretHeaderKey)
}

// UpdateSecret replaces the secret callers must present.
func (m *SecurityManager) UpdateSecret(secret auth.SecretToken) {
	m.Lock()
	defer m.Unlock()

	if secret.IsZero() {
		m.hashedSecret = nil
		return
	}
	m.hashedSecret = hash(secret.Value())
}

// NewSecurityManager returns SecurityManager
func NewSecurityManager(secret auth.SecretToken) *SecurityManager {
	m := &SecurityManager{}
	m.UpdateSecret(secret)
	return m
}

func hash(s string) []byte {
	h := sha256.New()
	io.Copy(h, bytes.NewReader([]byte(s)))
	return h.Sum(nil)
}

func compareHashedSecret(hashed []byte, secret string) bool {
	return subtle.ConstantTimeCompare(hashed, hash(secret)) == 1
}

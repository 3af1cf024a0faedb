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
	"github.com/Gigware/appscale-tools/pkg/auth"
	"github.com/Gigware/appscale-tools/pkg/common"
)

// SecurityClient returns a token carrying the deployment secret
type SecurityClient struct {
	token *secretToken
}

// GetToken returns a token for secret auth
func (c *SecurityClient) GetToken() auth.Token {
	return c.token
}

type secretToken struct {
	items map[string]string
}

func (t *secretToken) Get(k string) (string, bool) {
	result, ok := t.items[k]
	return result, ok
}

func (t *secretToken) Items() map[string]string {
	return t.items
}

func (t *secretToken) Del(k string) {
	delete(t.items, k)
}

// NewSecurityClient returns a SecurityClient attaching secret to every
// token it hands out.
func NewSecurityClient(secret auth.SecretToken) *SecurityClient {
	return &SecurityClient{
		token: &secretToken{
			items: map[string]string{
				common.SecretHeaderKey: secret.Value(),
			},
		},
	}
}

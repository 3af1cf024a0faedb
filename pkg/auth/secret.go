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

package auth

import (
	"github.com/Gigware/appscale-tools/pkg/common/util/randutil"

	"github.com/pkg/errors"
)

// SecretTokenLength is the number of alphanumeric characters in a
// generated SecretToken.
const SecretTokenLength = 32

const redacted = "REDACTED"

// SecretToken is the shared credential authenticating every control-plane
// call of a single deployment. It is generated once per bootstrap run and
// copied by value into each rpc client.
type SecretToken string

// NewSecretToken generates a new SecretToken from a cryptographically
// secure source.
func NewSecretToken() (SecretToken, error) {
	b, err := randutil.Text(SecretTokenLength)
	if err != nil {
		return "", errors.Wrap(err, "failed to generate secret token")
	}
	return SecretToken(b), nil
}

// String implements fmt.Stringer and never returns the secret itself.
func (t SecretToken) String() string {
	if t == "" {
		return ""
	}
	return redacted
}

// GoString keeps %#v from printing the secret.
func (t SecretToken) GoString() string {
	return t.String()
}

// Value returns the cleartext secret. Only transport code should call it.
func (t SecretToken) Value() string {
	return string(t)
}

// IsZero returns true if no secret has been set.
func (t SecretToken) IsZero() bool {
	return t == ""
}

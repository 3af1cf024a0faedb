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
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSecretToken(t *testing.T) {
	token, err := NewSecretToken()
	require.NoError(t, err)
	assert.Len(t, token.Value(), SecretTokenLength)
	assert.False(t, token.IsZero())
}

func TestSecretTokensAreUnique(t *testing.T) {
	const samples = 10000
	seen := make(map[SecretToken]struct{}, samples)
	for i := 0; i < samples; i++ {
		token, err := NewSecretToken()
		require.NoError(t, err)
		_, dup := seen[token]
		require.False(t, dup, "duplicate token after %d samples", i)
		seen[token] = struct{}{}
	}
}

func TestSecretTokenFormattingIsRedacted(t *testing.T) {
	token := SecretToken("abcdefghijklmnop")

	for _, format := range []string{"%s", "%v", "%+v", "%#v"} {
		assert.NotContains(t, fmt.Sprintf(format, token), token.Value(), format)
	}

	holder := struct {
		Token SecretToken
	}{Token: token}
	assert.NotContains(t, fmt.Sprintf("%+v", holder), token.Value())
	assert.Equal(t, "", SecretToken("").String())
}

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

package randutil

import (
	"crypto/rand"
	"math/big"
)

const text = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

var textLen = big.NewInt(int64(len(text)))

func choose(n int, choices string, max *big.Int) ([]byte, error) {
	b := make([]byte, n)
	for i := range b {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return nil, err
		}
		b[i] = choices[idx.Int64()]
	}
	return b, nil
}

// Text returns randomly generated alphanumeric text of length n, drawn
// uniformly from a cryptographically secure source.
func Text(n int) ([]byte, error) {
	return choose(n, text, textLen)
}

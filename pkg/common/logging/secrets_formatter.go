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

package logging

import (
	"github.com/Gigware/appscale-tools/pkg/auth"
	"github.com/Gigware/appscale-tools/pkg/common"

	log "github.com/sirupsen/logrus"
)

// SecretsFormatter scrubs the deployment secret from log entries before
// handing them to the wrapped formatter.
type SecretsFormatter struct {
	log.Formatter
}

const redactedStr = "REDACTED"

// Format is called by logrus and returns the formatted string.
// It looks for secrets data in each entry and redacts it.
func (f *SecretsFormatter) Format(entry *log.Entry) ([]byte, error) {
	redactSecrets(entry.Data)
	return f.Formatter.Format(entry)
}

func redactSecrets(data log.Fields) {
	for k, v := range data {
		if k == common.SecretLogField {
			data[k] = redactedStr
			continue
		}

		switch v.(type) {
		case auth.SecretToken, *auth.SecretToken:
			// JSON formatting marshals the underlying string and would
			// bypass the token's String method.
			data[k] = redactedStr
		}
	}
}

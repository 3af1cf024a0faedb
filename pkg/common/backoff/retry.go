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

package backoff

import (
	"time"
)

// Retriable is a function returning an error which can be retried.
type Retriable func() error

// IsRetryable decides whether an error returned by a Retriable may be
// retried. A nil IsRetryable retries every error.
type IsRetryable func(error) bool

// Result describes how a call to Retry ended.
type Result struct {
	// Attempts is the number of times the function was invoked.
	Attempts int
	// Elapsed is the wall time spent from the first attempt to the last.
	Elapsed time.Duration
}

// Retry will retry the given function until it succeeded, returned an error
// which is not retryable, or hit maximum number of retries. It returns the
// last error.
func Retry(f Retriable, p RetryPolicy, isRetryable IsRetryable) (Result, error) {
	return retry(f, newRetrier(p, time.Now), isRetryable, time.Sleep)
}

func retry(
	f Retriable,
	r *retrierImpl,
	isRetryable IsRetryable,
	sleep func(time.Duration)) (Result, error) {
	var err error
	var backoff time.Duration
	var result Result

	for {
		result.Attempts++
		err = f()
		result.Elapsed = r.now().Sub(r.start)

		// function executed successfully. no need to retry.
		if err == nil {
			return result, nil
		}

		if isRetryable != nil && !isRetryable(err) {
			return result, err
		}

		if backoff = r.NextBackOff(); backoff == done {
			return result, err
		}

		sleep(backoff)
	}
}

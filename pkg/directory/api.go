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

package directory

// Procedure names served by the user directory.
const (
	CreateAccountProcedure = "Directory::CreateAccount"
	DoesUserExistProcedure = "Directory::DoesUserExist"
)

// CreateAccountRequest creates an account. PasswordHash is the stored
// form of the password, see HashPassword.
type CreateAccountRequest struct {
	Username     string `json:"username"`
	PasswordHash string `json:"password_hash"`
}

// CreateAccountResponse acknowledges CreateAccountRequest.
type CreateAccountResponse struct{}

// DoesUserExistRequest asks whether Username has an account.
type DoesUserExistRequest struct {
	Username string `json:"username"`
}

// DoesUserExistResponse answers DoesUserExistRequest.
type DoesUserExistResponse struct {
	Exists bool `json:"exists"`
}

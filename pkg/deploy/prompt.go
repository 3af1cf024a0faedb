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

package deploy

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/term"
)

const _minPasswordLength = 6

// Prompter asks the user for the admin credentials.
type Prompter interface {
	PromptCredentials() (username string, password string, err error)
}

// TerminalPrompter prompts on a terminal. The password is read without
// echo and asked for twice.
type TerminalPrompter struct {
	in  *os.File
	out io.Writer
}

// NewTerminalPrompter returns a TerminalPrompter reading from stdin and
// writing prompts to stderr.
func NewTerminalPrompter() *TerminalPrompter {
	return &TerminalPrompter{in: os.Stdin, out: os.Stderr}
}

// PromptCredentials reads and checks a username and password.
func (p *TerminalPrompter) PromptCredentials() (string, string, error) {
	fd := int(p.in.Fd())
	if !term.IsTerminal(fd) {
		return "", "", errors.New("not a terminal, pass the admin credentials explicitly")
	}

	fmt.Fprint(p.out, "Enter your desired admin e-mail address: ")
	line, err := bufio.NewReader(p.in).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", "", errors.Wrap(err, "failed to read username")
	}
	username := strings.TrimSpace(line)
	if err := ValidateUsername(username); err != nil {
		return "", "", err
	}

	password, err := p.readPassword(fd, "Enter new password: ")
	if err != nil {
		return "", "", err
	}
	if err := ValidatePassword(password); err != nil {
		return "", "", err
	}
	confirm, err := p.readPassword(fd, "Confirm password: ")
	if err != nil {
		return "", "", err
	}
	if password != confirm {
		return "", "", errors.New("passwords entered do not match")
	}
	return username, password, nil
}

func (p *TerminalPrompter) readPassword(fd int, prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(p.out)
	if err != nil {
		return "", errors.Wrap(err, "failed to read password")
	}
	return string(b), nil
}

// ValidateUsername checks that username looks like an e-mail address.
func ValidateUsername(username string) error {
	at := strings.Index(username, "@")
	if at < 1 || !strings.Contains(username[at+1:], ".") {
		return errors.Errorf("%q is not an e-mail address", username)
	}
	return nil
}

// ValidatePassword checks the minimum password length.
func ValidatePassword(password string) error {
	if len(password) < _minPasswordLength {
		return errors.Errorf("password must be at least %d characters long",
			_minPasswordLength)
	}
	return nil
}

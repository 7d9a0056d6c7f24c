// Copyright 2026 The go-marketledger Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package test holds end to end cases run against a live node.
package test

import (
	"fmt"

	"github.com/ultiledger/go-marketledger/client"
	"github.com/ultiledger/go-marketledger/crypto"
	"github.com/ultiledger/go-marketledger/log"
)

var cases []TestCase

// Register the input test case in the global cases slice.
func Register(tc TestCase) {
	cases = append(cases, tc)
}

// Roles names the privileged accounts of the target network.
type Roles struct {
	Admin  string
	Minter string
}

// TestCase abstracts a generic test case against a node. Each case
// creates its own fresh accounts so cases do not interfere.
type TestCase interface {
	Desc() string
	Run(c *client.Client, r Roles) error
}

// RunAll runs every registered case and returns the first failure.
func RunAll(c *client.Client, r Roles) error {
	for _, tc := range cases {
		log.Infow("running", "case", tc.Desc())
		if err := tc.Run(c, r); err != nil {
			return fmt.Errorf("%s: %v", tc.Desc(), err)
		}
		log.Infow("passed", "case", tc.Desc())
	}
	return nil
}

func newAccount() (string, error) {
	id, _, err := crypto.GetAccountKeypair()
	if err != nil {
		return "", fmt.Errorf("get account keypair failed: %v", err)
	}
	return id, nil
}

func expect(what, want, got string) error {
	if want != got {
		return fmt.Errorf("unexpected %s: want %s, got %s", what, want, got)
	}
	return nil
}

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

package future

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOpFuture(t *testing.T) {
	of := Op{}
	// test respond without Init will panic
	assert.Panics(t, func() { of.Error() })
	// test error response
	of.Init()
	of.Respond(errors.New("op error"))
	assert.Error(t, of.Error())
}

func TestOpFutureNil(t *testing.T) {
	of := Op{}
	of.Init()
	of.Respond(nil)
	assert.NoError(t, of.Error())
	assert.Nil(t, of.Events)
}

func TestOpFutureRespondOnce(t *testing.T) {
	of := Op{}
	of.Init()
	of.Respond(errors.New("op error"))
	// test reuse the same future will have no effect,
	// we still will get the first error
	of.Respond(errors.New("another op error"))
	assert.Error(t, of.Error())
	assert.Equal(t, "op error", of.Error().Error())
}

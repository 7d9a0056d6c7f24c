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

package log

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
)

func TestLogger(t *testing.T) {
	Errorw("listing rejected", "market", "packs", "err", "listing not active")
	Infow("operation committed", "op", "fulfill_pack", "seq", 7)
	Debugf("debug level (closed) %d", 1)
	OpenDebug()
	assert.True(t, config.Level.Enabled(zapcore.DebugLevel))
	Debugw("debug level (opened)", "op", "convert")
	CloseDebug()
	assert.False(t, config.Level.Enabled(zapcore.DebugLevel))
}

func TestSetLevel(t *testing.T) {
	assert.Nil(t, SetLevel("warn"))
	assert.False(t, config.Level.Enabled(zapcore.InfoLevel))
	assert.NotNil(t, SetLevel("chatty"))
	assert.Nil(t, SetLevel("info"))
	assert.True(t, config.Level.Enabled(zapcore.InfoLevel))

	Named("market").Infow("named logger", "ok", true)
}

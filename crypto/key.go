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

package crypto

import (
	"bytes"
	"encoding/binary"
	"errors"

	b58 "github.com/mr-tron/base58/base58"
)

type KeyType uint8

// enumeration of key type
const (
	_ KeyType = iota // skip zero
	KeyTypeAccountID
	KeyTypeSeed
)

var (
	ErrInvalidKey = errors.New("invalid key string")
)

// Key is the internal representation of an encoded key, Code
// identifies what the 32 byte hash stands for.
type Key struct {
	Code KeyType
	Hash [32]byte
}

// DecodeKey decodes a base58 encoded key string.
func DecodeKey(key string) (*Key, error) {
	if key == "" {
		return nil, ErrInvalidKey
	}

	b, err := b58.Decode(key)
	if err != nil {
		return nil, ErrInvalidKey
	}
	if len(b) != 33 {
		return nil, ErrInvalidKey
	}

	var k Key
	r := bytes.NewReader(b)
	if err := binary.Read(r, binary.BigEndian, &k); err != nil {
		return nil, ErrInvalidKey
	}

	switch k.Code {
	case KeyTypeAccountID, KeyTypeSeed:
		return &k, nil
	}
	return nil, ErrInvalidKey
}

// EncodeKey encodes the key to a base58 string.
func EncodeKey(k *Key) string {
	var buf bytes.Buffer
	binary.Write(&buf, binary.BigEndian, k)
	return b58.Encode(buf.Bytes())
}

// IsValidKey checks the validity of supplied key string.
func IsValidKey(key string) bool {
	_, err := DecodeKey(key)
	return err == nil
}

// IsAccountID reports whether key is a well formed account id.
func IsAccountID(key string) bool {
	k, err := DecodeKey(key)
	if err != nil {
		return false
	}
	return k.Code == KeyTypeAccountID
}

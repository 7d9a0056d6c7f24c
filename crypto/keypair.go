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
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"io"

	"golang.org/x/crypto/ed25519"
)

// Generate account keypair with ed25519 crypto algorithm, since we can
// always reconstruct the true private key using the same seed, we use
// the seed as an equivalent private key.
func accountKeypair(seed [32]byte) (string, string) {
	privateKey := ed25519.NewKeyFromSeed(seed[:])
	publicKey := privateKey.Public().(ed25519.PublicKey)

	var pk [32]byte
	copy(pk[:], publicKey)
	acc := &Key{Code: KeyTypeAccountID, Hash: pk}
	sd := &Key{Code: KeyTypeSeed, Hash: seed}

	return EncodeKey(acc), EncodeKey(sd)
}

// GetAccountKeypair randomly generates an account id and its seed.
func GetAccountKeypair() (string, string, error) {
	var seed [32]byte
	if _, err := io.ReadFull(rand.Reader, seed[:]); err != nil {
		return "", "", err
	}
	pub, sd := accountKeypair(seed)
	return pub, sd, nil
}

// GetAccountKeypairFromSeed generates the account keypair from provided seed.
func GetAccountKeypairFromSeed(seed []byte) (string, string, error) {
	if len(seed) != 32 {
		return "", "", errors.New("invalid seed, byte length is not 32")
	}
	var sd [32]byte
	copy(sd[:], seed)
	pub, sds := accountKeypair(sd)
	return pub, sds, nil
}

// DeriveAccountID deterministically derives the account id the ledger
// itself uses for a named role, e.g. a market acting as operator.
func DeriveAccountID(networkID string, name string) string {
	seed := sha256.Sum256([]byte(networkID + "/" + name))
	pub, _ := accountKeypair(seed)
	return pub
}

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

package db

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

var (
	ErrNotInitialized = errors.New("database is not initialized")
	ErrEmptyBucket    = errors.New("database bucket name is empty")
	ErrEmptyKey       = errors.New("database key is empty")
)

// Getter reads values from a bucket. A missing key yields a nil
// value and a nil error.
type Getter interface {
	Get(bucket string, key []byte) ([]byte, error)
	GetAll(bucket string, keyPrefix []byte) ([][]byte, error)
	// GetRange returns, in key order, the values of the keys with
	// keyPrefix that are not less than start, at most limit of them
	// when limit is positive.
	GetRange(bucket string, keyPrefix, start []byte, limit int) ([][]byte, error)
}

// Putter writes key/value pairs to a bucket.
type Putter interface {
	Put(bucket string, key, value []byte) error
}

// Deleter removes keys from a bucket.
type Deleter interface {
	Delete(bucket string, key []byte) error
}

// Tx is a writable database transaction. Writes are visible to
// reads of the same transaction and become durable only on Commit.
type Tx interface {
	Getter
	Putter
	Deleter
	Commit() error
	Rollback() error
}

// Database is the generic key/value store the ledger is built on.
type Database interface {
	Getter
	Putter
	Deleter
	NewBucket(name string) error
	Begin() (Tx, error)
	Close() error
}

// Ctor opens a database at the given path.
type Ctor func(path string) (Database, error)

var (
	ctorsMu sync.RWMutex
	ctors   = make(map[string]Ctor)
)

// Register makes a database backend available by name. Backends
// call it from their init functions.
func Register(name string, ctor Ctor) {
	ctorsMu.Lock()
	defer ctorsMu.Unlock()
	if ctor == nil {
		panic("db: register nil constructor for " + name)
	}
	ctors[name] = ctor
}

// Open opens the named backend at path.
func Open(name string, path string) (Database, error) {
	ctorsMu.RLock()
	ctor, ok := ctors[name]
	ctorsMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("database %s not registered", name)
	}
	return ctor(path)
}

// Backends lists the registered backend names.
func Backends() []string {
	ctorsMu.RLock()
	defer ctorsMu.RUnlock()
	var names []string
	for name := range ctors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

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

package memdb

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/ultiledger/go-marketledger/db"
)

var ErrTxDone = errors.New("memdb transaction already finished")

func init() {
	db.Register("memdb", func(string) (db.Database, error) {
		return New(), nil
	})
}

type memdb struct {
	sync.RWMutex
	buckets map[string]map[string][]byte
}

// New creates a memory-based key-value store
// which is mainly used for testing.
func New() db.Database {
	return &memdb{buckets: make(map[string]map[string][]byte)}
}

func (m *memdb) NewBucket(name string) error {
	if name == "" {
		return db.ErrEmptyBucket
	}
	m.Lock()
	defer m.Unlock()
	if m.buckets == nil {
		return db.ErrNotInitialized
	}
	if _, ok := m.buckets[name]; !ok {
		m.buckets[name] = make(map[string][]byte)
	}
	return nil
}

// Put writes the key/value pair to database.
func (m *memdb) Put(bucket string, key, value []byte) error {
	if len(key) == 0 {
		return db.ErrEmptyKey
	}
	m.Lock()
	defer m.Unlock()
	b, err := m.bucket(bucket)
	if err != nil {
		return err
	}
	b[string(key)] = append([]byte(nil), value...)
	return nil
}

// Delete deletes the key from the database.
func (m *memdb) Delete(bucket string, key []byte) error {
	m.Lock()
	defer m.Unlock()
	b, err := m.bucket(bucket)
	if err != nil {
		return err
	}
	delete(b, string(key))
	return nil
}

// Get retrieves the value of the key from database.
func (m *memdb) Get(bucket string, key []byte) ([]byte, error) {
	m.RLock()
	defer m.RUnlock()
	b, err := m.bucket(bucket)
	if err != nil {
		return nil, err
	}
	if val, ok := b[string(key)]; ok {
		return append([]byte(nil), val...), nil
	}
	return nil, nil
}

// GetAll retrieves the values of the keys with prefix in key order.
func (m *memdb) GetAll(bucket string, keyPrefix []byte) ([][]byte, error) {
	return m.GetRange(bucket, keyPrefix, keyPrefix, 0)
}

// GetRange retrieves the values of the keys with prefix from start on.
func (m *memdb) GetRange(bucket string, keyPrefix, start []byte, limit int) ([][]byte, error) {
	m.RLock()
	defer m.RUnlock()
	b, err := m.bucket(bucket)
	if err != nil {
		return nil, err
	}
	return rangeOf(b, keyPrefix, start, limit), nil
}

// Close closes the underlying database.
func (m *memdb) Close() error {
	m.Lock()
	defer m.Unlock()
	m.buckets = nil
	return nil
}

// Begin starts a transaction buffering its writes until Commit.
func (m *memdb) Begin() (db.Tx, error) {
	m.RLock()
	defer m.RUnlock()
	if m.buckets == nil {
		return nil, db.ErrNotInitialized
	}
	return &memdbTx{db: m, writes: make(map[string]map[string]*[]byte)}, nil
}

// bucket must be called with the lock held.
func (m *memdb) bucket(name string) (map[string][]byte, error) {
	if m.buckets == nil {
		return nil, db.ErrNotInitialized
	}
	b, ok := m.buckets[name]
	if !ok {
		return nil, fmt.Errorf("bucket %s not exist", name)
	}
	return b, nil
}

// memdbTx overlays pending writes on top of the committed state.
// A nil entry in writes marks a deleted key.
type memdbTx struct {
	db     *memdb
	writes map[string]map[string]*[]byte
	done   bool
}

func (tx *memdbTx) Get(bucket string, key []byte) ([]byte, error) {
	if tx.done {
		return nil, ErrTxDone
	}
	if w, ok := tx.writes[bucket][string(key)]; ok {
		if w == nil {
			return nil, nil
		}
		return append([]byte(nil), (*w)...), nil
	}
	return tx.db.Get(bucket, key)
}

func (tx *memdbTx) GetAll(bucket string, keyPrefix []byte) ([][]byte, error) {
	return tx.GetRange(bucket, keyPrefix, keyPrefix, 0)
}

func (tx *memdbTx) GetRange(bucket string, keyPrefix, start []byte, limit int) ([][]byte, error) {
	if tx.done {
		return nil, ErrTxDone
	}
	tx.db.RLock()
	b, err := tx.db.bucket(bucket)
	if err != nil {
		tx.db.RUnlock()
		return nil, err
	}
	merged := make(map[string][]byte)
	for k, v := range b {
		if strings.HasPrefix(k, string(keyPrefix)) {
			merged[k] = v
		}
	}
	tx.db.RUnlock()

	for k, w := range tx.writes[bucket] {
		if !strings.HasPrefix(k, string(keyPrefix)) {
			continue
		}
		if w == nil {
			delete(merged, k)
			continue
		}
		merged[k] = *w
	}
	return rangeOf(merged, keyPrefix, start, limit), nil
}

// rangeOf copies out the values of b selected as GetRange describes.
func rangeOf(b map[string][]byte, keyPrefix, start []byte, limit int) [][]byte {
	var keys []string
	for k := range b {
		if strings.HasPrefix(k, string(keyPrefix)) && k >= string(start) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	if limit > 0 && len(keys) > limit {
		keys = keys[:limit]
	}
	var vals [][]byte
	for _, k := range keys {
		vals = append(vals, append([]byte(nil), b[k]...))
	}
	return vals
}

func (tx *memdbTx) Put(bucket string, key, value []byte) error {
	if tx.done {
		return ErrTxDone
	}
	if len(key) == 0 {
		return db.ErrEmptyKey
	}
	if err := tx.checkBucket(bucket); err != nil {
		return err
	}
	v := append([]byte(nil), value...)
	tx.bucketWrites(bucket)[string(key)] = &v
	return nil
}

func (tx *memdbTx) Delete(bucket string, key []byte) error {
	if tx.done {
		return ErrTxDone
	}
	if err := tx.checkBucket(bucket); err != nil {
		return err
	}
	tx.bucketWrites(bucket)[string(key)] = nil
	return nil
}

func (tx *memdbTx) Rollback() error {
	if tx.done {
		return ErrTxDone
	}
	tx.done = true
	tx.writes = nil
	return nil
}

func (tx *memdbTx) Commit() error {
	if tx.done {
		return ErrTxDone
	}
	tx.done = true

	tx.db.Lock()
	defer tx.db.Unlock()
	for name, kvs := range tx.writes {
		b, err := tx.db.bucket(name)
		if err != nil {
			return err
		}
		for k, w := range kvs {
			if w == nil {
				delete(b, k)
				continue
			}
			b[k] = *w
		}
	}
	tx.writes = nil
	return nil
}

func (tx *memdbTx) checkBucket(name string) error {
	tx.db.RLock()
	defer tx.db.RUnlock()
	_, err := tx.db.bucket(name)
	return err
}

func (tx *memdbTx) bucketWrites(name string) map[string]*[]byte {
	w, ok := tx.writes[name]
	if !ok {
		w = make(map[string]*[]byte)
		tx.writes[name] = w
	}
	return w
}

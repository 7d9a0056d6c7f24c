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

package boltdb

import (
	"bytes"
	"fmt"
	"time"

	"github.com/boltdb/bolt"

	"github.com/ultiledger/go-marketledger/db"
)

func init() {
	db.Register("boltdb", func(path string) (db.Database, error) {
		return New(path)
	})
}

type boltdb struct {
	db *bolt.DB
}

// New opens a boltdb instance which can be used by multiple
// goroutines of the same process, BoltDB obtains a file lock on the data
// file so multiple processes cannot open the same database at the same time.
func New(path string) (db.Database, error) {
	bt, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open boltdb %s failed: %v", path, err)
	}
	return &boltdb{db: bt}, nil
}

func (bt *boltdb) NewBucket(name string) error {
	if bt.db == nil {
		return db.ErrNotInitialized
	}
	if name == "" {
		return db.ErrEmptyBucket
	}
	return bt.db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(name))
		return err
	})
}

// Put writes the key/value pair to database.
func (bt *boltdb) Put(bucket string, key, value []byte) error {
	if bt.db == nil {
		return db.ErrNotInitialized
	}
	return bt.db.Update(func(tx *bolt.Tx) error {
		return put(tx, bucket, key, value)
	})
}

// Delete deletes the key from the database.
func (bt *boltdb) Delete(bucket string, key []byte) error {
	if bt.db == nil {
		return db.ErrNotInitialized
	}
	return bt.db.Update(func(tx *bolt.Tx) error {
		return del(tx, bucket, key)
	})
}

// Get retrieves the value of the key from database.
func (bt *boltdb) Get(bucket string, key []byte) ([]byte, error) {
	if bt.db == nil {
		return nil, db.ErrNotInitialized
	}
	var val []byte
	err := bt.db.View(func(tx *bolt.Tx) error {
		var err error
		val, err = get(tx, bucket, key)
		return err
	})
	return val, err
}

// GetAll retrieves the values of the keys with prefix from database.
func (bt *boltdb) GetAll(bucket string, keyPrefix []byte) ([][]byte, error) {
	if bt.db == nil {
		return nil, db.ErrNotInitialized
	}
	var vals [][]byte
	err := bt.db.View(func(tx *bolt.Tx) error {
		var err error
		vals, err = getAll(tx, bucket, keyPrefix)
		return err
	})
	return vals, err
}

// GetRange retrieves the values of the keys with prefix from start on.
func (bt *boltdb) GetRange(bucket string, keyPrefix, start []byte, limit int) ([][]byte, error) {
	if bt.db == nil {
		return nil, db.ErrNotInitialized
	}
	var vals [][]byte
	err := bt.db.View(func(tx *bolt.Tx) error {
		var err error
		vals, err = getRange(tx, bucket, keyPrefix, start, limit)
		return err
	})
	return vals, err
}

// Close closes the underlying database.
func (bt *boltdb) Close() error {
	if bt.db == nil {
		return nil
	}
	err := bt.db.Close()
	bt.db = nil
	return err
}

// Begin returns a writable database transaction object
// which can be used to manually managing transaction.
func (bt *boltdb) Begin() (db.Tx, error) {
	if bt.db == nil {
		return nil, db.ErrNotInitialized
	}
	tx, err := bt.db.Begin(true)
	if err != nil {
		return nil, err
	}
	return &boltdbTx{tx: tx}, nil
}

// boltdbTx wraps the boltdb transaction to provide the desired interface.
type boltdbTx struct {
	tx *bolt.Tx
}

func (btx *boltdbTx) Get(bucket string, key []byte) ([]byte, error) {
	return get(btx.tx, bucket, key)
}

func (btx *boltdbTx) GetAll(bucket string, keyPrefix []byte) ([][]byte, error) {
	return getAll(btx.tx, bucket, keyPrefix)
}

func (btx *boltdbTx) GetRange(bucket string, keyPrefix, start []byte, limit int) ([][]byte, error) {
	return getRange(btx.tx, bucket, keyPrefix, start, limit)
}

func (btx *boltdbTx) Put(bucket string, key, value []byte) error {
	return put(btx.tx, bucket, key, value)
}

func (btx *boltdbTx) Delete(bucket string, key []byte) error {
	return del(btx.tx, bucket, key)
}

func (btx *boltdbTx) Rollback() error {
	return btx.tx.Rollback()
}

func (btx *boltdbTx) Commit() error {
	return btx.tx.Commit()
}

func bucketOf(tx *bolt.Tx, name string) (*bolt.Bucket, error) {
	if name == "" {
		return nil, db.ErrEmptyBucket
	}
	b := tx.Bucket([]byte(name))
	if b == nil {
		return nil, fmt.Errorf("bucket %s not exist", name)
	}
	return b, nil
}

// Values returned by bolt are only valid for the life of the
// transaction, so every read hands out a copy.
func get(tx *bolt.Tx, bucket string, key []byte) ([]byte, error) {
	b, err := bucketOf(tx, bucket)
	if err != nil {
		return nil, err
	}
	v := b.Get(key)
	if v == nil {
		return nil, nil
	}
	return append([]byte(nil), v...), nil
}

func getAll(tx *bolt.Tx, bucket string, keyPrefix []byte) ([][]byte, error) {
	return getRange(tx, bucket, keyPrefix, keyPrefix, 0)
}

func getRange(tx *bolt.Tx, bucket string, keyPrefix, start []byte, limit int) ([][]byte, error) {
	b, err := bucketOf(tx, bucket)
	if err != nil {
		return nil, err
	}
	if bytes.Compare(start, keyPrefix) < 0 {
		start = keyPrefix
	}
	var vals [][]byte
	c := b.Cursor()
	for k, v := c.Seek(start); k != nil && bytes.HasPrefix(k, keyPrefix); k, v = c.Next() {
		vals = append(vals, append([]byte(nil), v...))
		if limit > 0 && len(vals) == limit {
			break
		}
	}
	return vals, nil
}

func put(tx *bolt.Tx, bucket string, key, value []byte) error {
	if len(key) == 0 {
		return db.ErrEmptyKey
	}
	b, err := bucketOf(tx, bucket)
	if err != nil {
		return err
	}
	return b.Put(key, value)
}

func del(tx *bolt.Tx, bucket string, key []byte) error {
	b, err := bucketOf(tx, bucket)
	if err != nil {
		return err
	}
	return b.Delete(key)
}

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

package market

import (
	"fmt"

	"github.com/ultiledger/go-marketledger/db"
	"github.com/ultiledger/go-marketledger/types"
)

// Index is a persistent set of listing keys kept as a dense arena
// (position -> key) with a reverse lookup (key -> position). Removal
// moves the last key into the freed slot, so order is insertion order
// up to those swaps.
type Index struct {
	bucket string
	prefix string
}

func NewIndex(bucket, name string) *Index {
	return &Index{bucket: bucket, prefix: name + "/"}
}

func (ix *Index) lenKey() []byte {
	return []byte(ix.prefix + "len")
}

func (ix *Index) slotKey(pos uint64) []byte {
	return []byte(fmt.Sprintf("%si/%020d", ix.prefix, pos))
}

func (ix *Index) posKey(key string) []byte {
	return []byte(ix.prefix + "k/" + key)
}

// Len returns the number of keys in the index.
func (ix *Index) Len(getter db.Getter) (uint64, error) {
	c, err := ix.getCounter(getter, ix.lenKey())
	if err != nil {
		return 0, err
	}
	return c.Value, nil
}

func (ix *Index) Contains(getter db.Getter, key string) (bool, error) {
	b, err := getter.Get(ix.bucket, ix.posKey(key))
	if err != nil {
		return false, fmt.Errorf("get index position failed: %v", err)
	}
	return b != nil, nil
}

// Insert appends key unless it is already present.
func (ix *Index) Insert(dt db.Tx, key string) (bool, error) {
	ok, err := ix.Contains(dt, key)
	if err != nil || ok {
		return false, err
	}
	n, err := ix.Len(dt)
	if err != nil {
		return false, err
	}
	if err := dt.Put(ix.bucket, ix.slotKey(n), []byte(key)); err != nil {
		return false, fmt.Errorf("save index slot failed: %v", err)
	}
	if err := ix.putCounter(dt, ix.posKey(key), n); err != nil {
		return false, err
	}
	if err := ix.putCounter(dt, ix.lenKey(), n+1); err != nil {
		return false, err
	}
	return true, nil
}

// Remove deletes key by moving the last key into its slot.
func (ix *Index) Remove(dt db.Tx, key string) (bool, error) {
	b, err := dt.Get(ix.bucket, ix.posKey(key))
	if err != nil {
		return false, fmt.Errorf("get index position failed: %v", err)
	}
	if b == nil {
		return false, nil
	}
	pos, err := types.DecodeCounter(b)
	if err != nil {
		return false, fmt.Errorf("decode index position failed: %v", err)
	}
	n, err := ix.Len(dt)
	if err != nil {
		return false, err
	}
	last := n - 1
	if pos.Value != last {
		lastKey, err := dt.Get(ix.bucket, ix.slotKey(last))
		if err != nil {
			return false, fmt.Errorf("get index slot failed: %v", err)
		}
		if err := dt.Put(ix.bucket, ix.slotKey(pos.Value), lastKey); err != nil {
			return false, fmt.Errorf("save index slot failed: %v", err)
		}
		if err := ix.putCounter(dt, ix.posKey(string(lastKey)), pos.Value); err != nil {
			return false, err
		}
	}
	if err := dt.Delete(ix.bucket, ix.slotKey(last)); err != nil {
		return false, fmt.Errorf("delete index slot failed: %v", err)
	}
	if err := dt.Delete(ix.bucket, ix.posKey(key)); err != nil {
		return false, fmt.Errorf("delete index position failed: %v", err)
	}
	if err := ix.putCounter(dt, ix.lenKey(), last); err != nil {
		return false, err
	}
	return true, nil
}

// Keys returns the indexed keys in slot order.
func (ix *Index) Keys(getter db.Getter) ([]string, error) {
	n, err := ix.Len(getter)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, n)
	for i := uint64(0); i < n; i++ {
		b, err := getter.Get(ix.bucket, ix.slotKey(i))
		if err != nil {
			return nil, fmt.Errorf("get index slot failed: %v", err)
		}
		keys = append(keys, string(b))
	}
	return keys, nil
}

func (ix *Index) getCounter(getter db.Getter, key []byte) (*types.Counter, error) {
	b, err := getter.Get(ix.bucket, key)
	if err != nil {
		return nil, fmt.Errorf("get index counter failed: %v", err)
	}
	if b == nil {
		return &types.Counter{}, nil
	}
	return types.DecodeCounter(b)
}

func (ix *Index) putCounter(putter db.Putter, key []byte, v uint64) error {
	b, err := types.Encode(&types.Counter{Name: ix.prefix, Value: v})
	if err != nil {
		return fmt.Errorf("encode index counter failed: %v", err)
	}
	if err := putter.Put(ix.bucket, key, b); err != nil {
		return fmt.Errorf("save index counter failed: %v", err)
	}
	return nil
}

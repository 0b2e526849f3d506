package store

import (
	"errors"
	"fmt"
	"sync"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"
)

// PebbleOptions tunes the on-disk backend. A nil FS uses the real filesystem.
type PebbleOptions struct {
	FS        vfs.FS
	CacheSize int64
}

// Pebble stores entities in a pebble database. Each transaction is an
// indexed batch committed with pebble.Sync. Close waits for open
// transactions to be discarded before closing the database.
type Pebble struct {
	mu     sync.RWMutex
	db     *pebble.DB
	active sync.WaitGroup
}

func OpenPebble(path string, opts PebbleOptions) (*Pebble, error) {
	if opts.CacheSize <= 0 {
		opts.CacheSize = 16 << 20
	}
	cache := pebble.NewCache(opts.CacheSize)
	defer cache.Unref()

	popts := &pebble.Options{
		Cache:              cache,
		FormatMajorVersion: pebble.FormatNewest,
		MemTableSize:       16 << 20,
	}
	if opts.FS != nil {
		popts.FS = opts.FS
	}

	db, err := pebble.Open(path, popts)
	if err != nil {
		return nil, fmt.Errorf("open pebble at %s: %w", path, err)
	}
	return &Pebble{db: db}, nil
}

func (p *Pebble) Begin() (Txn, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.db == nil {
		return nil, ErrClosed
	}
	p.active.Add(1)
	return &pebbleTxn{batch: p.db.NewIndexedBatch(), done: p.active.Done}, nil
}

func (p *Pebble) Close() error {
	p.mu.Lock()
	db := p.db
	p.db = nil
	p.mu.Unlock()
	if db == nil {
		return nil
	}
	p.active.Wait()
	return db.Close()
}

type pebbleTxn struct {
	batch  *pebble.Batch
	done   func()
	closed bool
}

func (t *pebbleTxn) Get(key []byte) ([]byte, error) {
	value, closer, err := t.batch.Get(key)
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	defer closer.Close()
	return append([]byte(nil), value...), nil
}

func (t *pebbleTxn) Set(key, value []byte) error {
	return t.batch.Set(key, value, nil)
}

func (t *pebbleTxn) Delete(key []byte) error {
	return t.batch.Delete(key, nil)
}

func (t *pebbleTxn) Range(lower, upper []byte, fn func(key, value []byte) error) error {
	iter, err := t.batch.NewIter(&pebble.IterOptions{LowerBound: lower, UpperBound: upper})
	if err != nil {
		return err
	}
	for iter.First(); iter.Valid(); iter.Next() {
		key := append([]byte(nil), iter.Key()...)
		value := append([]byte(nil), iter.Value()...)
		if err := fn(key, value); err != nil {
			iter.Close()
			return err
		}
	}
	if err := iter.Error(); err != nil {
		iter.Close()
		return err
	}
	return iter.Close()
}

func (t *pebbleTxn) Commit() error {
	if t.closed {
		return ErrClosed
	}
	if err := t.batch.Commit(pebble.Sync); err != nil {
		return err
	}
	t.Discard()
	return nil
}

func (t *pebbleTxn) Discard() {
	if t.closed {
		return
	}
	t.closed = true
	t.batch.Close()
	t.done()
}

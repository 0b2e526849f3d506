package store

import (
	"bytes"
	"sort"
	"sync"
)

// Memory is a map-backed Backend for tests and one-shot commands.
type Memory struct {
	mu     sync.RWMutex
	data   map[string][]byte
	closed bool
}

func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

func (m *Memory) Begin() (Txn, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrClosed
	}
	return &memoryTxn{m: m, writes: make(map[string]memoryWrite)}, nil
}

func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

type memoryWrite struct {
	value   []byte
	deleted bool
}

type memoryTxn struct {
	m      *Memory
	writes map[string]memoryWrite
	done   bool
}

func (t *memoryTxn) Get(key []byte) ([]byte, error) {
	if w, ok := t.writes[string(key)]; ok {
		if w.deleted {
			return nil, ErrNotFound
		}
		return append([]byte(nil), w.value...), nil
	}

	t.m.mu.RLock()
	defer t.m.mu.RUnlock()
	v, ok := t.m.data[string(key)]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (t *memoryTxn) Set(key, value []byte) error {
	t.writes[string(key)] = memoryWrite{value: append([]byte(nil), value...)}
	return nil
}

func (t *memoryTxn) Delete(key []byte) error {
	t.writes[string(key)] = memoryWrite{deleted: true}
	return nil
}

func (t *memoryTxn) Range(lower, upper []byte, fn func(key, value []byte) error) error {
	inRange := func(k string) bool {
		kb := []byte(k)
		return bytes.Compare(kb, lower) >= 0 && (upper == nil || bytes.Compare(kb, upper) < 0)
	}

	view := make(map[string][]byte)
	t.m.mu.RLock()
	for k, v := range t.m.data {
		if inRange(k) {
			view[k] = v
		}
	}
	t.m.mu.RUnlock()
	for k, w := range t.writes {
		if !inRange(k) {
			continue
		}
		if w.deleted {
			delete(view, k)
		} else {
			view[k] = w.value
		}
	}

	keys := make([]string, 0, len(view))
	for k := range view {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if err := fn([]byte(k), append([]byte(nil), view[k]...)); err != nil {
			return err
		}
	}
	return nil
}

func (t *memoryTxn) Commit() error {
	if t.done {
		return ErrClosed
	}
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	if t.m.closed {
		return ErrClosed
	}
	for k, w := range t.writes {
		if w.deleted {
			delete(t.m.data, k)
		} else {
			t.m.data[k] = w.value
		}
	}
	t.done = true
	return nil
}

func (t *memoryTxn) Discard() {
	t.done = true
	t.writes = nil
}

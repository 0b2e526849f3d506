package store

import "errors"

var (
	// ErrNotFound is returned by Txn.Get for a missing key.
	ErrNotFound = errors.New("not found")
	// ErrClosed is returned when a transaction is started on a closed store.
	ErrClosed = errors.New("store closed")
)

// Backend is the key-value engine behind a Store.
type Backend interface {
	// Begin starts a transaction. Writes are invisible to other transactions
	// until Commit.
	Begin() (Txn, error)
	Close() error
}

// Txn is a read-your-writes view over a Backend.
type Txn interface {
	Get(key []byte) ([]byte, error)
	Set(key, value []byte) error
	Delete(key []byte) error
	// Range calls fn for every key in [lower, upper) in ascending order.
	Range(lower, upper []byte, fn func(key, value []byte) error) error
	Commit() error
	// Discard releases the transaction without applying its writes. It is
	// safe to call after Commit.
	Discard()
}

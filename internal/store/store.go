// Package store is the transactional entity store: peers, their cached
// metadata, notification settings, presences, contact flags and messages,
// persisted as JSON records in a key-value Backend.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/danhigham/telecache/internal/domain"
	"github.com/danhigham/telecache/internal/remote"
)

// Store serializes write transactions; it is the only mutation gate for the
// entities it holds.
type Store struct {
	mu      sync.Mutex
	backend Backend
	logger  *zap.Logger
}

func New(backend Backend, logger *zap.Logger) *Store {
	return &Store{
		backend: backend,
		logger:  logger.Named("store"),
	}
}

// Transaction runs fn inside one write transaction. The writes are committed
// when fn returns nil and discarded otherwise. A cancelled ctx prevents the
// transaction from starting.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	txn, err := s.backend.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer txn.Discard()

	if err := fn(&Tx{txn: txn, logger: s.logger}); err != nil {
		return err
	}
	if err := txn.Commit(); err != nil {
		s.logger.Error("Commit failed", zap.Error(err))
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// View runs fn against a read-only transaction. Writes made by fn are dropped.
func (s *Store) View(ctx context.Context, fn func(tx *Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	txn, err := s.backend.Begin()
	if err != nil {
		return fmt.Errorf("begin view: %w", err)
	}
	defer txn.Discard()
	return fn(&Tx{txn: txn, logger: s.logger})
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.backend.Close()
}

// Tx is the set of entity operations available inside a transaction.
type Tx struct {
	txn    Txn
	logger *zap.Logger
}

func (tx *Tx) getJSON(key []byte, v any) (bool, error) {
	data, err := tx.txn.Get(key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (tx *Tx) setJSON(key []byte, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return tx.txn.Set(key, data)
}

// Peer returns the stored peer or nil.
func (tx *Tx) Peer(id domain.PeerID) (domain.Peer, error) {
	data, err := tx.txn.Get(entityKey(prefixPeer, id))
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return decodePeer(data)
}

// Peers returns every stored peer of a namespace.
func (tx *Tx) Peers(ns domain.Namespace) ([]domain.Peer, error) {
	prefix := []byte(fmt.Sprintf("%s/%d/", prefixPeer, ns))
	var peers []domain.Peer
	err := tx.txn.Range(prefix, prefixEnd(prefix), func(_, value []byte) error {
		p, err := decodePeer(value)
		if err != nil {
			return err
		}
		peers = append(peers, p)
		return nil
	})
	return peers, err
}

// MergeFunc combines a stored peer with an incoming one. Returning false skips
// the incoming peer.
type MergeFunc func(existing, updated domain.Peer) (domain.Peer, bool)

// UpdatePeers upserts peers. existing is nil for peers not stored yet. Users
// that are not min records also update the contact flag.
func (tx *Tx) UpdatePeers(peers []domain.Peer, merge MergeFunc) error {
	for _, updated := range peers {
		if updated == nil {
			continue
		}
		id := updated.PeerID()
		existing, err := tx.Peer(id)
		if err != nil {
			return err
		}

		result := updated
		if merge != nil {
			var ok bool
			if result, ok = merge(existing, updated); !ok || result == nil {
				continue
			}
		}

		data, err := encodePeer(result)
		if err != nil {
			return err
		}
		if err := tx.txn.Set(entityKey(prefixPeer, id), data); err != nil {
			return err
		}
		if u, ok := result.(*domain.User); ok && !u.Min {
			if err := tx.SetContact(id, u.Contact); err != nil {
				return err
			}
		}
	}
	return nil
}

// UpsertEntities stores the peers and presences a response carried. Users
// are merged with their local copy; a peer whose stored record is of another
// kind is skipped. Presences of account are not recorded.
func (tx *Tx) UpsertEntities(account domain.PeerID, entities remote.Entities) error {
	peers := make([]domain.Peer, 0, len(entities.Chats)+len(entities.Users))
	presences := make(map[domain.PeerID]domain.Presence)

	peers = append(peers, entities.Chats...)
	for _, u := range entities.Users {
		if u.User == nil {
			continue
		}
		existing, err := tx.Peer(u.User.PeerID())
		if err != nil {
			return err
		}
		local, _ := existing.(*domain.User)
		peers = append(peers, domain.MergeUser(local, u.User))
		if u.Presence != nil {
			presences[u.User.PeerID()] = *u.Presence
		}
	}

	err := tx.UpdatePeers(peers, func(existing, updated domain.Peer) (domain.Peer, bool) {
		if existing != nil && !domain.SamePeerKind(existing, updated) {
			tx.logger.Warn("Skipping peer of a conflicting kind", zap.Stringer("peer", updated.PeerID()))
			return nil, false
		}
		return updated, true
	})
	if err != nil {
		return err
	}
	return tx.UpdatePresences(account, presences)
}

// CachedData returns the stored cached data or nil.
func (tx *Tx) CachedData(id domain.PeerID) (domain.CachedPeerData, error) {
	data, err := tx.txn.Get(entityKey(prefixCached, id))
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return decodeCachedData(data)
}

// UpdateCachedData replaces the cached data of each id with what update
// returns for it. current is nil when nothing is stored; a nil result leaves
// the stored value untouched.
func (tx *Tx) UpdateCachedData(ids []domain.PeerID, update func(id domain.PeerID, current domain.CachedPeerData) domain.CachedPeerData) error {
	for _, id := range ids {
		current, err := tx.CachedData(id)
		if err != nil {
			return err
		}
		next := update(id, current)
		if next == nil {
			continue
		}
		data, err := encodeCachedData(next)
		if err != nil {
			return err
		}
		if err := tx.txn.Set(entityKey(prefixCached, id), data); err != nil {
			return err
		}
	}
	return nil
}

// UpdateNotificationSettings overwrites the settings of every peer in the map.
func (tx *Tx) UpdateNotificationSettings(settings map[domain.PeerID]domain.PeerNotificationSettings) error {
	for id, s := range settings {
		if err := tx.setJSON(entityKey(prefixNotify, id), s); err != nil {
			return err
		}
	}
	return nil
}

func (tx *Tx) NotificationSettings(id domain.PeerID) (*domain.PeerNotificationSettings, error) {
	var s domain.PeerNotificationSettings
	ok, err := tx.getJSON(entityKey(prefixNotify, id), &s)
	if !ok || err != nil {
		return nil, err
	}
	return &s, nil
}

// UpdatePresences records presences seen by account. The account's own
// presence is not recorded.
func (tx *Tx) UpdatePresences(account domain.PeerID, presences map[domain.PeerID]domain.Presence) error {
	for id, p := range presences {
		if id == account {
			continue
		}
		if err := tx.setJSON(entityKey(prefixPresence, id), p); err != nil {
			return err
		}
	}
	return nil
}

func (tx *Tx) Presence(id domain.PeerID) (*domain.Presence, error) {
	var p domain.Presence
	ok, err := tx.getJSON(entityKey(prefixPresence, id), &p)
	if !ok || err != nil {
		return nil, err
	}
	return &p, nil
}

func (tx *Tx) SetContact(id domain.PeerID, contact bool) error {
	key := entityKey(prefixContact, id)
	if !contact {
		return tx.txn.Delete(key)
	}
	return tx.txn.Set(key, []byte{1})
}

func (tx *Tx) IsContact(id domain.PeerID) (bool, error) {
	_, err := tx.txn.Get(entityKey(prefixContact, id))
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

package store

import (
	"encoding/json"
	"fmt"

	"github.com/danhigham/telecache/internal/domain"
)

// StoreMessages inserts or replaces messages.
func (tx *Tx) StoreMessages(msgs []domain.Message) error {
	for _, m := range msgs {
		if err := tx.setJSON(messageKey(m.ID), m); err != nil {
			return err
		}
	}
	return nil
}

// Message returns the stored message or nil.
func (tx *Tx) Message(id domain.MessageID) (*domain.Message, error) {
	var m domain.Message
	ok, err := tx.getJSON(messageKey(id), &m)
	if !ok || err != nil {
		return nil, err
	}
	return &m, nil
}

// Messages returns the stored messages of a peer in ascending id order.
func (tx *Tx) Messages(peer domain.PeerID, ns domain.MessageNamespace) ([]domain.Message, error) {
	prefix := messagePrefix(peer, ns)
	var out []domain.Message
	err := tx.txn.Range(prefix, prefixEnd(prefix), func(key, value []byte) error {
		var m domain.Message
		if err := json.Unmarshal(value, &m); err != nil {
			return fmt.Errorf("decode %s: %w", key, err)
		}
		out = append(out, m)
		return nil
	})
	return out, err
}

// DeleteMessagesInRange deletes the messages of a peer with minID <= id < maxID
// and calls forEachMedia for every media attached to them. It returns the
// number of deleted messages.
func (tx *Tx) DeleteMessagesInRange(peer domain.PeerID, ns domain.MessageNamespace, minID, maxID int32, forEachMedia func(domain.Media)) (int, error) {
	if maxID <= minID {
		return 0, nil
	}
	prefix := messagePrefix(peer, ns)
	lower := appendMessageID(append([]byte(nil), prefix...), minID)
	upper := appendMessageID(append([]byte(nil), prefix...), maxID)

	var keys [][]byte
	err := tx.txn.Range(lower, upper, func(key, value []byte) error {
		var m domain.Message
		if err := json.Unmarshal(value, &m); err != nil {
			return fmt.Errorf("decode %s: %w", key, err)
		}
		if forEachMedia != nil {
			for _, media := range m.Media {
				forEachMedia(media)
			}
		}
		keys = append(keys, key)
		return nil
	})
	if err != nil {
		return 0, err
	}

	for _, key := range keys {
		if err := tx.txn.Delete(key); err != nil {
			return 0, err
		}
	}
	return len(keys), nil
}

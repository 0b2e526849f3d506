package store

import (
	"encoding/json"
	"fmt"

	"github.com/danhigham/telecache/internal/domain"
)

// peerRecord is the stored envelope of the closed Peer union.
type peerRecord struct {
	User       *domain.User       `json:"user,omitempty"`
	Group      *domain.Group      `json:"group,omitempty"`
	Channel    *domain.Channel    `json:"channel,omitempty"`
	SecretChat *domain.SecretChat `json:"secret_chat,omitempty"`
}

func encodePeer(p domain.Peer) ([]byte, error) {
	var rec peerRecord
	switch p := p.(type) {
	case *domain.User:
		rec.User = p
	case *domain.Group:
		rec.Group = p
	case *domain.Channel:
		rec.Channel = p
	case *domain.SecretChat:
		rec.SecretChat = p
	default:
		return nil, fmt.Errorf("encode peer: unsupported type %T", p)
	}
	return json.Marshal(rec)
}

func decodePeer(data []byte) (domain.Peer, error) {
	var rec peerRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode peer: %w", err)
	}
	switch {
	case rec.User != nil:
		return rec.User, nil
	case rec.Group != nil:
		return rec.Group, nil
	case rec.Channel != nil:
		return rec.Channel, nil
	case rec.SecretChat != nil:
		return rec.SecretChat, nil
	}
	return nil, fmt.Errorf("decode peer: empty record")
}

// cachedRecord is the stored envelope of the closed CachedPeerData union.
type cachedRecord struct {
	User       *domain.CachedUserData       `json:"user,omitempty"`
	Group      *domain.CachedGroupData      `json:"group,omitempty"`
	Channel    *domain.CachedChannelData    `json:"channel,omitempty"`
	SecretChat *domain.CachedSecretChatData `json:"secret_chat,omitempty"`
}

func encodeCachedData(d domain.CachedPeerData) ([]byte, error) {
	var rec cachedRecord
	switch d := d.(type) {
	case domain.CachedUserData:
		rec.User = &d
	case domain.CachedGroupData:
		rec.Group = &d
	case domain.CachedChannelData:
		rec.Channel = &d
	case domain.CachedSecretChatData:
		rec.SecretChat = &d
	default:
		return nil, fmt.Errorf("encode cached data: unsupported type %T", d)
	}
	return json.Marshal(rec)
}

func decodeCachedData(data []byte) (domain.CachedPeerData, error) {
	var rec cachedRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode cached data: %w", err)
	}
	switch {
	case rec.User != nil:
		return *rec.User, nil
	case rec.Group != nil:
		return *rec.Group, nil
	case rec.Channel != nil:
		return *rec.Channel, nil
	case rec.SecretChat != nil:
		return *rec.SecretChat, nil
	}
	return nil, fmt.Errorf("decode cached data: empty record")
}

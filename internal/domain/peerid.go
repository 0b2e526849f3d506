package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidPeerID is returned when a textual peer id cannot be parsed.
var ErrInvalidPeerID = errors.New("invalid peer id")

// Namespace selects which peer and cached-data family a PeerID belongs to.
type Namespace int32

const (
	NamespaceUser Namespace = iota
	NamespaceGroup
	NamespaceChannel
	NamespaceSecretChat
)

var namespaceNames = map[Namespace]string{
	NamespaceUser:       "user",
	NamespaceGroup:      "chat",
	NamespaceChannel:    "channel",
	NamespaceSecretChat: "secret",
}

func (n Namespace) String() string {
	if s, ok := namespaceNames[n]; ok {
		return s
	}
	return "ns" + strconv.Itoa(int(n))
}

// PeerID identifies a peer inside its namespace.
type PeerID struct {
	Namespace Namespace `json:"ns"`
	ID        int64     `json:"id"`
}

func UserID(id int64) PeerID       { return PeerID{Namespace: NamespaceUser, ID: id} }
func GroupID(id int64) PeerID      { return PeerID{Namespace: NamespaceGroup, ID: id} }
func ChannelID(id int64) PeerID    { return PeerID{Namespace: NamespaceChannel, ID: id} }
func SecretChatID(id int64) PeerID { return PeerID{Namespace: NamespaceSecretChat, ID: id} }

func (p PeerID) IsZero() bool {
	return p == PeerID{}
}

func (p PeerID) String() string {
	return p.Namespace.String() + ":" + strconv.FormatInt(p.ID, 10)
}

// ParsePeerID parses the "namespace:id" form produced by PeerID.String.
func ParsePeerID(s string) (PeerID, error) {
	prefix, rawID, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return PeerID{}, fmt.Errorf("%w: %q", ErrInvalidPeerID, s)
	}
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil || id <= 0 {
		return PeerID{}, fmt.Errorf("%w: %q", ErrInvalidPeerID, s)
	}
	for ns, name := range namespaceNames {
		if name == strings.ToLower(prefix) {
			return PeerID{Namespace: ns, ID: id}, nil
		}
	}
	return PeerID{}, fmt.Errorf("%w: unknown namespace %q", ErrInvalidPeerID, prefix)
}

// MessageNamespace separates server-side messages from local-only ones.
type MessageNamespace int32

const (
	MessageNamespaceCloud MessageNamespace = iota
	MessageNamespaceLocal
)

// MessageID addresses one message of a peer.
type MessageID struct {
	PeerID    PeerID           `json:"peer"`
	Namespace MessageNamespace `json:"ns"`
	ID        int32            `json:"id"`
}

// CloudMessageID builds a message id in the default (cloud) namespace.
func CloudMessageID(peerID PeerID, id int32) MessageID {
	return MessageID{PeerID: peerID, Namespace: MessageNamespaceCloud, ID: id}
}

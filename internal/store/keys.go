package store

import (
	"encoding/binary"
	"fmt"

	"github.com/danhigham/telecache/internal/domain"
)

const (
	prefixPeer     = "peer"
	prefixCached   = "cached"
	prefixNotify   = "notify"
	prefixPresence = "presence"
	prefixContact  = "contact"
	prefixMessage  = "msg"
)

func entityKey(prefix string, id domain.PeerID) []byte {
	return []byte(fmt.Sprintf("%s/%d/%d", prefix, id.Namespace, id.ID))
}

// messagePrefix groups all messages of one peer and namespace; ids follow as
// 4 big-endian bytes so keys sort by message id.
func messagePrefix(peer domain.PeerID, ns domain.MessageNamespace) []byte {
	return []byte(fmt.Sprintf("%s/%d/%d/%d/", prefixMessage, peer.Namespace, peer.ID, ns))
}

func messageKey(id domain.MessageID) []byte {
	return appendMessageID(messagePrefix(id.PeerID, id.Namespace), id.ID)
}

func appendMessageID(prefix []byte, id int32) []byte {
	// Flip the sign bit so negative ids sort before positive ones.
	return binary.BigEndian.AppendUint32(prefix, uint32(id)^(1<<31))
}

// prefixEnd returns the smallest key greater than every key with the prefix.
func prefixEnd(prefix []byte) []byte {
	end := append([]byte(nil), prefix...)
	for i := len(end) - 1; i >= 0; i-- {
		end[i]++
		if end[i] != 0 {
			return end[:i+1]
		}
	}
	return nil
}

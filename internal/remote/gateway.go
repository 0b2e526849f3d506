// Package remote defines the typed queries the reconciler issues against the
// server, the closed result shapes they decode into, and the retry policy
// that hides transient failures from callers.
package remote

import (
	"context"
	"errors"
)

// ErrChannelPrivate is returned when the account lost access to a channel.
var ErrChannelPrivate = errors.New("channel private")

// Gateway issues remote queries. Implementations return decoded results or a
// classified error; transient failures are retried by Retrying.
type Gateway interface {
	GetPeerSettings(ctx context.Context, peer InputPeer) (PeerSettings, error)
	GetFullUser(ctx context.Context, user InputUser) (UserFull, error)
	GetFullChat(ctx context.Context, chatID int64) (ChatFull, error)
	GetFullChannel(ctx context.Context, channel InputChannel) (ChatFull, error)
	GetParticipantSelf(ctx context.Context, channel InputChannel) (ChannelParticipant, error)
}

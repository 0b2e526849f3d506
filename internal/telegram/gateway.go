package telegram

import (
	"context"
	"fmt"

	"github.com/gotd/td/tg"
	"github.com/gotd/td/tgerr"

	"github.com/danhigham/telecache/internal/domain"
	"github.com/danhigham/telecache/internal/remote"
)

// Gateway implements remote.Gateway on top of the raw tg API.
type Gateway struct {
	api *tg.Client
}

func NewGateway(api *tg.Client) *Gateway {
	return &Gateway{api: api}
}

var _ remote.Gateway = (*Gateway)(nil)

// GetPeerSettings fetches the action bar flags of a peer.
func (g *Gateway) GetPeerSettings(ctx context.Context, peer remote.InputPeer) (remote.PeerSettings, error) {
	input, err := inputPeer(peer)
	if err != nil {
		return remote.PeerSettings{}, err
	}
	res, err := g.api.MessagesGetPeerSettings(ctx, input)
	if err != nil {
		return remote.PeerSettings{}, fmt.Errorf("get peer settings: %w", err)
	}
	return remote.PeerSettings{Settings: decodePeerSettings(res.Settings)}, nil
}

// GetFullUser fetches the full profile of a user.
func (g *Gateway) GetFullUser(ctx context.Context, user remote.InputUser) (remote.UserFull, error) {
	var input tg.InputUserClass = &tg.InputUser{UserID: user.ID, AccessHash: user.AccessHash}
	if user.Self {
		input = &tg.InputUserSelf{}
	}
	res, err := g.api.UsersGetFullUser(ctx, input)
	if err != nil {
		return remote.UserFull{}, fmt.Errorf("get full user: %w", err)
	}
	return decodeUserFull(res), nil
}

// GetFullChat fetches the full info of a basic group.
func (g *Gateway) GetFullChat(ctx context.Context, chatID int64) (remote.ChatFull, error) {
	res, err := g.api.MessagesGetFullChat(ctx, chatID)
	if err != nil {
		return remote.ChatFull{}, fmt.Errorf("get full chat: %w", err)
	}
	return decodeChatFull(res)
}

// GetFullChannel fetches the full info of a channel or supergroup.
func (g *Gateway) GetFullChannel(ctx context.Context, channel remote.InputChannel) (remote.ChatFull, error) {
	res, err := g.api.ChannelsGetFullChannel(ctx, inputChannel(channel))
	if err != nil {
		return remote.ChatFull{}, fmt.Errorf("get full channel: %w", classify(err))
	}
	return decodeChatFull(res)
}

// GetParticipantSelf fetches the account's own membership row in a channel.
func (g *Gateway) GetParticipantSelf(ctx context.Context, channel remote.InputChannel) (remote.ChannelParticipant, error) {
	res, err := g.api.ChannelsGetParticipant(ctx, &tg.ChannelsGetParticipantRequest{
		Channel:     inputChannel(channel),
		Participant: &tg.InputPeerSelf{},
	})
	if err != nil {
		return remote.ChannelParticipant{}, fmt.Errorf("get participant: %w", classify(err))
	}
	return decodeChannelParticipant(res), nil
}

func inputPeer(peer remote.InputPeer) (tg.InputPeerClass, error) {
	switch peer.ID.Namespace {
	case domain.NamespaceUser:
		return &tg.InputPeerUser{UserID: peer.ID.ID, AccessHash: peer.AccessHash}, nil
	case domain.NamespaceGroup:
		return &tg.InputPeerChat{ChatID: peer.ID.ID}, nil
	case domain.NamespaceChannel:
		return &tg.InputPeerChannel{ChannelID: peer.ID.ID, AccessHash: peer.AccessHash}, nil
	default:
		return nil, fmt.Errorf("no input peer for %s", peer.ID)
	}
}

func inputChannel(channel remote.InputChannel) *tg.InputChannel {
	return &tg.InputChannel{ChannelID: channel.ID, AccessHash: channel.AccessHash}
}

// classify maps channel access errors onto remote.ErrChannelPrivate.
func classify(err error) error {
	if tgerr.Is(err, "CHANNEL_PRIVATE", "CHANNEL_INVALID", "CHANNEL_PUBLIC_GROUP_NA") {
		return fmt.Errorf("%w: %w", remote.ErrChannelPrivate, err)
	}
	return err
}

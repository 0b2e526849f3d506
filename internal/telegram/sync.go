package telegram

import (
	"context"
	"fmt"

	"github.com/gotd/td/telegram/query/dialogs"
	"github.com/gotd/td/tg"
	"go.uber.org/zap"

	"github.com/danhigham/telecache/internal/domain"
	"github.com/danhigham/telecache/internal/remote"
	"github.com/danhigham/telecache/internal/store"
)

// SyncDialogs walks the dialog list and stores every peer it names together
// with presences, notification settings and the last message. It returns the
// number of dialogs seen.
func (c *Client) SyncDialogs(ctx context.Context) (int, error) {
	log := c.logger.Named("sync")
	iter := dialogs.NewQueryBuilder(c.api).GetDialogs().BatchSize(100).Iter()

	var (
		entities remote.Entities
		notify   = make(map[domain.PeerID]domain.PeerNotificationSettings)
		messages []domain.Message
		count    int
	)
	for iter.Next(ctx) {
		elem := iter.Value()
		dlg, ok := elem.Dialog.(*tg.Dialog)
		if !ok {
			continue
		}
		peerID, ok := decodePeerID(dlg.Peer)
		if !ok {
			continue
		}
		count++

		switch p := dlg.Peer.(type) {
		case *tg.PeerUser:
			if u, ok := elem.Entities.User(p.UserID); ok {
				entities.Users = append(entities.Users, decodeUser(u))
			}
		case *tg.PeerChat:
			if ch, ok := elem.Entities.Chat(p.ChatID); ok {
				if peer, ok := decodeChat(ch); ok {
					entities.Chats = append(entities.Chats, peer)
				}
			}
		case *tg.PeerChannel:
			if ch, ok := elem.Entities.Channel(p.ChannelID); ok {
				if peer, ok := decodeChat(ch); ok {
					entities.Chats = append(entities.Chats, peer)
				}
			}
		}
		notify[peerID] = decodeNotifySettings(dlg.NotifySettings)

		if last, ok := elem.Last.(*tg.Message); ok {
			if msg, ok := decodeMessage(peerID, last); ok {
				messages = append(messages, msg)
			}
		}
	}
	if err := iter.Err(); err != nil {
		return 0, fmt.Errorf("iterate dialogs: %w", err)
	}

	err := c.store.Transaction(ctx, func(tx *store.Tx) error {
		if err := tx.UpsertEntities(c.self, entities); err != nil {
			return err
		}
		if err := tx.UpdateNotificationSettings(notify); err != nil {
			return err
		}
		return tx.StoreMessages(messages)
	})
	if err != nil {
		return 0, fmt.Errorf("store dialogs: %w", err)
	}
	log.Info("Dialogs synced",
		zap.Int("dialogs", count),
		zap.Int("users", len(entities.Users)),
		zap.Int("chats", len(entities.Chats)),
	)
	return count, nil
}

// SyncHistory stores up to limit recent messages of a known peer and returns
// how many were stored.
func (c *Client) SyncHistory(ctx context.Context, peerID domain.PeerID, limit int) (int, error) {
	var peer domain.Peer
	err := c.store.View(ctx, func(tx *store.Tx) (err error) {
		peer, err = tx.Peer(peerID)
		return err
	})
	if err != nil {
		return 0, err
	}
	if peer == nil {
		return 0, fmt.Errorf("unknown peer: %s", peerID)
	}
	ref, ok := remote.InputPeerFor(peer)
	if !ok {
		return 0, fmt.Errorf("peer %s has no remote representation", peerID)
	}
	input, err := inputPeer(ref)
	if err != nil {
		return 0, err
	}

	result, err := c.api.MessagesGetHistory(ctx, &tg.MessagesGetHistoryRequest{
		Peer:  input,
		Limit: limit,
	})
	if err != nil {
		return 0, fmt.Errorf("get history: %w", classify(err))
	}
	messages, entities, downloads, err := convertHistoryResult(peerID, result, c.opts.MaxDocumentSize)
	if err != nil {
		return 0, err
	}

	err = c.store.Transaction(ctx, func(tx *store.Tx) error {
		if err := tx.UpsertEntities(c.self, entities); err != nil {
			return err
		}
		return tx.StoreMessages(messages)
	})
	if err != nil {
		return 0, fmt.Errorf("store history: %w", err)
	}
	log := c.logger.Named("sync")
	log.Info("History synced", zap.Stringer("peer", peerID), zap.Int("messages", len(messages)))

	if c.opts.Media != nil && len(downloads) > 0 {
		stored := downloadResources(ctx, log, c.opts.Media, downloads, c.fetchFile)
		log.Info("Media downloaded", zap.Stringer("peer", peerID), zap.Int("resources", stored), zap.Int("candidates", len(downloads)))
	}
	return len(messages), nil
}

// convertHistoryResult extracts messages, side lists and the media files
// worth downloading from a history reply.
func convertHistoryResult(peerID domain.PeerID, result tg.MessagesMessagesClass, maxDocumentSize int64) ([]domain.Message, remote.Entities, []resourceDownload, error) {
	var (
		messages []tg.MessageClass
		chats    []tg.ChatClass
		users    []tg.UserClass
	)
	switch r := result.(type) {
	case *tg.MessagesMessages:
		messages, chats, users = r.Messages, r.Chats, r.Users
	case *tg.MessagesMessagesSlice:
		messages, chats, users = r.Messages, r.Chats, r.Users
	case *tg.MessagesChannelMessages:
		messages, chats, users = r.Messages, r.Chats, r.Users
	case *tg.MessagesMessagesNotModified:
		return nil, remote.Entities{}, nil, nil
	default:
		return nil, remote.Entities{}, nil, fmt.Errorf("unexpected messages type: %T", result)
	}

	var (
		out       = make([]domain.Message, 0, len(messages))
		downloads []resourceDownload
	)
	for _, m := range messages {
		if msg, ok := decodeMessage(peerID, m); ok {
			out = append(out, msg)
			downloads = append(downloads, mediaDownloads(m, maxDocumentSize)...)
		}
	}
	return out, decodeEntities(chats, users), downloads, nil
}

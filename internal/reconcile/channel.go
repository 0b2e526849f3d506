package reconcile

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/danhigham/telecache/internal/domain"
	"github.com/danhigham/telecache/internal/remote"
	"github.com/danhigham/telecache/internal/store"
)

func (r *Reconciler) refreshChannel(ctx context.Context, log *zap.Logger, peerID domain.PeerID, peer domain.Peer) (bool, error) {
	input, ok := remote.InputChannelFor(peer)
	if !ok {
		log.Debug("Channel has no remote representation")
		return false, nil
	}

	// Both halves may come back absent; a failure of one never fails the other.
	var (
		result      *remote.ChatFull
		participant *remote.ChannelParticipant
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		res, err := r.gateway.GetFullChannel(gctx, input)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Info("Full channel unavailable", zap.Error(err))
			return nil
		}
		result = &res
		return nil
	})
	g.Go(func() error {
		res, err := r.gateway.GetParticipantSelf(gctx, input)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Debug("Own participant row unavailable", zap.Error(err))
			return nil
		}
		participant = &res
		return nil
	})
	if err := g.Wait(); err != nil {
		return false, err
	}

	if result == nil {
		err := r.store.Transaction(ctx, func(tx *store.Tx) error {
			return tx.UpdateCachedData([]domain.PeerID{peerID}, func(domain.PeerID, domain.CachedPeerData) domain.CachedPeerData {
				return domain.NotAccessibleChannelData()
			})
		})
		if err != nil {
			return false, err
		}
		log.Info("Channel marked not accessible")
		return true, nil
	}
	full, ok := result.Full.(*remote.ChannelFull)
	if !ok {
		log.Warn("Unexpected full chat variant for a channel", zap.String("variant", variantName(result.Full)))
		return true, nil
	}

	var resources []domain.ResourceID
	err := r.store.Transaction(ctx, func(tx *store.Tx) error {
		resources = nil

		if err := tx.UpdateNotificationSettings(map[domain.PeerID]domain.PeerNotificationSettings{
			peerID: full.NotifySettings,
		}); err != nil {
			return err
		}
		entities := result.Entities
		if participant != nil {
			entities.Users = append(append([]remote.User(nil), entities.Users...), participant.Users...)
			entities.Chats = append(append([]domain.Peer(nil), entities.Chats...), participant.Chats...)
		}
		if err := tx.UpsertEntities(r.account, entities); err != nil {
			return err
		}

		var (
			boundary *domain.MessageID
			moved    bool
		)
		err := tx.UpdateCachedData([]domain.PeerID{peerID}, func(_ domain.PeerID, current domain.CachedPeerData) domain.CachedPeerData {
			previous, _ := current.(domain.CachedChannelData)
			previous = previous.WithIsNotAccessible(false)

			next := mergeChannelFull(previous, peerID, full, participant)
			boundary = next.MinAvailableMessageID
			moved = !domain.SameMessageID(previous.MinAvailableMessageID, boundary)
			return next
		})
		if err != nil {
			return err
		}

		if boundary == nil || !moved {
			return nil
		}
		deleted, err := tx.DeleteMessagesInRange(peerID, boundary.Namespace, 1, boundary.ID, func(m domain.Media) {
			resources = append(resources, m.ResourceIDs()...)
		})
		if err != nil {
			return err
		}
		log.Debug("Deleted messages below the retention boundary",
			zap.Int32("boundary", boundary.ID),
			zap.Int("messages", deleted),
			zap.Int("resources", len(resources)),
		)
		return nil
	})
	if err != nil {
		return false, err
	}

	if len(resources) > 0 && r.media != nil {
		r.media.RemoveCachedResources(resources)
	}
	log.Debug("Channel refreshed")
	return true, nil
}

func mergeChannelFull(previous domain.CachedChannelData, peerID domain.PeerID, full *remote.ChannelFull, participant *remote.ChannelParticipant) domain.CachedChannelData {
	var flags domain.ChannelFlags
	if full.CanViewParticipants {
		flags |= domain.ChannelCanDisplayParticipants
	}
	if full.CanSetUsername {
		flags |= domain.ChannelCanChangeUsername
	}
	if !full.HiddenPrehistory {
		flags |= domain.ChannelPreHistoryEnabled
	}
	if full.CanViewStats {
		flags |= domain.ChannelCanViewStats
	}
	if full.CanSetStickers {
		flags |= domain.ChannelCanSetStickerSet
	}
	if full.CanSetLocation {
		flags |= domain.ChannelCanChangePeerGeoLocation
	}

	var pinned, minAvailable *domain.MessageID
	if full.PinnedMsgID != nil {
		id := domain.CloudMessageID(peerID, *full.PinnedMsgID)
		pinned = &id
	}
	if full.AvailableMinID != nil {
		id := domain.CloudMessageID(peerID, *full.AvailableMinID)
		minAvailable = &id
		// A pinned message below the retention floor is unreachable.
		if pinned != nil && pinned.ID < minAvailable.ID {
			pinned = nil
		}
	}

	var migration *domain.MigrationReference
	if full.MigratedFromChatID != nil && full.MigratedFromMaxID != nil {
		migration = &domain.MigrationReference{
			MaxMessageID: domain.CloudMessageID(domain.GroupID(*full.MigratedFromChatID), *full.MigratedFromMaxID),
		}
	}

	linked := domain.KnownPeer{Known: true}
	if full.LinkedChatID != nil && *full.LinkedChatID != 0 {
		id := domain.ChannelID(*full.LinkedChatID)
		linked.PeerID = &id
	}

	var stickers *domain.StickerPackInfo
	if s := full.StickerSet; s != nil {
		ns := domain.StickerPackNamespaceStickers
		if s.Masks {
			ns = domain.StickerPackNamespaceMasks
		}
		stickers = &domain.StickerPackInfo{
			Namespace:  ns,
			ID:         s.ID,
			AccessHash: s.AccessHash,
			Title:      s.Title,
			ShortName:  s.ShortName,
			Count:      s.Count,
			Hash:       s.Hash,
			Official:   s.Official,
		}
	}

	var statsDC int32
	if full.StatsDC != nil {
		statsDC = *full.StatsDC
	}

	var invitedBy *domain.PeerID
	if participant != nil {
		if self, ok := participant.Participant.(*remote.ParticipantSelf); ok {
			id := domain.UserID(self.InviterID)
			invitedBy = &id
		}
	}

	about := full.About
	suggestions := append([]string{}, full.PendingSuggestions...)

	return previous.
		WithFlags(flags).
		WithAbout(&about).
		WithParticipantsSummary(domain.ChannelParticipantsSummary{
			MemberCount: full.ParticipantsCount,
			AdminCount:  full.AdminsCount,
			BannedCount: full.BannedCount,
			KickedCount: full.KickedCount,
		}).
		WithExportedInvitation(full.ExportedInvite).
		WithBotInfos(full.BotInfos).
		WithPinnedMessageID(pinned).
		WithStickerPack(stickers).
		WithMinAvailableMessageID(minAvailable).
		WithMigrationReference(migration).
		WithLinkedDiscussionPeerID(linked).
		WithPeerGeoLocation(full.Location).
		WithSlowModeTimeout(full.SlowmodeSeconds).
		WithSlowModeValidUntil(full.SlowmodeNextSend).
		WithHasScheduledMessages(full.HasScheduled).
		WithStatsDatacenterID(statsDC).
		WithInvitedBy(invitedBy).
		WithPhoto(full.Photo).
		WithActiveCall(activeCall(full.Call, previous.ActiveCall)).
		WithCallJoinPeerID(full.DefaultJoinAs).
		WithAutoremoveTimeout(domain.KnownAutoremoveTimeout(full.TTLPeriod)).
		WithPendingSuggestions(suggestions).
		WithThemeEmoticon(full.ThemeEmoticon)
}

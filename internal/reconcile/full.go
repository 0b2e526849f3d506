package reconcile

import (
	"context"

	"go.uber.org/zap"

	"github.com/danhigham/telecache/internal/domain"
	"github.com/danhigham/telecache/internal/remote"
	"github.com/danhigham/telecache/internal/store"
)

// RefreshCachedData performs a complete metadata refresh of a peer. It
// returns false when the peer is unknown or cannot be fetched; errors are
// limited to ctx cancellation and store failures.
func (r *Reconciler) RefreshCachedData(ctx context.Context, peerID domain.PeerID) (bool, error) {
	log := r.opLogger("cached_data", peerID)

	if peerID == r.account {
		log.Debug("Skipping refresh of the account itself")
		return true, nil
	}

	var peer domain.Peer
	err := r.store.View(ctx, func(tx *store.Tx) error {
		raw, err := tx.Peer(peerID)
		if err != nil || raw == nil {
			return err
		}
		if regular, ok := domain.AssociatedPeerID(raw); ok {
			raw, err = tx.Peer(regular)
			if err != nil || raw == nil {
				return err
			}
		}
		peer = raw
		return nil
	})
	if err != nil {
		return false, err
	}
	if peer == nil {
		log.Debug("Peer not found")
		return false, nil
	}

	switch peerID.Namespace {
	case domain.NamespaceUser:
		return r.refreshUser(ctx, log, peerID, peer)
	case domain.NamespaceGroup:
		return r.refreshGroup(ctx, log, peerID)
	case domain.NamespaceChannel:
		return r.refreshChannel(ctx, log, peerID, peer)
	default:
		// Secret chats have no server-side full metadata.
		log.Debug("Nothing to fetch for namespace", zap.Stringer("namespace", peerID.Namespace))
		return false, nil
	}
}

func (r *Reconciler) refreshUser(ctx context.Context, log *zap.Logger, peerID domain.PeerID, peer domain.Peer) (bool, error) {
	input, ok := remote.InputUserFor(peer)
	if !ok {
		log.Debug("User has no remote representation")
		return false, nil
	}

	full, err := r.gateway.GetFullUser(ctx, input)
	if err != nil {
		return remoteFailed(ctx, log, "getFullUser", err)
	}

	err = r.store.Transaction(ctx, func(tx *store.Tx) error {
		if full.User.User != nil {
			if err := tx.UpsertEntities(r.account, remote.Entities{Users: []remote.User{full.User}}); err != nil {
				return err
			}
		}
		if err := tx.UpdateNotificationSettings(map[domain.PeerID]domain.PeerNotificationSettings{
			peerID: full.NotifySettings,
		}); err != nil {
			return err
		}

		return tx.UpdateCachedData([]domain.PeerID{peerID}, func(_ domain.PeerID, current domain.CachedPeerData) domain.CachedPeerData {
			previous, _ := current.(domain.CachedUserData)
			return mergeUserFull(previous, peerID, full)
		})
	})
	if err != nil {
		return false, err
	}
	log.Debug("User refreshed")
	return true, nil
}

// mergeUserFull overwrites every field a full user answer carries.
func mergeUserFull(previous domain.CachedUserData, peerID domain.PeerID, full remote.UserFull) domain.CachedUserData {
	var pinned *domain.MessageID
	if full.PinnedMsgID != nil {
		id := domain.CloudMessageID(peerID, *full.PinnedMsgID)
		pinned = &id
	}
	settings := full.Settings

	return previous.
		WithAbout(full.About).
		WithBotInfo(full.BotInfo).
		WithCommonGroupCount(full.CommonChatsCount).
		WithIsBlocked(full.Blocked).
		WithVoiceCallsAvailable(full.PhoneCallsAvailable).
		WithVideoCallsAvailable(full.VideoCallsAvailable).
		WithCallsPrivate(full.PhoneCallsPrivate).
		WithCanPinMessages(full.CanPinMessage).
		WithPeerStatusSettings(&settings).
		WithPinnedMessageID(pinned).
		WithHasScheduledMessages(full.HasScheduled).
		WithAutoremoveTimeout(domain.KnownAutoremoveTimeout(full.TTLPeriod)).
		WithThemeEmoticon(full.ThemeEmoticon)
}

func (r *Reconciler) refreshGroup(ctx context.Context, log *zap.Logger, peerID domain.PeerID) (bool, error) {
	result, err := r.gateway.GetFullChat(ctx, peerID.ID)
	if err != nil {
		return remoteFailed(ctx, log, "getFullChat", err)
	}
	full, ok := result.Full.(*remote.GroupFull)
	if !ok {
		log.Warn("Unexpected full chat variant for a group", zap.String("variant", variantName(result.Full)))
		return true, nil
	}

	err = r.store.Transaction(ctx, func(tx *store.Tx) error {
		if err := tx.UpdateNotificationSettings(map[domain.PeerID]domain.PeerNotificationSettings{
			peerID: full.NotifySettings,
		}); err != nil {
			return err
		}
		if err := tx.UpsertEntities(r.account, result.Entities); err != nil {
			return err
		}
		return tx.UpdateCachedData([]domain.PeerID{peerID}, func(_ domain.PeerID, current domain.CachedPeerData) domain.CachedPeerData {
			previous, _ := current.(domain.CachedGroupData)
			return mergeGroupFull(previous, r.account, peerID, full)
		})
	})
	if err != nil {
		return false, err
	}
	log.Debug("Group refreshed")
	return true, nil
}

func mergeGroupFull(previous domain.CachedGroupData, account, peerID domain.PeerID, full *remote.GroupFull) domain.CachedGroupData {
	var pinned *domain.MessageID
	if full.PinnedMsgID != nil {
		id := domain.CloudMessageID(peerID, *full.PinnedMsgID)
		pinned = &id
	}
	var flags domain.GroupFlags
	if full.CanSetUsername {
		flags |= domain.GroupCanChangeUsername
	}
	about := full.About

	return previous.
		WithParticipants(full.Participants).
		WithExportedInvitation(full.ExportedInvite).
		WithBotInfos(full.BotInfos).
		WithPinnedMessageID(pinned).
		WithAbout(&about).
		WithFlags(flags).
		WithHasScheduledMessages(full.HasScheduled).
		WithInvitedBy(full.Participants.InvitedBy(account)).
		WithPhoto(full.Photo).
		WithActiveCall(activeCall(full.Call, previous.ActiveCall)).
		WithCallJoinPeerID(full.DefaultJoinAs).
		WithThemeEmoticon(full.ThemeEmoticon)
}

func activeCall(call *remote.InputGroupCall, previous *domain.ActiveCall) *domain.ActiveCall {
	if call == nil {
		return nil
	}
	return domain.MergeActiveCall(call.ID, call.AccessHash, previous)
}

func variantName(v any) string {
	switch v.(type) {
	case *remote.GroupFull:
		return "group"
	case *remote.ChannelFull:
		return "channel"
	case nil:
		return "none"
	default:
		return "unknown"
	}
}

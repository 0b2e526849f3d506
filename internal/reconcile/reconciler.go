// Package reconcile keeps the locally cached metadata of peers in sync with
// the server. Each refresh reads the store, asks the gateway when needed and
// merges the answer back in a single transaction, reporting one boolean.
package reconcile

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/danhigham/telecache/internal/domain"
	"github.com/danhigham/telecache/internal/remote"
	"github.com/danhigham/telecache/internal/store"
)

// ResourceRemover reclaims cached media resources. Removal is fire-and-forget.
type ResourceRemover interface {
	RemoveCachedResources(ids []domain.ResourceID)
}

type Reconciler struct {
	account domain.PeerID
	gateway remote.Gateway
	store   *store.Store
	media   ResourceRemover
	logger  *zap.Logger
}

// New creates a Reconciler acting on behalf of account. The gateway is
// expected to retry transient failures itself (see remote.Retrying).
func New(account domain.PeerID, gateway remote.Gateway, st *store.Store, media ResourceRemover, logger *zap.Logger) *Reconciler {
	return &Reconciler{
		account: account,
		gateway: gateway,
		store:   st,
		media:   media,
		logger:  logger.Named("reconcile"),
	}
}

func (r *Reconciler) opLogger(op string, peerID domain.PeerID) *zap.Logger {
	return r.logger.With(
		zap.String("op", op),
		zap.String("op_id", uuid.NewString()),
		zap.Stringer("peer", peerID),
	)
}

// remoteFailed turns a gateway error into the refresh outcome: cancellation
// is returned to the caller, anything else is logged and reported as false.
func remoteFailed(ctx context.Context, log *zap.Logger, method string, err error) (bool, error) {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return false, ctxErr
	}
	log.Warn("Remote call failed", zap.String("method", method), zap.Error(err))
	return false, nil
}

// RefreshStatusSettings makes sure the peer's status settings are cached,
// without a full metadata fetch. It returns true when the settings are
// present afterwards and false when the peer cannot be resolved or addressed.
func (r *Reconciler) RefreshStatusSettings(ctx context.Context, peerID domain.PeerID) (bool, error) {
	log := r.opLogger("status_settings", peerID)

	var (
		settled bool
		secret  *domain.SecretChat
		input   remote.InputPeer
		canAsk  bool
	)
	err := r.store.View(ctx, func(tx *store.Tx) error {
		raw, err := tx.Peer(peerID)
		if err != nil || raw == nil {
			return err
		}
		peer := raw
		if sc, ok := raw.(*domain.SecretChat); ok {
			if peer, err = tx.Peer(sc.RegularPeerID); err != nil || peer == nil {
				return err
			}
			secret = sc
		}

		settled, err = hasStatusSettings(tx, peerID)
		if err != nil || settled {
			return err
		}
		if secret == nil {
			input, canAsk = remote.InputPeerFor(peer)
		}
		return nil
	})
	if err != nil {
		return false, err
	}

	switch {
	case settled:
		log.Debug("Status settings already cached")
		return true, nil
	case secret != nil:
		if err := r.storeSecretChatStatusSettings(ctx, peerID, secret); err != nil {
			return false, err
		}
		return true, nil
	case !canAsk:
		log.Debug("Peer has no remote representation")
		return false, nil
	}

	result, err := r.gateway.GetPeerSettings(ctx, input)
	if err != nil {
		return remoteFailed(ctx, log, "getPeerSettings", err)
	}

	written := false
	err = r.store.Transaction(ctx, func(tx *store.Tx) error {
		if ok, err := hasStatusSettings(tx, peerID); err != nil || ok {
			written = ok
			return err
		}
		settings := result.Settings
		return tx.UpdateCachedData([]domain.PeerID{peerID}, func(id domain.PeerID, current domain.CachedPeerData) domain.CachedPeerData {
			next := withStatusSettings(id.Namespace, current, &settings)
			written = next != nil
			return next
		})
	})
	if err != nil {
		return false, err
	}
	log.Debug("Status settings refreshed", zap.Bool("written", written), zap.Stringer("flags", result.Settings.Flags))
	return written, nil
}

func (r *Reconciler) storeSecretChatStatusSettings(ctx context.Context, peerID domain.PeerID, secret *domain.SecretChat) error {
	return r.store.Transaction(ctx, func(tx *store.Tx) error {
		if ok, err := hasStatusSettings(tx, peerID); err != nil || ok {
			return err
		}
		contact, err := tx.IsContact(secret.RegularPeerID)
		if err != nil {
			return err
		}
		settings := domain.SecretChatStatusSettings(contact, secret.Role)
		return tx.UpdateCachedData([]domain.PeerID{peerID}, func(_ domain.PeerID, current domain.CachedPeerData) domain.CachedPeerData {
			if data, ok := current.(domain.CachedSecretChatData); ok {
				return data.WithPeerStatusSettings(&settings)
			}
			return domain.CachedSecretChatData{PeerStatusSettings: &settings}
		})
	})
}

func hasStatusSettings(tx *store.Tx, peerID domain.PeerID) (bool, error) {
	cached, err := tx.CachedData(peerID)
	if err != nil || cached == nil {
		return false, err
	}
	return cached.StatusSettings() != nil, nil
}

// withStatusSettings patches the variant selected by ns, starting from an
// empty one when current holds another variant. It returns nil for
// namespaces without server-side status settings.
func withStatusSettings(ns domain.Namespace, current domain.CachedPeerData, s *domain.PeerStatusSettings) domain.CachedPeerData {
	switch ns {
	case domain.NamespaceUser:
		data, _ := current.(domain.CachedUserData)
		return data.WithPeerStatusSettings(s)
	case domain.NamespaceGroup:
		data, _ := current.(domain.CachedGroupData)
		return data.WithPeerStatusSettings(s)
	case domain.NamespaceChannel:
		data, _ := current.(domain.CachedChannelData)
		return data.WithPeerStatusSettings(s)
	default:
		return nil
	}
}

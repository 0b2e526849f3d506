package store_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/cockroachdb/pebble/vfs"
	"go.uber.org/zap/zaptest"

	"github.com/danhigham/telecache/internal/domain"
	"github.com/danhigham/telecache/internal/remote"
	"github.com/danhigham/telecache/internal/store"
)

// forEachBackend runs fn against a fresh store on every backend.
func forEachBackend(t *testing.T, fn func(t *testing.T, s *store.Store)) {
	t.Helper()

	t.Run("memory", func(t *testing.T) {
		s := store.New(store.NewMemory(), zaptest.NewLogger(t))
		defer s.Close()
		fn(t, s)
	})

	t.Run("pebble", func(t *testing.T) {
		backend, err := store.OpenPebble("db", store.PebbleOptions{FS: vfs.NewMem()})
		if err != nil {
			t.Fatalf("OpenPebble() error: %v", err)
		}
		s := store.New(backend, zaptest.NewLogger(t))
		defer s.Close()
		fn(t, s)
	})
}

func mustTx(t *testing.T, s *store.Store, fn func(tx *store.Tx) error) {
	t.Helper()
	if err := s.Transaction(context.Background(), fn); err != nil {
		t.Fatalf("Transaction() error: %v", err)
	}
}

func TestStore_PeersRoundTrip(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s *store.Store) {
		peers := []domain.Peer{
			&domain.User{ID: 1, AccessHash: 11, FirstName: "Alice", Contact: true},
			&domain.Group{ID: 2, Title: "Book club"},
			&domain.Channel{ID: 3, AccessHash: 33, Title: "News", Broadcast: true},
			&domain.SecretChat{ID: 4, RegularPeerID: domain.UserID(1), Role: domain.SecretChatRoleParticipant},
		}
		mustTx(t, s, func(tx *store.Tx) error { return tx.UpdatePeers(peers, nil) })

		mustTx(t, s, func(tx *store.Tx) error {
			for _, want := range peers {
				got, err := tx.Peer(want.PeerID())
				if err != nil {
					return err
				}
				if got == nil || got.PeerID() != want.PeerID() || !domain.SamePeerKind(got, want) {
					t.Errorf("Peer(%v) = %#v", want.PeerID(), got)
				}
			}

			user, _ := tx.Peer(domain.UserID(1))
			if u := user.(*domain.User); u.FirstName != "Alice" || u.AccessHash != 11 {
				t.Errorf("user = %+v", u)
			}
			if ok, _ := tx.IsContact(domain.UserID(1)); !ok {
				t.Error("IsContact(user:1) = false, want true")
			}

			missing, err := tx.Peer(domain.UserID(99))
			if err != nil || missing != nil {
				t.Errorf("Peer(missing) = %v, %v", missing, err)
			}
			return nil
		})
	})
}

func TestStore_UpdatePeersMerge(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s *store.Store) {
		mustTx(t, s, func(tx *store.Tx) error {
			return tx.UpdatePeers([]domain.Peer{&domain.User{ID: 1, FirstName: "Old"}}, nil)
		})

		var calls int
		merge := func(existing, updated domain.Peer) (domain.Peer, bool) {
			calls++
			if existing == nil {
				return updated, true
			}
			return nil, false
		}
		mustTx(t, s, func(tx *store.Tx) error {
			return tx.UpdatePeers([]domain.Peer{
				&domain.User{ID: 1, FirstName: "New"},
				&domain.User{ID: 2, FirstName: "Fresh"},
			}, merge)
		})
		if calls != 2 {
			t.Errorf("merge calls = %d, want 2", calls)
		}

		_ = s.View(context.Background(), func(tx *store.Tx) error {
			p, _ := tx.Peer(domain.UserID(1))
			if got := p.(*domain.User).FirstName; got != "Old" {
				t.Errorf("skipped peer FirstName = %q, want Old", got)
			}
			p, _ = tx.Peer(domain.UserID(2))
			if p == nil {
				t.Error("new peer not inserted")
			}
			return nil
		})
	})
}

func TestStore_CachedData(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s *store.Store) {
		about := "hello"
		ids := []domain.PeerID{domain.UserID(1)}

		mustTx(t, s, func(tx *store.Tx) error {
			return tx.UpdateCachedData(ids, func(id domain.PeerID, current domain.CachedPeerData) domain.CachedPeerData {
				if current != nil {
					t.Errorf("current = %#v, want nil", current)
				}
				return domain.CachedUserData{About: &about, CommonGroupCount: 4}
			})
		})

		mustTx(t, s, func(tx *store.Tx) error {
			return tx.UpdateCachedData(ids, func(id domain.PeerID, current domain.CachedPeerData) domain.CachedPeerData {
				data, ok := current.(domain.CachedUserData)
				if !ok {
					t.Fatalf("current = %T, want CachedUserData", current)
				}
				return data.WithIsBlocked(true)
			})
		})

		mustTx(t, s, func(tx *store.Tx) error {
			got, err := tx.CachedData(domain.UserID(1))
			if err != nil {
				return err
			}
			data := got.(domain.CachedUserData)
			if data.About == nil || *data.About != about || data.CommonGroupCount != 4 || !data.IsBlocked {
				t.Errorf("cached data = %+v", data)
			}
			return nil
		})
	})
}

func TestStore_CachedDataVariants(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s *store.Store) {
		want := map[domain.PeerID]domain.CachedPeerData{
			domain.GroupID(1):      domain.CachedGroupData{Flags: domain.GroupCanChangeUsername},
			domain.ChannelID(2):    domain.NotAccessibleChannelData(),
			domain.SecretChatID(3): domain.CachedSecretChatData{},
		}
		var ids []domain.PeerID
		for id := range want {
			ids = append(ids, id)
		}
		mustTx(t, s, func(tx *store.Tx) error {
			return tx.UpdateCachedData(ids, func(id domain.PeerID, _ domain.CachedPeerData) domain.CachedPeerData {
				return want[id]
			})
		})

		_ = s.View(context.Background(), func(tx *store.Tx) error {
			g, _ := tx.CachedData(domain.GroupID(1))
			if gd, ok := g.(domain.CachedGroupData); !ok || gd.Flags != domain.GroupCanChangeUsername {
				t.Errorf("group data = %#v", g)
			}
			c, _ := tx.CachedData(domain.ChannelID(2))
			if cd, ok := c.(domain.CachedChannelData); !ok || !cd.IsNotAccessible {
				t.Errorf("channel data = %#v", c)
			}
			sc, _ := tx.CachedData(domain.SecretChatID(3))
			if _, ok := sc.(domain.CachedSecretChatData); !ok {
				t.Errorf("secret chat data = %#v", sc)
			}
			return nil
		})
	})
}

func TestStore_RollbackOnError(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s *store.Store) {
		boom := errors.New("boom")
		err := s.Transaction(context.Background(), func(tx *store.Tx) error {
			if err := tx.UpdatePeers([]domain.Peer{&domain.User{ID: 1}}, nil); err != nil {
				return err
			}
			return boom
		})
		if !errors.Is(err, boom) {
			t.Fatalf("Transaction() error = %v, want boom", err)
		}

		_ = s.View(context.Background(), func(tx *store.Tx) error {
			if p, _ := tx.Peer(domain.UserID(1)); p != nil {
				t.Error("write survived a failed transaction")
			}
			return nil
		})
	})
}

func TestStore_CancelledContext(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s *store.Store) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		called := false
		err := s.Transaction(ctx, func(tx *store.Tx) error {
			called = true
			return nil
		})
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Transaction() error = %v, want context.Canceled", err)
		}
		if called {
			t.Error("transaction body ran on a cancelled context")
		}
	})
}

func TestStore_PresencesSkipAccount(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s *store.Store) {
		self := domain.UserID(1)
		mustTx(t, s, func(tx *store.Tx) error {
			return tx.UpdatePresences(self, map[domain.PeerID]domain.Presence{
				self:             {Status: domain.PresenceOnline, Timestamp: 10},
				domain.UserID(2): {Status: domain.PresenceOffline, Timestamp: 20},
			})
		})

		_ = s.View(context.Background(), func(tx *store.Tx) error {
			if p, _ := tx.Presence(self); p != nil {
				t.Errorf("own presence recorded: %+v", p)
			}
			p, _ := tx.Presence(domain.UserID(2))
			if p == nil || p.Status != domain.PresenceOffline || p.Timestamp != 20 {
				t.Errorf("Presence(user:2) = %+v", p)
			}
			return nil
		})
	})
}

func TestStore_UpsertEntities(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s *store.Store) {
		self := domain.UserID(1)
		mustTx(t, s, func(tx *store.Tx) error {
			return tx.UpdatePeers([]domain.Peer{&domain.User{ID: 2, AccessHash: 22, FirstName: "Old", Phone: "555"}}, nil)
		})

		mustTx(t, s, func(tx *store.Tx) error {
			return tx.UpsertEntities(self, remote.Entities{
				Chats: []domain.Peer{&domain.Channel{ID: 7, AccessHash: 77, Title: "News"}},
				Users: []remote.User{
					{User: &domain.User{ID: 2, FirstName: "New", Min: true}, Presence: &domain.Presence{Status: domain.PresenceOnline, Timestamp: 5}},
					{User: &domain.User{ID: 1, FirstName: "Me"}, Presence: &domain.Presence{Status: domain.PresenceOnline, Timestamp: 6}},
					{Presence: &domain.Presence{Status: domain.PresenceOffline}},
				},
			})
		})

		_ = s.View(context.Background(), func(tx *store.Tx) error {
			p, _ := tx.Peer(domain.UserID(2))
			u, ok := p.(*domain.User)
			if !ok || u.FirstName != "New" || u.AccessHash != 22 || u.Phone != "555" {
				t.Errorf("min user merge = %+v", p)
			}
			if p, _ := tx.Peer(domain.ChannelID(7)); p == nil {
				t.Error("channel not stored")
			}
			if p, _ := tx.Peer(self); p == nil {
				t.Error("account user not stored")
			}
			if pr, _ := tx.Presence(domain.UserID(2)); pr == nil || pr.Timestamp != 5 {
				t.Errorf("Presence(user:2) = %+v", pr)
			}
			if pr, _ := tx.Presence(self); pr != nil {
				t.Errorf("own presence recorded: %+v", pr)
			}
			return nil
		})
	})
}

func TestStore_NotificationSettings(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s *store.Store) {
		silent := true
		mustTx(t, s, func(tx *store.Tx) error {
			return tx.UpdateNotificationSettings(map[domain.PeerID]domain.PeerNotificationSettings{
				domain.GroupID(5): {Mute: domain.MuteMutedUntil, MuteUntil: 100, Silent: &silent},
			})
		})
		_ = s.View(context.Background(), func(tx *store.Tx) error {
			got, _ := tx.NotificationSettings(domain.GroupID(5))
			if got == nil || got.Mute != domain.MuteMutedUntil || got.Silent == nil || !*got.Silent {
				t.Errorf("NotificationSettings = %+v", got)
			}
			return nil
		})
	})
}

func TestStore_DeleteMessagesInRange(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s *store.Store) {
		peer := domain.ChannelID(7)
		other := domain.ChannelID(8)

		var msgs []domain.Message
		for id := int32(1); id <= 60; id++ {
			msgs = append(msgs, domain.Message{
				ID:    domain.CloudMessageID(peer, id),
				Media: []domain.Media{{Kind: domain.MediaPhoto, Resources: []domain.ResourceID{domain.ResourceID("photo-" + string(rune('A'+id%26)))}}},
			})
		}
		msgs = append(msgs, domain.Message{ID: domain.CloudMessageID(other, 3)})
		mustTx(t, s, func(tx *store.Tx) error { return tx.StoreMessages(msgs) })

		var media int
		mustTx(t, s, func(tx *store.Tx) error {
			n, err := tx.DeleteMessagesInRange(peer, domain.MessageNamespaceCloud, 1, 50, func(domain.Media) { media++ })
			if err != nil {
				return err
			}
			if n != 49 {
				t.Errorf("deleted = %d, want 49", n)
			}
			return nil
		})
		if media != 49 {
			t.Errorf("media callbacks = %d, want 49", media)
		}

		_ = s.View(context.Background(), func(tx *store.Tx) error {
			left, err := tx.Messages(peer, domain.MessageNamespaceCloud)
			if err != nil {
				return err
			}
			if len(left) != 11 || left[0].ID.ID != 50 || left[len(left)-1].ID.ID != 60 {
				t.Errorf("remaining = %d messages starting at %d", len(left), left[0].ID.ID)
			}
			if m, _ := tx.Message(domain.CloudMessageID(other, 3)); m == nil {
				t.Error("message of another peer deleted")
			}
			return nil
		})

		mustTx(t, s, func(tx *store.Tx) error {
			n, err := tx.DeleteMessagesInRange(peer, domain.MessageNamespaceCloud, 1, 50, nil)
			if n != 0 {
				t.Errorf("second delete removed %d messages, want 0", n)
			}
			return err
		})
	})
}

func TestStore_ClosedBackend(t *testing.T) {
	s := store.New(store.NewMemory(), zaptest.NewLogger(t))
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
	err := s.Transaction(context.Background(), func(tx *store.Tx) error { return nil })
	if !errors.Is(err, store.ErrClosed) {
		t.Errorf("Transaction() after Close error = %v, want ErrClosed", err)
	}
}

func TestStore_PebbleCloseDuringView(t *testing.T) {
	backend, err := store.OpenPebble("db", store.PebbleOptions{FS: vfs.NewMem()})
	if err != nil {
		t.Fatalf("OpenPebble() error: %v", err)
	}
	s := store.New(backend, zaptest.NewLogger(t))
	mustTx(t, s, func(tx *store.Tx) error {
		return tx.UpdatePeers([]domain.Peer{&domain.User{ID: 2, FirstName: "Ann"}}, nil)
	})

	inView := make(chan struct{})
	release := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		err := s.View(context.Background(), func(tx *store.Tx) error {
			close(inView)
			<-release
			_, err := tx.Peer(domain.UserID(2))
			return err
		})
		if err != nil {
			t.Errorf("View() error: %v", err)
		}
	}()

	<-inView
	closed := make(chan error, 1)
	go func() { closed <- backend.Close() }()
	close(release)
	wg.Wait()
	if err := <-closed; err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	err = s.View(context.Background(), func(tx *store.Tx) error { return nil })
	if !errors.Is(err, store.ErrClosed) {
		t.Errorf("View() after Close error = %v, want ErrClosed", err)
	}
}

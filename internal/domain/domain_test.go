package domain_test

import (
	"errors"
	"testing"

	"github.com/danhigham/telecache/internal/domain"
)

func TestParsePeerID(t *testing.T) {
	tests := []struct {
		in   string
		want domain.PeerID
	}{
		{"user:42", domain.UserID(42)},
		{"chat:7", domain.GroupID(7)},
		{"channel:1001", domain.ChannelID(1001)},
		{" secret:3 ", domain.SecretChatID(3)},
		{"USER:5", domain.UserID(5)},
	}

	for _, tt := range tests {
		got, err := domain.ParsePeerID(tt.in)
		if err != nil {
			t.Errorf("ParsePeerID(%q) error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParsePeerID(%q) = %v, want %v", tt.in, got, tt.want)
		}
		if back, _ := domain.ParsePeerID(got.String()); back != got {
			t.Errorf("String() round trip of %v = %v", got, back)
		}
	}
}

func TestParsePeerID_Invalid(t *testing.T) {
	for _, in := range []string{"", "42", "user:", "user:abc", "user:-1", "robot:4"} {
		_, err := domain.ParsePeerID(in)
		if !errors.Is(err, domain.ErrInvalidPeerID) {
			t.Errorf("ParsePeerID(%q) error = %v, want ErrInvalidPeerID", in, err)
		}
	}
}

func TestSecretChatStatusSettings(t *testing.T) {
	tests := []struct {
		name      string
		isContact bool
		role      domain.SecretChatRole
		want      domain.StatusFlags
	}{
		{"contact participant", true, domain.SecretChatRoleParticipant, 0},
		{"stranger participant", false, domain.SecretChatRoleParticipant, domain.StatusCanReport},
		{"stranger creator", false, domain.SecretChatRoleCreator, 0},
		{"contact creator", true, domain.SecretChatRoleCreator, 0},
	}

	for _, tt := range tests {
		got := domain.SecretChatStatusSettings(tt.isContact, tt.role)
		if got.Flags != tt.want {
			t.Errorf("%s: flags = %v, want %v", tt.name, got.Flags, tt.want)
		}
	}
}

func TestGroupParticipants_InvitedBy(t *testing.T) {
	self := domain.UserID(1)
	inviter := domain.UserID(2)

	p := &domain.GroupParticipants{Participants: []domain.GroupParticipant{
		{PeerID: domain.UserID(3), InvitedBy: domain.UserID(9)},
		{PeerID: self, InvitedBy: inviter},
	}}
	got := p.InvitedBy(self)
	if got == nil || *got != inviter {
		t.Errorf("InvitedBy = %v, want %v", got, inviter)
	}

	creator := &domain.GroupParticipants{Participants: []domain.GroupParticipant{
		{PeerID: self, InvitedBy: self, Role: domain.GroupCreator},
	}}
	if got := creator.InvitedBy(self); got != nil {
		t.Errorf("InvitedBy for creator = %v, want nil", *got)
	}

	var missing *domain.GroupParticipants
	if got := missing.InvitedBy(self); got != nil {
		t.Errorf("InvitedBy on nil participants = %v, want nil", *got)
	}
}

func TestMergeActiveCall_KeepsDescriptiveFields(t *testing.T) {
	title := "Standup"
	ts := int32(1700000000)
	prev := &domain.ActiveCall{ID: 1, AccessHash: 2, Title: &title, ScheduleTimestamp: &ts, SubscribedToScheduled: true}

	got := domain.MergeActiveCall(5, 6, prev)
	if got.ID != 5 || got.AccessHash != 6 {
		t.Errorf("call = %d/%d, want 5/6", got.ID, got.AccessHash)
	}
	if got.Title == nil || *got.Title != title {
		t.Errorf("Title = %v, want %q", got.Title, title)
	}
	if !got.SubscribedToScheduled {
		t.Error("SubscribedToScheduled lost")
	}

	fresh := domain.MergeActiveCall(5, 6, nil)
	if fresh.Title != nil || fresh.SubscribedToScheduled {
		t.Errorf("fresh call carries stale fields: %+v", fresh)
	}
}

func TestMergeUser(t *testing.T) {
	local := &domain.User{ID: 1, AccessHash: 77, FirstName: "Old", Phone: "123", Contact: true}

	full := domain.MergeUser(local, &domain.User{ID: 1, AccessHash: 88, FirstName: "New"})
	if full.AccessHash != 88 || full.FirstName != "New" || full.Phone != "" {
		t.Errorf("full merge = %+v, want incoming record", full)
	}

	partial := domain.MergeUser(local, &domain.User{ID: 1, FirstName: "Min", Username: "minny", Min: true})
	if partial.AccessHash != 77 || partial.Phone != "123" || !partial.Contact {
		t.Errorf("min merge dropped local fields: %+v", partial)
	}
	if partial.FirstName != "Min" || partial.Username != "minny" {
		t.Errorf("min merge ignored incoming fields: %+v", partial)
	}
	if partial.Min {
		t.Error("min merge over a full local record must stay full")
	}

	if got := domain.MergeUser(nil, &domain.User{ID: 2, Min: true}); got == nil || got.ID != 2 {
		t.Errorf("merge without local = %+v", got)
	}
}

func TestCachedUserData_WithDoesNotMutate(t *testing.T) {
	about := "X"
	orig := domain.CachedUserData{About: &about, CommonGroupCount: 3}
	updated := orig.WithCommonGroupCount(5)

	if orig.CommonGroupCount != 3 {
		t.Errorf("original mutated: CommonGroupCount = %d", orig.CommonGroupCount)
	}
	if updated.About == nil || *updated.About != "X" {
		t.Errorf("About = %v, want X", updated.About)
	}
}

func TestAutoremoveTimeout(t *testing.T) {
	zero := int32(0)
	if got := domain.KnownAutoremoveTimeout(&zero); !got.Known || got.Period != nil {
		t.Errorf("KnownAutoremoveTimeout(0) = %+v", got)
	}
	day := int32(86400)
	if got := domain.KnownAutoremoveTimeout(&day); got.Period == nil || *got.Period != day {
		t.Errorf("KnownAutoremoveTimeout(day) = %+v", got)
	}
}

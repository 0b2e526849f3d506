// Package render turns a stored peer and its cached metadata into markdown
// and, for terminals, into styled output.
package render

import (
	"context"
	"fmt"
	"strings"
	"time"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/glamour"

	"github.com/danhigham/telecache/internal/domain"
	"github.com/danhigham/telecache/internal/store"
)

var headerStyle = lipgloss.NewStyle().
	Background(lipgloss.Color("#6124DF")).
	Foreground(lipgloss.Color("#FFFFFF")).
	Bold(true).
	Padding(0, 1)

var dimStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

// View is everything the store knows about one peer.
type View struct {
	Peer     domain.Peer
	Cached   domain.CachedPeerData
	Presence *domain.Presence
	Notify   *domain.PeerNotificationSettings
	Contact  bool
	Messages []domain.Message
}

// Load reads a View from the store. The last limit cloud messages are
// included; a missing peer is an error.
func Load(ctx context.Context, st *store.Store, peerID domain.PeerID, limit int) (View, error) {
	var v View
	err := st.View(ctx, func(tx *store.Tx) error {
		peer, err := tx.Peer(peerID)
		if err != nil {
			return err
		}
		if peer == nil {
			return fmt.Errorf("unknown peer: %s", peerID)
		}
		v.Peer = peer
		if v.Cached, err = tx.CachedData(peerID); err != nil {
			return err
		}
		if v.Presence, err = tx.Presence(peerID); err != nil {
			return err
		}
		if v.Notify, err = tx.NotificationSettings(peerID); err != nil {
			return err
		}
		if v.Contact, err = tx.IsContact(peerID); err != nil {
			return err
		}
		msgs, err := tx.Messages(peerID, domain.MessageNamespaceCloud)
		if err != nil {
			return err
		}
		if limit > 0 && len(msgs) > limit {
			msgs = msgs[len(msgs)-limit:]
		}
		v.Messages = msgs
		return nil
	})
	return v, err
}

// Title returns the display title of a peer.
func Title(p domain.Peer) string {
	switch p := p.(type) {
	case *domain.User:
		return p.DisplayName()
	case *domain.Group:
		return p.Title
	case *domain.Channel:
		return p.Title
	case *domain.SecretChat:
		return "Secret chat with " + p.RegularPeerID.String()
	default:
		return "Unknown"
	}
}

// Header renders a one-line styled title bar for a peer.
func Header(v View) string {
	return headerStyle.Render(Title(v.Peer)) + " " + dimStyle.Render(v.Peer.PeerID().String())
}

// Terminal renders markdown through glamour with the given style ("dark",
// "light", "notty", ...).
func Terminal(md, style string, width int) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithStylePath(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("create renderer: %w", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return out, nil
}

// Markdown renders a View as a markdown document.
func Markdown(v View) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", Title(v.Peer))
	fmt.Fprintf(&b, "- **id:** `%s`\n", v.Peer.PeerID())

	switch p := v.Peer.(type) {
	case *domain.User:
		if p.Username != "" {
			fmt.Fprintf(&b, "- **username:** @%s\n", p.Username)
		}
		if p.Bot {
			b.WriteString("- **bot**\n")
		}
	case *domain.Channel:
		if p.Username != "" {
			fmt.Fprintf(&b, "- **username:** @%s\n", p.Username)
		}
		if p.Broadcast {
			b.WriteString("- **kind:** broadcast\n")
		} else if p.Megagroup {
			b.WriteString("- **kind:** supergroup\n")
		}
	}
	if v.Contact {
		b.WriteString("- **contact**\n")
	}
	if v.Presence != nil {
		fmt.Fprintf(&b, "- **presence:** %s\n", presence(*v.Presence))
	}
	if v.Notify != nil {
		fmt.Fprintf(&b, "- **notifications:** %s\n", notify(*v.Notify))
	}
	b.WriteString("\n")

	writeCached(&b, v.Cached)

	if len(v.Messages) > 0 {
		b.WriteString("## Recent messages\n\n")
		for _, m := range v.Messages {
			ts := time.Unix(int64(m.Timestamp), 0).UTC().Format("2006-01-02 15:04")
			sender := m.SenderID.String()
			if m.Out {
				sender = "me"
			}
			fmt.Fprintf(&b, "- `#%d` %s **%s**: %s", m.ID.ID, ts, sender, oneLine(m.Text))
			if n := len(m.Media); n > 0 {
				fmt.Fprintf(&b, " _(%d media)_", n)
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}

func writeCached(b *strings.Builder, data domain.CachedPeerData) {
	b.WriteString("## Cached data\n\n")
	switch d := data.(type) {
	case nil:
		b.WriteString("_not fetched yet_\n\n")
		return
	case domain.CachedUserData:
		about(b, d.About)
		fmt.Fprintf(b, "- **common groups:** %d\n", d.CommonGroupCount)
		flag(b, "blocked", d.IsBlocked)
		flag(b, "voice calls", d.VoiceCallsAvailable)
		flag(b, "video calls", d.VideoCallsAvailable)
		flag(b, "calls private", d.CallsPrivate)
		flag(b, "can pin messages", d.CanPinMessages)
		flag(b, "scheduled messages", d.HasScheduledMessages)
		pinned(b, d.PinnedMessageID)
		autoremove(b, d.AutoremoveTimeout)
		if d.BotInfo != nil {
			fmt.Fprintf(b, "- **bot commands:** %d\n", len(d.BotInfo.Commands))
		}
		theme(b, d.ThemeEmoticon)
	case domain.CachedGroupData:
		about(b, d.About)
		if d.Participants != nil {
			fmt.Fprintf(b, "- **participants:** %d\n", len(d.Participants.Participants))
		}
		flag(b, "can change username", d.Flags&domain.GroupCanChangeUsername != 0)
		flag(b, "scheduled messages", d.HasScheduledMessages)
		invitedBy(b, d.InvitedBy)
		invitation(b, d.ExportedInvitation)
		pinned(b, d.PinnedMessageID)
		call(b, d.ActiveCall)
		autoremove(b, d.AutoremoveTimeout)
		theme(b, d.ThemeEmoticon)
	case domain.CachedChannelData:
		if d.IsNotAccessible {
			b.WriteString("_channel is not accessible_\n\n")
			return
		}
		about(b, d.About)
		count(b, "members", d.ParticipantsSummary.MemberCount)
		count(b, "admins", d.ParticipantsSummary.AdminCount)
		count(b, "banned", d.ParticipantsSummary.BannedCount)
		count(b, "kicked", d.ParticipantsSummary.KickedCount)
		flag(b, "participants visible", d.Flags.Has(domain.ChannelCanDisplayParticipants))
		flag(b, "history visible to new members", d.Flags.Has(domain.ChannelPreHistoryEnabled))
		flag(b, "can view stats", d.Flags.Has(domain.ChannelCanViewStats))
		flag(b, "scheduled messages", d.HasScheduledMessages)
		invitedBy(b, d.InvitedBy)
		invitation(b, d.ExportedInvitation)
		pinned(b, d.PinnedMessageID)
		if d.MinAvailableMessageID != nil {
			fmt.Fprintf(b, "- **history starts at:** #%d\n", d.MinAvailableMessageID.ID)
		}
		if d.LinkedDiscussionPeerID.PeerID != nil {
			fmt.Fprintf(b, "- **linked discussion:** `%s`\n", *d.LinkedDiscussionPeerID.PeerID)
		}
		if d.StickerPack != nil {
			fmt.Fprintf(b, "- **sticker pack:** %s\n", d.StickerPack.Title)
		}
		if d.SlowModeTimeout != nil {
			fmt.Fprintf(b, "- **slow mode:** %ds\n", *d.SlowModeTimeout)
		}
		if d.PeerGeoLocation != nil {
			fmt.Fprintf(b, "- **location:** %s\n", d.PeerGeoLocation.Address)
		}
		call(b, d.ActiveCall)
		autoremove(b, d.AutoremoveTimeout)
		theme(b, d.ThemeEmoticon)
	case domain.CachedSecretChatData:
	}

	if s := data.StatusSettings(); s != nil {
		fmt.Fprintf(b, "- **status settings:** %s\n", s.Flags)
	}
	b.WriteString("\n")
}

func about(b *strings.Builder, s *string) {
	if s != nil && *s != "" {
		fmt.Fprintf(b, "> %s\n\n", oneLine(*s))
	}
}

func flag(b *strings.Builder, name string, on bool) {
	if on {
		fmt.Fprintf(b, "- %s\n", name)
	}
}

func count(b *strings.Builder, name string, n *int32) {
	if n != nil {
		fmt.Fprintf(b, "- **%s:** %d\n", name, *n)
	}
}

func pinned(b *strings.Builder, id *domain.MessageID) {
	if id != nil {
		fmt.Fprintf(b, "- **pinned:** #%d\n", id.ID)
	}
}

func invitedBy(b *strings.Builder, id *domain.PeerID) {
	if id != nil {
		fmt.Fprintf(b, "- **invited by:** `%s`\n", *id)
	}
}

func invitation(b *strings.Builder, inv *domain.ExportedInvitation) {
	if inv != nil && !inv.Revoked {
		fmt.Fprintf(b, "- **invite link:** %s\n", inv.Link)
	}
}

func call(b *strings.Builder, c *domain.ActiveCall) {
	if c == nil {
		return
	}
	if c.Title != nil {
		fmt.Fprintf(b, "- **active call:** %s\n", *c.Title)
		return
	}
	b.WriteString("- **active call**\n")
}

func autoremove(b *strings.Builder, t domain.AutoremoveTimeout) {
	if t.Known && t.Period != nil {
		fmt.Fprintf(b, "- **auto-delete after:** %s\n", time.Duration(*t.Period)*time.Second)
	}
}

func theme(b *strings.Builder, e *string) {
	if e != nil && *e != "" {
		fmt.Fprintf(b, "- **theme:** %s\n", *e)
	}
}

func presence(p domain.Presence) string {
	switch p.Status {
	case domain.PresenceOnline:
		return "online"
	case domain.PresenceOffline:
		return "last seen " + time.Unix(int64(p.Timestamp), 0).UTC().Format("2006-01-02 15:04")
	case domain.PresenceRecently:
		return "recently"
	case domain.PresenceLastWeek:
		return "within a week"
	case domain.PresenceLastMonth:
		return "within a month"
	default:
		return "long ago"
	}
}

func notify(s domain.PeerNotificationSettings) string {
	switch s.Mute {
	case domain.MuteUnmuted:
		return "on"
	case domain.MuteMutedUntil:
		return "muted until " + time.Unix(int64(s.MuteUntil), 0).UTC().Format("2006-01-02 15:04")
	default:
		return "default"
	}
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

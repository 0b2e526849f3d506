package domain

// Peer is the durable identity record of a chat counterpart.
// Implemented by *User, *Group, *Channel and *SecretChat only.
type Peer interface {
	PeerID() PeerID
	isPeer()
}

type User struct {
	ID         int64  `json:"id"`
	AccessHash int64  `json:"access_hash,omitempty"`
	FirstName  string `json:"first_name,omitempty"`
	LastName   string `json:"last_name,omitempty"`
	Username   string `json:"username,omitempty"`
	Phone      string `json:"phone,omitempty"`
	PhotoID    int64  `json:"photo_id,omitempty"`
	Bot        bool   `json:"bot,omitempty"`
	Contact    bool   `json:"contact,omitempty"`
	Deleted    bool   `json:"deleted,omitempty"`
	// Min users carry only the fields visible in the context they were seen in.
	Min bool `json:"min,omitempty"`
}

func (u *User) PeerID() PeerID { return UserID(u.ID) }
func (*User) isPeer()          {}

// DisplayName returns a human readable name for the user.
func (u *User) DisplayName() string {
	if u.FirstName != "" && u.LastName != "" {
		return u.FirstName + " " + u.LastName
	}
	if u.FirstName != "" {
		return u.FirstName
	}
	if u.Username != "" {
		return u.Username
	}
	return "Unknown"
}

// Group is a basic (pre-migration) chat.
type Group struct {
	ID               int64  `json:"id"`
	Title            string `json:"title"`
	ParticipantCount int    `json:"participant_count,omitempty"`
	Version          int    `json:"version,omitempty"`
	Deactivated      bool   `json:"deactivated,omitempty"`
	Forbidden        bool   `json:"forbidden,omitempty"`
	MigratedTo       PeerID `json:"migrated_to,omitempty"`
}

func (g *Group) PeerID() PeerID { return GroupID(g.ID) }
func (*Group) isPeer()          {}

// Channel is a broadcast channel or a supergroup.
type Channel struct {
	ID         int64  `json:"id"`
	AccessHash int64  `json:"access_hash,omitempty"`
	Title      string `json:"title"`
	Username   string `json:"username,omitempty"`
	Broadcast  bool   `json:"broadcast,omitempty"`
	Megagroup  bool   `json:"megagroup,omitempty"`
	Forbidden  bool   `json:"forbidden,omitempty"`
	Min        bool   `json:"min,omitempty"`
}

func (c *Channel) PeerID() PeerID { return ChannelID(c.ID) }
func (*Channel) isPeer()          {}

type SecretChatRole int

const (
	SecretChatRoleCreator SecretChatRole = iota
	SecretChatRoleParticipant
)

// SecretChat is an end-to-end chat layered over a regular user identity.
type SecretChat struct {
	ID            int64          `json:"id"`
	RegularPeerID PeerID         `json:"regular_peer_id"`
	Role          SecretChatRole `json:"role"`
}

func (s *SecretChat) PeerID() PeerID { return SecretChatID(s.ID) }
func (*SecretChat) isPeer()          {}

// AssociatedPeerID returns the peer a secret chat is layered over, if any.
func AssociatedPeerID(p Peer) (PeerID, bool) {
	if s, ok := p.(*SecretChat); ok {
		return s.RegularPeerID, true
	}
	return PeerID{}, false
}

// SamePeerKind reports whether two peers are the same concrete variant.
func SamePeerKind(a, b Peer) bool {
	switch a.(type) {
	case *User:
		_, ok := b.(*User)
		return ok
	case *Group:
		_, ok := b.(*Group)
		return ok
	case *Channel:
		_, ok := b.(*Channel)
		return ok
	case *SecretChat:
		_, ok := b.(*SecretChat)
		return ok
	}
	return false
}

type PresenceStatus int

const (
	PresenceNone PresenceStatus = iota
	PresenceOnline
	PresenceOffline
	PresenceRecently
	PresenceLastWeek
	PresenceLastMonth
)

// Presence is the last observed online state of a user.
type Presence struct {
	Status PresenceStatus `json:"status"`
	// Timestamp is the expiry for online users and the last-seen time for offline ones.
	Timestamp int32 `json:"ts,omitempty"`
}

type MuteState int

const (
	MuteDefault MuteState = iota
	MuteUnmuted
	MuteMutedUntil
)

// PeerNotificationSettings is replaced as a whole on every full fetch.
type PeerNotificationSettings struct {
	Mute         MuteState `json:"mute"`
	MuteUntil    int32     `json:"mute_until,omitempty"`
	Silent       *bool     `json:"silent,omitempty"`
	ShowPreviews *bool     `json:"show_previews,omitempty"`
}

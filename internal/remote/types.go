package remote

import "github.com/danhigham/telecache/internal/domain"

// InputPeer is what the server needs to address a peer: its id and, for
// users and channels, the access hash the account was given.
type InputPeer struct {
	ID         domain.PeerID
	AccessHash int64
}

type InputUser struct {
	ID         int64
	AccessHash int64
	Self       bool
}

type InputChannel struct {
	ID         int64
	AccessHash int64
}

// InputPeerFor derives the remote representation of a local peer. Secret chats
// and min records have none.
func InputPeerFor(p domain.Peer) (InputPeer, bool) {
	switch p := p.(type) {
	case *domain.User:
		if p.Min {
			return InputPeer{}, false
		}
		return InputPeer{ID: p.PeerID(), AccessHash: p.AccessHash}, true
	case *domain.Group:
		return InputPeer{ID: p.PeerID()}, true
	case *domain.Channel:
		if p.Min {
			return InputPeer{}, false
		}
		return InputPeer{ID: p.PeerID(), AccessHash: p.AccessHash}, true
	default:
		return InputPeer{}, false
	}
}

func InputUserFor(p domain.Peer) (InputUser, bool) {
	u, ok := p.(*domain.User)
	if !ok || u.Min {
		return InputUser{}, false
	}
	return InputUser{ID: u.ID, AccessHash: u.AccessHash}, true
}

func InputChannelFor(p domain.Peer) (InputChannel, bool) {
	c, ok := p.(*domain.Channel)
	if !ok || c.Min {
		return InputChannel{}, false
	}
	return InputChannel{ID: c.ID, AccessHash: c.AccessHash}, true
}

// User is a user record seen in a response together with its presence.
type User struct {
	User     *domain.User
	Presence *domain.Presence
}

// Entities are the side lists a response carries.
type Entities struct {
	Chats []domain.Peer
	Users []User
}

type PeerSettings struct {
	Settings domain.PeerStatusSettings
}

type UserFull struct {
	User           User
	NotifySettings domain.PeerNotificationSettings
	About          *string
	BotInfo        *domain.BotInfo

	Blocked             bool
	PhoneCallsAvailable bool
	VideoCallsAvailable bool
	PhoneCallsPrivate   bool
	CanPinMessage       bool
	HasScheduled        bool

	Settings         domain.PeerStatusSettings
	PinnedMsgID      *int32
	CommonChatsCount int32
	TTLPeriod        *int32
	ThemeEmoticon    *string
}

// FullChat is the closed union get-full-chat and get-full-channel answer with:
// *GroupFull or *ChannelFull.
type FullChat interface {
	isFullChat()
}

type ChatFull struct {
	Full FullChat
	Entities
}

type InputGroupCall struct {
	ID         int64
	AccessHash int64
}

type GroupFull struct {
	ID             int64
	NotifySettings domain.PeerNotificationSettings
	About          string
	// Participants is nil when the account cannot see the member list.
	Participants   *domain.GroupParticipants
	Photo          *domain.Image
	ExportedInvite *domain.ExportedInvitation
	BotInfos       []domain.PeerBotInfo
	PinnedMsgID    *int32
	Call           *InputGroupCall
	DefaultJoinAs  *domain.PeerID
	ThemeEmoticon  *string

	CanSetUsername bool
	HasScheduled   bool
}

func (*GroupFull) isFullChat() {}

type StickerSet struct {
	ID         int64
	AccessHash int64
	Title      string
	ShortName  string
	Count      int32
	Hash       int32
	Official   bool
	Masks      bool
}

type ChannelFull struct {
	ID             int64
	NotifySettings domain.PeerNotificationSettings
	About          string

	CanViewParticipants bool
	CanSetUsername      bool
	CanSetStickers      bool
	HiddenPrehistory    bool
	CanSetLocation      bool
	HasScheduled        bool
	CanViewStats        bool

	ParticipantsCount *int32
	AdminsCount       *int32
	KickedCount       *int32
	BannedCount       *int32

	Photo              *domain.Image
	ExportedInvite     *domain.ExportedInvitation
	BotInfos           []domain.PeerBotInfo
	MigratedFromChatID *int64
	MigratedFromMaxID  *int32
	PinnedMsgID        *int32
	StickerSet         *StickerSet
	AvailableMinID     *int32
	LinkedChatID       *int64
	Location           *domain.GeoLocation
	SlowmodeSeconds    *int32
	SlowmodeNextSend   *int32
	StatsDC            *int32
	Call               *InputGroupCall
	TTLPeriod          *int32
	PendingSuggestions []string
	DefaultJoinAs      *domain.PeerID
	ThemeEmoticon      *string
}

func (*ChannelFull) isFullChat() {}

// Participant is the closed union of channel membership rows:
// *ParticipantSelf, *ParticipantCreator, *ParticipantAdmin or *ParticipantMember.
type Participant interface {
	isParticipant()
}

type ParticipantSelf struct {
	UserID    int64
	InviterID int64
	Date      int32
}

type ParticipantCreator struct {
	UserID int64
}

type ParticipantAdmin struct {
	UserID    int64
	InviterID *int64
}

// ParticipantMember covers plain, banned and left rows.
type ParticipantMember struct {
	PeerID domain.PeerID
}

func (*ParticipantSelf) isParticipant()    {}
func (*ParticipantCreator) isParticipant() {}
func (*ParticipantAdmin) isParticipant()   {}
func (*ParticipantMember) isParticipant()  {}

type ChannelParticipant struct {
	Participant Participant
	Entities
}

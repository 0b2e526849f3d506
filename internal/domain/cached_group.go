package domain

type GroupFlags uint32

const (
	GroupCanChangeUsername GroupFlags = 1 << iota
)

type GroupParticipantRole int

const (
	GroupMember GroupParticipantRole = iota
	GroupAdmin
	GroupCreator
)

type GroupParticipant struct {
	PeerID    PeerID               `json:"peer"`
	InvitedBy PeerID               `json:"invited_by"`
	Date      int32                `json:"date,omitempty"`
	Role      GroupParticipantRole `json:"role"`
}

type GroupParticipants struct {
	Participants []GroupParticipant `json:"participants"`
	Version      int32              `json:"version"`
}

// InvitedBy returns who invited the account into the group. Self-invites
// (the creator row) do not count.
func (p *GroupParticipants) InvitedBy(account PeerID) *PeerID {
	if p == nil {
		return nil
	}
	for _, participant := range p.Participants {
		if participant.PeerID != account {
			continue
		}
		if participant.InvitedBy != account {
			inviter := participant.InvitedBy
			return &inviter
		}
		return nil
	}
	return nil
}

// CachedGroupData is the full metadata of a basic group.
type CachedGroupData struct {
	Participants         *GroupParticipants  `json:"participants,omitempty"`
	ExportedInvitation   *ExportedInvitation `json:"invitation,omitempty"`
	BotInfos             []PeerBotInfo       `json:"bot_infos,omitempty"`
	PeerStatusSettings   *PeerStatusSettings `json:"status_settings,omitempty"`
	PinnedMessageID      *MessageID          `json:"pinned,omitempty"`
	About                *string             `json:"about,omitempty"`
	Flags                GroupFlags          `json:"flags"`
	HasScheduledMessages bool                `json:"has_scheduled,omitempty"`
	InvitedBy            *PeerID             `json:"invited_by,omitempty"`
	Photo                *Image              `json:"photo,omitempty"`
	ActiveCall           *ActiveCall         `json:"active_call,omitempty"`
	CallJoinPeerID       *PeerID             `json:"call_join_peer,omitempty"`
	AutoremoveTimeout    AutoremoveTimeout   `json:"autoremove"`
	ThemeEmoticon        *string             `json:"theme_emoticon,omitempty"`
}

func (d CachedGroupData) StatusSettings() *PeerStatusSettings { return d.PeerStatusSettings }
func (CachedGroupData) isCachedPeerData()                    {}

func (d CachedGroupData) WithParticipants(p *GroupParticipants) CachedGroupData {
	d.Participants = p
	return d
}

func (d CachedGroupData) WithExportedInvitation(inv *ExportedInvitation) CachedGroupData {
	d.ExportedInvitation = inv
	return d
}

func (d CachedGroupData) WithBotInfos(infos []PeerBotInfo) CachedGroupData {
	d.BotInfos = append([]PeerBotInfo(nil), infos...)
	return d
}

func (d CachedGroupData) WithPeerStatusSettings(s *PeerStatusSettings) CachedGroupData {
	d.PeerStatusSettings = s
	return d
}

func (d CachedGroupData) WithPinnedMessageID(id *MessageID) CachedGroupData {
	d.PinnedMessageID = id
	return d
}

func (d CachedGroupData) WithAbout(about *string) CachedGroupData {
	d.About = about
	return d
}

func (d CachedGroupData) WithFlags(f GroupFlags) CachedGroupData {
	d.Flags = f
	return d
}

func (d CachedGroupData) WithHasScheduledMessages(v bool) CachedGroupData {
	d.HasScheduledMessages = v
	return d
}

func (d CachedGroupData) WithInvitedBy(id *PeerID) CachedGroupData {
	d.InvitedBy = id
	return d
}

func (d CachedGroupData) WithPhoto(img *Image) CachedGroupData {
	d.Photo = img
	return d
}

func (d CachedGroupData) WithActiveCall(call *ActiveCall) CachedGroupData {
	d.ActiveCall = call
	return d
}

func (d CachedGroupData) WithCallJoinPeerID(id *PeerID) CachedGroupData {
	d.CallJoinPeerID = id
	return d
}

func (d CachedGroupData) WithThemeEmoticon(e *string) CachedGroupData {
	d.ThemeEmoticon = e
	return d
}

package domain

// CachedPeerData is the refreshable metadata attached to a peer.
// Implemented by CachedUserData, CachedGroupData, CachedChannelData and
// CachedSecretChatData only. Values are never mutated in place: every With*
// function returns an updated copy so a merge only touches what it names.
type CachedPeerData interface {
	StatusSettings() *PeerStatusSettings
	isCachedPeerData()
}

// AutoremoveTimeout is unknown until a full fetch reports it; a known timeout
// may still be nil (autoremove disabled).
type AutoremoveTimeout struct {
	Known  bool   `json:"known"`
	Period *int32 `json:"period,omitempty"`
}

// KnownAutoremoveTimeout wraps a fetched timeout. Zero and absent both mean "disabled".
func KnownAutoremoveTimeout(period *int32) AutoremoveTimeout {
	if period != nil && *period == 0 {
		period = nil
	}
	return AutoremoveTimeout{Known: true, Period: period}
}

// KnownPeer is an optional peer reference that distinguishes "not fetched yet"
// from "fetched, and there is none".
type KnownPeer struct {
	Known  bool    `json:"known"`
	PeerID *PeerID `json:"peer,omitempty"`
}

type BotCommand struct {
	Command     string `json:"command"`
	Description string `json:"description"`
}

type BotInfo struct {
	Description string       `json:"description,omitempty"`
	Commands    []BotCommand `json:"commands,omitempty"`
}

// PeerBotInfo binds bot info to the bot peer it describes.
type PeerBotInfo struct {
	PeerID  PeerID  `json:"peer"`
	BotInfo BotInfo `json:"bot_info"`
}

// ExportedInvitation is an invite link of a group or channel.
type ExportedInvitation struct {
	Link          string  `json:"link"`
	AdminID       PeerID  `json:"admin"`
	Date          int32   `json:"date"`
	Revoked       bool    `json:"revoked,omitempty"`
	Permanent     bool    `json:"permanent,omitempty"`
	RequestNeeded bool    `json:"request_needed,omitempty"`
	Title         *string `json:"title,omitempty"`
	ExpireDate    *int32  `json:"expire_date,omitempty"`
	UsageLimit    *int32  `json:"usage_limit,omitempty"`
	Count         *int32  `json:"count,omitempty"`
	Requested     *int32  `json:"requested,omitempty"`
}

// ActiveCall is the group call currently attached to a group or channel.
type ActiveCall struct {
	ID                    int64   `json:"id"`
	AccessHash            int64   `json:"access_hash"`
	Title                 *string `json:"title,omitempty"`
	ScheduleTimestamp     *int32  `json:"schedule_ts,omitempty"`
	SubscribedToScheduled bool    `json:"subscribed,omitempty"`
}

// MergeActiveCall builds the call record for a freshly reported call id while
// keeping the descriptive fields the previous record knew about.
func MergeActiveCall(id, accessHash int64, previous *ActiveCall) *ActiveCall {
	call := &ActiveCall{ID: id, AccessHash: accessHash}
	if previous != nil {
		call.Title = previous.Title
		call.ScheduleTimestamp = previous.ScheduleTimestamp
		call.SubscribedToScheduled = previous.SubscribedToScheduled
	}
	return call
}

// CachedUserData is the full metadata of a user.
type CachedUserData struct {
	About                *string             `json:"about,omitempty"`
	BotInfo              *BotInfo            `json:"bot_info,omitempty"`
	CommonGroupCount     int32               `json:"common_group_count"`
	IsBlocked            bool                `json:"is_blocked,omitempty"`
	VoiceCallsAvailable  bool                `json:"voice_calls,omitempty"`
	VideoCallsAvailable  bool                `json:"video_calls,omitempty"`
	CallsPrivate         bool                `json:"calls_private,omitempty"`
	CanPinMessages       bool                `json:"can_pin,omitempty"`
	PeerStatusSettings   *PeerStatusSettings `json:"status_settings,omitempty"`
	PinnedMessageID      *MessageID          `json:"pinned,omitempty"`
	HasScheduledMessages bool                `json:"has_scheduled,omitempty"`
	AutoremoveTimeout    AutoremoveTimeout   `json:"autoremove"`
	ThemeEmoticon        *string             `json:"theme_emoticon,omitempty"`
}

func (d CachedUserData) StatusSettings() *PeerStatusSettings { return d.PeerStatusSettings }
func (CachedUserData) isCachedPeerData()                    {}

func (d CachedUserData) WithAbout(about *string) CachedUserData {
	d.About = about
	return d
}

func (d CachedUserData) WithBotInfo(info *BotInfo) CachedUserData {
	d.BotInfo = info
	return d
}

func (d CachedUserData) WithCommonGroupCount(n int32) CachedUserData {
	d.CommonGroupCount = n
	return d
}

func (d CachedUserData) WithIsBlocked(v bool) CachedUserData {
	d.IsBlocked = v
	return d
}

func (d CachedUserData) WithVoiceCallsAvailable(v bool) CachedUserData {
	d.VoiceCallsAvailable = v
	return d
}

func (d CachedUserData) WithVideoCallsAvailable(v bool) CachedUserData {
	d.VideoCallsAvailable = v
	return d
}

func (d CachedUserData) WithCallsPrivate(v bool) CachedUserData {
	d.CallsPrivate = v
	return d
}

func (d CachedUserData) WithCanPinMessages(v bool) CachedUserData {
	d.CanPinMessages = v
	return d
}

func (d CachedUserData) WithPeerStatusSettings(s *PeerStatusSettings) CachedUserData {
	d.PeerStatusSettings = s
	return d
}

func (d CachedUserData) WithPinnedMessageID(id *MessageID) CachedUserData {
	d.PinnedMessageID = id
	return d
}

func (d CachedUserData) WithHasScheduledMessages(v bool) CachedUserData {
	d.HasScheduledMessages = v
	return d
}

func (d CachedUserData) WithAutoremoveTimeout(t AutoremoveTimeout) CachedUserData {
	d.AutoremoveTimeout = t
	return d
}

func (d CachedUserData) WithThemeEmoticon(e *string) CachedUserData {
	d.ThemeEmoticon = e
	return d
}

// CachedSecretChatData only carries locally derived status settings.
type CachedSecretChatData struct {
	PeerStatusSettings *PeerStatusSettings `json:"status_settings,omitempty"`
}

func (d CachedSecretChatData) StatusSettings() *PeerStatusSettings { return d.PeerStatusSettings }
func (CachedSecretChatData) isCachedPeerData()                    {}

func (d CachedSecretChatData) WithPeerStatusSettings(s *PeerStatusSettings) CachedSecretChatData {
	d.PeerStatusSettings = s
	return d
}

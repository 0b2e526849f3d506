package domain

type ChannelFlags uint32

const (
	ChannelCanDisplayParticipants ChannelFlags = 1 << iota
	ChannelCanChangeUsername
	ChannelPreHistoryEnabled
	ChannelCanViewStats
	ChannelCanSetStickerSet
	ChannelCanChangePeerGeoLocation
)

func (f ChannelFlags) Has(flag ChannelFlags) bool { return f&flag == flag }

type ChannelParticipantsSummary struct {
	MemberCount *int32 `json:"members,omitempty"`
	AdminCount  *int32 `json:"admins,omitempty"`
	BannedCount *int32 `json:"banned,omitempty"`
	KickedCount *int32 `json:"kicked,omitempty"`
}

type StickerPackNamespace int

const (
	StickerPackNamespaceStickers StickerPackNamespace = iota
	StickerPackNamespaceMasks
)

// StickerPackInfo describes the sticker set a supergroup has chosen.
type StickerPackInfo struct {
	Namespace  StickerPackNamespace `json:"ns"`
	ID         int64                `json:"id"`
	AccessHash int64                `json:"access_hash"`
	Title      string               `json:"title"`
	ShortName  string               `json:"short_name"`
	Count      int32                `json:"count"`
	Hash       int32                `json:"hash"`
	Official   bool                 `json:"official,omitempty"`
}

// MigrationReference points at the last message of the basic group a
// supergroup was migrated from.
type MigrationReference struct {
	MaxMessageID MessageID `json:"max_message_id"`
}

type GeoLocation struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"long"`
	Address   string  `json:"address"`
}

// CachedChannelData is the full metadata of a channel or supergroup.
type CachedChannelData struct {
	IsNotAccessible        bool                       `json:"not_accessible,omitempty"`
	Flags                  ChannelFlags               `json:"flags"`
	About                  *string                    `json:"about,omitempty"`
	ParticipantsSummary    ChannelParticipantsSummary `json:"participants_summary"`
	ExportedInvitation     *ExportedInvitation        `json:"invitation,omitempty"`
	BotInfos               []PeerBotInfo              `json:"bot_infos,omitempty"`
	PeerStatusSettings     *PeerStatusSettings        `json:"status_settings,omitempty"`
	PinnedMessageID        *MessageID                 `json:"pinned,omitempty"`
	StickerPack            *StickerPackInfo           `json:"sticker_pack,omitempty"`
	MinAvailableMessageID  *MessageID                 `json:"min_available,omitempty"`
	MigrationReference     *MigrationReference        `json:"migration,omitempty"`
	LinkedDiscussionPeerID KnownPeer                  `json:"linked_discussion"`
	PeerGeoLocation        *GeoLocation               `json:"geo,omitempty"`
	SlowModeTimeout        *int32                     `json:"slow_mode_timeout,omitempty"`
	SlowModeValidUntil     *int32                     `json:"slow_mode_until,omitempty"`
	HasScheduledMessages   bool                       `json:"has_scheduled,omitempty"`
	StatsDatacenterID      int32                      `json:"stats_dc"`
	InvitedBy              *PeerID                    `json:"invited_by,omitempty"`
	Photo                  *Image                     `json:"photo,omitempty"`
	ActiveCall             *ActiveCall                `json:"active_call,omitempty"`
	CallJoinPeerID         *PeerID                    `json:"call_join_peer,omitempty"`
	AutoremoveTimeout      AutoremoveTimeout          `json:"autoremove"`
	PendingSuggestions     []string                   `json:"pending_suggestions,omitempty"`
	ThemeEmoticon          *string                    `json:"theme_emoticon,omitempty"`
}

func (d CachedChannelData) StatusSettings() *PeerStatusSettings { return d.PeerStatusSettings }
func (CachedChannelData) isCachedPeerData()                    {}

// NotAccessibleChannelData is the negative-cache stub stored for channels the
// account can no longer read.
func NotAccessibleChannelData() CachedChannelData {
	return CachedChannelData{IsNotAccessible: true}
}

func (d CachedChannelData) WithIsNotAccessible(v bool) CachedChannelData {
	d.IsNotAccessible = v
	return d
}

func (d CachedChannelData) WithFlags(f ChannelFlags) CachedChannelData {
	d.Flags = f
	return d
}

func (d CachedChannelData) WithAbout(about *string) CachedChannelData {
	d.About = about
	return d
}

func (d CachedChannelData) WithParticipantsSummary(s ChannelParticipantsSummary) CachedChannelData {
	d.ParticipantsSummary = s
	return d
}

func (d CachedChannelData) WithExportedInvitation(inv *ExportedInvitation) CachedChannelData {
	d.ExportedInvitation = inv
	return d
}

func (d CachedChannelData) WithBotInfos(infos []PeerBotInfo) CachedChannelData {
	d.BotInfos = append([]PeerBotInfo(nil), infos...)
	return d
}

func (d CachedChannelData) WithPeerStatusSettings(s *PeerStatusSettings) CachedChannelData {
	d.PeerStatusSettings = s
	return d
}

func (d CachedChannelData) WithPinnedMessageID(id *MessageID) CachedChannelData {
	d.PinnedMessageID = id
	return d
}

func (d CachedChannelData) WithStickerPack(p *StickerPackInfo) CachedChannelData {
	d.StickerPack = p
	return d
}

func (d CachedChannelData) WithMinAvailableMessageID(id *MessageID) CachedChannelData {
	d.MinAvailableMessageID = id
	return d
}

func (d CachedChannelData) WithMigrationReference(ref *MigrationReference) CachedChannelData {
	d.MigrationReference = ref
	return d
}

func (d CachedChannelData) WithLinkedDiscussionPeerID(p KnownPeer) CachedChannelData {
	d.LinkedDiscussionPeerID = p
	return d
}

func (d CachedChannelData) WithPeerGeoLocation(loc *GeoLocation) CachedChannelData {
	d.PeerGeoLocation = loc
	return d
}

func (d CachedChannelData) WithSlowModeTimeout(v *int32) CachedChannelData {
	d.SlowModeTimeout = v
	return d
}

func (d CachedChannelData) WithSlowModeValidUntil(v *int32) CachedChannelData {
	d.SlowModeValidUntil = v
	return d
}

func (d CachedChannelData) WithHasScheduledMessages(v bool) CachedChannelData {
	d.HasScheduledMessages = v
	return d
}

func (d CachedChannelData) WithStatsDatacenterID(dc int32) CachedChannelData {
	d.StatsDatacenterID = dc
	return d
}

func (d CachedChannelData) WithInvitedBy(id *PeerID) CachedChannelData {
	d.InvitedBy = id
	return d
}

func (d CachedChannelData) WithPhoto(img *Image) CachedChannelData {
	d.Photo = img
	return d
}

func (d CachedChannelData) WithActiveCall(call *ActiveCall) CachedChannelData {
	d.ActiveCall = call
	return d
}

func (d CachedChannelData) WithCallJoinPeerID(id *PeerID) CachedChannelData {
	d.CallJoinPeerID = id
	return d
}

func (d CachedChannelData) WithAutoremoveTimeout(t AutoremoveTimeout) CachedChannelData {
	d.AutoremoveTimeout = t
	return d
}

func (d CachedChannelData) WithPendingSuggestions(s []string) CachedChannelData {
	d.PendingSuggestions = append([]string(nil), s...)
	return d
}

func (d CachedChannelData) WithThemeEmoticon(e *string) CachedChannelData {
	d.ThemeEmoticon = e
	return d
}

// SameMessageID compares optional message ids.
func SameMessageID(a, b *MessageID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

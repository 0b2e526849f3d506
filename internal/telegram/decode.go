package telegram

import (
	"fmt"

	"github.com/gotd/td/tg"

	"github.com/danhigham/telecache/internal/domain"
	"github.com/danhigham/telecache/internal/remote"
)

func optInt32(v int, ok bool) *int32 {
	if !ok {
		return nil
	}
	out := int32(v)
	return &out
}

func optString(v string, ok bool) *string {
	if !ok {
		return nil
	}
	return &v
}

// decodePeerID maps a tg peer to its local id.
func decodePeerID(p tg.PeerClass) (domain.PeerID, bool) {
	switch p := p.(type) {
	case *tg.PeerUser:
		return domain.UserID(p.UserID), true
	case *tg.PeerChat:
		return domain.GroupID(p.ChatID), true
	case *tg.PeerChannel:
		return domain.ChannelID(p.ChannelID), true
	default:
		return domain.PeerID{}, false
	}
}

func decodeOptPeerID(p tg.PeerClass, ok bool) *domain.PeerID {
	if !ok {
		return nil
	}
	id, ok := decodePeerID(p)
	if !ok {
		return nil
	}
	return &id
}

func decodeUser(u *tg.User) remote.User {
	user := &domain.User{
		ID:         u.ID,
		AccessHash: u.AccessHash,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		Username:   u.Username,
		Phone:      u.Phone,
		Bot:        u.Bot,
		Contact:    u.Contact,
		Deleted:    u.Deleted,
		Min:        u.Min,
	}
	if photo, ok := u.Photo.(*tg.UserProfilePhoto); ok {
		user.PhotoID = photo.PhotoID
	}
	return remote.User{User: user, Presence: decodePresence(u.Status)}
}

func decodeUsers(users []tg.UserClass) []remote.User {
	out := make([]remote.User, 0, len(users))
	for _, u := range users {
		if user, ok := u.(*tg.User); ok {
			out = append(out, decodeUser(user))
		}
	}
	return out
}

func decodePresence(status tg.UserStatusClass) *domain.Presence {
	switch s := status.(type) {
	case *tg.UserStatusOnline:
		return &domain.Presence{Status: domain.PresenceOnline, Timestamp: int32(s.Expires)}
	case *tg.UserStatusOffline:
		return &domain.Presence{Status: domain.PresenceOffline, Timestamp: int32(s.WasOnline)}
	case *tg.UserStatusRecently:
		return &domain.Presence{Status: domain.PresenceRecently}
	case *tg.UserStatusLastWeek:
		return &domain.Presence{Status: domain.PresenceLastWeek}
	case *tg.UserStatusLastMonth:
		return &domain.Presence{Status: domain.PresenceLastMonth}
	case *tg.UserStatusEmpty:
		return &domain.Presence{Status: domain.PresenceNone}
	default:
		return nil
	}
}

// decodeChat maps groups and channels; empty chats are dropped.
func decodeChat(c tg.ChatClass) (domain.Peer, bool) {
	switch c := c.(type) {
	case *tg.Chat:
		g := &domain.Group{
			ID:               c.ID,
			Title:            c.Title,
			ParticipantCount: c.ParticipantsCount,
			Version:          c.Version,
			Deactivated:      c.Deactivated,
		}
		if to, ok := c.MigratedTo.(*tg.InputChannel); ok {
			g.MigratedTo = domain.ChannelID(to.ChannelID)
		}
		return g, true
	case *tg.ChatForbidden:
		return &domain.Group{ID: c.ID, Title: c.Title, Forbidden: true}, true
	case *tg.Channel:
		return &domain.Channel{
			ID:         c.ID,
			AccessHash: c.AccessHash,
			Title:      c.Title,
			Username:   c.Username,
			Broadcast:  c.Broadcast,
			Megagroup:  c.Megagroup,
			Min:        c.Min,
		}, true
	case *tg.ChannelForbidden:
		return &domain.Channel{
			ID:         c.ID,
			AccessHash: c.AccessHash,
			Title:      c.Title,
			Broadcast:  c.Broadcast,
			Megagroup:  c.Megagroup,
			Forbidden:  true,
		}, true
	default:
		return nil, false
	}
}

func decodeEntities(chats []tg.ChatClass, users []tg.UserClass) remote.Entities {
	out := remote.Entities{Users: decodeUsers(users)}
	for _, c := range chats {
		if p, ok := decodeChat(c); ok {
			out.Chats = append(out.Chats, p)
		}
	}
	return out
}

func decodeNotifySettings(s tg.PeerNotifySettings) domain.PeerNotificationSettings {
	var out domain.PeerNotificationSettings
	if until, ok := s.GetMuteUntil(); ok {
		if until == 0 {
			out.Mute = domain.MuteUnmuted
		} else {
			out.Mute = domain.MuteMutedUntil
			out.MuteUntil = int32(until)
		}
	}
	if v, ok := s.GetSilent(); ok {
		out.Silent = &v
	}
	if v, ok := s.GetShowPreviews(); ok {
		out.ShowPreviews = &v
	}
	return out
}

func decodePeerSettings(s tg.PeerSettings) domain.PeerStatusSettings {
	var flags domain.StatusFlags
	set := func(on bool, f domain.StatusFlags) {
		if on {
			flags |= f
		}
	}
	set(s.ReportSpam, domain.StatusCanReport)
	set(s.AddContact, domain.StatusCanAddContact)
	set(s.BlockContact, domain.StatusCanBlock)
	set(s.ShareContact, domain.StatusCanShareContact)
	set(s.NeedContactsException, domain.StatusAddExceptionWhenAddingContact)
	set(s.ReportGeo, domain.StatusCanReportIrrelevantGeoLocation)
	set(s.Autoarchived, domain.StatusAutoArchived)
	set(s.InviteMembers, domain.StatusSuggestAddMembers)

	return domain.PeerStatusSettings{
		Flags:       flags,
		GeoDistance: optInt32(s.GetGeoDistance()),
	}
}

func decodeBotInfo(info tg.BotInfo) domain.BotInfo {
	out := domain.BotInfo{}
	if d, ok := info.GetDescription(); ok {
		out.Description = d
	}
	if cmds, ok := info.GetCommands(); ok {
		for _, c := range cmds {
			out.Commands = append(out.Commands, domain.BotCommand{Command: c.Command, Description: c.Description})
		}
	}
	return out
}

func decodeBotInfos(infos []tg.BotInfo) []domain.PeerBotInfo {
	var out []domain.PeerBotInfo
	for _, info := range infos {
		userID, ok := info.GetUserID()
		if !ok {
			continue
		}
		out = append(out, domain.PeerBotInfo{PeerID: domain.UserID(userID), BotInfo: decodeBotInfo(info)})
	}
	return out
}

func photoResource(photoID int64, sizeType string) domain.ResourceID {
	return domain.ResourceID(fmt.Sprintf("photo-%d-%s", photoID, sizeType))
}

func documentResource(documentID int64) domain.ResourceID {
	return domain.ResourceID(fmt.Sprintf("document-%d", documentID))
}

func decodePhoto(p tg.PhotoClass) *domain.Image {
	photo, ok := p.(*tg.Photo)
	if !ok {
		return nil
	}
	img := &domain.Image{ID: photo.ID, AccessHash: photo.AccessHash, DatacenterID: photo.DCID}
	for _, size := range photo.Sizes {
		var rep domain.ImageRepresentation
		switch s := size.(type) {
		case *tg.PhotoSize:
			rep = domain.ImageRepresentation{Type: s.Type, Width: s.W, Height: s.H}
		case *tg.PhotoCachedSize:
			rep = domain.ImageRepresentation{Type: s.Type, Width: s.W, Height: s.H}
		case *tg.PhotoSizeProgressive:
			rep = domain.ImageRepresentation{Type: s.Type, Width: s.W, Height: s.H}
		default:
			continue
		}
		rep.Resource = photoResource(photo.ID, rep.Type)
		img.Representations = append(img.Representations, rep)
	}
	return img
}

func decodeInvite(inv tg.ExportedChatInviteClass, ok bool) *domain.ExportedInvitation {
	if !ok {
		return nil
	}
	e, ok := inv.(*tg.ChatInviteExported)
	if !ok {
		return nil
	}
	return &domain.ExportedInvitation{
		Link:          e.Link,
		AdminID:       domain.UserID(e.AdminID),
		Date:          int32(e.Date),
		Revoked:       e.Revoked,
		Permanent:     e.Permanent,
		RequestNeeded: e.RequestNeeded,
		Title:         optString(e.GetTitle()),
		ExpireDate:    optInt32(e.GetExpireDate()),
		UsageLimit:    optInt32(e.GetUsageLimit()),
		Count:         optInt32(e.GetUsage()),
		Requested:     optInt32(e.GetRequested()),
	}
}

func decodeGroupCall(call tg.InputGroupCallClass, ok bool) *remote.InputGroupCall {
	if !ok {
		return nil
	}
	c, ok := call.(*tg.InputGroupCall)
	if !ok {
		return nil
	}
	return &remote.InputGroupCall{ID: c.ID, AccessHash: c.AccessHash}
}

func decodeUserFull(res *tg.UsersUserFull) remote.UserFull {
	f := res.FullUser
	out := remote.UserFull{
		NotifySettings:      decodeNotifySettings(f.NotifySettings),
		About:               optString(f.GetAbout()),
		Blocked:             f.Blocked,
		PhoneCallsAvailable: f.PhoneCallsAvailable,
		VideoCallsAvailable: f.VideoCallsAvailable,
		PhoneCallsPrivate:   f.PhoneCallsPrivate,
		CanPinMessage:       f.CanPinMessage,
		HasScheduled:        f.HasScheduled,
		Settings:            decodePeerSettings(f.Settings),
		PinnedMsgID:         optInt32(f.GetPinnedMsgID()),
		CommonChatsCount:    int32(f.CommonChatsCount),
		TTLPeriod:           optInt32(f.GetTTLPeriod()),
	}
	if info, ok := f.GetBotInfo(); ok {
		b := decodeBotInfo(info)
		out.BotInfo = &b
	}
	if theme, ok := f.GetTheme(); ok {
		if t, ok := theme.(*tg.ChatTheme); ok {
			out.ThemeEmoticon = &t.Emoticon
		}
	}
	for _, u := range res.Users {
		if user, ok := u.(*tg.User); ok && user.ID == f.ID {
			out.User = decodeUser(user)
		}
	}
	return out
}

func decodeChatFull(res *tg.MessagesChatFull) (remote.ChatFull, error) {
	out := remote.ChatFull{Entities: decodeEntities(res.Chats, res.Users)}
	switch f := res.FullChat.(type) {
	case *tg.ChatFull:
		out.Full = decodeGroupFull(f)
	case *tg.ChannelFull:
		out.Full = decodeChannelFull(f)
	default:
		return remote.ChatFull{}, fmt.Errorf("unexpected full chat type: %T", res.FullChat)
	}
	return out, nil
}

func decodeGroupFull(f *tg.ChatFull) *remote.GroupFull {
	out := &remote.GroupFull{
		ID:             f.ID,
		NotifySettings: decodeNotifySettings(f.NotifySettings),
		About:          f.About,
		Participants:   decodeGroupParticipants(f.Participants),
		ExportedInvite: decodeInvite(f.GetExportedInvite()),
		PinnedMsgID:    optInt32(f.GetPinnedMsgID()),
		Call:           decodeGroupCall(f.GetCall()),
		DefaultJoinAs:  decodeOptPeerID(f.GetGroupcallDefaultJoinAs()),
		ThemeEmoticon:  optString(f.GetThemeEmoticon()),
		CanSetUsername: f.CanSetUsername,
		HasScheduled:   f.HasScheduled,
	}
	if photo, ok := f.GetChatPhoto(); ok {
		out.Photo = decodePhoto(photo)
	}
	if infos, ok := f.GetBotInfo(); ok {
		out.BotInfos = decodeBotInfos(infos)
	}
	return out
}

func decodeGroupParticipants(p tg.ChatParticipantsClass) *domain.GroupParticipants {
	list, ok := p.(*tg.ChatParticipants)
	if !ok {
		return nil
	}
	out := &domain.GroupParticipants{Version: int32(list.Version)}
	for _, participant := range list.Participants {
		switch m := participant.(type) {
		case *tg.ChatParticipant:
			out.Participants = append(out.Participants, domain.GroupParticipant{
				PeerID:    domain.UserID(m.UserID),
				InvitedBy: domain.UserID(m.InviterID),
				Date:      int32(m.Date),
				Role:      domain.GroupMember,
			})
		case *tg.ChatParticipantAdmin:
			out.Participants = append(out.Participants, domain.GroupParticipant{
				PeerID:    domain.UserID(m.UserID),
				InvitedBy: domain.UserID(m.InviterID),
				Date:      int32(m.Date),
				Role:      domain.GroupAdmin,
			})
		case *tg.ChatParticipantCreator:
			out.Participants = append(out.Participants, domain.GroupParticipant{
				PeerID:    domain.UserID(m.UserID),
				InvitedBy: domain.UserID(m.UserID),
				Role:      domain.GroupCreator,
			})
		}
	}
	return out
}

func decodeChannelFull(f *tg.ChannelFull) *remote.ChannelFull {
	out := &remote.ChannelFull{
		ID:                  f.ID,
		NotifySettings:      decodeNotifySettings(f.NotifySettings),
		About:               f.About,
		CanViewParticipants: f.CanViewParticipants,
		CanSetUsername:      f.CanSetUsername,
		CanSetStickers:      f.CanSetStickers,
		HiddenPrehistory:    f.HiddenPrehistory,
		CanSetLocation:      f.CanSetLocation,
		HasScheduled:        f.HasScheduled,
		CanViewStats:        f.CanViewStats,
		ParticipantsCount:   optInt32(f.GetParticipantsCount()),
		AdminsCount:         optInt32(f.GetAdminsCount()),
		KickedCount:         optInt32(f.GetKickedCount()),
		BannedCount:         optInt32(f.GetBannedCount()),
		Photo:               decodePhoto(f.ChatPhoto),
		ExportedInvite:      decodeInvite(f.GetExportedInvite()),
		BotInfos:            decodeBotInfos(f.BotInfo),
		MigratedFromMaxID:   optInt32(f.GetMigratedFromMaxID()),
		PinnedMsgID:         optInt32(f.GetPinnedMsgID()),
		AvailableMinID:      optInt32(f.GetAvailableMinID()),
		SlowmodeSeconds:     optInt32(f.GetSlowmodeSeconds()),
		SlowmodeNextSend:    optInt32(f.GetSlowmodeNextSendDate()),
		StatsDC:             optInt32(f.GetStatsDC()),
		Call:                decodeGroupCall(f.GetCall()),
		TTLPeriod:           optInt32(f.GetTTLPeriod()),
		DefaultJoinAs:       decodeOptPeerID(f.GetGroupcallDefaultJoinAs()),
		ThemeEmoticon:       optString(f.GetThemeEmoticon()),
	}
	if id, ok := f.GetMigratedFromChatID(); ok {
		out.MigratedFromChatID = &id
	}
	if id, ok := f.GetLinkedChatID(); ok {
		out.LinkedChatID = &id
	}
	if s, ok := f.GetStickerset(); ok {
		out.StickerSet = &remote.StickerSet{
			ID:         s.ID,
			AccessHash: s.AccessHash,
			Title:      s.Title,
			ShortName:  s.ShortName,
			Count:      int32(s.Count),
			Hash:       int32(s.Hash),
			Official:   s.Official,
			Masks:      s.Masks,
		}
	}
	if loc, ok := f.GetLocation(); ok {
		if l, ok := loc.(*tg.ChannelLocation); ok {
			if point, ok := l.GeoPoint.(*tg.GeoPoint); ok {
				out.Location = &domain.GeoLocation{Latitude: point.Lat, Longitude: point.Long, Address: l.Address}
			}
		}
	}
	if s, ok := f.GetPendingSuggestions(); ok {
		out.PendingSuggestions = s
	}
	return out
}

func decodeChannelParticipant(res *tg.ChannelsChannelParticipant) remote.ChannelParticipant {
	out := remote.ChannelParticipant{Entities: decodeEntities(res.Chats, res.Users)}
	switch p := res.Participant.(type) {
	case *tg.ChannelParticipantSelf:
		out.Participant = &remote.ParticipantSelf{UserID: p.UserID, InviterID: p.InviterID, Date: int32(p.Date)}
	case *tg.ChannelParticipantCreator:
		out.Participant = &remote.ParticipantCreator{UserID: p.UserID}
	case *tg.ChannelParticipantAdmin:
		admin := &remote.ParticipantAdmin{UserID: p.UserID}
		if id, ok := p.GetInviterID(); ok {
			admin.InviterID = &id
		}
		out.Participant = admin
	case *tg.ChannelParticipant:
		out.Participant = &remote.ParticipantMember{PeerID: domain.UserID(p.UserID)}
	case *tg.ChannelParticipantBanned:
		if id, ok := decodePeerID(p.Peer); ok {
			out.Participant = &remote.ParticipantMember{PeerID: id}
		}
	case *tg.ChannelParticipantLeft:
		if id, ok := decodePeerID(p.Peer); ok {
			out.Participant = &remote.ParticipantMember{PeerID: id}
		}
	}
	return out
}

// decodeMessage maps a stored-history message of peer. Service messages and
// empty slots are dropped.
func decodeMessage(peer domain.PeerID, m tg.MessageClass) (domain.Message, bool) {
	msg, ok := m.(*tg.Message)
	if !ok {
		return domain.Message{}, false
	}
	out := domain.Message{
		ID:        domain.CloudMessageID(peer, int32(msg.ID)),
		Text:      entitiesToMarkdown(msg.Message, msg.Entities),
		Timestamp: int32(msg.Date),
		Out:       msg.Out,
	}
	if from, ok := msg.GetFromID(); ok {
		if id, ok := decodePeerID(from); ok {
			out.SenderID = id
		}
	} else if !msg.Out && peer.Namespace == domain.NamespaceUser {
		// Direct messages carry no sender; the counterpart wrote it.
		out.SenderID = peer
	}
	if media, ok := msg.GetMedia(); ok {
		if m, ok := decodeMedia(media); ok {
			out.Media = append(out.Media, m)
		}
	}
	return out, true
}

func decodeMedia(media tg.MessageMediaClass) (domain.Media, bool) {
	switch m := media.(type) {
	case *tg.MessageMediaPhoto:
		p, ok := m.GetPhoto()
		if !ok {
			return domain.Media{}, false
		}
		img := decodePhoto(p)
		if img == nil {
			return domain.Media{}, false
		}
		out := domain.Media{Kind: domain.MediaPhoto, ID: img.ID}
		for _, rep := range img.Representations {
			out.Resources = append(out.Resources, rep.Resource)
		}
		return out, true
	case *tg.MessageMediaDocument:
		d, ok := m.GetDocument()
		if !ok {
			return domain.Media{}, false
		}
		doc, ok := d.(*tg.Document)
		if !ok {
			return domain.Media{}, false
		}
		out := domain.Media{Kind: domain.MediaDocument, ID: doc.ID, Resources: []domain.ResourceID{documentResource(doc.ID)}}
		for _, thumb := range doc.Thumbs {
			if s, ok := thumb.(*tg.PhotoSize); ok {
				out.Resources = append(out.Resources, domain.ResourceID(fmt.Sprintf("document-%d-%s", doc.ID, s.Type)))
			}
		}
		return out, true
	default:
		return domain.Media{}, false
	}
}

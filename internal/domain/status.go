package domain

import "strings"

// StatusFlags are the action hints a peer's chat header offers.
type StatusFlags uint32

const (
	StatusCanReport StatusFlags = 1 << iota
	StatusCanShareContact
	StatusCanBlock
	StatusCanAddContact
	StatusAddExceptionWhenAddingContact
	StatusCanReportIrrelevantGeoLocation
	StatusAutoArchived
	StatusSuggestAddMembers
)

var statusFlagNames = []struct {
	flag StatusFlags
	name string
}{
	{StatusCanReport, "canReport"},
	{StatusCanShareContact, "canShareContact"},
	{StatusCanBlock, "canBlock"},
	{StatusCanAddContact, "canAddContact"},
	{StatusAddExceptionWhenAddingContact, "addExceptionWhenAddingContact"},
	{StatusCanReportIrrelevantGeoLocation, "canReportIrrelevantGeoLocation"},
	{StatusAutoArchived, "autoArchived"},
	{StatusSuggestAddMembers, "suggestAddMembers"},
}

func (f StatusFlags) Has(flag StatusFlags) bool { return f&flag == flag }

func (f StatusFlags) String() string {
	var names []string
	for _, n := range statusFlagNames {
		if f.Has(n.flag) {
			names = append(names, n.name)
		}
	}
	return "[" + strings.Join(names, ",") + "]"
}

type PeerStatusSettings struct {
	Flags       StatusFlags `json:"flags"`
	GeoDistance *int32      `json:"geo_distance,omitempty"`
}

// SecretChatStatusSettings derives status settings for a secret chat without
// asking the server: reporting is offered for non-contacts unless we created the chat.
func SecretChatStatusSettings(isContact bool, role SecretChatRole) PeerStatusSettings {
	if isContact || role == SecretChatRoleCreator {
		return PeerStatusSettings{}
	}
	return PeerStatusSettings{Flags: StatusCanReport}
}

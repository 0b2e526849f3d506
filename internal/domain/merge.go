package domain

// MergeUser combines a locally stored user with one received from the server.
// Full incoming records replace the local one. Min records only carry
// context-visible fields, so the local access hash, phone and contact flag
// survive and only non-empty incoming fields overwrite.
func MergeUser(local, incoming *User) *User {
	if incoming == nil {
		return local
	}
	if local == nil || !incoming.Min {
		merged := *incoming
		if local != nil && merged.AccessHash == 0 {
			merged.AccessHash = local.AccessHash
		}
		return &merged
	}

	merged := *local
	if incoming.FirstName != "" || incoming.LastName != "" {
		merged.FirstName = incoming.FirstName
		merged.LastName = incoming.LastName
	}
	if incoming.Username != "" {
		merged.Username = incoming.Username
	}
	if incoming.PhotoID != 0 {
		merged.PhotoID = incoming.PhotoID
	}
	merged.Bot = incoming.Bot
	merged.Deleted = incoming.Deleted
	return &merged
}

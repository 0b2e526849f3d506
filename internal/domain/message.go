package domain

// ResourceID names a cached media resource (a downloaded file part of a photo or document).
type ResourceID string

type MediaKind int

const (
	MediaPhoto MediaKind = iota
	MediaDocument
	MediaOther
)

// Media attached to a stored message.
type Media struct {
	Kind      MediaKind    `json:"kind"`
	ID        int64        `json:"id,omitempty"`
	Resources []ResourceID `json:"resources,omitempty"`
}

type Message struct {
	ID        MessageID `json:"id"`
	SenderID  PeerID    `json:"sender,omitempty"`
	Text      string    `json:"text,omitempty"`
	Timestamp int32     `json:"ts"`
	Out       bool      `json:"out,omitempty"`
	Media     []Media   `json:"media,omitempty"`
}

// ImageRepresentation is one size variant of an image.
type ImageRepresentation struct {
	Type     string     `json:"type"`
	Width    int        `json:"w,omitempty"`
	Height   int        `json:"h,omitempty"`
	Resource ResourceID `json:"resource"`
}

// Image is a photo such as a chat avatar.
type Image struct {
	ID              int64                 `json:"id"`
	AccessHash      int64                 `json:"access_hash,omitempty"`
	DatacenterID    int                   `json:"dc,omitempty"`
	Representations []ImageRepresentation `json:"representations,omitempty"`
}

// ResourceIDs lists every resource referenced by the media.
func (m Media) ResourceIDs() []ResourceID {
	out := make([]ResourceID, len(m.Resources))
	copy(out, m.Resources)
	return out
}

package topics

import (
	"slices"

	"github.com/nfrund/intake/internal/channels"
)

// Topic maps a canonical, lowercase topic name to the channels it fans out to.
type Topic struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Channels    []channels.Kind `json:"channels"`
}

// New creates a Topic. The channel list is copied.
func New(name, description string, kinds ...channels.Kind) Topic {
	return Topic{
		Name:        name,
		Description: description,
		Channels:    slices.Clone(kinds),
	}
}

// String returns the topic's name
func (t Topic) String() string {
	return t.Name
}

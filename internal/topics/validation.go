package topics

import (
	"errors"
	"regexp"
	"strings"
)

var (
	// ErrInvalidTopicName is returned when a topic name is not lowercase snake_case.
	ErrInvalidTopicName = errors.New("topic name must be lowercase with underscores, e.g., 'sales' or 'key_accounts'")

	// ErrMissingDescription is returned when a topic is missing a description
	ErrMissingDescription = errors.New("topic is missing a description")

	// ErrNoChannels is returned when a topic does not route to any channel
	ErrNoChannels = errors.New("topic must route to at least one channel")
)

var topicNameRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// Validate checks if a topic is valid according to the following rules:
// 1. Name must be lowercase with underscores (lookups lowercase the caller's topic)
// 2. Description must be non-empty
// 3. At least one channel must be listed
func (t Topic) Validate() error {
	if !topicNameRegex.MatchString(t.Name) {
		return ErrInvalidTopicName
	}

	if strings.TrimSpace(t.Description) == "" {
		return ErrMissingDescription
	}

	if len(t.Channels) == 0 {
		return ErrNoChannels
	}

	return nil
}

package topics

import (
	"fmt"
	"slices"
	"strings"

	"github.com/nfrund/intake/internal/channels"
)

// Registry holds the topic table. It is populated once at startup and is
// read-only afterwards, so lookups need no locking.
type Registry struct {
	topics map[string]Topic
}

// NewRegistry builds a registry from the given topics, validating each and
// rejecting duplicates.
func NewRegistry(topics ...Topic) (*Registry, error) {
	r := &Registry{topics: make(map[string]Topic, len(topics))}
	for _, t := range topics {
		if err := t.Validate(); err != nil {
			return nil, fmt.Errorf("invalid topic %q: %w", t.Name, err)
		}
		if _, exists := r.topics[t.Name]; exists {
			return nil, fmt.Errorf("topic already registered: %s", t.Name)
		}
		r.topics[t.Name] = t
	}
	return r, nil
}

// Normalize lowercases a topic name with full case mapping: U+0130 (İ)
// lowers to "i" plus a combining dot, not to a plain "i".
func Normalize(name string) string {
	if strings.ContainsRune(name, '\u0130') {
		name = strings.ReplaceAll(name, "\u0130", "i\u0307")
	}
	return strings.ToLower(name)
}

// Lookup normalizes name and returns the channels it routes to.
func (r *Registry) Lookup(name string) ([]channels.Kind, bool) {
	t, ok := r.topics[Normalize(name)]
	if !ok {
		return nil, false
	}
	return slices.Clone(t.Channels), true
}

// Has reports whether name, once normalized, is a registered topic.
func (r *Registry) Has(name string) bool {
	_, ok := r.topics[Normalize(name)]
	return ok
}

// List returns all registered topics ordered by name.
func (r *Registry) List() []Topic {
	result := make([]Topic, 0, len(r.topics))
	for _, t := range r.topics {
		result = append(result, t)
	}
	slices.SortFunc(result, func(a, b Topic) int {
		return strings.Compare(a.Name, b.Name)
	})
	return result
}

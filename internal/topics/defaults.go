package topics

import "github.com/nfrund/intake/internal/channels"

// Topic names. These must be defined lowercase.
const (
	Sales   = "sales"
	Pricing = "pricing"
	Any     = "any"
)

// DefaultTopics is the static topic table served by the intake endpoint.
func DefaultTopics() []Topic {
	return []Topic{
		New(Sales, "Sales enquiries, posted to the sales chat channel.", channels.KindChat),
		New(Pricing, "Pricing questions, forwarded by email.", channels.KindEmail),
		New(Any, "Everything else, broadcast to chat, email and the queue.",
			channels.KindChat, channels.KindEmail, channels.KindQueue),
	}
}

// Default builds the registry holding DefaultTopics.
func Default() (*Registry, error) {
	return NewRegistry(DefaultTopics()...)
}

package domain

// Message is a validated, topic-tagged message accepted by the intake endpoint.
// Topic keeps the caller's original casing; Description is stored as received.
type Message struct {
	Topic       string `json:"topic"`
	Description string `json:"description"`
}

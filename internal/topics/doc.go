// Package topics provides the static registry that maps message topics to the
// ordered list of channels a message on that topic is dispatched to.
package topics

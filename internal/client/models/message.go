// Package models defines the client-side view of feed data.
package models

// Message is a single decoded conversation entry. Exactly one of Text or
// ImageRef is populated. Timestamp is assigned by the feed at commit time and
// stays nil until the commit is acknowledged, so a freshly appended entry can
// show up in a snapshot before its timestamp resolves.
type Message struct {
	ID        string
	Author    string
	Timestamp *int64
	Text      string
	ImageRef  string
}

// Resolved reports whether the feed has stamped the message with its
// authoritative timestamp.
func (m Message) Resolved() bool {
	return m.Timestamp != nil
}

// IsImage reports whether the message payload is an attachment reference.
func (m Message) IsImage() bool {
	return m.ImageRef != ""
}

// Package models defines the server-side feed data shapes, including the
// wire form of snapshots delivered to subscribers.
package models

// Message is one committed feed row. Exactly one of Text and ImageRef is
// non-nil; the table enforces it. Timestamp is epoch milliseconds assigned by
// the database at commit time.
type Message struct {
	ID        string
	Room      string
	Author    string
	Text      *string
	ImageRef  *string
	Timestamp int64
}

// SnapshotEntry is the wire form of one entry inside a snapshot frame.
type SnapshotEntry struct {
	Author    string  `json:"author"`
	Timestamp *int64  `json:"timestamp,omitempty"`
	Text      *string `json:"text,omitempty"`
	ImageRef  *string `json:"imageRef,omitempty"`
}

// Snapshot is the complete current contents of one room, keyed by message id.
// Every subscriber receives the whole thing on every change.
type Snapshot map[string]SnapshotEntry

// SnapshotOf converts committed rows into the wire form.
func SnapshotOf(rows []Message) Snapshot {
	snap := make(Snapshot, len(rows))
	for _, m := range rows {
		ts := m.Timestamp
		snap[m.ID] = SnapshotEntry{
			Author:    m.Author,
			Timestamp: &ts,
			Text:      m.Text,
			ImageRef:  m.ImageRef,
		}
	}
	return snap
}

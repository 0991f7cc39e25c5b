// Package sync turns raw feed snapshots into the ordered message view the
// rest of the client consumes: a pure reconciliation step that decodes and
// deterministically sorts each snapshot, and a synchronizer that drives it
// from a live subscription.
package sync

import (
	"fmt"
	"sort"

	"github.com/dmitrijs2005/groupfeed/internal/client/feed"
	"github.com/dmitrijs2005/groupfeed/internal/client/models"
	"github.com/dmitrijs2005/groupfeed/internal/common"
)

// DecodeEntry converts one raw feed entry into a Message. An entry with
// neither or both payload fields set is malformed and yields an error
// wrapping common.ErrDecode.
func DecodeEntry(id string, e feed.RawEntry) (models.Message, error) {
	hasText := e.Text != nil
	hasImage := e.ImageRef != nil

	switch {
	case hasText && hasImage:
		return models.Message{}, fmt.Errorf("%w: entry %s has both text and image payloads", common.ErrDecode, id)
	case !hasText && !hasImage:
		return models.Message{}, fmt.Errorf("%w: entry %s has no payload", common.ErrDecode, id)
	}

	m := models.Message{ID: id, Author: e.Author, Timestamp: e.Timestamp}
	if hasText {
		m.Text = *e.Text
	} else {
		m.ImageRef = *e.ImageRef
	}
	return m, nil
}

// Reconcile decodes a full snapshot into the canonical ordered sequence.
// It is pure and deterministic: identical input always yields identical
// output. Malformed entries are skipped and counted, never aborting the rest
// of the snapshot. The returned count is the number of entries dropped.
//
// Ordering: timestamp ascending; entries whose timestamp has not resolved yet
// sort after all resolved ones (in-flight writes show at the tail); any tie,
// including the whole pending group, is broken by lexicographic id. The
// sequence is recomputed from scratch on every snapshot — O(n log n), an
// accepted cost at room scale.
func Reconcile(snap feed.RawSnapshot) ([]models.Message, int) {
	msgs := make([]models.Message, 0, len(snap))
	dropped := 0

	for id, e := range snap {
		m, err := DecodeEntry(id, e)
		if err != nil {
			dropped++
			continue
		}
		msgs = append(msgs, m)
	}

	sort.Slice(msgs, func(i, j int) bool {
		a, b := msgs[i], msgs[j]
		switch {
		case a.Resolved() && !b.Resolved():
			return true
		case !a.Resolved() && b.Resolved():
			return false
		case a.Resolved() && b.Resolved() && *a.Timestamp != *b.Timestamp:
			return *a.Timestamp < *b.Timestamp
		default:
			return a.ID < b.ID
		}
	})

	return msgs, dropped
}

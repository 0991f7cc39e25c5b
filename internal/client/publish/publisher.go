// Package publish appends new entries to the feed: plain text directly, and
// attachments through the two-phase store-then-append sequence.
package publish

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/groupfeed/internal/client/attach"
	"github.com/dmitrijs2005/groupfeed/internal/client/blob"
	"github.com/dmitrijs2005/groupfeed/internal/client/feed"
	"github.com/dmitrijs2005/groupfeed/internal/common"
	"github.com/dmitrijs2005/groupfeed/internal/logging"
)

// OrphanError reports an attachment publish that failed after the payload was
// already stored: the object sits in the blob store under Key with no message
// referencing it. It is not retried or rolled back here; Key lets a caller
// decide whether to re-append reusing the stored object. Unwrap exposes the
// underlying transport failure, so errors.Is(err, common.ErrTransport) holds.
type OrphanError struct {
	Key string
	Err error
}

func (e *OrphanError) Error() string {
	return fmt.Sprintf("attachment publish failed after store (orphaned object %s): %v", e.Key, e.Err)
}

func (e *OrphanError) Unwrap() error { return e.Err }

// Publisher is the write-side orchestrator for one room. Publish operations
// are independent of any active subscription: success means durably appended,
// and visibility arrives asynchronously through the snapshot stream. There is
// no optimistic local insertion.
type Publisher struct {
	feed   feed.Client
	blobs  blob.Publisher
	roomID string
	logger logging.Logger
}

func NewPublisher(feedClient feed.Client, blobs blob.Publisher, roomID string, logger logging.Logger) *Publisher {
	return &Publisher{
		feed:   feedClient,
		blobs:  blobs,
		roomID: roomID,
		logger: logger.With("module", "publisher", "room", roomID),
	}
}

// PublishText appends a text message. Empty text (after trimming) is rejected
// with common.ErrValidation before any I/O.
func (p *Publisher) PublishText(ctx context.Context, author, text string) error {
	author = strings.TrimSpace(author)
	if author == "" {
		return fmt.Errorf("%w: empty author", common.ErrValidation)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return fmt.Errorf("%w: empty message text", common.ErrValidation)
	}

	id, err := p.feed.Append(ctx, p.roomID, feed.OutgoingEntry{Author: author, Text: &text})
	if err != nil {
		return fmt.Errorf("publish text: %w", err)
	}

	p.logger.Debug(ctx, "text published", "id", id)
	return nil
}

// PublishAttachment runs the two-phase attachment flow: validate, store the
// payload, resolve its retrieval reference, then append a message carrying
// the reference. A validation failure performs no I/O. A failure after the
// payload was stored is reported as *OrphanError, distinct from validation
// failures, and the stored object is left in place.
func (p *Publisher) PublishAttachment(ctx context.Context, author string, data []byte, contentType, extensionHint string) error {
	author = strings.TrimSpace(author)
	if author == "" {
		return fmt.Errorf("%w: empty author", common.ErrValidation)
	}

	if err := attach.Validate(contentType, int64(len(data))); err != nil {
		return err
	}

	key, err := p.blobs.Store(ctx, data, extensionHint)
	if err != nil {
		return fmt.Errorf("publish attachment: %w", err)
	}

	ref, err := p.blobs.ResolveReference(ctx, key)
	if err != nil {
		return &OrphanError{Key: key, Err: err}
	}

	id, err := p.feed.Append(ctx, p.roomID, feed.OutgoingEntry{Author: author, ImageRef: &ref})
	if err != nil {
		p.logger.Warn(ctx, "append failed after store, object orphaned", "key", key)
		return &OrphanError{Key: key, Err: err}
	}

	p.logger.Debug(ctx, "attachment published", "id", id, "key", key)
	return nil
}

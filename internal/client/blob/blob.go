// Package blob stores attachment payloads in an S3-compatible object store
// and resolves stable retrieval references for published messages.
//
// Storing and referencing are separate operations on purpose: the publisher
// composes them, and an object stored without a later referencing message
// (an orphan) is an accepted outcome, never cleaned up here.
package blob

import "context"

// Publisher is the attachment write path.
type Publisher interface {
	// Store writes data durably under a freshly generated unique key and
	// returns that key. extensionHint, when non-empty, is preserved as the
	// key's suffix for content-type fidelity. Failures wrap
	// common.ErrTransport.
	Store(ctx context.Context, data []byte, extensionHint string) (string, error)

	// ResolveReference returns a retrievable URL for a previously stored
	// object. Only meaningful after a successful Store of that key.
	ResolveReference(ctx context.Context, key string) (string, error)
}

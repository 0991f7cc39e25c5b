// Package attach validates attachment payloads before they are stored or
// published. Validation is a pure predicate: it performs no I/O and leaves no
// side effects, so a rejected payload never reaches the blob store or the feed.
package attach

import (
	"fmt"

	"github.com/dmitrijs2005/groupfeed/internal/common"
)

// MaxSize is the largest accepted attachment payload.
const MaxSize = 5 * 1024 * 1024 // 5 MiB

// allowedTypes is the fixed set of accepted image content types.
var allowedTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/gif":  {},
	"image/webp": {},
}

// Validate checks an attachment's content type and size against the allow-set.
// It returns nil on acceptance, or an error wrapping common.ErrValidation
// naming the reason.
func Validate(contentType string, size int64) error {
	if _, ok := allowedTypes[contentType]; !ok {
		return fmt.Errorf("%w: unsupported attachment type %q (allowed: jpeg, png, gif, webp)", common.ErrValidation, contentType)
	}
	if size > MaxSize {
		return fmt.Errorf("%w: attachment size %d exceeds limit of %d bytes", common.ErrValidation, size, MaxSize)
	}
	return nil
}

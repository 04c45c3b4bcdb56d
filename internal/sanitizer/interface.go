package sanitizer

import (
	"github.com/tatsuyakari1203/wp-crawl-tool/pkg/failure"
)

// Sanitizer defines the interface for markup sanitization.
// Implementations must be idempotent: sanitizing already sanitized output
// yields the same document.
type Sanitizer interface {
	// Sanitize parses the markup and returns a cleaned document tree.
	// A ClassifiedError is returned only when the markup cannot be parsed.
	Sanitize(markup string) (SanitizedHTMLDoc, failure.ClassifiedError)
}

// Compile-time interface check
var _ Sanitizer = (*HtmlSanitizer)(nil)

/*
Responsibilities
- Drop non-content nodes (script, style, comments, leaked stylesheet text)
- Reduce attributes to a fixed per-tag allow-list
- Unwrap page-builder wrappers and remove containers left empty

The sanitizer returns a freshly parsed tree; the input markup is never
mutated. Sanitizing its own output is a no-op.
*/
package sanitizer

import (
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/tatsuyakari1203/wp-crawl-tool/internal/metadata"
	"github.com/tatsuyakari1203/wp-crawl-tool/pkg/failure"
	"golang.org/x/net/html"
)

type HtmlSanitizer struct {
	metadataSink metadata.MetadataSink
	param        SanitizeParam
	policy       *bluemonday.Policy
}

func NewHTMLSanitizer(metadataSink metadata.MetadataSink) HtmlSanitizer {
	return NewHTMLSanitizerWithParam(metadataSink, DefaultSanitizeParam())
}

func NewHTMLSanitizerWithParam(metadataSink metadata.MetadataSink, param SanitizeParam) HtmlSanitizer {
	return HtmlSanitizer{
		metadataSink: metadataSink,
		param:        param,
		policy:       newWhitelistPolicy(),
	}
}

func (h *HtmlSanitizer) Sanitize(markup string) (SanitizedHTMLDoc, failure.ClassifiedError) {
	doc, err := h.sanitize(markup)
	if err != nil {
		h.metadataSink.RecordError(
			time.Now(),
			"sanitizer",
			"HtmlSanitizer.Sanitize",
			mapSanitizationErrorToMetadataCause(err),
			err.Error(),
			[]metadata.Attribute{
				metadata.NewAttr(metadata.AttrField, "content"),
			},
		)
		return SanitizedHTMLDoc{}, err
	}
	return doc, nil
}

func (h *HtmlSanitizer) sanitize(markup string) (SanitizedHTMLDoc, *SanitizationError) {
	body, err := parseBody(markup)
	if err != nil {
		return SanitizedHTMLDoc{}, err
	}

	unwrapBuilderWrappers(body, h.param.WrapperClassMarkers)
	encodeURLWhitespace(body)

	cleaned := h.policy.Sanitize(renderChildren(body))

	body, err = parseBody(cleaned)
	if err != nil {
		return SanitizedHTMLDoc{}, err
	}

	removeCSSLeakText(body)
	removeEmptyContainersBottomUp(body)

	return NewSanitizedHTMLDoc(body), nil
}

func parseBody(markup string) (*html.Node, *SanitizationError) {
	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return nil, &SanitizationError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCauseMarkupParse,
		}
	}
	body := findBody(doc)
	if body == nil {
		return nil, &SanitizationError{
			Message:   "parsed document lacks a body element",
			Retryable: false,
			Cause:     ErrCauseNoBody,
		}
	}
	return body, nil
}

func renderChildren(n *html.Node) string {
	var buf strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		_ = html.Render(&buf, c)
	}
	return buf.String()
}

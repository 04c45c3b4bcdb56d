package sanitizer

import (
	"strings"

	"golang.org/x/net/html"
)

type SanitizedHTMLDoc struct {
	contentNode *html.Node
}

// GetContentNode returns the body element of the sanitized document.
func (s *SanitizedHTMLDoc) GetContentNode() *html.Node {
	return s.contentNode
}

// HTML renders the children of the content node.
func (s *SanitizedHTMLDoc) HTML() string {
	if s.contentNode == nil {
		return ""
	}
	var buf strings.Builder
	for child := s.contentNode.FirstChild; child != nil; child = child.NextSibling {
		_ = html.Render(&buf, child)
	}
	return buf.String()
}

// NewSanitizedHTMLDoc creates a SanitizedHTMLDoc for testing purposes.
// The fields remain private to maintain immutability.
func NewSanitizedHTMLDoc(contentNode *html.Node) SanitizedHTMLDoc {
	return SanitizedHTMLDoc{
		contentNode: contentNode,
	}
}

// SanitizeParam holds the tunable marker lists used during cleanup.
type SanitizeParam struct {
	// WrapperClassMarkers are class substrings identifying page-builder
	// wrappers whose content is kept while the element itself is dropped.
	WrapperClassMarkers []string
}

func DefaultSanitizeParam() SanitizeParam {
	return SanitizeParam{
		WrapperClassMarkers: []string{
			"et_pb_",
			"vc_",
			"elementor-",
			"fusion-",
			"fl-row",
			"fl-col",
			"fl-module",
			"wp-block-group",
			"wpb_",
			"siteorigin-panels",
		},
	}
}

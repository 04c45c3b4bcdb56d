package sanitizer

import "github.com/microcosm-cc/bluemonday"

// contentElements are the tags that survive sanitization. Anything else is
// dropped while its text is kept, except for the skipped elements whose
// content is discarded entirely.
var contentElements = []string{
	"p", "br", "hr",
	"h1", "h2", "h3", "h4", "h5", "h6",
	"ul", "ol", "li", "dl", "dt", "dd",
	"blockquote", "pre", "code",
	"table", "caption", "thead", "tbody", "tfoot", "tr", "th", "td",
	"figure", "figcaption", "img", "a",
	"strong", "b", "em", "i", "u", "s", "del", "ins", "mark", "small", "sub", "sup",
	"div", "span", "section", "article",
}

// newWhitelistPolicy builds the per-tag attribute allow-list. Inline style
// is never allowed and class survives only on code and pre so language
// hints reach the converters.
func newWhitelistPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements(contentElements...)

	p.AllowAttrs("src", "alt", "title").OnElements("img")
	p.AllowAttrs("href", "title").OnElements("a")
	p.AllowAttrs("border", "cellpadding", "cellspacing").OnElements("table")
	p.AllowAttrs("colspan", "rowspan").OnElements("td", "th")
	p.AllowAttrs("cite").OnElements("blockquote")
	p.AllowAttrs("class").OnElements("code", "pre")

	p.RequireParseableURLs(true)
	p.AllowRelativeURLs(true)
	p.AllowURLSchemes("http", "https", "mailto")
	// data URIs stay in the tree so acquisition can report them as unresolvable
	p.AllowDataURIImages()

	p.SkipElementsContent("script", "style", "noscript", "template")
	return p
}

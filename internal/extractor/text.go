package extractor

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// textBreakTags end a word when rendered, so their text never fuses with
// the text next to them.
var textBreakTags = map[string]bool{
	"li": true, "dt": true, "dd": true, "tr": true, "td": true, "th": true,
	"thead": true, "tbody": true, "tfoot": true, "caption": true,
	"figcaption": true, "br": true,
}

// collapseText joins whitespace runs into single spaces and trims the ends.
func collapseText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// selectionText is the collapsed text of every node in sel, with a space at
// block boundaries.
func selectionText(sel *goquery.Selection) string {
	var sb strings.Builder
	for _, n := range sel.Nodes {
		sb.WriteString(spacedText(n))
	}
	return collapseText(sb.String())
}

// spacedText concatenates descendant text like nodeText but pads block
// elements, table cells and line breaks with spaces.
func spacedText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			sb.WriteString(n.Data)
			return
		case html.ElementNode:
			if blockTags[n.Data] || textBreakTags[n.Data] {
				sb.WriteString(" ")
				defer sb.WriteString(" ")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

// truncateRunes cuts s to at most max runes.
func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:max]))
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}

package extractor

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// plainText renders the processed tree as readable text. Blocks are
// separated by blank lines, list items get bullet or number prefixes and
// preformatted text keeps its whitespace.
func plainText(root *html.Node) string {
	w := &textWriter{}
	w.children(root)
	w.endBlock()
	return strings.TrimSpace(strings.Join(w.blocks, "\n\n"))
}

type textWriter struct {
	blocks []string
	line   strings.Builder
}

func (w *textWriter) endBlock() {
	text := strings.TrimSpace(w.line.String())
	w.line.Reset()
	if text != "" {
		w.blocks = append(w.blocks, text)
	}
}

func (w *textWriter) children(n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.node(c)
	}
}

func (w *textWriter) node(n *html.Node) {
	switch n.Type {
	case html.TextNode:
		w.inline(n.Data)
		return
	case html.ElementNode:
	default:
		return
	}

	switch n.Data {
	case "br":
		w.line.WriteString("\n")
	case "pre":
		w.endBlock()
		w.blocks = append(w.blocks, strings.Trim(nodeText(n), "\n"))
	case "ul", "ol":
		w.endBlock()
		w.list(n, n.Data == "ol")
	case "p", "h1", "h2", "h3", "h4", "h5", "h6", "blockquote", "div", "section",
		"article", "figure", "figcaption", "table", "tr", "caption", "hr", "dl", "dt", "dd":
		w.endBlock()
		if n.Data == "tr" {
			w.row(n)
		} else {
			w.children(n)
		}
		w.endBlock()
	default:
		w.children(n)
	}
}

func (w *textWriter) inline(s string) {
	collapsed := collapseText(s)
	if collapsed == "" {
		if s != "" {
			w.space()
		}
		return
	}
	if startsWithSpace(s) {
		w.space()
	}
	w.line.WriteString(collapsed)
	if endsWithSpace(s) {
		w.space()
	}
}

// space writes a single separator unless the line is empty or already ends
// in whitespace.
func (w *textWriter) space() {
	current := w.line.String()
	if current == "" || endsWithSpace(current) {
		return
	}
	w.line.WriteString(" ")
}

func (w *textWriter) list(n *html.Node, ordered bool) {
	var items []string
	position := 0
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || c.Data != "li" {
			continue
		}
		position++
		prefix := "• "
		if ordered {
			prefix = strconv.Itoa(position) + ". "
		}
		items = append(items, prefix+collapseText(spacedText(c)))
	}
	if len(items) > 0 {
		w.blocks = append(w.blocks, strings.Join(items, "\n"))
	}
}

func (w *textWriter) row(tr *html.Node) {
	var cells []string
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && (c.Data == "td" || c.Data == "th") {
			cells = append(cells, collapseText(spacedText(c)))
		}
	}
	w.line.WriteString(strings.Join(cells, " | "))
}

func startsWithSpace(s string) bool {
	return s != "" && strings.TrimLeft(s, " \t\n\r\f") != s
}

func endsWithSpace(s string) bool {
	return s != "" && strings.TrimRight(s, " \t\n\r\f") != s
}

package extractor

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// inlineLinks replaces every anchor that has both an href and visible text
// with the text run "<text> (<href>)". Other anchors are unwrapped so only
// their contents remain. Tagged images inside an anchor are kept right
// after the inlined text.
func inlineLinks(root *html.Node) {
	var anchors []*html.Node
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.A {
			anchors = append(anchors, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(root)

	// innermost first so nested anchors are resolved before their parents
	for i := len(anchors) - 1; i >= 0; i-- {
		inlineAnchor(anchors[i])
	}
}

func inlineAnchor(a *html.Node) {
	parent := a.Parent
	if parent == nil {
		return
	}

	href := strings.TrimSpace(attrValue(a, "href"))
	text := collapseText(spacedText(a))

	if href == "" || text == "" {
		unwrap(a)
		return
	}

	parent.InsertBefore(&html.Node{
		Type: html.TextNode,
		Data: text + " (" + href + ")",
	}, a)
	for _, img := range taggedImages(a) {
		img.Parent.RemoveChild(img)
		parent.InsertBefore(img, a)
	}
	parent.RemoveChild(a)
}

func unwrap(n *html.Node) {
	parent := n.Parent
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		parent.InsertBefore(c, n)
		c = next
	}
	parent.RemoveChild(n)
}

func taggedImages(n *html.Node) []*html.Node {
	var found []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.Img && hasAttr(n, ImageIndexAttr) {
			found = append(found, n)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return found
}

func attrValue(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

func hasAttr(n *html.Node, key string) bool {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return true
		}
	}
	return false
}

// nodeText concatenates descendant text nodes.
func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

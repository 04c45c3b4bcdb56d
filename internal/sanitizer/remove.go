package sanitizer

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// cssLeakPattern matches text that is stylesheet source from end to end.
// Prose that merely contains braces or mentions @media never matches as a
// whole.
var cssLeakPattern = regexp.MustCompile(
	`^\s*(?:(?:` +
		`[^{}]+\{(?:\s*[-a-zA-Z]+\s*:[^;{}]*;?)*\s*\}` +
		`|/\*[\s\S]*?\*/` +
		`|@[a-z-]+[^{};]*(?:;|\{(?:[^{}]*\{[^{}]*\})*[^{}]*\})` +
		`)\s*)+$`,
)

var emptyRemovableContainers = map[string]bool{
	"div": true, "span": true, "section": true,
}

var mediaElements = map[string]bool{
	"img": true, "picture": true, "video": true, "audio": true,
	"iframe": true, "svg": true, "object": true, "embed": true,
}

// unwrapBuilderWrappers replaces page-builder wrapper elements with their
// children. It must run before the whitelist policy strips class attributes.
func unwrapBuilderWrappers(root *html.Node, markers []string) {
	var wrappers []*html.Node
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.ElementNode && emptyRemovableContainers[n.Data] && hasMarkerClass(n, markers) {
			wrappers = append(wrappers, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(root)

	for _, w := range wrappers {
		unwrapNode(w)
	}
}

func hasMarkerClass(n *html.Node, markers []string) bool {
	for _, attr := range n.Attr {
		if attr.Key != "class" {
			continue
		}
		for _, marker := range markers {
			if strings.Contains(attr.Val, marker) {
				return true
			}
		}
	}
	return false
}

func unwrapNode(n *html.Node) {
	parent := n.Parent
	if parent == nil {
		return
	}
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		parent.InsertBefore(c, n)
		c = next
	}
	parent.RemoveChild(n)
}

// removeCSSLeakText drops text nodes that carry stylesheet fragments which
// page builders sometimes print into the body. Text inside pre and code is
// left alone.
func removeCSSLeakText(node *html.Node) {
	var children []*html.Node
	for c := node.FirstChild; c != nil; c = c.NextSibling {
		children = append(children, c)
	}
	for _, c := range children {
		switch c.Type {
		case html.TextNode:
			if isCSSLeak(c.Data) {
				node.RemoveChild(c)
			}
		case html.ElementNode:
			if c.Data == "pre" || c.Data == "code" {
				continue
			}
			removeCSSLeakText(c)
		}
	}
}

func isCSSLeak(text string) bool {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return false
	}
	return cssLeakPattern.MatchString(trimmed)
}

// urlWhitespace is percent-encoded in src and href before the policy runs;
// the policy drops attributes whose URL does not parse, and a raw space in
// an upload path is the usual culprit.
var urlWhitespace = strings.NewReplacer(" ", "%20", "\t", "%09", "\n", "%0A", "\r", "%0D")

func encodeURLWhitespace(node *html.Node) {
	if node.Type == html.ElementNode {
		for i, attr := range node.Attr {
			if (node.Data == "img" && attr.Key == "src") || (node.Data == "a" && attr.Key == "href") {
				node.Attr[i].Val = urlWhitespace.Replace(strings.TrimSpace(attr.Val))
			}
		}
	}
	for c := node.FirstChild; c != nil; c = c.NextSibling {
		encodeURLWhitespace(c)
	}
}

// removeEmptyContainersBottomUp performs a post-order traversal so nested
// empty containers are cleaned innermost first.
func removeEmptyContainersBottomUp(node *html.Node) {
	if node == nil {
		return
	}

	var children []*html.Node
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		children = append(children, child)
	}
	for _, child := range children {
		removeEmptyContainersBottomUp(child)
	}

	if node.Type == html.ElementNode &&
		emptyRemovableContainers[node.Data] &&
		!hasVisibleText(node) &&
		!hasMediaDescendant(node) &&
		node.Parent != nil {
		node.Parent.RemoveChild(node)
	}
}

func hasVisibleText(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode && strings.TrimSpace(c.Data) != "" {
			return true
		}
		if c.Type == html.ElementNode && hasVisibleText(c) {
			return true
		}
	}
	return false
}

func hasMediaDescendant(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		if mediaElements[c.Data] || hasMediaDescendant(c) {
			return true
		}
	}
	return false
}

// findBody returns the first body element under root.
func findBody(root *html.Node) *html.Node {
	if root == nil {
		return nil
	}
	if root.Type == html.ElementNode && root.Data == "body" {
		return root
	}
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if body := findBody(c); body != nil {
			return body
		}
	}
	return nil
}

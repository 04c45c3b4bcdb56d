package extractor

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// containerTags are descended into when they hold block children, so
// wrapped content is classified block by block.
var containerTags = map[string]bool{
	"div": true, "section": true, "article": true, "main": true,
	"header": true, "footer": true, "aside": true,
}

var inlineTags = map[string]bool{
	"a": true, "abbr": true, "b": true, "strong": true, "em": true, "i": true,
	"u": true, "s": true, "del": true, "ins": true, "mark": true, "small": true,
	"sub": true, "sup": true, "span": true, "img": true, "cite": true, "q": true,
	"time": true, "label": true,
}

var blockTags = map[string]bool{
	"p": true, "h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"ul": true, "ol": true, "dl": true, "blockquote": true, "pre": true, "table": true,
	"figure": true, "hr": true, "div": true, "section": true, "article": true,
	"main": true, "header": true, "footer": true, "aside": true,
}

// analyzeStructure classifies the body's blocks into structure nodes.
// Tagged images are emitted first, in document order, so none is lost to
// nesting. The remaining nodes follow source order.
func analyzeStructure(body *goquery.Selection, refs []ImageReference) []StructureNode {
	nodes := make([]StructureNode, 0)
	nodes = append(nodes, hoistImages(body, refs)...)

	return append(nodes, classifyChildren(body.Nodes[0])...)
}

// classifyChildren classifies the children of parent in order. Consecutive
// text and inline elements are merged into a single paragraph.
func classifyChildren(parent *html.Node) []StructureNode {
	return classifyRuns(parent, nil)
}

// classifyRuns is classifyChildren with an optional filter for children
// that are accounted for elsewhere, such as a figure's figcaption.
func classifyRuns(parent *html.Node, skip func(*html.Node) bool) []StructureNode {
	var nodes []StructureNode
	var run strings.Builder
	flush := func() {
		if text := collapseText(run.String()); text != "" {
			nodes = append(nodes, Paragraph{Text: text})
		}
		run.Reset()
	}

	for c := parent.FirstChild; c != nil; c = c.NextSibling {
		if skip != nil && skip(c) {
			continue
		}
		switch {
		case c.Type == html.TextNode:
			run.WriteString(c.Data)
		case c.Type == html.ElementNode && c.Data == "br":
			run.WriteString(" ")
		case c.Type == html.ElementNode && inlineTags[c.Data] && hasBlockChild(c):
			// an inline wrapper around blocks behaves like a div
			flush()
			nodes = append(nodes, classifyRuns(c, nil)...)
		case c.Type == html.ElementNode && inlineTags[c.Data]:
			run.WriteString(spacedText(c))
		case c.Type == html.ElementNode:
			flush()
			nodes = append(nodes, classifyBlock(c)...)
		}
	}
	flush()
	return nodes
}

func hoistImages(body *goquery.Selection, refs []ImageReference) []StructureNode {
	byIndex := make(map[int]ImageReference, len(refs))
	for _, ref := range refs {
		byIndex[ref.Index] = ref
	}

	var images []StructureNode
	body.Find("img[" + ImageIndexAttr + "]").Each(func(_ int, img *goquery.Selection) {
		index, err := strconv.Atoi(img.AttrOr(ImageIndexAttr, ""))
		if err != nil {
			return
		}
		node := Image{
			Index: index,
			Src:   img.AttrOr("src", ""),
		}
		if ref, ok := byIndex[index]; ok {
			node.AltText = ref.AltText
			node.Caption = ref.Caption
		}
		images = append(images, node)
	})
	return images
}

// classifyBlock maps one block element onto zero or more structure nodes.
func classifyBlock(n *html.Node) []StructureNode {
	sel := goquery.NewDocumentFromNode(n).Selection
	switch n.Data {
	case "h1", "h2", "h3", "h4", "h5", "h6":
		text := selectionText(sel)
		if text == "" {
			return nil
		}
		return []StructureNode{Heading{Level: int(n.Data[1] - '0'), Text: text}}

	case "p":
		text := selectionText(sel)
		if text == "" {
			return nil
		}
		return []StructureNode{Paragraph{Text: text}}

	case "ul", "ol":
		items := make([]string, 0)
		sel.ChildrenFiltered("li").Each(func(_ int, li *goquery.Selection) {
			if text := selectionText(li); text != "" {
				items = append(items, text)
			}
		})
		if len(items) == 0 {
			return nil
		}
		return []StructureNode{List{Ordered: n.Data == "ol", Items: items}}

	case "blockquote":
		text := selectionText(sel)
		if text == "" {
			return nil
		}
		return []StructureNode{Quote{Text: text}}

	case "pre", "code":
		text := sel.Text()
		if text == "" {
			return nil
		}
		return []StructureNode{Code{Text: text}}

	case "table":
		if table, ok := parseTable(sel); ok {
			return []StructureNode{table}
		}
		return nil

	case "hr":
		return nil

	case "figure":
		return classifyFigure(n, sel)
	}

	if containerTags[n.Data] && hasBlockChild(n) {
		return classifyChildren(n)
	}

	if text := selectionText(sel); text != "" {
		return []StructureNode{Paragraph{Text: text}}
	}
	return nil
}

// hasBlockChild reports whether n holds a block element, looking through
// inline wrappers such as a span around paragraphs.
func hasBlockChild(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		if blockTags[c.Data] || (inlineTags[c.Data] && hasBlockChild(c)) {
			return true
		}
	}
	return false
}

// classifyFigure walks a figure like a container. Gutenberg wraps tables,
// pullquotes and embeds in figures. The figcaption names the first table
// without a caption of its own; otherwise it is kept as a paragraph. A
// figure around a tagged image contributes nothing here because the image
// node already carries the caption.
func classifyFigure(n *html.Node, sel *goquery.Selection) []StructureNode {
	nodes := classifyRuns(n, isFigcaption)
	if sel.Find("img["+ImageIndexAttr+"]").Length() > 0 {
		return nodes
	}

	caption := selectionText(sel.ChildrenFiltered("figcaption"))
	if caption == "" {
		return nodes
	}
	for i, node := range nodes {
		if table, ok := node.(Table); ok && table.Caption == "" {
			table.Caption = caption
			nodes[i] = table
			return nodes
		}
	}
	return append(nodes, Paragraph{Text: caption})
}

func isFigcaption(n *html.Node) bool {
	return n.Type == html.ElementNode && n.Data == "figcaption"
}

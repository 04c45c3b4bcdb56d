package extractor

import (
	"net/url"
	"path"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	maxDerivedAltLength    = 100
	maxContextTextLength   = 200
	maxParagraphCaptionLen = 300
)

// altCandidate is one step of the alt text fallback chain. It returns an
// empty string when it has nothing to offer.
type altCandidate func(img *goquery.Selection, src string) string

// altChain is tried in order; the first non-empty answer wins.
var altChain = []altCandidate{
	explicitAlt,
	explicitTitle,
	figureCaptionAlt,
	contextTextAlt,
	filenameAlt,
}

func explicitAlt(img *goquery.Selection, _ string) string {
	return collapseText(img.AttrOr("alt", ""))
}

func explicitTitle(img *goquery.Selection, _ string) string {
	return collapseText(img.AttrOr("title", ""))
}

func figureCaptionAlt(img *goquery.Selection, _ string) string {
	return truncateRunes(figureCaption(img), maxDerivedAltLength)
}

func contextTextAlt(img *goquery.Selection, _ string) string {
	text := selectionText(img.Parent())
	if text == "" || runeLen(text) >= maxContextTextLength {
		return ""
	}
	return truncateRunes(text, maxDerivedAltLength)
}

// filenameAlt turns "/a/my-photo.jpg" into "my photo".
func filenameAlt(_ *goquery.Selection, src string) string {
	p := src
	if u, err := url.Parse(src); err == nil && u.Path != "" {
		p = u.Path
	}
	base := path.Base(p)
	if base == "." || base == "/" {
		return ""
	}
	base = strings.TrimSuffix(base, path.Ext(base))
	base = strings.NewReplacer("-", " ", "_", " ", "+", " ", "%20", " ").Replace(base)
	return collapseText(base)
}

// figureCaption returns the figcaption text of the closest enclosing figure.
func figureCaption(img *goquery.Selection) string {
	figure := img.Closest("figure")
	if figure.Length() == 0 {
		return ""
	}
	return selectionText(figure.Find("figcaption").First())
}

// paragraphCaption returns the text of the paragraph that directly follows
// the image, or its parent when the image is wrapped.
func paragraphCaption(img *goquery.Selection) string {
	next := img.NextFiltered("p")
	if next.Length() == 0 {
		next = img.Parent().NextFiltered("p")
	}
	text := selectionText(next)
	if runeLen(text) >= maxParagraphCaptionLen {
		return ""
	}
	return text
}

func inferAlt(img *goquery.Selection, src string) string {
	for _, candidate := range altChain {
		if alt := candidate(img, src); alt != "" {
			return alt
		}
	}
	return ""
}

func inferCaption(img *goquery.Selection) (caption string, original string) {
	original = figureCaption(img)
	if original != "" {
		return original, original
	}
	return paragraphCaption(img), original
}

// extractImages walks img elements in document order, records a reference
// for each one carrying a source and tags the element with its index.
// Elements without a source are left untagged and take no index.
func extractImages(doc *goquery.Document) []ImageReference {
	refs := make([]ImageReference, 0)
	doc.Find("img").Each(func(_ int, img *goquery.Selection) {
		src := strings.TrimSpace(img.AttrOr("src", ""))
		if src == "" {
			return
		}
		index := len(refs)
		caption, originalCaption := inferCaption(img)
		refs = append(refs, ImageReference{
			Index:           index,
			SourceURL:       src,
			AltText:         inferAlt(img, src),
			Caption:         caption,
			OriginalAltText: img.AttrOr("alt", ""),
			OriginalCaption: originalCaption,
		})
		img.SetAttr(ImageIndexAttr, strconv.Itoa(index))
	})
	return refs
}

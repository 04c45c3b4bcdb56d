package mdconvert

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/PuerkitoBio/goquery"
	"github.com/tatsuyakari1203/wp-crawl-tool/internal/extractor"
	"github.com/tatsuyakari1203/wp-crawl-tool/internal/metadata"
	"github.com/tatsuyakari1203/wp-crawl-tool/pkg/failure"
	"golang.org/x/net/html"
)

/*
Design Principles
- Semantic fidelity over visual fidelity
- No inferred structure
- No code reformatting
- GitHub-Flavored Markdown compatibility

Conversion Rules
- Headings map directly (h1-h6 to # - ######)
- Code blocks preserved verbatim
- Tables converted structurally (GFM)
- Tagged images point at their downloaded file, or become a text placeholder
- DOM order preserved
*/

const (
	placeholderTokenPrefix = "wpcrawlimage"
	placeholderTokenSuffix = "placeholder"
)

// ConvertRule turns processed content into Markdown.
// Implementations must be deterministic for the same input.
type ConvertRule interface {
	Convert(content extractor.ProcessedContent, param ConvertParam) (ConversionResult, failure.ClassifiedError)
}

// Compile-time interface check
var _ ConvertRule = (*StrictConversionRule)(nil)

type StrictConversionRule struct {
	metadataSink metadata.MetadataSink
}

func NewRule(metadataSink metadata.MetadataSink) *StrictConversionRule {
	return &StrictConversionRule{
		metadataSink: metadataSink,
	}
}

func (s *StrictConversionRule) Convert(
	content extractor.ProcessedContent,
	param ConvertParam,
) (ConversionResult, failure.ClassifiedError) {
	conversionResult, err := convert(content, param)
	if err != nil {
		s.metadataSink.RecordError(
			time.Now(),
			"mdconvert",
			"StrictConversionRule.Convert",
			mapConversionErrorToMetadataCause(err),
			err.Error(),
			[]metadata.Attribute{},
		)
		return ConversionResult{}, err
	}
	return conversionResult, nil
}

// convert rewrites tagged images and hands the body to html-to-markdown.
func convert(content extractor.ProcessedContent, param ConvertParam) (ConversionResult, *ConversionError) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content.HTML))
	if err != nil {
		return ConversionResult{}, &ConversionError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCauseMarkupParse,
		}
	}

	alts := make(map[int]string, len(content.Images))
	for _, ref := range content.Images {
		alts[ref.Index] = ref.AltText
	}

	placeholders := make(map[string]string)
	linkRefs := make([]LinkRef, 0)

	doc.Find("img").Each(func(_ int, img *goquery.Selection) {
		rawIndex, tagged := img.Attr(extractor.ImageIndexAttr)
		index, convErr := strconv.Atoi(rawIndex)
		if !tagged || convErr != nil {
			if src := img.AttrOr("src", ""); src != "" {
				linkRefs = append(linkRefs, NewLinkRef(src, KindRemoteImage, -1))
			}
			return
		}
		img.RemoveAttr(extractor.ImageIndexAttr)

		alt := alts[index]
		if alt == "" {
			alt = img.AttrOr("alt", "")
		}

		if localPath, ok := param.localImages[index]; ok {
			img.SetAttr("src", localPath)
			img.SetAttr("alt", alt)
			linkRefs = append(linkRefs, NewLinkRef(localPath, KindLocalImage, index))
			return
		}
		if param.keepRemoteImages {
			img.SetAttr("alt", alt)
			linkRefs = append(linkRefs, NewLinkRef(img.AttrOr("src", ""), KindRemoteImage, index))
			return
		}

		// the converter would escape the brackets, so a token stands in
		// until the Markdown is rendered
		token := fmt.Sprintf("%s%d%s", placeholderTokenPrefix, index, placeholderTokenSuffix)
		placeholders[token] = fmt.Sprintf("[Image: %s]", alt)
		linkRefs = append(linkRefs, NewLinkRef(img.AttrOr("src", ""), KindPlaceholder, index))
		img.ReplaceWithNodes(&html.Node{Type: html.TextNode, Data: token})
	})

	body := doc.Find("body")
	if body.Length() == 0 {
		return NewConversionResult([]byte{}, linkRefs), nil
	}

	conv := converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(),
		),
	)

	markdown, err := conv.ConvertNode(body.Nodes[0])
	if err != nil {
		return ConversionResult{}, &ConversionError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCauseConversionFailure,
		}
	}

	rendered := string(markdown)
	for token, text := range placeholders {
		rendered = strings.ReplaceAll(rendered, token, text)
	}

	return NewConversionResult([]byte(strings.TrimSpace(rendered)), linkRefs), nil
}

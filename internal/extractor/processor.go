/*
Responsibilities
- Tag every image with a stable index and infer its alt text and caption
- Inline hyperlinks as "text (url)" runs
- Classify blocks into typed structure nodes, tables included
- Render a plain text view used for word counts

A Processor is stateless between calls. Only a markup parse failure is
returned as an error; everything else degrades to empty fields.
*/
package extractor

import (
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/tatsuyakari1203/wp-crawl-tool/internal/metadata"
	"github.com/tatsuyakari1203/wp-crawl-tool/internal/sanitizer"
	"github.com/tatsuyakari1203/wp-crawl-tool/pkg/failure"
)

type Processor struct {
	metadataSink metadata.MetadataSink
	sanitizer    sanitizer.Sanitizer
}

func NewProcessor(metadataSink metadata.MetadataSink, s sanitizer.Sanitizer) Processor {
	return Processor{
		metadataSink: metadataSink,
		sanitizer:    s,
	}
}

// Process sanitizes one item body and extracts its images, structure and
// plain text.
func (p *Processor) Process(markup string) (ProcessedContent, failure.ClassifiedError) {
	doc, err := p.sanitizer.Sanitize(markup)
	if err != nil {
		return ProcessedContent{}, err
	}

	body := doc.GetContentNode()
	if body == nil {
		extractionErr := &ExtractionError{
			Message:   "sanitized document has no content node",
			Retryable: false,
			Cause:     ErrCauseNoContent,
		}
		p.metadataSink.RecordError(
			time.Now(),
			"extractor",
			"Processor.Process",
			mapExtractionErrorToMetadataCause(extractionErr),
			extractionErr.Error(),
			nil,
		)
		return ProcessedContent{}, extractionErr
	}

	gq := goquery.NewDocumentFromNode(body)
	images := extractImages(gq)
	inlineLinks(body)

	return ProcessedContent{
		HTML:      doc.HTML(),
		PlainText: plainText(body),
		Images:    images,
		Structure: analyzeStructure(gq.Selection, images),
	}, nil
}

// ProcessExcerpt returns the plain text of an excerpt. An excerpt that
// cannot be parsed yields an empty string.
func (p *Processor) ProcessExcerpt(markup string) string {
	if markup == "" {
		return ""
	}
	doc, err := p.sanitizer.Sanitize(markup)
	if err != nil || doc.GetContentNode() == nil {
		return ""
	}
	return plainText(doc.GetContentNode())
}

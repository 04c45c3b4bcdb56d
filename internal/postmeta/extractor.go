/*
Responsibilities

- Map one fetched item onto a PostMeta
- Prefer embedded relation data for author, terms and featured media
- Synthesise placeholders when only bare ids are present
- Report every placeholder path as a metadata gap warning

A metadata gap is never an error. The extractor always returns a record.
*/
package postmeta

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/tatsuyakari1203/wp-crawl-tool/internal/fetcher"
	"github.com/tatsuyakari1203/wp-crawl-tool/internal/metadata"
)

const (
	taxonomyCategory = "category"
	taxonomyTag      = "post_tag"

	unknownAuthorName   = "Unknown Author"
	unknownAuthorSlug   = "unknown"
	featuredImageAlt    = "Featured Image"
	restDateLayout      = "2006-01-02T15:04:05"
	categoryPlaceholder = "Category"
	tagPlaceholder      = "Tag"
)

type Extractor struct {
	metadataSink metadata.MetadataSink
}

func NewExtractor(metadataSink metadata.MetadataSink) Extractor {
	return Extractor{
		metadataSink: metadataSink,
	}
}

func (e *Extractor) Extract(item fetcher.RawItem) PostMeta {
	meta := PostMeta{
		ID:         item.ID,
		Title:      decodeText(item.Title.Rendered),
		Slug:       item.Slug,
		Status:     item.Status,
		Type:       item.Type,
		Link:       item.Link,
		Date:       e.parseDate(item, "date", item.Date),
		Modified:   e.parseDate(item, "modified", item.Modified),
		Categories: []Term{},
		Tags:       []Term{},
	}

	meta.Author, meta.Provenance.Author = resolveAuthor(item)
	meta.Categories, meta.Provenance.Categories = resolveTerms(item, taxonomyCategory, item.Categories, categoryPlaceholder)
	meta.Tags, meta.Provenance.Tags = resolveTerms(item, taxonomyTag, item.Tags, tagPlaceholder)
	meta.FeaturedImage, meta.Provenance.FeaturedImage = resolveFeaturedImage(item)

	e.reportGaps(item, meta.Provenance)
	return meta
}

func resolveAuthor(item fetcher.RawItem) (*Author, Provenance) {
	if item.Embedded != nil && len(item.Embedded.Author) > 0 {
		embedded := item.Embedded.Author[0]
		if embedded.Name != "" {
			return &Author{
				ID:   embedded.ID,
				Name: embedded.Name,
				Slug: embedded.Slug,
			}, ProvenanceResolved
		}
	}
	if item.Author != 0 {
		return &Author{
			ID:   item.Author,
			Name: unknownAuthorName,
			Slug: unknownAuthorSlug,
		}, ProvenancePlaceholder
	}
	return nil, ProvenanceAbsent
}

// resolveTerms looks for the wp:term group whose first element carries the
// wanted taxonomy, and falls back to placeholder terms built from ids.
func resolveTerms(item fetcher.RawItem, taxonomy string, ids []int64, placeholder string) ([]Term, Provenance) {
	if item.Embedded != nil {
		for _, group := range item.Embedded.Terms {
			if len(group) == 0 || group[0].Taxonomy != taxonomy {
				continue
			}
			terms := make([]Term, 0, len(group))
			for _, term := range group {
				terms = append(terms, Term{
					ID:   term.ID,
					Name: decodeText(term.Name),
					Slug: term.Slug,
				})
			}
			return terms, ProvenanceResolved
		}
	}
	if len(ids) == 0 {
		return []Term{}, ProvenanceAbsent
	}
	terms := make([]Term, 0, len(ids))
	for _, id := range ids {
		terms = append(terms, Term{
			ID:   id,
			Name: fmt.Sprintf("%s %d", placeholder, id),
			Slug: fmt.Sprintf("%s-%d", strings.ToLower(placeholder), id),
		})
	}
	return terms, ProvenancePlaceholder
}

func resolveFeaturedImage(item fetcher.RawItem) (*FeaturedImage, Provenance) {
	if item.Embedded != nil && len(item.Embedded.FeaturedMedia) > 0 {
		media := item.Embedded.FeaturedMedia[0]
		if media.SourceURL != "" {
			return &FeaturedImage{
				ID:      media.ID,
				URL:     media.SourceURL,
				Alt:     media.AltText,
				Caption: decodeText(media.Caption.Rendered),
			}, ProvenanceResolved
		}
	}
	if item.FeaturedMedia != 0 {
		return &FeaturedImage{
			ID:  item.FeaturedMedia,
			Alt: featuredImageAlt,
		}, ProvenancePlaceholder
	}
	return nil, ProvenanceAbsent
}

// parseDate reads the REST layout (site-local, no zone) and falls back to
// RFC3339 for feed items. Unparseable dates become the zero time.
func (e *Extractor) parseDate(item fetcher.RawItem, field string, value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}
	if t, err := time.ParseInLocation(restDateLayout, value, time.UTC); err == nil {
		return t
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		e.metadataSink.RecordWarning(
			time.Now(),
			"postmeta",
			"Extractor.parseDate",
			metadata.CauseContentInvalid,
			fmt.Sprintf("unparseable %s %q", field, value),
			[]metadata.Attribute{
				metadata.NewAttr(metadata.AttrPostID, strconv.FormatInt(item.ID, 10)),
				metadata.NewAttr(metadata.AttrField, field),
			},
		)
		return time.Time{}
	}
	return t
}

func (e *Extractor) reportGaps(item fetcher.RawItem, provenance FieldProvenance) {
	fields := []struct {
		name       string
		provenance Provenance
	}{
		{"author", provenance.Author},
		{"categories", provenance.Categories},
		{"tags", provenance.Tags},
		{"featuredImage", provenance.FeaturedImage},
	}
	for _, field := range fields {
		if field.provenance != ProvenancePlaceholder {
			continue
		}
		e.metadataSink.RecordWarning(
			time.Now(),
			"postmeta",
			"Extractor.Extract",
			metadata.CauseMetadataGap,
			fmt.Sprintf("no embedded %s, using placeholder", field.name),
			[]metadata.Attribute{
				metadata.NewAttr(metadata.AttrPostID, strconv.FormatInt(item.ID, 10)),
				metadata.NewAttr(metadata.AttrField, field.name),
			},
		)
	}
}

// decodeText strips markup and decodes entities, e.g. "Q&amp;A" becomes "Q&A".
func decodeText(rendered string) string {
	if !strings.ContainsAny(rendered, "<&") {
		return strings.TrimSpace(rendered)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<div>" + rendered + "</div>"))
	if err != nil {
		return strings.TrimSpace(rendered)
	}
	return strings.TrimSpace(doc.Find("div").First().Text())
}

package postmeta

import "time"

// Provenance tells whether a field came from embedded relation data or was
// synthesised because that data was missing.
type Provenance string

const (
	ProvenanceAbsent      Provenance = "absent"
	ProvenanceResolved    Provenance = "resolved"
	ProvenancePlaceholder Provenance = "placeholder"
)

type Author struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type Term struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type FeaturedImage struct {
	ID      int64  `json:"id"`
	URL     string `json:"url"`
	Alt     string `json:"alt"`
	Caption string `json:"caption"`
}

// FieldProvenance records the resolution path taken for each relational
// field of one PostMeta.
type FieldProvenance struct {
	Author        Provenance `json:"author"`
	Categories    Provenance `json:"categories"`
	Tags          Provenance `json:"tags"`
	FeaturedImage Provenance `json:"featuredImage"`
}

// PostMeta is the normalized metadata of one post or page.
type PostMeta struct {
	ID            int64           `json:"id"`
	Title         string          `json:"title"`
	Slug          string          `json:"slug"`
	Status        string          `json:"status"`
	Type          string          `json:"type"`
	Link          string          `json:"link"`
	Date          time.Time       `json:"date"`
	Modified      time.Time       `json:"modified"`
	Author        *Author         `json:"author,omitempty"`
	Categories    []Term          `json:"categories"`
	Tags          []Term          `json:"tags"`
	FeaturedImage *FeaturedImage  `json:"featuredImage,omitempty"`
	Provenance    FieldProvenance `json:"provenance"`
}

// AuthorName returns the author's display name or "" when there is none.
func (m PostMeta) AuthorName() string {
	if m.Author == nil {
		return ""
	}
	return m.Author.Name
}

// CategoryNames returns the category names in their original order.
func (m PostMeta) CategoryNames() []string {
	return termNames(m.Categories)
}

func (m PostMeta) TagNames() []string {
	return termNames(m.Tags)
}

func termNames(terms []Term) []string {
	names := make([]string, 0, len(terms))
	for _, term := range terms {
		names = append(names, term.Name)
	}
	return names
}

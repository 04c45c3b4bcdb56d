package mdconvert

// Representation

type ConversionResult struct {
	markdownContent []byte
	linkRefs        []LinkRef
}

func NewConversionResult(
	markdownContent []byte,
	linkRefs []LinkRef,
) ConversionResult {
	return ConversionResult{
		markdownContent: markdownContent,
		linkRefs:        linkRefs,
	}
}

func (c *ConversionResult) GetMarkdownContent() []byte {
	return c.markdownContent
}

func (c *ConversionResult) GetLinkRefs() []LinkRef {
	return c.linkRefs
}

// CountKind returns how many references of kind the document holds.
func (c *ConversionResult) CountKind(kind LinkKind) int {
	count := 0
	for _, ref := range c.linkRefs {
		if ref.kind == kind {
			count++
		}
	}
	return count
}

type LinkKind string

const (
	// KindLocalImage is an image rewritten to a downloaded file.
	KindLocalImage LinkKind = "local_image"
	// KindRemoteImage is an image still pointing at its source.
	KindRemoteImage LinkKind = "remote_image"
	// KindPlaceholder is an image replaced by its textual placeholder.
	KindPlaceholder LinkKind = "placeholder"
)

type LinkRef struct {
	raw   string
	kind  LinkKind
	index int
}

func NewLinkRef(
	raw string,
	kind LinkKind,
	index int,
) LinkRef {
	return LinkRef{
		raw:   raw,
		kind:  kind,
		index: index,
	}
}

func (l *LinkRef) GetRaw() string {
	return l.raw
}

func (l *LinkRef) GetKind() LinkKind {
	return l.kind
}

// GetIndex returns the image index, or -1 for references that are not
// tagged images.
func (l *LinkRef) GetIndex() int {
	return l.index
}

// ConvertParam says how tagged images are rendered. Images whose index has
// a local path are rewritten to it. The rest keep their remote source when
// keepRemoteImages is set and become "[Image: alt]" otherwise.
type ConvertParam struct {
	localImages      map[int]string
	keepRemoteImages bool
}

func NewConvertParam(localImages map[int]string, keepRemoteImages bool) ConvertParam {
	if localImages == nil {
		localImages = map[int]string{}
	}
	return ConvertParam{
		localImages:      localImages,
		keepRemoteImages: keepRemoteImages,
	}
}

func (p ConvertParam) LocalImages() map[int]string {
	return p.localImages
}

func (p ConvertParam) KeepRemoteImages() bool {
	return p.keepRemoteImages
}

package metadata

/*
exportStats
  - Represents a terminal, derived summary of a completed export run
  - Contains only aggregate counts and durations
  - Is computed by the scheduler after the run ends
  - Is recorded exactly once
*/
type exportStats struct {
	totalPosts   int
	skippedPosts int
	totalAssets  int
	durationMs   int64
}

/*
	ErrorCause is a closed, canonical classification used exclusively for
	observability (logging, reporting).

	Rules:
	 - ErrorCause MUST NOT influence control flow.
	 - ErrorCause MUST NOT be used for retry, continuation, or abort decisions.
	 - Pipeline packages MAY map their local errors to ErrorCause,
	   but MUST NOT invent new meanings.

If a failure does not clearly match a defined cause, CauseUnknown MUST be used.
*/
type ErrorCause int

/*
Canonical ErrorCause Table

# CauseUnknown
  - The failure does not map cleanly to any known category.

# CauseNetworkFailure
  - Network transport or remote availability (timeouts, DNS, resets, non-2xx).

# CausePolicyDisallow
  - The remote side refused access (HTTP 401/403, 429 rate limiting).

# CauseContentInvalid
  - Content was received but could not be processed meaningfully
    (unparsable markup, malformed JSON, unresolvable asset references).

# CauseStorageFailure
  - Failure while persisting artifacts (disk full, permissions).

# CauseInvariantViolation
  - An internal consistency check failed.

# CauseRetryFailure
  - An operation exhausted its retry budget.

# CauseMetadataGap
  - Embedded relation data was absent and a placeholder was synthesized.
*/
const (
	CauseUnknown ErrorCause = iota
	CauseNetworkFailure
	CausePolicyDisallow
	CauseContentInvalid
	CauseStorageFailure
	CauseInvariantViolation
	CauseRetryFailure
	CauseMetadataGap
)

var causeNames = map[ErrorCause]string{
	CauseUnknown:            "unknown",
	CauseNetworkFailure:     "network_failure",
	CausePolicyDisallow:     "policy_disallow",
	CauseContentInvalid:     "content_invalid",
	CauseStorageFailure:     "storage_failure",
	CauseInvariantViolation: "invariant_violation",
	CauseRetryFailure:       "retry_failure",
	CauseMetadataGap:        "metadata_gap",
}

func (c ErrorCause) String() string {
	if name, ok := causeNames[c]; ok {
		return name
	}
	return causeNames[CauseUnknown]
}

type ArtifactKind string

const (
	ArtifactAsset    ArtifactKind = "asset"
	ArtifactMarkdown ArtifactKind = "markdown"
	ArtifactJSON     ArtifactKind = "json"
)

type Attribute struct {
	Key   AttributeKey
	Value string
}

func NewAttr(key AttributeKey, val string) Attribute {
	return Attribute{
		Key:   key,
		Value: val,
	}
}

type AttributeKey string

const (
	AttrTime       AttributeKey = "time"
	AttrURL        AttributeKey = "url"
	AttrHost       AttributeKey = "host"
	AttrPath       AttributeKey = "path"
	AttrPostID     AttributeKey = "post_id"
	AttrField      AttributeKey = "field"
	AttrHTTPStatus AttributeKey = "http_status"
	AttrAssetURL   AttributeKey = "asset_url"
	AttrAssetIndex AttributeKey = "asset_index"
	AttrWritePath  AttributeKey = "write_path"
	AttrMessage    AttributeKey = "message"
	AttrPage       AttributeKey = "page"
)

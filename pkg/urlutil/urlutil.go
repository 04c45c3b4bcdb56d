package urlutil

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var (
	ErrEmptyURL          = errors.New("empty url")
	ErrDataURI           = errors.New("data uri is not fetchable")
	ErrUnsupportedScheme = errors.New("unsupported url scheme")
)

// Canonicalize applies a deterministic normalization to a URL.
//
// The normalization follows these rules:
//   - Scheme and host are lowercased
//   - Path is cleaned (trailing slashes removed, except for root "/")
//   - Fragments and query parameters are removed
//   - Default ports are omitted (e.g., :80 for http, :443 for https)
//
// Canonicalize(Canonicalize(u)) == Canonicalize(u).
func Canonicalize(sourceUrl url.URL) url.URL {
	canonical := sourceUrl

	canonical.Scheme = strings.ToLower(canonical.Scheme)
	canonical.Host = strings.ToLower(canonical.Host)

	if host, port := canonical.Hostname(), canonical.Port(); port != "" {
		if (canonical.Scheme == "http" && port == "80") ||
			(canonical.Scheme == "https" && port == "443") {
			canonical.Host = host
		}
	}

	if len(canonical.Path) > 1 {
		canonical.Path = strings.TrimRight(canonical.Path, "/")
		if canonical.Path == "" {
			canonical.Path = "/"
		}
	}
	canonical.RawPath = ""

	canonical.Fragment = ""
	canonical.RawFragment = ""
	canonical.RawQuery = ""
	canonical.ForceQuery = false

	return canonical
}

// EnsureScheme prefixes https:// when raw carries no http(s) scheme.
func EnsureScheme(raw string) string {
	trimmed := strings.TrimSpace(raw)
	lower := strings.ToLower(trimmed)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return trimmed
	}
	return "https://" + trimmed
}

// ParseSiteURL turns user input such as "example.com/" into a canonical
// site root like https://example.com.
func ParseSiteURL(raw string) (url.URL, error) {
	if strings.TrimSpace(raw) == "" {
		return url.URL{}, ErrEmptyURL
	}
	parsed, err := url.Parse(EnsureScheme(raw))
	if err != nil {
		return url.URL{}, err
	}
	if parsed.Host == "" {
		return url.URL{}, fmt.Errorf("%w: missing host in %q", ErrUnsupportedScheme, raw)
	}
	site := Canonicalize(*parsed)
	if site.Path == "/" {
		site.Path = ""
	}
	return site, nil
}

// IsDataURI reports whether raw is an inline data: URI.
func IsDataURI(raw string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(raw)), "data:")
}

// ResolveAgainstOrigin resolves an asset reference found in content.
// Absolute http(s) references are returned unchanged, protocol-relative
// references take the base scheme, and anything else is resolved against
// the origin (scheme and host) of base.
func ResolveAgainstOrigin(raw string, base url.URL) (url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return url.URL{}, ErrEmptyURL
	}
	if IsDataURI(trimmed) {
		return url.URL{}, ErrDataURI
	}

	ref, err := url.Parse(trimmed)
	if err != nil {
		return url.URL{}, err
	}

	scheme := base.Scheme
	if scheme == "" {
		scheme = "https"
	}

	var resolved url.URL
	switch {
	case ref.Scheme != "":
		resolved = *ref
	case strings.HasPrefix(trimmed, "//"):
		resolved = *ref
		resolved.Scheme = scheme
	default:
		origin := url.URL{Scheme: scheme, Host: base.Host, Path: "/"}
		resolved = *origin.ResolveReference(ref)
	}

	switch strings.ToLower(resolved.Scheme) {
	case "http", "https":
	default:
		return url.URL{}, fmt.Errorf("%w: %s", ErrUnsupportedScheme, resolved.Scheme)
	}
	if resolved.Host == "" {
		return url.URL{}, fmt.Errorf("%w: missing host in %q", ErrUnsupportedScheme, raw)
	}
	return resolved, nil
}

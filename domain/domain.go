package domain

import (
	"fmt"
	"net/url"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/hupe1980/tabmesh/core"
)

// genericSLDs is the fixed set of generic second-level-domain tokens. When
// the second-to-last hostname label is one of these, the registrable name is
// one label further left ("shop.example.co.uk" names "example", not "co").
var genericSLDs = map[string]bool{
	"co":  true,
	"com": true,
	"gov": true,
	"net": true,
	"edu": true,
	"org": true,
}

// Label returns the capitalized primary-domain label for a URL.
//
// Internal pages (core.InternalScheme) map to the fixed core.InternalLabel
// regardless of path. Bare dotted-quad IPv4 hostnames pass through unchanged,
// without capitalization or splitting. All other hostnames are reduced to
// their registrable label, stripping generic second-level suffixes such as
// ".co.uk", and capitalized on the first rune.
//
// Label never panics; an empty candidate label degrades to being returned
// unchanged. It returns an error only when the URL cannot be parsed or has
// no hostname, and that error is expected to surface through the caller's
// normal failure handling rather than be swallowed here.
func Label(rawURL string) (string, error) {
	if strings.HasPrefix(rawURL, core.InternalScheme) {
		return core.InternalLabel, nil
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse url %q: %w", rawURL, err)
	}

	host := u.Hostname()
	if host == "" {
		return "", fmt.Errorf("url %q has no hostname", rawURL)
	}

	if isDottedQuad(host) {
		return host, nil
	}

	labels := strings.Split(host, ".")
	n := len(labels)

	var name string
	switch {
	case n >= 3 && genericSLDs[labels[n-2]]:
		name = labels[n-3]
	case n >= 2:
		name = labels[n-2]
	default:
		name = labels[0]
	}

	return capitalize(name), nil
}

// isDottedQuad reports whether host is four numeric groups separated by
// dots. The check is deliberately shape-based: any all-numeric quad is
// treated as an address and passed through untouched.
func isDottedQuad(host string) bool {
	parts := strings.Split(host, ".")
	if len(parts) != 4 {
		return false
	}
	for _, p := range parts {
		if p == "" {
			return false
		}
		for _, r := range p {
			if r < '0' || r > '9' {
				return false
			}
		}
	}
	return true
}

// capitalize upper-cases the first rune, returning the input unchanged when
// there is nothing to capitalize.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

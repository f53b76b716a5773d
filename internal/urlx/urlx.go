package urlx

import (
	"net/url"
	"regexp"
	"strings"
)

// ParsedURL is the structural breakdown of a raw URL string.
// Derived, immutable, created per call and discarded after use.
type ParsedURL struct {
	Protocol string // scheme without "://", ex: "https"
	Hostname string // lowercased host, port stripped
	Port     string // empty when absent
	Path     string // escaped path, may be empty
	Query    string // raw query, no leading "?"
	Fragment string
	Full     string // the normalized URL that was actually parsed
}

// DomainParts splits a hostname into registrable components.
//
// The split is a best-effort approximation: last label is the suffix unless
// the last two labels form a known two-level suffix (co.uk style). This is
// deliberately NOT a public-suffix-list lookup; the model was trained with
// the same approximation.
type DomainParts struct {
	Subdomain        string
	Domain           string
	Suffix           string
	FullDomain       string
	RegisteredDomain string
}

// twoLevelSuffixes covers the common ccTLD second-level registrations.
var twoLevelSuffixes = map[string]struct{}{
	"co.uk": {}, "org.uk": {}, "gov.uk": {}, "ac.uk": {},
	"co.jp": {}, "co.in": {}, "co.nz": {}, "co.za": {},
	"com.au": {}, "net.au": {}, "org.au": {},
	"com.br": {}, "com.cn": {}, "com.mx": {}, "com.tr": {},
}

var ipv4Pattern = regexp.MustCompile(`^\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}$`)

// Parse normalizes and structurally parses a raw URL string.
//
// Inputs without an http:// or https:// prefix get http:// prepended before
// parsing, so bare domains are analyzable. Returns nil for input that cannot
// be parsed; callers must treat nil as "cannot analyze" and fail open.
func Parse(raw string) *ParsedURL {
	normalized := Normalize(raw)
	u, err := url.Parse(normalized)
	if err != nil {
		return nil
	}

	host := strings.ToLower(u.Hostname())
	if host == "" {
		return nil
	}

	return &ParsedURL{
		Protocol: u.Scheme,
		Hostname: host,
		Port:     u.Port(),
		Path:     u.EscapedPath(),
		Query:    u.RawQuery,
		Fragment: u.Fragment,
		Full:     normalized,
	}
}

// Normalize prepends http:// when the input lacks an explicit scheme.
// It never alters the host or path being evaluated.
func Normalize(raw string) string {
	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		return raw
	}
	return "http://" + raw
}

// ParseDomain splits a hostname on "." into subdomain/domain/suffix.
func ParseDomain(hostname string) DomainParts {
	hostname = strings.ToLower(hostname)
	parts := DomainParts{FullDomain: hostname, RegisteredDomain: hostname}

	labels := strings.Split(hostname, ".")
	if len(labels) < 2 || IsIPv4(hostname) {
		parts.Domain = hostname
		return parts
	}

	suffixLen := 1
	if len(labels) >= 3 {
		lastTwo := labels[len(labels)-2] + "." + labels[len(labels)-1]
		if _, ok := twoLevelSuffixes[lastTwo]; ok {
			suffixLen = 2
		}
	}

	parts.Suffix = strings.Join(labels[len(labels)-suffixLen:], ".")
	parts.Domain = labels[len(labels)-suffixLen-1]
	if rest := labels[:len(labels)-suffixLen-1]; len(rest) > 0 {
		parts.Subdomain = strings.Join(rest, ".")
	}
	if parts.Domain != "" && parts.Suffix != "" {
		parts.RegisteredDomain = parts.Domain + "." + parts.Suffix
	}
	return parts
}

// RegistrableDomain extracts the registrable domain from a URL or bare
// hostname. Empty string when the input cannot be parsed.
func RegistrableDomain(input string) string {
	host := HostnameOf(input)
	if host == "" {
		return ""
	}
	return ParseDomain(host).RegisteredDomain
}

// HostnameOf returns the lowercased hostname of a URL or bare domain string,
// or "" when unparseable.
func HostnameOf(input string) string {
	p := Parse(input)
	if p == nil {
		return ""
	}
	return p.Hostname
}

// IsIPv4 reports whether host looks like a dotted-quad IPv4 literal.
// Matches the training pipeline's regex: octet ranges are not validated.
func IsIPv4(host string) bool {
	return ipv4Pattern.MatchString(host)
}

// IsIPv6 is a loose IPv6 literal check: non-empty, contains a colon, and
// every character is a hex digit or colon. Approximate, not RFC-exact.
func IsIPv6(host string) bool {
	host = strings.Trim(host, "[]")
	if !strings.Contains(host, ":") {
		return false
	}
	for _, r := range host {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		case r >= 'A' && r <= 'F':
		case r == ':':
		default:
			return false
		}
	}
	return true
}

// IsHTTPS reports whether the raw input carries an explicit https scheme.
func IsHTTPS(raw string) bool {
	return strings.HasPrefix(strings.ToLower(raw), "https://")
}

// CacheKey re-serializes a URL to scheme://host[:port]path[?query], with the
// fragment stripped, so fragment-only differences share one cache entry.
// Falls back to the trimmed raw string when the URL cannot be parsed.
func CacheKey(raw string) string {
	p := Parse(raw)
	if p == nil {
		return strings.TrimSpace(raw)
	}

	var b strings.Builder
	b.WriteString(p.Protocol)
	b.WriteString("://")
	b.WriteString(p.Hostname)
	if p.Port != "" {
		b.WriteString(":")
		b.WriteString(p.Port)
	}
	b.WriteString(p.Path)
	if p.Query != "" {
		b.WriteString("?")
		b.WriteString(p.Query)
	}
	return b.String()
}

package policy

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// defaultPopularDomains seeds the popular-domain override list. These are
// registrable domains with enough traffic that a false block is costlier
// than a missed detection; the threshold manager raises their block bar.
var defaultPopularDomains = []string{
	"google.com", "youtube.com", "facebook.com", "twitter.com", "x.com",
	"instagram.com", "linkedin.com", "github.com", "microsoft.com",
	"apple.com", "amazon.com", "netflix.com", "reddit.com", "wikipedia.org",
	"stackoverflow.com", "medium.com", "twitch.tv", "discord.com",
	"whatsapp.com", "telegram.org", "zoom.us", "dropbox.com", "paypal.com",
	"stripe.com", "shopify.com", "wordpress.com", "blogger.com", "tumblr.com",
}

// document is the on-disk YAML schema for a popular-domain override file.
type document struct {
	PopularDomains []string `yaml:"popular_domains"`
}

// PopularDomains is a read-mostly set of registrable domains, replaceable
// at runtime by the policy reloader.
type PopularDomains struct {
	mu  sync.RWMutex
	set map[string]struct{}
}

// Default returns the built-in list.
func Default() *PopularDomains {
	p := &PopularDomains{}
	p.Replace(defaultPopularDomains)
	return p
}

// LoadFile parses a popular-domains YAML document.
func LoadFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read policy file %s: %w", path, err)
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse policy file %s: %w", path, err)
	}
	if len(doc.PopularDomains) == 0 {
		return nil, fmt.Errorf("policy file %s lists no popular_domains", path)
	}

	domains := make([]string, 0, len(doc.PopularDomains))
	for _, d := range doc.PopularDomains {
		d = strings.ToLower(strings.TrimSpace(d))
		if d == "" {
			continue
		}
		domains = append(domains, d)
	}
	return domains, nil
}

// Contains reports whether the registrable domain is in the popular set.
func (p *PopularDomains) Contains(registrableDomain string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.set[strings.ToLower(registrableDomain)]
	return ok
}

// Replace swaps the whole set.
func (p *PopularDomains) Replace(domains []string) {
	next := make(map[string]struct{}, len(domains))
	for _, d := range domains {
		d = strings.ToLower(strings.TrimSpace(d))
		if d != "" {
			next[d] = struct{}{}
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.set = next
}

// Len returns the number of popular domains.
func (p *PopularDomains) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.set)
}

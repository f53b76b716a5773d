package whitelist

import (
	"sort"
	"strings"
	"sync"

	"github.com/phishblock/phishguard/internal/urlx"
)

// Whitelist is the set of domains the user explicitly trusts. Matching is
// ancestor-directional: whitelisting example.com covers sub.example.com,
// never the reverse.
//
// Entries are stored as lowercased hostnames (scheme and path stripped), so
// adding a full URL and adding its bare domain are equivalent. Persistence
// is owned by the caller via All/Replace snapshots.
type Whitelist struct {
	mu      sync.RWMutex
	domains map[string]struct{}
}

func New() *Whitelist {
	return &Whitelist{domains: make(map[string]struct{})}
}

// Add inserts the domain projection of input. Returns the stored domain and
// whether the set changed; empty string means the input was unparseable.
func (w *Whitelist) Add(input string) (string, bool) {
	d := normalize(input)
	if d == "" {
		return "", false
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, exists := w.domains[d]; exists {
		return d, false
	}
	w.domains[d] = struct{}{}
	return d, true
}

// Remove deletes the domain projection of input. Reports whether an entry
// was actually removed.
func (w *Whitelist) Remove(input string) (string, bool) {
	d := normalize(input)
	if d == "" {
		return "", false
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, exists := w.domains[d]; !exists {
		return d, false
	}
	delete(w.domains, d)
	return d, true
}

// IsWhitelisted reports whether the URL's hostname, or any ancestor domain
// of it down to the two-label registrable form, is in the set.
func (w *Whitelist) IsWhitelisted(url string) bool {
	host := urlx.HostnameOf(url)
	if host == "" {
		return false
	}

	w.mu.RLock()
	defer w.mu.RUnlock()

	labels := strings.Split(host, ".")
	for i := 0; i <= len(labels)-2; i++ {
		candidate := strings.Join(labels[i:], ".")
		if _, ok := w.domains[candidate]; ok {
			return true
		}
	}
	// Single-label hosts (intranet names) are matched exactly.
	if len(labels) < 2 {
		_, ok := w.domains[host]
		return ok
	}
	return false
}

// All returns a sorted snapshot of the whitelisted domains.
func (w *Whitelist) All() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()

	out := make([]string, 0, len(w.domains))
	for d := range w.domains {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

// Replace swaps the whole set, used when restoring persisted state.
func (w *Whitelist) Replace(domains []string) {
	next := make(map[string]struct{}, len(domains))
	for _, d := range domains {
		if n := normalize(d); n != "" {
			next[n] = struct{}{}
		}
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.domains = next
}

// Len returns the number of whitelisted domains.
func (w *Whitelist) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.domains)
}

// normalize projects a URL or bare domain onto its hostname. Label
// structure is preserved: adding b.example.com does not whitelist
// example.com.
func normalize(input string) string {
	input = strings.TrimSpace(input)
	if input == "" {
		return ""
	}
	return urlx.HostnameOf(input)
}

package features

import (
	"math"
	"strings"

	"github.com/phishblock/phishguard/internal/urlx"
)

// Version identifies the feature contract. The model metadata must declare
// the same feature names in the same order or loading fails.
const Version = "v2"

// Names is the fixed feature order shared between training and inference.
// Reordering or renaming an entry silently corrupts every prediction, so
// this is the single constant consumed by both the extractor and the
// load-time contract check.
var Names = []string{
	"domain_length",
	"qty_dot_domain",
	"qty_hyphen_domain",
	"qty_digit_domain",
	"domain_entropy",
	"is_ip",
	"path_length",
	"qty_slash_path",
	"qty_hyphen_path",
	"sus_keywords_count",
	"qty_double_slash",
}

// SuspiciousKeywords are counted once each (presence, not occurrences)
// against the lowercased full URL. The list is part of the trained contract.
var SuspiciousKeywords = []string{
	"login", "verify", "update", "account", "secure", "banking",
	"confirm", "signin", "password", "wallet", "crypto", "admin", "service",
}

// Vector maps feature names to values. Always produced complete; a missing
// key downstream is a contract violation.
type Vector map[string]float64

// Count returns the number of features in the contract.
func Count() int { return len(Names) }

// Extract computes the feature vector for a raw URL string.
//
// Pure and deterministic: no I/O, no hidden state, byte-level scanning
// (not locale-aware). Returns nil exactly when the URL parser fails.
func Extract(rawURL string) Vector {
	p := urlx.Parse(rawURL)
	if p == nil {
		return nil
	}

	domain := p.Hostname
	path := p.Path

	v := Vector{
		"domain_length":      float64(len(domain)),
		"qty_dot_domain":     float64(strings.Count(domain, ".")),
		"qty_hyphen_domain":  float64(strings.Count(domain, "-")),
		"qty_digit_domain":   float64(countDigits(domain)),
		"domain_entropy":     Entropy(domain),
		"is_ip":              0,
		"path_length":        float64(len(path)),
		"qty_slash_path":     float64(strings.Count(path, "/")),
		"qty_hyphen_path":    float64(strings.Count(path, "-")),
		"sus_keywords_count": float64(keywordHits(p.Full)),
		"qty_double_slash":   float64(strings.Count(path, "//")),
	}
	if urlx.IsIPv4(domain) {
		v["is_ip"] = 1
	}
	return v
}

// ToArray maps the named vector to the fixed order, substituting 0 for any
// missing key. The substitution must never trigger in correct operation;
// Missing exists so tests and load-time validation can assert that.
func ToArray(v Vector) []float64 {
	arr := make([]float64, len(Names))
	for i, name := range Names {
		arr[i] = v[name]
	}
	return arr
}

// Missing returns the contract feature names absent from v.
func Missing(v Vector) []string {
	var missing []string
	for _, name := range Names {
		if _, ok := v[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

// Entropy is the Shannon entropy of s over the full 256-value byte alphabet.
//
// The exhaustive scan in ascending byte order is the convention the model
// was trained with; iteration order matters for bit-for-bit reproducibility
// of the floating-point sum, so do not "optimize" this to observed bytes.
func Entropy(s string) float64 {
	if len(s) == 0 {
		return 0
	}

	var counts [256]int
	for i := 0; i < len(s); i++ {
		counts[s[i]]++
	}

	entropy := 0.0
	n := float64(len(s))
	for x := 0; x < 256; x++ {
		if counts[x] == 0 {
			continue
		}
		p := float64(counts[x]) / n
		entropy += -p * math.Log2(p)
	}
	return entropy
}

func countDigits(s string) int {
	n := 0
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			n++
		}
	}
	return n
}

func keywordHits(fullURL string) int {
	lower := strings.ToLower(fullURL)
	hits := 0
	for _, kw := range SuspiciousKeywords {
		if strings.Contains(lower, kw) {
			hits++
		}
	}
	return hits
}

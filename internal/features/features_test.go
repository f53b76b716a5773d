package features

import (
	"math"
	"testing"
)

func TestExtractProducesFullContract(t *testing.T) {
	v := Extract("https://www.example.com/login")
	if v == nil {
		t.Fatal("Extract() returned nil for a valid URL")
	}
	if len(v) != Count() {
		t.Errorf("Extract() produced %d features, want %d", len(v), Count())
	}
	if missing := Missing(v); missing != nil {
		t.Errorf("Extract() missing features: %v", missing)
	}
}

func TestExtractValues(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want map[string]float64
	}{
		{
			name: "simple domain",
			url:  "http://example.com",
			want: map[string]float64{
				"domain_length":      11,
				"qty_dot_domain":     1,
				"qty_hyphen_domain":  0,
				"qty_digit_domain":   0,
				"is_ip":              0,
				"path_length":        0,
				"qty_slash_path":     0,
				"sus_keywords_count": 0,
			},
		},
		{
			name: "hyphenated phishing lookalike",
			url:  "http://secure-login-paypal.com/verify/account",
			want: map[string]float64{
				"domain_length":      23,
				"qty_dot_domain":     1,
				"qty_hyphen_domain":  2,
				"path_length":        15,
				"qty_slash_path":     2,
				"qty_hyphen_path":    0,
				"sus_keywords_count": 4, // secure, login, verify, account
			},
		},
		{
			name: "ip host",
			url:  "http://192.168.1.100/admin",
			want: map[string]float64{
				"is_ip":              1,
				"qty_digit_domain":   10,
				"qty_dot_domain":     3,
				"sus_keywords_count": 1,
			},
		},
		{
			name: "double slash in path",
			url:  "http://example.com/a//b//c",
			want: map[string]float64{
				"qty_double_slash": 2,
				"qty_slash_path":   5,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Extract(tt.url)
			if v == nil {
				t.Fatalf("Extract(%q) = nil", tt.url)
			}
			for name, want := range tt.want {
				if got := v[name]; got != want {
					t.Errorf("%s = %v, want %v", name, got, want)
				}
			}
		})
	}
}

func TestExtractUnparseable(t *testing.T) {
	if v := Extract("http://exa mple.com/\x7f"); v != nil {
		t.Errorf("Extract() = %v, want nil for unparseable input", v)
	}
}

func TestExtractDeterministic(t *testing.T) {
	url := "https://xk7-login9.example-bank.co.uk/verify//account?x=1"
	first := Extract(url)
	for i := 0; i < 100; i++ {
		again := Extract(url)
		for _, name := range Names {
			if again[name] != first[name] {
				t.Fatalf("run %d: %s = %v, first run %v", i, name, again[name], first[name])
			}
		}
	}
}

func TestKeywordCountedOncePerKeyword(t *testing.T) {
	// "login" appears three times but counts once
	v := Extract("http://login-login.com/login")
	if got := v["sus_keywords_count"]; got != 1 {
		t.Errorf("sus_keywords_count = %v, want 1", got)
	}
}

func TestKeywordsCaseInsensitive(t *testing.T) {
	v := Extract("http://example.com/LOGIN/Verify")
	if got := v["sus_keywords_count"]; got != 2 {
		t.Errorf("sus_keywords_count = %v, want 2", got)
	}
}

func TestToArrayOrder(t *testing.T) {
	v := Vector{}
	for i, name := range Names {
		v[name] = float64(i + 1)
	}
	arr := ToArray(v)
	if len(arr) != len(Names) {
		t.Fatalf("ToArray() length = %d, want %d", len(arr), len(Names))
	}
	for i := range arr {
		if arr[i] != float64(i+1) {
			t.Errorf("arr[%d] = %v, want %v", i, arr[i], float64(i+1))
		}
	}
}

func TestToArrayMissingKeyIsZero(t *testing.T) {
	v := Extract("http://example.com")
	delete(v, "domain_entropy")
	arr := ToArray(v)
	idx := -1
	for i, name := range Names {
		if name == "domain_entropy" {
			idx = i
		}
	}
	if arr[idx] != 0 {
		t.Errorf("missing feature should map to 0, got %v", arr[idx])
	}
	if got := Missing(v); len(got) != 1 || got[0] != "domain_entropy" {
		t.Errorf("Missing() = %v, want [domain_entropy]", got)
	}
}

func TestEntropy(t *testing.T) {
	tests := []struct {
		name string
		s    string
		want float64
	}{
		{"empty", "", 0},
		{"single repeated byte", "aaaa", 0},
		{"two bytes even split", "abab", 1},
		{"four distinct bytes", "abcd", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Entropy(tt.s)
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("Entropy(%q) = %v, want %v", tt.s, got, tt.want)
			}
		})
	}
}

func TestEntropyRandomLooksHigherThanEnglish(t *testing.T) {
	word := Entropy("paypal.com")
	noise := Entropy("xq9z-k27v.biz")
	if noise <= word {
		t.Errorf("expected higher entropy for noisy host: noise=%v word=%v", noise, word)
	}
}

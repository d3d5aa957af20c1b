package topic

import (
	"regexp"
	"sort"
	"strings"
)

// Topic is the product/subject a session answers questions about.
// Immutable once handed to the orchestrator; replaced wholesale on re-init.
type Topic struct {
	Primary     string   `json:"primary"`
	Aliases     []string `json:"aliases"`
	Company     string   `json:"company,omitempty"`
	GenericName string   `json:"generic_name,omitempty"`
	Meta        Meta     `json:"meta"`
}

// Meta records where the topic text came from and whether OCR was involved.
type Meta struct {
	Source   string `json:"source"` // "manual" | "pdf" | "url"
	Filename string `json:"filename,omitempty"`
	OCRUsed  *bool  `json:"ocr_used,omitempty"`
	OCRError string `json:"ocr_error,omitempty"`
}

const (
	SourceManual = "manual"
	SourcePDF    = "pdf"
	SourceURL    = "url"
)

const (
	unknownProduct = "Unknown Product"
	maxAliases     = 6

	headWindow  = 3000 // candidate generation scans this much of the text
	scoreWindow = 2000 // frequency scoring window
	titleLines  = 20   // lines scanned for capitalized title phrases
)

var (
	brandGenericRe = regexp.MustCompile(`([A-Z][A-Za-z0-9\-]+)\s*\(([^)]+)\)`)
	trademarkRe    = regexp.MustCompile(`([A-Z][A-Za-z0-9\-]+)[®™]`)
	titleRe        = regexp.MustCompile(`([A-Z][A-Za-z0-9]+(?:\s[A-Z0-9][A-Za-z0-9\-]+){0,4})`)
	properRe       = regexp.MustCompile(`\b[A-Z][A-Za-z0-9\-]{2,}(?:\s[A-Z0-9][A-Za-z0-9\-]{2,}){0,3}\b`)
)

var stopPhrases = []string{"Limited", "Warranty", "Manual", "Guide", "User", "Instructions"}

// rule is one candidate extraction step. Rules run in a fixed order and
// candidates keep their discovery order, which doubles as the tie-break
// when frequency and length are equal (first discovered wins).
type rule struct {
	name    string
	extract func(d *detection) []string
}

type detection struct {
	text     string
	head     string // first headWindow chars
	nameHint string
}

var rules = []rule{
	{
		// "Brand (Generic)" parenthetical pairs; both halves are candidates.
		name: "brand-generic",
		extract: func(d *detection) []string {
			var out []string
			for _, m := range brandGenericRe.FindAllStringSubmatch(d.head, -1) {
				out = append(out, strings.TrimSpace(m[1]), strings.TrimSpace(m[2]))
			}
			return out
		},
	},
	{
		// Trademark-marked capitalized tokens.
		name: "trademark",
		extract: func(d *detection) []string {
			var out []string
			for _, m := range trademarkRe.FindAllStringSubmatch(d.head, -1) {
				out = append(out, strings.TrimSpace(m[1]))
			}
			return out
		},
	},
	{
		// Capitalized phrases (<=5 words) in the leading lines of the whole
		// text, excluding generic document words.
		name: "title-lines",
		extract: func(d *detection) []string {
			lines := strings.Split(d.text, "\n")
			if len(lines) > titleLines {
				lines = lines[:titleLines]
			}
			firstLines := strings.Join(lines, "\n")

			var out []string
			for _, t := range titleRe.FindAllString(firstLines, -1) {
				t = strings.TrimSpace(t)
				if len(strings.Fields(t)) > 5 || containsStopPhrase(t) {
					continue
				}
				out = append(out, t)
			}
			return out
		},
	},
	{
		name: "name-hint",
		extract: func(d *detection) []string {
			hint := strings.TrimSpace(d.nameHint)
			if hint == "" {
				return nil
			}
			return []string{hint}
		},
	},
}

func containsStopPhrase(s string) bool {
	for _, stop := range stopPhrases {
		if strings.Contains(s, stop) {
			return true
		}
	}
	return false
}

// Detect extracts a canonical product name plus aliases from raw text.
// Best-effort heuristics only; it never fails, falling back to
// "Unknown Product" when neither text nor hint yields a candidate.
func Detect(text, nameHint string) Topic {
	d := &detection{
		text:     text,
		head:     runePrefix(text, headWindow),
		nameHint: nameHint,
	}

	var candidates []string
	seen := make(map[string]bool)
	for _, r := range rules {
		for _, c := range r.extract(d) {
			if c == "" || seen[c] {
				continue
			}
			seen[c] = true
			candidates = append(candidates, c)
		}
	}

	primary := unknownProduct
	if text != "" || len(candidates) > 0 {
		primary = scoreCandidates(text, candidates)
	} else if hint := strings.TrimSpace(nameHint); hint != "" {
		primary = hint
	}

	t := Topic{Primary: primary, Aliases: []string{}}

	if m := brandGenericRe.FindStringSubmatch(d.head); m != nil {
		t.GenericName = strings.TrimSpace(m[2])
	}

	for _, c := range candidates {
		if c == primary {
			continue
		}
		t.Aliases = append(t.Aliases, c)
		if len(t.Aliases) >= maxAliases {
			break
		}
	}

	return t
}

// scoreCandidates ranks by occurrence count of capitalized-phrase tokens in
// the scoring window, then by phrase length (longer, more specific names win
// ties). Every explicit candidate counts at least once even when absent from
// the window.
func scoreCandidates(text string, candidates []string) string {
	if len(candidates) == 0 {
		return unknownProduct
	}

	freq := make(map[string]int)
	for _, tok := range properRe.FindAllString(runePrefix(text, scoreWindow), -1) {
		freq[tok]++
	}
	for _, c := range candidates {
		if freq[c] == 0 {
			freq[c] = 1
		}
	}

	ranked := make([]string, len(candidates))
	copy(ranked, candidates)
	sort.SliceStable(ranked, func(i, j int) bool {
		if freq[ranked[i]] != freq[ranked[j]] {
			return freq[ranked[i]] > freq[ranked[j]]
		}
		return len(ranked[i]) > len(ranked[j])
	})

	return ranked[0]
}

// Fallback builds the degraded topic used when detection is unusable.
func Fallback(nameHint string) Topic {
	primary := strings.TrimSpace(nameHint)
	if primary == "" {
		primary = "Unknown Topic"
	}
	return Topic{Primary: primary, Aliases: []string{primary}}
}

func runePrefix(s string, n int) string {
	if len(s) <= n {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

package suggest

import (
	"bufio"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"sync"
)

//go:embed words.txt
var defaultWords string

var ErrDictionaryUnavailable = errors.New("dictionary unavailable")

// Dictionary is a word list ranked by frequency, 1 being the most common.
type Dictionary struct {
	words   map[string]int
	byFirst map[byte][]string
}

func NewDictionary(words []string) *Dictionary {
	d := &Dictionary{
		words:   make(map[string]int, len(words)),
		byFirst: make(map[byte][]string),
	}
	for _, w := range words {
		d.add(w)
	}
	return d
}

func (d *Dictionary) add(w string) {
	w = strings.ToLower(strings.TrimSpace(w))
	if w == "" {
		return
	}
	if _, ok := d.words[w]; ok {
		return
	}
	d.words[w] = len(d.words) + 1
	d.byFirst[w[0]] = append(d.byFirst[w[0]], w)
}

func LoadDictionary(r io.Reader) (*Dictionary, error) {
	d := NewDictionary(nil)
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		for _, w := range strings.Fields(line) {
			d.add(w)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read dictionary: %w", err)
	}
	return d, nil
}

func LoadDictionaryFile(path string) (*Dictionary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dictionary: %w", err)
	}
	defer f.Close()
	return LoadDictionary(f)
}

var defaultDictionary = sync.OnceValue(func() *Dictionary {
	d, _ := LoadDictionary(strings.NewReader(defaultWords))
	return d
})

func DefaultDictionary() *Dictionary {
	return defaultDictionary()
}

func (d *Dictionary) Len() int {
	if d == nil {
		return 0
	}
	return len(d.words)
}

// Contains reports whether word is known. Regular inflections, common
// prefixes and two-word compounds such as "painkiller" count as known.
func (d *Dictionary) Contains(word string) bool {
	w := strings.ToLower(word)
	if d.known(w) {
		return true
	}
	for _, p := range prefixes {
		rest, ok := strings.CutPrefix(w, p)
		if ok && len(rest) >= 4 && d.known(rest) {
			return true
		}
	}
	for i := 3; i <= len(w)-3; i++ {
		if _, ok := d.words[w[:i]]; ok && d.known(w[i:]) {
			return true
		}
	}
	return false
}

func (d *Dictionary) known(w string) bool {
	if _, ok := d.words[w]; ok {
		return true
	}
	w = strings.TrimSuffix(w, "'s")
	if _, ok := d.words[w]; ok {
		return true
	}
	for _, stem := range stems(w) {
		if _, ok := d.words[stem]; ok {
			return true
		}
	}
	return false
}

var prefixes = []string{"un", "re", "dis", "mis", "non", "pre", "over", "under", "out", "sub", "super", "inter", "anti", "co", "multi", "self"}

var suffixes = []struct {
	suffix string
	adds   []string
}{
	{"ies", []string{"y"}},
	{"ied", []string{"y"}},
	{"ier", []string{"y"}},
	{"iest", []string{"y"}},
	{"ily", []string{"y"}},
	{"ing", []string{"", "e"}},
	{"ed", []string{"", "e"}},
	{"es", []string{""}},
	{"s", []string{""}},
	{"er", []string{"", "e"}},
	{"est", []string{"", "e"}},
	{"ly", []string{""}},
	{"ness", []string{""}},
	{"ment", []string{""}},
	{"ful", []string{""}},
	{"less", []string{""}},
}

func stems(w string) []string {
	var out []string
	for _, sf := range suffixes {
		base, ok := strings.CutSuffix(w, sf.suffix)
		if !ok || len(base) < 2 {
			continue
		}
		for _, add := range sf.adds {
			out = append(out, base+add)
		}
		// stopped -> stop
		if n := len(base); n >= 3 && base[n-1] == base[n-2] {
			out = append(out, base[:n-1])
		}
	}
	return out
}

// Closest returns the known word nearest to word by edit distance, limited to
// words sharing its first letter. Words shorter than eight letters only match
// at distance one. Ties go to the more frequent word.
func (d *Dictionary) Closest(word string) (string, bool) {
	w := strings.ToLower(word)
	if w == "" {
		return "", false
	}
	maxDist := 1
	if len(w) >= 8 {
		maxDist = 2
	}
	best, bestDist, bestRank := "", maxDist+1, 0
	for _, cand := range d.byFirst[w[0]] {
		diff := len(cand) - len(w)
		if diff < 0 {
			diff = -diff
		}
		if diff > maxDist {
			continue
		}
		dist := editDistance(w, cand)
		rank := d.words[cand]
		if dist < bestDist || (dist == bestDist && rank < bestRank) {
			best, bestDist, bestRank = cand, dist, rank
		}
	}
	return best, best != ""
}

// editDistance counts insertions, deletions, substitutions and adjacent
// transpositions.
func editDistance(a, b string) int {
	if a == b {
		return 0
	}
	prev2 := make([]int, len(b)+1)
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
			if i > 1 && j > 1 && a[i-1] == b[j-2] && a[i-2] == b[j-1] {
				curr[j] = min(curr[j], prev2[j-2]+1)
			}
		}
		prev2, prev, curr = prev, curr, prev2
	}
	return prev[len(b)]
}

var dictToken = regexp.MustCompile(`[A-Za-z']+`)

type DictionarySource struct {
	dict *Dictionary
}

func NewDictionarySource(dict *Dictionary) *DictionarySource {
	return &DictionarySource{dict: dict}
}

func (s *DictionarySource) Name() string {
	return "dictionary"
}

func (s *DictionarySource) Check(text string, prior []Suggestion) ([]Suggestion, error) {
	if s.dict.Len() == 0 {
		return nil, ErrDictionaryUnavailable
	}
	var out []Suggestion
	for _, loc := range dictToken.FindAllStringIndex(text, -1) {
		start, end := loc[0], loc[1]
		for start < end && text[start] == '\'' {
			start++
		}
		for end > start && text[end-1] == '\'' {
			end--
		}
		word := text[start:end]
		if len(word) < 3 || coveredBy(prior, start, end) {
			continue
		}
		lookup, ok := checkable(text, start, word)
		if !ok || s.dict.Contains(lookup) {
			continue
		}
		fix, ok := s.dict.Closest(lookup)
		if !ok {
			continue
		}
		fix = matchCase(word, fix)
		out = append(out, Suggestion{
			Start:       start,
			End:         end,
			Category:    CategorySpelling,
			Original:    word,
			Replacement: fix,
			Message:     fmt.Sprintf("Spelling: %q may be misspelled; did you mean %q?", word, fix),
		})
	}
	return out, nil
}

// checkable returns the form of word to look up. Lower-case words are always
// checked. A capitalised word is only checked at the start of a sentence;
// elsewhere it is taken as a proper noun. Acronyms and mixed-case identifiers
// such as "HTTP" or "iPhone" are skipped.
func checkable(text string, start int, word string) (string, bool) {
	for i := 1; i < len(word); i++ {
		if isUpperASCII(word[i]) {
			return "", false
		}
	}
	if !isUpperASCII(word[0]) {
		return word, true
	}
	if !sentenceStart(text, start) {
		return "", false
	}
	return strings.ToLower(word), true
}

func isUpperASCII(b byte) bool {
	return 'A' <= b && b <= 'Z'
}

// sentenceStart reports whether only openers such as quotes, brackets or
// list markers sit between pos and the previous sentence end or line break.
func sentenceStart(text string, pos int) bool {
	for i := pos - 1; i >= 0; i-- {
		switch text[i] {
		case ' ', '\t', '"', '\'', '(', '[', '*', '_', '#', '>', '-':
			continue
		case '.', '!', '?', '\n', '\r':
			return true
		default:
			return false
		}
	}
	return true
}

func coveredBy(prior []Suggestion, start, end int) bool {
	for _, p := range prior {
		if p.Overlaps(start, end) {
			return true
		}
	}
	return false
}

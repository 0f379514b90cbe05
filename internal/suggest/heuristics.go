package suggest

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

var passivePattern = regexp.MustCompile(`(?i)\b(am|is|are|was|were|be|being|been)\s+([a-z]+ed)\b`)

// Words ending in "ed" that are not past participles, or that read as
// adjectives after a form of "to be".
var notParticiple = map[string]struct{}{
	"bed": {}, "red": {}, "shed": {}, "sled": {}, "fled": {}, "led": {}, "wed": {},
	"bred": {}, "shred": {}, "sped": {}, "hundred": {}, "naked": {}, "sacred": {},
	"wicked": {}, "rugged": {}, "ragged": {}, "jagged": {}, "crooked": {}, "beloved": {},
	"interested": {}, "tired": {}, "bored": {}, "excited": {}, "worried": {}, "scared": {},
	"married": {}, "pleased": {}, "surprised": {}, "supposed": {}, "used": {}, "concerned": {},
	"related": {}, "qualified": {}, "involved": {}, "prepared": {}, "determined": {},
	"confused": {}, "embarrassed": {}, "satisfied": {}, "annoyed": {}, "ashamed": {},
	"based": {}, "detailed": {}, "advanced": {}, "limited": {}, "complicated": {},
}

type PassiveVoiceSource struct{}

func (PassiveVoiceSource) Name() string {
	return "passive_voice"
}

func (PassiveVoiceSource) Check(text string, _ []Suggestion) ([]Suggestion, error) {
	var out []Suggestion
	for _, m := range passivePattern.FindAllStringSubmatchIndex(text, -1) {
		verb := strings.ToLower(text[m[4]:m[5]])
		if strings.HasSuffix(verb, "eed") {
			continue
		}
		if _, ok := notParticiple[verb]; ok {
			continue
		}
		original := text[m[0]:m[1]]
		out = append(out, Suggestion{
			Start:       m[0],
			End:         m[1],
			Category:    CategoryStyle,
			Original:    original,
			Replacement: original,
			Message:     "Style: Consider using active voice for stronger, clearer writing",
		})
	}
	return out, nil
}

const DefaultLongSentenceWords = 25

var sentenceTerminator = regexp.MustCompile(`[.!?]+`)

type LongSentenceSource struct {
	threshold int
}

func NewLongSentenceSource(threshold int) *LongSentenceSource {
	if threshold <= 0 {
		threshold = DefaultLongSentenceWords
	}
	return &LongSentenceSource{threshold: threshold}
}

func (s *LongSentenceSource) Name() string {
	return "long_sentence"
}

func (s *LongSentenceSource) Check(text string, _ []Suggestion) ([]Suggestion, error) {
	var out []Suggestion
	start := 0
	flush := func(end int) {
		seg := text[start:end]
		lead := len(seg) - len(strings.TrimLeftFunc(seg, unicode.IsSpace))
		body := strings.TrimSpace(seg)
		if body == "" {
			return
		}
		words := len(strings.Fields(body))
		if words <= s.threshold {
			return
		}
		from := start + lead
		out = append(out, Suggestion{
			Start:       from,
			End:         from + len(body),
			Category:    CategoryStyle,
			Original:    body,
			Replacement: body,
			Message:     fmt.Sprintf("Style: This sentence has %d words. Consider breaking it into shorter sentences", words),
		})
	}
	for _, loc := range sentenceTerminator.FindAllStringIndex(text, -1) {
		flush(loc[0])
		start = loc[1]
	}
	flush(len(text))
	return out, nil
}

var wordToken = regexp.MustCompile(`[\p{L}\p{N}_']+`)

// Intensifiers are doubled on purpose often enough ("very very") to be noise.
var repeatAllowed = map[string]struct{}{
	"very": {}, "so": {}, "really": {}, "quite": {},
}

type RepeatedWordSource struct{}

func (RepeatedWordSource) Name() string {
	return "repeated_word"
}

func (RepeatedWordSource) Check(text string, _ []Suggestion) ([]Suggestion, error) {
	var out []Suggestion
	tokens := wordToken.FindAllStringIndex(text, -1)
	for i := 0; i < len(tokens); {
		word := text[tokens[i][0]:tokens[i][1]]
		j := i + 1
		for j < len(tokens) &&
			strings.TrimSpace(text[tokens[j-1][1]:tokens[j][0]]) == "" &&
			strings.EqualFold(text[tokens[j][0]:tokens[j][1]], word) {
			j++
		}
		if j-i > 1 && !skipRepeat(word) {
			start, end := tokens[i][0], tokens[j-1][1]
			out = append(out, Suggestion{
				Start:       start,
				End:         end,
				Category:    CategoryGrammar,
				Original:    text[start:end],
				Replacement: word,
				Message:     fmt.Sprintf("Grammar: Repeated word %q detected", word),
			})
		}
		i = j
	}
	return out, nil
}

func skipRepeat(word string) bool {
	if _, ok := repeatAllowed[strings.ToLower(word)]; ok {
		return true
	}
	for _, r := range word {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

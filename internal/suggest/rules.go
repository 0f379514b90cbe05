package suggest

import (
	"regexp"
	"unicode"
	"unicode/utf8"
)

// Rule is one row of the pattern table. Replace and Message are expansion
// templates evaluated against the individual match, so "${1}" refers to the
// first capture group of that match only.
type Rule struct {
	Pattern  *regexp.Regexp
	Category Category
	Replace  string
	Message  string
	// Accept, when set, can veto a match. RE2 has no backreferences, so rules
	// like "a a" express the equality check here.
	Accept func(text string, match []int) bool
}

func misspelling(wrong, right string) Rule {
	return Rule{
		Pattern:  regexp.MustCompile(`(?i)\b` + wrong + `\b`),
		Category: CategorySpelling,
		Replace:  right,
		Message:  `Spelling error: "` + wrong + `" should be "` + right + `"`,
	}
}

func wordy(pattern, replace, phrase string) Rule {
	return Rule{
		Pattern:  regexp.MustCompile(`(?i)\b` + pattern + `\b`),
		Category: CategoryStyle,
		Replace:  replace,
		Message:  `Style: "` + phrase + `" can often be simplified to "` + replace + `"`,
	}
}

func sameGroups(a, b int) func(string, []int) bool {
	return func(text string, m []int) bool {
		return equalFold(text[m[2*a]:m[2*a+1]], text[m[2*b]:m[2*b+1]])
	}
}

var DefaultRules = []Rule{
	misspelling("teh", "the"),
	misspelling("recieve", "receive"),
	misspelling("recieved", "received"),
	misspelling("occured", "occurred"),
	misspelling("occurence", "occurrence"),
	misspelling("seperate", "separate"),
	misspelling("seperately", "separately"),
	misspelling("definately", "definitely"),
	misspelling("untill", "until"),
	misspelling("wich", "which"),
	misspelling("thier", "their"),
	misspelling("alot", "a lot"),
	misspelling("accomodate", "accommodate"),
	misspelling("acheive", "achieve"),
	misspelling("beleive", "believe"),
	misspelling("goverment", "government"),
	misspelling("enviroment", "environment"),
	misspelling("tommorow", "tomorrow"),
	misspelling("wierd", "weird"),
	misspelling("neccessary", "necessary"),
	misspelling("occassion", "occasion"),
	misspelling("publically", "publicly"),
	misspelling("arguement", "argument"),
	misspelling("begining", "beginning"),
	misspelling("calender", "calendar"),
	misspelling("concious", "conscious"),
	misspelling("existance", "existence"),
	misspelling("independant", "independent"),
	misspelling("noticable", "noticeable"),
	misspelling("persistant", "persistent"),
	misspelling("refered", "referred"),
	misspelling("succesful", "successful"),
	misspelling("truely", "truly"),
	misspelling("becuase", "because"),
	{
		Pattern:  regexp.MustCompile(`(?i)\bit'?s\s+important\s+to\s+note\s+that\b`),
		Category: CategoryStyle,
		Replace:  "notably",
		Message:  `Style: Consider using "notably" instead of "it's important to note that"`,
	},
	wordy(`in\s+order\s+to`, "to", "In order to"),
	wordy(`due\s+to\s+the\s+fact\s+that`, "because", "Due to the fact that"),
	wordy(`at\s+this\s+point\s+in\s+time`, "now", "At this point in time"),
	wordy(`for\s+the\s+purpose\s+of`, "to", "For the purpose of"),
	wordy(`in\s+spite\s+of\s+the\s+fact\s+that`, "although", "In spite of the fact that"),
	wordy(`has\s+the\s+ability\s+to`, "can", "Has the ability to"),
	wordy(`in\s+the\s+event\s+that`, "if", "In the event that"),
	wordy(`a\s+large\s+number\s+of`, "many", "A large number of"),
	wordy(`each\s+and\s+every`, "each", "Each and every"),
	wordy(`absolutely\s+essential`, "essential", "Absolutely essential"),
	wordy(`end\s+result`, "result", "End result"),
	{
		Pattern:  regexp.MustCompile(`(?i)\b(an?|the)\s+(an?|the)\b`),
		Category: CategoryGrammar,
		Replace:  "${1}",
		Message:  "Grammar: Duplicate article detected",
		Accept:   sameGroups(1, 2),
	},
	{
		Pattern:  regexp.MustCompile(`(?i)\b(would|could|should|must|might)\s+of\b`),
		Category: CategoryGrammar,
		Replace:  "${1} have",
		Message:  `Grammar: "${1} of" should be "${1} have"`,
	},
	{
		Pattern:  regexp.MustCompile(`(?i)\birregardless\b`),
		Category: CategoryGrammar,
		Replace:  "regardless",
		Message:  `Grammar: "irregardless" should be "regardless"`,
	},
}

type RuleSource struct {
	rules []Rule
}

func NewRuleSource(rules []Rule) *RuleSource {
	return &RuleSource{rules: rules}
}

func (s *RuleSource) Name() string {
	return "rules"
}

func (s *RuleSource) Check(text string, _ []Suggestion) ([]Suggestion, error) {
	var out []Suggestion
	for _, rule := range s.rules {
		for _, m := range rule.Pattern.FindAllStringSubmatchIndex(text, -1) {
			if rule.Accept != nil && !rule.Accept(text, m) {
				continue
			}
			original := text[m[0]:m[1]]
			replacement := string(rule.Pattern.ExpandString(nil, rule.Replace, text, m))
			out = append(out, Suggestion{
				Start:       m[0],
				End:         m[1],
				Category:    rule.Category,
				Original:    original,
				Replacement: matchCase(original, replacement),
				Message:     string(rule.Pattern.ExpandString(nil, rule.Message, text, m)),
			})
		}
	}
	return out, nil
}

// matchCase capitalises replacement when the text it replaces starts with an
// upper-case letter.
func matchCase(original, replacement string) string {
	o, _ := utf8.DecodeRuneInString(original)
	r, size := utf8.DecodeRuneInString(replacement)
	if !unicode.IsUpper(o) || !unicode.IsLower(r) {
		return replacement
	}
	return string(unicode.ToUpper(r)) + replacement[size:]
}

func equalFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if 'A' <= ca && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if 'A' <= cb && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}

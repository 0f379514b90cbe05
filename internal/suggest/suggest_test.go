package suggest

import (
	"errors"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func find(list []Suggestion, original string) (Suggestion, bool) {
	for _, s := range list {
		if s.Original == original {
			return s, true
		}
	}
	return Suggestion{}, false
}

func TestSuggestCommonMisspelling(t *testing.T) {
	res := NewDefault(Options{}).Suggest("I teh best")
	s, ok := find(res, "teh")
	require.True(t, ok)
	assert.Equal(t, CategorySpelling, s.Category)
	assert.Equal(t, "the", s.Replacement)
	assert.Equal(t, 2, s.Start)
	assert.Equal(t, 5, s.End)
}

func TestSuggestWouldOf(t *testing.T) {
	res := NewDefault(Options{}).Suggest("I would of gone")
	s, ok := find(res, "would of")
	require.True(t, ok)
	assert.Equal(t, CategoryGrammar, s.Category)
	assert.Equal(t, "would have", s.Replacement)
	assert.Equal(t, `Grammar: "would of" should be "would have"`, s.Message)
}

func TestSuggestKeepsCapitalisation(t *testing.T) {
	res := NewDefault(Options{}).Suggest("Teh cat sat.")
	s, ok := find(res, "Teh")
	require.True(t, ok)
	assert.Equal(t, "The", s.Replacement)
}

func TestSuggestEmpty(t *testing.T) {
	e := NewDefault(Options{})
	assert.Empty(t, e.Suggest(""))
	assert.Empty(t, e.Suggest("   \n\t"))
	assert.NotNil(t, e.Suggest(""))
}

func TestSuggestWordyPhrase(t *testing.T) {
	res := NewDefault(Options{}).Suggest("We left early in order to win.")
	s, ok := find(res, "in order to")
	require.True(t, ok)
	assert.Equal(t, CategoryStyle, s.Category)
	assert.Equal(t, "to", s.Replacement)
}

func TestSuggestDuplicateArticle(t *testing.T) {
	e := New(NewRuleSource(DefaultRules))
	res := e.Suggest("She saw a a bird and an a cat.")
	require.Len(t, res, 1)
	assert.Equal(t, "a a", res[0].Original)
	assert.Equal(t, "a", res[0].Replacement)
}

func TestSuggestPassiveVoice(t *testing.T) {
	res := New(PassiveVoiceSource{}).Suggest("The window was opened by the boy. She is tired.")
	require.Len(t, res, 1)
	assert.Equal(t, "was opened", res[0].Original)
	assert.Equal(t, "was opened", res[0].Replacement)
	assert.Equal(t, CategoryStyle, res[0].Category)
}

func TestSuggestLongSentence(t *testing.T) {
	long := strings.TrimSpace(strings.Repeat("go home now ", 10))
	text := "Short one. " + long + "."
	res := New(NewLongSentenceSource(25)).Suggest(text)
	require.Len(t, res, 1)
	assert.Equal(t, len("Short one. "), res[0].Start)
	assert.Equal(t, long, res[0].Original)
	assert.Contains(t, res[0].Message, "30 words")

	assert.Empty(t, New(NewLongSentenceSource(30)).Suggest(text))
}

func TestSuggestRepeatedWord(t *testing.T) {
	e := New(RepeatedWordSource{})
	res := e.Suggest("This is is a test.")
	require.Len(t, res, 1)
	assert.Equal(t, "is is", res[0].Original)
	assert.Equal(t, "is", res[0].Replacement)
	assert.Equal(t, CategoryGrammar, res[0].Category)

	assert.Empty(t, e.Suggest("It was very very good and so so quick."))
	assert.Empty(t, e.Suggest("Call 555 555 now."))
	assert.Empty(t, e.Suggest("It is. Is it?"))
}

func TestSuggestDictionary(t *testing.T) {
	res := New(NewDictionarySource(DefaultDictionary())).Suggest("The quikc brown fox")
	require.Len(t, res, 1)
	assert.Equal(t, "quikc", res[0].Original)
	assert.Equal(t, "quick", res[0].Replacement)
	assert.Equal(t, CategorySpelling, res[0].Category)
}

func TestSuggestDictionarySkipsPriorRanges(t *testing.T) {
	e := New(NewRuleSource(DefaultRules), NewDictionarySource(DefaultDictionary()))
	res := e.Suggest("I teh best")
	require.Len(t, res, 1)
	assert.Equal(t, "the", res[0].Replacement)
}

func TestSuggestCharacterOffsets(t *testing.T) {
	text := "Café teh best"
	res := NewDefault(Options{}).Suggest(text)
	s, ok := find(res, "teh")
	require.True(t, ok)
	assert.Equal(t, 5, s.Start)
	assert.Equal(t, 8, s.End)
	out, err := Apply(text, s)
	require.NoError(t, err)
	assert.Equal(t, "Café the best", out)
}

type stubSource struct {
	name string
	out  []Suggestion
	err  error
	boom bool
}

func (s stubSource) Name() string { return s.name }

func (s stubSource) Check(string, []Suggestion) ([]Suggestion, error) {
	if s.boom {
		panic("boom")
	}
	return s.out, s.err
}

func TestEngineFirstWinsOnOverlap(t *testing.T) {
	e := New(
		stubSource{name: "a", out: []Suggestion{{Start: 0, End: 5, Category: CategoryStyle, Replacement: "x"}}},
		stubSource{name: "b", out: []Suggestion{
			{Start: 0, End: 3, Category: CategoryGrammar, Replacement: "y"},
			{Start: 4, End: 8, Category: CategorySpelling, Replacement: "z"},
			{Start: 6, End: 9, Category: CategorySpelling, Replacement: "w"},
		}},
	)
	res := e.Suggest("abcdefghij")
	require.Len(t, res, 2)
	assert.Equal(t, "x", res[0].Replacement)
	assert.Equal(t, "abcde", res[0].Original)
	assert.Equal(t, "w", res[1].Replacement)
	assert.Equal(t, "ghi", res[1].Original)
}

func TestEngineAdjacentRangesBothKept(t *testing.T) {
	e := New(stubSource{name: "a", out: []Suggestion{
		{Start: 3, End: 6, Category: CategoryStyle},
		{Start: 0, End: 3, Category: CategoryStyle},
	}})
	res := e.Suggest("abcdefghij")
	require.Len(t, res, 2)
	assert.Equal(t, 0, res[0].Start)
	assert.Equal(t, 3, res[1].Start)
}

func TestEngineSkipsBrokenSources(t *testing.T) {
	good := stubSource{name: "good", out: []Suggestion{{Start: 0, End: 1, Category: CategoryStyle}}}
	e := New(
		stubSource{name: "err", err: errors.New("down"), out: []Suggestion{{Start: 0, End: 4, Category: CategoryStyle}}},
		stubSource{name: "panic", boom: true},
		stubSource{name: "bad", out: []Suggestion{
			{Start: 2, End: 99, Category: CategoryStyle},
			{Start: 5, End: 6, Category: "tone"},
		}},
		good,
	)
	res := e.Suggest("abcdefg")
	require.Len(t, res, 1)
	assert.Equal(t, "a", res[0].Original)
	assert.Equal(t, []string{"err", "panic", "bad", "good"}, e.Sources())
}

func TestNewDefaultDisabled(t *testing.T) {
	e := NewDefault(Options{Disabled: []string{"dictionary", "passive_voice"}})
	assert.Equal(t, []string{"rules", "long_sentence", "repeated_word"}, e.Sources())
}

func TestSuggestNeverOverlaps(t *testing.T) {
	vocab := []string{
		"teh", "the", "would", "of", "a", "in", "order", "to", "was", "opened", "is", "is",
		"quikc", "café", "very", "recieve", "due", "fact", "that", "alot", "an", ".", "!", "\n",
		"irregardless", "were", "jumped", "each", "and", "every",
	}
	e := NewDefault(Options{LongSentenceWords: 8})
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 300; i++ {
		n := 1 + rng.Intn(40)
		parts := make([]string, n)
		for j := range parts {
			parts[j] = vocab[rng.Intn(len(vocab))]
		}
		text := strings.Join(parts, " ")
		runes := []rune(text)
		res := e.Suggest(text)
		for k, s := range res {
			require.True(t, s.Start >= 0 && s.Start < s.End && s.End <= len(runes), "range %d-%d in %q", s.Start, s.End, text)
			assert.Equal(t, string(runes[s.Start:s.End]), s.Original)
			if k > 0 {
				require.GreaterOrEqual(t, s.Start, res[k-1].End, "overlap in %q", text)
			}
		}
	}
}

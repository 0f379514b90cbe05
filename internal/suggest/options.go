package suggest

import "slices"

type Options struct {
	LongSentenceWords int
	Dictionary        *Dictionary
	// Disabled lists source names to leave out, e.g. "dictionary".
	Disabled []string
}

// NewDefault builds the standard source order: the rule table, then the
// dictionary, then the passive voice, long sentence and repeated word checks.
func NewDefault(opts Options) *Engine {
	dict := opts.Dictionary
	if dict == nil {
		dict = DefaultDictionary()
	}
	all := []Source{
		NewRuleSource(DefaultRules),
		NewDictionarySource(dict),
		PassiveVoiceSource{},
		NewLongSentenceSource(opts.LongSentenceWords),
		RepeatedWordSource{},
	}
	sources := make([]Source, 0, len(all))
	for _, src := range all {
		if slices.Contains(opts.Disabled, src.Name()) {
			continue
		}
		sources = append(sources, src)
	}
	return New(sources...)
}

package readability

func Recommendations(m Metrics) []string {
	var out []string
	if m.ReadabilityLevel == LevelNoContent {
		return []string{"Start writing to see readability feedback"}
	}
	if m.FleschReadingEase < 60 {
		out = append(out, "Consider using shorter sentences to improve readability")
	}
	if m.AverageWordsPerSentence > 20 {
		out = append(out, "Try to keep sentences under 20 words for better clarity")
	}
	if m.AverageSyllablesPerWord > 1.7 {
		out = append(out, "Consider using simpler words with fewer syllables")
	}
	if m.FleschKincaidGrade > 12 {
		out = append(out, "The text may be too complex for general audiences")
	}
	if m.WordCount < 100 {
		out = append(out, "Consider adding more content for a more comprehensive analysis")
	}
	if len(out) == 0 {
		out = append(out, "Your text has good readability for academic writing")
	}
	return out
}

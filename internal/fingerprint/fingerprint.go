// Package fingerprint produces the content hash used to deduplicate document versions.
package fingerprint

import (
	"strconv"
	"unicode/utf16"
)

// Of returns a 31-multiplier polynomial hash over the UTF-16 code units of
// content, truncated to 32 bits and rendered as a non-negative decimal string.
// The output format is persisted in document_versions.content_hash.
func Of(content string) string {
	var h int32
	for _, unit := range utf16.Encode([]rune(content)) {
		h = h*31 + int32(unit)
	}
	v := int64(h)
	if v < 0 {
		v = -v
	}
	return strconv.FormatInt(v, 10)
}

func Equal(a, b string) bool {
	return Of(a) == Of(b)
}

package suggest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

func WrapLRUCache(next Suggester, size int, ttl time.Duration) Suggester {
	if next == nil || size <= 0 || ttl <= 0 {
		return next
	}
	return &lruSuggester{
		next:  next,
		cache: expirable.NewLRU[string, []Suggestion](size, nil, ttl),
	}
}

type lruSuggester struct {
	next  Suggester
	cache *expirable.LRU[string, []Suggestion]
}

func (l *lruSuggester) Suggest(text string) []Suggestion {
	key := cacheKey(text)
	if cached, ok := l.cache.Get(key); ok {
		logutil.GetLogger(context.Background()).Debug("suggestion cache hit", zap.Int("len", len(text)))
		return cloneSuggestions(cached)
	}
	res := l.next.Suggest(text)
	l.cache.Add(key, cloneSuggestions(res))
	return res
}

func cacheKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

func cloneSuggestions(in []Suggestion) []Suggestion {
	out := make([]Suggestion, len(in))
	copy(out, in)
	return out
}

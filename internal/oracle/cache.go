package oracle

import (
	"github.com/ShayCichocki/learnlab/pkg/models"
)

type cacheKey struct {
	prefix, suffix models.Word
}

// Cache answers repeated queries from memory and forwards only the misses,
// each distinct query at most once.
type Cache[D comparable] struct {
	delegate Oracle[D]
	entries  map[cacheKey]D
	hits     int64
}

var _ Oracle[bool] = (*Cache[bool])(nil)

// NewCache wraps delegate.
func NewCache[D comparable](delegate Oracle[D]) *Cache[D] {
	return &Cache[D]{
		delegate: delegate,
		entries:  make(map[cacheKey]D),
	}
}

// Process implements Oracle.
func (c *Cache[D]) Process(queries []*models.Query[D]) error {
	var misses []*models.Query[D]
	waiting := make(map[cacheKey][]*models.Query[D])

	for _, q := range queries {
		key := cacheKey{q.Prefix, q.Suffix}
		if out, ok := c.entries[key]; ok {
			q.Answer(out)
			c.hits++
			continue
		}
		if _, ok := waiting[key]; !ok {
			misses = append(misses, models.NewQuery[D](q.Prefix, q.Suffix))
		} else {
			c.hits++
		}
		waiting[key] = append(waiting[key], q)
	}
	if len(misses) == 0 {
		return nil
	}

	if err := c.delegate.Process(misses); err != nil {
		return failure(err)
	}
	for _, m := range misses {
		key := cacheKey{m.Prefix, m.Suffix}
		c.entries[key] = m.Output()
		for _, q := range waiting[key] {
			q.Answer(m.Output())
		}
	}
	return nil
}

// Hits returns the number of queries answered without the delegate.
func (c *Cache[D]) Hits() int64 {
	return c.hits
}

// Len returns the number of cached answers.
func (c *Cache[D]) Len() int {
	return len(c.entries)
}

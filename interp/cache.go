package interp

import (
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/zeebo/xxh3"
)

// programs caches compiled templates keyed by [cacheKey].
//
//nolint:gochecknoglobals
var programs sync.Map

// cacheEntry compiles its template at most once, even when several
// goroutines request it concurrently.
type cacheEntry struct {
	once sync.Once
	c    *compiled
	err  error
}

// cacheKey hashes every dialect field with the template, so custom dialects
// that share a name never collide.
func cacheKey(d Dialect, template string) uint64 {
	var sb strings.Builder

	sb.Grow(len(d.Name) + len(template) + 16)
	sb.WriteString(d.Name)
	sb.WriteByte(0)
	sb.WriteRune(d.Open)
	sb.WriteRune(d.WrapOpen)
	sb.WriteRune(d.WrapClose)
	sb.WriteString(strconv.FormatBool(d.Bare))
	sb.WriteByte(0)
	sb.WriteString(template)

	return xxh3.HashString(sb.String())
}

// compileCached returns the shared compilation of template.
func (c config) compileCached(template string) (*compiled, error) {
	if !c.cache {
		return c.compile(template)
	}

	key := cacheKey(c.dialect, template)
	value, hit := programs.LoadOrStore(key, &cacheEntry{})
	entry, _ := value.(*cacheEntry)

	c.logger.Trace("cache lookup",
		slog.String("key", strconv.FormatUint(key, 16)),
		slog.Bool("hit", hit),
	)

	entry.once.Do(func() {
		entry.c, entry.err = c.compile(template)
	})

	return entry.c, entry.err
}

// ClearCache discards all cached compiled templates.
func ClearCache() {
	programs.Clear()
}

// CacheLen returns the number of cached templates.
func CacheLen() int {
	n := 0

	programs.Range(func(any, any) bool {
		n++

		return true
	})

	return n
}

package event

import (
	"fmt"
	"strings"

	"github.com/spaolacci/murmur3"
)

// Slugify derives the URL-safe slug for a title. Letters are lowercased,
// apostrophes and periods are dropped so "Next.js" becomes "nextjs" rather
// than "next-js", and every other run of non-alphanumeric characters
// collapses to a single hyphen. Leading and trailing hyphens are trimmed.
func Slugify(title string) string {
	var b strings.Builder
	b.Grow(len(title))

	pendingHyphen := false
	for _, r := range strings.ToLower(title) {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
		case r == '\'' || r == '.' || r == '’':
			// joined, not separated
		default:
			pendingHyphen = true
		}
	}
	return b.String()
}

// Disambiguate appends a short suffix to slug so a second event with the
// same title can still be created. The suffix is a murmur3 hash of the title
// and the creation timestamp, rendered as six hex digits. Uniqueness is
// still enforced by the store; this only produces the retry candidate.
func Disambiguate(slug, title string, createdAtNanos int64) string {
	h := murmur3.Sum32([]byte(fmt.Sprintf("%s|%d", title, createdAtNanos)))
	return fmt.Sprintf("%s-%06x", slug, h&0xffffff)
}

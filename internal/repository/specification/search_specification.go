package specification

import (
	"strings"

	"gorm.io/gorm"
)

// NoteSearchQuery matches the maintained search vector OR a raw case-insensitive
// substring of title/description. The ILIKE fallback guards against tokenization
// misses on short or unusual queries.
type NoteSearchQuery struct {
	Query string
}

func (s NoteSearchQuery) Apply(db *gorm.DB) *gorm.DB {
	pattern := "%" + escapeLikePattern(s.Query) + "%"
	return db.Where(
		"notes.search_vector @@ plainto_tsquery('english', ?) OR notes.title ILIKE ? OR notes.description ILIKE ?",
		s.Query, pattern, pattern,
	)
}

// escapeLikePattern quotes LIKE metacharacters so user input matches as a
// literal substring rather than as a pattern.
func escapeLikePattern(q string) string {
	q = strings.ReplaceAll(q, `\`, `\\`)
	q = strings.ReplaceAll(q, `%`, `\%`)
	return strings.ReplaceAll(q, `_`, `\_`)
}

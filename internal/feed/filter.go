package feed

import (
	"strings"
	"time"
)

// Filter is one predicate of a listing. Every implementation renders against
// the "p" alias of the posts table.
type Filter interface {
	predicate() (string, []interface{})
}

// OwnerIs keeps posts written by one user.
type OwnerIs uint64

// MoodIs keeps posts with one mood category.
type MoodIs string

// PublicOnly drops private posts.
type PublicOnly struct{}

// KeywordMatch is a case-insensitive substring match on content or location.
type KeywordMatch string

// LocationMatch is a case-insensitive substring match on location.
type LocationMatch string

// CreatedSince keeps posts created at or after the bound.
type CreatedSince time.Time

func (f OwnerIs) predicate() (string, []interface{}) {
	return "p.user_id = ?", []interface{}{uint64(f)}
}

func (f MoodIs) predicate() (string, []interface{}) {
	return "p.mood_type = ?", []interface{}{string(f)}
}

func (PublicOnly) predicate() (string, []interface{}) {
	return "p.is_public = ?", []interface{}{true}
}

func (f KeywordMatch) predicate() (string, []interface{}) {
	pattern := likePattern(string(f))
	return "(LOWER(p.content) LIKE ? OR LOWER(p.location) LIKE ?)", []interface{}{pattern, pattern}
}

func (f LocationMatch) predicate() (string, []interface{}) {
	return "LOWER(p.location) LIKE ?", []interface{}{likePattern(string(f))}
}

func (f CreatedSince) predicate() (string, []interface{}) {
	return "p.created_at >= ?", []interface{}{time.Time(f)}
}

// Predicate is a compiled WHERE clause. The count and the item query of a
// listing are both built from the same value.
type Predicate struct {
	SQL     string
	Args    []interface{}
	Filters []Filter
}

func (p Predicate) Empty() bool {
	return p.SQL == ""
}

// Compile joins the filters with AND in the order given.
func Compile(filters ...Filter) Predicate {
	parts := make([]string, 0, len(filters))
	kept := make([]Filter, 0, len(filters))
	var args []interface{}
	for _, f := range filters {
		if f == nil {
			continue
		}
		sql, a := f.predicate()
		parts = append(parts, sql)
		args = append(args, a...)
		kept = append(kept, f)
	}
	return Predicate{SQL: strings.Join(parts, " AND "), Args: args, Filters: kept}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func likePattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
}

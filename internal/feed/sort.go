package feed

import (
	"time"

	"gorm.io/gorm"

	"moodfeed/internal/common"
)

type SortPolicy int

const (
	SortRecent SortPolicy = iota
	SortLikes
	SortComments
)

// ParseSort maps the public sort keys. An empty key is recency.
func ParseSort(key string) (SortPolicy, error) {
	switch key {
	case "", "time":
		return SortRecent, nil
	case "likes":
		return SortLikes, nil
	case "comments":
		return SortComments, nil
	default:
		return SortRecent, common.Validation("unknown sort key %q", key)
	}
}

func (s SortPolicy) String() string {
	switch s {
	case SortLikes:
		return "likes"
	case SortComments:
		return "comments"
	default:
		return "time"
	}
}

const (
	likeCountJoin    = "LEFT JOIN (SELECT post_id, COUNT(*) AS cnt FROM post_likes GROUP BY post_id) lc ON lc.post_id = p.id"
	commentCountJoin = "LEFT JOIN (SELECT post_id, COUNT(*) AS cnt FROM post_comments GROUP BY post_id) cc ON cc.post_id = p.id"
	recencyOrder     = "p.created_at DESC, p.id DESC"
)

// apply adds the ordering (and any join it needs) to an item query.
func (s SortPolicy) apply(q *gorm.DB) *gorm.DB {
	switch s {
	case SortLikes:
		return q.Joins(likeCountJoin).Order("COALESCE(lc.cnt, 0) DESC, " + recencyOrder)
	case SortComments:
		return q.Joins(commentCountJoin).Order("COALESCE(cc.cnt, 0) DESC, " + recencyOrder)
	default:
		return q.Order(recencyOrder)
	}
}

type TimeRange string

const (
	RangeDay   TimeRange = "day"
	RangeWeek  TimeRange = "week"
	RangeMonth TimeRange = "month"
)

// Since is the inclusive lower bound of the range relative to now. Unknown
// or empty ranges behave as a week.
func (r TimeRange) Since(now time.Time) time.Time {
	today := startOfDay(now)
	switch r {
	case RangeDay:
		return today
	case RangeMonth:
		return today.AddDate(0, 0, -30)
	default:
		return today.AddDate(0, 0, -7)
	}
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

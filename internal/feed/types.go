package feed

import (
	"time"

	"gorm.io/datatypes"

	"moodfeed/internal/dbsql"
)

// PostView is a post as returned to a viewer: row data, author identity and
// engagement.
type PostView struct {
	ID           uint64       `json:"id"`
	UserID       uint64       `json:"userId"`
	User         dbsql.Author `json:"user"`
	MoodType     string       `json:"moodType"`
	Content      string       `json:"content"`
	Weather      *string      `json:"weather,omitempty"`
	Location     *string      `json:"location,omitempty"`
	GPSLatitude  *float64     `json:"gpsLatitude,omitempty"`
	GPSLongitude *float64     `json:"gpsLongitude,omitempty"`
	GPSAddress   *string      `json:"gpsAddress,omitempty"`
	Tags         []string     `json:"tags"`
	Images       []string     `json:"images"`
	Videos       []string     `json:"videos"`
	IsPublic     bool         `json:"isPublic"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
	LikeCount    int64        `json:"likeCount"`
	CommentCount int64        `json:"commentCount"`
	IsLiked      bool         `json:"isLiked"`
}

func newPostView(p *dbsql.Post, author dbsql.Author, e Engagement) PostView {
	if author.ID == 0 {
		author.ID = p.UserID
	}
	return PostView{
		ID:           p.ID,
		UserID:       p.UserID,
		User:         author,
		MoodType:     p.MoodType,
		Content:      p.Content,
		Weather:      p.Weather,
		Location:     p.Location,
		GPSLatitude:  p.GPSLatitude,
		GPSLongitude: p.GPSLongitude,
		GPSAddress:   p.GPSAddress,
		Tags:         nonNil(p.Tags),
		Images:       nonNil(p.Images),
		Videos:       nonNil(p.Videos),
		IsPublic:     p.IsPublic,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
		LikeCount:    e.LikeCount,
		CommentCount: e.CommentCount,
		IsLiked:      e.LikedByViewer,
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// PostInput is the body of a new post.
type PostInput struct {
	MoodType     string   `json:"moodType" validate:"required,mood"`
	Content      string   `json:"content" validate:"required,max=1000"`
	Weather      *string  `json:"weather" validate:"omitempty,weather"`
	Location     *string  `json:"location" validate:"omitempty,max=200"`
	GPSLatitude  *float64 `json:"gpsLatitude" validate:"omitempty,min=-90,max=90"`
	GPSLongitude *float64 `json:"gpsLongitude" validate:"omitempty,min=-180,max=180"`
	GPSAddress   *string  `json:"gpsAddress" validate:"omitempty,max=500"`
	Tags         []string `json:"tags" validate:"max=10,dive,max=20"`
	Images       []string `json:"images" validate:"max=9,dive,mediaref"`
	Videos       []string `json:"videos" validate:"max=3,dive,mediaref"`
	IsPublic     *bool    `json:"isPublic"`
}

func (in PostInput) toModel(userID uint64) *dbsql.Post {
	isPublic := true
	if in.IsPublic != nil {
		isPublic = *in.IsPublic
	}
	return &dbsql.Post{
		UserID:       userID,
		MoodType:     in.MoodType,
		Content:      in.Content,
		Weather:      in.Weather,
		Location:     in.Location,
		GPSLatitude:  in.GPSLatitude,
		GPSLongitude: in.GPSLongitude,
		GPSAddress:   in.GPSAddress,
		Tags:         datatypes.JSONSlice[string](nonNil(in.Tags)),
		Images:       datatypes.JSONSlice[string](nonNil(in.Images)),
		Videos:       datatypes.JSONSlice[string](nonNil(in.Videos)),
		IsPublic:     isPublic,
	}
}

// PostPatch updates only the fields that are non-nil.
type PostPatch struct {
	MoodType     *string   `json:"moodType" validate:"omitempty,mood"`
	Content      *string   `json:"content" validate:"omitempty,min=1,max=1000"`
	Weather      *string   `json:"weather" validate:"omitempty,weather"`
	Location     *string   `json:"location" validate:"omitempty,max=200"`
	GPSLatitude  *float64  `json:"gpsLatitude" validate:"omitempty,min=-90,max=90"`
	GPSLongitude *float64  `json:"gpsLongitude" validate:"omitempty,min=-180,max=180"`
	GPSAddress   *string   `json:"gpsAddress" validate:"omitempty,max=500"`
	Tags         *[]string `json:"tags" validate:"omitempty,max=10,dive,max=20"`
	Images       *[]string `json:"images" validate:"omitempty,max=9,dive,mediaref"`
	Videos       *[]string `json:"videos" validate:"omitempty,max=3,dive,mediaref"`
	IsPublic     *bool     `json:"isPublic"`
}

func (p PostPatch) IsEmpty() bool {
	return len(p.columns()) == 0
}

// columns maps the set fields to their column names.
func (p PostPatch) columns() map[string]interface{} {
	cols := make(map[string]interface{})
	if p.MoodType != nil {
		cols["mood_type"] = *p.MoodType
	}
	if p.Content != nil {
		cols["content"] = *p.Content
	}
	if p.Weather != nil {
		cols["weather"] = *p.Weather
	}
	if p.Location != nil {
		cols["location"] = *p.Location
	}
	if p.GPSLatitude != nil {
		cols["gps_latitude"] = *p.GPSLatitude
	}
	if p.GPSLongitude != nil {
		cols["gps_longitude"] = *p.GPSLongitude
	}
	if p.GPSAddress != nil {
		cols["gps_address"] = *p.GPSAddress
	}
	if p.Tags != nil {
		cols["tags"] = datatypes.JSONSlice[string](nonNil(*p.Tags))
	}
	if p.Images != nil {
		cols["images"] = datatypes.JSONSlice[string](nonNil(*p.Images))
	}
	if p.Videos != nil {
		cols["videos"] = datatypes.JSONSlice[string](nonNil(*p.Videos))
	}
	if p.IsPublic != nil {
		cols["is_public"] = *p.IsPublic
	}
	return cols
}

type MoodCount struct {
	MoodType string `json:"moodType"`
	Count    int64  `json:"count"`
}

type SquareStats struct {
	TotalPosts   int64       `json:"totalPosts"`
	TotalUsers   int64       `json:"totalUsers"`
	TodayPosts   int64       `json:"todayPosts"`
	PopularMoods []MoodCount `json:"popularMoods"`
}

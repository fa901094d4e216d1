package common

import "strings"

// Mood is the closed set of mood categories a post can carry.
type Mood string

const (
	MoodHappy    Mood = "快乐"
	MoodExcited  Mood = "兴奋"
	MoodCalm     Mood = "平静"
	MoodNeutral  Mood = "一般"
	MoodTired    Mood = "疲惫"
	MoodAnxious  Mood = "焦虑"
	MoodStressed Mood = "压力"
	MoodSad      Mood = "悲伤"
	MoodAngry    Mood = "愤怒"
)

var moods = []Mood{
	MoodHappy, MoodExcited, MoodCalm, MoodNeutral, MoodTired,
	MoodAnxious, MoodStressed, MoodSad, MoodAngry,
}

func (m Mood) String() string {
	return string(m)
}

func (m Mood) IsValid() bool {
	for _, v := range moods {
		if v == m {
			return true
		}
	}
	return false
}

// AllMoods returns the moods in display order.
func AllMoods() []Mood {
	out := make([]Mood, len(moods))
	copy(out, moods)
	return out
}

type Weather string

const (
	WeatherSunny     Weather = "晴天"
	WeatherCloudy    Weather = "多云"
	WeatherOvercast  Weather = "阴天"
	WeatherLightRain Weather = "小雨"
	WeatherHeavyRain Weather = "大雨"
	WeatherSnow      Weather = "雪天"
	WeatherFoggy     Weather = "雾天"
)

func (w Weather) String() string {
	return string(w)
}

func (w Weather) IsValid() bool {
	switch w {
	case WeatherSunny, WeatherCloudy, WeatherOvercast, WeatherLightRain,
		WeatherHeavyRain, WeatherSnow, WeatherFoggy:
		return true
	}
	return false
}

// MediaFileType represents the kind of an uploaded blob
type MediaFileType string

const (
	MediaFileTypeImage MediaFileType = "image"
	MediaFileTypeVideo MediaFileType = "video"
)

func (mft MediaFileType) String() string {
	return string(mft)
}

func (mft MediaFileType) IsValid() bool {
	return mft == MediaFileTypeImage || mft == MediaFileTypeVideo
}

// DetectFileType classifies a MIME type; ok is false for anything that is not
// an image or a video.
func DetectFileType(mimeType string) (MediaFileType, bool) {
	lowerMimeType := strings.ToLower(mimeType)
	if strings.HasPrefix(lowerMimeType, "image/") {
		return MediaFileTypeImage, true
	}
	if strings.HasPrefix(lowerMimeType, "video/") {
		return MediaFileTypeVideo, true
	}
	return "", false
}

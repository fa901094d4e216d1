package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMood_IsValid(t *testing.T) {
	for _, m := range AllMoods() {
		assert.True(t, m.IsValid(), "mood %s", m)
	}
	assert.False(t, Mood("开心").IsValid())
	assert.False(t, Mood("").IsValid())
	assert.Len(t, AllMoods(), 9)
}

func TestWeather_IsValid(t *testing.T) {
	assert.True(t, WeatherSunny.IsValid())
	assert.True(t, WeatherFoggy.IsValid())
	assert.False(t, Weather("台风").IsValid())
}

func TestDetectFileType(t *testing.T) {
	tests := []struct {
		mime   string
		want   MediaFileType
		wantOK bool
	}{
		{"image/jpeg", MediaFileTypeImage, true},
		{"IMAGE/PNG", MediaFileTypeImage, true},
		{"video/mp4", MediaFileTypeVideo, true},
		{"application/pdf", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := DetectFileType(tt.mime)
		assert.Equal(t, tt.want, got, "mime %q", tt.mime)
		assert.Equal(t, tt.wantOK, ok, "mime %q", tt.mime)
	}
}

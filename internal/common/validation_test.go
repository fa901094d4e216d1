package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type samplePost struct {
	MoodType string   `json:"moodType" validate:"required,mood"`
	Content  string   `json:"content" validate:"required,max=10"`
	Weather  *string  `json:"weather" validate:"omitempty,weather"`
	Tags     []string `json:"tags" validate:"max=2,dive,max=5"`
	SortBy   string   `json:"sortBy" validate:"omitempty,sortkey"`
}

func strPtr(s string) *string { return &s }

func TestValidator_Struct(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name        string
		in          samplePost
		wantErr     bool
		errContains string
	}{
		{
			name: "valid",
			in:   samplePost{MoodType: "快乐", Content: "hi", Weather: strPtr("晴天"), Tags: []string{"a"}, SortBy: "likes"},
		},
		{
			name:        "unknown mood",
			in:          samplePost{MoodType: "meh", Content: "hi"},
			wantErr:     true,
			errContains: "moodType",
		},
		{
			name:        "content too long",
			in:          samplePost{MoodType: "平静", Content: "0123456789abc"},
			wantErr:     true,
			errContains: "content failed max=10",
		},
		{
			name:        "bad weather",
			in:          samplePost{MoodType: "平静", Content: "x", Weather: strPtr("tornado")},
			wantErr:     true,
			errContains: "weather",
		},
		{
			name:        "too many tags",
			in:          samplePost{MoodType: "平静", Content: "x", Tags: []string{"a", "b", "c"}},
			wantErr:     true,
			errContains: "tags",
		},
		{
			name:        "bad sort key",
			in:          samplePost{MoodType: "平静", Content: "x", SortBy: "random"},
			wantErr:     true,
			errContains: "sortBy",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.in)
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, KindValidation, KindOf(err))
			assert.Contains(t, err.Error(), tt.errContains)
		})
	}
}

func TestValidator_MediaRef(t *testing.T) {
	v := NewValidator()

	type attachments struct {
		Images []string `json:"images" validate:"max=9,dive,mediaref"`
	}

	tests := []struct {
		name    string
		images  []string
		wantErr bool
	}{
		{name: "upload path", images: []string{"/media/65a1f0c2e4b0a1b2c3d4e5f6"}},
		{name: "absolute url", images: []string{"https://cdn.example.com/a.png"}},
		{name: "mixed", images: []string{"/media/65a1f0c2e4b0a1b2c3d4e5f6", "http://img.example.com/b.jpg"}},
		{name: "bare prefix", images: []string{"/media/"}, wantErr: true},
		{name: "nested path", images: []string{"/media/a/b"}, wantErr: true},
		{name: "other relative path", images: []string{"/static/a.png"}, wantErr: true},
		{name: "not a url", images: []string{"picture"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(attachments{Images: tt.images})
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), "mediaref")
		})
	}
}

func TestValidateUsernameAndPassword(t *testing.T) {
	assert.NoError(t, ValidateUsername("alice_01"))
	assert.Error(t, ValidateUsername("al"))
	assert.Error(t, ValidateUsername("bad name!"))

	assert.NoError(t, ValidatePassword("secret1"))
	assert.Error(t, ValidatePassword("short"))
}

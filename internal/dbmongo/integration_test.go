package dbmongo

import (
	"context"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moodfeed/internal/common"
	"moodfeed/internal/config"
)

// Runs against the MongoDB from docker-compose when MONGO_INTEGRATION is set.
func integrationStorage(t *testing.T) (*MediaStorage, context.Context) {
	t.Helper()
	if os.Getenv("MONGO_INTEGRATION") == "" {
		t.Skip("MONGO_INTEGRATION not set")
	}

	cfg := &config.Config{
		MongoDB: config.MongoDBConfig{
			Host:     getEnvOrDefault("MONGO_HOST", "localhost"),
			Port:     getEnvOrDefault("MONGO_PORT", "27017"),
			Username: getEnvOrDefault("MONGO_USERNAME", "admin"),
			Password: getEnvOrDefault("MONGO_PASSWORD", "admin123"),
			Database: getEnvOrDefault("MONGO_DATABASE", "moodfeed_test"),
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)

	client, err := NewMongoConnection(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close(context.Background()) })

	return NewMediaStorage(client), ctx
}

func getEnvOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func TestMediaStorage_Integration(t *testing.T) {
	storage, ctx := integrationStorage(t)

	t.Run("upload_stat_download_delete", func(t *testing.T) {
		content := "fake-image-content"
		uploaded, err := storage.UploadFile(ctx, "image.jpg", "image/jpeg", 7, strings.NewReader(content))
		require.NoError(t, err)
		assert.Equal(t, common.MediaFileTypeImage, uploaded.FileType)
		assert.Equal(t, int64(len(content)), uploaded.Size)

		stat, err := storage.StatFile(ctx, uploaded.ID)
		require.NoError(t, err)
		assert.Equal(t, uint64(7), stat.UploadedBy)
		assert.Equal(t, "image/jpeg", stat.MimeType)

		reader, file, err := storage.DownloadFile(ctx, uploaded.ID)
		require.NoError(t, err)
		body, err := io.ReadAll(reader)
		require.NoError(t, err)
		require.NoError(t, reader.Close())
		assert.Equal(t, content, string(body))
		assert.Equal(t, "image.jpg", file.Filename)

		require.NoError(t, storage.DeleteFile(ctx, uploaded.ID))
		_, _, err = storage.DownloadFile(ctx, uploaded.ID)
		assert.Equal(t, common.KindNotFound, common.KindOf(err))
	})

	t.Run("video", func(t *testing.T) {
		uploaded, err := storage.UploadFile(ctx, "clip.mp4", "video/mp4", 7, strings.NewReader("fake-video"))
		require.NoError(t, err)
		assert.Equal(t, common.MediaFileTypeVideo, uploaded.FileType)
		require.NoError(t, storage.DeleteFile(ctx, uploaded.ID))
	})

	t.Run("rejects other types", func(t *testing.T) {
		_, err := storage.UploadFile(ctx, "notes.txt", "text/plain", 7, strings.NewReader("hello"))
		assert.Equal(t, common.KindValidation, common.KindOf(err))
	})

	t.Run("missing files", func(t *testing.T) {
		_, err := storage.StatFile(ctx, "507f1f77bcf86cd799439011")
		assert.Equal(t, common.KindNotFound, common.KindOf(err))
		assert.Equal(t, common.KindNotFound, common.KindOf(storage.DeleteFile(ctx, "507f1f77bcf86cd799439011")))
	})
}

package media

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moodfeed/internal/common"
	"moodfeed/internal/dbmongo"
)

// PNG signature plus an IHDR chunk header, enough for content sniffing.
var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

type storedFile struct {
	meta dbmongo.MediaFile
	data []byte
}

type memStorage struct {
	mu    sync.Mutex
	next  int
	files map[string]storedFile
}

func newMemStorage() *memStorage {
	return &memStorage{files: map[string]storedFile{}}
}

func (m *memStorage) UploadFile(_ context.Context, filename, mimeType string, uploaderID uint64, content io.Reader) (*dbmongo.MediaFile, error) {
	fileType, ok := common.DetectFileType(mimeType)
	if !ok {
		return nil, common.Validation("unsupported file type %q", mimeType)
	}
	data, err := io.ReadAll(content)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	id := fmt.Sprintf("%024x", m.next)
	meta := dbmongo.MediaFile{
		ID:         id,
		Filename:   filename,
		Size:       int64(len(data)),
		FileType:   fileType,
		MimeType:   mimeType,
		UploadedBy: uploaderID,
		UploadedAt: time.Now(),
	}
	m.files[id] = storedFile{meta: meta, data: data}
	return &meta, nil
}

func (m *memStorage) StatFile(_ context.Context, fileID string) (*dbmongo.MediaFile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.files[fileID]
	if !ok {
		return nil, common.NotFound("file %s not found", fileID)
	}
	meta := f.meta
	return &meta, nil
}

func (m *memStorage) DownloadFile(ctx context.Context, fileID string) (io.ReadCloser, *dbmongo.MediaFile, error) {
	meta, err := m.StatFile(ctx, fileID)
	if err != nil {
		return nil, nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return io.NopCloser(bytes.NewReader(m.files[fileID].data)), meta, nil
}

func (m *memStorage) DeleteFile(_ context.Context, fileID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.files[fileID]; !ok {
		return common.NotFound("file %s not found", fileID)
	}
	delete(m.files, fileID)
	return nil
}

type fixture struct {
	router  *mux.Router
	storage *memStorage
	tokens  *common.TokenManager
}

func setup(t *testing.T) *fixture {
	t.Helper()
	log, _ := test.NewNullLogger()
	tokens := common.NewTokenManager("test-secret", time.Hour, "moodfeed")
	storage := newMemStorage()

	r := mux.NewRouter()
	NewServer(storage, log).Register(r, common.NewHTTPAuth(tokens))
	return &fixture{router: r, storage: storage, tokens: tokens}
}

func (f *fixture) token(t *testing.T, userID uint64) string {
	t.Helper()
	tok, err := f.tokens.GenerateToken(userID, fmt.Sprintf("user%d", userID))
	require.NoError(t, err)
	return tok
}

func multipartBody(t *testing.T, field, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func (f *fixture) upload(t *testing.T, token, field, filename string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := multipartBody(t, field, filename, content)
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func TestServer_Upload(t *testing.T) {
	f := setup(t)

	tests := []struct {
		name     string
		token    string
		field    string
		content  []byte
		wantCode int
	}{
		{name: "png", token: f.token(t, 1), field: "file", content: pngHeader, wantCode: http.StatusCreated},
		{name: "anonymous", field: "file", content: pngHeader, wantCode: http.StatusUnauthorized},
		{name: "wrong field", token: f.token(t, 1), field: "upload", content: pngHeader, wantCode: http.StatusBadRequest},
		{name: "plain text", token: f.token(t, 1), field: "file", content: []byte("just some notes"), wantCode: http.StatusBadRequest},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := f.upload(t, tc.token, tc.field, "cat.png", tc.content)
			require.Equal(t, tc.wantCode, rec.Code, rec.Body.String())
			if tc.wantCode != http.StatusCreated {
				return
			}

			var env struct {
				Data UploadResult `json:"data"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
			assert.Equal(t, URL(env.Data.ID), env.Data.URL)
			assert.Equal(t, common.MediaFileTypeImage, env.Data.FileType)
			assert.Equal(t, "image/png", f.storage.files[env.Data.ID].meta.MimeType)
		})
	}
}

func TestServer_UploadTooLarge(t *testing.T) {
	f := setup(t)
	content := append(append([]byte{}, pngHeader...), make([]byte, MaxUploadSize)...)

	rec := f.upload(t, f.token(t, 1), "file", "big.png", content)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, f.storage.files)
}

func TestServer_ServeFile(t *testing.T) {
	f := setup(t)
	stored, err := f.storage.UploadFile(context.Background(), "cat.png", "image/png", 1, bytes.NewReader(pngHeader))
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, URL(stored.ID), nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, fmt.Sprint(len(pngHeader)), rec.Header().Get("Content-Length"))
	assert.Equal(t, pngHeader, rec.Body.Bytes())

	rec = httptest.NewRecorder()
	f.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/media/000000000000000000000000", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_Delete(t *testing.T) {
	f := setup(t)
	stored, err := f.storage.UploadFile(context.Background(), "clip.mp4", "video/mp4", 1, bytes.NewReader([]byte("video")))
	require.NoError(t, err)

	del := func(token string) int {
		req := httptest.NewRequest(http.MethodDelete, "/api/upload/"+stored.ID, nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		f.router.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusForbidden, del(f.token(t, 2)))
	assert.Contains(t, f.storage.files, stored.ID)

	assert.Equal(t, http.StatusOK, del(f.token(t, 1)))
	assert.NotContains(t, f.storage.files, stored.ID)

	assert.Equal(t, http.StatusNotFound, del(f.token(t, 1)))
}

func TestContentTypeByExt(t *testing.T) {
	assert.Equal(t, "image/jpeg", contentTypeByExt("a.JPG"))
	assert.Equal(t, "video/webm", contentTypeByExt("b.webm"))
	assert.Equal(t, "application/octet-stream", contentTypeByExt("c"))
}

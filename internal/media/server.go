// Package media exposes upload, download and delete routes over the GridFS
// blob store.
package media

import (
	"context"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"moodfeed/internal/common"
	"moodfeed/internal/dbmongo"
)

const (
	MaxUploadSize = 10 << 20
	formField     = "file"
)

// Storage is implemented by *dbmongo.MediaStorage.
type Storage interface {
	UploadFile(ctx context.Context, filename, mimeType string, uploaderID uint64, content io.Reader) (*dbmongo.MediaFile, error)
	StatFile(ctx context.Context, fileID string) (*dbmongo.MediaFile, error)
	DownloadFile(ctx context.Context, fileID string) (io.ReadCloser, *dbmongo.MediaFile, error)
	DeleteFile(ctx context.Context, fileID string) error
}

type UploadResult struct {
	ID       string               `json:"id"`
	URL      string               `json:"url"`
	Filename string               `json:"filename"`
	Size     int64                `json:"size"`
	FileType common.MediaFileType `json:"fileType"`
}

type Server struct {
	storage Storage
	log     *logrus.Logger
}

func NewServer(storage Storage, log *logrus.Logger) *Server {
	return &Server{storage: storage, log: log}
}

func (s *Server) Register(r *mux.Router, auth *common.HTTPAuth) {
	r.Handle("/api/upload", auth.RequiredFunc(s.upload)).Methods(http.MethodPost)
	r.Handle("/api/upload/{id}", auth.RequiredFunc(s.delete)).Methods(http.MethodDelete)
	r.HandleFunc("/media/{id}", s.serveFile).Methods(http.MethodGet)
}

func URL(fileID string) string {
	return "/media/" + fileID
}

func (s *Server) upload(w http.ResponseWriter, r *http.Request) {
	viewer := common.ViewerFrom(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadSize+1<<20)
	if err := r.ParseMultipartForm(MaxUploadSize); err != nil {
		common.WriteError(w, s.log, common.Validation("file exceeds the 10MB limit or the form is malformed"))
		return
	}
	file, header, err := r.FormFile(formField)
	if err != nil {
		common.WriteError(w, s.log, common.Validation("multipart field %q is required", formField))
		return
	}
	defer file.Close()

	if header.Size > MaxUploadSize {
		common.WriteError(w, s.log, common.Validation("file exceeds the 10MB limit"))
		return
	}

	mtype, err := mimetype.DetectReader(file)
	if err != nil {
		common.WriteError(w, s.log, common.Internal(errors.Wrap(err, "detect mime type"), "failed to read upload"))
		return
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		common.WriteError(w, s.log, common.Internal(errors.Wrap(err, "rewind upload"), "failed to read upload"))
		return
	}

	stored, err := s.storage.UploadFile(r.Context(), filepath.Base(header.Filename), mtype.String(), viewer.UserID, file)
	if err != nil {
		common.WriteError(w, s.log, err)
		return
	}

	s.log.WithFields(logrus.Fields{
		"file_id": stored.ID,
		"user_id": viewer.UserID,
		"mime":    stored.MimeType,
		"size":    stored.Size,
	}).Info("media uploaded")

	common.WriteCreated(w, "file uploaded", UploadResult{
		ID:       stored.ID,
		URL:      URL(stored.ID),
		Filename: stored.Filename,
		Size:     stored.Size,
		FileType: stored.FileType,
	})
}

func (s *Server) delete(w http.ResponseWriter, r *http.Request) {
	viewer := common.ViewerFrom(r.Context())
	fileID := mux.Vars(r)["id"]

	stored, err := s.storage.StatFile(r.Context(), fileID)
	if err != nil {
		common.WriteError(w, s.log, err)
		return
	}
	if stored.UploadedBy != viewer.UserID {
		common.WriteError(w, s.log, common.Forbidden("only the uploader can delete this file"))
		return
	}
	if err := s.storage.DeleteFile(r.Context(), fileID); err != nil {
		common.WriteError(w, s.log, err)
		return
	}
	common.WriteOK(w, "file deleted", nil)
}

func (s *Server) serveFile(w http.ResponseWriter, r *http.Request) {
	fileID := mux.Vars(r)["id"]

	reader, stored, err := s.storage.DownloadFile(r.Context(), fileID)
	if err != nil {
		common.WriteError(w, s.log, err)
		return
	}
	defer reader.Close()

	contentType := stored.MimeType
	if contentType == "" {
		contentType = contentTypeByExt(stored.Filename)
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.FormatInt(stored.Size, 10))
	w.Header().Set("Cache-Control", "public, max-age=86400")

	if _, err := io.Copy(w, reader); err != nil {
		s.log.WithError(err).WithField("file_id", fileID).Warn("error streaming file")
	}
}

// Files stored without a MIME type fall back to their extension.
func contentTypeByExt(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	case ".mp4":
		return "video/mp4"
	case ".webm":
		return "video/webm"
	default:
		return "application/octet-stream"
	}
}

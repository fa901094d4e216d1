package dbmongo

import (
	"context"
	"io"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"

	"moodfeed/internal/common"
)

type MediaFile struct {
	ID         string               `json:"id"`
	Filename   string               `json:"filename"`
	Size       int64                `json:"size"`
	FileType   common.MediaFileType `json:"fileType"`
	MimeType   string               `json:"mimeType"`
	UploadedBy uint64               `json:"uploadedBy"`
	UploadedAt time.Time            `json:"uploadedAt"`
}

// fileMetadata is the document stored in the GridFS metadata field.
type fileMetadata struct {
	FileType   string    `bson:"file_type"`
	MimeType   string    `bson:"mime_type"`
	UploadedBy uint64    `bson:"uploaded_by"`
	UploadedAt time.Time `bson:"uploaded_at"`
}

type MediaStorage struct {
	gridFS *gridfs.Bucket
}

func NewMediaStorage(mongoClient *MongoClient) *MediaStorage {
	return &MediaStorage{
		gridFS: mongoClient.GridFS,
	}
}

// UploadFile accepts images and videos only.
func (ms *MediaStorage) UploadFile(ctx context.Context, filename, mimeType string, uploaderID uint64, content io.Reader) (*MediaFile, error) {
	fileType, ok := common.DetectFileType(mimeType)
	if !ok {
		return nil, common.Validation("unsupported file type %q", mimeType)
	}

	now := time.Now().UTC()
	meta := fileMetadata{
		FileType:   fileType.String(),
		MimeType:   mimeType,
		UploadedBy: uploaderID,
		UploadedAt: now,
	}

	stream, err := ms.gridFS.OpenUploadStream(filename, options.GridFSUpload().SetMetadata(meta))
	if err != nil {
		return nil, common.Internal(errors.Wrap(err, "open upload stream"), "failed to upload file")
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = stream.SetWriteDeadline(deadline)
	}

	size, err := io.Copy(stream, content)
	if err != nil {
		_ = stream.Abort()
		return nil, common.Internal(errors.Wrap(err, "copy upload"), "failed to upload file")
	}
	// Close writes the files document; until then the upload is not visible.
	if err := stream.Close(); err != nil {
		return nil, common.Internal(errors.Wrap(err, "close upload stream"), "failed to upload file")
	}

	return &MediaFile{
		ID:         stream.FileID.(primitive.ObjectID).Hex(),
		Filename:   filename,
		Size:       size,
		FileType:   fileType,
		MimeType:   mimeType,
		UploadedBy: uploaderID,
		UploadedAt: now,
	}, nil
}

// StatFile loads a file's metadata without opening its content.
func (ms *MediaStorage) StatFile(ctx context.Context, fileID string) (*MediaFile, error) {
	objectID, err := parseID(fileID)
	if err != nil {
		return nil, err
	}

	cursor, err := ms.gridFS.FindContext(ctx, bson.M{"_id": objectID})
	if err != nil {
		return nil, common.Internal(errors.Wrap(err, "find file"), "failed to load file")
	}
	defer cursor.Close(ctx)

	if !cursor.Next(ctx) {
		if err := cursor.Err(); err != nil {
			return nil, common.Internal(errors.Wrap(err, "find file"), "failed to load file")
		}
		return nil, common.NotFound("file %s not found", fileID)
	}
	var f gridfs.File
	if err := cursor.Decode(&f); err != nil {
		return nil, common.Internal(errors.Wrap(err, "decode file"), "failed to load file")
	}
	return toMediaFile(fileID, &f), nil
}

// DownloadFile opens a file for streaming. The caller closes the reader.
func (ms *MediaStorage) DownloadFile(ctx context.Context, fileID string) (io.ReadCloser, *MediaFile, error) {
	objectID, err := parseID(fileID)
	if err != nil {
		return nil, nil, err
	}

	stream, err := ms.gridFS.OpenDownloadStream(objectID)
	if err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return nil, nil, common.NotFound("file %s not found", fileID)
		}
		return nil, nil, common.Internal(errors.Wrap(err, "open download stream"), "failed to load file")
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = stream.SetReadDeadline(deadline)
	}
	return stream, toMediaFile(fileID, stream.GetFile()), nil
}

func (ms *MediaStorage) DeleteFile(ctx context.Context, fileID string) error {
	objectID, err := parseID(fileID)
	if err != nil {
		return err
	}
	if err := ms.gridFS.DeleteContext(ctx, objectID); err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return common.NotFound("file %s not found", fileID)
		}
		return common.Internal(errors.Wrap(err, "delete file"), "failed to delete file")
	}
	return nil
}

// Malformed ids cannot name a stored file, so they read as NotFound.
func parseID(fileID string) (primitive.ObjectID, error) {
	objectID, err := primitive.ObjectIDFromHex(fileID)
	if err != nil {
		return primitive.NilObjectID, common.NotFound("file %s not found", fileID)
	}
	return objectID, nil
}

func toMediaFile(fileID string, f *gridfs.File) *MediaFile {
	var meta fileMetadata
	if len(f.Metadata) > 0 {
		_ = bson.Unmarshal(f.Metadata, &meta)
	}
	return &MediaFile{
		ID:         fileID,
		Filename:   f.Name,
		Size:       f.Length,
		FileType:   common.MediaFileType(meta.FileType),
		MimeType:   meta.MimeType,
		UploadedBy: meta.UploadedBy,
		UploadedAt: f.UploadDate,
	}
}

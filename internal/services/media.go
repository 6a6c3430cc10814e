package services

import (
	"bufio"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const BucketComplaints = "complaints"

// BlobStore keeps complaint images. The core only ever persists the URL.
type BlobStore interface {
	Store(ctx context.Context, body io.Reader, contentType string) (string, error)
	Remove(ctx context.Context, url string) error
}

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
}

// LocalBlobStore writes images below BasePath/complaints and serves them from
// /media/complaints/{name}.
type LocalBlobStore struct {
	BasePath string
	MaxBytes int64
}

func (l LocalBlobStore) Store(ctx context.Context, body io.Reader, contentType string) (string, error) {
	reader := bufio.NewReader(body)
	head, _ := reader.Peek(512)
	if len(head) == 0 {
		return "", ErrInvalidInput("Image file is empty")
	}
	sniffed := http.DetectContentType(head)
	ext, ok := imageExtensions[sniffed]
	if !ok {
		return "", ServiceError{Kind: KindInvalidInput, Reason: ReasonInvalidType, Message: "Only JPG and PNG images are allowed"}
	}
	if declared := strings.TrimSpace(contentType); declared != "" && declared != "application/octet-stream" && declared != sniffed {
		slog.Debug("image content type mismatch", "declared", declared, "sniffed", sniffed)
	}

	dir, err := EnsureStoragePath(l.BasePath, BucketComplaints)
	if err != nil {
		return "", ErrInternal(err, "prepare media directory")
	}
	name := uuid.NewString() + ext
	target := filepath.Join(dir, name)
	file, err := os.Create(target)
	if err != nil {
		return "", ErrInternal(err, "create media file")
	}
	hasher := sha256.New()
	limit := l.MaxBytes
	if limit <= 0 {
		limit = 5 << 20
	}
	size, err := io.Copy(io.MultiWriter(file, hasher), io.LimitReader(reader, limit+1))
	_ = file.Close()
	if err != nil {
		_ = os.Remove(target)
		return "", ErrInternal(err, "write media file")
	}
	if size > limit {
		_ = os.Remove(target)
		return "", ServiceError{Kind: KindInvalidInput, Reason: ReasonTooLarge, Message: "Image is too large"}
	}
	if err := ctx.Err(); err != nil {
		_ = os.Remove(target)
		return "", ErrInternal(err, "store image")
	}
	slog.Info("stored complaint image", "name", name, "bytes", size, "sha256", hex.EncodeToString(hasher.Sum(nil)))
	return BuildImageURL(name), nil
}

func (l LocalBlobStore) Remove(_ context.Context, url string) error {
	name := strings.TrimPrefix(url, BuildImageURL(""))
	if name == url || name == "" || strings.ContainsAny(name, `/\`) {
		return nil
	}
	err := os.Remove(filepath.Join(l.BasePath, BucketComplaints, name))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// ImagePath maps a served file name back to disk, rejecting anything that is
// not a bare file name.
func (l LocalBlobStore) ImagePath(name string) (string, bool) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", false
	}
	return filepath.Join(l.BasePath, BucketComplaints, name), true
}

func BuildImageURL(name string) string {
	return "/media/" + BucketComplaints + "/" + name
}

func EnsureStoragePath(base string, bucket string) (string, error) {
	path := filepath.Join(base, bucket)
	if err := os.MkdirAll(path, 0o755); err != nil {
		return "", err
	}
	return path, nil
}

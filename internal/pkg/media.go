package pkg

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

var ErrNotImage = errors.New("uploaded file is not an image")

const postImageDir = "posts"

// MediaStore 上传图片落盘，数据库只存相对路径
type MediaStore struct {
	Root string
}

func NewMediaStore(root string) *MediaStore {
	return &MediaStore{Root: root}
}

// SavePostImage 校验文件内容为图片后写入 <root>/posts/<uuid><ext>
func (s *MediaStore) SavePostImage(fh *multipart.FileHeader) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()
	return s.save(src)
}

func (s *MediaStore) save(src io.ReadSeeker) (string, error) {
	mt, err := mimetype.DetectReader(src)
	if err != nil {
		return "", fmt.Errorf("detect upload type: %w", err)
	}
	if !strings.HasPrefix(mt.String(), "image/") {
		return "", ErrNotImage
	}
	if _, err = src.Seek(0, io.SeekStart); err != nil {
		return "", err
	}

	dir := filepath.Join(s.Root, postImageDir)
	if err = os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create media dir: %w", err)
	}
	name := uuid.NewString() + mt.Extension()
	dst, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return "", fmt.Errorf("create media file: %w", err)
	}
	defer dst.Close()
	if _, err = io.Copy(dst, src); err != nil {
		_ = os.Remove(dst.Name())
		return "", fmt.Errorf("write media file: %w", err)
	}
	return path.Join(postImageDir, name), nil
}

// Remove 删除旧图片，文件不存在视为成功
func (s *MediaStore) Remove(rel string) error {
	if rel == "" {
		return nil
	}
	err := os.Remove(filepath.Join(s.Root, filepath.FromSlash(rel)))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

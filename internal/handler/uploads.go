package handler

import (
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// saveUploadedImage 从 multipart 表单中取出图片并保存到本地上传目录，
// 返回保存后的路径。只接受常见的图片扩展名。
func (h *Handler) saveUploadedImage(r *http.Request, field string) (string, error) {
	maxSize := h.config.Upload.MaxSizeMB << 20
	r.Body = http.MaxBytesReader(nil, r.Body, maxSize)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		return "", errors.New("图片大小超出限制")
	}

	file, header, err := r.FormFile(field)
	if err != nil {
		return "", errors.New("未找到上传的图片")
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".webp":
	default:
		return "", errors.New("仅支持 jpg、jpeg、png、webp 格式的图片")
	}

	if err := os.MkdirAll(h.config.Upload.Dir, 0o755); err != nil {
		return "", err
	}

	// 用 uuid 作为文件名以避免覆盖
	path := filepath.Join(h.config.Upload.Dir, uuid.NewString()+ext)

	dst, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		os.Remove(path)
		return "", err
	}

	return path, nil
}

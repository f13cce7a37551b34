package storage

import (
	"context"
	"errors"
	"io"
)

type UploadResult struct {
	Key      string
	Location string
	ETag     string
}

// FileUploader — объектное хранилище для картинок турниров, логотипов
// команд и обложек игр. Сервисы зависят только от интерфейса.
type FileUploader interface {
	Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error)
	Delete(ctx context.Context, key string) error
	GetPublicURL(key string) string
}

var imageExtensions = map[string]string{
	"image/jpeg":    ".jpg",
	"image/png":     ".png",
	"image/webp":    ".webp",
	"image/gif":     ".gif",
	"image/svg+xml": ".svg",
}

// ExtensionFromContentType возвращает расширение файла для известных
// типов изображений. Остальные типы не принимаются.
func ExtensionFromContentType(contentType string) (string, error) {
	if ext, ok := imageExtensions[contentType]; ok {
		return ext, nil
	}
	return "", errors.New("unsupported content type: " + contentType)
}

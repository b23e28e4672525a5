// Package storage — объектное хранилище для архивов таблиц сезона.
package storage

import (
	"context"
	"io"
)

type UploadResult struct {
	Key      string
	Location string
	ETag     string
}

// FileUploader абстрагирует S3-совместимое хранилище. Сервисы не знают,
// стоит ли за ним R2, S3 или тестовый фейк.
type FileUploader interface {
	Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error)
	Delete(ctx context.Context, key string) error
	GetPublicURL(key string) string
}

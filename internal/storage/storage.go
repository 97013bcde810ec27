// Package storage persists uploaded objects on local disk or in S3.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
)

var (
	// ErrNotFound 表示对象不存在。
	ErrNotFound = errors.New("storage: object not found / 对象不存在")
	// ErrInvalidKey 表示对象 key 非法。
	ErrInvalidKey = errors.New("storage: invalid key / 对象 key 非法")
)

// Object is an opened stored object. Callers must close Body.
type Object struct {
	Body        io.ReadCloser
	ContentType string
	Size        int64
}

// Backend stores objects by slash-separated key.
type Backend interface {
	Name() string
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	Open(ctx context.Context, key string) (*Object, error)
	Delete(ctx context.Context, key string) error
}

// Options selects and configures a backend.
type Options struct {
	Driver string
	Dir    string
	S3     S3Options
}

// New builds the backend named by opts.Driver ("local" or "s3").
func New(opts Options) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Driver)) {
	case "", "local":
		return NewLocalBackend(opts.Dir)
	case "s3":
		return NewS3Backend(opts.S3)
	default:
		return nil, fmt.Errorf("storage: unknown driver %q / 未知存储驱动", opts.Driver)
	}
}

// cleanKey normalizes a key and rejects traversal outside the root.
func cleanKey(key string) (string, error) {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" || strings.Contains(trimmed, "\\") {
		return "", ErrInvalidKey
	}
	cleaned := path.Clean("/" + trimmed)[1:]
	if cleaned == "" || cleaned != strings.TrimPrefix(trimmed, "/") {
		return "", ErrInvalidKey
	}
	return cleaned, nil
}

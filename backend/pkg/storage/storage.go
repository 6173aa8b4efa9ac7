package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"campus-events/backend/config"
)

// Storage 上传文件存储
type Storage interface {
	// Put 写入对象并返回对外可访问的 URL
	Put(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
	// Delete 删除对象，对象不存在不视为错误
	Delete(ctx context.Context, key string) error
}

// New 按配置选择存储驱动
func New(cfg *config.StorageConfig, logger *zap.Logger) (Storage, error) {
	switch cfg.Driver {
	case "local":
		return NewLocal(cfg.LocalDir, cfg.PublicPrefix)
	case "supabase":
		return NewSupabase(cfg.SupabaseURL, cfg.SupabaseKey, cfg.Bucket, logger), nil
	default:
		return nil, fmt.Errorf("未知的存储驱动: %s", cfg.Driver)
	}
}

// NewKey 生成对象键：<folder>/<uuid><ext>
func NewKey(folder, ext string) string {
	ext = strings.ToLower(ext)
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return path.Join(folder, uuid.New().String()+ext)
}

package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	storage_go "github.com/supabase-community/storage-go"
	"go.uber.org/zap"
)

// Supabase Supabase Storage 对象存储
type Supabase struct {
	client *storage_go.Client
	bucket string
	logger *zap.Logger
}

// NewSupabase 创建 Supabase 存储客户端
func NewSupabase(projectURL, apiKey, bucket string, logger *zap.Logger) *Supabase {
	endpoint := strings.TrimRight(projectURL, "/") + "/storage/v1"
	return &Supabase{
		client: storage_go.NewClient(endpoint, apiKey, nil),
		bucket: bucket,
		logger: logger,
	}
}

// Put 上传对象，返回公开访问地址
func (s *Supabase) Put(_ context.Context, key string, r io.Reader, contentType string) (string, error) {
	upsert := true
	if _, err := s.client.UploadFile(s.bucket, key, r, storage_go.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	}); err != nil {
		return "", fmt.Errorf("上传到 Supabase 失败: %w", err)
	}

	resp := s.client.GetPublicUrl(s.bucket, key)
	return resp.SignedURL, nil
}

// Delete 删除对象
func (s *Supabase) Delete(_ context.Context, key string) error {
	if _, err := s.client.RemoveFile(s.bucket, []string{key}); err != nil {
		s.logger.Warn("删除 Supabase 对象失败", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("删除 Supabase 对象失败: %w", err)
	}
	return nil
}

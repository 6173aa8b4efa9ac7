package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Local 本地磁盘存储，配合路由中的静态目录对外提供访问
type Local struct {
	root   string
	prefix string
}

// NewLocal 创建本地存储，root 不存在时自动创建
func NewLocal(root, publicPrefix string) (*Local, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("创建上传目录失败: %w", err)
	}
	return &Local{root: root, prefix: "/" + strings.Trim(publicPrefix, "/")}, nil
}

func (l *Local) resolve(key string) (string, error) {
	clean := path.Clean("/" + key)
	if clean == "/" || strings.Contains(key, "..") {
		return "", fmt.Errorf("非法的对象键: %q", key)
	}
	return filepath.Join(l.root, filepath.FromSlash(clean)), nil
}

// Put 写入文件
func (l *Local) Put(_ context.Context, key string, r io.Reader, _ string) (string, error) {
	dst, err := l.resolve(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("创建目录失败: %w", err)
	}

	f, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("创建文件失败: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		_ = os.Remove(dst)
		return "", fmt.Errorf("写入文件失败: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("写入文件失败: %w", err)
	}

	return l.prefix + "/" + strings.TrimPrefix(path.Clean("/"+key), "/"), nil
}

// Delete 删除文件
func (l *Local) Delete(_ context.Context, key string) error {
	dst, err := l.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(dst); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("删除文件失败: %w", err)
	}
	return nil
}

package imageproc

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
)

var (
	ErrUnsupportedType = errors.New("仅支持 png / jpg / jpeg / gif 图片")
	ErrDecode          = errors.New("无法解析图片内容")
)

// 各用途的最大边长（像素）
const (
	MaxAvatar = 400
	MaxLogo   = 512
	MaxPoster = 1600
	MaxPhoto  = 1600
)

var allowed = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
}

// Result 处理后的图片
type Result struct {
	Data        []byte
	Ext         string
	ContentType string
	Width       int
	Height      int
}

// AllowedExt 判断文件扩展名是否在白名单内
func AllowedExt(filename string) bool {
	_, ok := allowed[strings.ToLower(filepath.Ext(filename))]
	return ok
}

// Normalize 解码图片、按 EXIF 旋正、等比缩放到 maxDim 以内并按原格式重新编码
// 重新编码会丢弃 EXIF 等元数据
func Normalize(r io.Reader, filename string, maxDim int) (*Result, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	contentType, ok := allowed[ext]
	if !ok {
		return nil, ErrUnsupportedType
	}

	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	b := img.Bounds()
	if maxDim > 0 && (b.Dx() > maxDim || b.Dy() > maxDim) {
		img = imaging.Fit(img, maxDim, maxDim, imaging.Lanczos)
	}

	format, err := imaging.FormatFromExtension(ext)
	if err != nil {
		return nil, ErrUnsupportedType
	}

	var buf bytes.Buffer
	opts := []imaging.EncodeOption{}
	if format == imaging.JPEG {
		opts = append(opts, imaging.JPEGQuality(85))
	}
	if err := imaging.Encode(&buf, img, format, opts...); err != nil {
		return nil, fmt.Errorf("图片编码失败: %w", err)
	}

	nb := img.Bounds()
	return &Result{
		Data:        buf.Bytes(),
		Ext:         ext,
		ContentType: contentType,
		Width:       nb.Dx(),
		Height:      nb.Dy(),
	}, nil
}

package qrcode

import (
	"fmt"
	"strings"

	goqrcode "github.com/skip2/go-qrcode"
)

// DefaultSize 默认边长（像素）
const DefaultSize = 256

// CheckInURL 活动自助签到地址，二维码中只编码该 URL，不带签名
func CheckInURL(baseURL, eventID string) string {
	return fmt.Sprintf("%s/api/v1/events/%s/qr-check-in", strings.TrimRight(baseURL, "/"), eventID)
}

// PNG 将内容编码为 PNG 二维码
func PNG(content string, size int) ([]byte, error) {
	if size <= 0 {
		size = DefaultSize
	}
	png, err := goqrcode.Encode(content, goqrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("生成二维码失败: %w", err)
	}
	return png, nil
}

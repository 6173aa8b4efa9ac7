package qrcode

import (
	"bytes"
	"image/png"
	"testing"
)

func TestCheckInURL(t *testing.T) {
	got := CheckInURL("https://events.example.edu/", "e-1")
	want := "https://events.example.edu/api/v1/events/e-1/qr-check-in"
	if got != want {
		t.Errorf("期望 %s，实际 %s", want, got)
	}
}

func TestPNG(t *testing.T) {
	data, err := PNG(CheckInURL("http://localhost:8080", "e-1"), 0)
	if err != nil {
		t.Fatalf("PNG 应成功: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("输出应为合法 PNG: %v", err)
	}
	if img.Bounds().Dx() != DefaultSize {
		t.Errorf("期望边长 %d，实际 %d", DefaultSize, img.Bounds().Dx())
	}
}

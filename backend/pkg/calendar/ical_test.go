package calendar

import (
	"strings"
	"testing"
	"time"
)

func TestBuildICS(t *testing.T) {
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	data, err := BuildICS("校园活动", []Entry{{
		ID:       "e-1",
		Title:    "Go 入门讲座",
		Location: "A101",
		Start:    start,
		End:      start.Add(2 * time.Hour),
		URL:      "http://localhost:8080/api/v1/events/e-1",
	}}, start.Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("BuildICS 应成功: %v", err)
	}

	out := string(data)
	for _, want := range []string{
		"BEGIN:VCALENDAR",
		"UID:e-1@campus-events",
		"SUMMARY:Go 入门讲座",
		"DTSTART:20260301T090000Z",
		"DTEND:20260301T110000Z",
		"LOCATION:A101",
		"BEGIN:VALARM",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("输出缺少 %q", want)
		}
	}
}

func TestBuildICS_Empty(t *testing.T) {
	data, err := BuildICS("", nil, time.Now())
	if err != nil {
		t.Fatalf("空日历应成功: %v", err)
	}
	if strings.Contains(string(data), "BEGIN:VEVENT") {
		t.Error("空日历不应包含 VEVENT")
	}
}

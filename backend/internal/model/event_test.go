package model

import (
	"testing"
	"time"
)

func TestEvent_StateAt(t *testing.T) {
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	e := &Event{StartTime: start, EndTime: start.Add(2 * time.Hour)}

	cases := []struct {
		name string
		now  time.Time
		want EventState
	}{
		{"开始前", start.Add(-time.Minute), StateUpcoming},
		{"恰好开始", start, StateOngoing},
		{"进行中", start.Add(time.Hour), StateOngoing},
		{"恰好结束", start.Add(2 * time.Hour), StateOngoing},
		{"结束后", start.Add(2*time.Hour + time.Second), StatePast},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := e.StateAt(tc.now); got != tc.want {
				t.Errorf("期望 %s，实际 %s", tc.want, got)
			}
		})
	}
}

func TestEvent_StartedEnded(t *testing.T) {
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	e := &Event{StartTime: start, EndTime: start.Add(time.Hour)}

	if e.Started(start.Add(-time.Second)) {
		t.Error("开始前不应视为已开始")
	}
	if !e.Started(start) {
		t.Error("开始时刻应视为已开始")
	}
	if e.Ended(start.Add(time.Hour)) {
		t.Error("结束时刻仍处于进行中，不应视为已结束")
	}
	if !e.Ended(start.Add(time.Hour + time.Second)) {
		t.Error("结束后应视为已结束")
	}
}

func TestEvent_IsFull(t *testing.T) {
	two := 2
	limited := &Event{Capacity: &two}
	unlimited := &Event{}

	if limited.IsFull(1) {
		t.Error("1/2 不应满员")
	}
	if !limited.IsFull(2) {
		t.Error("2/2 应满员")
	}
	if unlimited.IsFull(10000) {
		t.Error("未设置容量不应满员")
	}
}

func TestValidCategoryAndRole(t *testing.T) {
	if !ValidCategory("Workshop") || ValidCategory("workshop") {
		t.Error("分类校验区分大小写")
	}
	if !ValidRole(RoleOrganizer) || ValidRole("leader") {
		t.Error("角色校验不符合预期")
	}
	if !ValidState("past") || ValidState("cancelled") {
		t.Error("状态校验不符合预期")
	}
}

package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"campus-events/backend/internal/dto"
	"campus-events/backend/internal/model"
	pkgerrors "campus-events/backend/pkg/errors"
)

func setupTestEventService() (EventService, *memDB, *memStorage) {
	repo, db := newTestRepo()
	store := newMemStorage()
	svc := NewEventService(testConfig(), repo, store, testClock(), nopLogger)
	return svc, db, store
}

func validCreateRequest(clubID string) *dto.CreateEventRequest {
	return &dto.CreateEventRequest{
		Title:       "Go Workshop",
		Description: "Learn Go",
		StartTime:   testNow.Add(24 * time.Hour),
		EndTime:     testNow.Add(26 * time.Hour),
		Location:    "Lab 1",
		Category:    "Workshop",
		Capacity:    intPtr(30),
		ClubID:      clubID,
	}
}

// ── Create ──

func TestCreateEvent(t *testing.T) {
	svc, db, _ := setupTestEventService()
	org := seedUser(db, "org", model.RoleOrganizer, "password123")
	club := seedClub(db, "Gophers", org)

	resp, err := svc.Create(context.Background(), validCreateRequest(club.ID), org.ID, org.Role)
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if resp.State != string(model.StateUpcoming) {
		t.Errorf("新活动应为 upcoming，实际=%s", resp.State)
	}
	if resp.OrganizerID != org.ID || resp.ClubName != "Gophers" {
		t.Errorf("活动信息不正确: %+v", resp.EventResponse)
	}
	if resp.SpotsLeft == nil || *resp.SpotsLeft != 30 {
		t.Errorf("期望剩余名额 30，实际=%v", resp.SpotsLeft)
	}
}

func TestCreateEvent_Validation(t *testing.T) {
	svc, db, _ := setupTestEventService()
	org := seedUser(db, "org", model.RoleOrganizer, "password123")
	student := seedUser(db, "stu", model.RoleStudent, "password123")
	club := seedClub(db, "Gophers", org)

	tests := []struct {
		name   string
		mutate func(r *dto.CreateEventRequest)
		role   string
		want   error
	}{
		{"学生无权创建", func(r *dto.CreateEventRequest) {}, student.Role, ErrNoPermission},
		{"结束早于开始", func(r *dto.CreateEventRequest) { r.EndTime = r.StartTime.Add(-time.Minute) }, org.Role, ErrEventTimeOrder},
		{"开始等于结束", func(r *dto.CreateEventRequest) { r.EndTime = r.StartTime }, org.Role, ErrEventTimeOrder},
		{"开始时间已过", func(r *dto.CreateEventRequest) {
			r.StartTime = testNow.Add(-time.Hour)
			r.EndTime = testNow.Add(time.Hour)
		}, org.Role, ErrEventStartInPast},
		{"无效分类", func(r *dto.CreateEventRequest) { r.Category = "Party" }, org.Role, ErrInvalidCategory},
		{"容量为 0", func(r *dto.CreateEventRequest) { r.Capacity = intPtr(0) }, org.Role, ErrInvalidCapacity},
		{"社团不存在", func(r *dto.CreateEventRequest) { r.ClubID = "missing" }, org.Role, ErrClubNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validCreateRequest(club.ID)
			tt.mutate(req)
			_, err := svc.Create(context.Background(), req, org.ID, tt.role)
			if !errors.Is(err, tt.want) {
				t.Errorf("期望 %v，实际: %v", tt.want, err)
			}
		})
	}
}

// ── Get ──

func TestGetEvent_ViewerState(t *testing.T) {
	svc, db, _ := setupTestEventService()
	org := seedUser(db, "org", model.RoleOrganizer, "password123")
	stu := seedUser(db, "stu", model.RoleStudent, "password123")
	club := seedClub(db, "Gophers", org)
	past := seedEvent(db, "past", club, org, testNow.Add(-3*time.Hour), testNow.Add(-time.Hour), nil)
	seedRegistration(db, stu, past, testNow.Add(-48*time.Hour))
	seedAttendance(db, stu, past, testNow.Add(-3*time.Hour))
	db.ratings[pairKey(stu.ID, past.ID)] = &model.Rating{ID: "r1", UserID: stu.ID, EventID: past.ID, Score: 4}

	resp, err := svc.Get(context.Background(), past.ID, stu.ID, stu.Role)
	if err != nil {
		t.Fatalf("Get 失败: %v", err)
	}
	if resp.State != string(model.StatePast) {
		t.Errorf("期望 past，实际=%s", resp.State)
	}
	v := resp.Viewer
	if v == nil || !v.IsRegistered || !v.HasAttended || !v.CanRate || v.CanRegister || v.CanManage {
		t.Errorf("viewer 状态不正确: %+v", v)
	}
	if v.MyRating == nil || *v.MyRating != 4 {
		t.Errorf("期望 my_rating=4，实际=%v", v.MyRating)
	}
	if resp.AverageRating != 4 || resp.RatingCount != 1 || resp.AttendanceCount != 1 {
		t.Errorf("统计不正确: avg=%v count=%d att=%d", resp.AverageRating, resp.RatingCount, resp.AttendanceCount)
	}

	anon, err := svc.Get(context.Background(), past.ID, "", "")
	if err != nil {
		t.Fatalf("匿名 Get 失败: %v", err)
	}
	if anon.Viewer != nil {
		t.Error("匿名访问不应返回 viewer")
	}

	if _, err := svc.Get(context.Background(), "missing", "", ""); !errors.Is(err, ErrEventNotFound) {
		t.Errorf("期望 ErrEventNotFound，实际: %v", err)
	}
}

// ── Search ──

func TestSearchEvents(t *testing.T) {
	svc, db, _ := setupTestEventService()
	org := seedUser(db, "org", model.RoleOrganizer, "password123")
	club := seedClub(db, "Gophers", org)
	seedEvent(db, "past", club, org, testNow.Add(-3*time.Hour), testNow.Add(-time.Hour), nil)
	seedEvent(db, "ongoing", club, org, testNow.Add(-time.Hour), testNow.Add(time.Hour), nil)
	up := seedEvent(db, "upcoming", club, org, testNow.Add(time.Hour), testNow.Add(2*time.Hour), nil)
	up.Title = "Robotics Night"
	up.Category = "Social"

	tests := []struct {
		name string
		req  dto.EventSearchRequest
		want []string
	}{
		{"全部按开始时间", dto.EventSearchRequest{}, []string{"past", "ongoing", "upcoming"}},
		{"upcoming", dto.EventSearchRequest{State: "upcoming"}, []string{"upcoming"}},
		{"ongoing", dto.EventSearchRequest{State: "ongoing"}, []string{"ongoing"}},
		{"past", dto.EventSearchRequest{State: "past"}, []string{"past"}},
		{"关键字不区分大小写", dto.EventSearchRequest{Query: "robotics"}, []string{"upcoming"}},
		{"分类", dto.EventSearchRequest{Category: "Academic"}, []string{"past", "ongoing"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			list, total, err := svc.Search(context.Background(), &req)
			if err != nil {
				t.Fatalf("Search 失败: %v", err)
			}
			if int(total) != len(tt.want) || len(list) != len(tt.want) {
				t.Fatalf("期望 %d 条，实际 total=%d len=%d", len(tt.want), total, len(list))
			}
			for i, id := range tt.want {
				if list[i].ID != id {
					t.Errorf("第 %d 条期望 %s，实际 %s", i, id, list[i].ID)
				}
			}
		})
	}

	from, to := testNow.Add(time.Hour), testNow.Add(-time.Hour)
	if _, _, err := svc.Search(context.Background(), &dto.EventSearchRequest{From: &from, To: &to}); !errors.Is(err, ErrInvalidQueryRange) {
		t.Errorf("期望 ErrInvalidQueryRange，实际: %v", err)
	}
}

// ── Update ──

func TestUpdateEvent(t *testing.T) {
	svc, db, _ := setupTestEventService()
	org := seedUser(db, "org", model.RoleOrganizer, "password123")
	other := seedUser(db, "other", model.RoleOrganizer, "password123")
	club := seedClub(db, "Gophers", org)
	ev := seedEvent(db, "e1", club, org, testNow.Add(time.Hour), testNow.Add(2*time.Hour), intPtr(10))

	title := "Renamed"
	if _, err := svc.Update(context.Background(), ev.ID, &dto.UpdateEventRequest{Title: &title}, other.ID, other.Role); !errors.Is(err, ErrNoPermission) {
		t.Errorf("期望 ErrNoPermission，实际: %v", err)
	}

	resp, err := svc.Update(context.Background(), ev.ID, &dto.UpdateEventRequest{Title: &title, ClearCapacity: true}, org.ID, org.Role)
	if err != nil {
		t.Fatalf("Update 应成功: %v", err)
	}
	if resp.Title != "Renamed" || resp.Capacity != nil {
		t.Errorf("更新未生效: %+v", resp.EventResponse)
	}
	if resp.Version != 2 {
		t.Errorf("版本应递增为 2，实际=%d", resp.Version)
	}

	stale := 1
	if _, err := svc.Update(context.Background(), ev.ID, &dto.UpdateEventRequest{Title: &title, Version: &stale}, org.ID, org.Role); !errors.Is(err, pkgerrors.ErrOptimisticLock) {
		t.Errorf("期望 ErrOptimisticLock，实际: %v", err)
	}
}

func TestUpdateEvent_StartInPastOnlyWhenChanged(t *testing.T) {
	svc, db, _ := setupTestEventService()
	org := seedUser(db, "org", model.RoleOrganizer, "password123")
	club := seedClub(db, "Gophers", org)
	ongoing := seedEvent(db, "e1", club, org, testNow.Add(-time.Hour), testNow.Add(time.Hour), nil)

	// 开始时间未变，活动进行中仍可修改其它字段
	loc := "Hall B"
	if _, err := svc.Update(context.Background(), ongoing.ID, &dto.UpdateEventRequest{Location: &loc}, org.ID, org.Role); err != nil {
		t.Fatalf("未修改开始时间时应允许更新: %v", err)
	}

	past := testNow.Add(-30 * time.Minute)
	if _, err := svc.Update(context.Background(), ongoing.ID, &dto.UpdateEventRequest{StartTime: &past}, org.ID, org.Role); !errors.Is(err, ErrEventStartInPast) {
		t.Errorf("期望 ErrEventStartInPast，实际: %v", err)
	}

	end := testNow.Add(-2 * time.Hour)
	if _, err := svc.Update(context.Background(), ongoing.ID, &dto.UpdateEventRequest{EndTime: &end}, org.ID, org.Role); !errors.Is(err, ErrEventTimeOrder) {
		t.Errorf("期望 ErrEventTimeOrder，实际: %v", err)
	}
}

// ── Delete ──

func TestDeleteEvent_Cascade(t *testing.T) {
	svc, db, store := setupTestEventService()
	org := seedUser(db, "org", model.RoleOrganizer, "password123")
	stu := seedUser(db, "stu", model.RoleStudent, "password123")
	club := seedClub(db, "Gophers", org)
	ev := seedEvent(db, "e1", club, org, testNow.Add(time.Hour), testNow.Add(2*time.Hour), nil)
	ev.PosterKey = "posters/p.png"
	store.objects["posters/p.png"] = []byte("x")
	store.objects["photos/a.png"] = []byte("y")
	db.photos["ph1"] = &model.EventPhoto{ID: "ph1", EventID: ev.ID, StorageKey: "photos/a.png"}
	seedRegistration(db, stu, ev, testNow)
	seedAttendance(db, stu, ev, testNow)
	db.reminders[pairKey(stu.ID, ev.ID)] = &model.Reminder{ID: "rm1", UserID: stu.ID, EventID: ev.ID}

	if err := svc.Delete(context.Background(), ev.ID, org.ID, org.Role); err != nil {
		t.Fatalf("Delete 应成功: %v", err)
	}
	if len(db.events)+len(db.regs)+len(db.atts)+len(db.photos)+len(db.reminders) != 0 {
		t.Error("关联数据应全部删除")
	}
	if len(store.objects) != 0 {
		t.Errorf("存储文件应被清理，剩余 %d", len(store.objects))
	}
}

// ── Categories / Calendar ──

func TestCategories(t *testing.T) {
	svc, db, _ := setupTestEventService()
	org := seedUser(db, "org", model.RoleOrganizer, "password123")
	club := seedClub(db, "Gophers", org)
	seedEvent(db, "e1", club, org, testNow.Add(time.Hour), testNow.Add(2*time.Hour), nil)

	resp, err := svc.Categories(context.Background())
	if err != nil {
		t.Fatalf("Categories 失败: %v", err)
	}
	if len(resp.All) != len(model.EventCategories) {
		t.Errorf("All 应包含全部分类")
	}
	if len(resp.InUse) != 1 || resp.InUse[0] != "Academic" {
		t.Errorf("InUse 期望 [Academic]，实际=%v", resp.InUse)
	}
}

func TestCalendar(t *testing.T) {
	svc, db, _ := setupTestEventService()
	org := seedUser(db, "org", model.RoleOrganizer, "password123")
	stu := seedUser(db, "stu", model.RoleStudent, "password123")
	club := seedClub(db, "Gophers", org)
	e1 := seedEvent(db, "e1", club, org, testNow.Add(time.Hour), testNow.Add(2*time.Hour), nil)
	seedEvent(db, "e2", club, org, testNow.Add(48*time.Hour), testNow.Add(50*time.Hour), nil)
	seedRegistration(db, stu, e1, testNow)

	items, err := svc.CalendarFeed(context.Background(), &dto.CalendarRequest{})
	if err != nil {
		t.Fatalf("CalendarFeed 失败: %v", err)
	}
	if len(items) != 2 || items[0].URL != "http://localhost:8080/api/v1/events/e1" {
		t.Errorf("日历条目不正确: %+v", items)
	}

	ics, err := svc.MyCalendarICS(context.Background(), stu.ID)
	if err != nil {
		t.Fatalf("MyCalendarICS 失败: %v", err)
	}
	body := string(ics)
	if !strings.Contains(body, "BEGIN:VCALENDAR") || strings.Count(body, "BEGIN:VEVENT") != 1 {
		t.Errorf("个人日历应只包含 1 个活动:\n%s", body)
	}
}

package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"campus-events/backend/internal/dto"
	"campus-events/backend/internal/model"
)

func TestSetReminder(t *testing.T) {
	repo, db := newTestRepo()
	svc := NewReminderService(testConfig(), repo, nil, testClock(), time.UTC, nopLogger)

	org := seedUser(db, "org", model.RoleOrganizer, "password123")
	stu := seedUser(db, "stu", model.RoleStudent, "password123")
	club := seedClub(db, "Gophers", org)
	ev := seedEvent(db, "e1", club, org, testNow.Add(24*time.Hour), testNow.Add(26*time.Hour), nil)
	ctx := context.Background()

	at := testNow.Add(12 * time.Hour)
	if _, err := svc.Set(ctx, ev.ID, stu.ID, &dto.SetReminderRequest{RemindAt: at}); !errors.Is(err, ErrNotRegistered) {
		t.Errorf("未报名期望 ErrNotRegistered，实际: %v", err)
	}

	seedRegistration(db, stu, ev, testNow)
	for _, bad := range []time.Time{testNow.Add(-time.Minute), testNow, ev.StartTime, ev.StartTime.Add(time.Hour)} {
		if _, err := svc.Set(ctx, ev.ID, stu.ID, &dto.SetReminderRequest{RemindAt: bad}); !errors.Is(err, ErrReminderTime) {
			t.Errorf("remind_at=%v 期望 ErrReminderTime，实际: %v", bad, err)
		}
	}

	first, err := svc.Set(ctx, ev.ID, stu.ID, &dto.SetReminderRequest{RemindAt: at})
	if err != nil {
		t.Fatalf("Set 应成功: %v", err)
	}
	second, err := svc.Set(ctx, ev.ID, stu.ID, &dto.SetReminderRequest{RemindAt: at.Add(time.Hour)})
	if err != nil {
		t.Fatalf("再次 Set 应成功: %v", err)
	}
	if first.ID != second.ID || len(db.reminders) != 1 {
		t.Error("同一活动只能有一个提醒")
	}
	if !second.RemindAt.Equal(at.Add(time.Hour)) || second.EventTitle != ev.Title {
		t.Errorf("提醒内容不正确: %+v", second)
	}

	mine, err := svc.ListMine(ctx, stu.ID)
	if err != nil || len(mine) != 1 {
		t.Fatalf("ListMine 期望 1 条，实际 len=%d err=%v", len(mine), err)
	}

	if err := svc.Delete(ctx, ev.ID, stu.ID); err != nil {
		t.Fatalf("Delete 应成功: %v", err)
	}
	if err := svc.Delete(ctx, ev.ID, stu.ID); !errors.Is(err, ErrReminderNotFound) {
		t.Errorf("期望 ErrReminderNotFound，实际: %v", err)
	}
}

func TestDispatchDue(t *testing.T) {
	repo, db := newTestRepo()
	mail := &fakeMailer{failTo: map[string]bool{"bob@campus.edu": true}}
	svc := NewReminderService(testConfig(), repo, mail, testClock(), time.UTC, nopLogger)

	org := seedUser(db, "org", model.RoleOrganizer, "password123")
	alice := seedUser(db, "alice", model.RoleStudent, "password123")
	bob := seedUser(db, "bob", model.RoleStudent, "password123")
	carol := seedUser(db, "carol", model.RoleStudent, "password123")
	club := seedClub(db, "Gophers", org)
	ev := seedEvent(db, "e1", club, org, testNow.Add(time.Hour), testNow.Add(2*time.Hour), nil)

	db.reminders[pairKey(alice.ID, ev.ID)] = &model.Reminder{ID: "r-alice", UserID: alice.ID, EventID: ev.ID, RemindAt: testNow.Add(-time.Minute)}
	db.reminders[pairKey(bob.ID, ev.ID)] = &model.Reminder{ID: "r-bob", UserID: bob.ID, EventID: ev.ID, RemindAt: testNow.Add(-time.Minute)}
	db.reminders[pairKey(carol.ID, ev.ID)] = &model.Reminder{ID: "r-carol", UserID: carol.ID, EventID: ev.ID, RemindAt: testNow.Add(30 * time.Minute)}

	sent, err := svc.DispatchDue(context.Background(), testNow)
	if err != nil {
		t.Fatalf("DispatchDue 失败: %v", err)
	}
	if sent != 1 || len(mail.sent) != 1 {
		t.Fatalf("期望发送 1 封，实际 sent=%d mails=%d", sent, len(mail.sent))
	}
	msg := mail.sent[0]
	if msg.To != alice.Email || !strings.Contains(msg.Subject, ev.Title) || !strings.Contains(msg.Body, "/api/v1/events/e1") {
		t.Errorf("邮件内容不正确: %+v", msg)
	}
	if db.reminders[pairKey(alice.ID, ev.ID)].SentAt == nil {
		t.Error("已发送的提醒应标记 sent_at")
	}
	if db.reminders[pairKey(bob.ID, ev.ID)].SentAt != nil {
		t.Error("发送失败的提醒不应标记 sent_at")
	}

	// 再次执行不会重复发送
	if sent, _ := svc.DispatchDue(context.Background(), testNow); sent != 0 {
		t.Errorf("重复执行不应再发送，实际=%d", sent)
	}
}

func TestDispatchDue_FailingHeadDoesNotBlockQueue(t *testing.T) {
	repo, db := newTestRepo()
	cfg := testConfig()
	cfg.Reminder.BatchSize = 1
	mail := &fakeMailer{failTo: map[string]bool{"bob@campus.edu": true}}
	svc := NewReminderService(cfg, repo, mail, testClock(), time.UTC, nopLogger)

	org := seedUser(db, "org", model.RoleOrganizer, "password123")
	alice := seedUser(db, "alice", model.RoleStudent, "password123")
	bob := seedUser(db, "bob", model.RoleStudent, "password123")
	club := seedClub(db, "Gophers", org)
	ev := seedEvent(db, "e1", club, org, testNow.Add(24*time.Hour), testNow.Add(26*time.Hour), nil)

	// bob 的提醒更早到期且永远发送失败
	db.reminders[pairKey(bob.ID, ev.ID)] = &model.Reminder{ID: "r-bob", UserID: bob.ID, EventID: ev.ID, RemindAt: testNow.Add(-2 * time.Minute)}
	db.reminders[pairKey(alice.ID, ev.ID)] = &model.Reminder{ID: "r-alice", UserID: alice.ID, EventID: ev.ID, RemindAt: testNow.Add(-time.Minute)}

	now := testNow
	total := 0
	for i := 0; i < 5; i++ {
		sent, err := svc.DispatchDue(context.Background(), now)
		if err != nil {
			t.Fatalf("DispatchDue 失败: %v", err)
		}
		total += sent
		now = now.Add(time.Minute)
	}

	if total != 1 || db.reminders[pairKey(alice.ID, ev.ID)].SentAt == nil {
		t.Fatalf("失败的队首提醒不应阻塞后续提醒，sent=%d", total)
	}
	r := db.reminders[pairKey(bob.ID, ev.ID)]
	if r.Attempts != 1 || r.LastError == "" || !r.RemindAt.After(testNow) {
		t.Errorf("失败提醒应记录次数与原因并顺延，实际 attempts=%d err=%q remind_at=%v", r.Attempts, r.LastError, r.RemindAt)
	}
}

func TestDispatchDue_GivesUpAfterMaxAttempts(t *testing.T) {
	repo, db := newTestRepo()
	cfg := testConfig()
	mail := &fakeMailer{failTo: map[string]bool{"bob@campus.edu": true}}
	svc := NewReminderService(cfg, repo, mail, testClock(), time.UTC, nopLogger)

	org := seedUser(db, "org", model.RoleOrganizer, "password123")
	bob := seedUser(db, "bob", model.RoleStudent, "password123")
	club := seedClub(db, "Gophers", org)
	ev := seedEvent(db, "e1", club, org, testNow.Add(72*time.Hour), testNow.Add(74*time.Hour), nil)
	db.reminders[pairKey(bob.ID, ev.ID)] = &model.Reminder{ID: "r-bob", UserID: bob.ID, EventID: ev.ID, RemindAt: testNow}

	// 每次都推进到下一次重试时间之后
	now := testNow
	for i := 0; i < cfg.Reminder.MaxAttempts+2; i++ {
		svc.DispatchDue(context.Background(), now)
		now = db.reminders[pairKey(bob.ID, ev.ID)].RemindAt.Add(time.Second)
	}

	r := db.reminders[pairKey(bob.ID, ev.ID)]
	if r.Attempts != cfg.Reminder.MaxAttempts {
		t.Errorf("达到上限后应停止重试，期望 attempts=%d，实际=%d", cfg.Reminder.MaxAttempts, r.Attempts)
	}
	if r.SentAt != nil {
		t.Error("放弃的提醒不应标记 sent_at")
	}
}

func TestDispatchDue_SkipsStartedEvents(t *testing.T) {
	repo, db := newTestRepo()
	mail := &fakeMailer{}
	svc := NewReminderService(testConfig(), repo, mail, testClock(), time.UTC, nopLogger)

	org := seedUser(db, "org", model.RoleOrganizer, "password123")
	alice := seedUser(db, "alice", model.RoleStudent, "password123")
	club := seedClub(db, "Gophers", org)
	started := seedEvent(db, "e1", club, org, testNow.Add(-10*time.Minute), testNow.Add(time.Hour), nil)
	db.reminders[pairKey(alice.ID, started.ID)] = &model.Reminder{ID: "r-late", UserID: alice.ID, EventID: started.ID, RemindAt: testNow.Add(-time.Hour)}

	if sent, _ := svc.DispatchDue(context.Background(), testNow); sent != 0 || len(mail.sent) != 0 {
		t.Errorf("活动已开始时不应再发送提醒，实际 sent=%d", sent)
	}
}

func TestDispatchDue_NoMailer(t *testing.T) {
	repo, _ := newTestRepo()
	svc := NewReminderService(testConfig(), repo, nil, testClock(), time.UTC, nopLogger)
	if sent, err := svc.DispatchDue(context.Background(), testNow); sent != 0 || err != nil {
		t.Errorf("未配置邮件时应为空操作: sent=%d err=%v", sent, err)
	}
}

package service

import (
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"campus-events/backend/config"
	"campus-events/backend/internal/model"
	"campus-events/backend/pkg/clock"
)

// 所有用例默认的“当前时间”
var testNow = time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			BaseURL:  "http://localhost:8080",
			Timezone: "Asia/Shanghai",
		},
		Auth: config.AuthConfig{
			JWTSecret:               "test-secret-key-for-unit-testing-2026",
			AccessTokenTTL:          15 * time.Minute,
			RefreshTokenTTLDefault:  24 * time.Hour,
			RefreshTokenTTLRemember: 7 * 24 * time.Hour,
		},
		Reminder: config.ReminderConfig{Spec: "@every 1m", BatchSize: 100, MaxAttempts: 3, RetryBackoff: 5 * time.Minute},
	}
}

func testClock() *clock.Fixed { return &clock.Fixed{T: testNow} }

var nopLogger = zap.NewNop()

func intPtr(v int) *int { return &v }

func seedUser(db *memDB, username, role, password string) *model.User {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	u := &model.User{
		ID:           "u-" + username,
		Username:     username,
		Email:        username + "@campus.edu",
		PasswordHash: string(hash),
		FirstName:    "First" + username,
		LastName:     "Last" + username,
		Role:         role,
	}
	db.users[u.ID] = u
	return u
}

func seedClub(db *memDB, name string, owner *model.User) *model.Club {
	c := &model.Club{ID: "c-" + name, Name: name, OwnerID: owner.ID}
	db.clubs[c.ID] = c
	return c
}

func seedEvent(db *memDB, id string, club *model.Club, organizer *model.User, start, end time.Time, capacity *int) *model.Event {
	e := &model.Event{
		ID:          id,
		Title:       "Event " + id,
		Description: "description of " + id,
		StartTime:   start,
		EndTime:     end,
		Location:    "Hall A",
		Category:    "Academic",
		Capacity:    capacity,
		ClubID:      club.ID,
		OrganizerID: organizer.ID,
	}
	e.Version = 1
	e.CreatedAt = start.Add(-48 * time.Hour)
	db.events[e.ID] = e
	return e
}

func seedRegistration(db *memDB, user *model.User, event *model.Event, at time.Time) {
	db.regs[pairKey(user.ID, event.ID)] = &model.Registration{
		ID: db.nextID("reg"), UserID: user.ID, EventID: event.ID, RegisteredAt: at,
	}
}

func seedAttendance(db *memDB, user *model.User, event *model.Event, at time.Time) {
	db.atts[pairKey(user.ID, event.ID)] = &model.Attendance{
		ID: db.nextID("att"), UserID: user.ID, EventID: event.ID, CheckedInAt: at,
	}
}

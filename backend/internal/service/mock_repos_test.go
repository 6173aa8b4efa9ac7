package service

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"campus-events/backend/internal/model"
	"campus-events/backend/internal/repository"
	pkgerrors "campus-events/backend/pkg/errors"
	"campus-events/backend/pkg/mailer"
)

// memDB 各 mock 仓储共享的内存数据，便于跨表查询（名单、我的活动等）
type memDB struct {
	seq int

	users     map[string]*model.User
	clubs     map[string]*model.Club
	events    map[string]*model.Event
	regs      map[string]*model.Registration // key: userID|eventID
	atts      map[string]*model.Attendance
	ratings   map[string]*model.Rating
	photos    map[string]*model.EventPhoto
	reminders map[string]*model.Reminder
}

func newMemDB() *memDB {
	return &memDB{
		users:     make(map[string]*model.User),
		clubs:     make(map[string]*model.Club),
		events:    make(map[string]*model.Event),
		regs:      make(map[string]*model.Registration),
		atts:      make(map[string]*model.Attendance),
		ratings:   make(map[string]*model.Rating),
		photos:    make(map[string]*model.EventPhoto),
		reminders: make(map[string]*model.Reminder),
	}
}

func (m *memDB) nextID(prefix string) string {
	m.seq++
	return fmt.Sprintf("%s-%d", prefix, m.seq)
}

func pairKey(userID, eventID string) string { return userID + "|" + eventID }

// newTestRepo 组装基于 memDB 的 Repository（未绑定数据库，Transaction 直接执行）
func newTestRepo() (*repository.Repository, *memDB) {
	db := newMemDB()
	return &repository.Repository{
		User:         &mockUserRepo{db},
		Club:         &mockClubRepo{db},
		Event:        &mockEventRepo{db},
		Registration: &mockRegistrationRepo{db},
		Attendance:   &mockAttendanceRepo{db},
		Rating:       &mockRatingRepo{db},
		Photo:        &mockPhotoRepo{db},
		Reminder:     &mockReminderRepo{db},
	}, db
}

// ── Mock UserRepository ──

type mockUserRepo struct{ db *memDB }

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	for _, u := range m.db.users {
		if u.Username == user.Username || strings.EqualFold(u.Email, user.Email) {
			return repository.ErrDuplicate
		}
	}
	if user.ID == "" {
		user.ID = m.db.nextID("user")
	}
	cp := *user
	m.db.users[user.ID] = &cp
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.db.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.db.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range m.db.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) ExistsByUsername(_ context.Context, username, excludeID string) (bool, error) {
	for _, u := range m.db.users {
		if u.Username == username && u.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockUserRepo) ExistsByEmail(_ context.Context, email, excludeID string) (bool, error) {
	for _, u := range m.db.users {
		if strings.EqualFold(u.Email, email) && u.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	cp := *user
	m.db.users[user.ID] = &cp
	return nil
}

func (m *mockUserRepo) UpdateRole(_ context.Context, id, role string) error {
	if u, ok := m.db.users[id]; ok {
		u.Role = role
	}
	return nil
}

func (m *mockUserRepo) List(_ context.Context, filter repository.UserFilter, offset, limit int) ([]model.User, int64, error) {
	var all []model.User
	for _, u := range m.db.users {
		if filter.Role != "" && u.Role != filter.Role {
			continue
		}
		if kw := strings.ToLower(filter.Keyword); kw != "" &&
			!strings.Contains(strings.ToLower(u.Username), kw) && !strings.Contains(strings.ToLower(u.Email), kw) {
			continue
		}
		all = append(all, *u)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Username < all[j].Username })
	return paginate(all, offset, limit), int64(len(all)), nil
}

func (m *mockUserRepo) CountByRole(_ context.Context) (map[string]int64, error) {
	out := make(map[string]int64)
	for _, u := range m.db.users {
		out[u.Role]++
	}
	return out, nil
}

func (m *mockUserRepo) LockIDsByRole(_ context.Context, role string) ([]string, error) {
	var ids []string
	for _, u := range m.db.users {
		if u.Role == role {
			ids = append(ids, u.ID)
		}
	}
	return ids, nil
}

// ── Mock ClubRepository ──

type mockClubRepo struct{ db *memDB }

func (m *mockClubRepo) Create(_ context.Context, club *model.Club) error {
	for _, c := range m.db.clubs {
		if c.Name == club.Name {
			return repository.ErrDuplicate
		}
	}
	if club.ID == "" {
		club.ID = m.db.nextID("club")
	}
	cp := *club
	cp.Owner = nil
	m.db.clubs[club.ID] = &cp
	return nil
}

func (m *mockClubRepo) GetByID(_ context.Context, id string) (*model.Club, error) {
	c, ok := m.db.clubs[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *c
	cp.Owner = m.db.users[c.OwnerID]
	return &cp, nil
}

func (m *mockClubRepo) ExistsByName(_ context.Context, name, excludeID string) (bool, error) {
	for _, c := range m.db.clubs {
		if c.Name == name && c.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockClubRepo) Update(_ context.Context, club *model.Club) error {
	cp := *club
	cp.Owner = nil
	m.db.clubs[club.ID] = &cp
	return nil
}

func (m *mockClubRepo) Delete(_ context.Context, id string) error {
	delete(m.db.clubs, id)
	return nil
}

func (m *mockClubRepo) List(_ context.Context, filter repository.ClubFilter, offset, limit int) ([]model.ClubWithCount, int64, error) {
	var all []model.ClubWithCount
	for _, c := range m.db.clubs {
		if filter.OwnerID != "" && c.OwnerID != filter.OwnerID {
			continue
		}
		if kw := strings.ToLower(filter.Keyword); kw != "" && !strings.Contains(strings.ToLower(c.Name), kw) {
			continue
		}
		var count int64
		for _, e := range m.db.events {
			if e.ClubID == c.ID {
				count++
			}
		}
		all = append(all, model.ClubWithCount{Club: *c, EventCount: count})
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	return paginate(all, offset, limit), int64(len(all)), nil
}

func (m *mockClubRepo) Count(_ context.Context) (int64, error) {
	return int64(len(m.db.clubs)), nil
}

// ── Mock EventRepository ──

type mockEventRepo struct{ db *memDB }

func (m *mockEventRepo) load(e *model.Event) model.Event {
	cp := *e
	cp.Club = m.db.clubs[e.ClubID]
	cp.Organizer = m.db.users[e.OrganizerID]
	return cp
}

func (m *mockEventRepo) Create(_ context.Context, event *model.Event) error {
	if event.ID == "" {
		event.ID = m.db.nextID("event")
	}
	if event.Version == 0 {
		event.Version = 1
	}
	cp := *event
	cp.Club, cp.Organizer = nil, nil
	m.db.events[event.ID] = &cp
	return nil
}

func (m *mockEventRepo) GetByID(_ context.Context, id string) (*model.Event, error) {
	e, ok := m.db.events[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := m.load(e)
	return &cp, nil
}

func (m *mockEventRepo) GetByIDForUpdate(ctx context.Context, id string) (*model.Event, error) {
	return m.GetByID(ctx, id)
}

func (m *mockEventRepo) Update(_ context.Context, event *model.Event) error {
	stored, ok := m.db.events[event.ID]
	if !ok || stored.Version != event.Version {
		return pkgerrors.ErrOptimisticLock
	}
	event.Version++
	cp := *event
	cp.Club, cp.Organizer = nil, nil
	m.db.events[event.ID] = &cp
	return nil
}

func (m *mockEventRepo) Delete(_ context.Context, id string) error {
	delete(m.db.events, id)
	return nil
}

func (m *mockEventRepo) match(e *model.Event, f repository.EventFilter) bool {
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" &&
		!strings.Contains(strings.ToLower(e.Title), q) && !strings.Contains(strings.ToLower(e.Description), q) {
		return false
	}
	if f.Category != "" && e.Category != f.Category {
		return false
	}
	if f.State != "" && e.StateAt(f.Now) != f.State {
		return false
	}
	if f.From != nil && e.StartTime.Before(*f.From) {
		return false
	}
	if f.To != nil && !e.StartTime.Before(*f.To) {
		return false
	}
	if f.ClubID != "" && e.ClubID != f.ClubID {
		return false
	}
	if f.OrganizerID != "" && e.OrganizerID != f.OrganizerID {
		return false
	}
	return true
}

func (m *mockEventRepo) Search(_ context.Context, filter repository.EventFilter, offset, limit int) ([]model.Event, int64, error) {
	var all []model.Event
	for _, e := range m.db.events {
		if m.match(e, filter) {
			all = append(all, m.load(e))
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if filter.State == model.StatePast {
			return all[i].StartTime.After(all[j].StartTime)
		}
		return all[i].StartTime.Before(all[j].StartTime)
	})
	return paginate(all, offset, limit), int64(len(all)), nil
}

func (m *mockEventRepo) DistinctCategories(_ context.Context) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	for _, e := range m.db.events {
		if !seen[e.Category] {
			seen[e.Category] = true
			out = append(out, e.Category)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (m *mockEventRepo) CountByClub(_ context.Context, clubID string) (int64, error) {
	var n int64
	for _, e := range m.db.events {
		if e.ClubID == clubID {
			n++
		}
	}
	return n, nil
}

func (m *mockEventRepo) Stats(_ context.Context, now time.Time, organizerID string) (*model.EventStats, error) {
	stats := &model.EventStats{Categories: make(map[string]int64)}
	for _, e := range m.db.events {
		if organizerID != "" && e.OrganizerID != organizerID {
			continue
		}
		stats.Total++
		stats.Categories[e.Category]++
		switch e.StateAt(now) {
		case model.StateUpcoming:
			stats.Upcoming++
		case model.StateOngoing:
			stats.Ongoing++
		case model.StatePast:
			stats.Past++
		}
	}
	return stats, nil
}

func (m *mockEventRepo) ListRecent(_ context.Context, limit int) ([]model.Event, error) {
	var all []model.Event
	for _, e := range m.db.events {
		all = append(all, m.load(e))
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	return paginate(all, 0, limit), nil
}

func (m *mockEventRepo) ListUnregisteredBetween(_ context.Context, userID string, from, to time.Time, limit int) ([]model.Event, error) {
	var all []model.Event
	for _, e := range m.db.events {
		if e.StartTime.Before(from) || e.StartTime.After(to) {
			continue
		}
		if _, ok := m.db.regs[pairKey(userID, e.ID)]; ok {
			continue
		}
		all = append(all, m.load(e))
	}
	sort.Slice(all, func(i, j int) bool { return all[i].StartTime.Before(all[j].StartTime) })
	return paginate(all, 0, limit), nil
}

// ── Mock RegistrationRepository ──

type mockRegistrationRepo struct{ db *memDB }

func (m *mockRegistrationRepo) Create(_ context.Context, reg *model.Registration) error {
	key := pairKey(reg.UserID, reg.EventID)
	if _, ok := m.db.regs[key]; ok {
		return repository.ErrDuplicate
	}
	if reg.ID == "" {
		reg.ID = m.db.nextID("reg")
	}
	cp := *reg
	m.db.regs[key] = &cp
	return nil
}

func (m *mockRegistrationRepo) Get(_ context.Context, userID, eventID string) (*model.Registration, error) {
	if r, ok := m.db.regs[pairKey(userID, eventID)]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockRegistrationRepo) Delete(_ context.Context, userID, eventID string) error {
	key := pairKey(userID, eventID)
	if _, ok := m.db.regs[key]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.db.regs, key)
	return nil
}

func (m *mockRegistrationRepo) CountByEvent(_ context.Context, eventID string) (int64, error) {
	var n int64
	for _, r := range m.db.regs {
		if r.EventID == eventID {
			n++
		}
	}
	return n, nil
}

func (m *mockRegistrationRepo) CountByEvents(_ context.Context, eventIDs []string) (map[string]int64, error) {
	out := make(map[string]int64, len(eventIDs))
	for _, id := range eventIDs {
		for _, r := range m.db.regs {
			if r.EventID == id {
				out[id]++
			}
		}
	}
	return out, nil
}

func (m *mockRegistrationRepo) ListByUser(_ context.Context, userID string) ([]model.Registration, error) {
	var out []model.Registration
	for _, r := range m.db.regs {
		if r.UserID != userID {
			continue
		}
		cp := *r
		if e, ok := m.db.events[r.EventID]; ok {
			ev := *e
			ev.Club = m.db.clubs[e.ClubID]
			cp.Event = &ev
		}
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Event.StartTime.Before(out[j].Event.StartTime) })
	return out, nil
}

func (m *mockRegistrationRepo) Roster(_ context.Context, eventID string) ([]model.RosterEntry, error) {
	var out []model.RosterEntry
	for _, r := range m.db.regs {
		if r.EventID != eventID {
			continue
		}
		u := m.db.users[r.UserID]
		entry := model.RosterEntry{
			UserID:       r.UserID,
			RegisteredAt: r.RegisteredAt,
		}
		if u != nil {
			entry.Username, entry.FirstName, entry.LastName, entry.Email = u.Username, u.FirstName, u.LastName, u.Email
		}
		if a, ok := m.db.atts[pairKey(r.UserID, eventID)]; ok {
			at := a.CheckedInAt
			entry.CheckedInAt = &at
		}
		out = append(out, entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RegisteredAt.Before(out[j].RegisteredAt) })
	return out, nil
}

func (m *mockRegistrationRepo) RecentForOrganizer(_ context.Context, organizerID string, limit int) ([]model.RecentRegistration, error) {
	var out []model.RecentRegistration
	for _, r := range m.db.regs {
		e := m.db.events[r.EventID]
		if e == nil || e.OrganizerID != organizerID {
			continue
		}
		row := model.RecentRegistration{EventID: e.ID, EventTitle: e.Title, UserID: r.UserID, RegisteredAt: r.RegisteredAt}
		if u := m.db.users[r.UserID]; u != nil {
			row.Username = u.Username
		}
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RegisteredAt.After(out[j].RegisteredAt) })
	return paginate(out, 0, limit), nil
}

func (m *mockRegistrationRepo) DeleteByEvent(_ context.Context, eventID string) error {
	for k, r := range m.db.regs {
		if r.EventID == eventID {
			delete(m.db.regs, k)
		}
	}
	return nil
}

// ── Mock AttendanceRepository ──

type mockAttendanceRepo struct{ db *memDB }

func (m *mockAttendanceRepo) Create(_ context.Context, att *model.Attendance) error {
	key := pairKey(att.UserID, att.EventID)
	if _, ok := m.db.atts[key]; ok {
		return repository.ErrDuplicate
	}
	if att.ID == "" {
		att.ID = m.db.nextID("att")
	}
	cp := *att
	m.db.atts[key] = &cp
	return nil
}

func (m *mockAttendanceRepo) Get(_ context.Context, userID, eventID string) (*model.Attendance, error) {
	if a, ok := m.db.atts[pairKey(userID, eventID)]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAttendanceRepo) CountByEvent(_ context.Context, eventID string) (int64, error) {
	var n int64
	for _, a := range m.db.atts {
		if a.EventID == eventID {
			n++
		}
	}
	return n, nil
}

func (m *mockAttendanceRepo) EventIDsByUser(_ context.Context, userID string) (map[string]bool, error) {
	out := make(map[string]bool)
	for _, a := range m.db.atts {
		if a.UserID == userID {
			out[a.EventID] = true
		}
	}
	return out, nil
}

func (m *mockAttendanceRepo) DeleteByEvent(_ context.Context, eventID string) error {
	for k, a := range m.db.atts {
		if a.EventID == eventID {
			delete(m.db.atts, k)
		}
	}
	return nil
}

// ── Mock RatingRepository ──

type mockRatingRepo struct{ db *memDB }

func (m *mockRatingRepo) Upsert(_ context.Context, rating *model.Rating) error {
	key := pairKey(rating.UserID, rating.EventID)
	if existing, ok := m.db.ratings[key]; ok {
		rating.ID = existing.ID
	} else if rating.ID == "" {
		rating.ID = m.db.nextID("rating")
	}
	cp := *rating
	m.db.ratings[key] = &cp
	return nil
}

func (m *mockRatingRepo) Get(_ context.Context, userID, eventID string) (*model.Rating, error) {
	if r, ok := m.db.ratings[pairKey(userID, eventID)]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockRatingRepo) ListByEvent(_ context.Context, eventID string) ([]model.Rating, error) {
	var out []model.Rating
	for _, r := range m.db.ratings {
		if r.EventID == eventID {
			cp := *r
			cp.User = m.db.users[r.UserID]
			out = append(out, cp)
		}
	}
	return out, nil
}

func (m *mockRatingRepo) Average(_ context.Context, eventID string) (float64, int64, error) {
	var sum, n int64
	for _, r := range m.db.ratings {
		if r.EventID == eventID {
			sum += int64(r.Score)
			n++
		}
	}
	if n == 0 {
		return 0, 0, nil
	}
	return float64(sum) / float64(n), n, nil
}

func (m *mockRatingRepo) ScoresByUser(_ context.Context, userID string) (map[string]int, error) {
	out := make(map[string]int)
	for _, r := range m.db.ratings {
		if r.UserID == userID {
			out[r.EventID] = r.Score
		}
	}
	return out, nil
}

func (m *mockRatingRepo) DeleteByEvent(_ context.Context, eventID string) error {
	for k, r := range m.db.ratings {
		if r.EventID == eventID {
			delete(m.db.ratings, k)
		}
	}
	return nil
}

// ── Mock PhotoRepository ──

type mockPhotoRepo struct{ db *memDB }

func (m *mockPhotoRepo) Create(_ context.Context, photo *model.EventPhoto) error {
	if photo.ID == "" {
		photo.ID = m.db.nextID("photo")
	}
	cp := *photo
	m.db.photos[photo.ID] = &cp
	return nil
}

func (m *mockPhotoRepo) GetByID(_ context.Context, id string) (*model.EventPhoto, error) {
	if p, ok := m.db.photos[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockPhotoRepo) ListByEvent(_ context.Context, eventID string) ([]model.EventPhoto, error) {
	var out []model.EventPhoto
	for _, p := range m.db.photos {
		if p.EventID == eventID {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockPhotoRepo) Delete(_ context.Context, id string) error {
	delete(m.db.photos, id)
	return nil
}

func (m *mockPhotoRepo) DeleteByEvent(_ context.Context, eventID string) error {
	for k, p := range m.db.photos {
		if p.EventID == eventID {
			delete(m.db.photos, k)
		}
	}
	return nil
}

// ── Mock ReminderRepository ──

type mockReminderRepo struct{ db *memDB }

func (m *mockReminderRepo) Upsert(_ context.Context, reminder *model.Reminder) error {
	key := pairKey(reminder.UserID, reminder.EventID)
	if existing, ok := m.db.reminders[key]; ok {
		existing.RemindAt = reminder.RemindAt
		existing.SentAt = nil
		existing.Attempts, existing.LastError = 0, ""
		reminder.ID = existing.ID
		return nil
	}
	if reminder.ID == "" {
		reminder.ID = m.db.nextID("reminder")
	}
	cp := *reminder
	m.db.reminders[key] = &cp
	return nil
}

func (m *mockReminderRepo) Get(_ context.Context, userID, eventID string) (*model.Reminder, error) {
	if r, ok := m.db.reminders[pairKey(userID, eventID)]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockReminderRepo) Delete(_ context.Context, userID, eventID string) error {
	key := pairKey(userID, eventID)
	if _, ok := m.db.reminders[key]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.db.reminders, key)
	return nil
}

func (m *mockReminderRepo) ListByUser(_ context.Context, userID string) ([]model.Reminder, error) {
	var out []model.Reminder
	for _, r := range m.db.reminders {
		if r.UserID == userID {
			cp := *r
			cp.Event = m.db.events[r.EventID]
			out = append(out, cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RemindAt.Before(out[j].RemindAt) })
	return out, nil
}

func (m *mockReminderRepo) ListDue(_ context.Context, now time.Time, maxAttempts, limit int) ([]model.Reminder, error) {
	var out []model.Reminder
	for _, r := range m.db.reminders {
		if r.SentAt != nil || r.RemindAt.After(now) || r.Attempts >= maxAttempts {
			continue
		}
		if ev, ok := m.db.events[r.EventID]; !ok || !ev.StartTime.After(now) {
			continue
		}
		cp := *r
		cp.User = m.db.users[r.UserID]
		cp.Event = m.db.events[r.EventID]
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RemindAt.Before(out[j].RemindAt) })
	return paginate(out, 0, limit), nil
}

func (m *mockReminderRepo) MarkSent(_ context.Context, id string, at time.Time) error {
	for _, r := range m.db.reminders {
		if r.ID == id {
			t := at
			r.SentAt = &t
		}
	}
	return nil
}

func (m *mockReminderRepo) MarkFailed(_ context.Context, id, reason string, retryAt time.Time) error {
	for _, r := range m.db.reminders {
		if r.ID == id {
			r.Attempts++
			r.LastError = reason
			r.RemindAt = retryAt
		}
	}
	return nil
}

func (m *mockReminderRepo) DeleteByEvent(_ context.Context, eventID string) error {
	for k, r := range m.db.reminders {
		if r.EventID == eventID {
			delete(m.db.reminders, k)
		}
	}
	return nil
}

// ── 其他测试替身 ──

// memStorage 内存对象存储
type memStorage struct {
	objects map[string][]byte
}

func newMemStorage() *memStorage {
	return &memStorage{objects: make(map[string][]byte)}
}

func (s *memStorage) Put(_ context.Context, key string, r io.Reader, _ string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	s.objects[key] = data
	return "/uploads/" + key, nil
}

func (s *memStorage) Delete(_ context.Context, key string) error {
	delete(s.objects, key)
	return nil
}

// fakeMailer 记录发送的邮件；failTo 中的收件人发送失败
type fakeMailer struct {
	mu     sync.Mutex
	sent   []mailer.Message
	failTo map[string]bool
}

func (f *fakeMailer) Send(_ context.Context, msg mailer.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failTo[msg.To] {
		return fmt.Errorf("smtp unavailable")
	}
	f.sent = append(f.sent, msg)
	return nil
}

// fakeBlacklist 记录被拉黑的 jti
type fakeBlacklist struct {
	jtis map[string]time.Duration
}

func (f *fakeBlacklist) BlacklistToken(_ context.Context, jti string, ttl time.Duration) error {
	f.jtis[jti] = ttl
	return nil
}

func (f *fakeBlacklist) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	_, ok := f.jtis[jti]
	return ok, nil
}

func paginate[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

// pngBytes 生成一张 w×h 的纯色 PNG
func pngBytes(w, h int) *bytes.Reader {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: 200, G: 80, B: 40, A: 255})
		}
	}
	var buf bytes.Buffer
	_ = png.Encode(&buf, img)
	return bytes.NewReader(buf.Bytes())
}

package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/Freeeeeet/artacademy/internal/model"
)

var errStoreDown = errors.New("connection refused")

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(now time.Time) *fakeClock {
	return &fakeClock{now: now}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func strPtr(s string) *string { return &s }

// ============ sessions ============

type fakeSessionStore struct {
	mu       sync.Mutex
	sessions map[string]*model.LiveSession

	getErr      error
	endErr      error
	listErr     error
	closeErrFor map[string]error
	afterClose  func(id string)
	getCalls    int
}

func newFakeSessionStore(sessions ...*model.LiveSession) *fakeSessionStore {
	s := &fakeSessionStore{
		sessions:    make(map[string]*model.LiveSession),
		closeErrFor: make(map[string]error),
	}
	for _, session := range sessions {
		s.sessions[session.ID] = session
	}
	return s
}

func copySession(s *model.LiveSession) *model.LiveSession {
	c := *s
	if s.ActiveChannel != nil {
		c.ActiveChannel = strPtr(*s.ActiveChannel)
	}
	if s.EndedAt != nil {
		endedAt := *s.EndedAt
		c.EndedAt = &endedAt
	}
	return &c
}

func (s *fakeSessionStore) get(id string) *model.LiveSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	if session, ok := s.sessions[id]; ok {
		return copySession(session)
	}
	return nil
}

func (s *fakeSessionStore) Create(_ context.Context, session *model.LiveSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	session.CreatedAt = time.Now()
	s.sessions[session.ID] = copySession(session)
	return nil
}

func (s *fakeSessionStore) GetByID(_ context.Context, id string) (*model.LiveSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.getCalls++
	if s.getErr != nil {
		return nil, s.getErr
	}
	if session, ok := s.sessions[id]; ok {
		return copySession(session), nil
	}
	return nil, nil
}

func (s *fakeSessionStore) Start(_ context.Context, id, channel string, now time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok || session.ActiveChannel != nil || session.EndedAt != nil || !session.ScheduledEnd.After(now) {
		return false, nil
	}
	session.ActiveChannel = strPtr(channel)
	return true, nil
}

func (s *fakeSessionStore) EndByChannel(_ context.Context, channel string, now time.Time) ([]*model.LiveSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.endErr != nil {
		return nil, s.endErr
	}

	var ended []*model.LiveSession
	for _, session := range s.sessions {
		if session.ActiveChannel == nil || *session.ActiveChannel != channel {
			continue
		}
		endedAt := now
		session.ActiveChannel = nil
		session.EndedAt = &endedAt
		session.ScheduledEnd = now
		if now.Before(session.ScheduledStart) {
			session.ScheduledEnd = session.ScheduledStart
		}
		ended = append(ended, copySession(session))
	}
	return ended, nil
}

func (s *fakeSessionStore) ListExpired(_ context.Context, now time.Time) ([]*model.LiveSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}

	var expired []*model.LiveSession
	for _, session := range s.sessions {
		if session.ActiveChannel != nil && session.ScheduledEnd.Before(now) {
			expired = append(expired, copySession(session))
		}
	}
	sort.Slice(expired, func(i, j int) bool { return expired[i].ID < expired[j].ID })
	return expired, nil
}

func (s *fakeSessionStore) CloseExpired(_ context.Context, id string, now time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.closeErrFor[id]; err != nil {
		return false, err
	}

	session, ok := s.sessions[id]
	if !ok || session.ActiveChannel == nil || !session.ScheduledEnd.Before(now) {
		return false, nil
	}
	endedAt := now
	session.ActiveChannel = nil
	session.EndedAt = &endedAt
	if s.afterClose != nil {
		s.afterClose(id)
	}
	return true, nil
}

func (s *fakeSessionStore) ListLive(_ context.Context, now time.Time) ([]*model.LiveSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}

	var live []*model.LiveSession
	for _, session := range s.sessions {
		if session.ActiveChannel != nil && !now.Before(session.ScheduledStart) && !now.After(session.ScheduledEnd) {
			live = append(live, copySession(session))
		}
	}
	sort.Slice(live, func(i, j int) bool { return live[i].ScheduledStart.Before(live[j].ScheduledStart) })
	return live, nil
}

func (s *fakeSessionStore) ListUpcoming(_ context.Context, now time.Time, limit int) ([]*model.LiveSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}

	var upcoming []*model.LiveSession
	for _, session := range s.sessions {
		if session.EndedAt == nil && !session.ScheduledEnd.Before(now) {
			upcoming = append(upcoming, copySession(session))
		}
	}
	sort.Slice(upcoming, func(i, j int) bool { return upcoming[i].ScheduledStart.Before(upcoming[j].ScheduledStart) })
	if len(upcoming) > limit {
		upcoming = upcoming[:limit]
	}
	return upcoming, nil
}

// ============ announcements ============

type fakeAnnouncer struct {
	mu        sync.Mutex
	published []*model.Announcement
	err       error
}

func (a *fakeAnnouncer) Publish(ctx context.Context, ann *model.Announcement) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return a.err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	a.published = append(a.published, ann)
	return nil
}

func (a *fakeAnnouncer) count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.published)
}

type fakeAnnouncementStore struct {
	items     []*model.Announcement
	createErr error
	listErr   error
}

func (s *fakeAnnouncementStore) Create(_ context.Context, a *model.Announcement) error {
	if s.createErr != nil {
		return s.createErr
	}
	a.CreatedAt = time.Now()
	s.items = append(s.items, a)
	return nil
}

func (s *fakeAnnouncementStore) ListActive(_ context.Context, now time.Time, limit int) ([]*model.Announcement, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	var out []*model.Announcement
	for _, a := range s.items {
		if a.IsActive && (a.ExpiresAt == nil || a.ExpiresAt.After(now)) {
			out = append(out, a)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ============ courses ============

type fakeCourseStore struct {
	courses map[string]*model.Course
	getErr  error
}

func newFakeCourseStore(courses ...*model.Course) *fakeCourseStore {
	s := &fakeCourseStore{courses: make(map[string]*model.Course)}
	for _, c := range courses {
		s.courses[c.ID] = c
	}
	return s
}

func (s *fakeCourseStore) Create(_ context.Context, c *model.Course) error {
	s.courses[c.ID] = c
	return nil
}

func (s *fakeCourseStore) GetByID(_ context.Context, id string) (*model.Course, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.courses[id], nil
}

func (s *fakeCourseStore) ListActive(_ context.Context) ([]*model.Course, error) {
	var out []*model.Course
	for _, c := range s.courses {
		if c.Status == model.CourseStatusActive {
			out = append(out, c)
		}
	}
	return out, nil
}

// ============ enrollments ============

type fakeEnrollmentStore struct {
	mu          sync.Mutex
	enrollments map[string]*model.CourseEnrollment
	getErr      error
	lookups     int
}

func newFakeEnrollmentStore(enrollments ...*model.CourseEnrollment) *fakeEnrollmentStore {
	s := &fakeEnrollmentStore{enrollments: make(map[string]*model.CourseEnrollment)}
	for _, e := range enrollments {
		s.enrollments[e.ID] = e
	}
	return s
}

func (s *fakeEnrollmentStore) GetByUserAndCourse(_ context.Context, userID, courseID string) (*model.CourseEnrollment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lookups++
	if s.getErr != nil {
		return nil, s.getErr
	}
	for _, e := range s.enrollments {
		if e.UserID == userID && e.CourseID == courseID {
			c := *e
			return &c, nil
		}
	}
	return nil, nil
}

func (s *fakeEnrollmentStore) GetByID(_ context.Context, id string) (*model.CourseEnrollment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return nil, s.getErr
	}
	if e, ok := s.enrollments[id]; ok {
		c := *e
		return &c, nil
	}
	return nil, nil
}

func (s *fakeEnrollmentStore) CreateIfAbsent(_ context.Context, e *model.CourseEnrollment) (*model.CourseEnrollment, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.enrollments {
		if existing.UserID == e.UserID && existing.CourseID == e.CourseID {
			c := *existing
			return &c, false, nil
		}
	}
	e.EnrolledAt = time.Now()
	c := *e
	s.enrollments[e.ID] = &c
	out := c
	return &out, true, nil
}

func (s *fakeEnrollmentStore) ConfirmPaid(_ context.Context, id string, expiresAt *time.Time) (*model.CourseEnrollment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.enrollments[id]
	if !ok || e.PaymentStatus == model.PaymentStatusPaid {
		return nil, nil
	}
	e.PaymentStatus = model.PaymentStatusPaid
	e.AccessGranted = true
	e.ExpiresAt = expiresAt
	c := *e
	return &c, nil
}

func (s *fakeEnrollmentStore) MarkFailed(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.enrollments[id]
	if !ok || e.PaymentStatus == model.PaymentStatusPaid {
		return false, nil
	}
	e.PaymentStatus = model.PaymentStatusFailed
	return true, nil
}

func (s *fakeEnrollmentStore) RevokeAccess(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.enrollments[id]
	if !ok || !e.AccessGranted {
		return false, nil
	}
	e.AccessGranted = false
	return true, nil
}

// ============ materials ============

type fakeMaterialStore struct {
	items []*model.CourseMaterial
}

func (s *fakeMaterialStore) Create(_ context.Context, m *model.CourseMaterial) error {
	s.items = append(s.items, m)
	return nil
}

func (s *fakeMaterialStore) ListByCourse(_ context.Context, courseID string) ([]*model.CourseMaterial, error) {
	var out []*model.CourseMaterial
	for _, m := range s.items {
		if m.CourseID == courseID {
			out = append(out, m)
		}
	}
	return out, nil
}

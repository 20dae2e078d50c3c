package notifier

import (
	"context"
	"errors"
	"sync"

	"github.com/katatrina/complaint-BE/internal/db"
	"github.com/katatrina/complaint-BE/internal/event"
	"github.com/katatrina/complaint-BE/internal/mailer"
	"github.com/katatrina/complaint-BE/internal/partner"
)

type fakeStore struct {
	users   map[string]db.User
	listErr error
}

func (s *fakeStore) GetUserByID(_ context.Context, id string) (db.User, error) {
	u, ok := s.users[id]
	if !ok {
		return db.User{}, db.ErrRecordNotFound
	}
	return u, nil
}

func (s *fakeStore) ListUsersByRole(_ context.Context, role string) ([]db.User, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	var out []db.User
	for _, u := range s.users {
		if u.Role == role {
			out = append(out, u)
		}
	}
	return out, nil
}

func (s *fakeStore) ListUsersByFacultyAndRole(_ context.Context, facultyID string, role string) ([]db.User, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	var out []db.User
	for _, u := range s.users {
		if u.Role == role && u.FacultyID == facultyID {
			out = append(out, u)
		}
	}
	return out, nil
}

func (s *fakeStore) CreateChatMessage(context.Context, db.CreateChatMessageParams) (db.ChatMessage, error) {
	return db.ChatMessage{}, errors.New("not used")
}

type fakeSender struct {
	mu     sync.Mutex
	emails []mailer.Email
	err    error
}

func (s *fakeSender) SendEmail(_ context.Context, email mailer.Email) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.emails = append(s.emails, email)
	return s.err
}

func (s *fakeSender) sent() []mailer.Email {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]mailer.Email(nil), s.emails...)
}

type fakeEmitter struct {
	mu     sync.Mutex
	events []event.Event
	panics bool
}

func (e *fakeEmitter) Broadcast(ev event.Event) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.panics {
		panic("socket closed")
	}
	e.events = append(e.events, ev)
}

func (e *fakeEmitter) EmitTo(_ string, ev event.Event) {
	e.Broadcast(ev)
}

func (e *fakeEmitter) named(name string) []event.Event {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []event.Event
	for _, ev := range e.events {
		if ev.Name == name {
			out = append(out, ev)
		}
	}
	return out
}

type fakeReports struct {
	mu      sync.Mutex
	reports map[string]*partner.Report
	err     error
	calls   int
}

func (f *fakeReports) GetReport(_ context.Context, reportID string, _ string) (*partner.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	r, ok := f.reports[reportID]
	if !ok {
		return nil, partner.ErrReportUnavailable
	}
	copied := *r
	return &copied, nil
}

func boolPtr(b bool) *bool {
	return &b
}

func staffDirectory() *fakeStore {
	return &fakeStore{users: map[string]db.User{
		"sa1": {ID: "sa1", Name: "Root", Email: "root@uni.edu", Role: "super_admin"},
		"sa2": {ID: "sa2", Name: "Root Twin", Email: "ROOT@uni.edu", Role: "super_admin"},
		"ad1": {ID: "ad1", Name: "Eng Admin", Email: "eng-admin@uni.edu", Role: "admin", FacultyID: "eng"},
		"ad2": {ID: "ad2", Name: "Law Admin", Email: "law-admin@uni.edu", Role: "admin", FacultyID: "law"},
		"of1": {ID: "of1", Name: "Jane Doe", Email: "jane@uni.edu", Role: "officer", FacultyID: "eng"},
		"of2": {ID: "of2", Name: "Quiet Officer", Email: "quiet@uni.edu", Role: "officer", FacultyID: "eng", EmailNotifications: boolPtr(false)},
		"ad3": {ID: "ad3", Name: "No Mail Admin", Email: "", Role: "admin", FacultyID: "eng"},
	}}
}

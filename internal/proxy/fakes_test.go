package proxy

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/katatrina/complaint-BE/internal/db"
	"github.com/katatrina/complaint-BE/internal/event"
	"github.com/katatrina/complaint-BE/internal/notifier"
	"github.com/katatrina/complaint-BE/internal/partner"
)

type fakeStore struct {
	mu        sync.Mutex
	users     map[string]db.User
	messages  []db.CreateChatMessageParams
	createErr error
}

func (s *fakeStore) GetUserByID(_ context.Context, id string) (db.User, error) {
	u, ok := s.users[id]
	if !ok {
		return db.User{}, db.ErrRecordNotFound
	}
	return u, nil
}

func (s *fakeStore) ListUsersByRole(context.Context, string) ([]db.User, error) {
	return nil, nil
}

func (s *fakeStore) ListUsersByFacultyAndRole(context.Context, string, string) ([]db.User, error) {
	return nil, nil
}

func (s *fakeStore) CreateChatMessage(_ context.Context, arg db.CreateChatMessageParams) (db.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return db.ChatMessage{}, s.createErr
	}
	s.messages = append(s.messages, arg)
	return db.ChatMessage{
		ID:          fmt.Sprintf("m%d", len(s.messages)),
		ReportID:    arg.ReportID,
		ChatroomID:  arg.ChatroomID,
		SenderID:    arg.SenderID,
		ReceiverID:  arg.ReceiverID,
		Message:     arg.Message,
		Attachments: arg.Attachments,
		CreatedAt:   time.Now(),
	}, nil
}

type emitted struct {
	channel string
	event   event.Event
}

type fakeEmitter struct {
	mu     sync.Mutex
	events []emitted
}

func (e *fakeEmitter) Broadcast(ev event.Event) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, emitted{event: ev})
}

func (e *fakeEmitter) EmitTo(channel string, ev event.Event) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, emitted{channel: channel, event: ev})
}

type fakeReports struct {
	report *partner.Report
	err    error
	calls  int
}

func (f *fakeReports) GetReport(context.Context, string, string) (*partner.Report, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	r := *f.report
	return &r, nil
}

type fakeForwarder struct {
	calls    int
	last     partner.ForwardRequest
	response *partner.ForwardResponse
}

func (f *fakeForwarder) Forward(_ context.Context, req partner.ForwardRequest) *partner.ForwardResponse {
	f.calls++
	f.last = req
	if f.response != nil {
		return f.response
	}
	return &partner.ForwardResponse{StatusCode: 200, Body: []byte(`{"success":true}`)}
}

type fakeSubmitter struct {
	tasks  []notifier.Task
	reject bool
}

func (s *fakeSubmitter) Submit(task notifier.Task) bool {
	if s.reject {
		return false
	}
	s.tasks = append(s.tasks, task)
	return true
}

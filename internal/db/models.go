package db

import (
	"time"
)

const (
	CollectionUsers        = "users"
	CollectionChatMessages = "chatmessages"
)

type User struct {
	ID        string `firestore:"-" json:"id"`
	Name      string `firestore:"name" json:"name"`
	Email     string `firestore:"email" json:"email"`
	Role      string `firestore:"role" json:"role"`
	FacultyID string `firestore:"facultyId" json:"facultyId"`
	// EmailNotifications is nil when the user never set a preference.
	EmailNotifications *bool `firestore:"emailNotifications" json:"emailNotifications,omitempty"`
}

// WantsEmail reports whether the user has not explicitly opted out of email notifications.
func (u User) WantsEmail() bool {
	return u.EmailNotifications == nil || *u.EmailNotifications
}

// ChatMessage is append-only: it is written once per chat send and never updated.
type ChatMessage struct {
	ID          string    `firestore:"-" json:"id"`
	ReportID    string    `firestore:"reportId" json:"reportId"`
	ChatroomID  string    `firestore:"chatroomId" json:"chatroomId"`
	SenderID    string    `firestore:"senderId" json:"senderId"`
	ReceiverID  string    `firestore:"receiverId" json:"receiverId"`
	Message     string    `firestore:"message" json:"message"`
	Attachments []string  `firestore:"attachments" json:"attachments"`
	CreatedAt   time.Time `firestore:"createdAt" json:"createdAt"`
}

type CreateChatMessageParams struct {
	ReportID    string
	ChatroomID  string
	SenderID    string
	ReceiverID  string
	Message     string
	Attachments []string
}

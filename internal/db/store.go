package db

import (
	"context"
)

// Store provides the document-store operations the service needs.
type Store interface {
	GetUserByID(ctx context.Context, id string) (User, error)
	ListUsersByRole(ctx context.Context, role string) ([]User, error)
	ListUsersByFacultyAndRole(ctx context.Context, facultyID string, role string) ([]User, error)
	CreateChatMessage(ctx context.Context, arg CreateChatMessageParams) (ChatMessage, error)
}

package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type FirestoreStore struct {
	client *firestore.Client
}

// NewStore creates a new Store backed by Firestore.
func NewStore(client *firestore.Client) Store {
	return &FirestoreStore{
		client: client,
	}
}

func (store *FirestoreStore) GetUserByID(ctx context.Context, id string) (User, error) {
	var user User
	if id == "" {
		return user, ErrRecordNotFound
	}

	snap, err := store.client.Collection(CollectionUsers).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return user, ErrRecordNotFound
		}
		return user, fmt.Errorf("failed to get user %s: %w", id, err)
	}

	if err = snap.DataTo(&user); err != nil {
		return user, fmt.Errorf("failed to decode user %s: %w", id, err)
	}
	user.ID = snap.Ref.ID

	return user, nil
}

func (store *FirestoreStore) ListUsersByRole(ctx context.Context, role string) ([]User, error) {
	query := store.client.Collection(CollectionUsers).Where("role", "==", role)
	return store.listUsers(ctx, query)
}

func (store *FirestoreStore) ListUsersByFacultyAndRole(ctx context.Context, facultyID string, role string) ([]User, error) {
	query := store.client.Collection(CollectionUsers).
		Where("facultyId", "==", facultyID).
		Where("role", "==", role)
	return store.listUsers(ctx, query)
}

func (store *FirestoreStore) listUsers(ctx context.Context, query firestore.Query) ([]User, error) {
	snaps, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}

	users := make([]User, 0, len(snaps))
	for _, snap := range snaps {
		var user User
		if err = snap.DataTo(&user); err != nil {
			return nil, fmt.Errorf("failed to decode user %s: %w", snap.Ref.ID, err)
		}
		user.ID = snap.Ref.ID
		users = append(users, user)
	}

	return users, nil
}

func (store *FirestoreStore) CreateChatMessage(ctx context.Context, arg CreateChatMessageParams) (ChatMessage, error) {
	if arg.ReportID == "" || arg.ChatroomID == "" {
		return ChatMessage{}, errors.New("chat message requires reportId and chatroomId")
	}

	attachments := arg.Attachments
	if attachments == nil {
		attachments = []string{}
	}

	msg := ChatMessage{
		ReportID:    arg.ReportID,
		ChatroomID:  arg.ChatroomID,
		SenderID:    arg.SenderID,
		ReceiverID:  arg.ReceiverID,
		Message:     arg.Message,
		Attachments: attachments,
		CreatedAt:   time.Now(),
	}

	ref, _, err := store.client.Collection(CollectionChatMessages).Add(ctx, msg)
	if err != nil {
		return ChatMessage{}, fmt.Errorf("failed to create chat message: %w", err)
	}
	msg.ID = ref.ID

	return msg, nil
}

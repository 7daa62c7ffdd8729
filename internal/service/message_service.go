package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/fintrack/groupledger/internal/errs"
	"github.com/fintrack/groupledger/internal/middleware"
	"github.com/fintrack/groupledger/internal/models"
	"github.com/fintrack/groupledger/internal/permission"
	"github.com/fintrack/groupledger/internal/storage"
)

// defaultMessageLimit caps a message page when the caller does not ask
// for a specific size.
const defaultMessageLimit = 50

// MessageService handles the group chat. Messages share the group's store
// but carry no ledger semantics.
type MessageService struct {
	store storage.Store
}

// NewMessageService creates a new MessageService with the given storage
// backend.
func NewMessageService(store storage.Store) *MessageService {
	return &MessageService{store: store}
}

// SendMessage posts a chat message to a group the caller belongs to.
func (s *MessageService) SendMessage(ctx context.Context, groupID, content string) (*models.GroupMessage, error) {
	const op = "message.Send"

	callerID := middleware.GetUserID(ctx)
	if callerID == "" {
		return nil, errs.Unauthenticated(op)
	}
	if strings.TrimSpace(content) == "" {
		return nil, errs.Invalid(op, "content_required")
	}

	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !group.IsMember(callerID) {
		return nil, errs.Forbidden(op, groupID, permission.ReasonNotMember)
	}

	user, err := s.store.GetUserByID(ctx, callerID)
	if err != nil {
		return nil, err
	}

	msg := &models.GroupMessage{
		GroupID:     groupID,
		UserID:      callerID,
		DisplayName: user.DisplayName,
		PhotoURL:    user.PhotoURL,
		Content:     content,
		CreatedAt:   time.Now().Unix(),
	}
	if err := s.store.CreateMessage(ctx, msg); err != nil {
		return nil, err
	}

	slog.Debug("message sent", "group_id", groupID, "user_id", callerID)
	return msg, nil
}

// ListMessages retrieves the newest messages for a group in ascending
// order. A non-positive limit falls back to the default page size.
func (s *MessageService) ListMessages(ctx context.Context, groupID string, limit int) ([]*models.GroupMessage, error) {
	const op = "message.List"

	callerID := middleware.GetUserID(ctx)
	if callerID == "" {
		return nil, errs.Unauthenticated(op)
	}

	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !group.IsMember(callerID) {
		return nil, errs.Forbidden(op, groupID, permission.ReasonNotMember)
	}

	if limit <= 0 {
		limit = defaultMessageLimit
	}
	return s.store.ListMessagesByGroup(ctx, groupID, limit)
}

package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/cissero/platform/internal/domain"
	"github.com/cissero/platform/internal/guard"
	"github.com/cissero/platform/internal/infra"
	"github.com/cissero/platform/internal/lifecycle"
	"github.com/cissero/platform/internal/repository"
	"github.com/google/uuid"
)

// ChatMessageEvent is the WebSocket event name of a new chat line.
const ChatMessageEvent = "chat.message"

// DefaultChatHistory bounds ListMessages when no limit is given.
const DefaultChatHistory = 100

// ChatService handles per-event chat and private messages to the admin team.
type ChatService struct {
	engine   *lifecycle.Engine
	messages repository.MessageRepository
	users    repository.UserRepository
	limiter  *guard.RateLimiter
	hub      *infra.WSHub
	outbox   domain.Outbox
	metrics  *infra.Metrics
	logger   *slog.Logger
	now      func() time.Time
}

// NewChatService creates a ChatService. hub may be nil when live fan-out is off.
func NewChatService(
	engine *lifecycle.Engine,
	messages repository.MessageRepository,
	users repository.UserRepository,
	limiter *guard.RateLimiter,
	hub *infra.WSHub,
	outbox domain.Outbox,
	metrics *infra.Metrics,
	logger *slog.Logger,
) *ChatService {
	if outbox == nil {
		outbox = domain.DiscardOutbox{}
	}
	return &ChatService{
		engine:   engine,
		messages: messages,
		users:    users,
		limiter:  limiter,
		hub:      hub,
		outbox:   outbox,
		metrics:  metrics,
		logger:   logger,
		now:      time.Now,
	}
}

// PostMessage appends a chat line to an event and fans it out to the event room.
func (s *ChatService) PostMessage(ctx context.Context, user *domain.User, eventID, text string) (*domain.Message, error) {
	if user == nil {
		return nil, domain.ErrUnauthorized("log in to chat")
	}
	if _, err := s.engine.Get(eventID); err != nil {
		return nil, err
	}
	if err := domain.ValidateMessageText(text); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}
	if err := s.limiter.Allow(ctx, "chat:"+user.ID); err != nil {
		return nil, err
	}

	name := user.DisplayName
	if name == "" {
		name = user.Username
	}
	msg := domain.Message{
		ID:        uuid.NewString(),
		EventID:   eventID,
		UserID:    user.ID,
		Username:  name,
		Text:      text,
		Timestamp: s.now().UTC(),
	}
	s.messages.AppendChat(msg)

	if s.hub != nil {
		s.hub.Publish(infra.EventRoom(eventID), ChatMessageEvent, msg)
	}
	s.outbox.Enqueue(domain.NewChatMessageDraft(msg))
	s.metrics.ChatPosted()
	return &msg, nil
}

// ListMessages returns the last limit chat lines of an event, oldest first.
func (s *ChatService) ListMessages(eventID string, limit int) ([]domain.Message, error) {
	if _, err := s.engine.Get(eventID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultChatHistory
	}
	return s.messages.ListChat(eventID, limit), nil
}

// SendPrivate appends a user's message to their thread with the admin team.
func (s *ChatService) SendPrivate(ctx context.Context, user *domain.User, text string) (*domain.PrivateMessage, error) {
	if user == nil {
		return nil, domain.ErrUnauthorized("log in to message the admin team")
	}
	if err := domain.ValidateMessageText(text); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}
	if err := s.limiter.Allow(ctx, "pm:"+user.ID); err != nil {
		return nil, err
	}

	msg := domain.PrivateMessage{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Text:      text,
		Timestamp: s.now().UTC(),
	}
	s.messages.AppendPrivate(msg)
	return &msg, nil
}

// Thread returns one user's private thread, oldest first.
func (s *ChatService) Thread(userID string) []domain.PrivateMessage {
	return s.messages.ListPrivate(userID)
}

// Threads summarizes every private thread for the admin inbox, newest activity first.
func (s *ChatService) Threads() []domain.Thread {
	ids := s.messages.Threads()
	out := make([]domain.Thread, 0, len(ids))
	for _, id := range ids {
		msgs := s.messages.ListPrivate(id)
		if len(msgs) == 0 {
			continue
		}
		t := domain.Thread{UserID: id, LastMessage: msgs[len(msgs)-1]}
		if u := s.users.FindByID(id); u != nil {
			t.Username = u.Username
		}
		for _, m := range msgs {
			if !m.FromAdmin && !m.Read {
				t.Unread++
			}
		}
		out = append(out, t)
	}
	return out
}

// ReadThread returns a user's thread and marks their messages read.
func (s *ChatService) ReadThread(userID string) ([]domain.PrivateMessage, error) {
	if s.users.FindByID(userID) == nil {
		return nil, domain.ErrNotFound("user", userID)
	}
	if n := s.messages.MarkRead(userID); n > 0 {
		s.logger.Debug("thread marked read", "user_id", userID, "count", n)
	}
	return s.messages.ListPrivate(userID), nil
}

// Reply posts an admin message into a user's thread.
func (s *ChatService) Reply(_ context.Context, admin *domain.AdminUser, userID, text string) (*domain.PrivateMessage, error) {
	if admin == nil {
		return nil, domain.ErrUnauthorized("admin session required")
	}
	if s.users.FindByID(userID) == nil {
		return nil, domain.ErrNotFound("user", userID)
	}
	if err := domain.ValidateMessageText(text); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}

	name := admin.Name
	if name == "" {
		name = admin.Username
	}
	msg := domain.PrivateMessage{
		ID:        uuid.NewString(),
		UserID:    userID,
		FromAdmin: true,
		AdminName: name,
		Text:      text,
		Read:      true,
		Timestamp: s.now().UTC(),
	}
	s.messages.AppendPrivate(msg)
	return &msg, nil
}

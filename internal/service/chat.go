package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"campusmarket/trading/internal/model"
	"campusmarket/trading/internal/repository"
)

type ChatService struct {
	chat  *repository.ChatRepository
	users *repository.UserRepository
	now   func() time.Time
}

func NewChatService(chat *repository.ChatRepository, users *repository.UserRepository) *ChatService {
	return &ChatService{chat: chat, users: users, now: time.Now}
}

type SendMessage struct {
	ReceiverUID   string `json:"receiver_uid"`
	ReceiverEmail string `json:"receiver_email"`
	Content       string `json:"content"`
	ItemID        string `json:"item_id"`
	ItemTitle     string `json:"item_title"`
}

// Send stores a message from actor. A receiver given only by email is
// resolved to their uid.
func (s *ChatService) Send(ctx context.Context, actor Actor, in SendMessage) (*model.ChatMessage, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, model.ErrEmptyMessage
	}
	in.ReceiverEmail = normalizeEmail(in.ReceiverEmail)
	if in.ReceiverUID == "" && in.ReceiverEmail == "" {
		return nil, model.ErrNoReceiver
	}

	if in.ReceiverUID == "" {
		u, err := s.users.FindByEmail(ctx, in.ReceiverEmail)
		if err != nil {
			return nil, err
		}
		in.ReceiverUID = u.UID
	}
	if in.ReceiverUID == actor.UID {
		return nil, model.ErrNoReceiver
	}

	msg := model.ChatMessage{
		ID:            ulid.Make().String(),
		SenderUID:     actor.UID,
		SenderEmail:   actor.Email,
		ReceiverUID:   in.ReceiverUID,
		ReceiverEmail: in.ReceiverEmail,
		Content:       content,
		Timestamp:     s.now().UnixMilli(),
		ItemID:        in.ItemID,
		ItemTitle:     in.ItemTitle,
	}
	if err := s.chat.Save(ctx, msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

func (s *ChatService) List(ctx context.Context, actor Actor) ([]model.ChatMessage, error) {
	return s.chat.ListForUser(ctx, actor.UID)
}

// counterpart returns the other side of msg from uid's point of view.
func counterpart(uid string, msg model.ChatMessage) (string, string) {
	if msg.SenderUID == uid {
		return msg.ReceiverUID, msg.ReceiverEmail
	}
	return msg.SenderUID, msg.SenderEmail
}

// With returns the messages exchanged with otherUID, oldest first.
func (s *ChatService) With(ctx context.Context, actor Actor, otherUID string) ([]model.ChatMessage, error) {
	if otherUID == "" {
		return nil, model.ErrNoReceiver
	}
	msgs, err := s.List(ctx, actor)
	if err != nil {
		return nil, err
	}
	out := []model.ChatMessage{}
	for _, m := range msgs {
		if uid, _ := counterpart(actor.UID, m); uid == otherUID {
			out = append(out, m)
		}
	}
	return out, nil
}

// Conversations returns the latest message per counterpart, newest first.
func (s *ChatService) Conversations(ctx context.Context, actor Actor) ([]model.Conversation, error) {
	msgs, err := s.List(ctx, actor)
	if err != nil {
		return nil, err
	}
	return Conversations(actor.UID, msgs), nil
}

// Conversations groups msgs by counterpart.
func Conversations(uid string, msgs []model.ChatMessage) []model.Conversation {
	latest := make(map[string]model.ChatMessage)
	for _, m := range msgs {
		otherUID, otherEmail := counterpart(uid, m)
		key := otherUID
		if key == "" {
			key = strings.ToLower(otherEmail)
		}
		prev, ok := latest[key]
		if !ok || m.Timestamp > prev.Timestamp || (m.Timestamp == prev.Timestamp && m.ID > prev.ID) {
			latest[key] = m
		}
	}

	out := make([]model.Conversation, 0, len(latest))
	for _, m := range latest {
		otherUID, otherEmail := counterpart(uid, m)
		out = append(out, model.Conversation{
			OtherUserUID:    otherUID,
			OtherUserEmail:  otherEmail,
			LastMessage:     m.Content,
			LastMessageTime: m.Timestamp,
			ItemID:          m.ItemID,
			ItemTitle:       m.ItemTitle,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].LastMessageTime != out[j].LastMessageTime {
			return out[i].LastMessageTime > out[j].LastMessageTime
		}
		return out[i].OtherUserUID < out[j].OtherUserUID
	})
	return out
}

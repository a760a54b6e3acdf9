package repository

import (
	"context"
	"log/slog"

	"campusmarket/trading/internal/model"
)

const entityMessages = "chat_messages"

type ChatRepository struct {
	remote Remote
	mirror Mirror
	logger *slog.Logger
}

func NewChatRepository(remote Remote, mirror Mirror, logger *slog.Logger) *ChatRepository {
	return &ChatRepository{remote: remote, mirror: mirror, logger: orDefault(logger)}
}

func (r *ChatRepository) Save(ctx context.Context, msg model.ChatMessage) error {
	if err := r.mirror.UpsertMessages(ctx, []model.ChatMessage{msg}); err != nil {
		return err
	}
	if err := r.remote.CreateMessage(ctx, msg); err != nil {
		remoteWriteFailed(r.logger, entityMessages, "create", err)
	}
	return nil
}

// ListForUser returns uid's messages oldest first. Messages only held locally
// are included alongside the remote ones.
func (r *ChatRepository) ListForUser(ctx context.Context, uid string) ([]model.ChatMessage, error) {
	msgs, err := r.remote.ListMessagesForUser(ctx, uid)
	if err != nil {
		fallback(r.logger, entityMessages, err)
	} else if err := r.mirror.UpsertMessages(ctx, msgs); err != nil {
		r.logger.Error("failed to mirror messages", "error", err)
		return msgs, nil
	}
	return r.mirror.ListMessagesForUser(ctx, uid)
}

package repository

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"campusmarket/trading/internal/model"
)

const entityUsers = "users"

// UserRepository keeps password hashes and pending registrations local only.
type UserRepository struct {
	remote Remote
	mirror Mirror
	logger *slog.Logger
}

func NewUserRepository(remote Remote, mirror Mirror, logger *slog.Logger) *UserRepository {
	return &UserRepository{remote: remote, mirror: mirror, logger: orDefault(logger)}
}

// FindByEmail returns the user merged with any locally held password hash.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	remoteUser, err := r.remote.GetUserByEmail(ctx, email)
	switch {
	case errors.Is(err, model.ErrUserNotFound):
		// May have been created while the remote was unreachable.
	case err != nil:
		fallback(r.logger, entityUsers, err)
	default:
		if err := r.mirror.UpsertUser(ctx, *remoteUser); err != nil {
			r.logger.Error("failed to mirror user", "error", err)
			return remoteUser, nil
		}
	}
	return r.mirror.GetUserByEmail(ctx, email)
}

func (r *UserRepository) Create(ctx context.Context, user model.User) error {
	if err := r.mirror.UpsertUser(ctx, user); err != nil {
		return err
	}
	if err := r.remote.CreateUser(ctx, user); err != nil {
		remoteWriteFailed(r.logger, entityUsers, "create", err)
	}
	return nil
}

func (r *UserRepository) UpdateDisplayName(ctx context.Context, email, name string) (*model.User, error) {
	user, err := r.mirror.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if err := r.remote.UpdateUser(ctx, email, model.UserPatch{DisplayName: &name}); err != nil {
		remoteWriteFailed(r.logger, entityUsers, "update", err)
	}
	user.DisplayName = name
	user.UpdatedAt = time.Now().UTC()
	if err := r.mirror.UpsertUser(ctx, *user); err != nil {
		return nil, err
	}
	return user, nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, email, hash string) error {
	return r.mirror.UpdatePassword(ctx, email, hash)
}

func (r *UserRepository) Delete(ctx context.Context, email string) error {
	if err := r.remote.DeleteUser(ctx, email); err != nil {
		remoteWriteFailed(r.logger, entityUsers, "delete", err)
	}
	return r.mirror.DeleteUser(ctx, email)
}

func (r *UserRepository) SavePending(ctx context.Context, p model.PendingRegistration) error {
	return r.mirror.SavePendingRegistration(ctx, p)
}

func (r *UserRepository) GetPending(ctx context.Context, email string) (*model.PendingRegistration, error) {
	return r.mirror.GetPendingRegistration(ctx, email)
}

func (r *UserRepository) DeletePending(ctx context.Context, email string) error {
	return r.mirror.DeletePendingRegistration(ctx, email)
}

package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"campusmarket/trading/internal/auth"
	"campusmarket/trading/internal/email"
	"campusmarket/trading/internal/model"
	"campusmarket/trading/internal/repository"
)

const (
	codeTTL = 30 * time.Minute
	// maxCodeAttempts wrong codes drop the pending registration.
	maxCodeAttempts = 5
)

// Session is returned on successful verification or login.
type Session struct {
	Token     string     `json:"token"`
	ExpiresAt time.Time  `json:"expires_at"`
	User      model.User `json:"user"`
}

type AuthService struct {
	users  *repository.UserRepository
	tokens *auth.JWTManager
	mailer email.Service
	domain string
	logger *slog.Logger
	now    func() time.Time
}

// NewAuthService restricts sign-up and login to addresses ending in domain,
// e.g. "@ucdconnect.ie". An empty domain allows any address.
func NewAuthService(users *repository.UserRepository, tokens *auth.JWTManager, mailer email.Service, domain string, logger *slog.Logger) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		users:  users,
		tokens: tokens,
		mailer: mailer,
		domain: strings.ToLower(domain),
		logger: logger,
		now:    time.Now,
	}
}

func normalizeEmail(e string) string {
	return strings.ToLower(strings.TrimSpace(e))
}

func (s *AuthService) checkDomain(addr string) error {
	if !strings.Contains(addr, "@") || strings.HasPrefix(addr, "@") {
		return ErrEmailDomain
	}
	if s.domain != "" && !strings.HasSuffix(addr, s.domain) {
		return ErrEmailDomain
	}
	return nil
}

// Register stores a pending sign-up and mails its verification code.
func (s *AuthService) Register(ctx context.Context, addr, password string) error {
	addr = normalizeEmail(addr)
	if err := s.checkDomain(addr); err != nil {
		return err
	}
	if err := auth.ValidatePassword(password); err != nil {
		return err
	}

	_, err := s.users.FindByEmail(ctx, addr)
	switch {
	case err == nil:
		return ErrEmailExists
	case !errors.Is(err, model.ErrUserNotFound):
		return err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	code, err := auth.NewVerificationCode()
	if err != nil {
		return err
	}

	pending := model.PendingRegistration{
		Email:        addr,
		UID:          uuid.NewString(),
		DisplayName:  addr[:strings.Index(addr, "@")],
		PasswordHash: hash,
		Code:         code,
		ExpiresAt:    s.now().Add(codeTTL),
	}
	if err := s.users.SavePending(ctx, pending); err != nil {
		return err
	}
	return s.sendCode(ctx, addr, code)
}

func (s *AuthService) sendCode(ctx context.Context, addr, code string) error {
	if err := s.mailer.SendMail(ctx, email.VerificationMail(addr, code)); err != nil {
		return fmt.Errorf("failed to send verification code: %w", err)
	}
	s.logger.InfoContext(ctx, "verification code sent", "email", addr)
	return nil
}

// Verify confirms a pending sign-up and opens a session for the new user.
func (s *AuthService) Verify(ctx context.Context, addr, code string) (*Session, error) {
	addr = normalizeEmail(addr)
	p, err := s.users.GetPending(ctx, addr)
	if errors.Is(err, model.ErrNotFound) {
		return nil, ErrNoPendingRegistration
	}
	if err != nil {
		return nil, err
	}

	if s.now().After(p.ExpiresAt) {
		if err := s.users.DeletePending(ctx, addr); err != nil {
			s.logger.WarnContext(ctx, "failed to drop expired registration", "email", addr, "error", err)
		}
		return nil, ErrCodeExpired
	}
	if subtle.ConstantTimeCompare([]byte(strings.TrimSpace(code)), []byte(p.Code)) != 1 {
		return nil, s.wrongCode(ctx, p)
	}

	now := s.now().UTC()
	user := model.User{
		UID:           p.UID,
		Email:         addr,
		DisplayName:   p.DisplayName,
		PasswordHash:  p.PasswordHash,
		EmailVerified: true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	if err := s.users.DeletePending(ctx, addr); err != nil {
		s.logger.WarnContext(ctx, "failed to drop pending registration", "email", addr, "error", err)
	}
	return s.session(user)
}

// wrongCode counts a failed verification and drops the registration once
// the attempts run out.
func (s *AuthService) wrongCode(ctx context.Context, p *model.PendingRegistration) error {
	p.Attempts++
	if p.Attempts >= maxCodeAttempts {
		if err := s.users.DeletePending(ctx, p.Email); err != nil {
			return err
		}
		s.logger.WarnContext(ctx, "registration dropped after repeated wrong codes", "email", p.Email)
		return ErrTooManyAttempts
	}
	if err := s.users.SavePending(ctx, *p); err != nil {
		return err
	}
	return ErrInvalidCode
}

// Login checks credentials. Only users with a locally held password hash can
// log in.
func (s *AuthService) Login(ctx context.Context, addr, password string) (*Session, error) {
	addr = normalizeEmail(addr)
	if err := s.checkDomain(addr); err != nil {
		return nil, err
	}

	user, err := s.users.FindByEmail(ctx, addr)
	if errors.Is(err, model.ErrUserNotFound) {
		return nil, auth.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := auth.CheckPassword(user.PasswordHash, password); err != nil {
		return nil, err
	}
	if !user.EmailVerified {
		return nil, ErrEmailNotVerified
	}
	return s.session(*user)
}

func (s *AuthService) session(user model.User) (*Session, error) {
	token, expires, err := s.tokens.Generate(user)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, ExpiresAt: expires, User: user}, nil
}

// ResendCode issues a fresh code for a pending sign-up.
func (s *AuthService) ResendCode(ctx context.Context, addr string) error {
	addr = normalizeEmail(addr)
	p, err := s.users.GetPending(ctx, addr)
	if errors.Is(err, model.ErrNotFound) {
		return ErrNoPendingRegistration
	}
	if err != nil {
		return err
	}

	code, err := auth.NewVerificationCode()
	if err != nil {
		return err
	}
	p.Code = code
	p.ExpiresAt = s.now().Add(codeTTL)
	if err := s.users.SavePending(ctx, *p); err != nil {
		return err
	}
	return s.sendCode(ctx, addr, code)
}

func (s *AuthService) Me(ctx context.Context, actor Actor) (*model.User, error) {
	return s.users.FindByEmail(ctx, actor.Email)
}

func (s *AuthService) ChangePassword(ctx context.Context, actor Actor, oldPassword, newPassword string) error {
	user, err := s.users.FindByEmail(ctx, actor.Email)
	if err != nil {
		return err
	}
	if err := auth.CheckPassword(user.PasswordHash, oldPassword); err != nil {
		return err
	}
	if err := auth.ValidatePassword(newPassword); err != nil {
		return err
	}
	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.users.UpdatePassword(ctx, actor.Email, hash)
}

func (s *AuthService) UpdateProfile(ctx context.Context, actor Actor, displayName string) (*model.User, error) {
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return nil, ErrInvalidDisplayName
	}
	return s.users.UpdateDisplayName(ctx, actor.Email, displayName)
}

// DeleteAccount removes the user locally and remotely. Their listings and
// messages are kept.
func (s *AuthService) DeleteAccount(ctx context.Context, actor Actor) error {
	if err := s.users.Delete(ctx, actor.Email); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "account deleted", "uid", actor.UID)
	return nil
}

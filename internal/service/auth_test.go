package service

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campusmarket/trading/internal/auth"
	"campusmarket/trading/internal/model"
)

var codePattern = regexp.MustCompile(`\d{6}`)

func newAuthService(env *testEnv) (*AuthService, *auth.JWTManager) {
	tokens := auth.NewJWTManager("test-secret", time.Hour)
	return NewAuthService(env.users, tokens, env.mailer, "@ucdconnect.ie", nil), tokens
}

func lastCode(t *testing.T, env *testEnv) string {
	t.Helper()
	sent := env.mailer.all()
	require.NotEmpty(t, sent)
	code := codePattern.FindString(sent[len(sent)-1].PlainText)
	require.NotEmpty(t, code)
	return code
}

func TestAuthService_RegisterVerifyLogin(t *testing.T) {
	env := newTestEnv(t)
	svc, tokens := newAuthService(env)
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, " Carol@UCDConnect.ie ", "secret1"))
	sent := env.mailer.all()
	require.Len(t, sent, 1)
	assert.Equal(t, "carol@ucdconnect.ie", sent[0].To)

	_, err := svc.Login(ctx, "carol@ucdconnect.ie", "secret1")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials, "no user before verification")

	_, err = svc.Verify(ctx, "carol@ucdconnect.ie", "000000x")
	assert.ErrorIs(t, err, ErrInvalidCode)

	session, err := svc.Verify(ctx, "carol@ucdconnect.ie", lastCode(t, env))
	require.NoError(t, err)
	assert.Equal(t, "carol", session.User.DisplayName)
	assert.True(t, session.User.EmailVerified)

	claims, err := tokens.Validate(session.Token)
	require.NoError(t, err)
	assert.Equal(t, session.User.UID, claims.UID)

	_, err = svc.Verify(ctx, "carol@ucdconnect.ie", "123456")
	assert.ErrorIs(t, err, ErrNoPendingRegistration)

	assert.ErrorIs(t, svc.Register(ctx, "carol@ucdconnect.ie", "secret1"), ErrEmailExists)

	_, err = svc.Login(ctx, "carol@ucdconnect.ie", "wrong-pass")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	login, err := svc.Login(ctx, "CAROL@ucdconnect.ie", "secret1")
	require.NoError(t, err)
	assert.Equal(t, session.User.UID, login.User.UID)
}

func TestAuthService_RegisterRules(t *testing.T) {
	env := newTestEnv(t)
	svc, _ := newAuthService(env)
	ctx := context.Background()

	assert.ErrorIs(t, svc.Register(ctx, "dave@gmail.com", "secret1"), ErrEmailDomain)
	assert.ErrorIs(t, svc.Register(ctx, "@ucdconnect.ie", "secret1"), ErrEmailDomain)
	assert.ErrorIs(t, svc.Register(ctx, "dave@ucdconnect.ie", "123"), auth.ErrWeakPassword)

	_, err := svc.Login(ctx, "dave@gmail.com", "secret1")
	assert.ErrorIs(t, err, ErrEmailDomain)
}

func TestAuthService_ExpiredCodeAndResend(t *testing.T) {
	env := newTestEnv(t)
	svc, _ := newAuthService(env)
	ctx := context.Background()

	now := time.Now()
	svc.now = func() time.Time { return now }
	require.NoError(t, svc.Register(ctx, "erin@ucdconnect.ie", "secret1"))
	code := lastCode(t, env)

	svc.now = func() time.Time { return now.Add(31 * time.Minute) }
	_, err := svc.Verify(ctx, "erin@ucdconnect.ie", code)
	assert.ErrorIs(t, err, ErrCodeExpired)

	assert.ErrorIs(t, svc.ResendCode(ctx, "erin@ucdconnect.ie"), ErrNoPendingRegistration)

	svc.now = func() time.Time { return now }
	require.NoError(t, svc.Register(ctx, "erin@ucdconnect.ie", "secret1"))
	require.NoError(t, svc.ResendCode(ctx, "erin@ucdconnect.ie"))
	assert.Len(t, env.mailer.all(), 3)

	_, err = svc.Verify(ctx, "erin@ucdconnect.ie", lastCode(t, env))
	require.NoError(t, err)
}

func TestAuthService_WrongCodesDropRegistration(t *testing.T) {
	env := newTestEnv(t)
	svc, _ := newAuthService(env)
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, "erin@ucdconnect.ie", "secret1"))
	code := lastCode(t, env)
	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}

	for i := 1; i < maxCodeAttempts; i++ {
		_, err := svc.Verify(ctx, "erin@ucdconnect.ie", wrong)
		require.ErrorIs(t, err, ErrInvalidCode, "attempt %d", i)
	}

	// A resend does not reset the counter.
	require.NoError(t, svc.ResendCode(ctx, "erin@ucdconnect.ie"))
	p, err := env.store.GetPendingRegistration(ctx, "erin@ucdconnect.ie")
	require.NoError(t, err)
	assert.Equal(t, maxCodeAttempts-1, p.Attempts)

	_, err = svc.Verify(ctx, "erin@ucdconnect.ie", wrong+"9")
	assert.ErrorIs(t, err, ErrTooManyAttempts)

	_, err = svc.Verify(ctx, "erin@ucdconnect.ie", lastCode(t, env))
	assert.ErrorIs(t, err, ErrNoPendingRegistration)
}

func TestAuthService_AccountManagement(t *testing.T) {
	env := newTestEnv(t)
	svc, _ := newAuthService(env)
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, "fay@ucdconnect.ie", "secret1"))
	session, err := svc.Verify(ctx, "fay@ucdconnect.ie", lastCode(t, env))
	require.NoError(t, err)
	actor := Actor{UID: session.User.UID, Email: session.User.Email}

	assert.ErrorIs(t, svc.ChangePassword(ctx, actor, "bad-old", "newsecret"), auth.ErrInvalidCredentials)
	assert.ErrorIs(t, svc.ChangePassword(ctx, actor, "secret1", "new"), auth.ErrWeakPassword)
	require.NoError(t, svc.ChangePassword(ctx, actor, "secret1", "newsecret"))

	_, err = svc.Login(ctx, "fay@ucdconnect.ie", "secret1")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	_, err = svc.Login(ctx, "fay@ucdconnect.ie", "newsecret")
	require.NoError(t, err)

	_, err = svc.UpdateProfile(ctx, actor, "  ")
	assert.ErrorIs(t, err, ErrInvalidDisplayName)
	user, err := svc.UpdateProfile(ctx, actor, "Fay F.")
	require.NoError(t, err)
	assert.Equal(t, "Fay F.", user.DisplayName)

	me, err := svc.Me(ctx, actor)
	require.NoError(t, err)
	assert.Equal(t, "Fay F.", me.DisplayName)

	require.NoError(t, svc.DeleteAccount(ctx, actor))
	_, err = svc.Me(ctx, actor)
	assert.ErrorIs(t, err, model.ErrUserNotFound)
}
